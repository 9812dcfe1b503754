package eol

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		mode  Mode
		want  string
	}{
		{name: "lfFromCRLF", input: "a\r\nb\r\n", mode: LF, want: "a\nb\n"},
		{name: "lfFromCR", input: "a\rb\r", mode: LF, want: "a\nb\n"},
		{name: "lfMixed", input: "a\r\nb\rc\nd", mode: LF, want: "a\nb\nc\nd"},
		{name: "lfDoubleCR", input: "a\r\r\nb", mode: LF, want: "a\n\nb"},
		{name: "defaultSameAsLF", input: "a\r\nb\rc", mode: Default, want: "a\nb\nc"},
		{name: "crlfFromLF", input: "a\nb\n", mode: CRLF, want: "a\r\nb\r\n"},
		{name: "crlfFromCR", input: "a\rb", mode: CRLF, want: "a\r\nb"},
		{name: "crlfNoDoubling", input: "a\r\nb\r\n", mode: CRLF, want: "a\r\nb\r\n"},
		{name: "crlfMixed", input: "a\rb\nc\r\nd", mode: CRLF, want: "a\r\nb\r\nc\r\nd"},
		{name: "crlfLFCR", input: "a\n\rb", mode: CRLF, want: "a\r\n\r\nb"},
		{name: "noLineEndings", input: "abc", mode: CRLF, want: "abc"},
		{name: "empty", input: "", mode: LF, want: ""},
		{name: "unicode", input: "č\rž\r\nš", mode: LF, want: "č\nž\nš"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Normalize(tc.input, tc.mode))
		})
	}
}

func TestReaderAcrossChunkBoundaries(t *testing.T) {
	t.Parallel()

	input := "one\r\ntwo\rthree\nfour\r"
	for mode, want := range map[Mode]string{
		LF:   "one\ntwo\nthree\nfour\n",
		CRLF: "one\r\ntwo\r\nthree\r\nfour\r\n",
	} {
		r := NewReader(iotest.OneByteReader(strings.NewReader(input)), mode)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), mode)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := map[string]Mode{
		"":        Default,
		"default": Default,
		"LF":      LF,
		"lf":      LF,
		"\n":      LF,
		`\n`:      LF,
		"CRLF":    CRLF,
		"\r\n":    CRLF,
		`\r\n`:    CRLF,
		" crlf ":  CRLF,
		"\tLF\n":  LF,
	}
	for in, want := range tests {
		got, err := ParseMode(in)
		require.NoError(t, err, "%q", in)
		assert.Equal(t, want, got, "%q", in)
	}

	_, err := ParseMode("cr")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestParseModeLiteralSequencesSelectTheirMode(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("\r\n")
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\r\n", Normalize("a\nb\r", m))

	m, err = ParseMode("\n")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", Normalize("a\r\nb\r", m))
}

func TestApply(t *testing.T) {
	t.Parallel()

	got, err := Apply("a\rb\r\n", LF)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", got)

	got, err = Apply("plain", CRLF)
	require.NoError(t, err)
	assert.Equal(t, "plain", got)

	_, err = Apply("a\nb", Mode("CR"))
	assert.ErrorIs(t, err, ErrInvalidMode)

	// Normalize keeps going with Default for the same mode
	assert.Equal(t, "a\nb", Normalize("a\r\nb", Mode("CR")))
}

func FuzzNormalizeLineEndings(f *testing.F) {
	for _, seed := range []string{"", "a\r\nb", "\r\r\n\n", "x\ry\nz", "\n\r"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		lf := Normalize(input, LF)
		if strings.Contains(lf, "\r") {
			t.Fatalf("LF output has a carriage return: %q", lf)
		}

		crlf := Normalize(input, CRLF)
		for i := 0; i < len(crlf); i++ {
			switch crlf[i] {
			case '\r':
				if i+1 == len(crlf) || crlf[i+1] != '\n' {
					t.Fatalf("lone CR at %d in %q", i, crlf)
				}
			case '\n':
				if i == 0 || crlf[i-1] != '\r' {
					t.Fatalf("lone LF at %d in %q", i, crlf)
				}
			}
		}

		if Normalize(lf, LF) != lf {
			t.Fatalf("LF normalization not idempotent for %q", input)
		}
		if Normalize(crlf, CRLF) != crlf {
			t.Fatalf("CRLF normalization not idempotent for %q", input)
		}
	})
}
