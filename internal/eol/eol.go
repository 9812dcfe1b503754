// Package eol rewrites line endings to a single convention so the tokenizer
// only ever has to treat "\n" as a row terminator.
package eol

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/transform"
)

type Mode string

const (
	LF      Mode = "LF"
	CRLF    Mode = "CRLF"
	Default Mode = "default"
)

var ErrInvalidMode = errors.New("eol: invalid line ending mode")

// ParseMode accepts the mode names as well as the literal sequences "\n" and
// "\r\n" (raw or backslash-escaped). Empty means Default.
func ParseMode(s string) (Mode, error) {
	// the raw sequences are all whitespace, so match them before trimming
	switch s {
	case "\n":
		return LF, nil
	case "\r\n":
		return CRLF, nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "auto":
		return Default, nil
	case "lf", `\n`:
		return LF, nil
	case "crlf", `\r\n`:
		return CRLF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// NewTransformer returns the transformer for mode. Unknown modes behave like
// Default.
func NewTransformer(mode Mode) transform.Transformer {
	if mode == CRLF {
		return toCRLF{}
	}
	return toLF{}
}

// NewReader normalizes line endings of r while it is read.
func NewReader(r io.Reader, mode Mode) io.Reader {
	return transform.NewReader(r, NewTransformer(mode))
}

// Apply rewrites every line ending in text according to mode. Unlike
// NewTransformer it rejects unknown modes.
func Apply(text string, mode Mode) (string, error) {
	if !mode.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if !strings.ContainsAny(text, "\r\n") {
		return text, nil
	}
	out, _, err := transform.String(NewTransformer(mode), text)
	if err != nil {
		return "", fmt.Errorf("eol: %w", err)
	}
	return out, nil
}

// Normalize is Apply for callers with a known-good mode; unknown modes behave
// like Default. It panics if the transformer fails, which neither of them
// does on complete input.
func Normalize(text string, mode Mode) string {
	if !mode.Valid() {
		mode = Default
	}
	out, err := Apply(text, mode)
	if err != nil {
		panic(err)
	}
	return out
}

// toLF maps "\r\n" and lone "\r" to "\n".
type toLF struct{ transform.NopResetter }

func (toLF) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c == '\r' {
			if nSrc+1 == len(src) && !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = '\n'
			nDst++
			nSrc++
			if nSrc < len(src) && src[nSrc] == '\n' {
				nSrc++
			}
			continue
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = c
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}

// toCRLF maps lone "\r" and lone "\n" to "\r\n", leaving "\r\n" alone.
type toCRLF struct{ transform.NopResetter }

func (toCRLF) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c != '\r' && c != '\n' {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}
		if c == '\r' && nSrc+1 == len(src) && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		if nDst+2 > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = '\r'
		dst[nDst+1] = '\n'
		nDst += 2
		nSrc++
		if c == '\r' && nSrc < len(src) && src[nSrc] == '\n' {
			nSrc++
		}
	}
	return nDst, nSrc, nil
}

func (m Mode) Valid() bool {
	switch m {
	case LF, CRLF, Default:
		return true
	}
	return false
}
