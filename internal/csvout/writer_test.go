package csvout

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csv2json/internal/csvin"
	"csv2json/internal/dialect"
)

func TestWriteAll(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := New(&buf, dialect.Semicolon, false)
	require.NoError(t, w.WriteAll([][]string{{"a", "b;c"}, {`say "hi"`, ""}}))
	assert.Equal(t, "a;\"b;c\"\n\"say \"\"hi\"\"\";\n", buf.String())
}

func TestWriteCRLF(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := New(&buf, dialect.Tab, true)
	require.NoError(t, w.WriteRow([]string{"x", "y"}))
	require.NoError(t, w.Flush())
	assert.Equal(t, "x\ty\r\n", buf.String())
}

func TestRoundTripThroughTokenizer(t *testing.T) {
	t.Parallel()

	rows := csvin.Rows{{"name", "note"}, {"Chandru \"CJ\"", "line one\nline two"}, {"a,b", ""}}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, dialect.Comma, false).WriteAll(rows))

	got := csvin.Tokenize(buf.String(), dialect.Comma)
	assert.Equal(t, rows, got)
}

func TestInvalidDelimiter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := New(&buf, dialect.Delimiter('"'), false).WriteAll([][]string{{"a"}})
	assert.Error(t, err)
}
