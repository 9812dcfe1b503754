package iox

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadText(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"plain.csv", "packed.csv.gz"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, WriteText(path, "a,b\nč,ž\n"))

		got, err := ReadText(path)
		require.NoError(t, err)
		assert.Equal(t, "a,b\nč,ž\n", got, name)
	}
}

func TestGzipOnDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json.gz")
	require.NoError(t, WriteText(path, "[]"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = gzip.NewReader(f)
	assert.NoError(t, err)
}

func TestReadTextStripsBOM(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bom.csv")
	require.NoError(t, os.WriteFile(path, []byte("\xef\xbb\xbfname,age\n"), 0o644))

	got, err := ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, "name,age\n", got)
}

func TestReadTextUTF16(t *testing.T) {
	t.Parallel()

	// "a,b" in UTF-16LE with BOM
	path := filepath.Join(t.TempDir(), "utf16.csv")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 'a', 0, ',', 0, 'b', 0}, 0o644))

	got, err := ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b", got)
}

func TestReadTextMissing(t *testing.T) {
	t.Parallel()

	_, err := ReadText(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
