package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csv2json/internal/eol"
	"csv2json/internal/jsonout"
	"csv2json/internal/mapper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Delimiter)
	assert.True(t, cfg.HasHeader)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, int64(10<<20), cfg.MaxBody)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)

	opt, err := cfg.ConvertOptions()
	require.NoError(t, err)
	assert.Equal(t, eol.Default, opt.EOL)
	assert.Equal(t, mapper.KeepEmpty, opt.Empty)
	assert.Equal(t, jsonout.Pretty, opt.Mode)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CSV2JSON_DELIMITER", ";")
	t.Setenv("CSV2JSON_EOL", "CRLF")
	t.Setenv("CSV2JSON_HEADER", "false")
	t.Setenv("CSV2JSON_EMPTY", "omit")
	t.Setenv("CSV2JSON_MODE", "min")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_QUERY_TIMEOUT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)

	opt, err := cfg.ConvertOptions()
	require.NoError(t, err)
	assert.Equal(t, ";", opt.Delimiter)
	assert.Equal(t, eol.CRLF, opt.EOL)
	assert.False(t, opt.HasHeader)
	assert.Equal(t, mapper.Omit, opt.Empty)
	assert.Equal(t, jsonout.Min, opt.Mode)
}

func TestConvertOptionsRejectsBadValues(t *testing.T) {
	cfg := &Config{EOL: "default", Empty: "sometimes", Mode: "pretty"}
	_, err := cfg.ConvertOptions()
	assert.ErrorIs(t, err, mapper.ErrInvalidPolicy)

	cfg = &Config{EOL: "CR", Empty: "empty", Mode: "pretty"}
	_, err = cfg.ConvertOptions()
	assert.ErrorIs(t, err, eol.ErrInvalidMode)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadProfileYAML(t *testing.T) {
	path := writeFile(t, "tsv.yaml", "delimiter: \"\\\\t\"\nheader: false\nempty: null\n")

	p, err := LoadProfile(path)
	require.NoError(t, err)

	cfg := &Config{Delimiter: "auto", HasHeader: true, Empty: "empty", Mode: "pretty", EOL: "LF"}
	cfg.Apply(p)
	assert.Equal(t, `\t`, cfg.Delimiter)
	assert.False(t, cfg.HasHeader)
	// a YAML null leaves the field unset
	assert.Equal(t, "empty", cfg.Empty)
	assert.Equal(t, "LF", cfg.EOL)
}

func TestLoadProfileJSON(t *testing.T) {
	path := writeFile(t, "min.json", `{"mode":"min","empty":"null","keepExtra":true}`)

	p, err := LoadProfile(path)
	require.NoError(t, err)

	cfg := &Config{Mode: "pretty", Empty: "empty", EOL: "default"}
	cfg.Apply(p)
	assert.Equal(t, "min", cfg.Mode)
	assert.Equal(t, "null", cfg.Empty)
	assert.True(t, cfg.KeepExtra)

	opt, err := cfg.ConvertOptions()
	require.NoError(t, err)
	assert.Equal(t, mapper.Null, opt.Empty)
}

func TestLoadProfileErrors(t *testing.T) {
	_, err := LoadProfile(writeFile(t, "p.toml", "mode = 'min'"))
	assert.ErrorContains(t, err, "unsupported profile format")

	_, err = LoadProfile(writeFile(t, "bad.json", "{"))
	assert.Error(t, err)

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	var cfg Config
	cfg.Apply(nil)
	assert.Equal(t, Config{}, cfg)
}
