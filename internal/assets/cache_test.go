package assets

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrigin() fstest.MapFS {
	return fstest.MapFS{
		"index.html":           {Data: []byte("<h1>v1</h1>")},
		"app.js":               {Data: []byte("console.log(1)")},
		"manifest.webmanifest": {Data: []byte("{}")},
		"extra.txt":            {Data: []byte("not in manifest")},
	}
}

func TestInstallCachesManifest(t *testing.T) {
	t.Parallel()

	origin := testOrigin()
	st := NewStorage()
	w := NewWorker(st, origin)
	require.NoError(t, w.Install())
	assert.Equal(t, []string{CacheName}, st.Names())

	// origin changes are not visible for cached entries
	origin["index.html"] = &fstest.MapFile{Data: []byte("<h1>v2</h1>")}
	b, err := w.Fetch("/")
	require.NoError(t, err)
	assert.Equal(t, "<h1>v1</h1>", string(b))

	b, err = w.Fetch("/extra.txt")
	require.NoError(t, err)
	assert.Equal(t, "not in manifest", string(b))
	_, cached := st.Match("/extra.txt")
	assert.False(t, cached)
}

func TestInstallIsAllOrNothing(t *testing.T) {
	t.Parallel()

	origin := testOrigin()
	delete(origin, "app.js")
	st := NewStorage()
	err := NewWorker(st, origin).Install()
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, st.Names())
}

func TestActivateEvictsOtherVersions(t *testing.T) {
	t.Parallel()

	st := NewStorage()
	st.Put("csv2json-cache-v0", "/index.html", []byte("stale"))

	w := NewWorker(st, testOrigin())
	require.NoError(t, w.Install())

	// the stale cache is older and still wins until activation
	b, _ := st.Match("/index.html")
	assert.Equal(t, "stale", string(b))

	assert.Equal(t, []string{"csv2json-cache-v0"}, w.Activate())
	assert.Equal(t, []string{CacheName}, st.Names())

	b, err := w.Fetch("/index.html")
	require.NoError(t, err)
	assert.Equal(t, "<h1>v1</h1>", string(b))
	assert.Empty(t, w.Activate())
}

func TestServeHTTP(t *testing.T) {
	t.Parallel()

	w := NewWorker(NewStorage(), Static())
	require.NoError(t, w.Install())

	tests := []struct {
		path   string
		status int
		ctype  string
	}{
		{path: "/", status: http.StatusOK, ctype: "text/html; charset=utf-8"},
		{path: "/app.js", status: http.StatusOK, ctype: "text/javascript; charset=utf-8"},
		{path: "/manifest.webmanifest", status: http.StatusOK, ctype: "application/manifest+json"},
		{path: "/missing.css", status: http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		w.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, tc.path)
		if tc.ctype != "" {
			assert.Equal(t, tc.ctype, rec.Header().Get("Content-Type"), tc.path)
		}
	}

	rec := httptest.NewRecorder()
	w.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
