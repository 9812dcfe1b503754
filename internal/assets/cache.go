// Package assets serves the web front end through a versioned, cache-first
// asset cache. Install pre-loads a fixed manifest, Activate drops caches left
// by other versions.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
)

// CacheName is bumped whenever the bundled assets change.
const CacheName = "csv2json-cache-v1"

// Manifest lists the request paths cached at install time.
var Manifest = []string{
	"/",
	"/index.html",
	"/app.js",
	"/manifest.webmanifest",
}

//go:embed static
var static embed.FS

// Static returns the bundled front end.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Storage holds named caches of request path to body.
type Storage struct {
	mu     sync.RWMutex
	order  []string
	caches map[string]map[string][]byte
}

func NewStorage() *Storage {
	return &Storage{caches: make(map[string]map[string][]byte)}
}

func (s *Storage) Put(cache, key string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caches[cache]
	if !ok {
		c = make(map[string][]byte)
		s.caches[cache] = c
		s.order = append(s.order, cache)
	}
	c[key] = body
}

// Match looks key up in every cache, oldest first.
func (s *Storage) Match(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, name := range s.order {
		if b, ok := s.caches[name][key]; ok {
			return b, true
		}
	}
	return nil, false
}

func (s *Storage) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

func (s *Storage) Delete(cache string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.caches[cache]; !ok {
		return false
	}
	delete(s.caches, cache)
	for i, n := range s.order {
		if n == cache {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Worker answers asset requests from Storage, falling back to Origin.
type Worker struct {
	Name     string
	Manifest []string
	Origin   fs.FS

	storage *Storage
}

func NewWorker(storage *Storage, origin fs.FS) *Worker {
	return &Worker{
		Name:     CacheName,
		Manifest: Manifest,
		Origin:   origin,
		storage:  storage,
	}
}

// Install caches every manifest entry. Nothing is stored unless all of them
// can be read.
func (w *Worker) Install() error {
	bodies := make(map[string][]byte, len(w.Manifest))
	for _, key := range w.Manifest {
		b, err := fs.ReadFile(w.Origin, originPath(key))
		if err != nil {
			return fmt.Errorf("assets: install %s: %w", key, err)
		}
		bodies[key] = b
	}
	for key, b := range bodies {
		w.storage.Put(w.Name, key, b)
	}
	return nil
}

// Activate evicts every cache not named w.Name and returns the evicted names.
func (w *Worker) Activate() []string {
	var evicted []string
	for _, name := range w.storage.Names() {
		if name != w.Name && w.storage.Delete(name) {
			evicted = append(evicted, name)
		}
	}
	return evicted
}

// Fetch is cache-first; misses go to the origin and are not cached.
func (w *Worker) Fetch(key string) ([]byte, error) {
	if b, ok := w.storage.Match(key); ok {
		return b, nil
	}
	return fs.ReadFile(w.Origin, originPath(key))
}

func (w *Worker) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	b, err := w.Fetch(r.URL.Path)
	if err != nil {
		http.NotFound(rw, r)
		return
	}
	rw.Header().Set("Content-Type", contentType(originPath(r.URL.Path)))
	if r.Method == http.MethodHead {
		return
	}
	_, _ = rw.Write(b)
}

var contentTypes = map[string]string{
	".html":        "text/html; charset=utf-8",
	".js":          "text/javascript; charset=utf-8",
	".webmanifest": "application/manifest+json",
	".png":         "image/png",
}

func contentType(p string) string {
	ext := path.Ext(p)
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func originPath(key string) string {
	p := strings.TrimPrefix(path.Clean("/"+key), "/")
	if p == "" {
		return "index.html"
	}
	return p
}
