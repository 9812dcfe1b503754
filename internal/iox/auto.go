package iox

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Stdio is the path that stands for stdin or stdout.
const Stdio = "-"

func OpenAuto(path string) (io.ReadCloser, error) {
	if path == Stdio || path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &rc{Reader: gr, Closers: []io.Closer{gr, f}}, nil
	}
	return f, nil
}

func CreateAuto(path string) (io.WriteCloser, error) {
	if path == Stdio || path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		gw := gzip.NewWriter(f)
		return &wc{Writer: gw, Closers: []io.Closer{gw, f}}, nil
	}
	return f, nil
}

// NewTextReader decodes r as UTF-8 text. A byte order mark is stripped, and
// UTF-16 input announced by its BOM is converted.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadText reads a whole input file (or stdin) as text.
func ReadText(path string) (string, error) {
	in, err := OpenAuto(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	b, err := io.ReadAll(NewTextReader(in))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteText writes text to path (or stdout), compressing for .gz.
func WriteText(path, text string) error {
	out, err := CreateAuto(path)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, text); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

type rc struct {
	io.Reader
	Closers []io.Closer
}

func (r *rc) Close() error {
	var err error
	for i := range r.Closers {
		if e := r.Closers[i].Close(); err == nil && e != nil {
			err = e
		}
	}
	return err
}

type wc struct {
	io.Writer
	Closers []io.Closer
}

func (w *wc) Close() error {
	var err error
	for i := range w.Closers {
		if e := w.Closers[i].Close(); err == nil && e != nil {
			err = e
		}
	}
	return err
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
