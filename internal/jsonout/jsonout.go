// Package jsonout renders mapped records as JSON text.
package jsonout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"

	"csv2json/internal/mapper"
)

type Mode string

const (
	Pretty Mode = "pretty"
	Min    Mode = "min"
)

const indent = "  "

var ErrInvalidMode = errors.New("jsonout: invalid output mode")

// HTML characters stay unescaped and invalid UTF-8 is replaced, matching what
// browsers produce for the same data.
var api = sonic.Config{ValidateString: true}.Froze()

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pretty", "beautify":
		return Pretty, nil
	case "min", "minify", "compact":
		return Min, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Format renders v. Pretty output is indented by two spaces; Min output has no
// insignificant whitespace.
func Format(v any, mode Mode) (string, error) {
	var (
		b   []byte
		err error
	)
	switch mode {
	case Pretty:
		b, err = api.MarshalIndent(v, "", indent)
	case Min:
		b, err = api.Marshal(v)
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if err != nil {
		return "", fmt.Errorf("jsonout: marshal: %w", err)
	}
	return string(b), nil
}

// WriteLines writes one compact JSON record per line (JSON Lines).
func WriteLines(w io.Writer, records []mapper.Record) error {
	bw := bufio.NewWriterSize(w, 1<<20)
	for i, rec := range records {
		b, err := api.Marshal(rec)
		if err != nil {
			return fmt.Errorf("jsonout: record %d: %w", i, err)
		}
		if _, err := bw.Write(b); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
