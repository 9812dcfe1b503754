package csvout

import (
	"bufio"
	"encoding/csv"
	"io"

	"csv2json/internal/dialect"
)

// Writer emits rows as delimited text, quoting fields where needed.
type Writer struct {
	w   *csv.Writer
	buf *bufio.Writer
}

func New(w io.Writer, delim dialect.Delimiter, useCRLF bool) *Writer {
	bw := bufio.NewWriterSize(w, 1<<20)
	cw := csv.NewWriter(bw)
	if delim != 0 {
		cw.Comma = rune(delim)
	}
	cw.UseCRLF = useCRLF
	return &Writer{
		w:   cw,
		buf: bw,
	}
}

func (cw *Writer) WriteRow(row []string) error {
	return cw.w.Write(row)
}

func (cw *Writer) WriteAll(rows [][]string) error {
	for _, row := range rows {
		if err := cw.w.Write(row); err != nil {
			return err
		}
	}
	return cw.Flush()
}

func (cw *Writer) Flush() error {
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return err
	}
	return cw.buf.Flush()
}
