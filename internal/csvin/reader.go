package csvin

import (
	"fmt"

	"csv2json/internal/dialect"
	"csv2json/internal/eol"
)

// Rows is the tokenized input. Rows may differ in length.
type Rows [][]string

type Options struct {
	// Delimiter is a selector: "auto", `\t`, a name such as "semicolon", or a
	// single character. Empty means "auto".
	Delimiter string
	EOL       eol.Mode
}

type Result struct {
	Rows      Rows
	Delimiter dialect.Delimiter
}

// Parse normalizes line endings, resolves the delimiter against the normalized
// text and tokenizes it. Malformed quoting never fails; only an invalid
// delimiter selector or line ending mode does.
func Parse(text string, opt Options) (*Result, error) {
	mode := opt.EOL
	if mode == "" {
		mode = eol.Default
	}
	sel := opt.Delimiter
	if sel == "" {
		sel = dialect.Auto
	}

	src, err := eol.Apply(text, mode)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	d, err := dialect.Resolve(sel, src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return &Result{Rows: Tokenize(src, d), Delimiter: d}, nil
}
