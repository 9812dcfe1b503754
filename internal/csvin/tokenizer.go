package csvin

import (
	"strings"
	"unicode/utf8"

	"csv2json/internal/dialect"
)

const quote = '"'

type state int

const (
	unquoted state = iota
	quoted
)

type tokenizer struct {
	delim rune
	state state
	field strings.Builder
	row   []string
	rows  Rows
}

// Tokenize splits normalized text into rows of fields. Only "\n" terminates a
// row. A quote outside a quoted field toggles into quoted state and is not kept;
// an unterminated quoted field runs to the end of input.
func Tokenize(text string, delim dialect.Delimiter) Rows {
	t := &tokenizer{delim: rune(delim)}
	for i := 0; i < len(text); {
		i += t.step(text, i)
	}
	t.endRow()

	// a trailing terminator leaves one spurious empty row
	if last := t.rows[len(t.rows)-1]; len(last) == 1 && last[0] == "" {
		t.rows = t.rows[:len(t.rows)-1]
	}
	return t.rows
}

// step consumes the character at text[i] and returns how many bytes it used.
func (t *tokenizer) step(text string, i int) int {
	r, size := utf8.DecodeRuneInString(text[i:])

	switch t.state {
	case quoted:
		if r != quote {
			t.field.WriteString(text[i : i+size])
			return size
		}
		if i+1 < len(text) && text[i+1] == quote {
			t.field.WriteByte(quote)
			return 2
		}
		t.state = unquoted
		return size

	default:
		switch r {
		case quote:
			t.state = quoted
		case t.delim:
			t.endField()
		case '\n':
			t.endRow()
		default:
			t.field.WriteString(text[i : i+size])
		}
		return size
	}
}

func (t *tokenizer) endField() {
	t.row = append(t.row, t.field.String())
	t.field.Reset()
}

func (t *tokenizer) endRow() {
	t.endField()
	t.rows = append(t.rows, t.row)
	t.row = nil
}
