package dialect

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

type Delimiter rune

const (
	Comma     Delimiter = ','
	Semicolon Delimiter = ';'
	Tab       Delimiter = '\t'
	Pipe      Delimiter = '|'
)

// Auto selects the delimiter by sampling the input.
const Auto = "auto"

// SampleSize is how many characters Detect inspects.
const SampleSize = 2000

// Candidates in tie-break order.
var Candidates = []Delimiter{Comma, Semicolon, Tab, Pipe}

var ErrInvalidDelimiter = errors.New("dialect: invalid delimiter")

var names = map[Delimiter]string{
	Comma:     "comma",
	Semicolon: "semicolon",
	Tab:       "tab",
	Pipe:      "pipe",
}

func (d Delimiter) String() string {
	if n, ok := names[d]; ok {
		return n
	}
	return string(rune(d))
}

// Detect guesses the field separator by literal frequency over the first
// SampleSize characters. Quotes are not taken into account.
func Detect(sample string) Delimiter {
	counts := make([]int, len(Candidates))
	n := 0
	for _, r := range sample {
		if n == SampleSize {
			break
		}
		n++
		for i, c := range Candidates {
			if r == rune(c) {
				counts[i]++
				break
			}
		}
	}

	best, max := 0, 0
	for i, c := range counts {
		if c > max {
			best, max = i, c
		}
	}
	if max == 0 {
		return Comma
	}
	return Candidates[best]
}

// Resolve turns a delimiter selector into the delimiter for a parse run.
// text is the normalized input, consulted only for "auto".
func Resolve(selector, text string) (Delimiter, error) {
	switch strings.ToLower(selector) {
	case Auto:
		return Detect(text), nil
	case `\t`, "tab":
		return Tab, nil
	case "comma":
		return Comma, nil
	case "semicolon":
		return Semicolon, nil
	case "pipe":
		return Pipe, nil
	case "":
		return 0, fmt.Errorf("%w: empty selector", ErrInvalidDelimiter)
	}
	r, size := utf8.DecodeRuneInString(selector)
	if size != len(selector) || r == utf8.RuneError {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, selector)
	}
	if r == '"' || r == '\n' || r == '\r' {
		return 0, fmt.Errorf("%w: %q is reserved", ErrInvalidDelimiter, selector)
	}
	return Delimiter(r), nil
}
