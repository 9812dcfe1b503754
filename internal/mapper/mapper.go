package mapper

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// EmptyPolicy decides how a zero-length cell shows up in the output.
type EmptyPolicy string

const (
	KeepEmpty EmptyPolicy = "empty"
	Null      EmptyPolicy = "null"
	Omit      EmptyPolicy = "omit"
)

var ErrInvalidPolicy = errors.New("mapper: invalid empty policy")

// invalid UTF-8 in cells becomes U+FFFD instead of leaking into the JSON
var encoder = sonic.Config{ValidateString: true}.Froze()

func ParseEmptyPolicy(s string) (EmptyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "empty", "keep":
		return KeepEmpty, nil
	case "null":
		return Null, nil
	case "omit":
		return Omit, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
}

func (p EmptyPolicy) Valid() bool {
	return p == KeepEmpty || p == Null || p == Omit
}

// Record is one output value per data row: *Object in header mode, Array
// otherwise.
type Record interface {
	record()
}

// Array holds the values of a headerless row. A nil element is JSON null.
type Array []*string

func (Array) record() {}

// Object is an insertion-ordered string map. Setting an existing key replaces
// its value but keeps its position.
type Object struct {
	keys []string
	vals map[string]*string
}

func NewObject(capacity int) *Object {
	return &Object{
		keys: make([]string, 0, capacity),
		vals: make(map[string]*string, capacity),
	}
}

func (*Object) record() {}

func (o *Object) Set(key string, v *string) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *Object) Get(key string) (*string, bool) {
	v, ok := o.vals[key]
	return v, ok
}

func (o *Object) Keys() []string { return o.keys }

func (o *Object) Len() int { return len(o.keys) }

// MarshalJSON writes the keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := encoder.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := encoder.Marshal(o.vals[k])
		if err != nil {
			return nil, fmt.Errorf("value of %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type Options struct {
	HasHeader bool
	Empty     EmptyPolicy
	// KeepExtra keeps cells beyond the header width under col_<n> keys.
	KeepExtra bool
}

// MapRows converts tokenized rows into records. In header mode row 0 supplies
// the keys; otherwise every row becomes an Array.
func MapRows(rows [][]string, hasHeader bool, policy EmptyPolicy) ([]Record, error) {
	return Map(rows, Options{HasHeader: hasHeader, Empty: policy})
}

func Map(rows [][]string, opt Options) ([]Record, error) {
	if !opt.Empty.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPolicy, opt.Empty)
	}
	out := make([]Record, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	if !opt.HasHeader {
		for _, row := range rows {
			arr := make(Array, 0, len(row))
			for _, val := range row {
				if v, ok := apply(opt.Empty, val); ok {
					arr = append(arr, v)
				}
			}
			out = append(out, arr)
		}
		return out, nil
	}

	header := rows[0]
	for _, row := range rows[1:] {
		width := len(header)
		if opt.KeepExtra && len(row) > width {
			width = len(row)
		}
		obj := NewObject(width)
		for c := 0; c < width; c++ {
			val := ""
			if c < len(row) {
				val = row[c]
			}
			if v, ok := apply(opt.Empty, val); ok {
				obj.Set(headerKey(header, c), v)
			}
		}
		out = append(out, obj)
	}
	return out, nil
}

// headerKey falls back to col_<n> (1-based) where the header has no cell.
func headerKey(header []string, c int) string {
	if c < len(header) {
		return header[c]
	}
	return "col_" + strconv.Itoa(c+1)
}

// apply reports the value to store for val and whether to store it at all.
func apply(policy EmptyPolicy, val string) (*string, bool) {
	if val != "" {
		return &val, true
	}
	switch policy {
	case Null:
		return nil, true
	case Omit:
		return nil, false
	default:
		return &val, true
	}
}

// Str returns a pointer to s.
func Str(s string) *string { return &s }
