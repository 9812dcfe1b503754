// Package convert runs the CSV to JSON pipeline: normalize, tokenize, map and
// serialize. Both front ends go through Run so they share input checks.
package convert

import (
	"errors"
	"fmt"
	"strings"

	"csv2json/internal/csvin"
	"csv2json/internal/dialect"
	"csv2json/internal/eol"
	"csv2json/internal/jsonout"
	"csv2json/internal/mapper"
)

// ErrEmptyInput is returned for blank input; the pipeline is not invoked.
var ErrEmptyInput = errors.New("empty input: paste or upload CSV first")

// Sample is the demo input offered by both front ends.
const Sample = "name,age,city\n\"Alice\",30,Chennai\n\"Bob\",27,\"Bengaluru\"\n\"Chandru \"\"CJ\"\"\",33,\"Hyderabad\""

type Options struct {
	Delimiter string
	EOL       eol.Mode
	HasHeader bool
	Empty     mapper.EmptyPolicy
	Mode      jsonout.Mode
	KeepExtra bool
}

// DefaultOptions mirrors the initial state of the converter form.
func DefaultOptions() Options {
	return Options{
		Delimiter: dialect.Auto,
		EOL:       eol.Default,
		HasHeader: true,
		Empty:     mapper.KeepEmpty,
		Mode:      jsonout.Pretty,
	}
}

type Result struct {
	Records   []mapper.Record
	JSON      string
	Mode      jsonout.Mode
	Delimiter dialect.Delimiter
	Stats     csvin.Stats
}

// Render serializes the records again in another mode.
func (r *Result) Render(mode jsonout.Mode) (string, error) {
	if mode == r.Mode {
		return r.JSON, nil
	}
	return jsonout.Format(r.Records, mode)
}

func Run(text string, opt Options) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if opt.Mode == "" {
		opt.Mode = jsonout.Pretty
	}
	if opt.Empty == "" {
		opt.Empty = mapper.KeepEmpty
	}

	parsed, err := csvin.Parse(text, csvin.Options{Delimiter: opt.Delimiter, EOL: opt.EOL})
	if err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}
	recs, err := mapper.Map(parsed.Rows, mapper.Options{
		HasHeader: opt.HasHeader,
		Empty:     opt.Empty,
		KeepExtra: opt.KeepExtra,
	})
	if err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}
	out, err := jsonout.Format(recs, opt.Mode)
	if err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}

	return &Result{
		Records:   recs,
		JSON:      out,
		Mode:      opt.Mode,
		Delimiter: parsed.Delimiter,
		Stats:     csvin.Analyze(parsed.Rows),
	}, nil
}
