package main

import (
	"flag"
	"fmt"

	"csv2json/internal/config"
)

// DefaultOut is used by the convert stage when reading from a file.
const DefaultOut = "converted.json"

// conversionFlags registers the flags that override conversion defaults.
func conversionFlags(fs *flag.FlagSet) {
	fs.String("delimiter", "auto", "Delimiter: auto | comma | semicolon | tab | pipe | \\t | any single character")
	fs.String("eol", "default", "Line endings: default | lf | crlf")
	fs.Bool("header", true, "First row is the header")
	fs.String("empty", "empty", "Empty cells: empty | null | omit")
	fs.String("mode", "pretty", "JSON output: pretty | min")
	fs.Bool("keep-extra", false, "Keep cells past the header as col_N keys")
}

// resolveConfig layers the settings: env (and .env), then the profile at
// profilePath, then the conversion flags explicitly set on fs.
func resolveConfig(fs *flag.FlagSet, profilePath string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}
	if profilePath != "" {
		p, err := config.LoadProfile(profilePath)
		if err != nil {
			return nil, fmt.Errorf("profile load error: %w", err)
		}
		cfg.Apply(p)
	}
	applyFlags(cfg, fs)
	return cfg, nil
}

func applyFlags(cfg *config.Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.(flag.Getter).Get()
		switch f.Name {
		case "delimiter":
			cfg.Delimiter = v.(string)
		case "eol":
			cfg.EOL = v.(string)
		case "header":
			cfg.HasHeader = v.(bool)
		case "empty":
			cfg.Empty = v.(string)
		case "mode":
			cfg.Mode = v.(string)
		case "keep-extra":
			cfg.KeepExtra = v.(bool)
		}
	})
}

// outputPath picks the destination. Only the convert stage reading a file (or
// the sample) defaults to DefaultOut; everything else defaults to stdout.
func outputPath(stage, in, out string, sample bool) string {
	if out != "" {
		return out
	}
	if stage == "convert" && (sample || !isStdio(in)) {
		return DefaultOut
	}
	return ""
}
