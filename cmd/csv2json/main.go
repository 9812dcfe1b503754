package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"csv2json/internal/config"
	"csv2json/internal/convert"
	"csv2json/internal/csvin"
	"csv2json/internal/csvout"
	"csv2json/internal/dialect"
	"csv2json/internal/eol"
	"csv2json/internal/iox"
	"csv2json/internal/jsonout"
	"csv2json/internal/store"
)

var version = "v1.0"

func main() {
	// Common I/O + stage
	inPath := flag.String("in", "", "Input file path (.gz ok, - or empty = stdin)")
	outPath := flag.String("out", "", "Output file path (- = stdout; convert defaults to "+DefaultOut+")")
	stage := flag.String("stage", "convert", "Stage: convert | detect | normalize | parse | history")
	profilePath := flag.String("config", "", "Conversion profile (.json or .yaml)")

	// Conversion options; unset flags fall back to env / profile
	conversionFlags(flag.CommandLine)

	format := flag.String("format", "json", "Output format: json | jsonl")
	useSample := flag.Bool("sample", false, "Convert the built-in sample instead of -in")
	save := flag.Bool("save", false, "Record the conversion in the history store")

	// History
	limit := flag.Int("limit", 20, "Number of conversions listed by the history stage")
	convID := flag.String("id", "", "Print the stored records of one conversion (history stage)")

	showPlan := flag.Bool("plan", false, "Show plan and exit")
	flag.Parse()

	cfg, err := resolveConfig(flag.CommandLine, *profilePath)
	if err != nil {
		log.Fatal(err)
	}
	out := outputPath(*stage, *inPath, *outPath, *useSample)

	if *showPlan {
		fmt.Printf("==== csv2json %s Execution Plan ====\n", version)
		fmt.Printf("Stage              : %s\n", *stage)
		fmt.Printf("Input              : %s\n", describe(*inPath, *useSample))
		fmt.Printf("Output             : %s\n", describeOut(out))
		fmt.Printf("Delimiter          : %s\n", cfg.Delimiter)
		fmt.Printf("Line endings       : %s\n", cfg.EOL)
		fmt.Printf("Header row         : %v\n", cfg.HasHeader)
		fmt.Printf("Empty cells        : %s\n", cfg.Empty)
		fmt.Printf("JSON mode          : %s\n", cfg.Mode)
		fmt.Printf("Format             : %s\n", *format)
		fmt.Printf("Keep extra cells   : %v\n", cfg.KeepExtra)
		fmt.Printf("Save to history    : %v (DB_DRIVER=%q)\n", *save, cfg.DBDriver)
		return
	}

	start := time.Now()
	defer func() {
		log.Printf("⏱️ completed in %v", time.Since(start))
	}()

	ctx := context.Background()

	switch *stage {
	case "convert":
		if err := runConvert(ctx, cfg, *inPath, out, *format, *useSample, *save); err != nil {
			log.Fatal(err)
		}
		log.Println("✅ CSV → JSON conversion complete")

	case "detect":
		if err := runDetect(*inPath, *useSample); err != nil {
			log.Fatal(err)
		}

	case "normalize":
		if err := runNormalize(cfg, *inPath, out); err != nil {
			log.Fatal(err)
		}
		log.Println("✅ Line ending normalization complete")

	case "parse":
		if err := runParse(cfg, *inPath, out, *useSample); err != nil {
			log.Fatal(err)
		}
		log.Println("✅ Parse complete")

	case "history":
		if err := runHistory(ctx, cfg, *limit, *convID); err != nil {
			log.Fatal(err)
		}

	default:
		log.Fatalf("unknown stage: %s", *stage)
	}
}

func isStdio(path string) bool { return path == "" || path == iox.Stdio }

func describe(in string, sample bool) string {
	if sample {
		return "(built-in sample)"
	}
	if isStdio(in) {
		return "(stdin)"
	}
	return in
}

func describeOut(out string) string {
	if isStdio(out) {
		return "(stdout)"
	}
	return out
}

func readInput(inPath string, sample bool) (string, error) {
	if sample {
		return convert.Sample, nil
	}
	text, err := iox.ReadText(inPath)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return text, nil
}

// ---------- STAGE: convert ----------
func runConvert(ctx context.Context, cfg *config.Config, inPath, outPath, format string, sample, save bool) error {
	if !sample && !isStdio(inPath) && inPath == outPath {
		return fmt.Errorf("convert: input and output paths must differ (got %q)", inPath)
	}
	opt, err := cfg.ConvertOptions()
	if err != nil {
		return err
	}
	text, err := readInput(inPath, sample)
	if err != nil {
		return err
	}

	res, err := convert.Run(text, opt)
	if err != nil {
		return err
	}
	log.Printf("convert: delimiter=%s rows=%d records=%d fields=%d..%d",
		res.Delimiter, res.Stats.Rows, len(res.Records), res.Stats.MinFields, res.Stats.MaxFields)
	if res.Stats.Ragged() {
		log.Printf("convert: WARNING: rows have differing field counts (%d..%d)", res.Stats.MinFields, res.Stats.MaxFields)
	}

	switch format {
	case "json":
		if err := iox.WriteText(outPath, res.JSON); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	case "jsonl":
		w, err := iox.CreateAuto(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := jsonout.WriteLines(w, res.Records); err != nil {
			w.Close()
			return fmt.Errorf("write output: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
	default:
		return fmt.Errorf("convert: unknown format %q (use json or jsonl)", format)
	}

	if !save {
		return nil
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer st.Close()

	source := inPath
	if sample {
		source = "sample"
	} else if isStdio(inPath) {
		source = "stdin"
	}
	saved, err := st.Save(ctx, store.Conversion{
		Source:    source,
		Delimiter: res.Delimiter.String(),
		HasHeader: opt.HasHeader,
		Empty:     string(opt.Empty),
		Rows:      res.Stats.Rows,
	}, res.Records)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	log.Printf("convert: saved as %s", saved.ID)
	return nil
}

// ---------- STAGE: detect ----------
func runDetect(inPath string, sample bool) error {
	text, err := readInput(inPath, sample)
	if err != nil {
		return err
	}
	fmt.Println(dialect.Detect(text))
	return nil
}

// ---------- STAGE: normalize ----------
func runNormalize(cfg *config.Config, inPath, outPath string) error {
	if !isStdio(inPath) && inPath == outPath {
		return fmt.Errorf("normalize: input and output paths must differ (got %q)", inPath)
	}
	mode, err := eol.ParseMode(cfg.EOL)
	if err != nil {
		return err
	}
	if mode == eol.Default {
		log.Printf("normalize: eol mode is %q, normalizing to LF", mode)
	}

	in, err := iox.OpenAuto(inPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := iox.CreateAuto(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	n, err := io.Copy(out, eol.NewReader(iox.NewTextReader(in), mode))
	if err != nil {
		out.Close()
		return fmt.Errorf("normalize: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	log.Printf("normalize done. bytes=%d mode=%s", n, mode)
	return nil
}

// ---------- STAGE: parse ----------
// Rows are tokenized on LF-normalized text and written back as RFC 4180
// records, terminated with CRLF when -eol crlf is chosen.
func runParse(cfg *config.Config, inPath, outPath string, sample bool) error {
	mode, err := eol.ParseMode(cfg.EOL)
	if err != nil {
		return err
	}
	text, err := readInput(inPath, sample)
	if err != nil {
		return err
	}
	res, err := csvin.Parse(text, csvin.Options{Delimiter: cfg.Delimiter, EOL: eol.LF})
	if err != nil {
		return err
	}
	stats := csvin.Analyze(res.Rows)
	log.Printf("parse: delimiter=%s rows=%d fields=%d..%d", res.Delimiter, stats.Rows, stats.MinFields, stats.MaxFields)

	out, err := iox.CreateAuto(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := csvout.New(out, res.Delimiter, mode == eol.CRLF).WriteAll(res.Rows); err != nil {
		out.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	return out.Close()
}

// ---------- STAGE: history ----------
func runHistory(ctx context.Context, cfg *config.Config, limit int, id string) error {
	st, err := store.Open(ctx, cfg)
	if errors.Is(err, store.ErrDisabled) {
		return fmt.Errorf("history: set DB_DRIVER=mysql or DB_DRIVER=sqlite")
	}
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer st.Close()

	if id != "" {
		records, err := st.Records(ctx, id)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		for _, r := range records {
			fmt.Fprintln(os.Stdout, r)
		}
		return nil
	}

	list, err := st.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if len(list) == 0 {
		log.Printf("history: no conversions recorded")
		return nil
	}
	for _, c := range list {
		fmt.Printf("%s  %s  %-9s header=%-5v empty=%-5s rows=%-6d records=%-6d %s\n",
			c.ID, c.CreatedAt.Format(time.RFC3339), c.Delimiter, c.HasHeader, c.Empty, c.Rows, c.Records, c.Source)
	}
	return nil
}
