// Command zipsift scans a ZIP buffer for JSON entries and prints whatever
// decodes cleanly.
//
// The input is a file argument or stdin ("-"). Output is one compact JSON
// document per line; -array wraps the results into a single JSON array that
// keeps the entry names. Scan diagnostics go to stderr.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/meigma/zipsift"
)

type config struct {
	suffix   string
	contains string
	exclude  string
	dirs     bool
	platform bool
	zstd     bool
	schema   string
	maxSize  uint64
	array    bool
	stats    bool
	verbose  bool
}

func main() {
	cfg := parseFlags()

	data, err := readInput(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		log.Fatal(err)
	}
	x, err := zipsift.New(opts...)
	if err != nil {
		log.Fatal(err)
	}

	results, stats := x.Extract(data)

	if err := printResults(results, cfg.array); err != nil {
		log.Fatal(err)
	}
	if cfg.stats {
		printStats(stats)
	}
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.suffix, "suffix", ".json", "entry name suffix to select (empty selects every file)")
	flag.StringVar(&cfg.contains, "contains", "", "comma-separated substrings; entries must contain at least one")
	flag.StringVar(&cfg.exclude, "exclude", "", "comma-separated substrings; matching entries are dropped")
	flag.BoolVar(&cfg.dirs, "dirs", false, "include directory entries")
	flag.BoolVar(&cfg.platform, "platform", false, "include __MACOSX and .DS_Store entries")
	flag.BoolVar(&cfg.zstd, "zstd", false, "decode zstd entries (method 93)")
	flag.StringVar(&cfg.schema, "schema", "", "JSON Schema file; non-conforming payloads are dropped")
	flag.Uint64Var(&cfg.maxSize, "max-size", 0, "decoded payload size cap in bytes (0 keeps the default)")
	flag.BoolVar(&cfg.array, "array", false, "emit one JSON array with entry names instead of one document per line")
	flag.BoolVar(&cfg.stats, "stats", false, "print scan statistics to stderr")
	flag.BoolVar(&cfg.verbose, "v", false, "log per-entry skip decisions to stderr")
	flag.Parse()
	return cfg
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	return os.ReadFile(path)
}

func buildOptions(cfg config) ([]zipsift.Option, error) {
	opts := []zipsift.Option{zipsift.WithSuffix(cfg.suffix)}
	for _, s := range splitList(cfg.contains) {
		opts = append(opts, zipsift.WithPathContains(s))
	}
	for _, s := range splitList(cfg.exclude) {
		opts = append(opts, zipsift.WithExcludeContains(s))
	}
	if cfg.dirs {
		opts = append(opts, zipsift.WithDirectoryEntries(true))
	}
	if cfg.platform {
		opts = append(opts, zipsift.WithPlatformArtifacts(true))
	}
	if cfg.zstd {
		opts = append(opts, zipsift.WithDecompressor(zipsift.MethodZstd, zipsift.Zstd()))
	}
	if cfg.schema != "" {
		schema, err := os.ReadFile(cfg.schema)
		if err != nil {
			return nil, err
		}
		opts = append(opts, zipsift.WithSchema(string(schema)))
	}
	if cfg.maxSize > 0 {
		opts = append(opts, zipsift.WithMaxDecodedSize(cfg.maxSize))
	}
	if cfg.verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, zipsift.WithLogger(logger))
	}
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printResults(results []zipsift.Result, asArray bool) error {
	if asArray {
		type item struct {
			Name string          `json:"name"`
			Data json.RawMessage `json:"data"`
		}
		items := make([]item, len(results))
		for i, r := range results {
			items[i] = item{Name: r.Name, Data: r.JSON}
		}
		return json.NewEncoder(os.Stdout).Encode(items)
	}

	for _, r := range results {
		if _, err := fmt.Fprintf(os.Stdout, "%s\n", r.JSON); err != nil {
			return err
		}
	}
	return nil
}

func printStats(stats zipsift.Stats) {
	fmt.Fprintf(os.Stderr, "entries=%d matched=%d decoded=%d skipped=%d truncated=%t\n",
		stats.Entries, stats.Matched, stats.Decoded, len(stats.Skips), stats.Truncated)
	for _, s := range stats.Skips {
		fmt.Fprintf(os.Stderr, "skipped %s (entry %d, method %d): %s\n", s.Name, s.Entry, s.Method, s.Reason)
	}
}
