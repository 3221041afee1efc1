// Command synth generates synthetic incident payloads as JSONL for load
// tests and pipeline demos.
// Usage: go run ./cmd/synth -count 1000 -out synthetic_incidents.jsonl
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"firescribe/internal/synth"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	count := flag.Int("count", 1000, "Number of incidents to generate")
	out := flag.String("out", "synthetic_incidents.jsonl", "Output JSONL path")
	rate := flag.Float64("inconsistency-rate", 0.3,
		"Fraction of incidents whose narrative mentions exposures while the exposures list is empty")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := synth.NewGenerator(*seed, *rate).WriteJSONL(f, *count); err != nil {
		return err
	}

	fmt.Printf("Wrote %d synthetic incidents to %s\n", *count, *out)
	return nil
}
