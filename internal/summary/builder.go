package summary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Default locations, relative to the working directory.
const (
	DefaultInput  = "data/answers.csv"
	DefaultOutput = "site/out/summary.json"
)

// Builder reads the answers CSV and writes the summary document
type Builder struct {
	input  string
	output string
	now    func() time.Time
	log    logrus.FieldLogger
}

// Option customizes a Builder
type Option func(*Builder)

// WithClock overrides the clock used for generated_at.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a builder for the given input and output paths
func NewBuilder(input, output string, log logrus.FieldLogger, opts ...Option) *Builder {
	if input == "" {
		input = DefaultInput
	}
	if output == "" {
		output = DefaultOutput
	}
	b := &Builder{
		input:  input,
		output: output,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Output returns the path the summary is written to.
func (b *Builder) Output() string {
	return b.output
}

// Run builds and writes the summary. It reports whether a file was written;
// a missing or empty input is a successful no-op.
func (b *Builder) Run() (bool, error) {
	raw, err := os.ReadFile(b.input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.log.WithField("input", b.input).Info("no answers file")
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", b.input, err)
	}

	_, rows, ok := Parse(string(raw))
	if !ok {
		b.log.WithField("input", b.input).Info("nothing to summarize")
		return false, nil
	}

	s := Summarize(rows, b.now())
	if err := Write(b.output, s); err != nil {
		return false, err
	}

	b.log.WithFields(logrus.Fields{
		"output":         b.output,
		"total_rows":     s.TotalRows,
		"unique_players": s.UniquePlayers,
	}).Info("wrote summary")
	return true, nil
}

// Write encodes v as indented JSON and replaces the file at path, creating
// parent directories as needed.
func Write(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
