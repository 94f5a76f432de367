package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/stackpin/pkg/facts"
)

// WriterSink encodes records to an io.Writer. It never closes the writer.
type WriterSink struct {
	w      io.Writer
	format Format
}

// NewWriterSink creates a sink encoding to w in format f.
func NewWriterSink(w io.Writer, f Format) *WriterSink {
	return &WriterSink{w: w, format: f}
}

func (s *WriterSink) Publish(_ context.Context, rec facts.Record) error {
	return Encode(s.w, s.format, rec)
}

func (s *WriterSink) Close() error { return nil }

// FileSink writes each record to path, replacing the previous content.
// The file is written to a temporary sibling and renamed into place, so
// readers never observe a partial record.
type FileSink struct {
	path   string
	format Format
}

// NewFileSink creates a sink for path. An empty format is inferred from the
// file extension and defaults to json.
func NewFileSink(path string, f Format) *FileSink {
	if f == "" {
		f = formatFromExt(path)
	}
	return &FileSink{path: path, format: f}
}

// Path returns the destination file.
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Publish(_ context.Context, rec facts.Record) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, s.format, rec); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename to %s: %w", s.path, err)
	}
	return nil
}

func (s *FileSink) Close() error { return nil }

func formatFromExt(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".env":
		return FormatEnv
	case ".txt":
		return FormatText
	default:
		return FormatJSON
	}
}
