package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	perrors "github.com/matzehuels/stackpin/pkg/errors"
	"github.com/matzehuels/stackpin/pkg/facts"
)

// Sink persists fact records.
type Sink interface {
	Publish(ctx context.Context, rec facts.Record) error
	Close() error
}

// Format is a record encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatEnv  Format = "env"
	FormatText Format = "text"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatJSON, FormatYAML, FormatEnv, FormatText}

// ParseFormat validates s as a [Format]. "yml" is accepted for yaml.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		f = FormatYAML
	}
	if !slices.Contains(Formats, f) {
		return "", perrors.New(perrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, yaml, env, text)", s)
	}
	return f, nil
}

// Encode writes rec to w in format f.
func Encode(w io.Writer, f Format, rec facts.Record) error {
	switch f {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatEnv:
		return writeEnv(w, rec.Facts)
	case FormatText:
		return writeText(w, rec)
	default:
		return fmt.Errorf("invalid format: %q", f)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// writeEnv writes KEY=value lines, uppercasing names and single-quoting
// values that a POSIX shell would otherwise split or expand.
func writeEnv(w io.Writer, m map[string]string) error {
	for _, k := range sortedKeys(m) {
		if _, err := fmt.Fprintf(w, "%s=%s\n", strings.ToUpper(k), shellQuote(m[k])); err != nil {
			return err
		}
	}
	return nil
}

func shellQuote(v string) string {
	safe := v != "" && strings.IndexFunc(v, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' ||
			strings.ContainsRune("._-+:/@%", r))
	}) < 0
	if safe {
		return v
	}
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}

func writeText(w io.Writer, rec facts.Record) error {
	keys := sortedKeys(rec.Facts)
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}
	var b strings.Builder
	if rec.RunID != "" {
		fmt.Fprintf(&b, "run %s at %s\n", rec.RunID, rec.ResolvedAt.UTC().Format(time.RFC3339))
	}
	for _, k := range keys {
		fmt.Fprintf(&b, "%-*s  %s\n", width, k, rec.Facts[k])
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Multi fans a record out to every sink in order. All sinks are attempted;
// their errors are joined.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, rec facts.Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
