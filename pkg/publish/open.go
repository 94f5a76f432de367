package publish

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	perrors "github.com/matzehuels/stackpin/pkg/errors"
)

// Open returns the sink for target, chosen by URI scheme:
//
//   - redis, rediss: [OpenRedis]
//   - mongodb, mongodb+srv: [OpenMongo]
//   - file, or no scheme: [FileSink]; a format query parameter overrides
//     the extension
func Open(ctx context.Context, target string) (Sink, error) {
	target = strings.TrimSpace(target)
	if target == "" || target == "-" {
		return nil, perrors.New(perrors.ErrCodeInvalidTarget, "invalid publish target %q", target)
	}

	scheme, _, ok := strings.Cut(target, "://")
	if !ok {
		return NewFileSink(target, ""), nil
	}

	switch strings.ToLower(scheme) {
	case "redis", "rediss":
		return OpenRedis(ctx, target)
	case "mongodb", "mongodb+srv":
		return OpenMongo(ctx, target)
	case "file":
		return openFile(target)
	default:
		return nil, perrors.New(perrors.ErrCodeUnsupported, "unsupported publish target scheme %q", scheme)
	}
}

// OpenAll opens every target. On error, sinks opened so far are closed.
func OpenAll(ctx context.Context, targets []string) (Multi, error) {
	var sinks Multi
	for _, t := range targets {
		s, err := Open(ctx, t)
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return sinks, nil
}

func openFile(target string) (*FileSink, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse file target: %w", err)
	}
	path := u.Path
	if u.Host != "" && u.Host != "localhost" {
		path = u.Host + u.Path
	}
	if path == "" {
		return nil, perrors.New(perrors.ErrCodeInvalidTarget, "file target %q has no path", target)
	}

	var f Format
	if raw := u.Query().Get("format"); raw != "" {
		if f, err = ParseFormat(raw); err != nil {
			return nil, err
		}
	}
	return NewFileSink(path, f), nil
}
