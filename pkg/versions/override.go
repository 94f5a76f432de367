package versions

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/stackpin/pkg/observability"
)

// Override returns the trimmed explicit value. ok is false when value is
// empty or only whitespace, which means "not provided".
func Override(value string) (string, bool) {
	v := strings.TrimSpace(value)
	return v, v != ""
}

// observe wraps a resolver body with resolve hooks.
func observe(ctx context.Context, source Source, fn func() (string, bool, error)) (string, error) {
	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, string(source))
	start := time.Now()
	version, override, err := fn()
	hooks.OnResolveComplete(ctx, string(source), version, override, time.Since(start), err)
	return version, err
}
