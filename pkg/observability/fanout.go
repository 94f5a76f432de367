package observability

import (
	"context"
	"time"
)

// HTTPFanout forwards HTTP events to every hook in order.
type HTTPFanout []HTTPHooks

func (f HTTPFanout) OnRequest(ctx context.Context, method, host, path string) {
	for _, h := range f {
		h.OnRequest(ctx, method, host, path)
	}
}

func (f HTTPFanout) OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration) {
	for _, h := range f {
		h.OnResponse(ctx, method, host, path, statusCode, duration)
	}
}

func (f HTTPFanout) OnError(ctx context.Context, method, host, path string, err error) {
	for _, h := range f {
		h.OnError(ctx, method, host, path, err)
	}
}

func (f HTTPFanout) OnRetry(ctx context.Context, method, host, path string, attempt int, delay time.Duration) {
	for _, h := range f {
		h.OnRetry(ctx, method, host, path, attempt, delay)
	}
}

// ResolveFanout forwards resolve events to every hook in order.
type ResolveFanout []ResolveHooks

func (f ResolveFanout) OnResolveStart(ctx context.Context, source string) {
	for _, h := range f {
		h.OnResolveStart(ctx, source)
	}
}

func (f ResolveFanout) OnResolveComplete(ctx context.Context, source, version string, override bool, duration time.Duration, err error) {
	for _, h := range f {
		h.OnResolveComplete(ctx, source, version, override, duration, err)
	}
}
