package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/csvgate/internal/core"
)

// WithRequestMetadata adds client IP and User-Agent to context for run
// history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, clientIP(r)) // RemoteAddr already resolved by TrustedRealIP
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
