package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/ncmlookup/internal/core"
	"github.com/JonMunkholm/ncmlookup/internal/web/middleware"
)

// WithRequestMetadata adds IP and User-Agent to context for event logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, middleware.ClientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}

// requestMetadata is the middleware form of WithRequestMetadata.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithRequestMetadata(r.Context(), r)))
	})
}
