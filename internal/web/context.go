package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/gradebook/internal/core"
	mw "github.com/JonMunkholm/gradebook/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and the logged-in username to ctx
// for upload logging and history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, r.RemoteAddr) // resolved by TrustedRealIP
	if sess, ok := mw.SessionFromContext(r.Context()); ok {
		ctx = core.ContextWithUploader(ctx, sess.Username)
	}
	return ctx
}
