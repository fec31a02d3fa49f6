package core

import "context"

type contextKey string

const (
	ctxKeyUploader  contextKey = "uploader"
	ctxKeyIPAddress contextKey = "ip"
)

// ContextWithUploader records who is acting in this request.
func ContextWithUploader(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKeyUploader, username)
}

// ContextWithIPAddress adds the client IP for upload logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// UploaderFromContext returns the username set by ContextWithUploader.
func UploaderFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUploader).(string); ok {
		return v
	}
	return ""
}

// IPAddressFromContext returns the IP set by ContextWithIPAddress.
func IPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}
