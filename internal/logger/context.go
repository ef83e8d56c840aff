package logger

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

// ============================================
// Context operations
// ============================================

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

// FromContext returns the global logger enriched with request_id and user_id
// when present in ctx.
func FromContext(ctx context.Context) zerolog.Logger {
	l := GetLogger()
	if ctx == nil {
		return l
	}

	lc := l.With()
	if requestID := GetRequestID(ctx); requestID != "" {
		lc = lc.Str("request_id", requestID)
	}
	if userID := GetUserID(ctx); userID != "" {
		lc = lc.Str("user_id", userID)
	}
	return lc.Logger()
}

// ============================================
// Context-aware helpers
// ============================================

func CtxDebug(ctx context.Context, msg string, args ...any) {
	l := FromContext(ctx)
	emit(l.Debug(), msg, args)
}

func CtxInfo(ctx context.Context, msg string, args ...any) {
	l := FromContext(ctx)
	emit(l.Info(), msg, args)
}

func CtxWarn(ctx context.Context, msg string, args ...any) {
	l := FromContext(ctx)
	emit(l.Warn(), msg, args)
}

func CtxError(ctx context.Context, msg string, args ...any) {
	l := FromContext(ctx)
	emit(l.Error(), msg, args)
}

// CtxWithError logs at error level with err attached.
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	l := FromContext(ctx)
	emit(l.Error().Err(err), msg, args)
}
