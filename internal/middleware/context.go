package middleware

import (
	"context"

	"infinite-experiment/skyboard/internal/constants"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	themeKey     contextKey = "theme"
	sessionKey   contextKey = "session_id"
)

// RequestIDFrom returns the request id set by RequestIDMiddleware
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ThemeFrom returns the theme set by ThemeMiddleware, light when unset
func ThemeFrom(ctx context.Context) constants.Theme {
	if theme, ok := ctx.Value(themeKey).(constants.Theme); ok {
		return theme
	}
	return constants.ThemeLight
}

// SessionIDFrom returns the UI session id set by SessionMiddleware
func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}

// WithSessionID stores a session id, used by handlers outside the middleware chain and tests
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// WithTheme stores a theme in ctx
func WithTheme(ctx context.Context, theme constants.Theme) context.Context {
	return context.WithValue(ctx, themeKey, theme)
}
