package middleware

import (
	"net/http"

	"infinite-experiment/skyboard/internal/constants"
)

// ThemeMiddleware injects the user's theme preference into the request context
func ThemeMiddleware(defaultTheme constants.Theme) func(http.Handler) http.Handler {
	if !constants.ValidThemes[defaultTheme] {
		defaultTheme = constants.ThemeLight
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			theme := defaultTheme
			cookie, err := r.Cookie(constants.ThemeCookieName)
			if err == nil && cookie.Value != "" {
				theme = constants.Theme(cookie.Value)
			}

			// Validate theme value (prevent injection)
			if !constants.ValidThemes[theme] {
				theme = defaultTheme
			}

			next.ServeHTTP(w, r.WithContext(WithTheme(r.Context(), theme)))
		})
	}
}
