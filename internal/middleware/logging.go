package middleware

import (
	"bytes"
	"net/http"
	"time"

	"infinite-experiment/skyboard/internal/logging"
)

type respLogger struct {
	http.ResponseWriter
	status int
	buf    *bytes.Buffer
}

func (l *respLogger) WriteHeader(code int) {
	l.status = code
	l.ResponseWriter.WriteHeader(code)
}

func (l *respLogger) Write(b []byte) (int, error) {
	l.buf.Write(b)
	return l.ResponseWriter.Write(b)
}

// maxLoggedBody caps how much of a response body is logged
const maxLoggedBody = 2048

// DebugLogging dumps request headers and response bodies at debug level. Development only.
func DebugLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logging.WithRequest(RequestIDFrom(r.Context()), SessionIDFrom(r.Context()), r.URL.Path)
		log.Debugw("Request received",
			"method", r.Method,
			"url", r.URL.String(),
			"headers", r.Header,
		)

		buf := &bytes.Buffer{}
		lw := &respLogger{ResponseWriter: w, status: http.StatusOK, buf: buf}

		start := time.Now()
		next.ServeHTTP(lw, r)

		body := buf.Bytes()
		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody]
		}
		log.Debugw("Response sent",
			"status", lw.status,
			"duration", time.Since(start).String(),
			"body", string(body),
		)
	})
}
