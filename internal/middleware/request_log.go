package middleware

import (
	"net/http"
	"time"

	"github.com/fueltrackr/internal/logger"
)

// RequestLog логирует каждый HTTP-запрос: method, path, статус и время выполнения (асинхронно, не блокирует).
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrap, ok := w.(*responseWriter)
		if !ok {
			wrap = &responseWriter{ResponseWriter: w, status: http.StatusOK}
		}
		next.ServeHTTP(wrap, r)
		logger.LogDuration("http "+r.Method+" "+r.URL.Path, start)
		if wrap.status >= http.StatusInternalServerError {
			logger.Errorf("http %s %s: %d", r.Method, r.URL.Path, wrap.status)
		} else {
			logger.Debugf("http %s %s: %d", r.Method, r.URL.Path, wrap.status)
		}
	})
}
