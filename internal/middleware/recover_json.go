package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fueltrackr/internal/logger"
)

// responseWriter запоминает статус и то, был ли уже отправлен заголовок ответа.
type responseWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *responseWriter) WriteHeader(code int) {
	if w.wrote {
		return
	}
	w.status = code
	w.wrote = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || strings.Contains(r.Header.Get("Accept"), "application/json")
}

// Recover при панике в handler логирует её и отдаёт 500 (если ответ ещё не отправлен):
// JSON для /api/*, короткую HTML-страницу для остальных.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				logger.Errorf("panic recovered: %s %s: %v", r.Method, r.URL.Path, err)
				if wrap.wrote {
					return
				}
				if wantsJSON(r) {
					wrap.Header().Set("Content-Type", "application/json; charset=utf-8")
					wrap.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(wrap.ResponseWriter).Encode(map[string]string{"error": "internal server error"})
					return
				}
				wrap.Header().Set("Content-Type", "text/html; charset=utf-8")
				wrap.WriteHeader(http.StatusInternalServerError)
				_, _ = wrap.ResponseWriter.Write([]byte(`<!doctype html><title>FuelTrackr</title><p>Something went wrong. <a href="/dashboard">Back</a></p>`))
			}
		}()
		next.ServeHTTP(wrap, r)
	})
}
