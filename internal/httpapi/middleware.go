package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/supportbot/core/logger"
)

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error(r.Context(), logger.ComponentHTTP, "http.panic",
					slog.String("status", "fail"),
					slog.String("route", r.URL.Path),
					slog.String("err", fmt.Sprint(rec)),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request with its route pattern, so the webhook
// token never reaches the log.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		route := r.Method
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route += " " + rc.RoutePattern()
		}
		attrs := []slog.Attr{
			slog.String("route", route),
			slog.Int("http_code", code),
			slog.Duration("duration", logger.Took(start)),
		}
		switch {
		case code >= 500:
			logger.Error(r.Context(), logger.ComponentHTTP, "http.request", append(attrs, slog.String("status", "fail"))...)
		case code >= 400:
			logger.Warn(r.Context(), logger.ComponentHTTP, "http.request", append(attrs, slog.String("status", "rejected"))...)
		default:
			logger.Debug(r.Context(), logger.ComponentHTTP, "http.request", append(attrs, slog.String("status", "ok"))...)
		}
	})
}
