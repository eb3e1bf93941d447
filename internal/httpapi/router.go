// Package httpapi serves the bot's HTTP surface: Telegram webhook intake and
// a liveness check.
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/m3rciful/supportbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// SecretHeader carries the secret registered together with the webhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateProcessor consumes updates pushed by Telegram. *tele.Bot satisfies it.
type UpdateProcessor interface {
	ProcessUpdate(u tele.Update)
}

// Options configures the router.
type Options struct {
	// Token is the path segment of the webhook route.
	Token string
	// SecretToken, when set, must match the SecretHeader of every webhook call.
	SecretToken string
	// Processor receives webhook updates. Nil leaves the webhook route unmounted.
	Processor UpdateProcessor
}

// NewRouter registers the health and webhook routes.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/health", health)
	if opts.Processor != nil {
		r.Post("/webhook/{token}", webhook(opts))
	}
	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// webhook acknowledges every update it accepts with 200 so Telegram never
// redelivers; undecodable bodies are logged and dropped.
func webhook(opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !constantTimeEqual(chi.URLParam(r, "token"), opts.Token) {
			http.NotFound(w, r)
			return
		}
		if opts.SecretToken != "" && !constantTimeEqual(r.Header.Get(SecretHeader), opts.SecretToken) {
			logger.Warn(ctx, logger.ComponentHTTP, "webhook.rejected",
				slog.String("status", "rejected"),
				slog.String("cause", "secret_mismatch"),
			)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"status": "unauthorized"})
			return
		}

		var upd tele.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			logger.Warn(ctx, logger.ComponentHTTP, "webhook.decode",
				slog.String("status", "fail"),
				logger.Err(err),
			)
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}

		opts.Processor.ProcessUpdate(upd)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
