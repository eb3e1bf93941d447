package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/supportbot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// WebhookOptions declares how Telegram reaches the webhook. The poller never
// listens itself; updates arrive through the HTTP surface instead.
type WebhookOptions struct {
	PublicURL   string
	SecretToken string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// PollerOptionsFromConfig derives poller settings from the core configuration.
func PollerOptionsFromConfig(cfg *coreconfig.Config) PollerOptions {
	return PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			PublicURL:   cfg.Webhook.PublicURL(cfg.Telegram.Token),
			SecretToken: cfg.Webhook.SecretToken,
		},
	}
}

// BuildPoller returns a Telebot poller based on provided options. In webhook
// mode the returned *tele.Webhook has no Listen address: starting the bot only
// registers the URL with Telegram.
func BuildPoller(opts PollerOptions) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), coreconfig.RunModeWebhook) {
		return &tele.Webhook{
			SecretToken: opts.Webhook.SecretToken,
			Endpoint:    &tele.WebhookEndpoint{PublicURL: opts.Webhook.PublicURL},
		}
	}
	return &tele.LongPoller{Timeout: longPollTimeout(opts.LongPollTimeoutSeconds)}
}

func longPollTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultLongPollTimeout
	}
	return time.Duration(seconds) * time.Second
}
