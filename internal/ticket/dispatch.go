package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/supportbot/core/logger"
	"github.com/m3rciful/supportbot/core/telegram/format"
)

// ErrDispatchFailed is returned when the ticket message could not be delivered.
var ErrDispatchFailed = errors.New("ticket: dispatch failed")

const createdAtLayout = "2006-01-02T15:04:05.000Z"

// Ticket is a dispatched draft.
type Ticket struct {
	ID        uuid.UUID
	Draft     Draft
	CreatedAt time.Time
	// FailedAttachments counts media items that could not be relayed.
	FailedAttachments int
}

// Dispatcher delivers finished drafts to the support destination chat.
type Dispatcher struct {
	messenger   Messenger
	destination Recipient
	now         func() time.Time
	newID       func() uuid.UUID
}

// NewDispatcher returns a Dispatcher sending to destination through m.
func NewDispatcher(m Messenger, destination Recipient) *Dispatcher {
	return &Dispatcher{
		messenger:   m,
		destination: destination,
		now:         time.Now,
		newID:       uuid.New,
	}
}

// Dispatch sends the ticket message and then each attachment in order. Only a
// failure of the ticket message fails the dispatch; a failed attachment is
// reported to the destination as a warning and the rest still go out.
func (d *Dispatcher) Dispatch(ctx context.Context, draft Draft) (Ticket, error) {
	t := Ticket{
		ID:        d.newID(),
		Draft:     draft,
		CreatedAt: d.now().UTC(),
	}

	if err := d.messenger.SendText(ctx, d.destination, FormatTicket(draft, t.CreatedAt), SendOptions{HTML: true}); err != nil {
		logger.Error(ctx, logger.ComponentTicket, "dispatch.failed",
			slog.String("ticket_id", t.ID.String()),
			logger.Err(err),
		)
		return t, fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	for i, m := range draft.Media {
		if err := d.sendMedia(ctx, m, draft.ReporterHandle); err != nil {
			t.FailedAttachments++
			logger.Warn(ctx, logger.ComponentTicket, "dispatch.attachment_failed",
				slog.String("ticket_id", t.ID.String()),
				slog.String("media_kind", string(m.Kind)),
				slog.Int("attempt", i+1),
				logger.Err(err),
			)
			warning := fmt.Sprintf("⚠️ Failed to send %s attachment for ticket from @%s", m.Kind, draft.ReporterHandle)
			if werr := d.messenger.SendText(ctx, d.destination, warning, SendOptions{}); werr != nil {
				logger.Error(ctx, logger.ComponentTicket, "dispatch.warning_failed",
					slog.String("ticket_id", t.ID.String()),
					logger.Err(werr),
				)
			}
		}
	}

	logger.Info(ctx, logger.ComponentTicket, "dispatch.ok",
		slog.String("ticket_id", t.ID.String()),
		slog.Int("media_count", len(draft.Media)),
		slog.Int("media_failed", t.FailedAttachments),
	)
	return t, nil
}

func (d *Dispatcher) sendMedia(ctx context.Context, m Media, reporter string) error {
	opts := SendOptions{Caption: "Attachment for ticket from @" + reporter}
	if m.Kind == MediaVideo {
		return d.messenger.SendVideo(ctx, d.destination, m.Ref, opts)
	}
	return d.messenger.SendPhoto(ctx, d.destination, m.Ref, opts)
}

// FormatTicket renders the destination message in Telegram HTML. User text is
// escaped; createdAt is printed as an ISO-8601 UTC timestamp.
func FormatTicket(d Draft, createdAt time.Time) string {
	return "🎫 " + format.Bold("New Support Ticket") + "\n\n" +
		"🏪 " + format.Bold("Merchant:") + " " + format.EscapeHTML(d.MerchantName) + "\n" +
		"👤 " + format.Bold("Reported by:") + " @" + format.EscapeHTML(d.ReporterHandle) + "\n" +
		"📝 " + format.Bold("Description:") + " " + format.EscapeHTML(d.Description) + "\n" +
		"⏰ " + format.Bold("Created:") + " " + createdAt.UTC().Format(createdAtLayout)
}
