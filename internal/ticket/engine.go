package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/m3rciful/supportbot/core/logger"
	"github.com/m3rciful/supportbot/core/telegram/state"
)

// doneKeyword finalizes a draft in the media phase, compared case-insensitively.
const doneKeyword = "done"

// TicketDispatcher delivers a finished draft.
type TicketDispatcher interface {
	Dispatch(ctx context.Context, d Draft) (Ticket, error)
}

// Archive keeps a record of dispatched tickets.
type Archive interface {
	Record(ctx context.Context, t Ticket, userID int64) error
	Count(ctx context.Context) (int64, error)
}

// Options wires an Engine. Archive is optional.
type Options struct {
	Store      state.Store[Conversation]
	Messenger  Messenger
	Dispatcher TicketDispatcher
	Archive    Archive
	// Version is echoed in the stats reply.
	Version string
}

// Stats is a snapshot of engine activity.
type Stats struct {
	Active         int
	Dispatched     int64
	Archived       int64
	ArchiveEnabled bool
	Version        string
}

// Engine runs the ticket conversation for every user. Events of one user are
// processed strictly one after another; different users proceed in parallel.
type Engine struct {
	store      state.Store[Conversation]
	messenger  Messenger
	dispatcher TicketDispatcher
	archive    Archive
	version    string

	locks      *userLocks
	dispatched atomic.Int64
}

// NewEngine validates opts and returns a ready Engine.
func NewEngine(opts Options) (*Engine, error) {
	switch {
	case opts.Store == nil:
		return nil, errors.New("ticket: store is required")
	case opts.Messenger == nil:
		return nil, errors.New("ticket: messenger is required")
	case opts.Dispatcher == nil:
		return nil, errors.New("ticket: dispatcher is required")
	}
	return &Engine{
		store:      opts.Store,
		messenger:  opts.Messenger,
		dispatcher: opts.Dispatcher,
		archive:    opts.Archive,
		version:    opts.Version,
		locks:      newUserLocks(),
	}, nil
}

// InProgress reports whether userID has a conversation in progress.
func (e *Engine) InProgress(userID int64) bool {
	_, ok := e.store.Get(userID)
	return ok
}

// Handle processes one inbound event. A returned error has already been
// reported to the user where possible; callers only need to log it.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	unlock := e.locks.Lock(ev.UserID)
	defer unlock()

	switch ev.Kind {
	case EventCommand:
		return e.handleCommand(ctx, ev)
	case EventText:
		return e.handleText(ctx, ev)
	case EventPhoto, EventVideo:
		return e.handleMedia(ctx, ev)
	default:
		return fmt.Errorf("ticket: unknown event kind %q", ev.Kind)
	}
}

// Stats reports active conversations and dispatched tickets.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	s := Stats{
		Active:     e.store.Len(),
		Dispatched: e.dispatched.Load(),
		Version:    e.version,
	}
	if e.archive == nil {
		return s, nil
	}
	n, err := e.archive.Count(ctx)
	if err != nil {
		return s, fmt.Errorf("ticket: count archive: %w", err)
	}
	s.Archived = n
	s.ArchiveEnabled = true
	return s, nil
}

func (e *Engine) handleCommand(ctx context.Context, ev Event) error {
	switch ev.Command {
	case CommandStart:
		return e.replyOrFail(ctx, ev, welcomeText, SendOptions{}, startFailedReason)
	case CommandHelp:
		return e.replyOrFail(ctx, ev, helpText, SendOptions{}, helpFailedReason)
	case CommandNewTicket:
		return e.startTicket(ctx, ev)
	case CommandCancel:
		return e.cancel(ctx, ev)
	case CommandStats:
		return e.stats(ctx, ev)
	default:
		return fmt.Errorf("ticket: unknown command %q", ev.Command)
	}
}

// startTicket discards any draft in progress and asks for the merchant.
func (e *Engine) startTicket(ctx context.Context, ev Event) error {
	_, restarted := e.store.Get(ev.UserID)
	e.store.Set(ctx, ev.UserID, AwaitingMerchant{})
	logger.Info(ctx, logger.ComponentTicket, "ticket.started",
		slog.Bool("restarted", restarted),
	)

	if err := e.send(ctx, ev, merchantPromptText, SendOptions{Keyboard: KeyboardCancel}); err != nil {
		e.store.Delete(ctx, ev.UserID)
		e.sendError(ctx, ev, newTicketFailedReason)
		return err
	}
	return nil
}

func (e *Engine) cancel(ctx context.Context, ev Event) error {
	text := nothingToCancelText
	if _, ok := e.store.Get(ev.UserID); ok {
		e.store.Delete(ctx, ev.UserID)
		text = cancelledText
		logger.Info(ctx, logger.ComponentTicket, "ticket.cancelled")
	}
	return e.replyOrFail(ctx, ev, text, SendOptions{Keyboard: KeyboardRemove}, cancelFailedReason)
}

func (e *Engine) stats(ctx context.Context, ev Event) error {
	s, err := e.Stats(ctx)
	if err != nil {
		logger.Warn(ctx, logger.ComponentTicket, "stats.archive_failed", logger.Err(err))
	}
	return e.send(ctx, ev, statsText(s), SendOptions{})
}

func (e *Engine) handleText(ctx context.Context, ev Event) error {
	if strings.HasPrefix(ev.Text, "/") {
		return nil
	}
	conv, ok := e.store.Get(ev.UserID)
	if !ok {
		return nil
	}

	var err error
	switch c := conv.(type) {
	case AwaitingMerchant:
		err = e.acceptMerchant(ctx, ev)
	case AwaitingDescription:
		err = e.acceptDescription(ctx, ev, c)
	case AwaitingMedia:
		if isDone(ev.Text) {
			return e.finalize(ctx, ev, c.Draft)
		}
		err = e.send(ctx, ev, mediaRepromptText, SendOptions{Keyboard: KeyboardDone})
	default:
		err = fmt.Errorf("ticket: unexpected conversation %T", conv)
	}
	if err != nil {
		e.failTurn(ctx, ev, err)
	}
	return err
}

func (e *Engine) acceptMerchant(ctx context.Context, ev Event) error {
	e.store.Set(ctx, ev.UserID, AwaitingDescription{MerchantName: ev.Text})
	return e.send(ctx, ev, descriptionPromptText, SendOptions{Keyboard: KeyboardCancel})
}

// acceptDescription completes the draft and validates both fields before
// moving to the media phase.
func (e *Engine) acceptDescription(ctx context.Context, ev Event, c AwaitingDescription) error {
	draft := Draft{
		MerchantName:   c.MerchantName,
		Description:    ev.Text,
		ReporterHandle: reporterHandle(ev.Username),
	}
	if err := Validate(draft); err != nil {
		return err
	}
	e.store.Set(ctx, ev.UserID, AwaitingMedia{Draft: draft})
	return e.send(ctx, ev, informationReceivedText, SendOptions{Keyboard: KeyboardDone})
}

// finalize dispatches the draft. The conversation ends whatever the outcome.
func (e *Engine) finalize(ctx context.Context, ev Event, draft Draft) error {
	t, err := e.dispatcher.Dispatch(ctx, draft)
	e.store.Delete(ctx, ev.UserID)
	if err != nil {
		e.failTurn(ctx, ev, err)
		return err
	}
	e.dispatched.Add(1)
	logger.Info(ctx, logger.ComponentTicket, "ticket.submitted",
		slog.String("ticket_id", t.ID.String()),
		slog.Int("media_count", len(draft.Media)),
		slog.Int("media_failed", t.FailedAttachments),
	)

	if e.archive != nil {
		if err := e.archive.Record(ctx, t, ev.UserID); err != nil {
			logger.Error(ctx, logger.ComponentTicket, "ticket.archive_failed",
				slog.String("ticket_id", t.ID.String()),
				logger.Err(err),
			)
		}
	}

	// The ticket is already out, so the fallback says so instead of asking for a resubmit.
	if err := e.send(ctx, ev, successText, SendOptions{Keyboard: KeyboardRemove}); err != nil {
		e.sendError(ctx, ev, confirmFailedReason)
		return fmt.Errorf("ticket: confirm submission: %w", err)
	}
	return nil
}

func (e *Engine) handleMedia(ctx context.Context, ev Event) error {
	conv, ok := e.store.Get(ev.UserID)
	if !ok {
		return e.send(ctx, ev, noConversationText, SendOptions{})
	}
	c, ok := conv.(AwaitingMedia)
	if !ok {
		return e.send(ctx, ev, mediaUnexpectedText, SendOptions{})
	}

	kind := ev.mediaKind()
	e.store.Set(ctx, ev.UserID, AwaitingMedia{Draft: c.Draft.WithMedia(Media{Kind: kind, Ref: ev.MediaRef})})
	logger.Info(ctx, logger.ComponentTicket, "ticket.media_attached",
		slog.String("media_kind", string(kind)),
		slog.Int("media_count", len(c.Draft.Media)+1),
	)

	// The attachment is kept even if the confirmation is lost.
	if err := e.send(ctx, ev, mediaAttachedText, SendOptions{Keyboard: KeyboardDone}); err != nil {
		e.sendError(ctx, ev, mediaFailedReason)
		return err
	}
	return nil
}

// failTurn ends the conversation and tells the user why.
func (e *Engine) failTurn(ctx context.Context, ev Event, err error) {
	e.store.Delete(ctx, ev.UserID)

	reason := turnFailedReason
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		reason = verr.Message
	case errors.Is(err, ErrDispatchFailed):
		reason = dispatchFailedReason
	}
	logger.Warn(ctx, logger.ComponentTicket, "ticket.turn_failed",
		slog.String("cause", reason),
		logger.Err(err),
	)
	e.sendError(ctx, ev, reason)
}

// replyOrFail sends text and falls back to an error message naming reason.
func (e *Engine) replyOrFail(ctx context.Context, ev Event, text string, opts SendOptions, reason string) error {
	if err := e.send(ctx, ev, text, opts); err != nil {
		e.sendError(ctx, ev, reason)
		return err
	}
	return nil
}

func (e *Engine) send(ctx context.Context, ev Event, text string, opts SendOptions) error {
	return e.messenger.SendText(ctx, ChatID(ev.ChatID), text, opts)
}

// sendError is best effort: a failure here is logged and dropped.
func (e *Engine) sendError(ctx context.Context, ev Event, reason string) {
	if err := e.send(ctx, ev, errorText(reason), SendOptions{Keyboard: KeyboardRemove}); err != nil {
		logger.Error(ctx, logger.ComponentTicket, "ticket.error_reply_failed", logger.Err(err))
	}
}

func isDone(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), doneKeyword)
}

func reporterHandle(username string) string {
	if username == "" {
		return NoUsername
	}
	return username
}
