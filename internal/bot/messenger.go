package bot

import (
	"context"

	"github.com/m3rciful/supportbot/core/telegram/keyboard"
	"github.com/m3rciful/supportbot/core/telegram/sender"
	"github.com/m3rciful/supportbot/internal/ticket"

	tele "gopkg.in/telebot.v4"
)

// cancelCallback is the unique key of the inline cancel button.
const cancelCallback = "ticket_cancel"

// doneButton is the reply keyboard shown while media is collected.
var doneButton = []string{"done", "/cancel"}

// botSender is the part of *tele.Bot the messenger needs.
type botSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Messenger implements ticket.Messenger on top of the Bot API. Every call goes
// through the retrying sender.
type Messenger struct {
	bot    botSender
	sender *sender.Sender
}

var _ ticket.Messenger = (*Messenger)(nil)

// NewMessenger returns a Messenger sending through bot.
func NewMessenger(bot botSender, s *sender.Sender) *Messenger {
	if s == nil {
		s = sender.New(sender.Options{})
	}
	return &Messenger{bot: bot, sender: s}
}

// SendText sends a text message.
func (m *Messenger) SendText(ctx context.Context, to ticket.Recipient, text string, opts ticket.SendOptions) error {
	return m.send(ctx, "sendMessage", to, text, opts)
}

// SendPhoto relays an already uploaded photo by file id.
func (m *Messenger) SendPhoto(ctx context.Context, to ticket.Recipient, ref string, opts ticket.SendOptions) error {
	return m.send(ctx, "sendPhoto", to, &tele.Photo{File: tele.File{FileID: ref}, Caption: opts.Caption}, opts)
}

// SendVideo relays an already uploaded video by file id.
func (m *Messenger) SendVideo(ctx context.Context, to ticket.Recipient, ref string, opts ticket.SendOptions) error {
	return m.send(ctx, "sendVideo", to, &tele.Video{File: tele.File{FileID: ref}, Caption: opts.Caption}, opts)
}

func (m *Messenger) send(ctx context.Context, action string, to ticket.Recipient, what interface{}, opts ticket.SendOptions) error {
	return m.sender.Do(ctx, action, action, func() error {
		// Telebot mutates markups while sending, so every attempt gets its own.
		_, err := m.bot.Send(to, what, sendOptions(opts))
		return err
	})
}

func sendOptions(opts ticket.SendOptions) *tele.SendOptions {
	out := &tele.SendOptions{}
	if opts.HTML {
		out.ParseMode = tele.ModeHTML
	}
	switch opts.Keyboard {
	case ticket.KeyboardCancel:
		out.ReplyMarkup = keyboard.SingleCancelMarkup(cancelCallback)
	case ticket.KeyboardDone:
		out.ReplyMarkup = keyboard.ReplyButtons(doneButton)
	case ticket.KeyboardRemove:
		out.ReplyMarkup = keyboard.RemoveKeyboard()
	}
	return out
}
