package ticket

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Keyboard selects the reply markup attached to an outbound message.
type Keyboard int

const (
	// KeyboardNone leaves the chat's current keyboard untouched.
	KeyboardNone Keyboard = iota
	// KeyboardCancel attaches an inline cancel button.
	KeyboardCancel
	// KeyboardDone shows a reply keyboard with "done" and "/cancel".
	KeyboardDone
	// KeyboardRemove hides a reply keyboard shown earlier.
	KeyboardRemove
)

// SendOptions carries per-message presentation flags.
type SendOptions struct {
	// HTML enables HTML markup parsing.
	HTML     bool
	Caption  string
	Keyboard Keyboard
}

// Recipient addresses a chat. Recipient returns the chat_id the Bot API
// expects: a numeric id or a public "@username".
type Recipient interface {
	Recipient() string
}

// ChatID addresses a chat by numeric id.
type ChatID int64

// Recipient implements Recipient.
func (id ChatID) Recipient() string { return strconv.FormatInt(int64(id), 10) }

// ChannelName addresses a public channel by its @username.
type ChannelName string

// Recipient implements Recipient.
func (n ChannelName) Recipient() string { return string(n) }

// ParseRecipient resolves a configured destination. Numbers become a ChatID;
// "@name" becomes a ChannelName.
func ParseRecipient(raw string) (Recipient, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("ticket: empty destination")
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if id == 0 {
			return nil, fmt.Errorf("ticket: destination chat id must not be 0")
		}
		return ChatID(id), nil
	}
	if !strings.HasPrefix(raw, "@") || len(raw) < 2 || strings.ContainsAny(raw[1:], " @") {
		return nil, fmt.Errorf("ticket: destination %q is neither a chat id nor an @username", raw)
	}
	return ChannelName(raw), nil
}

// Messenger sends messages to chats on the chat platform.
type Messenger interface {
	SendText(ctx context.Context, to Recipient, text string, opts SendOptions) error
	SendPhoto(ctx context.Context, to Recipient, ref string, opts SendOptions) error
	SendVideo(ctx context.Context, to Recipient, ref string, opts SendOptions) error
}
