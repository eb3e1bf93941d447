package bot

import (
	"github.com/m3rciful/supportbot/core/telegram/helpers"
	"github.com/m3rciful/supportbot/internal/ticket"

	tele "gopkg.in/telebot.v4"
)

func baseEvent(c tele.Context, kind ticket.EventKind) ticket.Event {
	userID, chatID := helpers.IDs(c)
	ev := ticket.Event{Kind: kind, UserID: userID, ChatID: chatID}
	if u := c.Sender(); u != nil {
		ev.Username = u.Username
	}
	return ev
}

func commandEvent(c tele.Context, cmd ticket.Command) ticket.Event {
	ev := baseEvent(c, ticket.EventCommand)
	ev.Command = cmd
	return ev
}

func textEvent(c tele.Context) ticket.Event {
	ev := baseEvent(c, ticket.EventText)
	ev.Text = c.Text()
	return ev
}

// mediaEvent converts a photo or video message. Telebot keeps only the
// largest photo size, which is the one relayed to the support chat.
func mediaEvent(c tele.Context) (ticket.Event, bool) {
	msg := c.Message()
	if msg == nil {
		return ticket.Event{}, false
	}
	switch {
	case msg.Photo != nil:
		ev := baseEvent(c, ticket.EventPhoto)
		ev.MediaRef = msg.Photo.FileID
		return ev, true
	case msg.Video != nil:
		ev := baseEvent(c, ticket.EventVideo)
		ev.MediaRef = msg.Video.FileID
		return ev, true
	}
	return ticket.Event{}, false
}
