package router

import (
	"time"

	tg "github.com/m3rciful/supportbot/core/telegram"
	tghelpers "github.com/m3rciful/supportbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// FSM is the conversation engine seen from the transport: it reports whether a
// user has a conversation in progress and consumes their text and media.
type FSM interface {
	InProgress(userID int64) bool
	HandleText(c tele.Context) error
	HandleMedia(c tele.Context) error
}

// MessageRoutes routes plain text to the FSM while a conversation is in
// progress and every photo or video to the FSM unconditionally, so it can
// explain why unexpected media is rejected. Text outside a conversation is
// dropped without a reply.
func MessageRoutes(fsm FSM) []tg.Route {
	if fsm == nil {
		return nil
	}

	text := func(c tele.Context) error {
		start := time.Now()
		userID, _ := tghelpers.IDs(c)
		if !fsm.InProgress(userID) {
			logHandlerSummary(c, "text", start, "skip", "ignored", nil)
			return nil
		}
		return handleWithSummary(c, "fsm.text", start, "", "", func() error {
			return fsm.HandleText(c)
		})
	}

	media := func(c tele.Context) error {
		return handleWithSummary(c, "fsm.media", time.Now(), "", "", func() error {
			return fsm.HandleMedia(c)
		})
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: text},
		{Endpoint: tele.OnPhoto, Handler: media},
		{Endpoint: tele.OnVideo, Handler: media},
	}
}
