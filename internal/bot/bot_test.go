package bot

import (
	"context"
	"sync"

	"github.com/m3rciful/supportbot/internal/ticket"

	tele "gopkg.in/telebot.v4"
)

// stubContext implements the parts of tele.Context the adapters read.
type stubContext struct {
	tele.Context
	update    tele.Update
	store     map[string]any
	responded bool
}

func newStubContext(update tele.Update) *stubContext {
	return &stubContext{update: update, store: map[string]any{}}
}

func (s *stubContext) Update() tele.Update { return s.update }

func (s *stubContext) Message() *tele.Message { return s.update.Message }

func (s *stubContext) Sender() *tele.User {
	switch {
	case s.update.Message != nil:
		return s.update.Message.Sender
	case s.update.Callback != nil:
		return s.update.Callback.Sender
	}
	return nil
}

func (s *stubContext) Chat() *tele.Chat {
	switch {
	case s.update.Message != nil:
		return s.update.Message.Chat
	case s.update.Callback != nil && s.update.Callback.Message != nil:
		return s.update.Callback.Message.Chat
	}
	return nil
}

func (s *stubContext) Text() string {
	if s.update.Message == nil {
		return ""
	}
	return s.update.Message.Text
}

func (s *stubContext) Callback() *tele.Callback  { return s.update.Callback }
func (s *stubContext) Get(key string) any        { return s.store[key] }
func (s *stubContext) Set(key string, value any) { s.store[key] = value }

func (s *stubContext) Respond(...*tele.CallbackResponse) error {
	s.responded = true
	return nil
}

func message(userID int64, username string) *tele.Message {
	return &tele.Message{
		Sender: &tele.User{ID: userID, Username: username},
		Chat:   &tele.Chat{ID: userID},
	}
}

type recordingMessenger struct {
	mu    sync.Mutex
	texts []string
}

func (m *recordingMessenger) SendText(_ context.Context, _ ticket.Recipient, text string, _ ticket.SendOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return nil
}

func (m *recordingMessenger) SendPhoto(context.Context, ticket.Recipient, string, ticket.SendOptions) error {
	return nil
}

func (m *recordingMessenger) SendVideo(context.Context, ticket.Recipient, string, ticket.SendOptions) error {
	return nil
}

func (m *recordingMessenger) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}
