package ticket

import (
	"context"
	"errors"
	"sync"
)

var errSend = errors.New("send failed")

type sentMessage struct {
	Method string
	Chat   string
	Body   string
	Opts   SendOptions
}

// fakeMessenger records every send. fail decides, per call, whether it errors.
type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	fail func(s sentMessage) bool
}

func (m *fakeMessenger) record(s sentMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil && m.fail(s) {
		return errSend
	}
	m.sent = append(m.sent, s)
	return nil
}

func (m *fakeMessenger) SendText(_ context.Context, to Recipient, text string, opts SendOptions) error {
	return m.record(sentMessage{Method: "text", Chat: to.Recipient(), Body: text, Opts: opts})
}

func (m *fakeMessenger) SendPhoto(_ context.Context, to Recipient, ref string, opts SendOptions) error {
	return m.record(sentMessage{Method: "photo", Chat: to.Recipient(), Body: ref, Opts: opts})
}

func (m *fakeMessenger) SendVideo(_ context.Context, to Recipient, ref string, opts SendOptions) error {
	return m.record(sentMessage{Method: "video", Chat: to.Recipient(), Body: ref, Opts: opts})
}

func (m *fakeMessenger) to(chat Recipient) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMessage
	for _, s := range m.sent {
		if s.Chat == chat.Recipient() {
			out = append(out, s)
		}
	}
	return out
}

func (m *fakeMessenger) reset() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}

type fakeArchive struct {
	mu      sync.Mutex
	tickets []Ticket
	err     error
}

func (a *fakeArchive) Record(_ context.Context, t Ticket, _ int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.tickets = append(a.tickets, t)
	return nil
}

func (a *fakeArchive) Count(context.Context) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int64(len(a.tickets)), a.err
}
