package ticket

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/supportbot/core/telegram/state"
)

const (
	userID int64 = 42
	chatID int64 = 4242
)

type harness struct {
	engine    *Engine
	messenger *fakeMessenger
	store     *state.Memory[Conversation]
	archive   *fakeArchive
	now       time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		messenger: &fakeMessenger{},
		archive:   &fakeArchive{},
		now:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	h.store = state.NewMemory[Conversation](state.Options{Now: func() time.Time { return h.now }})
	engine, err := NewEngine(Options{
		Store:      h.store,
		Messenger:  h.messenger,
		Dispatcher: newTestDispatcher(h.messenger),
		Archive:    h.archive,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	h.engine = engine
	return h
}

func (h *harness) command(t *testing.T, cmd Command) error {
	t.Helper()
	return h.engine.Handle(context.Background(), Event{Kind: EventCommand, UserID: userID, ChatID: chatID, Username: "jane", Command: cmd})
}

func (h *harness) text(t *testing.T, text string) error {
	t.Helper()
	return h.engine.Handle(context.Background(), Event{Kind: EventText, UserID: userID, ChatID: chatID, Username: "jane", Text: text})
}

func (h *harness) media(t *testing.T, kind EventKind, ref string) error {
	t.Helper()
	return h.engine.Handle(context.Background(), Event{Kind: kind, UserID: userID, ChatID: chatID, Username: "jane", MediaRef: ref})
}

func (h *harness) replies() []string {
	var out []string
	for _, s := range h.messenger.to(ChatID(chatID)) {
		out = append(out, s.Body)
	}
	return out
}

func (h *harness) phase() Phase {
	conv, ok := h.store.Get(userID)
	if !ok {
		return ""
	}
	return conv.Phase()
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEngineEndToEnd(t *testing.T) {
	h := newHarness(t)

	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.text(t, "Acme Corp"))
	mustNoErr(t, h.text(t, "Screen freezes on checkout page for ten seconds"))
	if h.phase() != PhaseAwaitingMedia {
		t.Fatalf("phase = %q, want %q", h.phase(), PhaseAwaitingMedia)
	}
	mustNoErr(t, h.text(t, "DONE"))

	want := []string{merchantPromptText, descriptionPromptText, informationReceivedText, successText}
	if got := h.replies(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("replies = %q, want %q", got, want)
	}

	support := h.messenger.to(supportChat)
	if len(support) != 1 {
		t.Fatalf("expected a single ticket message, got %d", len(support))
	}
	body := support[0].Body
	for _, part := range []string{"Acme Corp", "Screen freezes on checkout page for ten seconds", "@jane"} {
		if !strings.Contains(body, part) {
			t.Fatalf("ticket message missing %q: %s", part, body)
		}
	}

	if h.engine.InProgress(userID) {
		t.Fatalf("conversation should be removed after submission")
	}
	stats, err := h.engine.Stats(context.Background())
	mustNoErr(t, err)
	if stats.Dispatched != 1 || stats.Archived != 1 || stats.Active != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestEngineShortMerchantFailsAtDescription(t *testing.T) {
	h := newHarness(t)

	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.text(t, "A"))
	if h.phase() != PhaseAwaitingDescription {
		t.Fatalf("merchant must not be validated on entry, phase = %q", h.phase())
	}

	err := h.text(t, "Screen freezes on checkout page for ten seconds")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "merchant" {
		t.Fatalf("expected merchant validation error, got %v", err)
	}
	if h.engine.InProgress(userID) {
		t.Fatalf("conversation should be deleted on validation failure")
	}
	replies := h.replies()
	last := replies[len(replies)-1]
	if last != errorText("Merchant name must be at least 2 characters long") {
		t.Fatalf("last reply = %q", last)
	}
	if len(h.messenger.to(supportChat)) != 0 {
		t.Fatalf("nothing should be dispatched")
	}
}

func TestEngineDoneWithoutMediaSendsOnlyText(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.text(t, "Acme"))
	mustNoErr(t, h.text(t, "Payment terminal offline"))
	mustNoErr(t, h.text(t, "  done "))

	support := h.messenger.to(supportChat)
	if len(support) != 1 || support[0].Method != "text" {
		t.Fatalf("expected one text message, got %+v", support)
	}
}

func TestEngineMediaFlow(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.text(t, "Acme"))
	mustNoErr(t, h.text(t, "Payment terminal offline"))
	mustNoErr(t, h.media(t, EventPhoto, "photo-1"))
	mustNoErr(t, h.media(t, EventVideo, "video-1"))

	conv, _ := h.store.Get(userID)
	media := conv.(AwaitingMedia).Draft.Media
	if len(media) != 2 || media[0] != (Media{Kind: MediaPhoto, Ref: "photo-1"}) || media[1] != (Media{Kind: MediaVideo, Ref: "video-1"}) {
		t.Fatalf("unexpected media %+v", media)
	}

	mustNoErr(t, h.text(t, "something else"))
	replies := h.replies()
	if replies[len(replies)-1] != mediaRepromptText {
		t.Fatalf("expected re-prompt, got %q", replies[len(replies)-1])
	}

	mustNoErr(t, h.text(t, "done"))
	var sends []string
	for _, s := range h.messenger.to(supportChat) {
		sends = append(sends, s.Method)
	}
	if strings.Join(sends, ",") != "text,photo,video" {
		t.Fatalf("support sends = %v", sends)
	}
}

func TestEngineRejectsUnexpectedMedia(t *testing.T) {
	h := newHarness(t)

	mustNoErr(t, h.media(t, EventPhoto, "p"))
	if h.engine.InProgress(userID) {
		t.Fatalf("media must not create a conversation")
	}

	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.media(t, EventVideo, "v"))
	if h.phase() != PhaseAwaitingMerchant {
		t.Fatalf("rejected media must not change the phase, got %q", h.phase())
	}

	want := []string{noConversationText, merchantPromptText, mediaUnexpectedText}
	if got := h.replies(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("replies = %q", got)
	}
}

func TestEngineIgnoresTextWithoutConversation(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.text(t, "hello there"))
	mustNoErr(t, h.text(t, "/unknown"))
	if len(h.replies()) != 0 || h.store.Len() != 0 {
		t.Fatalf("text without a conversation must be ignored")
	}

	mustNoErr(t, h.command(t, CommandNewTicket))
	h.messenger.reset()
	mustNoErr(t, h.text(t, "/newticket"))
	if len(h.replies()) != 0 || h.phase() != PhaseAwaitingMerchant {
		t.Fatalf("command-prefixed text must be ignored")
	}
}

func TestEngineRestartResetsDraft(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.text(t, "Acme"))
	mustNoErr(t, h.text(t, "Payment terminal offline"))
	mustNoErr(t, h.media(t, EventPhoto, "p"))

	mustNoErr(t, h.command(t, CommandNewTicket))
	conv, ok := h.store.Get(userID)
	if !ok || conv != (AwaitingMerchant{}) {
		t.Fatalf("restart should reset to an empty draft, got %v", conv)
	}
}

func TestEngineCancel(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.command(t, CommandCancel))
	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.command(t, CommandCancel))

	if h.engine.InProgress(userID) {
		t.Fatalf("cancel should delete the conversation")
	}
	want := []string{nothingToCancelText, merchantPromptText, cancelledText}
	if got := h.replies(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("replies = %q", got)
	}
}

func TestEngineDispatchFailureEndsConversation(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.text(t, "Acme"))
	mustNoErr(t, h.text(t, "Payment terminal offline"))
	h.messenger.fail = func(s sentMessage) bool { return s.Chat == supportChat.Recipient() }

	err := h.text(t, "done")
	if !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("expected dispatch failure, got %v", err)
	}
	if h.engine.InProgress(userID) {
		t.Fatalf("conversation should be deleted after a failed dispatch")
	}
	replies := h.replies()
	if replies[len(replies)-1] != errorText(dispatchFailedReason) {
		t.Fatalf("last reply = %q", replies[len(replies)-1])
	}
	if len(h.archive.tickets) != 0 {
		t.Fatalf("failed tickets must not be archived")
	}
}

func TestEngineArchiveFailureIsNotVisible(t *testing.T) {
	h := newHarness(t)
	h.archive.err = errors.New("db down")
	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.text(t, "Acme"))
	mustNoErr(t, h.text(t, "Payment terminal offline"))
	mustNoErr(t, h.text(t, "done"))

	replies := h.replies()
	if replies[len(replies)-1] != successText {
		t.Fatalf("archive failure must not change the reply, got %q", replies[len(replies)-1])
	}
}

func TestEngineFailedAttachmentStillReportsSuccess(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.text(t, "Acme"))
	mustNoErr(t, h.text(t, "Payment terminal offline"))
	mustNoErr(t, h.media(t, EventPhoto, "photo-1"))
	mustNoErr(t, h.media(t, EventVideo, "video-broken"))
	mustNoErr(t, h.media(t, EventPhoto, "photo-2"))
	h.messenger.fail = func(s sentMessage) bool { return s.Body == "video-broken" }

	mustNoErr(t, h.text(t, "done"))

	replies := h.replies()
	if replies[len(replies)-1] != successText {
		t.Fatalf("last reply = %q, want success", replies[len(replies)-1])
	}
	var sends []string
	for _, s := range h.messenger.to(supportChat) {
		sends = append(sends, s.Method+":"+s.Body)
	}
	want := []string{
		"photo:photo-1",
		"text:⚠️ Failed to send video attachment for ticket from @jane",
		"photo:photo-2",
	}
	if len(sends) != len(want)+1 || !strings.HasPrefix(sends[0], "text:") {
		t.Fatalf("support sends = %q", sends)
	}
	if got := strings.Join(sends[1:], "|"); got != strings.Join(want, "|") {
		t.Fatalf("attachments = %q, want %q", sends[1:], want)
	}
	if len(h.archive.tickets) != 1 || h.archive.tickets[0].FailedAttachments != 1 {
		t.Fatalf("archived tickets = %+v", h.archive.tickets)
	}
}

func TestEngineLostConfirmationStillTellsUser(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.text(t, "Acme"))
	mustNoErr(t, h.text(t, "Payment terminal offline"))
	h.messenger.fail = func(s sentMessage) bool { return s.Body == successText }

	if err := h.text(t, "done"); !errors.Is(err, errSend) {
		t.Fatalf("expected send error, got %v", err)
	}
	replies := h.replies()
	if replies[len(replies)-1] != errorText(confirmFailedReason) {
		t.Fatalf("last reply = %q", replies[len(replies)-1])
	}
	if len(h.messenger.to(supportChat)) != 1 || h.engine.InProgress(userID) {
		t.Fatalf("ticket should be sent once and the conversation closed")
	}
}

func TestEnginePromptFailureDeletesConversation(t *testing.T) {
	h := newHarness(t)
	h.messenger.fail = func(s sentMessage) bool { return s.Body == merchantPromptText }

	if err := h.command(t, CommandNewTicket); !errors.Is(err, errSend) {
		t.Fatalf("expected send error, got %v", err)
	}
	if h.engine.InProgress(userID) {
		t.Fatalf("conversation should not survive a failed prompt")
	}
	if got := h.replies(); len(got) != 1 || got[0] != errorText(newTicketFailedReason) {
		t.Fatalf("replies = %q", got)
	}
}

func TestEngineMediaConfirmFailureKeepsAttachment(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.text(t, "Acme"))
	mustNoErr(t, h.text(t, "Payment terminal offline"))
	h.messenger.fail = func(s sentMessage) bool { return s.Body == mediaAttachedText }

	if err := h.media(t, EventPhoto, "p"); err == nil {
		t.Fatalf("expected error")
	}
	conv, ok := h.store.Get(userID)
	if !ok || len(conv.(AwaitingMedia).Draft.Media) != 1 {
		t.Fatalf("attachment should be kept, got %v", conv)
	}
}

func TestEngineExpiredConversationIsGone(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.command(t, CommandNewTicket))

	h.now = h.now.Add(state.DefaultTTL + time.Minute)
	h.store.SweepExpired(context.Background())

	if h.engine.InProgress(userID) {
		t.Fatalf("expired conversation should be swept")
	}
	h.messenger.reset()
	mustNoErr(t, h.text(t, "Acme"))
	if len(h.replies()) != 0 {
		t.Fatalf("text after expiry must be ignored")
	}
}

func TestEngineStatsCommand(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.command(t, CommandNewTicket))
	h.messenger.reset()
	mustNoErr(t, h.command(t, CommandStats))

	got := h.replies()
	if len(got) != 1 || got[0] != statsText(Stats{Active: 1, ArchiveEnabled: true}) {
		t.Fatalf("stats reply = %q", got)
	}
}

func TestEngineSerializesPerUser(t *testing.T) {
	h := newHarness(t)
	mustNoErr(t, h.command(t, CommandNewTicket))
	mustNoErr(t, h.text(t, "Acme"))
	mustNoErr(t, h.text(t, "Payment terminal offline"))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.media(t, EventPhoto, "p")
		}()
	}
	wg.Wait()

	conv, _ := h.store.Get(userID)
	if got := len(conv.(AwaitingMedia).Draft.Media); got != n {
		t.Fatalf("media count = %d, want %d", got, n)
	}
	if h.engine.locks.len() != 0 {
		t.Fatalf("user locks should be released")
	}
}

func TestNewEngineRequiresDependencies(t *testing.T) {
	if _, err := NewEngine(Options{}); err == nil {
		t.Fatalf("expected error for missing store")
	}
}

func TestReporterHandleFallback(t *testing.T) {
	if got := reporterHandle(""); got != NoUsername {
		t.Fatalf("reporterHandle(\"\") = %q", got)
	}
}
