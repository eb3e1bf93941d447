package ticket

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

const supportChat ChatID = -100500

func newTestDispatcher(m Messenger) *Dispatcher {
	d := NewDispatcher(m, supportChat)
	d.now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 123456789, time.FixedZone("X", 3600)) }
	d.newID = func() uuid.UUID { return uuid.MustParse("6f1c2a9e-8f43-4b7a-9d1e-0c5b2f3a4d5e") }
	return d
}

func TestFormatTicketEscapesUserText(t *testing.T) {
	d := Draft{
		MerchantName:   `<b>Shop & "Co"</b>`,
		Description:    "it's <script>broken</script>",
		ReporterHandle: "jane<doe>",
	}
	got := FormatTicket(d, time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC))
	want := "🎫 <b>New Support Ticket</b>\n\n" +
		"🏪 <b>Merchant:</b> &lt;b&gt;Shop &amp; &quot;Co&quot;&lt;/b&gt;\n" +
		"👤 <b>Reported by:</b> @jane&lt;doe&gt;\n" +
		"📝 <b>Description:</b> it&#039;s &lt;script&gt;broken&lt;/script&gt;\n" +
		"⏰ <b>Created:</b> 2024-01-02T03:04:05.006Z"
	if got != want {
		t.Fatalf("FormatTicket mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestDispatchWithoutMedia(t *testing.T) {
	m := &fakeMessenger{}
	d := newTestDispatcher(m)

	tk, err := d.Dispatch(context.Background(), Draft{MerchantName: "Acme", Description: "Broken checkout", ReporterHandle: "jane"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	out := m.to(supportChat)
	if len(out) != 1 {
		t.Fatalf("expected only the ticket message, got %d sends", len(out))
	}
	if !out[0].Opts.HTML {
		t.Fatalf("ticket message must use HTML")
	}
	if !strings.HasSuffix(out[0].Body, "2024-03-05T13:07:09.123Z") {
		t.Fatalf("timestamp not UTC ISO-8601: %q", out[0].Body)
	}
	if tk.ID.String() != "6f1c2a9e-8f43-4b7a-9d1e-0c5b2f3a4d5e" || tk.FailedAttachments != 0 {
		t.Fatalf("unexpected ticket %+v", tk)
	}
}

func TestDispatchContinuesAfterFailedAttachment(t *testing.T) {
	m := &fakeMessenger{fail: func(s sentMessage) bool { return s.Body == "photo-2" }}
	d := newTestDispatcher(m)

	draft := Draft{
		MerchantName:   "Acme",
		Description:    "Broken checkout",
		ReporterHandle: "jane",
		Media: []Media{
			{Kind: MediaPhoto, Ref: "photo-1"},
			{Kind: MediaPhoto, Ref: "photo-2"},
			{Kind: MediaVideo, Ref: "video-3"},
		},
	}
	tk, err := d.Dispatch(context.Background(), draft)
	if err != nil {
		t.Fatalf("dispatch should succeed: %v", err)
	}
	if tk.FailedAttachments != 1 {
		t.Fatalf("FailedAttachments = %d, want 1", tk.FailedAttachments)
	}

	out := m.to(supportChat)
	var methods []string
	for _, s := range out {
		methods = append(methods, s.Method+":"+s.Body)
	}
	want := []string{
		"text:" + out[0].Body,
		"photo:photo-1",
		"text:⚠️ Failed to send photo attachment for ticket from @jane",
		"video:video-3",
	}
	if strings.Join(methods, "|") != strings.Join(want, "|") {
		t.Fatalf("sends = %v, want %v", methods, want)
	}
	if out[1].Opts.Caption != "Attachment for ticket from @jane" || out[1].Opts.HTML {
		t.Fatalf("unexpected attachment options %+v", out[1].Opts)
	}
}

func TestDispatchFailsWhenTicketMessageFails(t *testing.T) {
	m := &fakeMessenger{fail: func(s sentMessage) bool { return s.Method == "text" }}
	d := newTestDispatcher(m)

	_, err := d.Dispatch(context.Background(), Draft{
		MerchantName: "Acme",
		Description:  "Broken checkout",
		Media:        []Media{{Kind: MediaPhoto, Ref: "p"}},
	})
	if !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
	if !errors.Is(err, errSend) {
		t.Fatalf("cause should be kept, got %v", err)
	}
	if len(m.to(supportChat)) != 0 {
		t.Fatalf("attachments must not be sent after the ticket message fails")
	}
}
