package keyboard

import "testing"

func TestReplyButtons(t *testing.T) {
	markup := ReplyButtons([]string{"done"}, []string{"/cancel"})
	if !markup.ResizeKeyboard {
		t.Fatalf("expected resized keyboard")
	}
	if len(markup.ReplyKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.ReplyKeyboard))
	}
	if got := markup.ReplyKeyboard[0][0].Text; got != "done" {
		t.Fatalf("first button = %q", got)
	}
	if got := markup.ReplyKeyboard[1][0].Text; got != "/cancel" {
		t.Fatalf("second button = %q", got)
	}
}

func TestSingleCancelMarkup(t *testing.T) {
	markup := SingleCancelMarkup("ticket_cancel")
	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 1 {
		t.Fatalf("unexpected keyboard shape: %+v", markup.InlineKeyboard)
	}
	btn := markup.InlineKeyboard[0][0]
	if btn.Text != defaultCancelButtonText {
		t.Fatalf("label = %q", btn.Text)
	}
	if btn.Unique != "ticket_cancel" || btn.Data != "cancel" {
		t.Fatalf("button = %+v", btn)
	}
}

func TestRemoveKeyboard(t *testing.T) {
	if !RemoveKeyboard().RemoveKeyboard {
		t.Fatalf("expected RemoveKeyboard flag")
	}
}
