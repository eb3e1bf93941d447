package telegram

import (
	"errors"
	"testing"

	"github.com/m3rciful/supportbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type fakeCommandSetter struct {
	got []tele.Command
	err error
}

func (f *fakeCommandSetter) SetCommands(opts ...interface{}) error {
	for _, o := range opts {
		if list, ok := o.([]tele.Command); ok {
			f.got = list
		}
	}
	return f.err
}

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/newticket", commands.Command{Handler: noop, Description: "Create a new support ticket"})
	reg.RegisterCommand("/cancel", commands.Command{Handler: noop, Description: "Cancel ticket creation"})
	reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "Stats", AdminOnly: true, Hidden: true})
	reg.RegisterCommand("/cancel", commands.Command{Handler: noop, Description: "duplicate"})
	reg.RegisterCommand("nope", commands.Command{Handler: noop, Description: "no slash"})
	reg.RegisterCommand("/empty", commands.Command{Handler: noop})

	if got := len(reg.Commands()); got != 3 {
		t.Fatalf("registered %d commands, want 3", got)
	}
	visible := reg.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "cancel" || visible[1].Text != "newticket" {
		t.Fatalf("visible commands = %+v", visible)
	}
	if reg.Commands()["/cancel"].Description != "Cancel ticket creation" {
		t.Fatalf("duplicate registration overwrote the original")
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all commands = %+v", all)
	}
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("ticket_cancel", noop); err != nil {
		t.Fatalf("RegisterCallback: %v", err)
	}
	if err := reg.RegisterCallback("ticket_cancel", noop); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatalf("expected invalid registration error")
	}
	if _, ok := reg.GetCallback("ticket_cancel"); !ok {
		t.Fatalf("callback not found")
	}
	if keys := reg.ListCallbacks(); len(keys) != 1 || keys[0] != "ticket_cancel" {
		t.Fatalf("ListCallbacks = %v", keys)
	}
}

func TestSetupCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/help", commands.Command{Handler: noop, Description: "Show this help message"})

	setter := &fakeCommandSetter{}
	if err := SetupCommands(setter, reg); err != nil {
		t.Fatalf("SetupCommands: %v", err)
	}
	if len(setter.got) != 1 || setter.got[0].Text != "help" {
		t.Fatalf("published = %+v", setter.got)
	}

	failing := &fakeCommandSetter{err: errors.New("flood")}
	if err := SetupCommands(failing, reg); err == nil {
		t.Fatalf("expected error")
	}
}
