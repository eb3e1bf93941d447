// Package commands describes bot commands before they are bound to routes.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command is a slash command registered with the bot.
//
// Hidden commands are routed but left out of Telegram's command menu;
// AdminOnly implies Hidden and wraps the handler with the admin guard.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
