// Package format renders user-supplied text for Telegram's HTML parse mode.
package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces the characters Telegram's HTML mode treats as markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Bold wraps already-escaped text in a <b> tag.
func Bold(s string) string {
	return "<b>" + s + "</b>"
}
