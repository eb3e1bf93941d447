// Package ticket implements the support-ticket conversation: the per-user
// state machine that collects a merchant name, a description and optional
// media, validates the draft and dispatches it to the support channel.
package ticket

import "fmt"

// Phase names the step a conversation is waiting on.
type Phase string

const (
	PhaseAwaitingMerchant    Phase = "AWAITING_MERCHANT"
	PhaseAwaitingDescription Phase = "AWAITING_DESCRIPTION"
	PhaseAwaitingMedia       Phase = "AWAITING_MEDIA"
)

// MediaKind selects how an attachment is relayed.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// Media references a file already uploaded to the chat platform.
type Media struct {
	Kind MediaKind
	Ref  string
}

// NoUsername stands in for the reporter handle of users without a username.
const NoUsername = "No username"

// Draft is the ticket assembled so far.
type Draft struct {
	MerchantName   string
	Description    string
	ReporterHandle string
	Media          []Media
}

// WithMedia returns a copy of d with m appended. The receiver is not modified.
func (d Draft) WithMedia(m Media) Draft {
	media := make([]Media, len(d.Media), len(d.Media)+1)
	copy(media, d.Media)
	d.Media = append(media, m)
	return d
}

// Conversation is the state of one user's conversation. Exactly one of
// AwaitingMerchant, AwaitingDescription and AwaitingMedia; each turn replaces
// the value instead of mutating it.
type Conversation interface {
	Phase() Phase
	fmt.Stringer
	conversation()
}

// AwaitingMerchant waits for the merchant name.
type AwaitingMerchant struct{}

// AwaitingDescription holds the merchant name and waits for the description.
type AwaitingDescription struct {
	MerchantName string
}

// AwaitingMedia holds a validated draft and collects attachments until "done".
type AwaitingMedia struct {
	Draft Draft
}

func (AwaitingMerchant) Phase() Phase    { return PhaseAwaitingMerchant }
func (AwaitingDescription) Phase() Phase { return PhaseAwaitingDescription }
func (AwaitingMedia) Phase() Phase       { return PhaseAwaitingMedia }

// String reports only the phase so logging a conversation never leaks user text.
func (c AwaitingMerchant) String() string    { return string(c.Phase()) }
func (c AwaitingDescription) String() string { return string(c.Phase()) }
func (c AwaitingMedia) String() string       { return string(c.Phase()) }

func (AwaitingMerchant) conversation()    {}
func (AwaitingDescription) conversation() {}
func (AwaitingMedia) conversation()       {}
