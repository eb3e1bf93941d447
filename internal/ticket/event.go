package ticket

// EventKind classifies an inbound update.
type EventKind string

const (
	EventCommand EventKind = "command"
	EventText    EventKind = "text"
	EventPhoto   EventKind = "photo"
	EventVideo   EventKind = "video"
)

// Command names a bot command without its slash.
type Command string

const (
	CommandStart     Command = "start"
	CommandHelp      Command = "help"
	CommandNewTicket Command = "newticket"
	CommandCancel    Command = "cancel"
	CommandStats     Command = "stats"
)

// Event is one inbound update, independent of how it was delivered.
type Event struct {
	Kind     EventKind
	UserID   int64
	ChatID   int64
	Username string

	Command  Command // EventCommand
	Text     string  // EventText
	MediaRef string  // EventPhoto, EventVideo
}

func (e Event) mediaKind() MediaKind {
	if e.Kind == EventVideo {
		return MediaVideo
	}
	return MediaPhoto
}
