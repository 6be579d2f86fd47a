package entities

// Event is a normalized inbound user event, decoupled from the transport
// update shape.
type Event struct {
	Kind EventKind

	// Command and Args are set for EventKindCommand
	Command string
	Args    []string

	// Text is set for EventKindText
	Text string

	// Media is set for EventKindMedia
	Media *MediaItem

	// Button is the callback payload for EventKindButton
	Button string
}

type EventKind string

const (
	// EventKindCommand is a slash command with optional arguments
	EventKindCommand EventKind = "command"

	// EventKindText is a plain text message
	EventKindText EventKind = "text"

	// EventKindMedia is a message carrying a supported attachment
	EventKindMedia EventKind = "media"

	// EventKindButton is an inline button press
	EventKindButton EventKind = "button"
)

// MediaItem describes an attachment extracted from an inbound message.
type MediaItem struct {
	FileID  string
	Name    string
	Size    int64
	Kind    FileKind
	Caption string
}

func (ev *Event) IsCommand(name string) bool {
	return ev.Kind == EventKindCommand && ev.Command == name
}
