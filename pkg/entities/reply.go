package entities

// Reply is what the engine asks the transport to present. The transport
// decides how to render it (plain message, edit of the pressed button's
// message, keyboard layout).
type Reply struct {
	Text    string
	Buttons [][]Button
}

// Button is an inline choice. Exactly one of URL and Data is set: URL
// buttons open an external link, Data buttons come back as button events.
type Button struct {
	Label string
	URL   string
	Data  string
}

func TextReply(text string) *Reply {
	return &Reply{Text: text}
}
