package entities

// Channel is a mandatory channel a user has to join before any category
// is delivered to them.
type Channel struct {
	ChannelID  string
	Name       string
	InviteLink string
}
