package entities

import "time"

// TimerSetting is the singleton auto-delete configuration. When active,
// delivered messages are removed after DeleteAfter and PostDeleteText is
// sent instead.
type TimerSetting struct {
	IsActive       bool
	DeleteAfter    time.Duration
	PostDeleteText string
}

// PostMessage is the optional follow-up message appended after a
// category's files, at most one per category.
type PostMessage struct {
	CategoryID string
	Kind       PostKind
	Content    string
	Caption    string
}

type PostKind string

const (
	PostKindText     PostKind = "text"
	PostKindPhoto    PostKind = "photo"
	PostKindVideo    PostKind = "video"
	PostKindDocument PostKind = "document"
)
