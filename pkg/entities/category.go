package entities

import "time"

type Category struct {
	ID        string
	Name      string
	CreatedBy int64
	CreatedAt time.Time
}

type FileRecord struct {
	CategoryID string
	FileID     string
	Name       string
	Size       int64
	Kind       FileKind
	Caption    string
}

type FileKind string

const (
	// FileKindDocument is a generic file attachment
	FileKindDocument FileKind = "document"

	// FileKindPhoto is an image attachment
	FileKindPhoto FileKind = "photo"

	// FileKindVideo is a video attachment
	FileKindVideo FileKind = "video"

	// FileKindAudio is an audio attachment
	FileKindAudio FileKind = "audio"
)
