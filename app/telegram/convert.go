package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
)

// eventFromMessage normalizes an inbound message into the engine's event
// shape: command, media attachment or plain text.
func eventFromMessage(msg *tgbotapi.Message) e.Event {
	if msg.IsCommand() {
		return e.Event{
			Kind:    e.EventKindCommand,
			Command: msg.Command(),
			Args:    strings.Fields(msg.CommandArguments()),
		}
	}

	if media := extractMedia(msg); media != nil {
		return e.Event{
			Kind:  e.EventKindMedia,
			Media: media,
		}
	}

	return e.Event{
		Kind: e.EventKindText,
		Text: msg.Text,
	}
}

// extractMedia pulls the supported attachment out of a message, with
// synthetic display names when the transport supplies none.
func extractMedia(msg *tgbotapi.Message) *e.MediaItem {
	switch {
	case msg.Document != nil:
		name := msg.Document.FileName
		if name == "" {
			name = "document_" + shortID(msg.Document.FileID)
		}

		return &e.MediaItem{
			FileID:  msg.Document.FileID,
			Name:    name,
			Size:    int64(msg.Document.FileSize),
			Kind:    e.FileKindDocument,
			Caption: msg.Caption,
		}

	case len(msg.Photo) > 0:
		// the last entry is the highest resolution
		photo := msg.Photo[len(msg.Photo)-1]

		return &e.MediaItem{
			FileID:  photo.FileID,
			Name:    "photo_" + shortID(photo.FileID) + ".jpg",
			Size:    int64(photo.FileSize),
			Kind:    e.FileKindPhoto,
			Caption: msg.Caption,
		}

	case msg.Video != nil:
		return &e.MediaItem{
			FileID:  msg.Video.FileID,
			Name:    "video_" + shortID(msg.Video.FileID) + ".mp4",
			Size:    int64(msg.Video.FileSize),
			Kind:    e.FileKindVideo,
			Caption: msg.Caption,
		}

	case msg.Audio != nil:
		return &e.MediaItem{
			FileID:  msg.Audio.FileID,
			Name:    "audio_" + shortID(msg.Audio.FileID) + ".mp3",
			Size:    int64(msg.Audio.FileSize),
			Kind:    e.FileKindAudio,
			Caption: msg.Caption,
		}

	default:
		return nil
	}
}

func shortID(fileID string) string {
	if len(fileID) > 8 {
		return fileID[:8]
	}
	return fileID
}
