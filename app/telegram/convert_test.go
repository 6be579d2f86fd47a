package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
)

func commandMessage(text string, commandLen int) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: commandLen},
		},
	}
}

func TestEventFromMessage_Command(t *testing.T) {
	t.Parallel()

	ev := eventFromMessage(commandMessage("/start cat_a1b2c3d4", len("/start")))
	require.Equal(t, e.EventKindCommand, ev.Kind)
	require.Equal(t, "start", ev.Command)
	require.Equal(t, []string{"cat_a1b2c3d4"}, ev.Args)

	ev = eventFromMessage(commandMessage("/timer on 90", len("/timer")))
	require.Equal(t, "timer", ev.Command)
	require.Equal(t, []string{"on", "90"}, ev.Args)

	ev = eventFromMessage(commandMessage("/categories", len("/categories")))
	require.Equal(t, "categories", ev.Command)
	require.Empty(t, ev.Args)
}

func TestEventFromMessage_Text(t *testing.T) {
	t.Parallel()

	ev := eventFromMessage(&tgbotapi.Message{Text: "Movies"})
	require.Equal(t, e.EventKindText, ev.Kind)
	require.Equal(t, "Movies", ev.Text)
}

func TestEventFromMessage_Document(t *testing.T) {
	t.Parallel()

	msg := &tgbotapi.Message{
		Document: &tgbotapi.Document{FileID: "doc-file-id-123", FileName: "report.pdf", FileSize: 2048},
		Caption:  "quarterly",
	}

	ev := eventFromMessage(msg)
	require.Equal(t, e.EventKindMedia, ev.Kind)
	require.Equal(t, &e.MediaItem{
		FileID:  "doc-file-id-123",
		Name:    "report.pdf",
		Size:    2048,
		Kind:    e.FileKindDocument,
		Caption: "quarterly",
	}, ev.Media)
}

func TestEventFromMessage_DocumentWithoutName(t *testing.T) {
	t.Parallel()

	msg := &tgbotapi.Message{
		Document: &tgbotapi.Document{FileID: "doc-file-id-123"},
	}

	ev := eventFromMessage(msg)
	require.Equal(t, "document_doc-file", ev.Media.Name)
}

func TestEventFromMessage_PhotoPicksHighestResolution(t *testing.T) {
	t.Parallel()

	msg := &tgbotapi.Message{
		Photo: []tgbotapi.PhotoSize{
			{FileID: "thumb000", Width: 90, FileSize: 100},
			{FileID: "medium00", Width: 320, FileSize: 500},
			{FileID: "full0000", Width: 1280, FileSize: 9000},
		},
	}

	ev := eventFromMessage(msg)
	require.Equal(t, e.FileKindPhoto, ev.Media.Kind)
	require.Equal(t, "full0000", ev.Media.FileID)
	require.Equal(t, "photo_full0000.jpg", ev.Media.Name)
	require.Equal(t, int64(9000), ev.Media.Size)
}

func TestEventFromMessage_VideoAndAudio(t *testing.T) {
	t.Parallel()

	ev := eventFromMessage(&tgbotapi.Message{
		Video: &tgbotapi.Video{FileID: "vid-id-00000", FileSize: 7},
	})
	require.Equal(t, e.FileKindVideo, ev.Media.Kind)
	require.Equal(t, "video_vid-id-0.mp4", ev.Media.Name)

	ev = eventFromMessage(&tgbotapi.Message{
		Audio: &tgbotapi.Audio{FileID: "aud", FileSize: 7},
	})
	require.Equal(t, e.FileKindAudio, ev.Media.Kind)
	require.Equal(t, "audio_aud.mp3", ev.Media.Name)
}
