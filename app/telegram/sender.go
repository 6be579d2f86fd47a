package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
)

// SendText implements the delivery send capability for plain text.
func (c *Client) SendText(_ context.Context, chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("sending text: %w", err)
	}

	return sent.MessageID, nil
}

func (c *Client) SendDocument(_ context.Context, chatID int64, fileID, caption string) (int, error) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	doc.Caption = caption

	sent, err := c.bot.Send(doc)
	if err != nil {
		return 0, fmt.Errorf("sending document: %w", err)
	}

	return sent.MessageID, nil
}

func (c *Client) SendPhoto(_ context.Context, chatID int64, fileID, caption string) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption

	sent, err := c.bot.Send(photo)
	if err != nil {
		return 0, fmt.Errorf("sending photo: %w", err)
	}

	return sent.MessageID, nil
}

func (c *Client) SendVideo(_ context.Context, chatID int64, fileID, caption string) (int, error) {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
	video.Caption = caption

	sent, err := c.bot.Send(video)
	if err != nil {
		return 0, fmt.Errorf("sending video: %w", err)
	}

	return sent.MessageID, nil
}

func (c *Client) SendAudio(_ context.Context, chatID int64, fileID, caption string) (int, error) {
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FileID(fileID))
	audio.Caption = caption

	sent, err := c.bot.Send(audio)
	if err != nil {
		return 0, fmt.Errorf("sending audio: %w", err)
	}

	return sent.MessageID, nil
}

// IsMember implements the membership gate capability. Member, admin and
// owner statuses all satisfy the gate.
func (c *Client) IsMember(_ context.Context, channelID string, userID int64) (bool, error) {
	// channel ids are validated on registration, a bad one here means
	// corrupted storage
	chatID, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("channel id %q: %w", channelID, e.ErrValidation)
	}

	member, err := c.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("getting chat member: %w", err)
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true, nil
	default:
		return false, nil
	}
}

// ScheduleDelete removes delivered messages after the configured delay
// and sends the post-delete notice. Runs detached from the user's turn;
// shutdown cancels pending deletions.
func (c *Client) ScheduleDelete(chatID int64, messageIDs []int, after time.Duration, notice string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		t := time.NewTimer(after)
		defer t.Stop()

		select {
		case <-c.ctx.Done():
			return
		case <-t.C:
		}

		for _, id := range messageIDs {
			if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(chatID, id)); err != nil {
				c.Log.Warn("deleting delivered message", "tg_chat_id", chatID, "tg_message_id", id, "error", err)
			}
		}

		if notice != "" {
			if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, notice)); err != nil {
				c.Log.Warn("sending post-delete notice", "tg_chat_id", chatID, "error", err)
			}
		}
	}()
}
