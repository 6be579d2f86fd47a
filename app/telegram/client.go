package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vahidrezaa/super-duper-funicular/app/engine"
	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
	"github.com/Vahidrezaa/super-duper-funicular/pkg/logger"
	"github.com/Vahidrezaa/super-duper-funicular/pkg/mutex"
)

type Client struct {
	Log        logger.Logger
	APIToken   string
	WorkersNum int
	Engine     *engine.Engine

	bot *tgbotapi.BotAPI
	ctx context.Context
	wg  sync.WaitGroup

	// turns serializes event handling per user id; distinct users are
	// handled concurrently by the worker pool
	turns mutex.KeyedMutex
}

func (c *Client) Start(ctx context.Context) (err error) {
	if c.WorkersNum == 0 {
		return fmt.Errorf("workers number must be greater than 0")
	}

	log := c.Log

	c.bot, err = tgbotapi.NewBotAPI(c.APIToken)
	if err != nil {
		return fmt.Errorf("creating bot api: %w", err)
	}

	log.Info("bot api created", "username", c.bot.Self.UserName)

	c.ctx = ctx
	c.Engine.LinkBase = "https://t.me/" + c.bot.Self.UserName

	updatesConf := tgbotapi.NewUpdate(0)
	updatesConf.Timeout = 60

	updatesChan := c.bot.GetUpdatesChan(updatesConf)

	for i := 0; i < c.WorkersNum; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.handleUpdatesFromChan(ctx, updatesChan)
		}()
	}

	return nil
}

func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) handleUpdatesFromChan(ctx context.Context, updatesChan tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updatesChan:
			err := c.handleUpdate(ctx, update)
			if err != nil {
				c.Log.Error("handling update", "tg_update_id", update.UpdateID, "error", err)
				sentry.CaptureException(err)
			}
		}
	}
}

func (c *Client) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	log := c.Log.With("tg_update_id", update.UpdateID)

	defer func() {
		if err := recover(); err != nil {
			log.Error("panic", "error", err)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		return c.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return c.handleMessage(ctx, update.Message)
	default:
		return nil
	}
}

func (c *Client) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	log := c.Log

	if msg.From == nil || msg.Chat == nil {
		log.Warn("message without sender or chat")
		return nil
	}

	if !msg.Chat.IsPrivate() {
		// the bot only converses in private chats
		return nil
	}

	userID := msg.From.ID
	ev := eventFromMessage(msg)

	log.Info(
		"new message",
		"tg_message_id", msg.MessageID,
		"tg_user_id", userID,
		"tg_user_nick", msg.From.UserName,
		"kind", ev.Kind,
		"command", ev.Command,
	)

	reply, err := c.dispatch(ctx, userID, ev)
	if err != nil {
		return fmt.Errorf("handling message: %w", err)
	}

	return c.present(msg.Chat.ID, 0, reply)
}

func (c *Client) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	log := c.Log

	if query.From == nil {
		log.Warn("callback without sender")
		return nil
	}

	// stop the client-side loading spinner right away
	if _, err := c.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Warn("answering callback", "error", err)
	}

	userID := query.From.ID

	log.Info("button pressed", "tg_user_id", userID, "data", query.Data)

	reply, err := c.dispatch(ctx, userID, e.Event{
		Kind:   e.EventKindButton,
		Button: query.Data,
	})
	if err != nil {
		return fmt.Errorf("handling callback: %w", err)
	}

	chatID := userID
	editMessageID := 0
	if query.Message != nil {
		chatID = query.Message.Chat.ID
		editMessageID = query.Message.MessageID
	}

	return c.present(chatID, editMessageID, reply)
}

// dispatch runs one user turn under that user's lock. The lock covers
// the whole turn, including gate retries and delivery throttling, so a
// user cannot interleave events with their own in-flight turn while
// other users keep flowing on the remaining workers.
func (c *Client) dispatch(ctx context.Context, userID int64, ev e.Event) (*e.Reply, error) {
	c.turns.Lock(userID)
	defer c.turns.Unlock(userID)

	return c.Engine.Handle(ctx, userID, ev)
}

// present renders a reply directive. With editMessageID set the pressed
// button's message is rewritten in place instead of sending a new one.
func (c *Client) present(chatID int64, editMessageID int, reply *e.Reply) error {
	if reply == nil {
		return nil
	}

	if editMessageID != 0 {
		var edit tgbotapi.Chattable
		if len(reply.Buttons) > 0 {
			edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, editMessageID, reply.Text, renderKeyboard(reply.Buttons))
		} else {
			edit = tgbotapi.NewEditMessageText(chatID, editMessageID, reply.Text)
		}

		if _, err := c.bot.Send(edit); err != nil {
			return fmt.Errorf("editing message: %w", err)
		}

		return nil
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	msg.DisableWebPagePreview = true
	if len(reply.Buttons) > 0 {
		msg.ReplyMarkup = renderKeyboard(reply.Buttons)
	}

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	return nil
}

func renderKeyboard(buttons [][]e.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		line := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				line = append(line, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
			} else {
				line = append(line, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
			}
		}
		rows = append(rows, line)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
