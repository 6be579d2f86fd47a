package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
	"github.com/Vahidrezaa/super-duper-funicular/pkg/logger"
)

// Sender is the outbound send capability. Every method returns the id of
// the sent message so the auto-delete timer can find it later.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) (int, error)
	SendDocument(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendVideo(ctx context.Context, chatID int64, fileID, caption string) (int, error)
	SendAudio(ctx context.Context, chatID int64, fileID, caption string) (int, error)
}

type CategoryStore interface {
	GetCategory(ctx context.Context, categoryID string) (*e.Category, error)
	ListFiles(ctx context.Context, categoryID string) ([]e.FileRecord, error)
	GetPostMessage(ctx context.Context, categoryID string) (*e.PostMessage, error)
}

// Report describes one finished delivery.
type Report struct {
	CategoryName string
	Sent         int
	Failed       int

	// MessageIDs are the transport ids of every message sent, in send
	// order, for the auto-delete timer
	MessageIDs []int
}

// MaxCaptionLen is the transport's caption limit; longer captions are
// cut, not rejected.
const MaxCaptionLen = 1024

const (
	DefaultItemDelay    = 500 * time.Millisecond
	DefaultFailureDelay = 2 * time.Second
)

// Pipeline streams a category's files to a recipient in persisted order.
// A failed item is logged and skipped after a longer pause, it never
// aborts the batch. The configured post message, if any, goes out once
// after everything else and is error-isolated the same way. Admin
// previews and gated deliveries run through the identical path.
type Pipeline struct {
	// Log is a logger
	Log logger.Logger

	// Store reads categories, files and post messages
	Store CategoryStore

	// Sender is the outbound capability
	Sender Sender

	// ItemDelay is the pause between consecutive sends
	ItemDelay time.Duration

	// FailureDelay is the pause after a failed send
	FailureDelay time.Duration
}

// Deliver sends every file of the category to chatID. It fails with
// entities.ErrNotFound when the category does not exist or has no files;
// past that point per-item errors only show up in the report.
func (p *Pipeline) Deliver(ctx context.Context, chatID int64, categoryID string) (*Report, error) {
	cat, err := p.Store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}

	files, err := p.Store.ListFiles(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("category %q has no files: %w", categoryID, e.ErrNotFound)
	}

	report := &Report{CategoryName: cat.Name}

	if id, err := p.Sender.SendText(ctx, chatID, fmt.Sprintf("📤 Sending files of %q...", cat.Name)); err == nil {
		report.MessageIDs = append(report.MessageIDs, id)
	}

	for _, f := range files {
		msgID, err := p.sendFile(ctx, chatID, f)
		if err != nil {
			p.Log.Error("sending file", "file_id", f.FileID, "kind", f.Kind, "error", err)
			report.Failed++
			p.sleep(ctx, p.failureDelay())
			continue
		}

		report.Sent++
		report.MessageIDs = append(report.MessageIDs, msgID)
		p.sleep(ctx, p.itemDelay())
	}

	p.sendPostMessage(ctx, chatID, categoryID, report)

	return report, nil
}

func (p *Pipeline) sendFile(ctx context.Context, chatID int64, f e.FileRecord) (int, error) {
	caption := truncateCaption(f.Caption)

	switch f.Kind {
	case e.FileKindDocument:
		return p.Sender.SendDocument(ctx, chatID, f.FileID, caption)
	case e.FileKindPhoto:
		return p.Sender.SendPhoto(ctx, chatID, f.FileID, caption)
	case e.FileKindVideo:
		return p.Sender.SendVideo(ctx, chatID, f.FileID, caption)
	case e.FileKindAudio:
		return p.Sender.SendAudio(ctx, chatID, f.FileID, caption)
	default:
		return 0, fmt.Errorf("unknown file kind: %s", f.Kind)
	}
}

// sendPostMessage sends the category's follow-up message at most once,
// after all files. Failures are logged, never escalated.
func (p *Pipeline) sendPostMessage(ctx context.Context, chatID int64, categoryID string, report *Report) {
	pm, err := p.Store.GetPostMessage(ctx, categoryID)
	if err != nil {
		if !errors.Is(err, e.ErrNotFound) {
			p.Log.Error("getting post message", "category_id", categoryID, "error", err)
		}
		return
	}

	caption := truncateCaption(pm.Caption)

	var msgID int
	switch pm.Kind {
	case e.PostKindText:
		msgID, err = p.Sender.SendText(ctx, chatID, truncateCaption(pm.Content))
	case e.PostKindPhoto:
		msgID, err = p.Sender.SendPhoto(ctx, chatID, pm.Content, caption)
	case e.PostKindVideo:
		msgID, err = p.Sender.SendVideo(ctx, chatID, pm.Content, caption)
	case e.PostKindDocument:
		msgID, err = p.Sender.SendDocument(ctx, chatID, pm.Content, caption)
	default:
		err = fmt.Errorf("unknown post message kind: %s", pm.Kind)
	}

	if err != nil {
		p.Log.Error("sending post message", "category_id", categoryID, "error", err)
		return
	}

	report.MessageIDs = append(report.MessageIDs, msgID)
}

func (p *Pipeline) itemDelay() time.Duration {
	if p.ItemDelay > 0 {
		return p.ItemDelay
	}
	return DefaultItemDelay
}

func (p *Pipeline) failureDelay() time.Duration {
	if p.FailureDelay > 0 {
		return p.FailureDelay
	}
	return DefaultFailureDelay
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func truncateCaption(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxCaptionLen {
		return s
	}
	return string(runes[:MaxCaptionLen])
}
