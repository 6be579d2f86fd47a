package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Vahidrezaa/super-duper-funicular/app/delivery"
	"github.com/Vahidrezaa/super-duper-funicular/app/gate"
	"github.com/Vahidrezaa/super-duper-funicular/app/session"
	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
	"github.com/Vahidrezaa/super-duper-funicular/pkg/logger"
)

type AdminAuthority interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	Promote(ctx context.Context, userID, addedBy int64) error
	Demote(ctx context.Context, userID int64) error
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, name string, createdBy int64) (string, error)
	GetCategory(ctx context.Context, categoryID string) (*e.Category, error)
	ListCategories(ctx context.Context) ([]e.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

type FileStore interface {
	AddFiles(ctx context.Context, categoryID string, files []e.FileRecord) (int, error)
	CountFiles(ctx context.Context, categoryID string) (int, error)
}

type ChannelStore interface {
	AddChannel(ctx context.Context, ch e.Channel) error
	ListChannels(ctx context.Context) ([]e.Channel, error)
	DeleteChannel(ctx context.Context, channelID string) error
}

type SettingsStore interface {
	SetTimer(ctx context.Context, t e.TimerSetting) error
	GetTimer(ctx context.Context) (e.TimerSetting, error)
	SetPostMessage(ctx context.Context, pm e.PostMessage) error
	DeletePostMessage(ctx context.Context, categoryID string) error
}

type Gatekeeper interface {
	Check(ctx context.Context, userID int64, channels []e.Channel) (gate.Decision, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, chatID int64, categoryID string) (*delivery.Report, error)
}

// Cleaner schedules removal of delivered messages when the auto-delete
// timer is active.
type Cleaner interface {
	ScheduleDelete(chatID int64, messageIDs []int, after time.Duration, notice string)
}

// Engine is the conversation state machine. One inbound event at a time
// per user id comes through Handle; the caller holds that user's turn
// lock for the whole call.
type Engine struct {
	// Log is a logger
	Log logger.Logger

	// Sessions holds the active conversation per user id
	Sessions *session.Store

	// Admins answers and mutates the admin set
	Admins AdminAuthority

	Categories CategoryStore
	Files      FileStore
	Channels   ChannelStore
	Settings   SettingsStore

	// Gate verifies mandatory channel membership
	Gate Gatekeeper

	// Pipeline streams category files to a recipient
	Pipeline Deliverer

	// Cleaner is optional; without it the auto-delete timer setting is
	// stored but never acted on
	Cleaner Cleaner

	// LinkBase is the public bot address deep links are built on, e.g.
	// "https://t.me/somebot". Set once before events flow.
	LinkBase string
}

// Handle interprets one normalized event against the user's session and
// returns what to present. A nil reply means nothing to present (the
// pipeline may already have messaged the user directly).
func (ng *Engine) Handle(ctx context.Context, userID int64, ev e.Event) (*e.Reply, error) {
	if ev.IsCommand("cancel") {
		return ng.cancel(userID), nil
	}

	sess := ng.Sessions.Get(userID)
	if sess == nil {
		return ng.handleIdle(ctx, userID, ev)
	}

	switch sess.State {
	case session.StateIdle:
		return ng.handleIdle(ctx, userID, ev)
	case session.StateAwaitingCategoryName:
		return ng.handleCategoryName(ctx, sess, ev)
	case session.StateAwaitingChannelID:
		return ng.handleChannelID(sess, ev), nil
	case session.StateAwaitingChannelName:
		return ng.handleChannelName(sess, ev), nil
	case session.StateAwaitingChannelLink:
		return ng.handleChannelLink(ctx, sess, ev)
	case session.StateUploading:
		return ng.handleUploading(ctx, sess, ev)
	case session.StateAwaitingPostMessageKind:
		return ng.handlePostMessageKind(ctx, sess, ev)
	case session.StateAwaitingPostMessageContent:
		return ng.handlePostMessageContent(ctx, sess, ev)
	default:
		// unknown state means a corrupted session, reset it
		ng.Log.Error("unknown session state", "tg_user_id", userID, "state", sess.State)
		ng.Sessions.Clear(userID)
		return nil, nil
	}
}

// cancel discards the active session from any state.
func (ng *Engine) cancel(userID int64) *e.Reply {
	if ng.Sessions.Get(userID) == nil {
		return e.TextReply(msgNothingToCancel)
	}

	ng.Sessions.Clear(userID)

	return e.TextReply(msgCancelled)
}

// accessCategory is the deep-link entry: admins get the management menu,
// everyone else passes through the membership gate first.
func (ng *Engine) accessCategory(ctx context.Context, userID int64, categoryID string) (*e.Reply, error) {
	isAdmin, err := ng.Admins.IsAdmin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checking admin: %w", err)
	}

	if isAdmin {
		return ng.adminCategoryMenu(ctx, categoryID)
	}

	channels, err := ng.Channels.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}

	dec, err := ng.Gate.Check(ctx, userID, channels)
	if err != nil {
		return nil, fmt.Errorf("checking membership: %w", err)
	}

	if !dec.Granted {
		return joinPrompt(categoryID, dec.Pending), nil
	}

	return ng.deliverTo(ctx, userID, categoryID)
}

// deliverTo runs the delivery pipeline and, if the auto-delete timer is
// active, schedules removal of everything that was sent.
func (ng *Engine) deliverTo(ctx context.Context, chatID int64, categoryID string) (*e.Reply, error) {
	report, err := ng.Pipeline.Deliver(ctx, chatID, categoryID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.TextReply(msgNothingToSend), nil
		}

		return nil, fmt.Errorf("delivering category: %w", err)
	}

	ng.scheduleAutoDelete(ctx, chatID, report)

	return nil, nil
}

func (ng *Engine) scheduleAutoDelete(ctx context.Context, chatID int64, report *delivery.Report) {
	if ng.Cleaner == nil || len(report.MessageIDs) == 0 {
		return
	}

	timer, err := ng.Settings.GetTimer(ctx)
	if err != nil {
		ng.Log.Error("getting timer setting", "error", err)
		return
	}

	if !timer.IsActive {
		return
	}

	ng.Cleaner.ScheduleDelete(chatID, report.MessageIDs, timer.DeleteAfter, timer.PostDeleteText)
}

func (ng *Engine) adminCategoryMenu(ctx context.Context, categoryID string) (*e.Reply, error) {
	cat, err := ng.Categories.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.TextReply(msgCategoryNotFound), nil
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	count, err := ng.Files.CountFiles(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("counting files: %w", err)
	}

	return &e.Reply{
		Text: fmt.Sprintf("📂 Category: %s\n📦 Files: %d\n🔗 Link:\n%s", cat.Name, count, ng.categoryLink(cat.ID)),
		Buttons: [][]e.Button{
			{{Label: "📁 View files", Data: "view_" + cat.ID}},
			{{Label: "➕ Add files", Data: "add_" + cat.ID}},
			{{Label: "🗑 Delete category", Data: "delcat_" + cat.ID}},
		},
	}, nil
}

func joinPrompt(categoryID string, pending []e.Channel) *e.Reply {
	buttons := make([][]e.Button, 0, len(pending)+1)
	for _, ch := range pending {
		buttons = append(buttons, []e.Button{{Label: "📢 " + ch.Name, URL: ch.InviteLink}})
	}
	buttons = append(buttons, []e.Button{{Label: "✅ I joined", Data: "check_" + categoryID}})

	return &e.Reply{
		Text:    msgJoinFirst,
		Buttons: buttons,
	}
}

// deepLinkPrefix is the whole decoding contract for category deep links:
// "<base>?start=cat_<categoryID>".
const deepLinkPrefix = "cat_"

func (ng *Engine) categoryLink(categoryID string) string {
	return fmt.Sprintf("%s?start=%s%s", ng.LinkBase, deepLinkPrefix, categoryID)
}
