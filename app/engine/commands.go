package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Vahidrezaa/super-duper-funicular/app/session"
	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
)

// handleIdle dispatches events arriving outside of any flow. Free text
// and media with no active session are dropped, not errors.
func (ng *Engine) handleIdle(ctx context.Context, userID int64, ev e.Event) (*e.Reply, error) {
	switch ev.Kind {
	case e.EventKindCommand:
		return ng.handleCommand(ctx, userID, ev)
	case e.EventKindButton:
		return ng.handleButton(ctx, userID, ev.Button)
	default:
		return nil, nil
	}
}

func (ng *Engine) handleCommand(ctx context.Context, userID int64, ev e.Event) (*e.Reply, error) {
	if ev.Command == "start" {
		return ng.handleStart(ctx, userID, ev.Args)
	}

	// everything below is admin-only
	isAdmin, err := ng.Admins.IsAdmin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checking admin: %w", err)
	}

	if !isAdmin {
		ng.Log.Warn("admin command from non-admin", "tg_user_id", userID, "command", ev.Command)
		return e.TextReply(msgAccessDenied), nil
	}

	switch ev.Command {
	case "new_category":
		ng.Sessions.Put(&session.Session{UserID: userID, State: session.StateAwaitingCategoryName})
		return e.TextReply(msgAskCategoryName), nil

	case "categories":
		return ng.listCategories(ctx)

	case "upload":
		return ng.startUpload(ctx, userID, ev.Args)

	case "finish_upload":
		// no active upload session in idle
		return e.TextReply(msgNoActiveUpload), nil

	case "add_channel":
		ng.Sessions.Put(&session.Session{UserID: userID, State: session.StateAwaitingChannelID})
		return e.TextReply(msgAskChannelID), nil

	case "channels":
		return ng.listChannels(ctx)

	case "remove_channel":
		return ng.removeChannel(ctx, ev.Args)

	case "add_admin":
		return ng.addAdmin(ctx, userID, ev.Args)

	case "remove_admin":
		return ng.removeAdmin(ctx, ev.Args)

	case "timer":
		return ng.configureTimer(ctx, ev.Args)

	case "post_message":
		return ng.startPostMessage(ctx, userID, ev.Args)

	default:
		return e.TextReply(msgUnknownCommand), nil
	}
}

func (ng *Engine) handleStart(ctx context.Context, userID int64, args []string) (*e.Reply, error) {
	if len(args) > 0 && strings.HasPrefix(args[0], deepLinkPrefix) {
		return ng.accessCategory(ctx, userID, strings.TrimPrefix(args[0], deepLinkPrefix))
	}

	isAdmin, err := ng.Admins.IsAdmin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checking admin: %w", err)
	}

	if isAdmin {
		return e.TextReply(msgAdminGreeting), nil
	}

	return e.TextReply(msgUserGreeting), nil
}

func (ng *Engine) handleButton(ctx context.Context, userID int64, data string) (*e.Reply, error) {
	if categoryID, ok := strings.CutPrefix(data, "check_"); ok {
		// membership re-check, open to everyone
		return ng.accessCategory(ctx, userID, categoryID)
	}

	isAdmin, err := ng.Admins.IsAdmin(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checking admin: %w", err)
	}

	if !isAdmin {
		ng.Log.Warn("admin button from non-admin", "tg_user_id", userID, "data", data)
		return e.TextReply(msgAccessDenied), nil
	}

	switch {
	case strings.HasPrefix(data, "view_"):
		return ng.deliverTo(ctx, userID, strings.TrimPrefix(data, "view_"))

	case strings.HasPrefix(data, "add_"):
		return ng.enterUploading(ctx, userID, strings.TrimPrefix(data, "add_"))

	case strings.HasPrefix(data, "upload_"):
		return ng.enterUploading(ctx, userID, strings.TrimPrefix(data, "upload_"))

	case strings.HasPrefix(data, "delcat_"):
		return ng.deleteCategory(ctx, strings.TrimPrefix(data, "delcat_"))

	case strings.HasPrefix(data, "pm_"):
		return ng.enterPostMessage(ctx, userID, strings.TrimPrefix(data, "pm_"))

	default:
		// stale or foreign button, drop it
		return nil, nil
	}
}

func (ng *Engine) listCategories(ctx context.Context) (*e.Reply, error) {
	cats, err := ng.Categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	if len(cats) == 0 {
		return e.TextReply(msgNoCategories), nil
	}

	var sb strings.Builder
	sb.WriteString("📁 Categories:\n\n")
	for _, cat := range cats {
		fmt.Fprintf(&sb, "• %s [ID: %s]\n  %s\n\n", cat.Name, cat.ID, ng.categoryLink(cat.ID))
	}

	return e.TextReply(sb.String()), nil
}

// startUpload enters the uploading state, or presents the category list
// and defers entry when no category id was supplied.
func (ng *Engine) startUpload(ctx context.Context, userID int64, args []string) (*e.Reply, error) {
	if len(args) > 0 {
		return ng.enterUploading(ctx, userID, args[0])
	}

	return ng.categoryChoice(ctx, "upload_", msgChooseUploadCategory)
}

func (ng *Engine) enterUploading(ctx context.Context, userID int64, categoryID string) (*e.Reply, error) {
	_, err := ng.Categories.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.TextReply(msgCategoryNotFound), nil
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	ng.Sessions.Put(&session.Session{
		UserID:     userID,
		State:      session.StateUploading,
		CategoryID: categoryID,
	})

	return e.TextReply(msgUploadStarted), nil
}

func (ng *Engine) deleteCategory(ctx context.Context, categoryID string) (*e.Reply, error) {
	cat, err := ng.Categories.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.TextReply(msgCategoryNotFound), nil
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	// files and post message cascade with the category
	if err := ng.Categories.DeleteCategory(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("deleting category: %w", err)
	}

	return e.TextReply(fmt.Sprintf("✅ Category %q deleted!", cat.Name)), nil
}

func (ng *Engine) listChannels(ctx context.Context) (*e.Reply, error) {
	channels, err := ng.Channels.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}

	if len(channels) == 0 {
		return e.TextReply(msgNoChannels), nil
	}

	var sb strings.Builder
	sb.WriteString("📢 Mandatory channels:\n\n")
	for i, ch := range channels {
		fmt.Fprintf(&sb, "%d. %s\n   ID: %s\n   %s\n\n", i+1, ch.Name, ch.ChannelID, ch.InviteLink)
	}

	return e.TextReply(sb.String()), nil
}

func (ng *Engine) removeChannel(ctx context.Context, args []string) (*e.Reply, error) {
	if len(args) == 0 {
		return e.TextReply(msgRemoveChannelUsage), nil
	}

	err := ng.Channels.DeleteChannel(ctx, args[0])
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.TextReply(msgChannelNotFound), nil
		}

		return nil, fmt.Errorf("deleting channel: %w", err)
	}

	return e.TextReply(msgChannelRemoved), nil
}

func (ng *Engine) addAdmin(ctx context.Context, byUserID int64, args []string) (*e.Reply, error) {
	if len(args) == 0 {
		return e.TextReply(msgAddAdminUsage), nil
	}

	newAdminID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return e.TextReply(msgInvalidUserID), nil
	}

	if err := ng.Admins.Promote(ctx, newAdminID, byUserID); err != nil {
		return nil, fmt.Errorf("promoting admin: %w", err)
	}

	return e.TextReply(fmt.Sprintf("✅ User %d is now an admin.", newAdminID)), nil
}

func (ng *Engine) removeAdmin(ctx context.Context, args []string) (*e.Reply, error) {
	if len(args) == 0 {
		return e.TextReply(msgRemoveAdminUsage), nil
	}

	adminID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return e.TextReply(msgInvalidUserID), nil
	}

	if err := ng.Admins.Demote(ctx, adminID); err != nil {
		switch {
		case errors.Is(err, e.ErrNotFound):
			return e.TextReply(msgAdminNotFound), nil
		case errors.Is(err, e.ErrPermissionDenied):
			return e.TextReply(msgCannotDemoteSuper), nil
		}

		return nil, fmt.Errorf("demoting admin: %w", err)
	}

	return e.TextReply(fmt.Sprintf("✅ Admin %d removed.", adminID)), nil
}

func (ng *Engine) configureTimer(ctx context.Context, args []string) (*e.Reply, error) {
	if len(args) == 0 {
		return e.TextReply(msgTimerUsage), nil
	}

	switch args[0] {
	case "on":
		seconds := defaultTimerSeconds
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return e.TextReply(msgTimerUsage), nil
			}
			seconds = n
		}

		err := ng.Settings.SetTimer(ctx, e.TimerSetting{
			IsActive:       true,
			DeleteAfter:    time.Duration(seconds) * time.Second,
			PostDeleteText: msgPostDeleteNotice,
		})
		if err != nil {
			return nil, fmt.Errorf("setting timer: %w", err)
		}

		return e.TextReply(fmt.Sprintf("⏱ Auto-delete timer enabled (%d seconds).", seconds)), nil

	case "off":
		err := ng.Settings.SetTimer(ctx, e.TimerSetting{IsActive: false})
		if err != nil {
			return nil, fmt.Errorf("setting timer: %w", err)
		}

		return e.TextReply("⏱ Auto-delete timer disabled."), nil

	default:
		return e.TextReply(msgTimerUsage), nil
	}
}

// startPostMessage enters the post-message flow, presenting the category
// list first when no id was supplied.
func (ng *Engine) startPostMessage(ctx context.Context, userID int64, args []string) (*e.Reply, error) {
	if len(args) > 0 {
		return ng.enterPostMessage(ctx, userID, args[0])
	}

	return ng.categoryChoice(ctx, "pm_", msgChoosePostMessageCategory)
}

func (ng *Engine) enterPostMessage(ctx context.Context, userID int64, categoryID string) (*e.Reply, error) {
	_, err := ng.Categories.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.TextReply(msgCategoryNotFound), nil
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	ng.Sessions.Put(&session.Session{
		UserID:     userID,
		State:      session.StateAwaitingPostMessageKind,
		CategoryID: categoryID,
	})

	return &e.Reply{
		Text: msgAskPostMessageKind,
		Buttons: [][]e.Button{
			{
				{Label: "📝 Text", Data: "pmkind_text"},
				{Label: "🖼 Photo", Data: "pmkind_photo"},
			},
			{
				{Label: "🎬 Video", Data: "pmkind_video"},
				{Label: "📄 Document", Data: "pmkind_document"},
			},
			{{Label: "🗑 Remove current", Data: "pmdelete"}},
		},
	}, nil
}

func (ng *Engine) categoryChoice(ctx context.Context, dataPrefix, prompt string) (*e.Reply, error) {
	cats, err := ng.Categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	if len(cats) == 0 {
		return e.TextReply(msgNoCategories), nil
	}

	buttons := make([][]e.Button, 0, len(cats))
	for _, cat := range cats {
		buttons = append(buttons, []e.Button{{Label: cat.Name, Data: dataPrefix + cat.ID}})
	}

	return &e.Reply{Text: prompt, Buttons: buttons}, nil
}
