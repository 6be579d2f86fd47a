package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Vahidrezaa/super-duper-funicular/app/session"
	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
)

var (
	channelIDPattern  = regexp.MustCompile(`^-100\d+$`)
	inviteLinkPattern = regexp.MustCompile(`^https?://t\.me/[A-Za-z0-9_+\-]+(/[A-Za-z0-9_\-]+)?/?$`)
)

func (ng *Engine) handleCategoryName(ctx context.Context, sess *session.Session, ev e.Event) (*e.Reply, error) {
	if ev.Kind != e.EventKindText {
		return e.TextReply(msgWantCategoryName), nil
	}

	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return e.TextReply(msgWantCategoryName), nil
	}

	categoryID, err := ng.Categories.CreateCategory(ctx, name, sess.UserID)
	if err != nil {
		if errors.Is(err, e.ErrDuplicate) {
			// same state, user may pick another name or cancel
			return e.TextReply(msgCategoryNameTaken), nil
		}

		ng.Log.Error("creating category", "tg_user_id", sess.UserID, "error", err)
		ng.Sessions.Clear(sess.UserID)
		return e.TextReply(msgCategoryCreateFailed), nil
	}

	ng.Sessions.Clear(sess.UserID)

	return e.TextReply(fmt.Sprintf(
		"✅ Category %q created.\n\n🔗 Link:\n%s", name, ng.categoryLink(categoryID),
	)), nil
}

func (ng *Engine) handleUploading(ctx context.Context, sess *session.Session, ev e.Event) (*e.Reply, error) {
	switch {
	case ev.Kind == e.EventKindMedia:
		sess.Batch = append(sess.Batch, e.FileRecord{
			CategoryID: sess.CategoryID,
			FileID:     ev.Media.FileID,
			Name:       ev.Media.Name,
			Size:       ev.Media.Size,
			Kind:       ev.Media.Kind,
			Caption:    ev.Media.Caption,
		})
		ng.Sessions.Put(sess)

		return e.TextReply(fmt.Sprintf("✅ File received! (%d in batch)", len(sess.Batch))), nil

	case ev.IsCommand("finish_upload"):
		return ng.finishUpload(ctx, sess)

	default:
		return e.TextReply(msgWantFiles), nil
	}
}

// finishUpload persists the batch. Duplicate file references are
// silently skipped by the store; the report only carries counts.
func (ng *Engine) finishUpload(ctx context.Context, sess *session.Session) (*e.Reply, error) {
	ng.Sessions.Clear(sess.UserID)

	if len(sess.Batch) == 0 {
		return e.TextReply(msgNoFilesReceived), nil
	}

	inserted, err := ng.Files.AddFiles(ctx, sess.CategoryID, sess.Batch)
	if err != nil {
		ng.Log.Error("saving upload batch", "category_id", sess.CategoryID, "error", err)
		return e.TextReply(msgUploadSaveFailed), nil
	}

	return e.TextReply(fmt.Sprintf(
		"✅ Saved %d of %d files.\n\n🔗 Link:\n%s",
		inserted, len(sess.Batch), ng.categoryLink(sess.CategoryID),
	)), nil
}

func (ng *Engine) handleChannelID(sess *session.Session, ev e.Event) *e.Reply {
	if ev.Kind != e.EventKindText || !channelIDPattern.MatchString(strings.TrimSpace(ev.Text)) {
		return e.TextReply(msgInvalidChannelID)
	}

	sess.ChannelDraft.ChannelID = strings.TrimSpace(ev.Text)
	sess.State = session.StateAwaitingChannelName
	ng.Sessions.Put(sess)

	return e.TextReply(msgAskChannelName)
}

func (ng *Engine) handleChannelName(sess *session.Session, ev e.Event) *e.Reply {
	name := strings.TrimSpace(ev.Text)
	if ev.Kind != e.EventKindText || name == "" {
		return e.TextReply(msgWantChannelName)
	}

	sess.ChannelDraft.Name = name
	sess.State = session.StateAwaitingChannelLink
	ng.Sessions.Put(sess)

	return e.TextReply(msgAskChannelLink)
}

func (ng *Engine) handleChannelLink(ctx context.Context, sess *session.Session, ev e.Event) (*e.Reply, error) {
	link := strings.TrimSpace(ev.Text)
	if ev.Kind != e.EventKindText || !inviteLinkPattern.MatchString(link) {
		return e.TextReply(msgInvalidInviteLink), nil
	}

	sess.ChannelDraft.InviteLink = link

	err := ng.Channels.AddChannel(ctx, sess.ChannelDraft)
	ng.Sessions.Clear(sess.UserID)
	if err != nil {
		if errors.Is(err, e.ErrDuplicate) {
			return e.TextReply(msgChannelExists), nil
		}

		ng.Log.Error("adding channel", "channel_id", sess.ChannelDraft.ChannelID, "error", err)
		return e.TextReply(msgChannelAddFailed), nil
	}

	return e.TextReply(msgChannelAdded), nil
}

func (ng *Engine) handlePostMessageKind(ctx context.Context, sess *session.Session, ev e.Event) (*e.Reply, error) {
	if ev.Kind != e.EventKindButton {
		return e.TextReply(msgWantPostMessageKind), nil
	}

	if ev.Button == "pmdelete" {
		err := ng.Settings.DeletePostMessage(ctx, sess.CategoryID)
		ng.Sessions.Clear(sess.UserID)
		if err != nil {
			ng.Log.Error("deleting post message", "category_id", sess.CategoryID, "error", err)
			return e.TextReply(msgPostMessageDeleteFailed), nil
		}

		return e.TextReply(msgPostMessageDeleted), nil
	}

	kindName, ok := strings.CutPrefix(ev.Button, "pmkind_")
	if !ok {
		return e.TextReply(msgWantPostMessageKind), nil
	}

	kind := e.PostKind(kindName)
	switch kind {
	case e.PostKindText, e.PostKindPhoto, e.PostKindVideo, e.PostKindDocument:
	default:
		return e.TextReply(msgWantPostMessageKind), nil
	}

	sess.PostKind = kind
	sess.State = session.StateAwaitingPostMessageContent
	ng.Sessions.Put(sess)

	return e.TextReply(postMessagePrompt(kind)), nil
}

func (ng *Engine) handlePostMessageContent(ctx context.Context, sess *session.Session, ev e.Event) (*e.Reply, error) {
	pm := e.PostMessage{
		CategoryID: sess.CategoryID,
		Kind:       sess.PostKind,
	}

	switch sess.PostKind {
	case e.PostKindText:
		text := strings.TrimSpace(ev.Text)
		if ev.Kind != e.EventKindText || text == "" {
			return e.TextReply(postMessagePrompt(sess.PostKind)), nil
		}
		pm.Content = text

	case e.PostKindPhoto, e.PostKindVideo, e.PostKindDocument:
		if ev.Kind != e.EventKindMedia || ev.Media.Kind != e.FileKind(sess.PostKind) {
			return e.TextReply(postMessagePrompt(sess.PostKind)), nil
		}
		pm.Content = ev.Media.FileID
		pm.Caption = ev.Media.Caption

	default:
		// kind was validated on entry, a mismatch here is a corrupted session
		ng.Log.Error("invalid post message kind in session", "tg_user_id", sess.UserID, "kind", sess.PostKind)
		ng.Sessions.Clear(sess.UserID)
		return nil, nil
	}

	err := ng.Settings.SetPostMessage(ctx, pm)
	ng.Sessions.Clear(sess.UserID)
	if err != nil {
		ng.Log.Error("setting post message", "category_id", sess.CategoryID, "error", err)
		return e.TextReply(msgPostMessageSaveFailed), nil
	}

	return e.TextReply(msgPostMessageSaved), nil
}

func postMessagePrompt(kind e.PostKind) string {
	switch kind {
	case e.PostKindText:
		return "Send the post-message text, or /cancel:"
	case e.PostKindPhoto:
		return "Send the photo for the post-message, or /cancel:"
	case e.PostKindVideo:
		return "Send the video for the post-message, or /cancel:"
	case e.PostKindDocument:
		return "Send the document for the post-message, or /cancel:"
	default:
		return msgWantPostMessageKind
	}
}
