package session

import (
	"sync"

	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
	"github.com/Vahidrezaa/super-duper-funicular/pkg/mutex"
)

// State is the position of a user's conversation. Every flow starts and
// terminates in StateIdle.
type State string

const (
	StateIdle                       State = "idle"
	StateAwaitingCategoryName       State = "awaiting_category_name"
	StateAwaitingChannelID          State = "awaiting_channel_id"
	StateAwaitingChannelName        State = "awaiting_channel_name"
	StateAwaitingChannelLink        State = "awaiting_channel_link"
	StateUploading                  State = "uploading"
	StateAwaitingPostMessageKind    State = "awaiting_post_message_kind"
	StateAwaitingPostMessageContent State = "awaiting_post_message_content"
)

// Session holds one user's conversation position and its transient
// fields. It is discarded whole on any terminal transition.
type Session struct {
	UserID int64
	State  State

	// CategoryID is the target of an upload or post-message flow
	CategoryID string

	// Batch accumulates files during StateUploading, in attachment order
	Batch []e.FileRecord

	// ChannelDraft collects the partial fields of channel registration
	ChannelDraft e.Channel

	// PostKind is the kind chosen in StateAwaitingPostMessageKind
	PostKind e.PostKind
}

// Store keeps at most one active session per user id. Reads and writes
// for a given user happen under that user's turn lock, distinct users
// never block each other.
type Store struct {
	sessions sync.Map
	turns    mutex.KeyedMutex
}

func NewStore() *Store {
	return &Store{}
}

// Lock acquires the user's turn. Every inbound event for the user is
// handled entirely under this lock, including gate waits and delivery.
func (s *Store) Lock(userID int64) {
	s.turns.Lock(userID)
}

func (s *Store) Unlock(userID int64) {
	s.turns.Unlock(userID)
}

// Get returns the user's active session, or nil if the user is idle.
func (s *Store) Get(userID int64) *Session {
	v, ok := s.sessions.Load(userID)
	if !ok {
		return nil
	}
	return v.(*Session)
}

func (s *Store) Put(sess *Session) {
	s.sessions.Store(sess.UserID, sess)
}

// Clear drops the session and all its transient fields.
func (s *Store) Clear(userID int64) {
	s.sessions.Delete(userID)
}
