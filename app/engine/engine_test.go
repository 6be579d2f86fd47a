package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Vahidrezaa/super-duper-funicular/app/delivery"
	"github.com/Vahidrezaa/super-duper-funicular/app/gate"
	"github.com/Vahidrezaa/super-duper-funicular/app/session"
	e "github.com/Vahidrezaa/super-duper-funicular/pkg/entities"
	"github.com/Vahidrezaa/super-duper-funicular/pkg/logger"
)

const (
	adminID int64 = 1
	userID  int64 = 100
)

// --- fakes ---

// fakeAdmins mirrors the authority semantics: super admins cannot be
// demoted, demoting an unknown user reports not found.
type fakeAdmins struct {
	admins   map[int64]bool  // user -> is super
	promoted map[int64]int64 // user -> added by
	demoted  []int64
}

func (f *fakeAdmins) IsAdmin(_ context.Context, id int64) (bool, error) {
	_, ok := f.admins[id]
	return ok, nil
}

func (f *fakeAdmins) Promote(_ context.Context, id, addedBy int64) error {
	if _, ok := f.admins[id]; !ok {
		f.admins[id] = false
	}
	f.promoted[id] = addedBy
	return nil
}

func (f *fakeAdmins) Demote(_ context.Context, id int64) error {
	isSuper, ok := f.admins[id]
	if !ok {
		return fmt.Errorf("admin %d: %w", id, e.ErrNotFound)
	}
	if isSuper {
		return fmt.Errorf("admin %d: %w", id, e.ErrPermissionDenied)
	}

	delete(f.admins, id)
	f.demoted = append(f.demoted, id)
	return nil
}

type fakeCategories struct {
	cats   []e.Category
	nextID string
}

func (f *fakeCategories) CreateCategory(_ context.Context, name string, createdBy int64) (string, error) {
	for _, cat := range f.cats {
		if cat.Name == name {
			return "", fmt.Errorf("category %q: %w", name, e.ErrDuplicate)
		}
	}

	f.cats = append(f.cats, e.Category{ID: f.nextID, Name: name, CreatedBy: createdBy})
	return f.nextID, nil
}

func (f *fakeCategories) GetCategory(_ context.Context, id string) (*e.Category, error) {
	for _, cat := range f.cats {
		if cat.ID == id {
			return &cat, nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", id, e.ErrNotFound)
}

func (f *fakeCategories) ListCategories(context.Context) ([]e.Category, error) {
	return f.cats, nil
}

func (f *fakeCategories) DeleteCategory(_ context.Context, id string) error {
	for i, cat := range f.cats {
		if cat.ID == id {
			f.cats = append(f.cats[:i], f.cats[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("category %q: %w", id, e.ErrNotFound)
}

// fakeFiles skips duplicate file references like the sqlite store does.
type fakeFiles struct {
	files map[string][]e.FileRecord
	seen  map[string]bool
}

func (f *fakeFiles) AddFiles(_ context.Context, categoryID string, batch []e.FileRecord) (int, error) {
	inserted := 0
	for _, file := range batch {
		if f.seen[file.FileID] {
			continue
		}
		f.seen[file.FileID] = true
		f.files[categoryID] = append(f.files[categoryID], file)
		inserted++
	}
	return inserted, nil
}

func (f *fakeFiles) CountFiles(_ context.Context, categoryID string) (int, error) {
	return len(f.files[categoryID]), nil
}

type fakeChannels struct {
	channels []e.Channel
}

func (f *fakeChannels) AddChannel(_ context.Context, ch e.Channel) error {
	for _, existing := range f.channels {
		if existing.ChannelID == ch.ChannelID {
			return fmt.Errorf("channel %q: %w", ch.ChannelID, e.ErrDuplicate)
		}
	}
	f.channels = append(f.channels, ch)
	return nil
}

func (f *fakeChannels) ListChannels(context.Context) ([]e.Channel, error) {
	return f.channels, nil
}

func (f *fakeChannels) DeleteChannel(_ context.Context, id string) error {
	for i, ch := range f.channels {
		if ch.ChannelID == id {
			f.channels = append(f.channels[:i], f.channels[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("channel %q: %w", id, e.ErrNotFound)
}

type fakeSettings struct {
	timer        e.TimerSetting
	posts        map[string]e.PostMessage
	deletedPosts []string
}

func (f *fakeSettings) SetTimer(_ context.Context, t e.TimerSetting) error {
	f.timer = t
	return nil
}

func (f *fakeSettings) GetTimer(context.Context) (e.TimerSetting, error) {
	return f.timer, nil
}

func (f *fakeSettings) SetPostMessage(_ context.Context, pm e.PostMessage) error {
	f.posts[pm.CategoryID] = pm
	return nil
}

func (f *fakeSettings) DeletePostMessage(_ context.Context, categoryID string) error {
	delete(f.posts, categoryID)
	f.deletedPosts = append(f.deletedPosts, categoryID)
	return nil
}

type gateCall struct {
	userID   int64
	channels []e.Channel
}

type fakeGate struct {
	decision gate.Decision
	calls    []gateCall
}

func (f *fakeGate) Check(_ context.Context, userID int64, channels []e.Channel) (gate.Decision, error) {
	f.calls = append(f.calls, gateCall{userID: userID, channels: channels})

	if len(channels) == 0 {
		return gate.Decision{Granted: true}, nil
	}

	return f.decision, nil
}

type deliverCall struct {
	chatID     int64
	categoryID string
}

type fakeDeliverer struct {
	calls  []deliverCall
	report *delivery.Report
	err    error
}

func (f *fakeDeliverer) Deliver(_ context.Context, chatID int64, categoryID string) (*delivery.Report, error) {
	f.calls = append(f.calls, deliverCall{chatID: chatID, categoryID: categoryID})

	if f.err != nil {
		return nil, f.err
	}

	if f.report != nil {
		return f.report, nil
	}

	return &delivery.Report{Sent: 1, MessageIDs: []int{11}}, nil
}

type cleanCall struct {
	chatID     int64
	messageIDs []int
	after      time.Duration
	notice     string
}

type fakeCleaner struct {
	calls []cleanCall
}

func (f *fakeCleaner) ScheduleDelete(chatID int64, messageIDs []int, after time.Duration, notice string) {
	f.calls = append(f.calls, cleanCall{chatID: chatID, messageIDs: messageIDs, after: after, notice: notice})
}

// --- harness ---

type testEnv struct {
	engine     *Engine
	admins     *fakeAdmins
	categories *fakeCategories
	files      *fakeFiles
	channels   *fakeChannels
	settings   *fakeSettings
	gate       *fakeGate
	deliverer  *fakeDeliverer
	cleaner    *fakeCleaner
}

func newTestEnv() *testEnv {
	env := &testEnv{
		// the pre-seeded admin is super, like configured seed admins
		admins:     &fakeAdmins{admins: map[int64]bool{adminID: true}, promoted: map[int64]int64{}},
		categories: &fakeCategories{nextID: "a1b2c3d4"},
		files:      &fakeFiles{files: map[string][]e.FileRecord{}, seen: map[string]bool{}},
		channels:   &fakeChannels{},
		settings:   &fakeSettings{posts: map[string]e.PostMessage{}},
		gate:       &fakeGate{},
		deliverer:  &fakeDeliverer{},
		cleaner:    &fakeCleaner{},
	}

	env.engine = &Engine{
		Log:        logger.NewNop(),
		Sessions:   session.NewStore(),
		Admins:     env.admins,
		Categories: env.categories,
		Files:      env.files,
		Channels:   env.channels,
		Settings:   env.settings,
		Gate:       env.gate,
		Pipeline:   env.deliverer,
		Cleaner:    env.cleaner,
		LinkBase:   "https://t.me/testbot",
	}

	return env
}

// seedCategory registers an existing category directly in the fakes.
func (env *testEnv) seedCategory(id, name string) {
	env.categories.cats = append(env.categories.cats, e.Category{ID: id, Name: name, CreatedBy: adminID})
}

func (env *testEnv) handle(userID int64, ev e.Event) (*e.Reply, error) {
	return env.engine.Handle(context.Background(), userID, ev)
}

func (env *testEnv) state(userID int64) session.State {
	sess := env.engine.Sessions.Get(userID)
	if sess == nil {
		return session.StateIdle
	}
	return sess.State
}

// --- event helpers ---

func cmd(name string, args ...string) e.Event {
	return e.Event{Kind: e.EventKindCommand, Command: name, Args: args}
}

func text(s string) e.Event {
	return e.Event{Kind: e.EventKindText, Text: s}
}

func media(fileID string, kind e.FileKind) e.Event {
	return e.Event{Kind: e.EventKindMedia, Media: &e.MediaItem{
		FileID: fileID,
		Name:   string(kind) + "_" + fileID,
		Size:   123,
		Kind:   kind,
	}}
}

func btn(data string) e.Event {
	return e.Event{Kind: e.EventKindButton, Button: data}
}
