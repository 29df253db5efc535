package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"leadbot/internal/config"
	"leadbot/internal/membership"
	"leadbot/internal/menu"
	"leadbot/internal/onboarding"
	"leadbot/internal/session"
)

// fakeTeleCtx implements just enough of tele.Context for handler tests.
// Unimplemented methods panic, which keeps the tests honest about what
// the handlers touch.
type fakeTeleCtx struct {
	tele.Context
	sender *tele.User
	chat   *tele.Chat
	values map[string]any
	sent   []string
}

func newFakeTeleCtx(userID int64) *fakeTeleCtx {
	return &fakeTeleCtx{
		sender: &tele.User{ID: userID},
		chat:   &tele.Chat{ID: userID},
		values: make(map[string]any),
	}
}

func (f *fakeTeleCtx) Sender() *tele.User  { return f.sender }
func (f *fakeTeleCtx) Chat() *tele.Chat    { return f.chat }
func (f *fakeTeleCtx) Update() tele.Update { return tele.Update{ID: 1} }
func (f *fakeTeleCtx) Get(key string) any  { return f.values[key] }
func (f *fakeTeleCtx) Set(key string, v any) {
	f.values[key] = v
}

func (f *fakeTeleCtx) Send(what any, _ ...any) error {
	if text, ok := what.(string); ok {
		f.sent = append(f.sent, text)
	}
	return nil
}

// recordingMenuSender counts dispatcher deliveries so tests can assert
// the dispatcher was, or was not, reached.
type recordingMenuSender struct {
	texts []string
}

func (s *recordingMenuSender) SendText(_ context.Context, _ int64, text string) error {
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordingMenuSender) SendDocument(_ context.Context, _ int64, _, _ string) error {
	return nil
}

func (s *recordingMenuSender) SendPhoto(_ context.Context, _ int64, _, _ string) error {
	return nil
}

func (s *recordingMenuSender) SendLink(_ context.Context, _ int64, _, _ string) error {
	return nil
}

type absentChecker struct{}

func (absentChecker) Check(context.Context, int64) (membership.Status, error) {
	return membership.StatusAbsent, nil
}

func newTestApp(t *testing.T, store session.Store) (*App, *recordingMenuSender) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Content.ApplyDefaults()

	app := New(cfg, store, nil)
	sender := &recordingMenuSender{}
	app.flow = onboarding.NewFlow(store, absentChecker{}, nil)
	app.dispatcher = menu.NewDispatcher(cfg.Content, sender)
	return app, sender
}

func putSessionAt(t *testing.T, store session.Store, userID int64, stage session.Stage) {
	t.Helper()
	sess := session.New(userID)
	sess.Stage = stage
	require.NoError(t, store.Put(context.Background(), sess))
}

func TestMenuTokenMidOnboardingRepromptsStage(t *testing.T) {
	store := session.NewMemoryStore()
	app, sender := newTestApp(t, store)
	putSessionAt(t, store, 7, session.StageAwaitingPhone)

	c := newFakeTeleCtx(7)
	require.NoError(t, app.handleMenuToken(c, "about"))

	require.Empty(t, sender.texts, "dispatcher must not serve locked users")
	require.Equal(t, []string{app.cfg.Content.Texts.AskPhone}, c.sent)
}

func TestMenuTokenUnlockedReachesDispatcher(t *testing.T) {
	store := session.NewMemoryStore()
	app, sender := newTestApp(t, store)
	putSessionAt(t, store, 7, session.StageUnlocked)

	c := newFakeTeleCtx(7)
	require.NoError(t, app.handleMenuToken(c, "about"))

	require.Len(t, sender.texts, 1)
	require.Empty(t, c.sent)
}

func TestInProgressTracksStage(t *testing.T) {
	store := session.NewMemoryStore()
	app, _ := newTestApp(t, store)
	ctx := context.Background()

	putSessionAt(t, store, 7, session.StageAwaitingName)
	require.True(t, app.InProgress(ctx, 7))

	putSessionAt(t, store, 7, session.StageUnlocked)
	require.False(t, app.InProgress(ctx, 7))
}

func TestRecentLeadsWithoutRepository(t *testing.T) {
	store := session.NewMemoryStore()
	app, _ := newTestApp(t, store)

	c := newFakeTeleCtx(1)
	require.NoError(t, app.handleRecentLeads(c))
	require.Equal(t, []string{app.cfg.Content.Texts.LeadsDisabled}, c.sent)
}
