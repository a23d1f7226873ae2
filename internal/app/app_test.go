package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prollm/translatorui/internal/chat"
	"github.com/prollm/translatorui/internal/client"
	"github.com/prollm/translatorui/internal/config"
	"github.com/prollm/translatorui/internal/store"
)

// stubCompleter replays canned fragments instead of calling the remote
// service.
type stubCompleter struct {
	fragments []client.Fragment
	full      string
	err       error
}

func (s *stubCompleter) Complete(_ context.Context, _ []client.Message, _ *chat.Setting) (string, error) {
	return s.full, s.err
}

func (s *stubCompleter) Stream(_ context.Context, _ []client.Message, _ *chat.Setting) <-chan client.Fragment {
	out := make(chan client.Fragment, len(s.fragments))
	for _, fragment := range s.fragments {
		out <- fragment
	}
	close(out)
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.New()
	cfg.FrontendPath = filepath.Join(root, "frontend", "default.json")
	cfg.SettingsDir = filepath.Join(root, "settings")
	cfg.CacheDir = filepath.Join(root, "cache")
	writeFile(t, cfg.FrontendPath, `{"setting_id":"default","chat_id":null}`)
	writeFile(t, filepath.Join(cfg.SettingsDir, "default.json"), `{"id":"default","data":{"model":"gpt-4o-mini"}}`)
	return cfg
}

func newTestApp(t *testing.T, completer Completer) *App {
	t.Helper()
	a := New(store.New(), completer, newTestConfig(t))
	require.NoError(t, a.Startup())
	return a
}

func TestStartupSynthesizesInitialChat(t *testing.T) {
	a := newTestApp(t, &stubCompleter{})

	require.Equal(t, []string{"Start"}, a.Store.ChatIDs())
	assert.Equal(t, "Start", a.ChatID)
	assert.Equal(t, "default", a.SettingID)
	assert.Empty(t, a.Current().History)
}

func TestStartupPrefersCachedFrontend(t *testing.T) {
	cfg := newTestConfig(t)
	writeFile(t, filepath.Join(cfg.CacheDir, "chats", "greetings.json"), `{"id":"greetings","history":[["hi","hello"]]}`)
	writeFile(t, filepath.Join(cfg.CacheDir, "frontend.json"), `{"setting_id":"cached","chat_id":"greetings"}`)

	a := New(store.New(), &stubCompleter{}, cfg)
	require.NoError(t, a.Startup())
	assert.Equal(t, "cached", a.SettingID)
	assert.Equal(t, "greetings", a.ChatID)
}

func TestStartupDanglingChatPointerFallsBack(t *testing.T) {
	cfg := newTestConfig(t)
	writeFile(t, cfg.FrontendPath, `{"setting_id":"default","chat_id":"gone"}`)
	writeFile(t, filepath.Join(cfg.CacheDir, "chats", "greetings.json"), `{"id":"greetings","history":[]}`)

	a := New(store.New(), &stubCompleter{}, cfg)
	require.NoError(t, a.Startup())
	assert.Equal(t, "greetings", a.ChatID)
}

func TestStartupMissingFrontendIsFatal(t *testing.T) {
	cfg := newTestConfig(t)
	require.NoError(t, os.Remove(cfg.FrontendPath))

	a := New(store.New(), &stubCompleter{}, cfg)
	assert.Error(t, a.Startup())
}

func TestBotReplyAccumulatesFragments(t *testing.T) {
	completer := &stubCompleter{fragments: []client.Fragment{
		{Content: "Hel"},
		{Content: "lo"},
		{Content: ""},
		{Content: "!"},
	}}
	a := newTestApp(t, completer)

	a.UserMessage("I agree")
	var streamed string
	full, err := a.BotReply(context.Background(), func(fragment string) {
		streamed += fragment
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", full)
	assert.Equal(t, "Hello!", streamed)

	history := a.Current().History
	require.Len(t, history, 1)
	assert.Equal(t, "I agree", history[0].User)
	require.NotNil(t, history[0].Bot)
	assert.Equal(t, "Hello!", *history[0].Bot)
}

func TestBotReplyPropagatesTransportError(t *testing.T) {
	transportErr := errors.New("connection reset")
	completer := &stubCompleter{fragments: []client.Fragment{
		{Content: "par"},
		{Err: transportErr},
	}}
	a := newTestApp(t, completer)

	a.UserMessage("I agree")
	partial, err := a.BotReply(context.Background(), nil)
	assert.ErrorIs(t, err, transportErr)
	assert.Equal(t, "par", partial)

	// The partially accumulated bot message stays in place.
	history := a.Current().History
	require.NotNil(t, history[0].Bot)
	assert.Equal(t, "par", *history[0].Bot)
}

func TestBotReplyWithoutPendingTurn(t *testing.T) {
	a := newTestApp(t, &stubCompleter{})

	_, err := a.BotReply(context.Background(), nil)
	assert.Error(t, err)

	a.UserMessage("hi")
	_, err = a.BotReply(context.Background(), nil)
	require.NoError(t, err)
	_, err = a.BotReply(context.Background(), nil)
	assert.Error(t, err)
}

func TestAddAndSelectChat(t *testing.T) {
	a := newTestApp(t, &stubCompleter{})
	a.UserMessage("hi")

	created := a.AddChat(a.Current().History)
	assert.Equal(t, created.ID, a.ChatID)
	assert.Empty(t, created.History)

	// The previous chat kept its flushed history.
	selected, err := a.SelectChat("Start", created.History)
	require.NoError(t, err)
	assert.Equal(t, "Start", a.ChatID)
	require.Len(t, selected.History, 1)
	assert.Equal(t, "hi", selected.History[0].User)
}

func TestSelectChatUnknownID(t *testing.T) {
	a := newTestApp(t, &stubCompleter{})

	_, err := a.SelectChat("missing", a.Current().History)
	assert.ErrorIs(t, err, store.ErrChatNotFound)
	assert.Equal(t, "Start", a.ChatID)
}

func TestDeleteChatSwitchesToFirstRemaining(t *testing.T) {
	a := newTestApp(t, &stubCompleter{})
	created := a.AddChat(a.Current().History)

	current, found := a.DeleteChat(created.ID)
	assert.True(t, found)
	assert.Equal(t, "Start", current.ID)
	assert.Equal(t, "Start", a.ChatID)
}

func TestDeleteLastChatSynthesizesFreshOne(t *testing.T) {
	a := newTestApp(t, &stubCompleter{})

	current, found := a.DeleteChat("Start")
	assert.True(t, found)
	assert.NotEqual(t, "Start", current.ID)
	assert.Equal(t, current.ID, a.ChatID)
	assert.Empty(t, current.History)
}

func TestRenameChat(t *testing.T) {
	a := newTestApp(t, &stubCompleter{})

	c, err := a.RenameChat("Greetings")
	require.NoError(t, err)
	assert.Equal(t, "Greetings", c.ID)
	assert.Equal(t, "Greetings", a.ChatID)
	assert.Equal(t, []string{"Greetings"}, a.Store.ChatIDs())
}

func TestClearChat(t *testing.T) {
	a := newTestApp(t, &stubCompleter{})
	a.UserMessage("hi")

	a.ClearChat()
	assert.Empty(t, a.Current().History)
}

func TestSaveAfterDeleteDoesNotResurrectChat(t *testing.T) {
	cfg := newTestConfig(t)
	a := New(store.New(), &stubCompleter{}, cfg)
	require.NoError(t, a.Startup())

	created := a.AddChat(a.Current().History)
	require.NoError(t, a.Save())

	_, found := a.DeleteChat(created.ID)
	require.True(t, found)
	require.NoError(t, a.Save())

	reloaded := New(store.New(), &stubCompleter{}, cfg)
	require.NoError(t, reloaded.Startup())
	assert.Equal(t, []string{"Start"}, reloaded.Store.ChatIDs())
}

func TestSaveAndReload(t *testing.T) {
	cfg := newTestConfig(t)
	a := New(store.New(), &stubCompleter{}, cfg)
	require.NoError(t, a.Startup())

	a.UserMessage("hi")
	bot := "hello"
	a.Current().History[0].Bot = &bot
	_, err := a.RenameChat("Greetings")
	require.NoError(t, err)
	a.SelectSetting("default")
	require.NoError(t, a.Save())

	reloaded := New(store.New(), &stubCompleter{}, cfg)
	require.NoError(t, reloaded.Startup())
	assert.Equal(t, "Greetings", reloaded.ChatID)
	assert.Equal(t, "default", reloaded.SettingID)
	history := reloaded.Current().History
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].User)
	require.NotNil(t, history[0].Bot)
	assert.Equal(t, "hello", *history[0].Bot)
}
