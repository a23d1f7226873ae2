// Package app binds the session store, the prompt builder and the
// completion client into the event handlers invoked by the UI boundary.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prollm/translatorui/internal/chat"
	"github.com/prollm/translatorui/internal/client"
	"github.com/prollm/translatorui/internal/codec"
	"github.com/prollm/translatorui/internal/config"
	"github.com/prollm/translatorui/internal/prompt"
	"github.com/prollm/translatorui/internal/store"
)

// frontendCacheName is the cached frontend pointer inside the cache
// root, preferred over the configured fallback document.
const frontendCacheName = "frontend.json"

// initialChatID names the chat synthesized when no chats are loaded at
// startup.
const initialChatID = "Start"

// Completer abstracts the completion client for the handlers.
type Completer interface {
	Complete(ctx context.Context, messages []client.Message, setting *chat.Setting) (string, error)
	Stream(ctx context.Context, messages []client.Message, setting *chat.Setting) <-chan client.Fragment
}

// App is the session context of one process run. It owns the current
// chat and setting pointers and dispatches every store mutation; no
// ambient globals are involved.
type App struct {
	Store     *store.Store
	Completer Completer

	cfg *config.Config

	// ChatID and SettingID track the active chat and setting.
	ChatID    string
	SettingID string
}

// New creates an App over an empty store. Call Startup to load state
// from disk.
func New(st *store.Store, completer Completer, cfg *config.Config) *App {
	return &App{Store: st, Completer: completer, cfg: cfg}
}

// Startup loads the frontend pointer, the settings and the chats, and
// resolves the active chat and setting. Parse failures are fatal; no
// partial load is attempted. When zero chats are loaded an initial chat
// named "Start" is created. A dangling or absent chat pointer falls
// back to the first chat.
func (a *App) Startup() error {
	frontend, err := a.loadFrontend()
	if err != nil {
		return err
	}
	slog.Info("Loaded frontend pointer", slog.String("setting_id", frontend.SettingID))

	if err := a.Store.LoadSettings(a.cfg.SettingsDir); err != nil {
		return err
	}
	if err := a.Store.LoadChats(a.cfg.CacheDir); err != nil {
		return err
	}

	if len(a.Store.Chats()) == 0 {
		c := a.Store.EmptyChat(initialChatID)
		slog.Info("Creating initial chat", slog.String("id", c.ID))
		a.Store.AddChat(c)
	}

	a.SettingID = frontend.SettingID
	a.ChatID = a.Store.Chats()[0].ID
	if frontend.ChatID != nil {
		if c := a.Store.FindChat(*frontend.ChatID); c != nil {
			a.ChatID = c.ID
		} else {
			slog.Warn("Frontend points at an unknown chat", slog.String("chat_id", *frontend.ChatID))
		}
	}
	return nil
}

func (a *App) loadFrontend() (chat.Frontend, error) {
	cachePath := filepath.Join(a.cfg.CacheDir, frontendCacheName)
	if _, err := os.Stat(cachePath); err == nil {
		slog.Info("Loading frontend pointer from cache", slog.String("path", cachePath))
		return codec.DecodeFrontend(cachePath)
	}
	slog.Info("Loading frontend pointer", slog.String("path", a.cfg.FrontendPath))
	return codec.DecodeFrontend(a.cfg.FrontendPath)
}

// Current returns the active chat.
func (a *App) Current() *chat.Chat {
	return a.Store.FindChat(a.ChatID)
}

// SelectChat flushes the displayed history back into the store, then
// switches the active chat.
func (a *App) SelectChat(id string, displayed chat.History) (*chat.Chat, error) {
	a.Store.SetChat(a.ChatID, displayed)
	c := a.Store.FindChat(id)
	if c == nil {
		return nil, fmt.Errorf("failed to select chat %q: %w", id, store.ErrChatNotFound)
	}
	a.ChatID = c.ID
	return c, nil
}

// AddChat flushes the displayed history, appends a fresh empty chat and
// makes it active.
func (a *App) AddChat(displayed chat.History) *chat.Chat {
	a.Store.SetChat(a.ChatID, displayed)
	c := a.Store.EmptyChat("")
	a.Store.AddChat(c)
	a.ChatID = c.ID
	return c
}

// DeleteChat removes the chat with the given id; the first remaining
// chat becomes active. It reports whether the chat was found.
func (a *App) DeleteChat(id string) (*chat.Chat, bool) {
	found := a.Store.DeleteChat(id)
	current := a.Store.Chats()[0]
	a.ChatID = current.ID
	return current, found
}

// RenameChat gives the active chat a new id.
func (a *App) RenameChat(newID string) (*chat.Chat, error) {
	c, err := a.Store.RenameChat(a.ChatID, newID)
	if err != nil {
		return nil, err
	}
	a.ChatID = c.ID
	return c, nil
}

// ClearChat empties the active chat's history.
func (a *App) ClearChat() {
	a.Store.SetChat(a.ChatID, chat.History{})
}

// UserMessage appends an unanswered turn to the active chat.
func (a *App) UserMessage(text string) {
	c := a.Current()
	c.History = append(c.History, chat.Turn{User: text})
}

// BotReply completes the last, unanswered turn of the active chat by
// streaming the translation. Fragments are accumulated in delivery
// order into the turn's bot message; onFragment is invoked for each
// fragment as it arrives. A transport error is returned untranslated,
// leaving the partially accumulated bot message in place.
func (a *App) BotReply(ctx context.Context, onFragment func(string)) (string, error) {
	c := a.Current()
	if len(c.History) == 0 {
		return "", fmt.Errorf("chat %q has no turn awaiting completion", c.ID)
	}
	last := &c.History[len(c.History)-1]
	if last.Answered() {
		return "", fmt.Errorf("last turn of chat %q is already answered", c.ID)
	}

	system, err := prompt.System(a.cfg.SourceLang, a.cfg.TargetLang, a.cfg.MachineTranslation)
	if err != nil {
		return "", err
	}
	messages := []client.Message{
		{Role: client.RoleSystem, Content: system},
		{Role: client.RoleUser, Content: last.User},
	}
	setting := a.Store.FindSetting(a.SettingID)

	var b strings.Builder
	for fragment := range a.Completer.Stream(ctx, messages, setting) {
		if fragment.Err != nil {
			return b.String(), fragment.Err
		}
		b.WriteString(fragment.Content)
		accumulated := b.String()
		last.Bot = &accumulated
		if onFragment != nil {
			onFragment(fragment.Content)
		}
	}
	if last.Bot == nil {
		empty := ""
		last.Bot = &empty
	}
	return b.String(), nil
}

// SelectSetting switches the active setting. An unknown id is accepted:
// the completion client then runs on its defaults.
func (a *App) SelectSetting(id string) {
	if a.Store.FindSetting(id) == nil {
		slog.Warn("Selected setting is not loaded", slog.String("id", id))
	}
	a.SettingID = id
}

// Save persists every chat and the frontend pointer under the cache
// root. Called once at graceful shutdown.
func (a *App) Save() error {
	if err := a.Store.SaveChats(a.cfg.CacheDir); err != nil {
		return err
	}
	chatID := a.ChatID
	frontend := chat.Frontend{SettingID: a.SettingID, ChatID: &chatID}
	path := filepath.Join(a.cfg.CacheDir, frontendCacheName)
	if err := codec.EncodeFrontend(path, frontend); err != nil {
		return err
	}
	slog.Info("Saved session state", slog.String("path", path))
	return nil
}
