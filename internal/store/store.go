// Package store owns the in-memory chat and setting collections for one
// process run.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prollm/translatorui/internal/chat"
	"github.com/prollm/translatorui/internal/codec"
	"github.com/prollm/translatorui/internal/ident"
)

// chatsDirName is the subdirectory of the cache root holding the chat
// documents.
const chatsDirName = "chats"

// ErrChatNotFound is returned by RenameChat when no chat carries the
// requested id.
var ErrChatNotFound = errors.New("chat not found")

// ErrInvalidChatID is returned by RenameChat for ids that cannot serve
// as cache file names.
var ErrInvalidChatID = errors.New("invalid chat id")

// sanitizeID strips path separators from a chat id. Ids double as file
// names under the chats directory.
func sanitizeID(id string) string {
	id = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return -1
		}
		return r
	}, id)
	if id == "." || id == ".." {
		return ""
	}
	return id
}

// Store holds the ordered chat and setting collections. It is not safe
// for concurrent use; all mutations happen on the single event-handling
// path.
type Store struct {
	chats    []*chat.Chat
	settings []chat.Setting
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// LoadSettings decodes every JSON file found recursively under dir.
// Duplicate setting ids are kept; lookups return the first match in
// load order.
func (s *Store) LoadSettings(dir string) error {
	paths, err := codec.ScanDir(dir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		setting, err := codec.DecodeSetting(path)
		if err != nil {
			return err
		}
		if existing := s.FindSetting(setting.ID); existing != nil {
			slog.Warn("Duplicate setting id, first loaded file wins",
				slog.String("id", setting.ID),
				slog.String("file", setting.File),
				slog.String("shadowed_by", existing.File),
			)
		}
		s.settings = append(s.settings, setting)
	}
	slog.Info("Loaded settings", slog.Int("count", len(s.settings)))
	return nil
}

// LoadChats decodes every JSON file found recursively under the chats
// subdirectory of cacheDir, creating the directory if it is absent. A
// duplicate chat id across files is a load error: chats are mutated by
// id and an ambiguous id is unsafe.
func (s *Store) LoadChats(cacheDir string) error {
	dir := filepath.Join(cacheDir, chatsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create chats dir %s: %w", dir, err)
	}
	paths, err := codec.ScanDir(dir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		c, err := codec.DecodeChat(path)
		if err != nil {
			return err
		}
		if s.FindChat(c.ID) != nil {
			return fmt.Errorf("duplicate chat id %q in %s", c.ID, path)
		}
		s.chats = append(s.chats, c)
	}
	slog.Info("Loaded chats", slog.Int("count", len(s.chats)))
	return nil
}

// SaveChats writes every chat to <cacheDir>/chats/<id>.json and
// removes chat files whose ids are no longer in the collection, so a
// deleted or renamed chat does not resurrect at the next startup.
func (s *Store) SaveChats(cacheDir string) error {
	dir := filepath.Join(cacheDir, chatsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create chats dir %s: %w", dir, err)
	}

	keep := make(map[string]struct{}, len(s.chats))
	for _, c := range s.chats {
		keep[filepath.Join(dir, c.ID+".json")] = struct{}{}
	}
	existing, err := codec.ScanDir(dir)
	if err != nil {
		return err
	}
	for _, path := range existing {
		if _, ok := keep[path]; ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove stale chat file %s: %w", path, err)
		}
		slog.Info("Removed stale chat file", slog.String("path", path))
	}

	for _, c := range s.chats {
		path := filepath.Join(dir, c.ID+".json")
		if err := codec.EncodeChat(path, c); err != nil {
			return err
		}
	}
	slog.Info("Saved chats", slog.Int("count", len(s.chats)))
	return nil
}

// Chats returns the chat collection in order.
func (s *Store) Chats() []*chat.Chat {
	return s.chats
}

// ChatIDs returns the chat ids in collection order.
func (s *Store) ChatIDs() []string {
	ids := make([]string, len(s.chats))
	for i, c := range s.chats {
		ids[i] = c.ID
	}
	return ids
}

// SettingIDs returns the setting ids in collection order.
func (s *Store) SettingIDs() []string {
	ids := make([]string, len(s.settings))
	for i, setting := range s.settings {
		ids[i] = setting.ID
	}
	return ids
}

// FindChat returns the first chat with the given id, or nil.
func (s *Store) FindChat(id string) *chat.Chat {
	if i := s.findChatIndex(id); i >= 0 {
		return s.chats[i]
	}
	return nil
}

// FindSetting returns the first setting with the given id, or nil.
func (s *Store) FindSetting(id string) *chat.Setting {
	for i := range s.settings {
		if s.settings[i].ID == id {
			return &s.settings[i]
		}
	}
	return nil
}

func (s *Store) findChatIndex(id string) int {
	for i, c := range s.chats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// SetChat replaces the history of the chat with the given id, keeping
// its id. It reports whether the chat was found; an absent id leaves
// the collection unchanged.
func (s *Store) SetChat(id string, history chat.History) bool {
	i := s.findChatIndex(id)
	if i < 0 {
		return false
	}
	slog.Info("Setting existing chat", slog.String("id", id))
	s.chats[i] = &chat.Chat{ID: id, History: history}
	return true
}

// UpdateChat replaces the whole record of the chat with the given id;
// the replacement may carry a different id. It reports whether the chat
// was found; an absent id leaves the collection unchanged.
func (s *Store) UpdateChat(id string, c *chat.Chat) bool {
	i := s.findChatIndex(id)
	if i < 0 {
		return false
	}
	slog.Info("Updating existing chat", slog.String("id", id))
	s.chats[i] = c
	return true
}

// RenameChat changes the id of the chat currently known as oldID.
// It returns ErrChatNotFound when oldID is absent, and an error when
// newID is already taken by another chat.
func (s *Store) RenameChat(oldID, newID string) (*chat.Chat, error) {
	if newID == "" || sanitizeID(newID) != newID {
		return nil, fmt.Errorf("failed to rename chat %q to %q: %w", oldID, newID, ErrInvalidChatID)
	}
	c := s.FindChat(oldID)
	if c == nil {
		return nil, fmt.Errorf("failed to rename chat %q: %w", oldID, ErrChatNotFound)
	}
	if other := s.FindChat(newID); other != nil && other != c {
		return nil, fmt.Errorf("failed to rename chat %q: id %q already exists", oldID, newID)
	}
	slog.Info("Renaming chat", slog.String("old_id", oldID), slog.String("new_id", newID))
	c.ID = newID
	return c, nil
}

// AddChat appends the chat to the end of the collection. Callers are
// expected to pass freshly generated ids.
func (s *Store) AddChat(c *chat.Chat) {
	s.chats = append(s.chats, c)
}

// DeleteChat removes the first chat with the given id and reports
// whether it was found. The collection is never left empty: deleting
// the last chat synthesizes a fresh empty one.
func (s *Store) DeleteChat(id string) bool {
	i := s.findChatIndex(id)
	if i < 0 {
		return false
	}
	slog.Info("Deleting chat", slog.String("id", id))
	s.chats = append(s.chats[:i], s.chats[i+1:]...)
	if len(s.chats) == 0 {
		c := s.EmptyChat("")
		slog.Info("Creating empty chat because the last chat was deleted", slog.String("id", c.ID))
		s.chats = append(s.chats, c)
	}
	return true
}

// EmptyChat constructs a new chat with an empty history of its own.
// Path separators are stripped from the id; an empty id is replaced
// with a generated one.
func (s *Store) EmptyChat(id string) *chat.Chat {
	id = sanitizeID(id)
	if id == "" {
		id = ident.New()
	}
	return &chat.Chat{ID: id, History: chat.History{}}
}
