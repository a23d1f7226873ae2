// Package codec reads and writes the flat-file JSON documents that back
// chats, settings and the frontend pointer.
package codec

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/prollm/translatorui/internal/chat"
)

// ParseError reports a JSON document that could not be decoded or that
// is missing required fields.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// DecodeSetting parses one setting document. The origin path is
// recorded on the returned setting.
func DecodeSetting(path string) (chat.Setting, error) {
	var s chat.Setting
	if err := decodeFile(path, &s); err != nil {
		return chat.Setting{}, err
	}
	if s.ID == "" {
		return chat.Setting{}, &ParseError{Path: path, Err: fmt.Errorf("missing required field %q", "id")}
	}
	if s.Data == nil {
		return chat.Setting{}, &ParseError{Path: path, Err: fmt.Errorf("missing required field %q", "data")}
	}
	s.File = path
	return s, nil
}

// DecodeChat parses one chat document.
func DecodeChat(path string) (*chat.Chat, error) {
	var c chat.Chat
	if err := decodeFile(path, &c); err != nil {
		return nil, err
	}
	if c.ID == "" {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("missing required field %q", "id")}
	}
	if c.History == nil {
		c.History = chat.History{}
	}
	return &c, nil
}

// DecodeFrontend parses one frontend pointer document.
func DecodeFrontend(path string) (chat.Frontend, error) {
	var f chat.Frontend
	if err := decodeFile(path, &f); err != nil {
		return chat.Frontend{}, err
	}
	if f.SettingID == "" {
		return chat.Frontend{}, &ParseError{Path: path, Err: fmt.Errorf("missing required field %q", "setting_id")}
	}
	return f, nil
}

func encodeFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// EncodeChat writes one chat document.
func EncodeChat(path string, c *chat.Chat) error {
	return encodeFile(path, c)
}

// EncodeFrontend writes one frontend pointer document.
func EncodeFrontend(path string, f chat.Frontend) error {
	return encodeFile(path, f)
}

// ScanDir lists every *.json file under dir, recursively, in
// filesystem-enumeration order. A missing directory yields an empty
// list, not an error.
func ScanDir(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return paths, nil
}
