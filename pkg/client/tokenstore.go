package client

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore persists the session token across process restarts.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a single file with owner-only permissions.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore builds a store at the given path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Load returns the stored token, or empty when none has been saved.
func (s *FileTokenStore) Load() (string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// Save writes the token, creating parent directories as needed.
func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Clear removes the stored token.
func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryTokenStore holds the token in memory only; useful in tests and for
// callers that do not want persistence.
type MemoryTokenStore struct {
	token string
}

// NewMemoryTokenStore builds an in-memory store, optionally pre-seeded.
func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Load() (string, error) { return s.token, nil }

func (s *MemoryTokenStore) Save(token string) error {
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.token = ""
	return nil
}
