// Package tokenstore keeps API tokens in the user's config directory so the
// CLI and server can run without exporting them in every shell.
package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrEmptyToken    = errors.New("token is empty")
)

type Token struct {
	Value   string    `json:"token"` // #nosec G117 - JSON field for a stored token, not an exposed secret
	SavedAt time.Time `json:"saved_at"`
}

type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory tokens are stored in.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Save(provider, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyToken
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.Marshal(Token{Value: value, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	return os.WriteFile(s.path(provider), data, 0600)
}

func (s *Store) Load(provider string) (*Token, error) {
	data, err := os.ReadFile(s.path(provider)) // #nosec G304 -- provider is sanitized
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	if token.Value == "" {
		return nil, ErrTokenNotFound
	}

	return &token, nil
}

func (s *Store) Delete(provider string) error {
	err := os.Remove(s.path(provider))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

func (s *Store) path(provider string) string {
	return filepath.Join(s.dir, filepath.Base(provider)+"_token.json")
}
