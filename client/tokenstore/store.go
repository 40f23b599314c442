// Package tokenstore persists the session token between CLI invocations.
package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Key is the fixed name the token is stored under.
const Key = "eudaimonia_token"

const fileName = "session.yaml"

// Store is a YAML file holding a single token entry. It is re-read on every
// access so a login in another process is picked up immediately.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns $EUDAIMONIA_CONFIG_DIR/session.yaml, falling back to
// the user config directory.
func DefaultPath() (string, error) {
	if dir := os.Getenv("EUDAIMONIA_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, fileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "eudaimonia", fileName), nil
}

func (s *Store) Path() string { return s.path }

// Load returns the stored token, or "" when none has been saved.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	var entries map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return "", fmt.Errorf("parse token file %s: %w", s.path, err)
	}
	return entries[Key], nil
}

// Save writes token, replacing any previous one.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(map[string]string{Key: token})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear removes the stored token.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Token implements apiclient.TokenSource. Read errors count as signed out.
func (s *Store) Token() string {
	token, err := s.Load()
	if err != nil {
		return ""
	}
	return token
}
