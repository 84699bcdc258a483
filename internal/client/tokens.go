package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type tokenFile struct {
	Tokens map[string]string `yaml:"tokens"`
}

// TokenStore keeps organizer tokens on disk, keyed by pot id. Holding a
// pot's token is what makes this device the pot's organizer.
type TokenStore struct {
	mu     sync.Mutex
	path   string
	tokens map[string]string
}

// DefaultTokenPath is tokens.yaml under the user config directory
func DefaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "gatta", "tokens.yaml")
}

// LoadTokenStore reads path. A missing file is an empty store; an empty path
// keeps tokens in memory only.
func LoadTokenStore(path string) (*TokenStore, error) {
	store := &TokenStore{path: path, tokens: map[string]string{}}
	if path == "" {
		return store, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var file tokenFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	for id, token := range file.Tokens {
		store.tokens[id] = token
	}
	return store, nil
}

// Token returns the organizer token for potID, or ""
func (s *TokenStore) Token(potID string) string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[potID]
}

// Put records token for potID and rewrites the file
func (s *TokenStore) Put(potID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[potID] = token
	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := yaml.Marshal(tokenFile{Tokens: s.tokens})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
