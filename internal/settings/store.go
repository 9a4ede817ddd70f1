// Package settings persists the API credential and the local user session.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// EventType identifies what changed in the store.
type EventType string

const (
	EventAPIKeyChanged EventType = "apikey"
	EventLogin         EventType = "login"
	EventLogout        EventType = "logout"
)

// Event is delivered to subscribers from the write site.
type Event struct {
	Type      EventType `json:"type"`
	HasAPIKey bool      `json:"hasApiKey"`
	User      *User     `json:"user,omitempty"`
}

// User is the locally remembered signed-in user. There is no server-side session.
type User struct {
	Username   string    `json:"username" yaml:"username"`
	Email      string    `json:"email,omitempty" yaml:"email,omitempty"`
	LoggedInAt time.Time `json:"loggedInAt" yaml:"logged_in_at"`
}

type fileFormat struct {
	APIKey string `yaml:"api_key,omitempty"`
	User   *User  `yaml:"user,omitempty"`
}

// Store holds settings in memory and writes them to a YAML file on change.
type Store struct {
	mu          sync.RWMutex
	path        string
	data        fileFormat
	subscribers []func(Event)
}

// NewStore creates a store persisted at path. An empty path keeps settings in
// memory only.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the settings file. A missing file is not an error.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	var data fileFormat
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Subscribe registers fn for change notifications.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// APIKey returns the stored credential, or "".
func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.APIKey
}

// HasAPIKey reports whether a credential is stored.
func (s *Store) HasAPIKey() bool {
	return s.APIKey() != ""
}

// SetAPIKey stores key, saves and notifies. An empty key clears the credential.
func (s *Store) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)

	s.mu.Lock()
	s.data.APIKey = key
	err := s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(EventAPIKeyChanged)
	return nil
}

// ClearAPIKey removes the stored credential.
func (s *Store) ClearAPIKey() error {
	return s.SetAPIKey("")
}

// User returns the logged in user, if any.
func (s *Store) User() (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.User == nil {
		return nil, false
	}
	u := *s.data.User
	return &u, true
}

// Login records a local user session.
func (s *Store) Login(username, email string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("login: username is required")
	}
	u := &User{
		Username:   username,
		Email:      strings.TrimSpace(email),
		LoggedInAt: time.Now().UTC().Truncate(time.Second),
	}

	s.mu.Lock()
	s.data.User = u
	err := s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.publish(EventLogin)
	out := *u
	return &out, nil
}

// Logout clears the user session and the stored credential.
func (s *Store) Logout() error {
	s.mu.Lock()
	if s.data.User == nil && s.data.APIKey == "" {
		s.mu.Unlock()
		return errs.ErrNotLoggedIn
	}
	s.data = fileFormat{}
	err := s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(EventLogout)
	return nil
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	out, err := yaml.Marshal(&s.data)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func (s *Store) publish(t EventType) {
	s.mu.RLock()
	ev := Event{Type: t, HasAPIKey: s.data.APIKey != ""}
	if s.data.User != nil {
		u := *s.data.User
		ev.User = &u
	}
	subs := make([]func(Event), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	logger.Debug("settings changed", zap.String("event", string(t)), zap.Bool("has_api_key", ev.HasAPIKey))
	for _, fn := range subs {
		fn(ev)
	}
}
