package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/learnable-ai/companion/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	s := NewStore(path)
	require.NoError(t, s.Load())
	assert.False(t, s.HasAPIKey())

	require.NoError(t, s.SetAPIKey("  secret-key  "))
	_, err := s.Login("ada", "ada@example.com")
	require.NoError(t, err)

	reloaded := NewStore(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, "secret-key", reloaded.APIKey())
	u, ok := reloaded.User()
	require.True(t, ok)
	assert.Equal(t, "ada", u.Username)
	assert.Equal(t, "ada@example.com", u.Email)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStore_NotifiesSubscribers(t *testing.T) {
	s := NewStore("")

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	require.NoError(t, s.SetAPIKey("k"))
	_, err := s.Login("bob", "")
	require.NoError(t, err)
	require.NoError(t, s.Logout())

	require.Len(t, events, 3)
	assert.Equal(t, EventAPIKeyChanged, events[0].Type)
	assert.True(t, events[0].HasAPIKey)
	assert.Equal(t, EventLogin, events[1].Type)
	assert.Equal(t, "bob", events[1].User.Username)
	assert.Equal(t, EventLogout, events[2].Type)
	assert.False(t, events[2].HasAPIKey)
	assert.Nil(t, events[2].User)
}

func TestStore_LogoutWithoutSession(t *testing.T) {
	s := NewStore("")
	assert.ErrorIs(t, s.Logout(), errs.ErrNotLoggedIn)
}

func TestStore_LoginRequiresUsername(t *testing.T) {
	s := NewStore("")
	_, err := s.Login("   ", "x@example.com")
	assert.Error(t, err)
	_, ok := s.User()
	assert.False(t, ok)
}

func TestStore_LoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: [unterminated"), 0600))
	assert.Error(t, NewStore(path).Load())
}
