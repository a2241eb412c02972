package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ANON_MIN_FRIENDS", "")
	t.Setenv("STORAGE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.AnonMinFriends)
	assert.Equal(t, 3, cfg.PersonaMaxChanges)
	assert.Equal(t, 720*time.Hour, cfg.PersonaChangeWindow)
	assert.Equal(t, StoragePostgres, cfg.Storage)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage: memory
anon_min_friends: 5
persona_change_window: 48h
mongo_db: from_file
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("STORAGE", "")
	t.Setenv("PERSONA_CHANGE_WINDOW", "")
	t.Setenv("MONGO_DB", "")
	t.Setenv("ANON_MIN_FRIENDS", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 7, cfg.AnonMinFriends, "env wins over file")
	assert.Equal(t, 48*time.Hour, cfg.PersonaChangeWindow)
	assert.Equal(t, "from_file", cfg.MongoDB)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	t.Setenv("ANON_MIN_FRIENDS", "ten")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("ANON_MIN_FRIENDS", "")
	t.Setenv("STORAGE", "sqlite")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveThresholds(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE", "")
	tests := []struct {
		key, value string
	}{
		{"ANON_MIN_FRIENDS", "0"},
		{"ANON_MIN_FRIENDS", "-2"},
		{"PERSONA_MAX_CHANGES", "0"},
		{"PERSONA_CHANGE_WINDOW", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
