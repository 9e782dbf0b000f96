package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "memora", rootCmd.Use)
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	verbose := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose, "verbose flag should exist")
	assert.Equal(t, "v", verbose.Shorthand)

	user := rootCmd.PersistentFlags().Lookup("user")
	require.NotNil(t, user, "user flag should exist")
	assert.Equal(t, "u", user.Shorthand)
}

func TestCurrentUser_FlagWins(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	userFlag = "bob"
	store := configStore.(*mockConfigStore)
	store.values["user.default"] = "alice"

	user, err := currentUser()

	require.NoError(t, err)
	assert.Equal(t, "bob", user)
}

func TestCurrentUser_FallsBackToConfig(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	userFlag = ""
	store := configStore.(*mockConfigStore)
	store.values["user.default"] = "alice"

	user, err := currentUser()

	require.NoError(t, err)
	assert.Equal(t, "alice", user)
}

func TestCurrentUser_NoUserAnywhere(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	userFlag = ""
	configStore = newMockConfigStore()

	_, err := currentUser()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user specified")
}
