package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search the acting user's knowledge store", searchCmd.Short)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "test query"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Results:")
	assert.Contains(t, buf.String(), "first chunk")
	assert.Contains(t, buf.String(), "Total: 1 results")
}

func TestSearchCmd_PassesLimitToService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "-n", "5", "another query"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchLimit = 10
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	mock := queryService.(*mockQueryService)
	assert.Equal(t, "another query", mock.lastQuery)
	assert.Equal(t, 5, mock.lastOpts.TopK)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--json", "test query"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"Score\"")
	assert.Contains(t, buf.String(), "\"Chunk\"")
}

func TestSearchCmd_NoResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	queryService = &mockQueryService{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "nothing matches"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found.")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	oldService := queryService
	queryService = nil
	defer func() {
		queryService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "query service not configured")
}

func TestSearchCmd_NoUserConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	userFlag = ""
	configStore = newMockConfigStore()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no user specified")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "abcde...", snippet("abcdefgh", 5))
	// Multibyte content is cut on rune boundaries.
	assert.Equal(t, "héll...", snippet("héllo wörld", 4))
}
