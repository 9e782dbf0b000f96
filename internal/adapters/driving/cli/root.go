// Package cli implements the memora command line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/memora/internal/core/ports/driven"
	"github.com/custodia-labs/memora/internal/core/ports/driving"
	"github.com/custodia-labs/memora/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by Execute. Commands check for nil before use so the
// CLI can still print help and version without a full wiring.
var (
	knowledgeService driving.KnowledgeService
	queryService     driving.QueryService
	configStore      driven.ConfigStore
)

var (
	verboseFlag bool
	userFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "memora",
	Short: "Personal knowledge store with semantic search",
	Long: `Memora ingests documents into a per-user knowledge store,
chunks and embeds them, and answers semantic queries over your own
documents only.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "user the operation acts for")
}

// Deps bundles everything the CLI needs.
type Deps struct {
	Knowledge driving.KnowledgeService
	Query     driving.QueryService
	Config    driven.ConfigStore
	Version   string
}

// Execute wires the services into the command tree and runs it.
func Execute(deps Deps) error {
	knowledgeService = deps.Knowledge
	queryService = deps.Query
	configStore = deps.Config
	if deps.Version != "" {
		version = deps.Version
	}

	return rootCmd.Execute()
}

// currentUser resolves the acting user: the --user flag first, then the
// user.default config key.
func currentUser() (string, error) {
	if userFlag != "" {
		return userFlag, nil
	}
	if configStore != nil {
		if user := configStore.GetString("user.default"); user != "" {
			return user, nil
		}
	}
	return "", errors.New("no user specified: pass --user or set user.default in config")
}
