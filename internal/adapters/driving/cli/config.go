package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// Keys the config command accepts. Anything else is rejected so typos do
// not silently create dead entries.
var knownConfigKeys = []string{
	"user.default",
	"embedding.provider",
	"embedding.model",
	"embedding.base_url",
	"embedding.api_key",
	"chunking.max_chunk_size",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Show or change memora configuration stored in the config file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Config file: %s\n\n", configStore.Path())

	keys := append([]string(nil), knownConfigKeys...)
	sort.Strings(keys)
	for _, key := range keys {
		val, ok := configStore.Get(key)
		if !ok {
			continue
		}
		if key == "embedding.api_key" {
			val = redact(fmt.Sprint(val))
		}
		cmd.Printf("  %s = %v\n", key, val)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if !isKnownConfigKey(key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(knownConfigKeys, ", "))
	}

	var value any = raw
	if n, err := strconv.Atoi(raw); err == nil && key == "chunking.max_chunk_size" {
		value = n
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func isKnownConfigKey(key string) bool {
	for _, k := range knownConfigKeys {
		if k == key {
			return true
		}
	}
	return false
}

// redact hides all but the first characters of a secret.
func redact(secret string) string {
	if len(secret) <= 6 {
		return "******"
	}
	return secret[:6] + "..."
}
