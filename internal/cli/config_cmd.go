package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/metafold/internal/config"
	"github.com/aidanlsb/metafold/internal/metafield"
)

var (
	configSetDuplicateKeys string
	configSetPath          string
	configSetSnapshotPath  string
	configSetLogLevel      string
	configSetUIAccent      string
	configSetUICodeTheme   string
)

func configData(c *config.Config, path string, exists bool) map[string]any {
	policy, _ := c.DuplicatePolicy()
	return map[string]any{
		"config_path": path,
		"exists":      exists,
		"normalize": map[string]any{
			"duplicate_keys": string(policy),
			"path":           strings.TrimSpace(c.Normalize.Path),
		},
		"snapshot": map[string]any{
			"path": c.SnapshotPath(),
		},
		"log": map[string]any{
			"level":       strings.TrimSpace(c.Log.Level),
			"development": c.Log.Development,
		},
		"ui": map[string]any{
			"accent":     strings.TrimSpace(c.UI.Accent),
			"code_theme": strings.TrimSpace(c.UI.CodeTheme),
		},
	}
}

func configFileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := config.ResolveConfigPath(configPath)
	exists, err := configFileExists(path)
	if err != nil {
		return handleError(ErrFileReadError, err, "")
	}
	c := getConfig()

	if isJSONOutput() {
		outputSuccess(configData(c, path, exists), nil)
		return nil
	}

	if exists {
		fmt.Fprintf(stdout, "config: %s\n", path)
	} else {
		fmt.Fprintf(stdout, "config: %s (not created; run 'mfold config init')\n", path)
	}
	policy, _ := c.DuplicatePolicy()
	fmt.Fprintf(stdout, "normalize.duplicate_keys: %s\n", policy)
	if v := strings.TrimSpace(c.Normalize.Path); v != "" {
		fmt.Fprintf(stdout, "normalize.path: %s\n", v)
	}
	fmt.Fprintf(stdout, "snapshot.path: %s\n", c.SnapshotPath())
	if v := strings.TrimSpace(c.Log.Level); v != "" {
		fmt.Fprintf(stdout, "log.level: %s\n", v)
	}
	if c.Log.Development {
		fmt.Fprintln(stdout, "log.development: true")
	}
	if v := strings.TrimSpace(c.UI.Accent); v != "" {
		fmt.Fprintf(stdout, "ui.accent: %s\n", v)
	}
	if v := strings.TrimSpace(c.UI.CodeTheme); v != "" {
		fmt.Fprintf(stdout, "ui.code_theme: %s\n", v)
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the mfold config.toml",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a commented default config.toml if missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ResolveConfigPath(configPath)
		created, err := config.CreateDefault(path)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{
				"config_path": path,
				"created":     created,
			}, nil)
			return nil
		}

		if created {
			fmt.Fprintf(stdout, "Created config: %s\n", path)
		} else {
			fmt.Fprintf(stdout, "Config already exists: %s\n", path)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update config.toml settings",
	Long: `Updates settings in config.toml. Only the flags you pass are changed;
pass an empty value to clear a setting.

Examples:
  mfold config set --duplicate-keys reject
  mfold config set --path data.product.metafields --ui-accent 39`,
	Args: cobra.NoArgs,
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := config.ResolveConfigPath(configPath)
	exists, err := configFileExists(path)
	if err != nil {
		return handleError(ErrFileReadError, err, "")
	}

	next := &config.Config{}
	if exists {
		next, err = config.LoadFrom(path)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
	}

	flags := cmd.Flags()
	changed := applyChangedString(flags, "duplicate-keys", &next.Normalize.DuplicateKeys, configSetDuplicateKeys) +
		applyChangedString(flags, "path", &next.Normalize.Path, configSetPath) +
		applyChangedString(flags, "snapshot-path", &next.Snapshot.Path, configSetSnapshotPath) +
		applyChangedString(flags, "log-level", &next.Log.Level, configSetLogLevel) +
		applyChangedString(flags, "ui-accent", &next.UI.Accent, configSetUIAccent) +
		applyChangedString(flags, "ui-code-theme", &next.UI.CodeTheme, configSetUICodeTheme)

	if changed == 0 {
		return handleErrorMsg(ErrInvalidInput, "no settings given", "Run 'mfold config set --help' for the available flags")
	}
	if flags.Changed("duplicate-keys") {
		if _, err := metafield.ParseDuplicatePolicy(next.Normalize.DuplicateKeys); err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
	}

	if err := config.SaveTo(path, next); err != nil {
		return handleError(ErrFileWriteError, err, "")
	}
	cfg = next

	if isJSONOutput() {
		outputSuccess(configData(next, path, true), nil)
		return nil
	}
	fmt.Fprintf(stdout, "Updated config: %s\n", path)
	return nil
}

// applyChangedString copies value into target when the named flag was passed
// and reports 1 if it did.
func applyChangedString(flags *pflag.FlagSet, name string, target *string, value string) int {
	if !flags.Changed(name) {
		return 0
	}
	*target = strings.TrimSpace(value)
	return 1
}

func init() {
	configSetCmd.Flags().StringVar(&configSetDuplicateKeys, "duplicate-keys", "", "Duplicate key policy: last, first or reject")
	configSetCmd.Flags().StringVar(&configSetPath, "path", "", "Default gjson path of the metafield container")
	configSetCmd.Flags().StringVar(&configSetSnapshotPath, "snapshot-path", "", "Snapshot database path")
	configSetCmd.Flags().StringVar(&configSetLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	configSetCmd.Flags().StringVar(&configSetUIAccent, "ui-accent", "", "Accent color (ANSI 0-255 or #RRGGBB)")
	configSetCmd.Flags().StringVar(&configSetUICodeTheme, "ui-code-theme", "", "Syntax theme for markdown code blocks")

	configCmd.AddCommand(configShowCmd, configInitCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
