// Package cli implements the command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/metafold/internal/config"
	"github.com/aidanlsb/metafold/internal/logging"
	"github.com/aidanlsb/metafold/internal/ui"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Resolved values
	resolvedConfigPath string
	cfg                *config.Config
	logger             = logging.Nop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mfold",
	Short: "mfold - normalize storefront metafields",
	Long: `mfold folds the loosely-typed metafields of a storefront query response
into display-ready records: one string (or list of strings) per field,
with typed values and resolved references alongside.

Input is a JSON or YAML response document, a file path or "-" for stdin.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "completion", "help", "version":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		loaded, path, err := loadGlobalConfigWithPath()
		if err != nil {
			return abort(ErrConfigInvalid, fmt.Errorf("failed to load config: %w", err))
		}
		cfg = loaded
		resolvedConfigPath = path

		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		l, err := logging.New(logging.Config{Level: level, Development: cfg.Log.Development})
		if err != nil {
			return abort(ErrConfigInvalid, fmt.Errorf("failed to configure logging: %w", err))
		}
		logger = l.WithComponent(cmd.Name())
		logger.Debugw("config loaded", "path", resolvedConfigPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// errReported is returned by Execute when a JSON error envelope has already
// been written, so main can exit non-zero without printing again.
var errReported = errors.New("error reported")

// Execute runs the CLI.
func Execute() error {
	jsonErrorWritten = false
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	if err == nil && jsonErrorWritten {
		err = errReported
	}
	return err
}

// abort stops the command before RunE. In JSON mode the error is written as
// an envelope first.
func abort(code string, err error) error {
	if jsonOutput {
		outputError(code, err.Error(), nil, "")
		return errReported
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log diagnostics to stderr")
}

// getConfig returns the loaded config, never nil.
func getConfig() *config.Config {
	if cfg == nil {
		return &config.Config{}
	}
	return cfg
}

func loadGlobalConfigWithPath() (*config.Config, string, error) {
	resolvedPath := config.ResolveConfigPath(configPath)

	var loadedCfg *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		if _, statErr := os.Stat(resolvedPath); os.IsNotExist(statErr) {
			return &config.Config{}, resolvedPath, nil
		}
		loadedCfg, err = config.LoadFrom(resolvedPath)
	} else {
		loadedCfg, err = config.Load()
	}
	if err != nil {
		return nil, "", err
	}
	if loadedCfg == nil {
		loadedCfg = &config.Config{}
	}

	return loadedCfg, resolvedPath, nil
}
