package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/trustnxt/c2pa-go/internal/config"
)

// Global flags
var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

// NewRootCommand creates the root cobra command. It is a thin adapter
// over the library: every subcommand calls straight into pkg/asset,
// pkg/manifest, pkg/cose and pkg/validator, with no business logic of
// its own.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "c2pa",
		Short: "C2PA provenance manifest tool",
		Long: `c2pa is a command-line tool for reading, validating and signing
C2PA provenance manifests embedded in JPEG, PNG and MP3 assets.

Subcommands:
  read     - dump an asset's manifest store as JSON
  validate - run the validator against an asset's manifest store
  sign     - build and embed a manifest store into an asset
  keygen   - generate a self-signed ES256 signing identity`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./c2pa.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(NewReadCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewSignCommand())
	rootCmd.AddCommand(NewKeygenCommand())

	return rootCmd
}

// initConfig loads configuration from file, falling back to defaults
// when no config file is found so read-only commands still work
// without one.
func initConfig() {
	if cfgFile == "" {
		if _, err := os.Stat("c2pa.yaml"); err == nil {
			cfgFile = "c2pa.yaml"
		} else if _, err := os.Stat("c2pa.yml"); err == nil {
			cfgFile = "c2pa.yml"
		}
	}

	if cfgFile != "" {
		loaded, err := config.LoadConfig(cfgFile)
		if err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
			}
		} else {
			cfg = loaded
			return
		}
	}

	cfg = config.DefaultConfig()
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}
