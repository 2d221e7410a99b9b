package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/httprunner/WarrantyAgent/internal/config"
	"github.com/httprunner/WarrantyAgent/internal/env"
)

var rootCmd = &cobra.Command{
	Use:   "warrantyagent",
	Short: "Look up the HP warranty end date of this machine",
	Long: `warrantyagent reads the serial number from the local settings store, looks it up
on the HP support site through a headless browser and stores the warranty end
date as an ISO 8601 date. Running without a subcommand performs the lookup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setLogLevel(rootLogLevel); err != nil {
			return err
		}
		if path := env.LoadedPath(); path != "" {
			log.Debug().Str("dotenv", path).Msg("using .env file")
		}
		return nil
	},
}

var (
	rootConfig   string
	rootStore    string
	rootDBPath   string
	rootLogLevel string
)

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	rootCmd.PersistentFlags().StringVar(&rootConfig, "config", "", "YAML settings file (overrides $"+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&rootStore, "store", "", "settings backend: registry, sqlite, keyring or memory (overrides $"+config.EnvStore+")")
	rootCmd.PersistentFlags().StringVar(&rootDBPath, "db-path", "", "sqlite backend file (overrides $"+config.EnvDBPath+")")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "log level: debug, info, warn or error")

	runCmd := newRunCmd()
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
	rootCmd.AddCommand(runCmd, newShowCmd())
	_ = env.Ensure()
}

func setLogLevel(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return withExitCode(exitConfig, errors.Wrapf(err, "invalid --log-level %q", level))
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// loadSettings resolves settings and applies the persistent flag overrides.
func loadSettings() (config.Settings, error) {
	settings, err := config.Load(rootConfig)
	if err != nil {
		return config.Settings{}, withExitCode(exitConfig, err)
	}
	settings.Store = firstNonEmpty(rootStore, settings.Store)
	settings.DBPath = firstNonEmpty(rootDBPath, settings.DBPath)
	return settings, nil
}

func main() {
	err := rootCmd.Execute()
	code := exitCodeFor(err)
	if err != nil && code != exitOK {
		log.Error().Err(err).Int("exit_code", code).Msg("warrantyagent command failed")
	}
	os.Exit(code)
}
