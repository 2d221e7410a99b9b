package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	warrantyagent "github.com/httprunner/WarrantyAgent"
	"github.com/httprunner/WarrantyAgent/internal/config"
	"github.com/httprunner/WarrantyAgent/pkg/browser"
	"github.com/httprunner/WarrantyAgent/pkg/regstore"
)

func newRunCmd() *cobra.Command {
	var (
		flagHeaded      bool
		flagSkipInstall bool
		flagURL         string
		flagVendorToken string
		flagEdgePath    string
		flagChromePath  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Look up the warranty end date and store it",
		Long:  "Checks the manufacturer, opens the HP warranty page in Edge (falling back to Chrome), submits the serial number and writes the normalised end date.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			settings.URL = firstNonEmpty(flagURL, settings.URL)
			settings.VendorToken = firstNonEmpty(flagVendorToken, settings.VendorToken)
			settings.EdgePath = firstNonEmpty(flagEdgePath, settings.EdgePath)
			settings.ChromePath = firstNonEmpty(flagChromePath, settings.ChromePath)
			settings.Headed = settings.Headed || flagHeaded
			settings.SkipDriverInstall = settings.SkipDriverInstall || flagSkipInstall

			store, err := regstore.Open(settings.StoreOptions())
			if err != nil {
				return withExitCode(exitConfig, errors.Wrap(err, "open settings store failed"))
			}
			defer func() {
				if cerr := store.Close(); cerr != nil {
					log.Warn().Err(cerr).Msg("close settings store failed")
				}
			}()

			opts := browser.DefaultOptions()
			opts.Headless = !settings.Headed
			edge, chrome := newLaunchers(settings)
			manager := browser.NewManager(opts, edge, chrome, browser.WithRetryPolicy(settings.SessionRetry))
			runID := uuid.NewString()
			agent, err := warrantyagent.NewAgent(warrantyagent.Config{
				Store:       store,
				Sessions:    manager,
				Finder:      browser.NewFinder(settings.LookupRetry),
				URL:         settings.URL,
				VendorToken: settings.VendorToken,
				Timeouts:    settings.Timeouts,
				RunID:       runID,
				Callbacks: warrantyagent.Callbacks{
					OnStageStarted: func(stage warrantyagent.Stage) {
						log.Debug().Str("run_id", runID).Str("stage", string(stage)).Msg("stage started")
					},
				},
			})
			if err != nil {
				return withExitCode(exitConfig, err)
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.Info().
				Str("run_id", runID).
				Str("store", settings.Store).
				Str("url", settings.URL).
				Bool("headless", opts.Headless).
				Msg("warranty lookup starting")
			res, err := agent.Run(sigCtx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.EndDateNormalized)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagHeaded, "headed", false, "show the browser window")
	cmd.Flags().BoolVar(&flagSkipInstall, "skip-driver-install", false, "assume the Playwright driver is installed (overrides $WARRANTY_SKIP_DRIVER_INSTALL)")
	cmd.Flags().StringVar(&flagURL, "url", "", "warranty check page (overrides $WARRANTY_URL)")
	cmd.Flags().StringVar(&flagVendorToken, "vendor", "", "manufacturer token required to run (overrides $WARRANTY_VENDOR_TOKEN)")
	cmd.Flags().StringVar(&flagEdgePath, "edge-path", "", "Edge executable (overrides $WARRANTY_EDGE_PATH)")
	cmd.Flags().StringVar(&flagChromePath, "chrome-path", "", "Chrome executable (overrides $WARRANTY_CHROME_PATH)")
	return cmd
}

// newLaunchers builds the Edge primary and Chrome fallback from settings.
func newLaunchers(settings config.Settings) (*browser.EdgeLauncher, *browser.ChromeLauncher) {
	edge := browser.NewEdgeLauncher(settings.EdgePath)
	edge.SkipInstall = settings.SkipDriverInstall
	return edge, browser.NewChromeLauncher(settings.ChromePath)
}
