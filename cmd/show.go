package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	warrantyagent "github.com/httprunner/WarrantyAgent"
	"github.com/httprunner/WarrantyAgent/pkg/regstore"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored warranty end date",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := regstore.Open(settings.StoreOptions())
			if err != nil {
				return withExitCode(exitConfig, errors.Wrap(err, "open settings store failed"))
			}
			defer store.Close()

			date, err := warrantyagent.ReadEndDate(cmd.Context(), store)
			if err != nil {
				return withExitCode(exitOther, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), date)
			return nil
		},
	}
}
