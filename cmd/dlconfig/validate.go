// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

func newValidateCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var asJSON bool

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Validate the configuration.

Errors make the configuration invalid and the command exit with status 1.
Warnings are printed but do not affect the result. A missing torrent black
hole folder is created as part of validation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd.Context(), app, flags)
			if err != nil {
				return err
			}

			result := cfg.ValidateConfig(cfg.Clone())

			if asJSON {
				if err := printResultJSON(app.stdout, result); err != nil {
					return err
				}
				if !result.OK {
					return &ExitError{Code: 1, Err: result.Err()}
				}
				return nil
			}

			printResult(app.stdout, result)
			if !result.OK {
				return failedResult(app, result)
			}
			return nil
		},
	}

	validateCmd.Flags().BoolVar(&asJSON, "json", false, "print the validation result as JSON")

	return validateCmd
}
