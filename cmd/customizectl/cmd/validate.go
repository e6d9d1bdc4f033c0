package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wso2/customize-validation-api/pkg/customize"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate pending values without saving",
	Long: `Sends the pending values to the server validation gate in dry-run mode.

Invalid settings are printed in the order the server reported them.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "-", "JSON file with pending values")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	pending, err := readPending(validateFile)
	if err != nil {
		printError("could not read pending values", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	msg, err := newTransport(newLogger()).Validate(ctx, pending)
	if err != nil {
		var saveErr *customize.SaveError
		if errors.As(err, &saveErr) && saveErr.InvalidSettings.Len() > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), saveErr.Message)
			printInvalid(cmd.OutOrStdout(), saveErr.InvalidSettings)
			return fmt.Errorf("%d invalid settings", saveErr.InvalidSettings.Len())
		}
		printError("validation request failed", err)
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
