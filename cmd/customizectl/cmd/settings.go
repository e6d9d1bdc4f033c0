package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "List registered settings",
	RunE:  runSettings,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
}

func runSettings(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	list, err := newTransport(newLogger()).ListSettings(ctx)
	if err != nil {
		printError("could not list settings", err)
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Presentation mode: %s\n\n", list.PresentationMode)
	fmt.Fprintf(out, "%-30s %-16s %-6s %s\n", "ID", "TYPE", "SAVED", "VALUE")
	for _, s := range list.Settings {
		fmt.Fprintf(out, "%-30s %-16s %-6v %v\n", s.ID, s.Type, s.Saved, s.Value)
	}
	return nil
}
