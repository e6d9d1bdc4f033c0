package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wso2/customize-validation-api/pkg/customize"
)

var (
	saveFile         string
	presentationMode string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save pending values",
	Long: `Loads the registered settings into a local editor, applies the pending
values and saves them.

When the save is rejected the validation message of every control is printed
together with the control that would receive focus. On success the sanitized
values returned by the server are shown.`,
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVarP(&saveFile, "file", "f", "-", "JSON file with pending values")
	saveCmd.Flags().StringVar(&presentationMode, "mode", customize.PresentationSingle, "Message presentation mode (single|list)")
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	pending, err := readPending(saveFile)
	if err != nil {
		printError("could not read pending values", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger := newLogger()
	transport := newTransport(logger)
	list, err := transport.ListSettings(ctx)
	if err != nil {
		printError("could not load settings", err)
		return err
	}

	mode := presentationMode
	if !cmd.Flags().Changed("mode") && list.PresentationMode != "" {
		mode = list.PresentationMode
	}

	editor := customize.NewEditor(
		customize.WithTransport(transport),
		customize.WithLogger(logger),
		customize.WithPresentationMode(mode),
	)
	customize.Attach(editor)

	for _, info := range list.Settings {
		setting := customize.NewSetting(info.ID, info.Value)
		if err := editor.AddSetting(setting); err != nil {
			return err
		}
		control, err := customize.NewControl(info.ID, info.Type, []*customize.Setting{setting})
		if err != nil {
			return err
		}
		if err := editor.AddControl(control); err != nil {
			return err
		}
		control.Embedded.Resolve()
	}

	pending.Each(func(id string, value any) bool {
		setting, ok := editor.Settings.Get(id)
		if !ok {
			// Unknown to this client; the server skips it as well.
			setting = customize.NewSetting(id, nil)
			_ = editor.AddSetting(setting)
		}
		setting.Set(value)
		return true
	})

	out := cmd.OutOrStdout()
	resp, err := editor.Save(ctx)
	if err != nil {
		var invalid int
		editor.Controls.Each(func(id string, c *customize.Control) bool {
			if msg := c.Validation().Get(); msg != "" {
				invalid++
				fmt.Fprintf(out, "  [-] %-30s %s\n", id, msg)
			}
			return true
		})
		if invalid == 0 {
			printError("save failed", err)
			return err
		}
		if focused := editor.Focused.Get(); focused != nil {
			fmt.Fprintf(out, "Focus: %s\n", focused.ID)
		}
		return err
	}

	fmt.Fprintln(out, resp.Message)
	if resp.ChangesetID != "" {
		fmt.Fprintf(out, "Changeset: %s\n", resp.ChangesetID)
	}
	resp.SanitizedSettingValues.Each(func(id string, value any) bool {
		fmt.Fprintf(out, "  [+] %-30s %v\n", id, value)
		return true
	})
	return nil
}
