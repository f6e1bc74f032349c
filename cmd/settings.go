package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fliprotate/internal/settings"
	"fliprotate/internal/tui"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the saved format, quality and save mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := settings.NewStore(appConfig.SettingsPath, logger)
		printSettings(store.Path(), store.Load())
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := settings.NewStore(appConfig.SettingsPath, logger)
		if err := store.Save(settings.Defaults()); err != nil {
			return err
		}
		printSettings(store.Path(), settings.Defaults())
		return nil
	},
}

func printSettings(path string, s settings.Settings) {
	visible := s.Visible()
	format := s.Format
	if !visible.Format {
		format += " (unused: overwrite keeps the source format)"
	}
	quality := s.Quality
	if !visible.Quality {
		quality += " (unused: only applies to jpeg)"
	}

	fmt.Fprintln(os.Stdout, tui.RenderSummary([]tui.SummaryRow{
		{Label: "Save mode", Value: s.SaveMode},
		{Label: "Format", Value: format},
		{Label: "Quality", Value: quality},
	}))
	fmt.Fprintf(os.Stdout, "Stored in: %s\n", path)
}

func init() {
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}
