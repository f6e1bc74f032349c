package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fliprotate/internal/host"
	"fliprotate/internal/plugin"
	"fliprotate/internal/processor"
	"fliprotate/internal/settings"
	"fliprotate/internal/tui"
)

var (
	applyFormat  string
	applyQuality string
	applyMode    string
	applyNoTUI   bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <action> <path>...",
	Short: "Flip or rotate images and save the results",
	Long: "Apply one of flip-horizontal, flip-vertical, rotate-90, rotate-180 or rotate-270 to every image under the given paths.\n" +
		"Flags that are not set fall back to the settings saved by the previous run.",
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: actionNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		library, err := openLibrary(ctx)
		if err != nil {
			return err
		}

		updates := make(chan processor.ProgressUpdate, 64)
		coordinator := processor.NewCoordinator(library, logger, processor.WithUpdates(updates))
		store := settings.NewStore(appConfig.SettingsPath, logger)
		p := plugin.New(store, coordinator, logger)

		saved := p.OnStart(ctx)
		format, quality, mode := saved.Format, saved.Quality, saved.SaveMode
		if cmd.Flags().Changed("format") {
			format = applyFormat
		}
		if cmd.Flags().Changed("quality") {
			quality = applyQuality
		}
		if cmd.Flags().Changed("mode") {
			mode = applyMode
		}

		runCfg, err := processor.NewRunConfig(args[0], format, quality, mode)
		if err != nil {
			return err
		}

		items, err := host.Selection(args[1:])
		if err != nil {
			return err
		}

		p.OnShow()
		defer p.OnHide()

		var display func() error
		if !applyNoTUI && isatty.IsTerminal(os.Stdout.Fd()) {
			display = func() error {
				_, err := tea.NewProgram(tui.NewModel("fliprotate "+string(runCfg.Action), updates)).Run()
				return err
			}
		}

		uiDone := make(chan struct{})
		go func() {
			defer close(uiDone)
			followProgress(updates, display)
		}()

		report, err := p.Run(ctx, items, runCfg)
		close(updates)
		<-uiDone
		if err != nil {
			return err
		}

		printReport(report, runCfg)
		return nil
	},
}

// followProgress runs display, if any, and then drains updates until the
// channel is closed, including when the display fails to start.
func followProgress(updates <-chan processor.ProgressUpdate, display func() error) {
	if display != nil {
		if err := display(); err != nil {
			logger.Warn("Progress display unavailable", zap.Error(err))
		}
	}
	for range updates {
	}
}

func printReport(report plugin.Report, runCfg processor.RunConfig) {
	s := report.Summary
	failedTone := tui.ToneNeutral
	if s.Failed > 0 {
		failedTone = tui.ToneWarn
	}

	rows := []tui.SummaryRow{
		{Label: "Images selected", Value: fmt.Sprintf("%d", s.Total)},
		{Label: "Succeeded", Value: fmt.Sprintf("%d", s.Succeeded), Tone: tui.ToneGood},
		{Label: "Failed", Value: fmt.Sprintf("%d", s.Failed), Tone: failedTone},
		{Label: "Skipped (not images)", Value: fmt.Sprintf("%d", s.Skipped)},
	}
	fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

	for _, res := range report.Results {
		if res.Success {
			continue
		}
		fmt.Fprintf(os.Stdout, "%s %s\n  %s\n",
			applyFailStyle.Render("x"),
			res.Item.FilePath,
			applyDimStyle.Render(res.Message()))
	}

	fmt.Fprintln(os.Stdout, report.Message())
	if runCfg.SaveMode == processor.SaveModeNew && s.Succeeded > 0 {
		target := appConfig.LibraryDir
		if appConfig.S3Enabled() {
			target = "s3://" + strings.TrimSuffix(appConfig.S3Bucket+"/"+strings.Trim(appConfig.S3Prefix, "/"), "/")
		} else if abs, err := filepath.Abs(target); err == nil {
			target = abs
		}
		fmt.Fprintf(os.Stdout, "New files added to: %s\n", target)
	}
}

func actionNames() []string {
	names := make([]string, 0, len(processor.Actions))
	for _, a := range processor.Actions {
		names = append(names, string(a))
	}
	return names
}

var (
	applyFailStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorError)
	applyDimStyle  = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	applyCmd.Flags().StringVarP(&applyFormat, "format", "f", settings.DefaultFormat, "output format for new files: png, jpeg, bmp or webp")
	applyCmd.Flags().StringVarP(&applyQuality, "quality", "q", settings.DefaultQuality, "JPEG quality between 0 and 1")
	applyCmd.Flags().StringVarP(&applyMode, "mode", "m", settings.DefaultSaveMode, "save mode: overwrite or new")
	applyCmd.Flags().BoolVar(&applyNoTUI, "no-tui", false, "disable the progress display")

	rootCmd.AddCommand(applyCmd)
}
