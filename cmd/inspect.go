package cmd

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fliprotate/internal/host"
	"fliprotate/internal/processor"
	"fliprotate/internal/tui"
	"fliprotate/pkg/imgutil"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>...",
	Short: "Show which files would be processed, with size and EXIF orientation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := host.Selection(args)
		if err != nil {
			return err
		}

		for i, item := range items {
			if i > 0 {
				fmt.Fprintln(os.Stdout)
			}
			fmt.Fprintf(os.Stdout, "%s\n", inspectFileStyle.Render(item.FilePath))

			if !processor.IsImage(item) {
				printField("status", inspectDimStyle.Render("skipped (not an image)"))
				continue
			}

			info, err := inspectItem(item)
			if err != nil {
				printField("status", inspectErrStyle.Render(err.Error()))
				continue
			}
			printField("type", info.kind.String())
			printField("size", fmt.Sprintf("%dx%d", info.width, info.height))
			printField("orientation", imgutil.DescribeOrientation(info.orientation))
			printField("overwrite as", string(processor.FormatForExtension(item.Extension())))
		}
		return nil
	},
}

type itemInfo struct {
	kind        imgutil.Kind
	width       int
	height      int
	orientation int
}

func inspectItem(item processor.MediaItem) (itemInfo, error) {
	f, err := os.Open(item.FilePath)
	if err != nil {
		return itemInfo{}, err
	}
	defer f.Close()

	kind, err := imgutil.SniffReader(f)
	if err != nil {
		return itemInfo{}, err
	}
	if kind == imgutil.KindUnknown {
		return itemInfo{}, fmt.Errorf("unrecognized image data")
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return itemInfo{}, err
	}
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return itemInfo{}, err
	}

	orientation, err := imgutil.ReadOrientation(f)
	if err != nil {
		logger.Debug("EXIF read failed", zap.String("path", item.FilePath), zap.Error(err))
		orientation = imgutil.OrientationUnknown
	}

	return itemInfo{kind: kind, width: cfg.Width, height: cfg.Height, orientation: orientation}, nil
}

func printField(name, value string) {
	fmt.Fprintf(os.Stdout, "  %s %s %s\n",
		inspectBulletStyle.Render("-"),
		inspectLabelStyle.Render(name+":"),
		inspectValueStyle.Render(value))
}

var (
	inspectFileStyle   = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	inspectLabelStyle  = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	inspectValueStyle  = lipgloss.NewStyle().Foreground(tui.ColorInk)
	inspectDimStyle    = lipgloss.NewStyle().Foreground(tui.ColorDim)
	inspectErrStyle    = lipgloss.NewStyle().Foreground(tui.ColorError)
	inspectBulletStyle = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}
