package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fliprotate/internal/config"
	"fliprotate/internal/host"
	"fliprotate/internal/processor"
)

var (
	verbose bool

	appConfig *config.Config
	logger    = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "fliprotate",
	Short: "fliprotate - flip and rotate images in batches",
	Long:  "fliprotate flips or rotates a selection of images, re-encodes them and either overwrites the originals or adds new copies to a library.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}
		l, err := cfg.NewLogger(verbose)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		appConfig = cfg
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openLibrary returns the S3 library when a bucket is configured, otherwise
// the local directory library.
func openLibrary(ctx context.Context) (processor.Library, error) {
	local, err := host.NewFSLibrary(appConfig.LibraryDir, appConfig.TempDir, logger)
	if err != nil {
		return nil, err
	}
	if !appConfig.S3Enabled() {
		return local, nil
	}
	return host.NewS3Library(ctx, local, appConfig.S3())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
