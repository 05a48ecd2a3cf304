package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose    bool
	configPath string
)

// factory builds services for each command.
var factory driving.Factory

var rootCmd = &cobra.Command{
	Use:   "pdfsift",
	Short: "Find PDF documents containing a string",
	Long: `pdfsift searches a directory of PDF files for a string.

Text is read from each document's text layer first; scanned pages are
recognised with OCR only when the text layer does not contain the query.
Extracted text is cached, so each document is read once.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.pdfsift/config.toml)")
}

// SetFactory configures how commands build their services.
func SetFactory(f driving.Factory) {
	factory = f
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command. SIGINT and SIGTERM cancel the running
// command, which then saves its cache before returning.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		rootCmd.PrintErrln(newStyles(rootCmd.ErrOrStderr()).Error.Render("Error: " + err.Error()))
	}
	return err
}

// settingsService opens the config file selected by --config.
func settingsService() (driving.SettingsService, error) {
	if factory == nil {
		return nil, errors.New("services not configured")
	}
	return factory.Settings(configPath)
}

// loadSettings resolves the effective settings for a run.
func loadSettings(overrides map[string]string) (driving.SettingsService, domain.Settings, error) {
	svc, err := settingsService()
	if err != nil {
		return nil, domain.Settings{}, err
	}
	settings, err := svc.Load(overrides)
	if err != nil {
		return nil, settings, err
	}
	return svc, settings, nil
}
