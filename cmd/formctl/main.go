// Command formctl validates, fills and submits recruitment forms from the
// terminal and hosts the development stub backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/prompt"
)

type app struct {
	configPath string
	schemaDir  string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger

	// driver overrides the survey prompt driver; tests script it.
	driver prompt.Driver
}

func newApp() *app {
	return &app{cfg: config.Default(), logger: zap.NewNop()}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "formctl",
		Short:         "Validate, fill and submit recruitment forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.Log.Level = "debug"
			}
			if a.schemaDir != "" {
				cfg.Schemas.Dir = a.schemaDir
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (defaults to $FORMSTATE_CONFIG)")
	root.PersistentFlags().StringVar(&a.schemaDir, "schema-dir", "", "directory with additional form schema files")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.formsCmd(),
		a.validateCmd(),
		a.fillCmd(),
		a.importOpenAPICmd(),
		a.lintCmd(),
		a.stubBackendCmd(),
		a.campaignStatsCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "formctl:", err)
		stop()
		os.Exit(1)
	}
}
