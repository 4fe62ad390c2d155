// Package cli implements the qrbadge command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrbadge/internal/config"
	"github.com/cristianadrielbraun/qrbadge/internal/pipeline"
	"github.com/cristianadrielbraun/qrbadge/internal/qr"
)

// app is the state shared by all commands, initialized in PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *logrus.Logger
	gen *qr.Generator
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "qrbadge",
		Short: "Render decorated QR codes",
		Long: `qrbadge renders QR codes with an optional centered logo and a bordered
badge card, as single images, CSV batches or over HTTP.

Example:
  qrbadge render --data https://example.org --logo logo.png --label "Scan mich" -o qr.png
  qrbadge batch --csv codes.csv -o codes.zip
  qrbadge serve`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvConfig+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(a), newRenderCmd(a), newBatchCmd(a))
	return root
}

// Execute runs the root command.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func (a *app) init(logOut io.Writer) error {
	path := a.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}

	a.cfg = config.Defaults()
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
	}
	config.ApplyEnvironment(a.cfg)
	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}

	a.log = config.NewLogger(a.cfg.Logging, logOut)
	a.gen = qr.NewGenerator()
	return nil
}

// pipeline checks the generator and builds a pipeline around it.
func (a *app) pipeline() (*pipeline.Pipeline, error) {
	if err := a.gen.Check(); err != nil {
		return nil, err
	}
	return pipeline.New(a.gen, a.log)
}
