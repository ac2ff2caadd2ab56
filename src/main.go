// Media trends dashboard entrypoint.
//
// Two commands:
//  1. serve: load every chart from the analytics backend and serve the dashboard over HTTP.
//     Charts are loaded in the background; the page shows whatever has arrived.
//  2. export: load every chart, wait for all of them, then write PNG, HTML and/or XLSX exports.
//
// Per-chart failures never abort either command; they are logged and listed in the diagnostics.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iafilius/MediaTrendsDashboard/src/config"
	"github.com/iafilius/MediaTrendsDashboard/src/dashboard"
	"github.com/iafilius/MediaTrendsDashboard/src/diag"
	"github.com/iafilius/MediaTrendsDashboard/src/render"
	"github.com/iafilius/MediaTrendsDashboard/src/server"
)

type globalFlags struct {
	configPath string
	logLevel   string
	baseURL    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "trendboard",
		Short:         "Media trends dashboard for anime, movie and game statistics",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file (defaults built in)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	root.PersistentFlags().StringVar(&g.baseURL, "api", "", "analytics backend base URL (overrides config)")
	root.AddCommand(newServeCmd(g), newExportCmd(g))
	return root
}

// setup loads config, applies flag overrides and builds the logger.
func setup(g *globalFlags) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.baseURL != "" {
		cfg.API.BaseURL = g.baseURL
	}
	logger, err := diag.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(g)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			if addr != "" {
				cfg.Server.Addr = addr
			}
			d, err := dashboard.New(cfg, logger, nil)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			d.Load(ctx)
			return server.New(d, logger.Named("server")).Run(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var (
		out     string
		formats string
		theme   string
		hints   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Load every chart once and write exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(g)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			if out != "" {
				cfg.Export.Dir = out
			}
			if formats != "" {
				cfg.Export.Formats = strings.Split(formats, ",")
			}
			if theme != "" {
				cfg.Dashboard.Theme = string(render.ParseTheme(theme))
			}
			if cmd.Flags().Changed("hints") {
				cfg.Dashboard.ShowHints = hints
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			d, err := dashboard.New(cfg, logger, nil)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			outcomes := d.Refresh(ctx)
			failed := 0
			for _, o := range outcomes {
				if !o.OK() {
					failed++
				}
			}
			if failed == len(outcomes) {
				return errors.New("no chart could be loaded; see the log for diagnostics")
			}
			paths, err := d.Export(cfg.Export.Dir, cfg.Export.Formats)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d charts exported, %d failed\n", len(outcomes)-failed, len(outcomes), failed)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (overrides config)")
	cmd.Flags().StringVar(&formats, "format", "", "comma separated formats: png,html,xlsx (overrides config)")
	cmd.Flags().StringVar(&theme, "theme", "", "light or dark")
	cmd.Flags().BoolVar(&hints, "hints", false, "draw chart hints onto the images")
	return cmd
}
