package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/numplan/numplan/internal/cli/ui"
	"github.com/numplan/numplan/internal/config"
	"github.com/numplan/numplan/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the numplan HTTP server",
	Long: `Start the HTTP API server. Configuration is resolved from defaults,
numplan.toml, NUMPLAN_* environment variables, and flags, in that order.

Examples:
  numplan serve
  numplan serve --port 3000 --region GB`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("config", "", "Path to numplan.toml config file")
	serveCmd.Flags().String("host", "", "Host to bind")
	serveCmd.Flags().Int("port", 0, "Port to listen on")
	serveCmd.Flags().String("region", "", "Default region for numbers without a country code")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	flags := map[string]string{}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		flags["host"] = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		flags["port"] = strconv.Itoa(port)
	}
	if region, _ := cmd.Flags().GetString("region"); region != "" {
		flags["region"] = region
	}

	spin := ui.NewStepSpinner(os.Stderr, !colorEnabledFd(os.Stderr.Fd()))

	spin.Start("Loading configuration")
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		spin.Fail()
		return fmt.Errorf("loading config: %w", err)
	}
	spin.Done()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	spin.Start("Loading numbering plans")
	engine := newEngine()
	regions := engine.SupportedRegions()
	spin.Done()

	srv := server.New(cfg, logger, engine)

	spin.Start(fmt.Sprintf("Starting server on %s", cfg.Address()))
	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.StartWithReady(ready)
	}()

	select {
	case <-ready:
		spin.Done()
	case err := <-errCh:
		spin.Fail()
		return err
	}

	logger.Info("numplan ready",
		"address", cfg.Address(),
		"regions", len(regions),
		"default_region", cfg.Engine.DefaultRegion,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("signal received", "signal", sig.String())
		if err := srv.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// newLogger builds the process logger from the logging config.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
