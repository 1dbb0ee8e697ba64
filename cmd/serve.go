package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifier/internal/api"
	"github.com/shaharia-lab/notifier/internal/build"
	"github.com/shaharia-lab/notifier/internal/config"
	"github.com/shaharia-lab/notifier/internal/eventbus"
	"github.com/shaharia-lab/notifier/internal/logger"
	"github.com/shaharia-lab/notifier/internal/metrics"
	"github.com/shaharia-lab/notifier/internal/scheduler"
	"github.com/shaharia-lab/notifier/internal/server"
	"github.com/shaharia-lab/notifier/internal/service"
	"github.com/shaharia-lab/notifier/internal/telemetry"
)

const eventWorkers = 3

// NewServeCmd returns the "serve" subcommand that starts the HTTP server.
func NewServeCmd(cfg *config.AppConfig) *cobra.Command {
	var port int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the notifier HTTP API",
		Long: `Start the notifier HTTP server. Triggers are registered with POST /register
and fired with POST /notify.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			serverURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
			logFile := filepath.Join(cfg.LogDir(), "system.log")
			printBanner(build.Version, serverURL, logFile, cfg.StorageDriver)

			if err := runServe(cfg, verbose); err != nil {
				fmt.Fprintf(os.Stderr, "An error occurred: %v\nPlease check the logs at: %s\n", err, logFile)
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", cfg.Port, "HTTP server port (overrides PORT env var)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Mirror logs to stderr")
	return cmd
}

func runServe(cfg *config.AppConfig, verbose bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var console io.Writer
	if verbose {
		console = os.Stderr
	}
	sysLogger, logCloser, err := logger.NewSystemLogger(cfg.LogDir(), cfg.SlogLevel(), console)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logCloser.Close() //nolint:errcheck

	sysLogger.Info("notifier starting",
		slog.Int("port", cfg.Port),
		slog.String("data_dir", cfg.DataDir),
		slog.String("storage", cfg.StorageDriver),
		slog.String("version", build.Version),
		slog.String("commit", build.CommitSHA),
		slog.String("build_date", build.BuildDate),
	)

	tracing, err := telemetry.Setup(ctx, cfg.Tracing())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			sysLogger.Warn("flushing traces", "error", err)
		}
	}()
	if tracing.Enabled() {
		sysLogger.Info("tracing enabled", "endpoint", cfg.OTLPEndpoint)
	}

	rt, err := openRuntime(ctx, cfg, sysLogger)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	bus := eventbus.New(eventWorkers, sysLogger)
	bus.Subscribe(service.DeliveryRecorder(rt.deliveries, sysLogger))
	defer bus.Close()

	m := metrics.New()
	triggerSvc := service.NewTriggerService(rt.registry, rt.deliveries, bus, m, service.Options{
		ValidatePayload: cfg.ValidatePayload,
		DispatchTimeout: cfg.DispatchTimeout,
	}, sysLogger)

	sched, err := scheduler.New(scheduler.Config{
		Deliveries: rt.deliveries,
		Retention:  cfg.DeliveryRetention,
		Logger:     sysLogger,
	})
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			sysLogger.Warn("stopping scheduler", "error", err)
		}
	}()

	apiSrv := api.New(triggerSvc, sysLogger)
	srv := server.New(apiSrv, m, server.Options{
		Port:           cfg.Port,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, sysLogger)

	sysLogger.Info("server ready",
		"url", fmt.Sprintf("http://localhost:%d", cfg.Port),
		"triggers", rt.registry.Len(),
	)
	return srv.Run(ctx)
}

var (
	bannerTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	bannerLabel = lipgloss.NewStyle().Faint(true).Width(9)
	bannerBox   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 2)
)

// printBanner writes the startup banner to stdout. It is the only output
// visible in the terminal during normal operation; all structured logs go
// to the log file instead.
func printBanner(version, serverURL, logFile, storageDriver string) {
	fmt.Println(renderBanner(version, serverURL, logFile, storageDriver))
}

func renderBanner(version, serverURL, logFile, storageDriver string) string {
	rows := []string{
		bannerTitle.Render(build.ServerName + " " + version),
		"",
		bannerLabel.Render("API") + serverURL,
		bannerLabel.Render("Storage") + storageDriver,
		bannerLabel.Render("Logs") + logFile,
	}
	return bannerBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
