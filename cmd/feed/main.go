package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-feed/internal/app"
	"github.com/rxtech-lab/argo-feed/internal/config"
	"github.com/rxtech-lab/argo-feed/internal/logger"
	"github.com/rxtech-lab/argo-feed/internal/refresher"
	"github.com/rxtech-lab/argo-feed/internal/server"
	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/internal/version"
	"github.com/rxtech-lab/argo-feed/pkg/utils"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.Load(cmd.String("config"))
}

// serveAction runs the HTTP API with the optional refresh schedule until interrupted.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	registry := prometheus.NewRegistry()

	feed, err := app.NewFeed(cfg, log, registry)
	if err != nil {
		return err
	}
	defer feed.Orchestrator.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := feed.Orchestrator.OnFilterChange(ctx, cfg.InitialFilters); err != nil {
		return err
	}

	ticker, err := refresher.New(ctx, cfg.RefreshSchedule, feed.Orchestrator, log.Component("refresher"))
	if err != nil {
		return err
	}

	ticker.Start()
	defer ticker.Stop()

	srv := server.New(feed.Orchestrator, server.Options{
		MetricsPath: cfg.Server.MetricsPath,
		Gatherer:    registry,
		Logger:      log.Component("server"),
	})
	if err := srv.Start(cfg.Server.Addr); err != nil {
		return err
	}

	log.Info("argo-feed started",
		zap.String("version", version.GetVersion()),
		zap.String("address", srv.Address()),
		zap.String("refresh_schedule", cfg.RefreshSchedule),
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down")

	return srv.Stop(shutdownCtx)
}

// snapshotAction generates one derived series and prints it as JSON.
func snapshotAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cfg.FetchDelay = 0
	if cmd.IsSet("seed") {
		cfg.Seed = cmd.Int("seed")
	}

	filters := cfg.InitialFilters
	if cmd.IsSet("asset") {
		filters.Asset = types.Asset(cmd.String("asset"))
	}

	if cmd.IsSet("currency") {
		filters.Currency = types.Currency(cmd.String("currency"))
	}

	if cmd.IsSet("timeframe") {
		filters.Timeframe = types.Timeframe(cmd.String("timeframe"))
	}

	feed, err := app.NewFeed(cfg, logger.NewNopLogger(), nil)
	if err != nil {
		return err
	}
	defer feed.Orchestrator.Close()

	if err := feed.Orchestrator.OnFilterChange(ctx, filters); err != nil {
		return err
	}

	feed.Orchestrator.Wait()

	if err := feed.Orchestrator.Err(); err != nil {
		return err
	}

	return writeJSON(cmd.Root().Writer, feed.Orchestrator.Snapshot())
}

// schemaAction prints the JSON schema of the config file or of a snapshot.
func schemaAction(_ context.Context, cmd *cli.Command) error {
	var (
		schema string
		err    error
	)

	switch kind := cmd.String("kind"); kind {
	case "config":
		schema, err = config.JSONSchema()
	case "snapshot":
		schema, err = utils.ToJSONSchema(types.Snapshot{})
	default:
		return fmt.Errorf("unknown schema kind %q, expected config or snapshot", kind)
	}

	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, schema)

	return err
}

func versionAction(_ context.Context, cmd *cli.Command) error {
	_, err := fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

	return err
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

func newCommand() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML config `FILE`",
		Sources: cli.EnvVars("ARGOFEED_CONFIG"),
	}

	return &cli.Command{
		Name:    "argo-feed",
		Usage:   "Simulated market data feed with Bollinger Bands and RSI",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the HTTP and WebSocket API",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address, overrides server.addr",
					},
				},
				Action: serveAction,
			},
			{
				Name:  "snapshot",
				Usage: "Generate one derived series and print it as JSON",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:    "asset",
						Aliases: []string{"a"},
						Usage:   "Asset ticker (e.g. BTC, ETH, SOL)",
					},
					&cli.StringFlag{
						Name:  "currency",
						Usage: fmt.Sprintf("Display currency (%s or %s)", types.CurrencyUSD, types.CurrencyEUR),
					},
					&cli.StringFlag{
						Name:    "timeframe",
						Aliases: []string{"t"},
						Usage:   fmt.Sprintf("Timeframe (%s or %s)", types.TimeframeOneDay, types.TimeframeOneWeek),
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "Random walk seed, 0 seeds from the clock",
					},
				},
				Action: snapshotAction,
			},
			{
				Name:  "schema",
				Usage: "Print a JSON schema",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Schema to print: config or snapshot",
						Value: "snapshot",
					},
				},
				Action: schemaAction,
			},
			{
				Name:   "version",
				Usage:  "Print the version",
				Action: versionAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
