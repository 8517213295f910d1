package main

import (
	"context"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/argo-feed/internal/app"
	"github.com/rxtech-lab/argo-feed/internal/config"
	"github.com/rxtech-lab/argo-feed/internal/logger"
	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/urfave/cli/v3"
)

// dashboardAssets are the assets the a key cycles through.
var dashboardAssets = []types.Asset{types.AssetBTC, types.AssetETH, types.AssetSOL}

func watchAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	// the terminal belongs to the dashboard, so nothing is logged
	feed, err := app.NewFeed(cfg, logger.NewNopLogger(), nil)
	if err != nil {
		return err
	}
	defer feed.Orchestrator.Close()

	m := NewModel(feed.Orchestrator, cfg.InitialFilters, dashboardAssets)

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()

	return err
}

func main() {
	cmd := &cli.Command{
		Name:  "watch",
		Usage: "Terminal dashboard for the simulated market data feed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config `FILE`",
				Sources: cli.EnvVars("ARGOFEED_CONFIG"),
			},
		},
		Action: watchAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
