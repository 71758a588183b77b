// cmd/replenish/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/procurehq/replenish/internal/cache"
	"github.com/procurehq/replenish/internal/config"
	"github.com/procurehq/replenish/internal/forecast"
	"github.com/procurehq/replenish/internal/harmonizer"
	"github.com/procurehq/replenish/internal/inference"
	"github.com/procurehq/replenish/internal/inventory"
	"github.com/procurehq/replenish/internal/replenish"
	"github.com/procurehq/replenish/internal/stock"
	"github.com/procurehq/replenish/pkg/logger"
)

type app struct {
	cfg     *config.Config
	service *replenish.Service
	monitor *stock.Monitor
}

func main() {
	a := &app{}

	cliApp := &cli.App{
		Name:  "replenish",
		Usage: "demand forecasting and replenishment recommendations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "path to the historical orders file (CSV or XLSX)",
			},
			&cli.StringFlag{
				Name:  "inventory",
				Usage: "path to the current inventory snapshot (CSV)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level (debug, info, warn, error)",
			},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			{
				Name:      "forecast",
				Usage:     "forecast next month's demand for an item",
				ArgsUsage: "<item_code>",
				Action:    a.forecastCmd,
			},
			{
				Name:      "check",
				Usage:     "check the stock position of an item",
				ArgsUsage: "<item_code>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "summary", Usage: "print the inventory summary instead"},
					&cli.BoolFlag{Name: "low", Usage: "list items at or below their reorder point"},
				},
				Action: a.checkCmd,
			},
			{
				Name:      "recommend",
				Usage:     "produce an order recommendation for an item",
				ArgsUsage: "<item_code>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "refresh", Usage: "drop the cached recommendation first"},
				},
				Action: a.recommendCmd,
			},
			{
				Name:  "recommend-all",
				Usage: "recommend orders for every low-stock item, most urgent first",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "refresh", Usage: "drop all cached recommendations first"},
				},
				Action: a.recommendAllCmd,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup wires the services after flags are parsed so path flags can
// override the configured defaults.
func (a *app) setup(c *cli.Context) error {
	cfg := config.Load()
	if path := c.String("history"); path != "" {
		cfg.Data.HistoryPath = path
	}
	if path := c.String("inventory"); path != "" {
		cfg.Data.InventoryPath = path
	}
	logger.SetLevel(c.String("log-level"))

	inferer, err := inference.NewOpenAIService(cfg.Inference)
	if err != nil {
		return err
	}

	recCache, err := cache.NewRecommendationCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("recommendation cache unavailable, running without cache")
		recCache = cache.NewNoopRecommendationCache()
	}

	repo := inventory.NewRepository(cfg.Data.InventoryPath)
	a.cfg = cfg
	a.monitor = stock.NewMonitor(repo)
	a.service = replenish.NewService(
		cfg,
		harmonizer.New(inferer, cfg.Forecast.PreviewRows),
		forecast.New(cfg.Forecast.MinMonths),
		repo,
		a.monitor,
		replenish.NewCalculator(cfg.Replenish, cfg.Forecast.HorizonDays),
		inferer,
		recCache,
	)
	return nil
}

func (a *app) forecastCmd(c *cli.Context) error {
	code, err := requireItemCode(c)
	if err != nil {
		return err
	}
	fc, err := a.service.Forecast(context.Background(), code)
	if err != nil {
		return err
	}
	return printJSON(fc)
}

func (a *app) checkCmd(c *cli.Context) error {
	if c.Bool("summary") {
		summary, err := a.monitor.Summary()
		if err != nil {
			return err
		}
		return printJSON(summary)
	}
	if c.Bool("low") {
		items, err := a.monitor.LowStockItems()
		if err != nil {
			return err
		}
		return printJSON(items)
	}

	code, err := requireItemCode(c)
	if err != nil {
		return err
	}
	status, err := a.monitor.Check(code)
	if err != nil {
		return err
	}
	return printJSON(status)
}

func (a *app) recommendCmd(c *cli.Context) error {
	code, err := requireItemCode(c)
	if err != nil {
		return err
	}
	if c.Bool("refresh") {
		if err := a.service.InvalidateCache(context.Background(), code); err != nil {
			return err
		}
	}
	rec, err := a.service.Recommend(context.Background(), code)
	if err != nil {
		return err
	}
	return printJSON(rec)
}

func (a *app) recommendAllCmd(c *cli.Context) error {
	if c.Bool("refresh") {
		if err := a.service.InvalidateCache(context.Background(), ""); err != nil {
			return err
		}
	}
	recs, err := a.service.PriorityOrders(context.Background())
	if err != nil {
		return err
	}
	return printJSON(recs)
}

func requireItemCode(c *cli.Context) (string, error) {
	code := c.Args().First()
	if code == "" {
		return "", cli.Exit("item_code argument is required", 1)
	}
	return code, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
