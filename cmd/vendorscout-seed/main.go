// Command vendorscout-seed loads a YAML vendor catalog into the vendor store.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/app"
	"github.com/kailas-cloud/vendorscout/internal/config"
	dombatch "github.com/kailas-cloud/vendorscout/internal/domain/batch"
	logpkg "github.com/kailas-cloud/vendorscout/internal/logger"
	"github.com/kailas-cloud/vendorscout/internal/metrics"
	vendorrepo "github.com/kailas-cloud/vendorscout/internal/repository/vendors"
	cataloguc "github.com/kailas-cloud/vendorscout/internal/usecase/catalog"
	"github.com/kailas-cloud/vendorscout/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "vendorscout-seed",
		Usage:   "Load vendor catalogs into the vendor store",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Config environment (config/<env>.yaml)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Validate, embed and store every vendor of a catalog file",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the YAML catalog",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Vendors per ingest call (0 = index.max_batch_size)",
					},
				},
			},
			{
				Name:   "validate",
				Usage:  "Parse a catalog file without touching the store",
				Action: validateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the YAML catalog",
						Required: true,
					},
				},
			},
		},
	}
}

func validateCommand(c *cli.Context) error {
	items, err := loadCatalogFile(c.String("file"))
	if err != nil {
		return err
	}
	invalid := validateCatalog(items)
	for _, r := range invalid {
		fmt.Fprintf(c.App.Writer, "%s/%s: %v\n", r.Category(), r.ID(), r.Err())
	}
	fmt.Fprintf(c.App.Writer, "%d vendors, %d invalid\n", len(items), len(invalid))
	if len(invalid) > 0 {
		return cli.Exit("catalog has invalid vendors", 2)
	}
	return nil
}

func ingestCommand(c *cli.Context) error {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	items, err := loadCatalogFile(c.String("file"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	store, err := app.OpenStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics.RegisterProviderMetrics()
	provider := app.NewProvider(cfg.Understanding, logger)
	descriptions := app.NewDescriptionEmbedder(cfg.Understanding, provider, store, logger)

	repo := vendorrepo.New(store, vendorrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	svc := cataloguc.New(repo, descriptions, cfg.Understanding.Dimensions).
		WithMaxBatchSize(cfg.Index.MaxBatchSize)
	if err := svc.EnsureIndex(ctx); err != nil {
		return err
	}

	batchSize := c.Int("batch-size")
	if batchSize <= 0 || batchSize > cfg.Index.MaxBatchSize {
		batchSize = cfg.Index.MaxBatchSize
	}

	results := ingest(ctx, svc, items, batchSize)
	printResults(c.App.Writer, results)
	if err := printStoredCounts(ctx, c.App.Writer, repo, items); err != nil {
		logger.Warn("Stored vendor counts unavailable", zap.Error(err))
	}
	logger.Info("Catalog seeded",
		zap.String("file", c.String("file")),
		zap.Int("vendors", len(items)),
	)

	if dombatch.Summary(results)[dombatch.StatusError] > 0 {
		return cli.Exit("some vendors were not stored", 2)
	}
	return nil
}

func printResults(w io.Writer, results []dombatch.Result) {
	for _, r := range results {
		if r.Err() != nil {
			fmt.Fprintf(w, "%-10s %s/%s: %v\n", r.Status(), r.Category(), r.ID(), r.Err())
		}
	}
	summary := dombatch.Summary(results)
	fmt.Fprintf(w, "ok=%d unembedded=%d failed=%d\n",
		summary[dombatch.StatusOK], summary[dombatch.StatusUnembedded], summary[dombatch.StatusError])
}
