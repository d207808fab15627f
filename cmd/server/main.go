/*
main.go - Application entry point

PURPOSE:
  The books command. Serves the HTTP API by default and offers a few
  offline commands against the configured store.

COMMANDS:
  serve          HTTP server with graceful shutdown (default)
  export         Write a JSON backup (--out, default: dated name)
  import         Replace the books with a JSON backup (--file)
  trial-balance  Print the trial balance
  dashboard      Print the headline figures

STARTUP SEQUENCE (serve):
  1. Load configuration (BOOKS_* environment, optional .env)
  2. Open the snapshot store and the books
  3. Load the chart of accounts
  4. Create API handler, router and backup scheduler
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the backup scheduler
  4. Close the store

EXAMPLES:
  # In-memory books with demo-friendly overselling
  BOOKS_STORE=memory BOOKS_STOCK_POLICY=allow_negative ./books serve

  # Nightly backups from a bolt store
  BOOKS_STORE=bolt BOOKS_BACKUP_DIR=./backups ./books

  # Restore a backup offline
  ./books import --file business_manager_backup_2025-03-10.json

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/warp/books-engine/analyst"
	"github.com/warp/books-engine/api"
	"github.com/warp/books-engine/bookkeeping"
	"github.com/warp/books-engine/config"
	"github.com/warp/books-engine/factory"
	"github.com/warp/books-engine/ledger"
	"github.com/warp/books-engine/locale"
	"github.com/warp/books-engine/reporting"
	"github.com/warp/books-engine/store/kv"
	"github.com/warp/books-engine/store/memory"
	"github.com/warp/books-engine/store/sqlite"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "books:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	envFlag := &cli.StringFlag{Name: "env-file", Usage: "load variables from this file instead of ./.env"}

	return &cli.App{
		Name:   "books",
		Usage:  "small-business bookkeeping engine",
		Flags:  []cli.Flag{envFlag},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "export",
				Usage: "write a JSON backup",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default: dated backup name)"},
				},
				Action: exportBooks,
			},
			{
				Name:  "import",
				Usage: "replace the books with a JSON backup",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "backup file", Required: true},
				},
				Action: importBooks,
			},
			{
				Name:   "trial-balance",
				Usage:  "print the trial balance",
				Action: printTrialBalance,
			},
			{
				Name:   "dashboard",
				Usage:  "print the headline figures",
				Action: printDashboard,
			},
		},
	}
}

// =============================================================================
// WIRING
// =============================================================================

// deps is what every command needs.
type deps struct {
	cfg   config.Config
	log   *logrus.Logger
	books *bookkeeping.Books
	close func() error
}

func setup(c *cli.Context) (*deps, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, err
	}
	log := config.NewLogger(cfg)

	books, closeStore, err := openBooks(c.Context, cfg, log)
	if err != nil {
		return nil, err
	}
	return &deps{cfg: cfg, log: log, books: books, close: closeStore}, nil
}

// openStore builds the configured SnapshotStore and its closer.
func openStore(ctx context.Context, cfg config.Config) (bookkeeping.SnapshotStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), noop, nil
	case config.StoreSQLite:
		s, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.DBPath, err)
		}
		return s, s.Close, nil
	case config.StoreBolt:
		s, err := kv.NewBolt(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt %s: %w", cfg.BoltPath, err)
		}
		return s, s.Close, nil
	case config.StoreRedis:
		s, err := kv.NewRedis(ctx, kv.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open redis %s: %w", cfg.RedisAddr, err)
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func openBooks(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*bookkeeping.Books, func() error, error) {
	policy, err := ledger.ParseStockPolicy(cfg.StockPolicy)
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	engine := ledger.NewEngine()
	engine.StockPolicy = policy
	books, err := bookkeeping.Open(ctx, store,
		bookkeeping.WithEngine(engine),
		bookkeeping.WithLogger(log.WithField("store", cfg.Store)))
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return books, closeStore, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

func serve(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg, log := rt.cfg, rt.log

	chart, err := factory.LoadChart(cfg.ChartPath)
	if err != nil {
		return fmt.Errorf("load chart: %w", err)
	}
	svc := analyst.NewService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AnalystTimeout, log.WithField("component", "analyst"))

	handler := api.NewHandler(rt.books, chart, svc, log)
	handler.DefaultCurrency = cfg.DefaultCurrency
	handler.DefaultLanguage = cfg.DefaultLanguage

	if cfg.BackupDir != "" {
		scheduler := api.NewBackupScheduler(rt.books, cfg.BackupDir, cfg.BackupInterval, log)
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(handler, cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AnalystTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":         cfg.Addr(),
			"store":        cfg.Store,
			"stock_policy": cfg.StockPolicy,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func exportBooks(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()

	raw, name, err := rt.books.Export()
	if err != nil {
		return err
	}
	out := c.String("out")
	if out == "" {
		out = name
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}

func importBooks(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()

	path := c.String("file")
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := rt.books.Import(c.Context, raw); err != nil {
		return err
	}
	data := rt.books.Snapshot()
	fmt.Fprintf(c.App.Writer, "imported %d products, %d transactions, %d ledger entries\n",
		len(data.Products), len(data.Transactions), len(data.Ledger))
	return nil
}

func printTrialBalance(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()

	writeTrialBalance(c.App.Writer, reporting.TrialBalance(rt.books.Snapshot().Ledger))
	return nil
}

func printDashboard(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()

	m := reporting.Dashboard(rt.books.Snapshot())
	return writeDashboard(c.App.Writer, m, rt.cfg.DefaultCurrency, rt.cfg.DefaultLanguage)
}

// =============================================================================
// OUTPUT
// =============================================================================

func writeTrialBalance(w io.Writer, tb reporting.TrialBalanceReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Account\tDebit\tCredit\tNet\t\t")
	for _, row := range tb.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			row.Account, row.Debit.StringFixed(2), row.Credit.StringFixed(2), row.Net.StringFixed(2), row.Side)
	}
	fmt.Fprintf(tw, "Total\t%s\t%s\t\t\t\n", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
	tw.Flush()

	if !tb.Balanced {
		fmt.Fprintln(w, "WARNING: debits and credits differ")
	}
}

func writeDashboard(w io.Writer, m reporting.DashboardMetrics, currency, lang string) error {
	lines := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"totalStockValue", m.StockValue},
		{"totalRevenue", m.TotalRevenue},
		{"totalExpenses", m.TotalPurchases},
		{"netCashFlow", m.NetCashFlow},
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, l := range lines {
		s, err := locale.FormatAmount(l.amount, currency, lang)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\n", locale.Label(lang, l.label), s)
	}
	return tw.Flush()
}
