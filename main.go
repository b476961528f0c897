package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bookstore-management/auditlog"
	"bookstore-management/bookstore"
	"bookstore-management/config"
	"bookstore-management/customers"
	"bookstore-management/reports"
	"bookstore-management/server"
	"bookstore-management/tickets"
)

func main() {
	root := &cobra.Command{
		Use:           "bookstore",
		Short:         "Bookstore inventory ledger with an audit-log report engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), seedCmd(), reportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the fully wired set of subsystems every command starts from.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	ledger    *bookstore.Ledger
	customers *customers.Service
	tickets   *tickets.Service
	reports   *reports.Engine
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Log)

	bookStore := bookstore.NewStore(cfg.BooksFile())
	if err := bookStore.EnsureFile(); err != nil {
		return nil, err
	}
	customerStore := customers.NewStore(cfg.CustomersFile())
	if err := customerStore.EnsureFile(); err != nil {
		return nil, err
	}
	ticketStore := tickets.NewStore(cfg.TicketsFile())
	if err := ticketStore.EnsureFile(); err != nil {
		return nil, err
	}

	audit := auditlog.NewLogger(cfg.AuditFile())
	if err := audit.EnsureFile(); err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		ledger:    bookstore.NewLedger(bookStore, audit),
		customers: customers.NewService(customerStore, audit),
		tickets:   tickets.NewService(ticketStore),
		reports:   reports.NewEngine(auditlog.NewReader(cfg.AuditFile())),
	}, nil
}

// newLogger builds the operational logger. Format "" picks text on a
// terminal and JSON otherwise.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	format := cfg.Format
	if format == "" {
		if term.IsTerminal(int(os.Stderr.Fd())) {
			format = "text"
		} else {
			format = "json"
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			srv := server.New(a.ledger, a.customers, a.tickets, a.reports, a.logger, a.cfg.Server.StaticDir)
			httpSrv := &http.Server{
				Addr:         a.cfg.Server.Addr(),
				Handler:      srv.Handler(),
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
				IdleTimeout:  a.cfg.Server.IdleTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server.listen", "addr", httpSrv.Addr, "data_dir", a.cfg.DataDir)
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				a.logger.Info("server.shutdown", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(ctx)
		},
	}
}

// starterCatalog is inserted by `seed --sample`. Creates go through the
// ledger, so rerunning merges quantities instead of duplicating rows.
var starterCatalog = []bookstore.BookInput{
	{Title: "1984", Author: "George Orwell", Quantity: 5, Price: "49.90"},
	{Title: "Brave New World", Author: "Aldous Huxley", Quantity: 4, Price: "39.90"},
	{Title: "Fahrenheit 451", Author: "Ray Bradbury", Quantity: 3, Price: "34.50"},
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", Quantity: 6, Price: "59.00"},
	{Title: "Dune", Author: "Frank Herbert", Quantity: 2, Price: "64.90"},
}

func seedCmd() *cobra.Command {
	var sample bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the data files, optionally loading a starter catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if !sample {
				a.logger.Info("seed.files_ready", "data_dir", a.cfg.DataDir)
				return nil
			}
			for _, in := range starterCatalog {
				book, err := a.ledger.Create(in)
				if err != nil {
					return fmt.Errorf("seed %q: %w", in.Title, err)
				}
				a.logger.Info("seed.book", "id", book.ID, "title", book.Title, "quantity", book.Quantity)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sample, "sample", false, "insert the sample catalog")
	return cmd
}

func reportCmd() *cobra.Command {
	var (
		page, size           int
		kind, customer, book string
		from, to             string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Query the audit log: filters, totals, pagination",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			q := reports.Query{Page: page, Size: size, Kind: kind, Customer: customer, Book: book}
			if q.From, err = parseDayFlag("from", from); err != nil {
				return err
			}
			if q.To, err = parseDayFlag("to", to); err != nil {
				return err
			}

			result, err := a.reports.Run(q)
			if err != nil {
				return err
			}

			if term.IsTerminal(int(os.Stdout.Fd())) {
				printReportTable(result)
				return nil
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&size, "size", reports.DefaultPageSize, "rows per page")
	cmd.Flags().StringVar(&kind, "kind", "", "event kind filter (e.g. COMPRA)")
	cmd.Flags().StringVar(&customer, "customer", "", "customer substring filter")
	cmd.Flags().StringVar(&book, "book", "", "book substring filter")
	cmd.Flags().StringVar(&from, "from", "", "start date, YYYY-MM-DD inclusive")
	cmd.Flags().StringVar(&to, "to", "", "end date, YYYY-MM-DD inclusive")
	return cmd
}

func parseDayFlag(name, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", name, raw)
	}
	return &t, nil
}

func printReportTable(result *reports.Result) {
	fmt.Printf("%-20s %-22s %-20s %-25s %5s %12s\n", "Timestamp", "Kind", "Customer", "Book", "Qty", "Stock")
	fmt.Println(strings.Repeat("-", 110))
	for _, row := range result.Rows {
		qty := ""
		if row.Quantity != 0 {
			qty = fmt.Sprintf("%d", row.Quantity)
		}
		stock := ""
		if row.StockBefore != nil && row.StockAfter != nil {
			stock = fmt.Sprintf("%d -> %d", *row.StockBefore, *row.StockAfter)
		}
		fmt.Printf("%-20s %-22s %-20s %-25s %5s %12s\n",
			row.Timestamp,
			truncate(row.Kind, 22),
			truncate(row.Customer, 20),
			truncate(row.Book, 25),
			qty,
			stock)
	}
	fmt.Printf("\nRows: %d | Units sold: %d | Page %d (size %d)",
		result.Totals.RowCount, result.Totals.UnitsSold, result.Pagination.Page, result.Pagination.Size)
	if result.Pagination.HasNext {
		fmt.Print(" | more pages available")
	}
	fmt.Println()
}

// truncate shortens s to maxLen characters, counting runes so multi-byte
// titles are never cut mid-character.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
