/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the lab equipment booking server. Handles
  configuration, store selection, dependency injection, and graceful
  shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse flags
  2. Initialize the selected store backend
  3. Create the workflow and API handler
  4. Start the idle-conversation sweeper
  5. Start the HTTP server with graceful shutdown

STORE BACKENDS (-store):
  sqlite  Local SQLite database (default)
  csv     Two CSV files (inventory + bookings)
  sheets  Google Spreadsheet via a service account
  memory  In-memory, lost on restart (demos)

COMMAND-LINE FLAGS / ENVIRONMENT:
  -port   / PORT                HTTP server port (default 8080)
  -store  / STORE_BACKEND       Backend, see above
  -db     / DB_PATH             SQLite database path
  -inventory-csv / INVENTORY_CSV_PATH
  -bookings-csv  / BOOKINGS_CSV_PATH
  -credentials   / GOOGLE_SERVICE_ACCOUNT_FILE
  -spreadsheet   / SPREADSHEET_ID
  -inventory-sheet / INVENTORY_SHEET_NAME  (default "Inventory")
  -bookings-sheet  / BOOKINGS_SHEET_NAME   (default "Bookings")
  Flags win over environment; .env only fills unset variables.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweeper and close the store
  4. Exit

EXAMPLES:
  # Local SQLite
  ./server -db="./data/bookings.db"

  # Google Sheets, configured via .env
  STORE_BACKEND=sheets ./server

SEE ALSO:
  - api/server.go: Router configuration
  - workflow/workflow.go: Conversation state machine
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/api"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/store/gsheet"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/store/memory"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/store/sheet"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/store/sqlite"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/workflow"
)

// store is what every backend must provide.
type store interface {
	booking.InventoryCatalog
	booking.Ledger
}

func main() {
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	backend := flag.String("store", envStr("STORE_BACKEND", "sqlite"),
		"store backend: sqlite, csv, sheets, memory")
	dbPath := flag.String("db", envStr("DB_PATH", "bookings.db"), "SQLite database path")
	inventoryCSV := flag.String("inventory-csv",
		envStr("INVENTORY_CSV_PATH", "inventory.csv"), "inventory CSV path")
	bookingsCSV := flag.String("bookings-csv",
		envStr("BOOKINGS_CSV_PATH", "bookings.csv"), "bookings CSV path")
	credentials := flag.String("credentials",
		envStr("GOOGLE_SERVICE_ACCOUNT_FILE", "credentials.json"),
		"Google service account credentials file")
	spreadsheetID := flag.String("spreadsheet",
		envStr("SPREADSHEET_ID", ""), "Google spreadsheet ID")
	inventorySheet := flag.String("inventory-sheet",
		envStr("INVENTORY_SHEET_NAME", "Inventory"), "inventory worksheet title")
	bookingsSheet := flag.String("bookings-sheet",
		envStr("BOOKINGS_SHEET_NAME", "Bookings"), "bookings worksheet title")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize the selected store
	st, closeStore, err := openStore(*backend, storePaths{
		dbPath:         *dbPath,
		inventoryCSV:   *inventoryCSV,
		bookingsCSV:    *bookingsCSV,
		credentials:    *credentials,
		spreadsheetID:  *spreadsheetID,
		inventorySheet: *inventorySheet,
		bookingsSheet:  *bookingsSheet,
	})
	if err != nil {
		logger.Fatal("failed to initialize store", zap.String("backend", *backend), zap.Error(err))
	}
	defer closeStore()

	wf := workflow.New(workflow.Config{
		Catalog: st,
		Ledger:  st,
		Logger:  logger.Named("workflow"),
	})

	// Sweep abandoned conversations in the background
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go wf.RunSweeper(sweepCtx, 5*time.Minute)

	handler := api.NewHandler(wf, booking.NewEngine(st, st), logger.Named("api"))
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", *port),
			zap.String("store", *backend),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

type storePaths struct {
	dbPath         string
	inventoryCSV   string
	bookingsCSV    string
	credentials    string
	spreadsheetID  string
	inventorySheet string
	bookingsSheet  string
}

func openStore(backend string, p storePaths) (store, func(), error) {
	switch backend {
	case "sqlite":
		st, err := sqlite.New(p.dbPath)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil

	case "csv":
		st, err := sheet.NewFileStore(p.inventoryCSV, p.bookingsCSV)
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil

	case "sheets":
		if p.spreadsheetID == "" {
			return nil, nil, fmt.Errorf("sheets backend requires -spreadsheet or SPREADSHEET_ID")
		}
		st, err := gsheet.New(context.Background(), gsheet.Config{
			CredentialsFile: p.credentials,
			SpreadsheetID:   p.spreadsheetID,
			InventorySheet:  p.inventorySheet,
			BookingsSheet:   p.bookingsSheet,
		})
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil

	case "memory":
		return memory.NewStore(nil), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
