/*
Package sqlite provides a SQLite-backed inventory catalog and booking
ledger.

PURPOSE:
  Self-hosted alternative to the spreadsheet stores: same interfaces,
  same semantics, but the data lives in a local database file instead
  of an external sheet.

APPEND-ONLY ENFORCEMENT:
  The bookings table is an append-only ledger:
  - No UPDATE statements on bookings
  - No DELETE statements on bookings
  Reading most-recent-first falls out of ORDER BY id DESC.

KEY TABLES:
  inventory: resource name -> total quantity, insertion-ordered
  bookings:  the immutable booking ledger

MALFORMED ROWS:
  A booking row whose date or times fail to parse, or whose resource
  text parses to nothing, is skipped on read rather than failing the
  whole query. The schema keeps rows well-formed on the write path,
  but operators do edit database files by hand.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of WAL mode: multiple
  readers don't block, a single writer at a time.

USAGE:
  store, err := sqlite.New("./data/bookings.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - booking/store.go: interface definitions
  - store/memory/memory.go: in-memory implementation for testing
  - store/sheet, store/gsheet: spreadsheet-backed implementations
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
)

// Store implements booking.InventoryCatalog and booking.Ledger on a
// SQLite database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Inventory: what exists and how many. position preserves the
	-- operator's listing order.
	CREATE TABLE IF NOT EXISTS inventory (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		name     TEXT NOT NULL UNIQUE,
		quantity INTEGER NOT NULL DEFAULT 0
	);

	-- Bookings (append-only ledger)
	CREATE TABLE IF NOT EXISTS bookings (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		date       TEXT NOT NULL,
		employee   TEXT NOT NULL,
		resources  TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time   TEXT NOT NULL,
		manager    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Availability checks read one day at a time
	CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// INVENTORY CATALOG (booking.InventoryCatalog interface)
// =============================================================================

// ReadInventory returns the inventory in listing order.
func (s *Store) ReadInventory(ctx context.Context) (*booking.Inventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, quantity FROM inventory ORDER BY position ASC",
	)
	if err != nil {
		return nil, &booking.SourceError{Op: "read inventory", Err: err}
	}
	defer rows.Close()

	var resources []booking.Resource
	for rows.Next() {
		var r booking.Resource
		if err := rows.Scan(&r.Name, &r.Quantity); err != nil {
			return nil, &booking.SourceError{Op: "read inventory", Err: err}
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &booking.SourceError{Op: "read inventory", Err: err}
	}
	return booking.NewInventory(resources), nil
}

// SetInventory replaces the whole inventory, keeping the given order.
// Intended for seeding and admin tooling, not the booking flow.
func (s *Store) SetInventory(ctx context.Context, resources []booking.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM inventory"); err != nil {
		return err
	}
	for _, r := range resources {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO inventory (name, quantity) VALUES (?, ?)",
			r.Name, r.Quantity,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// =============================================================================
// BOOKING LEDGER (booking.Ledger interface)
// =============================================================================

// Append adds a booking to the ledger.
func (s *Store) Append(ctx context.Context, rec booking.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (date, employee, resources, start_time, end_time, manager, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Date.String(),
		rec.Employee,
		rec.Resources.String(),
		rec.Start.String(),
		rec.End.String(),
		rec.Manager,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &booking.SourceError{Op: "append booking", Err: err}
	}
	return nil
}

// ReadAll returns every booking, most recent first. Rows that no
// longer parse are skipped.
func (s *Store) ReadAll(ctx context.Context) ([]booking.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, employee, resources, start_time, end_time, manager
		FROM bookings
		ORDER BY id DESC`,
	)
	if err != nil {
		return nil, &booking.SourceError{Op: "read bookings", Err: err}
	}
	defer rows.Close()

	var records []booking.Record
	for rows.Next() {
		var dateStr, employee, resourcesText, startStr, endStr, manager string
		if err := rows.Scan(&dateStr, &employee, &resourcesText, &startStr, &endStr, &manager); err != nil {
			return nil, &booking.SourceError{Op: "read bookings", Err: err}
		}

		date, err := booking.ParseDate(dateStr)
		if err != nil {
			continue
		}
		start, err := booking.ParseTimeOfDay(startStr)
		if err != nil {
			continue
		}
		end, err := booking.ParseTimeOfDay(endStr)
		if err != nil {
			continue
		}
		resources := booking.ParseResources(resourcesText)
		if resources.Empty() {
			continue
		}

		records = append(records, booking.Record{
			Date:      date,
			Start:     start,
			End:       end,
			Resources: resources,
			Employee:  employee,
			Manager:   manager,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &booking.SourceError{Op: "read bookings", Err: err}
	}
	return records, nil
}
