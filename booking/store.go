/*
store.go - External inventory and ledger interfaces

PURPOSE:
  The catalog and the booking ledger live outside this process (a
  spreadsheet, a database). The engine only ever needs three
  operations, so the interfaces stay thin. Different backends plug in
  behind them: Google Sheets, local CSV files, SQLite, or memory.

APPEND-ONLY CONTRACT:
  The ledger interface has Append and ReadAll. No update, no delete.
  Append must be a single atomic call from this package's perspective;
  ReadAll returns records most-recent-first (appends are "prepended"
  so the newest booking is the first thing an operator sees).

STALENESS:
  Both reads may be stale relative to concurrent writers. The engine
  re-checks availability at commit time, which narrows but does not
  close the window; see availability.go.

IMPLEMENTATIONS:
  - store/memory:  in-process, for tests and dev mode
  - store/sheet:   local CSV files with spreadsheet-grid semantics
  - store/gsheet:  Google Sheets worksheets
  - store/sqlite:  local SQLite database
*/
package booking

import "context"

// InventoryCatalog is the read-only source of equipment and on-hand
// quantities.
type InventoryCatalog interface {
	// ReadInventory returns the current catalog in its source order.
	ReadInventory(ctx context.Context) (*Inventory, error)
}

// Ledger is the append-only source of committed bookings.
type Ledger interface {
	// ReadAll returns every committed booking, most recent first.
	// Malformed source rows are skipped, never fatal.
	ReadAll(ctx context.Context) ([]Record, error)

	// Append commits a booking as the most recently visible record.
	// Must be a single atomic external call.
	Append(ctx context.Context, rec Record) error
}
