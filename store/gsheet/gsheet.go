/*
Package gsheet backs the inventory catalog and the booking ledger with
a Google Spreadsheet: one worksheet for inventory, one for bookings.
The grid semantics (fuzzy headers, skip rules, most-recent-first
layout) live in the sheet package; this package only moves grids over
the Sheets API.

APPEND:
  A new booking is written as a fresh row directly below the header.
  The row insert (InsertDimension) and the value write are two API
  calls, but the inserted blank row is invisible to readers of the
  parsed grid (a blank row parses to nothing), so the booking becomes
  visible only once its values land. From the caller's perspective the
  append is a single call that either surfaces the booking or an
  error.
*/
package gsheet

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/store/sheet"
)

// Config locates the spreadsheet and its two worksheets.
type Config struct {
	CredentialsFile string
	SpreadsheetID   string
	InventorySheet  string // worksheet title, e.g. "Inventory"
	BookingsSheet   string // worksheet title, e.g. "Bookings"
}

// Store talks to one spreadsheet. Safe for concurrent use; the Sheets
// service is itself concurrency-safe and all state here is immutable.
type Store struct {
	svc *sheets.Service
	cfg Config

	// bookingsSheetID is resolved once at startup; InsertDimension
	// addresses worksheets by numeric ID, not by title.
	bookingsSheetID int64
}

// New connects to the spreadsheet using a service-account credentials
// file and resolves the bookings worksheet ID.
func New(ctx context.Context, cfg Config) (*Store, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	meta, err := svc.Spreadsheets.Get(cfg.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", cfg.SpreadsheetID, err)
	}
	var sheetID int64 = -1
	for _, ws := range meta.Sheets {
		if ws.Properties.Title == cfg.BookingsSheet {
			sheetID = ws.Properties.SheetId
			break
		}
	}
	if sheetID < 0 {
		return nil, fmt.Errorf("spreadsheet has no worksheet %q", cfg.BookingsSheet)
	}

	return &Store{svc: svc, cfg: cfg, bookingsSheetID: sheetID}, nil
}

// ReadInventory fetches the inventory worksheet and parses it.
func (s *Store) ReadInventory(ctx context.Context) (*booking.Inventory, error) {
	rows, err := s.readGrid(ctx, s.cfg.InventorySheet)
	if err != nil {
		return nil, &booking.SourceError{Op: "read inventory sheet", Err: err}
	}
	return sheet.ParseInventory(rows), nil
}

// ReadAll fetches the bookings worksheet; grid order is
// most-recent-first because Append inserts below the header.
func (s *Store) ReadAll(ctx context.Context) ([]booking.Record, error) {
	rows, err := s.readGrid(ctx, s.cfg.BookingsSheet)
	if err != nil {
		return nil, &booking.SourceError{Op: "read booking sheet", Err: err}
	}
	return sheet.ParseBookings(rows), nil
}

// Append inserts the record as row 2 of the bookings worksheet.
func (s *Store) Append(ctx context.Context, rec booking.Record) error {
	// Push existing bookings down by one row.
	insert := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			InsertDimension: &sheets.InsertDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    s.bookingsSheetID,
					Dimension:  "ROWS",
					StartIndex: 1,
					EndIndex:   2,
				},
				InheritFromBefore: false,
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.cfg.SpreadsheetID, insert).Context(ctx).Do(); err != nil {
		return &booking.SourceError{Op: "append booking", Err: err}
	}

	row := sheet.RecordRow(rec)
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	rng := fmt.Sprintf("%s!A2:F2", s.cfg.BookingsSheet)
	_, err := s.svc.Spreadsheets.Values.
		Update(s.cfg.SpreadsheetID, rng, &sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return &booking.SourceError{Op: "append booking", Err: err}
	}
	return nil
}

func (s *Store) readGrid(ctx context.Context, worksheet string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.cfg.SpreadsheetID, worksheet).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, c := range raw {
			row[j] = fmt.Sprint(c)
		}
		rows[i] = row
	}
	return rows, nil
}
