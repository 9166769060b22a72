package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
)

// FileStore keeps the inventory and the booking ledger in two CSV
// files with the same grid layout the spreadsheet store uses. Intended
// for local runs and development; writes go through a temp file and a
// rename so a crash never leaves a half-written ledger.
type FileStore struct {
	mu            sync.Mutex
	inventoryPath string
	bookingsPath  string
}

// NewFileStore opens a CSV-backed store, creating the booking ledger
// with its header row when it does not exist yet. The inventory file
// is the operator's to maintain and is only read.
func NewFileStore(inventoryPath, bookingsPath string) (*FileStore, error) {
	s := &FileStore{inventoryPath: inventoryPath, bookingsPath: bookingsPath}
	if _, err := os.Stat(bookingsPath); errors.Is(err, fs.ErrNotExist) {
		if err := s.writeGrid(bookingsPath, [][]string{BookingHeader}); err != nil {
			return nil, fmt.Errorf("create booking ledger: %w", err)
		}
	}
	return s, nil
}

// ReadInventory loads the inventory grid.
func (s *FileStore) ReadInventory(_ context.Context) (*booking.Inventory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := readGrid(s.inventoryPath)
	if err != nil {
		return nil, &booking.SourceError{Op: "read inventory file", Err: err}
	}
	return ParseInventory(rows), nil
}

// ReadAll loads the booking grid, most recent first.
func (s *FileStore) ReadAll(_ context.Context) ([]booking.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := readGrid(s.bookingsPath)
	if err != nil {
		return nil, &booking.SourceError{Op: "read booking file", Err: err}
	}
	return ParseBookings(rows), nil
}

// Append inserts the record directly below the header row, keeping
// the most-recent-first grid order. The whole file is rewritten and
// swapped in atomically.
func (s *FileStore) Append(_ context.Context, rec booking.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readGrid(s.bookingsPath)
	if err != nil {
		return &booking.SourceError{Op: "append booking", Err: err}
	}
	if len(rows) == 0 {
		rows = [][]string{BookingHeader}
	}
	updated := make([][]string, 0, len(rows)+1)
	updated = append(updated, rows[0], RecordRow(rec))
	updated = append(updated, rows[1:]...)

	if err := s.writeGrid(s.bookingsPath, updated); err != nil {
		return &booking.SourceError{Op: "append booking", Err: err}
	}
	return nil
}

func readGrid(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are tolerated, like a sheet
	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

func (s *FileStore) writeGrid(path string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
