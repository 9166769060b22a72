package sheet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
)

// =============================================================================
// INVENTORY GRID
// =============================================================================

func TestParseInventoryFuzzyHeaders(t *testing.T) {
	// GIVEN a grid with Russian headers in a non-standard order
	rows := [][]string{
		{"Кол-во", "Наименование"},
		{"3", "Осциллограф"},
		{"2", "Laptop"},
	}

	// WHEN the grid is parsed
	inv := ParseInventory(rows)

	// THEN columns are discovered by substring and order is preserved
	require.Equal(t, 2, inv.Len())
	assert.Equal(t, 3, inv.QuantityOf("Осциллограф"))
	assert.Equal(t, 2, inv.QuantityOf("Laptop"))
}

func TestParseInventoryToleratesBadRows(t *testing.T) {
	rows := [][]string{
		{"Name", "Count"},
		{"Oscilloscope", "three"}, // unparseable quantity -> 0
		{"", "5"},                 // blank name -> skipped
		{"Laptop"},                // short row -> quantity 0
		{"Probe", "-2"},           // negative -> 0
	}
	inv := ParseInventory(rows)
	require.Equal(t, 3, inv.Len())
	assert.Equal(t, 0, inv.QuantityOf("Oscilloscope"))
	assert.Equal(t, 0, inv.QuantityOf("Laptop"))
	assert.Equal(t, 0, inv.QuantityOf("Probe"))
}

func TestParseInventoryWithoutRecognisableHeaders(t *testing.T) {
	rows := [][]string{
		{"Foo", "Bar"},
		{"Oscilloscope", "3"},
	}
	assert.Equal(t, 0, ParseInventory(rows).Len())
	assert.Equal(t, 0, ParseInventory(nil).Len())
}

// =============================================================================
// BOOKING GRID
// =============================================================================

func TestParseBookingsSkipsMalformedRowsEntirely(t *testing.T) {
	// GIVEN a grid where two rows are unusable
	rows := [][]string{
		{"Дата", "Сотрудник", "Ресурсы", "Время начала", "Время окончания", "Руководитель"},
		{"2026-03-10", "Ivanov", "Oscilloscope:2", "09:00", "12:00", "Petrova"},
		{"10.03.2026", "Ivanov", "Oscilloscope:2", "09:00", "12:00", "Petrova"}, // bad date
		{"2026-03-11", "Ivanov", "Laptop", "nine", "12:00", "Petrova"},          // bad time
		{"2026-03-12", "Sidorov", "Laptop:1", "10:00", "11:00", "Petrova"},
	}

	// WHEN the grid is parsed
	records := ParseBookings(rows)

	// THEN only the fully-resolvable rows survive, in grid order
	require.Len(t, records, 2)
	assert.Equal(t, "2026-03-10", records[0].Date.String())
	assert.Equal(t, "Ivanov", records[0].Employee)
	assert.Equal(t, "Petrova", records[0].Manager)
	assert.Equal(t, 2, records[0].Resources.Get("oscilloscope"))
	assert.Equal(t, "2026-03-12", records[1].Date.String())
}

func TestRecordRowRoundTrips(t *testing.T) {
	// GIVEN a record serialized into the fixed append layout
	set := booking.NewResourceSet()
	set.Set("Oscilloscope", 2)
	set.Set("Laptop", 1)
	rec := booking.Record{
		Date:      mustDate(t, "2026-03-10"),
		Start:     mustTime(t, "09:00"),
		End:       mustTime(t, "12:30"),
		Resources: set,
		Employee:  "Ivanov",
		Manager:   "Petrova",
	}
	row := RecordRow(rec)
	require.Equal(t, []string{
		"2026-03-10", "Ivanov", "Oscilloscope:2; Laptop:1", "09:00", "12:30", "Petrova",
	}, row)

	// WHEN it is read back under the canonical header
	records := ParseBookings([][]string{BookingHeader, row})

	// THEN every field survives
	require.Len(t, records, 1)
	assert.True(t, rec.Date.Equal(records[0].Date))
	assert.Equal(t, rec.Start, records[0].Start)
	assert.Equal(t, rec.End, records[0].End)
	assert.Equal(t, rec.Employee, records[0].Employee)
	assert.Equal(t, rec.Manager, records[0].Manager)
	assert.Equal(t, 2, records[0].Resources.Get("oscilloscope"))
	assert.Equal(t, 1, records[0].Resources.Get("laptop"))
}

// =============================================================================
// FILE STORE
// =============================================================================

func TestFileStoreAppendIsMostRecentFirst(t *testing.T) {
	// GIVEN a fresh CSV-backed store
	dir := t.TempDir()
	invPath := filepath.Join(dir, "inventory.csv")
	require.NoError(t, os.WriteFile(invPath,
		[]byte("Name,Count\nOscilloscope,3\n"), 0o644))
	store, err := NewFileStore(invPath, filepath.Join(dir, "bookings.csv"))
	require.NoError(t, err)
	ctx := context.Background()

	inv, err := store.ReadInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, inv.QuantityOf("Oscilloscope"))

	// WHEN two bookings are appended
	first := booking.NewResourceSet()
	first.Set("Oscilloscope", 1)
	second := booking.NewResourceSet()
	second.Set("Oscilloscope", 2)
	require.NoError(t, store.Append(ctx, booking.Record{
		Date: mustDate(t, "2026-03-10"), Start: mustTime(t, "09:00"),
		End: mustTime(t, "10:00"), Resources: first, Employee: "A", Manager: "M",
	}))
	require.NoError(t, store.Append(ctx, booking.Record{
		Date: mustDate(t, "2026-03-11"), Start: mustTime(t, "09:00"),
		End: mustTime(t, "10:00"), Resources: second, Employee: "B", Manager: "M",
	}))

	// THEN the later booking reads back first
	records, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2026-03-11", records[0].Date.String())
	assert.Equal(t, "2026-03-10", records[1].Date.String())
}

func TestFileStoreWrapsSourceErrors(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "bookings.csv"))
	require.NoError(t, err)

	_, err = store.ReadInventory(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, booking.ErrSourceUnavailable)
}

// =============================================================================
// TEST FIXTURES
// =============================================================================

func mustDate(t *testing.T, s string) booking.Date {
	t.Helper()
	d, err := booking.ParseDate(s)
	require.NoError(t, err)
	return d
}

func mustTime(t *testing.T, s string) booking.TimeOfDay {
	t.Helper()
	tod, err := booking.ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}
