package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInventoryRoundTrip(t *testing.T) {
	// GIVEN a seeded inventory
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SetInventory(ctx, []booking.Resource{
		{Name: "Oscilloscope", Quantity: 3},
		{Name: "Laptop", Quantity: 2},
	}))

	// WHEN it is read back
	inv, err := store.ReadInventory(ctx)
	require.NoError(t, err)

	// THEN quantities and listing order survive
	require.Equal(t, 2, inv.Len())
	assert.Equal(t, "Oscilloscope", inv.Resources()[0].Name)
	assert.Equal(t, 3, inv.QuantityOf("Oscilloscope"))
	assert.Equal(t, 2, inv.QuantityOf("laptop"))
}

func TestAppendReadsBackMostRecentFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := booking.NewResourceSet()
	first.Set("Oscilloscope", 2)
	second := booking.NewResourceSet()
	second.Set("Laptop", 1)

	require.NoError(t, store.Append(ctx, booking.Record{
		Date: mustDate(t, "2026-03-10"), Start: mustTime(t, "09:00"),
		End: mustTime(t, "12:00"), Resources: first,
		Employee: "Ivanov", Manager: "Petrova",
	}))
	require.NoError(t, store.Append(ctx, booking.Record{
		Date: mustDate(t, "2026-03-11"), Start: mustTime(t, "10:00"),
		End: mustTime(t, "11:00"), Resources: second,
		Employee: "Sidorov", Manager: "Petrova",
	}))

	records, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2026-03-11", records[0].Date.String())
	assert.Equal(t, "Sidorov", records[0].Employee)
	assert.Equal(t, "2026-03-10", records[1].Date.String())
	assert.Equal(t, 2, records[1].Resources.Get("oscilloscope"))
	assert.Equal(t, "09:00", records[1].Start.String())
}

func TestReadAllSkipsRowsThatNoLongerParse(t *testing.T) {
	// GIVEN a ledger where one row was mangled by hand
	store := newTestStore(t)
	ctx := context.Background()
	set := booking.NewResourceSet()
	set.Set("Laptop", 1)
	require.NoError(t, store.Append(ctx, booking.Record{
		Date: mustDate(t, "2026-03-10"), Start: mustTime(t, "09:00"),
		End: mustTime(t, "12:00"), Resources: set,
		Employee: "Ivanov", Manager: "Petrova",
	}))
	_, err := store.db.Exec(`
		INSERT INTO bookings (date, employee, resources, start_time, end_time, manager, created_at)
		VALUES ('not-a-date', 'X', 'Laptop:1', '09:00', '10:00', 'Y', '2026-03-10T00:00:00Z')`)
	require.NoError(t, err)

	// WHEN the ledger is read
	records, err := store.ReadAll(ctx)

	// THEN the mangled row is dropped, not partially used
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ivanov", records[0].Employee)
}

func TestSetInventoryReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SetInventory(ctx, []booking.Resource{{Name: "Probe", Quantity: 5}}))
	require.NoError(t, store.SetInventory(ctx, []booking.Resource{{Name: "Laptop", Quantity: 1}}))

	inv, err := store.ReadInventory(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, inv.Len())
	assert.Equal(t, 0, inv.QuantityOf("Probe"))
	assert.Equal(t, 1, inv.QuantityOf("Laptop"))
}

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
