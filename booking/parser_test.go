package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
)

func TestParseResources_ColonSeparated(t *testing.T) {
	set := booking.ParseResources("Oscilloscope:2; Laptop:1")

	assert.Equal(t, 2, set.Get("Oscilloscope"))
	assert.Equal(t, 1, set.Get("Laptop"))
	assert.Equal(t, 2, set.Len())
}

func TestParseResources_TrailingNumericToken(t *testing.T) {
	// "Oscilloscope 2" carries the quantity as the final token;
	// "Laptop" has none and defaults to 1.
	set := booking.ParseResources("Oscilloscope 2, Laptop")

	assert.Equal(t, 2, set.Get("Oscilloscope"))
	assert.Equal(t, 1, set.Get("Laptop"))
}

func TestParseResources_BareNameDefaultsToOne(t *testing.T) {
	set := booking.ParseResources("Widget")

	assert.Equal(t, 1, set.Get("Widget"))
	assert.Equal(t, 1, set.Len())
}

func TestParseResources_NewlineSeparator(t *testing.T) {
	set := booking.ParseResources("Oscilloscope:2\nLaptop 3\nProbe")

	assert.Equal(t, 2, set.Get("Oscilloscope"))
	assert.Equal(t, 3, set.Get("Laptop"))
	assert.Equal(t, 1, set.Get("Probe"))
}

func TestParseResources_NonNumericQuantityFallsBackToOne(t *testing.T) {
	set := booking.ParseResources("Oscilloscope:lots")

	assert.Equal(t, 1, set.Get("Oscilloscope"))
}

func TestParseResources_DuplicateLastOccurrenceWins(t *testing.T) {
	// Duplicates overwrite rather than sum - only the cart accumulates.
	set := booking.ParseResources("Laptop:2; Laptop:5")

	assert.Equal(t, 5, set.Get("Laptop"))
	assert.Equal(t, 1, set.Len())
}

func TestParseResources_EmptyInput(t *testing.T) {
	assert.True(t, booking.ParseResources("").Empty())
	assert.True(t, booking.ParseResources(" ; , \n ").Empty())
}

func TestParseResources_PreservesOrder(t *testing.T) {
	set := booking.ParseResources("Laptop; Oscilloscope:2; Probe 4")

	entries := set.Entries()
	assert.Equal(t, []booking.Entry{
		{Name: "Laptop", Quantity: 1},
		{Name: "Oscilloscope", Quantity: 2},
		{Name: "Probe", Quantity: 4},
	}, entries)
}

func TestResourceSet_StringRoundTrip(t *testing.T) {
	// The canonical wire form must parse back to the same mapping.
	set := booking.NewResourceSet()
	set.Set("Oscilloscope", 2)
	set.Set("Laptop", 1)

	text := set.String()
	assert.Equal(t, "Oscilloscope:2; Laptop:1", text)

	parsed := booking.ParseResources(text)
	assert.Equal(t, set.Entries(), parsed.Entries())
}

func TestResourceSet_AddAccumulates(t *testing.T) {
	// Cart semantics: commit 2, then 3 more of the same name => 5.
	cart := booking.NewResourceSet()
	cart.Add("Laptop", 2)
	cart.Add("Laptop", 3)

	assert.Equal(t, 5, cart.Get("Laptop"))
}

func TestResourceSet_DecrementRemovesAtOne(t *testing.T) {
	cart := booking.NewResourceSet()
	cart.Add("Laptop", 1)

	removed := cart.Decrement("Laptop")

	assert.True(t, removed)
	assert.True(t, cart.Empty())
}

func TestResourceSet_CaseInsensitiveMatching(t *testing.T) {
	cart := booking.NewResourceSet()
	cart.Add("Laptop", 2)
	cart.Add("  laptop ", 1)

	assert.Equal(t, 3, cart.Get("LAPTOP"))
	assert.Equal(t, 1, cart.Len())
}
