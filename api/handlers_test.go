package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/store/memory"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/workflow"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore([]booking.Resource{
		{Name: "Oscilloscope", Quantity: 3},
		{Name: "Laptop", Quantity: 2},
	})
	wf := workflow.New(workflow.Config{Catalog: store, Ledger: store})
	h := NewHandler(wf, booking.NewEngine(store, store), zap.NewNop())
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

// =============================================================================
// CHAT
// =============================================================================

func TestChatMessageEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	status, reply := postJSON(t, srv.URL+"/api/chat/u1/message", `{"text":"/book"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, reply["text"], "date")

	status, reply = postJSON(t, srv.URL+"/api/chat/u1/message", `{"text":"2026-03-10"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, reply["text"], "start time")
}

func TestChatKeyboardRoundTrip(t *testing.T) {
	// GIVEN a conversation that has reached resource selection
	srv, _ := newTestServer(t)
	base := srv.URL + "/api/chat/u1"
	postJSON(t, base+"/message", `{"text":"/book"}`)
	postJSON(t, base+"/message", `{"text":"2026-03-10"}`)
	postJSON(t, base+"/message", `{"text":"09:00"}`)
	postJSON(t, base+"/message", `{"text":"12:00"}`)
	_, reply := postJSON(t, base+"/message", `{"text":"Ivanov"}`)

	// WHEN the first item button's payload is sent back as an action
	keyboard, ok := reply["keyboard"].([]any)
	require.True(t, ok, "selection reply should carry a keyboard")
	firstRow := keyboard[0].([]any)
	button := firstRow[0].(map[string]any)
	data := button["data"].(string)

	status, reply := postJSON(t, base+"/action", `{"data":"`+data+`"}`)

	// THEN the quantity picker comes back
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, reply["text"], "Quantity: 1")
}

func TestChatRejectsMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)
	status, _ := postJSON(t, srv.URL+"/api/chat/u1/message", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestChatRejectsOversizedAction(t *testing.T) {
	srv, _ := newTestServer(t)
	big := strings.Repeat("x", workflow.MaxActionData+1)
	status, _ := postJSON(t, srv.URL+"/api/chat/u1/action", `{"data":"`+big+`"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

// =============================================================================
// READ MODELS
// =============================================================================

func TestInventoryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	var out []ResourceDTO
	status := getJSON(t, srv.URL+"/api/inventory", &out)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, out, 2)
	assert.Equal(t, ResourceDTO{Name: "Oscilloscope", Quantity: 3}, out[0])
}

func TestBookingsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	set := booking.NewResourceSet()
	set.Set("Laptop", 1)
	date, _ := booking.ParseDate("2026-03-10")
	start, _ := booking.ParseTimeOfDay("09:00")
	end, _ := booking.ParseTimeOfDay("12:00")
	require.NoError(t, store.Append(context.Background(), booking.Record{
		Date: date, Start: start, End: end,
		Resources: set, Employee: "Ivanov", Manager: "Petrova",
	}))

	var out []BookingDTO
	status := getJSON(t, srv.URL+"/api/bookings", &out)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, out, 1)
	assert.Equal(t, BookingDTO{
		Date: "2026-03-10", Start: "09:00", End: "12:00",
		Resources: "Laptop:1", Employee: "Ivanov", Manager: "Petrova",
	}, out[0])
}

func TestAvailabilityEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	set := booking.NewResourceSet()
	set.Set("Laptop", 1)
	date, _ := booking.ParseDate("2026-03-10")
	start, _ := booking.ParseTimeOfDay("09:00")
	end, _ := booking.ParseTimeOfDay("12:00")
	require.NoError(t, store.Append(context.Background(), booking.Record{
		Date: date, Start: start, End: end,
		Resources: set, Employee: "Ivanov", Manager: "Petrova",
	}))

	var out []AvailabilityDTO
	status := getJSON(t, srv.URL+
		"/api/availability?date=2026-03-10&start=10:00&end=11:00", &out)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, out, 2)
	assert.Equal(t, AvailabilityDTO{
		Name: "Laptop", Total: 2, Used: 1, Free: 1, Utilization: "0.5",
	}, out[1])
}

func TestAvailabilityValidatesQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	var out ErrorResponse

	status := getJSON(t, srv.URL+"/api/availability?date=bad&start=09:00&end=10:00", &out)
	assert.Equal(t, http.StatusBadRequest, status)

	status = getJSON(t, srv.URL+"/api/availability?date=2026-03-10&start=10:00&end=10:00", &out)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStoreFailureMapsToBadGateway(t *testing.T) {
	// GIVEN a server whose backing store is down
	inner := memory.NewStore([]booking.Resource{{Name: "Laptop", Quantity: 1}})
	flaky := memory.NewFailing(inner)
	wf := workflow.New(workflow.Config{Catalog: flaky, Ledger: flaky})
	h := NewHandler(wf, booking.NewEngine(flaky, flaky), zap.NewNop())
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()
	flaky.Fail(errors.New("connection refused"))

	var out ErrorResponse
	status := getJSON(t, srv.URL+"/api/inventory", &out)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "backing store unreachable", out.Error)
}
