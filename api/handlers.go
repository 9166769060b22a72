/*
handlers.go - HTTP API handlers for the booking service

PURPOSE:
  Exposes the booking conversation and the read models over REST.
  Handles HTTP request/response and JSON; all booking logic lives in
  the workflow and booking packages.

ENDPOINTS:
  Chat (the conversation transport):
    POST /api/chat/{userID}/message  Free-text message -> reply
    POST /api/chat/{userID}/action   Button payload -> reply

  Read models:
    GET  /api/inventory              Inventory listing
    GET  /api/bookings               Ledger, most recent first
    GET  /api/availability           Per-resource load for a window
                                     (?date=YYYY-MM-DD&start=HH:MM&end=HH:MM)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body or query parameters
  - 502: Backing store unreachable
  - 500: Everything else
  Chat endpoints never surface store failures as HTTP errors - the
  workflow folds them into the conversation ("try again") instead.

SECURITY NOTE:
  No authentication. The service is meant to sit behind a messaging
  platform webhook or an internal frontend.

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/workflow"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Workflow *workflow.Workflow
	Engine   *booking.Engine
	Log      *zap.Logger
}

func NewHandler(wf *workflow.Workflow, engine *booking.Engine, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Workflow: wf, Engine: engine, Log: log}
}

// =============================================================================
// CHAT ENDPOINTS
// =============================================================================

// PostMessage handles POST /api/chat/{userID}/message.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	reply := h.Workflow.HandleMessage(r.Context(), userID, req.Text)
	writeJSON(w, http.StatusOK, toReplyDTO(reply))
}

// PostAction handles POST /api/chat/{userID}/action.
func (h *Handler) PostAction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.Data) > workflow.MaxActionData {
		writeError(w, http.StatusBadRequest, "action payload too large", nil)
		return
	}
	reply := h.Workflow.HandleAction(r.Context(), userID, req.Data)
	writeJSON(w, http.StatusOK, toReplyDTO(reply))
}

// =============================================================================
// READ MODEL ENDPOINTS
// =============================================================================

// GetInventory handles GET /api/inventory.
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Engine.Catalog.ReadInventory(r.Context())
	if err != nil {
		h.writeStoreError(w, "read inventory", err)
		return
	}
	out := make([]ResourceDTO, 0, inv.Len())
	for _, res := range inv.Resources() {
		out = append(out, ResourceDTO{Name: res.Name, Quantity: res.Quantity})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetBookings handles GET /api/bookings.
func (h *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	records, err := h.Engine.Ledger.ReadAll(r.Context())
	if err != nil {
		h.writeStoreError(w, "read bookings", err)
		return
	}
	out := make([]BookingDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, toBookingDTO(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAvailability handles GET /api/availability.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := booking.ParseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date (want YYYY-MM-DD)", err)
		return
	}
	start, err := booking.ParseTimeOfDay(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start (want HH:MM)", err)
		return
	}
	end, err := booking.ParseTimeOfDay(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end (want HH:MM)", err)
		return
	}
	if !start.Before(end) {
		writeError(w, http.StatusBadRequest, "end must be after start", nil)
		return
	}

	report, err := h.Engine.Report(r.Context(), date, start, end)
	if err != nil {
		h.writeStoreError(w, "availability report", err)
		return
	}
	out := make([]AvailabilityDTO, 0, len(report))
	for _, a := range report {
		out = append(out, toAvailabilityDTO(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) writeStoreError(w http.ResponseWriter, op string, err error) {
	h.Log.Warn("store operation failed", zap.String("op", op), zap.Error(err))
	if errors.Is(err, booking.ErrSourceUnavailable) {
		writeError(w, http.StatusBadGateway, "backing store unreachable", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error", err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
