/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/workflow"
)

// =============================================================================
// CHAT TYPES
// =============================================================================

// MessageRequest is an inbound free-text message.
type MessageRequest struct {
	Text string `json:"text"`
}

// ActionRequest is an inbound button payload.
type ActionRequest struct {
	Data string `json:"data"`
}

// ReplyDTO is one outbound chat reply.
type ReplyDTO struct {
	Text     string        `json:"text"`
	Keyboard [][]ButtonDTO `json:"keyboard,omitempty"`
}

// ButtonDTO is one selectable action.
type ButtonDTO struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

func toReplyDTO(r workflow.Reply) ReplyDTO {
	dto := ReplyDTO{Text: r.Text}
	if r.Keyboard == nil {
		return dto
	}
	for _, row := range r.Keyboard.Rows {
		out := make([]ButtonDTO, len(row))
		for i, b := range row {
			out[i] = ButtonDTO{Label: b.Label, Data: b.Data}
		}
		dto.Keyboard = append(dto.Keyboard, out)
	}
	return dto
}

// =============================================================================
// INVENTORY AND BOOKING TYPES
// =============================================================================

// ResourceDTO is one inventory line.
type ResourceDTO struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// BookingDTO is one ledger record.
type BookingDTO struct {
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Resources string `json:"resources"`
	Employee  string `json:"employee"`
	Manager   string `json:"manager"`
}

func toBookingDTO(rec booking.Record) BookingDTO {
	return BookingDTO{
		Date:      rec.Date.String(),
		Start:     rec.Start.String(),
		End:       rec.End.String(),
		Resources: rec.Resources.String(),
		Employee:  rec.Employee,
		Manager:   rec.Manager,
	}
}

// AvailabilityDTO is one resource's load over a window.
type AvailabilityDTO struct {
	Name        string `json:"name"`
	Total       int    `json:"total"`
	Used        int    `json:"used"`
	Free        int    `json:"free"`
	Utilization string `json:"utilization"`
}

func toAvailabilityDTO(a booking.ResourceAvailability) AvailabilityDTO {
	return AvailabilityDTO{
		Name:        a.Name,
		Total:       a.Total,
		Used:        a.Used,
		Free:        a.Free,
		Utilization: a.Utilization.String(),
	}
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
