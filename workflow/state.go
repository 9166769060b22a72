/*
state.go - Workflow states as a tagged union

PURPOSE:
  The booking conversation is a linear state machine: date, start
  time, end time, employee, resource selection, manager, confirmation.
  Each state is its own type carrying ONLY the fields collected so
  far, so code handling one step cannot touch a field that has not
  been collected yet. A field-bag struct with "maybe set" members is
  exactly the bug class this avoids.

STATES:
  stepDate      -> stepStart -> stepEnd -> stepEmployee ->
  stepResources -> stepManager -> stepConfirm -> committed | cancelled

  The terminal outcomes have no step type: the conversation is simply
  removed from the registry.
*/
package workflow

import (
	"github.com/Yaroslav-Muravev/Tg-bot-scheduler/booking"
)

// step is one state of the booking conversation. Exactly one variant
// is live per conversation at any time.
type step interface {
	workflowStep()
}

// stepDate: waiting for the booking date.
type stepDate struct{}

// stepStart: waiting for the start time.
type stepStart struct {
	date booking.Date
}

// stepEnd: waiting for the end time (must be strictly after start).
type stepEnd struct {
	date  booking.Date
	start booking.TimeOfDay
}

// stepEmployee: waiting for the employee name.
type stepEmployee struct {
	date  booking.Date
	start booking.TimeOfDay
	end   booking.TimeOfDay
}

// stepResources: the selection session is live; waiting for the cart
// to be finished or for a manual resource listing.
type stepResources struct {
	date     booking.Date
	start    booking.TimeOfDay
	end      booking.TimeOfDay
	employee string
}

// stepManager: resources are frozen; waiting for the manager name.
type stepManager struct {
	date      booking.Date
	start     booking.TimeOfDay
	end       booking.TimeOfDay
	employee  string
	resources *booking.ResourceSet
}

// stepConfirm: the candidate request passed the pre-confirmation
// availability check; waiting for an explicit confirm or cancel.
type stepConfirm struct {
	request booking.Request
}

func (stepDate) workflowStep()      {}
func (stepStart) workflowStep()     {}
func (stepEnd) workflowStep()       {}
func (stepEmployee) workflowStep()  {}
func (stepResources) workflowStep() {}
func (stepManager) workflowStep()   {}
func (stepConfirm) workflowStep()   {}
