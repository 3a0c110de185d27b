package query

import "github.com/dmerreys/tickets-frontend/pkg/domain"

// AssignedToUnassigned is the filter value selecting tickets with no
// technician. The backend expects the literal "null" query value for it.
const AssignedToUnassigned = "unassigned"

// Filters is the client-local filter state for the ticket list. It is
// ephemeral: never persisted, reset on navigation.
type Filters struct {
	// Status keeps only tickets in this status when non-empty.
	Status string

	// Urgency keeps only tickets at this urgency when non-empty.
	Urgency string

	// AssignedTo keeps only tickets assigned to the technician with this
	// display name, or unassigned tickets when set to AssignedToUnassigned.
	AssignedTo string

	// ShowClosed includes cerrado tickets when true.
	ShowClosed bool

	// CreatedByMe switches the list to the caller's own tickets, evaluated
	// by the local backend.
	CreatedByMe bool
}

// DefaultFilters is the state the list starts in and returns to on
// navigation.
func DefaultFilters() Filters {
	return Filters{ShowClosed: true}
}

// Matches is the in-memory predicate equivalent of the remote query
// parameters. The local backend applies it to the flat "mine" list.
func (f Filters) Matches(t *domain.Ticket) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Urgency != "" && t.Urgency != f.Urgency {
		return false
	}
	if f.AssignedTo != "" {
		if f.AssignedTo == AssignedToUnassigned {
			if t.AssignedTo != nil && t.AssignedTo.Name != "" {
				return false
			}
		} else if t.AssigneeName() != f.AssignedTo {
			return false
		}
	}
	if !f.ShowClosed && t.Status == domain.StatusCerrado {
		return false
	}
	return true
}

// Apply filters a slice of tickets through the predicate.
func (f Filters) Apply(tickets []domain.Ticket) []domain.Ticket {
	var result []domain.Ticket
	for i := range tickets {
		if f.Matches(&tickets[i]) {
			result = append(result, tickets[i])
		}
	}
	return result
}
