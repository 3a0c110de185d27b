package query

import (
	"sort"
	"strings"

	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

// Sortable column keys, in table display order.
const (
	SortTicketID       = "ticketId"
	SortTitle          = "title"
	SortStatus         = "status"
	SortSLA            = "slaBreached"
	SortCreatedBy      = "createdBy"
	SortUrgency        = "urgency"
	SortAssignedTo     = "assignedTo"
	SortCreatedAt      = "createdAt"
	SortLastResolution = "lastResolution"
)

// SortKeys lists the sortable columns in display order.
var SortKeys = []string{
	SortTicketID, SortTitle, SortStatus, SortSLA, SortCreatedBy,
	SortUrgency, SortAssignedTo, SortCreatedAt, SortLastResolution,
}

// SortState is the active sort column and direction.
type SortState struct {
	Key        string
	Descending bool
}

// DefaultSort is newest-first, matching the list's initial render.
func DefaultSort() SortState {
	return SortState{Key: SortCreatedAt, Descending: true}
}

// Toggle applies the column-header click semantics: selecting the active
// column reverses direction; selecting a different column resets to
// ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		return SortState{Key: key, Descending: !s.Descending}
	}
	return SortState{Key: key}
}

// Param renders the state as the backend's sort query value, `-` prefixed
// for descending.
func (s SortState) Param() string {
	if s.Descending {
		return "-" + s.Key
	}
	return s.Key
}

// urgencyRank orders urgency levels Baja < Media < Alta instead of
// lexicographically.
func urgencyRank(u string) int {
	switch u {
	case domain.UrgencyBaja:
		return 0
	case domain.UrgencyMedia:
		return 1
	case domain.UrgencyAlta:
		return 2
	}
	return -1
}

// less compares two tickets under the sort key, ascending. Non-scalar fields
// sort by their display projections: creator/assignee by name with the fixed
// fallback strings, last-resolution by the latest worklog solution or "N/A".
func (s SortState) less(a, b *domain.Ticket) bool {
	switch s.Key {
	case SortTicketID:
		return a.TicketID < b.TicketID
	case SortTitle:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case SortStatus:
		return a.Status < b.Status
	case SortSLA:
		return !a.SLABreached && b.SLABreached
	case SortCreatedBy:
		return a.CreatorName() < b.CreatorName()
	case SortUrgency:
		return urgencyRank(a.Urgency) < urgencyRank(b.Urgency)
	case SortAssignedTo:
		return a.AssigneeName() < b.AssigneeName()
	case SortLastResolution:
		return a.LastResolution() < b.LastResolution()
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

// Sort orders tickets in place under the state. The sort is stable so equal
// keys keep their fetch order.
func (s SortState) Sort(tickets []domain.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		if s.Descending {
			return s.less(&tickets[j], &tickets[i])
		}
		return s.less(&tickets[i], &tickets[j])
	})
}
