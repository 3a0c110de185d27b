package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Ticket statuses as the backend stores them.
const (
	StatusAbierto    = "abierto"
	StatusEnProgreso = "en progreso"
	StatusResuelto   = "resuelto"
	StatusCerrado    = "cerrado"
)

// Urgency levels.
const (
	UrgencyBaja  = "Baja"
	UrgencyMedia = "Media"
	UrgencyAlta  = "Alta"
)

// Priorities. Lowercase, unlike urgency; the backend is inconsistent here.
const (
	PriorityBaja  = "baja"
	PriorityMedia = "media"
	PriorityAlta  = "alta"
)

// Statuses lists every ticket status in display order.
var Statuses = []string{StatusAbierto, StatusEnProgreso, StatusResuelto, StatusCerrado}

// Urgencies lists every urgency level in display order.
var Urgencies = []string{UrgencyBaja, UrgencyMedia, UrgencyAlta}

// WorklogTypes are the entry types a technician can record.
var WorklogTypes = []string{
	"Resuelto",
	"Trabajo",
	"Primer Contacto",
	"Nota del Cliente",
	"Actualizar",
	"Cerrado",
}

// Ticket is a help-desk ticket as returned by the backend.
type Ticket struct {
	ID             string         `json:"_id"`
	TicketID       string         `json:"ticketId,omitempty"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	Status         string         `json:"status"`
	Priority       string         `json:"priority,omitempty"`
	Urgency        string         `json:"urgency,omitempty"`
	CreatedBy      *UserRef       `json:"createdBy,omitempty"`
	AssignedTo     *UserRef       `json:"assignedTo,omitempty"`
	Service        string         `json:"service,omitempty"`
	SLABreached    bool           `json:"slaBreached"`
	Worklog        []WorklogEntry `json:"worklog,omitempty"`
	RelatedTickets []string       `json:"relatedTickets,omitempty"`

	// Requester detail fields from the ticket form.
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Organization   string `json:"organization,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Severity       string `json:"severity,omitempty"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
	Contact        string `json:"contact,omitempty"`
	Teamviewer     string `json:"teamviewer,omitempty"`
	Provider       string `json:"provider,omitempty"`
	System         string `json:"system,omitempty"`
	CloseCode      string `json:"closeCode,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// WorklogEntry is one append-only record of work performed on a ticket.
type WorklogEntry struct {
	Type       string `json:"type"`
	TimeSpent  string `json:"timeSpent,omitempty"`
	WorkDate   string `json:"workDate,omitempty"`
	Contact    string `json:"contact,omitempty"`
	Solution   string `json:"solution,omitempty"`
	Cause      string `json:"cause,omitempty"`
	Resolution string `json:"resolution,omitempty"`
}

// UserRef is a user reference on a ticket. The backend returns either a bare
// id string or a populated object depending on the endpoint, so it carries a
// custom unmarshaler.
type UserRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UnmarshalJSON accepts both `"662f..."` and `{"_id": ..., "name": ...}`.
func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		r.ID = id
		return nil
	}
	type plain UserRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = UserRef(p)
	return nil
}

// DeriveStatus returns the status a ticket should have after appending a
// worklog entry of the given type. A "Resuelto" entry resolves the ticket
// unless it is already closed; a "Cerrado" entry closes it. Every other entry
// type leaves the status untouched. This is the single authority for
// worklog-driven transitions.
func DeriveStatus(current, entryType string) string {
	switch entryType {
	case "Resuelto":
		if current == StatusCerrado {
			return current
		}
		return StatusResuelto
	case "Cerrado":
		return StatusCerrado
	}
	return current
}

// Display fallbacks for missing references.
const (
	UnknownRequester = "Desconocido"
	Unassigned       = "Sin asignar"
	NoResolution     = "N/A"
)

// CreatorName returns the requester's display name, or "Desconocido" when the
// reference is missing or unpopulated.
func (t *Ticket) CreatorName() string {
	if t.CreatedBy == nil || t.CreatedBy.Name == "" {
		return UnknownRequester
	}
	return t.CreatedBy.Name
}

// AssigneeName returns the technician's display name, or "Sin asignar".
func (t *Ticket) AssigneeName() string {
	if t.AssignedTo == nil || t.AssignedTo.Name == "" {
		return Unassigned
	}
	return t.AssignedTo.Name
}

// LastResolution returns the solution text of the most recent worklog entry,
// or "N/A" when there is no worklog or the latest entry has no solution.
func (t *Ticket) LastResolution() string {
	if len(t.Worklog) == 0 {
		return NoResolution
	}
	last := t.Worklog[len(t.Worklog)-1]
	if last.Solution == "" {
		return NoResolution
	}
	return last.Solution
}

// AddRelated appends a related-ticket id, deduplicated. Returns true if the
// set changed.
func (t *Ticket) AddRelated(id string) bool {
	if id == "" {
		return false
	}
	for _, existing := range t.RelatedTickets {
		if existing == id {
			return false
		}
	}
	t.RelatedTickets = append(t.RelatedTickets, id)
	return true
}

// RemoveRelated drops a related-ticket id. Returns true if the set changed.
func (t *Ticket) RemoveRelated(id string) bool {
	for i, existing := range t.RelatedTickets {
		if existing == id {
			t.RelatedTickets = append(t.RelatedTickets[:i], t.RelatedTickets[i+1:]...)
			return true
		}
	}
	return false
}

// NewDraft returns a blank ticket draft seeded with the defaults the form
// applies on creation.
func NewDraft(u User) *Ticket {
	return &Ticket{
		Status:   StatusAbierto,
		Priority: PriorityMedia,
		Urgency:  UrgencyMedia,
		Email:    u.Email,
		CreatedBy: &UserRef{
			ID:   u.ID,
			Name: u.Name,
		},
	}
}

// NewDraftFromService returns a draft pre-filled from a catalog service.
func NewDraftFromService(svc Service, u User) *Ticket {
	t := NewDraft(u)
	t.Service = svc.ID
	t.Title = "Solicitud de " + svc.Name
	return t
}
