package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmerreys/tickets-frontend/internal/query"
	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

func newTestTicketsModel() ticketsModel {
	m := newTicketsModel(nil, nil)
	m.width = 100
	m.height = 30
	m.loading = false
	return m
}

func makeTestTicket(id, title, status string) domain.Ticket {
	return domain.Ticket{
		ID:        id,
		TicketID:  "TKT-" + id,
		Title:     title,
		Status:    status,
		Urgency:   domain.UrgencyMedia,
		CreatedAt: time.Now(),
	}
}

func loadedPage(tickets ...domain.Ticket) ticketsLoadedMsg {
	return ticketsLoadedMsg{res: &query.Result{
		Tickets:      tickets,
		CurrentPage:  1,
		TotalPages:   3,
		TotalTickets: len(tickets),
	}}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var errFake = errors.New("conexión rechazada")

func TestTicketsListRendersTitles(t *testing.T) {
	m := newTestTicketsModel()
	m, _ = m.Update(loadedPage(
		makeTestTicket("1", "Impresora sin tóner", domain.StatusAbierto),
		makeTestTicket("2", "VPN caída", domain.StatusEnProgreso),
	))

	view := m.View()
	if !strings.Contains(view, "Impresora sin tóner") {
		t.Errorf("expected first ticket title in view, got:\n%s", view)
	}
	if !strings.Contains(view, "VPN caída") {
		t.Errorf("expected second ticket title in view, got:\n%s", view)
	}
}

func TestTicketsSLACountersRendered(t *testing.T) {
	m := newTestTicketsModel()
	m, _ = m.Update(ticketsLoadedMsg{res: &query.Result{
		Tickets:      []domain.Ticket{makeTestTicket("1", "t", domain.StatusAbierto)},
		CurrentPage:  1,
		TotalPages:   1,
		TotalTickets: 42,
		SLABreached:  7,
		SLACompliant: 35,
	}})

	view := m.View()
	for _, want := range []string{"Tickets Totales", "42", "SLA Incumplidos", "7", "SLA Cumplidos", "35"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in counter header, got:\n%s", want, view)
		}
	}
}

func TestTicketsNavigation(t *testing.T) {
	m := newTestTicketsModel()
	m, _ = m.Update(loadedPage(
		makeTestTicket("1", "uno", domain.StatusAbierto),
		makeTestTicket("2", "dos", domain.StatusAbierto),
	))

	m, _ = m.Update(keyRunes("j"))
	if m.cursor != 1 {
		t.Errorf("expected cursor=1 after j, got %d", m.cursor)
	}
	m, _ = m.Update(keyRunes("j"))
	if m.cursor != 1 {
		t.Errorf("expected cursor clamped at last row, got %d", m.cursor)
	}
	m, _ = m.Update(keyRunes("k"))
	if m.cursor != 0 {
		t.Errorf("expected cursor=0 after k, got %d", m.cursor)
	}
}

func TestTicketsSortToggleFlipsDirection(t *testing.T) {
	m := newTestTicketsModel()
	m, _ = m.Update(loadedPage(makeTestTicket("1", "t", domain.StatusAbierto)))

	// The selected column starts on the active sort column (createdAt,
	// descending); toggling it flips to ascending.
	m, cmd := m.Update(keyRunes("s"))
	if cmd == nil {
		t.Fatal("expected sort toggle to return a reload command")
	}
	if m.sort.Key != query.SortCreatedAt || m.sort.Descending {
		t.Errorf("expected createdAt ascending after toggle, got %+v", m.sort)
	}

	// Moving to another column and toggling resets to ascending on that key.
	m, _ = m.Update(keyRunes("h"))
	m.loading = false
	m, cmd = m.Update(keyRunes("s"))
	if cmd == nil {
		t.Fatal("expected column toggle to return a reload command")
	}
	if m.sort.Key != query.SortAssignedTo || m.sort.Descending {
		t.Errorf("expected assignedTo ascending, got %+v", m.sort)
	}
}

func TestTicketsStatusFilterCycles(t *testing.T) {
	m := newTestTicketsModel()
	m, _ = m.Update(loadedPage(makeTestTicket("1", "t", domain.StatusAbierto)))

	m, cmd := m.Update(keyRunes("f"))
	if m.filters.Status != domain.StatusAbierto {
		t.Errorf("expected status filter abierto, got %q", m.filters.Status)
	}
	if cmd == nil {
		t.Error("expected filter change to return a reload command")
	}
	if m.page != 1 {
		t.Errorf("expected filter change to reset to page 1, got %d", m.page)
	}
}

func TestTicketsAssigneeFilterCyclesTechnicians(t *testing.T) {
	luis := makeTestTicket("1", "a", domain.StatusAbierto)
	luis.AssignedTo = &domain.UserRef{ID: "u2", Name: "Luis"}
	ana := makeTestTicket("2", "b", domain.StatusAbierto)
	ana.AssignedTo = &domain.UserRef{ID: "u3", Name: "Ana"}
	free := makeTestTicket("3", "c", domain.StatusAbierto)

	m := newTestTicketsModel()
	m, _ = m.Update(loadedPage(luis, ana, free))

	// Unassigned first, then the page's technicians by name, then off.
	m, cmd := m.Update(keyRunes("a"))
	if m.filters.AssignedTo != query.AssignedToUnassigned {
		t.Fatalf("expected unassigned filter, got %q", m.filters.AssignedTo)
	}
	if cmd == nil {
		t.Error("expected filter change to return a reload command")
	}
	m, _ = m.Update(keyRunes("a"))
	if m.filters.AssignedTo != "Ana" {
		t.Errorf("expected Ana, got %q", m.filters.AssignedTo)
	}
	m, _ = m.Update(keyRunes("a"))
	if m.filters.AssignedTo != "Luis" {
		t.Errorf("expected Luis, got %q", m.filters.AssignedTo)
	}
	if !strings.Contains(m.View(), "Luis") {
		t.Errorf("expected active filter line to show the technician, got:\n%s", m.View())
	}
	m, _ = m.Update(keyRunes("a"))
	if m.filters.AssignedTo != "" {
		t.Errorf("expected filter cleared after the last option, got %q", m.filters.AssignedTo)
	}
}

func TestTicketsPagingInertInMineMode(t *testing.T) {
	m := newTestTicketsModel()
	m, _ = m.Update(loadedPage(makeTestTicket("1", "t", domain.StatusAbierto)))

	m, _ = m.Update(keyRunes("m"))
	if !m.filters.CreatedByMe {
		t.Fatal("expected m key to switch to mine mode")
	}
	m.loading = false
	m.currentPage = 1
	m.totalPages = 3

	m, cmd := m.Update(keyRunes("n"))
	if cmd != nil {
		t.Error("expected next-page to be inert in mine mode")
	}
	if m.page != 1 {
		t.Errorf("expected page unchanged in mine mode, got %d", m.page)
	}
}

func TestTicketsNextPageAdvances(t *testing.T) {
	m := newTestTicketsModel()
	m, _ = m.Update(loadedPage(makeTestTicket("1", "t", domain.StatusAbierto)))

	m, cmd := m.Update(keyRunes("n"))
	if cmd == nil {
		t.Fatal("expected next-page to return a reload command")
	}
	if m.page != 2 {
		t.Errorf("expected page=2, got %d", m.page)
	}
}

func TestTicketsFetchFailureRendersEmpty(t *testing.T) {
	m := newTestTicketsModel()
	m, _ = m.Update(ticketsLoadedMsg{err: errFake})

	if len(m.tickets) != 0 {
		t.Errorf("expected empty list after failed fetch, got %d tickets", len(m.tickets))
	}
	view := m.View()
	if !strings.Contains(view, "sin tickets") {
		t.Errorf("expected empty-state text, got:\n%s", view)
	}
	if !strings.Contains(view, "error") {
		t.Errorf("expected error line, got:\n%s", view)
	}
}

func TestTicketsCreateRefetchesFirstPage(t *testing.T) {
	m := newTestTicketsModel()
	m, _ = m.Update(loadedPage(makeTestTicket("1", "t", domain.StatusAbierto)))
	m.page = 4

	created := makeTestTicket("9", "nuevo", domain.StatusAbierto)
	m, cmd := m.Update(ticketSavedMsg{ticket: &created, created: true})
	if m.page != 1 {
		t.Errorf("expected create to reset to page 1, got %d", m.page)
	}
	if cmd == nil {
		t.Error("expected create to trigger a refetch")
	}
}

func TestTicketsUpdateReplacesInPlace(t *testing.T) {
	m := newTestTicketsModel()
	m, _ = m.Update(loadedPage(
		makeTestTicket("1", "uno", domain.StatusAbierto),
		makeTestTicket("2", "dos", domain.StatusAbierto),
	))

	edited := makeTestTicket("2", "dos editado", domain.StatusEnProgreso)
	m, _ = m.Update(ticketSavedMsg{ticket: &edited})
	if m.tickets[1].Title != "dos editado" {
		t.Errorf("expected in-place replacement, got %q", m.tickets[1].Title)
	}
}

func TestTicketsUpdateDropsRowWhenFilterNoLongerMatches(t *testing.T) {
	m := newTestTicketsModel()
	m.filters.Status = domain.StatusAbierto
	m, _ = m.Update(loadedPage(
		makeTestTicket("1", "uno", domain.StatusAbierto),
		makeTestTicket("2", "dos", domain.StatusAbierto),
	))

	resolved := makeTestTicket("2", "dos", domain.StatusResuelto)
	m, _ = m.Update(ticketSavedMsg{ticket: &resolved})
	if len(m.tickets) != 1 {
		t.Fatalf("expected filtered-out row to be dropped, got %d rows", len(m.tickets))
	}
	if m.tickets[0].ID != "1" {
		t.Errorf("expected remaining row id=1, got %q", m.tickets[0].ID)
	}
}

func TestTicketsEnterOpensDetail(t *testing.T) {
	m := newTestTicketsModel()
	m, _ = m.Update(loadedPage(makeTestTicket("1", "uno", domain.StatusAbierto)))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected enter to return a command")
	}
	msg, ok := cmd().(openDetailMsg)
	if !ok {
		t.Fatalf("expected openDetailMsg, got %T", cmd())
	}
	if msg.creating {
		t.Error("expected creating=false when opening an existing ticket")
	}
	if msg.ticket.ID != "1" {
		t.Errorf("expected selected ticket, got id %q", msg.ticket.ID)
	}
}
