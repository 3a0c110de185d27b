package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

func newTestPending() pendingModel {
	m := newPendingModel(nil)
	m.width = 80
	m.height = 30
	m.loading = false
	return m
}

func TestPendingRendersAssignments(t *testing.T) {
	m := newTestPending()
	m, _ = m.Update(pendingLoadedMsg{tickets: []domain.Ticket{
		makeTestTicket("1", "Impresora sin tóner", domain.StatusAbierto),
		makeTestTicket("2", "VPN caída", domain.StatusEnProgreso),
	}})

	view := m.View()
	if !strings.Contains(view, "2 asignados") {
		t.Errorf("expected counter in view, got:\n%s", view)
	}
	if !strings.Contains(view, "Impresora sin tóner") || !strings.Contains(view, "VPN caída") {
		t.Errorf("expected both tickets in view, got:\n%s", view)
	}
}

func TestPendingNavigationClamps(t *testing.T) {
	m := newTestPending()
	m, _ = m.Update(pendingLoadedMsg{tickets: []domain.Ticket{
		makeTestTicket("1", "a", domain.StatusAbierto),
		makeTestTicket("2", "b", domain.StatusAbierto),
	}})

	m, _ = m.Update(keyRunes("k"))
	if m.cursor != 0 {
		t.Errorf("expected cursor pinned at 0, got %d", m.cursor)
	}
	m, _ = m.Update(keyRunes("j"))
	m, _ = m.Update(keyRunes("j"))
	if m.cursor != 1 {
		t.Errorf("expected cursor pinned at 1, got %d", m.cursor)
	}
}

func TestPendingUpdateReplacesInPlace(t *testing.T) {
	m := newTestPending()
	m, _ = m.Update(pendingLoadedMsg{tickets: []domain.Ticket{
		makeTestTicket("1", "antes", domain.StatusAbierto),
	}})

	edited := makeTestTicket("1", "después", domain.StatusEnProgreso)
	m, _ = m.Update(ticketSavedMsg{ticket: &edited})

	if m.tickets[0].Title != "después" {
		t.Errorf("expected in-place replacement, got %q", m.tickets[0].Title)
	}
}

func TestPendingUpdateDropsClosedTicket(t *testing.T) {
	m := newTestPending()
	m, _ = m.Update(pendingLoadedMsg{tickets: []domain.Ticket{
		makeTestTicket("1", "a", domain.StatusAbierto),
		makeTestTicket("2", "b", domain.StatusAbierto),
	}})
	m.cursor = 1

	closed := makeTestTicket("2", "b", domain.StatusCerrado)
	m, _ = m.Update(ticketSavedMsg{ticket: &closed})

	if len(m.tickets) != 1 {
		t.Fatalf("expected closed ticket dropped, have %d rows", len(m.tickets))
	}
	if m.cursor != 0 {
		t.Errorf("expected cursor reset after drop, got %d", m.cursor)
	}
}

func TestPendingEnterOpensDetail(t *testing.T) {
	m := newTestPending()
	m, _ = m.Update(pendingLoadedMsg{tickets: []domain.Ticket{
		makeTestTicket("1", "a", domain.StatusAbierto),
	}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected enter to return a command")
	}
	msg, ok := cmd().(openDetailMsg)
	if !ok {
		t.Fatalf("expected openDetailMsg, got %T", cmd())
	}
	if msg.creating || msg.ticket.ID != "1" {
		t.Errorf("unexpected detail target %+v", msg)
	}
}

func TestPendingFetchFailure(t *testing.T) {
	m := newTestPending()
	m, _ = m.Update(pendingLoadedMsg{err: errFake})

	if !strings.Contains(m.View(), "error") {
		t.Errorf("expected error line, got:\n%s", m.View())
	}
}
