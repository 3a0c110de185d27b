package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmerreys/tickets-frontend/pkg/client"
	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

// pendingLoadedMsg carries the technician's open assignments.
type pendingLoadedMsg struct {
	tickets []domain.Ticket
	err     error
}

// pendingModel shows the tickets assigned to the logged-in technician,
// excluding closed ones.
type pendingModel struct {
	client  *client.Client
	keys    KeyMap
	tickets []domain.Ticket
	cursor  int
	loading bool
	errMsg  string
	width   int
	height  int
}

func newPendingModel(c *client.Client) pendingModel {
	return pendingModel{client: c, keys: DefaultKeyMap, loading: true}
}

func (m pendingModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		tickets, err := c.MyAssigned(context.Background())
		if err != nil {
			return pendingLoadedMsg{err: err}
		}
		open := tickets[:0]
		for _, t := range tickets {
			if t.Status != domain.StatusCerrado {
				open = append(open, t)
			}
		}
		return pendingLoadedMsg{tickets: open}
	}
}

func (m pendingModel) Init() tea.Cmd {
	return m.load()
}

func (m pendingModel) Update(msg tea.Msg) (pendingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case pendingLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.tickets = nil
			return m, nil
		}
		m.errMsg = ""
		m.tickets = msg.tickets
		if m.cursor >= len(m.tickets) {
			m.cursor = 0
		}
		return m, nil

	case ticketSavedMsg:
		if msg.err != nil || msg.ticket == nil {
			return m, nil
		}
		return m.applyUpdate(msg.ticket), nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.tickets)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.load()
		case key.Matches(msg, m.keys.Open):
			if m.cursor < len(m.tickets) {
				t := m.tickets[m.cursor]
				return m, func() tea.Msg {
					return openDetailMsg{ticket: &t, creating: false}
				}
			}
		}
	}
	return m, nil
}

// applyUpdate replaces a saved ticket in place, dropping it when it was
// closed by the edit.
func (m pendingModel) applyUpdate(t *domain.Ticket) pendingModel {
	for i := range m.tickets {
		if m.tickets[i].ID != t.ID {
			continue
		}
		if t.Status == domain.StatusCerrado {
			m.tickets = append(m.tickets[:i], m.tickets[i+1:]...)
			if m.cursor >= len(m.tickets) {
				m.cursor = 0
			}
		} else {
			m.tickets[i] = *t
		}
		break
	}
	return m
}

func (m pendingModel) View() string {
	var b strings.Builder

	b.WriteString(" " + labelStyle.Render("PENDIENTES") + "  " +
		metaStyle.Render(fmt.Sprintf("%d asignados", len(m.tickets))) + "\n\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("cargando...") + "\n")
		return truncateToHeight(b.String(), m.height)
	}
	if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.errMsg) + "\n")
		return truncateToHeight(b.String(), m.height)
	}
	if len(m.tickets) == 0 {
		b.WriteString(" " + dimStyle.Render("nada pendiente") + "\n")
		return truncateToHeight(b.String(), m.height)
	}

	for i := range m.tickets {
		t := &m.tickets[i]

		cursor := "  "
		titleStyle := normalStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			titleStyle = selectedStyle
		}

		line := cursor + metaStyle.Render(t.TicketID) + " " + slaBadge(t.SLABreached) + " " +
			titleStyle.Render(truncStr(t.Title, m.titleWidth()))
		b.WriteString(line + "\n")
		b.WriteString("   " + StatusStyle(t.Status).Render(t.Status) + "  " +
			UrgencyStyle(t.Urgency).Render(t.Urgency) + "  " +
			dimStyle.Render(t.CreatorName()) + "  " +
			metaStyle.Render(formatTime(t.CreatedAt)) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m pendingModel) titleWidth() int {
	w := m.width - 18
	if w < 20 {
		w = 20
	}
	return w
}

func (m pendingModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "abrir") + "  " + helpEntry("r", "recargar")
}
