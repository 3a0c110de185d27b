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

// servicesLoadedMsg carries the service catalog.
type servicesLoadedMsg struct {
	services []domain.Service
	err      error
}

type catalogModel struct {
	client   *client.Client
	keys     KeyMap
	user     domain.User
	services []domain.Service
	cursor   int
	loading  bool
	errMsg   string
	// notice is the transient create-success message shown after the editor
	// closes.
	notice string
	width  int
	height int
}

func newCatalogModel(c *client.Client) catalogModel {
	return catalogModel{client: c, keys: DefaultKeyMap, loading: true}
}

func (m catalogModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		services, err := c.ListServices(context.Background())
		return servicesLoadedMsg{services: services, err: err}
	}
}

func (m catalogModel) Init() tea.Cmd {
	return m.load()
}

func (m catalogModel) Update(msg tea.Msg) (catalogModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case servicesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.services = nil
			return m, nil
		}
		m.errMsg = ""
		m.services = msg.services
		if m.cursor >= len(m.services) {
			m.cursor = 0
		}
		return m, nil

	case ticketSavedMsg:
		if msg.err == nil && msg.created && msg.ticket != nil {
			m.notice = "Ticket creado: " + msg.ticket.TicketID
		}
		return m, nil

	case tea.KeyMsg:
		m.notice = ""
		switch {
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.services)-1 {
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
			if m.cursor < len(m.services) {
				draft := domain.NewDraftFromService(m.services[m.cursor], m.user)
				return m, func() tea.Msg {
					return openDetailMsg{ticket: draft, creating: true}
				}
			}
		}
	}
	return m, nil
}

func (m catalogModel) View() string {
	var b strings.Builder

	b.WriteString(" " + labelStyle.Render("CATÁLOGO DE SERVICIOS") + "\n")
	if m.notice != "" {
		b.WriteString(" " + noticeStyle.Render(m.notice) + "\n")
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("cargando...") + "\n")
		return truncateToHeight(b.String(), m.height)
	}
	if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.errMsg) + "\n")
		return truncateToHeight(b.String(), m.height)
	}
	if len(m.services) == 0 {
		b.WriteString(" " + dimStyle.Render("sin servicios") + "\n")
		return truncateToHeight(b.String(), m.height)
	}

	for i, svc := range m.services {
		cursor := "  "
		nameStyle := normalStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}

		line := cursor + nameStyle.Render(svc.Name)
		if svc.Category != "" {
			line += "  " + accentStyle.Render("["+svc.Category+"]")
		}
		if svc.Popularity > 0 {
			line += "  " + metaStyle.Render(fmt.Sprintf("%d solicitudes", svc.Popularity))
		}
		b.WriteString(line + "\n")

		if svc.Description != "" {
			b.WriteString("   " + dimStyle.Render(truncStr(svc.Description, m.descWidth())) + "\n")
		}
		sla := fmt.Sprintf("respuesta %dh · resolución %dh", svc.SLA.ResponseTime, svc.SLA.ResolutionTime)
		b.WriteString("   " + metaStyle.Render(sla) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m catalogModel) descWidth() int {
	w := m.width - 6
	if w < 30 {
		w = 30
	}
	return w
}

func (m catalogModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "solicitar") + "  " + helpEntry("r", "recargar")
}
