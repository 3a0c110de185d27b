package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmerreys/tickets-frontend/internal/query"
	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

// columnLabels maps sort keys to the table header captions, in query.SortKeys
// order.
var columnLabels = map[string]string{
	query.SortTicketID:       "ID",
	query.SortTitle:          "Título",
	query.SortStatus:         "Estado",
	query.SortSLA:            "SLA",
	query.SortCreatedBy:      "Creado por",
	query.SortUrgency:        "Urgencia",
	query.SortAssignedTo:     "Asignado a",
	query.SortCreatedAt:      "Fecha",
	query.SortLastResolution: "Resolución",
}

// ticketsLoadedMsg carries a page of tickets from the active query backend.
type ticketsLoadedMsg struct {
	res *query.Result
	err error
}

type ticketsModel struct {
	remote query.Source
	local  query.Source
	keys   KeyMap

	filters query.Filters
	sort    query.SortState
	column  int // index into query.SortKeys, the selected header

	page         int
	tickets      []domain.Ticket
	currentPage  int
	totalPages   int
	totalTickets int
	slaBreached  int
	slaCompliant int

	cursor  int
	loading bool
	errMsg  string
	width   int
	height  int
}

func newTicketsModel(remote, local query.Source) ticketsModel {
	col := 0
	for i, k := range query.SortKeys {
		if k == query.SortCreatedAt {
			col = i
		}
	}
	return ticketsModel{
		remote:  remote,
		local:   local,
		keys:    DefaultKeyMap,
		filters: query.DefaultFilters(),
		sort:    query.DefaultSort(),
		column:  col,
		page:    1,
		loading: true,
	}
}

func (m ticketsModel) load() tea.Cmd {
	src := query.Select(m.remote, m.local, m.filters)
	page := m.page
	sortState := m.sort
	filters := m.filters
	return func() tea.Msg {
		res, err := src.Fetch(context.Background(), page, sortState, filters)
		return ticketsLoadedMsg{res: res, err: err}
	}
}

func (m ticketsModel) Init() tea.Cmd {
	return m.load()
}

// reset returns the list to its navigation-entry state: default filters,
// default sort, page 1.
func (m ticketsModel) reset() (ticketsModel, tea.Cmd) {
	m.filters = query.DefaultFilters()
	m.sort = query.DefaultSort()
	m.page = 1
	m.cursor = 0
	m.loading = true
	return m, m.load()
}

func (m ticketsModel) reload() (ticketsModel, tea.Cmd) {
	m.loading = true
	return m, m.load()
}

func (m ticketsModel) Update(msg tea.Msg) (ticketsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ticketsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			// A failed fetch renders as an empty list; no automatic retry.
			m.errMsg = msg.err.Error()
			m.tickets = nil
			m.currentPage = m.page
			m.totalPages = 1
			m.totalTickets = 0
			m.slaBreached = 0
			m.slaCompliant = 0
			return m, nil
		}
		m.errMsg = ""
		m.tickets = msg.res.Tickets
		m.currentPage = msg.res.CurrentPage
		m.totalPages = msg.res.TotalPages
		m.totalTickets = msg.res.TotalTickets
		m.slaBreached = msg.res.SLABreached
		m.slaCompliant = msg.res.SLACompliant
		if m.cursor >= len(m.tickets) {
			m.cursor = 0
		}
		return m, nil

	case ticketSavedMsg:
		if msg.err != nil {
			return m, nil
		}
		if msg.created {
			// Creation policy: always refetch the first page.
			m.page = 1
			m.cursor = 0
			return m.reload()
		}
		return m.applyUpdate(msg.ticket), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// assigneeOptions is the vocabulary the assignee filter cycles through:
// unassigned first, then the technicians visible on the current page.
func (m ticketsModel) assigneeOptions() []string {
	opts := []string{query.AssignedToUnassigned}
	seen := make(map[string]bool)
	for i := range m.tickets {
		ref := m.tickets[i].AssignedTo
		if ref == nil || ref.Name == "" || seen[ref.Name] {
			continue
		}
		seen[ref.Name] = true
		opts = append(opts, ref.Name)
	}
	sort.Strings(opts[1:])
	return opts
}

// applyUpdate replaces a saved ticket in place and re-applies the active
// filter predicate, dropping the row if it no longer matches.
func (m ticketsModel) applyUpdate(t *domain.Ticket) ticketsModel {
	for i := range m.tickets {
		if m.tickets[i].ID != t.ID {
			continue
		}
		if m.filters.Matches(t) {
			m.tickets[i] = *t
		} else {
			m.tickets = append(m.tickets[:i], m.tickets[i+1:]...)
			if m.cursor >= len(m.tickets) {
				m.cursor = 0
			}
		}
		break
	}
	return m
}

func (m ticketsModel) handleKey(msg tea.KeyMsg) (ticketsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tickets)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.NextPage):
		// Mine mode is a single local page; paging keys are inert there.
		if !m.filters.CreatedByMe && m.currentPage < m.totalPages {
			m.page = m.currentPage + 1
			m.cursor = 0
			return m.reload()
		}
	case key.Matches(msg, m.keys.PrevPage):
		if !m.filters.CreatedByMe && m.currentPage > 1 {
			m.page = m.currentPage - 1
			m.cursor = 0
			return m.reload()
		}
	case key.Matches(msg, m.keys.ColumnRight):
		m.column = (m.column + 1) % len(query.SortKeys)
	case key.Matches(msg, m.keys.ColumnLeft):
		m.column = (m.column - 1 + len(query.SortKeys)) % len(query.SortKeys)
	case key.Matches(msg, m.keys.SortToggle):
		m.sort = m.sort.Toggle(query.SortKeys[m.column])
		m.page = 1
		m.cursor = 0
		return m.reload()
	case key.Matches(msg, m.keys.CycleStatus):
		m.filters.Status = cycle(m.filters.Status, domain.Statuses)
		m.page = 1
		m.cursor = 0
		return m.reload()
	case key.Matches(msg, m.keys.CycleUrgency):
		m.filters.Urgency = cycle(m.filters.Urgency, domain.Urgencies)
		m.page = 1
		m.cursor = 0
		return m.reload()
	case key.Matches(msg, m.keys.CycleAssignee):
		m.filters.AssignedTo = cycle(m.filters.AssignedTo, m.assigneeOptions())
		m.page = 1
		m.cursor = 0
		return m.reload()
	case key.Matches(msg, m.keys.ToggleClosed):
		m.filters.ShowClosed = !m.filters.ShowClosed
		m.page = 1
		m.cursor = 0
		return m.reload()
	case key.Matches(msg, m.keys.ToggleMine):
		m.filters.CreatedByMe = !m.filters.CreatedByMe
		m.page = 1
		m.cursor = 0
		return m.reload()
	case key.Matches(msg, m.keys.Refresh):
		return m.reload()
	case key.Matches(msg, m.keys.Open):
		if m.cursor < len(m.tickets) {
			t := m.tickets[m.cursor]
			return m, func() tea.Msg {
				return openDetailMsg{ticket: &t, creating: false}
			}
		}
	}
	return m, nil
}

func (m ticketsModel) View() string {
	var b strings.Builder

	// SLA counter header
	counters := metaStyle.Render("Tickets Totales ") + selectedStyle.Render(fmt.Sprintf("%d", m.totalTickets)) +
		metaStyle.Render("  SLA Incumplidos ") + slaBadStyle.Render(fmt.Sprintf("%d", m.slaBreached)) +
		metaStyle.Render("  SLA Cumplidos ") + slaOkStyle.Render(fmt.Sprintf("%d", m.slaCompliant))
	b.WriteString(" " + counters + "\n")

	// Active filter line
	var active []string
	if m.filters.CreatedByMe {
		active = append(active, accentStyle.Render("mis tickets"))
	}
	if m.filters.Status != "" {
		active = append(active, StatusStyle(m.filters.Status).Render(m.filters.Status))
	}
	if m.filters.Urgency != "" {
		active = append(active, UrgencyStyle(m.filters.Urgency).Render(m.filters.Urgency))
	}
	if m.filters.AssignedTo == query.AssignedToUnassigned {
		active = append(active, dimStyle.Render(domain.Unassigned))
	} else if m.filters.AssignedTo != "" {
		active = append(active, accentStyle.Render(m.filters.AssignedTo))
	}
	if !m.filters.ShowClosed {
		active = append(active, dimStyle.Render("sin cerrados"))
	}
	if len(active) > 0 {
		b.WriteString(" " + strings.Join(active, metaStyle.Render(" · ")) + "\n")
	}

	// Column header row with the sort indicator
	var header strings.Builder
	for i, k := range query.SortKeys {
		label := columnLabels[k]
		if i > 0 {
			header.WriteString("  ")
		}
		switch {
		case m.sort.Key == k && m.sort.Descending:
			header.WriteString(accentStyle.Render(label + "↓"))
		case m.sort.Key == k:
			header.WriteString(accentStyle.Render(label + "↑"))
		case i == m.column:
			header.WriteString(selectedStyle.Render(label))
		default:
			header.WriteString(metaStyle.Render(label))
		}
	}
	b.WriteString(" " + header.String() + "\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("cargando..."))
		return truncateToHeight(b.String(), m.height)
	}
	if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.errMsg) + "\n")
	}
	if len(m.tickets) == 0 {
		b.WriteString(" " + dimStyle.Render("sin tickets"))
		return truncateToHeight(b.String(), m.height)
	}

	for i := range m.tickets {
		b.WriteString(m.renderRow(i))
	}

	// Pagination footer
	if m.filters.CreatedByMe {
		b.WriteString("\n " + metaStyle.Render(fmt.Sprintf("%d tickets propios", len(m.tickets))) + "\n")
	} else {
		b.WriteString("\n " + metaStyle.Render(fmt.Sprintf("página %d de %d", m.currentPage, m.totalPages)) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m ticketsModel) renderRow(i int) string {
	t := &m.tickets[i]

	cursor := "  "
	titleStyle := dimStyle
	if i == m.cursor {
		cursor = accentStyle.Render("▸") + " "
		titleStyle = normalStyle.Bold(true)
	}

	id := metaStyle.Render(fmt.Sprintf("%-10s", truncStr(t.TicketID, 10)))
	status := StatusStyle(t.Status).Render(fmt.Sprintf("%-11s", t.Status))
	urgency := UrgencyStyle(t.Urgency).Render(fmt.Sprintf("%-5s", t.Urgency))
	assignee := dimStyle.Render(fmt.Sprintf("%-14s", truncStr(t.AssigneeName(), 14)))
	when := metaStyle.Render(formatTime(t.CreatedAt))

	titleWidth := m.width - 52
	if titleWidth < 16 {
		titleWidth = 16
	}
	title := titleStyle.Render(fmt.Sprintf("%-*s", titleWidth, truncStr(t.Title, titleWidth)))

	line := cursor + id + " " + slaBadge(t.SLABreached) + " " + title + " " + status + " " + urgency + " " + assignee + " " + when
	if i == m.cursor {
		pad := m.width - lipgloss.Width(line)
		if pad < 0 {
			pad = 0
		}
		return selectedRowBg.Render(line+strings.Repeat(" ", pad)) + "\n"
	}
	return line + "\n"
}

func (m ticketsModel) helpKeys() string {
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "abrir") + "  " +
		helpEntry("N", "nuevo") + "  " + helpEntry("h/l+s", "ordenar") + "  " +
		helpEntry("f/u/a", "filtros") + "  " + helpEntry("c", "cerrados") + "  " +
		helpEntry("m", "míos") + "  " + helpEntry("n/p", "página") + "  " +
		helpEntry("r", "recargar")
}
