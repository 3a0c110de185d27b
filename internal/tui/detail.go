package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmerreys/tickets-frontend/pkg/client"
	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

type detailField int

const (
	fieldTitle detailField = iota
	fieldDescription
	fieldService
	fieldEmail
	fieldPhone
	fieldOrganization
	fieldContact
	fieldImpact
	fieldSeverity
	fieldAdditionalInfo
	fieldTeamviewer
	fieldProvider
	fieldSystem
	fieldPriority
	fieldUrgency
	fieldStatus
	fieldCloseCode
	fieldWorklogType
	fieldTimeSpent
	fieldWorkDate
	fieldWorklogContact
	fieldSolution
	fieldCause
	fieldResolution
	fieldRelated
	numDetailFields
)

// openDetailMsg opens the editor overlay. creating distinguishes a draft
// from an existing ticket; the service reference is locked once created.
type openDetailMsg struct {
	ticket   *domain.Ticket
	creating bool
}

// ticketSavedMsg is the save round-trip result. On success the app shell
// closes the overlay and propagates the stored copy to the list views.
type ticketSavedMsg struct {
	ticket  *domain.Ticket
	created bool
	err     error
}

// relatedLoadedMsg carries a related-ticket summary fetch. A failed fetch
// leaves ticket nil; the id stays on the list without a summary.
type relatedLoadedMsg struct {
	id     string
	ticket *domain.Ticket
}

// creatorLoadedMsg resolves the requester's profile when the stored ticket
// carries only a user id.
type creatorLoadedMsg struct {
	ref *domain.UserRef
}

type copyResultMsg struct{ err error }

type detailModel struct {
	client   *client.Client
	ticket   *domain.Ticket
	creating bool
	focus    detailField

	// services backs the service selector while creating and resolves the
	// locked reference's display name afterwards.
	services []domain.Service

	// worklog is the draft entry appended on save when Type is chosen.
	worklog      domain.WorklogEntry
	relatedInput string
	related      map[string]*domain.Ticket

	errMsg    string
	statusMsg string
	saving    bool
	closed    bool
	width     int
	height    int
}

func newDetailModel(c *client.Client, t *domain.Ticket, creating bool) detailModel {
	copied := *t
	m := detailModel{
		client:   c,
		ticket:   &copied,
		creating: creating,
		related:  make(map[string]*domain.Ticket),
	}
	return m
}

// loadRelated fetches summaries for the ids already on the ticket.
func (m detailModel) loadRelated() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.ticket.RelatedTickets {
		cmds = append(cmds, m.fetchRelated(id))
	}
	return tea.Batch(cmds...)
}

// loadCreator fetches the requester profile when the backend returned a bare
// reference. Resolution failures keep the display fallback.
func (m detailModel) loadCreator() tea.Cmd {
	ref := m.ticket.CreatedBy
	if ref == nil || ref.ID == "" || ref.Name != "" {
		return nil
	}
	c := m.client
	id := ref.ID
	return func() tea.Msg {
		u, err := c.GetUser(context.Background(), id)
		if err != nil {
			return creatorLoadedMsg{}
		}
		return creatorLoadedMsg{ref: u}
	}
}

func (m detailModel) fetchRelated(id string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		t, err := c.GetTicket(context.Background(), id)
		if err != nil {
			// Individual related-ticket failures never surface; the id is
			// shown without a summary.
			return relatedLoadedMsg{id: id}
		}
		return relatedLoadedMsg{id: id, ticket: t}
	}
}

// editable reports whether the field applies in the current mode. Worklog
// and status transitions only exist for stored tickets; the service
// reference is only choosable while creating.
func (m detailModel) editable(f detailField) bool {
	if m.creating {
		switch f {
		case fieldStatus, fieldCloseCode, fieldWorklogType, fieldTimeSpent,
			fieldWorkDate, fieldWorklogContact, fieldSolution, fieldCause,
			fieldResolution, fieldRelated:
			return false
		}
	} else if f == fieldService {
		return false
	}
	return true
}

func (m detailModel) nextField(f detailField, delta int) detailField {
	for {
		f = detailField((int(f) + delta + int(numDetailFields)) % int(numDetailFields))
		if m.editable(f) {
			return f
		}
	}
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case relatedLoadedMsg:
		m.related[msg.id] = msg.ticket
		return m, nil

	case creatorLoadedMsg:
		if msg.ref != nil {
			m.ticket.CreatedBy = msg.ref
		}
		return m, nil

	case ticketSavedMsg:
		m.saving = false
		if msg.err != nil {
			// Editor stays open; the backend message is retryable inline.
			m.errMsg = client.UserMessage(msg.err)
			return m, nil
		}
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = "no se pudo copiar"
		} else {
			m.statusMsg = "id copiado"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	m.statusMsg = ""

	switch msg.String() {
	case "esc":
		m.closed = true
		return m, nil
	case "ctrl+s":
		return m.save()
	case "ctrl+y":
		id := m.ticket.TicketID
		if id == "" {
			id = m.ticket.ID
		}
		return m, func() tea.Msg {
			return copyResultMsg{err: clipboard.WriteAll(id)}
		}
	case "tab", "down":
		m.focus = m.nextField(m.focus, 1)
		return m, nil
	case "shift+tab", "up":
		m.focus = m.nextField(m.focus, -1)
		return m, nil
	}

	switch m.focus {
	case fieldService:
		return m.cycleService(msg.String()), nil
	case fieldPriority:
		return m.cycleField(msg.String(), &m.ticket.Priority, []string{
			domain.PriorityBaja, domain.PriorityMedia, domain.PriorityAlta,
		}), nil
	case fieldUrgency:
		return m.cycleField(msg.String(), &m.ticket.Urgency, domain.Urgencies), nil
	case fieldStatus:
		return m.cycleField(msg.String(), &m.ticket.Status, domain.Statuses), nil
	case fieldWorklogType:
		return m.cycleWorklogType(msg.String()), nil
	case fieldRelated:
		return m.handleRelatedKey(msg)
	}

	return m.handleTextKey(msg), nil
}

// cycleField moves a fixed-vocabulary field with h/l.
func (m detailModel) cycleField(key string, target *string, options []string) detailModel {
	if key != "h" && key != "l" {
		return m
	}
	idx := 0
	for i, opt := range options {
		if opt == *target {
			idx = i
			break
		}
	}
	if key == "l" {
		idx = (idx + 1) % len(options)
	} else {
		idx = (idx - 1 + len(options)) % len(options)
	}
	*target = options[idx]
	return m
}

// cycleService moves the draft's service reference through the catalog. An
// unset reference starts at the first service.
func (m detailModel) cycleService(key string) detailModel {
	if (key != "h" && key != "l") || len(m.services) == 0 {
		return m
	}
	idx := -1
	for i := range m.services {
		if m.services[i].ID == m.ticket.Service {
			idx = i
			break
		}
	}
	if key == "l" {
		idx = (idx + 1) % len(m.services)
	} else if idx <= 0 {
		idx = len(m.services) - 1
	} else {
		idx--
	}
	m.ticket.Service = m.services[idx].ID
	return m
}

// serviceName resolves the referenced service's display name, falling back
// to the raw id.
func (m detailModel) serviceName() string {
	for i := range m.services {
		if m.services[i].ID == m.ticket.Service {
			return m.services[i].Name
		}
	}
	return m.ticket.Service
}

// cycleWorklogType cycles through no-entry plus the worklog vocabulary.
func (m detailModel) cycleWorklogType(key string) detailModel {
	if key != "h" && key != "l" {
		return m
	}
	options := append([]string{""}, domain.WorklogTypes...)
	idx := 0
	for i, opt := range options {
		if opt == m.worklog.Type {
			idx = i
			break
		}
	}
	if key == "l" {
		idx = (idx + 1) % len(options)
	} else {
		idx = (idx - 1 + len(options)) % len(options)
	}
	m.worklog.Type = options[idx]
	return m
}

func (m detailModel) handleRelatedKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		id := strings.TrimSpace(m.relatedInput)
		m.relatedInput = ""
		if id == "" || !m.ticket.AddRelated(id) {
			return m, nil
		}
		return m, m.fetchRelated(id)
	case "ctrl+d":
		if n := len(m.ticket.RelatedTickets); n > 0 {
			last := m.ticket.RelatedTickets[n-1]
			m.ticket.RemoveRelated(last)
			delete(m.related, last)
		}
		return m, nil
	default:
		m.relatedInput = editRune(m.relatedInput, msg.String())
		return m, nil
	}
}

func (m detailModel) handleTextKey(msg tea.KeyMsg) detailModel {
	key := msg.String()
	target := m.textTarget()
	if target == nil {
		return m
	}
	if key == "enter" {
		if m.focus == fieldDescription {
			*target += "\n"
		} else {
			m.focus = m.nextField(m.focus, 1)
		}
		return m
	}
	*target = editRune(*target, key)
	return m
}

func (m *detailModel) textTarget() *string {
	switch m.focus {
	case fieldTitle:
		return &m.ticket.Title
	case fieldDescription:
		return &m.ticket.Description
	case fieldEmail:
		return &m.ticket.Email
	case fieldPhone:
		return &m.ticket.Phone
	case fieldOrganization:
		return &m.ticket.Organization
	case fieldContact:
		return &m.ticket.Contact
	case fieldImpact:
		return &m.ticket.Impact
	case fieldSeverity:
		return &m.ticket.Severity
	case fieldAdditionalInfo:
		return &m.ticket.AdditionalInfo
	case fieldTeamviewer:
		return &m.ticket.Teamviewer
	case fieldProvider:
		return &m.ticket.Provider
	case fieldSystem:
		return &m.ticket.System
	case fieldCloseCode:
		return &m.ticket.CloseCode
	case fieldTimeSpent:
		return &m.worklog.TimeSpent
	case fieldWorkDate:
		return &m.worklog.WorkDate
	case fieldWorklogContact:
		return &m.worklog.Contact
	case fieldSolution:
		return &m.worklog.Solution
	case fieldCause:
		return &m.worklog.Cause
	case fieldResolution:
		return &m.worklog.Resolution
	}
	return nil
}

func (m detailModel) save() (detailModel, tea.Cmd) {
	if strings.TrimSpace(m.ticket.Title) == "" {
		m.errMsg = "El título es obligatorio."
		return m, nil
	}

	m.saving = true
	m.errMsg = ""
	c := m.client

	// A chosen worklog type on a stored ticket routes through the worklog
	// endpoint; everything else is a full replace.
	if !m.creating && m.worklog.Type != "" {
		id := m.ticket.ID
		entry := m.worklog
		return m, func() tea.Msg {
			updated, err := c.AddWorklog(context.Background(), id, entry)
			if updated != nil {
				// The backend owns the transition, but apply it here too so
				// a worklog entry always lands with its derived status.
				updated.Status = domain.DeriveStatus(updated.Status, entry.Type)
			}
			return ticketSavedMsg{ticket: updated, err: err}
		}
	}

	ticket := *m.ticket
	creating := m.creating
	return m, func() tea.Msg {
		if creating {
			created, err := c.CreateTicket(context.Background(), &ticket)
			return ticketSavedMsg{ticket: created, created: true, err: err}
		}
		updated, err := c.UpdateTicket(context.Background(), &ticket)
		return ticketSavedMsg{ticket: updated, err: err}
	}
}

func (m detailModel) View() string {
	var b strings.Builder

	heading := "EDITAR TICKET"
	if m.creating {
		heading = "NUEVO TICKET"
	}
	b.WriteString(" " + labelStyle.Render(heading))
	if m.ticket.TicketID != "" {
		b.WriteString("  " + metaStyle.Render(m.ticket.TicketID))
	}
	b.WriteString("\n")
	if !m.creating && m.ticket.Service != "" {
		// Service assignment is fixed after creation.
		b.WriteString(" " + metaStyle.Render("servicio: "+m.serviceName()) + "\n")
	}
	if !m.creating {
		b.WriteString(" " + metaStyle.Render("solicitante: "+m.ticket.CreatorName()) + "\n")
	}

	b.WriteString(m.renderTextField(fieldTitle, "título", m.ticket.Title))
	b.WriteString(m.renderTextField(fieldDescription, "descripción", m.ticket.Description))
	b.WriteString(m.renderCycleField(fieldService, "servicio", m.serviceName(), normalStyle))
	b.WriteString(m.renderTextField(fieldEmail, "correo", m.ticket.Email))
	b.WriteString(m.renderTextField(fieldPhone, "teléfono", m.ticket.Phone))
	b.WriteString(m.renderTextField(fieldOrganization, "organización", m.ticket.Organization))
	b.WriteString(m.renderTextField(fieldContact, "contacto", m.ticket.Contact))
	b.WriteString(m.renderTextField(fieldImpact, "impacto", m.ticket.Impact))
	b.WriteString(m.renderTextField(fieldSeverity, "severidad", m.ticket.Severity))
	b.WriteString(m.renderTextField(fieldAdditionalInfo, "info adicional", m.ticket.AdditionalInfo))
	b.WriteString(m.renderTextField(fieldTeamviewer, "teamviewer", m.ticket.Teamviewer))
	b.WriteString(m.renderTextField(fieldProvider, "proveedor", m.ticket.Provider))
	b.WriteString(m.renderTextField(fieldSystem, "sistema", m.ticket.System))
	b.WriteString(m.renderCycleField(fieldPriority, "prioridad", m.ticket.Priority, normalStyle))
	b.WriteString(m.renderCycleField(fieldUrgency, "urgencia", m.ticket.Urgency, UrgencyStyle(m.ticket.Urgency)))

	if !m.creating {
		b.WriteString(m.renderCycleField(fieldStatus, "estado", m.ticket.Status, StatusStyle(m.ticket.Status)))
		b.WriteString(m.renderTextField(fieldCloseCode, "código de cierre", m.ticket.CloseCode))

		b.WriteString("\n " + labelStyle.Render("REGISTRO DE TRABAJO") + "\n")
		b.WriteString(m.renderCycleField(fieldWorklogType, "tipo", m.worklog.Type, normalStyle))
		if m.worklog.Type != "" {
			derived := domain.DeriveStatus(m.ticket.Status, m.worklog.Type)
			if derived != m.ticket.Status {
				b.WriteString("   " + metaStyle.Render("al guardar: ") + StatusStyle(derived).Render(derived) + "\n")
			}
		}
		b.WriteString(m.renderTextField(fieldTimeSpent, "tiempo", m.worklog.TimeSpent))
		b.WriteString(m.renderTextField(fieldWorkDate, "fecha", m.worklog.WorkDate))
		b.WriteString(m.renderTextField(fieldWorklogContact, "contacto", m.worklog.Contact))
		b.WriteString(m.renderTextField(fieldSolution, "solución", m.worklog.Solution))
		b.WriteString(m.renderTextField(fieldCause, "causa", m.worklog.Cause))
		b.WriteString(m.renderTextField(fieldResolution, "resolución", m.worklog.Resolution))

		b.WriteString("\n " + labelStyle.Render("TICKETS RELACIONADOS") + "\n")
		for _, id := range m.ticket.RelatedTickets {
			if rt := m.related[id]; rt != nil {
				label := rt.TicketID
				if label == "" {
					label = id
				}
				b.WriteString("   " + accentStyle.Render(label) + "  " +
					dimStyle.Render(truncStr(rt.Title, 40)) + "  " +
					StatusStyle(rt.Status).Render(rt.Status) + "\n")
			} else {
				b.WriteString("   " + dimStyle.Render(id) + "\n")
			}
		}
		b.WriteString(m.renderRelatedInput())
	}

	b.WriteString("\n")
	switch {
	case m.saving:
		b.WriteString(" " + dimStyle.Render("guardando...") + "\n")
	case m.errMsg != "":
		b.WriteString(" " + errorStyle.Render(m.errMsg) + "\n")
	case m.statusMsg != "":
		b.WriteString(" " + noticeStyle.Render(m.statusMsg) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m detailModel) renderTextField(f detailField, label, value string) string {
	if !m.editable(f) {
		return ""
	}
	cursor := " "
	style := metaStyle
	display := value
	if f == m.focus {
		cursor = accentStyle.Render(">")
		style = selectedStyle
		display += "█"
	}
	if f == fieldDescription {
		display = strings.ReplaceAll(display, "\n", "\n   "+strings.Repeat(" ", lipgloss.Width(label)+2))
	}
	return fmt.Sprintf(" %s %s: %s\n", cursor, style.Render(label), display)
}

func (m detailModel) renderCycleField(f detailField, label, value string, valueStyle lipgloss.Style) string {
	if !m.editable(f) {
		return ""
	}
	cursor := " "
	style := metaStyle
	hint := ""
	if f == m.focus {
		cursor = accentStyle.Render(">")
		style = selectedStyle
		hint = "  " + dimStyle.Render("(h/l)")
	}
	shown := value
	if shown == "" {
		shown = "-"
	}
	return fmt.Sprintf(" %s %s: %s%s\n", cursor, style.Render(label), valueStyle.Render(shown), hint)
}

func (m detailModel) renderRelatedInput() string {
	cursor := " "
	style := metaStyle
	display := m.relatedInput
	if m.focus == fieldRelated {
		cursor = accentStyle.Render(">")
		style = selectedStyle
		display += "█"
	} else if display == "" {
		display = inputPlaceholderStyle.Render("id de ticket...")
	}
	return fmt.Sprintf(" %s %s: %s\n", cursor, style.Render("añadir"), display)
}
