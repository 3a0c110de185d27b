package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmerreys/tickets-frontend/internal/query"
	"github.com/dmerreys/tickets-frontend/internal/session"
	"github.com/dmerreys/tickets-frontend/pkg/client"
	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

type view int

const (
	viewTickets view = iota
	viewCatalog
	viewPending
)

// App is the root bubbletea model. It guards the route between the login
// view (only while anonymous) and the authenticated tabs, and owns the
// ticket editor overlay.
type App struct {
	client *client.Client
	store  *session.Store
	keys   KeyMap

	authenticated bool
	user          domain.User

	view    view
	login   loginModel
	tickets ticketsModel
	catalog catalogModel
	pending pendingModel

	detail     detailModel
	detailOpen bool

	width  int
	height int
	frame  int // logo shimmer animation frame
}

// NewApp builds the application model. When sess is valid the app starts
// authenticated on the ticket list; otherwise it starts at the login form.
func NewApp(c *client.Client, store *session.Store, sess domain.Session) App {
	remote := &query.RemoteSource{Client: c}
	local := &query.LocalSource{Client: c}
	a := App{
		client:  c,
		store:   store,
		keys:    DefaultKeyMap,
		login:   newLoginModel(c, store),
		tickets: newTicketsModel(remote, local),
		catalog: newCatalogModel(c),
		pending: newPendingModel(c),
	}
	if sess.Valid() {
		a.authenticated = true
		a.user = sess.User
		a.catalog.user = sess.User
	}
	return a
}

func (a App) Init() tea.Cmd {
	if !a.authenticated {
		return tea.Batch(a.login.Init(), shimmerTickCmd())
	}
	// The catalog loads up front so the editor's service selector has
	// choices even before the tab is visited.
	return tea.Batch(a.tickets.Init(), a.catalog.Init(), shimmerTickCmd())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + help(1) = 4 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.login, _ = a.login.Update(bodyMsg)
		a.tickets, _ = a.tickets.Update(bodyMsg)
		a.catalog, _ = a.catalog.Update(bodyMsg)
		a.pending, _ = a.pending.Update(bodyMsg)
		if a.detailOpen {
			a.detail, _ = a.detail.Update(bodyMsg)
		}
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionStartedMsg:
		a.authenticated = true
		a.user = msg.sess.User
		a.catalog.user = msg.sess.User
		a.client.SetToken(msg.sess.Token)
		a.view = viewTickets
		a.detailOpen = false
		var cmd tea.Cmd
		a.tickets, cmd = a.tickets.reset()
		return a, tea.Batch(cmd, a.catalog.Init())

	case session.TerminatedMsg:
		// The monitor already cleared the persisted session; drop the
		// in-memory half and fall back to the login route.
		a.client.ClearToken()
		a.authenticated = false
		a.user = domain.User{}
		a.detailOpen = false
		a.login = newLoginModel(a.client, a.store)
		a.login.reason = msg.Reason
		return a, a.login.Init()

	case servicesLoadedMsg:
		// The catalog owns the service list whichever view is active.
		var cmd tea.Cmd
		a.catalog, cmd = a.catalog.Update(msg)
		if a.detailOpen {
			a.detail.services = a.catalog.services
		}
		return a, cmd

	case openDetailMsg:
		a.detail = newDetailModel(a.client, msg.ticket, msg.creating)
		a.detail.services = a.catalog.services
		a.detail.width = a.width
		a.detail.height = a.height - 4
		a.detailOpen = true
		if !msg.creating {
			return a, tea.Batch(a.detail.loadRelated(), a.detail.loadCreator())
		}
		return a, nil

	case ticketSavedMsg:
		if msg.err != nil {
			// The editor owns failure handling and stays open.
			var cmd tea.Cmd
			a.detail, cmd = a.detail.Update(msg)
			return a, cmd
		}
		a.detailOpen = false
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.tickets, cmd = a.tickets.Update(msg)
		cmds = append(cmds, cmd)
		a.catalog, cmd = a.catalog.Update(msg)
		cmds = append(cmds, cmd)
		a.pending, cmd = a.pending.Update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.authenticated {
			var cmd tea.Cmd
			a.login, cmd = a.login.Update(msg)
			return a, cmd
		}

		if a.detailOpen {
			var cmd tea.Cmd
			a.detail, cmd = a.detail.Update(msg)
			if a.detail.closed {
				a.detailOpen = false
			}
			return a, cmd
		}

		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.TabTickets):
			if a.view != viewTickets {
				a.view = viewTickets
				var cmd tea.Cmd
				a.tickets, cmd = a.tickets.reset()
				return a, cmd
			}
			return a, nil
		case key.Matches(msg, a.keys.TabCatalog):
			if a.view != viewCatalog {
				a.view = viewCatalog
				return a, a.catalog.Init()
			}
			return a, nil
		case key.Matches(msg, a.keys.TabPending):
			if a.view != viewPending {
				a.view = viewPending
				return a, a.pending.Init()
			}
			return a, nil
		case key.Matches(msg, a.keys.New):
			if a.view == viewTickets {
				draft := domain.NewDraft(a.user)
				return a, func() tea.Msg {
					return openDetailMsg{ticket: draft, creating: true}
				}
			}
		}
	}

	if !a.authenticated {
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}

	// Data messages reach both the overlay and the view behind it; message
	// types are disjoint so each model picks up only its own.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if a.detailOpen {
		a.detail, cmd = a.detail.Update(msg)
		if a.detail.closed {
			a.detailOpen = false
		}
		cmds = append(cmds, cmd)
	}
	switch a.view {
	case viewTickets:
		a.tickets, cmd = a.tickets.Update(msg)
	case viewCatalog:
		a.catalog, cmd = a.catalog.Update(msg)
	case viewPending:
		a.pending, cmd = a.pending.Update(msg)
	}
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a App) View() string {
	// Header: centered shimmer logo plus the logged-in identity
	logo := renderShimmerLogo(a.frame)
	logoWidth := lipgloss.Width(logo)
	logoPad := (a.width - logoWidth) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo

	identity := ""
	if a.authenticated {
		identity = metaStyle.Render(a.user.Name)
		if a.user.Role != "" {
			identity += metaStyle.Render(" · " + a.user.Role)
		}
	}
	if identity != "" {
		idWidth := lipgloss.Width(identity)
		idPad := (a.width - idWidth) / 2
		if idPad < 0 {
			idPad = 0
		}
		header += "\n" + strings.Repeat(" ", idPad) + identity
	} else {
		header += "\n"
	}

	if !a.authenticated {
		body := a.login.View()
		help := " " + helpEntry("tab", "campo") + "  " + helpEntry("enter", "entrar") + "  " + helpEntry("ctrl+c", "salir")
		body = strings.TrimRight(truncateToHeight(body, a.height-3), "\n")
		return fmt.Sprintf("%s\n%s\n%s", header, body, help)
	}

	// Tab bar: 1 Tickets  2 Catálogo  3 Pendientes
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Tickets", viewTickets},
		{"2", "Catálogo", viewCatalog},
		{"3", "Pendientes", viewPending},
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body string
	var help string
	switch a.view {
	case viewTickets:
		body = a.tickets.View()
		help = " " + helpEntry("1-3", "pestañas") + "  " + a.tickets.helpKeys() + "  " + helpEntry("q", "salir")
	case viewCatalog:
		body = a.catalog.View()
		help = " " + helpEntry("1-3", "pestañas") + "  " + a.catalog.helpKeys() + "  " + helpEntry("q", "salir")
	case viewPending:
		body = a.pending.View()
		help = " " + helpEntry("1-3", "pestañas") + "  " + a.pending.helpKeys() + "  " + helpEntry("q", "salir")
	}

	if a.detailOpen {
		body = a.detail.View()
		help = " " + helpEntry("tab", "campo") + "  " + helpEntry("ctrl+s", "guardar") + "  " + helpEntry("ctrl+y", "copiar id") + "  " + helpEntry("esc", "cerrar")
	}

	// Chrome budget: header(2) + tabs(1) + help(1) = 4 lines + body
	body = strings.TrimRight(truncateToHeight(body, a.height-4), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}
