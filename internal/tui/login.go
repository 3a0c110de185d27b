package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmerreys/tickets-frontend/internal/session"
	"github.com/dmerreys/tickets-frontend/pkg/client"
	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

type loginField int

const (
	loginFieldEmail loginField = iota
	loginFieldPassword
)

// sessionStartedMsg tells the app shell a login round-trip succeeded and the
// session is persisted.
type sessionStartedMsg struct {
	sess domain.Session
}

// loginResultMsg carries the raw login response back onto the event loop.
type loginResultMsg struct {
	resp *client.LoginResponse
	err  error
}

type loginModel struct {
	client   *client.Client
	store    *session.Store
	email    textinput.Model
	password textinput.Model
	focus    loginField
	errMsg   string
	// reason is the forced-logout explanation shown above the form after the
	// interceptor terminates a session.
	reason     string
	submitting bool
	width      int
	height     int
}

func newLoginModel(c *client.Client, store *session.Store) loginModel {
	email := textinput.New()
	email.Placeholder = "correo@ejemplo.com"
	email.CharLimit = 254
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "contraseña"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 40

	return loginModel{
		client:   c,
		store:    store,
		email:    email,
		password: password,
	}
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	if email == "" || password == "" {
		m.errMsg = "Introduce correo y contraseña."
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	c := m.client
	return m, func() tea.Msg {
		resp, err := c.Login(context.Background(), email, password)
		return loginResultMsg{resp: resp, err: err}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = client.UserMessage(msg.err)
			return m, nil
		}
		u, err := domain.NormalizeUser(msg.resp.User)
		if err != nil {
			m.errMsg = "Respuesta de usuario inválida."
			return m, nil
		}
		sess := domain.Session{Token: msg.resp.Token, User: u}
		if err := m.store.Save(sess); err != nil {
			m.errMsg = "No se pudo guardar la sesión."
			return m, nil
		}
		m.reason = ""
		m.password.SetValue("")
		return m, func() tea.Msg { return sessionStartedMsg{sess: sess} }

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			if m.focus == loginFieldEmail {
				m.focus = loginFieldPassword
				m.email.Blur()
				return m, m.password.Focus()
			}
			m.focus = loginFieldEmail
			m.password.Blur()
			return m, m.email.Focus()
		case "enter":
			if m.focus == loginFieldEmail {
				m.focus = loginFieldPassword
				m.email.Blur()
				return m, m.password.Focus()
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	if m.focus == loginFieldEmail {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m loginModel) View() string {
	var b strings.Builder

	b.WriteString("\n " + labelStyle.Render("INICIAR SESIÓN") + "\n\n")

	if m.reason != "" {
		b.WriteString(" " + errorStyle.Render(m.reason) + "\n\n")
	}

	b.WriteString(" " + dimStyle.Render("correo") + "\n")
	b.WriteString(" " + m.email.View() + "\n\n")
	b.WriteString(" " + dimStyle.Render("contraseña") + "\n")
	b.WriteString(" " + m.password.View() + "\n\n")

	if m.submitting {
		b.WriteString(" " + dimStyle.Render("conectando...") + "\n")
	} else if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.errMsg) + "\n")
	}

	return b.String()
}
