package tui

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmerreys/tickets-frontend/internal/session"
	"github.com/dmerreys/tickets-frontend/pkg/client"
)

func newTestLogin(t *testing.T) loginModel {
	t.Helper()
	return newLoginModel(nil, session.NewStore(t.TempDir()))
}

func typeInto(m loginModel, s string) loginModel {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestLoginTabMovesFocus(t *testing.T) {
	m := newTestLogin(t)
	if m.focus != loginFieldEmail {
		t.Fatal("expected email focused initially")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != loginFieldPassword {
		t.Error("expected tab to focus password")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != loginFieldEmail {
		t.Error("expected tab to wrap back to email")
	}
}

func TestLoginEmptySubmitValidates(t *testing.T) {
	m := newTestLogin(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter}) // email -> password
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no command on empty submit")
	}
	if !strings.Contains(m.View(), "Introduce correo y contraseña.") {
		t.Errorf("expected validation message, got:\n%s", m.View())
	}
}

func TestLoginFailureShowsUserMessage(t *testing.T) {
	m := newTestLogin(t)
	m.submitting = true

	m, _ = m.Update(loginResultMsg{err: &client.APIError{StatusCode: 401, Message: "Credenciales inválidas"}})
	if m.submitting {
		t.Error("expected submitting cleared")
	}
	if !strings.Contains(m.View(), "Credenciales inválidas") {
		t.Errorf("expected backend message rendered, got:\n%s", m.View())
	}
}

func TestLoginSuccessPersistsAndAnnounces(t *testing.T) {
	dir := t.TempDir()
	m := newLoginModel(nil, session.NewStore(dir))
	m = typeInto(m, "ana@x.com")
	m.password.SetValue("secreta")

	raw := json.RawMessage(`{"_id":"u1","name":"Ana","email":"ana@x.com","role":"technician"}`)
	m, cmd := m.Update(loginResultMsg{resp: &client.LoginResponse{Token: "tok-1", User: raw}})
	if cmd == nil {
		t.Fatal("expected success to emit a message")
	}
	started, ok := cmd().(sessionStartedMsg)
	if !ok {
		t.Fatalf("expected sessionStartedMsg, got %T", cmd())
	}
	if started.sess.Token != "tok-1" || started.sess.User.Name != "Ana" {
		t.Errorf("unexpected session %+v", started.sess)
	}
	if m.password.Value() != "" {
		t.Error("expected password cleared after login")
	}

	restored := session.NewStore(dir).Load()
	if !restored.Valid() || restored.User.ID != "u1" {
		t.Errorf("expected session persisted, got %+v", restored)
	}
}

func TestLoginRendersForcedLogoutReason(t *testing.T) {
	m := newTestLogin(t)
	m.reason = "Sesión expirada. Inicia sesión de nuevo."
	if !strings.Contains(m.View(), "Sesión expirada") {
		t.Errorf("expected reason in view, got:\n%s", m.View())
	}
}
