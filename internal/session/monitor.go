package session

import (
	"net/http"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// User-facing reasons shown on the login view after a forced logout.
const (
	ReasonExpired        = "Sesión expirada. Inicia sesión de nuevo."
	ReasonAccountMissing = "La cuenta ya no existe."
)

// TerminatedMsg is delivered to the running bubbletea program when the
// transport layer detects a session-invalidating response.
type TerminatedMsg struct {
	StatusCode int
	Reason     string
}

// Monitor implements the transport's session-event sink. On a 401/404 it
// clears the persisted session and forwards a TerminatedMsg into the running
// program so the shell can redirect to the login view.
//
// The monitor is handed to the client at construction, but the tea.Program
// only exists later; SetProgram installs it once the program is created.
// Terminations arriving before that still clear the store; only the UI
// notification is dropped.
type Monitor struct {
	store   *Store
	logger  *zap.Logger
	program atomic.Pointer[tea.Program]
}

// NewMonitor creates a monitor over the given store.
func NewMonitor(store *Store, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{store: store, logger: logger}
}

// SetProgram installs the bubbletea program that receives TerminatedMsg.
func (m *Monitor) SetProgram(p *tea.Program) {
	m.program.Store(p)
}

// Reason maps an intercepted status code to the login-view message.
func Reason(statusCode int) string {
	switch statusCode {
	case http.StatusUnauthorized:
		return ReasonExpired
	case http.StatusNotFound:
		return ReasonAccountMissing
	}
	return ""
}

// SessionTerminated implements client.SessionEvents.
func (m *Monitor) SessionTerminated(statusCode int, message string) {
	reason := Reason(statusCode)
	m.logger.Warn("session terminated by backend",
		zap.Int("status", statusCode),
		zap.String("message", message))
	if err := m.store.Clear(); err != nil {
		m.logger.Error("clear persisted session", zap.Error(err))
	}
	if p := m.program.Load(); p != nil {
		p.Send(TerminatedMsg{StatusCode: statusCode, Reason: reason})
	}
}
