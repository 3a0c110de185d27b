package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

// recordingSink captures SessionTerminated calls.
type recordingSink struct {
	calls    int
	status   int
	lastMsg  string
	messages []string
}

func (s *recordingSink) SessionTerminated(statusCode int, message string) {
	s.calls++
	s.status = statusCode
	s.lastMsg = message
	s.messages = append(s.messages, message)
}

func newTestClient(url string, sink SessionEvents) *Client {
	c := New(url, sink, nil)
	c.SetToken("test-token")
	return c
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if creds["email"] != "a@x.com" || creds["password"] != "p" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"msg": "Credenciales inválidas"}) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"token":"t1","user":{"_id":"u1","name":"Ana","email":"a@x.com","role":"tech"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil, nil)
	resp, err := c.Login(context.Background(), "a@x.com", "p")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.Token != "t1" {
		t.Errorf("Token = %q, want t1", resp.Token)
	}
	u, err := domain.NormalizeUser(resp.User)
	if err != nil {
		t.Fatalf("NormalizeUser: %v", err)
	}
	if u.Name != "Ana" {
		t.Errorf("user.Name = %q, want Ana", u.Name)
	}
	if u.ID != "u1" {
		t.Errorf("user.ID = %q, want u1 (from _id)", u.ID)
	}
}

func TestListTicketsQuery(t *testing.T) {
	var gotQuery string
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotToken = r.Header.Get("x-auth-token")
		json.NewEncoder(w).Encode(TicketPage{ //nolint:errcheck
			Tickets:     []domain.Ticket{{ID: "t1", Title: "impresora", Status: "abierto"}},
			CurrentPage: 2,
			TotalPages:  5,
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	page, err := c.ListTickets(context.Background(), ListTicketsParams{
		Page:   2,
		Sort:   "-createdAt",
		Status: "abierto",
	})
	if err != nil {
		t.Fatalf("ListTickets() error: %v", err)
	}

	for _, want := range []string{"page=2", "limit=10", "sort=-createdAt", "status=abierto"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if strings.Contains(gotQuery, "urgency") || strings.Contains(gotQuery, "excludeStatus") {
		t.Errorf("inactive filters should not be forwarded, got %q", gotQuery)
	}
	if gotToken != "test-token" {
		t.Errorf("x-auth-token = %q, want test-token", gotToken)
	}
	if page.CurrentPage != 2 || page.TotalPages != 5 {
		t.Errorf("page metadata not trusted verbatim: %+v", page)
	}
}

func TestListTicketsUnassignedSentinel(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(TicketPage{}) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	_, err := c.ListTickets(context.Background(), ListTicketsParams{
		Page:          1,
		Sort:          "-createdAt",
		AssignedTo:    "null",
		ExcludeStatus: "cerrado",
	})
	if err != nil {
		t.Fatalf("ListTickets() error: %v", err)
	}
	if !strings.Contains(gotQuery, "assignedTo=null") {
		t.Errorf("query %q missing assignedTo=null", gotQuery)
	}
	if !strings.Contains(gotQuery, "excludeStatus=cerrado") {
		t.Errorf("query %q missing excludeStatus=cerrado", gotQuery)
	}
}

func TestSessionTerminatedOn401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"msg": "Token no válido"}) //nolint:errcheck
	}))
	defer srv.Close()

	sink := &recordingSink{}
	c := newTestClient(srv.URL, sink)
	_, err := c.MyTickets(context.Background())
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !IsStatus(err, 401) {
		t.Errorf("IsStatus(err, 401) = false, err = %v", err)
	}
	if sink.calls != 1 {
		t.Fatalf("sink called %d times, want exactly 1", sink.calls)
	}
	if sink.status != 401 {
		t.Errorf("sink status = %d, want 401", sink.status)
	}
	if sink.lastMsg != "Token no válido" {
		t.Errorf("sink message = %q", sink.lastMsg)
	}
}

func TestSessionTerminatedOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"msg": "Usuario no encontrado"}) //nolint:errcheck
	}))
	defer srv.Close()

	sink := &recordingSink{}
	c := newTestClient(srv.URL, sink)
	_, err := c.MyAssigned(context.Background())
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if sink.calls != 1 {
		t.Errorf("sink called %d times, want exactly 1", sink.calls)
	}
	if sink.status != 404 {
		t.Errorf("sink status = %d, want 404", sink.status)
	}
}

func TestNoSinkCallOnAnonymousLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"msg": "Credenciales inválidas"}) //nolint:errcheck
	}))
	defer srv.Close()

	// No token installed: a rejected login has no session to terminate.
	sink := &recordingSink{}
	c := New(srv.URL, sink, nil)
	_, err := c.Login(context.Background(), "a@x.com", "wrong")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if sink.calls != 0 {
		t.Errorf("sink called %d times for an anonymous 401, want 0", sink.calls)
	}
	if got := UserMessage(err); got != "Credenciales inválidas" {
		t.Errorf("UserMessage = %q, want backend msg", got)
	}
}

func TestResourceLookup404SkipsSink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"msg": "Ticket no encontrado"}) //nolint:errcheck
	}))
	defer srv.Close()

	sink := &recordingSink{}
	c := newTestClient(srv.URL, sink)
	if _, err := c.GetTicket(context.Background(), "no-such-id"); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if _, err := c.GetUser(context.Background(), "no-such-id"); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if sink.calls != 0 {
		t.Errorf("sink called %d times for resource 404s, want 0", sink.calls)
	}
}

func TestResourceLookup401StillTerminates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"msg": "Token no válido"}) //nolint:errcheck
	}))
	defer srv.Close()

	sink := &recordingSink{}
	c := newTestClient(srv.URL, sink)
	if _, err := c.GetTicket(context.Background(), "x"); err == nil {
		t.Fatal("expected error for 401 response")
	}
	if sink.calls != 1 {
		t.Errorf("sink called %d times, want exactly 1", sink.calls)
	}
	if sink.status != 401 {
		t.Errorf("sink status = %d, want 401", sink.status)
	}
}

func TestNoSinkCallOn500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"msg": "boom"}) //nolint:errcheck
	}))
	defer srv.Close()

	sink := &recordingSink{}
	c := newTestClient(srv.URL, sink)
	_, err := c.MyTickets(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if sink.calls != 0 {
		t.Errorf("sink called %d times for a 500, want 0", sink.calls)
	}
	if got := UserMessage(err); got != "boom" {
		t.Errorf("UserMessage = %q, want backend msg", got)
	}
}

func TestAddWorklog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tickets/t1/worklog" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var entry domain.WorklogEntry
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(domain.Ticket{ //nolint:errcheck
			ID:      "t1",
			Status:  domain.DeriveStatus("abierto", entry.Type),
			Worklog: []domain.WorklogEntry{entry},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	updated, err := c.AddWorklog(context.Background(), "t1", domain.WorklogEntry{Type: "Resuelto", Solution: "listo"})
	if err != nil {
		t.Fatalf("AddWorklog() error: %v", err)
	}
	if updated.Status != "resuelto" {
		t.Errorf("Status = %q, want resuelto", updated.Status)
	}
}

func TestCreateTicket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		var in domain.Ticket
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		in.ID = "t9"
		in.TicketID = "TKT-0009"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(in) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	created, err := c.CreateTicket(context.Background(), &domain.Ticket{Title: "vpn caída", Priority: "media"})
	if err != nil {
		t.Fatalf("CreateTicket() error: %v", err)
	}
	if created.TicketID != "TKT-0009" {
		t.Errorf("TicketID = %q, want TKT-0009", created.TicketID)
	}
}

func TestRawBodyErrorFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway")) //nolint:errcheck
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	_, err := c.ListServices(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "HTTP 502") || !strings.Contains(err.Error(), "bad gateway") {
		t.Errorf("error = %q, want raw body fallback", err)
	}
}
