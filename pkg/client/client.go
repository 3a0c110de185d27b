package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

// PageSize is the fixed page size for the server-paginated ticket list.
const PageSize = 10

// SessionEvents receives session-invalidating responses detected by the
// transport layer. It is injected at construction so a single interceptor can
// enforce logout policy everywhere without a module-level callback.
type SessionEvents interface {
	// SessionTerminated is called once per 401/404 response, before the
	// request error is returned to the caller.
	SessionTerminated(statusCode int, message string)
}

// Client is the help-desk backend API client.
type Client struct {
	baseURL    string
	events     SessionEvents
	logger     *zap.Logger
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New creates an API client. events may be nil for unauthenticated use (the
// login form itself); logger may be nil.
func New(baseURL string, events SessionEvents, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		events:  events,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken installs the session token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the session token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// LoginResponse is the payload returned by the login endpoint. User stays raw
// so the session layer can normalize the backend's identifier field.
type LoginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Login authenticates with email and password. It does not install the token;
// the session layer decides that after normalizing the profile.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.post(ctx, "/auth/login", body, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &resp, nil
}

// ListTicketsParams are the query parameters for the server-paginated list.
type ListTicketsParams struct {
	Page          int
	Sort          string // e.g. "-createdAt" for descending
	Status        string
	Urgency       string
	AssignedTo    string // "null" requests unassigned tickets
	ExcludeStatus string
}

// TicketPage is a server-paginated ticket list response. Page metadata is
// trusted verbatim.
type TicketPage struct {
	Tickets           []domain.Ticket `json:"tickets"`
	CurrentPage       int             `json:"currentPage"`
	TotalPages        int             `json:"totalPages"`
	TotalTickets      int             `json:"totalTickets"`
	SLABreachedCount  int             `json:"slaBreachedCount"`
	SLACompliantCount int             `json:"slaCompliantCount"`
}

// ListTickets fetches one page of tickets with the active filters and sort.
func (c *Client) ListTickets(ctx context.Context, p ListTicketsParams) (*TicketPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(p.Page))
	params.Set("limit", strconv.Itoa(PageSize))
	params.Set("sort", p.Sort)
	if p.Status != "" {
		params.Set("status", p.Status)
	}
	if p.Urgency != "" {
		params.Set("urgency", p.Urgency)
	}
	if p.AssignedTo != "" {
		params.Set("assignedTo", p.AssignedTo)
	}
	if p.ExcludeStatus != "" {
		params.Set("excludeStatus", p.ExcludeStatus)
	}

	var page TicketPage
	if err := c.get(ctx, "/tickets?"+params.Encode(), &page); err != nil {
		return nil, fmt.Errorf("client.ListTickets: %w", err)
	}
	return &page, nil
}

// MyTickets fetches the caller's own tickets as a flat, unfiltered list.
func (c *Client) MyTickets(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := c.get(ctx, "/tickets/my-tickets", &tickets); err != nil {
		return nil, fmt.Errorf("client.MyTickets: %w", err)
	}
	return tickets, nil
}

// MyAssigned fetches tickets assigned to the caller.
func (c *Client) MyAssigned(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := c.get(ctx, "/tickets/my-assigned", &tickets); err != nil {
		return nil, fmt.Errorf("client.MyAssigned: %w", err)
	}
	return tickets, nil
}

// GetTicket fetches a single ticket by id. A 404 here means the ticket is
// gone, not the account, so it never terminates the session.
func (c *Client) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := c.getResource(ctx, "/tickets/"+url.PathEscape(id), &t); err != nil {
		return nil, fmt.Errorf("client.GetTicket: %w", err)
	}
	return &t, nil
}

// CreateTicket files a new ticket and returns the stored copy, including the
// generated human-readable ticketId.
func (c *Client) CreateTicket(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	var created domain.Ticket
	if err := c.post(ctx, "/tickets", t, &created); err != nil {
		return nil, fmt.Errorf("client.CreateTicket: %w", err)
	}
	return &created, nil
}

// UpdateTicket replaces a ticket's mutable fields.
func (c *Client) UpdateTicket(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	var updated domain.Ticket
	if err := c.doRequest(ctx, http.MethodPut, "/tickets/"+url.PathEscape(t.ID), t, &updated, false); err != nil {
		return nil, fmt.Errorf("client.UpdateTicket: %w", err)
	}
	return &updated, nil
}

// AddWorklog appends a worklog entry via the dedicated endpoint and returns
// the updated ticket.
func (c *Client) AddWorklog(ctx context.Context, ticketID string, entry domain.WorklogEntry) (*domain.Ticket, error) {
	var updated domain.Ticket
	if err := c.post(ctx, "/tickets/"+url.PathEscape(ticketID)+"/worklog", entry, &updated); err != nil {
		return nil, fmt.Errorf("client.AddWorklog: %w", err)
	}
	return &updated, nil
}

// GetUser fetches a user profile by id. Like GetTicket, a 404 is a missing
// reference, not a missing account.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.UserRef, error) {
	var u domain.UserRef
	if err := c.getResource(ctx, "/users/"+url.PathEscape(id), &u); err != nil {
		return nil, fmt.Errorf("client.GetUser: %w", err)
	}
	return &u, nil
}

// ListServices fetches the service catalog.
func (c *Client) ListServices(ctx context.Context) ([]domain.Service, error) {
	var services []domain.Service
	if err := c.get(ctx, "/services", &services); err != nil {
		return nil, fmt.Errorf("client.ListServices: %w", err)
	}
	return services, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out, false)
}

// getResource is get for individual resource lookups, where a 404 means the
// referenced resource is missing rather than the acting account.
func (c *Client) getResource(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out, true)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out, false)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any, resourceLookup bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		apiErr := c.decodeError(resp)
		c.logger.Warn("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		// 401 means the installed credential expired; 404 from an
		// authenticated call means the acting user no longer exists. Either
		// way the session is over: notify the sink first, then let the
		// caller's own error handling run. Anonymous calls (login itself)
		// have no session to terminate, and on resource lookups a 404 is
		// just a missing resource.
		terminated := resp.StatusCode == http.StatusUnauthorized ||
			(resp.StatusCode == http.StatusNotFound && !resourceLookup)
		if c.events != nil && token != "" && terminated {
			c.events.SessionTerminated(resp.StatusCode, apiErr.Message)
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) decodeError(resp *http.Response) *APIError {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var payload struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(respBody, &payload) == nil && payload.Msg != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Msg}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
}
