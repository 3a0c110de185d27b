// Package query provides the ticket list's query abstraction: one Source
// contract with two backends. The remote backend forwards filters and sort as
// query parameters and trusts the server's page metadata; the local backend
// fetches the caller's own tickets flat and evaluates the same filters, sort,
// and counts in memory. Callers are agnostic to which is active.
package query

import (
	"context"
	"fmt"

	"github.com/dmerreys/tickets-frontend/pkg/client"
	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

// Result is one page of tickets plus the header counters.
type Result struct {
	Tickets      []domain.Ticket
	CurrentPage  int
	TotalPages   int
	TotalTickets int
	SLABreached  int
	SLACompliant int
}

// Source produces the tickets visible under a filter/sort/page configuration.
type Source interface {
	Fetch(ctx context.Context, page int, sort SortState, f Filters) (*Result, error)
}

// Select returns the backend that serves the given filters: local for
// CreatedByMe, remote otherwise.
func Select(remote, local Source, f Filters) Source {
	if f.CreatedByMe {
		return local
	}
	return remote
}

// RemoteSource is the server-paginated backend.
type RemoteSource struct {
	Client *client.Client
}

// Fetch issues the parameterized list request. Only this path forwards the
// status/urgency/assignee/closed-visibility filters.
func (s *RemoteSource) Fetch(ctx context.Context, page int, sort SortState, f Filters) (*Result, error) {
	params := client.ListTicketsParams{
		Page:    page,
		Sort:    sort.Param(),
		Status:  f.Status,
		Urgency: f.Urgency,
	}
	if f.AssignedTo == AssignedToUnassigned {
		params.AssignedTo = "null"
	} else {
		params.AssignedTo = f.AssignedTo
	}
	if !f.ShowClosed {
		params.ExcludeStatus = domain.StatusCerrado
	}

	resp, err := s.Client.ListTickets(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("query.RemoteSource: %w", err)
	}

	result := &Result{
		Tickets:      resp.Tickets,
		CurrentPage:  resp.CurrentPage,
		TotalPages:   resp.TotalPages,
		TotalTickets: resp.TotalTickets,
		SLABreached:  resp.SLABreachedCount,
		SLACompliant: resp.SLACompliantCount,
	}
	if result.CurrentPage == 0 {
		result.CurrentPage = 1
	}
	if result.TotalPages == 0 {
		result.TotalPages = 1
	}
	if result.TotalTickets == 0 {
		result.TotalTickets = len(resp.Tickets)
	}
	return result, nil
}

// LocalSource is the "mine" backend: a flat fetch of the caller's own
// tickets with all filtering, sorting, and count derivation done here.
type LocalSource struct {
	Client *client.Client
}

// Fetch retrieves the caller's tickets and evaluates the query locally. The
// result is a single page regardless of size.
func (s *LocalSource) Fetch(ctx context.Context, _ int, sort SortState, f Filters) (*Result, error) {
	tickets, err := s.Client.MyTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("query.LocalSource: %w", err)
	}

	filtered := f.Apply(tickets)
	sort.Sort(filtered)

	breached := 0
	for i := range filtered {
		if filtered[i].SLABreached {
			breached++
		}
	}
	return &Result{
		Tickets:      filtered,
		CurrentPage:  1,
		TotalPages:   1,
		TotalTickets: len(filtered),
		SLABreached:  breached,
		SLACompliant: len(filtered) - breached,
	}, nil
}
