package domain

// Service is a catalog entry users can file tickets against. Read-only from
// the client's perspective.
type Service struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	SLA         SLA    `json:"sla"`
	Popularity  int    `json:"popularity,omitempty"`
}

// SLA holds a service's committed response and resolution windows, in hours.
type SLA struct {
	ResponseTime   int `json:"responseTime"`
	ResolutionTime int `json:"resolutionTime"`
}
