package domain

import "encoding/json"

// User is the authenticated user's profile.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// NormalizeUser builds a User from a raw login/profile payload, tolerating
// the backend's inconsistent identifier field (`_id` vs `id`) and filling a
// placeholder name when absent.
func NormalizeUser(raw json.RawMessage) (User, error) {
	var p struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Role    string `json:"role"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return User{}, err
	}
	u := User{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
	}
	if u.ID == "" {
		u.ID = p.MongoID
	}
	if u.Name == "" {
		u.Name = "Usuario Desconocido"
	}
	return u, nil
}
