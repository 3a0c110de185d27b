package domain

// Session pairs an auth token with the user it belongs to. Token and user are
// both present or the session does not exist; a half-written pair on disk is
// treated as anonymous.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Valid reports whether the session is complete enough to use.
func (s Session) Valid() bool {
	return s.Token != "" && s.User.ID != ""
}
