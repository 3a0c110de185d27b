package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmerreys/tickets-frontend/pkg/domain"
)

// Store persists the session under the state dir as a token file plus a
// serialized user profile. Both are written together and removed together:
// a half-present pair reads back as anonymous.
type Store struct {
	dir string
}

// NewStore creates a session store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) tokenPath() string { return filepath.Join(s.dir, "token") }
func (s *Store) userPath() string  { return filepath.Join(s.dir, "user.json") }

// Load reconstructs the persisted session. It returns an invalid session
// (not an error) when either file is missing or malformed; process start
// must fall back to anonymous, never fail.
func (s *Store) Load() domain.Session {
	tokenData, err := os.ReadFile(s.tokenPath())
	if err != nil {
		return domain.Session{}
	}
	userData, err := os.ReadFile(s.userPath())
	if err != nil {
		return domain.Session{}
	}
	var u domain.User
	if err := json.Unmarshal(userData, &u); err != nil {
		return domain.Session{}
	}
	sess := domain.Session{
		Token: strings.TrimSpace(string(tokenData)),
		User:  u,
	}
	if !sess.Valid() {
		return domain.Session{}
	}
	return sess
}

// Save persists the session. The user profile is written first so a crash
// between the two writes leaves a pair that Load treats as anonymous.
func (s *Store) Save(sess domain.Session) error {
	if !sess.Valid() {
		return fmt.Errorf("session.Save: refusing to persist incomplete session")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("session.Save: create state dir: %w", err)
	}
	userData, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("session.Save: marshal user: %w", err)
	}
	if err := os.WriteFile(s.userPath(), userData, 0o600); err != nil {
		return fmt.Errorf("session.Save: write user: %w", err)
	}
	if err := os.WriteFile(s.tokenPath(), []byte(sess.Token), 0o600); err != nil {
		return fmt.Errorf("session.Save: write token: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Missing files are fine; Clear is
// called on every logout path, including repeated interceptor hits.
func (s *Store) Clear() error {
	var firstErr error
	for _, p := range []string{s.tokenPath(), s.userPath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("session.Clear: %w", err)
		}
	}
	return firstErr
}
