package api

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"restobook/pkg/models"
)

// Session owns the auth token and the current user. It is constructed
// once at startup, loaded from its file, and torn down on logout by
// clearing both the in-memory and the persisted copy.
type Session struct {
	mu    sync.Mutex
	path  string
	token string
	user  models.User
}

type sessionFile struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func NewSession(path string) *Session {
	return &Session{path: path}
}

// Load reads persisted credentials. A missing file is not an error; the
// session just starts out unauthenticated.
func (s *Session) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	s.token = f.Token
	s.user = f.User
	return nil
}

func (s *Session) Set(token string, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = user
	data, err := json.Marshal(sessionFile{Token: token, User: user})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Reset clears the session in memory and on disk. Best-effort on the
// file: a failed remove still leaves the process logged out.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = models.User{}
	_ = os.Remove(s.path)
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) User() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// ExpiresAt reads the expiry claim without verifying the signature; the
// server remains the authority, this only lets the client warn early.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
