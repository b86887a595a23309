package domain

import (
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is the layout version of a persisted session.
const SchemaVersion = 1

// Session is the identity the provider vouched for. The zero value means
// nobody is signed in.
type Session struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s Session) SignedIn() bool {
	return s.UID != ""
}

type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) Validate() error {
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email %q is not valid", email)
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}
