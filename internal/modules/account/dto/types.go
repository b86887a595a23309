package dto

import "time"

type CredentialsInput struct {
	Email    string
	Password string
}

// SessionOutput is the read-only snapshot handed to callers and observers.
type SessionOutput struct {
	SignedIn  bool
	UID       string
	Email     string
	ExpiresAt time.Time
}
