package out

import (
	"context"
	"time"

	"firedesk/internal/modules/account/domain"
)

// Identity is what the provider returns for a successful sign-up or sign-in.
type Identity struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
}

type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Load(ctx context.Context) (domain.Session, error)
	Clear(ctx context.Context) error
}

// EventSink receives product analytics events. Failures are not fatal.
type EventSink interface {
	Track(ctx context.Context, name, userID string, params map[string]any) error
}
