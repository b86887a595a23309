package service

import (
	"context"
	"strings"

	"firedesk/internal/modules/account/domain"
	accountout "firedesk/internal/modules/account/port/out"
	"firedesk/internal/platform/clock"
)

type AccountService struct {
	clock    clock.Clock
	provider accountout.IdentityProvider
}

func NewAccountService(clock clock.Clock, provider accountout.IdentityProvider) *AccountService {
	return &AccountService{clock: clock, provider: provider}
}

func (s *AccountService) SignUp(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if err := creds.Validate(); err != nil {
		return domain.Session{}, err
	}
	identity, err := s.provider.SignUp(ctx, strings.TrimSpace(creds.Email), creds.Password)
	if err != nil {
		return domain.Session{}, err
	}
	return s.session(identity), nil
}

func (s *AccountService) SignIn(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if err := creds.Validate(); err != nil {
		return domain.Session{}, err
	}
	identity, err := s.provider.SignIn(ctx, strings.TrimSpace(creds.Email), creds.Password)
	if err != nil {
		return domain.Session{}, err
	}
	return s.session(identity), nil
}

func (s *AccountService) session(identity accountout.Identity) domain.Session {
	return domain.Session{
		UID:          identity.UID,
		Email:        identity.Email,
		IDToken:      identity.IDToken,
		RefreshToken: identity.RefreshToken,
		ExpiresAt:    s.clock.Now().Add(identity.ExpiresIn),
	}
}
