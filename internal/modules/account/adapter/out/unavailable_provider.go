package out

import (
	"context"
	"fmt"

	accountout "firedesk/internal/modules/account/port/out"
)

// UnavailableProvider replaces an identity provider that could not be built.
type UnavailableProvider struct {
	err error
}

func NewUnavailableProvider(err error) *UnavailableProvider {
	if err == nil {
		err = fmt.Errorf("identity provider not configured")
	}
	return &UnavailableProvider{err: err}
}

func (p *UnavailableProvider) SignUp(context.Context, string, string) (accountout.Identity, error) {
	return accountout.Identity{}, p.err
}

func (p *UnavailableProvider) SignIn(context.Context, string, string) (accountout.Identity, error) {
	return accountout.Identity{}, p.err
}
