package in

import (
	"context"

	"firedesk/internal/modules/account/dto"
)

type Usecase interface {
	Restore(ctx context.Context) error
	CreateAccount(ctx context.Context, input dto.CredentialsInput) (dto.SessionOutput, error)
	SignIn(ctx context.Context, input dto.CredentialsInput) (dto.SessionOutput, error)
	SignOut(ctx context.Context) error
	Current(ctx context.Context) (dto.SessionOutput, error)
	// Subscribe calls fn with the current snapshot right away and again on
	// every change until the returned func is called.
	Subscribe(fn func(dto.SessionOutput)) (unsubscribe func())
}
