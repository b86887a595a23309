package in

import (
	"context"

	accountdto "firedesk/internal/modules/account/dto"
	accountin "firedesk/internal/modules/account/port/in"
)

type CLIHandler struct {
	usecase accountin.Usecase
}

func NewCLIHandler(usecase accountin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) CreateAccount(ctx context.Context, email, password string) (accountdto.SessionOutput, error) {
	return h.usecase.CreateAccount(ctx, accountdto.CredentialsInput{Email: email, Password: password})
}

func (h CLIHandler) SignIn(ctx context.Context, email, password string) (accountdto.SessionOutput, error) {
	return h.usecase.SignIn(ctx, accountdto.CredentialsInput{Email: email, Password: password})
}

func (h CLIHandler) SignOut(ctx context.Context) error {
	return h.usecase.SignOut(ctx)
}

func (h CLIHandler) Current(ctx context.Context) (accountdto.SessionOutput, error) {
	return h.usecase.Current(ctx)
}

func (h CLIHandler) Subscribe(fn func(accountdto.SessionOutput)) func() {
	return h.usecase.Subscribe(fn)
}
