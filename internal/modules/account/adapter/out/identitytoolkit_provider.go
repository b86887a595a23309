package out

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	accountout "firedesk/internal/modules/account/port/out"
	apperrors "firedesk/internal/platform/errors"
)

// IdentityToolkitProvider signs users up and in with email and password
// against the project's Identity Toolkit endpoint, authenticated by the
// web api key alone.
type IdentityToolkitProvider struct {
	svc *identitytoolkit.Service
}

func NewIdentityToolkitProvider(ctx context.Context, apiKey string, opts ...option.ClientOption) (accountout.IdentityProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("identity toolkit: %w: api key is empty", apperrors.ErrInvalidInput)
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit: %w", err)
	}
	return &IdentityToolkitProvider{svc: svc}, nil
}

func (p *IdentityToolkitProvider) SignUp(ctx context.Context, email, password string) (accountout.Identity, error) {
	resp, err := p.svc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return accountout.Identity{}, translate(err)
	}
	return accountout.Identity{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    time.Duration(resp.ExpiresIn) * time.Second,
	}, nil
}

func (p *IdentityToolkitProvider) SignIn(ctx context.Context, email, password string) (accountout.Identity, error) {
	resp, err := p.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return accountout.Identity{}, translate(err)
	}
	return accountout.Identity{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    time.Duration(resp.ExpiresIn) * time.Second,
	}, nil
}

var authMessages = map[string]string{
	"EMAIL_EXISTS":                "an account already exists for this email",
	"EMAIL_NOT_FOUND":             "no account exists for this email",
	"INVALID_PASSWORD":            "the password is incorrect",
	"INVALID_LOGIN_CREDENTIALS":   "invalid email or password",
	"INVALID_EMAIL":               "the email address is badly formatted",
	"USER_DISABLED":               "this account has been disabled",
	"WEAK_PASSWORD":               "the password is too weak",
	"OPERATION_NOT_ALLOWED":       "email/password sign-in is disabled for this project",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "too many attempts, try again later",
}

// translate turns a googleapi error such as
// "WEAK_PASSWORD : Password should be at least 6 characters" into an
// AuthError with a readable message.
func translate(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	code, detail, _ := strings.Cut(gerr.Message, " : ")
	code = strings.TrimSpace(code)
	msg, ok := authMessages[code]
	switch {
	case ok && detail != "":
		msg = msg + ": " + strings.TrimSpace(detail)
	case !ok && gerr.Message != "":
		msg = strings.ToLower(strings.ReplaceAll(gerr.Message, "_", " "))
	case !ok:
		msg = fmt.Sprintf("identity toolkit error %d", gerr.Code)
	}
	return &apperrors.AuthError{Code: code, Message: msg}
}
