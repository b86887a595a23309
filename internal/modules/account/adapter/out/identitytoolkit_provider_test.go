package out_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/option"

	accountout "firedesk/internal/modules/account/adapter/out"
	apperrors "firedesk/internal/platform/errors"
)

func newToolkitServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/verifyPassword"):
			if body["password"] != "correct" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_LOGIN_CREDENTIALS","errors":[{"message":"INVALID_LOGIN_CREDENTIALS","domain":"global","reason":"invalid"}]}}`))
				return
			}
			_, _ = w.Write([]byte(`{"localId":"uid-1","email":"ada@example.com","idToken":"tok","refreshToken":"ref","expiresIn":"3600","registered":true}`))
		case strings.HasSuffix(r.URL.Path, "/signupNewUser"):
			if body["password"] == "123" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"WEAK_PASSWORD : Password should be at least 6 characters"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"localId":"uid-2","email":"new@example.com","idToken":"tok2","refreshToken":"ref2","expiresIn":"3600"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestIdentityToolkitSignIn(t *testing.T) {
	t.Parallel()
	srv := newToolkitServer(t)
	defer srv.Close()

	p, err := accountout.NewIdentityToolkitProvider(context.Background(), "key",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	id, err := p.SignIn(context.Background(), "ada@example.com", "correct")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if id.UID != "uid-1" || id.Email != "ada@example.com" || id.ExpiresIn != time.Hour {
		t.Fatalf("unexpected identity %+v", id)
	}

	_, err = p.SignIn(context.Background(), "ada@example.com", "wrong")
	var authErr *apperrors.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Code != "INVALID_LOGIN_CREDENTIALS" || authErr.Error() != "invalid email or password" {
		t.Fatalf("unexpected auth error %+v", authErr)
	}
}

func TestIdentityToolkitSignUpWeakPassword(t *testing.T) {
	t.Parallel()
	srv := newToolkitServer(t)
	defer srv.Close()

	p, err := accountout.NewIdentityToolkitProvider(context.Background(), "key",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	id, err := p.SignUp(context.Background(), "new@example.com", "secret1")
	if err != nil || id.UID != "uid-2" {
		t.Fatalf("sign up: %+v %v", id, err)
	}
	_, err = p.SignUp(context.Background(), "new@example.com", "123")
	if err == nil || err.Error() != "the password is too weak: Password should be at least 6 characters" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIdentityToolkitRequiresKey(t *testing.T) {
	t.Parallel()
	if _, err := accountout.NewIdentityToolkitProvider(context.Background(), " "); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
