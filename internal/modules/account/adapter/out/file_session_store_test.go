package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	accountout "firedesk/internal/modules/account/adapter/out"
	"firedesk/internal/modules/account/domain"
	apperrors "firedesk/internal/platform/errors"
)

func TestFileSessionStoreRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state", "session.json")
	store := accountout.NewFileSessionStore(path)
	ctx := context.Background()

	if _, err := store.Load(ctx); err != apperrors.ErrNotSignedIn {
		t.Fatalf("expected not signed in before save, got %v", err)
	}
	want := domain.Session{UID: "u1", Email: "ada@example.com", IDToken: "t", ExpiresAt: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("session file should be private, got %v", info.Mode().Perm())
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, want)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
	if _, err := store.Load(ctx); err != apperrors.ErrNotSignedIn {
		t.Fatalf("expected not signed in after clear, got %v", err)
	}
}

func TestFileSessionStoreRejectsCorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := accountout.NewFileSessionStore(path).Load(context.Background()); err == nil || err == apperrors.ErrNotSignedIn {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestFileSessionStoreRejectsOtherVersions(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "session.json")
	legacy := `{"version": 0, "session": {"uid": "u1", "email": "ada@example.com"}}`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := accountout.NewFileSessionStore(path).Load(context.Background()); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected a version error, got %v", err)
	}
}
