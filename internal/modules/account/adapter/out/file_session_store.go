package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"firedesk/internal/modules/account/domain"
	accountout "firedesk/internal/modules/account/port/out"
	apperrors "firedesk/internal/platform/errors"
)

type FileSessionStore struct {
	path string
}

type sessionFile struct {
	Version int            `json:"version"`
	Session domain.Session `json:"session"`
}

func NewFileSessionStore(path string) accountout.SessionStore {
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Save(_ context.Context, session domain.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	payload, err := json.MarshalIndent(sessionFile{Version: domain.SchemaVersion, Session: session}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	// tokens live in this file
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *FileSessionStore) Load(_ context.Context) (domain.Session, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Session{}, apperrors.ErrNotSignedIn
		}
		return domain.Session{}, fmt.Errorf("read session: %w", err)
	}
	file := sessionFile{}
	if err := json.Unmarshal(payload, &file); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if file.Version != domain.SchemaVersion {
		return domain.Session{}, fmt.Errorf("%w: session file version %d, want %d", apperrors.ErrInvalidInput, file.Version, domain.SchemaVersion)
	}
	session := file.Session
	if !session.SignedIn() {
		return domain.Session{}, apperrors.ErrNotSignedIn
	}
	return session, nil
}

func (s *FileSessionStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
