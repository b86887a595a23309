package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultProbeTarget   = "firestore.googleapis.com:443"
	DefaultProbeInterval = 5 * time.Second
	DefaultProbeTimeout  = 2 * time.Second
)

// Settings are local runtime knobs. They are not part of the Firebase record
// and do not affect its validity.
type Settings struct {
	StateDir        string
	LogFile         string
	LogLevel        string
	CredentialsFile string
	ProbeTarget     string
	ProbeInterval   time.Duration
	ProbeTimeout    time.Duration
	AnalyticsSecret string
}

// NewSettings fills defaults and derives state paths.
func NewSettings(s Settings) (Settings, error) {
	if strings.TrimSpace(s.StateDir) == "" {
		dir, err := defaultStateDir()
		if err != nil {
			return Settings{}, err
		}
		s.StateDir = dir
	}
	if s.LogFile == "" {
		s.LogFile = filepath.Join(s.StateDir, "firedesk.log")
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.ProbeTarget == "" {
		s.ProbeTarget = DefaultProbeTarget
	}
	if s.ProbeInterval <= 0 {
		s.ProbeInterval = DefaultProbeInterval
	}
	if s.ProbeTimeout <= 0 {
		s.ProbeTimeout = DefaultProbeTimeout
	}
	return s, nil
}

func (s Settings) SessionPath() string { return filepath.Join(s.StateDir, "session.json") }
func (s Settings) QueuePath() string   { return filepath.Join(s.StateDir, "queue.db") }
func (s Settings) LockPath() string    { return filepath.Join(s.StateDir, "queue.lock") }

// EnvDefault returns the named FIREDESK_ variable or fallback.
func EnvDefault(name, fallback string) string {
	if v, ok := os.LookupEnv("FIREDESK_" + name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func defaultStateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve state dir: %w", err)
	}
	return filepath.Join(base, "firedesk"), nil
}
