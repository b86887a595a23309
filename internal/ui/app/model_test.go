package app

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	accountdto "firedesk/internal/modules/account/dto"
	notesdto "firedesk/internal/modules/notes/dto"
	"firedesk/internal/platform/config"
	"firedesk/internal/platform/connectivity"
	"firedesk/internal/ui/components"
)

type stubAccount struct{}

func (stubAccount) CreateAccount(context.Context, string, string) (accountdto.SessionOutput, error) {
	return accountdto.SessionOutput{}, nil
}
func (stubAccount) SignIn(_ context.Context, email, _ string) (accountdto.SessionOutput, error) {
	return accountdto.SessionOutput{SignedIn: true, UID: "u", Email: email}, nil
}
func (stubAccount) SignOut(context.Context) error { return nil }
func (stubAccount) Subscribe(fn func(accountdto.SessionOutput)) func() {
	fn(accountdto.SessionOutput{})
	return func() {}
}

type stubNotes struct{ pending int }

func (stubNotes) AuthenticatedWrite(context.Context, string) (notesdto.WriteOutput, error) {
	return notesdto.WriteOutput{ID: "x"}, nil
}
func (stubNotes) Probe(context.Context) (notesdto.ProbeOutput, error) {
	return notesdto.ProbeOutput{Reachable: true}, nil
}
func (stubNotes) SeedSampleData(context.Context) (notesdto.SeedOutput, error) {
	return notesdto.SeedOutput{}, nil
}
func (stubNotes) FetchNotes(context.Context) ([]notesdto.NoteOutput, error) { return nil, nil }
func (s stubNotes) QueueStatus(context.Context) (notesdto.QueueOutput, error) {
	return notesdto.QueueOutput{Enabled: true, Pending: s.pending}, nil
}
func (s stubNotes) Flush(context.Context) (notesdto.FlushOutput, error) {
	return notesdto.FlushOutput{Replayed: s.pending}, nil
}

func newTestModel(online bool) (Model, *connectivity.Monitor) {
	monitor := connectivity.NewMonitor(online)
	m := NewModel(stubAccount{}, stubNotes{pending: 3}, config.Record{}, monitor)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), monitor
}

func TestOfflineBannerRendered(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(false)
	defer m.Close()
	if !strings.Contains(m.View(), components.OfflineAdvisory) {
		t.Fatalf("offline advisory missing from view")
	}

	online, _ := newTestModel(true)
	defer online.Close()
	if strings.Contains(online.View(), components.OfflineAdvisory) {
		t.Fatalf("advisory shown while online")
	}
}

func TestPaletteRunsPanelOperation(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(true)
	defer m.Close()

	next, cmd := m.executePalette("config:show")
	if cmd != nil {
		t.Fatalf("config:show needs no command")
	}
	if got := next.(Model).panel.Status(); !strings.HasPrefix(got, "Missing keys: apiKey") {
		t.Fatalf("unexpected panel status %q", got)
	}

	next, _ = m.executePalette("bogus")
	if next.(Model).status != "unknown command: bogus" {
		t.Fatalf("unexpected status %q", next.(Model).status)
	}
}

func TestPaletteQueueStatus(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(true)
	defer m.Close()

	_, cmd := m.executePalette("queue:status")
	next, _ := m.Update(cmd())
	if next.(Model).status != "offline queue: 3 pending, 0 rejected" {
		t.Fatalf("unexpected status %q", next.(Model).status)
	}
}

func TestQuitKeyIgnoredWhileTyping(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(true)
	defer m.Close()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		if _, quit := cmd().(tea.QuitMsg); quit {
			t.Fatalf("q must type into the email field")
		}
	}
}
