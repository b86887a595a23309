package debug

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	accountdto "firedesk/internal/modules/account/dto"
	notesdto "firedesk/internal/modules/notes/dto"
	"firedesk/internal/platform/config"
	"firedesk/internal/ui/components"
	"firedesk/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type AccountPort interface {
	CreateAccount(ctx context.Context, email, password string) (accountdto.SessionOutput, error)
	SignIn(ctx context.Context, email, password string) (accountdto.SessionOutput, error)
	SignOut(ctx context.Context) error
	Subscribe(fn func(accountdto.SessionOutput)) func()
}

type NotesPort interface {
	AuthenticatedWrite(ctx context.Context, uid string) (notesdto.WriteOutput, error)
	Probe(ctx context.Context) (notesdto.ProbeOutput, error)
	SeedSampleData(ctx context.Context) (notesdto.SeedOutput, error)
	FetchNotes(ctx context.Context) ([]notesdto.NoteOutput, error)
}

// ─── operations ──────────────────────────────────────────────────────────────

type Operation int

const (
	OpCreateAccount Operation = iota
	OpSignIn
	OpSignOut
	OpAuthWrite
	OpProbe
	OpSeed
	OpFetch
	OpShowConfig
	opCount
)

var opLabels = [opCount]string{
	"Create account",
	"Sign in",
	"Sign out",
	"Authenticated write",
	"Test connection",
	"Add sample data",
	"Fetch notes",
	"Check config",
}

func (o Operation) String() string {
	if o < 0 || o >= opCount {
		return "unknown"
	}
	return opLabels[o]
}

const NotSignedInStatus = "Not signed in: cannot perform authenticated write."

// ─── messages ────────────────────────────────────────────────────────────────

// ResultMsg is the outcome of one operation, tagged with the sequence number
// it was started under.
type ResultMsg struct {
	Seq    int
	Status string
}

// ─── model ───────────────────────────────────────────────────────────────────

type focusArea int

const (
	focusEmail focusArea = iota
	focusPassword
	focusActions
	focusCount
)

type Model struct {
	account AccountPort
	notes   NotesPort
	cfg     config.Record

	email    textinput.Model
	password textinput.Model
	spinner  spinner.Model
	focus    focusArea
	cursor   Operation

	feed    *components.Feed[accountdto.SessionOutput]
	session accountdto.SessionOutput
	status  string
	seq     int
	pending bool
	width   int
}

func New(account AccountPort, notes NotesPort, cfg config.Record) Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		account:  account,
		notes:    notes,
		cfg:      cfg,
		email:    email,
		password: password,
		spinner:  sp,
	}
}

// Mount starts observing the signed-in session. The first value is the
// current session.
func (m *Model) Mount() tea.Cmd {
	m.Unmount()
	if m.account == nil {
		return nil
	}
	m.feed = components.NewFeed(m.account.Subscribe)
	return m.feed.Next()
}

// Unmount stops observing the session. Later session changes are ignored.
func (m *Model) Unmount() {
	if m.feed != nil {
		m.feed.Close()
		m.feed = nil
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Session() accountdto.SessionOutput { return m.session }
func (m Model) Status() string                    { return m.status }
func (m Model) Seq() int                          { return m.seq }
func (m Model) Pending() bool                     { return m.pending }

// Editing reports whether a text field has focus, so global keys should
// pass through as text.
func (m Model) Editing() bool { return m.focus != focusActions }

func (m *Model) SetWidth(w int) { m.width = w }

func (m *Model) SetCredentials(email, password string) {
	m.email.SetValue(email)
	m.password.SetValue(password)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case components.FeedMsg[accountdto.SessionOutput]:
		if m.feed == nil || msg.Feed != m.feed {
			return m, nil
		}
		m.session = msg.Value
		return m, m.feed.Next()

	case ResultMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.pending = false
		m.status = msg.Status
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return m.setFocus((m.focus + 1) % focusCount), nil
	case "shift+tab":
		return m.setFocus((m.focus + focusCount - 1) % focusCount), nil
	}

	if m.focus != focusActions {
		if msg.String() == "enter" {
			return m.setFocus(m.focus + 1), nil
		}
		var cmd tea.Cmd
		if m.focus == focusEmail {
			m.email, cmd = m.email.Update(msg)
		} else {
			m.password, cmd = m.password.Update(msg)
		}
		return m, cmd
	}

	switch s := msg.String(); s {
	case "up", "k":
		m.cursor = (m.cursor + opCount - 1) % opCount
	case "down", "j":
		m.cursor = (m.cursor + 1) % opCount
	case "enter":
		return m.Trigger(m.cursor)
	case "1", "2", "3", "4", "5", "6", "7", "8":
		op := Operation(s[0] - '1')
		m.cursor = op
		return m.Trigger(op)
	}
	return m, nil
}

func (m Model) setFocus(f focusArea) Model {
	m.focus = f
	m.email.Blur()
	m.password.Blur()
	switch f {
	case focusEmail:
		m.email.Focus()
	case focusPassword:
		m.password.Focus()
	}
	return m
}

// Trigger starts op. Any result still outstanding from an earlier operation
// is dropped when it arrives.
func (m Model) Trigger(op Operation) (Model, tea.Cmd) {
	m.seq++
	m.status = ""
	seq := m.seq
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()

	var run func(ctx context.Context) string
	switch op {
	case OpCreateAccount:
		run = func(ctx context.Context) string {
			out, err := m.account.CreateAccount(ctx, email, password)
			if err != nil {
				return "Create account failed: " + err.Error()
			}
			return "Account created: " + out.Email
		}
	case OpSignIn:
		run = func(ctx context.Context) string {
			out, err := m.account.SignIn(ctx, email, password)
			if err != nil {
				return "Sign in failed: " + err.Error()
			}
			return "Signed in: " + out.Email
		}
	case OpSignOut:
		run = func(ctx context.Context) string {
			if err := m.account.SignOut(ctx); err != nil {
				return "Sign out failed: " + err.Error()
			}
			return "Signed out successfully"
		}
	case OpAuthWrite:
		if !m.session.SignedIn {
			m.status = NotSignedInStatus
			m.pending = false
			return m, nil
		}
		uid := m.session.UID
		run = func(ctx context.Context) string {
			out, err := m.notes.AuthenticatedWrite(ctx, uid)
			if err != nil {
				return "Auth write failed: " + err.Error()
			}
			if out.Queued {
				return "Auth write successful: " + out.ID + " (queued offline)"
			}
			return "Auth write successful: " + out.ID
		}
	case OpProbe:
		run = func(ctx context.Context) string {
			out, err := m.notes.Probe(ctx)
			switch {
			case err != nil:
				return "Firestore connection error: " + err.Error()
			case out.Reachable:
				return "Firestore connection OK"
			default:
				return "Firestore connection failed"
			}
		}
	case OpSeed:
		run = func(ctx context.Context) string {
			if _, err := m.notes.SeedSampleData(ctx); err != nil {
				return "Add sample data failed: " + err.Error()
			}
			return "Sample data added successfully"
		}
	case OpFetch:
		run = func(ctx context.Context) string {
			notes, err := m.notes.FetchNotes(ctx)
			if err != nil {
				return "Fetch notes failed: " + err.Error()
			}
			return fmt.Sprintf("Fetched %d notes. See the log for data.", len(notes))
		}
	case OpShowConfig:
		m.status = ConfigStatus(m.cfg)
		m.pending = false
		return m, nil
	default:
		m.pending = false
		return m, nil
	}

	m.pending = true
	return m, tea.Batch(
		func() tea.Msg { return ResultMsg{Seq: seq, Status: run(context.Background())} },
		m.spinner.Tick,
	)
}

// ConfigStatus summarises the Firebase record without revealing the key.
func ConfigStatus(cfg config.Record) string {
	v := cfg.Validate()
	if !v.Valid {
		return "Missing keys: " + strings.Join(v.Missing, ", ")
	}
	return fmt.Sprintf("Firebase config looks complete (api key %s)", config.MaskAPIKey(cfg.APIKey))
}

// ─── view ────────────────────────────────────────────────────────────────────

var (
	labelStyle  = lipgloss.NewStyle().Foreground(theme.Subtext0).Width(10)
	cursorStyle = lipgloss.NewStyle().Foreground(theme.Peach).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(theme.Green)
)

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Firebase debug console") + "\n\n")

	if m.session.SignedIn {
		sb.WriteString(okStyle.Render("● signed in as "+m.session.Email) + theme.Muted.Render("  uid "+m.session.UID) + "\n\n")
	} else {
		sb.WriteString(theme.Muted.Render("○ not signed in") + "\n\n")
	}

	sb.WriteString(labelStyle.Render("Email") + m.email.View() + "\n")
	sb.WriteString(labelStyle.Render("Password") + m.password.View() + "\n\n")

	for op := Operation(0); op < opCount; op++ {
		line := fmt.Sprintf("%d  %s", op+1, op)
		if m.focus == focusActions && op == m.cursor {
			sb.WriteString(cursorStyle.Render("› "+line) + "\n")
			continue
		}
		sb.WriteString("  " + line + "\n")
	}

	sb.WriteString("\n")
	switch {
	case m.pending:
		sb.WriteString(m.spinner.View() + " working…")
	case m.status != "":
		sb.WriteString(theme.Hot.Render(m.status))
	}

	pane := theme.Pane
	if m.focus == focusActions {
		pane = theme.PaneActive
	}
	if m.width > 4 {
		pane = pane.Width(m.width - 2)
	}
	return pane.Render(sb.String())
}
