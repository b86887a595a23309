package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	accountdto "firedesk/internal/modules/account/dto"
	notesdto "firedesk/internal/modules/notes/dto"
	"firedesk/internal/platform/config"
	"firedesk/internal/ui/components"
	"firedesk/internal/ui/theme"
	debugview "firedesk/internal/ui/views/debug"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type accountPort interface {
	CreateAccount(ctx context.Context, email, password string) (accountdto.SessionOutput, error)
	SignIn(ctx context.Context, email, password string) (accountdto.SessionOutput, error)
	SignOut(ctx context.Context) error
	Subscribe(fn func(accountdto.SessionOutput)) func()
}

type notesPort interface {
	debugview.NotesPort
	QueueStatus(ctx context.Context) (notesdto.QueueOutput, error)
	Flush(ctx context.Context) (notesdto.FlushOutput, error)
}

// ─── async messages ───────────────────────────────────────────────────────────

type queueStatusMsg struct {
	out notesdto.QueueOutput
	err error
}

type queueFlushedMsg struct {
	out notesdto.FlushOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Focus   key.Binding
	Run     key.Binding
	Pick    key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Focus:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		Run:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		Pick:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"), key.WithHelp("1-8", "run action")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.Run, k.Pick},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns the offline banner, the help
// overlay and the command palette, and hands everything else to the debug
// panel.
type Model struct {
	notes notesPort

	banner components.Banner
	panel  debugview.Model

	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	width    int
	height   int

	mountCmds []tea.Cmd
}

// NewModel mounts the banner and the panel. Call Close on the final model
// once the program exits.
func NewModel(account accountPort, notes notesPort, cfg config.Record, connectivity components.ConnectivitySource) Model {
	m := Model{
		notes:   notes,
		banner:  components.NewBanner(connectivity),
		panel:   debugview.New(account, notes, cfg),
		keys:    defaultKeys(),
		help:    help.New(),
		palette: components.NewPalette(),
		status:  "ready",
	}
	m.mountCmds = []tea.Cmd{m.banner.Mount(), m.panel.Mount()}
	return m
}

// Close releases the banner and session subscriptions.
func (m Model) Close() {
	m.banner.Unmount()
	m.panel.Unmount()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(append([]tea.Cmd{m.panel.Init()}, m.mountCmds...)...)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.banner.SetWidth(m.width)
		m.panel.SetWidth(m.width)
		return m, nil

	case components.FeedMsg[bool]:
		var cmd tea.Cmd
		m.banner, cmd = m.banner.Update(msg)
		return m, cmd

	case queueStatusMsg:
		switch {
		case msg.err != nil:
			m.status = "queue status failed: " + msg.err.Error()
		case !msg.out.Enabled:
			m.status = "offline queue disabled"
		default:
			m.status = fmt.Sprintf("offline queue: %d pending, %d rejected", msg.out.Pending, msg.out.Rejected)
		}
		return m, nil

	case queueFlushedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("queue flush stopped after %d: %s", msg.out.Replayed, msg.err.Error())
		} else {
			m.status = fmt.Sprintf("queue flushed: %d replayed, %d pending, %d rejected", msg.out.Replayed, msg.out.Remaining, msg.out.Rejected)
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// Text fields get every printable key.
		if !m.panel.Editing() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "?":
				m.showHelp = true
				return m, nil
			case ":":
				return m, m.palette.Open()
			}
		}
	}

	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	banner := m.banner.View()
	statusBar := m.renderStatusBar()

	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if banner != "" {
		contentH -= lipgloss.Height(banner)
	}
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.panel.View()
	}

	parts := []string{header}
	if banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, content, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	dot := theme.Green
	state := "online"
	if !m.banner.Online() {
		dot, state = theme.Peach, "offline"
	}
	bar := theme.Hot.Render("firedesk") + "  " + lipgloss.NewStyle().Foreground(dot).Render("● "+state)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if s := m.panel.Session(); s.SignedIn {
		left = theme.Hot.Render("● "+s.Email) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:focus  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

var paletteOps = map[string]debugview.Operation{
	"auth:signup":  debugview.OpCreateAccount,
	"auth:signin":  debugview.OpSignIn,
	"auth:signout": debugview.OpSignOut,
	"notes:write":  debugview.OpAuthWrite,
	"notes:probe":  debugview.OpProbe,
	"notes:seed":   debugview.OpSeed,
	"notes:fetch":  debugview.OpFetch,
	"config:show":  debugview.OpShowConfig,
}

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "auth:signup", "auth:signin":
		if len(parts) == 3 {
			m.panel.SetCredentials(parts[1], parts[2])
		} else if len(parts) != 1 {
			m.status = "usage: " + parts[0] + " [email password]"
			return m, nil
		}
	case "queue:status":
		return m, m.queueStatusCmd()
	case "queue:flush":
		return m, m.queueFlushCmd()
	}

	op, ok := paletteOps[parts[0]]
	if !ok {
		m.status = "unknown command: " + parts[0]
		return m, nil
	}
	m.status = op.String()
	var cmd tea.Cmd
	m.panel, cmd = m.panel.Trigger(op)
	return m, cmd
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) queueStatusCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.notes.QueueStatus(context.Background())
		return queueStatusMsg{out: out, err: err}
	}
}

func (m Model) queueFlushCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.notes.Flush(context.Background())
		return queueFlushedMsg{out: out, err: err}
	}
}
