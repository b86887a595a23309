package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"firedesk/internal/ui/theme"
)

const OfflineAdvisory = "You are offline. Notes will be saved locally and synced when you are back online."

// ConnectivitySource is satisfied by *connectivity.Monitor.
type ConnectivitySource interface {
	Online() bool
	Subscribe(fn func(online bool)) (unsubscribe func())
}

var bannerStyle = lipgloss.NewStyle().
	Background(theme.Peach).
	Foreground(theme.Base).
	Bold(true).
	Padding(0, 1)

// Banner shows the offline advisory while the host is offline and nothing
// otherwise. It never touches the network itself.
type Banner struct {
	source ConnectivitySource
	feed   *Feed[bool]
	online bool
	width  int
}

func NewBanner(source ConnectivitySource) Banner {
	return Banner{source: source, online: true}
}

// Mount subscribes to the source and takes its current state. The returned
// command delivers the next transition.
func (b *Banner) Mount() tea.Cmd {
	if b.source == nil {
		return nil
	}
	b.Unmount()
	b.feed = NewFeed(b.source.Subscribe)
	b.online = b.source.Online()
	return b.feed.Next()
}

// Unmount drops the subscription. Transitions after this are not observed.
func (b *Banner) Unmount() {
	if b.feed != nil {
		b.feed.Close()
		b.feed = nil
	}
}

func (b *Banner) SetWidth(w int) { b.width = w }

func (b Banner) Online() bool { return b.online }

func (b Banner) Update(msg tea.Msg) (Banner, tea.Cmd) {
	m, ok := msg.(FeedMsg[bool])
	if !ok || b.feed == nil || m.Feed != b.feed {
		return b, nil
	}
	b.online = m.Value
	return b, b.feed.Next()
}

func (b Banner) View() string {
	if b.online {
		return ""
	}
	style := bannerStyle
	if b.width > 0 {
		style = style.Width(b.width)
	}
	return style.Render(OfflineAdvisory)
}
