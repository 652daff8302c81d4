// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateAsking   State = "asking"
	StateAnswered State = "answered"
	StateError    State = "error"
	StateHelp     State = "help"
)

// Bar displays application status and keybinding hints. A spinner runs
// while a question is being answered.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	spinner     spinner.Model
	state       State
	message     string
	sourceCount int
	width       int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &Bar{
		styles:  s,
		keymap:  km,
		spinner: sp,
		state:   StateReady,
		width:   80,
	}
}

// Init initialises the status bar.
func (b *Bar) Init() tea.Cmd {
	return nil
}

// Update advances the spinner while asking.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || b.state != StateAsking {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(msg)
	return b, cmd
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the left side of the status bar.
func (b *Bar) renderLeft() string {
	switch b.state {
	case StateAsking:
		return b.spinner.View() + b.styles.Muted.Render(" Thinking...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render(fmt.Sprintf("Error: %s", b.message))
		}
		return b.styles.Error.Render("Error")
	case StateHelp:
		return b.styles.Normal.Render("Help")
	case StateAnswered:
		return b.styles.Normal.Render(sourcesLabel(b.sourceCount))
	case StateReady:
		if b.message != "" {
			return b.styles.Muted.Render(b.message)
		}
	}
	return b.styles.Muted.Render("Ready")
}

func sourcesLabel(n int) string {
	switch n {
	case 0:
		return "No sources"
	case 1:
		return "1 source"
	default:
		return fmt.Sprintf("%d sources", n)
	}
}

// renderRight renders keybinding hints.
func (b *Bar) renderRight() string {
	bindings := b.bindings()
	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// StartAsking switches to the asking state and returns the command that
// drives the spinner.
func (b *Bar) StartAsking() tea.Cmd {
	b.state = StateAsking
	b.message = ""
	return b.spinner.Tick
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a custom message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetSourceCount sets the number of sources of the current answer.
func (b *Bar) SetSourceCount(count int) {
	b.sourceCount = count
}

// SourceCount returns the number of sources of the current answer.
func (b *Bar) SourceCount() int {
	return b.sourceCount
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the status bar to default state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.sourceCount = 0
}

// bindings returns the keybindings hinted for the current state.
func (b *Bar) bindings() []key.Binding {
	if b.state == StateAnswered {
		return b.keymap.AnswerHelp()
	}
	return b.keymap.ShortHelp()
}
