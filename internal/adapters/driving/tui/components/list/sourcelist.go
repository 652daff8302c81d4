// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// SourceList displays the articles an answer was grounded on.
type SourceList struct {
	sources  []domain.Source
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSourceList creates a new source list component.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SourceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the source list.
func (l *SourceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *SourceList) Update(msg tea.Msg) (*SourceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			l.MoveUp()
		case tea.KeyDown:
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the source list. Each source takes two lines.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return l.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(l.sources)*2+1)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources))))

	visible := (l.height - 1) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.sources) {
		end = len(l.sources)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderSource(i, l.sources[i]))
	}

	return strings.Join(lines, "\n")
}

func (l *SourceList) renderSource(index int, src domain.Source) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	name := fmt.Sprintf("%s[%d] %s", indicator, index+1, clip(src.SiteName, l.width-20))
	var nameLine string
	if index == l.selected {
		nameLine = l.styles.Selected.Render(name) + " " + l.styles.Muted.Render(src.Country)
	} else {
		nameLine = l.styles.Normal.Render(name) + " " + l.styles.Muted.Render(src.Country)
	}

	return nameLine + "\n" + "      " + l.styles.Link.Render(clip(src.URL, l.width-6))
}

// clip shortens s to n runes.
func clip(s string, n int) string {
	if n < 10 {
		n = 10
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetSources replaces the listed sources and resets the selection.
func (l *SourceList) SetSources(sources []domain.Source) {
	l.sources = sources
	l.selected = 0
}

// Sources returns the listed sources.
func (l *SourceList) Sources() []domain.Source {
	return l.sources
}

// Selected returns the index of the selected source.
func (l *SourceList) Selected() int {
	return l.selected
}

// SelectedSource returns the currently selected source, or nil if none.
func (l *SourceList) SelectedSource() *domain.Source {
	if l.selected < 0 || l.selected >= len(l.sources) {
		return nil
	}
	return &l.sources[l.selected]
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.sources)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SourceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of sources.
func (l *SourceList) Count() int {
	return len(l.sources)
}

// IsEmpty returns whether the list is empty.
func (l *SourceList) IsEmpty() bool {
	return len(l.sources) == 0
}
