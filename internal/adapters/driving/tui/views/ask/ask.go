// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
)

// noCountry is the country index meaning no filter.
const noCountry = -1

// View is the main screen: question input, country filter, answer panel,
// source list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	answer    viewport.Model
	sources   *list.SourceList
	statusbar *status.Bar

	answerService  driving.AnswerService
	countryService driving.CountryService
	ctx            context.Context

	countries []string
	country   int

	question string
	result   *domain.Answer
	asking   bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a new ask view. countryService may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	answerService driving.AnswerService,
	countryService driving.CountryService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:         s,
		keymap:         km,
		input:          input.NewQuestionInput(s),
		answer:         viewport.New(80, 10),
		sources:        list.NewSourceList(s),
		statusbar:      status.NewBar(s, km),
		answerService:  answerService,
		countryService: countryService,
		ctx:            context.Background(),
		country:        noCountry,
		width:          80,
		height:         24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the cursor blink and loads the country filter.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.loadCountries())
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.CountriesLoaded:
		v.handleCountries(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.statusbar, cmd = v.statusbar.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Ask):
		return v, v.submit()

	case keymap.Matches(k, v.keymap.NextCountry):
		v.cycleCountry(1)
		return v, nil

	case keymap.Matches(k, v.keymap.PrevCountry):
		v.cycleCountry(-1)
		return v, nil

	case keymap.Matches(k, v.keymap.ClearCountry):
		v.country = noCountry
		return v, nil

	case keymap.Matches(k, v.keymap.Up):
		v.sources.MoveUp()
		return v, nil

	case keymap.Matches(k, v.keymap.Down):
		v.sources.MoveDown()
		return v, nil

	case keymap.Matches(k, v.keymap.ScrollUp):
		v.answer.SetYOffset(v.answer.YOffset - v.answer.Height/2)
		return v, nil

	case keymap.Matches(k, v.keymap.ScrollDown):
		v.answer.SetYOffset(v.answer.YOffset + v.answer.Height/2)
		return v, nil

	case keymap.Matches(k, v.keymap.Back):
		v.clearAnswer()
		return v, nil
	}

	if v.asking {
		return v, nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the current question unless one is already in flight.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.asking {
		return nil
	}

	v.asking = true
	v.question = question
	v.err = nil
	v.input.Blur()
	return tea.Batch(v.statusbar.StartAsking(), v.ask(question, v.Country()))
}

func (v *View) ask(question, country string) tea.Cmd {
	return func() tea.Msg {
		if v.answerService == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoAnswerService}
		}
		answer, err := v.answerService.Ask(v.ctx, question, domain.FilterFromCountry(country))
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) loadCountries() tea.Cmd {
	if v.countryService == nil {
		return nil
	}
	return func() tea.Msg {
		countries, err := v.countryService.ListCountries(v.ctx)
		return messages.CountriesLoaded{Countries: countries, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.asking = false
	v.input.Focus()

	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.result = msg.Answer
	v.answer.SetContent(v.renderAnswer())
	v.answer.GotoTop()
	v.sources.SetSources(msg.Answer.Sources)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetSourceCount(len(msg.Answer.Sources))
	v.input.Reset()
}

func (v *View) handleCountries(msg messages.CountriesLoaded) {
	if msg.Err != nil {
		v.countries = nil
		v.country = noCountry
		v.statusbar.SetMessage("Country filter unavailable")
		return
	}
	v.countries = msg.Countries
	if v.country >= len(v.countries) {
		v.country = noCountry
	}
	if v.statusbar.State() == status.StateReady {
		v.statusbar.SetMessage(fmt.Sprintf("%d countries indexed", len(v.countries)))
	}
}

func (v *View) setError(err error) {
	v.asking = false
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// cycleCountry moves the filter by step through "all" and each country.
func (v *View) cycleCountry(step int) {
	n := len(v.countries) + 1
	if n == 1 {
		return
	}
	pos := (v.country + 1 + step + n) % n
	v.country = pos - 1
}

func (v *View) clearAnswer() {
	if v.asking {
		return
	}
	v.result = nil
	v.question = ""
	v.err = nil
	v.answer.SetContent("")
	v.sources.SetSources(nil)
	v.statusbar.Clear()
	v.input.Focus()
}

func (v *View) renderAnswer() string {
	if v.result == nil {
		return ""
	}
	width := v.width - 4
	if width < 20 {
		width = 20
	}
	question := v.styles.Subtitle.Render("Q: " + v.question)
	body := v.styles.Answer.Width(width).Render(v.result.Text)
	return question + "\n\n" + body
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections,
		v.styles.Title.Render("World Heritage Q&A"),
		"",
		v.input.View(),
		v.renderCountry(),
		"",
	)

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.result != nil {
		sections = append(sections, v.answer.View(), "", v.sources.View())
	} else if !v.asking {
		sections = append(sections, v.styles.Muted.Render("Type a question and press enter."))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderCountry() string {
	label := v.styles.Muted.Render("Country: ")
	if v.countryService == nil {
		return label + v.styles.Muted.Render("n/a")
	}
	if v.country == noCountry {
		return label + v.styles.Normal.Render("All")
	}
	return label + v.styles.Country.Render(v.countries[v.country])
}

// SetDimensions sets the view dimensions and lays out the components.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// header, input, country, gaps and status bar take about ten lines;
	// the rest is split between answer and sources.
	body := height - 10
	if body < 6 {
		body = 6
	}
	v.input.SetWidth(width)
	v.answer.Width = width
	v.answer.Height = body * 2 / 3
	v.sources.SetDimensions(width, body-v.answer.Height)
	v.statusbar.SetWidth(width)
	if v.result != nil {
		v.answer.SetContent(v.renderAnswer())
	}
}

// Country returns the selected country, or "" for all countries.
func (v *View) Country() string {
	if v.country == noCountry || v.country >= len(v.countries) {
		return ""
	}
	return v.countries[v.country]
}

// Countries returns the countries available as filters.
func (v *View) Countries() []string {
	return v.countries
}

// Answer returns the current answer, or nil.
func (v *View) Answer() *domain.Answer {
	return v.result
}

// Question returns the value of the question input.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the value of the question input.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// Asking reports whether a question is in flight.
func (v *View) Asking() bool {
	return v.asking
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}
