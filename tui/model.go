package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/meghashyamc/localsearch/services/controller"
	"github.com/meghashyamc/localsearch/ui"
)

// searchSettledMsg arrives once a triggered search has been applied or discarded.
type searchSettledMsg struct{}

// Model is the terminal front end: header, search form and results pane over one controller.
type Model struct {
	controller *controller.Controller
	input      textinput.Model
	spinner    spinner.Model
	snapshot   controller.Snapshot
	quitting   bool
}

func NewModel(searchController *controller.Controller) Model {
	input := textinput.New()
	input.Placeholder = "Enter your search query"
	input.Prompt = "> "
	input.PromptStyle = promptStyle
	input.SetValue(searchController.Query())
	input.Focus()

	return Model{
		controller: searchController,
		input:      input,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		snapshot:   searchController.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.controller.SetQuery(m.input.Value())
			done := m.controller.TriggerSearch()
			m.snapshot = m.controller.Snapshot()
			return m, waitForSearch(done)
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.controller.SetQuery(m.input.Value())
		m.snapshot = m.controller.Snapshot()
		return m, cmd

	case searchSettledMsg:
		m.snapshot = m.controller.Snapshot()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(ui.Title))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.snapshot.Loading {
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading...\n")
	}
	if len(m.snapshot.Error) > 0 {
		b.WriteString(errorStyle.Render(m.snapshot.Error))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(RenderResults(ui.NewPage(m.snapshot).Pane))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: search • esc: quit"))
	b.WriteString("\n")

	return b.String()
}

func waitForSearch(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return searchSettledMsg{}
	}
}

// Run blocks until the user quits or ctx is done. The controller is closed on return.
func Run(ctx context.Context, searchController *controller.Controller) error {
	defer searchController.Close()

	program := tea.NewProgram(NewModel(searchController), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return err
	}

	return nil
}
