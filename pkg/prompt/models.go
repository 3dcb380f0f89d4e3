package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// inputModel asks for one line of text.
type inputModel struct {
	title    string
	input    textinput.Model
	validate func(string) error

	err       error
	value     string
	done      bool
	cancelled bool
}

func newInputModel(opts InputOptions) inputModel {
	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	ti.SetValue(opts.Default)
	ti.CharLimit = opts.CharLimit
	ti.Width = 60
	if opts.Secret {
		ti.EchoMode = textinput.EchoPassword
	}
	ti.Focus()

	return inputModel{
		title:    opts.Title,
		input:    ti,
		validate: opts.Validate,
	}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(keyMsg, keys.Submit):
			value := strings.TrimSpace(m.input.Value())
			if m.validate != nil {
				if err := m.validate(value); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.value = value
			m.done = true
			return m, tea.Quit
		}
		m.err = nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter to confirm • esc to cancel"))
	b.WriteString("\n")
	return b.String()
}

// selectModel picks one entry of a list.
type selectModel struct {
	title   string
	options []string
	cursor  int

	chosen    int
	done      bool
	cancelled bool
}

func newSelectModel(title string, options []string, initial int) selectModel {
	if initial < 0 || initial >= len(options) {
		initial = 0
	}
	return selectModel{
		title:   title,
		options: options,
		cursor:  initial,
		chosen:  -1,
	}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.options) - 1
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}
	case key.Matches(keyMsg, keys.Submit):
		m.chosen = m.cursor
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	for i, opt := range m.options {
		line := fmt.Sprintf("%d. %s", i+1, opt)
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("› " + line))
		} else {
			b.WriteString(optionStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ to move • enter to select • esc to cancel"))
	b.WriteString("\n")
	return b.String()
}
