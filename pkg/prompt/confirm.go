package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type confirmKeyMap struct {
	Yes    key.Binding
	No     key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Enter  key.Binding
	Cancel key.Binding
}

var confirmKeys = confirmKeyMap{
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:     key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "yes")),
	Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "no")),
	Toggle: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "toggle")),
	Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "answer")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "no")),
}

// confirmModel is a yes/no dialog. It starts on No.
type confirmModel struct {
	header string
	text   string
	keys   confirmKeyMap
	yes    bool
	done   bool
}

func newConfirm(header, text string) confirmModel {
	return confirmModel{header: header, text: text, keys: confirmKeys}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.yes, m.done = true, true
	case key.Matches(keyMsg, m.keys.No), key.Matches(keyMsg, m.keys.Cancel):
		m.yes, m.done = false, true
	case key.Matches(keyMsg, m.keys.Left):
		m.yes = true
	case key.Matches(keyMsg, m.keys.Right):
		m.yes = false
	case key.Matches(keyMsg, m.keys.Toggle):
		m.yes = !m.yes
	case key.Matches(keyMsg, m.keys.Enter):
		m.done = true
	}

	if m.done {
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	yes, no := inactiveButtonStyle, activeButtonStyle
	if m.yes {
		yes, no = activeButtonStyle, inactiveButtonStyle
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.header))
	b.WriteString("\n\n")
	b.WriteString(m.text)
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, yes.Render("Yes"), "  ", no.Render("No")))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("y/n answer • ←/→ move • enter confirm • esc no"))
	return boxStyle.Render(b.String())
}
