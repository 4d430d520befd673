package prompt

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

type candidateItem struct {
	Candidate
}

func (i candidateItem) Title() string {
	if i.Name == "" {
		return fmt.Sprintf("#%d", i.ID)
	}
	return fmt.Sprintf("%s (#%d)", i.Name, i.ID)
}

func (i candidateItem) Description() string { return i.Category }

func (i candidateItem) FilterValue() string { return fmt.Sprintf("%s %d", i.Name, i.ID) }

type pickerKeyMap struct {
	Choose key.Binding
	Cancel key.Binding
}

var pickerKeys = pickerKeyMap{
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "cancel"),
	),
}

// pickerModel lists candidates and ends with either a choice or a cancel.
type pickerModel struct {
	list      list.Model
	keys      pickerKeyMap
	chosen    model.ElementID
	cancelled bool
}

func newPicker(title string, candidates []Candidate) pickerModel {
	items := make([]list.Item, len(candidates))
	for i, c := range candidates {
		items[i] = candidateItem{c}
	}

	l := list.New(items, list.NewDefaultDelegate(), 64, 20)
	l.Title = title
	l.Styles.Title = titleStyle
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{pickerKeys.Choose, pickerKeys.Cancel}
	}

	return pickerModel{list: l, keys: pickerKeys}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// While the filter input is open, keys belong to the list. Esc on an
		// applied filter clears it.
		if m.list.FilterState() == list.Filtering {
			break
		}
		if m.list.FilterState() == list.FilterApplied && msg.String() == "esc" {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Choose):
			item, ok := m.list.SelectedItem().(candidateItem)
			if !ok {
				m.cancelled = true
			} else {
				m.chosen = item.ID
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return m.list.View()
}
