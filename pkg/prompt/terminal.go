package prompt

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

var (
	_ Selector  = (*Terminal)(nil)
	_ Confirmer = (*Terminal)(nil)
	_ Notifier  = (*Terminal)(nil)
	_ Selector  = (*Fixed)(nil)
	_ Confirmer = Answer(false)
	_ Confirmer = (*Recorder)(nil)
	_ Notifier  = (*Recorder)(nil)
)

// Terminal implements Selector, Confirmer and Notifier on an interactive terminal.
type Terminal struct {
	in  io.Reader
	out io.Writer
	mu  sync.Mutex
}

// NewTerminal uses in and out, defaulting to stdin and stdout when nil.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{in: in, out: out}
}

func (t *Terminal) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("terminal prompt: %w", err)
	}
	return final, nil
}

// PickElement shows a filterable list of candidates.
func (t *Terminal) PickElement(ctx context.Context, candidates []Candidate) (model.ElementID, bool, error) {
	if len(candidates) == 0 {
		return 0, false, nil
	}
	final, err := t.run(ctx, newPicker("Select a Conduit", candidates))
	if err != nil {
		return 0, false, err
	}
	m := final.(pickerModel)
	if m.cancelled {
		return 0, false, nil
	}
	return m.chosen, true, nil
}

// Confirm shows a yes/no dialog.
func (t *Terminal) Confirm(ctx context.Context, header, text string) (bool, error) {
	final, err := t.run(ctx, newConfirm(header, text))
	if err != nil {
		return false, err
	}
	return final.(confirmModel).yes, nil
}

// Notify prints msg in a bordered box.
func (t *Terminal) Notify(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, renderMessage(msg))
}

// Highlight prints the ids of the annotated elements.
func (t *Terminal) Highlight(ids []model.ElementID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.out, renderSelection(ids))
	return err
}

func renderMessage(msg Message) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(msg.Header))
	if msg.Sub != "" {
		b.WriteString("\n")
		b.WriteString(subStyle.Render(msg.Sub))
	}
	b.WriteString("\n\n")
	b.WriteString(msg.Text)
	return boxStyle.Render(b.String())
}

func renderSelection(ids []model.ElementID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return successStyle.Render(fmt.Sprintf("Selected %d elements", len(ids))) + "\n" + strings.Join(parts, ", ")
}
