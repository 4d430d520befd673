// Package prompt holds the interactive collaborators of a propagation: picking
// the starting conduit, confirming a multi-junction-box push, reporting
// problems to the user and highlighting the annotated elements.
package prompt

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// Message is a user-visible notification.
type Message struct {
	Header string `json:"header"`
	Sub    string `json:"sub,omitempty"`
	Text   string `json:"text"`
}

func (m Message) String() string {
	if m.Sub == "" {
		return fmt.Sprintf("%s: %s", m.Header, m.Text)
	}
	return fmt.Sprintf("%s (%s): %s", m.Header, m.Sub, m.Text)
}

// Candidate is an element the user may pick.
type Candidate struct {
	ID       model.ElementID
	Name     string
	Category string
}

// Selector picks the starting element and shows the result.
type Selector interface {
	// PickElement returns ok=false when the user cancels.
	PickElement(ctx context.Context, candidates []Candidate) (id model.ElementID, ok bool, err error)
	Highlight(ids []model.ElementID) error
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, header, text string) (bool, error)
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(msg Message)
}
