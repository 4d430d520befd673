package prompt

import (
	"context"
	"sync"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// Fixed is a Selector that always picks ID. A zero ID cancels.
// Highlighted records the last highlight.
type Fixed struct {
	ID model.ElementID

	mu          sync.Mutex
	highlighted []model.ElementID
}

// NewFixed returns a selector that picks id.
func NewFixed(id model.ElementID) *Fixed {
	return &Fixed{ID: id}
}

func (f *Fixed) PickElement(ctx context.Context, _ []Candidate) (model.ElementID, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	return f.ID, f.ID != 0, nil
}

func (f *Fixed) Highlight(ids []model.ElementID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.highlighted = append([]model.ElementID(nil), ids...)
	return nil
}

// Highlighted returns the ids passed to the last Highlight call.
func (f *Fixed) Highlighted() []model.ElementID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ElementID(nil), f.highlighted...)
}

// Answer is a Confirmer that always gives the same answer.
type Answer bool

func (a Answer) Confirm(ctx context.Context, _, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(a), nil
}

// Recorder is a Notifier and Confirmer that keeps what it was shown.
// Its Confirm answers with Reply.
type Recorder struct {
	Reply bool

	mu        sync.Mutex
	messages  []Message
	questions []Message
}

func (r *Recorder) Notify(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *Recorder) Confirm(ctx context.Context, header, text string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, Message{Header: header, Text: text})
	return r.Reply, nil
}

// Messages returns the notifications received so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Questions returns the confirmations asked so far.
func (r *Recorder) Questions() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.questions...)
}
