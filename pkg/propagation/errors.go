package propagation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-conduit/pkg/prompt"
)

// Header titles every message a propagation shows to the user.
const Header = "Conduit To Jbox Params"

var (
	// ErrMissingParameter is returned when a required text parameter is not
	// defined on an element. Nothing has been written when it is returned.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrNotConduit is returned when the start element is not a run segment.
	ErrNotConduit = errors.New("start element is not a conduit")
)

// UserError is a failure the user is told about once, as a single message,
// however many elements caused it.
type UserError struct {
	Sub   string
	Text  string
	Count int // offending elements, when more than one element is checked
	Err   error
}

func (e *UserError) Error() string {
	if e.Count > 0 {
		return fmt.Sprintf("%s (%d elements): %v", e.Text, e.Count, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Text, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Message returns the notification for the error.
func (e *UserError) Message() prompt.Message {
	return prompt.Message{Header: Header, Sub: e.Sub, Text: e.Text}
}

// AsUserError reports whether err carries a UserError.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// quoteNames renders names as 'A', 'B', or 'C'.
func quoteNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	switch len(quoted) {
	case 0:
		return ""
	case 1:
		return quoted[0]
	default:
		return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
	}
}

func missingParametersError(names []string, loadedFor string, count int) *UserError {
	return &UserError{
		Sub:   "Parameters",
		Text:  fmt.Sprintf("You do not have the %s parameters loaded for %s.", quoteNames(names), loadedFor),
		Count: count,
		Err:   ErrMissingParameter,
	}
}
