package propagation

import (
	"github.com/dd0wney/cluso-conduit/pkg/audit"
	"github.com/dd0wney/cluso-conduit/pkg/connectivity"
	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/metrics"
	"github.com/dd0wney/cluso-conduit/pkg/prompt"
	"github.com/dd0wney/cluso-conduit/pkg/traversal"
)

// Default parameter names, as defined by the shared electrical parameters.
var (
	DefaultRunParameters     = []string{"From", "To", "Wire Size", "Comments", "Set(s)"}
	DefaultFixtureParameters = []string{"From", "To", "Wire Size", "Comments"}
)

// Option configures a Propagator.
type Option func(*Propagator)

// WithSelector sets the element picker used by Run.
func WithSelector(s prompt.Selector) Option {
	return func(p *Propagator) { p.selector = s }
}

// WithConfirmer sets who is asked before pushing to several junction boxes.
// Without one the push is declined.
func WithConfirmer(c prompt.Confirmer) Option {
	return func(p *Propagator) { p.confirmer = c }
}

// WithNotifier sets where user-visible failures are reported.
func WithNotifier(n prompt.Notifier) Option {
	return func(p *Propagator) { p.notifier = n }
}

// WithParameters overrides the run and fixture parameter names.
func WithParameters(run, fixture []string) Option {
	return func(p *Propagator) {
		if len(run) > 0 {
			p.runParameters = append([]string(nil), run...)
		}
		if len(fixture) > 0 {
			p.fixtureParameters = append([]string(nil), fixture...)
		}
	}
}

// WithClassifier sets the classifier used to list conduit candidates.
func WithClassifier(c *connectivity.Classifier) Option {
	return func(p *Propagator) {
		if c != nil {
			p.classifier = c
		}
	}
}

// WithTraversalOptions passes options to every traversal.
func WithTraversalOptions(opts ...traversal.Option) Option {
	return func(p *Propagator) { p.traversalOpts = append(p.traversalOpts, opts...) }
}

// WithAudit records every operation in l.
func WithAudit(l audit.Logger) Option {
	return func(p *Propagator) { p.audit = l }
}

// WithMetrics records every operation in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(p *Propagator) { p.metrics = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Propagator) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithActor names who runs operations in the audit trail.
func WithActor(actor string) Option {
	return func(p *Propagator) { p.actor = actor }
}
