// Package propagation copies a conduit's run parameters across its run network.
//
// A propagation has three phases that can be run and tested on their own:
// Discover walks the network, Decide validates parameters and asks the user
// what to do, and Apply writes every parameter in a single transaction.
package propagation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-conduit/pkg/audit"
	"github.com/dd0wney/cluso-conduit/pkg/connectivity"
	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/metrics"
	"github.com/dd0wney/cluso-conduit/pkg/model"
	"github.com/dd0wney/cluso-conduit/pkg/prompt"
	"github.com/dd0wney/cluso-conduit/pkg/traversal"
)

// Store is the part of the building model a propagation reads and writes.
type Store interface {
	Element(id model.ElementID) (*model.Element, error)
	ElementsByCategory(category string) []model.ElementID
	Update(fn func(tx *model.Transaction) error) error
}

var _ Store = (*model.Model)(nil)

// Propagator runs propagations against one model.
type Propagator struct {
	store      Store
	graph      connectivity.Graph
	classifier *connectivity.Classifier

	selector  prompt.Selector
	confirmer prompt.Confirmer
	notifier  prompt.Notifier

	runParameters     []string
	fixtureParameters []string
	traversalOpts     []traversal.Option

	audit           audit.Logger
	metrics         *metrics.Registry
	logger          logging.Logger
	traversalLogger logging.Logger
	actor           string
}

// New creates a propagator over store, walking graph.
func New(store Store, graph connectivity.Graph, opts ...Option) *Propagator {
	p := &Propagator{
		store:             store,
		graph:             graph,
		classifier:        connectivity.DefaultClassifier(),
		runParameters:     append([]string(nil), DefaultRunParameters...),
		fixtureParameters: append([]string(nil), DefaultFixtureParameters...),
		logger:            logging.NewNopLogger(),
		actor:             "cli",
	}
	for _, opt := range opts {
		opt(p)
	}
	base := p.logger
	p.logger = base.With(logging.Component("propagation"))
	p.traversalLogger = base.With(logging.Component("traversal"))
	return p
}

// Request describes one propagation. Zero fields fall back to the propagator's settings.
type Request struct {
	Start     model.ElementID
	Actor     string
	Confirmer prompt.Confirmer
}

// Classify returns the classification of element id under the propagator's classifier.
func (p *Propagator) Classify(id model.ElementID) (connectivity.Classification, error) {
	el, err := p.store.Element(id)
	if err != nil {
		return connectivity.Unclassified, err
	}
	return p.classifier.Classify(el.Category)
}

// Candidates lists the elements that may start a propagation, sorted by id.
func (p *Propagator) Candidates() []prompt.Candidate {
	var out []prompt.Candidate
	for _, category := range p.classifier.Categories(connectivity.RunSegment) {
		for _, id := range p.store.ElementsByCategory(category) {
			el, err := p.store.Element(id)
			if err != nil {
				continue
			}
			out = append(out, prompt.Candidate{ID: id, Name: el.Name, Category: el.Category})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Run picks a conduit, propagates from it and highlights the result.
// A cancelled pick returns an Outcome with Cancelled set and no error.
// Failures the user should see are also sent to the notifier.
func (p *Propagator) Run(ctx context.Context) (*Outcome, error) {
	if p.selector == nil {
		return nil, errors.New("propagation: no selector configured")
	}

	id, ok, err := p.selector.PickElement(ctx, p.Candidates())
	if err != nil {
		return nil, fmt.Errorf("pick element: %w", err)
	}
	if !ok {
		out := &Outcome{OperationID: uuid.New().String(), Cancelled: true}
		p.logger.Info("propagation cancelled", logging.OperationID(out.OperationID))
		if p.metrics != nil {
			p.metrics.RecordPropagation("cancelled", 0, nil)
		}
		p.recordAudit(audit.NewRunEvent(p.actor, audit.ActionPropagate, 0, audit.StatusCancelled).
			With("operation_id", out.OperationID))
		return out, nil
	}

	out, err := p.Propagate(ctx, Request{Start: id})
	if err != nil {
		if ue, ok := AsUserError(err); ok {
			p.notify(ue.Message())
		}
		return nil, err
	}

	for _, notice := range out.Plan.Notices {
		p.notify(notice)
	}
	if err := p.selector.Highlight(out.Plan.Highlight); err != nil {
		return out, fmt.Errorf("highlight: %w", err)
	}
	return out, nil
}

// Propagate runs the three phases from req.Start and records the operation.
func (p *Propagator) Propagate(ctx context.Context, req Request) (*Outcome, error) {
	out := &Outcome{OperationID: uuid.New().String(), Start: req.Start}
	logger := p.logger.With(logging.OperationID(out.OperationID), logging.ElementID(uint64(req.Start)))
	timer := logging.StartTimer(logger, "propagation")
	began := time.Now()

	err := p.propagate(ctx, req, out, logger)

	actor := req.Actor
	if actor == "" {
		actor = p.actor
	}
	p.record(actor, out, err, time.Since(began))

	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	timer.End(logging.Count(out.Writes), logging.Bool("declined", out.Plan.Declined))
	return out, nil
}

func (p *Propagator) propagate(ctx context.Context, req Request, out *Outcome, logger logging.Logger) error {
	network, err := p.Discover(req.Start)
	if err != nil {
		return err
	}
	out.Network = network

	if err := ctx.Err(); err != nil {
		return err
	}

	confirmer := req.Confirmer
	if confirmer == nil {
		confirmer = p.confirmer
	}
	plan, err := p.decide(ctx, network, confirmer)
	if err != nil {
		return err
	}
	out.Plan = plan

	if err := ctx.Err(); err != nil {
		return err
	}

	writes, err := p.apply(plan)
	if err != nil {
		return err
	}
	out.WritesByClass = writes
	for _, n := range writes {
		out.Writes += n
	}

	for _, notice := range plan.Notices {
		logger.Warn("junction boxes not annotated", logging.String("reason", notice.Text))
	}
	return nil
}

// Discover walks the run network from start. It reads the model only.
func (p *Propagator) Discover(start model.ElementID) (*traversal.Result, error) {
	began := time.Now()
	opts := append([]traversal.Option{traversal.WithLogger(p.traversalLogger)}, p.traversalOpts...)
	network, err := traversal.Traverse(p.graph, start, opts...)

	if p.metrics != nil {
		if err != nil {
			p.metrics.RecordTraversal(traversalStatus(err), time.Since(began), 0, 0, 0)
		} else {
			_, _, jboxes := network.Counts()
			p.metrics.RecordTraversal("success", time.Since(began), len(network.Visited()), len(network.Skipped()), jboxes)
		}
	}
	if err != nil {
		return nil, err
	}
	return network, nil
}

// Decide validates the network and builds the plan. It asks confirmer before
// pushing to more than one junction box; a nil confirmer declines.
func (p *Propagator) Decide(ctx context.Context, network *traversal.Result, confirmer prompt.Confirmer) (*Plan, error) {
	return p.decide(ctx, network, confirmer)
}

func (p *Propagator) decide(ctx context.Context, network *traversal.Result, confirmer prompt.Confirmer) (*Plan, error) {
	start := network.Start()
	if class, _ := network.Classification(start); class != connectivity.RunSegment {
		return nil, &UserError{Sub: "Selection", Text: "The selected element is not a conduit.", Err: ErrNotConduit}
	}

	source, err := p.store.Element(start)
	if err != nil {
		return nil, err
	}
	if !hasAll(source, p.runParameters) {
		return nil, missingParametersError(p.runParameters, "conduits", 0)
	}

	plan := &Plan{
		Source:                start,
		Values:                make(map[string]string, len(p.runParameters)),
		Runs:                  network.RunIDs(),
		Fittings:              network.FittingIDs(),
		JunctionBoxes:         network.ConnectedJboxIDs(),
		AnnotateJunctionBoxes: true,
		runParameters:         p.runParameters,
		fixtureParameters:     p.fixtureParameters,
	}
	for _, name := range p.runParameters {
		plan.Values[name] = source.Parameters[name]
	}

	offending, err := p.countMissing(append(append([]model.ElementID(nil), plan.Runs...), plan.Fittings...), p.runParameters)
	if err != nil {
		return nil, err
	}
	if offending > 0 {
		return nil, missingParametersError(p.runParameters, "conduits and conduit fittings", offending)
	}

	if err := network.RequireJunctionBoxes(); err != nil {
		return nil, &UserError{Sub: "Junction Boxes", Text: "This conduit run is not connected to a junction box.", Err: err}
	}

	if len(plan.JunctionBoxes) > 1 {
		yes, err := p.confirm(ctx, confirmer, len(plan.JunctionBoxes))
		if err != nil {
			return nil, err
		}
		if !yes {
			plan.AnnotateJunctionBoxes = false
			plan.Declined = true
		}
	}

	if plan.AnnotateJunctionBoxes {
		offending, err := p.countMissing(plan.JunctionBoxes, p.fixtureParameters)
		if err != nil {
			return nil, err
		}
		if offending > 0 {
			plan.AnnotateJunctionBoxes = false
			plan.Notices = append(plan.Notices, missingParametersError(p.fixtureParameters, "electrical fixtures", offending).Message())
		}
	}

	plan.Highlight = append(append([]model.ElementID(nil), plan.Runs...), plan.Fittings...)
	if plan.AnnotateJunctionBoxes || plan.Declined {
		plan.Highlight = append(plan.Highlight, plan.JunctionBoxes...)
	}
	sort.Slice(plan.Highlight, func(i, j int) bool { return plan.Highlight[i] < plan.Highlight[j] })

	return plan, nil
}

func (p *Propagator) confirm(ctx context.Context, confirmer prompt.Confirmer, jboxes int) (bool, error) {
	if confirmer == nil {
		return false, nil
	}
	text := fmt.Sprintf("There is more than one junction box attached to this conduit run. "+
		"Would you like to push the parameters from the conduit run to all %d junction boxes?", jboxes)
	yes, err := confirmer.Confirm(ctx, Header, text)
	if err != nil {
		return false, fmt.Errorf("confirm: %w", err)
	}
	if p.metrics != nil {
		p.metrics.RecordConfirmation(yes)
	}
	return yes, nil
}

func (p *Propagator) countMissing(ids []model.ElementID, names []string) (int, error) {
	n := 0
	for _, id := range ids {
		el, err := p.store.Element(id)
		if err != nil {
			return 0, err
		}
		if !hasAll(el, names) {
			n++
		}
	}
	return n, nil
}

func hasAll(el *model.Element, names []string) bool {
	for _, name := range names {
		if !el.HasParameter(name) {
			return false
		}
	}
	return true
}

// Apply performs every write of plan in one transaction and returns the
// number of writes. On error nothing is written.
func (p *Propagator) Apply(plan *Plan) (int, error) {
	writes, err := p.apply(plan)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range writes {
		total += n
	}
	return total, nil
}

func (p *Propagator) apply(plan *Plan) (map[string]int, error) {
	writes := make(map[string]int)
	set := func(tx *model.Transaction, ids []model.ElementID, names []string, class connectivity.Classification) error {
		for _, id := range ids {
			for _, name := range names {
				if err := tx.SetParameter(id, name, plan.Values[name]); err != nil {
					return err
				}
				writes[class.String()]++
			}
		}
		return nil
	}

	err := p.store.Update(func(tx *model.Transaction) error {
		if err := set(tx, plan.Runs, plan.runParameters, connectivity.RunSegment); err != nil {
			return err
		}
		if err := set(tx, plan.Fittings, plan.runParameters, connectivity.Fitting); err != nil {
			return err
		}
		if plan.AnnotateJunctionBoxes {
			return set(tx, plan.JunctionBoxes, plan.fixtureParameters, connectivity.JunctionBox)
		}
		return nil
	})
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordCommit("rolled_back")
		}
		return nil, fmt.Errorf("annotate run network: %w", err)
	}
	if p.metrics != nil {
		p.metrics.RecordCommit("committed")
	}
	return writes, nil
}

func (p *Propagator) record(actor string, out *Outcome, err error, elapsed time.Duration) {
	label := outcomeLabel(out, err)
	if p.metrics != nil {
		p.metrics.RecordPropagation(label, elapsed, out.WritesByClass)
	}

	event := audit.NewRunEvent(actor, audit.ActionPropagate, uint64(out.Start), audit.StatusSuccess).
		With("operation_id", out.OperationID).
		With("outcome", label).
		With("duration_ms", elapsed.Milliseconds())
	switch {
	case err != nil && label == "cancelled":
		event.Status = audit.StatusCancelled
		event.ErrorMessage = err.Error()
	case err != nil:
		event.Fail(err)
	default:
		runs, fittings, jboxes := out.Network.Counts()
		event.With("runs", runs).
			With("fittings", fittings).
			With("junction_boxes", jboxes).
			With("writes", out.Writes).
			With("declined", out.Plan.Declined)
	}
	p.recordAudit(event)
}

func (p *Propagator) recordAudit(event *audit.Event) {
	if p.audit == nil {
		return
	}
	if err := p.audit.Log(event); err != nil {
		p.logger.Warn("audit log failed", logging.Error(err))
	}
}

func (p *Propagator) notify(msg prompt.Message) {
	if p.notifier != nil {
		p.notifier.Notify(msg)
	}
}

func outcomeLabel(out *Outcome, err error) string {
	switch {
	case err == nil && out.Plan != nil && out.Plan.Declined:
		return "declined"
	case err == nil:
		return "completed"
	case errors.Is(err, ErrMissingParameter):
		return "missing_parameter"
	case errors.Is(err, traversal.ErrEmptyJunctionBoxSet):
		return "empty_junction_box_set"
	case errors.Is(err, traversal.ErrInvalidStartElement):
		return "invalid_start"
	case errors.Is(err, ErrNotConduit):
		return "not_conduit"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "failed"
	}
}

func traversalStatus(err error) string {
	switch {
	case errors.Is(err, traversal.ErrInvalidStartElement):
		return "invalid_start"
	case errors.Is(err, traversal.ErrVisitLimitExceeded):
		return "limit_exceeded"
	default:
		return "error"
	}
}
