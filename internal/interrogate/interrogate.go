package interrogate

import (
	"context"
	"log/slog"
	"time"

	"github.com/kd9lsv/packetmap/internal/model"
	"github.com/kd9lsv/packetmap/internal/parser"
)

// Commander is the command/response surface a pipeline needs from an
// established node session. Satisfied by *session.Session; tests supply
// a scripted fake.
type Commander interface {
	// Command performs one command/response exchange.
	Command(ctx context.Context, cmd string) (string, error)

	// CommandExpect performs an exchange and re-sends on validation
	// failure, within the session's retry budget.
	CommandExpect(ctx context.Context, cmd string, valid func(string) bool) (string, error)
}

// Visit accumulates everything learned from one node interrogation.
// Steps fill it in sequence; the crawler folds a completed Visit into
// the map document afterwards.
type Visit struct {
	// Target is the node being interrogated.
	Target model.Callsign

	// StartedAt is when the interrogation began.
	StartedAt time.Time

	// Ports is the parsed PORTS table, nil when the step did not run.
	Ports *parser.PortList

	// Routes is the parsed ROUTES table.
	Routes *parser.RoutesTable

	// Nodes is the parsed NODES table.
	Nodes *parser.NodesTable

	// Heard holds one parsed MHEARD list per interrogated port.
	Heard []*parser.HeardList

	// Info is the raw INFO output, the sysop's free-text description.
	Info string

	// Software is the detected node software family.
	Software model.SoftwareFamily

	// Performed lists the steps that ran, in order.
	Performed []string

	// StepErrors records per-step failures without aborting the visit.
	StepErrors map[string]error
}

// NewVisit creates a Visit for a target.
func NewVisit(target model.Callsign) *Visit {
	return &Visit{
		Target:     target,
		StartedAt:  time.Now(),
		StepErrors: make(map[string]error),
	}
}

// Complete reports whether the interrogation gathered its essential
// output. ROUTES is the one table a visit cannot do without: it is both
// the identity evidence and the frontier source. Everything else is
// enrichment.
func (v *Visit) Complete() bool {
	return v.Routes != nil && v.StepErrors["routes"] == nil
}

// Step is one stage of a node interrogation. Steps run in sequence
// against the shared Visit.
//
// Design decision: an interface rather than a function type, so steps can
// carry their session handle and per-step configuration, and report a
// name for logging.
type Step interface {
	// Do executes the step, recording results on the visit. A returned
	// error marks the step failed; it does not abort the pipeline.
	Do(ctx context.Context, visit *Visit) error

	// Name identifies the step in logs and on the visit.
	Name() string
}

// Pipeline runs interrogation steps in order against one node.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline. Steps are added with AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps in execution order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepCount returns the number of configured steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// Execute runs every step in order. A step failure is recorded on the
// visit and the next step still runs: one garbled table must not waste
// the minutes already spent reaching the node. Only context cancellation
// stops the pipeline early, checked between steps so a save can happen
// at a clean boundary.
func (p *Pipeline) Execute(ctx context.Context, visit *Visit) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("interrogation cancelled",
				"target", visit.Target.String(),
				"step", step.Name(),
			)
			return err
		}

		p.logger.Debug("running step",
			"target", visit.Target.String(),
			"step", step.Name(),
		)

		if err := step.Do(ctx, visit); err != nil {
			p.logger.Warn("step failed",
				"target", visit.Target.String(),
				"step", step.Name(),
				"error", err,
			)
			visit.StepErrors[step.Name()] = err
		}

		visit.Performed = append(visit.Performed, step.Name())
	}
	return nil
}

// DefaultSteps returns the standard interrogation sequence. PORTS runs
// first because MHEARD is queried per port; INFO runs last because it is
// pure enrichment.
func DefaultSteps(c Commander) []Step {
	return []Step{
		&PortsStep{commander: c},
		&RoutesStep{commander: c},
		&NodesStep{commander: c},
		&MheardStep{commander: c},
		&InfoStep{commander: c},
	}
}
