package session

import "time"

// Default timeout policy values.
// These scale with hop count because packet links are half-duplex: every
// frame must fully turn around at each intermediate node before the next
// transmission, so a response from three hops out can legitimately take
// over a minute on a busy 1200 bps channel.
const (
	// DefaultConnectBase is the floor for a single connect attempt.
	DefaultConnectBase = 20 * time.Second

	// DefaultConnectPerHop is added per remaining hop in the path.
	DefaultConnectPerHop = 20 * time.Second

	// DefaultConnectMax caps connect waits; a link that cannot raise
	// its neighbor inside two minutes is not going to.
	DefaultConnectMax = 120 * time.Second

	// DefaultCommandBase is the floor for one command/response exchange.
	DefaultCommandBase = 5 * time.Second

	// DefaultCommandPerHop is added per hop between us and the node
	// answering the command.
	DefaultCommandPerHop = 10 * time.Second

	// DefaultCommandMax caps command waits.
	DefaultCommandMax = 60 * time.Second

	// DefaultOperationBase is the floor for a complete per-node
	// interrogation (connect plus every command).
	DefaultOperationBase = 2 * time.Minute

	// DefaultOperationPerHop is added per hop for the whole operation.
	DefaultOperationPerHop = 1 * time.Minute

	// DefaultOperationMax caps the whole per-node operation.
	DefaultOperationMax = 12 * time.Minute

	// DefaultLivenessProbe is how long to wait for any sign of life
	// before committing a command to a possibly-dead link.
	DefaultLivenessProbe = 10 * time.Second

	// DefaultReadPoll is the increment for read polling. Total elapsed
	// time is tracked independently, so a hung read can never exceed
	// the configured ceiling regardless of individual poll timeouts.
	DefaultReadPoll = 2 * time.Second

	// DefaultCommandRetries bounds how many times a garbled response
	// causes the same command to be re-sent before the hop is declared
	// failed. RF corruption, not logic errors, is the expected cause.
	DefaultCommandRetries = 2
)

// Policy holds the timeout and retry parameters for one crawl.
type Policy struct {
	ConnectBase   time.Duration
	ConnectPerHop time.Duration
	ConnectMax    time.Duration

	CommandBase   time.Duration
	CommandPerHop time.Duration
	CommandMax    time.Duration

	OperationBase   time.Duration
	OperationPerHop time.Duration
	OperationMax    time.Duration

	LivenessProbe  time.Duration
	ReadPoll       time.Duration
	CommandRetries int
}

// DefaultPolicy returns the policy tuned for degraded simplex RF paths.
func DefaultPolicy() Policy {
	return Policy{
		ConnectBase:     DefaultConnectBase,
		ConnectPerHop:   DefaultConnectPerHop,
		ConnectMax:      DefaultConnectMax,
		CommandBase:     DefaultCommandBase,
		CommandPerHop:   DefaultCommandPerHop,
		CommandMax:      DefaultCommandMax,
		OperationBase:   DefaultOperationBase,
		OperationPerHop: DefaultOperationPerHop,
		OperationMax:    DefaultOperationMax,
		LivenessProbe:   DefaultLivenessProbe,
		ReadPoll:        DefaultReadPoll,
		CommandRetries:  DefaultCommandRetries,
	}
}

// scaled computes base + perHop*hops clamped to max.
func scaled(base, perHop, max time.Duration, hops int) time.Duration {
	if hops < 0 {
		hops = 0
	}
	d := base + time.Duration(hops)*perHop
	if d > max {
		return max
	}
	return d
}

// ConnectTimeout returns the wait for a connect acknowledgement when the
// target sits the given number of hops away.
func (p Policy) ConnectTimeout(hops int) time.Duration {
	return scaled(p.ConnectBase, p.ConnectPerHop, p.ConnectMax, hops)
}

// CommandTimeout returns the wait for one command/response exchange with
// a node the given number of hops away.
func (p Policy) CommandTimeout(hops int) time.Duration {
	return scaled(p.CommandBase, p.CommandPerHop, p.CommandMax, hops)
}

// OperationTimeout returns the budget for a complete per-node operation
// (connect plus full interrogation) at the given hop depth.
func (p Policy) OperationTimeout(hops int) time.Duration {
	return scaled(p.OperationBase, p.OperationPerHop, p.OperationMax, hops)
}
