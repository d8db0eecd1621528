package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/kd9lsv/packetmap/internal/model"
)

// Hop is one segment of a multi-hop connection path.
type Hop struct {
	// Target is the node this hop connects to.
	Target model.Callsign

	// Port is the local port number for direct connects.
	Port int

	// Alias is the NET/ROM alias to dial for routed connects; empty
	// means dial the target callsign itself.
	Alias string

	// Direct marks a first-hop port connect. The link layer only
	// exposes direct ports on the first hop from the local station;
	// every later hop must be a routed alias connect.
	Direct bool
}

// connectCommand renders the hop as a node connect command.
func (h Hop) connectCommand() string {
	if h.Direct {
		return fmt.Sprintf("C %d %s", h.Port, h.Target)
	}
	if h.Alias != "" {
		return "C " + h.Alias
	}
	return "C " + h.Target.String()
}

// ErrDirectHopNotFirst is returned when a path asks for a direct port
// connect anywhere but the first hop.
var ErrDirectHopNotFirst = errors.New("direct port connect only valid on the first hop")

// Session drives one command/response conversation with a chain of nodes
// over a single half-duplex channel. It owns the timeout bookkeeping: all
// reads poll in small increments while total elapsed time is tracked
// separately, so no single hung read can exceed the configured ceiling.
type Session struct {
	conn    Conn
	policy  Policy
	logger  *slog.Logger
	decoder *encoding.Decoder

	// depth is the number of hops between the local station and the
	// node currently answering commands. Timeouts scale with it.
	depth int

	// opDeadline bounds the whole per-node operation when set.
	opDeadline time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithPolicy sets a custom timeout policy.
func WithPolicy(p Policy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New wraps an established node connection in a Session.
//
// Remote node output is decoded as ISO 8859-1: packet terminals predate
// UTF-8 and sysop banners regularly carry high-bit characters that would
// otherwise corrupt the parse.
func New(conn Conn, opts ...Option) *Session {
	s := &Session{
		conn:    conn,
		policy:  DefaultPolicy(),
		decoder: charmap.ISO8859_1.NewDecoder(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Depth returns the current hop depth.
func (s *Session) Depth() int {
	return s.depth
}

// BeginOperation arms the overall per-node operation deadline for a
// target at the given hop depth. Every subsequent read honors it in
// addition to its own per-exchange timeout.
func (s *Session) BeginOperation(hops int) {
	s.opDeadline = time.Now().Add(s.policy.OperationTimeout(hops))
}

// Close releases the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// RunPath executes a connection path hop by hop. Execution stops at the
// first hop that does not connect; the partial outcome list tells the
// orchestrator exactly where the path died so it can try an alternate
// parent. A hop failure here never condemns the destination node.
func (s *Session) RunPath(ctx context.Context, hops []Hop) ([]model.HopOutcome, error) {
	outcomes := make([]model.HopOutcome, 0, len(hops))

	for i, hop := range hops {
		if hop.Direct && i != 0 {
			return outcomes, ErrDirectHopNotFirst
		}

		// Cancellation is observed between hops, never mid-read.
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		remaining := len(hops) - i
		outcome := s.connectHop(ctx, hop, remaining)
		outcomes = append(outcomes, outcome)

		if outcome.Status != model.HopConnected {
			return outcomes, nil
		}
		s.depth++
	}

	return outcomes, nil
}

// connectHop issues one connect command and classifies the response.
func (s *Session) connectHop(ctx context.Context, hop Hop, remaining int) model.HopOutcome {
	start := time.Now()
	cmd := hop.connectCommand()

	s.logger.Debug("connecting hop",
		"target", hop.Target.String(),
		"command", cmd,
		"remaining", remaining,
		"timeout", s.policy.ConnectTimeout(remaining),
	)

	if err := s.sendLine(cmd); err != nil {
		return model.HopOutcome{
			Target:  hop.Target,
			Status:  model.HopTimedOut,
			Elapsed: time.Since(start),
			Detail:  err.Error(),
		}
	}

	response, err := s.collect(ctx, s.policy.ConnectTimeout(remaining), func(buf string) bool {
		return classifyConnect(buf) != connectPending
	})
	elapsed := time.Since(start)

	switch {
	case err != nil:
		return model.HopOutcome{Target: hop.Target, Status: model.HopTimedOut, Elapsed: elapsed, Detail: strings.TrimSpace(response)}
	case classifyConnect(response) == connectOK:
		return model.HopOutcome{Target: hop.Target, Status: model.HopConnected, Elapsed: elapsed, Detail: strings.TrimSpace(response)}
	default:
		return model.HopOutcome{Target: hop.Target, Status: model.HopRejected, Elapsed: elapsed, Detail: strings.TrimSpace(response)}
	}
}

// connectVerdict classifies partial connect output.
type connectVerdict int

const (
	connectPending connectVerdict = iota
	connectOK
	connectFailed
)

// classifyConnect scans accumulated connect output for a verdict. The
// marker strings are shared across node families; anything else means
// the link is still trying.
func classifyConnect(buf string) connectVerdict {
	upper := strings.ToUpper(buf)
	switch {
	case strings.Contains(upper, "CONNECTED TO"):
		return connectOK
	case strings.Contains(upper, "BUSY"),
		strings.Contains(upper, "FAILURE WITH"),
		strings.Contains(upper, "INVALID CALL"),
		strings.Contains(upper, "NOT FOUND"),
		strings.Contains(upper, "ATTEMPT ABANDONED"):
		return connectFailed
	default:
		return connectPending
	}
}

// Command performs one command/response exchange with the node at the
// current hop depth. A liveness probe precedes the command so a silently
// dead link fails in seconds instead of consuming the full command
// timeout.
func (s *Session) Command(ctx context.Context, cmd string) (string, error) {
	if s.policy.LivenessProbe > 0 {
		if err := s.probe(ctx); err != nil {
			return "", fmt.Errorf("liveness probe before %q: %w", cmd, err)
		}
	}

	if err := s.sendLine(cmd); err != nil {
		return "", fmt.Errorf("send %q: %w", cmd, err)
	}

	response, err := s.collectUntilIdle(ctx, s.policy.CommandTimeout(s.depth))
	if err != nil {
		return response, err
	}
	return response, nil
}

// CommandExpect runs Command and validates the response, re-sending the
// same command a bounded number of times when validation fails. Garbled
// RF output is the expected failure mode; re-asking usually fixes it.
func (s *Session) CommandExpect(ctx context.Context, cmd string, valid func(string) bool) (string, error) {
	attempts := 1 + s.policy.CommandRetries

	var lastResponse string
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return lastResponse, err
		}

		response, err := s.Command(ctx, cmd)
		if err != nil {
			return response, err
		}
		if valid == nil || valid(response) {
			return response, nil
		}

		lastResponse = response
		s.logger.Warn("response failed validation, re-sending",
			"command", cmd,
			"attempt", attempt,
			"of", attempts,
		)
	}

	return lastResponse, fmt.Errorf("%w: %q after %d attempts", model.ErrProtocolParse, cmd, attempts)
}

// probe pokes the link with a bare carriage return and waits briefly for
// any data at all. Nodes re-print their prompt on an empty line, so a
// living link answers within a round trip.
func (s *Session) probe(ctx context.Context) error {
	if err := s.sendLine(""); err != nil {
		return err
	}
	_, err := s.collect(ctx, s.policy.LivenessProbe, func(buf string) bool {
		return len(buf) > 0
	})
	if err != nil {
		return fmt.Errorf("%w: link silent for %v", model.ErrConnectionTimeout, s.policy.LivenessProbe)
	}
	return nil
}

// sendLine writes one command line with the CR terminator packet
// terminals expect.
func (s *Session) sendLine(line string) error {
	_, err := s.conn.Write([]byte(line + "\r"))
	return err
}

// collect reads in ReadPoll increments until done reports completion,
// the total budget elapses, the operation deadline passes, or the context
// is cancelled. Whatever arrived is always returned alongside the error
// so callers can salvage partial output.
func (s *Session) collect(ctx context.Context, total time.Duration, done func(string) bool) (string, error) {
	deadline := time.Now().Add(total)
	if !s.opDeadline.IsZero() && s.opDeadline.Before(deadline) {
		deadline = s.opDeadline
	}

	var buf strings.Builder
	chunk := make([]byte, 1024)

	for {
		if err := ctx.Err(); err != nil {
			return buf.String(), err
		}

		now := time.Now()
		if !now.Before(deadline) {
			return buf.String(), fmt.Errorf("%w: no complete response within %v", model.ErrConnectionTimeout, total)
		}

		poll := s.policy.ReadPoll
		if remaining := deadline.Sub(now); remaining < poll {
			poll = remaining
		}
		_ = s.conn.SetReadDeadline(now.Add(poll))

		n, err := s.conn.Read(chunk)
		if n > 0 {
			buf.WriteString(s.decode(chunk[:n]))
			if done != nil && done(buf.String()) {
				return buf.String(), nil
			}
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if errors.Is(err, io.EOF) {
				return buf.String(), fmt.Errorf("link closed: %w", err)
			}
			return buf.String(), err
		}
	}
}

// collectUntilIdle reads until the link has been quiet for two poll
// intervals after producing at least some data. Node command output has
// no reliable terminator across software families; going quiet is the
// only portable end-of-response signal.
func (s *Session) collectUntilIdle(ctx context.Context, total time.Duration) (string, error) {
	deadline := time.Now().Add(total)
	if !s.opDeadline.IsZero() && s.opDeadline.Before(deadline) {
		deadline = s.opDeadline
	}

	var buf strings.Builder
	chunk := make([]byte, 1024)
	quietPolls := 0

	for {
		if err := ctx.Err(); err != nil {
			return buf.String(), err
		}

		now := time.Now()
		if !now.Before(deadline) {
			if buf.Len() > 0 {
				// Partial output at deadline is still output; the
				// parser skip-counts whatever got mangled.
				return buf.String(), nil
			}
			return "", fmt.Errorf("%w: no response within %v", model.ErrConnectionTimeout, total)
		}

		poll := s.policy.ReadPoll
		if remaining := deadline.Sub(now); remaining < poll {
			poll = remaining
		}
		_ = s.conn.SetReadDeadline(now.Add(poll))

		n, err := s.conn.Read(chunk)
		if n > 0 {
			buf.WriteString(s.decode(chunk[:n]))
			quietPolls = 0
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				if buf.Len() > 0 {
					quietPolls++
					if quietPolls >= 2 {
						return buf.String(), nil
					}
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				if buf.Len() > 0 {
					return buf.String(), nil
				}
				return "", fmt.Errorf("link closed: %w", err)
			}
			return buf.String(), err
		}
	}
}

// decode converts raw terminal bytes to UTF-8.
func (s *Session) decode(raw []byte) string {
	decoded, err := s.decoder.Bytes(raw)
	if err != nil {
		// ISO 8859-1 decoding cannot fail, but fall back to the raw
		// bytes rather than dropping data.
		return string(raw)
	}
	return string(decoded)
}
