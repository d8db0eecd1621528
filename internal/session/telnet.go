package session

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/kd9lsv/packetmap/internal/model"
)

// TelnetTransport reaches the local node over its telnet port, the
// standard access method for BPQ32, XRouter and friends. An optional
// SOCKS5 proxy supports operators whose node lives behind a remote
// gateway.
type TelnetTransport struct {
	// Address is the node's telnet listener in "host:port" form.
	Address string

	// User and Password are the node login credentials.
	User     string
	Password string

	// SocksProxy, when set, routes the TCP connection through a SOCKS5
	// proxy at this address.
	SocksProxy string

	// DialTimeout bounds the TCP connect.
	DialTimeout time.Duration

	// LoginTimeout bounds the whole login exchange.
	LoginTimeout time.Duration

	// Policy is the session timeout policy used while reading login
	// prompts. Zero value means DefaultPolicy.
	Policy Policy
}

// Dial connects to the node's telnet port and completes the login
// exchange, returning a conn positioned at the node command prompt.
func (t *TelnetTransport) Dial(ctx context.Context) (Conn, error) {
	dialTimeout := t.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 30 * time.Second
	}

	var d dialer = &net.Dialer{Timeout: dialTimeout}
	if t.SocksProxy != "" {
		socks, err := proxy.SOCKS5("tcp", t.SocksProxy, nil, &net.Dialer{Timeout: dialTimeout})
		if err != nil {
			return nil, fmt.Errorf("socks proxy %s: %w", t.SocksProxy, err)
		}
		ctxDialer, ok := socks.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks proxy %s: dialer does not support context", t.SocksProxy)
		}
		d = ctxDialer
	}

	conn, err := d.DialContext(ctx, "tcp", t.Address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", t.Address, err)
	}

	if err := t.login(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}

// login answers the node's user/password prompts. BPQ-style telnet
// listeners prompt with "user:" then "password:"; XRouter says
// "Callsign:". A listener configured without authentication goes
// straight to the command prompt, which is also accepted.
func (t *TelnetTransport) login(ctx context.Context, conn net.Conn) error {
	policy := t.Policy
	if policy.ReadPoll == 0 {
		policy = DefaultPolicy()
	}
	// No liveness probing during login; the prompts come unprompted.
	policy.LivenessProbe = 0

	loginTimeout := t.LoginTimeout
	if loginTimeout == 0 {
		loginTimeout = 60 * time.Second
	}

	s := New(conn, WithPolicy(policy))

	banner, err := s.collect(ctx, loginTimeout, loginProgress)
	if err != nil {
		return fmt.Errorf("awaiting login prompt: %w", err)
	}

	if wantsUser(banner) {
		if err := s.sendLine(t.User); err != nil {
			return fmt.Errorf("send user: %w", err)
		}
		banner, err = s.collect(ctx, loginTimeout, loginProgress)
		if err != nil {
			return fmt.Errorf("awaiting password prompt: %w", err)
		}
	}

	if wantsPassword(banner) {
		if err := s.sendLine(t.Password); err != nil {
			return fmt.Errorf("send password: %w", err)
		}
		banner, err = s.collect(ctx, loginTimeout, func(buf string) bool {
			return loginRejected(buf) || atPrompt(buf)
		})
		if err != nil {
			return fmt.Errorf("awaiting login result: %w", err)
		}
	}

	if loginRejected(banner) {
		return fmt.Errorf("%w: node at %s rejected credentials", model.ErrAuthenticationFailure, t.Address)
	}
	return nil
}

// loginProgress reports whether the accumulated login output has reached
// a decision point: a credential prompt, a rejection, or the command
// prompt itself.
func loginProgress(buf string) bool {
	return wantsUser(buf) || wantsPassword(buf) || loginRejected(buf) || atPrompt(buf)
}

// wantsUser matches the user/callsign prompt variants.
func wantsUser(buf string) bool {
	upper := strings.ToUpper(buf)
	return strings.HasSuffix(strings.TrimSpace(upper), "USER:") ||
		strings.HasSuffix(strings.TrimSpace(upper), "CALLSIGN:")
}

// wantsPassword matches the password prompt.
func wantsPassword(buf string) bool {
	return strings.HasSuffix(strings.TrimSpace(strings.ToUpper(buf)), "PASSWORD:")
}

// loginRejected matches credential rejection messages.
func loginRejected(buf string) bool {
	upper := strings.ToUpper(buf)
	return strings.Contains(upper, "LOGIN INVALID") ||
		strings.Contains(upper, "ACCESS DENIED") ||
		strings.Contains(upper, "BAD PASSWORD")
}

// atPrompt matches the node command prompt ("ALIAS:CALL-SSID}").
func atPrompt(buf string) bool {
	trimmed := strings.TrimRight(buf, " \r\n")
	return strings.HasSuffix(trimmed, "}")
}
