package session

import (
	"context"
	"net"
	"time"
)

// Conn is the byte stream to the local node's terminal interface.
// net.Conn satisfies it; tests substitute a scripted fake.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// Transport establishes and authenticates the terminal connection to the
// local node. The session layer never dials directly: how the operator
// reaches their own node (telnet, serial bridge, SOCKS-tunneled telnet)
// is the transport's business.
type Transport interface {
	// Dial connects to the local node and completes any login
	// exchange, returning a conn positioned at the node command
	// prompt. Returns model.ErrAuthenticationFailure (wrapped) when
	// credentials are rejected.
	Dial(ctx context.Context) (Conn, error)
}

// dialer abstracts net.Dialer for SOCKS substitution.
type dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}
