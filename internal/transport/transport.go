// Package transport carries executor messages: unix/tcp sockets or QUIC streams.
// It only moves bytes; framing lives in internal/proto.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
)

// Listener yields one bidirectional stream per caller.
type Listener interface {
	Accept(ctx context.Context) (net.Conn, error)
	Addr() net.Addr
	Close() error
}

// Listen opens network ("unix", "tcp", "quic") at addr. tlsConfig only applies to quic
// (nil = self-signed).
func Listen(network, addr string, tlsConfig *tls.Config) (Listener, error) {
	switch network {
	case "quic":
		return listenQUIC(addr, tlsConfig)
	case "unix":
		// stale socket from a previous run
		if fi, err := os.Stat(addr); err == nil && fi.Mode()&os.ModeSocket != 0 {
			_ = os.Remove(addr)
		}
		ln, err := net.Listen("unix", addr)
		if err != nil {
			return nil, err
		}
		// key material crosses this socket
		if err := os.Chmod(addr, 0600); err != nil {
			ln.Close()
			return nil, err
		}
		return &netListener{ln: ln}, nil
	case "tcp":
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		return &netListener{ln: ln}, nil
	default:
		return nil, fmt.Errorf("transport: unknown network %q", network)
	}
}

// Dial connects to an executor. tlsConfig only applies to quic (nil = skip verify).
func Dial(ctx context.Context, network, addr string, tlsConfig *tls.Config) (net.Conn, error) {
	switch network {
	case "quic":
		return dialQUIC(ctx, addr, tlsConfig)
	case "unix", "tcp":
		var d net.Dialer
		return d.DialContext(ctx, network, addr)
	default:
		return nil, fmt.Errorf("transport: unknown network %q", network)
	}
}

type netListener struct {
	ln net.Listener
}

func (l *netListener) Accept(ctx context.Context) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := l.ln.Accept()
		ch <- result{c, err}
	}()
	select {
	case r := <-ch:
		return r.conn, r.err
	case <-ctx.Done():
		// unblock the pending Accept; Listener is unusable afterwards
		l.ln.Close()
		if r := <-ch; r.conn != nil {
			r.conn.Close()
		}
		return nil, ctx.Err()
	}
}

func (l *netListener) Addr() net.Addr { return l.ln.Addr() }
func (l *netListener) Close() error   { return l.ln.Close() }
