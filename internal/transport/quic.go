package transport

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

// ALPN for the executor protocol over QUIC.
const ALPN = "pqmsg/1"

// closeGrace: how long an accepted stream waits for the peer to hang up after Close.
const closeGrace = 2 * time.Second

// streamConn wraps quic.Stream as net.Conn; closing it tears down the connection too.
// linger (server side) keeps the connection until the peer closes so buffered
// response bytes still reach it.
type streamConn struct {
	*quic.Stream
	conn   *quic.Conn
	linger bool
}

func (c *streamConn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *streamConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *streamConn) Close() error {
	err := c.Stream.Close()
	if !c.linger {
		_ = c.conn.CloseWithError(0, "")
		return err
	}
	go func() {
		select {
		case <-c.conn.Context().Done():
		case <-time.After(closeGrace):
		}
		_ = c.conn.CloseWithError(0, "")
	}()
	return err
}

// DefaultQUICClientTLS TLS for QUIC client (InsecureSkipVerify, executor ALPN).
func DefaultQUICClientTLS() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS13,
		NextProtos:         []string{ALPN},
	}
}

func quicConfig() *quic.Config {
	return &quic.Config{MaxIdleTimeout: 30 * time.Second}
}

// dialQUIC dials addr, opens one stream, returns net.Conn.
func dialQUIC(ctx context.Context, addr string, tlsConfig *tls.Config) (net.Conn, error) {
	if tlsConfig == nil {
		tlsConfig = DefaultQUICClientTLS()
	}
	conn, err := quic.DialAddr(ctx, addr, tlsConfig, quicConfig())
	if err != nil {
		return nil, err
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "")
		return nil, err
	}
	return &streamConn{Stream: stream, conn: conn}, nil
}

// quicListener: one executor stream per QUIC connection.
type quicListener struct {
	ln *quic.Listener
}

func listenQUIC(addr string, tlsConfig *tls.Config) (*quicListener, error) {
	if tlsConfig == nil {
		var err error
		if tlsConfig, err = SelfSignedTLS(); err != nil {
			return nil, err
		}
	}
	if len(tlsConfig.NextProtos) == 0 {
		tlsConfig = tlsConfig.Clone()
		tlsConfig.NextProtos = []string{ALPN}
	}
	ln, err := quic.ListenAddr(addr, tlsConfig, quicConfig())
	if err != nil {
		return nil, err
	}
	return &quicListener{ln: ln}, nil
}

func (l *quicListener) Accept(ctx context.Context) (net.Conn, error) {
	for {
		conn, err := l.ln.Accept(ctx)
		if err != nil {
			return nil, err
		}
		// the client's first write makes the stream visible here
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			_ = conn.CloseWithError(0, "")
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		return &streamConn{Stream: stream, conn: conn, linger: true}, nil
	}
}

func (l *quicListener) Addr() net.Addr { return l.ln.Addr() }
func (l *quicListener) Close() error   { return l.ln.Close() }
