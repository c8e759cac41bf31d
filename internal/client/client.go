// Package client is the caller side: send a request to an executor, wait for its response.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"dev.c0redev.pqmsg/internal/proto"
	"dev.c0redev.pqmsg/internal/transport"
)

var (
	// ErrRejected: the executor answered with a failure response.
	ErrRejected = errors.New("client: executor rejected request")
	// ErrMismatch: response identifier does not match the request.
	ErrMismatch = errors.New("client: response identifier mismatch")
)

// Client: one connection, one outstanding request at a time.
type Client struct {
	conn   net.Conn
	r      *bufio.Reader
	mu     sync.Mutex
	nextID atomic.Uint64
}

// Dial connects to an executor (see transport.Dial).
func Dial(ctx context.Context, network, addr string) (*Client, error) {
	conn, err := transport.Dial(ctx, network, addr, nil)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// New wraps an established connection.
func New(conn net.Conn) *Client {
	return &Client{conn: conn, r: bufio.NewReader(conn)}
}

func (c *Client) Close() error { return c.conn.Close() }

// Call sends one request and returns the response payload. Ending ctx aborts the
// pending read or write; the response may then still be in flight, so callers should
// drop the Client after a ctx error.
func (c *Client) Call(ctx context.Context, alg proto.Algorithm, op proto.Operation, body []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetDeadline(time.Now()) })
	defer stop()

	id := c.nextID.Add(1)
	if err := proto.WriteRequest(c.conn, id, alg, op, body); err != nil {
		return nil, c.ctxErr(ctx, err)
	}
	res, err := proto.ReadResponse(c.r, 0)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, c.ctxErr(ctx, err)
	}
	if res.Header.Identifier != id {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrMismatch, id, res.Header.Identifier)
	}
	if !res.Header.OK() {
		return nil, fmt.Errorf("%w: %v %v", ErrRejected, alg, op)
	}
	return res.Body, nil
}

func (c *Client) ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Ping sends NoOperation.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Call(ctx, proto.NoAlgorithm, proto.NoOperation, nil)
	return err
}

// GenerateKeyPair asks the executor for a key pair.
func (c *Client) GenerateKeyPair(ctx context.Context, alg proto.Algorithm) (public, private []byte, err error) {
	body, err := c.Call(ctx, alg, proto.KeypairGeneration, nil)
	if err != nil {
		return nil, nil, err
	}
	e, err := proto.UnpackEntries(body)
	if err != nil {
		return nil, nil, err
	}
	return e.First, e.Second, nil
}

// Encapsulate returns (ciphertext, shared secret) for public.
func (c *Client) Encapsulate(ctx context.Context, alg proto.Algorithm, public []byte) (ciphertext, shared []byte, err error) {
	body, err := c.Call(ctx, alg, proto.Encapsulation, public)
	if err != nil {
		return nil, nil, err
	}
	e, err := proto.UnpackEntries(body)
	if err != nil {
		return nil, nil, err
	}
	return e.First, e.Second, nil
}

// Decapsulate recovers the shared secret for ciphertext.
func (c *Client) Decapsulate(ctx context.Context, alg proto.Algorithm, private, ciphertext []byte) ([]byte, error) {
	return c.Call(ctx, alg, proto.Decapsulation, proto.PackEntries(private, ciphertext))
}
