package executor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"dev.c0redev.pqmsg/internal/proto"
	"dev.c0redev.pqmsg/internal/transport"
)

// ServeConn reads requests from conn until EOF, ctx end, or a framing error it can't
// recover from, answering each in order. A request with bad enum ordinals or a foreign
// version gets a failure response and a journal entry; the connection stays up.
func (e *Executor) ServeConn(ctx context.Context, conn io.ReadWriteCloser) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	r := bufio.NewReader(conn)
	for {
		req, err := proto.ReadRequest(r, e.maxPayload)
		switch {
		case err == nil:
		case errors.Is(err, proto.ErrDeserialization):
			e.log.Debug().Err(err).Uint64("id", req.Header.Identifier).Msg("undecodable request")
			if werr := proto.WriteResponse(conn, req.Header.Identifier, nil); werr != nil {
				return werr
			}
			// ordinals unknown: journaled as NoAlgorithm/NoOperation, reason carries the value
			e.record(req.Header, int(req.Header.DataLen), 0, err)
			continue
		case errors.Is(err, io.EOF):
			return nil
		default:
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		out, err := e.Handle(req)
		if err != nil {
			return err
		}
		if _, err := conn.Write(out); err != nil {
			return err
		}
	}
}

// Serve accepts callers on ln until ctx ends; each conn runs ServeConn on its own goroutine.
// Returns nil after ctx is done and every connection has finished.
func (e *Executor) Serve(ctx context.Context, ln transport.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			remote := remoteAddr(conn)
			e.log.Debug().Str("remote", remote).Msg("caller connected")
			if err := e.ServeConn(ctx, conn); err != nil {
				e.log.Warn().Err(err).Str("remote", remote).Msg("connection closed")
				return
			}
			e.log.Debug().Str("remote", remote).Msg("caller done")
		}()
	}
}

func remoteAddr(conn net.Conn) string {
	if a := conn.RemoteAddr(); a != nil && a.String() != "" {
		return a.String()
	}
	return "local"
}
