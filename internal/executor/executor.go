// Package executor answers PQC requests: decode header + body, run the KEM operation,
// encode the response. One goroutine per caller connection; requests on a connection are
// handled in order.
package executor

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"dev.c0redev.pqmsg/internal/crypto"
	"dev.c0redev.pqmsg/internal/proto"
	"dev.c0redev.pqmsg/internal/store"
)

var (
	ErrNoAlgorithm = errors.New("executor: operation needs an algorithm")
	ErrBody        = errors.New("executor: malformed request body")
)

// Journal records handled requests (internal/store.DB).
type Journal interface {
	Record(e store.Entry) error
}

// Options for New. Zero values: nop logger, no journal, proto.MaxPayloadSize.
type Options struct {
	Logger     *zerolog.Logger
	Journal    Journal
	MaxPayload int
}

// Executor is safe for concurrent use.
type Executor struct {
	log        zerolog.Logger
	journal    Journal
	maxPayload int
	schemes    func(proto.Algorithm) (crypto.Scheme, error)
}

func New(opts Options) *Executor {
	e := &Executor{
		log:        zerolog.Nop(),
		journal:    opts.Journal,
		maxPayload: opts.MaxPayload,
		schemes:    crypto.ForAlgorithm,
	}
	if opts.Logger != nil {
		e.log = *opts.Logger
	}
	if e.maxPayload <= 0 {
		e.maxPayload = proto.MaxPayloadSize
	}
	return e
}

// Handle runs req and returns the encoded response (header + payload). Every failure
// of the request itself becomes a Success -1 response; err is only set when no
// response can be encoded.
func (e *Executor) Handle(req proto.Request) ([]byte, error) {
	payload, runErr := e.run(req)
	if runErr != nil {
		payload = nil
		e.log.Debug().Err(runErr).
			Uint64("id", req.Header.Identifier).
			Stringer("alg", req.Header.Algorithm).
			Stringer("op", req.Header.Operation).
			Msg("request failed")
	}
	out, err := proto.EncodeResponse(req.Header.Identifier, payload)
	if err != nil {
		return nil, err
	}
	e.record(req.Header, len(req.Body), len(out)-proto.ResponseHeaderSize, runErr)
	return out, nil
}

func (e *Executor) run(req proto.Request) ([]byte, error) {
	h := req.Header
	if err := h.CheckVersion(); err != nil {
		return nil, err
	}
	if uint64(len(req.Body)) != uint64(h.DataLen) {
		return nil, fmt.Errorf("%w: header says %d bytes, got %d", ErrBody, h.DataLen, len(req.Body))
	}
	if h.Operation == proto.NoOperation {
		return []byte{}, nil
	}
	if h.Algorithm == proto.NoAlgorithm {
		return nil, ErrNoAlgorithm
	}
	scheme, err := e.schemes(h.Algorithm)
	if err != nil {
		return nil, err
	}
	switch h.Operation {
	case proto.KeypairGeneration:
		pub, priv, err := scheme.GenerateKeyPair()
		if err != nil {
			return nil, err
		}
		return proto.PackEntries(pub, priv), nil
	case proto.Encapsulation:
		ct, ss, err := scheme.Encapsulate(req.Body)
		if err != nil {
			return nil, err
		}
		return proto.PackEntries(ct, ss), nil
	case proto.Decapsulation:
		in, err := proto.UnpackEntries(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBody, err)
		}
		return scheme.Decapsulate(in.First, in.Second)
	default:
		return nil, fmt.Errorf("%w: %v", proto.ErrDeserialization, h.Operation)
	}
}

func (e *Executor) record(h proto.RequestHeader, requestBytes, responseBytes int, runErr error) {
	if e.journal == nil {
		return
	}
	entry := store.Entry{
		Identifier:    h.Identifier,
		Version:       h.Version,
		Algorithm:     h.Algorithm,
		Operation:     h.Operation,
		Success:       runErr == nil,
		RequestBytes:  requestBytes,
		ResponseBytes: responseBytes,
	}
	if runErr != nil {
		entry.Reason = runErr.Error()
	}
	if err := e.journal.Record(entry); err != nil {
		e.log.Warn().Err(err).Msg("journal")
	}
}
