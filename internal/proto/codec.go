package proto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var ErrShortRead = errors.New("proto: short read")

// WriteRequest writes 21-byte header + body to w.
func WriteRequest(w io.Writer, identifier uint64, alg Algorithm, op Operation, body []byte) error {
	if uint64(len(body)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(body))
	}
	var header [RequestHeaderSize]byte
	if err := EncodeRequestHeader(header[:], identifier, uint32(len(body)), alg, op); err != nil {
		return err
	}
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return err
		}
	}
	return nil
}

// ReadRequest reads one request; body is exactly header.DataLen bytes, at most maxBody
// (<= 0 = MaxPayloadSize). Version is left to the caller. io.EOF only on a clean boundary.
// On ErrDeserialization (bad enum ordinal) the body is still consumed and the returned
// header carries Version, Identifier and DataLen, so the stream stays in sync and the
// caller can answer that identifier.
func ReadRequest(r io.Reader, maxBody int) (Request, error) {
	var header [RequestHeaderSize]byte
	if err := readHeader(r, header[:]); err != nil {
		return Request{}, err
	}
	h, decErr := DecodeRequestHeader(header[:])
	if decErr != nil {
		h = RequestHeader{
			Version:    header[0],
			Identifier: binary.LittleEndian.Uint64(header[1:9]),
			DataLen:    binary.LittleEndian.Uint32(header[9:13]),
		}
	}
	body, err := readBody(r, h.DataLen, maxBody)
	if err != nil {
		return Request{}, err
	}
	if decErr != nil {
		return Request{Header: h}, decErr
	}
	return NewRequest(h, body), nil
}

// WriteResponse writes EncodeResponse(identifier, data) to w.
func WriteResponse(w io.Writer, identifier uint64, data []byte) error {
	b, err := EncodeResponse(identifier, data)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadResponse reads one response, enforcing FormatVersion before trusting DataLen.
func ReadResponse(r io.Reader, maxBody int) (Response, error) {
	var header [ResponseHeaderSize]byte
	if err := readHeader(r, header[:]); err != nil {
		return Response{}, err
	}
	h, err := DecodeResponseHeader(header[:])
	if err != nil {
		return Response{}, err
	}
	if err := h.CheckVersion(); err != nil {
		return Response{}, err
	}
	body, err := readBody(r, h.DataLen, maxBody)
	if err != nil {
		return Response{}, err
	}
	return Response{Header: h, Body: body}, nil
}

func readHeader(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return ErrShortRead
		}
		return err
	}
	return nil
}

func readBody(r io.Reader, n uint32, maxBody int) ([]byte, error) {
	if maxBody <= 0 {
		maxBody = MaxPayloadSize
	}
	if uint64(n) > uint64(maxBody) {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, n, maxBody)
	}
	body := make([]byte, n)
	if n == 0 {
		return body, nil
	}
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrShortRead
		}
		return nil, err
	}
	return body, nil
}
