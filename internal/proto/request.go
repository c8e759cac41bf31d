package proto

import (
	"encoding/binary"
	"fmt"
)

// EncodeRequestHeader stamps FormatVersion and writes the header into buf[:RequestHeaderSize].
// Nothing is written on error.
func EncodeRequestHeader(buf []byte, identifier uint64, dataLen uint32, alg Algorithm, op Operation) error {
	if len(buf) < RequestHeaderSize {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, RequestHeaderSize, len(buf))
	}
	h := RequestHeader{
		Version:    FormatVersion,
		Identifier: identifier,
		DataLen:    dataLen,
		Algorithm:  alg,
		Operation:  op,
	}
	return h.put(buf)
}

// AppendRequestHeader appends the encoded header (current FormatVersion) to dst.
func AppendRequestHeader(dst []byte, identifier uint64, dataLen uint32, alg Algorithm, op Operation) ([]byte, error) {
	var b [RequestHeaderSize]byte
	if err := EncodeRequestHeader(b[:], identifier, dataLen, alg, op); err != nil {
		return dst, err
	}
	return append(dst, b[:]...), nil
}

func (h RequestHeader) put(buf []byte) error {
	if !h.Algorithm.Valid() {
		return fmt.Errorf("%w: %v", ErrSerialization, h.Algorithm)
	}
	if !h.Operation.Valid() {
		return fmt.Errorf("%w: %v", ErrSerialization, h.Operation)
	}
	buf[0] = h.Version
	binary.LittleEndian.PutUint64(buf[1:9], h.Identifier)
	binary.LittleEndian.PutUint32(buf[9:13], h.DataLen)
	binary.LittleEndian.PutUint32(buf[13:17], uint32(h.Algorithm))
	binary.LittleEndian.PutUint32(buf[17:21], uint32(h.Operation))
	return nil
}

// MarshalBinary encodes h as is (Version included).
func (h RequestHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, RequestHeaderSize)
	if err := h.put(b); err != nil {
		return nil, err
	}
	return b, nil
}

// UnmarshalBinary is DecodeRequestHeader into h.
func (h *RequestHeader) UnmarshalBinary(b []byte) error {
	dec, err := DecodeRequestHeader(b)
	if err != nil {
		return err
	}
	*h = dec
	return nil
}

// DecodeRequestHeader parses the first RequestHeaderSize bytes of b; trailing bytes ignored.
// Version is not checked: the receiver decides how to answer a foreign version.
func DecodeRequestHeader(b []byte) (RequestHeader, error) {
	if len(b) < RequestHeaderSize {
		return RequestHeader{}, fmt.Errorf("%w: request header needs %d bytes, have %d", ErrDeserialization, RequestHeaderSize, len(b))
	}
	h := RequestHeader{
		Version:    b[0],
		Identifier: binary.LittleEndian.Uint64(b[1:9]),
		DataLen:    binary.LittleEndian.Uint32(b[9:13]),
		Algorithm:  Algorithm(binary.LittleEndian.Uint32(b[13:17])),
		Operation:  Operation(binary.LittleEndian.Uint32(b[17:21])),
	}
	if !h.Algorithm.Valid() {
		return RequestHeader{}, fmt.Errorf("%w: algorithm ordinal %d", ErrDeserialization, uint32(h.Algorithm))
	}
	if !h.Operation.Valid() {
		return RequestHeader{}, fmt.Errorf("%w: operation ordinal %d", ErrDeserialization, uint32(h.Operation))
	}
	return h, nil
}

// NewRequest pairs header and body; body is trusted to be header.DataLen bytes.
func NewRequest(header RequestHeader, body []byte) Request {
	return Request{Header: header, Body: body}
}

// CheckVersion returns ErrVersionMismatch unless h.Version == FormatVersion.
func (h RequestHeader) CheckVersion() error {
	if h.Version != FormatVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, h.Version, FormatVersion)
	}
	return nil
}
