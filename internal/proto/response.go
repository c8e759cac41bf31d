package proto

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeResponse builds header + data. data == nil means no result: the header then
// carries Success -1 and DataLen 0. Same for data longer than MaxUint32. Both are
// protocol-level failures, not call errors; err is only set if the header can't be encoded.
func EncodeResponse(identifier uint64, data []byte) ([]byte, error) {
	h := responseHeaderFor(identifier, data != nil, uint64(len(data)))
	if !h.OK() {
		out := make([]byte, ResponseHeaderSize)
		if err := h.put(out); err != nil {
			return nil, err
		}
		return out, nil
	}
	if len(data) > math.MaxInt-ResponseHeaderSize {
		return nil, fmt.Errorf("%w: %d payload bytes", ErrSerialization, len(data))
	}
	out := make([]byte, ResponseHeaderSize, ResponseHeaderSize+len(data))
	if err := h.put(out); err != nil {
		return nil, err
	}
	return append(out, data...), nil
}

// EncodeFailure: header-only failure response.
func EncodeFailure(identifier uint64) ([]byte, error) {
	return EncodeResponse(identifier, nil)
}

func responseHeaderFor(identifier uint64, present bool, n uint64) ResponseHeader {
	h := ResponseHeader{Version: FormatVersion, Identifier: identifier, Success: successFail}
	if present && n <= math.MaxUint32 {
		h.Success = successOK
		h.DataLen = uint32(n)
	}
	return h
}

func (h ResponseHeader) put(buf []byte) error {
	if h.Success != successOK && h.DataLen != 0 {
		return fmt.Errorf("%w: failure response with %d payload bytes", ErrSerialization, h.DataLen)
	}
	buf[0] = h.Version
	binary.LittleEndian.PutUint64(buf[1:9], h.Identifier)
	buf[9] = byte(h.Success)
	binary.LittleEndian.PutUint32(buf[10:14], h.DataLen)
	return nil
}

// MarshalBinary encodes h as is (Version included).
func (h ResponseHeader) MarshalBinary() ([]byte, error) {
	b := make([]byte, ResponseHeaderSize)
	if err := h.put(b); err != nil {
		return nil, err
	}
	return b, nil
}

// UnmarshalBinary is DecodeResponseHeader into h.
func (h *ResponseHeader) UnmarshalBinary(b []byte) error {
	dec, err := DecodeResponseHeader(b)
	if err != nil {
		return err
	}
	*h = dec
	return nil
}

// DecodeResponseHeader parses the first ResponseHeaderSize bytes of b. Structural only;
// version is checked by CheckVersion / ReadResponse / the C boundary.
func DecodeResponseHeader(b []byte) (ResponseHeader, error) {
	if len(b) < ResponseHeaderSize {
		return ResponseHeader{}, fmt.Errorf("%w: response header needs %d bytes, have %d", ErrDeserialization, ResponseHeaderSize, len(b))
	}
	h := ResponseHeader{
		Version:    b[0],
		Identifier: binary.LittleEndian.Uint64(b[1:9]),
		Success:    int8(b[9]),
		DataLen:    binary.LittleEndian.Uint32(b[10:14]),
	}
	if !h.OK() && h.DataLen != 0 {
		return ResponseHeader{}, fmt.Errorf("%w: failure response declares %d payload bytes", ErrDeserialization, h.DataLen)
	}
	return h, nil
}

// CheckVersion returns ErrVersionMismatch unless h.Version == FormatVersion.
func (h ResponseHeader) CheckVersion() error {
	if h.Version != FormatVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, h.Version, FormatVersion)
	}
	return nil
}
