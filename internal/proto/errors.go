package proto

import (
	"errors"
	"fmt"
)

var (
	ErrSerialization   = errors.New("proto: serialization failed")
	ErrDeserialization = errors.New("proto: deserialization failed")
	ErrDestructure     = errors.New("proto: destructure failed")
	ErrBufferTooSmall  = errors.New("proto: buffer too small")
	ErrVersionMismatch = errors.New("proto: format version mismatch")
	ErrPayloadTooLarge = errors.New("proto: payload too large")
)

// EntryError: where entry-pair framing broke. Matches ErrDestructure.
type EntryError struct {
	Entry    int    // 1 or 2
	Length   uint64 // decoded prefix; 0 if the prefix itself was truncated
	Avail    int    // bytes left when the read was attempted
	Prefix   bool   // prefix truncated
	Overflow bool   // prefix does not fit in int
}

func (e *EntryError) Error() string {
	switch {
	case e.Prefix:
		return fmt.Sprintf("proto: entry %d length prefix truncated (%d bytes left)", e.Entry, e.Avail)
	case e.Overflow:
		return fmt.Sprintf("proto: entry %d length %d not representable", e.Entry, e.Length)
	default:
		return fmt.Sprintf("proto: entry %d length %d exceeds %d remaining bytes", e.Entry, e.Length, e.Avail)
	}
}

func (e *EntryError) Is(target error) bool { return target == ErrDestructure }
