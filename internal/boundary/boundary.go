// Package boundary is the status-code surface of the message codec, for callers that
// cannot use Go errors (the C shared library in cmd/libpqmsg). Every function checks its
// pointer-like arguments first, delegates to internal/proto, and returns 0 or a small
// negative code documented per function.
//
// A nil slice stands for a null pointer. An empty, non-nil slice is a valid buffer of
// length zero.
package boundary

import (
	"errors"
	"math"

	"dev.c0redev.pqmsg/internal/proto"
)

// OK is returned by every function on success.
const OK int16 = 0

// RequestHeaderSize returns the buffer size needed by SerializeRequestHeader.
func RequestHeaderSize() uint64 { return proto.RequestHeaderSize }

// ResponseHeaderSize returns the number of bytes DeserializeResponseHeader reads.
func ResponseHeaderSize() uint64 { return proto.ResponseHeaderSize }

// SerializeRequestHeader writes a request header into target.
//
//	 0 success
//	-1 target is nil or shorter than RequestHeaderSize
//	-2 algorithm or operation is not a known ordinal
//
// Nothing is written on failure.
func SerializeRequestHeader(target []byte, identifier uint64, dataLen uint32, alg proto.Algorithm, op proto.Operation) int16 {
	if target == nil || uint64(len(target)) < RequestHeaderSize() {
		return -1
	}
	if err := proto.EncodeRequestHeader(target, identifier, dataLen, alg, op); err != nil {
		if errors.Is(err, proto.ErrBufferTooSmall) {
			return -1
		}
		return -2
	}
	return OK
}

// DeserializeResponseHeader decodes the first ResponseHeaderSize bytes of data into out.
//
//	 0 success
//	-1 data is nil
//	-2 the header size is not addressable on this host
//	-3 data does not parse as a response header (including data too short)
//	-4 header parsed but its version is not proto.FormatVersion; out is still filled
//	-5 out is nil
func DeserializeResponseHeader(data []byte, out *proto.ResponseHeader) int16 {
	if data == nil {
		return -1
	}
	if out == nil {
		return -5
	}
	n, ok := Addressable(ResponseHeaderSize())
	if !ok {
		return -2
	}
	if len(data) < n {
		return -3
	}
	h, err := proto.DecodeResponseHeader(data[:n])
	if err != nil {
		return -3
	}
	*out = h
	if h.CheckVersion() != nil {
		return -4
	}
	return OK
}

// StructureTwoEntriesLength is proto.PackedLength.
func StructureTwoEntriesLength(len1, len2 int) int {
	return proto.PackedLength(len1, len2)
}

// StructureTwoEntries packs entry1 and entry2 at the start of data.
//
//	 0 success
//	-1 data is nil
//	-2 entry1 is nil
//	-3 entry2 is nil
//	-4 data is shorter than StructureTwoEntriesLength(len(entry1), len(entry2))
func StructureTwoEntries(data, entry1, entry2 []byte) int16 {
	switch {
	case data == nil:
		return -1
	case entry1 == nil:
		return -2
	case entry2 == nil:
		return -3
	}
	need := proto.PackedLength(len(entry1), len(entry2))
	if need < 0 || len(data) < need {
		return -4
	}
	proto.PackEntriesInto(data, entry1, entry2)
	return OK
}

// DestructureTwoEntries splits data into its two entries. entry1 and entry2 receive
// views into data, not copies: data must stay alive and unmodified while they are used.
// Outputs are only written on success.
//
//	 0 success
//	-1 data is nil
//	-2 len1 is nil
//	-3 len2 is nil
//	-4 entry1 is nil
//	-5 entry2 is nil
//	-6 entry 1 length prefix does not fit in an int
//	-7 entry 2 length prefix does not fit in an int
//	-8 a length prefix or entry would read past the end of data
func DestructureTwoEntries(data []byte, len1, len2 *int, entry1, entry2 *[]byte) int16 {
	switch {
	case data == nil:
		return -1
	case len1 == nil:
		return -2
	case len2 == nil:
		return -3
	case entry1 == nil:
		return -4
	case entry2 == nil:
		return -5
	}
	s1, s2, status := LocateTwoEntries(data)
	if status != OK {
		return status
	}
	*len1, *len2 = s1.Len, s2.Len
	*entry1 = data[s1.Offset : s1.Offset+s1.Len : s1.Offset+s1.Len]
	*entry2 = data[s2.Offset : s2.Offset+s2.Len : s2.Offset+s2.Len]
	return OK
}

// LocateTwoEntries is DestructureTwoEntries returning offsets, for callers that build
// their own pointers into data. Codes -1, -6, -7 and -8 as above.
func LocateTwoEntries(data []byte) (proto.Span, proto.Span, int16) {
	if data == nil {
		return proto.Span{}, proto.Span{}, -1
	}
	s1, s2, err := proto.LocateEntries(data)
	if err != nil {
		return proto.Span{}, proto.Span{}, entryStatus(err)
	}
	return s1, s2, OK
}

func entryStatus(err error) int16 {
	var ee *proto.EntryError
	if errors.As(err, &ee) && ee.Overflow {
		if ee.Entry == 1 {
			return -6
		}
		return -7
	}
	return -8
}

// Addressable converts a byte count to int, reporting false if the host can't index it.
func Addressable(n uint64) (int, bool) {
	if n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}
