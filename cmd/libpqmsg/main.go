// libpqmsg: C shared library over internal/boundary.
//
//	go build -buildmode=c-shared -o libpqmsg.so ./cmd/libpqmsg
//
// cgo writes libpqmsg.h alongside; it includes pqmsg.h (ResponseHeader), ship both. Status codes are the ones documented in
// internal/boundary; -127 means the call panicked and nothing useful was written.
package main

/*
#include "pqmsg.h"
*/
import "C"

import (
	"unsafe"

	"dev.c0redev.pqmsg/internal/boundary"
	"dev.c0redev.pqmsg/internal/proto"
)

const statusPanic C.int16_t = -127

func main() {}

func recoverStatus(status *C.int16_t) {
	if recover() != nil {
		*status = statusPanic
	}
}

// bytesAt views n bytes of C memory at p; nil p gives a nil slice.
func bytesAt(p *C.uchar, n int) []byte {
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

//export get_serialized_request_header_size
func get_serialized_request_header_size() C.uint64_t {
	return C.uint64_t(boundary.RequestHeaderSize())
}

//export get_serialized_response_header_size
func get_serialized_response_header_size() C.uint64_t {
	return C.uint64_t(boundary.ResponseHeaderSize())
}

//export serialize_request_header
func serialize_request_header(target *C.uchar, targetLen C.size_t, identifier C.uint64_t, dataLen C.uint32_t, algorithm, operation C.uint32_t) (status C.int16_t) {
	defer recoverStatus(&status)
	n, ok := boundary.Addressable(uint64(targetLen))
	if !ok {
		n = proto.RequestHeaderSize
	}
	return C.int16_t(boundary.SerializeRequestHeader(bytesAt(target, n), uint64(identifier),
		uint32(dataLen), proto.Algorithm(algorithm), proto.Operation(operation)))
}

//export deserialize_response_header
func deserialize_response_header(data *C.uchar, out *C.ResponseHeader) (status C.int16_t) {
	defer recoverStatus(&status)
	if data == nil {
		return -1
	}
	if out == nil {
		return -5
	}
	n, ok := boundary.Addressable(boundary.ResponseHeaderSize())
	if !ok {
		return -2
	}
	var h proto.ResponseHeader
	code := boundary.DeserializeResponseHeader(bytesAt(data, n), &h)
	if code == boundary.OK || code == -4 {
		out.version = C.uint8_t(h.Version)
		out.identifier = C.uint64_t(h.Identifier)
		out.success = C.int8_t(h.Success)
		out.data_len = C.uint32_t(h.DataLen)
	}
	return C.int16_t(code)
}

//export structure_two_entries_length
func structure_two_entries_length(len1, len2 C.size_t) C.size_t {
	return len1 + len2 + 2*proto.LengthPrefixSize
}

// structure_two_entries keeps the C contract: data must hold
// structure_two_entries_length(len1, len2) bytes.
//
//export structure_two_entries
func structure_two_entries(data *C.uchar, len1, len2 C.size_t, entry1, entry2 *C.uchar) (status C.int16_t) {
	defer recoverStatus(&status)
	l1, ok1 := boundary.Addressable(uint64(len1))
	l2, ok2 := boundary.Addressable(uint64(len2))
	if !ok1 || !ok2 {
		return -4
	}
	need := boundary.StructureTwoEntriesLength(l1, l2)
	if need < 0 {
		return -4
	}
	return C.int16_t(boundary.StructureTwoEntries(bytesAt(data, need), bytesAt(entry1, l1), bytesAt(entry2, l2)))
}

// destructure_two_entries points entry1/entry2 into data; no copies.
//
//export destructure_two_entries
func destructure_two_entries(data *C.uchar, dataSize C.size_t, len1, len2 *C.size_t, entry1, entry2 **C.uchar) (status C.int16_t) {
	defer recoverStatus(&status)
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
	n, ok := boundary.Addressable(uint64(dataSize))
	if !ok {
		return -8
	}
	s1, s2, code := boundary.LocateTwoEntries(bytesAt(data, n))
	if code != boundary.OK {
		return C.int16_t(code)
	}
	base := unsafe.Pointer(data)
	*len1, *len2 = C.size_t(s1.Len), C.size_t(s2.Len)
	*entry1 = (*C.uchar)(unsafe.Add(base, s1.Offset))
	*entry2 = (*C.uchar)(unsafe.Add(base, s2.Offset))
	return C.int16_t(boundary.OK)
}
