package main

// Go-side callers for the exports: C memory in, Go values out. Go test files can't use
// cgo, so main_test.go drives the C ABI through these.

/*
#include <stdlib.h>
#include "pqmsg.h"
*/
import "C"

import (
	"unsafe"

	"dev.c0redev.pqmsg/internal/proto"
)

// cBuf: n bytes of C heap memory. A nil *cBuf passes a null pointer.
type cBuf struct {
	p *C.uchar
	n int
}

func allocC(n int) *cBuf {
	size := n
	if size == 0 {
		size = 1 // malloc(0) may return NULL
	}
	return &cBuf{p: (*C.uchar)(C.calloc(C.size_t(size), 1)), n: n}
}

func copyToC(b []byte) *cBuf {
	buf := allocC(len(b))
	copy(buf.bytes(), b)
	return buf
}

func (b *cBuf) ptr() *C.uchar {
	if b == nil {
		return nil
	}
	return b.p
}

func (b *cBuf) bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(b.p)), b.n)
}

func (b *cBuf) free() {
	if b != nil && b.p != nil {
		C.free(unsafe.Pointer(b.p))
		b.p = nil
	}
}

// offset of p inside b, -1 if p is outside.
func (b *cBuf) offset(p *C.uchar) int {
	d := int(uintptr(unsafe.Pointer(p)) - uintptr(unsafe.Pointer(b.p)))
	if p == nil || d < 0 || d > b.n {
		return -1
	}
	return d
}

func callSerializeRequestHeader(target *cBuf, targetLen uint64, identifier uint64, dataLen uint32, alg proto.Algorithm, op proto.Operation) int16 {
	return int16(serialize_request_header(target.ptr(), C.size_t(targetLen), C.uint64_t(identifier),
		C.uint32_t(dataLen), C.uint32_t(alg), C.uint32_t(op)))
}

// callDeserializeResponseHeader: withOut false passes a null out pointer. The returned
// header is whatever the export left in out (zero if untouched).
func callDeserializeResponseHeader(data *cBuf, withOut bool) (int16, proto.ResponseHeader) {
	var out *C.ResponseHeader
	if withOut {
		out = (*C.ResponseHeader)(C.calloc(1, C.sizeof_ResponseHeader))
		defer C.free(unsafe.Pointer(out))
	}
	status := int16(deserialize_response_header(data.ptr(), out))
	if out == nil {
		return status, proto.ResponseHeader{}
	}
	return status, proto.ResponseHeader{
		Version:    uint8(out.version),
		Identifier: uint64(out.identifier),
		Success:    int8(out.success),
		DataLen:    uint32(out.data_len),
	}
}

func callStructureTwoEntriesLength(len1, len2 uint64) uint64 {
	return uint64(structure_two_entries_length(C.size_t(len1), C.size_t(len2)))
}

func callStructureTwoEntries(data *cBuf, len1, len2 uint64, entry1, entry2 *cBuf) int16 {
	return int16(structure_two_entries(data.ptr(), C.size_t(len1), C.size_t(len2), entry1.ptr(), entry2.ptr()))
}

// destructureOut: results of destructure_two_entries; offsets are relative to data,
// -1 when the export left the pointer null.
type destructureOut struct {
	status     int16
	len1, len2 int
	off1, off2 int
}

// nullOut selects which out parameters are passed as null pointers.
type nullOut struct {
	len1, len2, entry1, entry2 bool
}

func callDestructureTwoEntries(data *cBuf, size uint64, null nullOut) destructureOut {
	outs := (*[2]C.size_t)(C.calloc(2, C.size_t(unsafe.Sizeof(C.size_t(0)))))
	ptrs := (*[2]*C.uchar)(C.calloc(2, C.size_t(unsafe.Sizeof((*C.uchar)(nil)))))
	defer C.free(unsafe.Pointer(outs))
	defer C.free(unsafe.Pointer(ptrs))

	l1, l2 := &outs[0], &outs[1]
	e1, e2 := &ptrs[0], &ptrs[1]
	if null.len1 {
		l1 = nil
	}
	if null.len2 {
		l2 = nil
	}
	if null.entry1 {
		e1 = nil
	}
	if null.entry2 {
		e2 = nil
	}
	res := destructureOut{status: int16(destructure_two_entries(data.ptr(), C.size_t(size), l1, l2, e1, e2))}
	res.len1, res.len2 = int(outs[0]), int(outs[1])
	res.off1, res.off2 = -1, -1
	if data != nil {
		if ptrs[0] != nil {
			res.off1 = data.offset(ptrs[0])
		}
		if ptrs[1] != nil {
			res.off2 = data.offset(ptrs[1])
		}
	}
	return res
}
