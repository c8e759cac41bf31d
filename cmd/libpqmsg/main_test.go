package main

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.c0redev.pqmsg/internal/proto"
)

var (
	requestVector  = []byte{proto.FormatVersion, 210, 4, 0, 0, 0, 0, 0, 0, 51, 5, 0, 0, 3, 0, 0, 0, 2, 0, 0, 0}
	responseVector = []byte{proto.FormatVersion, 210, 4, 0, 0, 0, 0, 0, 0, 0, 6, 0, 0, 0}
	keysVector     = []byte{6, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 4, 5, 6, 3, 0, 0, 0, 0, 0, 0, 0, 12, 13, 14}
)

func TestHeaderSizes(t *testing.T) {
	assert.Equal(t, uint64(proto.RequestHeaderSize), uint64(get_serialized_request_header_size()))
	assert.Equal(t, uint64(proto.ResponseHeaderSize), uint64(get_serialized_response_header_size()))
}

func TestSerializeRequestHeaderC(t *testing.T) {
	buf := allocC(proto.RequestHeaderSize)
	defer buf.free()
	st := callSerializeRequestHeader(buf, proto.RequestHeaderSize, 1234, 1331, proto.Frodo976ECDHP384, proto.Encapsulation)
	require.Equal(t, int16(0), st)
	assert.Equal(t, requestVector, buf.bytes())

	// a length the host can't index still only needs the header's bytes
	big := allocC(proto.RequestHeaderSize)
	defer big.free()
	st = callSerializeRequestHeader(big, math.MaxUint64, 1234, 1331, proto.Frodo976ECDHP384, proto.Encapsulation)
	require.Equal(t, int16(0), st)
	assert.Equal(t, requestVector, big.bytes())
}

func TestSerializeRequestHeaderCFailures(t *testing.T) {
	assert.Equal(t, int16(-1), callSerializeRequestHeader(nil, proto.RequestHeaderSize, 1, 0, proto.Kyber768, proto.Encapsulation))

	small := allocC(11)
	defer small.free()
	assert.Equal(t, int16(-1), callSerializeRequestHeader(small, 11, 1, 0, proto.Kyber768, proto.Encapsulation))
	assert.Equal(t, make([]byte, 11), small.bytes())

	buf := allocC(proto.RequestHeaderSize)
	defer buf.free()
	assert.Equal(t, int16(-2), callSerializeRequestHeader(buf, proto.RequestHeaderSize, 1, 0, proto.Algorithm(29), proto.Encapsulation))
	assert.Equal(t, int16(-2), callSerializeRequestHeader(buf, proto.RequestHeaderSize, 1, 0, proto.Kyber768, proto.Operation(4)))
	assert.Equal(t, make([]byte, proto.RequestHeaderSize), buf.bytes())
}

func TestDeserializeResponseHeaderC(t *testing.T) {
	data := copyToC(responseVector)
	defer data.free()
	st, h := callDeserializeResponseHeader(data, true)
	require.Equal(t, int16(0), st)
	assert.Equal(t, proto.ResponseHeader{Version: proto.FormatVersion, Identifier: 1234, Success: 0, DataLen: 6}, h)
}

func TestDeserializeResponseHeaderCFailures(t *testing.T) {
	st, _ := callDeserializeResponseHeader(nil, true)
	assert.Equal(t, int16(-1), st)

	data := copyToC(responseVector)
	defer data.free()
	st, _ = callDeserializeResponseHeader(data, false)
	assert.Equal(t, int16(-5), st)

	wrongVersion := append([]byte(nil), responseVector...)
	wrongVersion[0] = proto.FormatVersion + 1
	wv := copyToC(wrongVersion)
	defer wv.free()
	st, h := callDeserializeResponseHeader(wv, true)
	assert.Equal(t, int16(-4), st)
	assert.Equal(t, proto.ResponseHeader{Version: proto.FormatVersion + 1, Identifier: 1234, Success: 0, DataLen: 6}, h,
		"out is filled even when the version is foreign")

	inconsistent := append([]byte(nil), responseVector...)
	inconsistent[9] = 0xff
	bad := copyToC(inconsistent)
	defer bad.free()
	st, h = callDeserializeResponseHeader(bad, true)
	assert.Equal(t, int16(-3), st)
	assert.Zero(t, h)
}

func TestStructureTwoEntriesC(t *testing.T) {
	assert.Equal(t, uint64(len(keysVector)), callStructureTwoEntriesLength(6, 3))
	assert.Equal(t, uint64(2*proto.LengthPrefixSize), callStructureTwoEntriesLength(0, 0))

	e1 := copyToC([]byte{0, 1, 2, 4, 5, 6})
	e2 := copyToC([]byte{12, 13, 14})
	data := allocC(len(keysVector))
	defer e1.free()
	defer e2.free()
	defer data.free()

	require.Equal(t, int16(0), callStructureTwoEntries(data, 6, 3, e1, e2))
	assert.Equal(t, keysVector, data.bytes())

	empty := allocC(0)
	zeros := allocC(2 * proto.LengthPrefixSize)
	defer empty.free()
	defer zeros.free()
	require.Equal(t, int16(0), callStructureTwoEntries(zeros, 0, 0, empty, empty))
	assert.Equal(t, make([]byte, 2*proto.LengthPrefixSize), zeros.bytes())
}

func TestStructureTwoEntriesCFailures(t *testing.T) {
	e1 := copyToC([]byte{1, 2})
	e2 := copyToC([]byte{3})
	data := allocC(2*proto.LengthPrefixSize + 3)
	defer e1.free()
	defer e2.free()
	defer data.free()

	assert.Equal(t, int16(-1), callStructureTwoEntries(nil, 2, 1, e1, e2))
	assert.Equal(t, int16(-2), callStructureTwoEntries(data, 2, 1, nil, e2))
	assert.Equal(t, int16(-3), callStructureTwoEntries(data, 2, 1, e1, nil))
	assert.Equal(t, make([]byte, data.n), data.bytes())

	// lengths no buffer can hold: the panic stays on the Go side
	assert.Equal(t, int16(-127), callStructureTwoEntries(data, math.MaxInt, math.MaxInt, e1, e2))
}

func TestDestructureTwoEntriesC(t *testing.T) {
	data := copyToC(keysVector)
	defer data.free()

	res := callDestructureTwoEntries(data, uint64(data.n), nullOut{})
	require.Equal(t, int16(0), res.status)
	assert.Equal(t, destructureOut{status: 0, len1: 6, len2: 3, off1: 8, off2: 22}, res)

	// entries point into data, no copies
	b := data.bytes()
	assert.Equal(t, []byte{0, 1, 2, 4, 5, 6}, b[res.off1:res.off1+res.len1])
	assert.Equal(t, []byte{12, 13, 14}, b[res.off2:res.off2+res.len2])
}

func TestDestructureTwoEntriesCNulls(t *testing.T) {
	data := copyToC(keysVector)
	defer data.free()
	size := uint64(data.n)

	assert.Equal(t, int16(-1), callDestructureTwoEntries(nil, size, nullOut{}).status)
	assert.Equal(t, int16(-2), callDestructureTwoEntries(data, size, nullOut{len1: true}).status)
	assert.Equal(t, int16(-3), callDestructureTwoEntries(data, size, nullOut{len2: true}).status)
	assert.Equal(t, int16(-4), callDestructureTwoEntries(data, size, nullOut{entry1: true}).status)
	assert.Equal(t, int16(-5), callDestructureTwoEntries(data, size, nullOut{entry2: true}).status)
}

func TestDestructureTwoEntriesCMalformed(t *testing.T) {
	prefix := func(n uint64) []byte { return binary.LittleEndian.AppendUint64(nil, n) }
	withSecond := func(n uint64) []byte {
		return append(append(prefix(1), 0xaa), prefix(n)...)
	}
	tests := []struct {
		name string
		data []byte
		want int16
	}{
		{"empty", []byte{}, -8},
		{"truncated first prefix", []byte{6, 0, 0}, -8},
		{"first entry overruns", keysVector[:10], -8},
		{"missing second prefix", keysVector[:14], -8},
		{"second entry overruns", keysVector[:len(keysVector)-1], -8},
		{"first prefix overflows int", prefix(math.MaxUint64), -6},
		{"second prefix overflows int", withSecond(math.MaxUint64), -7},
		{"second prefix past end", withSecond(1 << 40), -8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := copyToC(tt.data)
			defer data.free()
			res := callDestructureTwoEntries(data, uint64(len(tt.data)), nullOut{})
			assert.Equal(t, tt.want, res.status)
			// outputs untouched on failure
			assert.Equal(t, destructureOut{status: tt.want, off1: -1, off2: -1}, res)
		})
	}
}
