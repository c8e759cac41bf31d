package boundary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.c0redev.pqmsg/internal/proto"
)

func TestSerializeRequestHeader(t *testing.T) {
	buf := make([]byte, RequestHeaderSize())
	status := SerializeRequestHeader(buf, 1234, 1331, proto.Frodo976ECDHP384, proto.Encapsulation)
	require.Equal(t, OK, status)
	assert.Equal(t, []byte{proto.FormatVersion, 210, 4, 0, 0, 0, 0, 0, 0, 51, 5, 0, 0, 3, 0, 0, 0, 2, 0, 0, 0}, buf)
}

func TestSerializeRequestHeaderFailures(t *testing.T) {
	small := make([]byte, RequestHeaderSize()-10)
	assert.Equal(t, int16(-1), SerializeRequestHeader(small, 1234, 1331, proto.Frodo976ECDHP384, proto.Encapsulation))
	assert.Equal(t, make([]byte, len(small)), small)

	assert.Equal(t, int16(-1), SerializeRequestHeader(nil, 1, 0, proto.Kyber768, proto.Encapsulation))

	buf := make([]byte, RequestHeaderSize())
	assert.Equal(t, int16(-2), SerializeRequestHeader(buf, 1, 0, proto.Algorithm(1000), proto.Encapsulation))
	assert.Equal(t, int16(-2), SerializeRequestHeader(buf, 1, 0, proto.Kyber768, proto.Operation(7)))
	assert.Equal(t, make([]byte, len(buf)), buf)
}

func TestDeserializeResponseHeader(t *testing.T) {
	raw := []byte{proto.FormatVersion, 210, 4, 0, 0, 0, 0, 0, 0, 0, 6, 0, 0, 0}
	var h proto.ResponseHeader
	require.Equal(t, OK, DeserializeResponseHeader(raw, &h))
	assert.Equal(t, proto.ResponseHeader{Version: proto.FormatVersion, Identifier: 1234, Success: 0, DataLen: 6}, h)
}

func TestDeserializeResponseHeaderFailures(t *testing.T) {
	var h proto.ResponseHeader
	assert.Equal(t, int16(-1), DeserializeResponseHeader(nil, &h))

	raw := []byte{proto.FormatVersion, 210, 4, 0, 0, 0, 0, 0, 0, 0, 6, 0, 0, 0}
	assert.Equal(t, int16(-5), DeserializeResponseHeader(raw, nil))
	assert.Equal(t, int16(-3), DeserializeResponseHeader(raw[:10], &h))
	assert.Equal(t, int16(-3), DeserializeResponseHeader([]byte{}, &h))

	wrongVersion := append([]byte(nil), raw...)
	wrongVersion[0] = proto.FormatVersion + 1
	assert.Equal(t, int16(-4), DeserializeResponseHeader(wrongVersion, &h))

	inconsistent := append([]byte(nil), raw...)
	inconsistent[9] = 0xff
	assert.Equal(t, int16(-3), DeserializeResponseHeader(inconsistent, &h))
}

func TestStructureTwoEntries(t *testing.T) {
	priv := []byte{13, 12, 18, 33}
	ct := []byte{0, 0, 2, 3, 1}
	buf := make([]byte, StructureTwoEntriesLength(len(priv), len(ct)))
	require.Equal(t, OK, StructureTwoEntries(buf, priv, ct))
	assert.Equal(t, []byte{4, 0, 0, 0, 0, 0, 0, 0, 13, 12, 18, 33, 5, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 3, 1}, buf)

	assert.Equal(t, int16(-1), StructureTwoEntries(nil, priv, ct))
	assert.Equal(t, int16(-2), StructureTwoEntries(buf, nil, ct))
	assert.Equal(t, int16(-3), StructureTwoEntries(buf, priv, nil))
	assert.Equal(t, int16(-4), StructureTwoEntries(buf[:len(buf)-1], priv, ct))
	assert.Equal(t, OK, StructureTwoEntries(make([]byte, 16), []byte{}, []byte{}))
}

func TestDestructureTwoEntries(t *testing.T) {
	keys := []byte{6, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 4, 5, 6, 3, 0, 0, 0, 0, 0, 0, 0, 12, 13, 14}
	var len1, len2 int
	var pub, priv []byte

	require.Equal(t, OK, DestructureTwoEntries(keys, &len1, &len2, &pub, &priv))
	assert.Equal(t, 6, len1)
	assert.Equal(t, 3, len2)
	assert.Equal(t, []byte{0, 1, 2, 4, 5, 6}, pub)
	assert.Equal(t, []byte{12, 13, 14}, priv)
	assert.Same(t, &keys[8], &pub[0], "zero-copy view")

	keys[0] = 255
	assert.Equal(t, int16(-8), DestructureTwoEntries(keys, &len1, &len2, &pub, &priv))
	keys[0] = 6

	keys[14] = 255
	assert.Equal(t, int16(-8), DestructureTwoEntries(keys, &len1, &len2, &pub, &priv))
	keys[14] = 3

	assert.Equal(t, int16(-8), DestructureTwoEntries([]byte{}, &len1, &len2, &pub, &priv))
	assert.Equal(t, 6, len1, "outputs untouched on failure")
}

func TestDestructureTwoEntriesNulls(t *testing.T) {
	data := make([]byte, 16)
	var l int
	var e []byte
	assert.Equal(t, int16(-1), DestructureTwoEntries(nil, &l, &l, &e, &e))
	assert.Equal(t, int16(-2), DestructureTwoEntries(data, nil, &l, &e, &e))
	assert.Equal(t, int16(-3), DestructureTwoEntries(data, &l, nil, &e, &e))
	assert.Equal(t, int16(-4), DestructureTwoEntries(data, &l, &l, nil, &e))
	assert.Equal(t, int16(-5), DestructureTwoEntries(data, &l, &l, &e, nil))
	assert.Equal(t, OK, DestructureTwoEntries(data, &l, &l, &e, &e))
}

func TestDestructureTwoEntriesOverflow(t *testing.T) {
	var l1, l2 int
	var e1, e2 []byte
	data := make([]byte, 16)
	data[7] = 0x80
	assert.Equal(t, int16(-6), DestructureTwoEntries(data, &l1, &l2, &e1, &e2))

	data = make([]byte, 16)
	data[15] = 0x80
	assert.Equal(t, int16(-7), DestructureTwoEntries(data, &l1, &l2, &e1, &e2))
}

func TestLocateTwoEntries(t *testing.T) {
	_, _, status := LocateTwoEntries(nil)
	assert.Equal(t, int16(-1), status)

	s1, s2, status := LocateTwoEntries([]byte{1, 0, 0, 0, 0, 0, 0, 0, 9, 0, 0, 0, 0, 0, 0, 0, 0})
	require.Equal(t, OK, status)
	assert.Equal(t, proto.Span{Offset: 8, Len: 1}, s1)
	assert.Equal(t, proto.Span{Offset: 17, Len: 0}, s2)
}

func TestAddressable(t *testing.T) {
	n, ok := Addressable(ResponseHeaderSize())
	assert.True(t, ok)
	assert.Equal(t, proto.ResponseHeaderSize, n)

	_, ok = Addressable(math.MaxUint64)
	assert.False(t, ok)
}
