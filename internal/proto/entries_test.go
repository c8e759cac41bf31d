package proto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keysVector = []byte{6, 0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 4, 5, 6, 3, 0, 0, 0, 0, 0, 0, 0, 12, 13, 14}

func TestPackEntriesVector(t *testing.T) {
	pub := []byte{0, 1, 2, 4, 5, 6}
	priv := []byte{12, 13, 14}
	assert.Equal(t, keysVector, PackEntries(pub, priv))
	assert.Equal(t, len(keysVector), PackedLength(len(pub), len(priv)))
}

func TestPackEntriesIntoVector(t *testing.T) {
	priv := []byte{13, 12, 18, 33}
	ct := []byte{0, 0, 2, 3, 1}
	dst := make([]byte, PackedLength(len(priv), len(ct)))
	n := PackEntriesInto(dst, priv, ct)
	assert.Equal(t, len(dst), n)
	assert.Equal(t, []byte{4, 0, 0, 0, 0, 0, 0, 0, 13, 12, 18, 33, 5, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 3, 1}, dst)
}

func TestUnpackEntriesVector(t *testing.T) {
	e, err := UnpackEntries(keysVector)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 4, 5, 6}, e.First)
	assert.Equal(t, []byte{12, 13, 14}, e.Second)
}

func TestUnpackEntriesBorrows(t *testing.T) {
	buf := append([]byte(nil), keysVector...)
	e, err := UnpackEntries(buf)
	require.NoError(t, err)
	buf[8] = 0xaa
	assert.Equal(t, byte(0xaa), e.First[0], "views alias the input")

	// capped: appending to a view must not clobber the next prefix
	_ = append(e.First, 0xff)
	assert.Equal(t, byte(3), buf[14])
}

func TestLocateEntries(t *testing.T) {
	s1, s2, err := LocateEntries(keysVector)
	require.NoError(t, err)
	assert.Equal(t, Span{Offset: 8, Len: 6}, s1)
	assert.Equal(t, Span{Offset: 22, Len: 3}, s2)
}

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := []struct{ a, b []byte }{
		{nil, nil},
		{[]byte{}, []byte{1}},
		{[]byte{1, 2, 3}, nil},
		{make([]byte, 1184), make([]byte, 2400)},
	}
	for i := range cases[3].a {
		cases[3].a[i] = byte(i)
	}
	for _, c := range cases {
		packed := PackEntries(c.a, c.b)
		assert.Equal(t, PackedLength(len(c.a), len(c.b)), len(packed))
		e, err := UnpackEntries(packed)
		require.NoError(t, err)
		assert.Equal(t, len(c.a), len(e.First))
		assert.Equal(t, len(c.b), len(e.Second))
		assert.Equal(t, string(c.a), string(e.First))
		assert.Equal(t, string(c.b), string(e.Second))
	}
}

func TestUnpackEntriesMalformed(t *testing.T) {
	corrupt := func(i int, v byte) []byte {
		b := append([]byte(nil), keysVector...)
		b[i] = v
		return b
	}
	cases := map[string]struct {
		in    []byte
		entry int
	}{
		"empty":                {nil, 1},
		"short prefix":         {keysVector[:5], 1},
		"entry1 overruns":      {corrupt(0, 255), 1},
		"entry2 overruns":      {corrupt(14, 255), 2},
		"entry1 truncated":     {keysVector[:10], 1},
		"second prefix absent": {keysVector[:14], 2},
		"second prefix short":  {keysVector[:18], 2},
		"entry2 truncated":     {keysVector[:24], 2},
		"prefix beyond int":    {corrupt(7, 0x80), 1},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := UnpackEntries(c.in)
			require.ErrorIs(t, err, ErrDestructure)
			var ee *EntryError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, c.entry, ee.Entry)
			assert.NotEmpty(t, ee.Error())
		})
	}
}

func TestUnpackEntriesOverflowFlag(t *testing.T) {
	b := make([]byte, 16)
	b[7] = 0x80
	_, err := UnpackEntries(b)
	var ee *EntryError
	require.True(t, errors.As(err, &ee))
	assert.True(t, ee.Overflow)
}
