package proto

import (
	"encoding/binary"
	"math"
)

// Entry pair: [len1 u64 LE][entry1][len2 u64 LE][entry2]. Carries two correlated blobs
// (public + private key, private key + ciphertext, ...) in one body.

// Entries: two views into the buffer passed to UnpackEntries. They borrow that buffer:
// keep it alive and unmodified while the views are in use, and copy before retaining.
type Entries struct {
	First  []byte
	Second []byte
}

// Span: offset and length of one entry inside a packed buffer.
type Span struct {
	Offset int
	Len    int
}

// PackedLength: bytes needed to pack entries of len1 and len2. Size buffers with this
// before PackEntriesInto.
func PackedLength(len1, len2 int) int {
	return len1 + len2 + 2*LengthPrefixSize
}

// PackEntries returns a freshly allocated entry pair.
func PackEntries(entry1, entry2 []byte) []byte {
	out := make([]byte, PackedLength(len(entry1), len(entry2)))
	PackEntriesInto(out, entry1, entry2)
	return out
}

// PackEntriesInto writes the pair at the start of dst and returns the bytes written.
// dst must hold PackedLength(len(entry1), len(entry2)) bytes; shorter dst panics.
func PackEntriesInto(dst, entry1, entry2 []byte) int {
	n := 0
	binary.LittleEndian.PutUint64(dst[n:n+LengthPrefixSize], uint64(len(entry1)))
	n += LengthPrefixSize
	n += copy(dst[n:n+len(entry1)], entry1)
	binary.LittleEndian.PutUint64(dst[n:n+LengthPrefixSize], uint64(len(entry2)))
	n += LengthPrefixSize
	n += copy(dst[n:n+len(entry2)], entry2)
	return n
}

// UnpackEntries splits b into its two entries without copying. Every prefix is
// checked against the bytes left before use; bytes after entry2 are ignored.
func UnpackEntries(b []byte) (Entries, error) {
	s1, s2, err := LocateEntries(b)
	if err != nil {
		return Entries{}, err
	}
	return Entries{
		First:  b[s1.Offset : s1.Offset+s1.Len : s1.Offset+s1.Len],
		Second: b[s2.Offset : s2.Offset+s2.Len : s2.Offset+s2.Len],
	}, nil
}

// LocateEntries is UnpackEntries returning offsets instead of slices.
func LocateEntries(b []byte) (first, second Span, err error) {
	first, rest, err := locate(b, 0, 1)
	if err != nil {
		return Span{}, Span{}, err
	}
	second, _, err = locate(b, rest, 2)
	if err != nil {
		return Span{}, Span{}, err
	}
	return first, second, nil
}

// locate reads one length-prefixed entry at b[off:], returns its span and the offset after it.
func locate(b []byte, off, entry int) (Span, int, error) {
	avail := len(b) - off
	if avail < LengthPrefixSize {
		return Span{}, 0, &EntryError{Entry: entry, Avail: avail, Prefix: true}
	}
	n := binary.LittleEndian.Uint64(b[off : off+LengthPrefixSize])
	off += LengthPrefixSize
	avail -= LengthPrefixSize
	if n > math.MaxInt {
		return Span{}, 0, &EntryError{Entry: entry, Length: n, Avail: avail, Overflow: true}
	}
	if n > uint64(avail) {
		return Span{}, 0, &EntryError{Entry: entry, Length: n, Avail: avail}
	}
	return Span{Offset: off, Len: int(n)}, off + int(n), nil
}
