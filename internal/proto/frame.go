package proto

// FormatVersion: first byte of every header. Increase whenever a header layout changes.
const FormatVersion uint8 = 1

// RequestHeaderSize: 1 + 8 + 4 + 4 + 4 = 21 bytes (version, identifier, data_len, algorithm, operation).
const RequestHeaderSize = 21

// ResponseHeaderSize: 1 + 8 + 1 + 4 = 14 bytes (version, identifier, success, data_len).
const ResponseHeaderSize = 14

// LengthPrefixSize: entry-pair length prefix, fixed u64 LE on every host.
const LengthPrefixSize = 8

// MaxPayloadSize 16MiB; default body limit for stream reads.
const MaxPayloadSize = 1024 * 1024 * 16

const (
	successOK   int8 = 0
	successFail int8 = -1
)
