package proto

import "fmt"

// Algorithm: PQC scheme, optionally hybrid with an ECDH curve. 4-byte ordinal on wire;
// order is part of the format (append only, bump FormatVersion otherwise).
type Algorithm uint32

const (
	NoAlgorithm Algorithm = iota
	Frodo640ECDHP256
	Frodo640
	Frodo976ECDHP384
	Frodo976
	Frodo1344ECDHP521
	Frodo1344
	NTRUHRSS701
	NTRUHRSS701ECDHP256
	NTRUHPS2048509
	NTRUHPS2048509ECDHP256
	R5ND1CCA5D
	R5ND1CCA5DECDHP256
	R5ND3CCA5D
	R5ND3CCA5DECDHP384
	R5ND5CCA5D
	R5ND5CCA5DECDHP521
	Kyber512
	Kyber512ECDHP256
	Kyber768
	Kyber768ECDHP384
	Kyber1024
	Kyber1024ECDHP521
	SaberLight
	SaberLightECDHP256
	Saber
	SaberECDHP384
	SaberFire
	SaberFireECDHP521
)

// canonical names, shared with the C enum
var algorithmNames = [...]string{
	NoAlgorithm:            "NoAlgorithm",
	Frodo640ECDHP256:       "FRODO640__ECDHp256",
	Frodo640:               "FRODO640",
	Frodo976ECDHP384:       "FRODO976__ECDHp384",
	Frodo976:               "FRODO976",
	Frodo1344ECDHP521:      "FRODO1344__ECDHp521",
	Frodo1344:              "FRODO1344",
	NTRUHRSS701:            "NTRU_HRSS_701",
	NTRUHRSS701ECDHP256:    "NTRU_HRSS_701__ECDHp256",
	NTRUHPS2048509:         "NTRU_HPS_2048509",
	NTRUHPS2048509ECDHP256: "NTRU_HPS_2048509__ECDHp256",
	R5ND1CCA5D:             "RND5_1CCA_5D",
	R5ND1CCA5DECDHP256:     "RND5_1CCA_5D__ECDHp256",
	R5ND3CCA5D:             "RND5_3CCA_5D",
	R5ND3CCA5DECDHP384:     "RND5_3CCA_5D__ECDHp384",
	R5ND5CCA5D:             "RND5_5CCA_5D",
	R5ND5CCA5DECDHP521:     "RND5_5CCA_5D__ECDHp521",
	Kyber512:               "KYBER_512",
	Kyber512ECDHP256:       "KYBER_512__ECDHp256",
	Kyber768:               "KYBER_768",
	Kyber768ECDHP384:       "KYBER_768__ECDHp384",
	Kyber1024:              "KYBER_1024",
	Kyber1024ECDHP521:      "KYBER_1024__ECDHp521",
	SaberLight:             "SABER_LIGHT",
	SaberLightECDHP256:     "SABER_LIGHT__ECDHp256",
	Saber:                  "SABER",
	SaberECDHP384:          "SABER__ECDHp384",
	SaberFire:              "SABER_FIRE",
	SaberFireECDHP521:      "SABER_FIRE__ECDHp521",
}

func (a Algorithm) String() string {
	if a.Valid() {
		return algorithmNames[a]
	}
	return fmt.Sprintf("Algorithm(%d)", uint32(a))
}

// Valid reports whether a is a known ordinal.
func (a Algorithm) Valid() bool { return uint64(a) < uint64(len(algorithmNames)) }

// Algorithms returns every known algorithm in wire order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, len(algorithmNames))
	for i := range out {
		out[i] = Algorithm(i)
	}
	return out
}

// ParseAlgorithm looks up an algorithm by canonical name (e.g. "KYBER_768__ECDHp384").
func ParseAlgorithm(s string) (Algorithm, error) {
	for i, n := range algorithmNames {
		if n == s {
			return Algorithm(i), nil
		}
	}
	return NoAlgorithm, fmt.Errorf("unknown algorithm %q", s)
}

// Operation: what the executor should do. 4-byte ordinal on wire.
type Operation uint32

const (
	NoOperation Operation = iota
	KeypairGeneration
	Encapsulation
	Decapsulation
)

var operationNames = [...]string{
	NoOperation:       "NoOperation",
	KeypairGeneration: "KeypairGeneration",
	Encapsulation:     "Encapsulation",
	Decapsulation:     "Decapsulation",
}

func (o Operation) String() string {
	if o.Valid() {
		return operationNames[o]
	}
	return fmt.Sprintf("Operation(%d)", uint32(o))
}

// Valid reports whether o is a known ordinal.
func (o Operation) Valid() bool { return uint64(o) < uint64(len(operationNames)) }

// ParseOperation looks up an operation by name.
func ParseOperation(s string) (Operation, error) {
	for i, n := range operationNames {
		if n == s {
			return Operation(i), nil
		}
	}
	return NoOperation, fmt.Errorf("unknown operation %q", s)
}

// RequestHeader precedes every request body.
// Identifier is an opaque caller token echoed in the response; DataLen is the exact
// body size following the header.
type RequestHeader struct {
	Version    uint8
	Identifier uint64
	DataLen    uint32
	Algorithm  Algorithm
	Operation  Operation
}

// ResponseHeader precedes every response body. Success 0 = ok; nonzero = failure,
// in which case DataLen is always 0.
type ResponseHeader struct {
	Version    uint8
	Identifier uint64
	Success    int8
	DataLen    uint32
}

// OK reports Success == 0.
func (h ResponseHeader) OK() bool { return h.Success == 0 }

// Request: header + body, handed around together within one call.
type Request struct {
	Header RequestHeader
	Body   []byte
}

// Response: header + body (empty on failure).
type Response struct {
	Header ResponseHeader
	Body   []byte
}
