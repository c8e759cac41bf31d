// Package crypto: KEM schemes the executor runs, keyed by proto.Algorithm.
// Pure ML-KEM (768, 1024) and ML-KEM + NIST-curve ECDH hybrids.
package crypto

import (
	"errors"
	"fmt"

	"dev.c0redev.pqmsg/internal/proto"
)

// SharedKeySize: every scheme here yields a 32-byte shared secret.
const SharedKeySize = 32

var (
	ErrUnsupported = errors.New("crypto: algorithm not supported")
	ErrKey         = errors.New("crypto: malformed key")
	ErrCiphertext  = errors.New("crypto: malformed ciphertext")
)

// Scheme: one KEM. Keys and ciphertexts are opaque byte strings; hybrids encode theirs
// as proto entry pairs (pq part, curve part).
type Scheme interface {
	Name() string
	GenerateKeyPair() (public, private []byte, err error)
	Encapsulate(public []byte) (ciphertext, shared []byte, err error)
	Decapsulate(private, ciphertext []byte) (shared []byte, err error)
}

var schemes = map[proto.Algorithm]Scheme{
	proto.Kyber768:          mlkem768Scheme{},
	proto.Kyber1024:         mlkem1024Scheme{},
	proto.Kyber768ECDHP384:  newHybrid(proto.Kyber768ECDHP384, mlkem768Scheme{}),
	proto.Kyber1024ECDHP521: newHybrid(proto.Kyber1024ECDHP521, mlkem1024Scheme{}),
}

// ForAlgorithm returns the scheme for alg or ErrUnsupported.
func ForAlgorithm(alg proto.Algorithm) (Scheme, error) {
	s, ok := schemes[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, alg)
	}
	return s, nil
}

// Supported lists algorithms with a scheme, in wire order.
func Supported() []proto.Algorithm {
	var out []proto.Algorithm
	for _, alg := range proto.Algorithms() {
		if _, ok := schemes[alg]; ok {
			out = append(out, alg)
		}
	}
	return out
}
