package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"

	"dev.c0redev.pqmsg/internal/proto"
)

// hybrid: ML-KEM + ephemeral-static ECDH. Public/private keys and ciphertext are entry
// pairs (pq, ec); shared = HKDF(pqSecret || ecSecret, info = algorithm name).
type hybrid struct {
	alg   proto.Algorithm
	pq    Scheme
	curve ecdh.Curve
	hash  func() hash.Hash
}

func newHybrid(alg proto.Algorithm, pq Scheme) *hybrid {
	h := &hybrid{alg: alg, pq: pq}
	switch alg {
	case proto.Kyber768ECDHP384:
		h.curve, h.hash = ecdh.P384(), sha512.New384
	case proto.Kyber1024ECDHP521:
		h.curve, h.hash = ecdh.P521(), sha512.New
	default:
		panic(fmt.Sprintf("crypto: no hybrid curve for %v", alg))
	}
	return h
}

func (h *hybrid) Name() string { return h.alg.String() }

func (h *hybrid) GenerateKeyPair() ([]byte, []byte, error) {
	pqPub, pqPriv, err := h.pq.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}
	ec, err := h.curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return proto.PackEntries(pqPub, ec.PublicKey().Bytes()), proto.PackEntries(pqPriv, ec.Bytes()), nil
}

func (h *hybrid) Encapsulate(public []byte) ([]byte, []byte, error) {
	pub, err := proto.UnpackEntries(public)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	peer, err := h.curve.NewPublicKey(pub.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	pqCT, pqSS, err := h.pq.Encapsulate(pub.First)
	if err != nil {
		return nil, nil, err
	}
	eph, err := h.curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	ecSS, err := eph.ECDH(peer)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	ss, err := h.combine(pqSS, ecSS)
	if err != nil {
		return nil, nil, err
	}
	return proto.PackEntries(pqCT, eph.PublicKey().Bytes()), ss, nil
}

func (h *hybrid) Decapsulate(private, ciphertext []byte) ([]byte, error) {
	priv, err := proto.UnpackEntries(private)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	ct, err := proto.UnpackEntries(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	ec, err := h.curve.NewPrivateKey(priv.Second)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	eph, err := h.curve.NewPublicKey(ct.Second)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	pqSS, err := h.pq.Decapsulate(priv.First, ct.First)
	if err != nil {
		return nil, err
	}
	ecSS, err := ec.ECDH(eph)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	return h.combine(pqSS, ecSS)
}

func (h *hybrid) combine(pqSS, ecSS []byte) ([]byte, error) {
	ikm := make([]byte, 0, len(pqSS)+len(ecSS))
	ikm = append(append(ikm, pqSS...), ecSS...)
	out := make([]byte, SharedKeySize)
	if _, err := io.ReadFull(hkdf.New(h.hash, ikm, nil, []byte(h.alg.String())), out); err != nil {
		return nil, err
	}
	return out, nil
}
