package crypto

import (
	"crypto/mlkem"
	"fmt"

	"filippo.io/mlkem768"
)

// mlkem768Scheme: KYBER_768. Private key = 64-byte seed.
type mlkem768Scheme struct{}

func (mlkem768Scheme) Name() string { return "ML-KEM-768" }

func (mlkem768Scheme) GenerateKeyPair() ([]byte, []byte, error) {
	dk, err := mlkem768.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	return dk.EncapsulationKey(), dk.Bytes(), nil
}

func (mlkem768Scheme) Encapsulate(public []byte) ([]byte, []byte, error) {
	if len(public) != mlkem768.EncapsulationKeySize {
		return nil, nil, fmt.Errorf("%w: ML-KEM-768 public key is %d bytes, got %d", ErrKey, mlkem768.EncapsulationKeySize, len(public))
	}
	ct, ss, err := mlkem768.Encapsulate(public)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	return ct, ss, nil
}

func (mlkem768Scheme) Decapsulate(private, ciphertext []byte) ([]byte, error) {
	dk, err := mlkem768.NewKeyFromSeed(private)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	if len(ciphertext) != mlkem768.CiphertextSize {
		return nil, fmt.Errorf("%w: ML-KEM-768 ciphertext is %d bytes, got %d", ErrCiphertext, mlkem768.CiphertextSize, len(ciphertext))
	}
	return mlkem768.Decapsulate(dk, ciphertext)
}

// mlkem1024Scheme: KYBER_1024 (crypto/mlkem; mlkem768 has no 1024 parameter set).
type mlkem1024Scheme struct{}

func (mlkem1024Scheme) Name() string { return "ML-KEM-1024" }

func (mlkem1024Scheme) GenerateKeyPair() ([]byte, []byte, error) {
	dk, err := mlkem.GenerateKey1024()
	if err != nil {
		return nil, nil, err
	}
	return dk.EncapsulationKey().Bytes(), dk.Bytes(), nil
}

func (mlkem1024Scheme) Encapsulate(public []byte) ([]byte, []byte, error) {
	ek, err := mlkem.NewEncapsulationKey1024(public)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	ss, ct := ek.Encapsulate()
	return ct, ss, nil
}

func (mlkem1024Scheme) Decapsulate(private, ciphertext []byte) ([]byte, error) {
	dk, err := mlkem.NewDecapsulationKey1024(private)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKey, err)
	}
	ss, err := dk.Decapsulate(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCiphertext, err)
	}
	return ss, nil
}
