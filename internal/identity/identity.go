// Package identity authenticates the trader behind a submission. A submission
// is signed as an EIP-191 personal message over its exact encoded body, and
// the trader identity is the address recovered from that signature.
package identity

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	HeaderAddress   = "X-Trader-Address"
	HeaderSignature = "X-Trader-Signature"
)

var (
	ErrMalformedAddress   = errors.New("malformed trader address")
	ErrMalformedSignature = errors.New("malformed signature")
	ErrSignatureMismatch  = errors.New("signature does not match trader address")
)

func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrMalformedAddress, s)
	}
	return common.HexToAddress(s), nil
}

// Recover returns the address that produced sig over payload. Both the 0/1
// and the legacy 27/28 recovery ids are accepted.
func Recover(payload, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: want %d bytes, got %d", ErrMalformedSignature, crypto.SignatureLength, len(sig))
	}

	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(payload), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify checks that the hex signature over payload was made by claimed.
func Verify(payload []byte, sigHex string, claimed common.Address) error {
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	signer, err := Recover(payload, sig)
	if err != nil {
		return err
	}
	if signer != claimed {
		return fmt.Errorf("%w: recovered %s, claimed %s", ErrSignatureMismatch, signer.Hex(), claimed.Hex())
	}
	return nil
}

type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func NewSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}
}

func GenerateSigner() (*Signer, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return NewSigner(key), nil
}

// SignerFromHex loads a secp256k1 private key given as hex, with or without 0x.
func SignerFromHex(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(trim0x(hexKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return NewSigner(key), nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// Sign produces a 65-byte signature with a 27/28 recovery id, the form
// wallets return for personal_sign.
func (s *Signer) Sign(payload []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(payload), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign payload: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

func (s *Signer) SignHex(payload []byte) (string, error) {
	sig, err := s.Sign(payload)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
