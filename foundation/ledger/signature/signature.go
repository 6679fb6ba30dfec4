// Package signature provides the Ed25519 key material and signing support
// used to authenticate transactions on the ledger.
package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Sizes for the byte level representation of key material. These are fixed
// by Ed25519 and are part of the wire and storage formats.
const (
	PublicKeySize  = 32
	PrivateKeySize = 32
	SignatureSize  = 64
)

// addressBytes is the number of leading public key bytes used to derive an
// address. Truncation keeps addresses short at the cost of a larger
// collision space, which is acceptable for this prototype address scheme.
const addressBytes = 8

// =============================================================================

// KeyError indicates key or signature material of the wrong shape was
// provided. The material never enters the system.
type KeyError struct {
	Field string
	Want  int
	Got   int
}

// Error implements the error interface.
func (ke *KeyError) Error() string {
	return fmt.Sprintf("invalid %s: want %d bytes, got %d", ke.Field, ke.Want, ke.Got)
}

// =============================================================================

// PublicKey is a 32 byte Ed25519 verification key.
type PublicKey struct {
	key ed25519.PublicKey
}

// PublicKeyFromBytes constructs a public key from its 32 byte form.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != PublicKeySize {
		return PublicKey{}, &KeyError{Field: "public key", Want: PublicKeySize, Got: len(b)}
	}

	key := make(ed25519.PublicKey, PublicKeySize)
	copy(key, b)

	return PublicKey{key: key}, nil
}

// Verify reports whether the signature is a valid signature of the message
// by this key. It never panics; malformed input yields false.
func (pk PublicKey) Verify(message []byte, sig Signature) bool {
	if len(pk.key) != PublicKeySize {
		return false
	}

	return ed25519.Verify(pk.key, message, sig.bytes[:])
}

// Bytes returns the 32 byte form of the public key.
func (pk PublicKey) Bytes() []byte {
	b := make([]byte, PublicKeySize)
	copy(b, pk.key)
	return b
}

// ToAddress derives the account address for this key: the hex encoding of
// the first 8 bytes, 16 lowercase hex characters.
func (pk PublicKey) ToAddress() string {
	return hex.EncodeToString(pk.key[:addressBytes])
}

// String implements the fmt.Stringer interface.
func (pk PublicKey) String() string {
	return hex.EncodeToString(pk.key)
}

// MarshalJSON implements the json.Marshaler interface. Keys travel as
// lowercase hex so storage and API collaborators round-trip them verbatim.
func (pk PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(pk.key))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decoding public key hex: %w", err)
	}

	key, err := PublicKeyFromBytes(b)
	if err != nil {
		return err
	}

	*pk = key
	return nil
}

// =============================================================================

// Signature is a 64 byte Ed25519 signature.
type Signature struct {
	bytes [SignatureSize]byte
}

// SignatureFromBytes constructs a signature from its 64 byte form.
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != SignatureSize {
		return Signature{}, &KeyError{Field: "signature", Want: SignatureSize, Got: len(b)}
	}

	var sig Signature
	copy(sig.bytes[:], b)

	return sig, nil
}

// Bytes returns the 64 byte form of the signature.
func (s Signature) Bytes() []byte {
	b := make([]byte, SignatureSize)
	copy(b, s.bytes[:])
	return b
}

// String implements the fmt.Stringer interface.
func (s Signature) String() string {
	return hex.EncodeToString(s.bytes[:])
}

// MarshalJSON implements the json.Marshaler interface.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(s.bytes[:]))
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	b, err := hex.DecodeString(str)
	if err != nil {
		return fmt.Errorf("decoding signature hex: %w", err)
	}

	sig, err := SignatureFromBytes(b)
	if err != nil {
		return err
	}

	*s = sig
	return nil
}

// =============================================================================

// KeyPair holds an Ed25519 private key and its public counterpart. The
// public key is derived at construction and the pair is immutable after.
type KeyPair struct {
	publicKey  PublicKey
	privateKey ed25519.PrivateKey
}

// Generate draws a fresh 32 byte seed from a cryptographically secure
// source and derives the key pair from it.
func Generate() (KeyPair, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return KeyPair{}, fmt.Errorf("reading random seed: %w", err)
	}

	return FromPrivateKeyBytes(seed)
}

// FromPrivateKeyBytes restores a key pair from a stored 32 byte private
// key seed.
func FromPrivateKeyBytes(b []byte) (KeyPair, error) {
	if len(b) != PrivateKeySize {
		return KeyPair{}, &KeyError{Field: "private key", Want: PrivateKeySize, Got: len(b)}
	}

	privateKey := ed25519.NewKeyFromSeed(b)

	publicKey, err := PublicKeyFromBytes(privateKey.Public().(ed25519.PublicKey))
	if err != nil {
		return KeyPair{}, err
	}

	return KeyPair{
		publicKey:  publicKey,
		privateKey: privateKey,
	}, nil
}

// Sign produces an Ed25519 signature over the message. Signing is
// deterministic for a given key and message.
func (kp KeyPair) Sign(message []byte) Signature {
	var sig Signature
	copy(sig.bytes[:], ed25519.Sign(kp.privateKey, message))

	return sig
}

// PublicKey returns the public counterpart of the private key.
func (kp KeyPair) PublicKey() PublicKey {
	return kp.publicKey
}

// PrivateKeyBytes returns the 32 byte seed form of the private key for
// persistence.
func (kp KeyPair) PrivateKeyBytes() []byte {
	b := make([]byte, PrivateKeySize)
	copy(b, kp.privateKey.Seed())
	return b
}
