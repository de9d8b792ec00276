package keys

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"webvh.dev/didlog/codec"
	"webvh.dev/didlog/diderr"
)

// Multicodec prefixes distinguishing signing from verifying keys in multibase
// text, per the multicodec table (ed25519-pub 0xed, ed25519-priv 0x1300,
// varint encoded).
var (
	verifyingKeyPrefix = []byte{0xed, 0x01}
	signingKeyPrefix   = []byte{0x80, 0x26}
)

// SigningKey is the private half of an Ed25519 key pair.
//
// Key material is read-only for the lifetime of the process holding it.
type SigningKey struct {
	key ed25519.PrivateKey
}

// VerifyingKey is the public half of an Ed25519 key pair.
type VerifyingKey struct {
	key ed25519.PublicKey
}

// KeyPair holds both halves of an Ed25519 key pair.
type KeyPair struct {
	Signing   SigningKey
	Verifying VerifyingKey
}

// Generate returns a fresh random key pair.
func Generate() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, diderr.Wrap(diderr.KindSerializationFailed, "ed25519 key generation failed", err)
	}
	return KeyPair{Signing: SigningKey{key: priv}, Verifying: VerifyingKey{key: pub}}, nil
}

// FromSeed returns the key pair deterministically derived from a 32-byte seed.
func FromSeed(seed []byte) (KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return KeyPair{}, diderr.New(diderr.KindDeserializationFailed,
			fmt.Sprintf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed)))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return KeyPair{
		Signing:   SigningKey{key: priv},
		Verifying: VerifyingKey{key: priv.Public().(ed25519.PublicKey)},
	}, nil
}

// KeyPairFromMultibase reconstructs a full key pair from the multibase text of
// its signing half; the verifying half is derived.
func KeyPairFromMultibase(signingText string) (KeyPair, error) {
	signing, err := SigningKeyFromMultibase(signingText)
	if err != nil {
		return KeyPair{}, err
	}
	return FromSeed(signing.key.Seed())
}

// SigningKeyFromMultibase decodes a signing key from its multibase text form.
func SigningKeyFromMultibase(text string) (SigningKey, error) {
	raw, err := decodePrefixed(text, signingKeyPrefix, "signing")
	if err != nil {
		return SigningKey{}, err
	}
	return SigningKey{key: ed25519.NewKeyFromSeed(raw)}, nil
}

// VerifyingKeyFromMultibase decodes a verifying key from its multibase text form.
func VerifyingKeyFromMultibase(text string) (VerifyingKey, error) {
	raw, err := decodePrefixed(text, verifyingKeyPrefix, "verifying")
	if err != nil {
		return VerifyingKey{}, err
	}
	return VerifyingKey{key: ed25519.PublicKey(raw)}, nil
}

// VerifyingKeyFromPublicKey wraps raw Ed25519 public key bytes.
func VerifyingKeyFromPublicKey(pub ed25519.PublicKey) (VerifyingKey, error) {
	if l := len(pub); l != ed25519.PublicKeySize {
		return VerifyingKey{}, diderr.New(diderr.KindDeserializationFailed,
			fmt.Sprintf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, l))
	}
	return VerifyingKey{key: append(ed25519.PublicKey(nil), pub...)}, nil
}

func decodePrefixed(text string, prefix []byte, role string) ([]byte, error) {
	raw, err := codec.Base58Btc.Decode(text)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(prefix)+ed25519.SeedSize {
		return nil, diderr.New(diderr.KindDeserializationFailed,
			fmt.Sprintf("multibase %s key must decode to %d bytes, got %d", role, len(prefix)+ed25519.SeedSize, len(raw)))
	}
	if !bytes.Equal(raw[:len(prefix)], prefix) {
		return nil, diderr.New(diderr.KindDeserializationFailed,
			fmt.Sprintf("multibase text does not carry the ed25519 %s key multicodec prefix", role))
	}
	return raw[len(prefix):], nil
}

// ToMultibase returns the multibase text form of the signing key (its seed,
// prefixed with the ed25519-priv multicodec header).
func (k SigningKey) ToMultibase() string {
	return codec.Base58Btc.Encode(append(append([]byte(nil), signingKeyPrefix...), k.key.Seed()...))
}

// Bytes returns the raw Ed25519 private key for signing operations.
func (k SigningKey) Bytes() ed25519.PrivateKey {
	return k.key
}

// IsZero reports whether the key is unset.
func (k SigningKey) IsZero() bool { return len(k.key) == 0 }

// ToMultibase returns the multibase text form of the verifying key.
func (k VerifyingKey) ToMultibase() string {
	return codec.Base58Btc.Encode(append(append([]byte(nil), verifyingKeyPrefix...), k.key...))
}

// Bytes returns the raw Ed25519 public key for verification operations.
func (k VerifyingKey) Bytes() ed25519.PublicKey {
	return k.key
}

// IsZero reports whether the key is unset.
func (k VerifyingKey) IsZero() bool { return len(k.key) == 0 }

// Equal reports byte-for-byte equality of the verifying keys.
func (k VerifyingKey) Equal(other VerifyingKey) bool {
	return k.key.Equal(other.key)
}
