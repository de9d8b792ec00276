package keys

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"webvh.dev/didlog/diderr"
)

// Key pair from the W3C VC-DI-EdDSA examples.
const (
	vectorVerifyingMultibase = "z6MkrJVnaZkeFzdQyMZu1cgjg7k1pZZ6pvBQ7XJPt4swbTQ2"
	vectorSigningMultibase   = "z3u2en7t5LR2WtQH5PfFqMqwVHBeXouLzo6haApm8XHqvjxq"
)

func TestKeyPairFromMultibaseDerivesVerifyingHalf(t *testing.T) {
	pair, err := KeyPairFromMultibase(vectorSigningMultibase)
	if err != nil {
		t.Fatalf("key pair from multibase: %v", err)
	}
	if got := pair.Verifying.ToMultibase(); got != vectorVerifyingMultibase {
		t.Fatalf("verifying key %s, want %s", got, vectorVerifyingMultibase)
	}
	if got := pair.Signing.ToMultibase(); got != vectorSigningMultibase {
		t.Fatalf("signing key %s, want %s", got, vectorSigningMultibase)
	}
}

func TestVerifyingKeyRoundTrip(t *testing.T) {
	vk, err := VerifyingKeyFromMultibase(vectorVerifyingMultibase)
	if err != nil {
		t.Fatalf("verifying key from multibase: %v", err)
	}
	if got := vk.ToMultibase(); got != vectorVerifyingMultibase {
		t.Fatalf("round trip mismatch: %s", got)
	}
	if len(vk.Bytes()) != ed25519.PublicKeySize {
		t.Fatalf("verifying key length %d", len(vk.Bytes()))
	}
}

func TestKeyDecodingRejectsSwappedPrefixes(t *testing.T) {
	if _, err := SigningKeyFromMultibase(vectorVerifyingMultibase); !diderr.IsKind(err, diderr.KindDeserializationFailed) {
		t.Fatalf("verifying text accepted as signing key: %v", err)
	}
	if _, err := VerifyingKeyFromMultibase(vectorSigningMultibase); !diderr.IsKind(err, diderr.KindDeserializationFailed) {
		t.Fatalf("signing text accepted as verifying key: %v", err)
	}
}

func TestKeyDecodingRejectsGarbage(t *testing.T) {
	if _, err := VerifyingKeyFromMultibase("6Mk-not-multibase"); !diderr.IsKind(err, diderr.KindDeserializationFailed) {
		t.Fatalf("want DeserializationFailed, got %v", err)
	}
	if _, err := VerifyingKeyFromMultibase("z6Mk"); !diderr.IsKind(err, diderr.KindDeserializationFailed) {
		t.Fatalf("want DeserializationFailed for truncated key, got %v", err)
	}
}

func TestFromSeedDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	a, err := FromSeed(seed)
	if err != nil {
		t.Fatalf("from seed: %v", err)
	}
	b, err := FromSeed(seed)
	if err != nil {
		t.Fatalf("from seed: %v", err)
	}
	if !a.Verifying.Equal(b.Verifying) {
		t.Fatalf("same seed produced different keys")
	}
}

func TestFromSeedRejectsWrongLength(t *testing.T) {
	_, err := FromSeed([]byte{1, 2, 3})
	if !diderr.IsKind(err, diderr.KindDeserializationFailed) {
		t.Fatalf("want DeserializationFailed, got %v", err)
	}
}

func TestGenerateProducesDistinctPairs(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a.Verifying.Equal(b.Verifying) {
		t.Fatalf("two generated pairs share a verifying key")
	}
}

func TestDeriveRoleSeed(t *testing.T) {
	root := bytes.Repeat([]byte{3}, ed25519.SeedSize)
	update, err := DeriveRoleSeed(root, "update")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	witness, err := DeriveRoleSeed(root, "witness")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if bytes.Equal(update, witness) {
		t.Fatalf("distinct roles derived the same seed")
	}
	again, err := DeriveRoleSeed(root, "update")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !bytes.Equal(update, again) {
		t.Fatalf("role derivation is not deterministic")
	}
}

func TestKeyStoreLifecycle(t *testing.T) {
	dir := t.TempDir()
	ks, err := CreateKeyStore(dir)
	if err != nil {
		t.Fatalf("create keystore: %v", err)
	}

	seed := bytes.Repeat([]byte{9}, ed25519.SeedSize)
	rootVK, _, err := ks.InitializeRootKey("alice", seed, false)
	if err != nil {
		t.Fatalf("init root key: %v", err)
	}
	if _, _, err := ks.InitializeRootKey("alice", seed, false); err == nil {
		t.Fatalf("re-init without force must fail")
	}

	roleVK, _, err := ks.DeriveKeyFromRole("alice", "update", false)
	if err != nil {
		t.Fatalf("derive role key: %v", err)
	}
	if roleVK == rootVK {
		t.Fatalf("role key equals root key")
	}

	exported, err := ks.ExportKey("alice", "update")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported != roleVK {
		t.Fatalf("exported %s, want %s", exported, roleVK)
	}

	entries, err := ks.ListKeys()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Identifier != "alice" {
		t.Fatalf("unexpected listing %+v", entries)
	}
	if len(entries[0].Roles) != 1 || entries[0].Roles[0] != "update" {
		t.Fatalf("unexpected roles %+v", entries[0].Roles)
	}

	pair, err := ks.LoadKeyPair("", "alice", "update", "")
	if err != nil {
		t.Fatalf("load key pair: %v", err)
	}
	if pair.Verifying.ToMultibase() != roleVK {
		t.Fatalf("loaded pair does not match the derived role key")
	}
}
