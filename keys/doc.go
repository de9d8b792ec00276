// Package keys provides Ed25519 key material for the DID log.
//
// Stable:
//   - Pure, deterministic primitives: key generation, multibase encoding and
//     decoding of signing/verifying keys, role-seed derivation.
//
// Experimental:
//   - Filesystem-backed key storage and convenience helpers (KeyStore and
//     related functions). These are local-first utilities for the CLI and are
//     not part of the long-term protocol contract.
package keys
