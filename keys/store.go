package keys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore represents a simple local-first key management system for the CLI.
//
// Features:
// - Supports Ed25519 keys only
// - Stores signing keys on the local filesystem in multibase text form
// - Generates deterministic subkeys based on roles (e.g. update, witness)
//
// This is storage, not policy: rotation and custody are the caller's concern.
type KeyStore struct {
	Directory string
}

type KeyEntry struct {
	Identifier string
	Roles      []string
}

func GetDefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".didlog", "keys"), nil
}

func CreateKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = GetDefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) rootKeyFilePath(identifier string) string {
	return filepath.Join(ks.Directory, identifier, "root.key")
}

func (ks *KeyStore) roleKeyFilePath(identifier, role string) string {
	return filepath.Join(ks.Directory, identifier, "roles", role+".key")
}

func CheckKeyName(identifier string) error {
	if identifier == "" {
		return errors.New("identifier cannot be empty")
	}
	for _, char := range identifier {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in identifier", char)
	}
	return nil
}

func CheckRole(role string) error {
	if role == "" {
		return errors.New("role cannot be empty")
	}
	for _, char := range role {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in role", char)
	}
	return nil
}

func (ks *KeyStore) saveKeyToFile(filePath string, pair KeyPair, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(filePath, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(pair.Signing.ToMultibase() + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (ks *KeyStore) loadKeyFromFile(filePath string) (KeyPair, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPairFromMultibase(strings.TrimSpace(string(data)))
}

// InitializeRootKey stores seed as the identity's root signing key and returns
// the verifying key multibase text plus the file path written.
func (ks *KeyStore) InitializeRootKey(identifier string, seed []byte, overwrite bool) (verifying string, filePath string, err error) {
	if err := CheckKeyName(identifier); err != nil {
		return "", "", err
	}
	pair, err := FromSeed(seed)
	if err != nil {
		return "", "", err
	}
	filePath = ks.rootKeyFilePath(identifier)
	if err := ks.saveKeyToFile(filePath, pair, overwrite); err != nil {
		return "", "", err
	}
	return pair.Verifying.ToMultibase(), filePath, nil
}

// DeriveKeyFromRole derives and stores a role-specific subkey for an identity.
func (ks *KeyStore) DeriveKeyFromRole(from, role string, overwrite bool) (verifying string, filePath string, err error) {
	if err := CheckKeyName(from); err != nil {
		return "", "", err
	}
	if err := CheckRole(role); err != nil {
		return "", "", err
	}
	rootPair, err := ks.loadKeyFromFile(ks.rootKeyFilePath(from))
	if err != nil {
		return "", "", err
	}
	roleSeed, err := DeriveRoleSeed(rootPair.Signing.Bytes().Seed(), role)
	if err != nil {
		return "", "", err
	}
	rolePair, err := FromSeed(roleSeed)
	if err != nil {
		return "", "", err
	}
	filePath = ks.roleKeyFilePath(from, role)
	if err := ks.saveKeyToFile(filePath, rolePair, overwrite); err != nil {
		return "", "", err
	}
	return rolePair.Verifying.ToMultibase(), filePath, nil
}

// ExportKey returns the verifying key multibase text for a stored key.
func (ks *KeyStore) ExportKey(identifier string, role string) (string, error) {
	if err := CheckKeyName(identifier); err != nil {
		return "", err
	}
	var pair KeyPair
	var err error
	if role == "" {
		pair, err = ks.loadKeyFromFile(ks.rootKeyFilePath(identifier))
	} else {
		if err := CheckRole(role); err != nil {
			return "", err
		}
		pair, err = ks.loadKeyFromFile(ks.roleKeyFilePath(identifier, role))
	}
	if err != nil {
		return "", err
	}
	return pair.Verifying.ToMultibase(), nil
}

// LoadKeyPair resolves a signer from, in order of preference: an inline
// multibase signing key, a key file path, or a stored identity (optionally a
// role subkey).
func (ks *KeyStore) LoadKeyPair(signingMultibase, signerName, signerRole, keyFile string) (KeyPair, error) {
	if signingMultibase != "" {
		return KeyPairFromMultibase(signingMultibase)
	}
	if keyFile != "" {
		return ks.loadKeyFromFile(keyFile)
	}
	if signerName != "" {
		if err := CheckKeyName(signerName); err != nil {
			return KeyPair{}, err
		}
		if signerRole == "" {
			return ks.loadKeyFromFile(ks.rootKeyFilePath(signerName))
		}
		if err := CheckRole(signerRole); err != nil {
			return KeyPair{}, err
		}
		return ks.loadKeyFromFile(ks.roleKeyFilePath(signerName, signerRole))
	}
	return KeyPair{}, errors.New("no signer provided")
}

func (ks *KeyStore) ListKeys() ([]KeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var identifiers []string
	for _, entry := range entries {
		if entry.IsDir() {
			identifiers = append(identifiers, entry.Name())
		}
	}
	sort.Strings(identifiers)

	var result []KeyEntry
	for _, identifier := range identifiers {
		rolesDir := filepath.Join(ks.Directory, identifier, "roles")
		roleEntries, rerr := os.ReadDir(rolesDir)
		var roles []string
		if rerr == nil {
			for _, roleEntry := range roleEntries {
				if roleEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(roleEntry.Name(), ".key") {
					roles = append(roles, strings.TrimSuffix(roleEntry.Name(), ".key"))
				}
			}
			sort.Strings(roles)
		}
		result = append(result, KeyEntry{Identifier: identifier, Roles: roles})
	}
	return result, nil
}
