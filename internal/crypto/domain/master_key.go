// Package domain defines the core cryptographic domain models for envelope encryption.
//
// It implements a two-tier key hierarchy: Master Key → DEK → Payload. Master keys are
// versioned and supplied externally; a fresh Data Encryption Key is generated per record
// and wrapped under the latest master key, so rotation only ever touches the wrapped DEK.
package domain

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
)

const (
	// MasterKeyEnvPrefix is the prefix shared by every recognized master key entry.
	MasterKeyEnvPrefix = "MASTER_KEY"

	// LegacyMasterKeyName is the unversioned entry accepted as version 1 when no
	// versioned entry exists.
	LegacyMasterKeyName = "MASTER_KEY"
)

// versionedKeyPattern matches MASTER_KEY_V<n> with a positive decimal n and no leading zeros.
var versionedKeyPattern = regexp.MustCompile(`^MASTER_KEY_V([1-9][0-9]*)$`)

// KeyDecoder converts a configuration value into raw master key bytes.
//
// The name is the configuration entry the value came from and is only used for error
// reporting. Implementations must return exactly KeySize bytes or an error.
type KeyDecoder func(name, value string) ([]byte, error)

// DecodeMasterKey is the default KeyDecoder: the value is the hex encoding of 32 raw bytes.
func DecodeMasterKey(name, value string) ([]byte, error) {
	return DecodeHex(name, value, KeySize)
}

// MasterKeyRegistry maps positive version numbers to 32-byte master keys.
//
// A registry is built once and never mutated afterwards; rotating keys means building a new
// registry, so concurrent readers can share one without locking. The highest version is
// used for new encryptions while any present version can be used for decryption.
//
// Removing a version from the configuration is how a master key is retired: records
// wrapped under it become permanently undecryptable.
type MasterKeyRegistry struct {
	keys     map[uint][]byte
	versions []uint
}

// MasterKeyVersionName returns the configuration entry name for a versioned master key.
func MasterKeyVersionName(version uint) string {
	return fmt.Sprintf("%s_V%d", MasterKeyEnvPrefix, version)
}

// BuildMasterKeyRegistry builds a registry from a flat name→value configuration mapping
// whose values are hex-encoded 32-byte keys.
//
// Recognized names:
//   - MASTER_KEY_V<n>: key for version n (n ≥ 1)
//   - MASTER_KEY: legacy key, used as version 1 only when no versioned entry is present
//
// Returns:
//   - ErrNoKeysConfigured if no entry matches
//   - ErrMalformedEncoding or *LengthMismatchError if a matching value is invalid
func BuildMasterKeyRegistry(config map[string]string) (*MasterKeyRegistry, error) {
	return BuildMasterKeyRegistryWithDecoder(config, DecodeMasterKey)
}

// BuildMasterKeyRegistryWithDecoder builds a registry like BuildMasterKeyRegistry but uses
// decode to turn each matching value into key bytes. The decoded length is checked again
// here so a decoder cannot smuggle in a short key.
//
// On error every key decoded so far is zeroed before returning.
func BuildMasterKeyRegistryWithDecoder(
	config map[string]string,
	decode KeyDecoder,
) (*MasterKeyRegistry, error) {
	entries := make(map[uint]string)
	for name := range config {
		m := versionedKeyPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		version, err := strconv.ParseUint(m[1], 10, 0)
		if err != nil {
			// Out of range for uint; the name cannot address a real version.
			continue
		}
		entries[uint(version)] = name
	}

	// Versioned entries win: the legacy name is only consulted when none exist.
	if len(entries) == 0 {
		if _, ok := config[LegacyMasterKeyName]; ok {
			entries[1] = LegacyMasterKeyName
		}
	}

	if len(entries) == 0 {
		return nil, ErrNoKeysConfigured
	}

	registry := &MasterKeyRegistry{
		keys:     make(map[uint][]byte, len(entries)),
		versions: slices.Sorted(maps.Keys(entries)),
	}

	for _, version := range registry.versions {
		name := entries[version]
		key, err := decode(name, config[name])
		if err != nil {
			registry.Close()
			return nil, err
		}
		if len(key) != KeySize {
			actual := len(key)
			Zero(key)
			registry.Close()
			return nil, &LengthMismatchError{Field: name, Expected: KeySize, Actual: actual}
		}
		registry.keys[version] = key
	}

	return registry, nil
}

// LatestVersion returns the highest version in the registry.
// Rotation policy: always encrypt with the latest version.
// An empty registry reports version 0, which is never a valid version.
func (r *MasterKeyRegistry) LatestVersion() uint {
	if len(r.versions) == 0 {
		return 0
	}
	return r.versions[len(r.versions)-1]
}

// Len returns the number of key versions held.
func (r *MasterKeyRegistry) Len() int {
	return len(r.versions)
}

// Versions returns every version present, in ascending order.
func (r *MasterKeyRegistry) Versions() []uint {
	return slices.Clone(r.versions)
}

// Has reports whether the registry holds the given version.
func (r *MasterKeyRegistry) Has(version uint) bool {
	_, ok := r.keys[version]
	return ok
}

// Get returns a copy of the key for version. The caller owns the copy and should Zero it
// once the cryptographic operation that needs it is done.
//
// Returns *UnknownKeyVersionError if the version is absent.
func (r *MasterKeyRegistry) Get(version uint) ([]byte, error) {
	key, ok := r.keys[version]
	if !ok {
		return nil, newUnknownKeyVersionError(version, r.versions)
	}
	return slices.Clone(key), nil
}

// Close zeroes all key material held by the registry. The registry must not be used
// afterwards; it is meant for process shutdown.
func (r *MasterKeyRegistry) Close() {
	for _, key := range r.keys {
		Zero(key)
	}
}
