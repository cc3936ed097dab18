package gpg

import (
	"fmt"
	"time"
)

// Validity is the engine-assigned confidence that a user id truly
// belongs to the key holder, on the GPGME 0-5 scale.
type Validity int8

const (
	ValidityUnknown Validity = iota
	ValidityUndefined
	ValidityNever
	ValidityMarginal
	ValidityFull
	ValidityUltimate
)

// HashAlgorithm is an engine-native hash algorithm id. The values are
// the OpenPGP wire ids (RFC 4880 section 9.4 and registry additions).
type HashAlgorithm uint8

const (
	HashMD5       HashAlgorithm = 1
	HashSHA1      HashAlgorithm = 2
	HashRIPEMD160 HashAlgorithm = 3
	HashSHA256    HashAlgorithm = 8
	HashSHA384    HashAlgorithm = 9
	HashSHA512    HashAlgorithm = 10
	HashSHA224    HashAlgorithm = 11
	HashSHA3_256  HashAlgorithm = 12
	HashSHA3_512  HashAlgorithm = 14
)

// UserID is a user id on a key, with the flags and validity the engine
// reported for it.
type UserID struct {
	Name     string
	Email    string
	Revoked  bool
	Invalid  bool
	Validity Validity
}

// Key is an immutable snapshot of a keyring entry as the engine saw it
// at lookup time. The core never mutates a Key.
type Key struct {
	Fingerprint string
	KeyID       string
	Revoked     bool
	Expired     bool
	Invalid     bool
	CanSign     bool
	CanEncrypt  bool
	HasPrivate  bool
	UserIDs     []UserID
}

// Primary names the key for error messages: the first user id when
// present, the key id otherwise.
func (k *Key) Primary() string {
	if len(k.UserIDs) > 0 {
		uid := k.UserIDs[0]
		if uid.Name != "" && uid.Email != "" {
			return fmt.Sprintf("%s <%s>", uid.Name, uid.Email)
		}
		if uid.Email != "" {
			return uid.Email
		}
		if uid.Name != "" {
			return uid.Name
		}
	}
	return k.KeyID
}

// Signature is the engine-produced record of a created or verified
// signature. The core surfaces it unmodified.
type Signature struct {
	KeyID        string
	Fingerprint  string
	CreationTime time.Time
	Hash         HashAlgorithm
	// Valid is false when the engine could decrypt a message but not
	// verify the inline signature it carried.
	Valid bool
}
