package keyring

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"

	"github.com/wrenmail/pgpmail/gpg"
)

// LookupKey finds the single entity matching identifier; ambiguity and
// absence are reported through the result status.
func (kr *Keyring) LookupKey(identifier string) (gpg.LookupResult, error) {
	matches := kr.match(identifier, false)
	switch len(matches) {
	case 0:
		return gpg.LookupResult{Status: gpg.LookupNotFound}, nil
	case 1:
		return gpg.LookupResult{Status: gpg.LookupFound, Key: kr.snapshot(matches[0])}, nil
	default:
		return gpg.LookupResult{Status: gpg.LookupAmbiguous}, nil
	}
}

// ListKeys returns snapshots of all entities matching hint, in ring
// order.
func (kr *Keyring) ListKeys(hint string, privateOnly bool) ([]*gpg.Key, error) {
	matches := kr.match(hint, privateOnly)
	keys := make([]*gpg.Key, 0, len(matches))
	for _, entity := range matches {
		keys = append(keys, kr.snapshot(entity))
	}
	return keys, nil
}

func (kr *Keyring) match(identifier string, privateOnly bool) []*openpgp.Entity {
	var out []*openpgp.Entity
	for _, entity := range kr.entities {
		if privateOnly && entity.PrivateKey == nil {
			continue
		}
		if identifier == "" || matchesEntity(entity, identifier) {
			out = append(out, entity)
		}
	}
	return out
}

// matchesEntity mimics gpg filter terms: a hex key id or fingerprint
// (suffix of 8, 16 or 40 digits) or a case-insensitive substring of a
// user id.
func matchesEntity(entity *openpgp.Entity, identifier string) bool {
	if isHexIdentifier(identifier) {
		fingerprint := hex.EncodeToString(entity.PrimaryKey.Fingerprint)
		if strings.HasSuffix(fingerprint, strings.ToLower(identifier)) {
			return true
		}
	}
	needle := strings.ToLower(identifier)
	for name := range entity.Identities {
		if strings.Contains(strings.ToLower(name), needle) {
			return true
		}
	}
	return false
}

func isHexIdentifier(identifier string) bool {
	switch len(identifier) {
	case 8, 16, 40:
	default:
		return false
	}
	_, err := strconv.ParseUint(strings.ToLower(identifier), 16, 64)
	if err != nil && len(identifier) > 16 {
		_, err = hex.DecodeString(identifier)
	}
	return err == nil
}

// snapshot converts an entity to an immutable key value at the current
// engine time. Snapshots are built fresh on every call.
func (kr *Keyring) snapshot(entity *openpgp.Entity) *gpg.Key {
	now := kr.clock()
	key := &gpg.Key{
		Fingerprint: hex.EncodeToString(entity.PrimaryKey.Fingerprint),
		KeyID:       keyIDToHex(entity.PrimaryKey.KeyId),
		HasPrivate:  entity.PrivateKey != nil,
	}

	key.Revoked = entity.Revoked(now)
	selfSig := primarySelfSignature(entity)
	if selfSig == nil {
		key.Invalid = true
	} else {
		key.Expired = entity.PrimaryKey.KeyExpired(selfSig, now) ||
			selfSig.SigExpired(now)
	}

	if _, ok := entity.SigningKey(now); ok && key.HasPrivate {
		// Only keys with private material can actually sign here.
		key.CanSign = true
	}
	_, key.CanEncrypt = entity.EncryptionKey(now)

	key.UserIDs = kr.userIDs(entity)
	return key
}

// primarySelfSignature picks the self-signature of the primary user
// id, falling back to any identity that carries one.
func primarySelfSignature(entity *openpgp.Entity) *packet.Signature {
	var selected *packet.Signature
	for _, ident := range entity.Identities {
		if ident.SelfSignature == nil {
			continue
		}
		if selected == nil {
			selected = ident.SelfSignature
			continue
		}
		if ident.SelfSignature.IsPrimaryId != nil && *ident.SelfSignature.IsPrimaryId {
			selected = ident.SelfSignature
		}
	}
	return selected
}

func (kr *Keyring) userIDs(entity *openpgp.Entity) []gpg.UserID {
	names := make([]string, 0, len(entity.Identities))
	for name := range entity.Identities {
		names = append(names, name)
	}
	// Identities is a map; keep the sequence stable.
	sort.Strings(names)

	uids := make([]gpg.UserID, 0, len(names))
	for _, name := range names {
		ident := entity.Identities[name]
		uid := gpg.UserID{
			Name:     ident.UserId.Name,
			Email:    ident.UserId.Email,
			Revoked:  len(ident.Revocations) > 0,
			Invalid:  ident.SelfSignature == nil,
			Validity: kr.validity(entity),
		}
		uids = append(uids, uid)
	}
	return uids
}

// validity derives a user-id validity from ownertrust: our own keys
// are ultimately valid, keys with assigned owner trust take that
// level, everything else is unknown.
func (kr *Keyring) validity(entity *openpgp.Entity) gpg.Validity {
	if entity.PrivateKey != nil {
		return gpg.ValidityUltimate
	}
	fingerprint := hex.EncodeToString(entity.PrimaryKey.Fingerprint)
	if validity, ok := kr.trust[fingerprint]; ok {
		return validity
	}
	return gpg.ValidityUnknown
}

func (kr *Keyring) byFingerprint(fingerprint string) *openpgp.Entity {
	want := strings.ToLower(fingerprint)
	for _, entity := range kr.entities {
		if hex.EncodeToString(entity.PrimaryKey.Fingerprint) == want {
			return entity
		}
	}
	return nil
}

// keyIDToHex casts a keyID to hex with the correct padding.
func keyIDToHex(keyID uint64) string {
	return fmt.Sprintf("%016v", strconv.FormatUint(keyID, 16))
}
