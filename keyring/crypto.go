package keyring

import (
	"bytes"
	"crypto"
	"encoding/hex"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/pkg/errors"

	"github.com/wrenmail/pgpmail/armor"
	"github.com/wrenmail/pgpmail/gpg"
)

// hashNames maps engine hash ids to GPGME-style algorithm names.
var hashNames = map[gpg.HashAlgorithm]string{
	gpg.HashMD5:       "MD5",
	gpg.HashSHA1:      "SHA1",
	gpg.HashRIPEMD160: "RIPEMD160",
	gpg.HashSHA256:    "SHA256",
	gpg.HashSHA384:    "SHA384",
	gpg.HashSHA512:    "SHA512",
	gpg.HashSHA224:    "SHA224",
}

// hashIDs maps go-crypto hash functions to engine hash ids.
var hashIDs = map[crypto.Hash]gpg.HashAlgorithm{
	crypto.MD5:       gpg.HashMD5,
	crypto.SHA1:      gpg.HashSHA1,
	crypto.RIPEMD160: gpg.HashRIPEMD160,
	crypto.SHA256:    gpg.HashSHA256,
	crypto.SHA384:    gpg.HashSHA384,
	crypto.SHA512:    gpg.HashSHA512,
	crypto.SHA224:    gpg.HashSHA224,
}

// HashName returns the engine name of a hash algorithm, e.g. "SHA256".
func (kr *Keyring) HashName(algo gpg.HashAlgorithm) (string, error) {
	name, ok := hashNames[algo]
	if !ok {
		return "", errors.Errorf("keyring: unknown hash algorithm %d", algo)
	}
	return name, nil
}

func (kr *Keyring) config() *packet.Config {
	return &packet.Config{
		DefaultHash:   crypto.SHA256,
		DefaultCipher: packet.CipherAES256,
		Time:          kr.clock,
	}
}

// SignDetached produces an armored detached signature over plaintext.
// A nil signer uses the configured default signer, falling back to the
// first private key in the ring.
func (kr *Keyring) SignDetached(plaintext []byte, signer *gpg.Key) ([]gpg.Signature, []byte, error) {
	entity, err := kr.signingEntity(signer)
	if err != nil {
		return nil, nil, err
	}
	if err := kr.unlock(entity); err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&buf, entity, bytes.NewReader(plaintext), kr.config()); err != nil {
		return nil, nil, errors.Wrap(err, "keyring: detached signing failed")
	}

	sigPacket, err := parseSignaturePacket(buf.Bytes())
	if err != nil {
		return nil, nil, err
	}
	return []gpg.Signature{signatureMeta(sigPacket, entity, true)}, buf.Bytes(), nil
}

func (kr *Keyring) signingEntity(signer *gpg.Key) (*openpgp.Entity, error) {
	switch {
	case signer != nil:
		entity := kr.byFingerprint(signer.Fingerprint)
		if entity == nil || entity.PrivateKey == nil {
			return nil, errors.Errorf("keyring: no private key for %s", signer.Fingerprint)
		}
		return entity, nil
	case kr.defaultSigner != "":
		entity := kr.byFingerprint(kr.defaultSigner)
		if entity == nil || entity.PrivateKey == nil {
			return nil, errors.Errorf("keyring: default signer %s has no private key", kr.defaultSigner)
		}
		return entity, nil
	}
	for _, entity := range kr.entities {
		if entity.PrivateKey != nil {
			return entity, nil
		}
	}
	return nil, errors.New("keyring: no private key in keyring")
}

// unlock decrypts the private keys of entity, prompting for the
// passphrase when they are protected. May block on the prompt.
func (kr *Keyring) unlock(entity *openpgp.Entity) error {
	if entity.PrivateKey == nil {
		return errors.New("keyring: not a private key")
	}
	if !isLocked(entity) {
		return nil
	}
	if kr.prompt == nil {
		return errors.New("keyring: key is locked and no passphrase prompt is configured")
	}

	passphrase, err := kr.prompt(keyIDToHex(entity.PrimaryKey.KeyId))
	if err != nil {
		return errors.Wrap(err, "keyring: passphrase prompt failed")
	}
	if entity.PrivateKey.Encrypted {
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return errors.Wrap(err, "keyring: wrong passphrase")
		}
	}
	for _, sub := range entity.Subkeys {
		if sub.PrivateKey != nil && sub.PrivateKey.Encrypted {
			if err := sub.PrivateKey.Decrypt(passphrase); err != nil {
				return errors.Wrap(err, "keyring: wrong passphrase")
			}
		}
	}
	return nil
}

func isLocked(entity *openpgp.Entity) bool {
	if entity.PrivateKey != nil && entity.PrivateKey.Encrypted {
		return true
	}
	for _, sub := range entity.Subkeys {
		if sub.PrivateKey != nil && sub.PrivateKey.Encrypted {
			return true
		}
	}
	return false
}

// Encrypt produces armored ciphertext readable by all recipients.
func (kr *Keyring) Encrypt(plaintext []byte, recipients []*gpg.Key) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, errors.New("keyring: no recipients given")
	}

	to := make([]*openpgp.Entity, 0, len(recipients))
	for _, recipient := range recipients {
		entity := kr.byFingerprint(recipient.Fingerprint)
		if entity == nil {
			return nil, errors.Errorf("keyring: recipient %s is not in the keyring", recipient.KeyID)
		}
		to = append(to, entity)
	}

	var buf bytes.Buffer
	armorWriter, err := armor.MessageWriter(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "keyring: cannot create armor writer")
	}
	plaintextWriter, err := openpgp.Encrypt(armorWriter, to, nil, nil, kr.config())
	if err != nil {
		return nil, errors.Wrap(err, "keyring: encryption failed")
	}
	if _, err := plaintextWriter.Write(plaintext); err != nil {
		return nil, errors.Wrap(err, "keyring: error writing plaintext")
	}
	if err := plaintextWriter.Close(); err != nil {
		return nil, errors.Wrap(err, "keyring: error closing encryption writer")
	}
	if err := armorWriter.Close(); err != nil {
		return nil, errors.Wrap(err, "keyring: error closing armor writer")
	}
	return buf.Bytes(), nil
}

// VerifyDetached checks signature (armored or binary) against message.
func (kr *Keyring) VerifyDetached(message, signature []byte) ([]gpg.Signature, error) {
	sigPacket, err := parseSignaturePacket(signature)
	if err != nil {
		return nil, err
	}

	_, armored := armor.IsPGPArmored(bytes.NewReader(signature))
	var signer *openpgp.Entity
	if armored {
		signer, err = openpgp.CheckArmoredDetachedSignature(
			kr.entities, bytes.NewReader(message), bytes.NewReader(signature), kr.config())
	} else {
		signer, err = openpgp.CheckDetachedSignature(
			kr.entities, bytes.NewReader(message), bytes.NewReader(signature), kr.config())
	}
	if err != nil {
		return nil, errors.Wrap(err, "keyring: signature verification failed")
	}
	return []gpg.Signature{signatureMeta(sigPacket, signer, true)}, nil
}

// DecryptVerify decrypts ciphertext and verifies any inline signature,
// returning the plaintext together with the signature records. A
// signature by an unknown or mismatching key does not fail the
// decryption; it is reported as an invalid signature record.
func (kr *Keyring) DecryptVerify(ciphertext []byte) ([]byte, []gpg.Signature, error) {
	reader, armored := armor.IsPGPArmored(bytes.NewReader(ciphertext))
	if armored {
		unarmored, err := armor.Unarmor(ciphertext)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(unarmored)
	}

	md, err := openpgp.ReadMessage(reader, kr.entities, kr.promptFunction(), kr.config())
	if err != nil {
		return nil, nil, errors.Wrap(err, "keyring: decryption failed")
	}
	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return nil, nil, errors.Wrap(err, "keyring: error reading decrypted message")
	}

	// Signature checks are populated only after the body is drained.
	var sigs []gpg.Signature
	if md.IsSigned {
		sig := gpg.Signature{
			KeyID: keyIDToHex(md.SignedByKeyId),
			Valid: md.SignatureError == nil,
		}
		if md.Signature != nil {
			sig.CreationTime = md.Signature.CreationTime
			if algo, ok := hashIDs[md.Signature.Hash]; ok {
				sig.Hash = algo
			}
		}
		if md.SignedBy != nil {
			sig.Fingerprint = hex.EncodeToString(md.SignedBy.PublicKey.Fingerprint)
		}
		sigs = append(sigs, sig)
	}
	return plaintext, sigs, nil
}

func (kr *Keyring) promptFunction() openpgp.PromptFunction {
	if kr.prompt == nil {
		return nil
	}
	return func(keys []openpgp.Key, symmetric bool) ([]byte, error) {
		if symmetric || len(keys) == 0 {
			return nil, errors.New("keyring: no key to prompt for")
		}
		passphrase, err := kr.prompt(keyIDToHex(keys[0].PublicKey.KeyId))
		if err != nil {
			return nil, errors.Wrap(err, "keyring: passphrase prompt failed")
		}
		for i := range keys {
			if keys[i].PrivateKey != nil && keys[i].PrivateKey.Encrypted {
				if err := keys[i].PrivateKey.Decrypt(passphrase); err != nil {
					return nil, errors.Wrap(err, "keyring: wrong passphrase")
				}
			}
		}
		return passphrase, nil
	}
}

// parseSignaturePacket extracts the first signature packet from an
// armored or binary signature blob, for its metadata.
func parseSignaturePacket(data []byte) (*packet.Signature, error) {
	reader, armored := armor.IsPGPArmored(bytes.NewReader(data))
	if armored {
		unarmored, err := armor.Unarmor(data)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(unarmored)
	}

	packets := packet.NewReader(reader)
	for {
		p, err := packets.Next()
		if err != nil {
			return nil, errors.Wrap(err, "keyring: cannot parse signature packet")
		}
		if sig, ok := p.(*packet.Signature); ok {
			return sig, nil
		}
	}
}

func signatureMeta(sig *packet.Signature, signer *openpgp.Entity, valid bool) gpg.Signature {
	meta := gpg.Signature{
		CreationTime: sig.CreationTime,
		Valid:        valid,
	}
	if algo, ok := hashIDs[sig.Hash]; ok {
		meta.Hash = algo
	}
	if sig.IssuerKeyId != nil {
		meta.KeyID = keyIDToHex(*sig.IssuerKeyId)
	}
	if sig.IssuerFingerprint != nil {
		meta.Fingerprint = hex.EncodeToString(sig.IssuerFingerprint)
	}
	if signer != nil {
		meta.KeyID = keyIDToHex(signer.PrimaryKey.KeyId)
		meta.Fingerprint = hex.EncodeToString(signer.PrimaryKey.Fingerprint)
	}
	return meta
}
