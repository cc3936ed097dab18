package gpg

import "strings"

// DetachedSignature signs plaintext and returns the signature records
// together with the armored detached signature blob, ready for a
// PGP/MIME signature part. A nil signer selects the engine's default
// signing key.
func (g *GPG) DetachedSignature(plaintext []byte, signer *Key) ([]Signature, []byte, error) {
	sigs, blob, err := g.engine.SignDetached(plaintext, signer)
	if err != nil {
		return nil, nil, wrapError(err, CodeOther, "gpg: signing failed")
	}
	return sigs, blob, nil
}

// DetachedSignatureBy resolves identifier to a signing-capable key and
// signs with it.
func (g *GPG) DetachedSignatureBy(plaintext []byte, identifier string) ([]Signature, []byte, error) {
	key, err := g.GetKey(identifier, KeyRequest{Validate: true, Sign: true})
	if err != nil {
		return nil, nil, err
	}
	return g.DetachedSignature(plaintext, key)
}

// Encrypt produces armored ciphertext for all given recipients. The
// supplied keys are trusted as-is: callers are expected to have
// resolved them with Encrypt set in the request, and no re-validation
// happens here.
func (g *GPG) Encrypt(plaintext []byte, recipients []*Key) ([]byte, error) {
	ciphertext, err := g.engine.Encrypt(plaintext, recipients)
	if err != nil {
		return nil, wrapError(err, CodeOther, "gpg: encryption failed")
	}
	return ciphertext, nil
}

// EncryptTo resolves each identifier to a validated, encryption-capable
// key with a trusted user id, then encrypts for all of them.
func (g *GPG) EncryptTo(plaintext []byte, identifiers []string) ([]byte, error) {
	recipients := make([]*Key, 0, len(identifiers))
	for _, identifier := range identifiers {
		key, err := g.GetKey(identifier, KeyRequest{Validate: true, Encrypt: true, SignedOnly: true})
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, key)
	}
	return g.Encrypt(plaintext, recipients)
}

// VerifyDetached checks that signature is an authentic signature over
// message and returns the verified signature records.
func (g *GPG) VerifyDetached(message, signature []byte) ([]Signature, error) {
	sigs, err := g.engine.VerifyDetached(message, signature)
	if err != nil {
		return nil, wrapError(err, CodeOther, "gpg: signature verification failed")
	}
	return sigs, nil
}

// DecryptVerify decrypts ciphertext and verifies any inline signature
// it carries, returning both the signature records and the plaintext.
func (g *GPG) DecryptVerify(ciphertext []byte) ([]Signature, []byte, error) {
	plaintext, sigs, err := g.engine.DecryptVerify(ciphertext)
	if err != nil {
		return nil, nil, wrapError(err, CodeOther, "gpg: decryption failed")
	}
	return sigs, plaintext, nil
}

// MicalgFromHash converts an engine hash algorithm id to the micalg
// value RFC 3156 mandates for the multipart/signed content type, e.g.
// SHA256 becomes "pgp-sha256". Unknown ids fail rather than produce a
// malformed header.
func (g *GPG) MicalgFromHash(algo HashAlgorithm) (string, error) {
	name, err := g.engine.HashName(algo)
	if err != nil {
		return "", wrapError(err, CodeOther, "gpg: unknown hash algorithm")
	}
	return "pgp-" + strings.ToLower(name), nil
}
