package gpg

// LookupStatus is the outcome of a single-key lookup.
type LookupStatus int8

const (
	// LookupFound means the identifier matched exactly one key.
	LookupFound LookupStatus = iota
	// LookupAmbiguous means the identifier matched more than one key.
	LookupAmbiguous
	// LookupNotFound means the identifier is malformed or matched nothing.
	LookupNotFound
)

// LookupResult is the sum-typed result of Engine.LookupKey.
// Key is set only when Status is LookupFound.
type LookupResult struct {
	Status LookupStatus
	Key    *Key
}

// Engine is the narrow boundary to an external OpenPGP implementation.
// Implementations own key storage, the cryptographic primitives and any
// user interaction (passphrase prompts); calls may block on it.
//
// Keys returned by an engine are fresh immutable snapshots; the core
// never caches or mutates them.
type Engine interface {
	// LookupKey finds the single key matching identifier. Ambiguity and
	// absence are reported through the result status, not as errors;
	// the error return is reserved for engine failures.
	LookupKey(identifier string) (LookupResult, error)

	// ListKeys returns all keys matching hint, every key if hint is
	// empty, restricted to keys with private material if privateOnly.
	ListKeys(hint string, privateOnly bool) ([]*Key, error)

	// SignDetached produces a detached, armored signature over
	// plaintext. A nil signer selects the engine's default signing key.
	SignDetached(plaintext []byte, signer *Key) ([]Signature, []byte, error)

	// Encrypt produces armored ciphertext readable by all recipients.
	Encrypt(plaintext []byte, recipients []*Key) ([]byte, error)

	// VerifyDetached checks signature against message and returns the
	// verified signatures. Verification failure is an error.
	VerifyDetached(message, signature []byte) ([]Signature, error)

	// DecryptVerify decrypts ciphertext and verifies any inline
	// signature it carries, returning both.
	DecryptVerify(ciphertext []byte) ([]byte, []Signature, error)

	// HashName returns the engine's name for a hash algorithm,
	// e.g. "SHA256". Unknown ids are an error.
	HashName(algo HashAlgorithm) (string, error)
}
