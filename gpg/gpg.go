// Package gpg implements the OpenPGP policy core of a mail client:
// resolving human-supplied key identifiers to usable keys, validating
// keys against an intended cryptographic use, and the four PGP/MIME
// operations (detached signing, encryption, verification and
// decrypt-and-verify).
//
// The cryptographic work itself is delegated to an Engine. Every call
// is synchronous and may block for the duration of the engine round
// trip, which can include user interaction owned by the engine, such
// as a passphrase prompt. The package provides no cancellation or
// timeout; that policy belongs to the caller.
package gpg

// GPG is a handle bundling an engine with resolution policy. It holds
// no cross-call state; concurrent use is safe as far as the engine is.
type GPG struct {
	engine         Engine
	trustThreshold Validity
}

// Option configures a GPG handle.
type Option func(*GPG)

// WithTrustThreshold sets the minimum user-id validity required by
// IsUIDTrusted. The default is ValidityFull, matching the GPGME
// convention that a validity of at least 4 means "full or ultimate
// trust". Engines with a different trust scale can lower or raise it.
func WithTrustThreshold(threshold Validity) Option {
	return func(g *GPG) {
		g.trustThreshold = threshold
	}
}

// New creates a handle on top of the given engine.
func New(engine Engine, opts ...Option) *GPG {
	g := &GPG{
		engine:         engine,
		trustThreshold: ValidityFull,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
