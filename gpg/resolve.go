package gpg

// KeyRequest states what the caller needs the resolved key for.
type KeyRequest struct {
	// Validate runs ValidateKey on an unambiguous match.
	Validate bool
	// Sign and Encrypt select the capabilities validation checks.
	Sign    bool
	Encrypt bool
	// SignedOnly additionally requires a trusted user id matching the
	// identifier. Useful when auto-selecting an encryption key from a
	// bare email address.
	SignedOnly bool
}

// GetKey resolves identifier to exactly one usable key.
//
// When the engine reports the identifier as ambiguous, all candidates
// are listed and re-checked with ValidateKey for the requested use:
// the engine surfaces expired, invalid and revoked keys alongside
// legitimate ones, and blind ambiguity should not block usage if
// exactly one candidate actually works. True ambiguity among several
// usable candidates is still rejected; silently picking one would be a
// security hazard.
func (g *GPG) GetKey(identifier string, req KeyRequest) (*Key, error) {
	result, err := g.engine.LookupKey(identifier)
	if err != nil {
		return nil, wrapError(err, CodeOther, "gpg: key lookup failed")
	}

	var key *Key
	switch result.Status {
	case LookupAmbiguous:
		key, err = g.disambiguate(identifier, req)
		if err != nil {
			return nil, err
		}
	case LookupNotFound:
		return nil, newError(CodeNotFound, "can not find key for %q", identifier)
	default:
		key = result.Key
		if key == nil {
			// Engine inconsistency; degrade rather than crash.
			return nil, newError(CodeNotFound, "can not find key for %q", identifier)
		}
		if req.Validate {
			if err := ValidateKey(key, req.Sign, req.Encrypt); err != nil {
				return nil, err
			}
		}
	}

	if req.SignedOnly && !g.IsUIDTrusted(key, identifier) {
		return nil, newError(CodeNotFound, "can not find a trustworthy key for %q", identifier)
	}
	return key, nil
}

// disambiguate recovers from an ambiguous lookup by discarding the
// candidates that fail validation for the requested use and recounting.
func (g *GPG) disambiguate(identifier string, req KeyRequest) (*Key, error) {
	keys, err := g.engine.ListKeys(identifier, false)
	if err != nil {
		return nil, wrapError(err, CodeOther, "gpg: key listing failed")
	}

	var usable *Key
	for _, key := range keys {
		if err := ValidateKey(key, req.Sign, req.Encrypt); err != nil {
			// Not usable for this action, skip it.
			continue
		}
		if usable != nil {
			return nil, newError(CodeAmbiguousName,
				"more than one key found matching %q; please be more specific (use a key ID like 4AC8EE1D)",
				identifier)
		}
		usable = key
	}
	if usable == nil {
		return nil, newError(CodeNotFound, "can not find usable key for %q", identifier)
	}
	return usable, nil
}

// ListKeys returns all keys matching hint, an empty hint listing the
// whole ring. Set private to list only keys with secret material.
func (g *GPG) ListKeys(hint string, private bool) ([]*Key, error) {
	keys, err := g.engine.ListKeys(hint, private)
	if err != nil {
		return nil, wrapError(err, CodeOther, "gpg: key listing failed")
	}
	return keys, nil
}
