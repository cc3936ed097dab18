package gpg

// ValidateKey asserts that a key is usable and, optionally, that it can
// be used for signing or encrypting.
//
// The check order is fixed and short-circuits: revocation, expiry and
// invalidity are prerequisite conditions and win over capability, so a
// revoked key that also cannot encrypt is reported as revoked.
func ValidateKey(key *Key, sign, encrypt bool) error {
	switch {
	case key.Revoked:
		return newError(CodeKeyRevoked, "the key %q is revoked", key.Primary())
	case key.Expired:
		return newError(CodeKeyExpired, "the key %q is expired", key.Primary())
	case key.Invalid:
		return newError(CodeKeyInvalid, "the key %q is invalid", key.Primary())
	}
	if encrypt && !key.CanEncrypt {
		return newError(CodeKeyCannotEncrypt, "the key %q can not encrypt", key.Primary())
	}
	if sign && !key.CanSign {
		return newError(CodeKeyCannotSign, "the key %q can not sign", key.Primary())
	}
	return nil
}

// IsUIDTrusted reports whether email can be assumed to belong to the
// key holder: some user id on the key must carry exactly that email,
// be neither revoked nor invalid, and meet the handle's trust
// threshold. Matching is exact equality; this is a trust boundary, not
// a search.
func (g *GPG) IsUIDTrusted(key *Key, email string) bool {
	for _, uid := range key.UserIDs {
		if email == uid.Email && !uid.Revoked && !uid.Invalid && uid.Validity >= g.trustThreshold {
			return true
		}
	}
	return false
}
