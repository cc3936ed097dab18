package gpg

import "strings"

// fakeEngine is an in-memory engine for policy tests. Lookup and
// listing match on exact user-id email or on a fingerprint substring.
type fakeEngine struct {
	keys []*Key

	// forceLookup overrides the derived lookup status to simulate an
	// engine whose keyring changed between lookup and listing.
	forceLookup *LookupStatus

	lookupErr error
	listErr   error

	hashNames map[HashAlgorithm]string

	signSigs []Signature
	signBlob []byte
	signErr  error

	ciphertext []byte
	encryptErr error

	verifySigs []Signature
	verifyErr  error

	plaintext   []byte
	decryptSigs []Signature
	decryptErr  error

	signCalls    int
	encryptCalls int
}

func (f *fakeEngine) matches(hint string, privateOnly bool) []*Key {
	var out []*Key
	for _, key := range f.keys {
		if privateOnly && !key.HasPrivate {
			continue
		}
		if hint == "" || strings.Contains(key.Fingerprint, hint) {
			out = append(out, key)
			continue
		}
		for _, uid := range key.UserIDs {
			if uid.Email == hint {
				out = append(out, key)
				break
			}
		}
	}
	return out
}

func (f *fakeEngine) LookupKey(identifier string) (LookupResult, error) {
	if f.lookupErr != nil {
		return LookupResult{}, f.lookupErr
	}
	if f.forceLookup != nil {
		return LookupResult{Status: *f.forceLookup}, nil
	}
	matches := f.matches(identifier, false)
	switch len(matches) {
	case 0:
		return LookupResult{Status: LookupNotFound}, nil
	case 1:
		return LookupResult{Status: LookupFound, Key: matches[0]}, nil
	default:
		return LookupResult{Status: LookupAmbiguous}, nil
	}
}

func (f *fakeEngine) ListKeys(hint string, privateOnly bool) ([]*Key, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.matches(hint, privateOnly), nil
}

func (f *fakeEngine) SignDetached(plaintext []byte, signer *Key) ([]Signature, []byte, error) {
	f.signCalls++
	if f.signErr != nil {
		return nil, nil, f.signErr
	}
	return f.signSigs, f.signBlob, nil
}

func (f *fakeEngine) Encrypt(plaintext []byte, recipients []*Key) ([]byte, error) {
	f.encryptCalls++
	if f.encryptErr != nil {
		return nil, f.encryptErr
	}
	return f.ciphertext, nil
}

func (f *fakeEngine) VerifyDetached(message, signature []byte) ([]Signature, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifySigs, nil
}

func (f *fakeEngine) DecryptVerify(ciphertext []byte) ([]byte, []Signature, error) {
	if f.decryptErr != nil {
		return nil, nil, f.decryptErr
	}
	return f.plaintext, f.decryptSigs, nil
}

func (f *fakeEngine) HashName(algo HashAlgorithm) (string, error) {
	if name, ok := f.hashNames[algo]; ok {
		return name, nil
	}
	return "", newError(CodeOther, "fake: unknown hash algorithm %d", algo)
}

// testKey builds a usable key snapshot with a single trusted user id.
func testKey(fingerprint, email string) *Key {
	return &Key{
		Fingerprint: fingerprint,
		KeyID:       fingerprint[len(fingerprint)-16:],
		CanSign:     true,
		CanEncrypt:  true,
		HasPrivate:  true,
		UserIDs: []UserID{
			{Name: "Test Key", Email: email, Validity: ValidityFull},
		},
	}
}

const (
	testFprAlice = "1234567890abcdef1234567890abcdef12345678"
	testFprBob   = "abcdef1234567890abcdef1234567890abcdef12"
)
