package gpg

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMicalgFromHash(t *testing.T) {
	g := New(&fakeEngine{hashNames: map[HashAlgorithm]string{
		HashSHA1:   "SHA1",
		HashSHA256: "SHA256",
		HashSHA512: "SHA512",
	}})

	tests := []struct {
		algo HashAlgorithm
		want string
	}{
		{HashSHA1, "pgp-sha1"},
		{HashSHA256, "pgp-sha256"},
		{HashSHA512, "pgp-sha512"},
	}
	for _, tt := range tests {
		micalg, err := g.MicalgFromHash(tt.algo)
		require.NoError(t, err)
		assert.Equal(t, tt.want, micalg)
	}
}

func TestMicalgFromHashUnknown(t *testing.T) {
	g := New(&fakeEngine{hashNames: map[HashAlgorithm]string{}})

	_, err := g.MicalgFromHash(HashSHA256)
	assert.Error(t, err)
	assert.Equal(t, CodeOther, CodeOf(err))
}

func TestMicalgSignRoundTrip(t *testing.T) {
	// The micalg derived from a fresh signature's hash must name the
	// hash the engine actually signed with.
	engine := &fakeEngine{
		hashNames: map[HashAlgorithm]string{HashSHA256: "SHA256"},
		signSigs:  []Signature{{Hash: HashSHA256, Valid: true}},
		signBlob:  []byte("-----BEGIN PGP SIGNATURE-----"),
	}
	g := New(engine)

	sigs, _, err := g.DetachedSignature([]byte("mail body"), nil)
	require.NoError(t, err)
	require.Len(t, sigs, 1)

	micalg, err := g.MicalgFromHash(sigs[0].Hash)
	require.NoError(t, err)
	assert.Equal(t, "pgp-sha256", micalg)
}

func TestDetachedSignatureEngineFailure(t *testing.T) {
	cause := errors.New("no pinentry")
	g := New(&fakeEngine{signErr: cause})

	_, _, err := g.DetachedSignature([]byte("mail body"), nil)
	assert.Equal(t, CodeOther, CodeOf(err))
	assert.True(t, errors.Is(err, cause))
}

func TestDetachedSignatureByResolvesSigner(t *testing.T) {
	signer := testKey(testFprAlice, "alice@example.org")
	engine := &fakeEngine{
		keys:     []*Key{signer},
		signSigs: []Signature{{Hash: HashSHA256, Valid: true}},
		signBlob: []byte("sig"),
	}
	g := New(engine)

	_, blob, err := g.DetachedSignatureBy([]byte("mail body"), "alice@example.org")
	require.NoError(t, err)
	assert.Equal(t, []byte("sig"), blob)
	assert.Equal(t, 1, engine.signCalls)
}

func TestDetachedSignatureByRejectsUnusableSigner(t *testing.T) {
	signer := testKey(testFprAlice, "alice@example.org")
	signer.CanSign = false
	engine := &fakeEngine{keys: []*Key{signer}}
	g := New(engine)

	_, _, err := g.DetachedSignatureBy([]byte("mail body"), "alice@example.org")
	assert.Equal(t, CodeKeyCannotSign, CodeOf(err))
	assert.Zero(t, engine.signCalls, "engine must not sign with an unusable key")
}

func TestEncryptTrustsSuppliedKeys(t *testing.T) {
	// Encrypt does not re-validate: the caller resolved the keys.
	revoked := testKey(testFprAlice, "alice@example.org")
	revoked.Revoked = true
	engine := &fakeEngine{ciphertext: []byte("cipher")}
	g := New(engine)

	out, err := g.Encrypt([]byte("mail body"), []*Key{revoked})
	require.NoError(t, err)
	assert.Equal(t, []byte("cipher"), out)
}

func TestEncryptToRequiresTrustedUID(t *testing.T) {
	recipient := testKey(testFprAlice, "alice@example.org")
	recipient.UserIDs[0].Validity = ValidityMarginal
	engine := &fakeEngine{keys: []*Key{recipient}, ciphertext: []byte("cipher")}
	g := New(engine)

	_, err := g.EncryptTo([]byte("mail body"), []string{"alice@example.org"})
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Zero(t, engine.encryptCalls)

	recipient.UserIDs[0].Validity = ValidityFull
	out, err := g.EncryptTo([]byte("mail body"), []string{"alice@example.org"})
	require.NoError(t, err)
	assert.Equal(t, []byte("cipher"), out)
}

func TestVerifyDetachedEngineFailure(t *testing.T) {
	cause := errors.New("bad signature")
	g := New(&fakeEngine{verifyErr: cause})

	_, err := g.VerifyDetached([]byte("mail body"), []byte("sig"))
	assert.Equal(t, CodeOther, CodeOf(err))
	assert.True(t, errors.Is(err, cause))
}

func TestDecryptVerifyReturnsBoth(t *testing.T) {
	engine := &fakeEngine{
		plaintext:   []byte("mail body"),
		decryptSigs: []Signature{{KeyID: "0123456789abcdef", Valid: true}},
	}
	g := New(engine)

	sigs, plaintext, err := g.DecryptVerify([]byte("cipher"))
	require.NoError(t, err)
	assert.Equal(t, []byte("mail body"), plaintext)
	require.Len(t, sigs, 1)
	assert.True(t, sigs[0].Valid)
}
