package keyring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenmail/pgpmail/gpg"
)

const testMailBody = "Content-Type: text/plain\r\n\r\nHi,\r\n\r\nthis mail is private.\r\n"

func TestSignVerifyRoundTrip(t *testing.T) {
	entity := generateEntity(t, "Alice", "alice@example.org", nil)
	kr := New()
	require.NoError(t, kr.AddEntity(entity))

	sigs, blob, err := kr.SignDetached([]byte(testMailBody), nil)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.True(t, sigs[0].Valid)
	assert.Equal(t, gpg.HashSHA256, sigs[0].Hash)
	assert.Contains(t, string(blob), "-----BEGIN PGP SIGNATURE-----")

	verified, err := kr.VerifyDetached([]byte(testMailBody), blob)
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, sigs[0].Fingerprint, verified[0].Fingerprint)
	assert.True(t, verified[0].Valid)
}

func TestVerifyDetachedRejectsTampering(t *testing.T) {
	entity := generateEntity(t, "Alice", "alice@example.org", nil)
	kr := New()
	require.NoError(t, kr.AddEntity(entity))

	_, blob, err := kr.SignDetached([]byte(testMailBody), nil)
	require.NoError(t, err)

	_, err = kr.VerifyDetached([]byte(testMailBody+"p.s. send money"), blob)
	assert.Error(t, err)
}

func TestSignDetachedExplicitSigner(t *testing.T) {
	kr := New()
	require.NoError(t, kr.AddEntity(generateEntity(t, "Alice", "alice@example.org", nil)))
	require.NoError(t, kr.AddEntity(generateEntity(t, "Work", "work@example.org", nil)))

	keys, err := kr.ListKeys("work@example.org", false)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	sigs, _, err := kr.SignDetached([]byte(testMailBody), keys[0])
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, keys[0].Fingerprint, sigs[0].Fingerprint)
}

func TestSignDetachedWithoutPrivateKey(t *testing.T) {
	kr := New()
	require.NoError(t, kr.AddEntity(publicOnly(t, generateEntity(t, "Bob", "bob@example.org", nil))))

	_, _, err := kr.SignDetached([]byte(testMailBody), nil)
	assert.Error(t, err)
}

func TestMicalgForFreshSignature(t *testing.T) {
	kr := New()
	require.NoError(t, kr.AddEntity(generateEntity(t, "Alice", "alice@example.org", nil)))
	g := gpg.New(kr)

	sigs, _, err := g.DetachedSignature([]byte(testMailBody), nil)
	require.NoError(t, err)
	require.Len(t, sigs, 1)

	micalg, err := g.MicalgFromHash(sigs[0].Hash)
	require.NoError(t, err)
	assert.Equal(t, "pgp-sha256", micalg)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	entity := generateEntity(t, "Alice", "alice@example.org", nil)
	kr := New()
	require.NoError(t, kr.AddEntity(entity))

	keys, err := kr.ListKeys("alice@example.org", false)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	ciphertext, err := kr.Encrypt([]byte(testMailBody), keys)
	require.NoError(t, err)
	assert.Contains(t, string(ciphertext), "-----BEGIN PGP MESSAGE-----")

	plaintext, sigs, err := kr.DecryptVerify(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, []byte(testMailBody), plaintext)
	assert.Empty(t, sigs, "unsigned ciphertext must carry no signatures")
}

func TestEncryptUnknownRecipient(t *testing.T) {
	kr := New()
	require.NoError(t, kr.AddEntity(generateEntity(t, "Alice", "alice@example.org", nil)))

	stranger := &gpg.Key{Fingerprint: "00000000000000000000000000000000deadbeef", KeyID: "00000000deadbeef"}
	_, err := kr.Encrypt([]byte(testMailBody), []*gpg.Key{stranger})
	assert.Error(t, err)
}

func TestEncryptNoRecipients(t *testing.T) {
	kr := New()
	_, err := kr.Encrypt([]byte(testMailBody), nil)
	assert.Error(t, err)
}

func TestDecryptVerifyGarbage(t *testing.T) {
	kr := New()
	require.NoError(t, kr.AddEntity(generateEntity(t, "Alice", "alice@example.org", nil)))

	_, _, err := kr.DecryptVerify([]byte("certainly not a pgp message"))
	assert.Error(t, err)
}

func TestHashName(t *testing.T) {
	kr := New()

	name, err := kr.HashName(gpg.HashSHA256)
	require.NoError(t, err)
	assert.Equal(t, "SHA256", name)

	_, err = kr.HashName(gpg.HashAlgorithm(99))
	assert.Error(t, err)
}
