package mime

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/pkg/errors"

	"github.com/wrenmail/pgpmail/gpg"
	"github.com/wrenmail/pgpmail/internal"
)

// serializePart renders a minimal MIME entity: a Content-Type header
// followed by the CRLF-canonicalized, trailing-whitespace-trimmed body.
// This is the exact byte sequence the signature covers, and the exact
// byte sequence a receiving parser reconstructs before verifying.
func serializePart(contentType string, body []byte) []byte {
	canonical := internal.CanonicalizeBytes(internal.TrimEachLineBytes(body))
	part := append([]byte(nil), "Content-Type: "+contentType+"\r\n\r\n"...)
	return append(part, canonical...)
}

// Sign wraps body in a multipart/signed entity carrying a detached
// signature over the inner part, with the micalg parameter derived from
// the hash the signature actually used. A nil signer selects the
// keyring's default signing key. The returned bytes start at the
// Content-Type header and form a complete mail body.
func Sign(g *gpg.GPG, signer *gpg.Key, contentType string, body []byte) ([]byte, error) {
	signed := serializePart(contentType, body)

	sigs, blob, err := g.DetachedSignature(signed, signer)
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, errors.New("mime: signing yielded no signature")
	}
	micalg, err := g.MicalgFromHash(sigs[0].Hash)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	inner, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {contentType},
	})
	if err != nil {
		return nil, errors.Wrap(err, "mime: error in writing signed part")
	}
	canonical := internal.CanonicalizeBytes(internal.TrimEachLineBytes(body))
	if _, err := inner.Write(canonical); err != nil {
		return nil, errors.Wrap(err, "mime: error in writing signed part body")
	}

	sigPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`application/pgp-signature; name="signature.asc"`},
	})
	if err != nil {
		return nil, errors.Wrap(err, "mime: error in writing signature part")
	}
	if _, err := sigPart.Write(blob); err != nil {
		return nil, errors.Wrap(err, "mime: error in writing signature blob")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "mime: error in closing multipart writer")
	}

	head := fmt.Sprintf(
		"Content-Type: multipart/signed; boundary=%q;\r\n"+
			"\tprotocol=\"application/pgp-signature\"; micalg=%q\r\n\r\n",
		writer.Boundary(), micalg)
	return append([]byte(head), buf.Bytes()...), nil
}

// Encrypt wraps body in a multipart/encrypted entity, encrypting the
// inner part for all recipients. Recipients are used as given; resolve
// them first when starting from mail addresses.
func Encrypt(g *gpg.GPG, recipients []*gpg.Key, contentType string, body []byte) ([]byte, error) {
	ciphertext, err := g.Encrypt(serializePart(contentType, body), recipients)
	if err != nil {
		return nil, err
	}
	return encryptedEntity(ciphertext)
}

// EncryptTo is Encrypt with recipient resolution: each identifier must
// resolve to a validated, trusted, encryption-capable key.
func EncryptTo(g *gpg.GPG, identifiers []string, contentType string, body []byte) ([]byte, error) {
	ciphertext, err := g.EncryptTo(serializePart(contentType, body), identifiers)
	if err != nil {
		return nil, err
	}
	return encryptedEntity(ciphertext)
}

func encryptedEntity(ciphertext []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	control, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/pgp-encrypted"},
	})
	if err != nil {
		return nil, errors.Wrap(err, "mime: error in writing control part")
	}
	if _, err := control.Write([]byte("Version: 1\r\n")); err != nil {
		return nil, errors.Wrap(err, "mime: error in writing control part body")
	}

	payload, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`application/octet-stream; name="encrypted.asc"`},
	})
	if err != nil {
		return nil, errors.Wrap(err, "mime: error in writing ciphertext part")
	}
	if _, err := payload.Write(ciphertext); err != nil {
		return nil, errors.Wrap(err, "mime: error in writing ciphertext")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "mime: error in closing multipart writer")
	}

	head := fmt.Sprintf(
		"Content-Type: multipart/encrypted; boundary=%q;\r\n"+
			"\tprotocol=\"application/pgp-encrypted\"\r\n\r\n",
		writer.Boundary())
	return append([]byte(head), buf.Bytes()...), nil
}
