package mime

import (
	"bytes"
	"io"
	"mime"
	"net/textproto"

	pgpErrors "github.com/ProtonMail/go-crypto/openpgp/errors"
	gomime "github.com/ProtonMail/go-mime"
	"github.com/pkg/errors"

	"github.com/wrenmail/pgpmail/constants"
	"github.com/wrenmail/pgpmail/gpg"
	"github.com/wrenmail/pgpmail/internal"
)

// signatureCollector intercepts multipart/signed parts during the MIME
// visit and verifies the detached signature over the canonicalized raw
// first part.
type signatureCollector struct {
	g          *gpg.GPG
	target     gomime.VisitAcceptor
	signature  string
	signatures []gpg.Signature
	status     int
}

func newSignatureCollector(target gomime.VisitAcceptor, g *gpg.GPG) *signatureCollector {
	return &signatureCollector{
		g:      g,
		target: target,
		status: constants.SIGNATURE_NOT_SIGNED,
	}
}

// Accept collects and verifies the signature.
func (sc *signatureCollector) Accept(
	part io.Reader, header textproto.MIMEHeader,
	hasPlainSibling, isFirst, isLast bool,
) (err error) {
	parentMediaType, params, _ := mime.ParseMediaType(header.Get("Content-Type"))

	if parentMediaType != "multipart/signed" {
		return sc.target.Accept(part, header, hasPlainSibling, isFirst, isLast)
	}

	newPart, rawBody := gomime.GetRawMimePart(part, "--"+params["boundary"])
	multiparts, multipartHeaders, err := gomime.GetMultipartParts(newPart, params)
	if err != nil {
		return err
	}

	hasPlainChild := false
	for _, header := range multipartHeaders {
		mediaType, _, _ := mime.ParseMediaType(header.Get("Content-Type"))
		if mediaType == "text/plain" {
			hasPlainChild = true
		}
	}
	if len(multiparts) != 2 {
		sc.status = constants.SIGNATURE_NOT_SIGNED
		// Invalid multipart/signed format, just pass the parts along.
		if _, err = io.ReadAll(rawBody); err != nil {
			return errors.Wrap(err, "mime: error in reading raw message body")
		}
		for i, p := range multiparts {
			if err = sc.target.Accept(p, multipartHeaders[i], hasPlainChild, true, true); err != nil {
				return err
			}
		}
		return nil
	}

	// Actual multipart/signed format.
	if err = sc.target.Accept(multiparts[0], multipartHeaders[0], hasPlainChild, true, true); err != nil {
		return errors.Wrap(err, "mime: error in parsing body")
	}

	partData, err := io.ReadAll(multiparts[1])
	if err != nil {
		return errors.Wrap(err, "mime: error in reading signature part")
	}
	decodedPart := gomime.DecodeContentEncoding(
		bytes.NewReader(partData),
		multipartHeaders[1].Get("Content-Transfer-Encoding"))
	buffer, err := io.ReadAll(decodedPart)
	if err != nil {
		return errors.Wrap(err, "mime: error in reading decoded signature data")
	}
	mediaType, _, _ := mime.ParseMediaType(header.Get("Content-Type"))
	buffer, err = gomime.DecodeCharset(buffer, mediaType, params)
	if err != nil {
		return errors.Wrap(err, "mime: error in decoding charset")
	}
	sc.signature = string(buffer)

	raw, _ := io.ReadAll(rawBody)
	canonicalizedBody := internal.CanonicalizeBytes(internal.TrimEachLineBytes(raw))

	sigs, err := sc.g.VerifyDetached(canonicalizedBody, buffer)
	switch {
	case err == nil:
		sc.signatures = sigs
		sc.status = constants.SIGNATURE_OK
	case errors.Is(err, pgpErrors.ErrUnknownIssuer):
		sc.status = constants.SIGNATURE_NO_VERIFIER
	default:
		sc.status = constants.SIGNATURE_FAILED
	}
	return nil
}

// GetSignature returns the armored signature collected by Accept.
func (sc *signatureCollector) GetSignature() string {
	return sc.signature
}
