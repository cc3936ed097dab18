// Package mime assembles and disassembles PGP/MIME (RFC 3156) mail
// entities on top of the gpg core.
package mime

import (
	"bytes"
	"io"
	stdmime "mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"

	gomime "github.com/ProtonMail/go-mime"
	"github.com/pkg/errors"

	"github.com/wrenmail/pgpmail/constants"
	"github.com/wrenmail/pgpmail/gpg"
	"github.com/wrenmail/pgpmail/internal"
)

// Attachment is a non-body MIME part with its raw headers.
type Attachment struct {
	Header  string
	Content []byte
}

// Message is the flattened result of parsing a mail entity: the
// preferred body part, the remaining parts as attachments, and the
// outcome of any signature or encryption layer that was unwrapped.
type Message struct {
	BodyContent  string
	BodyMIMEType string
	Attachments  []*Attachment

	Signatures      []gpg.Signature
	SignatureStatus int
}

// Parse reads a complete mail message, unwrapping multipart/encrypted
// and multipart/signed layers along the way. Decryption and signature
// verification run against the keyring behind g.
func Parse(g *gpg.GPG, message []byte) (*Message, error) {
	mm, err := mail.ReadMessage(bytes.NewReader(message))
	if err != nil {
		return nil, errors.Wrap(err, "mime: error in reading message")
	}
	header := textproto.MIMEHeader(mm.Header)
	body, err := io.ReadAll(mm.Body)
	if err != nil {
		return nil, errors.Wrap(err, "mime: error in reading message body")
	}

	mediaType, params, _ := stdmime.ParseMediaType(header.Get("Content-Type"))
	if mediaType == "multipart/encrypted" {
		return parseEncrypted(g, params, body)
	}
	return parseEntity(g, header, body)
}

// parseEncrypted unwraps a multipart/encrypted entity: decrypt the
// payload part, then parse the recovered inner entity.
func parseEncrypted(g *gpg.GPG, params map[string]string, body []byte) (*Message, error) {
	ciphertext, err := encryptedPayload(params["boundary"], body)
	if err != nil {
		return nil, err
	}
	sigs, plaintext, err := g.DecryptVerify(ciphertext)
	if err != nil {
		return nil, err
	}

	inner, err := mail.ReadMessage(bytes.NewReader(plaintext))
	if err != nil {
		return nil, errors.Wrap(err, "mime: error in reading decrypted entity")
	}
	innerBody, err := io.ReadAll(inner.Body)
	if err != nil {
		return nil, errors.Wrap(err, "mime: error in reading decrypted body")
	}
	msg, err := parseEntity(g, textproto.MIMEHeader(inner.Header), innerBody)
	if err != nil {
		return nil, err
	}

	// An inline signature made during encryption counts unless the
	// inner entity carried its own multipart/signed layer.
	if len(sigs) > 0 && msg.SignatureStatus == constants.SIGNATURE_NOT_SIGNED {
		msg.Signatures = sigs
		msg.SignatureStatus = statusFromSignatures(sigs)
	}
	return msg, nil
}

// encryptedPayload returns the ciphertext part of a multipart/encrypted
// body, skipping the application/pgp-encrypted control part.
func encryptedPayload(boundary string, body []byte) ([]byte, error) {
	if boundary == "" {
		return nil, errors.New("mime: multipart/encrypted without boundary")
	}
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "mime: error in reading encrypted parts")
		}
		mediaType, _, _ := stdmime.ParseMediaType(part.Header.Get("Content-Type"))
		if mediaType == "application/pgp-encrypted" {
			continue
		}
		ciphertext, err := io.ReadAll(part)
		if err != nil {
			return nil, errors.Wrap(err, "mime: error in reading ciphertext part")
		}
		return ciphertext, nil
	}
	return nil, errors.New("mime: no ciphertext part in multipart/encrypted")
}

// parseEntity runs the visitor pipeline over a single MIME entity,
// collecting body, attachments and signature state.
func parseEntity(g *gpg.GPG, header textproto.MIMEHeader, body []byte) (*Message, error) {
	printAccepter := gomime.NewMIMEPrinter()
	bodyCollector := gomime.NewBodyCollector(printAccepter)
	attachmentsCollector := gomime.NewAttachmentsCollector(bodyCollector)
	mimeVisitor := gomime.NewMimeVisitor(attachmentsCollector)
	signatures := newSignatureCollector(mimeVisitor, g)

	if err := gomime.VisitAll(bytes.NewReader(body), header, signatures); err != nil {
		return nil, errors.Wrap(err, "mime: error in parsing entity")
	}

	bodyContent, bodyMIMEType := bodyCollector.GetBody()
	msg := &Message{
		BodyContent:     internal.SanitizeString(bodyContent),
		BodyMIMEType:    bodyMIMEType,
		Signatures:      signatures.signatures,
		SignatureStatus: signatures.status,
	}

	attachments := attachmentsCollector.GetAttachments()
	headers := attachmentsCollector.GetAttHeaders()
	for i := range attachments {
		msg.Attachments = append(msg.Attachments, &Attachment{
			Header:  headers[i],
			Content: []byte(attachments[i]),
		})
	}
	return msg, nil
}

func statusFromSignatures(sigs []gpg.Signature) int {
	if len(sigs) == 0 {
		return constants.SIGNATURE_NOT_SIGNED
	}
	for _, sig := range sigs {
		if !sig.Valid {
			return constants.SIGNATURE_FAILED
		}
	}
	return constants.SIGNATURE_OK
}
