package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wrenmail/pgpmail/constants"
	"github.com/wrenmail/pgpmail/gpg"
	"github.com/wrenmail/pgpmail/mime"
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign the message body on stdin as a multipart/signed entity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := openCore()
		if err != nil {
			return err
		}
		body, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return errors.Wrap(err, "cannot read message body")
		}

		var signer *gpg.Key
		if identifier, _ := cmd.Flags().GetString("key"); identifier != "" {
			signer, err = g.GetKey(identifier, gpg.KeyRequest{Validate: true, Sign: true})
			if err != nil {
				return err
			}
		}
		contentType, _ := cmd.Flags().GetString("content-type")

		if detach, _ := cmd.Flags().GetBool("detach"); detach {
			_, blob, err := g.DetachedSignature(body, signer)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(blob)
			return err
		}

		entity, err := mime.Sign(g, signer, contentType, body)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(entity)
		return err
	},
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt the message body on stdin as a multipart/encrypted entity",
	Long: `Encrypt resolves every --to identifier to a validated key with a
trusted user id and encrypts the body from stdin for all of them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := openCore()
		if err != nil {
			return err
		}
		recipients, _ := cmd.Flags().GetStringSlice("to")
		if len(recipients) == 0 {
			return errors.New("at least one --to recipient is required")
		}
		body, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return errors.Wrap(err, "cannot read message body")
		}
		contentType, _ := cmd.Flags().GetString("content-type")

		entity, err := mime.EncryptTo(g, recipients, contentType, body)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(entity)
		return err
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the signature state of the mail entity on stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := parseStdin(cmd)
		if err != nil {
			return err
		}
		reportSignatures(cmd, msg)
		if msg.SignatureStatus == constants.SIGNATURE_FAILED {
			return errors.New("signature verification failed")
		}
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt the mail entity on stdin and print its body",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := parseStdin(cmd)
		if err != nil {
			return err
		}
		reportSignatures(cmd, msg)
		for _, attachment := range msg.Attachments {
			logger.Info("attachment skipped",
				zap.String("header", attachment.Header),
				zap.Int("bytes", len(attachment.Content)))
		}
		fmt.Fprint(cmd.OutOrStdout(), msg.BodyContent)
		return nil
	},
}

func init() {
	signCmd.Flags().String("key", "", "signing key identifier (default: configured default key)")
	signCmd.Flags().String("content-type", "text/plain", "content type of the signed part")
	signCmd.Flags().Bool("detach", false, "emit only the armored detached signature")

	encryptCmd.Flags().StringSlice("to", nil, "recipient identifier (repeatable)")
	encryptCmd.Flags().String("content-type", "text/plain", "content type of the encrypted part")
}

func parseStdin(cmd *cobra.Command) (*mime.Message, error) {
	g, _, err := openCore()
	if err != nil {
		return nil, err
	}
	message, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, errors.Wrap(err, "cannot read message")
	}
	return mime.Parse(g, message)
}

func reportSignatures(cmd *cobra.Command, msg *mime.Message) {
	out := cmd.ErrOrStderr()
	switch msg.SignatureStatus {
	case constants.SIGNATURE_OK:
		for _, sig := range msg.Signatures {
			fmt.Fprintf(out, "good signature by %s (%s)\n", sig.KeyID, sig.Fingerprint)
		}
	case constants.SIGNATURE_NOT_SIGNED:
		fmt.Fprintln(out, "message is not signed")
	case constants.SIGNATURE_NO_VERIFIER:
		fmt.Fprintln(out, "signed by an unknown key")
	case constants.SIGNATURE_FAILED:
		fmt.Fprintln(out, "BAD signature")
	}
}
