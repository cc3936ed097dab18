package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrenmail/pgpmail/gpg"
)

var keysCmd = &cobra.Command{
	Use:   "keys [hint]",
	Short: "List keys in the keyring, optionally filtered by a hint",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := openCore()
		if err != nil {
			return err
		}
		hint := ""
		if len(args) == 1 {
			hint = args[0]
		}
		secret, _ := cmd.Flags().GetBool("secret")

		keys, err := g.ListKeys(hint, secret)
		if err != nil {
			return err
		}
		for _, key := range keys {
			printKey(cmd, key)
		}
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <identifier>",
	Short: "Resolve an identifier to a single usable key",
	Long: `Resolve looks up one key by mail address, key id, fingerprint or
name fragment, the way the sign and encrypt commands do: ambiguous
identifiers are narrowed to usable keys, and the result is validated
for the requested capability.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := openCore()
		if err != nil {
			return err
		}
		request := gpg.KeyRequest{Validate: true}
		request.Sign, _ = cmd.Flags().GetBool("sign")
		request.Encrypt, _ = cmd.Flags().GetBool("encrypt")
		request.SignedOnly, _ = cmd.Flags().GetBool("trusted")

		key, err := g.GetKey(args[0], request)
		if err != nil {
			return err
		}
		printKey(cmd, key)
		return nil
	},
}

func init() {
	keysCmd.Flags().Bool("secret", false, "only keys with private material")

	resolveCmd.Flags().Bool("sign", false, "require signing capability")
	resolveCmd.Flags().Bool("encrypt", false, "require encryption capability")
	resolveCmd.Flags().Bool("trusted", false, "require a trusted user id matching the identifier")
}

func printKey(cmd *cobra.Command, key *gpg.Key) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s%s\n", key.KeyID, key.Fingerprint, keyFlags(key))
	for _, uid := range key.UserIDs {
		fmt.Fprintf(out, "    %s <%s> [validity %d]\n", uid.Name, uid.Email, uid.Validity)
	}
}

func keyFlags(key *gpg.Key) string {
	flags := ""
	if key.HasPrivate {
		flags += " secret"
	}
	if key.CanSign {
		flags += " sign"
	}
	if key.CanEncrypt {
		flags += " encrypt"
	}
	if key.Revoked {
		flags += " REVOKED"
	}
	if key.Expired {
		flags += " EXPIRED"
	}
	if key.Invalid {
		flags += " INVALID"
	}
	return flags
}
