// pgpmail is a small command line frontend for the pgpmail library:
// key listing and resolution, PGP/MIME signing, encryption, and the
// corresponding verify/decrypt side, all against a file-based keyring.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already printed the error.
		os.Exit(1)
	}
}
