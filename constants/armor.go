// Package constants provides a set of common OpenPGP constants.
package constants

// Version of the library.
const Version = "0.1.0"

// Constants for armored data.
const (
	ArmorHeaderVersion = "pgpmail " + Version
	ArmorHeaderComment = "https://github.com/wrenmail/pgpmail"
	PGPMessageHeader   = "PGP MESSAGE"
	PGPSignatureHeader = "PGP SIGNATURE"
	PublicKeyHeader    = "PGP PUBLIC KEY BLOCK"
	PrivateKeyHeader   = "PGP PRIVATE KEY BLOCK"
)
