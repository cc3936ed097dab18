// Package armor contains a set of helper methods for armoring and
// unarmoring data.
package armor

import (
	"bytes"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/pkg/errors"

	"github.com/wrenmail/pgpmail/constants"
)

// ArmorHeaders is the set of armor headers written on armored output.
var ArmorHeaders = map[string]string{
	"Version": constants.ArmorHeaderVersion,
	"Comment": constants.ArmorHeaderComment,
}

// ArmorWithType armors input with the given armorType.
func ArmorWithType(input []byte, armorType string) (string, error) {
	var b bytes.Buffer

	w, err := armor.Encode(&b, armorType, ArmorHeaders)
	if err != nil {
		return "", errors.Wrap(err, "armor: unable to encode armoring")
	}
	if _, err = w.Write(input); err != nil {
		return "", errors.Wrap(err, "armor: unable to write armored to buffer")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "armor: unable to close armor buffer")
	}
	return b.String(), nil
}

// MessageWriter returns an io.WriteCloser which, when written to,
// writes an armored PGP MESSAGE block to w.
func MessageWriter(w io.Writer) (io.WriteCloser, error) {
	return armor.Encode(w, constants.PGPMessageHeader, ArmorHeaders)
}

// Unarmor unarmors an armored input into a byte array.
func Unarmor(input []byte) ([]byte, error) {
	block, err := armor.Decode(bytes.NewReader(input))
	if err != nil {
		return nil, errors.Wrap(err, "armor: unable to unarmor")
	}
	return io.ReadAll(block.Body)
}

const armorPrefix = "-----BEGIN PGP"

// IsPGPArmored reads a prefix from in to detect armoring and returns a
// reader that replays the consumed bytes alongside the detection
// result.
func IsPGPArmored(in io.Reader) (io.Reader, bool) {
	buf := make([]byte, len(armorPrefix))
	n, _ := io.ReadFull(in, buf)
	replayed := io.MultiReader(bytes.NewReader(buf[:n]), in)
	return replayed, bytes.HasPrefix(buf[:n], []byte(armorPrefix))
}
