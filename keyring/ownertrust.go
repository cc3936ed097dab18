package keyring

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/wrenmail/pgpmail/gpg"
)

// LoadOwnertrust reads trust assignments in GnuPG export-ownertrust
// format: one "<fingerprint>:<value>:" record per line, values 2-6,
// '#' starting a comment.
func (kr *Keyring) LoadOwnertrust(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		record := strings.TrimSpace(scanner.Text())
		if record == "" || strings.HasPrefix(record, "#") {
			continue
		}
		fields := strings.Split(record, ":")
		if len(fields) < 2 {
			return errors.Errorf("keyring: malformed ownertrust record on line %d", line)
		}
		value, err := strconv.Atoi(fields[1])
		if err != nil {
			return errors.Wrapf(err, "keyring: malformed ownertrust value on line %d", line)
		}
		kr.trust[strings.ToLower(fields[0])] = validityFromOwnertrust(value)
	}
	return errors.Wrap(scanner.Err(), "keyring: error reading ownertrust")
}

// validityFromOwnertrust maps GnuPG ownertrust values onto the 0-5
// validity scale the core works with.
func validityFromOwnertrust(value int) gpg.Validity {
	switch value {
	case 6:
		return gpg.ValidityUltimate
	case 5:
		return gpg.ValidityFull
	case 4:
		return gpg.ValidityMarginal
	case 3:
		return gpg.ValidityNever
	case 2:
		return gpg.ValidityUndefined
	default:
		return gpg.ValidityUnknown
	}
}
