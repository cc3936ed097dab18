// Package keyring implements a file-backed OpenPGP engine for the gpg
// core on top of go-crypto. A Keyring holds parsed entities from
// armored or binary keyring files, plus GnuPG-style ownertrust
// assignments that give user ids their validity.
package keyring

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/pkg/errors"

	"github.com/wrenmail/pgpmail/armor"
	"github.com/wrenmail/pgpmail/gpg"
)

// PromptFunc asks the user for the passphrase of the key named by
// keyID. It may block indefinitely on user interaction.
type PromptFunc func(keyID string) ([]byte, error)

// Clock returns the current time; swappable for tests.
type Clock func() time.Time

// Keyring is a gpg.Engine over an in-memory set of OpenPGP entities.
type Keyring struct {
	entities      openpgp.EntityList
	trust         map[string]gpg.Validity
	defaultSigner string
	prompt        PromptFunc
	clock         Clock
}

var _ gpg.Engine = (*Keyring)(nil)

// Option configures a Keyring.
type Option func(*Keyring)

// WithDefaultSigner selects the private key used when a sign call
// passes no explicit signer, by fingerprint.
func WithDefaultSigner(fingerprint string) Option {
	return func(kr *Keyring) {
		kr.defaultSigner = strings.ToLower(fingerprint)
	}
}

// WithPassphrasePrompt installs the callback used to unlock encrypted
// private keys. Without it, locked keys fail to sign or decrypt.
func WithPassphrasePrompt(prompt PromptFunc) Option {
	return func(kr *Keyring) {
		kr.prompt = prompt
	}
}

// WithClock overrides the time source used for expiry, revocation and
// signature creation.
func WithClock(clock Clock) Option {
	return func(kr *Keyring) {
		kr.clock = clock
	}
}

// New creates an empty keyring.
func New(opts ...Option) *Keyring {
	kr := &Keyring{
		trust: make(map[string]gpg.Validity),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(kr)
	}
	return kr
}

// Open loads every keyring file (*.asc, *.gpg) in dir, plus the
// optional ownertrust.txt next to them.
func Open(dir string, opts ...Option) (*Keyring, error) {
	kr := New(opts...)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "keyring: cannot read keyring directory")
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".asc" && ext != ".gpg" {
			continue
		}
		if err := kr.addKeyFile(filepath.Join(dir, entry.Name())); err != nil {
			return nil, err
		}
	}

	trustPath := filepath.Join(dir, "ownertrust.txt")
	if f, err := os.Open(trustPath); err == nil {
		defer f.Close()
		if err := kr.LoadOwnertrust(f); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "keyring: cannot read ownertrust")
	}

	return kr, nil
}

func (kr *Keyring) addKeyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "keyring: cannot open %s", path)
	}
	defer f.Close()
	return errors.Wrapf(kr.AddKey(f), "keyring: cannot load %s", path)
}

// AddKey reads armored or binary key material from r into the ring.
func (kr *Keyring) AddKey(r io.Reader) error {
	r, armored := armor.IsPGPArmored(r)

	var entities openpgp.EntityList
	var err error
	if armored {
		entities, err = openpgp.ReadArmoredKeyRing(r)
	} else {
		entities, err = openpgp.ReadKeyRing(r)
	}
	if err != nil {
		return errors.Wrap(err, "keyring: error in reading key ring")
	}

	kr.entities = append(kr.entities, entities...)
	return nil
}

// AddEntity adds an already parsed go-crypto entity to the ring.
func (kr *Keyring) AddEntity(entity *openpgp.Entity) error {
	if entity == nil {
		return errors.New("keyring: nil entity provided")
	}
	kr.entities = append(kr.entities, entity)
	return nil
}

// SetOwnertrust assigns an owner trust validity to the key with the
// given fingerprint.
func (kr *Keyring) SetOwnertrust(fingerprint string, validity gpg.Validity) {
	kr.trust[strings.ToLower(fingerprint)] = validity
}
