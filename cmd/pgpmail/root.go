package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wrenmail/pgpmail/constants"
	"github.com/wrenmail/pgpmail/gpg"
	"github.com/wrenmail/pgpmail/keyring"
)

var (
	cfgFile string
	logger  *zap.Logger
)

var rootCmd *cobra.Command

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()

	viper.SetDefault("keyring.dir", ".")
	viper.SetDefault("trust_threshold", int(gpg.ValidityFull))
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pgpmail",
		Short:   "OpenPGP mail operations against a file-based keyring",
		Version: constants.Version,
		Long: `pgpmail signs, encrypts, verifies and decrypts PGP/MIME mail.

Keys are read from a keyring directory (*.asc and *.gpg files), with
owner trust taken from an ownertrust.txt file in GnuPG
export-ownertrust format next to them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if viper.GetBool("verbose") {
				logger, err = zap.NewDevelopment()
			} else {
				logger, err = zap.NewProduction()
			}
			if err != nil {
				return errors.Wrap(err, "cannot set up logging")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.AddCommand(keysCmd)
	cmd.AddCommand(resolveCmd)
	cmd.AddCommand(signCmd)
	cmd.AddCommand(encryptCmd)
	cmd.AddCommand(verifyCmd)
	cmd.AddCommand(decryptCmd)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./pgpmail.yaml)")
	cmd.PersistentFlags().String("keyring", ".", "keyring directory")
	cmd.PersistentFlags().String("default-key", "", "fingerprint of the default signing key")
	cmd.PersistentFlags().Int("trust-threshold", int(gpg.ValidityFull), "minimum uid validity for trusted recipients (0-5)")
	cmd.PersistentFlags().Bool("verbose", false, "verbose logging")

	_ = viper.BindPFlag("keyring.dir", cmd.PersistentFlags().Lookup("keyring"))
	_ = viper.BindPFlag("default_key", cmd.PersistentFlags().Lookup("default-key"))
	_ = viper.BindPFlag("trust_threshold", cmd.PersistentFlags().Lookup("trust-threshold"))
	_ = viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pgpmail")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/pgpmail")
	}
	viper.SetEnvPrefix("PGPMAIL")
	viper.AutomaticEnv()

	// A missing config file is fine, flags and env carry the defaults.
	_ = viper.ReadInConfig()
}

// openCore loads the keyring directory and wraps it in the gpg core.
func openCore() (*gpg.GPG, *keyring.Keyring, error) {
	opts := []keyring.Option{}
	if fingerprint := viper.GetString("default_key"); fingerprint != "" {
		opts = append(opts, keyring.WithDefaultSigner(fingerprint))
	}
	opts = append(opts, keyring.WithPassphrasePrompt(passphraseFromEnv))

	dir := viper.GetString("keyring.dir")
	kr, err := keyring.Open(dir, opts...)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("keyring loaded", zap.String("dir", dir))

	threshold := gpg.Validity(viper.GetInt("trust_threshold"))
	return gpg.New(kr, gpg.WithTrustThreshold(threshold)), kr, nil
}

// passphraseFromEnv serves key passphrases from PGPMAIL_PASSPHRASE.
// Stdin carries the message payload, so an interactive prompt is not
// an option here.
func passphraseFromEnv(keyID string) ([]byte, error) {
	passphrase := viper.GetString("passphrase")
	if passphrase == "" {
		return nil, errors.Errorf("key %s is locked, set PGPMAIL_PASSPHRASE", keyID)
	}
	return []byte(passphrase), nil
}
