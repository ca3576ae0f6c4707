// Package main provides the keyseal command-line tool for generating keys,
// deriving child keys, and encrypting, decrypting, signing and verifying
// content with them.
//
// Keys are exchanged as 0x-prefixed multikey hex, or kept in an encrypted key
// store directory.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/opd-ai/keyseal/crypto"
	"github.com/opd-ai/keyseal/factory"
	"github.com/opd-ai/keyseal/hdkd"
	"github.com/opd-ai/keyseal/keystore"
	"github.com/opd-ai/keyseal/mnemonic"
	"github.com/opd-ai/keyseal/multikey"
	"github.com/sirupsen/logrus"
)

// passphraseEnv names the environment variable holding the key store passphrase.
const passphraseEnv = "KEYSEAL_PASSPHRASE"

// GlobalConfig holds flags shared by all commands.
type GlobalConfig struct {
	logLevel  string
	logFormat string
	timeout   time.Duration
	help      bool
}

// keySource holds the flags that select a private key.
type keySource struct {
	key   string
	store string
	name  string
}

func (k *keySource) register(fs *flag.FlagSet) {
	fs.StringVar(&k.key, "key", "", "Private key as 0x multikey hex")
	fs.StringVar(&k.store, "store", "", "Key store directory (passphrase from "+passphraseEnv+")")
	fs.StringVar(&k.name, "name", "", "Key name in the key store")
}

func (k *keySource) load() (crypto.PrivateKey, error) {
	switch {
	case k.key != "" && k.store != "":
		return crypto.PrivateKey{}, errors.New("use either -key or -store, not both")
	case k.key != "":
		return multikey.DecodePrivateKeyHex(k.key)
	case k.store != "":
		if k.name == "" {
			return crypto.PrivateKey{}, errors.New("-name is required with -store")
		}
		s, err := openStore(k.store)
		if err != nil {
			return crypto.PrivateKey{}, err
		}
		defer s.Close()
		return s.Get(k.name)
	default:
		return crypto.PrivateKey{}, errors.New("a private key is required (-key or -store/-name)")
	}
}

func openStore(dir string) (*keystore.Store, error) {
	pass := os.Getenv(passphraseEnv)
	if pass == "" {
		return nil, fmt.Errorf("%s must be set to use a key store", passphraseEnv)
	}
	return keystore.Open(dir, []byte(pass))
}

// parseGlobalFlags parses the flags that precede the command name.
func parseGlobalFlags(args []string, stderr io.Writer) (*GlobalConfig, []string, error) {
	config := &GlobalConfig{}

	fs := flag.NewFlagSet("keyseal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&config.logLevel, "log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&config.logFormat, "log-format", "text", "Log format (text, json)")
	fs.DurationVar(&config.timeout, "timeout", 30*time.Second, "Timeout for each command")
	fs.BoolVar(&config.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return config, fs.Args(), nil
}

// validateGlobalConfig validates the global configuration.
func validateGlobalConfig(config *GlobalConfig) error {
	if _, err := logrus.ParseLevel(config.logLevel); err != nil {
		return fmt.Errorf("invalid log level %q", config.logLevel)
	}
	if config.logFormat != "text" && config.logFormat != "json" {
		return fmt.Errorf("invalid log format %q: must be text or json", config.logFormat)
	}
	if config.timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// configureLogging applies the global logging flags to logrus.
func configureLogging(config *GlobalConfig, stderr io.Writer) {
	level, _ := logrus.ParseLevel(config.logLevel)
	logrus.SetLevel(level)
	logrus.SetOutput(stderr)
	if config.logFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}
}

// printUsage prints the usage information.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "keyseal - multi-curve keys and payload encryption")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  keyseal [global options] <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  keygen    Generate a key (random, or from -mnemonic)")
	fmt.Fprintln(w, "  derive    Derive a hard child key along a //path")
	fmt.Fprintln(w, "  encrypt   Encrypt to a public key (-to) or to yourself (-key)")
	fmt.Fprintln(w, "  decrypt   Decrypt a hex frame of either scheme")
	fmt.Fprintln(w, "  sign      Sign a message")
	fmt.Fprintln(w, "  verify    Verify a signature")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global options:")
	fmt.Fprintln(w, "  -log-level string   Log level (DEBUG, INFO, WARN, ERROR) (default WARN)")
	fmt.Fprintln(w, "  -log-format string  Log format (text, json) (default text)")
	fmt.Fprintln(w, "  -timeout duration   Timeout for each command (default 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  keyseal keygen -curve sr25519")
	fmt.Fprintln(w, "  keyseal encrypt -to 0xe2... -message hello")
	fmt.Fprintln(w, "  keyseal decrypt -key 0xe2... -frame 0x2ae2...")
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	config, rest, err := parseGlobalFlags(args, stderr)
	if err != nil {
		return 2
	}
	if config.help || len(rest) == 0 {
		printUsage(stdout)
		if config.help {
			return 0
		}
		return 2
	}
	if err := validateGlobalConfig(config); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 2
	}
	configureLogging(config, stderr)

	ctx, cancel := context.WithTimeout(ctx, config.timeout)
	defer cancel()

	cmd := &commandEnv{
		ctx:     ctx,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		factory: factory.NewCipherFactory(),
	}

	var runErr error
	switch rest[0] {
	case "keygen":
		runErr = cmd.keygen(rest[1:])
	case "derive":
		runErr = cmd.derive(rest[1:])
	case "encrypt":
		runErr = cmd.encrypt(rest[1:])
	case "decrypt":
		runErr = cmd.decrypt(rest[1:])
	case "sign":
		runErr = cmd.sign(rest[1:])
	case "verify":
		runErr = cmd.verify(rest[1:])
	default:
		fmt.Fprintf(stderr, "Unknown command %q\n", rest[0])
		printUsage(stderr)
		return 2
	}

	if errors.Is(runErr, flag.ErrHelp) {
		return 0
	}
	if errors.Is(runErr, errInvalidSignature) {
		return 1
	}
	if runErr != nil {
		logrus.WithFields(logrus.Fields{
			"function": "run",
			"command":  rest[0],
			"error":    runErr.Error(),
		}).Debug("Command failed")
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return 1
	}
	return 0
}

// main is the entry point for the keyseal tool.
func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// commandEnv carries the I/O and shared state of one invocation.
type commandEnv struct {
	ctx     context.Context
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	factory *factory.CipherFactory
}

func (c *commandEnv) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// readInput returns the -message text, or the contents of -in ("-" for stdin).
func (c *commandEnv) readInput(message, in string) ([]byte, error) {
	switch {
	case message != "" && in != "":
		return nil, errors.New("use either -message or -in, not both")
	case message != "":
		return []byte(message), nil
	case in == "-":
		return io.ReadAll(c.stdin)
	case in != "":
		return os.ReadFile(in)
	default:
		return nil, errors.New("input is required (-message or -in)")
	}
}

func decodeHexArg(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
}

func (c *commandEnv) printKey(priv crypto.PrivateKey) error {
	privHex, err := multikey.EncodePrivateKeyHex(priv)
	if err != nil {
		return err
	}
	pubHex, err := multikey.EncodePublicKeyHex(priv.PublicKey())
	if err != nil {
		return err
	}
	pubB58, err := multikey.EncodePublicKeyBase58(priv.PublicKey())
	if err != nil {
		return err
	}
	kind, err := multikey.KindName(priv.Curve())
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "curve:       %s\n", kind)
	fmt.Fprintf(c.stdout, "private:     %s\n", privHex)
	fmt.Fprintf(c.stdout, "public:      %s\n", pubHex)
	fmt.Fprintf(c.stdout, "public58:    %s\n", pubB58)
	return nil
}

func (c *commandEnv) saveOrPrint(priv crypto.PrivateKey, store, name string) error {
	if store == "" {
		return c.printKey(priv)
	}
	if name == "" {
		return errors.New("-name is required with -store")
	}
	s, err := openStore(store)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Put(name, priv); err != nil {
		return err
	}

	pubHex, err := multikey.EncodePublicKeyHex(priv.PublicKey())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "stored %s\npublic:      %s\n", name, pubHex)
	return nil
}

func (c *commandEnv) keygen(args []string) error {
	fs := c.flagSet("keygen")
	curveName := fs.String("curve", "", "Curve: ed25519, secp256k1 or sr25519 (default from KEYSEAL_DEFAULT_CURVE)")
	phrase := fs.String("mnemonic", "", "Derive from a BIP-39 phrase instead of random entropy")
	password := fs.String("password", "", "Mnemonic password")
	words := fs.Int("words", 0, "Generate and print a new mnemonic with this many words (12, 15, 18, 21 or 24)")
	store := fs.String("store", "", "Save to this key store directory instead of printing")
	name := fs.String("name", "", "Key name in the key store")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind := *curveName
	if kind == "" {
		kind = c.factory.GetCurrentConfig().DefaultCurve
	}
	curve, err := multikey.CurveOfKindName(kind)
	if err != nil {
		return err
	}

	if *words != 0 {
		if *words%3 != 0 || *words < 12 || *words > 24 {
			return fmt.Errorf("-words must be 12, 15, 18, 21 or 24, got %d", *words)
		}
		generated, err := mnemonic.New(*words/3*32, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "mnemonic:    %s\n", generated)
		*phrase = generated
	}

	var priv crypto.PrivateKey
	if *phrase != "" {
		priv, err = mnemonic.PrivateKeyFromPhrase(curve, *phrase, *password)
	} else {
		priv, err = crypto.GenerateKey(curve, nil)
	}
	if err != nil {
		return err
	}
	defer priv.Wipe()

	return c.saveOrPrint(priv, *store, *name)
}

func (c *commandEnv) derive(args []string) error {
	fs := c.flagSet("derive")
	var src keySource
	src.register(fs)
	path := fs.String("path", "", "Hard derivation path, e.g. //alice//1")
	out := fs.String("out-name", "", "Save the child under this name in -store instead of printing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-path is required")
	}

	parent, err := src.load()
	if err != nil {
		return err
	}
	defer parent.Wipe()

	child, err := hdkd.DerivePath(c.ctx, parent, *path)
	if err != nil {
		return err
	}
	defer child.Wipe()

	if *out != "" {
		return c.saveOrPrint(child, src.store, *out)
	}
	return c.printKey(child)
}

func (c *commandEnv) encrypt(args []string) error {
	fs := c.flagSet("encrypt")
	var src keySource
	src.register(fs)
	to := fs.String("to", "", "Recipient public key as 0x multikey hex (ECDH scheme)")
	message := fs.String("message", "", "Message text")
	in := fs.String("in", "", "Read the message from a file, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	plain, err := c.readInput(*message, *in)
	if err != nil {
		return err
	}

	var frame []byte
	if *to != "" {
		recipient, err := multikey.DecodePublicKeyHex(*to)
		if err != nil {
			return err
		}
		enc, err := c.factory.NewPublicKeyEncrypter(recipient)
		if err != nil {
			return err
		}
		if frame, err = enc.Encrypt(c.ctx, plain); err != nil {
			return err
		}
	} else {
		priv, err := src.load()
		if err != nil {
			return fmt.Errorf("either -to or a private key is required: %w", err)
		}
		defer priv.Wipe()
		enc, err := c.factory.NewSecretKeyEncrypter(priv)
		if err != nil {
			return err
		}
		if frame, err = enc.Encrypt(c.ctx, plain); err != nil {
			return err
		}
	}

	fmt.Fprintf(c.stdout, "0x%x\n", frame)
	return nil
}

func (c *commandEnv) decrypt(args []string) error {
	fs := c.flagSet("decrypt")
	var src keySource
	src.register(fs)
	frameHex := fs.String("frame", "", "Encrypted frame as hex")
	if err := fs.Parse(args); err != nil {
		return err
	}

	frame, err := decodeHexArg(*frameHex)
	if err != nil {
		return fmt.Errorf("invalid -frame: %w", err)
	}

	priv, err := src.load()
	if err != nil {
		return err
	}
	defer priv.Wipe()

	dec, err := c.factory.NewDecrypter(priv)
	if err != nil {
		return err
	}
	plain, err := dec.Decrypt(c.ctx, frame)
	if err != nil {
		return err
	}

	_, err = c.stdout.Write(plain)
	return err
}

func (c *commandEnv) sign(args []string) error {
	fs := c.flagSet("sign")
	var src keySource
	src.register(fs)
	message := fs.String("message", "", "Message text")
	in := fs.String("in", "", "Read the message from a file, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	msg, err := c.readInput(*message, *in)
	if err != nil {
		return err
	}
	priv, err := src.load()
	if err != nil {
		return err
	}
	defer priv.Wipe()

	sig, err := priv.SignContext(c.ctx, msg)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "0x%x\n", sig)
	return nil
}

var errInvalidSignature = errors.New("invalid signature")

func (c *commandEnv) verify(args []string) error {
	fs := c.flagSet("verify")
	pubHex := fs.String("pub", "", "Public key as 0x multikey hex")
	sigHex := fs.String("sig", "", "Signature as hex")
	message := fs.String("message", "", "Message text")
	in := fs.String("in", "", "Read the message from a file, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	msg, err := c.readInput(*message, *in)
	if err != nil {
		return err
	}
	pub, err := multikey.DecodePublicKeyHex(*pubHex)
	if err != nil {
		return err
	}
	sig, err := decodeHexArg(*sigHex)
	if err != nil {
		return fmt.Errorf("invalid -sig: %w", err)
	}

	ok, err := pub.VerifyContext(c.ctx, msg, sig)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.stdout, "invalid")
		return errInvalidSignature
	}
	fmt.Fprintln(c.stdout, "valid")
	return nil
}
