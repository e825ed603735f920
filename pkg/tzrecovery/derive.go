package tzrecovery

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"unicode/utf8"

	"filippo.io/edwards25519"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultIterations is the PBKDF2 round count used by fundraiser wallets.
	DefaultIterations = 2048

	seedLen = 64
	keyLen  = 32
)

// ErrInvalidEncoding is returned when a passphrase or email is not valid UTF-8.
var ErrInvalidEncoding = errors.New("input is not valid UTF-8")

var seedSaltPrefix = []byte("mnemonic")

// Deriver turns a candidate passphrase into the address it would have produced.
// The zero value derives tz1 addresses with DefaultIterations.
type Deriver struct {
	Scheme     Scheme
	Iterations int
}

// Derive returns the address for password under email and mnemonic.
// It is pure: identical inputs always give the identical address.
func (d Deriver) Derive(password, email, mnemonic string) (string, error) {
	iterations := d.Iterations
	if iterations == 0 {
		iterations = DefaultIterations
	}
	scheme := d.Scheme
	if scheme == "" {
		scheme = SchemeTz1
	}

	seed, err := deriveSeed(password, email, mnemonic, iterations)
	if err != nil {
		return "", err
	}
	return addressFromSeed(scheme, seed[:keyLen])
}

// DeriveAddress derives the tz1 address for a fundraiser passphrase.
func DeriveAddress(password, email, mnemonic string, iterations int) (string, error) {
	return Deriver{Scheme: SchemeTz1, Iterations: iterations}.Derive(password, email, mnemonic)
}

// deriveSeed is PBKDF2-HMAC-SHA512 over the mnemonic, salted with
// "mnemonic" + NFKD(email + password).
func deriveSeed(password, email, mnemonic string, iterations int) ([]byte, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("iteration count must be positive, got %d", iterations)
	}
	if !utf8.ValidString(password) || !utf8.ValidString(email) || !utf8.ValidString(mnemonic) {
		return nil, ErrInvalidEncoding
	}
	salt := append(append([]byte(nil), seedSaltPrefix...), norm.NFKD.String(email+password)...)
	return pbkdf2.Key([]byte(mnemonic), salt, iterations, seedLen, sha512.New), nil
}

func addressFromSeed(scheme Scheme, secret []byte) (string, error) {
	pub, err := publicKeyFromSeed(scheme, secret)
	if err != nil {
		return "", err
	}
	h, err := blake2b.New(PubKeyHashLen, nil)
	if err != nil {
		return "", err
	}
	h.Write(pub)
	return EncodeAddress(scheme, h.Sum(nil))
}

func publicKeyFromSeed(scheme Scheme, secret []byte) ([]byte, error) {
	if len(secret) != keyLen {
		return nil, fmt.Errorf("secret key must be %d bytes, got %d", keyLen, len(secret))
	}
	switch scheme {
	case SchemeTz1:
		return ed25519PublicKey(secret)
	case SchemeTz2:
		priv := secp256k1.PrivKeyFromBytes(secret)
		if priv.Key.IsZero() {
			return nil, errors.New("secp256k1 secret key reduces to zero")
		}
		return priv.PubKey().SerializeCompressed(), nil
	default:
		return nil, fmt.Errorf("unsupported address scheme %q", scheme)
	}
}

// ed25519PublicKey computes A = s*B with s the clamped low half of SHA-512(seed),
// the same keypair libsodium's crypto_sign_seed_keypair produces.
func ed25519PublicKey(seed []byte) ([]byte, error) {
	h := sha512.Sum512(seed)
	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, fmt.Errorf("ed25519 scalar: %w", err)
	}
	return new(edwards25519.Point).ScalarBaseMult(s).Bytes(), nil
}
