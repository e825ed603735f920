package tzrecovery

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// Scheme names an implicit account type by its address prefix.
type Scheme string

const (
	SchemeTz1 Scheme = "tz1" // Ed25519
	SchemeTz2 Scheme = "tz2" // secp256k1
)

const (
	// PubKeyHashLen is the BLAKE2b digest size used for account addresses.
	PubKeyHashLen = 20

	// AddressLen is the length of an encoded implicit account address.
	AddressLen = 36

	addressPrefixLen = 3
)

// ErrMalformedAddress is returned for strings that are not implicit account addresses.
var ErrMalformedAddress = errors.New("malformed address")

// Version bytes chosen so the Base58Check output starts with the scheme name.
var addressVersions = map[Scheme][]byte{
	SchemeTz1: {0x06, 0xa1, 0x9f},
	SchemeTz2: {0x06, 0xa1, 0xa1},
}

// EncodeAddress returns the Base58Check address of a public key hash.
func EncodeAddress(scheme Scheme, pkh []byte) (string, error) {
	version, ok := addressVersions[scheme]
	if !ok {
		return "", fmt.Errorf("unsupported address scheme %q", scheme)
	}
	if len(pkh) != PubKeyHashLen {
		return "", fmt.Errorf("public key hash must be %d bytes, got %d", PubKeyHashLen, len(pkh))
	}
	payload := make([]byte, 0, len(version)-1+len(pkh))
	payload = append(payload, version[1:]...)
	payload = append(payload, pkh...)
	return base58.CheckEncode(payload, version[0]), nil
}

// ParseAddress validates an address (prefix, length, checksum) and returns
// its scheme and public key hash.
func ParseAddress(addr string) (Scheme, []byte, error) {
	if len(addr) != AddressLen {
		return "", nil, fmt.Errorf("%w: expected %d characters, got %d", ErrMalformedAddress, AddressLen, len(addr))
	}
	scheme := Scheme(addr[:addressPrefixLen])
	version, ok := addressVersions[scheme]
	if !ok {
		return "", nil, fmt.Errorf("%w: unsupported prefix %q", ErrMalformedAddress, addr[:addressPrefixLen])
	}

	payload, first, err := base58.CheckDecode(addr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	if first != version[0] || !bytes.HasPrefix(payload, version[1:]) {
		return "", nil, fmt.Errorf("%w: version bytes do not match prefix %q", ErrMalformedAddress, scheme)
	}
	pkh := payload[len(version)-1:]
	if len(pkh) != PubKeyHashLen {
		return "", nil, fmt.Errorf("%w: public key hash is %d bytes", ErrMalformedAddress, len(pkh))
	}
	return scheme, pkh, nil
}
