package tzrecovery

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
)

const (
	// BIP39 reference vector: entropy 00..00, passphrase "TREZOR".
	trezorMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	trezorSeedHex  = "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04"

	// Sandbox account bootstrap1.
	bootstrap1Secret = "edsk3gUfUPyBSfrS9CCgmCiQsTCHGkviBDusMxDJstFtojtc1zcpsh"
	bootstrap1Public = "edpkuBknW28nW72KG6RoHtYW7p12T6GKc7nAbwYX5m8Wd9sDVC9yav"
	bootstrap1PKH    = "tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx"

	testMnemonic = "bridge cart rose glimpse frown thank cover essence crush wolf expand jeans palm fiber clay"
	testEmail    = "rqvbmgcn.mwuktsxg@tezos.example.org"
)

// decodePrefixed strips a Base58Check value with a 4-byte prefix.
func decodePrefixed(t *testing.T, s string, prefix []byte) []byte {
	t.Helper()
	payload, version, err := base58.CheckDecode(s)
	require.NoError(t, err)
	full := append([]byte{version}, payload...)
	require.Equal(t, prefix, full[:len(prefix)])
	return full[len(prefix):]
}

func TestDeriveSeed_BIP39Vector(t *testing.T) {
	seed, err := deriveSeed("TREZOR", "", trezorMnemonic, DefaultIterations)
	require.NoError(t, err)
	assert.Equal(t, trezorSeedHex, hex.EncodeToString(seed))
}

func TestAddressFromSeed_Bootstrap1(t *testing.T) {
	secret := decodePrefixed(t, bootstrap1Secret, []byte{0x0d, 0x0f, 0x3a, 0x07})
	public := decodePrefixed(t, bootstrap1Public, []byte{0x0d, 0x0f, 0x25, 0xd9})
	require.Len(t, secret, 32)

	pub, err := ed25519PublicKey(secret)
	require.NoError(t, err)
	assert.Equal(t, public, pub)
	assert.Equal(t, []byte(ed25519.NewKeyFromSeed(secret).Public().(ed25519.PublicKey)), pub)

	addr, err := addressFromSeed(SchemeTz1, secret)
	require.NoError(t, err)
	assert.Equal(t, bootstrap1PKH, addr)
}

func TestDeriveAddress_GoldenChain(t *testing.T) {
	// Empty email and "TREZOR" reproduce the BIP39 vector, so the address is
	// the one belonging to its first 32 bytes.
	seed, err := hex.DecodeString(trezorSeedHex)
	require.NoError(t, err)
	want, err := addressFromSeed(SchemeTz1, seed[:32])
	require.NoError(t, err)

	got, err := DeriveAddress("TREZOR", "", trezorMnemonic, DefaultIterations)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "tz1W1VHYWCTYuzsFMD56XJ7hmXt6TkymNmDo", got)
}

func TestDeriveAddress_FundraiserVector(t *testing.T) {
	got, err := DeriveAddress("correct horse", testEmail, testMnemonic, DefaultIterations)
	require.NoError(t, err)
	assert.Equal(t, "tz1VzPeVHuvF9WLseYvEprdQUAoxMTpismYD", got)

	matched, d := Score(got, "tz1VzPeVHuvF9WLseYvEprdQUAoxMTpismYD")
	assert.True(t, matched)
	assert.Zero(t, d)
}

func TestDeriveAddress_MatchesBIP39Seed(t *testing.T) {
	const password = "correct horse"
	seed := bip39.NewSeed(testMnemonic, testEmail+password)
	want, err := addressFromSeed(SchemeTz1, seed[:32])
	require.NoError(t, err)

	got, err := DeriveAddress(password, testEmail, testMnemonic, DefaultIterations)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDeriveAddress_Deterministic(t *testing.T) {
	a, err := DeriveAddress("hunter2", testEmail, testMnemonic, 16)
	require.NoError(t, err)
	b, err := DeriveAddress("hunter2", testEmail, testMnemonic, 16)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := DeriveAddress("hunter3", testEmail, testMnemonic, 16)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestDeriveAddress_NormalizesSalt(t *testing.T) {
	// U+FB01 decomposes to "fi" under NFKD.
	ligature, err := DeriveAddress("ﬁsh", testEmail, testMnemonic, 4)
	require.NoError(t, err)
	plain, err := DeriveAddress("fish", testEmail, testMnemonic, 4)
	require.NoError(t, err)
	assert.Equal(t, plain, ligature)
}

func TestDeriver_Tz2(t *testing.T) {
	addr, err := Deriver{Scheme: SchemeTz2, Iterations: 4}.Derive("pw", testEmail, testMnemonic)
	require.NoError(t, err)
	assert.Equal(t, "tz2", addr[:3])

	scheme, pkh, err := ParseAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, SchemeTz2, scheme)
	assert.Len(t, pkh, PubKeyHashLen)
}

func TestDeriver_Errors(t *testing.T) {
	_, err := Deriver{Iterations: 4}.Derive("\xff\xfe", testEmail, testMnemonic)
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = Deriver{Iterations: -1}.Derive("pw", testEmail, testMnemonic)
	assert.Error(t, err)

	_, err = Deriver{Scheme: "tz9", Iterations: 4}.Derive("pw", testEmail, testMnemonic)
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	scheme, pkh, err := ParseAddress(bootstrap1PKH)
	require.NoError(t, err)
	assert.Equal(t, SchemeTz1, scheme)

	again, err := EncodeAddress(scheme, pkh)
	require.NoError(t, err)
	assert.Equal(t, bootstrap1PKH, again)

	for name, addr := range map[string]string{
		"short":    bootstrap1PKH[:35],
		"prefix":   "tz9" + bootstrap1PKH[3:],
		"checksum": bootstrap1PKH[:35] + "y",
		"empty":    "",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseAddress(addr)
			assert.ErrorIs(t, err, ErrMalformedAddress)
		})
	}
}
