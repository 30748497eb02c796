package credential

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
)

// codeAlphabet excludes visually confusable characters (0/O, 1/I/L) so
// user codes survive being read over the phone or copied by hand.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// codePrefix namespaces portal account codes.
const codePrefix = "INV-"

// codeLength is the number of random characters after the prefix.
const codeLength = 6

// NewUserCode returns a short human-typeable account identifier such as
// INV-7KQ2MW. The code is the public handle of the account; it carries no
// secret entropy on its own.
func NewUserCode() (string, error) {
	var b strings.Builder
	b.WriteString(codePrefix)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NewAccessKey returns the random secret paired with a user code. Hex
// encoding keeps it transcription-safe; upper case matches the normalized
// form used for hashing.
func NewAccessKey() (string, error) {
	return randomHex(16)
}

// NewEnlistToken returns the one-time enlistment token. It is longer than
// the access key because it is consumed once and never typed twice.
func NewEnlistToken() (string, error) {
	return randomHex(24)
}

// NewInviteToken returns the token embedded in a standing invite link.
func NewInviteToken() (string, error) {
	return randomHex(24)
}

// randomHex returns an upper-case hex string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
