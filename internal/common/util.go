package common

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter is the number of random bytes; the resulting string is
// twice as long. It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {

	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// ConfirmationTokenSize is the number of random bytes in an email
// confirmation token.
const ConfirmationTokenSize = 32

// NewConfirmationToken returns a random token suffixed with the issue time
// in milliseconds, so two tokens issued in quick succession never collide
// even if the random part did.
func NewConfirmationToken(now time.Time) (string, error) {
	r, err := MakeRandHexString(ConfirmationTokenSize)
	if err != nil {
		return "", err
	}
	return r + "-" + strconv.FormatInt(now.UnixMilli(), 10), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
