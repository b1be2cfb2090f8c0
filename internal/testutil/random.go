package testutil

import (
	"crypto/rand"
	"math/big"
)

const (
	alnum = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// noise is what people paste around keys: separators, padding, URL bits, unicode
	noise = " \t\n-_=+./:;,?&#%()[]{}'\"|\\~`!@$^*éß漢😀"
)

// RandomAlnum returns a random string of length characters drawn from [0-9A-Za-z]
func RandomAlnum(length int) (string, error) {
	return randomFrom([]rune(alnum), length)
}

// RandomNoisy returns a random string mixing alphanumerics with separator and
// non-ASCII noise, for exercising secret sanitization
func RandomNoisy(length int) (string, error) {
	return randomFrom([]rune(alnum+noise), length)
}

func randomFrom(set []rune, length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	out := make([]rune, length)
	max := big.NewInt(int64(len(set)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = set[n.Int64()]
	}
	return string(out), nil
}
