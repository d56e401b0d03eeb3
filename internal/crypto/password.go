package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// Look-alike characters (0/O, 1/l/I) are left out so a password read off a
// terminal can be typed back.
const (
	tempLetters = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	tempDigits  = "23456789"
	tempSymbols = "!#%+-=?@_"

	MinTempPasswordLength = 12
	MaxTempPasswordLength = 64
)

var ErrTempPasswordLength = errors.New("temporary password length must be between 12 and 64")

// TemporaryPassword returns a random password for an account created by an
// operator. It always holds at least one letter, one digit and one symbol.
func TemporaryPassword(length int) (string, error) {
	if length < MinTempPasswordLength || length > MaxTempPasswordLength {
		return "", ErrTempPasswordLength
	}

	buf := make([]byte, 0, length)
	for _, set := range []string{tempLetters, tempDigits, tempSymbols} {
		ch, err := pick(set)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}

	all := tempLetters + tempDigits + tempSymbols
	for len(buf) < length {
		ch, err := pick(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}

	// Fisher-Yates so the guaranteed characters are not always up front.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

func pick(set string) (byte, error) {
	i, err := randIndex(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
