package assets

import "errors"

// MaxTokenLength bounds the byte length of a token symbol.
const MaxTokenLength = 32

var (
	errEmptyToken   = errors.New("assets: token is empty")
	errTokenTooLong = errors.New("assets: token is longer than 32 bytes")
	errTokenChar    = errors.New("assets: token contains an invalid character")
)

// ValidateToken checks that token is 1 to 32 bytes of ASCII letters, digits
// or one of "-.|~".
func ValidateToken(token string) error {
	if len(token) == 0 {
		return errEmptyToken
	}
	if len(token) > MaxTokenLength {
		return errTokenTooLong
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '.', c == '|', c == '~':
		default:
			return errTokenChar
		}
	}
	return nil
}

// IsValidToken reports whether ValidateToken accepts token.
func IsValidToken(token string) bool {
	return ValidateToken(token) == nil
}
