package model

import "unicode"

const maxLoginLength = 20

// ValidateLogin checks a proposed login against the allow-list: printable
// ASCII or Cyrillic letters, 1 to 20 characters, with the protocol separator
// '|' and the client framing character ':' forbidden.
func ValidateLogin(login string) error {
	runes := []rune(login)
	if len(runes) == 0 || len(runes) > maxLoginLength {
		return ErrInvalidLogin
	}
	for _, r := range runes {
		if r == '|' || r == ':' {
			return ErrInvalidLogin
		}
		if r >= 0x20 && r < 0x7F {
			continue
		}
		if unicode.Is(unicode.Cyrillic, r) {
			continue
		}
		return ErrInvalidLogin
	}
	return nil
}
