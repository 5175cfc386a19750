package sentence

import "unicode"

// CharType is the coarse script class of a character.
type CharType uint8

const (
	Other CharType = iota
	Digit
	Roman
	Hiragana
	Katakana
	Kanji
)

var charTypeNames = [...]string{
	Other:    "other",
	Digit:    "digit",
	Roman:    "roman",
	Hiragana: "hiragana",
	Katakana: "katakana",
	Kanji:    "kanji",
}

func (t CharType) String() string {
	if int(t) < len(charTypeNames) {
		return charTypeNames[t]
	}
	return "unknown"
}

// CharTypeOf classifies r. ASCII and full-width forms share a class.
func CharTypeOf(r rune) CharType {
	switch {
	case r >= '0' && r <= '9', r >= '０' && r <= '９':
		return Digit
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z',
		r >= 'Ａ' && r <= 'Ｚ', r >= 'ａ' && r <= 'ｚ':
		return Roman
	case r >= 0x3041 && r <= 0x309f:
		return Hiragana
	case r >= 0x30a0 && r <= 0x30ff, r >= 0x31f0 && r <= 0x31ff, r >= 0xff66 && r <= 0xff9f:
		return Katakana
	case unicode.Is(unicode.Han, r):
		return Kanji
	default:
		return Other
	}
}
