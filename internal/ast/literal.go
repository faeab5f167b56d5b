package ast

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// IntValue parses the constant as a C integer or character literal.
// Integer suffixes (u, l) and base prefixes (0x, 0b, leading 0) are accepted.
func (c *Const) IntValue() (int64, error) {
	s := strings.TrimSpace(c.Value)
	if s == "" {
		return 0, fmt.Errorf("empty constant")
	}
	if s[0] == '\'' {
		return charValue(s)
	}
	body := strings.TrimRight(s, "uUlL")
	v, err := strconv.ParseInt(body, 0, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(body, 0, 64)
		if uerr != nil {
			return 0, fmt.Errorf("constant %q is not an integer", c.Value)
		}
		return int64(u), nil //nolint:gosec // C wraps unsigned literals into the signed domain
	}
	return v, nil
}

func charValue(s string) (int64, error) {
	str, err := strconv.Unquote(s)
	if err != nil {
		return 0, fmt.Errorf("invalid character constant %s: %w", s, err)
	}
	r, size := utf8.DecodeRuneInString(str)
	if size != len(str) || r == utf8.RuneError {
		return 0, fmt.Errorf("character constant %s must hold exactly one character", s)
	}
	return int64(r), nil
}
