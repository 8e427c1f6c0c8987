package components

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errOddHexDigits = errors.New("hex string must have even number of digits")

// ParseHex decodes pairs of hex digits. Spaces and 0x prefixes are ignored,
// so "48 65 6C", "48656c" and "0x48 0x65" are all accepted.
func ParseHex(input string) ([]byte, error) {
	clean := strings.Join(strings.Fields(input), "")
	clean = strings.ReplaceAll(clean, "0x", "")
	clean = strings.ReplaceAll(clean, "0X", "")
	if clean == "" {
		return nil, fmt.Errorf("empty input")
	}

	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("%w (got %d)", errOddHexDigits, len(clean))
	}

	data := make([]byte, 0, len(clean)/2)
	for i := 0; i < len(clean); i += 2 {
		pair := clean[i : i+2]
		b, err := strconv.ParseUint(pair, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid hex byte '%s'", pair)
		}
		data = append(data, byte(b))
	}
	return data, nil
}
