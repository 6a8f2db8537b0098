package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hex builds a byte slice from hex fragments, ignoring spaces so fixtures can
// be written the way APDU traces and ATR catalog keys are quoted
// ("00 A4 04 00"). It is meant for literals in tests and static tables and
// panics on invalid input.
func Hex(parts ...string) []byte {
	s := strings.ReplaceAll(strings.Join(parts, ""), " ", "")

	data, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("invalid hex %q: %v", s, err))
	}
	return data
}
