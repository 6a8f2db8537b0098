package tlv

import (
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"
)

// Describe renders parsed entries as an indented, human-readable report.
// Values that themselves decode as BER-TLV are expanded one level; everything
// else is shown as hex plus a printable-ASCII preview.
func (e Entries) Describe() string {
	var sb strings.Builder

	for _, entry := range e {
		sb.WriteString(fmt.Sprintf("    Tag %02X (%d bytes): ", entry.Tag, len(entry.Value)))

		if nested, err := bertlv.Decode(entry.Value); err == nil && len(nested) > 0 && len(entry.Value) > 2 {
			sb.WriteString("\n")
			for _, n := range nested {
				sb.WriteString(fmt.Sprintf("      - %s: %X (%q)\n", strings.ToUpper(n.Tag), n.Value, SafeASCII(n.Value)))
			}
			continue
		}

		sb.WriteString(fmt.Sprintf("%X (%q)\n", entry.Value, SafeASCII(entry.Value)))
	}

	return sb.String()
}

// SafeASCII replaces non-printable bytes with '.' for display.
func SafeASCII(data []byte) string {
	return strings.Map(func(r rune) rune {
		if r >= 32 && r <= 126 {
			return r
		}
		return '.'
	}, string(data))
}
