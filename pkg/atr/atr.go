// Package atr decodes the Answer-To-Reset byte sequence a smart card emits
// on activation: interface byte presence, TA1 clock/baud derivation, the
// historical bytes, the contactless tag-type code, and matching against an
// externally supplied ATR catalog.
//
// Decoding is total. Malformed or short input degrades individual fields to
// Unknown/absent; it never produces an error.
package atr

import (
	"fmt"
	"strings"

	"github.com/gregLibert/card-explorer/pkg/bits"
)

// tagTypeOffset is where PC/SC readers place the contactless tag-type code
// in the ATR they synthesize for ISO 14443 cards.
const tagTypeOffset = 13

// Info is the structured descriptor of a raw ATR.
type Info struct {
	Raw []byte

	// TooShort is set when the ATR is shorter than the fixed tag-type
	// offset requires; TagType is then Unknown.
	TooShort bool

	TS byte // initial character (0x3B direct, 0x3F inverse convention)
	T0 byte // format byte: interface presence nibble + historical count

	HasTA1 bool
	HasTB1 bool
	HasTC1 bool
	HasTD1 bool
	TA1    byte // valid only when HasTA1

	HistoricalBytes []byte

	TagTypeCode byte
	TagType     string

	// Timing is nil when TA1 is absent or either factor is reserved;
	// TimingIssue then says why.
	Timing      *ClockTiming
	TimingIssue string

	// Catalog is the matched catalog entry, nil when no catalog was given
	// or nothing matched.
	Catalog *CatalogEntry
}

// Decode parses a raw ATR into an Info descriptor and matches it against the
// catalog (which may be nil). It never fails; missing data degrades the
// affected fields.
func Decode(raw []byte, catalog *Catalog) *Info {
	info := &Info{
		Raw:     raw,
		TagType: TagTypeUnknown,
	}

	if catalog != nil {
		if entry, ok := catalog.Match(raw); ok {
			info.Catalog = &entry
		}
	}

	if len(raw) < tagTypeOffset+1 {
		info.TooShort = true
	} else {
		info.TagTypeCode = raw[tagTypeOffset]
		info.TagType = TagTypeName(info.TagTypeCode)
	}

	if len(raw) < 2 {
		return info
	}

	info.TS = raw[0]
	info.T0 = raw[1]

	presence := bits.HighNibble(info.T0)
	info.HasTA1 = presence&0x1 != 0
	info.HasTB1 = presence&0x2 != 0
	info.HasTC1 = presence&0x4 != 0
	info.HasTD1 = presence&0x8 != 0

	switch {
	case !info.HasTA1:
		info.TimingIssue = "TA1 not present"
	case len(raw) <= 2:
		// T0 announces TA1 but the capture ends before it.
		info.TimingIssue = "TA1 truncated"
	default:
		info.TA1 = raw[2]
		timing, err := DeriveTiming(info.TA1)
		if err != nil {
			info.TimingIssue = err.Error()
		} else {
			info.Timing = timing
		}
	}

	info.HistoricalBytes = historicalBytes(raw)

	return info
}

// historicalBytes walks the interface byte chain (TA/TB/TC/TD per level,
// chained through each TD's high nibble) and slices out the historical bytes
// that follow. Truncated input yields whatever is actually there.
func historicalBytes(raw []byte) []byte {
	count := int(bits.LowNibble(raw[1]))

	i := 2
	presence := bits.HighNibble(raw[1])
	for {
		for bit := byte(0x1); bit <= 0x8; bit <<= 1 {
			if presence&bit != 0 {
				i++
			}
		}
		if presence&0x8 == 0 || i > len(raw) {
			break
		}
		// The TD byte just consumed announces the next interface group.
		presence = bits.HighNibble(raw[i-1])
	}

	if i >= len(raw) {
		return nil
	}
	if i+count > len(raw) {
		count = len(raw) - i
	}
	return raw[i : i+count]
}

// Describe generates a human-readable report of the decoded ATR.
func (a *Info) Describe() string {
	var sb strings.Builder

	sb.WriteString("=== ANSWER TO RESET ===\n")
	sb.WriteString(fmt.Sprintf("    ATR(hex): %s len %d\n", HexString(a.Raw), len(a.Raw)))

	if a.Catalog != nil {
		sb.WriteString(fmt.Sprintf("    Catalog match: %s > %s\n", a.Catalog.Prefix, a.Catalog.Description))
	}

	if a.TooShort {
		sb.WriteString("    ATR too short for tag type\n")
	} else {
		sb.WriteString(fmt.Sprintf("    Tag type: %#04x > %s\n", a.TagTypeCode, a.TagType))
	}

	if len(a.HistoricalBytes) > 0 {
		sb.WriteString(fmt.Sprintf("    Historical bytes: %X\n", a.HistoricalBytes))
	}

	if a.Timing != nil {
		sb.WriteString(fmt.Sprintf("    TA1: %#04x > FI: %#04x, DI: %#04x\n", a.TA1, a.Timing.FiIndex, a.Timing.DiIndex))
		if a.Timing.InternalClock {
			sb.WriteString("    Clock source: internal clock\n")
		}
		sb.WriteString(fmt.Sprintf("    Clock frequency: %.1f kHz\n", a.Timing.ClockFrequency/1000))
		sb.WriteString(fmt.Sprintf("    Maximum baud rate: %.1f kbps\n", a.Timing.MaxBaudRate/1000))
	} else if a.TimingIssue != "" {
		sb.WriteString(fmt.Sprintf("    Timing: %s\n", a.TimingIssue))
	}

	return sb.String()
}
