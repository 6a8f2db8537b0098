package atr

import (
	"fmt"

	"github.com/gregLibert/card-explorer/pkg/bits"
)

// Interface byte TA1 encodes two timing factors (ISO/IEC 7816-3):
// the high nibble indexes Fi (Clock Rate Conversion Factor), the low nibble
// indexes Di (Baud Rate Adjustment Factor). Several indices are reserved for
// future use; a reserved index makes the derived timing incomputable, which
// is a reporting condition, not a decode failure.

// BaseFrequency is the typical contactless carrier clock in Hz.
const BaseFrequency = 5_000_000

// factor is one entry of the Fi/Di tables. RFU entries carry no value.
type factor struct {
	value    int
	rfu      bool
	internal bool // Fi index 0x0: value of index 0x1, sourced from the internal clock
}

// fiTable maps the TA1 high nibble to the Clock Rate Conversion Factor.
var fiTable = [16]factor{
	0x0: {value: 372, internal: true},
	0x1: {value: 372},
	0x2: {value: 558},
	0x3: {value: 744},
	0x4: {value: 1116},
	0x5: {value: 1488},
	0x6: {value: 1860},
	0x7: {rfu: true},
	0x8: {rfu: true},
	0x9: {value: 512},
	0xA: {value: 768},
	0xB: {value: 1024},
	0xC: {value: 1536},
	0xD: {value: 2048},
	0xE: {rfu: true},
	0xF: {rfu: true},
}

// diTable maps the TA1 low nibble to the Baud Rate Adjustment Factor.
var diTable = [16]factor{
	0x0: {rfu: true},
	0x1: {value: 1},
	0x2: {value: 2},
	0x3: {value: 4},
	0x4: {value: 8},
	0x5: {value: 16},
	0x6: {value: 32},
	0x7: {value: 64},
	0x8: {value: 12},
	0x9: {value: 20},
	0xA: {rfu: true},
	0xB: {rfu: true},
	0xC: {rfu: true},
	0xD: {rfu: true},
	0xE: {rfu: true},
	0xF: {rfu: true},
}

// ClockTiming holds the factors derived from TA1 and the resulting rates.
type ClockTiming struct {
	FiIndex byte
	DiIndex byte
	Fi      int
	Di      int

	// InternalClock marks Fi index 0x0: numerically identical to index 0x1
	// but the card runs from its internal clock.
	InternalClock bool

	ClockFrequency float64 // Hz
	MaxBaudRate    float64 // bit/s
}

// DeriveTiming splits a TA1 byte into its Fi/Di indices and resolves both
// through the conversion tables. It returns an error if either index is
// reserved, in which case no frequency or baud rate can be calculated.
func DeriveTiming(ta1 byte) (*ClockTiming, error) {
	fiIndex := bits.HighNibble(ta1)
	diIndex := bits.LowNibble(ta1)

	fi := fiTable[fiIndex]
	di := diTable[diIndex]

	if fi.rfu || di.rfu {
		return nil, fmt.Errorf("cannot calculate frequency/baud rate (RFU or invalid values)")
	}

	clock := float64(BaseFrequency) / float64(fi.value)

	return &ClockTiming{
		FiIndex:        fiIndex,
		DiIndex:        diIndex,
		Fi:             fi.value,
		Di:             di.value,
		InternalClock:  fi.internal,
		ClockFrequency: clock,
		MaxBaudRate:    clock / float64(di.value),
	}, nil
}

// tagTypes maps the historical tag-type byte (raw ATR offset 13) to the
// contactless chip family reported by PC/SC readers.
var tagTypes = map[byte]string{
	0x11: "MIFARE Classic 1K",
	0x18: "MIFARE Classic 1K (variant)",
	0x88: "MIFARE Classic 1K (variant)",
	0x08: "MIFARE Classic 2K",
	0x12: "MIFARE Classic 4K",
	0x02: "MIFARE Mini",
	0x09: "MIFARE Mini (variant)",
	0x04: "MIFARE Ultralight",
	0x03: "MIFARE Ultralight C",
	0x44: "MIFARE Plus",
	0x42: "MIFARE Plus 2K",
	0x43: "MIFARE Plus 4K",
	0x28: "MIFARE DESFire",
	0x30: "MIFARE DESFire EV1",
	0x31: "MIFARE DESFire EV2",
	0x32: "MIFARE DESFire EV3",
	0x20: "ISO 14443-4",
	0x40: "ISO 14443 Type A",
	0x41: "ISO 14443 Type B",
	0x21: "ISO 15693",
	0x01: "Topaz/Type 1",
	0x10: "FeliCa (Type 3)",
}

// TagTypeUnknown is the fallback for unmapped or unreadable tag-type codes.
const TagTypeUnknown = "Unknown"

// TagTypeName resolves a tag-type code, falling back to TagTypeUnknown.
func TagTypeName(code byte) string {
	if name, ok := tagTypes[code]; ok {
		return name
	}
	return TagTypeUnknown
}
