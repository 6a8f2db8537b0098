package iso7816

import (
	"fmt"

	"github.com/gregLibert/card-explorer/pkg/bits"
)

// Instruction Byte (INS) logic according to ISO/IEC 7816-4.
//
// Values with an upper nibble of '6' or '9' are invalid: they are reserved for
// Status Words and transport layer control (ISO/IEC 7816-3). For interindustry
// classes, bit 1 of the INS indicates BER-TLV encoded data fields
// (e.g. READ BINARY 0xB0 vs READ BINARY BER-TLV 0xB1).

// InsCode is a typed representation of the instruction byte.
type InsCode byte

// Instruction (INS) codes used by this tool, as defined in ISO/IEC 7816-4.
const (
	INS_VERIFY       InsCode = 0x20
	INS_SELECT       InsCode = 0xA4
	INS_READ_BINARY  InsCode = 0xB0
	INS_READ_RECORD  InsCode = 0xB2
	INS_GET_RESPONSE InsCode = 0xC0
	INS_GET_DATA     InsCode = 0xCA
)

// Name returns the command name of the instruction code.
func (c InsCode) Name() string {
	switch c {
	case INS_VERIFY:
		return "VERIFY"
	case INS_SELECT:
		return "SELECT"
	case INS_READ_BINARY:
		return "READ BINARY"
	case INS_READ_RECORD:
		return "READ RECORD"
	case INS_GET_RESPONSE:
		return "GET RESPONSE"
	case INS_GET_DATA:
		return "GET DATA"
	default:
		return fmt.Sprintf("INS_%02X", byte(c))
	}
}

// Instruction represents the parsed ISO 7816-4 Instruction byte (INS).
type Instruction struct {
	Raw      InsCode
	IsBERTLV bool
}

// NewInstruction creates an Instruction object with validation.
// It rejects '6X' and '9X' values as they are invalid according to ISO 7816-3.
func NewInstruction(ins InsCode) (Instruction, error) {
	highNibble := byte(ins) & 0xF0
	if highNibble == 0x60 || highNibble == 0x90 {
		return Instruction{}, fmt.Errorf("invalid INS 0x%02X: 6X and 9X are reserved", ins)
	}

	return Instruction{
		Raw:      ins,
		IsBERTLV: bits.IsSet(byte(ins), 1), // Bit 1 indicates BER-TLV preference
	}, nil
}

// Verbose returns a human-readable description of the instruction.
func (i Instruction) Verbose() string {
	format := "Standard"
	if i.IsBERTLV {
		format = "BER-TLV"
	}
	return fmt.Sprintf("INS: 0x%02X | Command: %s | Format: %s", byte(i.Raw), i.Raw.Name(), format)
}
