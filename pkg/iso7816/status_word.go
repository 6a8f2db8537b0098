package iso7816

import (
	"fmt"

	"github.com/gregLibert/card-explorer/pkg/bits"
)

// Status Word (SW1-SW2) logic according to ISO/IEC 7816-4.
//
// Most Status Words are static 2-byte values (e.g. 0x9000), but a few ranges
// are dynamic and carry contextual information in SW2:
//
// 1. '61XX': Process completed, XX extra bytes available via GET RESPONSE.
// 2. '6CXX': Wrong length, XX is the correct Le.
// 3. '63CX': Counter management, the low nibble is a retry counter.
//
// Describe resolves a status word in two steps: an exact-match table covering
// the well-known ISO codes plus the MIFARE and Java Card vendor blocks, then
// SW1-keyed family rules for everything the table does not name. The exact
// table is consulted first on purpose: 6A82 has a precise entry ("File or
// application not found") that the generic 6A family rule would otherwise
// shadow with a vaguer message.

// StatusWord represents the two-byte status response (SW1-SW2) returned by the smart card.
type StatusWord uint16

// NewStatusWord creates a StatusWord instance from two separate bytes.
func NewStatusWord(sw1, sw2 byte) StatusWord {
	return StatusWord(uint16(sw1)<<8 | uint16(sw2))
}

// SW1 returns the first byte (high byte) of the status word.
func (sw StatusWord) SW1() byte {
	return byte(sw >> 8)
}

// SW2 returns the second byte (low byte) of the status word.
func (sw StatusWord) SW2() byte {
	return byte(sw)
}

// IsCounter checks if the status carries a retry counter (63CX).
func (sw StatusWord) IsCounter() bool {
	return sw.SW1() == 0x63 && bits.HighNibble(sw.SW2()) == 0x0C
}

// IsSuccess returns true if the command was processed successfully (9000) or
// if data is available (61XX).
func (sw StatusWord) IsSuccess() bool {
	return sw == SW_NO_ERROR || sw.SW1() == 0x61
}

// IsWarning returns true if the status indicates a warning (62XX or 63XX).
func (sw StatusWord) IsWarning() bool {
	sw1 := sw.SW1()
	return sw1 == 0x62 || sw1 == 0x63
}

// IsError returns true if the status indicates an execution error (64XX to 6FXX).
func (sw StatusWord) IsError() bool {
	sw1 := sw.SW1()
	return sw1 >= 0x64 && sw1 <= 0x6F
}

// Describe returns a human-readable description of the status word.
// It is a total function: exact-match table first, then SW1-keyed family
// rules, then a generic "unknown status code" message.
func (sw StatusWord) Describe() string {
	if desc, ok := statusDescriptions[sw]; ok {
		return desc
	}

	sw1 := sw.SW1()
	sw2 := sw.SW2()

	switch {
	case sw1 == 0x61:
		return fmt.Sprintf("Success - %d bytes of response data available", sw2)
	case sw1 == 0x6C:
		return fmt.Sprintf("Wrong length - Expected Le=%02X (%d) bytes", sw2, sw2)
	case sw.IsCounter():
		return fmt.Sprintf("Warning - Verification failed, %d tries left", bits.LowNibble(sw2))
	case sw1 == 0x62:
		return fmt.Sprintf("Warning - State unchanged (SW2=%02X)", sw2)
	case sw1 == 0x63:
		return fmt.Sprintf("Warning - State changed (SW2=%02X)", sw2)
	case sw1 == 0x64:
		return fmt.Sprintf("Error - State unchanged (SW2=%02X)", sw2)
	case sw1 == 0x65:
		return fmt.Sprintf("Error - State changed (SW2=%02X)", sw2)
	case sw1 == 0x66:
		return fmt.Sprintf("Error - Security related issue (SW2=%02X)", sw2)
	case sw1 == 0x67:
		return fmt.Sprintf("Error - Wrong length (SW2=%02X)", sw2)
	case sw1 == 0x68:
		return fmt.Sprintf("Error - Functions in CLA not supported (SW2=%02X)", sw2)
	case sw1 == 0x69:
		return fmt.Sprintf("Error - Command not allowed (SW2=%02X)", sw2)
	case sw1 == 0x6A, sw1 == 0x6B:
		return fmt.Sprintf("Error - Wrong parameters P1-P2 (SW2=%02X)", sw2)
	case sw1 == 0x6D:
		return fmt.Sprintf("Error - Instruction not supported (SW2=%02X)", sw2)
	case sw1 == 0x6E:
		return fmt.Sprintf("Error - Class not supported (SW2=%02X)", sw2)
	case sw1 == 0x6F:
		return fmt.Sprintf("Error - No precise diagnosis (SW2=%02X)", sw2)
	case sw1 == 0x90:
		return fmt.Sprintf("Success (SW2=%02X)", sw2)
	case sw1 == 0x92:
		return fmt.Sprintf("MIFARE specific error (SW2=%02X)", sw2)
	case sw1 == 0x93:
		return fmt.Sprintf("MIFARE permission/application error (SW2=%02X)", sw2)
	case sw1 == 0x94:
		return fmt.Sprintf("MIFARE/Java Card algorithm error (SW2=%02X)", sw2)
	default:
		return fmt.Sprintf("Unknown status code %02X%02X", sw1, sw2)
	}
}

// String implements fmt.Stringer.
func (sw StatusWord) String() string {
	return fmt.Sprintf("[%04X] %s", uint16(sw), sw.Describe())
}

// Standard Status Word codes defined in ISO/IEC 7816-4.
const (
	SW_NO_ERROR StatusWord = 0x9000

	SW_WARN_EOF_REACHED      StatusWord = 0x6282
	SW_WARN_FILE_DEACTIVATED StatusWord = 0x6283

	SW_ERR_WRONG_LENGTH            StatusWord = 0x6700
	SW_ERR_SECURITY_STATUS_NOT_SAT StatusWord = 0x6982
	SW_ERR_AUTH_METHOD_BLOCKED     StatusWord = 0x6983
	SW_ERR_COND_OF_USE_NOT_SAT     StatusWord = 0x6985
	SW_ERR_FILE_NOT_FOUND          StatusWord = 0x6A82
	SW_ERR_RECORD_NOT_FOUND        StatusWord = 0x6A83
	SW_ERR_INS_INVALID             StatusWord = 0x6D00
	SW_ERR_CLA_NOT_SUPPORTED       StatusWord = 0x6E00
	SW_ERR_UNKNOWN                 StatusWord = 0x6F00
)

// statusDescriptions is the exact-match table. The wording is kept identical
// to the text existing tooling expects, vendor blocks included. The generic
// "more data available" 61XX entries are deliberately absent: SW2 there is a
// byte count, which only the dynamic rule above can render.
var statusDescriptions = map[StatusWord]string{
	// Success codes
	0x9000: "Success - Normal processing",
	0x9001: "Success - Normal processing with extra information",

	// Warning codes (61xx-63xx)
	0x6181: "Warning - Part of returned data may be corrupted",
	0x6182: "Warning - End of file reached before reading expected number of bytes",
	0x6183: "Warning - Selected file invalidated",
	0x6184: "Warning - File control information not formatted",
	0x6185: "Warning - Selected file in termination state",
	0x6186: "Warning - No input data available from sensor",
	0x6187: "Warning - At least one try left",
	0x6188: "Warning - Last try left",

	0x6200: "Warning - Information added by the card (card gives information)",
	0x6281: "Warning - Part of returned data may be corrupted",
	0x6282: "Warning - End of file reached before reading Le bytes",
	0x6283: "Warning - Selected file invalidated",
	0x6284: "Warning - File control information not formatted according to 5.3.3",
	0x6285: "Warning - Selected file in termination state",
	0x6286: "Warning - No input data available from a sensor on the card",
	0x6300: "Warning - Authentication failed",
	0x6381: "Warning - File filled up by the last write",
	0x6382: "Warning - Card key not supported",
	0x6383: "Warning - Reader key not supported",
	0x6384: "Warning - Plaintext transmission not supported",
	0x6385: "Warning - Secured transmission not supported",
	0x6386: "Warning - Volatile memory is not available",
	0x6387: "Warning - Non-volatile memory is not available",
	0x6388: "Warning - Key number not valid",
	0x6389: "Warning - Key length is not correct",

	// Execution errors (64xx-65xx)
	0x6400: "Error - Execution error",
	0x6401: "Error - Immediate response required by the card",
	0x6481: "Error - Memory failure",
	0x6500: "Error - No information given",
	0x6501: "Error - Write problem / Memory failure / Unknown mode",
	0x6581: "Error - Memory failure",

	// Wrong length (6Cxx)
	0x6C00: "Error - Wrong length Le",

	// Functions in CLA not supported (68xx)
	0x6800: "Error - Functions in CLA not supported",
	0x6881: "Error - Logical channel not supported",
	0x6882: "Error - Secure messaging not supported",
	0x6883: "Error - Last command of the chain expected",
	0x6884: "Error - Command chaining not supported",

	// Command not allowed (69xx)
	0x6900: "Error - Command not allowed",
	0x6981: "Error - Command incompatible with file structure",
	0x6982: "Error - Security condition not satisfied",
	0x6983: "Error - Authentication method blocked",
	0x6984: "Error - Referenced data reversibly blocked (invalidated)",
	0x6985: "Error - Conditions of use not satisfied",
	0x6986: "Error - Command not allowed (no current EF)",
	0x6987: "Error - Expected secure messaging data objects missing",
	0x6988: "Error - Incorrect secure messaging data objects",

	// Wrong parameters (6Axx)
	0x6A00: "Error - Wrong parameter(s) P1-P2",
	0x6A80: "Error - Incorrect parameters in the data field",
	0x6A81: "Java Card - Card locked or function not supported",
	0x6A82: "Error - File or application not found",
	0x6A83: "Error - Record not found",
	0x6A84: "Error - Not enough memory space in the file",
	0x6A85: "Error - Nc inconsistent with TLV structure",
	0x6A86: "Error - Incorrect parameters P1-P2",
	0x6A87: "Error - Nc inconsistent with parameters P1-P2",
	0x6A88: "Error - Referenced data not found",
	0x6A89: "Error - File already exists",
	0x6A8A: "Error - DF name already exists",

	0x6B00: "Error - Wrong parameter(s) P1-P2",
	0x6D00: "Error - Instruction code not supported or invalid",
	0x6E00: "Error - Class not supported",
	0x6F00: "Error - No precise diagnosis",
	0x6FFF: "Error - Card dead (no answer to reset)",

	// Proprietary/vendor specific codes
	0x9240: "MIFARE - Authentication error",
	0x9302: "MIFARE - Permission denied",
	0x9303: "MIFARE - Application not found",
	0x9310: "MIFARE - Application already exists",
	0x9320: "MIFARE - File not found",
	0x9321: "MIFARE - File already exists",
	0x9322: "MIFARE - File is read only",
	0x9381: "MIFARE - Current authentication status does not allow the requested command",
	0x9400: "MIFARE - Length error",
	0x9401: "MIFARE - Invalid key number specified",
	0x9402: "MIFARE - Application keys are locked",

	// Java Card specific
	0x6999: "Java Card - Applet selection failed",
	0x9484: "Java Card - Algorithm not supported",
	0x9485: "Java Card - Invalid key for use in the specified context",
}
