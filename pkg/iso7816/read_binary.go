package iso7816

import (
	"fmt"
)

// READ BINARY COMMAND LOGIC (ISO 7816-4):
// The READ BINARY command (INS 'B0') reads a byte range from the currently
// selected transparent Elementary File. With bit 8 of P1 clear, P1-P2 encode a
// 15-bit file offset and Le the number of bytes to read.
//
// GET RESPONSE (INS 'C0') retrieves response data the card announced with a
// '61 XX' status, and GET DATA (INS 'CA') retrieves a single data object
// identified by the P1-P2 tag.

// ReadBinary creates a READ BINARY command for a byte range of the selected
// file: 00 B0 HI LO Le. The offset must fit in 15 bits and length in 1..256;
// out-of-range values are a caller contract violation and are rejected rather
// than truncated.
func ReadBinary(cla Class, offset uint16, length int) (*CommandAPDU, error) {
	if offset > 0x7FFF {
		return nil, fmt.Errorf("offset %d exceeds the 15-bit READ BINARY range", offset)
	}
	if length < 1 || length > MaxShortLe {
		return nil, fmt.Errorf("length %d out of range [1, %d]", length, MaxShortLe)
	}

	ins, _ := NewInstruction(INS_READ_BINARY)
	return NewCommandAPDU(cla, ins, byte(offset>>8), byte(offset), nil, length), nil
}

// GetResponse creates a GET RESPONSE command requesting le pending bytes:
// 00 C0 00 00 Le. A le of 0 requests the short-mode maximum (256).
func GetResponse(cla Class, le byte) *CommandAPDU {
	ne := int(le)
	if ne == 0 {
		ne = MaxShortLe
	}

	ins, _ := NewInstruction(INS_GET_RESPONSE)
	return NewCommandAPDU(cla, ins, 0x00, 0x00, nil, ne)
}

// GetData creates a GET DATA command for the data object tag encoded in P1-P2:
// CLA CA P1 P2 00.
func GetData(cla Class, tag uint16) *CommandAPDU {
	ins, _ := NewInstruction(INS_GET_DATA)
	return NewCommandAPDU(cla, ins, byte(tag>>8), byte(tag), nil, MaxShortLe)
}
