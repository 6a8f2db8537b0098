package iso7816

// READ RECORD COMMAND LOGIC (ISO 7816-4):
// The READ RECORD command (INS 'B2') reads a record from the current
// Elementary File or from a file designated by its Short File Identifier.
//
// P2 (Reference Control):
// - Bits 8-4: Short File Identifier (SFI). If 0, use Current EF.
// - Bit 3:    0=Reference by ID, 1=Reference by Number.
// - Bits 2-1: Occurrence/Mode.

// ReadRecordMode defines how to interpret P1 and which record(s) to read.
type ReadRecordMode byte

const (
	// P1 is Record IDENTIFIER (Bit 3 = 0)
	RefByID_FirstOccurrence ReadRecordMode = 0b000
	RefByID_LastOccurrence  ReadRecordMode = 0b001

	// P1 is Record NUMBER (Bit 3 = 1)
	RefByNum_ReadP1        ReadRecordMode = 0b100
	RefByNum_ReadAllFromP1 ReadRecordMode = 0b101
)

// NewReadRecordCommand creates a raw READ RECORD command.
func NewReadRecordCommand(
	cla Class,
	sfi byte,
	p1 byte,
	mode ReadRecordMode,
) *CommandAPDU {
	// P2 Construction: (SFI << 3) | Mode
	p2 := (sfi << 3) | byte(mode)

	ins, _ := NewInstruction(INS_READ_RECORD)

	// READ RECORD is a "Case 2" command (no data sent, data expected), so a
	// response length must be requested. MaxShortLe makes the encoder append
	// a trailing '00'.
	return NewCommandAPDU(cla, ins, p1, p2, nil, MaxShortLe)
}

// ReadRecord reads a specific record by its number from the current EF.
func ReadRecord(cla Class, sfi byte, recordNumber byte) *CommandAPDU {
	return NewReadRecordCommand(cla, sfi, recordNumber, RefByNum_ReadP1)
}
