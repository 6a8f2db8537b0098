package iso7816

import (
	"fmt"
)

// FILE READ SESSION:
// Reading a logical file is a two-phase protocol. The file is first selected
// by its 2-byte identifier; the card may answer '61 XX', in which case one
// GET RESPONSE retrieves the pending selection data. The file content is then
// retrieved with a chunked READ BINARY loop, at most 256 bytes per exchange,
// until the card signals end-of-file with a short read or the requested cap
// is reached.
//
// A session is exclusively owned by its driving caller: it holds no resources
// beyond its buffer, needs no locking, and dies with the read. Retry policy
// belongs to the caller; the session never re-sends a rejected command.

// FileReadState identifies the position of a FileReadSession in its lifecycle.
type FileReadState int

const (
	StateIdle FileReadState = iota
	StateSelecting
	StateSelectMoreData
	StateSelected
	StateReading
	StateDone
	StateFailed
)

func (s FileReadState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSelecting:
		return "Selecting"
	case StateSelectMoreData:
		return "SelectMoreData"
	case StateSelected:
		return "Selected"
	case StateReading:
		return "Reading"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown State (%d)", int(s))
	}
}

// FileReadSession accumulates the content of one logical file across the
// select and chunked-read exchanges. The content buffer grows monotonically
// and always equals the file offset of the next read.
type FileReadSession struct {
	fileID    uint16
	maxLength int
	cla       Class

	state          FileReadState
	buffer         []byte
	selectResponse []byte
	lastStatus     StatusWord
	reads          int
}

// NewFileReadSession creates an idle session for one file.
// maxLength caps how many content bytes the session will request.
func NewFileReadSession(cla Class, fileID uint16, maxLength int) (*FileReadSession, error) {
	if maxLength <= 0 {
		return nil, fmt.Errorf("max length %d must be positive", maxLength)
	}

	return &FileReadSession{
		fileID:    fileID,
		maxLength: maxLength,
		cla:       cla,
		state:     StateIdle,
	}, nil
}

// FileID returns the identifier of the file this session reads.
func (s *FileReadSession) FileID() uint16 {
	return s.fileID
}

// State returns the current lifecycle state.
func (s *FileReadSession) State() FileReadState {
	return s.state
}

// Data returns the accumulated file content. After a failure it holds
// whatever was read before the rejected exchange; the caller decides whether
// partial data is usable.
func (s *FileReadSession) Data() []byte {
	return s.buffer
}

// SelectResponse returns the data the card attached to the selection,
// kept separate from the file content.
func (s *FileReadSession) SelectResponse() []byte {
	return s.selectResponse
}

// LastStatus returns the status word of the most recent exchange.
func (s *FileReadSession) LastStatus() StatusWord {
	return s.lastStatus
}

// Reads returns how many READ BINARY exchanges the session performed.
func (s *FileReadSession) Reads() int {
	return s.reads
}

// Run drives the session to completion against the given transport:
// select, optional GET RESPONSE continuation, then the read loop.
// Transport errors propagate to the caller; protocol rejections move the
// session to Failed and are reported with the triggering status word.
func (s *FileReadSession) Run(card Transmitter) error {
	if s.state != StateIdle {
		return fmt.Errorf("session already consumed (state %s)", s.state)
	}

	if err := s.selectFile(card); err != nil {
		return err
	}
	return s.readContent(card)
}

// transmit performs one raw exchange and records the resulting status word.
func (s *FileReadSession) transmit(card Transmitter, cmd *CommandAPDU) (*ResponseAPDU, error) {
	raw, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	rawResp, err := card.Transmit(raw)
	if err != nil {
		return nil, fmt.Errorf("transmission error: %w", err)
	}

	resp, err := ParseResponseAPDU(rawResp)
	if err != nil {
		return nil, err
	}

	s.lastStatus = resp.Status
	return resp, nil
}

func (s *FileReadSession) selectFile(card Transmitter) error {
	s.state = StateSelecting

	resp, err := s.transmit(card, SelectFile(s.cla, s.fileID))
	if err != nil {
		s.state = StateFailed
		return err
	}

	switch resp.Status.SW1() {
	case 0x90:
		s.selectResponse = resp.Data
		s.state = StateSelected
		return nil

	case 0x61:
		// The card holds selection data; fetch it before reading.
		s.state = StateSelectMoreData
		s.selectResponse = resp.Data

		cont, err := s.transmit(card, GetResponse(s.cla, resp.Status.SW2()))
		if err != nil {
			s.state = StateFailed
			return err
		}
		if cont.Status.SW1() != 0x90 {
			s.state = StateFailed
			return fmt.Errorf("get response for file %04X rejected: %s", s.fileID, cont.Status.Describe())
		}

		s.selectResponse = append(s.selectResponse, cont.Data...)
		s.state = StateSelected
		return nil

	default:
		s.state = StateFailed
		return fmt.Errorf("select file %04X rejected: %s", s.fileID, resp.Status.Describe())
	}
}

func (s *FileReadSession) readContent(card Transmitter) error {
	s.state = StateReading
	offset := 0

	for {
		chunk := s.maxLength - offset
		if chunk > MaxShortLe {
			chunk = MaxShortLe
		}

		cmd, err := ReadBinary(s.cla, uint16(offset), chunk)
		if err != nil {
			s.state = StateFailed
			return fmt.Errorf("file %04X: %w", s.fileID, err)
		}

		resp, err := s.transmit(card, cmd)
		if err != nil {
			s.state = StateFailed
			return err
		}
		s.reads++

		if resp.Status.SW1() != 0x90 {
			s.state = StateFailed
			return fmt.Errorf("read file %04X at offset %d rejected: %s", s.fileID, offset, resp.Status.Describe())
		}

		s.buffer = append(s.buffer, resp.Data...)
		offset += len(resp.Data)

		// A short read signals end-of-file; a full read up to the cap is done.
		if len(resp.Data) < chunk || offset >= s.maxLength {
			s.state = StateDone
			return nil
		}
	}
}

// ReadFile is the convenience wrapper for the common case: run a full session
// and return the content. The session is returned as well so callers can
// inspect the select response, the final state and the last status word.
func ReadFile(card Transmitter, cla Class, fileID uint16, maxLength int) ([]byte, *FileReadSession, error) {
	session, err := NewFileReadSession(cla, fileID, maxLength)
	if err != nil {
		return nil, nil, err
	}

	if err := session.Run(card); err != nil {
		return session.Data(), session, err
	}
	return session.Data(), session, nil
}
