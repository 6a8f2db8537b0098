package iso7816

import (
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/card-explorer/pkg/tlv"
)

// FILE CONTROL INFORMATION (FCI) according to ISO/IEC 7816-4.
//
// A successful SELECT may return data describing the selected file, wrapped
// in one of three templates: FCI (tag '6F'), FCP (tag '62') or FMD (tag '64').
// Inside, tag '84' carries the DF name (the AID for applications), tag '83'
// the file identifier, and the proprietary template 'A5' commonly carries the
// application label in tag '50'.

// FileControlInfo holds the selection-response fields this tool reports.
type FileControlInfo struct {
	DFName           []byte
	ApplicationLabel []byte
	FileIdentifier   []byte
	Unknown          []bertlv.TLV
}

// ParseFCI interprets a selection response as File Control Information.
// It accepts the 6F/62/64 wrappers as well as bare template content.
func ParseFCI(data []byte) (*FileControlInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data cannot be parsed")
	}

	packets, err := bertlv.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("BER-TLV decode failed: %w", err)
	}

	fci := &FileControlInfo{}
	fci.collect(packets)
	return fci, nil
}

func (f *FileControlInfo) collect(packets []bertlv.TLV) {
	for _, p := range packets {
		switch strings.ToUpper(p.Tag) {
		case "6F", "62", "64", "A5":
			f.collect(children(p))
		case "84":
			f.DFName = p.Value
		case "50":
			f.ApplicationLabel = p.Value
		case "83":
			f.FileIdentifier = p.Value
		default:
			f.Unknown = append(f.Unknown, p)
		}
	}
}

// children returns the nested TLVs of a constructed packet, decoding the raw
// value when the decoder left it flat.
func children(p bertlv.TLV) []bertlv.TLV {
	if len(p.TLVs) > 0 {
		return p.TLVs
	}
	if nested, err := bertlv.Decode(p.Value); err == nil {
		return nested
	}
	return nil
}

// Describe generates a short report of the parsed selection response.
func (f *FileControlInfo) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== FILE CONTROL INFORMATION ===\n")

	if len(f.DFName) > 0 {
		sb.WriteString(fmt.Sprintf("    - DF Name: %X (%q)\n", f.DFName, tlv.SafeASCII(f.DFName)))
	}
	if len(f.ApplicationLabel) > 0 {
		sb.WriteString(fmt.Sprintf("    - Application Label: %q\n", tlv.SafeASCII(f.ApplicationLabel)))
	}
	if len(f.FileIdentifier) > 0 {
		sb.WriteString(fmt.Sprintf("    - File Identifier: %X\n", f.FileIdentifier))
	}
	for _, u := range f.Unknown {
		sb.WriteString(fmt.Sprintf("    - Tag %s: %X (%q)\n", strings.ToUpper(u.Tag), u.Value, tlv.SafeASCII(u.Value)))
	}

	return sb.String()
}
