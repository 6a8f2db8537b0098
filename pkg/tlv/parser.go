// Package tlv parses the flat Tag-Length-Value encoding found in smart card
// elementary files: one-byte tags, one-byte or 0x80-flagged multi-byte
// lengths, and 0x00/0xFF padding between entries.
//
// This deliberately is not BER-TLV. Card files in the wild are padded with
// 0x00 or 0xFF filler that BER decoders reject, and their tags are plain
// bytes, not multi-byte BER identifiers. Constructed BER values do occur
// inside entries; Describe hands those to a BER decoder for display.
package tlv

// Entry is one tag/value pair in parse order.
type Entry struct {
	Tag   int
	Value []byte
}

// Entries is an ordered tag-to-value mapping. Order is the order tags first
// appeared in the buffer; a tag seen again keeps its position but takes the
// later value.
type Entries []Entry

// Get returns the value for a tag.
func (e Entries) Get(tag int) ([]byte, bool) {
	for _, entry := range e {
		if entry.Tag == tag {
			return entry.Value, true
		}
	}
	return nil, false
}

// Parse scans the buffer in a single pass and returns every complete entry.
// It never fails: a truncated or malformed tail simply ends the scan, and the
// entries parsed up to that point are returned.
func Parse(data []byte) Entries {
	var result Entries
	i := 0

	for i < len(data) {
		tag := int(data[i])
		i++

		// 0x00 and 0xFF are padding, not entries.
		if tag == 0x00 || tag == 0xFF {
			continue
		}

		if i >= len(data) {
			break
		}

		length := int(data[i])
		i++

		if length&0x80 != 0 {
			// Extended form: the low 7 bits count the big-endian length bytes.
			// More than 3 length bytes cannot describe a value that fits in a
			// card file; treat it as a malformed tail and end the scan before
			// the accumulation can overflow.
			n := length & 0x7F
			if n == 0 || n > 3 || i+n > len(data) {
				break
			}
			length = 0
			for j := 0; j < n; j++ {
				length = length<<8 | int(data[i+j])
			}
			i += n
		}

		if i+length > len(data) {
			break
		}

		result = result.put(tag, data[i:i+length])
		i += length
	}

	return result
}

// put inserts or overwrites a tag, preserving first-appearance order.
func (e Entries) put(tag int, value []byte) Entries {
	for idx := range e {
		if e[idx].Tag == tag {
			e[idx].Value = value
			return e
		}
	}
	return append(e, Entry{Tag: tag, Value: value})
}
