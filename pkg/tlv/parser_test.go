package tlv

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Entries
	}{
		{
			name: "Single entry",
			data: Hex("4F 02 A0 01"),
			want: Entries{
				{Tag: 0x4F, Value: []byte{0xA0, 0x01}},
			},
		},
		{
			name: "Extended length form",
			data: Hex("50 81 01 41"),
			want: Entries{
				{Tag: 0x50, Value: []byte{0x41}},
			},
		},
		{
			name: "Two-byte extended length",
			data: append(Hex("5F 82 01 04"), bytes.Repeat([]byte{0xAB}, 260)...),
			want: Entries{
				{Tag: 0x5F, Value: bytes.Repeat([]byte{0xAB}, 260)},
			},
		},
		{
			name: "Padding before an entry",
			data: Hex("00 4F 01 05"),
			want: Entries{
				{Tag: 0x4F, Value: []byte{0x05}},
			},
		},
		{
			name: "FF padding between entries",
			data: Hex("4F 01 05 FF FF 50 01 41"),
			want: Entries{
				{Tag: 0x4F, Value: []byte{0x05}},
				{Tag: 0x50, Value: []byte{0x41}},
			},
		},
		{
			name: "Truncated value keeps earlier entries",
			data: Hex("4F 01 05 50 04 41 42"),
			want: Entries{
				{Tag: 0x4F, Value: []byte{0x05}},
			},
		},
		{
			name: "Tag with no length byte",
			data: Hex("4F 01 05 50"),
			want: Entries{
				{Tag: 0x4F, Value: []byte{0x05}},
			},
		},
		{
			name: "Extended length with missing count bytes",
			data: Hex("4F 01 05 50 82 01"),
			want: Entries{
				{Tag: 0x4F, Value: []byte{0x05}},
			},
		},
		{
			name: "Oversized length extension ends the scan",
			data: Hex("4F 01 05 50 88 FF FF FF FF FF FF FF FF"),
			want: Entries{
				{Tag: 0x4F, Value: []byte{0x05}},
			},
		},
		{
			name: "Oversized length extension alone yields nothing",
			data: Hex("4F 88 FF FF FF FF FF FF FF FF"),
			want: nil,
		},
		{
			name: "Repeated tag keeps position, takes last value",
			data: Hex("4F 01 05 50 01 41 4F 01 06"),
			want: Entries{
				{Tag: 0x4F, Value: []byte{0x06}},
				{Tag: 0x50, Value: []byte{0x41}},
			},
		},
		{
			name: "Zero-length value",
			data: Hex("4F 00"),
			want: Entries{
				{Tag: 0x4F, Value: []byte{}},
			},
		},
		{
			name: "All padding",
			data: Hex("00 00 FF FF"),
			want: nil,
		},
		{
			name: "Empty buffer",
			data: nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.data)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEntries_Get(t *testing.T) {
	entries := Parse(Hex("4F 02 A0 01 50 01 41"))

	val, ok := entries.Get(0x4F)
	if !ok {
		t.Fatal("Get(4F) not found")
	}
	if !bytes.Equal(val, []byte{0xA0, 0x01}) {
		t.Errorf("Get(4F) = %X, want A001", val)
	}

	if _, ok := entries.Get(0x99); ok {
		t.Error("Get(99) found, want absent")
	}
}
