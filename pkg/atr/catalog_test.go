package atr

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/card-explorer/pkg/tlv"
)

const sampleCatalog = `# ATR catalog sample
# blank lines and comments are ignored

3B 8F 80 01 80 4F 0C A0 00 00 03 06
	Contactless card (PC/SC part 3)

3B 8F 80 01
	Generic contactless prefix
	second description line

3F 67 25 00 21 20 00 4F 68 90 00 Payphone card (description on the entry line)
`

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog(strings.NewReader(sampleCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog() error: %v", err)
	}

	want := []CatalogEntry{
		{
			Prefix:      "3B 8F 80 01 80 4F 0C A0 00 00 03 06",
			Description: "Contactless card (PC/SC part 3)",
		},
		{
			Prefix:      "3B 8F 80 01",
			Description: "Generic contactless prefix second description line",
		},
		{
			Prefix:      "3F 67 25 00 21 20 00 4F 68 90 00",
			Description: "Payphone card (description on the entry line)",
		},
	}

	if diff := cmp.Diff(want, catalog.Entries()); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCatalog_LastEntryAtEOF(t *testing.T) {
	// No trailing newline or separator after the final description.
	catalog, err := ParseCatalog(strings.NewReader("3B 65 00\nFinal entry"))
	if err != nil {
		t.Fatalf("ParseCatalog() error: %v", err)
	}

	if catalog.Len() != 1 {
		t.Fatalf("Len = %d, want 1", catalog.Len())
	}
	if got := catalog.Entries()[0].Description; got != "Final entry" {
		t.Errorf("Description = %q, want %q", got, "Final entry")
	}
}

func TestHexString(t *testing.T) {
	got := HexString([]byte{0x3B, 0x8F, 0x01, 0xAB})
	if got != "3B 8F 01 AB" {
		t.Errorf("HexString() = %q", got)
	}
}

func TestCatalog_Match(t *testing.T) {
	catalog, err := ParseCatalog(strings.NewReader(
		"3B 8F 80 01\nGeneric prefix\n\n3B 8F 80 01 80 4F\nSpecific prefix\n"))
	if err != nil {
		t.Fatalf("ParseCatalog() error: %v", err)
	}

	full := tlv.Hex("3B 8F 80 01 80 4F 0C A0")

	t.Run("First match wins in file order", func(t *testing.T) {
		entry, ok := catalog.Match(full)
		if !ok {
			t.Fatal("Match() = false")
		}
		if entry.Description != "Generic prefix" {
			t.Errorf("Description = %q, want the earlier entry", entry.Description)
		}
	})

	t.Run("Longest match strategy prefers specificity", func(t *testing.T) {
		catalog.Strategy = LongestMatch
		defer func() { catalog.Strategy = FirstMatch }()

		entry, ok := catalog.Match(full)
		if !ok {
			t.Fatal("Match() = false")
		}
		if entry.Description != "Specific prefix" {
			t.Errorf("Description = %q, want the longer entry", entry.Description)
		}
	})

	t.Run("Short capture matches longer catalog key", func(t *testing.T) {
		entry, ok := catalog.Match(tlv.Hex("3B 8F"))
		if !ok {
			t.Fatal("Match() = false")
		}
		if entry.Description != "Generic prefix" {
			t.Errorf("Description = %q", entry.Description)
		}
	})

	t.Run("No match", func(t *testing.T) {
		if _, ok := catalog.Match(tlv.Hex("3F 00")); ok {
			t.Error("Match() = true, want false")
		}
	})
}
