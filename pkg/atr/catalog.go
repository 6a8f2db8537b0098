package atr

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ATR CATALOG FILE FORMAT:
// Line-oriented text. '#' lines are comments. A line whose first token is
// "3B" or "3F" starts a new entry: leading two-hex-digit tokens form the
// ATR prefix, the first non-hex token starts the description. Any other
// non-blank line extends the description of the entry being built.
// Entries keep file order; the match policy decides which one wins.

// CatalogEntry is one ATR prefix with its description.
type CatalogEntry struct {
	// Prefix is the space-joined uppercase two-hex-digit byte sequence,
	// e.g. "3B 8F 80 01".
	Prefix      string
	Description string
}

// MatchStrategy selects which of several matching entries a lookup returns.
type MatchStrategy int

const (
	// FirstMatch returns the entry appearing earliest in the source file,
	// regardless of specificity. This mirrors how existing ATR tooling
	// resolves lookups; keep it when output compatibility matters.
	FirstMatch MatchStrategy = iota

	// LongestMatch returns the entry with the longest matching prefix.
	LongestMatch
)

// Catalog is an immutable, ordered set of ATR prefix entries.
type Catalog struct {
	Strategy MatchStrategy
	entries  []CatalogEntry
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns the entries in file order.
func (c *Catalog) Entries() []CatalogEntry {
	return c.entries
}

var hexByteRe = regexp.MustCompile(`^[0-9A-Fa-f]{2}$`)

// ParseCatalog reads the catalog text format. The only possible error is a
// failure of the underlying reader; unparseable lines are simply skipped or
// folded into the current description.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	c := &Catalog{}

	// Explicit builder state: either between entries, or accumulating the
	// prefix/description of the entry most recently started.
	var (
		building bool
		prefix   []string
		desc     []string
	)

	flush := func() {
		if building && len(prefix) > 0 {
			c.entries = append(c.entries, CatalogEntry{
				Prefix:      strings.Join(prefix, " "),
				Description: strings.TrimSpace(strings.Join(desc, " ")),
			})
		}
		building = false
		prefix = nil
		desc = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tokens := strings.Fields(line)

		if tokens[0] == "3B" || tokens[0] == "3F" {
			flush()
			building = true

			i := 0
			for ; i < len(tokens); i++ {
				if !hexByteRe.MatchString(tokens[i]) {
					break
				}
				prefix = append(prefix, strings.ToUpper(tokens[i]))
			}
			if i < len(tokens) {
				desc = append(desc, strings.Join(tokens[i:], " "))
			}
			continue
		}

		// Continuation line: free text belonging to the current entry.
		if building {
			desc = append(desc, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	flush()
	return c, nil
}

// HexString renders an ATR the way catalog keys are written:
// space-separated uppercase two-hex-digit bytes.
func HexString(raw []byte) string {
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// Match looks the ATR up in the catalog. An entry matches if the rendered ATR
// starts with the entry's prefix, or if the entry's prefix starts with the
// rendered ATR (short or partial ATR captures).
func (c *Catalog) Match(raw []byte) (CatalogEntry, bool) {
	rendered := HexString(raw)

	var best *CatalogEntry
	for i := range c.entries {
		e := &c.entries[i]

		var matched bool
		if len(rendered) >= len(e.Prefix) {
			matched = strings.HasPrefix(rendered, e.Prefix)
		} else {
			matched = strings.HasPrefix(e.Prefix, rendered)
		}
		if !matched {
			continue
		}

		if c.Strategy == FirstMatch {
			return *e, true
		}
		if best == nil || len(e.Prefix) > len(best.Prefix) {
			best = e
		}
	}

	if best != nil {
		return *best, true
	}
	return CatalogEntry{}, false
}
