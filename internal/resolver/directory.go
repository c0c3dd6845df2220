package resolver

import (
	"strings"

	"github.com/seenimoa/newsheat/pkg/models"
	"github.com/seenimoa/newsheat/pkg/utils"
)

// Entry is one name → code mapping.
type Entry struct {
	Name string
	Code string
}

// builtinEntries seeds the directory with the most-watched listings.
var builtinEntries = []Entry{
	{"台積電", "2330"}, {"鴻海", "2317"}, {"聯發科", "2454"}, {"台達電", "2308"},
	{"廣達", "2382"}, {"中華電", "2412"}, {"富邦金", "2881"}, {"國泰金", "2882"},
	{"長榮", "2603"}, {"陽明", "2609"}, {"萬海", "2615"}, {"聯電", "2303"},
	{"日月光投控", "3711"}, {"緯創", "3231"}, {"英業達", "2356"}, {"華碩", "2357"},
	{"中鋼", "2002"}, {"台塑", "1301"}, {"南亞", "1303"}, {"統一", "1216"},
	{"兆豐金", "2886"}, {"中信金", "2891"}, {"玉山金", "2884"}, {"大立光", "3008"},
	{"技嘉", "2376"}, {"微星", "2377"}, {"智邦", "2345"}, {"世芯-KY", "3661"},
	{"創意", "3443"}, {"元大台灣50", "0050"}, {"奇鋐", "3017"}, {"欣興", "3037"},
	{"台化", "1326"}, {"仁寶", "2324"}, {"友達", "2409"}, {"群創", "3481"},
	{"長榮航", "2618"}, {"華航", "2610"},
}

// Directory maps display names to codes. It keeps registration order so
// substring matches are deterministic, and is never modified once built;
// Extend returns a new Directory.
type Directory struct {
	entries   []Entry           // registration order, original spelling
	keys      []string          // normalized names, parallel to entries
	byName    map[string]int    // normalized name → index into entries
	canonical map[string]string // code → first registered name
}

// NewDirectory builds a directory from entries. Later duplicates of a name
// are ignored.
func NewDirectory(entries []Entry) *Directory {
	d := &Directory{
		byName:    make(map[string]int, len(entries)),
		canonical: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		d.add(e)
	}
	return d
}

// DefaultDirectory returns the built-in baseline.
func DefaultDirectory() *Directory {
	return NewDirectory(builtinEntries)
}

func (d *Directory) add(e Entry) bool {
	name := strings.TrimSpace(e.Name)
	code := strings.TrimSpace(e.Code)
	key := utils.NormalizeInput(name)
	if key == "" || code == "" {
		return false
	}
	if _, ok := d.byName[key]; ok {
		return false
	}
	d.byName[key] = len(d.entries)
	d.entries = append(d.entries, Entry{Name: name, Code: code})
	d.keys = append(d.keys, key)
	if _, ok := d.canonical[code]; !ok {
		d.canonical[code] = name
	}
	return true
}

// Extend returns a copy of d with every listing whose name is not already
// present appended in the given order.
func (d *Directory) Extend(listings []models.MarketListing) *Directory {
	out := NewDirectory(d.entries)
	for _, l := range listings {
		out.add(Entry{Name: l.Name, Code: l.Code})
	}
	return out
}

// Len returns the number of names.
func (d *Directory) Len() int { return len(d.entries) }

// Entries returns a copy of the entries in registration order.
func (d *Directory) Entries() []Entry {
	return append([]Entry(nil), d.entries...)
}

// Exact matches a normalized input against names, then against codes.
func (d *Directory) Exact(norm string) (models.TickerIdentity, bool) {
	if i, ok := d.byName[norm]; ok {
		e := d.entries[i]
		return models.TickerIdentity{Code: e.Code, DisplayName: e.Name, Via: models.ResolveExact}, true
	}
	if name, ok := d.canonical[norm]; ok {
		return models.TickerIdentity{Code: norm, DisplayName: name, Via: models.ResolveExact}, true
	}
	return models.TickerIdentity{}, false
}

// Substring returns the first name, in registration order, that contains
// the normalized input. Short inputs match loosely: "台" hits the first
// name containing it.
func (d *Directory) Substring(norm string) (models.TickerIdentity, bool) {
	if norm == "" {
		return models.TickerIdentity{}, false
	}
	for i, key := range d.keys {
		if strings.Contains(key, norm) {
			e := d.entries[i]
			return models.TickerIdentity{Code: e.Code, DisplayName: e.Name, Via: models.ResolveSubstring}, true
		}
	}
	return models.TickerIdentity{}, false
}
