package parse

import (
	"strings"

	"sharekeeper/internal/shareinfo"
)

// TypeFilter selects share records by base type and special flag.
type TypeFilter struct {
	bases       map[shareinfo.ShareType]bool
	skipSpecial bool
}

// ParseTypeFilter parses a comma-separated --types value such as
// "disk,ipc" or "disk,-special". An empty list of base types matches every
// base type; "-special" drops administrative shares.
func ParseTypeFilter(s string) (*TypeFilter, error) {
	f := &TypeFilter{bases: map[shareinfo.ShareType]bool{}}
	for _, tok := range strings.Split(s, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		switch tok {
		case "", "all":
			continue
		case "-special", "nospecial", "no-special":
			f.skipSpecial = true
			continue
		}
		t, err := shareinfo.ParseBaseType(tok)
		if err != nil {
			return nil, err
		}
		f.bases[t] = true
	}
	return f, nil
}

// Match reports whether r passes the filter. A nil filter matches everything.
func (f *TypeFilter) Match(r shareinfo.ShareRecord) bool {
	if f == nil {
		return true
	}
	if f.skipSpecial && r.Type.IsSpecial() {
		return false
	}
	return len(f.bases) == 0 || f.bases[r.Type.Base()]
}

// Apply returns the records that pass the filter, preserving order.
func (f *TypeFilter) Apply(records []shareinfo.ShareRecord) []shareinfo.ShareRecord {
	out := make([]shareinfo.ShareRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
