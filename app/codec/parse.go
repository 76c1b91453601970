package codec

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a trimmed decimal number. NaN and infinities are
// rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseBoolean maps the usual truthy and falsy words, in any case, to 1 and
// 0. Other input falls back to ParseNumber.
func ParseBoolean(s string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "y":
		return 1, true
	case "0", "false", "no", "off", "n":
		return 0, true
	}
	return ParseNumber(s)
}

// ParseRange parses "min:max", "min:" or ":max". A side that is empty or not
// a number is unbounded. ok is false when text has no colon or neither side
// is bounded.
func ParseRange(text string) (r Range, ok bool) {
	lo, hi, found := strings.Cut(text, ":")
	if !found {
		return Range{}, false
	}
	if v, ok := ParseNumber(lo); ok {
		r.Min = &v
	}
	if v, ok := ParseNumber(hi); ok {
		r.Max = &v
	}
	return r, r.Min != nil || r.Max != nil
}

// ParseOptionIDs splits a comma separated list of option ids. Blank and
// non-numeric entries are dropped; duplicates are kept once.
func ParseOptionIDs(text string) []uint {
	var ids []uint
	seen := make(map[uint]struct{})
	for _, part := range strings.Split(text, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || n == 0 || n > math.MaxUint32 {
			continue
		}
		id := uint(n)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
