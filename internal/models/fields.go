package models

import "strings"

// FieldSet is a set of field names matched both exactly and case-insensitively.
type FieldSet struct {
	exact  map[string]struct{}
	folded map[string]struct{}
}

// NewFieldSet builds a FieldSet from names.
func NewFieldSet(names ...string) FieldSet {
	s := FieldSet{
		exact:  make(map[string]struct{}, len(names)),
		folded: make(map[string]struct{}, len(names)),
	}

	for _, n := range names {
		s.exact[n] = struct{}{}
		s.folded[strings.ToLower(n)] = struct{}{}
	}

	return s
}

// Contains reports whether name is a member, either by exact match or by
// lower-cased comparison.
func (s FieldSet) Contains(name string) bool {
	if _, ok := s.exact[name]; ok {
		return true
	}

	_, ok := s.folded[strings.ToLower(name)]

	return ok
}

// Len returns the number of distinct names.
func (s FieldSet) Len() int {
	return len(s.exact)
}

// FieldAliases maps a canonical field name (e.g. "url") to the key a given
// record actually uses (e.g. "link").
type FieldAliases map[string]string

// Resolve returns the actual key for canonical, or canonical itself when no
// alias is configured.
func (a FieldAliases) Resolve(canonical string) string {
	if key, ok := a[canonical]; ok && key != "" {
		return key
	}

	return canonical
}

// CanonicalFor returns the canonical name whose alias is key. When several
// canonical names point at the same key the lexically smallest wins.
func (a FieldAliases) CanonicalFor(key string) (string, bool) {
	found := ""

	for canonical, actual := range a {
		if actual != key || canonical == key {
			continue
		}

		if found == "" || canonical < found {
			found = canonical
		}
	}

	return found, found != ""
}

// Merge returns a new alias map holding a's entries overlaid by other's.
func (a FieldAliases) Merge(other FieldAliases) FieldAliases {
	out := make(FieldAliases, len(a)+len(other))
	for k, v := range a {
		out[k] = v
	}

	for k, v := range other {
		out[k] = v
	}

	return out
}
