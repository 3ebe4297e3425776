// Package intern supplies Name: an opaque, O(1)-comparable, hashable
// handle for identifiers. The type checker never manipulates raw
// identifier text; it compares and hashes Names.
package intern

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Name is an interned identifier. Two Names obtained from the same
// Interner compare equal with == iff their (normalized) text is equal.
// The zero Name is invalid and compares unequal to every interned Name.
type Name struct {
	ref *string
}

// String returns the identifier text. Valid for interned Names only;
// the zero Name renders as the empty string.
func (n Name) String() string {
	if n.ref == nil {
		return ""
	}
	return *n.ref
}

// Valid reports whether the Name was produced by an Interner.
func (n Name) Valid() bool {
	return n.ref != nil
}

// Interner deduplicates identifier strings and hands out stable Names.
// Identifiers are NFC-normalized on intern so visually identical
// spellings compare equal. Safe for concurrent use: independent module
// checking passes may share one Interner.
type Interner struct {
	mu      sync.Mutex
	entries map[string]*string
}

// New creates an empty Interner.
func New() *Interner {
	return &Interner{entries: make(map[string]*string)}
}

// Intern returns the Name for s, creating it if needed.
func (i *Interner) Intern(s string) Name {
	s = norm.NFC.String(s)
	i.mu.Lock()
	defer i.mu.Unlock()
	if ref, ok := i.entries[s]; ok {
		return Name{ref: ref}
	}
	owned := s
	i.entries[s] = &owned
	return Name{ref: &owned}
}

// Len returns the number of unique identifiers interned.
func (i *Interner) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.entries)
}
