package types

import "sort"

// UnionType holds the alternatives of a union in canonical order.
type UnionType struct {
	Types []Type
}

// NewUnionType builds a union from the given members. Nested unions
// are flattened, duplicates removed and Never dropped. A union that
// collapses to one member returns that member directly; a union with
// no members is Never. A member of Unknown absorbs the whole union.
func NewUnionType(members ...Type) Type {
	flat := make([]Type, 0, len(members))
	for _, m := range members {
		flat = appendUnionMember(flat, m)
	}

	var out []Type
	for _, m := range flat {
		if m == Never {
			continue
		}
		if m == Unknown {
			return Unknown
		}
		dup := false
		for _, seen := range out {
			if equalTypes(m, seen, nil) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}

	switch len(out) {
	case 0:
		return Never
	case 1:
		return out[0]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return &UnionType{Types: out}
}

func appendUnionMember(dst []Type, m Type) []Type {
	if m == nil {
		return dst
	}
	if u, ok := m.(*UnionType); ok {
		for _, inner := range u.Types {
			dst = appendUnionMember(dst, inner)
		}
		return dst
	}
	return append(dst, m)
}

// Contains reports whether t is a member of the union, by structural
// equality.
func (u *UnionType) Contains(t Type) bool {
	for _, m := range u.Types {
		if equalTypes(m, t, nil) {
			return true
		}
	}
	return false
}

// Without returns the union with every member equal to t removed.
func (u *UnionType) Without(t Type) Type {
	kept := make([]Type, 0, len(u.Types))
	for _, m := range u.Types {
		if !equalTypes(m, t, nil) {
			kept = append(kept, m)
		}
	}
	return NewUnionType(kept...)
}

func (u *UnionType) String() string { return typeString(u, nil) }

func (u *UnionType) Equals(other Type) bool { return equalTypes(u, other, nil) }

func (u *UnionType) typeNode() {}
