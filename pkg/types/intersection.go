package types

import "sort"

// IntersectionType holds the operands of an intersection in canonical
// order.
type IntersectionType struct {
	Types []Type
}

// NewIntersectionType builds an intersection. Nested intersections are
// flattened and duplicates removed. Unknown is the identity and is
// dropped; a member of Never collapses the whole intersection to
// Never. Table operands are merged into a single table so the result
// can be used structurally.
func NewIntersectionType(members ...Type) Type {
	flat := make([]Type, 0, len(members))
	for _, m := range members {
		flat = appendIntersectionMember(flat, m)
	}

	var out []Type
	var tables []*TableType
	for _, m := range flat {
		if m == Unknown {
			continue
		}
		if m == Never {
			return Never
		}
		if tbl, ok := m.(*TableType); ok {
			tables = append(tables, tbl)
			continue
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
	if len(tables) == 1 {
		out = append(out, tables[0])
	} else if len(tables) > 1 {
		out = append(out, mergeTables(tables))
	}

	switch len(out) {
	case 0:
		return Unknown
	case 1:
		return out[0]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return &IntersectionType{Types: out}
}

func appendIntersectionMember(dst []Type, m Type) []Type {
	if m == nil {
		return dst
	}
	if i, ok := m.(*IntersectionType); ok {
		for _, inner := range i.Types {
			dst = appendIntersectionMember(dst, inner)
		}
		return dst
	}
	return append(dst, m)
}

// mergeTables folds several table operands into one. A field named in
// more than one operand keeps the first declaration; the result is
// optional only when every operand declaring it is optional.
func mergeTables(tables []*TableType) *TableType {
	merged := NewTableType()
	for _, tbl := range tables {
		for _, f := range tbl.Fields {
			if existing, ok := merged.FieldByName(f.Name); ok {
				if !f.Optional {
					existing.Optional = false
				}
				continue
			}
			merged.Fields = append(merged.Fields, f)
		}
		if merged.Index == nil && tbl.Index != nil {
			merged.Index = tbl.Index
		}
	}
	return merged
}

func (i *IntersectionType) String() string { return typeString(i, nil) }

func (i *IntersectionType) Equals(other Type) bool { return equalTypes(i, other, nil) }

func (i *IntersectionType) typeNode() {}
