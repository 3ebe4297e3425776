package types

// Widen maps a literal type to its base primitive. Other types pass
// through unchanged; unions widen member-wise.
func Widen(t Type) Type {
	switch tt := t.(type) {
	case *LiteralType:
		return tt.Base()
	case *UnionType:
		members := make([]Type, len(tt.Types))
		for i, m := range tt.Types {
			members[i] = Widen(m)
		}
		return NewUnionType(members...)
	}
	return t
}

// DeepWiden widens one level into tables, arrays and tuples, used
// when a mutable binding is initialized from a literal-rich value.
func DeepWiden(t Type) Type {
	switch tt := t.(type) {
	case *LiteralType, *UnionType:
		return Widen(t)
	case *TableType:
		out := &TableType{Fields: make([]Field, len(tt.Fields)), Index: tt.Index}
		for i, f := range tt.Fields {
			out.Fields[i] = f
			out.Fields[i].Type = Widen(f.Type)
		}
		return out
	case *ArrayType:
		return &ArrayType{Element: Widen(tt.Element)}
	case *TupleType:
		elems := make([]Type, len(tt.Elements))
		for i, e := range tt.Elements {
			elems[i] = Widen(e)
		}
		return &TupleType{Elements: elems}
	}
	return t
}
