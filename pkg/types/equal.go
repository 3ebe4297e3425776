package types

type typePair struct {
	a, b Type
}

// equalTypes is structural equality with cycle protection. A pair
// already under comparison is assumed equal, which makes equality
// coinductive: two recursive types that unfold the same way compare
// equal instead of diverging.
func equalTypes(a, b Type, seen map[typePair]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	if al, ok := a.(*AliasType); ok && al.Resolved != nil {
		return equalThrough(al.Resolved, b, seen, typePair{a, b})
	}
	if bl, ok := b.(*AliasType); ok && bl.Resolved != nil {
		return equalThrough(a, bl.Resolved, seen, typePair{a, b})
	}
	if ai, ok := a.(*InstantiatedType); ok {
		if bi, ok := b.(*InstantiatedType); ok && ai.Generic == bi.Generic {
			if len(ai.TypeArguments) == len(bi.TypeArguments) {
				same := true
				for i := range ai.TypeArguments {
					if !equalTypes(ai.TypeArguments[i], bi.TypeArguments[i], seen) {
						same = false
						break
					}
				}
				if same {
					return true
				}
			}
		}
		return equalThrough(ai.Substituted(), b, seen, typePair{a, b})
	}
	if bi, ok := b.(*InstantiatedType); ok {
		return equalThrough(a, bi.Substituted(), seen, typePair{a, b})
	}

	switch at := a.(type) {
	case *Primitive:
		return false // singletons already compared by identity
	case *LiteralType:
		bt, ok := b.(*LiteralType)
		if !ok || at.Kind != bt.Kind {
			return false
		}
		switch at.Kind {
		case BooleanLiteral:
			return at.Bool == bt.Bool
		case NumberLiteral:
			return at.Num == bt.Num
		case IntegerLiteral:
			return at.Int == bt.Int
		default:
			return at.Str == bt.Str
		}
	case *TypeRef:
		bt, ok := b.(*TypeRef)
		return ok && at.Name == bt.Name
	case *TypeParameterType:
		bt, ok := b.(*TypeParameterType)
		return ok && at.Parameter == bt.Parameter
	case *InferType:
		bt, ok := b.(*InferType)
		return ok && at.Parameter == bt.Parameter
	case *GenericType:
		bt, ok := b.(*GenericType)
		return ok && at == bt
	case *TableType:
		bt, ok := b.(*TableType)
		if !ok {
			return false
		}
		return withPair(a, b, seen, func(seen map[typePair]bool) bool {
			if len(at.Fields) != len(bt.Fields) {
				return false
			}
			for _, f := range at.Fields {
				g, ok := bt.FieldByName(f.Name)
				if !ok || g.Optional != f.Optional || g.Readonly != f.Readonly {
					return false
				}
				if !equalTypes(f.Type, g.Type, seen) {
					return false
				}
			}
			if (at.Index == nil) != (bt.Index == nil) {
				return false
			}
			if at.Index != nil {
				if !equalTypes(at.Index.Key, bt.Index.Key, seen) ||
					!equalTypes(at.Index.Value, bt.Index.Value, seen) {
					return false
				}
			}
			return true
		})
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		if !ok {
			return false
		}
		return withPair(a, b, seen, func(seen map[typePair]bool) bool {
			return equalTypes(at.Element, bt.Element, seen)
		})
	case *TupleType:
		bt, ok := b.(*TupleType)
		if !ok {
			return false
		}
		return withPair(a, b, seen, func(seen map[typePair]bool) bool {
			return equalSlices(at.Elements, bt.Elements, seen)
		})
	case *UnionType:
		bt, ok := b.(*UnionType)
		if !ok {
			return false
		}
		return withPair(a, b, seen, func(seen map[typePair]bool) bool {
			return equalSlices(at.Types, bt.Types, seen)
		})
	case *IntersectionType:
		bt, ok := b.(*IntersectionType)
		if !ok {
			return false
		}
		return withPair(a, b, seen, func(seen map[typePair]bool) bool {
			return equalSlices(at.Types, bt.Types, seen)
		})
	case *FunctionType:
		bt, ok := b.(*FunctionType)
		if !ok {
			return false
		}
		return withPair(a, b, seen, func(seen map[typePair]bool) bool {
			if len(at.Params) != len(bt.Params) || len(at.Returns) != len(bt.Returns) {
				return false
			}
			if (at.RestType == nil) != (bt.RestType == nil) {
				return false
			}
			for i := range at.Params {
				if at.Params[i].Optional != bt.Params[i].Optional {
					return false
				}
				if !equalTypes(at.Params[i].Type, bt.Params[i].Type, seen) {
					return false
				}
			}
			if at.RestType != nil && !equalTypes(at.RestType, bt.RestType, seen) {
				return false
			}
			for i := range at.Returns {
				if !equalTypes(at.Returns[i], bt.Returns[i], seen) {
					return false
				}
			}
			return true
		})
	case *KeyofType:
		bt, ok := b.(*KeyofType)
		return ok && equalTypes(at.Operand, bt.Operand, seen)
	case *IndexedAccessType:
		bt, ok := b.(*IndexedAccessType)
		return ok && equalTypes(at.Object, bt.Object, seen) && equalTypes(at.Index, bt.Index, seen)
	case *ConditionalType:
		bt, ok := b.(*ConditionalType)
		return ok &&
			equalTypes(at.Check, bt.Check, seen) &&
			equalTypes(at.Extends, bt.Extends, seen) &&
			equalTypes(at.True, bt.True, seen) &&
			equalTypes(at.False, bt.False, seen)
	case *MappedType:
		bt, ok := b.(*MappedType)
		return ok && at.Optional == bt.Optional && at.Readonly == bt.Readonly &&
			equalTypes(at.Constraint, bt.Constraint, seen) &&
			equalTypes(at.Value, bt.Value, seen)
	case *TemplateLiteralType:
		bt, ok := b.(*TemplateLiteralType)
		if !ok || len(at.Parts) != len(bt.Parts) {
			return false
		}
		for i := range at.Parts {
			if at.Parts[i].Text != bt.Parts[i].Text {
				return false
			}
			if !equalTypes(at.Parts[i].Type, bt.Parts[i].Type, seen) {
				return false
			}
		}
		return true
	}
	return false
}

func equalThrough(a, b Type, seen map[typePair]bool, pair typePair) bool {
	if seen == nil {
		seen = make(map[typePair]bool)
	}
	if seen[pair] {
		return true
	}
	seen[pair] = true
	return equalTypes(a, b, seen)
}

func withPair(a, b Type, seen map[typePair]bool, body func(map[typePair]bool) bool) bool {
	pair := typePair{a, b}
	if seen == nil {
		seen = make(map[typePair]bool)
	}
	if seen[pair] {
		return true
	}
	seen[pair] = true
	ok := body(seen)
	delete(seen, pair)
	return ok
}

func equalSlices(a, b []Type, seen map[typePair]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalTypes(a[i], b[i], seen) {
			return false
		}
	}
	return true
}
