package types

import (
	"lunatype/pkg/intern"
)

// Evaluator reduces operator types (keyof, indexed access, mapped,
// conditional, template literals) to structural types. Operands that
// still mention unbound type parameters are left deferred; they
// evaluate again after substitution.
type Evaluator struct {
	compat *Compat
	names  *intern.Interner
}

// Eval evaluates t one operator at a time. The bool is false when the
// operator is misapplied, e.g. keyof on a number; the result is then
// Never.
func (e *Evaluator) Eval(t Type) (Type, bool) {
	switch tt := t.(type) {
	case *KeyofType:
		return e.evalKeyof(tt)
	case *IndexedAccessType:
		return e.evalIndexedAccess(tt)
	case *ConditionalType:
		return e.evalConditional(tt)
	case *MappedType:
		return e.evalMapped(tt)
	case *TemplateLiteralType:
		return e.evalTemplate(tt)
	}
	return t, true
}

func (e *Evaluator) evalKeyof(k *KeyofType) (Type, bool) {
	operand := e.compat.normalize(k.Operand)
	if containsTypeParam(operand) || unresolvedName(operand) {
		return k, true
	}
	switch ot := operand.(type) {
	case *TableType:
		members := make([]Type, 0, len(ot.Fields)+1)
		for _, f := range ot.Fields {
			members = append(members, NewStringLiteral(f.Name.String()))
		}
		if ot.Index != nil {
			members = append(members, ot.Index.Key)
		}
		return NewUnionType(members...), true
	case *ArrayType:
		return Integer, true
	case *TupleType:
		members := make([]Type, len(ot.Elements))
		for i := range ot.Elements {
			members[i] = NewIntegerLiteral(int64(i + 1))
		}
		return NewUnionType(members...), true
	case *UnionType:
		// Keys of a union are the keys common to every member.
		var common []Type
		for i, m := range ot.Types {
			keys, ok := e.evalKeyof(&KeyofType{Operand: m})
			if !ok {
				return Never, false
			}
			if i == 0 {
				common = unionMembers(keys)
				continue
			}
			next := common[:0]
			for _, k := range common {
				if memberOf(k, keys) {
					next = append(next, k)
				}
			}
			common = next
		}
		return NewUnionType(common...), true
	}
	return Never, false
}

func (e *Evaluator) evalIndexedAccess(ia *IndexedAccessType) (Type, bool) {
	obj := e.compat.normalize(ia.Object)
	idx := e.compat.normalize(ia.Index)
	if containsTypeParam(obj) || containsTypeParam(idx) || unresolvedName(obj) {
		return ia, true
	}

	if ou, ok := obj.(*UnionType); ok {
		members := make([]Type, 0, len(ou.Types))
		for _, m := range ou.Types {
			r, ok := e.evalIndexedAccess(&IndexedAccessType{Object: m, Index: idx})
			if !ok {
				return Never, false
			}
			members = append(members, r)
		}
		return NewUnionType(members...), true
	}
	if iu, ok := idx.(*UnionType); ok {
		members := make([]Type, 0, len(iu.Types))
		for _, m := range iu.Types {
			r, ok := e.evalIndexedAccess(&IndexedAccessType{Object: obj, Index: m})
			if !ok {
				return Never, false
			}
			members = append(members, r)
		}
		return NewUnionType(members...), true
	}

	switch ot := obj.(type) {
	case *TableType:
		if lit, ok := idx.(*LiteralType); ok && lit.Kind == StringLiteral {
			if f, ok := ot.FieldByName(e.names.Intern(lit.Str)); ok {
				return f.Type, true
			}
			if ot.Index != nil && e.compat.IsAssignable(lit, ot.Index.Key) {
				return ot.Index.Value, true
			}
			return Never, false
		}
		if ot.Index != nil && e.compat.IsAssignable(idx, ot.Index.Key) {
			return ot.Index.Value, true
		}
		if idx == String {
			members := make([]Type, 0, len(ot.Fields))
			for _, f := range ot.Fields {
				members = append(members, f.Type)
			}
			if len(members) > 0 {
				return NewUnionType(members...), true
			}
		}
		return Never, false
	case *ArrayType:
		if isIntegerIndex(idx) {
			return ot.Element, true
		}
		return Never, false
	case *TupleType:
		if lit, ok := idx.(*LiteralType); ok && lit.Kind == IntegerLiteral {
			// Sequences index from 1.
			n := int(lit.Int)
			if n >= 1 && n <= len(ot.Elements) {
				return ot.Elements[n-1], true
			}
			return Never, false
		}
		if isIntegerIndex(idx) {
			return NewUnionType(ot.Elements...), true
		}
		return Never, false
	}
	return Never, false
}

func isIntegerIndex(idx Type) bool {
	if idx == Integer || idx == Number {
		return true
	}
	lit, ok := idx.(*LiteralType)
	return ok && (lit.Kind == IntegerLiteral || lit.Kind == NumberLiteral)
}

func (e *Evaluator) evalConditional(ct *ConditionalType) (Type, bool) {
	check := e.compat.normalize(ct.Check)
	if containsTypeParam(check) || unresolvedName(check) {
		return ct, true
	}

	// Conditionals distribute over a union in check position.
	if cu, ok := check.(*UnionType); ok {
		members := make([]Type, 0, len(cu.Types))
		for _, m := range cu.Types {
			r, ok := e.evalConditional(&ConditionalType{
				Check: m, Extends: ct.Extends, True: ct.True, False: ct.False,
			})
			if !ok {
				return Never, false
			}
			members = append(members, r)
		}
		return NewUnionType(members...), true
	}

	bindings := make(map[*TypeParameter]Type)
	if e.matchExtends(check, ct.Extends, bindings) {
		result := Substitute(ct.True, bindings)
		return e.Eval(e.compat.normalize(result))
	}
	return e.Eval(e.compat.normalize(ct.False))
}

// matchExtends tests check against an extends pattern, binding infer
// parameters along the way. Wherever no structural rule applies it
// falls back to assignability.
func (e *Evaluator) matchExtends(check, pattern Type, bindings map[*TypeParameter]Type) bool {
	pattern = resolveShallow(pattern)
	check = resolveShallow(check)

	switch pt := pattern.(type) {
	case *InferType:
		if prev, ok := bindings[pt.Parameter]; ok {
			bindings[pt.Parameter] = NewUnionType(prev, check)
		} else {
			bindings[pt.Parameter] = check
		}
		if pt.Parameter.Constraint != nil {
			return e.compat.IsAssignable(check, pt.Parameter.Constraint)
		}
		return true
	case *ArrayType:
		if ca, ok := check.(*ArrayType); ok {
			return e.matchExtends(ca.Element, pt.Element, bindings)
		}
		if ctuple, ok := check.(*TupleType); ok {
			for _, el := range ctuple.Elements {
				if !e.matchExtends(el, pt.Element, bindings) {
					return false
				}
			}
			return true
		}
		return false
	case *TupleType:
		ctuple, ok := check.(*TupleType)
		if !ok || len(ctuple.Elements) != len(pt.Elements) {
			return false
		}
		for i := range pt.Elements {
			if !e.matchExtends(ctuple.Elements[i], pt.Elements[i], bindings) {
				return false
			}
		}
		return true
	case *FunctionType:
		cf, ok := check.(*FunctionType)
		if !ok {
			return false
		}
		// (...: infer P) captures the whole parameter list as a tuple.
		if len(pt.Params) == 0 && pt.RestType != nil {
			if inf, ok := pt.RestType.(*InferType); ok {
				elems := make([]Type, len(cf.Params))
				for i, p := range cf.Params {
					elems[i] = p.Type
				}
				bindings[inf.Parameter] = NewTupleType(elems...)
			} else if !e.matchExtends(restAsArray(cf), pt.RestType, bindings) {
				return false
			}
		} else {
			if len(pt.Params) > len(cf.Params) {
				return false
			}
			for i := range pt.Params {
				if !e.matchExtends(cf.Params[i].Type, pt.Params[i].Type, bindings) {
					return false
				}
			}
		}
		checkReturns := cf.Returns
		if len(checkReturns) == 0 {
			checkReturns = []Type{Void}
		}
		if len(pt.Returns) > len(checkReturns) {
			return false
		}
		for i := range pt.Returns {
			if !e.matchExtends(checkReturns[i], pt.Returns[i], bindings) {
				return false
			}
		}
		return true
	case *TableType:
		ctable, ok := check.(*TableType)
		if !ok {
			return false
		}
		for _, pf := range pt.Fields {
			cf, ok := ctable.FieldByName(pf.Name)
			if !ok {
				if pf.Optional {
					continue
				}
				return false
			}
			if !e.matchExtends(cf.Type, pf.Type, bindings) {
				return false
			}
		}
		return true
	case *UnionType:
		for _, m := range pt.Types {
			if e.matchExtends(check, m, bindings) {
				return true
			}
		}
		return false
	case *TemplateLiteralType:
		if lit, ok := check.(*LiteralType); ok && lit.Kind == StringLiteral {
			return pt.MatchesString(lit.Str)
		}
		return false
	}
	return e.compat.IsAssignable(check, pattern)
}

func restAsArray(f *FunctionType) Type {
	if f.RestType == nil {
		return NewTupleType()
	}
	return NewArrayType(f.RestType)
}

func resolveShallow(t Type) Type {
	for i := 0; i < 64; i++ {
		switch tt := t.(type) {
		case *AliasType:
			if tt.Resolved == nil {
				return tt
			}
			t = tt.Resolved
		case *InstantiatedType:
			t = tt.Substituted()
		default:
			return t
		}
	}
	return t
}

func (e *Evaluator) evalMapped(m *MappedType) (Type, bool) {
	constraint, ok := e.Eval(e.compat.normalize(m.Constraint))
	if !ok {
		return Never, false
	}
	if containsTypeParam(constraint) || unresolvedName(constraint) {
		return m, true
	}

	// The source table, when the body is the homomorphic T[P] shape,
	// supplies per-field optional and readonly flags to inherit.
	var homomorphic *TableType
	if ia, ok := m.Value.(*IndexedAccessType); ok {
		if p, ok := ia.Index.(*TypeParameterType); ok && p.Parameter == m.TypeParameter {
			if src, ok := e.compat.normalize(ia.Object).(*TableType); ok {
				homomorphic = src
			}
		}
	}

	out := NewTableType()
	for _, key := range unionMembers(constraint) {
		lit, isLit := key.(*LiteralType)
		if !isLit || lit.Kind != StringLiteral {
			// Non-string-literal key, e.g. Record<string | integer, V>:
			// keys accumulate into one index signature.
			value := Substitute(m.Value, map[*TypeParameter]Type{m.TypeParameter: key})
			value = e.compat.normalize(value)
			if out.Index == nil {
				out.Index = &IndexSignature{Key: key, Value: value}
			} else {
				out.Index.Key = NewUnionType(out.Index.Key, key)
				out.Index.Value = NewUnionType(out.Index.Value, value)
			}
			continue
		}
		name := e.names.Intern(lit.Str)
		value := Substitute(m.Value, map[*TypeParameter]Type{m.TypeParameter: lit})
		value = e.compat.normalize(value)

		field := Field{Name: name, Type: value}
		if homomorphic != nil {
			if src, ok := homomorphic.FieldByName(name); ok {
				field.Optional = src.Optional
				field.Readonly = src.Readonly
			}
		}
		switch m.Optional {
		case ModifierAdd:
			field.Optional = true
		case ModifierRemove:
			field.Optional = false
		}
		switch m.Readonly {
		case ModifierAdd:
			field.Readonly = true
		case ModifierRemove:
			field.Readonly = false
		}
		out.Fields = append(out.Fields, field)
	}
	return out, true
}

// evalTemplate collapses a template whose every interpolation is a
// finite set of literals into the union of concrete strings. Anything
// open-ended, e.g. ${string}, stays a pattern.
func (e *Evaluator) evalTemplate(t *TemplateLiteralType) (Type, bool) {
	const maxExpansion = 64

	prefixes := []string{""}
	for _, p := range t.Parts {
		if p.Type == nil {
			for i := range prefixes {
				prefixes[i] += p.Text
			}
			continue
		}
		lits, ok := literalStrings(e.compat.normalize(p.Type))
		if !ok || len(prefixes)*len(lits) > maxExpansion {
			return t, true
		}
		next := make([]string, 0, len(prefixes)*len(lits))
		for _, pre := range prefixes {
			for _, l := range lits {
				next = append(next, pre+l)
			}
		}
		prefixes = next
	}

	members := make([]Type, len(prefixes))
	for i, s := range prefixes {
		members[i] = NewStringLiteral(s)
	}
	return NewUnionType(members...), true
}

func literalStrings(t Type) ([]string, bool) {
	switch tt := t.(type) {
	case *LiteralType:
		switch tt.Kind {
		case StringLiteral:
			return []string{tt.Str}, true
		case IntegerLiteral, NumberLiteral, BooleanLiteral:
			s := typeString(tt, nil)
			return []string{s}, true
		}
	case *UnionType:
		var out []string
		for _, m := range tt.Types {
			ls, ok := literalStrings(m)
			if !ok {
				return nil, false
			}
			out = append(out, ls...)
		}
		return out, true
	}
	return nil, false
}

func unionMembers(t Type) []Type {
	if u, ok := t.(*UnionType); ok {
		return append([]Type(nil), u.Types...)
	}
	if t == Never {
		return nil
	}
	return []Type{t}
}

func memberOf(t Type, in Type) bool {
	for _, m := range unionMembers(in) {
		if equalTypes(t, m, nil) {
			return true
		}
	}
	return false
}

// containsTypeParam reports whether t still mentions an unbound type
// parameter, meaning operator evaluation must wait for substitution.
func containsTypeParam(t Type) bool {
	return containsParam(t, make(map[Type]bool))
}

// unresolvedName reports a normalized operand that is still a forward
// reference: evaluation must wait for the declaration pass to finish.
func unresolvedName(t Type) bool {
	switch tt := t.(type) {
	case *AliasType:
		return tt.Resolved == nil
	case *TypeRef:
		return true
	}
	return false
}

func containsParam(t Type, seen map[Type]bool) bool {
	if t == nil || seen[t] {
		return false
	}
	seen[t] = true
	switch tt := t.(type) {
	case *TypeParameterType, *InferType:
		return true
	case *TableType:
		for _, f := range tt.Fields {
			if containsParam(f.Type, seen) {
				return true
			}
		}
		if tt.Index != nil {
			return containsParam(tt.Index.Key, seen) || containsParam(tt.Index.Value, seen)
		}
	case *ArrayType:
		return containsParam(tt.Element, seen)
	case *TupleType:
		for _, el := range tt.Elements {
			if containsParam(el, seen) {
				return true
			}
		}
	case *UnionType:
		for _, m := range tt.Types {
			if containsParam(m, seen) {
				return true
			}
		}
	case *IntersectionType:
		for _, m := range tt.Types {
			if containsParam(m, seen) {
				return true
			}
		}
	case *FunctionType:
		for _, p := range tt.Params {
			if containsParam(p.Type, seen) {
				return true
			}
		}
		if tt.RestType != nil && containsParam(tt.RestType, seen) {
			return true
		}
		for _, r := range tt.Returns {
			if containsParam(r, seen) {
				return true
			}
		}
	case *KeyofType:
		return containsParam(tt.Operand, seen)
	case *IndexedAccessType:
		return containsParam(tt.Object, seen) || containsParam(tt.Index, seen)
	case *ConditionalType:
		return containsParam(tt.Check, seen) || containsParam(tt.Extends, seen) ||
			containsParam(tt.True, seen) || containsParam(tt.False, seen)
	case *MappedType:
		return containsParam(tt.Constraint, seen)
	case *TemplateLiteralType:
		for _, p := range tt.Parts {
			if p.Type != nil && containsParam(p.Type, seen) {
				return true
			}
		}
	case *InstantiatedType:
		for _, a := range tt.TypeArguments {
			if containsParam(a, seen) {
				return true
			}
		}
	}
	return false
}
