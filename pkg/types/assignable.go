package types

import "lunatype/pkg/intern"

// Compat decides structural assignability. It carries a result cache
// that doubles as the coinductive hypothesis set: a table pair is
// entered into the cache as assignable before its fields are compared,
// so recursive types converge instead of looping.
//
// A Compat is not safe for concurrent use; each checking goroutine
// owns its own.
type Compat struct {
	cache map[typePair]bool
	eval  *Evaluator
}

// NewCompat builds an engine minting mapped-type keys through names.
// Callers share one interner across the whole check so field names
// stay pointer-comparable; a nil interner gets a private one.
func NewCompat(names *intern.Interner) *Compat {
	if names == nil {
		names = intern.New()
	}
	c := &Compat{cache: make(map[typePair]bool)}
	c.eval = &Evaluator{compat: c, names: names}
	return c
}

// Evaluator returns the operator-type evaluator sharing this cache.
func (c *Compat) Evaluator() *Evaluator { return c.eval }

// IsAssignable answers a one-off assignability question with a
// throwaway cache. Checking sessions should hold a Compat instead.
func IsAssignable(source, target Type) bool {
	return NewCompat(nil).IsAssignable(source, target)
}

// IsAssignable reports whether a value of type source can be used
// where target is expected.
func (c *Compat) IsAssignable(source, target Type) bool {
	if source == nil || target == nil {
		return false
	}
	source = c.normalize(source)
	target = c.normalize(target)

	if target == Unknown || source == Never {
		return true
	}
	if source == target {
		return true
	}
	if target == Never || source == Unknown {
		return false
	}

	pair := typePair{source, target}
	if v, ok := c.cache[pair]; ok {
		return v
	}
	result := c.assignable(source, target, pair)
	c.cache[pair] = result
	return result
}

func (c *Compat) assignable(source, target Type, pair typePair) bool {
	// A union source must fit the target member-wise.
	if su, ok := source.(*UnionType); ok {
		for _, m := range su.Types {
			if !c.IsAssignable(m, target) {
				return false
			}
		}
		return true
	}
	// A union target accepts any of its members.
	if tu, ok := target.(*UnionType); ok {
		for _, m := range tu.Types {
			if c.IsAssignable(source, m) {
				return true
			}
		}
		return false
	}
	// An intersection target needs every member satisfied.
	if ti, ok := target.(*IntersectionType); ok {
		for _, m := range ti.Types {
			if !c.IsAssignable(source, m) {
				return false
			}
		}
		return true
	}
	// An intersection source satisfies the target if any member does.
	if si, ok := source.(*IntersectionType); ok {
		for _, m := range si.Types {
			if c.IsAssignable(m, target) {
				return true
			}
		}
		return false
	}

	// A bound type parameter stands for anything satisfying its
	// constraint, so it is assignable wherever the constraint is.
	if sp, ok := source.(*TypeParameterType); ok {
		if tp, ok := target.(*TypeParameterType); ok {
			return sp.Parameter == tp.Parameter
		}
		if sp.Parameter.Constraint != nil {
			return c.IsAssignable(sp.Parameter.Constraint, target)
		}
		return false
	}
	if _, ok := target.(*TypeParameterType); ok {
		return false
	}

	switch tt := target.(type) {
	case *Primitive:
		switch st := source.(type) {
		case *Primitive:
			// Integers fit wherever numbers do.
			return st == Integer && tt == Number
		case *LiteralType:
			base := st.Base()
			return base == tt || (base == Integer && tt == Number)
		case *TemplateLiteralType:
			// Every inhabitant of a template pattern is a string.
			return tt == String
		}
		return false
	case *LiteralType:
		st, ok := source.(*LiteralType)
		if !ok {
			return false
		}
		if equalTypes(st, tt, nil) {
			return true
		}
		// An integer literal doubles as the equal number literal.
		return st.Kind == IntegerLiteral && tt.Kind == NumberLiteral &&
			float64(st.Int) == tt.Num
	case *TemplateLiteralType:
		switch st := source.(type) {
		case *LiteralType:
			return st.Kind == StringLiteral && tt.MatchesString(st.Str)
		case *TemplateLiteralType:
			return equalTypes(st, tt, nil)
		}
		return false
	case *TableType:
		st, ok := source.(*TableType)
		if !ok {
			return false
		}
		// Assume the pair holds while comparing fields; recursive
		// references then terminate at this hypothesis.
		c.cache[pair] = true
		ok = c.tableAssignable(st, tt)
		if !ok {
			delete(c.cache, pair)
		}
		return ok
	case *ArrayType:
		switch st := source.(type) {
		case *ArrayType:
			c.cache[pair] = true
			ok := c.IsAssignable(st.Element, tt.Element)
			if !ok {
				delete(c.cache, pair)
			}
			return ok
		case *TupleType:
			for _, e := range st.Elements {
				if !c.IsAssignable(e, tt.Element) {
					return false
				}
			}
			return true
		}
		return false
	case *TupleType:
		st, ok := source.(*TupleType)
		if !ok || len(st.Elements) != len(tt.Elements) {
			return false
		}
		for i := range st.Elements {
			if !c.IsAssignable(st.Elements[i], tt.Elements[i]) {
				return false
			}
		}
		return true
	case *FunctionType:
		st, ok := source.(*FunctionType)
		if !ok {
			return false
		}
		c.cache[pair] = true
		ok = c.functionAssignable(st, tt)
		if !ok {
			delete(c.cache, pair)
		}
		return ok
	case *TypeRef:
		st, ok := source.(*TypeRef)
		return ok && st.Name == tt.Name
	}
	return equalTypes(source, target, nil)
}

// tableAssignable is width and depth subtyping: every target field
// must be present (or optional) and compatible, and an index
// signature on the target must cover the source's extra shape.
func (c *Compat) tableAssignable(source, target *TableType) bool {
	for _, tf := range target.Fields {
		sf, ok := source.FieldByName(tf.Name)
		if !ok {
			if tf.Optional {
				continue
			}
			return false
		}
		if sf.Optional && !tf.Optional {
			return false
		}
		if !c.IsAssignable(sf.Type, tf.Type) {
			return false
		}
	}
	if target.Index != nil {
		for _, sf := range source.Fields {
			if _, declared := target.FieldByName(sf.Name); declared {
				continue
			}
			if !c.IsAssignable(sf.Type, target.Index.Value) {
				return false
			}
		}
		if source.Index != nil {
			if !c.IsAssignable(source.Index.Key, target.Index.Key) {
				return false
			}
			if !c.IsAssignable(source.Index.Value, target.Index.Value) {
				return false
			}
		}
	}
	return true
}

// functionAssignable: parameters contravariant, returns covariant. A
// source taking fewer parameters is fine, it will ignore the extras.
func (c *Compat) functionAssignable(source, target *FunctionType) bool {
	for i, sp := range source.Params {
		var tp Type
		if i < len(target.Params) {
			tp = target.Params[i].Type
		} else if target.RestType != nil {
			tp = target.RestType
		} else if sp.Optional {
			continue
		} else {
			return false
		}
		if !c.IsAssignable(tp, sp.Type) {
			return false
		}
	}
	if source.RestType != nil && target.RestType != nil {
		if !c.IsAssignable(target.RestType, source.RestType) {
			return false
		}
	}
	if len(source.Returns) < len(target.Returns) {
		return false
	}
	for i := range target.Returns {
		if !c.IsAssignable(source.Returns[i], target.Returns[i]) {
			return false
		}
	}
	return true
}

// normalize peels named and deferred forms down to a structural type:
// aliases resolve, instantiations expand, operator types evaluate.
// The unwrap count bounds pathological alias cycles.
func (c *Compat) normalize(t Type) Type {
	for i := 0; i < 64; i++ {
		switch tt := t.(type) {
		case *AliasType:
			if tt.Resolved == nil {
				return tt
			}
			t = tt.Resolved
		case *InstantiatedType:
			t = tt.Substituted()
		case *KeyofType, *IndexedAccessType, *ConditionalType, *MappedType:
			evaluated, ok := c.eval.Eval(t)
			if !ok || evaluated == t {
				return t
			}
			t = evaluated
		case *TemplateLiteralType:
			evaluated, ok := c.eval.Eval(t)
			if ok && evaluated != t {
				return evaluated
			}
			return t
		case *UnionType:
			// Distribution can leave unevaluated operator types as
			// members; reduce those without peeling alias members.
			members := make([]Type, len(tt.Types))
			changed := false
			for i, m := range tt.Types {
				members[i] = m
				switch m.(type) {
				case *KeyofType, *IndexedAccessType, *ConditionalType, *MappedType, *InstantiatedType:
					members[i] = c.normalize(m)
					if members[i] != m {
						changed = true
					}
				}
			}
			if !changed {
				return tt
			}
			t = NewUnionType(members...)
		default:
			return t
		}
	}
	return t
}
