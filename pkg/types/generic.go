package types

import (
	"fmt"

	"lunatype/pkg/intern"
)

// TypeParameter declares a type variable with an optional constraint
// and default. Parameters compare by pointer identity; a substitution
// map is keyed on the parameter itself.
type TypeParameter struct {
	Name       intern.Name
	Constraint Type
	Default    Type
}

// TypeParameterType is the occurrence of a type parameter inside a
// generic body.
type TypeParameterType struct {
	Parameter *TypeParameter
}

func (t *TypeParameterType) String() string { return t.Parameter.Name.String() }

func (t *TypeParameterType) Equals(other Type) bool { return equalTypes(t, other, nil) }

func (t *TypeParameterType) typeNode() {}

// GenericType is a named, parameterized type: alias, interface or
// utility. Body mentions the parameters through TypeParameterType.
type GenericType struct {
	Name           intern.Name
	TypeParameters []*TypeParameter
	Body           Type
}

func (g *GenericType) String() string { return typeString(g, nil) }

func (g *GenericType) Equals(other Type) bool { return equalTypes(g, other, nil) }

func (g *GenericType) typeNode() {}

// InstantiatedType is a generic applied to arguments, kept unexpanded
// so recursive generics print by name and terminate.
type InstantiatedType struct {
	Generic       *GenericType
	TypeArguments []Type

	expanded Type
}

// Substituted expands the instantiation, memoizing the result.
func (i *InstantiatedType) Substituted() Type {
	if i.expanded == nil {
		sub := make(map[*TypeParameter]Type, len(i.Generic.TypeParameters))
		for idx, p := range i.Generic.TypeParameters {
			if idx < len(i.TypeArguments) {
				sub[p] = i.TypeArguments[idx]
			} else if p.Default != nil {
				sub[p] = Substitute(p.Default, sub)
			} else {
				sub[p] = Unknown
			}
		}
		i.expanded = Substitute(i.Generic.Body, sub)
	}
	return i.expanded
}

func (i *InstantiatedType) String() string { return typeString(i, nil) }

func (i *InstantiatedType) Equals(other Type) bool { return equalTypes(i, other, nil) }

func (i *InstantiatedType) typeNode() {}

// ArityError reports a generic applied to the wrong number of
// arguments.
type ArityError struct {
	Name intern.Name
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s expects %d type argument(s), got %d", e.Name, e.Want, e.Got)
}

// ConstraintError reports a type argument that does not satisfy its
// parameter's constraint.
type ConstraintError struct {
	Param    *TypeParameter
	Argument Type
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("type %s does not satisfy constraint %s of %s",
		e.Argument, e.Param.Constraint, e.Param.Name)
}

// Substitute rewrites every occurrence of a parameter in sub with its
// binding. Types containing no parameters are returned unchanged, so
// substitution shares unmodified subtrees.
func Substitute(t Type, sub map[*TypeParameter]Type) Type {
	if t == nil || len(sub) == 0 {
		return t
	}
	return substitute(t, sub, make(map[Type]Type))
}

func substitute(t Type, sub map[*TypeParameter]Type, seen map[Type]Type) Type {
	if done, ok := seen[t]; ok {
		return done
	}
	switch tt := t.(type) {
	case *TypeParameterType:
		if bound, ok := sub[tt.Parameter]; ok {
			return bound
		}
		return tt
	case *InferType:
		if bound, ok := sub[tt.Parameter]; ok {
			return bound
		}
		return tt
	case *TableType:
		out := &TableType{Fields: make([]Field, len(tt.Fields))}
		seen[t] = out
		changed := false
		for i, f := range tt.Fields {
			out.Fields[i] = f
			out.Fields[i].Type = substitute(f.Type, sub, seen)
			if out.Fields[i].Type != f.Type {
				changed = true
			}
		}
		if tt.Index != nil {
			out.Index = &IndexSignature{
				Key:   substitute(tt.Index.Key, sub, seen),
				Value: substitute(tt.Index.Value, sub, seen),
			}
			if out.Index.Key != tt.Index.Key || out.Index.Value != tt.Index.Value {
				changed = true
			}
		}
		if !changed {
			seen[t] = tt
			return tt
		}
		return out
	case *ArrayType:
		elem := substitute(tt.Element, sub, seen)
		if elem == tt.Element {
			return tt
		}
		return &ArrayType{Element: elem}
	case *TupleType:
		elems, changed := substituteSlice(tt.Elements, sub, seen)
		if !changed {
			return tt
		}
		return &TupleType{Elements: elems}
	case *UnionType:
		members, changed := substituteSlice(tt.Types, sub, seen)
		if !changed {
			return tt
		}
		return NewUnionType(members...)
	case *IntersectionType:
		members, changed := substituteSlice(tt.Types, sub, seen)
		if !changed {
			return tt
		}
		return NewIntersectionType(members...)
	case *FunctionType:
		out := &FunctionType{
			TypeParams: tt.TypeParams,
			Params:     make([]Param, len(tt.Params)),
		}
		seen[t] = out
		changed := false
		for i, p := range tt.Params {
			out.Params[i] = p
			out.Params[i].Type = substitute(p.Type, sub, seen)
			if out.Params[i].Type != p.Type {
				changed = true
			}
		}
		if tt.RestType != nil {
			out.RestType = substitute(tt.RestType, sub, seen)
			changed = changed || out.RestType != tt.RestType
		}
		out.Returns = make([]Type, len(tt.Returns))
		for i, r := range tt.Returns {
			out.Returns[i] = substitute(r, sub, seen)
			if out.Returns[i] != r {
				changed = true
			}
		}
		out.Predicate = tt.Predicate
		if tt.Predicate != nil {
			pt := substitute(tt.Predicate.Type, sub, seen)
			if pt != tt.Predicate.Type {
				out.Predicate = &TypePredicate{Param: tt.Predicate.Param, Type: pt, Asserts: tt.Predicate.Asserts}
				changed = true
			}
		}
		if !changed {
			seen[t] = tt
			return tt
		}
		return out
	case *InstantiatedType:
		args, changed := substituteSlice(tt.TypeArguments, sub, seen)
		if !changed {
			return tt
		}
		return &InstantiatedType{Generic: tt.Generic, TypeArguments: args}
	case *AliasType:
		return tt
	case *KeyofType:
		operand := substitute(tt.Operand, sub, seen)
		if operand == tt.Operand {
			return tt
		}
		return &KeyofType{Operand: operand}
	case *IndexedAccessType:
		obj := substitute(tt.Object, sub, seen)
		idx := substitute(tt.Index, sub, seen)
		if obj == tt.Object && idx == tt.Index {
			return tt
		}
		return &IndexedAccessType{Object: obj, Index: idx}
	case *ConditionalType:
		// A naked type parameter in check position distributes: the
		// conditional applies per member of a union argument, with
		// the member bound in both branches.
		if p, ok := tt.Check.(*TypeParameterType); ok {
			if rep, bound := sub[p.Parameter]; bound {
				if u, isUnion := rep.(*UnionType); isUnion {
					members := make([]Type, len(u.Types))
					for i, m := range u.Types {
						branch := make(map[*TypeParameter]Type, len(sub))
						for k, v := range sub {
							branch[k] = v
						}
						branch[p.Parameter] = m
						members[i] = Substitute(tt, branch)
					}
					return NewUnionType(members...)
				}
			}
		}
		check := substitute(tt.Check, sub, seen)
		extends := substitute(tt.Extends, sub, seen)
		tTrue := substitute(tt.True, sub, seen)
		tFalse := substitute(tt.False, sub, seen)
		if check == tt.Check && extends == tt.Extends && tTrue == tt.True && tFalse == tt.False {
			return tt
		}
		return &ConditionalType{Check: check, Extends: extends, True: tTrue, False: tFalse}
	case *MappedType:
		constraint := substitute(tt.Constraint, sub, seen)
		value := substitute(tt.Value, sub, seen)
		if constraint == tt.Constraint && value == tt.Value {
			return tt
		}
		return &MappedType{
			TypeParameter: tt.TypeParameter,
			Constraint:    constraint,
			Value:         value,
			Optional:      tt.Optional,
			Readonly:      tt.Readonly,
		}
	case *TemplateLiteralType:
		parts := make([]TemplatePart, len(tt.Parts))
		changed := false
		for i, p := range tt.Parts {
			parts[i] = p
			if p.Type != nil {
				parts[i].Type = substitute(p.Type, sub, seen)
				if parts[i].Type != p.Type {
					changed = true
				}
			}
		}
		if !changed {
			return tt
		}
		return &TemplateLiteralType{Parts: parts}
	default:
		return t
	}
}

func substituteSlice(ts []Type, sub map[*TypeParameter]Type, seen map[Type]Type) ([]Type, bool) {
	out := make([]Type, len(ts))
	changed := false
	for i, t := range ts {
		out[i] = substitute(t, sub, seen)
		if out[i] != t {
			changed = true
		}
	}
	return out, changed
}
