package types

import "lunatype/pkg/intern"

// Type is the interface implemented by every type in the system.
type Type interface {
	String() string
	Equals(other Type) bool
	typeNode()
}

// Primitive represents a built-in primitive type. Primitives are
// singletons and compare by pointer identity.
type Primitive struct {
	name string
}

var (
	Nil     = &Primitive{"nil"}
	Boolean = &Primitive{"boolean"}
	Number  = &Primitive{"number"}
	Integer = &Primitive{"integer"}
	String  = &Primitive{"string"}
	Unknown = &Primitive{"unknown"}
	Never   = &Primitive{"never"}
	Void    = &Primitive{"void"}
)

func (p *Primitive) String() string { return p.name }

func (p *Primitive) Equals(other Type) bool { return p == other }

func (p *Primitive) typeNode() {}

// LiteralKind discriminates the value carried by a LiteralType.
type LiteralKind int

const (
	BooleanLiteral LiteralKind = iota
	NumberLiteral
	IntegerLiteral
	StringLiteral
)

// LiteralType is a single-value type such as "hello", 42 or true.
type LiteralType struct {
	Kind LiteralKind
	Bool bool
	Num  float64
	Int  int64
	Str  string
}

func NewBooleanLiteral(v bool) *LiteralType {
	return &LiteralType{Kind: BooleanLiteral, Bool: v}
}

func NewNumberLiteral(v float64) *LiteralType {
	return &LiteralType{Kind: NumberLiteral, Num: v}
}

func NewIntegerLiteral(v int64) *LiteralType {
	return &LiteralType{Kind: IntegerLiteral, Int: v}
}

func NewStringLiteral(v string) *LiteralType {
	return &LiteralType{Kind: StringLiteral, Str: v}
}

// Base returns the primitive a literal widens to.
func (l *LiteralType) Base() *Primitive {
	switch l.Kind {
	case BooleanLiteral:
		return Boolean
	case NumberLiteral:
		return Number
	case IntegerLiteral:
		return Integer
	default:
		return String
	}
}

func (l *LiteralType) String() string { return typeString(l, nil) }

func (l *LiteralType) Equals(other Type) bool { return equalTypes(l, other, nil) }

func (l *LiteralType) typeNode() {}

// AliasType is a named reference to another type. Resolved may point
// back at a structure containing this alias, which is how recursive
// types are represented.
type AliasType struct {
	Name     intern.Name
	Resolved Type
}

func (a *AliasType) String() string { return a.Name.String() }

func (a *AliasType) Equals(other Type) bool { return equalTypes(a, other, nil) }

func (a *AliasType) typeNode() {}

// TypeRef is a name that never resolved to a declaration. It survives
// so that later comparisons against the same name still line up.
type TypeRef struct {
	Name intern.Name
}

func (r *TypeRef) String() string { return r.Name.String() }

func (r *TypeRef) Equals(other Type) bool { return equalTypes(r, other, nil) }

func (r *TypeRef) typeNode() {}
