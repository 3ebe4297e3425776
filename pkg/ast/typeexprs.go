package ast

import "lunatype/pkg/intern"

type typeExprBase struct {
	base
}

func (t typeExprBase) typeExprNode() {}

// TypeName references a named type, optionally applied to arguments:
// Foo or Foo<A, B>.
type TypeName struct {
	typeExprBase
	Name intern.Name
	Args []TypeExpr
}

// UnionTypeExpr is A | B | C.
type UnionTypeExpr struct {
	typeExprBase
	Members []TypeExpr
}

// IntersectionTypeExpr is A & B.
type IntersectionTypeExpr struct {
	typeExprBase
	Members []TypeExpr
}

// NullableTypeExpr is the T? shorthand for T | nil.
type NullableTypeExpr struct {
	typeExprBase
	Inner TypeExpr
}

// TableTypeExpr is {name: T, [K]: V}.
type TableTypeExpr struct {
	typeExprBase
	Fields   []TableTypeField
	IndexKey TypeExpr // nil when no index signature
	IndexVal TypeExpr
}

// TableTypeField is one declared field of a table type.
type TableTypeField struct {
	Name     intern.Name
	Type     TypeExpr
	Optional bool
	Readonly bool
}

// ArrayTypeExpr is T[] or {T}.
type ArrayTypeExpr struct {
	typeExprBase
	Element TypeExpr
}

// TupleTypeExpr is [A, B, C].
type TupleTypeExpr struct {
	typeExprBase
	Elements []TypeExpr
}

// FunctionTypeExpr is (a: A, b: B) -> (R1, R2).
type FunctionTypeExpr struct {
	typeExprBase
	TypeParams []TypeParamDecl
	Params     []FunctionTypeParam
	Vararg     TypeExpr // element type of ..., nil when absent
	Returns    []TypeExpr
	Predicate  *PredicateDecl
}

// FunctionTypeParam is one parameter of a function type.
type FunctionTypeParam struct {
	Name     intern.Name
	Type     TypeExpr
	Optional bool
}

// LiteralTypeExpr is a literal used as a type: "tag", 42, true.
type LiteralTypeExpr struct {
	typeExprBase
	Value Expression // NilLiteral, BooleanLiteral, NumberLiteral or StringLiteral
}

// KeyofTypeExpr is keyof T.
type KeyofTypeExpr struct {
	typeExprBase
	Operand TypeExpr
}

// IndexedAccessTypeExpr is T[K].
type IndexedAccessTypeExpr struct {
	typeExprBase
	Object TypeExpr
	Index  TypeExpr
}

// ConditionalTypeExpr is C extends E ? T : F.
type ConditionalTypeExpr struct {
	typeExprBase
	Check   TypeExpr
	Extends TypeExpr
	True    TypeExpr
	False   TypeExpr
}

// InferTypeExpr is infer X inside an extends clause.
type InferTypeExpr struct {
	typeExprBase
	Name       intern.Name
	Constraint TypeExpr
}

// MappedTypeExpr is {[P in K]: V} with optional +/- modifiers.
// Optional and Readonly use -1, 0, +1 for removed, absent, added.
type MappedTypeExpr struct {
	typeExprBase
	Param      intern.Name
	Constraint TypeExpr
	Value      TypeExpr
	Optional   int
	Readonly   int
}

// TemplateTypePart is one segment of a template literal type.
type TemplateTypePart struct {
	Text string
	Type TypeExpr
}

// TemplateLiteralTypeExpr is `prefix${T}suffix`.
type TemplateLiteralTypeExpr struct {
	typeExprBase
	Parts []TemplateTypePart
}
