package ast

import "lunatype/pkg/intern"

// Identifier is a name reference.
type Identifier struct {
	exprBase
	Name intern.Name
}

// NilLiteral is the nil constant.
type NilLiteral struct {
	exprBase
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	exprBase
	Value bool
}

// NumberLiteral is a numeric constant. IsInt distinguishes integer
// literals from floats so they can keep the integer type.
type NumberLiteral struct {
	exprBase
	Value float64
	Int   int64
	IsInt bool
}

// StringLiteral is a string constant.
type StringLiteral struct {
	exprBase
	Value string
}

// VarargExpression is `...` inside a variadic function.
type VarargExpression struct {
	exprBase
}

// TableField is one entry of a table constructor: Key nil means a
// positional (array part) entry; NameKey set means ident = value.
type TableField struct {
	NameKey intern.Name
	Key     Expression
	Value   Expression
}

// TableLiteral is a table constructor.
type TableLiteral struct {
	exprBase
	Fields []TableField
}

// FunctionLiteral is an anonymous function, also the body carrier for
// FunctionDeclaration.
type FunctionLiteral struct {
	exprBase
	TypeParams []TypeParamDecl
	Params     []FunctionParam
	IsVariadic bool
	VarargType TypeExpr // annotation for ..., may be nil
	ReturnType []TypeExpr
	Predicate  *PredicateDecl
	Body       *BlockStatement
}

// FunctionParam is one declared parameter.
type FunctionParam struct {
	Name       intern.Name
	Annotation TypeExpr // nil means inferred or implicit
	Optional   bool
}

// PredicateDecl annotates a boolean function as a type guard:
// `x is T`, or with Asserts set, `asserts x is T`.
type PredicateDecl struct {
	Param   intern.Name
	Type    TypeExpr
	Asserts bool
}

// CallExpression is f(args) with optional explicit type arguments.
type CallExpression struct {
	exprBase
	Callee   Expression
	TypeArgs []TypeExpr
	Args     []Expression
}

/// MethodCallExpression is obj:m(args), passing obj as self.
type MethodCallExpression struct {
	exprBase
	Receiver Expression
	Method   intern.Name
	Args     []Expression
}

// IndexExpression is obj[key].
type IndexExpression struct {
	exprBase
	Object Expression
	Index  Expression
}

// FieldExpression is obj.name.
type FieldExpression struct {
	exprBase
	Object Expression
	Name   intern.Name
}

// BinaryExpression covers arithmetic, comparison, concatenation and
// the logical operators and/or.
type BinaryExpression struct {
	exprBase
	Operator string
	Left     Expression
	Right    Expression
}

// UnaryExpression is -, not or #.
type UnaryExpression struct {
	exprBase
	Operator string
	Operand  Expression
}

// CastExpression asserts a value's type: expr as T. The cast is
// checked to overlap the expression's type.
type CastExpression struct {
	exprBase
	Value  Expression
	Target TypeExpr
}
