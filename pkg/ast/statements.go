package ast

import (
	"lunatype/pkg/diag"
	"lunatype/pkg/intern"
)

// LocalStatement declares one or more local bindings:
// local x: number = 1 or local a, b = f(). IsConst marks <const>
// attributes; const bindings keep literal types and reject
// reassignment.
type LocalStatement struct {
	base
	Names       []intern.Name
	Annotations []TypeExpr // parallel to Names, entries may be nil
	Values      []Expression
	IsConst     bool
}

func (s *LocalStatement) statementNode() {}

// AssignStatement is a plain assignment to existing targets.
type AssignStatement struct {
	base
	Targets []Expression
	Values  []Expression
}

func (s *AssignStatement) statementNode() {}

// FunctionDeclaration is a named function statement. Exported
// declarations become part of the chunk's public surface.
type FunctionDeclaration struct {
	base
	Name     intern.Name
	Function *FunctionLiteral
	Exported bool
}

func (s *FunctionDeclaration) statementNode() {}

// ReturnStatement returns zero or more values.
type ReturnStatement struct {
	base
	Values []Expression
}

func (s *ReturnStatement) statementNode() {}

// IfStatement with optional elseif chain flattened into Else.
type IfStatement struct {
	base
	Condition Expression
	Then      *BlockStatement
	Else      Statement // *BlockStatement, *IfStatement or nil
}

func (s *IfStatement) statementNode() {}

// WhileStatement loops while the condition holds.
type WhileStatement struct {
	base
	Condition Expression
	Body      *BlockStatement
}

func (s *WhileStatement) statementNode() {}

// RepeatStatement runs the body at least once; the condition sees the
// body's scope.
type RepeatStatement struct {
	base
	Body      *BlockStatement
	Condition Expression
}

func (s *RepeatStatement) statementNode() {}

// NumericForStatement is for i = start, stop, step do.
type NumericForStatement struct {
	base
	Variable intern.Name
	Start    Expression
	Stop     Expression
	Step     Expression // nil means 1
	Body     *BlockStatement
}

func (s *NumericForStatement) statementNode() {}

// GenericForStatement is for k, v in expr do.
type GenericForStatement struct {
	base
	Names    []intern.Name
	Iterator Expression
	Body     *BlockStatement
}

func (s *GenericForStatement) statementNode() {}

// BlockStatement groups statements and opens a scope.
type BlockStatement struct {
	base
	Statements []Statement
}

func (s *BlockStatement) statementNode() {}

// TypeAliasStatement declares a (possibly generic) type alias.
type TypeAliasStatement struct {
	base
	Name       intern.Name
	TypeParams []TypeParamDecl
	Value      TypeExpr
	Exported   bool
}

func (s *TypeAliasStatement) statementNode() {}

// TypeParamDecl is one declared type parameter with optional
// constraint and default.
type TypeParamDecl struct {
	Name       intern.Name
	Constraint TypeExpr
	Default    TypeExpr
}

// InterfaceDeclaration declares a named table shape.
type InterfaceDeclaration struct {
	base
	Name       intern.Name
	TypeParams []TypeParamDecl
	Body       *TableTypeExpr
	Exported   bool
}

func (s *InterfaceDeclaration) statementNode() {}

// MatchStatement dispatches on the value of a discriminant. Arms test
// literal values; an arm with nil Pattern is the wildcard. Matching on
// a union of literals without a wildcard must cover every member.
type MatchStatement struct {
	base
	Discriminant Expression
	Arms         []MatchArm
}

// MatchArm is one pattern/body pair. Pattern nil is the wildcard arm.
type MatchArm struct {
	Position diag.Position
	Pattern  Expression
	Body     *BlockStatement
}

func (s *MatchStatement) statementNode() {}

// ExpressionStatement wraps an expression used for its effects,
// usually a call.
type ExpressionStatement struct {
	base
	Expression Expression
}

func (s *ExpressionStatement) statementNode() {}

// ExportStatement marks a binding as part of the chunk's public
// surface: export x.
type ExportStatement struct {
	base
	Name intern.Name
}

func (s *ExportStatement) statementNode() {}

// BreakStatement exits the innermost loop.
type BreakStatement struct {
	base
}

func (s *BreakStatement) statementNode() {}
