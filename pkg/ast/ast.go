package ast

import (
	"lunatype/pkg/diag"
	"lunatype/pkg/types"
)

// Node is the interface shared by every syntax node.
type Node interface {
	Pos() diag.Position
}

// Statement nodes appear in blocks and at chunk top level.
type Statement interface {
	Node
	statementNode()
}

// Expression nodes carry their checked type once the checker has
// visited them, so later passes and tooling can read it back.
type Expression interface {
	Node
	expressionNode()
	ComputedType() types.Type
	SetComputedType(types.Type)
}

// TypeExpr nodes are type annotations before resolution.
type TypeExpr interface {
	Node
	typeExprNode()
}

type base struct {
	Position diag.Position
}

func (b base) Pos() diag.Position { return b.Position }

type exprBase struct {
	base
	computed types.Type
}

func (e *exprBase) expressionNode() {}

func (e *exprBase) ComputedType() types.Type { return e.computed }

func (e *exprBase) SetComputedType(t types.Type) { e.computed = t }

// Chunk is one source file: a list of statements plus its exports.
type Chunk struct {
	base
	Name       string
	Statements []Statement
}

func NewChunk(name string, stmts []Statement) *Chunk {
	return &Chunk{Name: name, Statements: stmts}
}
