package checker

import (
	"lunatype/pkg/ast"
	"lunatype/pkg/diag"
	"lunatype/pkg/types"
)

func (c *Checker) checkBinary(e *ast.BinaryExpression) types.Type {
	switch e.Operator {
	case "and":
		left := c.inferExpression(e.Left)
		var right types.Type
		c.withScope(func() {
			c.applyNarrowings(c.narrowingsFor(e.Left, true))
			right = c.inferExpression(e.Right)
		})
		// a and b yields b, or a's falsy part.
		return types.NewUnionType(c.falsyPart(left), right)
	case "or":
		left := c.inferExpression(e.Left)
		var right types.Type
		c.withScope(func() {
			c.applyNarrowings(c.narrowingsFor(e.Left, false))
			right = c.inferExpression(e.Right)
		})
		return types.NewUnionType(c.truthyPart(left), right)
	}

	left := c.inferExpression(e.Left)
	right := c.inferExpression(e.Right)

	switch e.Operator {
	case "+", "-", "*", "/", "%", "^", "//":
		return c.checkArithmetic(e, left, right)
	case "..":
		c.requireConcatOperand(e.Left, left)
		c.requireConcatOperand(e.Right, right)
		return types.String
	case "==", "~=":
		// Comparing types with no overlap is always a bug.
		if !c.comparable(left, right) {
			c.errorf(e.Pos(), diag.InvalidOperator,
				"types %s and %s never compare equal", left, right)
		}
		return types.Boolean
	case "<", "<=", ">", ">=":
		if !c.ordered(left, right) {
			c.errorf(e.Pos(), diag.InvalidOperator,
				"operator %s is not defined for %s and %s", e.Operator, left, right)
		}
		return types.Boolean
	}
	c.internal(e.Pos(), "unhandled binary operator %s", e.Operator)
	return types.Unknown
}

func (c *Checker) checkArithmetic(e *ast.BinaryExpression, left, right types.Type) types.Type {
	if !c.isNumeric(left) {
		c.errorf(e.Left.Pos(), diag.InvalidOperator,
			"operator %s requires numbers, got %s", e.Operator, left)
		return types.Number
	}
	if !c.isNumeric(right) {
		c.errorf(e.Right.Pos(), diag.InvalidOperator,
			"operator %s requires numbers, got %s", e.Operator, right)
		return types.Number
	}
	// Division always produces a float; floor division and the rest
	// stay integral when both sides are.
	if e.Operator == "/" || e.Operator == "^" {
		return types.Number
	}
	if c.isIntegerLike(left) && c.isIntegerLike(right) {
		return types.Integer
	}
	return types.Number
}

func (c *Checker) requireConcatOperand(expr ast.Expression, t types.Type) {
	if c.compat.IsAssignable(t, types.NewUnionType(types.String, types.Number)) {
		return
	}
	c.errorf(expr.Pos(), diag.InvalidOperator,
		"operator .. requires a string or number, got %s", t)
}

// comparable reports whether two types can ever be equal: their
// widened forms must overlap in at least one direction.
func (c *Checker) comparable(a, b types.Type) bool {
	if a == types.Unknown || b == types.Unknown {
		return true
	}
	wa, wb := types.Widen(c.structuralOf(a)), types.Widen(c.structuralOf(b))
	return c.compat.IsAssignable(wa, wb) || c.compat.IsAssignable(wb, wa) ||
		c.overlaps(wa, wb)
}

func (c *Checker) overlaps(a, b types.Type) bool {
	for _, ma := range unionList(a) {
		for _, mb := range unionList(b) {
			if c.compat.IsAssignable(ma, mb) || c.compat.IsAssignable(mb, ma) {
				return true
			}
		}
	}
	return false
}

func unionList(t types.Type) []types.Type {
	if u, ok := t.(*types.UnionType); ok {
		return u.Types
	}
	return []types.Type{t}
}

func (c *Checker) ordered(a, b types.Type) bool {
	numeric := c.isNumeric(a) && c.isNumeric(b)
	stringy := c.compat.IsAssignable(a, types.String) && c.compat.IsAssignable(b, types.String)
	return numeric || stringy
}

func (c *Checker) checkUnary(e *ast.UnaryExpression) types.Type {
	operand := c.inferExpression(e.Operand)
	switch e.Operator {
	case "-":
		if !c.isNumeric(operand) {
			c.errorf(e.Pos(), diag.InvalidOperator, "cannot negate %s", operand)
			return types.Number
		}
		if c.isIntegerLike(operand) {
			return types.Integer
		}
		return types.Number
	case "not":
		return types.Boolean
	case "#":
		switch c.structuralOf(operand).(type) {
		case *types.ArrayType, *types.TupleType, *types.TableType:
			return types.Integer
		}
		if c.compat.IsAssignable(operand, types.String) {
			return types.Integer
		}
		c.errorf(e.Pos(), diag.InvalidOperator, "operator # is not defined for %s", operand)
		return types.Integer
	}
	c.internal(e.Pos(), "unhandled unary operator %s", e.Operator)
	return types.Unknown
}

// truthyPart strips the values that test false from a type.
func (c *Checker) truthyPart(t types.Type) types.Type {
	switch tt := c.structuralOf(t).(type) {
	case *types.UnionType:
		var members []types.Type
		for _, m := range tt.Types {
			members = append(members, c.truthyPart(m))
		}
		return types.NewUnionType(members...)
	case *types.LiteralType:
		if tt.Kind == types.BooleanLiteral && !tt.Bool {
			return types.Never
		}
		return tt
	case *types.Primitive:
		switch tt {
		case types.Nil:
			return types.Never
		case types.Boolean:
			return types.NewBooleanLiteral(true)
		}
		return tt
	}
	return t
}

// falsyPart keeps only the values that test false.
func (c *Checker) falsyPart(t types.Type) types.Type {
	switch tt := c.structuralOf(t).(type) {
	case *types.UnionType:
		var members []types.Type
		for _, m := range tt.Types {
			members = append(members, c.falsyPart(m))
		}
		return types.NewUnionType(members...)
	case *types.LiteralType:
		if tt.Kind == types.BooleanLiteral && !tt.Bool {
			return tt
		}
		return types.Never
	case *types.Primitive:
		switch tt {
		case types.Nil:
			return types.Nil
		case types.Boolean:
			return types.NewBooleanLiteral(false)
		case types.Unknown:
			return types.NewUnionType(types.Nil, types.NewBooleanLiteral(false))
		}
		return types.Never
	}
	return types.Never
}
