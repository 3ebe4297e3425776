package checker

import (
	"lunatype/pkg/ast"
	"lunatype/pkg/diag"
	"lunatype/pkg/intern"
	"lunatype/pkg/types"
)

// fact is one narrowing derived from a condition: within the branch,
// name has type narrowed.
type fact struct {
	name     intern.Name
	narrowed types.Type
}

func (c *Checker) applyNarrowings(facts []fact) {
	for _, f := range facts {
		c.env.SetNarrowed(f.name, f.narrowed)
	}
}

// narrowingsFor extracts what a condition proves about identifiers
// when it evaluates to the given branch. Unrecognized shapes prove
// nothing.
func (c *Checker) narrowingsFor(cond ast.Expression, branch bool) []fact {
	switch e := cond.(type) {
	case *ast.Identifier:
		current, ok := c.env.TypeOf(e.Name)
		if !ok {
			return nil
		}
		if branch {
			return []fact{{e.Name, c.truthyPart(current)}}
		}
		return []fact{{e.Name, c.falsyPart(current)}}
	case *ast.UnaryExpression:
		if e.Operator == "not" {
			return c.narrowingsFor(e.Operand, !branch)
		}
	case *ast.BinaryExpression:
		switch e.Operator {
		case "and":
			if branch {
				return append(c.narrowingsFor(e.Left, true), c.narrowingsFor(e.Right, true)...)
			}
		case "or":
			if !branch {
				return append(c.narrowingsFor(e.Left, false), c.narrowingsFor(e.Right, false)...)
			}
		case "==":
			return c.equalityNarrowings(e.Left, e.Right, branch)
		case "~=":
			return c.equalityNarrowings(e.Left, e.Right, !branch)
		}
	case *ast.CallExpression:
		return c.predicateNarrowings(e, branch)
	}
	return nil
}

// equalityNarrowings handles the == guard family, with positive
// meaning the comparison held.
func (c *Checker) equalityNarrowings(left, right ast.Expression, positive bool) []fact {
	// Normalize literal-first comparisons.
	if isLiteralExpr(left) && !isLiteralExpr(right) {
		left, right = right, left
	}

	// type(x) == "tag"
	if call, ok := left.(*ast.CallExpression); ok {
		if lit, ok := right.(*ast.StringLiteral); ok {
			if f := c.typeofNarrowing(call, lit.Value, positive); f != nil {
				return f
			}
		}
	}

	switch lhs := left.(type) {
	case *ast.Identifier:
		current, ok := c.env.TypeOf(lhs.Name)
		if !ok {
			return nil
		}
		if lit := literalTypeOfExpr(right); lit != nil {
			if positive {
				return []fact{{lhs.Name, c.narrowTo(current, lit)}}
			}
			return []fact{{lhs.Name, c.narrowOut(current, lit)}}
		}
	case *ast.FieldExpression:
		// x.tag == "a": discriminated union narrowing on x.
		ident, ok := lhs.Object.(*ast.Identifier)
		if !ok {
			return nil
		}
		lit := literalTypeOfExpr(right)
		if lit == nil {
			return nil
		}
		current, ok := c.env.TypeOf(ident.Name)
		if !ok {
			return nil
		}
		narrowed := c.narrowByDiscriminant(current, lhs.Name, lit, positive)
		if narrowed == nil {
			return nil
		}
		return []fact{{ident.Name, narrowed}}
	}
	return nil
}

// typeofNarrowing handles type(x) == "tag".
func (c *Checker) typeofNarrowing(call *ast.CallExpression, tag string, positive bool) []fact {
	callee, ok := call.Callee.(*ast.Identifier)
	if !ok || callee.Name.String() != "type" || len(call.Args) != 1 {
		return nil
	}
	arg, ok := call.Args[0].(*ast.Identifier)
	if !ok {
		return nil
	}
	current, ok := c.env.TypeOf(arg.Name)
	if !ok {
		return nil
	}
	if positive {
		return []fact{{arg.Name, c.narrowToTag(current, tag)}}
	}
	return []fact{{arg.Name, c.narrowOutTag(current, tag)}}
}

// predicateNarrowings handles calls to `x is T` guard functions used
// directly as conditions.
func (c *Checker) predicateNarrowings(call *ast.CallExpression, branch bool) []fact {
	fn, ok := c.compatNormalizedFunction(call.Callee.ComputedType())
	if !ok || fn.Predicate == nil || fn.Predicate.Asserts {
		return nil
	}
	argIndex := -1
	for i, p := range fn.Params {
		if p.Name == fn.Predicate.Param {
			argIndex = i
			break
		}
	}
	if argIndex < 0 || argIndex >= len(call.Args) {
		return nil
	}
	ident, ok := call.Args[argIndex].(*ast.Identifier)
	if !ok {
		return nil
	}
	current, ok := c.env.TypeOf(ident.Name)
	if !ok {
		return nil
	}
	if branch {
		return []fact{{ident.Name, c.narrowTo(current, fn.Predicate.Type)}}
	}
	return []fact{{ident.Name, c.narrowOut(current, fn.Predicate.Type)}}
}

// narrowTo restricts current to the part compatible with target.
func (c *Checker) narrowTo(current, target types.Type) types.Type {
	structural := c.structuralOf(current)
	if u, ok := structural.(*types.UnionType); ok {
		var kept []types.Type
		for _, m := range u.Types {
			if c.compat.IsAssignable(m, target) || c.compat.IsAssignable(target, m) {
				kept = append(kept, m)
			}
		}
		if len(kept) > 0 {
			return types.NewUnionType(kept...)
		}
		return types.Never
	}
	if structural == types.Unknown {
		return target
	}
	if c.compat.IsAssignable(target, structural) {
		return target
	}
	if c.compat.IsAssignable(structural, target) {
		return current
	}
	return types.Never
}

// narrowOut removes the part of current compatible with target.
func (c *Checker) narrowOut(current, target types.Type) types.Type {
	structural := c.structuralOf(current)
	if u, ok := structural.(*types.UnionType); ok {
		var kept []types.Type
		for _, m := range u.Types {
			if !c.compat.IsAssignable(m, target) {
				kept = append(kept, m)
			}
		}
		return types.NewUnionType(kept...)
	}
	if c.compat.IsAssignable(structural, target) {
		return types.Never
	}
	return current
}

func (c *Checker) narrowToTag(current types.Type, tag string) types.Type {
	structural := c.structuralOf(current)
	if u, ok := structural.(*types.UnionType); ok {
		var kept []types.Type
		for _, m := range u.Types {
			if c.matchesTag(m, tag) {
				kept = append(kept, m)
			}
		}
		if len(kept) > 0 {
			return types.NewUnionType(kept...)
		}
		return types.Never
	}
	if structural == types.Unknown {
		return tagType(tag)
	}
	if c.matchesTag(structural, tag) {
		return current
	}
	return types.Never
}

func (c *Checker) narrowOutTag(current types.Type, tag string) types.Type {
	structural := c.structuralOf(current)
	if u, ok := structural.(*types.UnionType); ok {
		var kept []types.Type
		for _, m := range u.Types {
			if !c.matchesTag(m, tag) {
				kept = append(kept, m)
			}
		}
		return types.NewUnionType(kept...)
	}
	if c.matchesTag(structural, tag) {
		return types.Never
	}
	return current
}

// matchesTag reports whether a value of type t can make type() return
// the given tag.
func (c *Checker) matchesTag(t types.Type, tag string) bool {
	switch tt := c.structuralOf(t).(type) {
	case *types.Primitive:
		switch tt {
		case types.Nil:
			return tag == "nil"
		case types.Boolean:
			return tag == "boolean"
		case types.Number, types.Integer:
			return tag == "number"
		case types.String:
			return tag == "string"
		case types.Unknown:
			return true
		}
		return false
	case *types.LiteralType:
		switch tt.Kind {
		case types.BooleanLiteral:
			return tag == "boolean"
		case types.NumberLiteral, types.IntegerLiteral:
			return tag == "number"
		case types.StringLiteral:
			return tag == "string"
		}
	case *types.TableType, *types.ArrayType, *types.TupleType:
		return tag == "table"
	case *types.FunctionType:
		return tag == "function"
	case *types.TemplateLiteralType:
		return tag == "string"
	}
	return false
}

// tagType is the broadest type producing a given type() result.
func tagType(tag string) types.Type {
	switch tag {
	case "nil":
		return types.Nil
	case "boolean":
		return types.Boolean
	case "number":
		return types.NewUnionType(types.Number, types.Integer)
	case "string":
		return types.String
	case "table":
		return types.NewTableType().WithIndex(types.Unknown, types.Unknown)
	case "function":
		return &types.FunctionType{RestType: types.Unknown, Returns: []types.Type{types.Unknown}}
	}
	return types.Unknown
}

// narrowByDiscriminant filters a union of tables by a literal field,
// the x.tag == "a" idiom.
func (c *Checker) narrowByDiscriminant(current types.Type, field intern.Name, lit types.Type, positive bool) types.Type {
	u, ok := c.structuralOf(current).(*types.UnionType)
	if !ok {
		return nil
	}
	var kept []types.Type
	for _, m := range u.Types {
		f, hasField := c.tableField(m, field)
		var matches bool
		switch {
		case !hasField:
			// An absent field reads as nil.
			matches = lit == types.Nil
		case f.Optional && lit == types.Nil:
			matches = true
		default:
			matches = c.compat.IsAssignable(lit, f.Type)
		}
		if matches == positive {
			kept = append(kept, m)
		}
	}
	if kept == nil {
		return types.Never
	}
	return types.NewUnionType(kept...)
}

func isLiteralExpr(e ast.Expression) bool {
	return literalTypeOfExpr(e) != nil
}

func literalTypeOfExpr(e ast.Expression) types.Type {
	switch lit := e.(type) {
	case *ast.NilLiteral:
		return types.Nil
	case *ast.BooleanLiteral:
		return types.NewBooleanLiteral(lit.Value)
	case *ast.NumberLiteral:
		if lit.IsInt {
			return types.NewIntegerLiteral(lit.Int)
		}
		return types.NewNumberLiteral(lit.Value)
	case *ast.StringLiteral:
		return types.NewStringLiteral(lit.Value)
	}
	return nil
}

// checkMatchStatement checks a match over a discriminant. Arms narrow
// the discriminant; a match over a finite type without a wildcard
// must cover every alternative.
func (c *Checker) checkMatchStatement(s *ast.MatchStatement) {
	discType := c.inferExpression(s.Discriminant)
	discIdent, _ := s.Discriminant.(*ast.Identifier)

	remaining := c.expandFinite(c.structuralOf(discType))
	hasWildcard := false
	var covered []types.Type

	for _, arm := range s.Arms {
		if arm.Pattern == nil {
			hasWildcard = true
			c.withScope(func() {
				if discIdent != nil {
					c.env.SetNarrowed(discIdent.Name, remaining)
				}
				c.checkBlockInPlace(arm.Body)
			})
			continue
		}
		patType := c.inferExpression(arm.Pattern)
		lit := literalTypeOfExpr(arm.Pattern)
		if lit == nil {
			c.errorf(arm.Pattern.Pos(), diag.TypeMismatch,
				"match patterns must be literal values")
		} else {
			if !c.comparable(discType, patType) {
				c.errorf(arm.Pattern.Pos(), diag.InvalidOperator,
					"pattern %s can never equal %s", patType, discType)
			}
			for _, prev := range covered {
				if prev.Equals(lit) {
					c.errorf(arm.Pattern.Pos(), diag.DuplicateDeclaration,
						"duplicate match pattern %s", lit)
				}
			}
			covered = append(covered, lit)
			remaining = c.narrowOut(remaining, lit)
		}
		c.withScope(func() {
			if discIdent != nil && lit != nil {
				c.env.SetNarrowed(discIdent.Name, c.narrowTo(discType, lit))
			}
			c.checkBlockInPlace(arm.Body)
		})
	}

	if hasWildcard {
		return
	}
	if remaining != types.Never {
		if c.isFinite(c.structuralOf(discType)) {
			c.errorf(s.Pos(), diag.IncompleteMatch,
				"match is not exhaustive: %s is not covered", remaining)
		} else {
			c.errorf(s.Pos(), diag.IncompleteMatch,
				"match over %s needs a wildcard arm", discType)
		}
	}
}

// expandFinite rewrites boolean as true | false so literal arms can
// exhaust it.
func (c *Checker) expandFinite(t types.Type) types.Type {
	if t == types.Boolean {
		return types.NewUnionType(types.NewBooleanLiteral(true), types.NewBooleanLiteral(false))
	}
	if u, ok := t.(*types.UnionType); ok {
		members := make([]types.Type, len(u.Types))
		for i, m := range u.Types {
			members[i] = c.expandFinite(c.structuralOf(m))
		}
		return types.NewUnionType(members...)
	}
	return t
}

// isFinite reports whether a type has finitely many values, making
// literal coverage of the whole type possible.
func (c *Checker) isFinite(t types.Type) bool {
	switch tt := t.(type) {
	case *types.LiteralType:
		return true
	case *types.Primitive:
		return tt == types.Boolean || tt == types.Nil
	case *types.UnionType:
		for _, m := range tt.Types {
			if !c.isFinite(c.structuralOf(m)) {
				return false
			}
		}
		return true
	}
	return false
}
