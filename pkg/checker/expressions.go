package checker

import (
	"lunatype/pkg/ast"
	"lunatype/pkg/diag"
	"lunatype/pkg/intern"
	"lunatype/pkg/types"
)

// inferExpression types an expression bottom-up.
func (c *Checker) inferExpression(expr ast.Expression) types.Type {
	return c.checkExpression(expr, nil)
}

// checkExpression types an expression against an optional expected
// type. On mismatch it reports and returns the expected type, so one
// error does not fan out into the surrounding expression.
func (c *Checker) checkExpression(expr ast.Expression, expected types.Type) types.Type {
	if expr == nil {
		return types.Unknown
	}
	got := c.typeExpression(expr, expected)
	expr.SetComputedType(got)
	c.narrowed[expr.Pos()] = got

	if expected != nil && !c.compat.IsAssignable(got, expected) {
		c.mismatch(expr.Pos(), got, expected)
		expr.SetComputedType(expected)
		c.narrowed[expr.Pos()] = expected
		return expected
	}
	return got
}

func (c *Checker) typeExpression(expr ast.Expression, expected types.Type) types.Type {
	switch e := expr.(type) {
	case *ast.NilLiteral:
		return types.Nil
	case *ast.BooleanLiteral:
		return types.NewBooleanLiteral(e.Value)
	case *ast.NumberLiteral:
		if e.IsInt {
			return types.NewIntegerLiteral(e.Int)
		}
		return types.NewNumberLiteral(e.Value)
	case *ast.StringLiteral:
		return types.NewStringLiteral(e.Value)
	case *ast.Identifier:
		if t, ok := c.env.TypeOf(e.Name); ok {
			return t
		}
		c.errorf(e.Pos(), diag.UndefinedName, "undefined name %s", e.Name)
		return types.Unknown
	case *ast.VarargExpression:
		if c.fn != nil && c.fn.vararg != nil {
			return c.fn.vararg
		}
		c.errorf(e.Pos(), diag.InvalidOperator, "cannot use ... outside a variadic function")
		return types.Unknown
	case *ast.TableLiteral:
		return c.checkTableLiteral(e, expected)
	case *ast.FunctionLiteral:
		fnType := c.contextualSignature(e, expected)
		c.checkFunctionBody(e, fnType)
		return fnType
	case *ast.CallExpression:
		return c.checkCall(e)
	case *ast.MethodCallExpression:
		return c.checkMethodCall(e)
	case *ast.IndexExpression:
		obj := c.inferExpression(e.Object)
		idx := c.inferExpression(e.Index)
		result, ok := c.indexResult(obj, idx, e.Pos())
		if !ok {
			return types.Unknown
		}
		return result
	case *ast.FieldExpression:
		obj := c.inferExpression(e.Object)
		return c.fieldAccess(obj, e)
	case *ast.BinaryExpression:
		return c.checkBinary(e)
	case *ast.UnaryExpression:
		return c.checkUnary(e)
	case *ast.CastExpression:
		return c.checkCast(e)
	}
	c.internal(expr.Pos(), "unhandled expression %T", expr)
	return types.Unknown
}

// checkTableLiteral types a table constructor. With a table expected
// type, fields check against their declared types and stay
// contextual; without one, the literal's own shape is inferred. A
// constructor with only positional entries infers as a tuple.
func (c *Checker) checkTableLiteral(e *ast.TableLiteral, expected types.Type) types.Type {
	var want *types.TableType
	var wantArray *types.ArrayType
	var wantTuple *types.TupleType
	switch s := c.structuralOf(expected).(type) {
	case *types.TableType:
		want = s
	case *types.ArrayType:
		wantArray = s
	case *types.TupleType:
		wantTuple = s
	case *types.UnionType:
		// Against a union, type the literal toward the member its
		// shape and discriminants single out.
		want = c.selectUnionTable(s, e)
	}

	out := types.NewTableType()
	var positional []types.Type
	for _, f := range e.Fields {
		switch {
		case f.NameKey.Valid():
			var fieldExpected types.Type
			if want != nil {
				if wf, ok := want.FieldByName(f.NameKey); ok {
					fieldExpected = wf.Type
				}
			}
			t := c.checkExpression(f.Value, fieldExpected)
			if fieldExpected == nil {
				t = c.inferredFieldType(t)
			}
			if _, dup := out.FieldByName(f.NameKey); dup {
				c.errorf(f.Value.Pos(), diag.DuplicateDeclaration, "duplicate field %s", f.NameKey)
				continue
			}
			out.Fields = append(out.Fields, types.Field{Name: f.NameKey, Type: t})
		case f.Key != nil:
			keyType := c.inferExpression(f.Key)
			var valueExpected types.Type
			if want != nil && want.Index != nil && c.compat.IsAssignable(keyType, want.Index.Key) {
				valueExpected = want.Index.Value
			}
			valueType := c.checkExpression(f.Value, valueExpected)
			if out.Index == nil {
				out.Index = &types.IndexSignature{
					Key:   types.Widen(keyType),
					Value: types.Widen(valueType),
				}
			} else {
				out.Index.Key = types.Widen(types.NewUnionType(out.Index.Key, keyType))
				out.Index.Value = types.Widen(types.NewUnionType(out.Index.Value, valueType))
			}
		default:
			var elemExpected types.Type
			if wantArray != nil {
				elemExpected = wantArray.Element
			}
			if wantTuple != nil && len(positional) < len(wantTuple.Elements) {
				elemExpected = wantTuple.Elements[len(positional)]
			}
			positional = append(positional, c.checkExpression(f.Value, elemExpected))
		}
	}

	if len(positional) > 0 && len(out.Fields) == 0 && out.Index == nil {
		if wantArray != nil {
			return types.NewArrayType(wantArray.Element)
		}
		if wantTuple != nil {
			return types.NewTupleType(positional...)
		}
		// Without context a sequence constructor is an array of the
		// widened element union; an explicit nil element keeps nil in
		// that union.
		return types.NewArrayType(types.Widen(types.NewUnionType(positional...)))
	}
	if len(positional) > 0 {
		// Mixed constructor: fold the array part into an integer
		// index signature.
		elem := types.Widen(types.NewUnionType(positional...))
		if out.Index == nil {
			out.Index = &types.IndexSignature{Key: types.Integer, Value: elem}
		}
	}
	return out
}

// selectUnionTable picks the union member a table constructor is
// aiming at: every named field must exist on the member, and literal
// values must agree with literal-typed fields (the discriminants).
func (c *Checker) selectUnionTable(u *types.UnionType, e *ast.TableLiteral) *types.TableType {
	for _, m := range u.Types {
		tbl, ok := c.structuralOf(m).(*types.TableType)
		if !ok {
			continue
		}
		matches := true
		for _, f := range e.Fields {
			if !f.NameKey.Valid() {
				continue
			}
			mf, ok := tbl.FieldByName(f.NameKey)
			if !ok {
				if tbl.Index == nil {
					matches = false
					break
				}
				continue
			}
			want, isLit := c.structuralOf(mf.Type).(*types.LiteralType)
			got := literalTypeOfExpr(f.Value)
			if isLit && got != nil && !want.Equals(got) {
				matches = false
				break
			}
		}
		if matches {
			return tbl
		}
	}
	return nil
}

// inferredFieldType widens literal field values; mutable table fields
// behave like mutable bindings.
func (c *Checker) inferredFieldType(t types.Type) types.Type {
	return types.Widen(t)
}

// contextualSignature resolves a function literal's signature, taking
// unannotated parameter types from the expected function type when
// there is one.
func (c *Checker) contextualSignature(e *ast.FunctionLiteral, expected types.Type) *types.FunctionType {
	var want *types.FunctionType
	if fn, ok := c.structuralOf(expected).(*types.FunctionType); ok {
		want = fn
	}
	fnType := c.functionSignature(e)
	if want == nil {
		return fnType
	}
	for i := range fnType.Params {
		if i >= len(e.Params) || e.Params[i].Annotation != nil {
			continue
		}
		if i < len(want.Params) {
			fnType.Params[i].Type = want.Params[i].Type
		} else if want.RestType != nil {
			fnType.Params[i].Type = want.RestType
		}
	}
	if len(e.ReturnType) == 0 && len(want.Returns) > 0 {
		// Declared contextually; the body still checks against it.
		fnType.Returns = want.Returns
		e.ReturnType = nil
	}
	return fnType
}

// functionSignature resolves declared parameter and return types
// without checking the body.
func (c *Checker) functionSignature(e *ast.FunctionLiteral) *types.FunctionType {
	out := &types.FunctionType{}
	build := func() {
		for _, p := range e.Params {
			t := c.opts.ImplicitParamType
			if p.Annotation != nil {
				t = c.resolveTypeExpr(p.Annotation)
			}
			out.Params = append(out.Params, types.Param{
				Name: p.Name, Type: t, Optional: p.Optional,
			})
		}
		if e.IsVariadic {
			out.RestType = types.Unknown
			if e.VarargType != nil {
				out.RestType = c.resolveTypeExpr(e.VarargType)
			}
		}
		for _, r := range e.ReturnType {
			out.Returns = append(out.Returns, c.resolveTypeExpr(r))
		}
		if e.Predicate != nil {
			out.Predicate = &types.TypePredicate{
				Param:   e.Predicate.Param,
				Type:    c.resolveTypeExpr(e.Predicate.Type),
				Asserts: e.Predicate.Asserts,
			}
		}
	}
	if len(e.TypeParams) == 0 {
		build()
		return out
	}
	c.withScope(func() {
		out.TypeParams = c.declareTypeParams(e.TypeParams)
		build()
	})
	return out
}

// checkFunctionBody checks the body against the signature, inferring
// return types when none were declared. The signature's Returns slice
// is patched in place in that case.
func (c *Checker) checkFunctionBody(e *ast.FunctionLiteral, fnType *types.FunctionType) {
	prevFn := c.fn
	ctx := &functionContext{}
	if len(fnType.Returns) > 0 || len(e.ReturnType) > 0 {
		ctx.declared = fnType.Returns
	}
	if fnType.RestType != nil {
		ctx.vararg = fnType.RestType
	}
	c.fn = ctx

	c.withScope(func() {
		for _, p := range fnType.TypeParams {
			c.env.DefineTypeParameter(p)
		}
		for i, p := range e.Params {
			var t types.Type = types.Unknown
			if i < len(fnType.Params) {
				t = fnType.Params[i].Type
			}
			if p.Optional {
				t = types.NewUnionType(t, types.Nil)
			}
			c.env.Define(&SymbolInfo{
				Name: p.Name, Kind: SymbolParameter, Type: t, Declared: e.Pos(),
			})
		}
		if e.Body != nil {
			c.checkBlockInPlace(e.Body)
		}
	})

	if ctx.declared == nil && len(ctx.inferred) > 0 {
		fnType.Returns = mergeReturnLists(ctx.inferred)
	}
	if fnType.Predicate != nil && !fnType.Predicate.Asserts {
		c.validatePredicate(e, fnType)
	}
	c.fn = prevFn
}

// mergeReturnLists combines the return statements of a body into one
// signature: position-wise unions, padded with nil where some paths
// return fewer values.
func mergeReturnLists(lists [][]types.Type) []types.Type {
	width := 0
	for _, l := range lists {
		if len(l) > width {
			width = len(l)
		}
	}
	out := make([]types.Type, width)
	for i := 0; i < width; i++ {
		var members []types.Type
		for _, l := range lists {
			if i < len(l) {
				members = append(members, l[i])
			} else {
				members = append(members, types.Nil)
			}
		}
		out[i] = types.Widen(types.NewUnionType(members...))
	}
	return out
}

// validatePredicate checks that a `x is T` function actually narrows
// a parameter it declares and that T overlaps the parameter's type.
func (c *Checker) validatePredicate(e *ast.FunctionLiteral, fnType *types.FunctionType) {
	var paramType types.Type
	for _, p := range fnType.Params {
		if p.Name == fnType.Predicate.Param {
			paramType = p.Type
			break
		}
	}
	if paramType == nil {
		c.errorf(e.Pos(), diag.UndefinedName,
			"predicate names unknown parameter %s", fnType.Predicate.Param)
		return
	}
	if !c.compat.IsAssignable(fnType.Predicate.Type, paramType) && paramType != types.Unknown {
		c.errorf(e.Pos(), diag.TypeMismatch,
			"predicate type %s does not overlap parameter type %s",
			fnType.Predicate.Type, paramType)
	}
}

func (c *Checker) checkCast(e *ast.CastExpression) types.Type {
	valueType := c.inferExpression(e.Value)
	target := c.resolveTypeExpr(e.Target)
	// A cast must stay within the value's type family: one direction
	// of assignability has to hold.
	if !c.compat.IsAssignable(valueType, target) && !c.compat.IsAssignable(target, valueType) {
		c.errorf(e.Pos(), diag.TypeMismatch,
			"cannot cast %s to unrelated type %s", valueType, target)
	}
	return target
}

// structuralOf peels aliases and instantiations so callers can switch
// on shape.
func (c *Checker) structuralOf(t types.Type) types.Type {
	if t == nil {
		return nil
	}
	for i := 0; i < 64; i++ {
		switch tt := t.(type) {
		case *types.AliasType:
			if tt.Resolved == nil {
				return tt
			}
			t = tt.Resolved
		case *types.InstantiatedType:
			t = tt.Substituted()
		case *types.KeyofType, *types.IndexedAccessType, *types.ConditionalType, *types.MappedType:
			evaluated, ok := c.compat.Evaluator().Eval(t)
			if !ok || evaluated == t {
				return t
			}
			t = evaluated
		default:
			return t
		}
	}
	return t
}

// tableField finds a named field on a table-like type. Unions resolve
// to the field when every member has it.
func (c *Checker) tableField(obj types.Type, name intern.Name) (types.Field, bool) {
	switch ot := c.structuralOf(obj).(type) {
	case *types.TableType:
		if f, ok := ot.FieldByName(name); ok {
			return *f, true
		}
		if ot.Index != nil && c.compat.IsAssignable(types.NewStringLiteral(name.String()), ot.Index.Key) {
			return types.Field{Name: name, Type: ot.Index.Value}, true
		}
	case *types.UnionType:
		var members []types.Type
		found := false
		optional, readonly := false, false
		for _, m := range ot.Types {
			f, ok := c.tableField(m, name)
			if !ok {
				// An absent field reads as nil; only a union where no
				// member has the field is an error.
				members = append(members, types.Nil)
				continue
			}
			found = true
			members = append(members, f.Type)
			optional = optional || f.Optional
			readonly = readonly || f.Readonly
		}
		if !found {
			return types.Field{}, false
		}
		return types.Field{
			Name: name, Type: types.NewUnionType(members...),
			Optional: optional, Readonly: readonly,
		}, true
	case *types.IntersectionType:
		for _, m := range ot.Types {
			if f, ok := c.tableField(m, name); ok {
				return f, true
			}
		}
	}
	return types.Field{}, false
}

func (c *Checker) fieldAccess(obj types.Type, e *ast.FieldExpression) types.Type {
	structural := c.structuralOf(obj)
	if c.containsNil(structural) {
		c.errorf(e.Pos(), diag.TypeMismatch,
			"cannot index %s: value may be nil", obj)
	}
	f, ok := c.tableField(c.withoutNil(structural), e.Name)
	if !ok {
		c.errorf(e.Pos(), diag.UndefinedName, "type %s has no field %s", obj, e.Name)
		return types.Unknown
	}
	if f.Optional {
		return types.NewUnionType(f.Type, types.Nil)
	}
	return f.Type
}

func (c *Checker) containsNil(t types.Type) bool {
	if t == types.Nil {
		return true
	}
	if u, ok := t.(*types.UnionType); ok {
		for _, m := range u.Types {
			if m == types.Nil {
				return true
			}
		}
	}
	return false
}

func (c *Checker) withoutNil(t types.Type) types.Type {
	if u, ok := t.(*types.UnionType); ok {
		return u.Without(types.Nil)
	}
	if t == types.Nil {
		return types.Never
	}
	return t
}

// indexResult types obj[idx], for both reads and writes.
func (c *Checker) indexResult(obj, idx types.Type, pos diag.Position) (types.Type, bool) {
	structural := c.structuralOf(obj)
	if c.containsNil(structural) {
		c.errorf(pos, diag.TypeMismatch, "cannot index %s: value may be nil", obj)
		structural = c.withoutNil(structural)
	}
	switch ot := structural.(type) {
	case *types.TableType:
		if lit, ok := c.structuralOf(idx).(*types.LiteralType); ok && lit.Kind == types.StringLiteral {
			if f, ok := ot.FieldByName(c.names.Intern(lit.Str)); ok {
				if f.Optional {
					return types.NewUnionType(f.Type, types.Nil), true
				}
				return f.Type, true
			}
		}
		if ot.Index != nil {
			if !c.compat.IsAssignable(idx, ot.Index.Key) {
				c.mismatch(pos, idx, ot.Index.Key)
				return types.Unknown, false
			}
			return ot.Index.Value, true
		}
		c.errorf(pos, diag.UndefinedName, "type %s has no entry for index %s", obj, idx)
		return types.Unknown, false
	case *types.ArrayType:
		if !c.compat.IsAssignable(idx, types.Number) {
			c.mismatch(pos, idx, types.Integer)
			return types.Unknown, false
		}
		return ot.Element, true
	case *types.TupleType:
		if lit, ok := c.structuralOf(idx).(*types.LiteralType); ok && lit.Kind == types.IntegerLiteral {
			n := int(lit.Int)
			if n >= 1 && n <= len(ot.Elements) {
				return ot.Elements[n-1], true
			}
			c.errorf(pos, diag.TypeMismatch,
				"index %d out of range for %s", n, obj)
			return types.Unknown, false
		}
		if c.compat.IsAssignable(idx, types.Number) {
			return types.NewUnionType(ot.Elements...), true
		}
		c.mismatch(pos, idx, types.Integer)
		return types.Unknown, false
	case *types.UnionType:
		var members []types.Type
		for _, m := range ot.Types {
			r, ok := c.indexResult(m, idx, pos)
			if !ok {
				return types.Unknown, false
			}
			members = append(members, r)
		}
		return types.NewUnionType(members...), true
	}
	c.errorf(pos, diag.InvalidOperator, "type %s is not indexable", obj)
	return types.Unknown, false
}

func (c *Checker) compatNormalizedFunction(t types.Type) (*types.FunctionType, bool) {
	fn, ok := c.structuralOf(t).(*types.FunctionType)
	return fn, ok
}
