package checker

import (
	"lunatype/pkg/ast"
	"lunatype/pkg/diag"
	"lunatype/pkg/types"
)

// checkCall types a call expression: arity, argument compatibility,
// generic inference and predicate effects. The full return list is
// recorded so multi-assignments can spread it.
func (c *Checker) checkCall(e *ast.CallExpression) types.Type {
	if ident, ok := e.Callee.(*ast.Identifier); ok && ident.Name.String() == "require" {
		return c.checkRequire(e)
	}

	calleeType := c.inferExpression(e.Callee)
	fn, ok := c.compatNormalizedFunction(calleeType)
	if !ok {
		if calleeType != types.Unknown {
			c.errorf(e.Pos(), diag.InvalidOperator, "type %s is not callable", calleeType)
		}
		for _, arg := range e.Args {
			c.inferExpression(arg)
		}
		return types.Unknown
	}

	sig := fn
	if len(fn.TypeParams) > 0 {
		sig = c.instantiateSignature(e, fn)
	} else if len(e.TypeArgs) > 0 {
		c.errorf(e.Pos(), diag.WrongArity, "%s takes no type arguments", calleeType)
	}

	c.checkArguments(e, sig)

	// Any call may mutate captured bindings; narrowings on mutable
	// names no longer hold.
	c.env.InvalidateMutableNarrowings()

	if sig.Predicate != nil && sig.Predicate.Asserts {
		c.applyAssertion(e, sig)
	}
	if len(sig.Returns) > 1 {
		c.callReturns[e.Pos()] = sig.Returns
	}
	return sig.Return()
}

// instantiateSignature resolves a generic function's parameters for
// one call site, from explicit type arguments or by inference against
// the argument types.
func (c *Checker) instantiateSignature(e *ast.CallExpression, fn *types.FunctionType) *types.FunctionType {
	sub := make(map[*types.TypeParameter]types.Type, len(fn.TypeParams))

	if len(e.TypeArgs) > 0 {
		if len(e.TypeArgs) != len(fn.TypeParams) {
			c.errorf(e.Pos(), diag.WrongArity,
				"expected %d type argument(s), got %d", len(fn.TypeParams), len(e.TypeArgs))
		}
		for i, p := range fn.TypeParams {
			if i < len(e.TypeArgs) {
				sub[p] = c.resolveTypeExpr(e.TypeArgs[i])
			} else {
				sub[p] = types.Unknown
			}
		}
	} else {
		owned := make(map[*types.TypeParameter]bool, len(fn.TypeParams))
		for _, p := range fn.TypeParams {
			owned[p] = true
		}
		for i, arg := range e.Args {
			if i >= len(fn.Params) {
				break
			}
			argType := c.inferExpression(arg)
			c.collectConstraints(fn.Params[i].Type, argType, owned, sub)
		}
		for _, p := range fn.TypeParams {
			if _, bound := sub[p]; bound {
				continue
			}
			switch {
			case p.Default != nil:
				sub[p] = types.Substitute(p.Default, sub)
			case p.Constraint != nil:
				sub[p] = types.Substitute(p.Constraint, sub)
			default:
				sub[p] = types.Unknown
			}
		}
	}

	for _, p := range fn.TypeParams {
		if p.Constraint == nil {
			continue
		}
		constraint := types.Substitute(p.Constraint, sub)
		if !c.compat.IsAssignable(sub[p], constraint) {
			c.errorf(e.Pos(), diag.UnresolvedConstraint,
				"inferred type %s for %s does not satisfy constraint %s",
				sub[p], p.Name, constraint)
		}
	}

	out := types.Substitute(fn, sub).(*types.FunctionType)
	if out == fn {
		clone := *fn
		out = &clone
	}
	out.TypeParams = nil
	return out
}

// collectConstraints matches an argument type against a parameter
// pattern, accumulating bindings for the call's own type parameters.
// Repeated occurrences union their candidates.
func (c *Checker) collectConstraints(param, arg types.Type, owned map[*types.TypeParameter]bool, sub map[*types.TypeParameter]types.Type) {
	param = c.structuralOf(param)
	arg = c.structuralOf(arg)

	switch pt := param.(type) {
	case *types.TypeParameterType:
		if !owned[pt.Parameter] {
			return
		}
		if prev, ok := sub[pt.Parameter]; ok {
			sub[pt.Parameter] = types.NewUnionType(prev, arg)
		} else {
			sub[pt.Parameter] = arg
		}
	case *types.ArrayType:
		switch at := arg.(type) {
		case *types.ArrayType:
			c.collectConstraints(pt.Element, at.Element, owned, sub)
		case *types.TupleType:
			for _, el := range at.Elements {
				c.collectConstraints(pt.Element, el, owned, sub)
			}
		}
	case *types.TupleType:
		if at, ok := arg.(*types.TupleType); ok {
			for i := range pt.Elements {
				if i < len(at.Elements) {
					c.collectConstraints(pt.Elements[i], at.Elements[i], owned, sub)
				}
			}
		}
	case *types.TableType:
		if at, ok := arg.(*types.TableType); ok {
			for _, pf := range pt.Fields {
				if af, ok := at.FieldByName(pf.Name); ok {
					c.collectConstraints(pf.Type, af.Type, owned, sub)
				}
			}
			if pt.Index != nil && at.Index != nil {
				c.collectConstraints(pt.Index.Key, at.Index.Key, owned, sub)
				c.collectConstraints(pt.Index.Value, at.Index.Value, owned, sub)
			}
		}
	case *types.FunctionType:
		if at, ok := arg.(*types.FunctionType); ok {
			for i := range pt.Params {
				if i < len(at.Params) {
					c.collectConstraints(pt.Params[i].Type, at.Params[i].Type, owned, sub)
				}
			}
			for i := range pt.Returns {
				if i < len(at.Returns) {
					c.collectConstraints(pt.Returns[i], at.Returns[i], owned, sub)
				}
			}
		}
	case *types.UnionType:
		// Match against the sole parameterized member; concrete
		// members absorb the argument when it fits one of them.
		for _, m := range pt.Types {
			if _, isParam := m.(*types.TypeParameterType); !isParam {
				if c.compat.IsAssignable(arg, m) {
					return
				}
			}
		}
		for _, m := range pt.Types {
			c.collectConstraints(m, arg, owned, sub)
		}
	}
}

// checkArguments validates arity, then each argument against its
// parameter with the parameter as expected type.
func (c *Checker) checkArguments(e *ast.CallExpression, sig *types.FunctionType) {
	required := sig.MinArity()
	if len(e.Args) < required {
		c.errorf(e.Pos(), diag.WrongArity,
			"not enough arguments: got %d, want at least %d", len(e.Args), required)
	}
	if len(e.Args) > len(sig.Params) && sig.RestType == nil {
		c.errorf(e.Pos(), diag.WrongArity,
			"too many arguments: got %d, want at most %d", len(e.Args), len(sig.Params))
	}
	for i, arg := range e.Args {
		var expected types.Type
		if i < len(sig.Params) {
			expected = sig.Params[i].Type
		} else if sig.RestType != nil {
			expected = sig.RestType
		}
		if arg.ComputedType() != nil && expected != nil {
			// Inferred during constraint collection; validate without
			// re-walking.
			if !c.compat.IsAssignable(arg.ComputedType(), expected) {
				c.mismatch(arg.Pos(), arg.ComputedType(), expected)
			}
			continue
		}
		c.checkExpression(arg, expected)
	}
}

// applyAssertion narrows after an asserts-style call: assert(x)
// removes nil and false, an `asserts x is T` guard pins x to T.
func (c *Checker) applyAssertion(e *ast.CallExpression, sig *types.FunctionType) {
	argIndex := -1
	for i, p := range sig.Params {
		if p.Name == sig.Predicate.Param {
			argIndex = i
			break
		}
	}
	if argIndex < 0 || argIndex >= len(e.Args) {
		return
	}
	ident, ok := e.Args[argIndex].(*ast.Identifier)
	if !ok {
		return
	}
	current, ok := c.env.TypeOf(ident.Name)
	if !ok {
		return
	}
	if _, generic := sig.Predicate.Type.(*types.TypeParameterType); generic || sig.Predicate.Type == types.Unknown {
		// assert(x): keep the truthy part.
		c.env.SetNarrowed(ident.Name, c.truthyPart(current))
		return
	}
	c.env.SetNarrowed(ident.Name, c.narrowTo(current, sig.Predicate.Type))
}

func (c *Checker) checkMethodCall(e *ast.MethodCallExpression) types.Type {
	objType := c.inferExpression(e.Receiver)
	field, ok := c.tableField(c.withoutNil(c.structuralOf(objType)), e.Method)
	if !ok {
		c.errorf(e.Pos(), diag.UndefinedName, "type %s has no method %s", objType, e.Method)
		for _, arg := range e.Args {
			c.inferExpression(arg)
		}
		return types.Unknown
	}
	fn, ok := c.compatNormalizedFunction(field.Type)
	if !ok {
		c.errorf(e.Pos(), diag.InvalidOperator, "field %s is %s, not a method", e.Method, field.Type)
		return types.Unknown
	}

	params := fn.Params
	if len(params) > 0 && params[0].Name.String() == "self" {
		if !c.compat.IsAssignable(objType, params[0].Type) {
			c.mismatch(e.Receiver.Pos(), objType, params[0].Type)
		}
		params = params[1:]
	}

	required := 0
	for _, p := range params {
		if !p.Optional {
			required++
		}
	}
	if len(e.Args) < required {
		c.errorf(e.Pos(), diag.WrongArity,
			"not enough arguments: got %d, want at least %d", len(e.Args), required)
	}
	if len(e.Args) > len(params) && fn.RestType == nil {
		c.errorf(e.Pos(), diag.WrongArity,
			"too many arguments: got %d, want at most %d", len(e.Args), len(params))
	}
	for i, arg := range e.Args {
		var expected types.Type
		if i < len(params) {
			expected = params[i].Type
		} else if fn.RestType != nil {
			expected = fn.RestType
		}
		c.checkExpression(arg, expected)
	}

	c.env.InvalidateMutableNarrowings()
	if len(fn.Returns) > 1 {
		c.callReturns[e.Pos()] = fn.Returns
	}
	return fn.Return()
}

// checkRequire resolves require("name") against the module registry.
func (c *Checker) checkRequire(e *ast.CallExpression) types.Type {
	if len(e.Args) != 1 {
		c.errorf(e.Pos(), diag.WrongArity, "require takes exactly one argument")
		return types.Unknown
	}
	lit, ok := e.Args[0].(*ast.StringLiteral)
	if !ok {
		c.errorf(e.Args[0].Pos(), diag.TypeMismatch, "require needs a literal module name")
		c.inferExpression(e.Args[0])
		return types.Unknown
	}
	e.Args[0].SetComputedType(types.NewStringLiteral(lit.Value))
	if c.opts.Resolver == nil {
		c.errorf(e.Pos(), diag.UndefinedName, "module %q is not available", lit.Value)
		return types.Unknown
	}
	public, ok := c.opts.Resolver.LookupModule(lit.Value)
	if !ok {
		c.errorf(e.Pos(), diag.UndefinedName, "module %q is not available", lit.Value)
		return types.Unknown
	}
	// Imported type aliases come into scope alongside the value
	// surface.
	for name, t := range public.Types {
		c.env.DefineTypeAlias(name, t)
	}
	return public.Table()
}
