package checker

import (
	"lunatype/pkg/ast"
	"lunatype/pkg/diag"
	"lunatype/pkg/types"
)

// resolveTypeExpr turns an annotation into a type. Unresolvable names
// report UndefinedName and come back as a TypeRef, so one bad name
// does not cascade.
func (c *Checker) resolveTypeExpr(expr ast.TypeExpr) types.Type {
	if expr == nil {
		return types.Unknown
	}
	switch te := expr.(type) {
	case *ast.TypeName:
		return c.resolveTypeName(te)
	case *ast.UnionTypeExpr:
		members := make([]types.Type, len(te.Members))
		for i, m := range te.Members {
			members[i] = c.resolveTypeExpr(m)
		}
		return types.NewUnionType(members...)
	case *ast.IntersectionTypeExpr:
		members := make([]types.Type, len(te.Members))
		for i, m := range te.Members {
			members[i] = c.resolveTypeExpr(m)
		}
		return types.NewIntersectionType(members...)
	case *ast.NullableTypeExpr:
		return types.NewUnionType(c.resolveTypeExpr(te.Inner), types.Nil)
	case *ast.TableTypeExpr:
		return c.resolveTableTypeExpr(te)
	case *ast.ArrayTypeExpr:
		return types.NewArrayType(c.resolveTypeExpr(te.Element))
	case *ast.TupleTypeExpr:
		elems := make([]types.Type, len(te.Elements))
		for i, e := range te.Elements {
			elems[i] = c.resolveTypeExpr(e)
		}
		return types.NewTupleType(elems...)
	case *ast.FunctionTypeExpr:
		return c.resolveFunctionTypeExpr(te)
	case *ast.LiteralTypeExpr:
		return c.literalTypeOf(te)
	case *ast.KeyofTypeExpr:
		return c.evalOperatorType(&types.KeyofType{Operand: c.resolveTypeExpr(te.Operand)}, te.Pos())
	case *ast.IndexedAccessTypeExpr:
		return c.evalOperatorType(&types.IndexedAccessType{
			Object: c.resolveTypeExpr(te.Object),
			Index:  c.resolveTypeExpr(te.Index),
		}, te.Pos())
	case *ast.ConditionalTypeExpr:
		return c.resolveConditionalTypeExpr(te)
	case *ast.InferTypeExpr:
		if p, ok := c.env.ResolveTypeParameter(te.Name); ok {
			return &types.InferType{Parameter: p}
		}
		c.errorf(te.Pos(), diag.UndefinedName, "infer %s outside an extends clause", te.Name)
		return types.Never
	case *ast.MappedTypeExpr:
		return c.resolveMappedTypeExpr(te)
	case *ast.TemplateLiteralTypeExpr:
		parts := make([]types.TemplatePart, len(te.Parts))
		for i, p := range te.Parts {
			parts[i] = types.TemplatePart{Text: p.Text}
			if p.Type != nil {
				parts[i].Type = c.resolveTypeExpr(p.Type)
			}
		}
		return types.NewTemplateLiteralType(parts...)
	}
	c.internal(expr.Pos(), "unhandled type annotation %T", expr)
	return types.Unknown
}

func (c *Checker) resolveTypeName(te *ast.TypeName) types.Type {
	if p, ok := c.env.ResolveTypeParameter(te.Name); ok {
		if len(te.Args) > 0 {
			c.errorf(te.Pos(), diag.WrongArity, "type parameter %s takes no arguments", te.Name)
		}
		return &types.TypeParameterType{Parameter: p}
	}

	resolved, ok := c.env.ResolveTypeAlias(te.Name)
	if !ok {
		c.errorf(te.Pos(), diag.UndefinedName, "undefined type %s", te.Name)
		return &types.TypeRef{Name: te.Name}
	}

	generic, isGeneric := resolved.(*types.GenericType)
	if !isGeneric {
		if len(te.Args) > 0 {
			c.errorf(te.Pos(), diag.WrongArity, "type %s takes no arguments", te.Name)
		}
		return resolved
	}

	args := make([]types.Type, len(te.Args))
	for i, a := range te.Args {
		args[i] = c.resolveTypeExpr(a)
	}
	inst, err := c.compat.Instantiate(generic, args)
	if err != nil {
		switch err.(type) {
		case *types.ArityError:
			c.errorf(te.Pos(), diag.WrongArity, "%v", err)
		case *types.ConstraintError:
			c.errorf(te.Pos(), diag.UnresolvedConstraint, "%v", err)
		default:
			c.internal(te.Pos(), "instantiating %s: %v", te.Name, err)
		}
		return types.Never
	}
	return inst
}

func (c *Checker) resolveTableTypeExpr(te *ast.TableTypeExpr) types.Type {
	out := types.NewTableType()
	for _, f := range te.Fields {
		if _, dup := out.FieldByName(f.Name); dup {
			c.errorf(te.Pos(), diag.DuplicateDeclaration, "duplicate field %s", f.Name)
			continue
		}
		out.Fields = append(out.Fields, types.Field{
			Name:     f.Name,
			Type:     c.resolveTypeExpr(f.Type),
			Optional: f.Optional,
			Readonly: f.Readonly,
		})
	}
	if te.IndexKey != nil {
		out.Index = &types.IndexSignature{
			Key:   c.resolveTypeExpr(te.IndexKey),
			Value: c.resolveTypeExpr(te.IndexVal),
		}
	}
	return out
}

func (c *Checker) resolveFunctionTypeExpr(te *ast.FunctionTypeExpr) types.Type {
	out := &types.FunctionType{}
	resolve := func() {
		for _, p := range te.Params {
			out.Params = append(out.Params, types.Param{
				Name:     p.Name,
				Type:     c.resolveTypeExpr(p.Type),
				Optional: p.Optional,
			})
		}
		if te.Vararg != nil {
			out.RestType = c.resolveTypeExpr(te.Vararg)
		}
		for _, r := range te.Returns {
			out.Returns = append(out.Returns, c.resolveTypeExpr(r))
		}
		if te.Predicate != nil {
			out.Predicate = &types.TypePredicate{
				Param:   te.Predicate.Param,
				Type:    c.resolveTypeExpr(te.Predicate.Type),
				Asserts: te.Predicate.Asserts,
			}
		}
	}
	if len(te.TypeParams) == 0 {
		resolve()
		return out
	}
	c.withScope(func() {
		out.TypeParams = c.declareTypeParams(te.TypeParams)
		resolve()
	})
	return out
}

// declareTypeParams resolves a type parameter list left to right, so
// later parameters may mention earlier ones in constraints.
func (c *Checker) declareTypeParams(decls []ast.TypeParamDecl) []*types.TypeParameter {
	out := make([]*types.TypeParameter, len(decls))
	for i, d := range decls {
		p := &types.TypeParameter{Name: d.Name}
		c.env.DefineTypeParameter(p)
		out[i] = p
	}
	for i, d := range decls {
		if d.Constraint != nil {
			out[i].Constraint = c.resolveTypeExpr(d.Constraint)
		}
		if d.Default != nil {
			out[i].Default = c.resolveTypeExpr(d.Default)
		}
	}
	return out
}

func (c *Checker) resolveConditionalTypeExpr(te *ast.ConditionalTypeExpr) types.Type {
	out := &types.ConditionalType{}
	out.Check = c.resolveTypeExpr(te.Check)
	// infer declarations in the extends clause scope over the extends
	// and true branches.
	c.withScope(func() {
		c.declareInferParams(te.Extends)
		out.Extends = c.resolveTypeExpr(te.Extends)
		out.True = c.resolveTypeExpr(te.True)
	})
	out.False = c.resolveTypeExpr(te.False)
	return out
}

// declareInferParams pre-scans an extends pattern for infer X
// occurrences and binds their parameters.
func (c *Checker) declareInferParams(expr ast.TypeExpr) {
	switch te := expr.(type) {
	case *ast.InferTypeExpr:
		p := &types.TypeParameter{Name: te.Name}
		if te.Constraint != nil {
			p.Constraint = c.resolveTypeExpr(te.Constraint)
		}
		c.env.DefineTypeParameter(p)
	case *ast.TypeName:
		for _, a := range te.Args {
			c.declareInferParams(a)
		}
	case *ast.UnionTypeExpr:
		for _, m := range te.Members {
			c.declareInferParams(m)
		}
	case *ast.IntersectionTypeExpr:
		for _, m := range te.Members {
			c.declareInferParams(m)
		}
	case *ast.NullableTypeExpr:
		c.declareInferParams(te.Inner)
	case *ast.TableTypeExpr:
		for _, f := range te.Fields {
			c.declareInferParams(f.Type)
		}
	case *ast.ArrayTypeExpr:
		c.declareInferParams(te.Element)
	case *ast.TupleTypeExpr:
		for _, e := range te.Elements {
			c.declareInferParams(e)
		}
	case *ast.FunctionTypeExpr:
		for _, p := range te.Params {
			c.declareInferParams(p.Type)
		}
		if te.Vararg != nil {
			c.declareInferParams(te.Vararg)
		}
		for _, r := range te.Returns {
			c.declareInferParams(r)
		}
	case *ast.IndexedAccessTypeExpr:
		c.declareInferParams(te.Object)
		c.declareInferParams(te.Index)
	case *ast.TemplateLiteralTypeExpr:
		for _, p := range te.Parts {
			if p.Type != nil {
				c.declareInferParams(p.Type)
			}
		}
	}
}

func (c *Checker) resolveMappedTypeExpr(te *ast.MappedTypeExpr) types.Type {
	out := &types.MappedType{}
	switch {
	case te.Optional > 0:
		out.Optional = types.ModifierAdd
	case te.Optional < 0:
		out.Optional = types.ModifierRemove
	}
	switch {
	case te.Readonly > 0:
		out.Readonly = types.ModifierAdd
	case te.Readonly < 0:
		out.Readonly = types.ModifierRemove
	}
	out.Constraint = c.resolveTypeExpr(te.Constraint)
	c.withScope(func() {
		p := &types.TypeParameter{Name: te.Param, Constraint: out.Constraint}
		c.env.DefineTypeParameter(p)
		out.TypeParameter = p
		out.Value = c.resolveTypeExpr(te.Value)
	})
	return c.evalOperatorType(out, te.Pos())
}

// evalOperatorType reduces an operator type eagerly so a misapplied
// operator is reported at the annotation. Operands still awaiting
// type parameters or forward references stay deferred.
func (c *Checker) evalOperatorType(t types.Type, pos diag.Position) types.Type {
	evaluated, ok := c.compat.Evaluator().Eval(t)
	if !ok {
		c.errorf(pos, diag.InvalidOperator, "%s is not applicable here", t)
		return types.Never
	}
	return evaluated
}

func (c *Checker) literalTypeOf(te *ast.LiteralTypeExpr) types.Type {
	switch lit := te.Value.(type) {
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
	c.internal(te.Pos(), "unhandled literal type %T", te.Value)
	return types.Unknown
}
