package checker

import (
	"lunatype/pkg/ast"
	"lunatype/pkg/diag"
	"lunatype/pkg/intern"
	"lunatype/pkg/types"
)

// declareTypeNames pre-declares every type alias and interface in the
// block so that aliases can reference each other and themselves. The
// bodies resolve in a second pass against these placeholders, before
// any value statement checks.
func (c *Checker) declareTypeNames(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.TypeAliasStatement:
			c.declareTypeName(s.Name, s.TypeParams, s.Pos())
		case *ast.InterfaceDeclaration:
			c.declareTypeName(s.Name, s.TypeParams, s.Pos())
		}
	}
}

// resolveTypeDeclarations patches the predeclared placeholders with
// their resolved bodies, so an annotation may reference a type
// declared further down the block.
func (c *Checker) resolveTypeDeclarations(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.TypeAliasStatement:
			c.checkTypeAlias(s)
		case *ast.InterfaceDeclaration:
			c.checkInterface(s)
		}
	}
}

func (c *Checker) declareTypeName(name intern.Name, params []ast.TypeParamDecl, pos diag.Position) {
	var placeholder types.Type
	if len(params) == 0 {
		placeholder = &types.AliasType{Name: name}
	} else {
		placeholder = &types.GenericType{Name: name}
	}
	if !c.env.DefineTypeAlias(name, placeholder) {
		c.errorf(pos, diag.DuplicateDeclaration, "type %s is already declared in this scope", name)
	}
}

func (c *Checker) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.LocalStatement:
		c.checkLocalStatement(s)
	case *ast.AssignStatement:
		c.checkAssignStatement(s)
	case *ast.FunctionDeclaration:
		c.checkFunctionDeclaration(s)
	case *ast.ReturnStatement:
		c.checkReturnStatement(s)
	case *ast.IfStatement:
		c.checkIfStatement(s)
	case *ast.WhileStatement:
		cond := c.inferExpression(s.Condition)
		c.requireCondition(s.Condition, cond)
		c.withScope(func() {
			c.applyNarrowings(c.narrowingsFor(s.Condition, true))
			c.checkBlockInPlace(s.Body)
		})
	case *ast.RepeatStatement:
		c.withScope(func() {
			c.checkBlockInPlace(s.Body)
			cond := c.inferExpression(s.Condition)
			c.requireCondition(s.Condition, cond)
		})
	case *ast.NumericForStatement:
		c.checkNumericFor(s)
	case *ast.GenericForStatement:
		c.checkGenericFor(s)
	case *ast.BlockStatement:
		c.withScope(func() {
			c.checkBlockInPlace(s)
		})
	case *ast.TypeAliasStatement, *ast.InterfaceDeclaration:
		// Resolved before the statement walk.
	case *ast.MatchStatement:
		c.checkMatchStatement(s)
	case *ast.ExpressionStatement:
		c.inferExpression(s.Expression)
	case *ast.ExportStatement:
		if info, ok := c.env.Resolve(s.Name); ok {
			info.Exported = true
		} else {
			c.errorf(s.Pos(), diag.UndefinedName, "cannot export undefined name %s", s.Name)
		}
	case *ast.BreakStatement:
		// nothing to check
	default:
		c.internal(stmt.Pos(), "unhandled statement %T", stmt)
	}
}

// checkBlockInPlace checks statements without opening a new scope;
// callers that need one wrap it in withScope.
func (c *Checker) checkBlockInPlace(block *ast.BlockStatement) {
	c.declareTypeNames(block.Statements)
	c.resolveTypeDeclarations(block.Statements)
	for _, stmt := range block.Statements {
		c.checkStatement(stmt)
	}
}

func (c *Checker) checkLocalStatement(s *ast.LocalStatement) {
	annotations := make([]types.Type, len(s.Names))
	for i := range s.Names {
		if i < len(s.Annotations) && s.Annotations[i] != nil {
			annotations[i] = c.resolveTypeExpr(s.Annotations[i])
		}
	}

	// With one value per name the annotation flows into its value as
	// the expected type; multi-value spreads validate afterwards.
	var valueTypes []types.Type
	if len(s.Values) == len(s.Names) {
		valueTypes = make([]types.Type, len(s.Values))
		for i, v := range s.Values {
			valueTypes[i] = c.checkExpression(v, annotations[i])
		}
	} else {
		valueTypes = c.spreadValues(s.Values, len(s.Names))
		for i := range valueTypes {
			if i < len(annotations) && annotations[i] != nil &&
				!c.compat.IsAssignable(valueTypes[i], annotations[i]) {
				pos := s.Pos()
				if len(s.Values) > 0 {
					pos = s.Values[len(s.Values)-1].Pos()
				}
				c.mismatch(pos, valueTypes[i], annotations[i])
			}
		}
	}

	for i, name := range s.Names {
		var value types.Type
		if i < len(valueTypes) {
			value = valueTypes[i]
		}

		declared := annotations[i]
		if declared == nil {
			switch {
			case value == nil:
				// local x with no initializer starts out nil; unknown
				// keeps later assignments legal.
				declared = types.NewUnionType(types.Unknown, types.Nil)
			case s.IsConst:
				declared = value
			default:
				declared = types.Widen(value)
			}
		}

		kind := SymbolVariable
		if s.IsConst {
			kind = SymbolConst
		}
		info := &SymbolInfo{Name: name, Kind: kind, Type: declared, Declared: s.Pos()}
		if !c.env.Define(info) {
			c.errorf(s.Pos(), diag.DuplicateDeclaration, "%s is already declared in this scope", name)
		}
	}
}

// spreadValues types the right-hand side of a multi-assignment. The
// last expression spreads its extra return values across remaining
// targets; earlier expressions contribute exactly one value.
func (c *Checker) spreadValues(values []ast.Expression, want int) []types.Type {
	out := make([]types.Type, 0, want)
	for i, v := range values {
		t := c.inferExpression(v)
		if i == len(values)-1 {
			if fnReturns, ok := c.multiReturnOf(v); ok {
				out = append(out, fnReturns...)
				continue
			}
		}
		out = append(out, t)
	}
	for len(out) > 0 && len(out) > want {
		out = out[:len(out)-1]
	}
	for len(out) < want && len(values) > 0 {
		out = append(out, types.Nil)
	}
	return out
}

// multiReturnOf exposes all return values of a call in tail position.
func (c *Checker) multiReturnOf(expr ast.Expression) ([]types.Type, bool) {
	switch expr.(type) {
	case *ast.CallExpression, *ast.MethodCallExpression:
		returns, ok := c.callReturns[expr.Pos()]
		return returns, ok
	}
	return nil, false
}

func (c *Checker) checkAssignStatement(s *ast.AssignStatement) {
	valueTypes := c.spreadValues(s.Values, len(s.Targets))

	for i, target := range s.Targets {
		var value types.Type = types.Nil
		if i < len(valueTypes) {
			value = valueTypes[i]
		}
		c.checkAssignTarget(target, value, s.Pos())
	}
}

func (c *Checker) checkAssignTarget(target ast.Expression, value types.Type, pos diag.Position) {
	switch t := target.(type) {
	case *ast.Identifier:
		info, ok := c.env.Resolve(t.Name)
		if !ok {
			c.errorf(t.Pos(), diag.UndefinedName, "undefined name %s", t.Name)
			return
		}
		if info.IsConst() {
			c.errorf(t.Pos(), diag.InvalidAssignment, "cannot assign to %s", c.describeSymbol(info))
			return
		}
		if !c.compat.IsAssignable(value, info.Type) {
			c.mismatch(t.Pos(), value, info.Type)
		}
		// Assignment re-narrows to the assigned value's type.
		c.env.ClearNarrowed(t.Name)
		if !value.Equals(info.Type) && c.compat.IsAssignable(value, info.Type) {
			c.env.SetNarrowed(t.Name, value)
		}
	case *ast.FieldExpression:
		obj := c.inferExpression(t.Object)
		field, ok := c.tableField(obj, t.Name)
		if !ok {
			c.errorf(t.Pos(), diag.UndefinedName, "type %s has no field %s", obj, t.Name)
			return
		}
		if field.Readonly {
			c.errorf(t.Pos(), diag.InvalidAssignment, "cannot assign to readonly field %s", t.Name)
			return
		}
		if !c.compat.IsAssignable(value, field.Type) {
			c.mismatch(t.Pos(), value, field.Type)
		}
	case *ast.IndexExpression:
		obj := c.inferExpression(t.Object)
		idx := c.inferExpression(t.Index)
		want, ok := c.indexResult(obj, idx, t.Pos())
		if !ok {
			return
		}
		if !c.compat.IsAssignable(value, want) {
			c.mismatch(t.Pos(), value, want)
		}
	default:
		c.errorf(pos, diag.InvalidAssignment, "invalid assignment target")
	}
}

func (c *Checker) checkFunctionDeclaration(s *ast.FunctionDeclaration) {
	// Declare the name first so the body can recurse.
	fnType := c.functionSignature(s.Function)
	info := &SymbolInfo{
		Name:     s.Name,
		Kind:     SymbolFunction,
		Type:     fnType,
		Declared: s.Pos(),
		Exported: s.Exported,
	}
	if !c.env.Define(info) {
		c.errorf(s.Pos(), diag.DuplicateDeclaration, "%s is already declared in this scope", s.Name)
	}
	c.checkFunctionBody(s.Function, fnType)
	s.Function.SetComputedType(fnType)
}

func (c *Checker) checkReturnStatement(s *ast.ReturnStatement) {
	if c.fn == nil {
		c.errorf(s.Pos(), diag.InvalidAssignment, "return outside a function")
		return
	}
	got := make([]types.Type, 0, len(s.Values))
	for i, v := range s.Values {
		var expected types.Type
		if c.fn.declared != nil && i < len(c.fn.declared) {
			expected = c.fn.declared[i]
		}
		got = append(got, c.checkExpression(v, expected))
	}
	if c.fn.declared != nil {
		required := len(c.fn.declared)
		if len(got) < required {
			c.errorf(s.Pos(), diag.WrongArity,
				"not enough return values: got %d, want %d", len(got), required)
		}
		return
	}
	c.fn.inferred = append(c.fn.inferred, got)
}

func (c *Checker) checkIfStatement(s *ast.IfStatement) {
	cond := c.inferExpression(s.Condition)
	c.requireCondition(s.Condition, cond)

	thenFacts := c.narrowingsFor(s.Condition, true)
	elseFacts := c.narrowingsFor(s.Condition, false)

	c.withScope(func() {
		c.applyNarrowings(thenFacts)
		c.checkBlockInPlace(s.Then)
	})
	thenExits := blockAlwaysExits(s.Then)

	if s.Else != nil {
		c.withScope(func() {
			c.applyNarrowings(elseFacts)
			if block, ok := s.Else.(*ast.BlockStatement); ok {
				c.checkBlockInPlace(block)
			} else {
				c.checkStatement(s.Else)
			}
		})
	}

	// If the then-branch never falls through, the negative facts hold
	// for the rest of the enclosing block.
	if thenExits {
		c.applyNarrowings(elseFacts)
	}
}

// blockAlwaysExits reports whether control cannot fall out of the
// block's end.
func blockAlwaysExits(block *ast.BlockStatement) bool {
	if block == nil || len(block.Statements) == 0 {
		return false
	}
	switch last := block.Statements[len(block.Statements)-1].(type) {
	case *ast.ReturnStatement, *ast.BreakStatement:
		return true
	case *ast.ExpressionStatement:
		// error(...) and similar never-returning calls terminate.
		if call, ok := last.Expression.(*ast.CallExpression); ok {
			if t := call.ComputedType(); t == types.Never {
				return true
			}
		}
	case *ast.IfStatement:
		if last.Else == nil {
			return false
		}
		elseBlock, ok := last.Else.(*ast.BlockStatement)
		return blockAlwaysExits(last.Then) && ok && blockAlwaysExits(elseBlock)
	}
	return false
}

// requireCondition rejects conditions that are provably not usable as
// a boolean test. Lua treats everything except nil and false as true,
// so only void is outright wrong.
func (c *Checker) requireCondition(expr ast.Expression, t types.Type) {
	if t == types.Void {
		c.errorf(expr.Pos(), diag.TypeMismatch, "void value used as a condition")
	}
}

func (c *Checker) checkNumericFor(s *ast.NumericForStatement) {
	start := c.inferExpression(s.Start)
	stop := c.inferExpression(s.Stop)
	loopType := c.numericLoopType(start, stop, s)
	if s.Step != nil {
		step := c.inferExpression(s.Step)
		if !c.isNumeric(step) {
			c.mismatch(s.Step.Pos(), step, types.Number)
		}
		if !c.isIntegerLike(step) {
			loopType = types.Number
		}
	}
	c.withScope(func() {
		c.env.Define(&SymbolInfo{
			Name: s.Variable, Kind: SymbolConst, Type: loopType, Declared: s.Pos(),
		})
		c.checkBlockInPlace(s.Body)
	})
}

func (c *Checker) numericLoopType(start, stop types.Type, s *ast.NumericForStatement) types.Type {
	if !c.isNumeric(start) {
		c.mismatch(s.Start.Pos(), start, types.Number)
	}
	if !c.isNumeric(stop) {
		c.mismatch(s.Stop.Pos(), stop, types.Number)
	}
	if c.isIntegerLike(start) && c.isIntegerLike(stop) {
		return types.Integer
	}
	return types.Number
}

func (c *Checker) isNumeric(t types.Type) bool {
	return c.compat.IsAssignable(t, types.Number)
}

func (c *Checker) isIntegerLike(t types.Type) bool {
	return c.compat.IsAssignable(t, types.Integer)
}

func (c *Checker) checkGenericFor(s *ast.GenericForStatement) {
	keyType, valueType := c.iterationTypes(s.Iterator)
	c.withScope(func() {
		bindings := []types.Type{keyType, valueType}
		for i, name := range s.Names {
			var t types.Type = types.Unknown
			if i < len(bindings) {
				t = bindings[i]
			}
			c.env.Define(&SymbolInfo{
				Name: name, Kind: SymbolConst, Type: t, Declared: s.Pos(),
			})
		}
		c.checkBlockInPlace(s.Body)
	})
}

// iterationTypes types for-in loops over pairs(t) and ipairs(t) from
// the table argument; anything else iterates as unknown.
func (c *Checker) iterationTypes(iterator ast.Expression) (types.Type, types.Type) {
	call, ok := iterator.(*ast.CallExpression)
	if !ok || len(call.Args) == 0 {
		c.inferExpression(iterator)
		return types.Unknown, types.Unknown
	}
	callee, isIdent := call.Callee.(*ast.Identifier)
	if !isIdent {
		c.inferExpression(iterator)
		return types.Unknown, types.Unknown
	}
	argType := c.inferExpression(call.Args[0])
	iterator.SetComputedType(types.Unknown)

	switch callee.Name.String() {
	case "ipairs":
		switch at := c.structuralOf(argType).(type) {
		case *types.ArrayType:
			return types.Integer, at.Element
		case *types.TupleType:
			return types.Integer, types.NewUnionType(at.Elements...)
		}
		return types.Integer, types.Unknown
	case "pairs":
		switch at := c.structuralOf(argType).(type) {
		case *types.TableType:
			if at.Index != nil && len(at.Fields) == 0 {
				return at.Index.Key, at.Index.Value
			}
			keys, ok := c.compat.Evaluator().Eval(&types.KeyofType{Operand: at})
			if !ok {
				return types.String, types.Unknown
			}
			members := make([]types.Type, 0, len(at.Fields))
			for _, f := range at.Fields {
				members = append(members, f.Type)
			}
			if at.Index != nil {
				members = append(members, at.Index.Value)
			}
			return keys, types.NewUnionType(members...)
		case *types.ArrayType:
			return types.Integer, at.Element
		}
		return types.Unknown, types.Unknown
	}
	c.inferExpression(iterator)
	return types.Unknown, types.Unknown
}

func (c *Checker) checkTypeAlias(s *ast.TypeAliasStatement) {
	placeholder, _ := c.env.ResolveTypeAlias(s.Name)

	if len(s.TypeParams) == 0 {
		alias, ok := placeholder.(*types.AliasType)
		if !ok || alias.Name != s.Name {
			// Redeclaration already reported during predeclare.
			alias = &types.AliasType{Name: s.Name}
		}
		alias.Resolved = c.resolveTypeExpr(s.Value)
		return
	}

	generic, ok := placeholder.(*types.GenericType)
	if !ok || generic.Name != s.Name {
		generic = &types.GenericType{Name: s.Name}
	}
	c.withScope(func() {
		generic.TypeParameters = c.declareTypeParams(s.TypeParams)
		generic.Body = c.resolveTypeExpr(s.Value)
	})
}

func (c *Checker) checkInterface(s *ast.InterfaceDeclaration) {
	placeholder, _ := c.env.ResolveTypeAlias(s.Name)

	if len(s.TypeParams) == 0 {
		alias, ok := placeholder.(*types.AliasType)
		if !ok || alias.Name != s.Name {
			alias = &types.AliasType{Name: s.Name}
		}
		alias.Resolved = c.resolveTypeExpr(s.Body)
		return
	}
	generic, ok := placeholder.(*types.GenericType)
	if !ok || generic.Name != s.Name {
		generic = &types.GenericType{Name: s.Name}
	}
	c.withScope(func() {
		generic.TypeParameters = c.declareTypeParams(s.TypeParams)
		generic.Body = c.resolveTypeExpr(s.Body)
	})
}
