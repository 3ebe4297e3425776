package checker

import (
	"testing"

	"lunatype/pkg/ast"
	"lunatype/pkg/diag"
	"lunatype/pkg/intern"
	"lunatype/pkg/source"
	"lunatype/pkg/types"
)

// Test trees are built by hand; posCounter hands out distinct
// positions so per-position records do not collide.
type builder struct {
	names *intern.Interner
	line  int
}

func newBuilder() *builder {
	return &builder{names: intern.New()}
}

func (b *builder) pos() diag.Position {
	b.line++
	return diag.Position{Line: b.line, Column: 1, StartPos: b.line, EndPos: b.line}
}

func (b *builder) name(s string) intern.Name { return b.names.Intern(s) }

func (b *builder) ident(s string) *ast.Identifier {
	id := &ast.Identifier{Name: b.name(s)}
	id.Position = b.pos()
	return id
}

func (b *builder) str(s string) *ast.StringLiteral {
	lit := &ast.StringLiteral{Value: s}
	lit.Position = b.pos()
	return lit
}

func (b *builder) num(n int64) *ast.NumberLiteral {
	lit := &ast.NumberLiteral{Value: float64(n), Int: n, IsInt: true}
	lit.Position = b.pos()
	return lit
}

func (b *builder) boolean(v bool) *ast.BooleanLiteral {
	lit := &ast.BooleanLiteral{Value: v}
	lit.Position = b.pos()
	return lit
}

func (b *builder) null() *ast.NilLiteral {
	lit := &ast.NilLiteral{}
	lit.Position = b.pos()
	return lit
}

func (b *builder) local(name string, value ast.Expression) *ast.LocalStatement {
	s := &ast.LocalStatement{
		Names:       []intern.Name{b.name(name)},
		Annotations: []ast.TypeExpr{nil},
		Values:      []ast.Expression{value},
	}
	s.Position = b.pos()
	return s
}

func (b *builder) localConst(name string, value ast.Expression) *ast.LocalStatement {
	s := b.local(name, value)
	s.IsConst = true
	return s
}

func (b *builder) localTyped(name string, annotation ast.TypeExpr, value ast.Expression) *ast.LocalStatement {
	s := b.local(name, value)
	s.Annotations = []ast.TypeExpr{annotation}
	return s
}

func (b *builder) typeName(s string, args ...ast.TypeExpr) *ast.TypeName {
	t := &ast.TypeName{Name: b.name(s), Args: args}
	t.Position = b.pos()
	return t
}

func (b *builder) assign(target, value ast.Expression) *ast.AssignStatement {
	s := &ast.AssignStatement{Targets: []ast.Expression{target}, Values: []ast.Expression{value}}
	s.Position = b.pos()
	return s
}

func (b *builder) block(stmts ...ast.Statement) *ast.BlockStatement {
	s := &ast.BlockStatement{Statements: stmts}
	s.Position = b.pos()
	return s
}

func (b *builder) binary(op string, left, right ast.Expression) *ast.BinaryExpression {
	e := &ast.BinaryExpression{Operator: op, Left: left, Right: right}
	e.Position = b.pos()
	return e
}

func (b *builder) call(callee ast.Expression, args ...ast.Expression) *ast.CallExpression {
	e := &ast.CallExpression{Callee: callee, Args: args}
	e.Position = b.pos()
	return e
}

func (b *builder) exprStmt(e ast.Expression) *ast.ExpressionStatement {
	s := &ast.ExpressionStatement{Expression: e}
	s.Position = b.pos()
	return s
}

func (b *builder) check(t *testing.T, stmts ...ast.Statement) (*Checker, *diag.List) {
	t.Helper()
	sink := &diag.List{}
	c := New(b.names, sink, Options{})
	chunk := ast.NewChunk("test", stmts)
	file := source.Synthetic("test.tl", "")
	c.Check(chunk, file)
	return c, sink
}

func kinds(sink *diag.List) []diag.Kind {
	out := make([]diag.Kind, 0, sink.ErrorCount())
	for _, d := range sink.All() {
		out = append(out, d.Kind)
	}
	return out
}

func expectKinds(t *testing.T, sink *diag.List, want ...diag.Kind) {
	t.Helper()
	got := kinds(sink)
	if len(got) != len(want) {
		t.Fatalf("got %d diagnostics %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("diagnostic %d is %v, want %v", i, got[i], want[i])
		}
	}
}

func expectClean(t *testing.T, sink *diag.List) {
	t.Helper()
	if sink.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
}

func TestConstKeepsLiteralMutableWidens(t *testing.T) {
	b := newBuilder()
	use1 := b.ident("tag")
	use2 := b.ident("count")
	c, sink := b.check(t,
		b.localConst("tag", b.str("point")),
		b.local("count", b.num(3)),
		b.exprStmt(use1),
		b.exprStmt(use2),
	)
	expectClean(t, sink)

	tagType, _ := c.NarrowedTypeAt(use1.Pos())
	if !tagType.Equals(types.NewStringLiteral("point")) {
		t.Errorf("const binding checked as %s, want \"point\"", tagType)
	}
	countType, _ := c.NarrowedTypeAt(use2.Pos())
	if countType != types.Integer {
		t.Errorf("mutable binding checked as %s, want integer", countType)
	}
}

func TestConstReassignmentRejected(t *testing.T) {
	b := newBuilder()
	_, sink := b.check(t,
		b.localConst("x", b.num(1)),
		b.assign(b.ident("x"), b.num(2)),
	)
	expectKinds(t, sink, diag.InvalidAssignment)
}

func TestAnnotationMismatch(t *testing.T) {
	b := newBuilder()
	bad := b.str("oops")
	c, sink := b.check(t,
		b.localTyped("n", b.typeName("number"), bad),
	)
	expectKinds(t, sink, diag.TypeMismatch)

	// Recovery records the expected type everywhere, so the typed
	// tree and the per-position history agree on error nodes.
	if got := bad.ComputedType(); got != types.Number {
		t.Errorf("recovered node type is %s, want number", got)
	}
	if got, _ := c.NarrowedTypeAt(bad.Pos()); got != types.Number {
		t.Errorf("recovered history type is %s, want number", got)
	}
}

func TestAssignmentRespectsDeclaredType(t *testing.T) {
	b := newBuilder()
	_, sink := b.check(t,
		b.localTyped("n", b.typeName("number"), b.num(1)),
		b.assign(b.ident("n"), b.num(2)),
		b.assign(b.ident("n"), b.str("bad")),
	)
	expectKinds(t, sink, diag.TypeMismatch)
}

func TestUndefinedName(t *testing.T) {
	b := newBuilder()
	_, sink := b.check(t, b.exprStmt(b.ident("nowhere")))
	expectKinds(t, sink, diag.UndefinedName)
}

func TestDuplicateDeclaration(t *testing.T) {
	b := newBuilder()
	_, sink := b.check(t,
		b.local("x", b.num(1)),
		b.local("x", b.num(2)),
	)
	expectKinds(t, sink, diag.DuplicateDeclaration)
}

func TestNilGuardNarrowing(t *testing.T) {
	b := newBuilder()

	union := &ast.UnionTypeExpr{Members: []ast.TypeExpr{
		b.typeName("string"),
		b.typeName("nil"),
	}}
	union.Position = b.pos()

	useInBranch := b.ident("x")
	useAfter := b.ident("x")

	ifStmt := &ast.IfStatement{
		Condition: b.binary("~=", b.ident("x"), b.null()),
		Then:      b.block(b.exprStmt(useInBranch)),
	}
	ifStmt.Position = b.pos()

	c, sink := b.check(t,
		b.localTyped("x", union, b.str("hello")),
		ifStmt,
		b.exprStmt(useAfter),
	)
	expectClean(t, sink)

	narrowedType, ok := c.NarrowedTypeAt(useInBranch.Pos())
	if !ok || narrowedType != types.String {
		t.Errorf("inside the guard x is %s, want string", narrowedType)
	}
	afterType, _ := c.NarrowedTypeAt(useAfter.Pos())
	if !afterType.Equals(types.NewUnionType(types.String, types.Nil)) {
		t.Errorf("after the guard x is %s, want string | nil", afterType)
	}
}

func TestTruthyGuardNarrowsBoolean(t *testing.T) {
	b := newBuilder()

	use := b.ident("f")
	ifStmt := &ast.IfStatement{
		Condition: b.ident("f"),
		Then:      b.block(b.exprStmt(use)),
	}
	ifStmt.Position = b.pos()

	c, sink := b.check(t,
		b.localTyped("f", b.typeName("boolean"), b.boolean(true)),
		ifStmt,
	)
	expectClean(t, sink)

	fType, _ := c.NarrowedTypeAt(use.Pos())
	if fType == nil || !fType.Equals(types.NewBooleanLiteral(true)) {
		t.Errorf("boolean after truthy guard is %s, want true", fType)
	}
}

func TestTypeofGuardNarrowing(t *testing.T) {
	b := newBuilder()

	union := &ast.UnionTypeExpr{Members: []ast.TypeExpr{
		b.typeName("string"),
		b.typeName("number"),
	}}
	union.Position = b.pos()

	useThen := b.ident("v")
	useElse := b.ident("v")

	ifStmt := &ast.IfStatement{
		Condition: b.binary("==",
			b.call(b.ident("type"), b.ident("v")),
			b.str("string"),
		),
		Then: b.block(b.exprStmt(useThen)),
		Else: b.block(b.exprStmt(useElse)),
	}
	ifStmt.Position = b.pos()

	c, sink := b.check(t,
		b.localTyped("v", union, b.str("s")),
		ifStmt,
	)
	expectClean(t, sink)

	thenType, _ := c.NarrowedTypeAt(useThen.Pos())
	if thenType != types.String {
		t.Errorf("then-branch v is %s, want string", thenType)
	}
	elseType, _ := c.NarrowedTypeAt(useElse.Pos())
	if elseType != types.Number {
		t.Errorf("else-branch v is %s, want number", elseType)
	}
}

func TestDiscriminatedUnionNarrowing(t *testing.T) {
	b := newBuilder()

	circle := &ast.TableTypeExpr{Fields: []ast.TableTypeField{
		{Name: b.name("kind"), Type: &ast.LiteralTypeExpr{Value: b.str("circle")}},
		{Name: b.name("radius"), Type: b.typeName("number")},
	}}
	circle.Position = b.pos()
	square := &ast.TableTypeExpr{Fields: []ast.TableTypeField{
		{Name: b.name("kind"), Type: &ast.LiteralTypeExpr{Value: b.str("square")}},
		{Name: b.name("side"), Type: b.typeName("number")},
	}}
	square.Position = b.pos()
	union := &ast.UnionTypeExpr{Members: []ast.TypeExpr{circle, square}}
	union.Position = b.pos()

	alias := &ast.TypeAliasStatement{Name: b.name("Shape"), Value: union}
	alias.Position = b.pos()

	// local s: Shape = {kind = "circle", radius = 1}
	value := &ast.TableLiteral{Fields: []ast.TableField{
		{NameKey: b.name("kind"), Value: b.str("circle")},
		{NameKey: b.name("radius"), Value: b.num(1)},
	}}
	value.Position = b.pos()

	radiusAccess := &ast.FieldExpression{Object: b.ident("s"), Name: b.name("radius")}
	radiusAccess.Position = b.pos()

	tagField := &ast.FieldExpression{Object: b.ident("s"), Name: b.name("kind")}
	tagField.Position = b.pos()

	ifStmt := &ast.IfStatement{
		Condition: b.binary("==", tagField, b.str("circle")),
		Then:      b.block(b.exprStmt(radiusAccess)),
	}
	ifStmt.Position = b.pos()

	c, sink := b.check(t,
		alias,
		b.localTyped("s", b.typeName("Shape"), value),
		ifStmt,
	)
	expectClean(t, sink)

	radiusType, _ := c.NarrowedTypeAt(radiusAccess.Pos())
	if radiusType != types.Number {
		t.Errorf("narrowed field access is %s, want number", radiusType)
	}
}

func TestForwardTypeReference(t *testing.T) {
	b := newBuilder()

	// local x: Foo = {a = 1} precedes type Foo = {a: number}
	value := &ast.TableLiteral{Fields: []ast.TableField{
		{NameKey: b.name("a"), Value: b.num(1)},
	}}
	value.Position = b.pos()
	decl := b.localTyped("x", b.typeName("Foo"), value)

	body := &ast.TableTypeExpr{Fields: []ast.TableTypeField{
		{Name: b.name("a"), Type: b.typeName("number")},
	}}
	body.Position = b.pos()
	alias := &ast.TypeAliasStatement{Name: b.name("Foo"), Value: body}
	alias.Position = b.pos()

	_, sink := b.check(t, decl, alias)
	expectClean(t, sink)
}

func TestFieldPresenceNarrowing(t *testing.T) {
	b := newBuilder()

	left := &ast.TableTypeExpr{Fields: []ast.TableTypeField{
		{Name: b.name("a"), Type: b.typeName("number")},
	}}
	left.Position = b.pos()
	right := &ast.TableTypeExpr{Fields: []ast.TableTypeField{
		{Name: b.name("b"), Type: b.typeName("number")},
	}}
	right.Position = b.pos()
	union := &ast.UnionTypeExpr{Members: []ast.TypeExpr{left, right}}
	union.Position = b.pos()

	alias := &ast.TypeAliasStatement{Name: b.name("AB"), Value: union}
	alias.Position = b.pos()

	value := &ast.TableLiteral{Fields: []ast.TableField{
		{NameKey: b.name("a"), Value: b.num(1)},
	}}
	value.Position = b.pos()

	// if x.a ~= nil then ... x.a ... end
	guardField := &ast.FieldExpression{Object: b.ident("x"), Name: b.name("a")}
	guardField.Position = b.pos()
	innerField := &ast.FieldExpression{Object: b.ident("x"), Name: b.name("a")}
	innerField.Position = b.pos()

	ifStmt := &ast.IfStatement{
		Condition: b.binary("~=", guardField, b.null()),
		Then:      b.block(b.exprStmt(innerField)),
	}
	ifStmt.Position = b.pos()

	c, sink := b.check(t,
		alias,
		b.localTyped("x", b.typeName("AB"), value),
		ifStmt,
	)
	expectClean(t, sink)

	aType, _ := c.NarrowedTypeAt(innerField.Pos())
	if aType != types.Number {
		t.Errorf("field after presence guard is %s, want number", aType)
	}

	guardType, _ := c.NarrowedTypeAt(guardField.Pos())
	want := types.NewUnionType(types.Number, types.Nil)
	if guardType == nil || !guardType.Equals(want) {
		t.Errorf("field read across the union is %s, want %s", guardType, want)
	}
}

func TestGenericFunctionInference(t *testing.T) {
	b := newBuilder()

	// function first<T>(xs: T[]): T ... end
	ret := &ast.ReturnStatement{Values: []ast.Expression{
		func() ast.Expression {
			idx := &ast.IndexExpression{Object: b.ident("xs"), Index: b.num(1)}
			idx.Position = b.pos()
			return idx
		}(),
	}}
	ret.Position = b.pos()

	elemType := b.typeName("T")
	arrType := &ast.ArrayTypeExpr{Element: elemType}
	arrType.Position = b.pos()

	fn := &ast.FunctionLiteral{
		TypeParams: []ast.TypeParamDecl{{Name: b.name("T")}},
		Params:     []ast.FunctionParam{{Name: b.name("xs"), Annotation: arrType}},
		ReturnType: []ast.TypeExpr{b.typeName("T")},
		Body:       b.block(ret),
	}
	fn.Position = b.pos()
	decl := &ast.FunctionDeclaration{Name: b.name("first"), Function: fn}
	decl.Position = b.pos()

	// local xs: string[] = {"a"}; local x = first(xs)
	strArr := &ast.ArrayTypeExpr{Element: b.typeName("string")}
	strArr.Position = b.pos()
	lit := &ast.TableLiteral{Fields: []ast.TableField{{Value: b.str("a")}}}
	lit.Position = b.pos()

	callExpr := b.call(b.ident("first"), b.ident("xs"))
	use := b.ident("x")

	c, sink := b.check(t,
		decl,
		b.localTyped("xs", strArr, lit),
		b.local("x", callExpr),
		b.exprStmt(use),
	)
	expectClean(t, sink)

	xType, _ := c.NarrowedTypeAt(use.Pos())
	if xType != types.String {
		t.Errorf("inferred call result is %s, want string", xType)
	}
}

func TestArityErrors(t *testing.T) {
	b := newBuilder()
	_, sink := b.check(t,
		b.exprStmt(b.call(b.ident("tostring"))),
		b.exprStmt(b.call(b.ident("tostring"), b.num(1), b.num(2))),
	)
	expectKinds(t, sink, diag.WrongArity, diag.WrongArity)
}

func TestNotCallable(t *testing.T) {
	b := newBuilder()
	_, sink := b.check(t,
		b.local("n", b.num(1)),
		b.exprStmt(b.call(b.ident("n"))),
	)
	expectKinds(t, sink, diag.InvalidOperator)
}

func TestMatchExhaustive(t *testing.T) {
	b := newBuilder()

	union := &ast.UnionTypeExpr{Members: []ast.TypeExpr{
		&ast.LiteralTypeExpr{Value: b.str("on")},
		&ast.LiteralTypeExpr{Value: b.str("off")},
	}}
	union.Position = b.pos()

	full := &ast.MatchStatement{
		Discriminant: b.ident("state"),
		Arms: []ast.MatchArm{
			{Position: b.pos(), Pattern: b.str("on"), Body: b.block()},
			{Position: b.pos(), Pattern: b.str("off"), Body: b.block()},
		},
	}
	full.Position = b.pos()

	_, sink := b.check(t,
		b.localTyped("state", union, b.str("on")),
		full,
	)
	expectClean(t, sink)
}

func TestMatchIncomplete(t *testing.T) {
	b := newBuilder()

	union := &ast.UnionTypeExpr{Members: []ast.TypeExpr{
		&ast.LiteralTypeExpr{Value: b.str("on")},
		&ast.LiteralTypeExpr{Value: b.str("off")},
	}}
	union.Position = b.pos()

	partial := &ast.MatchStatement{
		Discriminant: b.ident("state"),
		Arms: []ast.MatchArm{
			{Position: b.pos(), Pattern: b.str("on"), Body: b.block()},
		},
	}
	partial.Position = b.pos()

	_, sink := b.check(t,
		b.localTyped("state", union, b.str("on")),
		partial,
	)
	expectKinds(t, sink, diag.IncompleteMatch)
}

func TestMatchWildcardCoversRest(t *testing.T) {
	b := newBuilder()

	m := &ast.MatchStatement{
		Discriminant: b.ident("s"),
		Arms: []ast.MatchArm{
			{Position: b.pos(), Pattern: b.str("a"), Body: b.block()},
			{Position: b.pos(), Pattern: nil, Body: b.block()},
		},
	}
	m.Position = b.pos()

	_, sink := b.check(t,
		b.localTyped("s", b.typeName("string"), b.str("a")),
		m,
	)
	expectClean(t, sink)
}

func TestUtilityTypePartial(t *testing.T) {
	b := newBuilder()

	shape := &ast.TableTypeExpr{Fields: []ast.TableTypeField{
		{Name: b.name("x"), Type: b.typeName("number")},
		{Name: b.name("y"), Type: b.typeName("number")},
	}}
	shape.Position = b.pos()
	alias := &ast.TypeAliasStatement{Name: b.name("Point"), Value: shape}
	alias.Position = b.pos()

	// local p: Partial<Point> = {x = 1}
	lit := &ast.TableLiteral{Fields: []ast.TableField{
		{NameKey: b.name("x"), Value: b.num(1)},
	}}
	lit.Position = b.pos()

	_, sink := b.check(t,
		alias,
		b.localTyped("p", b.typeName("Partial", b.typeName("Point")), lit),
	)
	expectClean(t, sink)
}

func TestUtilityTypePickRejectsMissing(t *testing.T) {
	b := newBuilder()

	shape := &ast.TableTypeExpr{Fields: []ast.TableTypeField{
		{Name: b.name("x"), Type: b.typeName("number")},
		{Name: b.name("y"), Type: b.typeName("number")},
	}}
	shape.Position = b.pos()
	alias := &ast.TypeAliasStatement{Name: b.name("Point"), Value: shape}
	alias.Position = b.pos()

	pickX := b.typeName("Pick",
		b.typeName("Point"),
		func() ast.TypeExpr {
			lt := &ast.LiteralTypeExpr{Value: b.str("x")}
			lt.Position = b.pos()
			return lt
		}(),
	)

	// local p: Pick<Point, "x"> = {y = 2} must fail.
	lit := &ast.TableLiteral{Fields: []ast.TableField{
		{NameKey: b.name("y"), Value: b.num(2)},
	}}
	lit.Position = b.pos()

	_, sink := b.check(t,
		alias,
		b.localTyped("p", pickX, lit),
	)
	if !sink.HasErrors() {
		t.Fatalf("Pick<Point, \"x\"> should reject a table without x")
	}
}

func TestRecursiveAlias(t *testing.T) {
	b := newBuilder()

	// type Tree = {value: number, left: Tree | nil}
	tree := &ast.TableTypeExpr{Fields: []ast.TableTypeField{
		{Name: b.name("value"), Type: b.typeName("number")},
		{Name: b.name("left"), Type: func() ast.TypeExpr {
			u := &ast.UnionTypeExpr{Members: []ast.TypeExpr{
				b.typeName("Tree"), b.typeName("nil"),
			}}
			u.Position = b.pos()
			return u
		}()},
	}}
	tree.Position = b.pos()
	alias := &ast.TypeAliasStatement{Name: b.name("Tree"), Value: tree}
	alias.Position = b.pos()

	leaf := &ast.TableLiteral{Fields: []ast.TableField{
		{NameKey: b.name("value"), Value: b.num(1)},
		{NameKey: b.name("left"), Value: b.null()},
	}}
	leaf.Position = b.pos()

	_, sink := b.check(t,
		alias,
		b.localTyped("t", b.typeName("Tree"), leaf),
	)
	expectClean(t, sink)
}
