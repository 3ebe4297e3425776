package types

import (
	"testing"

	"lunatype/pkg/intern"
)

func mustEval(t *testing.T, e *Evaluator, typ Type) Type {
	t.Helper()
	got, ok := e.Eval(typ)
	if !ok {
		t.Fatalf("Eval(%s) failed", typ)
	}
	return got
}

func TestKeyofTable(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	point := NewTableType().
		WithField(names.Intern("x"), Number).
		WithField(names.Intern("y"), Number)

	keys := mustEval(t, c.Evaluator(), &KeyofType{Operand: point})
	want := NewUnionType(NewStringLiteral("x"), NewStringLiteral("y"))
	if !keys.Equals(want) {
		t.Errorf("keyof {x, y} = %s, want %s", keys, want)
	}

	if keys := mustEval(t, c.Evaluator(), &KeyofType{Operand: NewArrayType(String)}); keys != Integer {
		t.Errorf("keyof string[] = %s, want integer", keys)
	}

	if _, ok := c.Evaluator().Eval(&KeyofType{Operand: Number}); ok {
		t.Errorf("keyof number should fail")
	}
}

func TestKeyofUnionIsCommonKeys(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	a := NewTableType().
		WithField(names.Intern("id"), Number).
		WithField(names.Intern("left"), String)
	b := NewTableType().
		WithField(names.Intern("id"), Number).
		WithField(names.Intern("right"), String)

	keys := mustEval(t, c.Evaluator(), &KeyofType{Operand: NewUnionType(a, b)})
	if !keys.Equals(NewStringLiteral("id")) {
		t.Errorf("keyof (a | b) = %s, want \"id\"", keys)
	}
}

func TestIndexedAccess(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	user := NewTableType().
		WithField(names.Intern("name"), String).
		WithField(names.Intern("age"), Integer)

	got := mustEval(t, c.Evaluator(), &IndexedAccessType{
		Object: user, Index: NewStringLiteral("name"),
	})
	if got != String {
		t.Errorf("user[\"name\"] = %s, want string", got)
	}

	got = mustEval(t, c.Evaluator(), &IndexedAccessType{
		Object: user,
		Index:  NewUnionType(NewStringLiteral("name"), NewStringLiteral("age")),
	})
	if !got.Equals(NewUnionType(String, Integer)) {
		t.Errorf("user[\"name\" | \"age\"] = %s, want string | integer", got)
	}

	if _, ok := c.Evaluator().Eval(&IndexedAccessType{
		Object: user, Index: NewStringLiteral("missing"),
	}); ok {
		t.Errorf("access of a missing key should fail")
	}

	pair := NewTupleType(String, Number)
	got = mustEval(t, c.Evaluator(), &IndexedAccessType{
		Object: pair, Index: NewIntegerLiteral(1),
	})
	if got != String {
		t.Errorf("pair[1] = %s, want string (1-based)", got)
	}
	got = mustEval(t, c.Evaluator(), &IndexedAccessType{Object: pair, Index: Integer})
	if !got.Equals(NewUnionType(String, Number)) {
		t.Errorf("pair[integer] = %s, want string | number", got)
	}
}

func TestMappedTypePartial(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	src := NewTableType().
		WithField(names.Intern("a"), Number).
		WithField(names.Intern("b"), String)

	p := &TypeParameter{Name: names.Intern("P")}
	partial := &MappedType{
		TypeParameter: p,
		Constraint:    &KeyofType{Operand: src},
		Value:         &IndexedAccessType{Object: src, Index: &TypeParameterType{Parameter: p}},
		Optional:      ModifierAdd,
	}

	got, ok := c.Evaluator().Eval(partial)
	if !ok {
		t.Fatalf("Eval(partial) failed")
	}
	tbl, ok := got.(*TableType)
	if !ok {
		t.Fatalf("mapped type evaluated to %s, want a table", got)
	}
	for _, f := range tbl.Fields {
		if !f.Optional {
			t.Errorf("field %s should be optional", f.Name)
		}
	}
	if f, ok := tbl.FieldByName(names.Intern("a")); !ok || f.Type != Number {
		t.Errorf("field a missing or mistyped")
	}
}

func TestMappedTypeRequiredRemovesOptional(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	src := NewTableType().WithOptionalField(names.Intern("a"), Number)
	p := &TypeParameter{Name: names.Intern("P")}
	required := &MappedType{
		TypeParameter: p,
		Constraint:    &KeyofType{Operand: src},
		Value:         &IndexedAccessType{Object: src, Index: &TypeParameterType{Parameter: p}},
		Optional:      ModifierRemove,
	}

	got := mustEval(t, c.Evaluator(), required)
	tbl := got.(*TableType)
	if f, _ := tbl.FieldByName(names.Intern("a")); f == nil || f.Optional {
		t.Errorf("required mapped type should strip the optional flag, got %s", got)
	}
}

func TestMappedTypeRecord(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	p := &TypeParameter{Name: names.Intern("P")}
	record := &MappedType{
		TypeParameter: p,
		Constraint:    String,
		Value:         Boolean,
	}
	got := mustEval(t, c.Evaluator(), record)
	tbl, ok := got.(*TableType)
	if !ok || tbl.Index == nil {
		t.Fatalf("Record over string should yield an index signature, got %s", got)
	}
	if tbl.Index.Key != String || tbl.Index.Value != Boolean {
		t.Errorf("index signature = [%s]: %s, want [string]: boolean", tbl.Index.Key, tbl.Index.Value)
	}
}

func TestMappedTypeUnionKeyIndex(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	p := &TypeParameter{Name: names.Intern("K")}
	got := mustEval(t, c.Evaluator(), &MappedType{
		TypeParameter: p,
		Constraint:    NewUnionType(String, Integer),
		Value:         Boolean,
	})

	tbl, ok := got.(*TableType)
	if !ok || tbl.Index == nil {
		t.Fatalf("mapped over string | integer = %s, want an indexed table", got)
	}
	wantKey := NewUnionType(String, Integer)
	if !tbl.Index.Key.Equals(wantKey) {
		t.Errorf("index key is %s, want %s", tbl.Index.Key, wantKey)
	}
	if tbl.Index.Value != Boolean {
		t.Errorf("index value is %s, want boolean", tbl.Index.Value)
	}
}

func TestConditionalDistributesOverUnion(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	// T extends string ? true : false, for T = string | number.
	cond := &ConditionalType{
		Check:   NewUnionType(String, Number),
		Extends: String,
		True:    NewBooleanLiteral(true),
		False:   NewBooleanLiteral(false),
	}
	got := mustEval(t, c.Evaluator(), cond)
	want := NewUnionType(NewBooleanLiteral(true), NewBooleanLiteral(false))
	if !got.Equals(want) {
		t.Errorf("distributed conditional = %s, want %s", got, want)
	}
}

func TestConditionalInferBinding(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	elem := &TypeParameter{Name: names.Intern("E")}
	cond := &ConditionalType{
		Check:   NewArrayType(String),
		Extends: NewArrayType(&InferType{Parameter: elem}),
		True:    &TypeParameterType{Parameter: elem},
		False:   Never,
	}
	got := mustEval(t, c.Evaluator(), cond)
	if got != String {
		t.Errorf("inferred element = %s, want string", got)
	}
}

func TestConditionalReturnTypeShape(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	r := &TypeParameter{Name: names.Intern("R")}
	fn := NewFunctionType([]Param{{Name: names.Intern("x"), Type: Number}}, String)
	cond := &ConditionalType{
		Check: fn,
		Extends: &FunctionType{
			RestType: Unknown,
			Returns:  []Type{&InferType{Parameter: r}},
		},
		True:  &TypeParameterType{Parameter: r},
		False: Never,
	}
	got := mustEval(t, c.Evaluator(), cond)
	if got != String {
		t.Errorf("extracted return type = %s, want string", got)
	}
}

func TestTemplateCollapsesFiniteUnion(t *testing.T) {
	c := NewCompat(nil)

	tpl := NewTemplateLiteralType(
		TemplatePart{Text: "btn-"},
		TemplatePart{Type: NewUnionType(NewStringLiteral("ok"), NewStringLiteral("cancel"))},
	)
	got := mustEval(t, c.Evaluator(), tpl)
	want := NewUnionType(NewStringLiteral("btn-ok"), NewStringLiteral("btn-cancel"))
	if !got.Equals(want) {
		t.Errorf("collapsed template = %s, want %s", got, want)
	}

	open := NewTemplateLiteralType(TemplatePart{Text: "x"}, TemplatePart{Type: String})
	got = mustEval(t, c.Evaluator(), open)
	if _, ok := got.(*TemplateLiteralType); !ok {
		t.Errorf("open template should stay a pattern, got %s", got)
	}
}

func TestDistributiveConditionalExcludes(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	k := &TypeParameter{Name: names.Intern("K")}
	u := &TypeParameter{Name: names.Intern("U")}
	exclude := &ConditionalType{
		Check:   &TypeParameterType{Parameter: k},
		Extends: &TypeParameterType{Parameter: u},
		True:    Never,
		False:   &TypeParameterType{Parameter: k},
	}

	keys := NewUnionType(NewStringLiteral("a"), NewStringLiteral("b"), NewStringLiteral("c"))
	got := c.normalize(Substitute(exclude, map[*TypeParameter]Type{
		k: keys,
		u: NewStringLiteral("a"),
	}))
	want := NewUnionType(NewStringLiteral("b"), NewStringLiteral("c"))
	if !got.Equals(want) {
		t.Errorf("excluding \"a\" from keys = %s, want %s", got, want)
	}
}

func TestOmitPickPartitionFields(t *testing.T) {
	names := intern.New()
	c := NewCompat(names)

	obj := NewTableType().
		WithField(names.Intern("a"), Number).
		WithField(names.Intern("b"), String).
		WithField(names.Intern("c"), Boolean)

	pickOver := func(constraint Type) *TableType {
		p := &TypeParameter{Name: names.Intern("P")}
		got := mustEval(t, c.Evaluator(), &MappedType{
			TypeParameter: p,
			Constraint:    constraint,
			Value:         &IndexedAccessType{Object: obj, Index: &TypeParameterType{Parameter: p}},
		})
		tbl, ok := got.(*TableType)
		if !ok {
			t.Fatalf("mapped over %s = %s, not a table", constraint, got)
		}
		return tbl
	}

	picked := pickOver(NewStringLiteral("a"))
	rest := pickOver(NewUnionType(NewStringLiteral("b"), NewStringLiteral("c")))

	if len(picked.Fields)+len(rest.Fields) != len(obj.Fields) {
		t.Errorf("pick and rest cover %d fields, want %d", len(picked.Fields)+len(rest.Fields), len(obj.Fields))
	}
	for _, f := range picked.Fields {
		if _, overlap := rest.FieldByName(f.Name); overlap {
			t.Errorf("field %s appears in both halves", f.Name)
		}
	}
}
