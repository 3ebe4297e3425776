package modules

import (
	"strings"
	"testing"

	"lunatype/pkg/ast"
	"lunatype/pkg/checker"
	"lunatype/pkg/diag"
	"lunatype/pkg/intern"
	"lunatype/pkg/source"
)

type chunkBuilder struct {
	names *intern.Interner
	line  int
}

func (b *chunkBuilder) pos() diag.Position {
	b.line++
	return diag.Position{Line: b.line, Column: 1}
}

func (b *chunkBuilder) module(name string, stmts ...ast.Statement) *Module {
	return &Module{
		Name:  name,
		File:  source.Synthetic(name+".tl", ""),
		Chunk: ast.NewChunk(name, stmts),
	}
}

func (b *chunkBuilder) exportedConst(name string, value int64) []ast.Statement {
	lit := &ast.NumberLiteral{Value: float64(value), Int: value, IsInt: true}
	lit.Position = b.pos()
	local := &ast.LocalStatement{
		Names:       []intern.Name{b.names.Intern(name)},
		Annotations: []ast.TypeExpr{nil},
		Values:      []ast.Expression{lit},
		IsConst:     true,
	}
	local.Position = b.pos()
	export := &ast.ExportStatement{Name: b.names.Intern(name)}
	export.Position = b.pos()
	return []ast.Statement{local, export}
}

// requireInto builds: local <binding> = require(<target>)
func (b *chunkBuilder) requireInto(binding, target string) ast.Statement {
	callee := &ast.Identifier{Name: b.names.Intern("require")}
	callee.Position = b.pos()
	arg := &ast.StringLiteral{Value: target}
	arg.Position = b.pos()
	call := &ast.CallExpression{Callee: callee, Args: []ast.Expression{arg}}
	call.Position = b.pos()
	local := &ast.LocalStatement{
		Names:       []intern.Name{b.names.Intern(binding)},
		Annotations: []ast.TypeExpr{nil},
		Values:      []ast.Expression{call},
		IsConst:     true,
	}
	local.Position = b.pos()
	return local
}

func (b *chunkBuilder) useField(obj, field string, want string) ast.Statement {
	objIdent := &ast.Identifier{Name: b.names.Intern(obj)}
	objIdent.Position = b.pos()
	access := &ast.FieldExpression{Object: objIdent, Name: b.names.Intern(field)}
	access.Position = b.pos()
	ann := &ast.TypeName{Name: b.names.Intern(want)}
	ann.Position = b.pos()
	local := &ast.LocalStatement{
		Names:       []intern.Name{b.names.Intern("use_" + field)},
		Annotations: []ast.TypeExpr{ann},
		Values:      []ast.Expression{access},
	}
	local.Position = b.pos()
	return local
}

func TestCheckAllOrdersDependencies(t *testing.T) {
	b := &chunkBuilder{names: intern.New()}

	config := b.module("config", b.exportedConst("max_depth", 8)...)

	engineStmts := []ast.Statement{
		b.requireInto("config", "config"),
		b.useField("config", "max_depth", "integer"),
	}
	engine := b.module("engine", engineStmts...)
	engine.Requires = []string{"config"}

	registry, diags, err := CheckAll([]*Module{engine, config}, b.names, checker.Options{})
	if err != nil {
		t.Fatalf("CheckAll failed: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if registry.Len() != 2 {
		t.Errorf("published %d modules, want 2", registry.Len())
	}

	surface, ok := registry.LookupModule("config")
	if !ok {
		t.Fatalf("config was not published")
	}
	if got := surface.SymbolNames(); len(got) != 1 || got[0] != "max_depth" {
		t.Errorf("config exports %v, want [max_depth]", got)
	}
}

func TestCheckAllDetectsCycle(t *testing.T) {
	b := &chunkBuilder{names: intern.New()}

	a := b.module("a")
	a.Requires = []string{"b"}
	bb := b.module("b")
	bb.Requires = []string{"a"}

	_, _, err := CheckAll([]*Module{a, bb}, b.names, checker.Options{})
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestCheckAllRejectsUnknownRequire(t *testing.T) {
	b := &chunkBuilder{names: intern.New()}
	m := b.module("main")
	m.Requires = []string{"ghost"}

	_, _, err := CheckAll([]*Module{m}, b.names, checker.Options{})
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected unknown module error, got %v", err)
	}
}

func TestPublishTwicePanics(t *testing.T) {
	r := NewRegistry()
	r.Publish("m", &checker.PublicSymbolTable{Module: "m"})
	defer func() {
		if recover() == nil {
			t.Errorf("second Publish should panic")
		}
	}()
	r.Publish("m", &checker.PublicSymbolTable{Module: "m"})
}

func TestScheduleLevels(t *testing.T) {
	b := &chunkBuilder{names: intern.New()}

	base := b.module("base")
	left := b.module("left")
	left.Requires = []string{"base"}
	right := b.module("right")
	right.Requires = []string{"base"}
	top := b.module("top")
	top.Requires = []string{"left", "right"}

	levels, err := scheduleLevels([]*Module{top, right, base, left})
	if err != nil {
		t.Fatalf("scheduleLevels failed: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("got %d levels, want 3", len(levels))
	}
	if levels[0][0].Name != "base" {
		t.Errorf("level 0 is %s, want base", levels[0][0].Name)
	}
	if len(levels[1]) != 2 {
		t.Errorf("level 1 has %d modules, want 2 (left and right together)", len(levels[1]))
	}
	if levels[2][0].Name != "top" {
		t.Errorf("level 2 is %s, want top", levels[2][0].Name)
	}
}
