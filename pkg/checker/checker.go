package checker

import (
	"fmt"

	"lunatype/pkg/ast"
	"lunatype/pkg/builtins"
	"lunatype/pkg/diag"
	"lunatype/pkg/intern"
	"lunatype/pkg/source"
	"lunatype/pkg/types"
)

// Resolver supplies the public surface of other modules, for
// require() calls. The module registry implements it.
type Resolver interface {
	LookupModule(name string) (*PublicSymbolTable, bool)
}

// Options tune checking behavior.
type Options struct {
	// ImplicitParamType types unannotated parameters. Defaults to
	// unknown, which forces narrowing or annotation before use.
	ImplicitParamType types.Type
	// Resolver resolves require() targets; nil rejects all requires.
	Resolver Resolver
}

// Checker type-checks one chunk. It owns a compatibility engine and
// a scope chain; diagnostics go to the sink. A Checker is
// single-goroutine; concurrent checking uses one Checker per chunk.
type Checker struct {
	names  *intern.Interner
	compat *types.Compat
	sink   diag.Sink
	opts   Options

	file *source.File
	env  *Environment

	// fn is the function currently being checked, nil at top level.
	fn *functionContext

	// narrowed records the type each identifier use resolved to,
	// keyed by position. Tooling reads types back through this.
	narrowed map[diag.Position]types.Type

	// callReturns keeps the full return list of calls in tail
	// position, so multi-assignments can spread them.
	callReturns map[diag.Position][]types.Type
}

type functionContext struct {
	declared []types.Type // declared return types, nil when inferred
	inferred [][]types.Type
	vararg   types.Type
}

func New(names *intern.Interner, sink diag.Sink, opts Options) *Checker {
	if names == nil {
		names = intern.New()
	}
	if opts.ImplicitParamType == nil {
		opts.ImplicitParamType = types.Unknown
	}
	c := &Checker{
		names:       names,
		compat:      types.NewCompat(names),
		sink:        sink,
		opts:        opts,
		narrowed:    make(map[diag.Position]types.Type),
		callReturns: make(map[diag.Position][]types.Type),
	}
	c.env = c.globalEnvironment()
	return c
}

// Names exposes the interner so callers can build lookups.
func (c *Checker) Names() *intern.Interner { return c.names }

// Compat exposes the compatibility engine, mainly for tests and
// tooling that want to ask assignability questions afterwards.
func (c *Checker) Compat() *types.Compat { return c.compat }

// NarrowedTypeAt reports the type an expression at pos checked as.
func (c *Checker) NarrowedTypeAt(pos diag.Position) (types.Type, bool) {
	t, ok := c.narrowed[pos]
	return t, ok
}

func (c *Checker) globalEnvironment() *Environment {
	env := NewEnvironment()
	for name, t := range builtins.Globals(c.names) {
		env.Define(&SymbolInfo{Name: name, Kind: SymbolFunction, Type: t})
	}
	for name, g := range builtins.Utilities(c.names) {
		env.DefineTypeAlias(name, g)
	}
	for name, t := range map[string]types.Type{
		"nil":     types.Nil,
		"boolean": types.Boolean,
		"number":  types.Number,
		"integer": types.Integer,
		"string":  types.String,
		"unknown": types.Unknown,
		"never":   types.Never,
		"void":    types.Void,
	} {
		env.DefineTypeAlias(c.names.Intern(name), t)
	}
	return env
}

// Check walks the chunk and returns its public surface. Diagnostics
// accumulate in the sink; the symbol table is produced even for
// chunks with errors, so dependents can keep checking.
func (c *Checker) Check(chunk *ast.Chunk, file *source.File) *PublicSymbolTable {
	c.file = file
	moduleEnv := NewEnclosedEnvironment(c.env)
	c.env = moduleEnv
	defer func() { c.env = moduleEnv.outer }()

	c.declareTypeNames(chunk.Statements)
	c.resolveTypeDeclarations(chunk.Statements)
	for _, stmt := range chunk.Statements {
		c.checkStatement(stmt)
	}
	return c.publicSurface(chunk.Name, moduleEnv)
}

func (c *Checker) errorf(pos diag.Position, kind diag.Kind, format string, args ...interface{}) {
	pos.Source = c.file
	c.sink.Report(diag.Errorf(kind, pos, format, args...))
}

func (c *Checker) mismatch(pos diag.Position, got, want types.Type) {
	c.errorf(pos, diag.TypeMismatch, "type %s is not assignable to %s", got, want)
}

func (c *Checker) internal(pos diag.Position, format string, args ...interface{}) {
	pos.Source = c.file
	c.sink.Report(diag.Errorf(diag.Internal, pos, format, args...))
}

// withScope runs body in a fresh child scope.
func (c *Checker) withScope(body func()) {
	prev := c.env
	c.env = NewEnclosedEnvironment(prev)
	body()
	c.env = prev
}

func (c *Checker) describeSymbol(info *SymbolInfo) string {
	return fmt.Sprintf("%s %s", info.Kind, info.Name)
}
