package checker

import (
	"lunatype/pkg/diag"
	"lunatype/pkg/intern"
	"lunatype/pkg/types"
)

// SymbolKind classifies what a name was declared as.
type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolConst
	SymbolFunction
	SymbolParameter
	SymbolTypeAlias
	SymbolInterface
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolConst:
		return "const"
	case SymbolFunction:
		return "function"
	case SymbolParameter:
		return "parameter"
	case SymbolTypeAlias:
		return "type alias"
	case SymbolInterface:
		return "interface"
	}
	return "symbol"
}

// SymbolInfo is everything the checker records about a binding.
type SymbolInfo struct {
	Name     intern.Name
	Kind     SymbolKind
	Type     types.Type
	Declared diag.Position
	Exported bool
}

// IsConst reports whether assignment to the binding is rejected.
func (s *SymbolInfo) IsConst() bool {
	return s.Kind == SymbolConst || s.Kind == SymbolFunction
}

// Environment is one lexical scope. Scopes chain through outer;
// lookups walk the chain. Narrowings overlay value symbols without
// touching the declaration, so dropping a narrowing is just deleting
// the overlay entry.
type Environment struct {
	outer *Environment

	symbols     map[intern.Name]*SymbolInfo
	typeAliases map[intern.Name]types.Type
	typeParams  map[intern.Name]*types.TypeParameter
	narrowings  map[intern.Name]types.Type
}

func NewEnvironment() *Environment {
	return &Environment{
		symbols: make(map[intern.Name]*SymbolInfo),
	}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Define adds a binding to this scope. It reports false when the name
// is already bound in this same scope; shadowing an outer binding is
// allowed.
func (e *Environment) Define(info *SymbolInfo) bool {
	if _, exists := e.symbols[info.Name]; exists {
		return false
	}
	e.symbols[info.Name] = info
	return true
}

// Resolve finds a binding, innermost scope first.
func (e *Environment) Resolve(name intern.Name) (*SymbolInfo, bool) {
	for env := e; env != nil; env = env.outer {
		if info, ok := env.symbols[name]; ok {
			return info, true
		}
	}
	return nil, false
}

// TypeOf gives the effective type of a name: the nearest narrowing if
// one is active, otherwise the declared type.
func (e *Environment) TypeOf(name intern.Name) (types.Type, bool) {
	for env := e; env != nil; env = env.outer {
		if t, ok := env.narrowings[name]; ok {
			return t, true
		}
		if info, ok := env.symbols[name]; ok {
			return info.Type, true
		}
	}
	return nil, false
}

// SetNarrowed installs a narrowing for name in this scope.
func (e *Environment) SetNarrowed(name intern.Name, t types.Type) {
	if e.narrowings == nil {
		e.narrowings = make(map[intern.Name]types.Type)
	}
	e.narrowings[name] = t
}

// ClearNarrowed removes the narrowing for name wherever it is active.
func (e *Environment) ClearNarrowed(name intern.Name) {
	for env := e; env != nil; env = env.outer {
		delete(env.narrowings, name)
	}
}

// InvalidateMutableNarrowings drops every narrowing whose binding is
// not const. Called after opaque calls, which may have rebound any
// mutable upvalue.
func (e *Environment) InvalidateMutableNarrowings() {
	for env := e; env != nil; env = env.outer {
		for name := range env.narrowings {
			if info, ok := e.Resolve(name); ok && info.IsConst() {
				continue
			}
			delete(env.narrowings, name)
		}
	}
}

// DefineTypeAlias binds a type name in this scope. The value is
// either a *types.AliasType or, for parameterized aliases, a
// *types.GenericType.
func (e *Environment) DefineTypeAlias(name intern.Name, t types.Type) bool {
	if e.typeAliases == nil {
		e.typeAliases = make(map[intern.Name]types.Type)
	}
	if _, exists := e.typeAliases[name]; exists {
		return false
	}
	e.typeAliases[name] = t
	return true
}

// ResolveTypeAlias finds a type name, innermost scope first.
func (e *Environment) ResolveTypeAlias(name intern.Name) (types.Type, bool) {
	for env := e; env != nil; env = env.outer {
		if t, ok := env.typeAliases[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// DefineTypeParameter brings a generic parameter into scope.
func (e *Environment) DefineTypeParameter(p *types.TypeParameter) {
	if e.typeParams == nil {
		e.typeParams = make(map[intern.Name]*types.TypeParameter)
	}
	e.typeParams[p.Name] = p
}

// ResolveTypeParameter finds a generic parameter in scope.
func (e *Environment) ResolveTypeParameter(name intern.Name) (*types.TypeParameter, bool) {
	for env := e; env != nil; env = env.outer {
		if p, ok := env.typeParams[name]; ok {
			return p, true
		}
	}
	return nil, false
}
