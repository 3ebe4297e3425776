package checker

import (
	"sort"

	"lunatype/pkg/intern"
	"lunatype/pkg/types"
)

// PublicSymbolTable is a module's checked surface: the exported value
// bindings and type declarations, immutable once built.
type PublicSymbolTable struct {
	Module  string
	Symbols map[intern.Name]*SymbolInfo
	Types   map[intern.Name]types.Type

	table *types.TableType
}

// Table renders the exported value bindings as a table type, which is
// what require() evaluates to.
func (p *PublicSymbolTable) Table() *types.TableType {
	return p.table
}

// SymbolNames lists exported value names in stable order.
func (p *PublicSymbolTable) SymbolNames() []string {
	out := make([]string, 0, len(p.Symbols))
	for name := range p.Symbols {
		out = append(out, name.String())
	}
	sort.Strings(out)
	return out
}

func (c *Checker) publicSurface(module string, env *Environment) *PublicSymbolTable {
	out := &PublicSymbolTable{
		Module:  module,
		Symbols: make(map[intern.Name]*SymbolInfo),
		Types:   make(map[intern.Name]types.Type),
		table:   types.NewTableType(),
	}
	names := make([]intern.Name, 0, len(env.symbols))
	for name, info := range env.symbols {
		if info.Exported {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return names[i].String() < names[j].String()
	})
	for _, name := range names {
		info := env.symbols[name]
		out.Symbols[name] = info
		out.table.Fields = append(out.table.Fields, types.Field{
			Name: name, Type: info.Type, Readonly: true,
		})
	}
	for name, t := range env.typeAliases {
		out.Types[name] = t
	}
	return out
}
