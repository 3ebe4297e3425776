// Package builtins provides the predeclared environment: the utility
// type aliases and the Lua standard globals every chunk sees.
package builtins

import (
	"lunatype/pkg/intern"
	"lunatype/pkg/types"
)

// Utilities builds the predeclared generic type aliases, keyed by
// interned name. Each is defined in terms of the mapped and
// conditional primitives, so the evaluator gives them their meaning.
func Utilities(names *intern.Interner) map[intern.Name]*types.GenericType {
	out := make(map[intern.Name]*types.GenericType)
	add := func(g *types.GenericType) {
		out[g.Name] = g
	}

	param := func(name string) (*types.TypeParameter, types.Type) {
		p := &types.TypeParameter{Name: names.Intern(name)}
		return p, &types.TypeParameterType{Parameter: p}
	}

	// Partial<T> = {[P in keyof T]+?: T[P]}
	{
		t, tRef := param("T")
		p, pRef := param("P")
		add(&types.GenericType{
			Name:           names.Intern("Partial"),
			TypeParameters: []*types.TypeParameter{t},
			Body: &types.MappedType{
				TypeParameter: p,
				Constraint:    &types.KeyofType{Operand: tRef},
				Value:         &types.IndexedAccessType{Object: tRef, Index: pRef},
				Optional:      types.ModifierAdd,
			},
		})
	}

	// Required<T> = {[P in keyof T]-?: T[P]}
	{
		t, tRef := param("T")
		p, pRef := param("P")
		add(&types.GenericType{
			Name:           names.Intern("Required"),
			TypeParameters: []*types.TypeParameter{t},
			Body: &types.MappedType{
				TypeParameter: p,
				Constraint:    &types.KeyofType{Operand: tRef},
				Value:         &types.IndexedAccessType{Object: tRef, Index: pRef},
				Optional:      types.ModifierRemove,
			},
		})
	}

	// Readonly<T> = {+readonly [P in keyof T]: T[P]}
	{
		t, tRef := param("T")
		p, pRef := param("P")
		add(&types.GenericType{
			Name:           names.Intern("Readonly"),
			TypeParameters: []*types.TypeParameter{t},
			Body: &types.MappedType{
				TypeParameter: p,
				Constraint:    &types.KeyofType{Operand: tRef},
				Value:         &types.IndexedAccessType{Object: tRef, Index: pRef},
				Readonly:      types.ModifierAdd,
			},
		})
	}

	// Pick<T, K extends keyof T> = {[P in K]: T[P]}
	{
		t, tRef := param("T")
		k, kRef := param("K")
		k.Constraint = &types.KeyofType{Operand: tRef}
		p, pRef := param("P")
		add(&types.GenericType{
			Name:           names.Intern("Pick"),
			TypeParameters: []*types.TypeParameter{t, k},
			Body: &types.MappedType{
				TypeParameter: p,
				Constraint:    kRef,
				Value:         &types.IndexedAccessType{Object: tRef, Index: pRef},
			},
		})
	}

	// Exclude<T, U> = T extends U ? never : T
	var exclude *types.GenericType
	{
		t, tRef := param("T")
		u, uRef := param("U")
		exclude = &types.GenericType{
			Name:           names.Intern("Exclude"),
			TypeParameters: []*types.TypeParameter{t, u},
			Body: &types.ConditionalType{
				Check:   tRef,
				Extends: uRef,
				True:    types.Never,
				False:   tRef,
			},
		}
		add(exclude)
	}

	// Extract<T, U> = T extends U ? T : never
	{
		t, tRef := param("T")
		u, uRef := param("U")
		add(&types.GenericType{
			Name:           names.Intern("Extract"),
			TypeParameters: []*types.TypeParameter{t, u},
			Body: &types.ConditionalType{
				Check:   tRef,
				Extends: uRef,
				True:    tRef,
				False:   types.Never,
			},
		})
	}

	// Omit<T, K> = {[P in Exclude<keyof T, K>]: T[P]}
	{
		t, tRef := param("T")
		k, kRef := param("K")
		p, pRef := param("P")
		add(&types.GenericType{
			Name:           names.Intern("Omit"),
			TypeParameters: []*types.TypeParameter{t, k},
			Body: &types.MappedType{
				TypeParameter: p,
				Constraint: &types.InstantiatedType{
					Generic:       exclude,
					TypeArguments: []types.Type{&types.KeyofType{Operand: tRef}, kRef},
				},
				Value: &types.IndexedAccessType{Object: tRef, Index: pRef},
			},
		})
	}

	// Record<K extends string, V> = {[P in K]: V}
	{
		k, kRef := param("K")
		k.Constraint = types.NewUnionType(types.String, types.Number, types.Integer)
		v, vRef := param("V")
		p, _ := param("P")
		add(&types.GenericType{
			Name:           names.Intern("Record"),
			TypeParameters: []*types.TypeParameter{k, v},
			Body: &types.MappedType{
				TypeParameter: p,
				Constraint:    kRef,
				Value:         vRef,
			},
		})
	}

	// Nullable<T> = T | nil
	{
		t, tRef := param("T")
		add(&types.GenericType{
			Name:           names.Intern("Nullable"),
			TypeParameters: []*types.TypeParameter{t},
			Body:           types.NewUnionType(tRef, types.Nil),
		})
	}

	// NonNilable<T> = T extends nil ? never : T
	{
		t, tRef := param("T")
		add(&types.GenericType{
			Name:           names.Intern("NonNilable"),
			TypeParameters: []*types.TypeParameter{t},
			Body: &types.ConditionalType{
				Check:   tRef,
				Extends: types.Nil,
				True:    types.Never,
				False:   tRef,
			},
		})
	}

	// Parameters<F> = F extends (...: infer P) -> anything ? P : never
	{
		f, fRef := param("F")
		p, pRef := param("P")
		add(&types.GenericType{
			Name:           names.Intern("Parameters"),
			TypeParameters: []*types.TypeParameter{f},
			Body: &types.ConditionalType{
				Check: fRef,
				Extends: &types.FunctionType{
					RestType: &types.InferType{Parameter: p},
				},
				True:  pRef,
				False: types.Never,
			},
		})
	}

	// ReturnType<F> = F extends (...) -> infer R ? R : never
	{
		f, fRef := param("F")
		r, rRef := param("R")
		add(&types.GenericType{
			Name:           names.Intern("ReturnType"),
			TypeParameters: []*types.TypeParameter{f},
			Body: &types.ConditionalType{
				Check: fRef,
				Extends: &types.FunctionType{
					RestType: types.Unknown,
					Returns:  []types.Type{&types.InferType{Parameter: r}},
				},
				True:  rRef,
				False: types.Never,
			},
		})
	}

	return out
}
