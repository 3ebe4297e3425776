package builtins

import (
	"lunatype/pkg/intern"
	"lunatype/pkg/types"
)

// Globals builds the types of the predeclared Lua functions. The
// checker defines these as const function bindings in the outermost
// scope; `type` and `assert` additionally get special treatment from
// the narrowing engine.
func Globals(names *intern.Interner) map[intern.Name]types.Type {
	out := make(map[intern.Name]types.Type)
	def := func(name string, t types.Type) {
		out[names.Intern(name)] = t
	}

	v := names.Intern("v")
	msg := names.Intern("message")

	typeResult := types.NewUnionType(
		types.NewStringLiteral("nil"),
		types.NewStringLiteral("boolean"),
		types.NewStringLiteral("number"),
		types.NewStringLiteral("string"),
		types.NewStringLiteral("table"),
		types.NewStringLiteral("function"),
		types.NewStringLiteral("userdata"),
		types.NewStringLiteral("thread"),
	)
	def("type", types.NewFunctionType(
		[]types.Param{{Name: v, Type: types.Unknown}},
		typeResult,
	))

	// assert narrows its argument: the code after the call sees v
	// without nil and false.
	assertT := &types.TypeParameter{Name: names.Intern("T")}
	assertRef := &types.TypeParameterType{Parameter: assertT}
	def("assert", &types.FunctionType{
		TypeParams: []*types.TypeParameter{assertT},
		Params: []types.Param{
			{Name: v, Type: assertRef},
			{Name: msg, Type: types.String, Optional: true},
		},
		Returns:   []types.Type{assertRef},
		Predicate: &types.TypePredicate{Param: v, Type: assertRef, Asserts: true},
	})

	def("print", &types.FunctionType{RestType: types.Unknown})

	def("tostring", types.NewFunctionType(
		[]types.Param{{Name: v, Type: types.Unknown}},
		types.String,
	))

	def("tonumber", &types.FunctionType{
		Params: []types.Param{
			{Name: v, Type: types.Unknown},
			{Name: names.Intern("base"), Type: types.Integer, Optional: true},
		},
		Returns: []types.Type{types.NewUnionType(types.Number, types.Nil)},
	})

	def("error", &types.FunctionType{
		Params: []types.Param{
			{Name: msg, Type: types.Unknown},
			{Name: names.Intern("level"), Type: types.Integer, Optional: true},
		},
		Returns: []types.Type{types.Never},
	})

	// pairs and ipairs type loosely here; generic-for loops over a
	// typed table get their variable types from the table itself.
	anyTable := types.NewTableType().WithIndex(types.Unknown, types.Unknown)
	iterator := &types.FunctionType{
		Returns: []types.Type{types.Unknown, types.Unknown},
	}
	def("pairs", types.NewFunctionType(
		[]types.Param{{Name: names.Intern("t"), Type: anyTable}},
		iterator,
	))
	def("ipairs", types.NewFunctionType(
		[]types.Param{{Name: names.Intern("t"), Type: anyTable}},
		iterator,
	))

	setmetaT := &types.TypeParameter{Name: names.Intern("T")}
	setmetaRef := &types.TypeParameterType{Parameter: setmetaT}
	def("setmetatable", &types.FunctionType{
		TypeParams: []*types.TypeParameter{setmetaT},
		Params: []types.Param{
			{Name: names.Intern("t"), Type: setmetaRef},
			{Name: names.Intern("mt"), Type: types.NewUnionType(anyTable, types.Nil)},
		},
		Returns: []types.Type{setmetaRef},
	})

	def("rawget", types.NewFunctionType(
		[]types.Param{
			{Name: names.Intern("t"), Type: anyTable},
			{Name: names.Intern("k"), Type: types.Unknown},
		},
		types.Unknown,
	))
	def("rawset", types.NewFunctionType(
		[]types.Param{
			{Name: names.Intern("t"), Type: anyTable},
			{Name: names.Intern("k"), Type: types.Unknown},
			{Name: v, Type: types.Unknown},
		},
		anyTable,
	))

	def("select", &types.FunctionType{
		Params:   []types.Param{{Name: names.Intern("n"), Type: types.NewUnionType(types.Integer, types.NewStringLiteral("#"))}},
		RestType: types.Unknown,
		Returns:  []types.Type{types.Unknown},
	})

	return out
}
