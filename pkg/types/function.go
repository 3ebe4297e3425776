package types

import "lunatype/pkg/intern"

// Param is a single function parameter.
type Param struct {
	Name     intern.Name
	Type     Type
	Optional bool
}

// TypePredicate records that a boolean-returning function narrows one
// of its parameters, e.g. `value is string`. When Asserts is set the
// function instead throws unless the predicate holds, and narrowing
// applies to the code after the call.
type TypePredicate struct {
	Param   intern.Name
	Type    Type
	Asserts bool
}

// FunctionType describes a callable. Lua functions return multiple
// values, so Returns is a slice; an empty slice means the function
// returns nothing useful and reads as void.
type FunctionType struct {
	TypeParams []*TypeParameter
	Params     []Param
	RestType   Type // element type of `...`, nil when not variadic
	Returns    []Type
	Predicate  *TypePredicate
}

func NewFunctionType(params []Param, returns ...Type) *FunctionType {
	return &FunctionType{Params: params, Returns: returns}
}

// Return gives the first return type, or Void for a bare function.
func (f *FunctionType) Return() Type {
	if len(f.Returns) == 0 {
		return Void
	}
	return f.Returns[0]
}

// MinArity counts the required parameters.
func (f *FunctionType) MinArity() int {
	n := 0
	for _, p := range f.Params {
		if !p.Optional {
			n++
		}
	}
	return n
}

func (f *FunctionType) String() string { return typeString(f, nil) }

func (f *FunctionType) Equals(other Type) bool { return equalTypes(f, other, nil) }

func (f *FunctionType) typeNode() {}
