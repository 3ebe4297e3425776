package types

// Instantiate applies a generic to explicit arguments, checking arity
// and constraints. Missing trailing arguments fall back to parameter
// defaults when declared.
func (c *Compat) Instantiate(g *GenericType, args []Type) (Type, error) {
	min := 0
	for _, p := range g.TypeParameters {
		if p.Default == nil {
			min++
		}
	}
	if len(args) < min || len(args) > len(g.TypeParameters) {
		return nil, &ArityError{Name: g.Name, Want: len(g.TypeParameters), Got: len(args)}
	}

	sub := make(map[*TypeParameter]Type, len(g.TypeParameters))
	full := make([]Type, len(g.TypeParameters))
	for i, p := range g.TypeParameters {
		var arg Type
		if i < len(args) {
			arg = args[i]
		} else {
			arg = Substitute(p.Default, sub)
		}
		if p.Constraint != nil {
			constraint := Substitute(p.Constraint, sub)
			if !c.IsAssignable(arg, constraint) {
				return nil, &ConstraintError{Param: p, Argument: arg}
			}
		}
		sub[p] = arg
		full[i] = arg
	}
	return &InstantiatedType{Generic: g, TypeArguments: full}, nil
}
