package types

import (
	"fmt"
	"strings"
)

// typeString renders a type, cutting recursion off at types already
// being printed. Named forms (aliases, generics, instantiations) print
// by name, so recursive structures normally never hit the cutoff.
func typeString(t Type, seen map[Type]bool) string {
	if t == nil {
		return "<nil>"
	}
	if seen[t] {
		return "..."
	}

	switch tt := t.(type) {
	case *Primitive:
		return tt.name
	case *LiteralType:
		switch tt.Kind {
		case BooleanLiteral:
			if tt.Bool {
				return "true"
			}
			return "false"
		case NumberLiteral:
			return fmt.Sprintf("%g", tt.Num)
		case IntegerLiteral:
			return fmt.Sprintf("%d", tt.Int)
		default:
			return fmt.Sprintf("%q", tt.Str)
		}
	case *AliasType:
		return tt.Name.String()
	case *TypeRef:
		return tt.Name.String()
	case *TypeParameterType:
		return tt.Parameter.Name.String()
	case *InferType:
		return "infer " + tt.Parameter.Name.String()
	case *GenericType:
		var sb strings.Builder
		sb.WriteString(tt.Name.String())
		sb.WriteByte('<')
		for i, p := range tt.TypeParameters {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.Name.String())
		}
		sb.WriteByte('>')
		return sb.String()
	case *InstantiatedType:
		var sb strings.Builder
		sb.WriteString(tt.Generic.Name.String())
		sb.WriteByte('<')
		for i, arg := range tt.TypeArguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(childString(arg, t, seen))
		}
		sb.WriteByte('>')
		return sb.String()
	case *TableType:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, f := range tt.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			if f.Readonly {
				sb.WriteString("readonly ")
			}
			sb.WriteString(f.Name.String())
			if f.Optional {
				sb.WriteByte('?')
			}
			sb.WriteString(": ")
			sb.WriteString(childString(f.Type, t, seen))
		}
		if tt.Index != nil {
			if len(tt.Fields) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('[')
			sb.WriteString(childString(tt.Index.Key, t, seen))
			sb.WriteString("]: ")
			sb.WriteString(childString(tt.Index.Value, t, seen))
		}
		sb.WriteByte('}')
		return sb.String()
	case *ArrayType:
		elem := childString(tt.Element, t, seen)
		if needsParens(tt.Element) {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case *TupleType:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range tt.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(childString(e, t, seen))
		}
		sb.WriteByte(']')
		return sb.String()
	case *UnionType:
		return joinMembers(tt.Types, " | ", t, seen)
	case *IntersectionType:
		return joinMembers(tt.Types, " & ", t, seen)
	case *FunctionType:
		var sb strings.Builder
		if len(tt.TypeParams) > 0 {
			sb.WriteByte('<')
			for i, p := range tt.TypeParams {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(p.Name.String())
			}
			sb.WriteByte('>')
		}
		sb.WriteByte('(')
		for i, p := range tt.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			if p.Name.Valid() {
				sb.WriteString(p.Name.String())
				if p.Optional {
					sb.WriteByte('?')
				}
				sb.WriteString(": ")
			}
			sb.WriteString(childString(p.Type, t, seen))
		}
		if tt.RestType != nil {
			if len(tt.Params) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("...: ")
			sb.WriteString(childString(tt.RestType, t, seen))
		}
		sb.WriteString(") -> ")
		switch len(tt.Returns) {
		case 0:
			sb.WriteString("void")
		case 1:
			sb.WriteString(childString(tt.Returns[0], t, seen))
		default:
			sb.WriteByte('(')
			for i, r := range tt.Returns {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(childString(r, t, seen))
			}
			sb.WriteByte(')')
		}
		return sb.String()
	case *KeyofType:
		return "keyof " + childString(tt.Operand, t, seen)
	case *IndexedAccessType:
		return childString(tt.Object, t, seen) + "[" + childString(tt.Index, t, seen) + "]"
	case *ConditionalType:
		return fmt.Sprintf("%s extends %s ? %s : %s",
			childString(tt.Check, t, seen),
			childString(tt.Extends, t, seen),
			childString(tt.True, t, seen),
			childString(tt.False, t, seen))
	case *MappedType:
		var sb strings.Builder
		sb.WriteByte('{')
		switch tt.Readonly {
		case ModifierAdd:
			sb.WriteString("+readonly ")
		case ModifierRemove:
			sb.WriteString("-readonly ")
		}
		sb.WriteByte('[')
		sb.WriteString(tt.TypeParameter.Name.String())
		sb.WriteString(" in ")
		sb.WriteString(childString(tt.Constraint, t, seen))
		sb.WriteByte(']')
		switch tt.Optional {
		case ModifierAdd:
			sb.WriteString("+?")
		case ModifierRemove:
			sb.WriteString("-?")
		}
		sb.WriteString(": ")
		sb.WriteString(childString(tt.Value, t, seen))
		sb.WriteByte('}')
		return sb.String()
	case *TemplateLiteralType:
		var sb strings.Builder
		sb.WriteByte('`')
		for _, p := range tt.Parts {
			if p.Type != nil {
				sb.WriteString("${")
				sb.WriteString(childString(p.Type, t, seen))
				sb.WriteByte('}')
			} else {
				sb.WriteString(p.Text)
			}
		}
		sb.WriteByte('`')
		return sb.String()
	}
	return fmt.Sprintf("%T", t)
}

func childString(child, parent Type, seen map[Type]bool) string {
	if seen == nil {
		seen = make(map[Type]bool)
	}
	seen[parent] = true
	s := typeString(child, seen)
	delete(seen, parent)
	return s
}

func joinMembers(members []Type, sep string, parent Type, seen map[Type]bool) string {
	parts := make([]string, len(members))
	for i, m := range members {
		s := childString(m, parent, seen)
		if needsParens(m) {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}

func needsParens(t Type) bool {
	switch t.(type) {
	case *UnionType, *IntersectionType, *FunctionType, *ConditionalType:
		return true
	}
	return false
}
