package types

// KeyofType is the keyof operator applied to an operand, unevaluated.
type KeyofType struct {
	Operand Type
}

func (k *KeyofType) String() string { return typeString(k, nil) }

func (k *KeyofType) Equals(other Type) bool { return equalTypes(k, other, nil) }

func (k *KeyofType) typeNode() {}

// IndexedAccessType is T[K], unevaluated.
type IndexedAccessType struct {
	Object Type
	Index  Type
}

func (i *IndexedAccessType) String() string { return typeString(i, nil) }

func (i *IndexedAccessType) Equals(other Type) bool { return equalTypes(i, other, nil) }

func (i *IndexedAccessType) typeNode() {}

// ConditionalType is Check extends Extends ? True : False. Infer
// positions inside Extends bind parameters visible in True.
type ConditionalType struct {
	Check   Type
	Extends Type
	True    Type
	False   Type
}

func (c *ConditionalType) String() string { return typeString(c, nil) }

func (c *ConditionalType) Equals(other Type) bool { return equalTypes(c, other, nil) }

func (c *ConditionalType) typeNode() {}

// InferType introduces a fresh parameter inside the extends clause of
// a conditional type.
type InferType struct {
	Parameter *TypeParameter
}

func (i *InferType) String() string { return "infer " + i.Parameter.Name.String() }

func (i *InferType) Equals(other Type) bool { return equalTypes(i, other, nil) }

func (i *InferType) typeNode() {}

// Modifier is a mapped-type field modifier: absent, added or removed.
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierAdd
	ModifierRemove
)

// MappedType is {[P in K]: V} with optional +/- modifiers on ? and
// readonly. TypeParameter is the iteration variable P; Constraint is
// the key source K; Value is V, which may mention P.
type MappedType struct {
	TypeParameter *TypeParameter
	Constraint    Type
	Value         Type
	Optional      Modifier
	Readonly      Modifier
}

func (m *MappedType) String() string { return typeString(m, nil) }

func (m *MappedType) Equals(other Type) bool { return equalTypes(m, other, nil) }

func (m *MappedType) typeNode() {}

// TemplatePart is one segment of a template literal type: either
// fixed Text or an interpolated Type.
type TemplatePart struct {
	Text string
	Type Type
}

// TemplateLiteralType is a string pattern such as `on${string}`.
type TemplateLiteralType struct {
	Parts []TemplatePart
}

func NewTemplateLiteralType(parts ...TemplatePart) *TemplateLiteralType {
	return &TemplateLiteralType{Parts: parts}
}

func (t *TemplateLiteralType) String() string { return typeString(t, nil) }

func (t *TemplateLiteralType) Equals(other Type) bool { return equalTypes(t, other, nil) }

func (t *TemplateLiteralType) typeNode() {}
