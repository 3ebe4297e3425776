package types

import "lunatype/pkg/intern"

// Field is a named member of a table type. Order of declaration is
// preserved for printing and mapped-type evaluation.
type Field struct {
	Name     intern.Name
	Type     Type
	Optional bool
	Readonly bool
}

// IndexSignature types the remaining keys of a table, e.g.
// {[string]: number}.
type IndexSignature struct {
	Key   Type
	Value Type
}

// TableType is the structural record type. Lua tables double as
// records, arrays and maps; this form covers the record and map uses,
// with ArrayType and TupleType covering the sequence uses.
type TableType struct {
	Fields []Field
	Index  *IndexSignature
}

func NewTableType() *TableType {
	return &TableType{}
}

// WithField appends a required field and returns the table for chaining.
func (t *TableType) WithField(name intern.Name, typ Type) *TableType {
	t.Fields = append(t.Fields, Field{Name: name, Type: typ})
	return t
}

// WithOptionalField appends an optional field.
func (t *TableType) WithOptionalField(name intern.Name, typ Type) *TableType {
	t.Fields = append(t.Fields, Field{Name: name, Type: typ, Optional: true})
	return t
}

// WithIndex sets the index signature.
func (t *TableType) WithIndex(key, value Type) *TableType {
	t.Index = &IndexSignature{Key: key, Value: value}
	return t
}

// FieldByName returns the field with the given name, if present.
func (t *TableType) FieldByName(name intern.Name) (*Field, bool) {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], true
		}
	}
	return nil, false
}

func (t *TableType) String() string { return typeString(t, nil) }

func (t *TableType) Equals(other Type) bool { return equalTypes(t, other, nil) }

func (t *TableType) typeNode() {}

// ArrayType is a homogeneous sequence, written T[].
type ArrayType struct {
	Element Type
}

func NewArrayType(element Type) *ArrayType {
	return &ArrayType{Element: element}
}

func (a *ArrayType) String() string { return typeString(a, nil) }

func (a *ArrayType) Equals(other Type) bool { return equalTypes(a, other, nil) }

func (a *ArrayType) typeNode() {}

// TupleType is a fixed-length sequence with per-position types.
// Positions are 1-based when indexed, matching Lua sequences.
type TupleType struct {
	Elements []Type
}

func NewTupleType(elements ...Type) *TupleType {
	return &TupleType{Elements: elements}
}

func (t *TupleType) String() string { return typeString(t, nil) }

func (t *TupleType) Equals(other Type) bool { return equalTypes(t, other, nil) }

func (t *TupleType) typeNode() {}
