package intern

import "testing"

func TestInternDeduplicates(t *testing.T) {
	in := New()

	a := in.Intern("value")
	b := in.Intern("other")
	c := in.Intern("value")

	if a != c {
		t.Error("interning the same text twice should yield equal Names")
	}
	if a == b {
		t.Error("distinct identifiers should yield distinct Names")
	}
	if a.String() != "value" {
		t.Errorf("expected 'value', got '%s'", a.String())
	}
	if in.Len() != 2 {
		t.Errorf("expected 2 unique entries, got %d", in.Len())
	}
}

func TestInternNormalizes(t *testing.T) {
	in := New()

	// "é" as a single code point vs. "e" + combining acute accent.
	composed := in.Intern("café")
	decomposed := in.Intern("café")

	if composed != decomposed {
		t.Error("NFC-equivalent identifiers should intern to the same Name")
	}
	if in.Len() != 1 {
		t.Errorf("expected 1 unique entry, got %d", in.Len())
	}
}

func TestZeroNameInvalid(t *testing.T) {
	var zero Name
	if zero.Valid() {
		t.Error("zero Name should be invalid")
	}
	if zero.String() != "" {
		t.Errorf("zero Name should render empty, got '%s'", zero.String())
	}

	in := New()
	if zero == in.Intern("x") {
		t.Error("zero Name should not equal any interned Name")
	}
}
