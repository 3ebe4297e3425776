package diag

import (
	"strings"
	"testing"

	"lunatype/pkg/source"
)

func TestListCollectsInOrder(t *testing.T) {
	l := &List{}
	l.Report(Errorf(TypeMismatch, Position{Line: 1, Column: 1}, "first"))
	l.Report(Warningf(InvalidOperator, Position{Line: 2, Column: 1}, "second"))

	all := l.All()
	if len(all) != 2 {
		t.Fatalf("collected %d diagnostics, want 2", len(all))
	}
	if all[0].Msg != "first" || all[1].Msg != "second" {
		t.Errorf("diagnostics out of order: %v", all)
	}
	if !l.HasErrors() {
		t.Errorf("HasErrors = false with one error collected")
	}
	if l.ErrorCount() != 1 {
		t.Errorf("ErrorCount = %d, want 1 (warnings do not count)", l.ErrorCount())
	}
}

func TestDisplayShowsSourceLine(t *testing.T) {
	f := source.Synthetic("main.tl", "local x = 1\nlocal y = x + true\n")
	d := Errorf(InvalidOperator, Position{Line: 2, Column: 15, Source: f}, "operator + requires numbers")

	var out strings.Builder
	Display(&out, []Diagnostic{d})

	got := out.String()
	if !strings.Contains(got, "error at 2:15") {
		t.Errorf("missing header in output:\n%s", got)
	}
	if !strings.Contains(got, "local y = x + true") {
		t.Errorf("missing source line in output:\n%s", got)
	}
	if !strings.Contains(got, "^") {
		t.Errorf("missing position marker in output:\n%s", got)
	}
}

func TestDiagnosticError(t *testing.T) {
	d := Errorf(UndefinedName, Position{Line: 3, Column: 7}, "undefined name %q", "frob")
	want := `error UndefinedName at 3:7: undefined name "frob"`
	if d.Error() != want {
		t.Errorf("Error() = %q, want %q", d.Error(), want)
	}
}
