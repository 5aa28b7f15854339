package query

import "testing"

func TestPlanTermPrefix(t *testing.T) {
	expr, err := Parse("report")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	where, bindings, err := Plan(expr)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if where != "name LIKE ?" {
		t.Errorf("where = %q", where)
	}
	if len(bindings) != 1 || bindings[0] != "report%" {
		t.Errorf("bindings = %v, want report%%", bindings)
	}
}

func TestPlanQuotedExact(t *testing.T) {
	expr, err := Parse(`"report.pdf"`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	where, bindings, err := Plan(expr)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if where != "name = ? COLLATE NOCASE" {
		t.Errorf("where = %q", where)
	}
	if bindings[0] != "report.pdf" {
		t.Errorf("bindings = %v, want unquoted exact value", bindings)
	}
}

func TestPlanKeyValueExtension(t *testing.T) {
	expr, err := Parse("ext:.pdf")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	where, bindings, err := Plan(expr)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if where != "file_extension = ? COLLATE NOCASE" {
		t.Errorf("where = %q", where)
	}
	if bindings[0] != "pdf" {
		t.Errorf("bindings = %v, want leading dot stripped", bindings)
	}
}

func TestPlanSizeGreaterThan(t *testing.T) {
	expr, err := Parse("size:>10MB")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	where, bindings, err := Plan(expr)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if where != "size > ?" {
		t.Errorf("where = %q", where)
	}
	want := int64(10 * 1024 * 1024)
	if bindings[0] != want {
		t.Errorf("bindings = %v, want %d", bindings, want)
	}
}

func TestPlanSizeMalformedFallsBackToSubstring(t *testing.T) {
	expr, err := Parse("size:bogus")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	where, _, err := Plan(expr)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if where != "size LIKE ?" {
		t.Errorf("where = %q, want substring fallback", where)
	}
}

func TestPlanTypeFolder(t *testing.T) {
	expr, err := Parse("type:folder")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	where, bindings, err := Plan(expr)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if where != "is_directory = 1" || len(bindings) != 0 {
		t.Errorf("where = %q, bindings = %v", where, bindings)
	}
}

func TestPlanTypeCategory(t *testing.T) {
	expr, err := Parse("type:image")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	where, bindings, err := Plan(expr)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(bindings) == 0 {
		t.Error("expected bindings for expanded category")
	}
	if where == "" {
		t.Error("expected non-empty IN clause")
	}
}

func TestPlanDateRelativeToday(t *testing.T) {
	expr, err := Parse("modified:today")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	where, bindings, err := Plan(expr)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if where != "date_modified >= ?" || len(bindings) != 1 {
		t.Errorf("where = %q, bindings = %v", where, bindings)
	}
}

func TestPlanDateMalformedYieldsNoResults(t *testing.T) {
	expr, err := Parse("created:not-a-date")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	where, _, err := Plan(expr)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if where != "1=0" {
		t.Errorf("where = %q, want 1=0", where)
	}
}

func TestPlanBooleanCombinator(t *testing.T) {
	expr, err := Parse("foo | bar")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	where, bindings, err := Plan(expr)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if where == "" || len(bindings) != 2 {
		t.Errorf("where = %q, bindings = %v", where, bindings)
	}
}
