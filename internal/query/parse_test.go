package query

import "testing"

func TestParseSimpleSingleTerm(t *testing.T) {
	expr, err := Parse("report")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if expr.Kind != ExprTerm || expr.Term != "report*" {
		t.Errorf("expr = %+v, want prefix term 'report*'", expr)
	}
}

func TestParseSimpleQuotedExact(t *testing.T) {
	expr, err := Parse(`"report.pdf"`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if expr.Kind != ExprTerm || expr.Term != `"report.pdf"` {
		t.Errorf("expr = %+v, want quoted exact term", expr)
	}
}

func TestParseSimpleWildcard(t *testing.T) {
	expr, err := Parse("rep*rt")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if expr.Kind != ExprTerm || expr.Term != "rep*rt" {
		t.Errorf("expr = %+v, want wildcard preserved", expr)
	}
}

func TestParseSimpleKeyValue(t *testing.T) {
	expr, err := Parse("ext:pdf")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if expr.Kind != ExprKeyValue || expr.Key != "ext" || expr.Value != "pdf" {
		t.Errorf("expr = %+v, want KeyValue(ext, pdf)", expr)
	}
}

func TestParseSimpleKeyValueAlias(t *testing.T) {
	expr, err := Parse("filetype:image")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if expr.Kind != ExprKeyValue || expr.Key != "type" {
		t.Errorf("expr = %+v, want canonicalized key 'type'", expr)
	}
}

func TestParseSimpleMultiTermIsAnd(t *testing.T) {
	expr, err := Parse("foo bar")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if expr.Kind != ExprAnd || len(expr.Children) != 2 {
		t.Fatalf("expr = %+v, want And of 2 terms", expr)
	}
	if expr.Children[0].Term != "foo" || expr.Children[1].Term != "bar" {
		t.Errorf("children = %+v, want verbatim terms", expr.Children)
	}
}

func TestParseBooleanAndOrPrecedence(t *testing.T) {
	expr, err := Parse("foo & bar | baz")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if expr.Kind != ExprOr {
		t.Fatalf("top-level expr = %+v, want Or (lowest precedence)", expr)
	}
	if len(expr.Children) != 2 {
		t.Fatalf("Or children = %+v, want 2", expr.Children)
	}
	if expr.Children[0].Kind != ExprAnd {
		t.Errorf("left child = %+v, want And(foo, bar)", expr.Children[0])
	}
}

func TestParseBooleanNot(t *testing.T) {
	expr, err := Parse("!foo")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if expr.Kind != ExprNot || expr.Child.Term != "foo" {
		t.Errorf("expr = %+v, want Not(Term(foo))", expr)
	}
}

func TestParseBooleanParens(t *testing.T) {
	expr, err := Parse("(foo | bar) & baz")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if expr.Kind != ExprAnd {
		t.Fatalf("expr = %+v, want top-level And", expr)
	}
	if expr.Children[0].Kind != ExprOr {
		t.Errorf("left child = %+v, want Or(foo, bar)", expr.Children[0])
	}
}

func TestParseImplicitAndBetweenTerms(t *testing.T) {
	expr, err := Parse("foo !bar")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if expr.Kind != ExprAnd || len(expr.Children) != 2 {
		t.Fatalf("expr = %+v, want implicit And(foo, Not(bar))", expr)
	}
	if expr.Children[1].Kind != ExprNot {
		t.Errorf("right child = %+v, want Not", expr.Children[1])
	}
}

func TestParseEmptyQueryFails(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("expected EmptyQuery error")
	}
}

func TestParseUnbalancedParensFails(t *testing.T) {
	if _, err := Parse("(foo"); err == nil {
		t.Fatal("expected unbalanced parentheses error")
	}
}
