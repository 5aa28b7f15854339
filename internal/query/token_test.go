package query

import "testing"

func TestTokenizeBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{"single term", "report", []Token{{TERM, "report"}}},
		{"quoted", `"exact name"`, []Token{{QUOTED, `"exact name"`}}},
		{"and symbol", "foo & bar", []Token{{TERM, "foo"}, {AND, "&"}, {TERM, "bar"}}},
		{"word and", "foo AND bar", []Token{{TERM, "foo"}, {AND, "&"}, {TERM, "bar"}}},
		{"not", "!foo", []Token{{NOT, "!"}, {TERM, "foo"}}},
		{"parens", "(foo)", []Token{{OPEN_PAREN, "("}, {TERM, "foo"}, {CLOSE_PAREN, ")"}}},
		{"keyvalue", "ext:pdf", []Token{{KEYVALUE, "ext:pdf"}}},
		{"keyvalue quoted value", `name:"my file"`, []Token{{KEYVALUE, `name:my file`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenizeUnclosedQuotes(t *testing.T) {
	_, err := Tokenize(`"unterminated`)
	if err == nil {
		t.Fatal("expected error for unclosed quotes")
	}
}

func TestTokenizeEmpty(t *testing.T) {
	_, err := Tokenize("   ")
	if err == nil {
		t.Fatal("expected error for empty token list")
	}
}
