package fpc

import (
	"errors"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []lexToken
		errs   int
	}{
		// spaces
		{"", nil, 0},
		{" \t \r\n ", nil, 0},
		// numbers
		{"0", []lexToken{{text: "0", kind: tokenNum, pos: 1}}, 0},
		{"9876543210", []lexToken{{text: "9876543210", kind: tokenNum, pos: 1}}, 0},
		{"1 0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1.0", []lexToken{{text: "1.0", kind: tokenNum, pos: 1}}, 0},
		{"-1", []lexToken{{text: "-", kind: tokenOp, pos: 1}, {text: "1", kind: tokenNum, pos: 2}}, 0},
		{"1e1", []lexToken{{text: "1e1", kind: tokenNum, pos: 1}}, 0},
		{"1E1", []lexToken{{text: "1E1", kind: tokenNum, pos: 1}}, 0},
		{"1e", []lexToken{{pos: 1}}, 1},
		{"1e+1", []lexToken{{text: "1e+1", kind: tokenNum, pos: 1}}, 0},
		{"1e-1", []lexToken{{text: "1e-1", kind: tokenNum, pos: 1}}, 0},
		{"1.1.1", []lexToken{{pos: 1}, {text: "1", kind: tokenNum, pos: 5}}, 1},
		{"1.0e1", []lexToken{{text: "1.0e1", kind: tokenNum, pos: 1}}, 0},
		{".", []lexToken{{pos: 1}}, 1},
		{".1", []lexToken{{text: ".1", kind: tokenNum, pos: 1}}, 0},
		{"1.", []lexToken{{text: "1.", kind: tokenNum, pos: 1}}, 0},
		{".1e1", []lexToken{{text: ".1e1", kind: tokenNum, pos: 1}}, 0},
		{"1+0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "+", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1*0", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: "*", kind: tokenOp, pos: 2}, {text: "0", kind: tokenNum, pos: 3}}, 0},
		{"1e2^3", []lexToken{{text: "1e2", kind: tokenNum, pos: 1}, {text: "^", kind: tokenOp, pos: 4}, {text: "3", kind: tokenNum, pos: 5}}, 0},
		{"(1)", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: "1", kind: tokenNum, pos: 2}, {text: ")", kind: tokenClose, pos: 3}}, 0},
		{"1a", []lexToken{{pos: 1}}, 1},
		// identifiers
		{"e", []lexToken{{text: "e", kind: tokenIdent, pos: 1}}, 0},
		{"Z", []lexToken{{text: "Z", kind: tokenIdent, pos: 1}}, 0},
		{"ab", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "b", kind: tokenIdent, pos: 2}}, 0},
		{"e1", []lexToken{{text: "e", kind: tokenIdent, pos: 1}, {text: "1", kind: tokenNum, pos: 2}}, 0},
		{"e(", []lexToken{{text: "e", kind: tokenIdent, pos: 1}, {text: "(", kind: tokenOpen, pos: 2}}, 0},
		{"π", []lexToken{{pos: 1}}, 1},
		{"_", []lexToken{{pos: 1}}, 1},
		// operators
		{"+", []lexToken{{text: "+", kind: tokenOp, pos: 1}}, 0},
		{"++", []lexToken{{text: "+", kind: tokenOp, pos: 1}, {text: "+", kind: tokenOp, pos: 2}}, 0},
		{"a--b", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {text: "-", kind: tokenOp, pos: 2}, {text: "-", kind: tokenOp, pos: 3}, {text: "b", kind: tokenIdent, pos: 4}}, 0},
		{"^/", []lexToken{{text: "^", kind: tokenOp, pos: 1}, {text: "/", kind: tokenOp, pos: 2}}, 0},
		// brackets and separators
		{"()", []lexToken{{text: "(", kind: tokenOpen, pos: 1}, {text: ")", kind: tokenClose, pos: 2}}, 0},
		{"1,2", []lexToken{{text: "1", kind: tokenNum, pos: 1}, {text: ",", kind: tokenSep, pos: 2}, {text: "2", kind: tokenNum, pos: 3}}, 0},
		{";", []lexToken{{text: ";", kind: tokenSep, pos: 1}}, 0},
		// erroneous symbols
		{"$", []lexToken{{pos: 1}}, 1},
		{"[", []lexToken{{pos: 1}}, 1},
		{"a$", []lexToken{{text: "a", kind: tokenIdent, pos: 1}, {pos: 2}}, 1},
		{"$a", []lexToken{{pos: 1}, {text: "a", kind: tokenIdent, pos: 2}}, 1},
		{"0$", []lexToken{{pos: 1}}, 1},
		{"$0", []lexToken{{pos: 1}, {text: "0", kind: tokenNum, pos: 2}}, 1},
		{"$$", []lexToken{{pos: 1}, {pos: 2}}, 2},
	}

	for _, c := range cases {
		scan := lex(strings.NewReader(c.src))
		errs := c.errs
		for _, want := range c.tokens {
			got, err := scan.next("")
			if got != want {
				t.Errorf("scanning %q: want %v, got %v", c.src, want, got)
			}
			if err != nil {
				if !errors.Is(err, ErrExpression) {
					t.Errorf("scanning %q: error %v is not an expression error", c.src, err)
				}
				if errs > 0 {
					errs--
					continue
				}
				t.Errorf("scanning %q: unexpected error %v", c.src, err)
			}
		}
		if got, err := scan.next(""); got.kind != tokenEOF || err != nil {
			t.Errorf("scanning %q: extra token %v with error: %v", c.src, got, err)
		}
		if errs > 0 {
			t.Errorf("scanning %q: not enough errors", c.src)
		}
	}
}

func TestLexStopWhitespace(t *testing.T) {
	src := strings.NewReader("1\n2")
	scan := lex(src)
	if got, err := scan.next("\n"); err != nil || got.kind != tokenNum {
		t.Fatalf("first token: got %v, %v", got, err)
	}
	if got, err := scan.next("\n"); err != nil || got.kind != tokenEOF {
		t.Fatalf("stop token: got %v, %v", got, err)
	}
	r, _, err := src.ReadRune()
	if err != nil || r != '2' {
		t.Errorf("source left at %q, %v; want '2'", r, err)
	}
}

func TestLexPush(t *testing.T) {
	scan := lex(strings.NewReader("x"))
	tok, err := scan.next("")
	if err != nil {
		t.Fatal(err)
	}
	scan.push(tok)
	again, err := scan.next("")
	if err != nil || again != tok {
		t.Errorf("pushed %v, got %v, %v", tok, again, err)
	}
	defer func() {
		if recover() == nil {
			t.Error("double push didn't panic")
		}
	}()
	scan.push(tok)
	scan.push(tok)
}
