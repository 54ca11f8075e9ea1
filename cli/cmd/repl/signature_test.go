package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/whale/lang"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"no call", "greeting", "", 0, false},
		{"first argument", "count(", "count", 0, true},
		{"second argument", "get(x, ", "get", 1, true},
		{"method call", "(1, 2):get(", "get", 1, true},
		{"method call second argument", "t:insert(a, ", "insert", 2, true},
		{"yield is not a method", "5 :: f(", "f", 0, true},
		{"nested list argument", "append((1, 2), 3, ", "append", 2, true},
		{"comma in string", `get("a,b", `, "get", 1, true},
		{"innermost call", "count(sort(1, ", "sort", 1, true},
		{"closed inner call", "count(sort(x), ", "count", 1, true},
		{"dotted name", "cfg.fn(", "cfg.fn", 0, true},
		{"closed call", "(1)", "", 0, false},
		{"grouping only", "(1, 2", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, len(tt.input))

			if got.name != tt.wantName || got.argIndex != tt.wantIndex || got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall(%q) = %+v, want {name:%s argIndex:%d inCall:%v}",
					tt.input, got, tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	reg := lang.NewRegistry()
	scope := lang.NewScopeFrom(lang.MapOf(
		"double", lang.FunctionValue(&lang.Block{}, nil),
		"n", lang.Int(1),
		"length", lang.Int(2),
	))

	tests := []struct {
		name       string
		wantSig    string
		wantParams []string
	}{
		{"count", "count(collection)", []string{"collection"}},
		{"append", "append(list, values...)", []string{"list", "values..."}},
		{"double", "double(input)", []string{"input"}},
		{"n", "", nil},
		{"length", "", nil},
		{"nope", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params := getSignature(reg, scope, tt.name)

			if sig != tt.wantSig || !slices.Equal(params, tt.wantParams) {
				t.Errorf("getSignature(%q) = (%q, %v), want (%q, %v)",
					tt.name, sig, params, tt.wantSig, tt.wantParams)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	if got := renderSignatureHint("", nil, 0); got != "" {
		t.Errorf("empty signature rendered %q", got)
	}

	got := renderSignatureHint("append(list, values...)", []string{"list", "values..."}, 3)
	for _, want := range []string{"append", "list", "values..."} {
		if !strings.Contains(got, want) {
			t.Errorf("hint %q missing %q", got, want)
		}
	}

	if got := renderSignatureHint("now()", nil, 0); !strings.Contains(got, "now") {
		t.Errorf("hint %q missing name", got)
	}
}
