package cmd

import (
	"strings"
	"testing"
)

func TestMacros_List(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		macros  Macros
		want    []string
		notWant []string
	}{
		{
			name:   "all",
			macros: Macros{},
			want:   []string{"name", "signature", "count", "select_where", "collections", "logic"},
		},
		{
			name:    "group",
			macros:  Macros{Group: "logic"},
			want:    []string{"assert_equal", "if"},
			notWant: []string{"count", "create_table"},
		},
		{
			name:    "match",
			macros:  Macros{Match: "sort"},
			want:    []string{"sort_by", "sort"},
			notWant: []string{"count", "append"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var h harness

			if err := tt.macros.Run(h.context(t, "")); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			out := h.out.String()

			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}

			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestMacros_Signature(t *testing.T) {
	t.Parallel()

	var h harness

	if err := (&Macros{Match: "count"}).Run(h.context(t, "")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.Contains(h.out.String(), "count(") {
		t.Errorf("output missing signature:\n%s", h.out.String())
	}
}
