package lang

import (
	"strings"
	"testing"
)

func BenchmarkParse(b *testing.B) {
	var sb strings.Builder
	for range 200 {
		sb.WriteString(`t = create_table(("n", "a"), (("bob", 1), ("amy", 2))); t:sort_by("a"):get("n");` + "\n")
	}

	source := sb.String()

	b.Run("uncached", func(b *testing.B) {
		for b.Loop() {
			if _, err := Parse(b.Context(), source); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("cached", func(b *testing.B) {
		ClearCache()
		b.Cleanup(ClearCache)

		in := New()

		for b.Loop() {
			if _, err := in.Parse(b.Context(), source); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkExecute(b *testing.B) {
	tests := []struct {
		name   string
		source string
	}{
		{"arithmetic", "x = 10; y = 20; x * y + x / 2"},
		{"strings", `greeting = "Hello"; greeting + ", " + "World"`},
		{"recursion", "fib = { if(input < 2, input, fib(input - 1) + fib(input - 2)) }; fib(15)"},
		{"table", people + `t:select_where(a > 28):sort_by("a"):get("n")`},
		{"transform", "(1, 2, 3, 4, 5, 6, 7, 8):transform(input * input):sort"},
		{"async", `async("1 + 1", "2 + 2", { 3 + 3 })`},
	}

	in := New()

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			prog, err := in.Parse(b.Context(), tt.source)
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()

			for b.Loop() {
				if _, err := in.Run(b.Context(), prog, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
