package builtin

import (
	"context"
	"time"

	"github.com/ardnew/whale/lang"
)

// clock is replaced in tests.
var clock = time.Now

func timeSpecs() []lang.Spec {
	return []lang.Spec{
		{
			Name:        "now",
			Group:       groupTime,
			Description: "Return the current time in UTC.",
			Macro: func(context.Context, *lang.Invocation) (lang.Value, error) {
				return lang.TimeValue(lang.UTCTime(clock())), nil
			},
		},
		{
			Name:        "local",
			Group:       groupTime,
			Description: "Return the current time, or the given time, in the local time zone.",
			Params:      []string{"time"},
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{{lang.KindTime, lang.KindString}},
			Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
				at := clock()

				switch v := call.Arg(0); v.Kind() {
				case lang.KindTime:
					at = v.Time().UTC()
				case lang.KindString:
					t, err := lang.ParseTime(v.Str())
					if err != nil {
						return lang.Empty(), err
					}

					at = t.UTC()
				}

				return lang.TimeValue(lang.NewTime(at.Local())), nil
			},
		},
		{
			Name:        "parse_time",
			Group:       groupTime,
			Description: "Parse an RFC 3339 timestamp, keeping its zone offset.",
			Params:      []string{"text"},
			MinArgs:     1,
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{stringKind},
			Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
				t, err := lang.ParseTime(call.Arg(0).Str())
				if err != nil {
					return lang.Empty(), err
				}

				return lang.TimeValue(t), nil
			},
		},
	}
}
