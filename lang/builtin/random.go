package builtin

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/ardnew/whale/lang"
)

const (
	alphanumeric        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultStringLength = 10
)

func randomSpecs() []lang.Spec {
	return []lang.Spec{
		{
			Name:        "random_boolean",
			Group:       groupRandom,
			Description: "Return true or false with equal chance.",
			Macro: func(context.Context, *lang.Invocation) (lang.Value, error) {
				return lang.Bool(rand.N(2) == 1), nil
			},
		},
		{
			Name:        "random_integer",
			Group:       groupRandom,
			Description: "Return a random integer: any value with no arguments, in [0, max) with one, or in [min, max] with two.",
			Params:      []string{"min", "max"},
			MaxArgs:     2,
			Kinds:       [][]lang.Kind{integerKind, integerKind},
			Macro:       randomInteger,
		},
		{
			Name:        "random_float",
			Group:       groupRandom,
			Description: "Return a random float in [0, 1).",
			Macro: func(context.Context, *lang.Invocation) (lang.Value, error) {
				return lang.Float(rand.Float64()), nil
			},
		},
		{
			Name:        "random_string",
			Group:       groupRandom,
			Description: "Return a random alphanumeric string of the given length (default 10).",
			Params:      []string{"length"},
			MaxArgs:     1,
			Kinds:       [][]lang.Kind{integerKind},
			Macro: func(_ context.Context, call *lang.Invocation) (lang.Value, error) {
				n := int64(defaultStringLength)
				if len(call.Args) > 0 {
					n = call.Arg(0).Int()
				}

				if n < 0 {
					return lang.Empty(), lang.ErrIndexOutOfRange.Errorf("negative length %d", n)
				}

				b := make([]byte, n)
				for i := range b {
					b[i] = alphanumeric[rand.N(len(alphanumeric))]
				}

				return lang.String(string(b)), nil
			},
		},
		{
			Name:        "random_uuid",
			Group:       groupRandom,
			Description: "Return a random (version 4) UUID.",
			Macro: func(context.Context, *lang.Invocation) (lang.Value, error) {
				id, err := uuid.NewRandom()
				if err != nil {
					return lang.Empty(), external(err)
				}

				return lang.String(id.String()), nil
			},
		},
	}
}

func randomInteger(_ context.Context, call *lang.Invocation) (lang.Value, error) {
	switch len(call.Args) {
	case 0:
		return lang.Int(rand.Int64()), nil

	case 1:
		limit := call.Arg(0).Int()
		if limit <= 0 {
			return lang.Empty(), lang.ErrIndexOutOfRange.Errorf("max must be positive, got %d", limit)
		}

		return lang.Int(rand.Int64N(limit)), nil

	default:
		lo, hi := call.Arg(0).Int(), call.Arg(1).Int()
		if lo > hi {
			return lang.Empty(), lang.ErrIndexOutOfRange.Errorf("min %d is greater than max %d", lo, hi)
		}

		span := uint64(hi - lo)
		if span == 1<<64-1 {
			return lang.Int(int64(rand.Uint64())), nil
		}

		return lang.Int(lo + int64(rand.Uint64N(span+1))), nil
	}
}
