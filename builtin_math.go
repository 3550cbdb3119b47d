// builtin_math.go — the mathlib built-in module.
package novascript

import "math"

// mathUnary wraps a float function as a one-argument module member.
func mathUnary(fname string, fn func(float64) float64) NativeFn {
	return func(args []Value) (Value, error) {
		if err := wantArgs(fname, args, VTNum); err != nil {
			return Nil, err
		}
		return NumVal(fn(args[0].Data.(float64))), nil
	}
}

func mathlibModule() *Module {
	return nativeModule("mathlib", map[string]NativeFn{
		"abs":   mathUnary("mathlib.abs", math.Abs),
		"floor": mathUnary("mathlib.floor", math.Floor),
		"ceil":  mathUnary("mathlib.ceil", math.Ceil),
		"round": mathUnary("mathlib.round", math.Round),
		"sqrt": func(args []Value) (Value, error) {
			if err := wantArgs("mathlib.sqrt", args, VTNum); err != nil {
				return Nil, err
			}
			x := args[0].Data.(float64)
			if x < 0 {
				return Nil, &RuntimeError{Kind: ErrModule,
					Msg: "mathlib.sqrt of a negative number"}
			}
			return NumVal(math.Sqrt(x)), nil
		},
		"pow": func(args []Value) (Value, error) {
			if err := wantArgs("mathlib.pow", args, VTNum, VTNum); err != nil {
				return Nil, err
			}
			return NumVal(math.Pow(args[0].Data.(float64), args[1].Data.(float64))), nil
		},
		"min": func(args []Value) (Value, error) {
			if err := wantArgs("mathlib.min", args, VTNum, VTNum); err != nil {
				return Nil, err
			}
			return NumVal(math.Min(args[0].Data.(float64), args[1].Data.(float64))), nil
		},
		"max": func(args []Value) (Value, error) {
			if err := wantArgs("mathlib.max", args, VTNum, VTNum); err != nil {
				return Nil, err
			}
			return NumVal(math.Max(args[0].Data.(float64), args[1].Data.(float64))), nil
		},
		"pi": func(args []Value) (Value, error) {
			if err := wantArgs("mathlib.pi", args); err != nil {
				return Nil, err
			}
			return NumVal(math.Pi), nil
		},
	})
}
