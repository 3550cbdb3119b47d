// builtin_strings.go — the strlib built-in module.
//
// All functions are Unicode aware: indices count runes, not bytes, and
// out-of-range indices are clamped rather than failing.
package novascript

import "strings"

func strlibModule() *Module {
	return nativeModule("strlib", map[string]NativeFn{
		"upper": func(args []Value) (Value, error) {
			if err := wantArgs("strlib.upper", args, VTStr); err != nil {
				return Nil, err
			}
			return StrVal(strings.ToUpper(args[0].Data.(string))), nil
		},
		"lower": func(args []Value) (Value, error) {
			if err := wantArgs("strlib.lower", args, VTStr); err != nil {
				return Nil, err
			}
			return StrVal(strings.ToLower(args[0].Data.(string))), nil
		},
		"length": func(args []Value) (Value, error) {
			if err := wantArgs("strlib.length", args, VTStr); err != nil {
				return Nil, err
			}
			return NumVal(float64(len([]rune(args[0].Data.(string))))), nil
		},
		"substr": func(args []Value) (Value, error) {
			if err := wantArgs("strlib.substr", args, VTStr, VTNum, VTNum); err != nil {
				return Nil, err
			}
			r := []rune(args[0].Data.(string))
			i := int(args[1].Data.(float64))
			j := int(args[2].Data.(float64))
			if i < 0 {
				i = 0
			}
			if j < i {
				j = i
			}
			if i > len(r) {
				i = len(r)
			}
			if j > len(r) {
				j = len(r)
			}
			return StrVal(string(r[i:j])), nil
		},
		"strip": func(args []Value) (Value, error) {
			if err := wantArgs("strlib.strip", args, VTStr); err != nil {
				return Nil, err
			}
			return StrVal(strings.TrimSpace(args[0].Data.(string))), nil
		},
		"contains": func(args []Value) (Value, error) {
			if err := wantArgs("strlib.contains", args, VTStr, VTStr); err != nil {
				return Nil, err
			}
			return BoolVal(strings.Contains(args[0].Data.(string), args[1].Data.(string))), nil
		},
		"replace": func(args []Value) (Value, error) {
			if err := wantArgs("strlib.replace", args, VTStr, VTStr, VTStr); err != nil {
				return Nil, err
			}
			return StrVal(strings.ReplaceAll(
				args[0].Data.(string), args[1].Data.(string), args[2].Data.(string))), nil
		},
		"split": func(args []Value) (Value, error) {
			if err := wantArgs("strlib.split", args, VTStr, VTStr); err != nil {
				return Nil, err
			}
			parts := strings.Split(args[0].Data.(string), args[1].Data.(string))
			elems := make([]Value, len(parts))
			for i, p := range parts {
				elems[i] = StrVal(p)
			}
			return ListVal(elems), nil
		},
		"join": func(args []Value) (Value, error) {
			if err := wantArgs("strlib.join", args, VTList, VTStr); err != nil {
				return Nil, err
			}
			lst := args[0].Data.(*ListObject)
			parts := make([]string, len(lst.Elems))
			for i, el := range lst.Elems {
				if el.Tag != VTStr {
					return Nil, &RuntimeError{Kind: ErrModule,
						Msg: "strlib.join requires a list of str values"}
				}
				parts[i] = el.Data.(string)
			}
			return StrVal(strings.Join(parts, args[1].Data.(string))), nil
		},
	})
}
