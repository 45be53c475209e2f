package contract

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"
)

// FormatResult normalizes raw call output. Big integers become decimal
// strings. With more than one declared output the values are keyed by output
// name, or output_<i> when unnamed. A single output is returned on its own.
func FormatResult(outputs []ABIParam, raw []any) any {
	switch {
	case len(raw) == 0:
		return nil
	case len(outputs) > 1 && len(raw) == len(outputs):
		named := make(map[string]any, len(raw))
		for i, out := range outputs {
			key := out.Name
			if key == "" {
				key = fmt.Sprintf("output_%d", i)
			}
			named[key] = stringifyBig(raw[i])
		}
		return named
	case len(raw) == 1:
		return stringifyBig(raw[0])
	default:
		return raw
	}
}

// stringifyBig turns every integer that may not survive a float64 round
// trip (64-bit and wider) into a decimal string. Slices, arrays and tuple
// structs are walked; tuples become maps keyed by component name.
func stringifyBig(v any) any {
	if v == nil {
		return nil
	}
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			return nil
		}
		return x.String()
	case []*big.Int:
		out := make([]string, len(x))
		for i, n := range x {
			out[i] = n.String()
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if !needsStringify(rv.Type()) {
		return v
	}
	return stringifyValue(rv)
}

var bigIntType = reflect.TypeOf((*big.Int)(nil))

func needsStringify(t reflect.Type) bool {
	if t == bigIntType {
		return true
	}
	switch t.Kind() {
	case reflect.Int64, reflect.Uint64, reflect.Int, reflect.Uint:
		return true
	case reflect.Slice, reflect.Array, reflect.Pointer:
		return needsStringify(t.Elem())
	case reflect.Struct:
		return true
	default:
		return false
	}
}

func stringifyValue(rv reflect.Value) any {
	if rv.Type() == bigIntType {
		if rv.IsNil() {
			return nil
		}
		return rv.Interface().(*big.Int).String()
	}
	switch rv.Kind() {
	case reflect.Int64, reflect.Int:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint64, reflect.Uint:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return stringifyValue(rv.Elem())
	case reflect.Slice, reflect.Array:
		if !needsStringify(rv.Type().Elem()) {
			return rv.Interface()
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = stringifyValue(rv.Index(i))
		}
		return out
	case reflect.Struct:
		out := make(map[string]any, rv.NumField())
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Name
			if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" && tag != "-" {
				name = tag
			}
			out[name] = stringifyValue(rv.Field(i))
		}
		return out
	default:
		return rv.Interface()
	}
}
