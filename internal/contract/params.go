package contract

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Kind is the closed set of parameter shapes the form and the encoder
// distinguish.
type Kind int

const (
	KindOther Kind = iota
	KindBoolean
	KindInteger
	KindAddress
	KindBytesLike
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindAddress:
		return "address"
	case KindBytesLike:
		return "bytes"
	case KindArray:
		return "array"
	default:
		return "other"
	}
}

// ParamKind is the parsed shape of an ABI type string. Elem is set for
// KindArray; Length is the fixed length of T[N] arrays, -1 for T[].
type ParamKind struct {
	Kind   Kind
	Elem   *ParamKind
	Length int
	Type   string
}

// ParseParamKind classifies an ABI type string.
func ParseParamKind(typ string) ParamKind {
	typ = strings.TrimSpace(typ)
	if strings.HasSuffix(typ, "]") {
		if open := strings.LastIndex(typ, "["); open > 0 {
			elem := ParseParamKind(typ[:open])
			length := -1
			if n, err := strconv.Atoi(typ[open+1 : len(typ)-1]); err == nil {
				length = n
			}
			return ParamKind{Kind: KindArray, Elem: &elem, Length: length, Type: typ}
		}
	}

	pk := ParamKind{Kind: KindOther, Type: typ}
	switch {
	case typ == "bool":
		pk.Kind = KindBoolean
	case typ == "address":
		pk.Kind = KindAddress
	case strings.HasPrefix(typ, "uint"), strings.HasPrefix(typ, "int"):
		pk.Kind = KindInteger
	case strings.HasPrefix(typ, "bytes"):
		pk.Kind = KindBytesLike
	}
	return pk
}

// PrepareParams applies the input coercion: arrays pass through, integers
// become decimal strings, booleans become bool, everything else is
// untouched. Array values given as text ("a, b" or a JSON array) are split
// into a list.
func PrepareParams(inputs []ABIParam, params []any) ([]any, error) {
	if len(params) != len(inputs) {
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", ErrInvalidParam, len(inputs), len(params))
	}
	out := make([]any, len(params))
	for i, in := range inputs {
		out[i] = coerce(ParseParamKind(in.Type), params[i])
	}
	return out, nil
}

func coerce(pk ParamKind, v any) any {
	switch pk.Kind {
	case KindArray:
		if s, ok := v.(string); ok {
			return SplitList(s)
		}
		return v
	case KindInteger:
		return stringify(v)
	case KindBoolean:
		return toBool(v)
	default:
		return v
	}
}

// SplitList turns "a, b ,c" into ["a","b","c"]. Text starting with "[" is
// decoded as JSON instead so nested values survive.
func SplitList(s string) []any {
	s = strings.TrimSpace(s)
	if s == "" {
		return []any{}
	}
	if strings.HasPrefix(s, "[") {
		var list []any
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return list
		}
	}
	parts := strings.Split(s, ",")
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

func stringify(v any) any {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case *big.Int:
		return x.String()
	case nil:
		return v
	default:
		return fmt.Sprint(x)
	}
}

func toBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "true" || s == "1"
	case float64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case int:
		return x != 0
	default:
		return false
	}
}

// packArgs converts prepared values to the Go types go-ethereum packs.
func packArgs(args abi.Arguments, values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		conv, err := packArg(args[i].Type, v)
		if err != nil {
			name := args[i].Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("%w: %s (%s): %v", ErrInvalidParam, name, args[i].Type, err)
		}
		out[i] = conv
	}
	return out, nil
}

func packArg(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		return packInt(t, v)
	case abi.BoolTy:
		b, ok := v.(bool)
		if !ok {
			return toBool(v), nil
		}
		return b, nil
	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	case abi.AddressTy:
		return packAddress(v)
	case abi.BytesTy:
		return packBytes(v)
	case abi.FixedBytesTy, abi.FunctionTy:
		return packFixedBytes(t, v)
	case abi.SliceTy, abi.ArrayTy:
		return packList(t, v)
	case abi.TupleTy:
		return packTuple(t, v)
	default:
		return v, nil
	}
}

func packInt(t abi.Type, v any) (any, error) {
	s, ok := stringify(v).(string)
	if !ok {
		return nil, fmt.Errorf("expected integer, got %T", v)
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	if t.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value for %s", t)
	}
	limit := t.Size
	if t.T == abi.IntTy {
		limit--
	}
	if bitLen(n, t.T == abi.IntTy) > limit {
		return nil, fmt.Errorf("%s overflows %s", s, t)
	}
	if t.Size > 64 {
		return n, nil
	}

	rv := reflect.New(t.GetType()).Elem()
	if t.T == abi.UintTy {
		rv.SetUint(n.Uint64())
	} else {
		rv.SetInt(n.Int64())
	}
	return rv.Interface(), nil
}

// bitLen is the number of magnitude bits; for signed values -2^(k) fits in
// k bits so negatives are measured as |n|-1.
func bitLen(n *big.Int, signed bool) int {
	if signed && n.Sign() < 0 {
		return new(big.Int).Sub(new(big.Int).Neg(n), big.NewInt(1)).BitLen()
	}
	return n.BitLen()
}

func packAddress(v any) (any, error) {
	switch x := v.(type) {
	case common.Address:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("not a hex address: %q", s)
		}
		return common.HexToAddress(s), nil
	default:
		return nil, fmt.Errorf("expected address, got %T", v)
	}
}

func packBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == "0x" {
			return []byte{}, nil
		}
		if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
			s = "0x" + s
		}
		return hexutil.Decode(s)
	default:
		return nil, fmt.Errorf("expected hex bytes, got %T", v)
	}
}

func packFixedBytes(t abi.Type, v any) (any, error) {
	raw, err := packBytes(v)
	if err != nil {
		return nil, err
	}
	size := t.Size
	if t.T == abi.FunctionTy {
		size = 24
	}
	if len(raw) > size {
		return nil, fmt.Errorf("%d bytes do not fit %s", len(raw), t)
	}
	rv := reflect.New(t.GetType()).Elem()
	reflect.Copy(rv, reflect.ValueOf(raw))
	return rv.Interface(), nil
}

func packList(t abi.Type, v any) (any, error) {
	items, err := asList(v)
	if err != nil {
		return nil, err
	}

	var rv reflect.Value
	if t.T == abi.ArrayTy {
		if len(items) != t.Size {
			return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
		}
		rv = reflect.New(t.GetType()).Elem()
	} else {
		rv = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}

	for i, item := range items {
		conv, err := packArg(*t.Elem, coerce(ParseParamKind(t.Elem.String()), item))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		rv.Index(i).Set(reflect.ValueOf(conv))
	}
	return rv.Interface(), nil
}

func asList(v any) ([]any, error) {
	switch x := v.(type) {
	case []any:
		return x, nil
	case string:
		return SplitList(x), nil
	case nil:
		return []any{}, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// packTuple fills the generated struct type from a positional list or from
// an object keyed by component name.
func packTuple(t abi.Type, v any) (any, error) {
	if s, ok := v.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, fmt.Errorf("tuple must be a JSON object or array: %w", err)
		}
		v = decoded
	}

	values := make([]any, len(t.TupleElems))
	switch x := v.(type) {
	case []any:
		if len(x) != len(values) {
			return nil, fmt.Errorf("expected %d tuple fields, got %d", len(values), len(x))
		}
		copy(values, x)
	case map[string]any:
		for i, name := range t.TupleRawNames {
			f, ok := x[name]
			if !ok {
				return nil, fmt.Errorf("missing tuple field %q", name)
			}
			values[i] = f
		}
	default:
		return nil, fmt.Errorf("expected tuple, got %T", v)
	}

	rv := reflect.New(t.TupleType).Elem()
	for i, elem := range t.TupleElems {
		conv, err := packArg(*elem, coerce(ParseParamKind(elem.String()), values[i]))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", t.TupleRawNames[i], err)
		}
		rv.Field(i).Set(reflect.ValueOf(conv))
	}
	return rv.Interface(), nil
}
