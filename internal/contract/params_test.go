package contract

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParamKind(t *testing.T) {
	tests := []struct {
		typ  string
		kind Kind
	}{
		{"bool", KindBoolean},
		{"uint256", KindInteger},
		{"int8", KindInteger},
		{"address", KindAddress},
		{"bytes", KindBytesLike},
		{"bytes32", KindBytesLike},
		{"string", KindOther},
		{"tuple", KindOther},
		{"address[]", KindArray},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.kind, ParseParamKind(tt.typ).Kind)
		})
	}
}

func TestParseParamKindNestedArrays(t *testing.T) {
	pk := ParseParamKind("uint256[3][]")
	require.Equal(t, KindArray, pk.Kind)
	assert.Equal(t, -1, pk.Length)
	require.NotNil(t, pk.Elem)
	assert.Equal(t, KindArray, pk.Elem.Kind)
	assert.Equal(t, 3, pk.Elem.Length)
	assert.Equal(t, KindInteger, pk.Elem.Elem.Kind)
}

func TestPrepareParamsCoercion(t *testing.T) {
	inputs := []ABIParam{
		{Name: "list", Type: "address[]"},
		{Name: "amount", Type: "uint256"},
		{Name: "flag", Type: "bool"},
		{Name: "off", Type: "bool"},
		{Name: "label", Type: "string"},
		{Name: "text", Type: "uint8[]"},
	}
	in := []any{[]any{"0x1"}, float64(12), "true", "no", "hello", "1, 2 ,3"}

	out, err := PrepareParams(inputs, in)
	require.NoError(t, err)
	assert.Equal(t, []any{"0x1"}, out[0])
	assert.Equal(t, "12", out[1])
	assert.Equal(t, true, out[2])
	assert.Equal(t, false, out[3])
	assert.Equal(t, "hello", out[4])
	assert.Equal(t, []any{"1", "2", "3"}, out[5])
}

func TestPrepareParamsArgCount(t *testing.T) {
	_, err := PrepareParams([]ABIParam{{Type: "bool"}}, nil)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []any{}, SplitList("  "))
	assert.Equal(t, []any{"a", "b"}, SplitList("a, b"))
	assert.Equal(t, []any{"x,y", float64(2)}, SplitList(`["x,y", 2]`))
}

func mustType(t *testing.T, typ string, components ...abi.ArgumentMarshaling) abi.Type {
	t.Helper()
	ty, err := abi.NewType(typ, "", components)
	require.NoError(t, err)
	return ty
}

func TestPackArgIntegers(t *testing.T) {
	v, err := packArg(mustType(t, "uint8"), "255")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), v)

	v, err = packArg(mustType(t, "int64"), "-9")
	require.NoError(t, err)
	assert.Equal(t, int64(-9), v)

	v, err = packArg(mustType(t, "uint256"), "0xff")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(255), v)

	_, err = packArg(mustType(t, "uint8"), "256")
	assert.Error(t, err)
	_, err = packArg(mustType(t, "uint256"), "-1")
	assert.Error(t, err)
	_, err = packArg(mustType(t, "int8"), "-129")
	assert.Error(t, err)
	_, err = packArg(mustType(t, "uint256"), "abc")
	assert.Error(t, err)

	v, err = packArg(mustType(t, "int8"), "-128")
	require.NoError(t, err)
	assert.Equal(t, int8(-128), v)
}

func TestPackArgAddressAndBytes(t *testing.T) {
	addr := "0xAbC1230000000000000000000000000000000000"
	v, err := packArg(mustType(t, "address"), addr)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(addr), v)

	_, err = packArg(mustType(t, "address"), "0x12")
	assert.Error(t, err)

	v, err = packArg(mustType(t, "bytes"), "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, v)

	v, err = packArg(mustType(t, "bytes4"), "0x01ffc9a7")
	require.NoError(t, err)
	assert.Equal(t, [4]byte{0x01, 0xff, 0xc9, 0xa7}, v)

	_, err = packArg(mustType(t, "bytes2"), "0x010203")
	assert.Error(t, err)
}

func TestPackArgLists(t *testing.T) {
	v, err := packArg(mustType(t, "uint16[]"), []any{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2}, v)

	v, err = packArg(mustType(t, "address[2]"), "0x1111111111111111111111111111111111111111, 0x2222222222222222222222222222222222222222")
	require.NoError(t, err)
	assert.Equal(t, [2]common.Address{
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}, v)

	_, err = packArg(mustType(t, "address[2]"), []any{"0x1111111111111111111111111111111111111111"})
	assert.Error(t, err)

	v, err = packArg(mustType(t, "bool[]"), []string{"true", "0"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, v)
}

func TestPackArgTuple(t *testing.T) {
	ty := mustType(t, "tuple",
		abi.ArgumentMarshaling{Name: "to", Type: "address"},
		abi.ArgumentMarshaling{Name: "amount", Type: "uint256"},
	)
	args := abi.Arguments{{Name: "order", Type: ty}}

	for name, in := range map[string]any{
		"object": map[string]any{"to": "0x1111111111111111111111111111111111111111", "amount": "5"},
		"list":   []any{"0x1111111111111111111111111111111111111111", float64(5)},
		"json":   `{"to":"0x1111111111111111111111111111111111111111","amount":"5"}`,
	} {
		t.Run(name, func(t *testing.T) {
			v, err := packArg(ty, in)
			require.NoError(t, err)
			_, err = args.Pack(v)
			assert.NoError(t, err)
		})
	}

	_, err := packArg(ty, map[string]any{"to": "0x1111111111111111111111111111111111111111"})
	assert.Error(t, err)
}

func TestPackArgsWrapsErrInvalidParam(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(`[{"type":"function","name":"f","inputs":[{"name":"who","type":"address"}],"outputs":[]}]`))
	require.NoError(t, err)

	_, err = packArgs(parsed.Methods["f"].Inputs, []any{"nope"})
	assert.ErrorIs(t, err, ErrInvalidParam)
	assert.Contains(t, err.Error(), "who")
}
