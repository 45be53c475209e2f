package contract

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// NormalizeSignature drops parameter names and whitespace:
// "transfer(address to, uint256 amount)" becomes "transfer(address,uint256)".
func NormalizeSignature(sig string) string {
	sig = strings.TrimSpace(sig)
	open := strings.Index(sig, "(")
	if open < 0 || !strings.HasSuffix(sig, ")") {
		return sig
	}

	name := strings.TrimSpace(sig[:open])
	inner := sig[open+1 : len(sig)-1]
	if strings.TrimSpace(inner) == "" {
		return name + "()"
	}

	var types []string
	for _, p := range strings.Split(inner, ",") {
		if fields := strings.Fields(p); len(fields) > 0 {
			types = append(types, fields[0])
		}
	}
	return name + "(" + strings.Join(types, ",") + ")"
}

func keccak(s string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(s))
	return h.Sum(nil)
}

// SelectorOf returns the 0x-prefixed 4-byte selector of a function
// signature, normalized first.
func SelectorOf(sig string) string {
	return "0x" + hex.EncodeToString(keccak(NormalizeSignature(sig))[:4])
}

// TopicOf returns the 32-byte topic of an event signature.
func TopicOf(sig string) string {
	return "0x" + hex.EncodeToString(keccak(NormalizeSignature(sig)))
}

// DecodedArg is one decoded calldata argument.
type DecodedArg struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// DecodedCall is calldata matched against an ABI.
type DecodedCall struct {
	Signature string       `json:"signature"`
	Selector  string       `json:"selector"`
	Args      []DecodedArg `json:"args"`
}

// DecodeCalldata matches the selector of hex calldata against entries and
// unpacks the arguments. ErrFunctionNotFound means no function in the ABI
// has that selector.
func DecodeCalldata(entries []ABIEntry, calldata string) (*DecodedCall, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(calldata), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: calldata is not hex: %v", ErrInvalidParam, err)
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: calldata shorter than a selector", ErrInvalidParam)
	}

	doc, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	parsed, err := abi.JSON(strings.NewReader(string(doc)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidABI, err)
	}
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: selector 0x%x", ErrFunctionNotFound, data[:4])
	}

	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: unpacking %s: %v", ErrInvalidParam, method.Sig, err)
	}
	call := &DecodedCall{
		Signature: method.Sig,
		Selector:  "0x" + hex.EncodeToString(method.ID),
		Args:      make([]DecodedArg, len(values)),
	}
	for i, v := range values {
		in := method.Inputs[i]
		call.Args[i] = DecodedArg{Name: in.Name, Type: in.Type.String(), Value: stringifyBig(v)}
	}
	return call, nil
}
