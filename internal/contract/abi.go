// Package contract binds an ABI to a contract address and dispatches read
// and write calls through a go-ethereum backend.
package contract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// State mutability classes.
const (
	MutabilityView       = "view"
	MutabilityPure       = "pure"
	MutabilityNonPayable = "nonpayable"
	MutabilityPayable    = "payable"
)

// ABIEntry is one ABI entry (function, event, constructor, ...).
type ABIEntry struct {
	Name            string     `json:"name,omitempty"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs,omitempty"`
	StateMutability string     `json:"stateMutability,omitempty"`
	Constant        bool       `json:"constant,omitempty"`
	Payable         bool       `json:"payable,omitempty"`
	Anonymous       bool       `json:"anonymous,omitempty"`
}

// ABIParam is an input or output of an ABI entry. Components describe the
// fields of tuple types.
type ABIParam struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	InternalType string     `json:"internalType,omitempty"`
	Indexed      bool       `json:"indexed,omitempty"`
	Components   []ABIParam `json:"components,omitempty"`
}

// Mutability returns the state mutability, derived from the legacy
// constant/payable flags when the ABI predates stateMutability.
func (e ABIEntry) Mutability() string {
	switch {
	case e.StateMutability != "":
		return e.StateMutability
	case e.Constant:
		return MutabilityView
	case e.Payable:
		return MutabilityPayable
	default:
		return MutabilityNonPayable
	}
}

// IsReadFunction reports whether the entry is a view/pure (or legacy
// constant) function.
func (e ABIEntry) IsReadFunction() bool {
	if e.Type != "function" {
		return false
	}
	m := e.Mutability()
	return m == MutabilityView || m == MutabilityPure || e.Constant
}

// IsWriteFunction reports whether the entry is a state-changing function.
func (e ABIEntry) IsWriteFunction() bool {
	return e.Type == "function" && !e.IsReadFunction()
}

// Signature is the canonical signature, e.g. "transfer(address,uint256)".
func (e ABIEntry) Signature() string {
	types := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		types[i] = p.CanonicalType()
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector is the 0x-prefixed 4-byte function selector.
func (e ABIEntry) Selector() string {
	return SelectorOf(e.Signature())
}

// CanonicalType expands tuple types into their component list, e.g.
// "tuple[]" with (address,uint256) becomes "(address,uint256)[]".
func (p ABIParam) CanonicalType() string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return p.Type
	}
	parts := make([]string, len(p.Components))
	for i, c := range p.Components {
		parts[i] = c.CanonicalType()
	}
	return "(" + strings.Join(parts, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
}

// FunctionDescriptor is the read-only projection of a function entry.
type FunctionDescriptor struct {
	Name            string     `json:"name"`
	StateMutability string     `json:"stateMutability"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs"`
	Payable         bool       `json:"payable"`
	Constant        bool       `json:"constant"`
	Signature       string     `json:"signature"`
	Selector        string     `json:"selector"`
}

// IsRead reports whether calls to the function take the read path.
func (d FunctionDescriptor) IsRead() bool {
	return d.Constant || d.StateMutability == MutabilityView || d.StateMutability == MutabilityPure
}

func describe(e ABIEntry) FunctionDescriptor {
	m := e.Mutability()
	return FunctionDescriptor{
		Name:            e.Name,
		StateMutability: m,
		Inputs:          nonNil(e.Inputs),
		Outputs:         nonNil(e.Outputs),
		Payable:         m == MutabilityPayable || e.Payable,
		Constant:        e.Constant,
		Signature:       e.Signature(),
		Selector:        e.Selector(),
	}
}

func nonNil(ps []ABIParam) []ABIParam {
	if ps == nil {
		return []ABIParam{}
	}
	return ps
}

// Functions filters entries to functions, preserving order.
func Functions(entries []ABIEntry) []FunctionDescriptor {
	out := make([]FunctionDescriptor, 0, len(entries))
	for _, e := range entries {
		if e.Type == "function" {
			out = append(out, describe(e))
		}
	}
	return out
}

// ParseABI decodes a JSON ABI array into entries.
func ParseABI(data []byte) ([]ABIEntry, error) {
	var entries []ABIEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidABI, err)
	}
	return entries, nil
}

// ExtractABI accepts either a raw ABI array or a Hardhat/Foundry artifact
// ({"abi": [...], ...}) and returns the ABI array bytes.
func ExtractABI(data []byte) ([]byte, error) {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidABI)
	}
	if data[0] == '[' {
		return data, nil
	}

	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidABI, err)
	}
	if len(artifact.ABI) == 0 || artifact.ABI[0] != '[' {
		return nil, fmt.Errorf("%w: JSON object without an \"abi\" array", ErrInvalidABI)
	}
	return artifact.ABI, nil
}

// entriesFromParsed rebuilds entries from a go-ethereum ABI. Method order is
// not recoverable from abi.ABI, so functions are sorted by name.
func entriesFromParsed(parsed abi.ABI) []ABIEntry {
	out := make([]ABIEntry, 0, len(parsed.Methods)+len(parsed.Events))
	for _, m := range parsed.Methods {
		out = append(out, ABIEntry{
			Name:            m.RawName,
			Type:            "function",
			Inputs:          paramsFromArguments(m.Inputs),
			Outputs:         paramsFromArguments(m.Outputs),
			StateMutability: m.StateMutability,
			Constant:        m.Constant,
			Payable:         m.Payable,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	events := make([]ABIEntry, 0, len(parsed.Events))
	for _, ev := range parsed.Events {
		events = append(events, ABIEntry{
			Name:      ev.RawName,
			Type:      "event",
			Inputs:    paramsFromArguments(ev.Inputs),
			Anonymous: ev.Anonymous,
		})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Name < events[j].Name })
	return append(out, events...)
}

func paramsFromArguments(args abi.Arguments) []ABIParam {
	out := make([]ABIParam, len(args))
	for i, a := range args {
		p := paramFromType(a.Type)
		p.Name = a.Name
		p.Indexed = a.Indexed
		out[i] = p
	}
	return out
}

func paramFromType(t abi.Type) ABIParam {
	switch t.T {
	case abi.TupleTy:
		comps := make([]ABIParam, len(t.TupleElems))
		for i, el := range t.TupleElems {
			comps[i] = paramFromType(*el)
			comps[i].Name = t.TupleRawNames[i]
		}
		return ABIParam{Type: "tuple", Components: comps}
	case abi.SliceTy:
		inner := paramFromType(*t.Elem)
		inner.Type += "[]"
		return inner
	case abi.ArrayTy:
		inner := paramFromType(*t.Elem)
		inner.Type += fmt.Sprintf("[%d]", t.Size)
		return inner
	default:
		return ABIParam{Type: t.String()}
	}
}
