// Package ens resolves ENS names for contract and account addresses.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// RegistryAddress is the ENS registry, the same on mainnet and Sepolia.
const RegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

// Lookup errors.
var (
	ErrNoResolver = errors.New("no ENS resolver set")
	ErrNoAddress  = errors.New("no ENS address record")
	ErrNoName     = errors.New("no ENS reverse record")
)

const registryABI = `[
  {"type":"function","name":"resolver","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"}
]`

const resolverABI = `[
  {"type":"function","name":"addr","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
  {"type":"function","name":"name","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"}
]`

var (
	parsedRegistry = mustParse(registryABI)
	parsedResolver = mustParse(resolverABI)
)

func mustParse(text string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(text))
	if err != nil {
		panic("ens: " + err.Error())
	}
	return parsed
}

// IsName reports whether s looks like an ENS name rather than a hex address.
func IsName(s string) bool {
	s = strings.TrimSpace(s)
	return strings.Contains(s, ".") && !strings.HasPrefix(strings.ToLower(s), "0x")
}

// Resolver queries the ENS registry through a contract caller.
type Resolver struct {
	caller   bind.ContractCaller
	registry common.Address
}

// NewResolver returns a Resolver using the canonical registry.
func NewResolver(caller bind.ContractCaller) *Resolver {
	return &Resolver{caller: caller, registry: common.HexToAddress(RegistryAddress)}
}

// Resolve returns the address record of name.
func (r *Resolver) Resolve(ctx context.Context, name string) (common.Address, error) {
	node := Namehash(strings.ToLower(strings.TrimSpace(name)))
	resolver, err := r.resolverFor(ctx, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w for %q", err, name)
	}

	var out []any
	if err := r.bound(resolver, parsedResolver).Call(&bind.CallOpts{Context: ctx}, &out, "addr", node); err != nil {
		return common.Address{}, fmt.Errorf("querying ENS resolver: %w", err)
	}
	addr := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w for %q", ErrNoAddress, name)
	}
	return addr, nil
}

// ReverseLookup returns the primary name of addr.
func (r *Resolver) ReverseLookup(ctx context.Context, addr common.Address) (string, error) {
	node := Namehash(strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")) + ".addr.reverse")
	resolver, err := r.resolverFor(ctx, node)
	if err != nil {
		return "", fmt.Errorf("%w: %w for %s", ErrNoName, err, addr.Hex())
	}

	var out []any
	if err := r.bound(resolver, parsedResolver).Call(&bind.CallOpts{Context: ctx}, &out, "name", node); err != nil {
		return "", fmt.Errorf("querying reverse resolver: %w", err)
	}
	name, _ := out[0].(string)
	if name == "" {
		return "", fmt.Errorf("%w for %s", ErrNoName, addr.Hex())
	}
	return name, nil
}

func (r *Resolver) resolverFor(ctx context.Context, node common.Hash) (common.Address, error) {
	var out []any
	if err := r.bound(r.registry, parsedRegistry).Call(&bind.CallOpts{Context: ctx}, &out, "resolver", node); err != nil {
		return common.Address{}, fmt.Errorf("querying ENS registry: %w", err)
	}
	resolver := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	if resolver == (common.Address{}) {
		return common.Address{}, ErrNoResolver
	}
	return resolver, nil
}

func (r *Resolver) bound(addr common.Address, parsed abi.ABI) *bind.BoundContract {
	return bind.NewBoundContract(addr, parsed, r.caller, nil, nil)
}

// Namehash implements the EIP-137 namehash. Labels are hashed right to left
// onto a zero node.
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		node = common.BytesToHash(keccak256(node[:], keccak256([]byte(labels[i]))))
	}
	return node
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
