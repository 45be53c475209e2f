package contract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
)

const defaultPollInterval = time.Second

// CallOptions tune a single call.
type CallOptions struct {
	// Value is the decimal ETH amount attached to payable calls.
	Value string
	// GasLimit overrides estimation when non-zero.
	GasLimit uint64
}

// CallResult is what CallFunction returns: a formatted value for reads, a
// receipt for writes.
type CallResult struct {
	Function string   `json:"function"`
	Read     bool     `json:"read"`
	Value    any      `json:"value,omitempty"`
	Receipt  *Receipt `json:"receipt,omitempty"`
}

// Output is the value recorded in history and shown to the user.
func (r *CallResult) Output() any {
	if r.Receipt != nil {
		return r.Receipt
	}
	return r.Value
}

// Interactor holds the active contract address, ABI, backend and signer.
// All methods are safe for concurrent use; overlapping calls are neither
// serialized nor de-duplicated.
type Interactor struct {
	mu sync.RWMutex

	address    common.Address
	hasAddress bool
	entries    []ABIEntry
	parsed     *abi.ABI
	backend    chain.Backend
	signer     *bind.TransactOpts

	bound    *bind.BoundContract
	writable bool

	pollInterval time.Duration
	logger       *zap.Logger
}

// Option configures an Interactor.
type Option func(*Interactor)

// WithPollInterval sets how often receipts are polled while waiting for a
// write to be mined.
func WithPollInterval(d time.Duration) Option {
	return func(i *Interactor) {
		if d > 0 {
			i.pollInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Interactor) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewInteractor returns an empty Interactor.
func NewInteractor(opts ...Option) *Interactor {
	i := &Interactor{
		pollInterval: defaultPollInterval,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ParseAddress accepts a 0x-prefixed 20-byte hex address.
func ParseAddress(addr string) (common.Address, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) || !strings.HasPrefix(strings.ToLower(addr), "0x") {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return common.HexToAddress(addr), nil
}

// SetContractAddress validates and stores addr in checksummed form.
func (i *Interactor) SetContractAddress(addr string) error {
	parsed, err := ParseAddress(addr)
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.address = parsed
	i.hasAddress = true
	i.initLocked()
	return nil
}

// Address returns the checksummed contract address, or "" when unset.
func (i *Interactor) Address() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if !i.hasAddress {
		return ""
	}
	return i.address.Hex()
}

// SetAbi accepts ABI text (string, []byte, json.RawMessage), parsed entries
// ([]ABIEntry) or a go-ethereum abi.ABI.
func (i *Interactor) SetAbi(v any) error {
	entries, parsed, err := loadABI(v)
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = entries
	i.parsed = parsed
	i.initLocked()
	return nil
}

// ABI returns the parsed go-ethereum ABI, or nil when unset.
func (i *Interactor) ABI() *abi.ABI {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.parsed
}

// SetBackend sets the read provider.
func (i *Interactor) SetBackend(b chain.Backend) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.backend = b
	i.initLocked()
}

// SetSigner sets the transaction signer; nil makes the binding read-only.
func (i *Interactor) SetSigner(opts *bind.TransactOpts) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.signer = opts
	i.initLocked()
}

// IsReady reports whether calls can be dispatched.
func (i *Interactor) IsReady() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.bound != nil
}

// HasSigner reports whether write calls are possible.
func (i *Interactor) HasSigner() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.writable
}

// GetAvailableFunctions lists the ABI's functions in declaration order.
func (i *Interactor) GetAvailableFunctions() []FunctionDescriptor {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return Functions(i.entries)
}

// Function looks up a function by name or full signature.
func (i *Interactor) Function(name string) (FunctionDescriptor, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	e, err := i.findLocked(name, -1)
	if err != nil {
		return FunctionDescriptor{}, err
	}
	return describe(e), nil
}

// CallFunction dispatches name with params. View, pure and legacy constant
// functions are called through the read binding even when a signer is
// present; everything else is sent as a transaction and waited on until
// mined or until ctx is done.
func (i *Interactor) CallFunction(ctx context.Context, name string, params []any, opts CallOptions) (*CallResult, error) {
	i.mu.RLock()
	bound, writable, signer, backend, parsed := i.bound, i.writable, i.signer, i.backend, i.parsed
	if bound == nil {
		i.mu.RUnlock()
		return nil, ErrNotReady
	}
	entry, err := i.findLocked(name, len(params))
	i.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	method, err := methodFor(parsed, entry)
	if err != nil {
		return nil, err
	}

	prepared, err := PrepareParams(entry.Inputs, params)
	if err != nil {
		return nil, err
	}
	args, err := packArgs(method.Inputs, prepared)
	if err != nil {
		return nil, err
	}

	if entry.IsReadFunction() {
		return i.read(ctx, bound, signer, entry, method, args)
	}
	if !writable {
		return nil, fmt.Errorf("%w: %s is %s", ErrSignerRequired, entry.Name, entry.Mutability())
	}
	return i.write(ctx, bound, signer, backend, parsed, entry, method, args, opts)
}

func (i *Interactor) read(ctx context.Context, bound *bind.BoundContract, signer *bind.TransactOpts,
	entry ABIEntry, method abi.Method, args []any) (*CallResult, error) {
	callOpts := &bind.CallOpts{Context: ctx}
	if signer != nil {
		callOpts.From = signer.From
	}

	var out []any
	if err := bound.Call(callOpts, &out, method.Name, args...); err != nil {
		i.logger.Debug("read call failed", zap.String("function", entry.Name), zap.Error(err))
		return nil, fmt.Errorf("calling %s: %w", entry.Name, err)
	}
	i.logger.Debug("read call", zap.String("function", entry.Name), zap.Int("outputs", len(out)))

	return &CallResult{
		Function: entry.Name,
		Read:     true,
		Value:    FormatResult(entry.Outputs, out),
	}, nil
}

func (i *Interactor) write(ctx context.Context, bound *bind.BoundContract, signer *bind.TransactOpts,
	backend chain.Backend, parsed *abi.ABI, entry ABIEntry, method abi.Method, args []any, opts CallOptions) (*CallResult, error) {
	txOpts := *signer
	txOpts.Context = ctx
	if opts.GasLimit > 0 {
		txOpts.GasLimit = opts.GasLimit
	}
	if describe(entry).Payable && strings.TrimSpace(opts.Value) != "" {
		wei, err := ParseEther(strings.TrimSpace(opts.Value))
		if err != nil {
			return nil, err
		}
		txOpts.Value = wei
	}

	tx, err := bound.Transact(&txOpts, method.Name, args...)
	if err != nil {
		i.logger.Debug("transaction rejected", zap.String("function", entry.Name), zap.Error(err))
		return nil, fmt.Errorf("sending %s: %w", entry.Name, err)
	}
	i.logger.Info("transaction sent",
		zap.String("function", entry.Name),
		zap.String("hash", tx.Hash().Hex()),
	)

	mined, err := waitMined(ctx, backend, tx.Hash(), i.pollInterval)
	if err != nil {
		return nil, err
	}
	receipt := normalizeReceipt(parsed, mined)
	i.logger.Info("transaction mined",
		zap.String("hash", receipt.Hash),
		zap.Uint64("block", receipt.BlockNumber),
		zap.Bool("success", receipt.Succeeded()),
	)

	return &CallResult{Function: entry.Name, Receipt: receipt}, nil
}

// initLocked rebuilds the binding. It is a no-op unless address, ABI and
// backend are all present.
func (i *Interactor) initLocked() {
	i.bound = nil
	i.writable = false
	if !i.hasAddress || i.parsed == nil || i.backend == nil {
		return
	}
	i.bound = bind.NewBoundContract(i.address, *i.parsed, i.backend, i.backend, i.backend)
	i.writable = i.signer != nil
}

// findLocked resolves name to a function entry. name may be a full
// signature; overloads are otherwise told apart by argc (-1 to skip).
func (i *Interactor) findLocked(name string, argc int) (ABIEntry, error) {
	name = strings.TrimSpace(name)
	var matches []ABIEntry
	for _, e := range i.entries {
		if e.Type != "function" {
			continue
		}
		if e.Name == name || e.Signature() == name {
			matches = append(matches, e)
		}
	}

	switch {
	case len(matches) == 0:
		return ABIEntry{}, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	case len(matches) == 1:
		return matches[0], nil
	}

	if argc >= 0 {
		var byArgc []ABIEntry
		for _, e := range matches {
			if len(e.Inputs) == argc {
				byArgc = append(byArgc, e)
			}
		}
		if len(byArgc) == 1 {
			return byArgc[0], nil
		}
	}
	return ABIEntry{}, fmt.Errorf("%w: %s; use the full signature", ErrAmbiguousFunction, name)
}

// methodFor maps an entry to go-ethereum's method, whose Name carries an
// index suffix for overloads.
func methodFor(parsed *abi.ABI, e ABIEntry) (abi.Method, error) {
	sig := e.Signature()
	for _, m := range parsed.Methods {
		if m.Sig == sig {
			return m, nil
		}
	}
	return abi.Method{}, fmt.Errorf("%w: %s", ErrFunctionNotFound, sig)
}

func loadABI(v any) ([]ABIEntry, *abi.ABI, error) {
	var raw []byte
	switch x := v.(type) {
	case string:
		raw = []byte(x)
	case []byte:
		raw = x
	case json.RawMessage:
		raw = x
	case []ABIEntry:
		data, err := json.Marshal(x)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidABI, err)
		}
		raw = data
	case abi.ABI:
		parsed := x
		return entriesFromParsed(parsed), &parsed, nil
	case *abi.ABI:
		if x == nil {
			return nil, nil, fmt.Errorf("%w: nil ABI", ErrInvalidABI)
		}
		return entriesFromParsed(*x), x, nil
	default:
		return nil, nil, fmt.Errorf("%w: unsupported ABI value %T", ErrInvalidABI, v)
	}

	raw, err := ExtractABI(raw)
	if err != nil {
		return nil, nil, err
	}
	entries, err := ParseABI(raw)
	if err != nil {
		return nil, nil, err
	}
	parsed, err := abi.JSON(strings.NewReader(string(raw)))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidABI, err)
	}
	return entries, &parsed, nil
}
