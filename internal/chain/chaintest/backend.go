// Package chaintest provides an in-memory go-ethereum backend for tests.
// Calls and transactions are dispatched by 4-byte selector to handlers
// registered against a parsed ABI.
package chaintest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
)

// ErrReverted is returned for calls and transactions no handler accepts.
var ErrReverted = errors.New("execution reverted")

// CallFunc answers an eth_call with the method's outputs.
type CallFunc func(args []any) ([]any, error)

// TransactFunc applies a transaction and returns the logs it emits.
type TransactFunc func(from common.Address, value *big.Int, args []any) ([]*types.Log, error)

type transactHandler struct {
	method abi.Method
	fn     TransactFunc
}

// Backend is a fake node. The zero value is not usable; call New.
type Backend struct {
	mu sync.Mutex

	chainID  *big.Int
	block    uint64
	code     map[common.Address][]byte
	calls    map[[4]byte]func([]byte) ([]byte, error)
	txs      map[[4]byte]transactHandler
	receipts map[common.Hash]*types.Receipt
	polls    map[common.Hash]int

	// PendingPolls is how many receipt lookups report "not found" before a
	// transaction is mined.
	PendingPolls int
	// FailTransactions makes every mined receipt carry a failed status.
	FailTransactions bool
	// ChainIDErr, when set, is returned by ChainID.
	ChainIDErr error

	Sent  []*types.Transaction
	Calls []ethereum.CallMsg
}

var _ chain.Backend = (*Backend)(nil)

// New returns a backend reporting chainID.
func New(chainID int64) *Backend {
	return &Backend{
		chainID:  big.NewInt(chainID),
		block:    100,
		code:     make(map[common.Address][]byte),
		calls:    make(map[[4]byte]func([]byte) ([]byte, error)),
		txs:      make(map[[4]byte]transactHandler),
		receipts: make(map[common.Hash]*types.Receipt),
		polls:    make(map[common.Hash]int),
	}
}

// SetChainID changes the reported chain ID.
func (b *Backend) SetChainID(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chainID = big.NewInt(id)
}

// FailChainID makes ChainID return err until called again with nil.
func (b *Backend) FailChainID(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ChainIDErr = err
}

// Deploy marks addr as holding contract code.
func (b *Backend) Deploy(addr common.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.code[addr] = []byte{0x60, 0x80, 0x60, 0x40}
}

// HandleCall registers fn for read calls to method of parsed.
func (b *Backend) HandleCall(parsed abi.ABI, method string, fn CallFunc) {
	m, ok := parsed.Methods[method]
	if !ok {
		panic(fmt.Sprintf("chaintest: method %q not in ABI", method))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[selector(m.ID)] = func(data []byte) ([]byte, error) {
		args, err := m.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, err
		}
		out, err := fn(args)
		if err != nil {
			return nil, err
		}
		return m.Outputs.Pack(out...)
	}
}

// HandleTransact registers fn for transactions calling method of parsed.
func (b *Backend) HandleTransact(parsed abi.ABI, method string, fn TransactFunc) {
	m, ok := parsed.Methods[method]
	if !ok {
		panic(fmt.Sprintf("chaintest: method %q not in ABI", method))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.txs[selector(m.ID)] = transactHandler{method: m, fn: fn}
}

// EventLog builds a log for event name of parsed emitted by addr. Indexed
// inputs become topics, the rest is ABI-encoded into data.
func EventLog(parsed abi.ABI, addr common.Address, name string, args ...any) (*types.Log, error) {
	ev, ok := parsed.Events[name]
	if !ok {
		return nil, fmt.Errorf("event %q not in ABI", name)
	}
	if len(args) != len(ev.Inputs) {
		return nil, fmt.Errorf("event %s: want %d args, got %d", name, len(ev.Inputs), len(args))
	}

	topics := []common.Hash{ev.ID}
	var data []any
	for i, in := range ev.Inputs {
		if !in.Indexed {
			data = append(data, args[i])
			continue
		}
		topic, err := topicFor(args[i])
		if err != nil {
			return nil, fmt.Errorf("event %s arg %s: %w", name, in.Name, err)
		}
		topics = append(topics, topic)
	}

	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return nil, err
	}
	return &types.Log{Address: addr, Topics: topics, Data: packed}, nil
}

// --- bind.ContractBackend ---

func (b *Backend) CodeAt(_ context.Context, contract common.Address, _ *big.Int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.code[contract], nil
}

func (b *Backend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return b.CodeAt(ctx, account, nil)
}

func (b *Backend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.mu.Lock()
	b.Calls = append(b.Calls, call)
	var handler func([]byte) ([]byte, error)
	if len(call.Data) >= 4 {
		handler = b.calls[[4]byte(call.Data[:4])]
	}
	b.mu.Unlock()

	if handler == nil {
		return nil, ErrReverted
	}
	return handler(call.Data)
}

func (b *Backend) PendingCallContract(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
	return b.CallContract(ctx, call, nil)
}

func (b *Backend) HeaderByNumber(_ context.Context, _ *big.Int) (*types.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &types.Header{
		Number:   new(big.Int).SetUint64(b.block),
		BaseFee:  big.NewInt(1_000_000_000),
		GasLimit: 30_000_000,
	}, nil
}

func (b *Backend) BlockNumber(context.Context) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.block, nil
}

func (b *Backend) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(len(b.Sent)), nil
}

func (b *Backend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (b *Backend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (b *Backend) EstimateGas(_ context.Context, _ ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (b *Backend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	from, err := types.Sender(types.LatestSignerForChainID(b.chainID), tx)
	if err != nil {
		return fmt.Errorf("recovering sender: %w", err)
	}

	var logs []*types.Log
	data := tx.Data()
	if len(data) >= 4 {
		h, ok := b.txs[[4]byte(data[:4])]
		if !ok {
			return ErrReverted
		}
		args, err := h.method.Inputs.Unpack(data[4:])
		if err != nil {
			return err
		}
		// Handlers run without the lock so they may call back into b.
		b.mu.Unlock()
		logs, err = h.fn(from, tx.Value(), args)
		b.mu.Lock()
		if err != nil {
			return err
		}
	}

	b.block++
	status := types.ReceiptStatusSuccessful
	if b.FailTransactions {
		status = types.ReceiptStatusFailed
	}
	for i, l := range logs {
		l.TxHash = tx.Hash()
		l.BlockNumber = b.block
		l.Index = uint(i)
	}
	b.Sent = append(b.Sent, tx)
	b.receipts[tx.Hash()] = &types.Receipt{
		Type:              tx.Type(),
		Status:            status,
		TxHash:            tx.Hash(),
		GasUsed:           21_000,
		CumulativeGasUsed: 21_000,
		BlockNumber:       new(big.Int).SetUint64(b.block),
		Logs:              logs,
	}
	return nil
}

func (b *Backend) FilterLogs(_ context.Context, _ ethereum.FilterQuery) ([]types.Log, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []types.Log
	for _, r := range b.receipts {
		for _, l := range r.Logs {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (b *Backend) SubscribeFilterLogs(_ context.Context, _ ethereum.FilterQuery, _ chan<- types.Log) (ethereum.Subscription, error) {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		<-quit
		return nil
	}), nil
}

// --- receipts & chain ---

func (b *Backend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	if b.polls[hash] < b.PendingPolls {
		b.polls[hash]++
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (b *Backend) ChainID(context.Context) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ChainIDErr != nil {
		return nil, b.ChainIDErr
	}
	return new(big.Int).Set(b.chainID), nil
}

func selector(id []byte) [4]byte {
	var s [4]byte
	copy(s[:], id)
	return s
}

func topicFor(v any) (common.Hash, error) {
	switch x := v.(type) {
	case common.Address:
		return common.BytesToHash(x.Bytes()), nil
	case *big.Int:
		return common.BigToHash(x), nil
	case common.Hash:
		return x, nil
	case bool:
		if x {
			return common.BigToHash(big.NewInt(1)), nil
		}
		return common.Hash{}, nil
	default:
		return common.Hash{}, fmt.Errorf("unsupported indexed type %T", v)
	}
}
