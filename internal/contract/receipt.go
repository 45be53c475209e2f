package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Human-readable receipt statuses.
const (
	StatusSuccess = "成功"
	StatusFailure = "失败"
)

// Receipt is the normalized result of a mined write call.
type Receipt struct {
	Hash        string         `json:"hash"`
	BlockNumber uint64         `json:"blockNumber"`
	Status      string         `json:"status"`
	GasUsed     uint64         `json:"gasUsed"`
	Logs        []*types.Log   `json:"logs"`
	Events      []Event        `json:"events"`
	Receipt     *types.Receipt `json:"receipt"`
}

// Succeeded reports whether the transaction executed successfully.
func (r *Receipt) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Event is a log decoded with the contract ABI.
type Event struct {
	Name    string         `json:"name"`
	Address string         `json:"address"`
	Args    map[string]any `json:"args"`
}

// receiptReader is the slice of the backend needed to wait for mining.
type receiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// waitMined polls until hash has a receipt or ctx is done.
func waitMined(ctx context.Context, backend receiptReader, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r, err := backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && r != nil:
			return r, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("fetching receipt %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func normalizeReceipt(parsed *abi.ABI, r *types.Receipt) *Receipt {
	out := &Receipt{
		Hash:    r.TxHash.Hex(),
		Status:  StatusFailure,
		GasUsed: r.GasUsed,
		Logs:    r.Logs,
		Events:  decodeEvents(parsed, r.Logs),
		Receipt: r,
	}
	if r.Logs == nil {
		out.Logs = []*types.Log{}
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	if r.Status == types.ReceiptStatusSuccessful {
		out.Status = StatusSuccess
	}
	return out
}

// decodeEvents decodes the logs whose first topic matches an ABI event.
// Logs from other contracts or unknown events are skipped.
func decodeEvents(parsed *abi.ABI, logs []*types.Log) []Event {
	events := []Event{}
	if parsed == nil {
		return events
	}
	for _, l := range logs {
		if l == nil || len(l.Topics) == 0 {
			continue
		}
		ev, err := parsed.EventByID(l.Topics[0])
		if err != nil {
			continue
		}

		args := make(map[string]any)
		if len(l.Data) > 0 {
			if err := ev.Inputs.UnpackIntoMap(args, l.Data); err != nil {
				continue
			}
		}
		var indexed abi.Arguments
		for _, in := range ev.Inputs {
			if in.Indexed {
				indexed = append(indexed, in)
			}
		}
		if err := abi.ParseTopicsIntoMap(args, indexed, l.Topics[1:]); err != nil {
			continue
		}
		for k, v := range args {
			args[k] = eventValue(v)
		}
		events = append(events, Event{Name: ev.Name, Address: l.Address.Hex(), Args: args})
	}
	return events
}

func eventValue(v any) any {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case common.Address:
		return x.Hex()
	default:
		return stringifyBig(v)
	}
}
