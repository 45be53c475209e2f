package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Backend is everything abistudio needs from a node: contract calls and
// transacts, receipts and the chain ID. *ethclient.Client satisfies it.
type Backend interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

var _ Backend = (*ethclient.Client)(nil)

// Dial connects to an EVM JSON-RPC endpoint.
func Dial(ctx context.Context, url string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return client, nil
}

// Ping dials url and fetches the latest block number, returning the
// round-trip latency of that request.
func Ping(ctx context.Context, url string) (time.Duration, uint64, error) {
	client, err := Dial(ctx, url)
	if err != nil {
		return 0, 0, err
	}
	defer client.Close()

	start := time.Now()
	block, err := client.BlockNumber(ctx)
	latency := time.Since(start)
	if err != nil {
		return latency, 0, fmt.Errorf("eth_blockNumber on %s: %w", url, err)
	}
	return latency, block, nil
}
