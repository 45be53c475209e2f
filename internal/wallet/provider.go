package wallet

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
)

// Errors surfaced by providers and the connector.
var (
	ErrProviderNotInstalled = errors.New("wallet provider not installed")
	ErrNoAuthorizedAccount  = errors.New("no authorized account")
	ErrUserRejected         = errors.New("user rejected the request")
	ErrUnknownChain         = errors.New("unknown chain")
	ErrNotConnected         = errors.New("wallet not connected")
)

// Event is a provider notification: ChainChanged, AccountsChanged or
// Disconnected.
type Event interface {
	event()
}

// ChainChanged reports the provider moved to another chain.
type ChainChanged struct {
	ChainID int64
}

// AccountsChanged reports a new account list; an empty list means access
// was revoked.
type AccountsChanged struct {
	Accounts []string
}

// Disconnected reports the provider lost its connection or access.
type Disconnected struct {
	Err error
}

func (ChainChanged) event()    {}
func (AccountsChanged) event() {}
func (Disconnected) event()    {}

// Provider is the wallet the rest of the program talks to.
type Provider interface {
	// RequestAccounts asks for account access, prompting if needed.
	RequestAccounts(ctx context.Context) ([]string, error)
	// Accounts returns already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]string, error)
	ChainID(ctx context.Context) (int64, error)
	SwitchChain(ctx context.Context, chainID int64) error
	// Backend is the read provider; nil until connected.
	Backend() chain.Backend
	// Signer returns transact options for account on the current chain.
	Signer(ctx context.Context, account string) (*bind.TransactOpts, error)
	// Subscribe registers fn for provider events and returns a cancel func.
	Subscribe(fn func(Event)) (unsubscribe func())
}
