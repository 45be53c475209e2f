package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
)

// Connector tracks the connected account and chain of a Provider and fans
// provider events out to observers.
type Connector struct {
	provider Provider
	unsub    func()

	mu        sync.RWMutex
	account   string
	chainID   int64
	observers map[int]func(Event)
	nextID    int
}

// NewConnector wraps p. A nil p behaves like a missing wallet extension:
// Connect fails with ErrProviderNotInstalled.
func NewConnector(p Provider) *Connector {
	c := &Connector{
		provider:  p,
		observers: make(map[int]func(Event)),
	}
	if p != nil {
		c.unsub = p.Subscribe(c.handle)
	}
	return c
}

// Connect requests account access and returns the primary account.
func (c *Connector) Connect(ctx context.Context) (string, error) {
	if c.provider == nil {
		return "", ErrProviderNotInstalled
	}
	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("requesting accounts: %w", err)
	}
	if len(accounts) == 0 {
		return "", ErrNoAuthorizedAccount
	}
	id, err := c.provider.ChainID(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.account = accounts[0]
	c.chainID = id
	c.mu.Unlock()
	return accounts[0], nil
}

// CheckConnection restores a previously granted connection without
// prompting. Failures are reported as not connected.
func (c *Connector) CheckConnection(ctx context.Context) (string, bool) {
	if c.provider == nil {
		return "", false
	}
	accounts, err := c.provider.Accounts(ctx)
	if err != nil || len(accounts) == 0 {
		return "", false
	}
	id, err := c.provider.ChainID(ctx)
	if err != nil {
		return "", false
	}

	c.mu.Lock()
	c.account = accounts[0]
	c.chainID = id
	c.mu.Unlock()
	return accounts[0], true
}

// SwitchChain asks the provider to move to chainID.
func (c *Connector) SwitchChain(ctx context.Context, chainID int64) error {
	if c.provider == nil {
		return ErrProviderNotInstalled
	}
	if err := c.provider.SwitchChain(ctx, chainID); err != nil {
		return fmt.Errorf("switching to chain %d: %w", chainID, err)
	}
	c.mu.Lock()
	c.chainID = chainID
	c.mu.Unlock()
	return nil
}

// Account returns the connected account, or "".
func (c *Connector) Account() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.account
}

// ChainID returns the last known chain ID, 0 when not connected.
func (c *Connector) ChainID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chainID
}

// IsConnected reports whether an account is connected.
func (c *Connector) IsConnected() bool {
	return c.Account() != ""
}

// Backend returns the provider's read backend.
func (c *Connector) Backend() chain.Backend {
	if c.provider == nil {
		return nil
	}
	return c.provider.Backend()
}

// Signer returns transact options for the connected account.
func (c *Connector) Signer(ctx context.Context) (*bind.TransactOpts, error) {
	account := c.Account()
	if account == "" {
		return nil, ErrNotConnected
	}
	return c.provider.Signer(ctx, account)
}

// Subscribe registers fn for every event and returns a cancel func.
func (c *Connector) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// OnChainChanged registers fn for chain changes.
func (c *Connector) OnChainChanged(fn func(chainID int64)) func() {
	return c.Subscribe(func(ev Event) {
		if e, ok := ev.(ChainChanged); ok {
			fn(e.ChainID)
		}
	})
}

// OnAccountsChanged registers fn for non-empty account changes.
func (c *Connector) OnAccountsChanged(fn func(accounts []string)) func() {
	return c.Subscribe(func(ev Event) {
		if e, ok := ev.(AccountsChanged); ok {
			fn(e.Accounts)
		}
	})
}

// OnDisconnect registers fn for disconnects, including revoked access.
func (c *Connector) OnDisconnect(fn func()) func() {
	return c.Subscribe(func(ev Event) {
		if _, ok := ev.(Disconnected); ok {
			fn()
		}
	})
}

// Close stops listening to the provider.
func (c *Connector) Close() {
	if c.unsub != nil {
		c.unsub()
	}
}

// handle updates state from a provider event, then notifies observers.
// An empty AccountsChanged is delivered as Disconnected.
func (c *Connector) handle(ev Event) {
	c.mu.Lock()
	switch e := ev.(type) {
	case ChainChanged:
		c.chainID = e.ChainID
	case AccountsChanged:
		if len(e.Accounts) == 0 {
			c.account = ""
			c.chainID = 0
			ev = Disconnected{}
		} else {
			c.account = e.Accounts[0]
		}
	case Disconnected:
		c.account = ""
		c.chainID = 0
	}
	observers := make([]func(Event), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
}
