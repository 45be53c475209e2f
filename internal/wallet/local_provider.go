package wallet

import (
	"context"
	"fmt"
	"math/big"
	"slices"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/rpc"
	"github.com/Mohsinsiddi/abistudio/internal/storage"
)

const walletEventTopic = "wallet:event"

// DialFunc connects to an RPC URL.
type DialFunc func(ctx context.Context, url string) (chain.Backend, error)

// SelectFunc picks one RPC URL from candidates.
type SelectFunc func(ctx context.Context, urls []string, algorithm string) (string, error)

// ApproveFunc is asked before accounts are exposed for the first time.
type ApproveFunc func(accounts []string) bool

// NetworkConfig selects the initial chain and RPCs.
type NetworkConfig struct {
	Network    string // chain slug, e.g. "ethereum"
	Mode       string // mainnet | testnet
	Algorithm  string // rpc selection algorithm
	CustomRPCs map[string][]string
}

// LocalProvider exposes the wallets in a Manager as a wallet provider. Access
// grants are remembered in local storage.
type LocalProvider struct {
	wallets  *Manager
	store    storage.Store
	registry *chain.Registry
	netcfg   NetworkConfig

	dial    DialFunc
	selectf SelectFunc
	approve ApproveFunc
	logger  *zap.Logger
	bus     evbus.Bus

	mu      sync.Mutex
	backend chain.Backend
	current *chain.Chain
	chainID int64
	rpcURL  string

	subMu  sync.Mutex
	subSeq int
	topics []string
}

// ProviderOption configures a LocalProvider.
type ProviderOption func(*LocalProvider)

// WithDialer overrides how RPC endpoints are dialed.
func WithDialer(d DialFunc) ProviderOption {
	return func(p *LocalProvider) { p.dial = d }
}

// WithSelector overrides RPC selection.
func WithSelector(s SelectFunc) ProviderOption {
	return func(p *LocalProvider) { p.selectf = s }
}

// WithApprover sets the prompt shown before granting account access.
func WithApprover(a ApproveFunc) ProviderOption {
	return func(p *LocalProvider) { p.approve = a }
}

// WithProviderLogger sets the logger.
func WithProviderLogger(l *zap.Logger) ProviderOption {
	return func(p *LocalProvider) { p.logger = l }
}

// NewLocalProvider creates a provider over wallets. store keeps the access
// grant; registry resolves chains.
func NewLocalProvider(wallets *Manager, store storage.Store, registry *chain.Registry, netcfg NetworkConfig, opts ...ProviderOption) *LocalProvider {
	p := &LocalProvider{
		wallets:  wallets,
		store:    store,
		registry: registry,
		netcfg:   netcfg,
		dial: func(ctx context.Context, url string) (chain.Backend, error) {
			return chain.Dial(ctx, url)
		},
		selectf: rpc.NewProber(nil).Select,
		approve: func([]string) bool { return true },
		logger:  zap.NewNop(),
		bus:     evbus.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RequestAccounts grants access to the local wallets, asking the approver
// the first time.
func (p *LocalProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	accounts, err := p.walletAccounts()
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return accounts, nil
	}

	if !p.authorized() {
		if !p.approve(accounts) {
			return nil, ErrUserRejected
		}
		if err := p.store.SetItem(config.KeyWalletAuthorized, "true"); err != nil {
			return nil, fmt.Errorf("saving authorization: %w", err)
		}
		p.publish(AccountsChanged{Accounts: accounts})
	}

	if _, err := p.ensureBackend(ctx); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Accounts returns the wallet addresses if access was granted before.
func (p *LocalProvider) Accounts(_ context.Context) ([]string, error) {
	if !p.authorized() {
		return []string{}, nil
	}
	return p.walletAccounts()
}

// Disconnect revokes access and notifies subscribers.
func (p *LocalProvider) Disconnect() error {
	if err := p.store.RemoveItem(config.KeyWalletAuthorized); err != nil {
		return fmt.Errorf("revoking authorization: %w", err)
	}
	p.publish(AccountsChanged{Accounts: []string{}})
	return nil
}

// ChainID returns the connected chain's ID, connecting first if needed.
func (p *LocalProvider) ChainID(ctx context.Context) (int64, error) {
	backend, err := p.ensureBackend(ctx)
	if err != nil {
		return 0, err
	}
	id, err := backend.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("eth_chainId: %w", err)
	}

	p.mu.Lock()
	p.chainID = id.Int64()
	p.mu.Unlock()
	return id.Int64(), nil
}

// SwitchChain moves the provider to chainID, which may be any mainnet or
// testnet ID in the registry.
func (p *LocalProvider) SwitchChain(ctx context.Context, chainID int64) error {
	c, err := p.registry.GetByChainID(chainID)
	if err != nil {
		return fmt.Errorf("%w: %d", ErrUnknownChain, chainID)
	}
	if err := p.connect(ctx, c, c.ModeOf(chainID)); err != nil {
		return err
	}
	p.publish(ChainChanged{ChainID: chainID})
	return nil
}

// Backend returns the current read provider, nil before the first connect.
func (p *LocalProvider) Backend() chain.Backend {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backend
}

// Network returns the current chain and RPC URL.
func (p *LocalProvider) Network() (*chain.Chain, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.rpcURL
}

// Signer returns transact options for account on the current chain.
func (p *LocalProvider) Signer(ctx context.Context, account string) (*bind.TransactOpts, error) {
	if !p.authorized() {
		return nil, ErrNoAuthorizedAccount
	}
	w, err := p.wallets.GetByAddress(account)
	if err != nil {
		return nil, err
	}
	id, err := p.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return NewSigner(w, p.wallets.KeyStore()).TransactOpts(big.NewInt(id))
}

// Subscribe registers fn for provider events. Events are delivered
// synchronously on the publishing goroutine.
//
// Every subscriber has its own bus topic so unsubscribing removes exactly
// its handler; the bus matches handlers by function pointer.
func (p *LocalProvider) Subscribe(fn func(Event)) func() {
	p.subMu.Lock()
	p.subSeq++
	topic := fmt.Sprintf("%s:%d", walletEventTopic, p.subSeq)
	p.subMu.Unlock()

	if err := p.bus.Subscribe(topic, fn); err != nil {
		p.logger.Warn("wallet event subscription failed", zap.Error(err))
		return func() {}
	}
	p.subMu.Lock()
	p.topics = append(p.topics, topic)
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			p.topics = slices.DeleteFunc(p.topics, func(t string) bool { return t == topic })
			p.subMu.Unlock()
			if err := p.bus.Unsubscribe(topic, fn); err != nil {
				p.logger.Warn("wallet event unsubscribe failed", zap.Error(err))
			}
		})
	}
}

// Watch polls the chain ID every interval until ctx is done. A different ID
// emits ChainChanged. An RPC failure emits Disconnected once; the first
// successful poll after it re-announces the granted accounts so subscribers
// can bind again.
func (p *LocalProvider) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	down := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		backend := p.Backend()
		if backend == nil {
			continue
		}
		id, err := backend.ChainID(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !down {
				p.logger.Warn("rpc unreachable", zap.Error(err))
				p.publish(Disconnected{Err: err})
				down = true
			}
			continue
		}

		p.mu.Lock()
		changed := p.chainID != 0 && p.chainID != id.Int64()
		p.chainID = id.Int64()
		p.mu.Unlock()

		if down {
			down = false
			accounts, err := p.Accounts(ctx)
			if err != nil {
				p.logger.Warn("listing accounts after reconnect", zap.Error(err))
			} else if len(accounts) > 0 {
				p.logger.Info("rpc reachable again", zap.Int64("chain_id", id.Int64()))
				p.publish(AccountsChanged{Accounts: accounts})
			}
		}
		if changed {
			p.publish(ChainChanged{ChainID: id.Int64()})
		}
	}
}

// Close releases the RPC connection.
func (p *LocalProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	closeBackend(p.backend)
	p.backend = nil
}

// --- internal ---

func (p *LocalProvider) publish(ev Event) {
	p.subMu.Lock()
	topics := slices.Clone(p.topics)
	p.subMu.Unlock()
	for _, t := range topics {
		p.bus.Publish(t, ev)
	}
}

func (p *LocalProvider) authorized() bool {
	v, ok, err := p.store.GetItem(config.KeyWalletAuthorized)
	return err == nil && ok && v == "true"
}

func (p *LocalProvider) walletAccounts() ([]string, error) {
	list, err := p.wallets.List()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(list))
	for i, w := range list {
		out[i] = w.Address
	}
	return out, nil
}

func (p *LocalProvider) ensureBackend(ctx context.Context) (chain.Backend, error) {
	if b := p.Backend(); b != nil {
		return b, nil
	}
	c, err := p.registry.GetByName(p.netcfg.Network)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChain, p.netcfg.Network)
	}
	if err := p.connect(ctx, c, p.netcfg.Mode); err != nil {
		return nil, err
	}
	return p.Backend(), nil
}

func (p *LocalProvider) connect(ctx context.Context, c *chain.Chain, mode string) error {
	urls := append(append([]string{}, p.netcfg.CustomRPCs[c.Name]...), c.RPCs(mode)...)
	url, err := p.selectf(ctx, urls, p.netcfg.Algorithm)
	if err != nil {
		return fmt.Errorf("selecting %s RPC: %w", c.Name, err)
	}
	backend, err := p.dial(ctx, url)
	if err != nil {
		return err
	}

	p.mu.Lock()
	old := p.backend
	p.backend = backend
	p.current = c
	p.chainID = c.ID(mode)
	p.rpcURL = url
	p.mu.Unlock()

	if old != nil && old != backend {
		closeBackend(old)
	}
	p.logger.Debug("connected",
		zap.String("chain", c.Name),
		zap.String("mode", mode),
		zap.String("rpc", url),
	)
	return nil
}

func closeBackend(b chain.Backend) {
	if c, ok := b.(interface{ Close() }); ok {
		c.Close()
	}
}
