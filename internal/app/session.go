// Package app wires the wallet connector, ABI store, contract interactor and
// call history into one Session shared by the CLI, the studio and the server.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/abistore"
	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/ens"
	"github.com/Mohsinsiddi/abistudio/internal/history"
	"github.com/Mohsinsiddi/abistudio/internal/metrics"
	"github.com/Mohsinsiddi/abistudio/internal/storage"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

// Options configures New. Config is required; the rest default from it.
type Options struct {
	Config  *config.Config
	Store   storage.Store
	Wallets *wallet.Manager
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	ProviderOptions   []wallet.ProviderOption
	InteractorOptions []contract.Option
}

// Session owns the state of one running abistudio: storage, the connected
// wallet, the active ABI and contract, and the call history.
type Session struct {
	Config    *config.Config
	Store     storage.Store
	Registry  *chain.Registry
	ABIs      *abistore.Manager
	History   *history.Manager
	Wallets   *wallet.Manager
	Provider  *wallet.LocalProvider
	Connector *wallet.Connector
	Contract  *contract.Interactor
	Metrics   *metrics.Metrics
	Logger    *zap.Logger

	mu        sync.RWMutex
	activeABI string
	unsub     []func()
}

// Status is a snapshot for status displays.
type Status struct {
	Connected bool   `json:"connected"`
	Account   string `json:"account,omitempty"`
	ChainID   int64  `json:"chainId,omitempty"`
	Network   string `json:"network,omitempty"`
	RPC       string `json:"rpc,omitempty"`
	Address   string `json:"address,omitempty"`
	ABI       string `json:"abi,omitempty"`
	Ready     bool   `json:"ready"`
	CanWrite  bool   `json:"canWrite"`
}

// New builds a Session. Nothing touches the network until Connect or
// Restore is called.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = storage.Open(cfg.StorageDriver, cfg.StoragePath())
		if err != nil {
			return nil, fmt.Errorf("opening storage: %w", err)
		}
	}

	wallets := opts.Wallets
	if wallets == nil {
		wallets = wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())))
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.New(log)
	}

	registry := chain.NewRegistry()
	provOpts := append([]wallet.ProviderOption{wallet.WithProviderLogger(log.Named("wallet"))}, opts.ProviderOptions...)
	provider := wallet.NewLocalProvider(wallets, store, registry, wallet.NetworkConfig{
		Network:    cfg.DefaultNetwork,
		Mode:       cfg.NetworkMode,
		Algorithm:  cfg.RPCAlgorithm,
		CustomRPCs: cfg.CustomRPCs,
	}, provOpts...)

	ixOpts := append([]contract.Option{contract.WithLogger(log.Named("contract"))}, opts.InteractorOptions...)

	s := &Session{
		Config:    cfg,
		Store:     store,
		Registry:  registry,
		ABIs:      abistore.NewManager(store),
		History:   history.NewManager(store),
		Wallets:   wallets,
		Provider:  provider,
		Connector: wallet.NewConnector(provider),
		Contract:  contract.NewInteractor(ixOpts...),
		Metrics:   m,
		Logger:    log,
	}

	s.unsub = append(s.unsub,
		s.Connector.OnChainChanged(func(id int64) {
			s.Logger.Info("chain changed", zap.Int64("chain_id", id))
			s.rebind()
		}),
		s.Connector.OnAccountsChanged(func(accounts []string) {
			s.Logger.Info("accounts changed", zap.Strings("accounts", accounts))
			s.rebind()
		}),
		s.Connector.OnDisconnect(func() {
			s.Logger.Info("wallet disconnected")
			s.Contract.SetSigner(nil)
		}),
	)
	return s, nil
}

// Connect asks for wallet access and binds the backend and signer to the
// contract. It returns the connected account.
func (s *Session) Connect(ctx context.Context) (string, error) {
	account, err := s.Connector.Connect(ctx)
	if err != nil {
		return "", err
	}
	s.bind(ctx)
	return account, nil
}

// Restore reconnects without prompting when access was granted earlier.
func (s *Session) Restore(ctx context.Context) (string, bool) {
	account, ok := s.Connector.CheckConnection(ctx)
	if ok {
		s.bind(ctx)
	}
	return account, ok
}

// Disconnect revokes wallet access.
func (s *Session) Disconnect() error {
	return s.Provider.Disconnect()
}

// SwitchChain moves the wallet to chainID and rebinds the contract.
func (s *Session) SwitchChain(ctx context.Context, chainID int64) error {
	return s.Connector.SwitchChain(ctx, chainID)
}

// UseABI makes the saved ABI name the active one.
func (s *Session) UseABI(name string) error {
	text, err := s.ABIs.GetAbiByName(name)
	if err != nil {
		return err
	}
	if err := s.Contract.SetAbi(text); err != nil {
		return err
	}
	s.mu.Lock()
	s.activeABI = name
	s.mu.Unlock()
	return nil
}

// LoadABI sets an unsaved ABI as the active one.
func (s *Session) LoadABI(text string) error {
	if err := s.Contract.SetAbi(text); err != nil {
		return err
	}
	s.mu.Lock()
	s.activeABI = ""
	s.mu.Unlock()
	return nil
}

// ActiveABI returns the name of the active saved ABI, "" when unsaved.
func (s *Session) ActiveABI() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeABI
}

// SetAddress sets the contract address. ENS names are resolved through the
// connected chain, so they need a connection first.
func (s *Session) SetAddress(ctx context.Context, addr string) error {
	if ens.IsName(addr) {
		backend := s.Connector.Backend()
		if backend == nil {
			return fmt.Errorf("resolving %s: %w", addr, wallet.ErrNotConnected)
		}
		resolved, err := ens.NewResolver(backend).Resolve(ctx, addr)
		if err != nil {
			return err
		}
		s.Logger.Debug("resolved ENS name", zap.String("name", addr), zap.String("address", resolved.Hex()))
		addr = resolved.Hex()
	}
	return s.Contract.SetContractAddress(addr)
}

// Functions lists the active ABI's functions.
func (s *Session) Functions() []contract.FunctionDescriptor {
	return s.Contract.GetAvailableFunctions()
}

// Call invokes a contract function and records successful calls in history.
// A history write failure is logged; the call result is still returned.
func (s *Session) Call(ctx context.Context, name string, params []any, opts contract.CallOptions) (*contract.CallResult, error) {
	kind := history.KindWrite
	if fd, err := s.Contract.Function(name); err == nil && fd.IsRead() {
		kind = history.KindRead
	}

	start := time.Now()
	res, err := s.Contract.CallFunction(ctx, name, params, opts)
	s.Metrics.ObserveCall(kind, start, err)
	if err != nil {
		s.Logger.Debug("call failed", zap.String("function", name), zap.Error(err))
		return nil, err
	}

	if _, herr := s.History.AddToHistory(history.Entry{
		Address:  s.Contract.Address(),
		Function: res.Function,
		Params:   params,
		Result:   historyResult(res),
		Kind:     kind,
	}); herr != nil {
		s.Logger.Warn("recording history", zap.Error(herr))
	}
	return res, nil
}

// Status reports the connection and contract state.
func (s *Session) Status() Status {
	st := Status{
		Account:  s.Connector.Account(),
		ChainID:  s.Connector.ChainID(),
		Address:  s.Contract.Address(),
		ABI:      s.ActiveABI(),
		Ready:    s.Contract.IsReady(),
		CanWrite: s.Contract.HasSigner(),
	}
	st.Connected = st.Account != ""
	if c, url := s.Provider.Network(); c != nil {
		st.Network = c.NetworkLabel(c.ModeOf(st.ChainID))
		st.RPC = url
	}
	return st
}

// Close releases the RPC connection and storage.
func (s *Session) Close() error {
	for _, fn := range s.unsub {
		fn()
	}
	s.Connector.Close()
	s.Provider.Close()
	return s.Store.Close()
}

// bind hands the connector's backend and signer to the interactor. A
// watch-only account leaves the contract read-only.
func (s *Session) bind(ctx context.Context) {
	s.Contract.SetBackend(s.Connector.Backend())
	signer, err := s.Connector.Signer(ctx)
	if err != nil {
		s.Logger.Debug("no signer", zap.Error(err))
		s.Contract.SetSigner(nil)
		return
	}
	s.Contract.SetSigner(signer)
}

func (s *Session) rebind() {
	ctx, cancel := context.WithTimeout(context.Background(), config.RPCSelectTimeout)
	defer cancel()
	s.bind(ctx)
}

// historyResult keeps write entries small: the full receipt stays out of
// local storage.
func historyResult(res *contract.CallResult) any {
	if res.Receipt == nil {
		return res.Value
	}
	return map[string]any{
		"hash":        res.Receipt.Hash,
		"blockNumber": res.Receipt.BlockNumber,
		"status":      res.Receipt.Status,
	}
}
