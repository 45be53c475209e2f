// Package chain describes the EVM networks abistudio can talk to and dials
// go-ethereum backends for them.
package chain

import (
	"errors"
	"sort"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Network modes.
const (
	ModeMainnet = "mainnet"
	ModeTestnet = "testnet"
)

// Chain holds the metadata for one EVM network and its testnet.
type Chain struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	ChainID         int64    `json:"chain_id"`
	TestnetChainID  int64    `json:"testnet_chain_id"`
	TestnetName     string   `json:"testnet_name"`
	NativeCurrency  string   `json:"native_currency"`
	MainnetRPCs     []string `json:"mainnet_rpcs"`
	TestnetRPCs     []string `json:"testnet_rpcs"`
	MainnetExplorer string   `json:"mainnet_explorer"`
	TestnetExplorer string   `json:"testnet_explorer"`
}

// Registry indexes chains by slug and by chain ID (mainnet and testnet).
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry returns the built-in registry.
func NewRegistry() *Registry {
	return newRegistry(builtinChains())
}

func newRegistry(chains []Chain) *Registry {
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, 2*len(chains)),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
		if c.TestnetChainID != 0 {
			r.byID[c.TestnetChainID] = c
		}
	}
	return r
}

// All returns every chain in registry order.
func (r *Registry) All() []Chain {
	return r.chains
}

// Names returns the chain slugs sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.chains))
	for _, c := range r.chains {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// GetByName finds a chain by slug ("ethereum", "base", ...).
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds the chain owning id, which may be its mainnet or
// testnet chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// ModeOf reports whether id is the mainnet or testnet ID of c.
func (c *Chain) ModeOf(id int64) string {
	if id == c.TestnetChainID && id != c.ChainID {
		return ModeTestnet
	}
	return ModeMainnet
}

// ID returns the chain ID for mode.
func (c *Chain) ID(mode string) int64 {
	if mode == ModeTestnet && c.TestnetChainID != 0 {
		return c.TestnetChainID
	}
	return c.ChainID
}

// RPCs returns the RPC list for mode.
func (c *Chain) RPCs(mode string) []string {
	if mode == ModeTestnet {
		return c.TestnetRPCs
	}
	return c.MainnetRPCs
}

// Explorer returns the block explorer base URL for mode.
func (c *Chain) Explorer(mode string) string {
	if mode == ModeTestnet {
		return c.TestnetExplorer
	}
	return c.MainnetExplorer
}

// NetworkLabel is the human name for mode, e.g. "Base Sepolia".
func (c *Chain) NetworkLabel(mode string) string {
	if mode == ModeTestnet && c.TestnetName != "" {
		return c.TestnetName
	}
	return c.DisplayName
}

// TxURL links a transaction hash on the explorer, or returns "" when the
// chain has no explorer for mode.
func (c *Chain) TxURL(mode, hash string) string {
	base := c.Explorer(mode)
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/tx/" + hash
}

func builtinChains() []Chain {
	return []Chain{
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1, TestnetChainID: 11155111,
			TestnetName: "Sepolia", NativeCurrency: "ETH",
			MainnetRPCs:     []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			TestnetRPCs:     []string{"https://rpc.sepolia.org", "https://sepolia.gateway.tenderly.co"},
			MainnetExplorer: "https://etherscan.io",
			TestnetExplorer: "https://sepolia.etherscan.io",
		},
		{
			Name: "base", DisplayName: "Base", ChainID: 8453, TestnetChainID: 84532,
			TestnetName: "Base Sepolia", NativeCurrency: "ETH",
			MainnetRPCs:     []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			TestnetRPCs:     []string{"https://sepolia.base.org"},
			MainnetExplorer: "https://basescan.org",
			TestnetExplorer: "https://sepolia.basescan.org",
		},
		{
			Name: "polygon", DisplayName: "Polygon", ChainID: 137, TestnetChainID: 80002,
			TestnetName: "Amoy", NativeCurrency: "POL",
			MainnetRPCs:     []string{"https://polygon-bor-rpc.publicnode.com", "https://polygon-pokt.nodies.app"},
			TestnetRPCs:     []string{"https://rpc-amoy.polygon.technology"},
			MainnetExplorer: "https://polygonscan.com",
			TestnetExplorer: "https://amoy.polygonscan.com",
		},
		{
			Name: "arbitrum", DisplayName: "Arbitrum", ChainID: 42161, TestnetChainID: 421614,
			TestnetName: "Arb Sepolia", NativeCurrency: "ETH",
			MainnetRPCs:     []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum.llamarpc.com"},
			TestnetRPCs:     []string{"https://sepolia-rollup.arbitrum.io/rpc"},
			MainnetExplorer: "https://arbiscan.io",
			TestnetExplorer: "https://sepolia.arbiscan.io",
		},
		{
			Name: "optimism", DisplayName: "Optimism", ChainID: 10, TestnetChainID: 11155420,
			TestnetName: "OP Sepolia", NativeCurrency: "ETH",
			MainnetRPCs:     []string{"https://mainnet.optimism.io", "https://optimism.llamarpc.com"},
			TestnetRPCs:     []string{"https://sepolia.optimism.io"},
			MainnetExplorer: "https://optimistic.etherscan.io",
			TestnetExplorer: "https://sepolia-optimism.etherscan.io",
		},
		{
			Name: "bnb", DisplayName: "BNB Chain", ChainID: 56, TestnetChainID: 97,
			TestnetName: "BSC Testnet", NativeCurrency: "BNB",
			MainnetRPCs:     []string{"https://bsc-dataseed.binance.org", "https://bsc-rpc.publicnode.com"},
			TestnetRPCs:     []string{"https://data-seed-prebsc-1-s1.binance.org:8545"},
			MainnetExplorer: "https://bscscan.com",
			TestnetExplorer: "https://testnet.bscscan.com",
		},
		{
			Name: "avalanche", DisplayName: "Avalanche", ChainID: 43114, TestnetChainID: 43113,
			TestnetName: "Fuji", NativeCurrency: "AVAX",
			MainnetRPCs:     []string{"https://api.avax.network/ext/bc/C/rpc", "https://avalanche-c-chain-rpc.publicnode.com"},
			TestnetRPCs:     []string{"https://api.avax-test.network/ext/bc/C/rpc"},
			MainnetExplorer: "https://snowtrace.io",
			TestnetExplorer: "https://testnet.snowtrace.io",
		},
		{
			Name: "linea", DisplayName: "Linea", ChainID: 59144, TestnetChainID: 59141,
			TestnetName: "Linea Sepolia", NativeCurrency: "ETH",
			MainnetRPCs:     []string{"https://rpc.linea.build", "https://linea-rpc.publicnode.com"},
			TestnetRPCs:     []string{"https://rpc.sepolia.linea.build"},
			MainnetExplorer: "https://lineascan.build",
			TestnetExplorer: "https://sepolia.lineascan.build",
		},
		{
			Name: "scroll", DisplayName: "Scroll", ChainID: 534352, TestnetChainID: 534351,
			TestnetName: "Scroll Sepolia", NativeCurrency: "ETH",
			MainnetRPCs:     []string{"https://rpc.scroll.io", "https://scroll-rpc.publicnode.com"},
			TestnetRPCs:     []string{"https://sepolia-rpc.scroll.io"},
			MainnetExplorer: "https://scrollscan.com",
			TestnetExplorer: "https://sepolia.scrollscan.com",
		},
		{
			Name: "gnosis", DisplayName: "Gnosis", ChainID: 100, TestnetChainID: 10200,
			TestnetName: "Chiado", NativeCurrency: "xDAI",
			MainnetRPCs:     []string{"https://rpc.gnosischain.com", "https://gnosis-rpc.publicnode.com"},
			TestnetRPCs:     []string{"https://rpc.chiadochain.net"},
			MainnetExplorer: "https://gnosisscan.io",
			TestnetExplorer: "https://gnosis-chiado.blockscout.com",
		},
		{
			// Hardhat / anvil dev node; same endpoint in both modes.
			Name: "localhost", DisplayName: "Localhost", ChainID: 31337, TestnetChainID: 31337,
			TestnetName: "Localhost", NativeCurrency: "ETH",
			MainnetRPCs: []string{"http://127.0.0.1:8545"},
			TestnetRPCs: []string{"http://127.0.0.1:8545"},
		},
	}
}
