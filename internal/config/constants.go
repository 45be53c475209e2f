package config

import "time"

// Storage keys. Each key holds one JSON document.
const (
	KeySavedABIs        = "savedABIs"
	KeyCallHistory      = "callHistory"
	KeyWalletAuthorized = "walletAuthorized"
)

// MaxHistoryEntries caps the call history; older entries are dropped.
const MaxHistoryEntries = 50

// Timeout constants used across cmd and server packages.
const (
	RPCSelectTimeout = 10 * time.Second // RPC selection
	ReadCallTimeout  = 30 * time.Second
	TxConfirmTimeout = 3 * time.Minute // write call mine wait from the CLI
	ChainPollPeriod  = 5 * time.Second
)
