package config

// Config holds all abistudio configuration.
type Config struct {
	DefaultNetwork string              `json:"default_network" mapstructure:"default_network"`
	DefaultWallet  string              `json:"default_wallet"  mapstructure:"default_wallet"`
	NetworkMode    string              `json:"network_mode"    mapstructure:"network_mode"`  // "mainnet" | "testnet"
	RPCAlgorithm   string              `json:"rpc_algorithm"   mapstructure:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	CustomRPCs     map[string][]string `json:"custom_rpcs"     mapstructure:"custom_rpcs"`

	StorageDriver string `json:"storage_driver" mapstructure:"storage_driver"` // "file" | "leveldb" | "memory"
	ServerPort    int    `json:"server_port"    mapstructure:"server_port"`
	DocRoot       string `json:"doc_root"       mapstructure:"doc_root"`
	LogFile       string `json:"log_file"       mapstructure:"log_file"`
	Debug         bool   `json:"debug"          mapstructure:"debug"`

	// internal: config dir path used for Save()
	configDir string
}
