package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/abistudio/internal/abistore"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/history"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

const tokenABI = `[{"type":"function","name":"balanceOf","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}]`

// run executes the root command against a config dir. Flags are package
// state that outlives one Execute, so they are reset first.
func run(t *testing.T, dir string, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(append([]string{"--config", dir}, args...))
	return rootCmd.Execute()
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func savedABIs(t *testing.T) []string {
	t.Helper()
	var names []string
	require.NoError(t, withABIStore(func(m *abistore.Manager) error {
		var err error
		names, err = m.GetSavedAbisList()
		return err
	}))
	return names
}

func TestABISaveCommands(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, run(t, dir, "abi", "save", "Token", "--json", tokenABI))
	require.NoError(t, run(t, dir, "abi", "save", "Odd", "--json", `{"not":"an array"}`))
	require.NoError(t, run(t, dir, "abi", "save", "USDC", "--builtin", "erc20"))
	assert.Equal(t, []string{"Odd", "Token", "USDC"}, savedABIs(t))

	err := run(t, dir, "abi", "save", "Bad", "--json", "not json")
	assert.ErrorIs(t, err, abistore.ErrInvalidFormat)

	err = run(t, dir, "abi", "save", "Nope", "--builtin", "erc9999")
	assert.ErrorIs(t, err, abistore.ErrUnknownBuiltin)

	assert.NoError(t, run(t, dir, "abi", "show", "Token"))
	assert.ErrorIs(t, run(t, dir, "abi", "show", "Missing"), abistore.ErrAbiNotFound)
}

func TestABISaveFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(t.TempDir(), "Token.json")
	require.NoError(t, os.WriteFile(file, []byte(tokenABI), 0o600))

	require.NoError(t, run(t, dir, "abi", "save", "Token", file))
	assert.Equal(t, []string{"Token"}, savedABIs(t))

	assert.NoError(t, run(t, dir, "abi", "validate", file))
}

func TestABIImportCommand(t *testing.T) {
	dir := t.TempDir()
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "Token.json"), []byte(`{"abi":`+tokenABI+`}`), 0o600))
	manifest := `{"contracts":{"Token":{
		"sepolia":{"address":"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48","abi_url":"Token.json"},
		"base":{"address":"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913","abi_url":"Token.json"}}}}`
	path := filepath.Join(src, "deployments.json")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))

	require.NoError(t, run(t, dir, "abi", "import", path))
	assert.Equal(t, []string{"Token@base", "Token@sepolia"}, savedABIs(t))

	require.NoError(t, run(t, dir, "abi", "import", path, "--chain", "sepolia"))
	assert.Equal(t, []string{"Token", "Token@base", "Token@sepolia"}, savedABIs(t))

	assert.Error(t, run(t, dir, "abi", "import", filepath.Join(src, "missing.json")))
}

func TestABIValidateRejectsObject(t *testing.T) {
	file := filepath.Join(t.TempDir(), "artifact.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"abi":[]}`), 0o600))

	err := run(t, t.TempDir(), "abi", "validate", file)
	assert.ErrorIs(t, err, abistore.ErrInvalidFormat)
}

func TestABIDecodeCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "abi", "save", "ERC20", "--builtin", "erc20"))

	calldata := "0xa9059cbb" +
		"000000000000000000000000d8da6bf26964af9d7eed9e03e53415d37aa96045" +
		"0000000000000000000000000000000000000000000000000de0b6b3a7640000"
	assert.NoError(t, run(t, dir, "abi", "decode", "ERC20", calldata))
	assert.Error(t, run(t, dir, "abi", "decode", "ERC20", "0xdeadbeef"))
}

func TestContractFunctionsCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "abi", "save", "Token", "--json", tokenABI))

	assert.NoError(t, run(t, dir, "contract", "functions", "--abi", "Token"))
	assert.ErrorIs(t, run(t, dir, "contract", "functions", "--abi", "Missing"), abistore.ErrAbiNotFound)
	assert.Error(t, run(t, dir, "contract", "functions"))
}

func TestHistoryCommands(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "history", "list"))

	require.NoError(t, withHistory(func(m *history.Manager) error {
		_, err := m.AddToHistory(history.Entry{Address: "0xabc", Function: "balanceOf", Result: "1"})
		return err
	}))

	assert.NoError(t, run(t, dir, "history", "list", "--function", "balanceOf"))
	assert.NoError(t, run(t, dir, "history", "show", "0"))
	assert.Error(t, run(t, dir, "history", "show", "3"))
	assert.Error(t, run(t, dir, "history", "delete", "x"))
	require.NoError(t, run(t, dir, "history", "delete", "0"))

	require.NoError(t, withHistory(func(m *history.Manager) error {
		entries, err := m.GetHistory()
		assert.Empty(t, entries)
		return err
	}))
}

func TestConfigSetCommand(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, run(t, dir, "config", "set", "server_port", "9000"))
	require.NoError(t, run(t, dir, "config", "set", "default_network", "base"))
	assert.ErrorIs(t, run(t, dir, "config", "set", "colour", "blue"), config.ErrUnknownKey)
	assert.Error(t, run(t, dir, "config", "set", "default_network", "atlantis"))
	assert.Error(t, run(t, dir, "config", "set", "network_mode", "devnet"))

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9000, loaded.ServerPort)
	assert.Equal(t, "base", loaded.DefaultNetwork)
}

func TestNetworkFlagOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "--testnet", "--network", "base", "network", "list"))
	assert.Equal(t, "testnet", cfg.NetworkMode)
	assert.Equal(t, "base", cfg.DefaultNetwork)

	assert.Error(t, run(t, dir, "--testnet", "--mainnet", "network", "list"))
}

func TestResolveChainID(t *testing.T) {
	var err error
	cfg, err = config.Load(t.TempDir())
	require.NoError(t, err)

	id, err := resolveChainID("84532")
	require.NoError(t, err)
	assert.Equal(t, int64(84532), id)

	cfg.NetworkMode = "mainnet"
	id, err = resolveChainID("base")
	require.NoError(t, err)
	assert.Equal(t, int64(8453), id)

	cfg.NetworkMode = "testnet"
	id, err = resolveChainID("base")
	require.NoError(t, err)
	assert.Equal(t, int64(84532), id)

	_, err = resolveChainID("atlantis")
	assert.Error(t, err)
}

func TestSwitchedChainIsRemembered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "network", "list"))

	require.NoError(t, rememberChain(84532))

	saved, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "base", saved.DefaultNetwork)
	assert.Equal(t, "testnet", saved.NetworkMode)

	// The next invocation starts on the switched chain.
	require.NoError(t, run(t, dir, "wallet", "status"))
	assert.Equal(t, "base", cfg.DefaultNetwork)
	assert.Equal(t, "testnet", cfg.NetworkMode)

	require.NoError(t, rememberChain(1))
	saved, err = config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "ethereum", saved.DefaultNetwork)
	assert.Equal(t, "mainnet", saved.NetworkMode)

	assert.Error(t, rememberChain(999999999))
}

func TestReadABIText(t *testing.T) {
	abiJSONFlag = ""
	text, err := readABIText(strings.NewReader(tokenABI), nil)
	require.NoError(t, err)
	assert.Equal(t, tokenABI, text)

	text, err = readABIText(strings.NewReader("[]"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "[]", text)

	_, err = readABIText(nil, []string{filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "read-write", walletTypeLabel(wallet.TypeSigning))
	assert.Equal(t, "watch-only", walletTypeLabel(wallet.TypeWatchOnly))
	assert.Equal(t, "0", valueLabel(""))
	assert.Equal(t, "0.5 ETH", valueLabel("0.5"))
}
