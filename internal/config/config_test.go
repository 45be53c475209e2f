package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "ethereum", cfg.DefaultNetwork)
	assert.Equal(t, "mainnet", cfg.NetworkMode)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, "file", cfg.StorageDriver)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "web", cfg.DocRoot)
	assert.False(t, cfg.Debug)
}

func TestEnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	cfg.ServerPort = 3000
	require.NoError(t, cfg.Save())

	t.Setenv("ABISTUDIO_SERVER_PORT", "9090")
	t.Setenv("ABISTUDIO_STORAGE_DRIVER", "memory")

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, reloaded.ServerPort)
	assert.Equal(t, "memory", reloaded.StorageDriver)
}

func TestSetKnownKeys(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.Set("server_port", "8545"))
	require.NoError(t, cfg.Set("storage_driver", "leveldb"))
	require.NoError(t, cfg.Set("debug", "true"))
	require.NoError(t, cfg.Set("network_mode", "testnet"))

	assert.Equal(t, 8545, cfg.ServerPort)
	assert.Equal(t, "leveldb", cfg.StorageDriver)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "testnet", cfg.NetworkMode)
	assert.Equal(t, filepath.Join(cfg.Dir(), "storage.db"), cfg.StoragePath())
}

func TestSetRejectsBadValues(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, cfg.Set("server_port", "not-a-port"))
	assert.Error(t, cfg.Set("storage_driver", "redis"))
	assert.Error(t, cfg.Set("network_mode", "devnet"))
	assert.ErrorIs(t, cfg.Set("price_currency", "USD"), config.ErrUnknownKey)
}

func TestLogPathResolvesRelativeToDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "logs", "abistudio.log"), cfg.LogPath())
	cfg.LogFile = ""
	assert.Empty(t, cfg.LogPath())
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultNetwork = "base"
	cfg.DefaultWallet = "mywallet"
	cfg.RPCAlgorithm = "round-robin"

	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "base", reloaded.DefaultNetwork)
	assert.Equal(t, "mywallet", reloaded.DefaultWallet)
	assert.Equal(t, "round-robin", reloaded.RPCAlgorithm)
}

func TestAddCustomRPC(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("base", "https://custom.base.rpc"))

	rpcs := cfg.GetRPCs("base")
	assert.Contains(t, rpcs, "https://custom.base.rpc")
}

func TestAddDuplicateRPCErrors(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	cfg.AddRPC("base", "https://custom.base.rpc") //nolint:errcheck
	err := cfg.AddRPC("base", "https://custom.base.rpc")
	assert.Error(t, err)
}

func TestRemoveCustomRPC(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.AddRPC("base", "https://rpc1.base") //nolint:errcheck
	cfg.AddRPC("base", "https://rpc2.base") //nolint:errcheck

	require.NoError(t, cfg.RemoveRPC("base", "https://rpc1.base"))

	rpcs := cfg.GetRPCs("base")
	assert.NotContains(t, rpcs, "https://rpc1.base")
	assert.Contains(t, rpcs, "https://rpc2.base")
}

func TestRemoveNonExistentRPCErrors(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	err := cfg.RemoveRPC("base", "https://nonexistent.rpc")
	assert.Error(t, err)
}

func TestConfigFileCreatedOnSave(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	require.NoError(t, cfg.Save())

	_, err := os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err, "config.json should be created on save")
}

func TestConfigDir(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	assert.Equal(t, dir, cfg.Dir())
}

func TestLoadFromNonExistentDir(t *testing.T) {
	dir := t.TempDir() + "/subdir"
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	// Should create dir and return defaults.
	assert.Equal(t, "ethereum", cfg.DefaultNetwork)
}

func TestMultipleCustomRPCs(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)

	for _, url := range []string{"https://rpc1", "https://rpc2", "https://rpc3"} {
		cfg.AddRPC("ethereum", url) //nolint:errcheck
	}

	rpcs := cfg.GetRPCs("ethereum")
	assert.Len(t, rpcs, 3)
}
