package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/abistudio/test/fixtures"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "abistudio-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "abistudio")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func command(configDir string, args ...string) *exec.Cmd {
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "ABISTUDIO_CONFIG_DIR="+configDir)
	return cmd
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	out, err := command(configDir, args...).CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "abistudio")
	assert.Contains(t, out, "0.1.0")
}

func TestHelpCommand(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--help")
	require.NoError(t, err)
	lower := strings.ToLower(out)
	for _, sub := range []string{"abi", "contract", "history", "wallet", "network", "studio", "serve"} {
		assert.Contains(t, lower, sub)
	}
	assert.Contains(t, out, "--testnet")
	assert.Contains(t, out, "--mainnet")
}

func TestNetworkList(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "network", "list")
	require.NoError(t, err)
	for _, c := range []string{"ethereum", "base", "polygon", "arbitrum", "localhost"} {
		assert.Contains(t, strings.ToLower(out), c, "network list should contain %s", c)
	}
}

func TestNetworkUse(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--testnet", "network", "use", "base")
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(out), "base")

	cfgOut, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, cfgOut, `"default_network": "base"`)
	assert.Contains(t, cfgOut, "testnet")
}

func TestNetworkUseUnknown(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "network", "use", "unknownchain99")
	assert.Error(t, err)
}

func TestTestnetMainnetMutuallyExclusive(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "--testnet", "--mainnet", "config", "list")
	assert.Error(t, err)
}

func TestWalletAddListRemove(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "wallet", "add", "watcher", "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "watcher")
	assert.Contains(t, out, "0x1234")

	// Use stdin to auto-confirm the prompt.
	rm := command(dir, "wallet", "remove", "watcher")
	rm.Stdin = strings.NewReader("y\n")
	require.NoError(t, rm.Run())

	out, err = runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "watcher")
}

func TestABISaveListAndFunctions(t *testing.T) {
	dir := t.TempDir()
	artifact := fixtures.Path("abis", "Token.json")

	_, err := runCLI(t, dir, "abi", "save", "Token", artifact)
	require.NoError(t, err)

	out, err := runCLI(t, dir, "abi", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Token")

	out, err = runCLI(t, dir, "contract", "functions", "--file", artifact)
	require.NoError(t, err)
	assert.Contains(t, out, "balanceOf")
	assert.Contains(t, out, "transfer")
}

func TestABISelector(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "abi", "selector", "transfer(address to, uint256 amount)")
	require.NoError(t, err)
	assert.Contains(t, out, "0xa9059cbb")
}

func TestConfigSet(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set", "server_port", "9123")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "9123")

	_, err = runCLI(t, dir, "config", "set", "network_mode", "devnet")
	assert.Error(t, err)
}

func TestHistoryEmpty(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "history", "list")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestUnknownCommandShowsError(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "unknowncommand")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(out), "unknown command")
}
