// Package fixtures loads canned ABIs and JSON-RPC results for tests.
package fixtures

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// Path returns the absolute path of a file under the fixtures directory.
func Path(parts ...string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(append([]string{filepath.Dir(file)}, parts...)...)
}

// LoadABI returns the raw bytes of abis/<filename>, an ABI array or a
// Hardhat artifact.
func LoadABI(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(Path("abis", filename))
	require.NoError(t, err, "loading fixture ABI %s", filename)
	return data
}

// LoadRPCResponse loads rpc/<filename>: JSON-RPC method name → result.
func LoadRPCResponse(t *testing.T, filename string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(Path("rpc", filename))
	require.NoError(t, err, "loading fixture RPC responses %s", filename)

	var results map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &results))
	return results
}
