package ui

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/history"
)

func TestRenderResultScalars(t *testing.T) {
	assert.Contains(t, RenderResult("1000"), "1000")
	assert.Contains(t, RenderResult(true), "true")
	assert.Contains(t, RenderResult(uint8(18)), "18")
	assert.Contains(t, RenderResult(nil), "no output")

	addr := common.HexToAddress("0xAbC1230000000000000000000000000000000000")
	assert.Contains(t, RenderResult(addr), addr.Hex())
}

func TestRenderResultObjectsArePrettyJSON(t *testing.T) {
	out := RenderResult(map[string]any{"reserve0": "5", "reserve1": "7"})
	assert.Contains(t, out, "{\n")
	assert.Contains(t, out, `  "reserve0": "5"`)
}

func TestRenderReceipt(t *testing.T) {
	r := &contract.Receipt{
		Hash:        "0xabc",
		BlockNumber: 101,
		Status:      contract.StatusSuccess,
		GasUsed:     21000,
		Events: []contract.Event{
			{Name: "Transfer", Args: map[string]any{"value": "5"}},
		},
	}
	out := RenderCallResult(&contract.CallResult{Function: "transfer", Receipt: r}, "https://etherscan.io/tx/0xabc")

	assert.Contains(t, out, "0xabc")
	assert.Contains(t, out, "101")
	assert.Contains(t, out, "成功")
	assert.Contains(t, out, "Transfer")
	assert.Contains(t, out, "etherscan.io")
}

func TestRenderFunctionsGroupsByMutability(t *testing.T) {
	fds := []contract.FunctionDescriptor{
		{Name: "transfer", StateMutability: "nonpayable", Selector: "0xa9059cbb"},
		{Name: "balanceOf", StateMutability: "view", Selector: "0x70a08231",
			Inputs:  []contract.ABIParam{{Name: "account", Type: "address"}},
			Outputs: []contract.ABIParam{{Type: "uint256"}}},
		{Name: "legacy", Constant: true},
	}
	reads, writes := GroupFunctions(fds)
	assert.Len(t, reads, 2)
	assert.Len(t, writes, 1)

	out := RenderFunctions(fds)
	iRead := strings.Index(out, "Read (2)")
	iWrite := strings.Index(out, "Write (1)")
	assert.Greater(t, iRead, -1)
	assert.Greater(t, iWrite, iRead)
	assert.Contains(t, out, "address account")
	assert.Contains(t, out, "uint256")
	assert.Less(t, strings.Index(out, "balanceOf"), iWrite)
	assert.Greater(t, strings.Index(out, "transfer"), iWrite)
}

func TestRenderHistory(t *testing.T) {
	assert.Contains(t, RenderHistory(nil), "No calls")

	out := RenderHistory([]history.Entry{
		{Timestamp: "2026-01-02T03:04:05Z", Address: "0xAbC1230000000000000000000000000000000000", Function: "balanceOf", Kind: history.KindRead, Result: "1000"},
		{Timestamp: "2026-01-02T03:00:00Z", Address: "0xAbC1230000000000000000000000000000000000", Function: "getReserves", Kind: history.KindRead, Result: map[string]any{"reserve0": "5"}},
	})
	assert.Contains(t, out, "balanceOf")
	assert.Contains(t, out, "1000")
	assert.Contains(t, out, "0xAbC1…0000")
	assert.Contains(t, out, `{"reserve0":"5"}`)
	assert.Less(t, strings.Index(out, "balanceOf"), strings.Index(out, "getReserves"))
}

func TestRenderConnection(t *testing.T) {
	assert.Contains(t, RenderConnection("", "", "", 0), "not connected")

	out := RenderConnection("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", "Localhost", "http://127.0.0.1:8545", 31337)
	assert.Contains(t, out, "connected")
	assert.Contains(t, out, "31337")
	assert.Contains(t, out, "Localhost")
}

func TestRenderSavedABIs(t *testing.T) {
	assert.Contains(t, RenderSavedABIs(nil, ""), "No saved ABIs")
	out := RenderSavedABIs([]string{"Token", "WETH"}, "WETH")
	assert.Contains(t, out, "▸")
	assert.Contains(t, out, "Token")
}
