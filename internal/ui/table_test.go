package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValueBlockKeepsPairOrder(t *testing.T) {
	out := KeyValueBlock("Connection", [][2]string{
		{"Account", "0xf39F"},
		{"Network", "Localhost"},
		{"Chain ID", "31337"},
	})

	assert.Contains(t, out, "Connection")
	iAcc := strings.Index(out, "Account")
	iNet := strings.Index(out, "Network")
	iID := strings.Index(out, "Chain ID")
	require.Greater(t, iAcc, -1)
	assert.Less(t, iAcc, iNet)
	assert.Less(t, iNet, iID)
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "╰")
}

func TestKeyValueBlockPadsToLongestKey(t *testing.T) {
	out := KeyValueBlock("", [][2]string{{"To", "a"}, {"Function", "b"}})
	assert.Contains(t, out, "To:      ")
	assert.Contains(t, out, "Function:")
}

func TestKeyValueBlockWithoutTitle(t *testing.T) {
	out := KeyValueBlock("", [][2]string{{"Key", "Value"}})
	assert.Contains(t, out, "Key")
	assert.Contains(t, out, "Value")
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Function", Width: 12},
		{Title: "Result", Width: 10},
	})
	assert.Equal(t, -1, tbl.SelIdx)

	tbl.AddRow(Row{"balanceOf", "1000"})
	tbl.AddRow(Row{"totalSupply"})
	out := tbl.Render()

	assert.Contains(t, out, "Function")
	assert.Contains(t, out, "------------")
	assert.Contains(t, out, "balanceOf")
	assert.Contains(t, out, "totalSupply")
	assert.Less(t, strings.Index(out, "balanceOf"), strings.Index(out, "totalSupply"))
}

func TestTableRenderSelectedRow(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 10}})
	tbl.AddRow(Row{"row0"})
	tbl.AddRow(Row{"row1"})
	tbl.SelIdx = 1

	out := tbl.Render()
	assert.Contains(t, out, "row0")
	assert.Contains(t, out, "row1")
}

func TestTableRenderEmpty(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 10}})
	assert.Contains(t, tbl.Render(), "(none)")

	tbl.Empty = ""
	assert.NotContains(t, tbl.Render(), "(none)")
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab   ", fit("ab", 5, false))
	assert.Equal(t, "   ab", fit("ab", 5, true))
	assert.Equal(t, "hello", fit("hello", 5, false))
	assert.Equal(t, "hell…", fit("hello world", 5, true))
	assert.Equal(t, "", fit("x", 0, false))
	assert.Equal(t, "成功  ", fit("成功", 4, false))
}
