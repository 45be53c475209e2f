package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/history"
)

type recordedCall struct {
	name   string
	params []any
	opts   contract.CallOptions
}

type fakeCaller struct {
	funcs []contract.FunctionDescriptor
	calls []recordedCall
	err   error
}

func (f *fakeCaller) Functions() []contract.FunctionDescriptor { return f.funcs }

func (f *fakeCaller) Call(_ context.Context, name string, params []any, opts contract.CallOptions) (*contract.CallResult, error) {
	f.calls = append(f.calls, recordedCall{name, params, opts})
	if f.err != nil {
		return nil, f.err
	}
	return &contract.CallResult{Function: name, Read: true, Value: "1000"}, nil
}

func studioCaller() *fakeCaller {
	return &fakeCaller{funcs: []contract.FunctionDescriptor{
		{Name: "transfer", StateMutability: "nonpayable", Signature: "transfer(address,uint256)",
			Inputs: []contract.ABIParam{{Name: "to", Type: "address"}, {Name: "value", Type: "uint256"}}},
		{Name: "balanceOf", StateMutability: "view", Signature: "balanceOf(address)",
			Inputs: []contract.ABIParam{{Name: "account", Type: "address"}}},
		{Name: "totalSupply", StateMutability: "view", Signature: "totalSupply()"},
		{Name: "deposit", StateMutability: "payable", Payable: true, Signature: "deposit()"},
		{Name: "setPaused", StateMutability: "nonpayable", Signature: "setPaused(bool)",
			Inputs: []contract.ABIParam{{Name: "paused", Type: "bool"}}},
	}}
}

// press sends keys and runs any command that produces a call result.
func press(t *testing.T, m StudioModel, keys ...string) StudioModel {
	t.Helper()
	var model tea.Model = m
	for _, k := range keys {
		var cmd tea.Cmd
		model, cmd = model.Update(key(k))
		if cmd != nil {
			if done, ok := cmd().(callDoneMsg); ok {
				model, _ = model.Update(done)
			}
		}
	}
	return model.(StudioModel)
}

func TestStudioListsReadsFirst(t *testing.T) {
	m := NewStudio(studioCaller(), StudioConfig{ContractName: "Token"})

	fd, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "balanceOf", fd.Name)

	m = press(t, m, "down", "down")
	fd, _ = m.Selected()
	assert.Equal(t, "transfer", fd.Name)

	out := m.View()
	assert.Contains(t, out, "Read (2)")
	assert.Contains(t, out, "Write (3)")
	assert.Contains(t, out, "payable")
}

func TestStudioCallsFunctionWithoutInputsDirectly(t *testing.T) {
	c := studioCaller()
	m := press(t, NewStudio(c, StudioConfig{}), "down", "enter")

	require.Len(t, c.calls, 1)
	assert.Equal(t, "totalSupply()", c.calls[0].name)
	assert.Empty(t, c.calls[0].params)
	assert.Equal(t, stateResult, m.state)
	assert.Contains(t, m.View(), "1000")
	require.Len(t, m.toasts, 1)
	assert.Equal(t, LevelSuccess, m.toasts[0].Level)

	m = press(t, m, "x")
	assert.Equal(t, stateList, m.state)
}

func TestStudioFormCollectsParams(t *testing.T) {
	c := studioCaller()
	m := press(t, NewStudio(c, StudioConfig{}), "enter")
	require.Equal(t, stateForm, m.state)
	assert.Contains(t, m.View(), "0x… (42 chars)")

	m = press(t, m, "0xAbC1", "backspace", "2", "enter")
	require.Len(t, c.calls, 1)
	assert.Equal(t, "balanceOf(address)", c.calls[0].name)
	assert.Equal(t, []any{"0xAbC2"}, c.calls[0].params)
}

func TestStudioPayableValue(t *testing.T) {
	c := studioCaller()
	m := press(t, NewStudio(c, StudioConfig{}), "down", "down", "down", "enter")
	require.Equal(t, stateForm, m.state)
	assert.Contains(t, m.View(), valueFieldName)

	press(t, m, "0.25", "enter")
	require.Len(t, c.calls, 1)
	assert.Equal(t, "deposit()", c.calls[0].name)
	assert.Empty(t, c.calls[0].params)
	assert.Equal(t, "0.25", c.calls[0].opts.Value)
}

func TestStudioBooleanToggle(t *testing.T) {
	c := studioCaller()
	m := press(t, NewStudio(c, StudioConfig{}), "down", "down", "down", "down", "enter")
	require.Equal(t, stateForm, m.state)
	assert.Equal(t, "true", m.values[0])

	m = press(t, m, "right")
	assert.Equal(t, "false", m.values[0])
	m = press(t, m, "x")
	assert.Equal(t, "false", m.values[0], "typing is ignored on choice fields")

	press(t, m, "enter")
	require.Len(t, c.calls, 1)
	assert.Equal(t, []any{false}, c.calls[0].params)
}

func TestStudioErrorShowsTitledToast(t *testing.T) {
	c := studioCaller()
	c.err = contract.ErrSignerRequired
	m := press(t, NewStudio(c, StudioConfig{}), "down", "down", "enter", "0x1", "tab", "5", "enter")

	require.Len(t, c.calls, 1)
	assert.Equal(t, stateForm, m.state, "user can fix input and retry")
	require.Len(t, m.toasts, 1)
	assert.Equal(t, "Not ready", m.toasts[0].Title)
	assert.Equal(t, LevelError, m.toasts[0].Level)
}

func TestStudioToastsExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewStudio(studioCaller(), StudioConfig{})
	m.now = func() time.Time { return now }
	m = press(t, m, "down", "enter")
	require.Len(t, m.toasts, 1)

	now = now.Add(2 * time.Second)
	model, _ := m.Update(toastTickMsg(now))
	assert.Len(t, model.(StudioModel).toasts, 1)

	now = now.Add(2 * time.Second)
	model, _ = model.Update(toastTickMsg(now))
	assert.Empty(t, model.(StudioModel).toasts)
}

func TestStudioEscLeavesForm(t *testing.T) {
	m := press(t, NewStudio(studioCaller(), StudioConfig{}), "enter", "esc")
	assert.Equal(t, stateList, m.state)

	m = press(t, m, "q")
	assert.True(t, m.quitting)
}

func TestStudioHistoryPanel(t *testing.T) {
	m := NewStudio(studioCaller(), StudioConfig{
		History: func() ([]history.Entry, error) {
			return []history.Entry{{Function: "balanceOf", Result: "42", Kind: history.KindRead}}, nil
		},
	})
	m = press(t, m, "h")
	assert.Equal(t, stateHistory, m.state)
	assert.Contains(t, m.View(), "balanceOf")
}
