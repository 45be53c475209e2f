package ui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/history"
)

// RenderResult shows scalars as text and everything else as indented JSON.
func RenderResult(v any) string {
	switch x := v.(type) {
	case nil:
		return StyleMeta.Render("(no output)")
	case string:
		return StyleValue.Render(x)
	case bool:
		return StyleValue.Render(strconv.FormatBool(x))
	case fmt.Stringer:
		return StyleValue.Render(x.String())
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return StyleValue.Render(fmt.Sprint(x))
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return StyleValue.Render(fmt.Sprintf("%v", v))
	}
	return StyleValue.Render(string(data))
}

// RenderCallResult renders a read value or a write receipt. txURL, when
// non-empty, links the transaction on an explorer.
func RenderCallResult(res *contract.CallResult, txURL string) string {
	if res.Receipt == nil {
		return StyleTitle.Render(res.Function) + "\n" + RenderResult(res.Value)
	}
	return RenderReceipt(res.Receipt, txURL)
}

// RenderReceipt renders a mined transaction.
func RenderReceipt(r *contract.Receipt, txURL string) string {
	status := StyleSuccess.Render(r.Status)
	if !r.Succeeded() {
		status = StyleError.Render(r.Status)
	}
	pairs := [][2]string{
		{"Hash", r.Hash},
		{"Block", strconv.FormatUint(r.BlockNumber, 10)},
		{"Status", status},
		{"Gas used", strconv.FormatUint(r.GasUsed, 10)},
	}
	if txURL != "" {
		pairs = append(pairs, [2]string{"Explorer", txURL})
	}
	out := KeyValueBlock("Transaction", pairs)

	if len(r.Events) > 0 {
		var sb strings.Builder
		sb.WriteString("\n" + StyleHeader.Render(fmt.Sprintf("Events (%d)", len(r.Events))) + "\n")
		for _, ev := range r.Events {
			args, _ := json.Marshal(ev.Args)
			sb.WriteString("  " + StyleInfo.Render(ev.Name) + " " + StyleMeta.Render(string(args)) + "\n")
		}
		out += sb.String()
	} else if len(r.Logs) > 0 {
		out += "\n" + StyleMeta.Render(fmt.Sprintf("%d raw logs", len(r.Logs))) + "\n"
	}
	return out
}

// GroupFunctions splits fds into read and write functions, keeping order.
func GroupFunctions(fds []contract.FunctionDescriptor) (reads, writes []contract.FunctionDescriptor) {
	for _, fd := range fds {
		if fd.IsRead() {
			reads = append(reads, fd)
		} else {
			writes = append(writes, fd)
		}
	}
	return reads, writes
}

// RenderFunctions lists functions grouped by mutability.
func RenderFunctions(fds []contract.FunctionDescriptor) string {
	if len(fds) == 0 {
		return StyleMeta.Render("No functions in ABI.")
	}
	reads, writes := GroupFunctions(fds)

	var sb strings.Builder
	section := func(title string, list []contract.FunctionDescriptor, name func(...string) string) {
		if len(list) == 0 {
			return
		}
		sb.WriteString(StyleHeader.Render(fmt.Sprintf("%s (%d)", title, len(list))) + "\n")
		for _, fd := range list {
			line := fmt.Sprintf("  %s  %s(%s)",
				StyleMeta.Render(fd.Selector),
				name(fd.Name),
				StyleMeta.Render(paramList(fd.Inputs)))
			if len(fd.Outputs) > 0 {
				line += StyleMeta.Render("  →  " + paramList(fd.Outputs))
			}
			line += "  " + Mutability(fd.StateMutability)
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")
	}
	section("Read", reads, StyleSuccess.Render)
	section("Write", writes, StyleWarning.Render)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// paramList formats params as "type name, type name".
func paramList(params []contract.ABIParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.CanonicalType()
		if p.Name != "" {
			parts[i] += " " + p.Name
		}
	}
	return strings.Join(parts, ", ")
}

// RenderHistory renders entries as a table, newest first.
func RenderHistory(entries []history.Entry) string {
	if len(entries) == 0 {
		return StyleMeta.Render("No calls yet.")
	}
	tbl := NewTable([]Column{
		{Title: "#", Width: 3, Right: true},
		{Title: "Time", Width: 19},
		{Title: "Kind", Width: 5},
		{Title: "Contract", Width: 13},
		{Title: "Function", Width: 18},
		{Title: "Result", Width: 30},
	})
	for i, e := range entries {
		ts := e.Timestamp
		if t := e.Time(); !t.IsZero() {
			ts = t.Local().Format("2006-01-02 15:04:05")
		}
		tbl.AddRow(Row{
			strconv.Itoa(i),
			ts,
			e.Kind,
			TruncateAddr(e.Address),
			e.Function,
			compact(e.Result),
		})
	}
	return tbl.Render()
}

// RenderHistoryEntry shows one entry in full.
func RenderHistoryEntry(e history.Entry) string {
	params, _ := json.Marshal(e.Params)
	return KeyValueBlock(e.Function, [][2]string{
		{"ID", e.ID},
		{"Time", e.Timestamp},
		{"Contract", e.Address},
		{"Kind", e.Kind},
		{"Params", string(params)},
	}) + "\n" + RenderResult(e.Result)
}

func compact(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// RenderConnection renders the wallet connection block.
func RenderConnection(account, network, rpcURL string, chainID int64) string {
	if account == "" {
		return KeyValueBlock("Wallet", [][2]string{{"Status", StyleError.Render("not connected")}})
	}
	return KeyValueBlock("Wallet", [][2]string{
		{"Status", StyleSuccess.Render("connected")},
		{"Account", StyleAddress.Render(account)},
		{"Network", ChainName(network)},
		{"Chain ID", strconv.FormatInt(chainID, 10)},
		{"RPC", StyleMeta.Render(rpcURL)},
	})
}

// RenderSavedABIs lists saved ABI names, marking active.
func RenderSavedABIs(names []string, active string) string {
	if len(names) == 0 {
		return StyleMeta.Render("No saved ABIs.")
	}
	var sb strings.Builder
	for _, n := range names {
		if n == active {
			sb.WriteString("  ▸ " + StyleValue.Render(n) + "\n")
		} else {
			sb.WriteString("    " + n + "\n")
		}
	}
	return sb.String()
}
