package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/history"
)

// Caller is what the studio drives. app.Session implements it.
type Caller interface {
	Functions() []contract.FunctionDescriptor
	Call(ctx context.Context, name string, params []any, opts contract.CallOptions) (*contract.CallResult, error)
}

// StudioConfig describes the contract shown in the studio.
type StudioConfig struct {
	ContractName string
	Address      string
	Network      string
	Account      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// TxURL links a transaction hash on an explorer; may be nil.
	TxURL func(hash string) string
	// History returns recent calls for the history panel; may be nil.
	History func() ([]history.Entry, error)
}

type studioState int

const (
	stateList studioState = iota
	stateForm
	stateCalling
	stateResult
	stateHistory
)

const valueFieldName = "value (ETH)"

type callDoneMsg struct {
	res *contract.CallResult
	err error
}

type toastTickMsg time.Time

// StudioModel is the interactive contract studio: pick a function, fill
// in its parameters, call it and read the result. Reads are listed before
// writes.
type StudioModel struct {
	cfg    StudioConfig
	caller Caller
	now    func() time.Time

	funcs  []contract.FunctionDescriptor // reads first, then writes
	nReads int
	cursor int

	state    studioState
	current  contract.FunctionDescriptor
	fields   []FormField
	values   []string
	field    int
	payable  bool
	result   *contract.CallResult
	history  []history.Entry
	toasts   []Toast
	quitting bool
}

// NewStudio builds the studio model for caller.
func NewStudio(caller Caller, cfg StudioConfig) StudioModel {
	reads, writes := GroupFunctions(caller.Functions())
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Minute
	}
	return StudioModel{
		cfg:    cfg,
		caller: caller,
		now:    time.Now,
		funcs:  append(reads, writes...),
		nReads: len(reads),
	}
}

func (m StudioModel) Init() tea.Cmd { return toastTick() }

func toastTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg { return toastTickMsg(t) })
}

func (m StudioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case toastTickMsg:
		m.dropExpired()
		return m, toastTick()

	case callDoneMsg:
		if msg.err != nil {
			m.state = stateForm
			if len(m.fields) == 0 {
				m.state = stateList
			}
			m.toast(ErrorToast(msg.err, m.now()))
			return m, nil
		}
		m.result = msg.res
		m.state = stateResult
		if msg.res.Receipt != nil && !msg.res.Receipt.Succeeded() {
			m.toast(NewToast(LevelError, "Transaction failed", msg.res.Receipt.Hash, m.now()))
		} else {
			m.toast(NewToast(LevelSuccess, msg.res.Function+" succeeded", "", m.now()))
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.state {
		case stateList:
			return m.updateList(msg)
		case stateForm:
			return m.updateForm(msg)
		case stateResult, stateHistory:
			m.state = stateList
		}
	}
	return m, nil
}

func (m StudioModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.funcs)-1 {
			m.cursor++
		}
	case "h":
		if m.cfg.History == nil {
			return m, nil
		}
		entries, err := m.cfg.History()
		if err != nil {
			m.toast(ErrorToast(err, m.now()))
			return m, nil
		}
		m.history = entries
		m.state = stateHistory
	case "enter", " ":
		if len(m.funcs) == 0 {
			return m, nil
		}
		m.current = m.funcs[m.cursor]
		m.fields = FormFields(m.current)
		m.payable = m.current.Payable
		if m.payable {
			m.fields = append(m.fields, FormField{Name: valueFieldName, Type: "ether", Placeholder: "decimal ETH, e.g. 0.25"})
		}
		m.values = make([]string, len(m.fields))
		for i, f := range m.fields {
			if f.Choices != nil {
				m.values[i] = f.Choices[0]
			}
		}
		m.field = 0
		if len(m.fields) == 0 {
			return m.submit()
		}
		m.state = stateForm
	}
	return m, nil
}

func (m StudioModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.fields[m.field]
	switch msg.String() {
	case "esc":
		m.state = stateList
	case "up", "shift+tab":
		if m.field > 0 {
			m.field--
		}
	case "down", "tab":
		if m.field < len(m.fields)-1 {
			m.field++
		}
	case "enter":
		if m.field < len(m.fields)-1 {
			m.field++
			return m, nil
		}
		return m.submit()
	case "ctrl+s":
		return m.submit()
	case "left", "right", " ":
		if f.Choices != nil {
			if m.values[m.field] == f.Choices[0] {
				m.values[m.field] = f.Choices[1]
			} else {
				m.values[m.field] = f.Choices[0]
			}
		} else if msg.String() == " " {
			m.values[m.field] += " "
		}
	case "backspace":
		if f.Choices == nil && len(m.values[m.field]) > 0 {
			r := []rune(m.values[m.field])
			m.values[m.field] = string(r[:len(r)-1])
		}
	default:
		if f.Choices == nil && msg.Type == tea.KeyRunes {
			m.values[m.field] += string(msg.Runes)
		}
	}
	return m, nil
}

// submit collects the form and starts the call. The UI waits for the result;
// a started call cannot be cancelled.
func (m StudioModel) submit() (tea.Model, tea.Cmd) {
	fields, values := m.fields, m.values
	var opts contract.CallOptions
	if m.payable {
		opts.Value = strings.TrimSpace(values[len(values)-1])
		fields, values = fields[:len(fields)-1], values[:len(values)-1]
	}
	params, err := CollectParams(fields, values)
	if err != nil {
		m.toast(ErrorToast(err, m.now()))
		return m, nil
	}

	m.state = stateCalling
	timeout := m.cfg.WriteTimeout
	if m.current.IsRead() {
		timeout = m.cfg.ReadTimeout
	}
	caller, name := m.caller, m.current.Signature
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := caller.Call(ctx, name, params, opts)
		return callDoneMsg{res: res, err: err}
	}
}

func (m *StudioModel) toast(t Toast) {
	m.toasts = append(m.toasts, t)
}

func (m *StudioModel) dropExpired() {
	now := m.now()
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.Expired(now) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// Selected returns the function under the cursor.
func (m StudioModel) Selected() (contract.FunctionDescriptor, bool) {
	if len(m.funcs) == 0 {
		return contract.FunctionDescriptor{}, false
	}
	return m.funcs[m.cursor], true
}

func (m StudioModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder

	title := "  Contract Studio"
	if m.cfg.ContractName != "" {
		title += "  ·  " + m.cfg.ContractName
	}
	if m.cfg.Network != "" {
		title += "  ·  " + m.cfg.Network
	}
	sb.WriteString(StyleTitle.Render(title) + "\n")
	sb.WriteString(fmt.Sprintf("  %-9s %s\n", StyleMeta.Render("Address"), StyleAddress.Render(m.cfg.Address)))
	account := StyleError.Render("not connected")
	if m.cfg.Account != "" {
		account = StyleAddress.Render(m.cfg.Account)
	}
	sb.WriteString(fmt.Sprintf("  %-9s %s\n\n", StyleMeta.Render("Wallet"), account))

	switch m.state {
	case stateList:
		sb.WriteString(m.viewList())
	case stateForm:
		sb.WriteString(m.viewForm())
	case stateCalling:
		sb.WriteString(StyleInfo.Render("  ⠋ calling "+m.current.Name+"…") + "\n")
		if !m.current.IsRead() {
			sb.WriteString(StyleMeta.Render("  waiting for the transaction to be mined") + "\n")
		}
	case stateResult:
		txURL := ""
		if m.result.Receipt != nil && m.cfg.TxURL != nil {
			txURL = m.cfg.TxURL(m.result.Receipt.Hash)
		}
		sb.WriteString(RenderCallResult(m.result, txURL) + "\n\n")
		sb.WriteString(StyleMeta.Render("  press any key to go back") + "\n")
	case stateHistory:
		sb.WriteString(RenderHistory(m.history) + "\n")
		sb.WriteString(StyleMeta.Render("  press any key to go back") + "\n")
	}

	for _, t := range m.toasts {
		sb.WriteString("\n" + t.Render())
	}
	return sb.String()
}

func (m StudioModel) viewList() string {
	if len(m.funcs) == 0 {
		return StyleMeta.Render("  No functions in ABI.") + "\n"
	}
	var sb strings.Builder
	for i, fd := range m.funcs {
		if i == 0 && m.nReads > 0 {
			sb.WriteString(StyleHeader.Render(fmt.Sprintf("  Read (%d)", m.nReads)) + "\n")
		}
		if i == m.nReads {
			sb.WriteString("\n" + StyleHeader.Render(fmt.Sprintf("  Write (%d)", len(m.funcs)-m.nReads)) + "\n")
		}

		name := StyleSuccess.Render(fd.Name)
		if !fd.IsRead() {
			name = StyleWarning.Render(fd.Name)
		}
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}
		line := fmt.Sprintf("%s%s(%s)", prefix, name, StyleMeta.Render(paramList(fd.Inputs)))
		if fd.Payable {
			line += " " + StyleWarning.Render("payable")
		}
		if i == m.cursor {
			line = StyleSelected.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n" + StyleMeta.Render("  [ ↑↓ ] navigate   ") + StyleInfo.Render("[ Enter ]") +
		StyleMeta.Render(" call   [ h ] history   [ q ] quit") + "\n")
	return sb.String()
}

func (m StudioModel) viewForm() string {
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("  "+m.current.Signature) + "\n")
	for i, f := range m.fields {
		label := fmt.Sprintf("  %-14s", f.Label(i))
		var input string
		switch {
		case f.Choices != nil:
			opts := make([]string, len(f.Choices))
			for j, c := range f.Choices {
				if c == m.values[i] {
					opts[j] = StyleSelected.Render(" " + c + " ")
				} else {
					opts[j] = StyleMeta.Render(" " + c + " ")
				}
			}
			input = strings.Join(opts, " ")
		case m.values[i] == "":
			input = StyleDim.Render(f.Placeholder)
		default:
			input = StyleValue.Render(m.values[i])
		}
		if i == m.field {
			label = StyleHeader.Render(label)
			if f.Choices == nil {
				input += "█"
			}
		} else {
			label = StyleMeta.Render(label)
		}
		sb.WriteString(label + " " + input + "  " + StyleDim.Render(f.Type) + "\n")
	}
	sb.WriteString("\n" + StyleMeta.Render("  [ Tab ] next   [ ←→ ] toggle   [ Enter ] next/submit   [ Esc ] back") + "\n")
	return sb.String()
}

// RunStudio runs the studio until the user quits.
func RunStudio(m StudioModel) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("studio: %w", err)
	}
	return nil
}
