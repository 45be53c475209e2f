package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SetupResult holds the answers collected by the setup wizard.
type SetupResult struct {
	DefaultNetwork string
	NetworkMode    string
	RPCAlgorithm   string
	StorageDriver  string
	WalletAddress  string // optional watch-only wallet
	Cancelled      bool
}

type setupStep int

const (
	stepNetwork setupStep = iota
	stepMode
	stepAlgorithm
	stepStorage
	stepWallet
	stepDone
)

var (
	setupModes      = []string{"mainnet", "testnet"}
	setupAlgorithms = []string{"fastest", "round-robin", "failover"}
	setupDrivers    = []string{"file", "leveldb", "memory"}
)

type setupModel struct {
	step     setupStep
	networks []string
	result   SetupResult
	cursor   int
	input    string
}

func newSetup(networks []string) setupModel {
	return setupModel{networks: networks}
}

func (m setupModel) choices() []string {
	switch m.step {
	case stepNetwork:
		return m.networks
	case stepMode:
		return setupModes
	case stepAlgorithm:
		return setupAlgorithms
	case stepStorage:
		return setupDrivers
	}
	return nil
}

func (m setupModel) Init() tea.Cmd { return nil }

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	typing := m.step == stepWallet

	switch key.String() {
	case "ctrl+c", "esc":
		m.result.Cancelled = true
		return m, tea.Quit
	case "up":
		if !typing && m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if !typing && m.cursor < len(m.choices())-1 {
			m.cursor++
		}
	case "enter":
		m.apply()
		m.cursor = 0
		m.step++
	case "backspace":
		if typing && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		if typing && key.Type == tea.KeyRunes {
			m.input += string(key.Runes)
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *setupModel) apply() {
	choices := m.choices()
	pick := ""
	if m.cursor < len(choices) {
		pick = choices[m.cursor]
	}
	switch m.step {
	case stepNetwork:
		m.result.DefaultNetwork = pick
	case stepMode:
		m.result.NetworkMode = pick
	case stepAlgorithm:
		m.result.RPCAlgorithm = pick
	case stepStorage:
		m.result.StorageDriver = pick
	case stepWallet:
		// Pasted addresses sometimes carry brackets or whitespace.
		m.result.WalletAddress = strings.Trim(strings.TrimSpace(m.input), "[]")
	}
}

func (m setupModel) View() string {
	var s string
	switch m.step {
	case stepNetwork:
		s = renderMenu("Select default network:", m.choices(), m.cursor)
	case stepMode:
		s = renderMenu("Select network mode:", m.choices(), m.cursor)
	case stepAlgorithm:
		s = renderMenu("Select RPC algorithm:", m.choices(), m.cursor)
	case stepStorage:
		s = renderMenu("Where should saved ABIs and history live?", m.choices(), m.cursor)
	case stepWallet:
		s = StyleTitle.Render("Add a watch-only wallet (optional)") + "\n\n"
		s += StyleMeta.Render("Enter an address, or press Enter to skip:") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}
	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc cancel")
	return s
}

// RunSetupWizard asks for the initial configuration. networks lists the
// selectable chain names.
func RunSetupWizard(networks []string) (*SetupResult, error) {
	final, err := tea.NewProgram(newSetup(networks)).Run()
	if err != nil {
		return nil, fmt.Errorf("setup wizard: %w", err)
	}
	result := final.(setupModel).result
	return &result, nil
}
