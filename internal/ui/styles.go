package ui

import "github.com/charmbracelet/lipgloss"

// Palette. Read calls are green and writes yellow everywhere, so a user can
// tell at a glance whether something will cost gas.
var (
	ColorRead      = lipgloss.Color("#00D26A")
	ColorWrite     = lipgloss.Color("#FFB800")
	ColorPayable   = lipgloss.Color("#F15BB5")
	ColorError     = lipgloss.Color("#FF4444")
	ColorInfo      = lipgloss.Color("#4CC9F0")
	ColorAddress   = lipgloss.Color("#00B4D8")
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#555555")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorAccent    = lipgloss.Color("#9B5DE5")
	ColorHighlight = ColorPayable
)

var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorRead).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWrite).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleDim     = StyleMeta
	StyleChain   = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	StyleTitle   = StyleChain.MarginBottom(1)
	StyleHeader  = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true).Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

var mutabilityStyles = map[string]lipgloss.Style{
	"view":       lipgloss.NewStyle().Foreground(ColorRead),
	"pure":       lipgloss.NewStyle().Foreground(ColorRead),
	"nonpayable": lipgloss.NewStyle().Foreground(ColorWrite),
	"payable":    lipgloss.NewStyle().Foreground(ColorPayable).Bold(true),
}

// Banner returns the abistudio banner.
func Banner() string {
	art := `
   ┌─┐┌┐ ┬  ┌─┐┌┬┐┬ ┬┌┬┐┬┌─┐
   ├─┤├┴┐│  └─┐ │ │ │ ││││ │
   ┴ ┴└─┘┴  └─┘ ┴ └─┘─┴┘┴└─┘`
	return StyleChain.Render(art) + "\n" + StyleMeta.Render("   Call any EVM contract from its ABI") + "\n"
}

func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }
func Err(msg string) string { return StyleError.Render("✗ " + msg) }
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }
func Hint(msg string) string { return StyleMeta.Render("💡 " + msg) }

func Addr(a string) string { return StyleAddress.Render(a) }
func Val(v string) string { return StyleValue.Render(v) }
func Meta(m string) string { return StyleMeta.Render(m) }
func ChainName(c string) string { return StyleChain.Render(c) }

// Mutability colours a stateMutability value by read/write/payable.
// Unknown values are dimmed.
func Mutability(m string) string {
	if s, ok := mutabilityStyles[m]; ok {
		return s.Render(m)
	}
	return StyleDim.Render(m)
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
