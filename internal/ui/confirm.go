package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm prompts on stdout and reads a yes/no answer from stdin.
func Confirm(prompt string) bool {
	return ConfirmFrom(os.Stdin, os.Stdout, StyleWarning.Render(prompt))
}

// ConfirmDanger is like Confirm but styled for destructive actions.
func ConfirmDanger(prompt string) bool {
	return ConfirmFrom(os.Stdin, os.Stdout, StyleError.Render("⚠ "+prompt))
}

// ConfirmFrom writes prompt to w and reads one answer line from r. Only
// "y" and "yes" count as yes.
func ConfirmFrom(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// ApproveAccounts asks before exposing wallet accounts to abistudio for the
// first time. It matches wallet.ApproveFunc.
func ApproveAccounts(accounts []string) bool {
	fmt.Println(StyleTitle.Render("Grant abistudio access to these accounts?"))
	for _, a := range accounts {
		fmt.Println("  " + Addr(a))
	}
	return Confirm("Connect")
}
