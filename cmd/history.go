package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/history"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var (
	historyAddress  string
	historyFunction string
	historyLimit    int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show and manage the call history",
	Long:  "Successful calls are recorded newest first; only the last 50 are kept.",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(m *history.Manager) error {
			var (
				entries []history.Entry
				err     error
			)
			switch {
			case historyAddress != "":
				entries, err = m.FilterByAddress(historyAddress)
			case historyFunction != "":
				entries, err = m.FilterByFunction(historyFunction)
			case historyLimit > 0:
				entries, err = m.GetRecentHistory(historyLimit)
			default:
				entries, err = m.GetHistory()
			}
			if err != nil {
				return err
			}
			fmt.Println(ui.RenderHistory(entries))
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Show one recorded call in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		return withHistory(func(m *history.Manager) error {
			entries, err := m.GetHistory()
			if err != nil {
				return err
			}
			if index < 0 || index >= len(entries) {
				return fmt.Errorf("no history entry at index %d", index)
			}
			fmt.Println(ui.RenderHistoryEntry(entries[index]))
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete one recorded call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		return withHistory(func(m *history.Manager) error {
			ok, err := m.DeleteHistoryItem(index)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println(ui.Warn(fmt.Sprintf("No history entry at index %d.", index)))
				return nil
			}
			fmt.Println(ui.Success(fmt.Sprintf("Entry %d deleted.", index)))
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole call history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ConfirmDanger("Clear the call history?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		return withHistory(func(m *history.Manager) error {
			if err := m.ClearHistory(); err != nil {
				return err
			}
			fmt.Println(ui.Success("History cleared."))
			return nil
		})
	},
}

func init() {
	historyListCmd.Flags().StringVar(&historyAddress, "address", "", "only calls to this contract")
	historyListCmd.Flags().StringVar(&historyFunction, "function", "", "only calls to this function")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 0, "only the N most recent calls")
	historyListCmd.MarkFlagsMutuallyExclusive("address", "function", "limit")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyClearCmd)
}

func withHistory(fn func(*history.Manager) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(history.NewManager(store))
}
