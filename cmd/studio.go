package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/app"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/history"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

const studioHistorySize = 10

var studioABIFlag string

var studioCmd = &cobra.Command{
	Use:   "studio <address>",
	Short: "Browse and call a contract's functions interactively",
	Long: `Open the interactive studio for a contract.

Pick a function, fill in its parameters and call it. Read results and
transaction receipts are shown in place, and every successful call lands in
the history (press h). Without --abi you pick one of the saved ABIs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		name := studioABIFlag
		if name == "" {
			if name, err = pickSavedABI(s); err != nil || name == "" {
				return err
			}
		}
		if err := s.UseABI(name); err != nil {
			return err
		}
		account, err := connectSession(cmd.Context(), s)
		if err != nil {
			return err
		}
		if err := s.SetAddress(cmd.Context(), args[0]); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go s.Provider.Watch(ctx, config.ChainPollPeriod)

		st := s.Status()
		return ui.RunStudio(ui.NewStudio(s, ui.StudioConfig{
			ContractName: name,
			Address:      st.Address,
			Network:      st.Network,
			Account:      account,
			ReadTimeout:  config.ReadCallTimeout,
			WriteTimeout: config.TxConfirmTimeout,
			TxURL:        txURLFor(s),
			History: func() ([]history.Entry, error) {
				return s.History.GetRecentHistory(studioHistorySize)
			},
		}))
	},
}

func init() {
	studioCmd.Flags().StringVar(&studioABIFlag, "abi", "", "name of a saved ABI")
}

// pickSavedABI lets the user choose among saved ABIs. "" means cancelled.
func pickSavedABI(s *app.Session) (string, error) {
	names, err := s.ABIs.GetSavedAbisList()
	if err != nil {
		return "", err
	}
	items := make([]ui.PickerItem, 0, len(names))
	for _, n := range names {
		item := ui.PickerItem{Label: n, Value: n}
		if text, err := s.ABIs.GetAbiByName(n); err == nil {
			if entries, err := contract.ParseABI([]byte(text)); err == nil {
				item.SubLabel = fmt.Sprintf("%d functions", len(contract.Functions(entries)))
			}
		}
		items = append(items, item)
	}
	name, err := ui.PickItem("Choose an ABI", items, "")
	if errors.Is(err, ui.ErrNothingToPick) {
		return "", fmt.Errorf("no saved ABIs: save one with `abistudio abi save <name> <file>`")
	}
	return name, err
}
