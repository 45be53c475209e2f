package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets and the wallet connection",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a watch-only wallet by address, or a signing wallet with --key.

Signing keys are kept in the OS keychain; only the address is written to
wallets.json. Watch-only wallets can call read functions but not send
transactions.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}

		var w *wallet.Wallet
		if walletKeyFlag != "" {
			w, err = mgr.AddWithKey(name, walletKeyFlag)
		} else {
			if len(args) < 2 {
				return fmt.Errorf("address required for watch-only wallet\n  Usage: abistudio wallet add <name> <address>\n  Or for signing: abistudio wallet add <name> --key <private-key>")
			}
			w, err = mgr.AddWatchOnly(name, args[1])
		}
		if err != nil {
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("%s wallet %q added: %s", walletTypeLabel(w.Type), name, ui.Addr(w.Address))))
		fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: abistudio wallet use %s", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		wallets, err := mgr.List()
		if err != nil {
			return err
		}

		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: abistudio wallet add myWallet 0xYourAddress"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				ui.Val(w.Name),
				ui.Addr(w.Address),
				ui.Meta(walletTypeLabel(w.Type)),
				def,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Long:  "Set the default wallet. The default wallet is the primary account after connecting.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Grant abistudio access to your wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		if _, err := s.Connect(ctx); err != nil {
			return err
		}
		st := s.Status()
		fmt.Println(ui.RenderConnection(st.Account, st.Network, st.RPC, st.ChainID))
		if !st.CanWrite {
			fmt.Println(ui.Warn("Watch-only account: write functions are disabled."))
		}
		return nil
	},
}

var walletDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Revoke wallet access",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Disconnect(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Wallet access revoked."))
		return nil
	},
}

var walletStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the wallet connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		if _, ok := s.Restore(ctx); !ok {
			fmt.Println(ui.RenderConnection("", "", "", 0))
			fmt.Println(ui.Hint("Connect with: abistudio wallet connect"))
			return nil
		}
		st := s.Status()
		fmt.Println(ui.RenderConnection(st.Account, st.Network, st.RPC, st.ChainID))
		return nil
	},
}

var walletSwitchCmd = &cobra.Command{
	Use:   "switch <chain-id|chain>",
	Short: "Switch the connected wallet to another chain",
	Long: `Switch the connected wallet to another chain, given as a chain ID or a
chain name. A chain name resolves to its mainnet or testnet ID per the
current network mode.

The chain becomes the default network for later commands.

Examples:
  abistudio wallet switch 84532
  abistudio wallet switch base --testnet`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainID, err := resolveChainID(args[0])
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if _, err := connectSession(cmd.Context(), s); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		if err := s.SwitchChain(ctx, chainID); err != nil {
			return err
		}
		if err := rememberChain(chainID); err != nil {
			return fmt.Errorf("switched, but saving the default network failed: %w", err)
		}
		st := s.Status()
		fmt.Println(ui.Success(fmt.Sprintf("Switched to %s (chain %d)", ui.ChainName(st.Network), st.ChainID)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for signing wallet (stored in OS keychain)")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd,
		walletConnectCmd, walletDisconnectCmd, walletStatusCmd, walletSwitchCmd)
}

func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "read-write"
	default:
		return t
	}
}

// newWalletManager creates a Manager backed by the config-dir JSON store and
// the OS keychain.
func newWalletManager() (*wallet.Manager, error) {
	keys, err := wallet.OpenKeyring(cfg.Dir())
	if err != nil {
		return nil, fmt.Errorf("opening keychain: %w", err)
	}
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeyStore(keys),
	), nil
}

// rememberChain stores chainID's network and mode as the config defaults.
func rememberChain(chainID int64) error {
	c, err := chain.NewRegistry().GetByChainID(chainID)
	if err != nil {
		return err
	}
	if err := cfg.Set("default_network", c.Name); err != nil {
		return err
	}
	if err := cfg.Set("network_mode", c.ModeOf(chainID)); err != nil {
		return err
	}
	return cfg.Save()
}

// resolveChainID accepts a numeric chain ID or a chain name.
func resolveChainID(arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}
	c, err := chain.NewRegistry().GetByName(arg)
	if err != nil {
		return 0, fmt.Errorf("unknown chain %q, run `abistudio network list` to see all chains", arg)
	}
	return c.ID(cfg.NetworkMode), nil
}
