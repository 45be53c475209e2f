package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/rpc"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "List networks and manage their RPC endpoints",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 12},
			{Title: "Display", Width: 16},
			{Title: "Chain ID", Width: 9},
			{Title: "Testnet", Width: 18},
			{Title: "Testnet ID", Width: 10},
			{Title: "Currency", Width: 8},
		})
		for _, c := range reg.All() {
			name := ui.ChainName(c.Name)
			if c.Name == cfg.DefaultNetwork {
				name += ui.StyleSuccess.Render(" ✓")
			}
			testnetID := "—"
			if c.TestnetChainID != 0 {
				testnetID = fmt.Sprintf("%d", c.TestnetChainID)
			}
			t.AddRow(ui.Row{
				name,
				c.DisplayName,
				fmt.Sprintf("%d", c.ChainID),
				c.TestnetName,
				testnetID,
				c.NativeCurrency,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d networks, mode %s", len(reg.All()), cfg.NetworkMode)))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <chain>",
	Short: "Set the network wallets connect to",
	Long: `Set the default network and persist it to config.

When combined with --testnet or --mainnet the network mode is also persisted.

Examples:
  abistudio network use base              # keep current mode
  abistudio network use base --testnet    # base sepolia from now on`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, err := chain.NewRegistry().GetByName(name); err != nil {
			return fmt.Errorf("unknown chain %q, run `abistudio network list` to see all chains", name)
		}
		cfg.DefaultNetwork = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s (%s)", ui.ChainName(name), cfg.NetworkMode)))
		return nil
	},
}

var networkRPCCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage custom RPC endpoints",
}

var networkRPCAddCmd = &cobra.Command{
	Use:   "add <chain> <url>",
	Short: "Add a custom RPC URL, tried before the built-in ones",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		if _, err := chain.NewRegistry().GetByName(name); err != nil {
			return fmt.Errorf("unknown chain %q", name)
		}
		if err := cfg.AddRPC(name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(name), url)))
		return nil
	},
}

var networkRPCRemoveCmd = &cobra.Command{
	Use:   "remove <chain> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		if err := cfg.RemoveRPC(name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed RPC for %s: %s", name, url)))
		return nil
	},
}

var networkRPCListCmd = &cobra.Command{
	Use:   "list <chain>",
	Short: "Probe every RPC for a chain and show which one would be picked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown chain %q", args[0])
		}
		urls := append(append([]string{}, cfg.GetRPCs(c.Name)...), c.RPCs(cfg.NetworkMode)...)

		fmt.Println(ui.StyleTitle.Render(fmt.Sprintf("%s RPCs", c.NetworkLabel(cfg.NetworkMode))))

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()

		spin := ui.NewSpinner("Probing endpoints…")
		spin.Start()
		endpoints := rpc.NewProber(nil).Probe(ctx, urls)
		spin.Stop()

		best, pickErr := rpc.NewPicker(rpc.ParseAlgorithm(cfg.RPCAlgorithm)).Pick(endpoints)

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 42},
			{Title: "Latency", Width: 10},
			{Title: "Block #", Width: 12},
			{Title: "Status", Width: 8},
		})
		for _, ep := range endpoints {
			status := ui.StyleError.Render("down")
			latency, block := "—", "—"
			if ep.Healthy {
				status = ui.StyleSuccess.Render("ok")
				latency = ep.Latency.Round(time.Millisecond).String()
				block = fmt.Sprintf("%d", ep.BlockNumber)
			}
			url := ep.URL
			if best != nil && best.URL == ep.URL {
				url = ui.StyleSuccess.Render("→ ") + url
			}
			t.AddRow(ui.Row{url, latency, block, status})
		}
		fmt.Println(t.Render())
		if pickErr != nil {
			fmt.Println(ui.Warn(pickErr.Error()))
			return nil
		}
		fmt.Println(ui.Meta(fmt.Sprintf("algorithm %s picks %s", cfg.RPCAlgorithm, best.URL)))
		return nil
	},
}

func init() {
	networkRPCCmd.AddCommand(networkRPCAddCmd, networkRPCRemoveCmd, networkRPCListCmd)
	networkCmd.AddCommand(networkListCmd, networkUseCmd, networkRPCCmd)
}
