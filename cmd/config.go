package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/chain"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

// setupWalletName names the watch-only wallet added by `config init`.
const setupWalletName = "default"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		fmt.Println(ui.Meta("Environment overrides: " + config.EnvPrefix + "_<KEY>, e.g. " + config.EnvPrefix + "_SERVER_PORT"))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it.

Keys:
  default_network   chain name, see "abistudio network list"
  default_wallet    wallet name
  network_mode      mainnet | testnet
  rpc_algorithm     fastest | round-robin | failover
  storage_driver    file | leveldb | memory
  server_port       port for "abistudio serve"
  doc_root          directory served by "abistudio serve"
  log_file          log file, relative to the config directory
  debug             true | false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if key == "default_network" {
			if _, err := chain.NewRegistry().GetByName(value); err != nil {
				return fmt.Errorf("unknown chain %q, run `abistudio network list` to see all chains", value)
			}
		}
		if err := cfg.Set(key, value); err != nil {
			if errors.Is(err, config.ErrUnknownKey) {
				fmt.Println(ui.Hint("Run `abistudio config set --help` for the list of keys."))
			}
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", key, value)))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Launch the interactive setup wizard to configure abistudio.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		result, err := ui.RunSetupWizard(chain.NewRegistry().Names())
		if err != nil {
			return err
		}
		if result.Cancelled {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		if result.DefaultNetwork != "" {
			cfg.DefaultNetwork = result.DefaultNetwork
		}
		if result.NetworkMode != "" {
			cfg.NetworkMode = result.NetworkMode
		}
		if result.RPCAlgorithm != "" {
			cfg.RPCAlgorithm = result.RPCAlgorithm
		}
		if result.StorageDriver != "" {
			cfg.StorageDriver = result.StorageDriver
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		if result.WalletAddress != "" {
			if err := addSetupWallet(result.WalletAddress); err != nil {
				fmt.Println(ui.Warn(fmt.Sprintf("Could not add wallet: %v", err)))
			}
		}

		fmt.Println(ui.Success("abistudio configured! Save an ABI with `abistudio abi save` to get started."))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configInitCmd)
}

func addSetupWallet(address string) error {
	mgr, err := newWalletManager()
	if err != nil {
		return err
	}
	if _, err := mgr.AddWatchOnly(setupWalletName, address); err != nil {
		return err
	}
	if err := mgr.SetDefault(setupWalletName); err != nil {
		return err
	}
	cfg.DefaultWallet = setupWalletName
	return cfg.Save()
}
