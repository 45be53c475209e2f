package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/app"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/logger"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
	"github.com/Mohsinsiddi/abistudio/internal/wallet"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/abistudio/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir     string
	cfg        *config.Config
	log        *zap.Logger
	verbose    bool
	testnet    bool
	mainnet    bool
	networkArg string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "abistudio",
	Short: "Call any EVM contract from its ABI",
	Long: `abistudio keeps a library of contract ABIs and lets you call any of
their functions through your local wallets.

  Save an ABI, point it at a contract address, and call read functions or
  send transactions from the terminal, the interactive studio, or the
  browser front end served by "abistudio serve".

Global flags --testnet and --mainnet override the configured network mode
for a single invocation. Persist with: abistudio config set network_mode <mode>`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.NetworkMode = "testnet"
		}
		if mainnet {
			cfg.NetworkMode = "mainnet"
		}
		if networkArg != "" {
			cfg.DefaultNetwork = networkArg
		}

		log, err = logger.NewLogger(&logger.LoggerConfig{
			Debug:   cfg.Debug || verbose,
			File:    cfg.LogPath(),
			Console: verbose,
		})
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		log.Debug("config loaded",
			zap.String("dir", cfg.Dir()),
			zap.String("network", cfg.DefaultNetwork),
			zap.String("mode", cfg.NetworkMode))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, ui.FormatError(err))
		os.Exit(1)
	}
}

func init() {
	// ABISTUDIO_CONFIG_DIR overrides the --config default.
	if envDir := os.Getenv(config.EnvPrefix + "_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.abistudio)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use testnet instead of mainnet")
	rootCmd.PersistentFlags().BoolVar(&mainnet, "mainnet", false, "use mainnet instead of testnet")
	rootCmd.PersistentFlags().StringVarP(&networkArg, "network", "n", "", "network to connect to (default from config)")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	rootCmd.AddCommand(
		abiCmd,
		contractCmd,
		historyCmd,
		walletCmd,
		networkCmd,
		studioCmd,
		serveCmd,
		configCmd,
	)
}

// newSession builds an app.Session over the config directory. Wallet access
// is approved interactively the first time.
func newSession() (*app.Session, error) {
	mgr, err := newWalletManager()
	if err != nil {
		return nil, err
	}
	return app.New(app.Options{
		Config:  cfg,
		Wallets: mgr,
		Logger:  log,
		ProviderOptions: []wallet.ProviderOption{
			wallet.WithApprover(ui.ApproveAccounts),
		},
	})
}

// connectSession reuses an earlier grant and falls back to asking for
// access. The returned account is the one calls are sent from.
func connectSession(ctx context.Context, s *app.Session) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()

	if account, ok := s.Restore(ctx); ok {
		return account, nil
	}
	return s.Connect(ctx)
}
