package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Mohsinsiddi/abistudio/internal/abistore"
	"github.com/Mohsinsiddi/abistudio/internal/app"
	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var (
	contractABIFlag  string
	contractFileFlag string
	contractValue    string
	contractGasLimit uint64
	contractYes      bool
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Inspect and call contract functions",
}

var contractFunctionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the functions of an ABI, grouped into read and write",
	Example: `  abistudio contract functions --abi Token
  abistudio contract functions --file ./Token.abi.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _, err := loadABIFlag()
		if err != nil {
			return err
		}
		entries, err := contract.ParseABI([]byte(text))
		if err != nil {
			return err
		}
		fmt.Println(ui.RenderFunctions(contract.Functions(entries)))
		return nil
	},
}

var contractCallCmd = &cobra.Command{
	Use:   "call <address> <function> [params...]",
	Short: "Call a contract function",
	Long: `Call a contract function through the connected wallet.

Read functions (view, pure) return their value. Anything else is sent as a
transaction from the primary account and waits until it is mined.

Parameters are positional. Arrays are comma-separated, booleans are
true/false, and tuples are given as JSON. Overloaded functions can be
named by signature, e.g. "safeTransferFrom(address,address,uint256)".

Examples:
  abistudio contract call 0xA0b8…eB48 balanceOf 0xf39F…2266 --abi USDC
  abistudio contract call 0xA0b8…eB48 transfer 0xf39F…2266 1000000 --abi USDC
  abistudio contract call 0xC02a…6Cc2 deposit --abi WETH --value 0.1`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, name, values := args[0], args[1], args[2:]

		text, saved, err := loadABIFlag()
		if err != nil {
			return err
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		if saved != "" {
			err = s.UseABI(saved)
		} else {
			err = s.LoadABI(text)
		}
		if err != nil {
			return err
		}
		fd, err := s.Contract.Function(name)
		if err != nil {
			return err
		}
		params, err := ui.CollectParams(ui.FormFields(fd), values)
		if err != nil {
			return err
		}

		account, err := connectSession(cmd.Context(), s)
		if err != nil {
			return err
		}
		if err := s.SetAddress(cmd.Context(), address); err != nil {
			return err
		}

		timeout := config.ReadCallTimeout
		label := fmt.Sprintf("Calling %s…", fd.Signature)
		if !fd.IsRead() {
			timeout = config.TxConfirmTimeout
			label = fmt.Sprintf("Sending %s and waiting for it to be mined…", fd.Signature)
			if !contractYes {
				fmt.Println(ui.KeyValueBlock("Transaction", [][2]string{
					{"From", ui.Addr(account)},
					{"To", ui.Addr(s.Contract.Address())},
					{"Function", fd.Signature},
					{"Value", valueLabel(contractValue)},
				}))
				if !ui.Confirm("Send transaction") {
					fmt.Println(ui.Meta("Cancelled."))
					return nil
				}
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		spin := ui.NewSpinner(label)
		spin.Start()
		res, err := s.Call(ctx, fd.Signature, params, contract.CallOptions{
			Value:    contractValue,
			GasLimit: contractGasLimit,
		})
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.RenderCallResult(res, txURLFor(s)(hashOf(res))))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{contractFunctionsCmd, contractCallCmd} {
		addABISourceFlags(c.Flags())
		c.MarkFlagsMutuallyExclusive("abi", "file")
		c.MarkFlagsOneRequired("abi", "file")
	}
	contractCallCmd.Flags().StringVar(&contractValue, "value", "", "ETH to send with a payable function, e.g. 0.01")
	contractCallCmd.Flags().Uint64Var(&contractGasLimit, "gas-limit", 0, "gas limit (default: estimated)")
	contractCallCmd.Flags().BoolVarP(&contractYes, "yes", "y", false, "send transactions without asking")
	contractCmd.AddCommand(contractFunctionsCmd, contractCallCmd)
}

func addABISourceFlags(fs *pflag.FlagSet) {
	fs.StringVar(&contractABIFlag, "abi", "", "name of a saved ABI")
	fs.StringVar(&contractFileFlag, "file", "", "read the ABI from a file or build artifact instead")
}

// loadABIFlag returns the ABI text from --file or --abi. saved is the ABI
// name when it came from the store.
func loadABIFlag() (text, saved string, err error) {
	if contractFileFlag != "" {
		data, err := os.ReadFile(contractFileFlag)
		if err != nil {
			return "", "", fmt.Errorf("reading ABI: %w", err)
		}
		extracted, err := contract.ExtractABI(data)
		if err != nil {
			return "", "", err
		}
		return string(extracted), "", nil
	}

	err = withABIStore(func(m *abistore.Manager) error {
		text, err = m.GetAbiByName(contractABIFlag)
		return err
	})
	if err != nil {
		return "", "", err
	}
	return text, contractABIFlag, nil
}

// txURLFor links transaction hashes on the connected chain's explorer.
func txURLFor(s *app.Session) func(hash string) string {
	return func(hash string) string {
		c, _ := s.Provider.Network()
		if c == nil || hash == "" {
			return ""
		}
		return c.TxURL(c.ModeOf(s.Connector.ChainID()), hash)
	}
}

func hashOf(res *contract.CallResult) string {
	if res.Receipt == nil {
		return ""
	}
	return res.Receipt.Hash
}

func valueLabel(v string) string {
	if v == "" {
		return "0"
	}
	return v + " ETH"
}
