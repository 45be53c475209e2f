package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/abistudio/internal/abistore"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/deploy"
	"github.com/Mohsinsiddi/abistudio/internal/storage"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var (
	abiBuiltinFlag   string
	abiJSONFlag      string
	abiImportNetwork string
)

var abiCmd = &cobra.Command{
	Use:   "abi",
	Short: "Manage saved contract ABIs",
}

var abiSaveCmd = &cobra.Command{
	Use:   "save <name> [file]",
	Short: "Save an ABI under a name",
	Long: `Save an ABI under a name, replacing any ABI already saved with that name.

The ABI is read from a file, from --json, or from stdin when the file is "-"
or omitted. Any valid JSON is accepted; run "abistudio abi validate" to check
that it is an ABI array.

Examples:
  abistudio abi save Token ./Token.abi.json
  cat Token.json | jq .abi | abistudio abi save Token
  abistudio abi save USDC --builtin erc20`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		return withABIStore(func(m *abistore.Manager) error {
			if abiBuiltinFlag != "" {
				saved, err := m.SaveBuiltin(abiBuiltinFlag, name)
				if err != nil {
					return err
				}
				fmt.Println(ui.Success(fmt.Sprintf("Builtin %s saved as %q.", abiBuiltinFlag, saved)))
				return nil
			}

			text, err := readABIText(cmd.InOrStdin(), args[1:])
			if err != nil {
				return err
			}
			if err := m.SaveAbi(name, text); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("ABI %q saved.", strings.TrimSpace(name))))
			if err := abistore.ValidateAbi(text); err != nil {
				fmt.Println(ui.Warn(err.Error()))
			}
			return nil
		})
	},
}

var abiListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved ABIs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withABIStore(func(m *abistore.Manager) error {
			names, err := m.GetSavedAbisList()
			if err != nil {
				return err
			}
			fmt.Println(ui.RenderSavedABIs(names, ""))
			if len(names) == 0 {
				fmt.Println(ui.Hint("Save one with: abistudio abi save <name> <file>"))
			}
			return nil
		})
	},
}

var abiShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved ABI and its functions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withABIStore(func(m *abistore.Manager) error {
			text, err := m.GetAbiByName(args[0])
			if err != nil {
				return err
			}
			entries, err := contract.ParseABI([]byte(text))
			if err != nil {
				// Saved but not callable: show it raw.
				fmt.Println(ui.Warn(err.Error()))
				fmt.Println(text)
				return nil
			}
			fmt.Println(ui.StyleTitle.Render(args[0]))
			fmt.Println(ui.RenderFunctions(contract.Functions(entries)))
			return nil
		})
	},
}

var abiDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved ABI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Delete ABI %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		return withABIStore(func(m *abistore.Manager) error {
			if err := m.DeleteAbi(name); err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("ABI %q deleted.", name)))
			return nil
		})
	},
}

var abiValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check that a file holds an ABI array",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readABIText(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		if err := abistore.ValidateAbi(text); err != nil {
			return err
		}
		entries, err := contract.ParseABI([]byte(text))
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Valid ABI: %d entries, %d functions.", len(entries), len(contract.Functions(entries)))))
		return nil
	},
}

var abiBuiltinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the ABIs bundled with abistudio",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "ID", Width: 8},
			{Title: "Name", Width: 16},
			{Title: "Functions", Width: 10},
			{Title: "Description", Width: 40},
		})
		for _, b := range contract.AllBuiltins() {
			t.AddRow(ui.Row{
				ui.Val(b.ID),
				b.Name,
				fmt.Sprintf("%d", len(contract.Functions(b.Entries()))),
				ui.Meta(b.Description),
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Hint("Save one with: abistudio abi save <name> --builtin <id>"))
		return nil
	},
}

var abiSelectorCmd = &cobra.Command{
	Use:   "selector <signature>",
	Short: "Compute the selector of a function or the topic of an event",
	Long: `Compute the 4-byte selector of a function signature and the full
32-byte hash, which is the topic for an event with that signature.
Parameter names are ignored.

Examples:
  abistudio abi selector "transfer(address,uint256)"          # 0xa9059cbb
  abistudio abi selector "approve(address spender, uint256)"   # 0x095ea7b3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sig := contract.NormalizeSignature(args[0])
		fmt.Println(ui.KeyValueBlock("Function Selector", [][2]string{
			{"Signature", sig},
			{"Selector", ui.Val(contract.SelectorOf(sig))},
			{"Topic", contract.TopicOf(sig)},
		}))
		return nil
	},
}

var abiDecodeCmd = &cobra.Command{
	Use:   "decode <name> <calldata>",
	Short: "Decode transaction calldata with a saved ABI",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withABIStore(func(m *abistore.Manager) error {
			text, err := m.GetAbiByName(args[0])
			if err != nil {
				return err
			}
			entries, err := contract.ParseABI([]byte(text))
			if err != nil {
				return err
			}
			call, err := contract.DecodeCalldata(entries, args[1])
			if err != nil {
				return err
			}

			pairs := [][2]string{
				{"Function", ui.Val(call.Signature)},
				{"Selector", call.Selector},
			}
			for i, a := range call.Args {
				label := a.Name
				if label == "" {
					label = fmt.Sprintf("arg%d", i)
				}
				pairs = append(pairs, [2]string{label + " (" + a.Type + ")", fmt.Sprint(a.Value)})
			}
			fmt.Println(ui.KeyValueBlock("Decoded Calldata", pairs))
			return nil
		})
	},
}

var abiImportCmd = &cobra.Command{
	Use:   "import <manifest>",
	Short: "Save every ABI listed in a deployments manifest",
	Long: `Import ABIs from a deployments manifest (a file path or http(s) URL):

  {"contracts": {"Token": {"sepolia": {"address": "0x…", "abi_url": "abis/Token.json"}}}}

abi_url may be a URL or a path relative to the manifest, and may point at a raw
ABI or a Hardhat/Foundry artifact. ABIs are saved as "<contract>@<network>",
or as "<contract>" when --chain picks a single network.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withABIStore(func(m *abistore.Manager) error {
			report, err := deploy.NewImporter(m, log).Import(cmd.Context(), args[0], abiImportNetwork)
			if err != nil {
				return err
			}

			t := ui.NewTable([]ui.Column{
				{Title: "Saved As", Width: 24},
				{Title: "Network", Width: 12},
				{Title: "Address", Width: 44},
			})
			for _, imp := range report.Imported {
				t.AddRow(ui.Row{ui.Val(imp.Name), imp.Network, ui.Addr(imp.Address)})
			}
			fmt.Println(t.Render())
			for _, f := range report.Failed {
				fmt.Println(ui.Warn(fmt.Sprintf("%s on %s: %v", f.Contract, f.Network, f.Err)))
			}
			fmt.Println(ui.Success(fmt.Sprintf("Imported %d ABI(s).", len(report.Imported))))
			return nil
		})
	},
}

func init() {
	abiImportCmd.Flags().StringVar(&abiImportNetwork, "chain", "", "only import deployments listed under this network key")
	abiSaveCmd.Flags().StringVar(&abiBuiltinFlag, "builtin", "", "save a bundled ABI (see `abistudio abi builtins`)")
	abiSaveCmd.Flags().StringVar(&abiJSONFlag, "json", "", "ABI JSON text")
	abiSaveCmd.MarkFlagsMutuallyExclusive("builtin", "json")
	abiCmd.AddCommand(abiSaveCmd, abiListCmd, abiShowCmd, abiDeleteCmd, abiValidateCmd, abiBuiltinsCmd,
		abiSelectorCmd, abiDecodeCmd, abiImportCmd)
}

// readABIText returns --json, the named file, or stdin for "-" or no file.
func readABIText(stdin io.Reader, args []string) (string, error) {
	if abiJSONFlag != "" {
		return abiJSONFlag, nil
	}
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("reading ABI: %w", err)
	}
	return string(data), nil
}

// openStore opens the configured local storage.
func openStore() (storage.Store, error) {
	store, err := storage.Open(cfg.StorageDriver, cfg.StoragePath())
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	return store, nil
}

func withABIStore(fn func(*abistore.Manager) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(abistore.NewManager(store))
}
