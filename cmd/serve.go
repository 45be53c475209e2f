package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/config"
	"github.com/Mohsinsiddi/abistudio/internal/server"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var (
	servePort    int
	serveRoot    string
	serveOpen    bool
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser front end and its JSON API",
	Long: `Serve the browser front end from the document root together with a JSON
API over the same wallets, saved ABIs and history the CLI uses.

Unknown paths fall back to index.html. Prometheus metrics are exposed on
/metrics. Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.ServerPort
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		root := cfg.DocRoot
		if serveRoot != "" {
			root = serveRoot
		}

		s, err := newSession()
		if err != nil {
			return err
		}
		defer s.Close()

		// A grant from an earlier session is picked up without asking.
		if account, ok := s.Restore(cmd.Context()); ok {
			log.Info("wallet restored", zap.String("account", account))
		}
		go s.Provider.Watch(cmd.Context(), config.ChainPollPeriod)

		srv := server.New(s, server.Config{
			Port:           port,
			DocRoot:        root,
			AllowedOrigins: serveOrigins,
		})

		url := fmt.Sprintf("http://localhost:%d", port)
		fmt.Println(ui.Banner())
		fmt.Println(ui.Success("Serving " + ui.Val(root) + " at " + ui.Addr(url)))
		fmt.Println(ui.Meta("Press Ctrl+C to stop."))
		if serveOpen {
			if err := ui.OpenBrowser(url); err != nil {
				fmt.Println(ui.Warn("Could not open a browser: " + err.Error()))
			}
		}

		if err := srv.Run(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(ui.Meta("Server stopped."))
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (default from config, 8080)")
	serveCmd.Flags().StringVar(&serveRoot, "root", "", "document root (default from config, ./web)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the front end in a browser")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allow-origin", nil, "origins allowed to call the API (default: localhost dev servers)")
}
