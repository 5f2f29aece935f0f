package main

import (
	"github.com/spf13/cobra"

	_ "github.com/cpms/cpms-api/docs"
	"github.com/cpms/cpms-api/internal/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. Usage:

	cpms server
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}

		srv, err := server.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		return srv.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
