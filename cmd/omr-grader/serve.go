package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/omr-grader/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin and stdout",
		Long: `Serve speaks the Model Context Protocol over stdio so MCP clients can load,
inspect and grade answer sheets. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(a.settings, a.log)
			return srv.Run(cmd.Context())
		},
	}
}
