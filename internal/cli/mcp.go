package cli

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/clausecheck/internal/mcpserver"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve review tools to an MCP client over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.log.Info("mcp server starting", "version", mcpserver.Version)
			return mcpserver.NewHandler(a.reviewer(nil), a.log).Run(cmd.Context())
		},
	}
}
