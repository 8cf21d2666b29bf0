package main

import (
	"github.com/HuaTug/LLM/mcp"
	"github.com/HuaTug/LLM/messages"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func mcpServerCmd(a *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve get_latest_messages over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, stopMetrics, err := a.serveMetrics(metricsAddr)
			if err != nil {
				return err
			}
			defer stopMetrics()

			retriever := messages.NewDemoRetriever(messages.WithLogger(a.log))
			a.log.Infow("mcp server starting", "transport", "stdio", "sources", retriever.Sources())
			return server.ServeStdio(mcp.NewMessagesServer(retriever, a.log))
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", metricsAddrUsage)
	return cmd
}
