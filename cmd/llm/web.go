package main

import (
	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/metrics"
	"github.com/HuaTug/LLM/web"
	"github.com/spf13/cobra"
)

func webCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the browser chat UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.validate(); err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			ctx, cancel := signalContext()
			defer cancel()

			breakerCfg := llms.DefaultBreakerConfig("chat")
			breakerCfg.OnStateChange = metrics.SetCircuitBreakerState
			llm := llms.NewBreakerLLM(a.chatModel(), breakerCfg)

			mem, closeMem, err := a.newMemory(ctx, llm)
			if err != nil {
				return err
			}
			defer closeMem()

			model := a.cfg.ChatModel()
			info := web.Info{Provider: model.Provider, Endpoint: model.BaseURL, Deployment: model.Model}
			if model.Provider == llms.ProviderAzure {
				info.APIVersion = model.APIVersion
			}
			srv, err := web.NewServer(web.Config{LLM: llm, Memory: mem, Info: info, Logger: a.log})
			if err != nil {
				return err
			}
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}
