package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/HuaTug/LLM/config"
	"github.com/HuaTug/LLM/logger"
	"github.com/spf13/cobra"
)

var (
	configFile string
	envFile    string
	logLevel   string
)

// app carries what every subcommand needs.
type app struct {
	cfg *config.Config
	log logger.Logger
	in  io.Reader
	out io.Writer
}

func main() {
	a := &app{in: os.Stdin, out: os.Stdout}

	rootCmd := &cobra.Command{
		Use:   "llm",
		Short: "Chat, memory and latest-messages RAG demos",
		Long: "llm runs conversational demos on OpenAI, Azure OpenAI or Ollama models: " +
			"a terminal chat, a persona chat with summary memory, a question answering " +
			"system over the latest messages, a web UI and an MCP server.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", os.Getenv("CONFIG_FILE"), "path to config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		chatCmd(a),
		advancedChatCmd(a),
		ragCmd(a),
		messagesCmd(a),
		webCmd(a),
		mcpServerCmd(a),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) init() error {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}

	cfg, err := config.Load(configFile, envFiles...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	return nil
}

// signalContext is cancelled on Ctrl-C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
