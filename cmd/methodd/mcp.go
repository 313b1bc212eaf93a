package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/interpretivelabs/methodd/internal/config"
	"github.com/interpretivelabs/methodd/internal/logging"
	"github.com/interpretivelabs/methodd/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Serve the methodology engine over the Model Context Protocol on
stdio, for use by an AI assistant during analysis sessions. Logs go to
stderr; stdout carries the protocol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		// An MCP session wants structured logs on stderr.
		format := "json"
		if logFormat != "" {
			format = logFormat
		}
		logger, err := logging.New(level, format)
		if err != nil {
			return err
		}
		defer func() { _ = logging.Sync(logger) }()

		srv, err := mcp.NewServer(&mcp.ServerConfig{
			Name:    "methodd",
			Version: version,
			Logger:  logger,
		}, cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}
