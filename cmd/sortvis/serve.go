package main

import (
	"context"

	"github.com/aretw0/sortvis/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the session API over HTTP: create sessions, drive them with start, pause,
resume and reset, and stream their frames as server-sent events.

With --redis (or redis.enabled in the config) frames travel over Redis pub/sub and
session controls are serialized by a Redis lock, so several replicas can share sessions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := cli.CreateLogger(cfg.Log.Level, false)
		if err != nil {
			return err
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.Serve(sigCtx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addSessionFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default :8080)")
	serveCmd.Flags().String("redis", "", "Redis address; enables the Redis frame bus and session locks")
	serveCmd.Flags().String("docs-dir", "", "Directory of markdown documentation overrides")
}
