package main

import (
	"fmt"
	"os"

	"github.com/aretw0/sortvis/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sortvis",
	Short: "sortvis animates sorting algorithms step by step",
	Long: `sortvis runs bubble, insertion, selection, merge and quick sort one primitive
at a time, drawing every comparison, swap and write as a bar chart in the terminal,
or streaming the frames over HTTP and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides the config file)")
}

// loadConfig reads --config and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Lookup("algorithm") != nil && flags.Changed("algorithm") {
		cfg.Algorithm, _ = flags.GetString("algorithm")
	}
	if flags.Lookup("size") != nil && flags.Changed("size") {
		cfg.Size, _ = flags.GetInt("size")
	}
	if flags.Lookup("speed") != nil && flags.Changed("speed") {
		cfg.Speed, _ = flags.GetInt("speed")
	}
	if flags.Lookup("seed") != nil && flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Lookup("merge-trace") != nil && flags.Changed("merge-trace") {
		cfg.MergeTrace, _ = flags.GetString("merge-trace")
	}
	if flags.Lookup("addr") != nil && flags.Changed("addr") {
		cfg.Server.Addr, _ = flags.GetString("addr")
	}
	if flags.Lookup("redis") != nil && flags.Changed("redis") {
		cfg.Redis.Addr, _ = flags.GetString("redis")
		cfg.Redis.Enabled = cfg.Redis.Addr != ""
	}
	if flags.Lookup("docs-dir") != nil && flags.Changed("docs-dir") {
		cfg.DocsDir, _ = flags.GetString("docs-dir")
	}
	return cfg, cfg.Validate()
}

// addSessionFlags registers the flags shared by commands that create sessions.
func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("algorithm", "a", "", "Sorting algorithm: bubble, insertion, selection, merge or quick")
	cmd.Flags().IntP("size", "n", 0, "Number of bars (5-100)")
	cmd.Flags().IntP("speed", "s", 0, "Animation speed (1-100)")
	cmd.Flags().Uint64("seed", 0, "Seed for reproducible arrays (0 picks a random seed)")
	cmd.Flags().String("merge-trace", "", "Merge sort write trace: full or final")
}
