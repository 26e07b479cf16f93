package main

import (
	"context"

	"github.com/aretw0/sortvis"
	"github.com/aretw0/sortvis/internal/cli"
	"github.com/aretw0/sortvis/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Animate a sort in the terminal",
	Long: `Draws the array as a bar chart and animates the selected algorithm.

Keys: s start, p or space pause/resume, n new array, r reset, 1-5 algorithm,
+/- speed, </> size, q quit.

With --headless the sort runs without delays and a JSON summary is printed instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		headless, _ := cmd.Flags().GetBool("headless")
		quiet, _ := cmd.Flags().GetBool("quiet")

		logger, err := cli.CreateLogger(cfg.Log.Level, !headless)
		if err != nil {
			return err
		}

		if !headless && !quiet {
			tui.PrintBanner(cmd.OutOrStdout(), sortvis.Version)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.Execute(sigCtx, cli.RunOptions{
			Config:   cfg,
			Headless: headless,
			Logger:   logger,
			Out:      cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addSessionFlags(runCmd)
	runCmd.Flags().Bool("headless", false, "Sort without animation and print a JSON summary")
	runCmd.Flags().BoolP("quiet", "q", false, "Skip the banner")
}
