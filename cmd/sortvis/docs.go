package main

import (
	"github.com/aretw0/sortvis/internal/cli"
	"github.com/aretw0/sortvis/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:       "docs <algorithm>",
	Short:     "Show how an algorithm works",
	Long:      `Prints complexity, trade-offs and a walkthrough of one algorithm, rendered for the terminal.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bubble", "insertion", "selection", "merge", "quick"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetBool("raw")
		width, _ := tui.TerminalSize()

		return cli.ShowDocs(cmd.Context(), cmd.OutOrStdout(), cli.DocsOptions{
			Algorithm: args[0],
			DocsDir:   cfg.DocsDir,
			Raw:       raw,
			Width:     width,
		})
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.Flags().String("docs-dir", "", "Directory of markdown documentation overrides")
	docsCmd.Flags().Bool("raw", false, "Print the markdown source")
}
