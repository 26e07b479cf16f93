package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/sortvis"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sortvis",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sortvis version %s\n", strings.TrimSpace(sortvis.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
