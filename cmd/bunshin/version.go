package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bunshin %s\ngocv %s\nopencv %s\n", Version, gocv.Version(), gocv.OpenCVVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
