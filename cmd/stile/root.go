package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stile",
	Short: "Stile is a multi-step wizard engine",
	Long:  `Stile drives multi-step signup and intake wizards declared as simple Markdown flows.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the flow catalogs")
	rootCmd.PersistentFlags().String("flow", "signup", "Flow to serve or run")
}
