package main

import (
	"fmt"
	"os"

	"github.com/aretw0/stile/internal/cli"
	"github.com/aretw0/stile/internal/config"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the wizard interactively in the terminal",
	Long:  `Starts the flow in interactive mode, with answers persisted so an interrupted session resumes where it left off.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			dir = args[0]
		}

		cfg, err := config.Load(dir)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		flow, _ := cmd.Flags().GetString("flow")
		if !cmd.Flags().Changed("flow") && cfg.Flow != "" {
			flow = cfg.Flow
		}
		backendURL, _ := cmd.Flags().GetString("backend")
		if backendURL == "" {
			backendURL = cfg.Backend
		}
		redisURL, _ := cmd.Flags().GetString("redis")
		if redisURL == "" {
			redisURL = cfg.Redis
		}

		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		watch, _ := cmd.Flags().GetBool("watch")
		debug, _ := cmd.Flags().GetBool("debug")

		opts := cli.RunOptions{
			FlowPath:   dir,
			Flow:       flow,
			SessionID:  sessionID,
			Fresh:      fresh,
			Watch:      watch,
			Debug:      debug,
			BackendURL: backendURL,
			RedisURL:   redisURL,
			StorePath:  cfg.Store,
		}

		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("session", "", "Session ID to create or resume")
	runCmd.Flags().Bool("fresh", false, "Discard any saved progress before starting")
	runCmd.Flags().BoolP("watch", "w", false, "Run in development mode with hot-reload")
	runCmd.Flags().Bool("debug", false, "Enable debug logging to stderr")
	runCmd.Flags().String("backend", "", "Base URL of the signup backend (checks and submission)")
	runCmd.Flags().String("redis", "", "Redis URL for session persistence (default: local files)")

	rootCmd.Run = runCmd.Run
}
