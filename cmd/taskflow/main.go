package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "taskflow",
		Short: "TaskFlow - focus timer and task prioritization",
		Long: `TaskFlow manages tasks, focus sessions, and team workspaces.
It serves the HTTP API, runs the interactive focus timer, and computes
prioritization and daily-review scores from stored tasks.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	// .env values become environment overrides; a missing file is fine
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
