package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskforge/api/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskforge",
		Short: "TaskForge API Server",
		Long:  `TaskForge is a multi-tenant task tracking backend with cursor-paginated listings, full-text search and time tracking.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
