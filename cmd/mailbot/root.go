package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mailbot",
	Short: "mailbot classifies incoming mail and answers it with vector-grounded replies",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Local development keys live in .env; absence is fine.
		_ = godotenv.Load()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
