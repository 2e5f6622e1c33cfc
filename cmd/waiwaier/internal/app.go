// Package internal holds the application entry point of the waiwaier CLI.
package internal

import (
	"context"

	"waiwaier/internal/commands"
)

// Run executes the CLI with args (without the program name).
func Run(ctx context.Context, args []string) error {
	rootCmd := commands.NewRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
