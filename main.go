package main

import (
	"os"

	"github.com/grovetools/core/cli"

	"github.com/finvault/chief/cmd"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"chief",
		"Conversational financial chief of staff",
	)

	rootCmd.AddCommand(cmd.GetChatCommand())
	rootCmd.AddCommand(cmd.GetActionsCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
