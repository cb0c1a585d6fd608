package main

import (
	"os"

	"github.com/spf13/cobra"

	"keygate/internal/interfaces/cli/migrate"
	"keygate/internal/interfaces/cli/server"
	"keygate/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "keygate",
		Short: "Keygate - access key and session management service",
		Long:  `Keygate sells timed access keys, gates model usage per plan, and enforces single-session key use.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		worker.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
