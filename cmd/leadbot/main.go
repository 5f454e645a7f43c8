package main

import (
	"fmt"
	"os"

	"github.com/linsalefe/pos-plataform/internal/cli"
	"github.com/linsalefe/pos-plataform/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "leadbot",
		Short: "Leadbot CLI - manage the lead assistant over its API",
		Long: `Leadbot CLI talks to a running leadbotd.

Environment variables:
  LEADBOT_API_TOKEN   Bearer token for the API
  LEADBOT_API_URL     API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-token", "", "API token (overrides env)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.ConfigCmd())
	rootCmd.AddCommand(client.DocsCmd())
	rootCmd.AddCommand(client.ChatCmd())
	rootCmd.AddCommand(client.ContactCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
