package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/folio/internal/app"
)

// rootCmd serves the dashboard when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Backend of the portfolio content dashboard",
	Long: `Folio signs the portfolio owner in against the portfolio API, serves the
dashboard listings and forms, and revalidates the pages a change makes stale.

Configuration is read from FOLIO_* environment variables.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// serveCmd starts the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	return app.New().Run()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(revalidateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("❌ folio failed: %v", err)
		os.Exit(1)
	}
}
