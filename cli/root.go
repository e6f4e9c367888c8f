// Package cli implements the foodvisionctl admin commands, thin HTTP calls
// against a running foodvision server.
package cli

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "foodvisionctl",
	Short: "Admin CLI for a running foodvision server",
	Long: `foodvisionctl talks to a running foodvision server over HTTP.

Example usage:
  foodvisionctl status                 # Server health and detection summary
  foodvisionctl reset                  # Drop and recreate the vector collection`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "base URL of the foodvision server")
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
