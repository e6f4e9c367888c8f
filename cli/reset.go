package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the vector collection",
	Long:  `Deletes every stored food point by dropping the collection and recreating it empty.`,
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	resp, err := httpClient().Post(serverURL+"/api/admin/reset", "application/json", nil)
	if err != nil {
		return fmt.Errorf("reset request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reset failed (%s): %s", resp.Status, body)
	}

	var result struct {
		Message    string `json:"Message"`
		Collection string `json:"Collection"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Printf("%s (collection %q)\n", result.Message, result.Collection)
	return nil
}
