package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server health and detection summary",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	resp, err := httpClient().Get(serverURL + "/health")
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: %s", resp.Status)
	}
	fmt.Println("server: OK")

	resp, err = httpClient().Get(serverURL + "/api/detections/summary")
	if err != nil {
		return fmt.Errorf("summary request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("summary failed (%s): %s", resp.Status, body)
	}

	var summary struct {
		TotalDetections int     `json:"total_detections"`
		Existing        int     `json:"existing"`
		New             int     `json:"new"`
		Errors          int     `json:"errors"`
		AvgLatencyMs    float64 `json:"avg_latency_ms"`
	}
	if err := json.Unmarshal(body, &summary); err != nil {
		return fmt.Errorf("decode summary: %w", err)
	}

	fmt.Printf("detections: %d total (%d existing, %d new, %d errors), avg latency %.0fms\n",
		summary.TotalDetections, summary.Existing, summary.New, summary.Errors, summary.AvgLatencyMs)
	return nil
}
