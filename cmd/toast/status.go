package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/dbus"
	"github.com/jmylchreest/toastd/internal/model"
)

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text       string `json:"text"`
	Alt        string `json:"alt,omitempty"`
	Tooltip    string `json:"tooltip,omitempty"`
	Class      string `json:"class,omitempty"`
	Percentage int    `json:"percentage,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output the live toast count in Waybar's custom module JSON format.

This is designed to be used with Waybar's custom module:

  "custom/toasts": {
    "exec": "toast status",
    "interval": 2,
    "return-type": "json",
    "on-click": "toast clear"
  }

The class is the most severe icon among live toasts (error, warning,
normal), "empty" when there are none, and "error" when the daemon
cannot be reached.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	var records []model.Record
	err := withClient(func(ctx context.Context, client *dbus.Client) error {
		var err error
		records, err = client.List(ctx)
		return err
	})
	if err != nil {
		logger.Debug("status unavailable", "error", err)
		return outputStatus(WaybarStatus{Text: "", Alt: "error", Class: "error"})
	}
	return outputStatus(generateStatus(records))
}

// generateStatus summarises live toasts for a status bar.
func generateStatus(records []model.Record) WaybarStatus {
	if len(records) == 0 {
		return WaybarStatus{
			Text:  "",
			Alt:   "empty",
			Class: "empty",
		}
	}

	class := "normal"
	for _, r := range records {
		switch r.Content.Icon {
		case model.IconError:
			class = "error"
		case model.IconWarning:
			if class != "error" {
				class = "warning"
			}
		}
	}

	return WaybarStatus{
		Text:       fmt.Sprintf("%d", len(records)),
		Alt:        class,
		Tooltip:    buildTooltip(records),
		Class:      class,
		Percentage: min(len(records), 100),
	}
}

// buildTooltip lists how many toasts sit in each corner.
func buildTooltip(records []model.Record) string {
	counts := make(map[model.Position]int)
	for _, r := range records {
		counts[r.Content.Position]++
	}

	lines := []string{fmt.Sprintf("%d live", len(records))}
	for _, p := range model.Positions() {
		if n := counts[p]; n > 0 {
			lines = append(lines, fmt.Sprintf("%s: %d", p, n))
		}
	}
	return strings.Join(lines, "\n")
}

// outputStatus writes the status as JSON.
func outputStatus(status WaybarStatus) error {
	encoder := json.NewEncoder(os.Stdout)
	return encoder.Encode(status)
}
