package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/adapter/input"
	"github.com/jmylchreest/toastd/internal/tui"
)

var demoOpts struct {
	stdin     bool
	clipboard string
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Launch the interactive toast playground",
	Long: `Launch a terminal playground with its own toast manager.
No daemon is needed.

Key bindings:
  1-5, n/s/w/i/e   Pop simple/success/warning/info/error toast
  t                Pop a top-right toast
  p                Cycle the target corner
  P                Toggle sticky (permanent) toasts
  x, backspace     Dismiss newest
  X                Dismiss oldest
  c                Clear all
  y                Copy live toasts as YAML
  ?                Show help
  q                Quit`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().BoolVar(&demoOpts.stdin, "stdin", false,
		"Seed toasts from stdin as a JSON array or JSON lines")
	demoCmd.Flags().StringVar(&demoOpts.clipboard, "clipboard", "",
		"Clipboard command for copying (auto-detects if empty)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := getConfig()

	var adapter input.InputAdapter
	if demoOpts.stdin {
		adapter = input.NewStdinAdapter(c.Defaults)
	}

	return tui.Run(ctx, tui.RunOptions{
		Config:           c,
		Adapter:          adapter,
		ClipboardCommand: demoOpts.clipboard,
		Logger:           logger,
	})
}
