package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/dbus"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print toasts as they close",
	Long: `Print one line per NotificationClosed signal until interrupted:

  <id> <reason>

where reason is expired, dismissed or closed.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	err = client.WatchClosed(ctx, func(sig dbus.ClosedSignal) {
		fmt.Fprintf(os.Stdout, "%d %s\n", sig.ID, sig.Reason)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
