package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/dbus"
)

var closeCmd = &cobra.Command{
	Use:   "close <id>...",
	Short: "Dismiss toasts by id",
	Long: `Dismiss one or more toasts by id. Unknown ids are ignored.

Examples:
  toast close 3
  toast list --format ids | xargs toast close`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClose,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Dismiss every toast",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(clearCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		for _, id := range ids {
			if err := client.CloseNotification(ctx, id); err != nil {
				return err
			}
			logger.Debug("toast closed", "id", id)
		}
		return nil
	})
}

func runClear(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		n, err := client.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %d toast(s)\n", n)
		return nil
	})
}

// parseIDs parses positional toast ids. Zero is never a valid id.
func parseIDs(args []string) ([]uint32, error) {
	ids := make([]uint32, 0, len(args))
	for _, arg := range args {
		n, err := strconv.ParseUint(arg, 10, 32)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid toast id %q", arg)
		}
		ids = append(ids, uint32(n))
	}
	return ids, nil
}
