package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/adapter/output"
	"github.com/jmylchreest/toastd/internal/core"
	"github.com/jmylchreest/toastd/internal/dbus"
	"github.com/jmylchreest/toastd/internal/model"
)

var getOpts struct {
	field  string
	format string
	index  bool
}

var getCmd = &cobra.Command{
	Use:   "get <id|token>",
	Short: "Show one live toast",
	Long: `Show a single live toast by id or token.

With --index the argument is a 1-based position in 'toast list' order.

Examples:
  # Body of toast 3
  toast get 3 --field body

  # Newest toast as JSON
  toast get --index "$(toast list --format ids | wc -l)" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVar(&getOpts.field, "field", "",
		"Output a single field (id, token, heading, body, icon, position, all)")
	getCmd.Flags().StringVarP(&getOpts.format, "format", "f", string(output.FormatPlain),
		"Output format when --field is not set (plain, json, yaml)")
	getCmd.Flags().BoolVar(&getOpts.index, "index", false,
		"Treat the argument as a 1-based index")
}

func runGet(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, client *dbus.Client) error {
		records, err := client.List(ctx)
		if err != nil {
			return err
		}

		r := lookup(records, args[0], getOpts.index)
		if r == nil {
			return fmt.Errorf("no live toast %q", args[0])
		}

		if getOpts.field != "" {
			fmt.Fprintln(os.Stdout, output.FormatField(*r, getOpts.field))
			return nil
		}

		formatter, err := output.NewFormatter(output.FormatType(getOpts.format), output.DefaultFormatterOptions())
		if err != nil {
			return err
		}
		return formatter.Format(os.Stdout, []model.Record{*r})
	})
}

// lookup resolves an id, token, or index argument against records.
func lookup(records []model.Record, arg string, byIndex bool) *model.Record {
	arg = strings.TrimSpace(arg)
	n, err := strconv.ParseUint(arg, 10, 32)

	if byIndex {
		if err != nil {
			return nil
		}
		return core.LookupByIndex(records, int(n))
	}
	if err == nil {
		return core.LookupByID(records, model.ID(n))
	}
	return core.LookupByToken(records, arg)
}
