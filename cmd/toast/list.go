package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/adapter/output"
	"github.com/jmylchreest/toastd/internal/core"
	"github.com/jmylchreest/toastd/internal/dbus"
	"github.com/jmylchreest/toastd/internal/model"
)

var listOpts struct {
	// Filter options
	filter   string
	search   string
	position string
	icon     string
	since    string
	limit    int

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format   string
	template string
	noTime   bool
	maxBody  int
	newlines bool
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List live toasts",
	Long: `List the toasts the daemon is showing, oldest first.

Examples:
  # Human readable
  toast list

  # Machine readable
  toast list --format json

  # Error toasts in the top right, soonest to expire first
  toast list --icon error --position top-right --sort expires

  # Filter expression
  toast list --filter 'heading~deploy,permanent=false'

  # Custom line per toast
  toast list --template '{{.ID}} {{.Content.Heading}} {{.Lifetime}}'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	// Filter flags
	listCmd.Flags().StringVar(&listOpts.filter, "filter", "",
		"Filter expression (e.g. 'icon=error,left<5s')")
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Search in heading and body")
	listCmd.Flags().StringVarP(&listOpts.position, "position", "p", "",
		"Only toasts in this corner")
	listCmd.Flags().StringVarP(&listOpts.icon, "icon", "i", "",
		"Only toasts with this icon (none, success, warning, error, info)")
	listCmd.Flags().StringVar(&listOpts.since, "since", "",
		"Only toasts popped within this duration (e.g. 30s, 5m)")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of toasts to show (0=unlimited)")

	// Sort flags
	listCmd.Flags().StringVar(&listOpts.sortBy, "sort", string(core.SortByCreated),
		"Sort by field (created, expires, position, icon)")
	listCmd.Flags().StringVar(&listOpts.sortOrder, "order", string(core.SortAsc),
		"Sort order (asc, desc)")

	// Output flags
	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", string(output.FormatPlain),
		"Output format (plain, json, yaml, ids)")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Custom Go template for plain output")
	listCmd.Flags().BoolVar(&listOpts.noTime, "no-time", false,
		"Hide remaining lifetime in plain output")
	listCmd.Flags().IntVar(&listOpts.maxBody, "max-body", 80,
		"Truncate bodies to this many characters (0=unlimited)")
	listCmd.Flags().BoolVar(&listOpts.newlines, "newlines", false,
		"Keep newlines in bodies")
}

func runList(cmd *cobra.Command, args []string) error {
	opts := output.DefaultFormatterOptions()
	opts.Template = listOpts.template
	opts.ShowTime = !listOpts.noTime
	opts.BodyMaxLen = listOpts.maxBody
	opts.IncludeNewline = listOpts.newlines

	formatter, err := output.NewFormatter(output.FormatType(listOpts.format), opts)
	if err != nil {
		return err
	}

	query, err := newListQuery()
	if err != nil {
		return err
	}

	return withClient(func(ctx context.Context, client *dbus.Client) error {
		records, err := client.List(ctx)
		if err != nil {
			return err
		}
		logger.Debug("listed toasts", "count", len(records))
		return formatter.Format(os.Stdout, query.apply(records, time.Now()))
	})
}

// listQuery is the parsed filter and sort flags.
type listQuery struct {
	expr   *core.FilterExpr
	search string
	filter core.FilterOptions
	sort   core.SortOptions
}

func newListQuery() (*listQuery, error) {
	q := &listQuery{search: listOpts.search}

	expr, err := core.ParseFilter(listOpts.filter)
	if err != nil {
		return nil, err
	}
	q.expr = expr

	if listOpts.position != "" {
		p, err := model.ParsePosition(listOpts.position)
		if err != nil {
			return nil, err
		}
		q.filter.Position = &p
	}
	if listOpts.icon != "" {
		icon, err := model.ParseIcon(listOpts.icon)
		if err != nil {
			return nil, err
		}
		q.filter.Icon = &icon
	}
	if listOpts.since != "" {
		d, err := core.ParseDuration(listOpts.since)
		if err != nil {
			return nil, err
		}
		q.filter.Since = d
	}
	q.filter.Limit = listOpts.limit

	if q.sort.Field, err = core.ParseSortField(listOpts.sortBy); err != nil {
		return nil, err
	}
	if q.sort.Order, err = core.ParseSortOrder(listOpts.sortOrder); err != nil {
		return nil, err
	}
	return q, nil
}

// apply filters, then sorts, then limits.
func (q *listQuery) apply(records []model.Record, now time.Time) []model.Record {
	records = core.FilterWithExpr(records, q.expr)
	records = core.Search(records, q.search)

	limit := q.filter.Limit
	opts := q.filter
	opts.Limit = 0
	opts.Now = now
	records = core.Filter(records, opts)

	core.Sort(records, q.sort)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
