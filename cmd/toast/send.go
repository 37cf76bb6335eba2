package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/adapter/input"
	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/dbus"
	"github.com/jmylchreest/toastd/internal/model"
)

type sendOptions struct {
	heading   string
	icon      string
	position  string
	ttl       string
	permanent bool
	closable  bool
	replaces  uint32
	appName   string
	stdin     bool

	// Set when the flag was given explicitly
	closableSet bool
}

var sendOpts sendOptions

var sendCmd = &cobra.Command{
	Use:   "send [body...]",
	Short: "Pop a toast",
	Long: `Pop a toast on the running toastd and print its id.

Unset options fall back to the [defaults] section of the config file.
The body may contain markup; it is shown as given.

Examples:
  # Plain toast in the default corner
  toast send "Build finished"

  # Headed error toast that stays until closed
  toast send --icon error --heading "Deploy" --permanent "Rollout failed"

  # Replace toast 7 with new content
  toast send --replaces 7 "Still working..."

  # Pop one toast per JSON line on stdin
  echo '{"body":"hi","icon":"info"}' | toast send --stdin`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.heading, "heading", "H", "",
		"Heading shown above the body")
	sendCmd.Flags().StringVarP(&sendOpts.icon, "icon", "i", "",
		"Icon (success, warning, error, info)")
	sendCmd.Flags().StringVarP(&sendOpts.position, "position", "p", "",
		"Corner (top-left, top-right, bottom-left, bottom-right)")
	sendCmd.Flags().StringVarP(&sendOpts.ttl, "ttl", "t", "",
		"Hide after this long (e.g. 6s, 1500 for milliseconds)")
	sendCmd.Flags().BoolVarP(&sendOpts.permanent, "permanent", "P", false,
		"Stay until closed")
	sendCmd.Flags().BoolVar(&sendOpts.closable, "closable", true,
		"Show a close button")
	sendCmd.Flags().Uint32VarP(&sendOpts.replaces, "replaces", "r", 0,
		"Id of a toast to replace")
	sendCmd.Flags().StringVar(&sendOpts.appName, "app-name", "toast",
		"Application name sent to the daemon")
	sendCmd.Flags().BoolVar(&sendOpts.stdin, "stdin", false,
		"Read toasts from stdin as a JSON array or JSON lines")
}

func runSend(cmd *cobra.Command, args []string) error {
	sendOpts.closableSet = cmd.Flags().Changed("closable")
	defaults := getConfig().Defaults

	var contents []model.Content
	if sendOpts.stdin {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		imported, err := input.NewStdinAdapter(defaults).Import(ctx)
		cancel()
		if err != nil {
			return err
		}
		contents = imported
	} else {
		if len(args) == 0 {
			return fmt.Errorf("a body is required unless --stdin is set")
		}
		c, err := buildContent(defaults, strings.Join(args, " "), sendOpts)
		if err != nil {
			return err
		}
		contents = append(contents, c)
	}

	return withClient(func(ctx context.Context, client *dbus.Client) error {
		replaces := sendOpts.replaces
		for _, c := range contents {
			id, err := client.Send(ctx, sendOpts.appName, replaces, c)
			if err != nil {
				return err
			}
			// Only the first toast replaces
			replaces = 0
			logger.Debug("toast sent", "id", id, "heading", c.Heading)
			fmt.Fprintln(os.Stdout, id)
		}
		return nil
	})
}

// buildContent applies the command line options on top of defaults.
func buildContent(defaults config.DefaultsConfig, body string, opts sendOptions) (model.Content, error) {
	icon, err := model.ParseIcon(opts.icon)
	if err != nil {
		return model.Content{}, err
	}
	c := defaults.Content(body, opts.heading, icon)

	if opts.position != "" {
		p, err := model.ParsePosition(opts.position)
		if err != nil {
			return model.Content{}, err
		}
		c.Position = p
	}
	if opts.closableSet {
		c.Closable = opts.closable
	}

	switch {
	case opts.permanent && opts.ttl != "":
		return model.Content{}, fmt.Errorf("--permanent and --ttl are mutually exclusive")
	case opts.permanent:
		c = c.Permanent()
	case opts.ttl != "":
		var d config.Duration
		if err := d.UnmarshalText([]byte(opts.ttl)); err != nil {
			return model.Content{}, err
		}
		if d < 0 {
			return model.Content{}, fmt.Errorf("--ttl must not be negative")
		}
		c = c.WithHideAfter(d.Duration())
	}
	return c, nil
}
