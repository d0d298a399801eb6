package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"replcast/internal/cast"
	"replcast/internal/format"
)

func newInfoCmd() *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "info <recording>",
		Short: "Show recording metadata and event statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open recording: %w", err)
			}
			defer file.Close() //nolint:errcheck

			stats := format.Stats{Path: args[0]}
			header, err := cast.Read(file, func(e cast.Event) error {
				stats.Events++
				switch e.Kind {
				case cast.Keystroke:
					stats.Keystrokes++
				case cast.Output:
					stats.Outputs++
				}
				if e.Time > stats.Duration {
					stats.Duration = e.Time
				}
				return nil
			})
			if err != nil {
				return err
			}

			stats.Title = header.Title
			stats.Width = header.Width
			stats.Height = header.Height
			if header.Timestamp > 0 {
				stats.StartedAt = time.Unix(header.Timestamp, 0).UTC()
			}
			if header.Duration > stats.Duration {
				stats.Duration = header.Duration
			}

			// Fall back to plain output when piping a default table view.
			if formatFlag == "" {
				formatFlag = "table"
				if out, ok := cmd.OutOrStdout().(*os.File); ok && !isatty.IsTerminal(out.Fd()) {
					formatFlag = "plain"
				}
			}

			return format.WriteStats(cmd.OutOrStdout(), stats, formatFlag)
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "", "output format: table, plain, or json (default: table on a TTY)")

	return cmd
}
