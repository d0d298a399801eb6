package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"replcast/internal/cast"
)

func newRetimeCmd() *cobra.Command {
	var (
		speed    float64
		maxPause float64
		output   string
	)

	cmd := &cobra.Command{
		Use:   "retime <recording>",
		Short: "Rescale delays or cap pauses in an existing recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPositive("speed", speed); err != nil {
				return err
			}
			if err := checkPositive("max-pause", maxPause); err != nil {
				return err
			}
			if output == "" {
				return fmt.Errorf("--out is required")
			}

			source, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open recording: %w", err)
			}
			defer source.Close() //nolint:errcheck

			header, events, err := cast.ReadAll(source)
			if err != nil {
				return err
			}

			relative := cast.WithRelativeTime(events)
			if speed != 1.0 {
				relative = cast.ScaleDurations(relative, speed)
			}
			if maxPause > 0 {
				relative = cast.CapDurations(relative, maxPause)
			}
			header.Duration = cast.Duration(relative)
			events = cast.WithAbsoluteTime(relative)

			sink, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create recording: %w", err)
			}

			writer := cast.NewWriter(sink)
			writeErr := func() error {
				if err := writer.WriteHeader(header); err != nil {
					return err
				}
				for _, e := range events {
					if err := writer.WriteEvent(e); err != nil {
						return err
					}
				}
				return nil
			}()

			if err := writer.Flush(); err != nil && writeErr == nil {
				writeErr = err
			}
			if err := sink.Close(); err != nil && writeErr == nil {
				writeErr = fmt.Errorf("close recording: %w", err)
			}
			return writeErr
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&speed, "speed", 1.0, "multiply all delays by this factor (0 collapses to instantaneous)")
	flags.Float64Var(&maxPause, "max-pause", 0, "cap each inter-event pause at this many seconds (0 disables)")
	flags.StringVarP(&output, "out", "o", "", "path for the retimed recording")

	return cmd
}
