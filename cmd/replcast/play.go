package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"replcast/internal/cast"
)

func newPlayCmd() *cobra.Command {
	var (
		speed float64
		force bool
	)

	cmd := &cobra.Command{
		Use:   "play <recording>",
		Short: "Replay a recording in the current terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if speed <= 0 {
				return fmt.Errorf("--speed must be positive")
			}

			out := os.Stdout
			onTerminal := isatty.IsTerminal(out.Fd())
			if !force && !onTerminal {
				return errNotATerminal
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open recording: %w", err)
			}
			defer file.Close() //nolint:errcheck

			header, events, err := cast.ReadAll(file)
			if err != nil {
				return err
			}

			if onTerminal {
				warnGeometry(cmd, header, out)
			}

			clock := 0.0
			for _, e := range events {
				if delay := e.Time - clock; delay > 0 {
					time.Sleep(time.Duration(delay / speed * float64(time.Second)))
				}
				clock = e.Time
				if _, err := out.WriteString(e.Data); err != nil {
					return fmt.Errorf("write playback: %w", err)
				}
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&speed, "speed", 1.0, "playback speed factor")
	flags.BoolVar(&force, "force", false, "replay even when stdout is not a terminal")

	return cmd
}

// warnGeometry compares the live terminal size with the recording header
// and warns when the recording would not fit. Best effort; a mismatch only
// garbles layout.
func warnGeometry(cmd *cobra.Command, header cast.Header, out *os.File) {
	cols, rows, err := term.GetSize(int(out.Fd()))
	if err != nil {
		return
	}
	if header.Width > cols || header.Height > rows {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: recording is %dx%d but terminal is %dx%d\n",
			header.Width, header.Height, cols, rows) //nolint:errcheck
	}
}
