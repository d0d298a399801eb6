package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"replcast/internal/animate"
	"replcast/internal/cast"
	"replcast/internal/repl"
)

func newRenderCmd() *cobra.Command {
	var (
		speed         float64
		keypressSpeed float64
		seed          int64
		width         int
		height        int
		title         string
		output        string
		profilePath   string
		endHold       float64
		mergeInput    bool
	)

	cmd := &cobra.Command{
		Use:   "render <script>",
		Short: "Run a Lua script through a simulated interactive session and record it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPositive("speed", speed); err != nil {
				return err
			}
			if err := checkPositive("keypress-speed", keypressSpeed); err != nil {
				return err
			}

			profile, err := loadTimingProfile(profilePath)
			if err != nil {
				return err
			}

			scriptPath := args[0]
			script, err := os.Open(scriptPath)
			if err != nil {
				return fmt.Errorf("open script: %w", err)
			}
			defer script.Close() //nolint:errcheck

			records, err := repl.Run(repl.NewLuaRepl(), script)
			if err != nil {
				return err
			}

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			builder, err := animate.NewBuilder(animate.Options{
				Seed:          seed,
				Profile:       &profile,
				Speed:         speed,
				KeypressSpeed: keypressSpeed,
				EndHold:       endHold,
			})
			if err != nil {
				return err
			}

			if output == "" {
				output = defaultOutputPath(scriptPath)
			}
			if title == "" {
				title = defaultTitle(scriptPath, time.Now())
			}

			sink, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create recording: %w", err)
			}

			writer := cast.NewWriter(sink)
			renderErr := func() error {
				if err := writer.WriteHeader(cast.Header{
					Version:   2,
					Width:     width,
					Height:    height,
					Timestamp: time.Now().Unix(),
					Title:     title,
				}); err != nil {
					return err
				}
				return builder.Render(records, func(e cast.Event) error {
					if mergeInput && e.Kind == cast.Keystroke {
						e.Kind = cast.Output
					}
					return writer.WriteEvent(e)
				})
			}()

			// Flush and close on every exit path; a truncated file is the
			// caller's to discard.
			if err := writer.Flush(); err != nil && renderErr == nil {
				renderErr = err
			}
			if err := sink.Close(); err != nil && renderErr == nil {
				renderErr = fmt.Errorf("close recording: %w", err)
			}
			if renderErr != nil {
				return renderErr
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output) //nolint:errcheck
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&speed, "speed", 1.0, "multiply all delays between events by this factor")
	flags.Float64Var(&keypressSpeed, "keypress-speed", 1.0, "multiply keystroke delays by this factor")
	flags.Int64Var(&seed, "seed", 0, "random seed for reproducible timings (0 picks one from the clock)")
	flags.IntVar(&width, "width", 80, "terminal width recorded in the header")
	flags.IntVar(&height, "height", 35, "terminal height recorded in the header")
	flags.StringVar(&title, "title", "", "recording title (default derived from the script name)")
	flags.StringVarP(&output, "out", "o", "", "recording path (default: script name with .cast extension)")
	flags.StringVar(&profilePath, "profile", "", "YAML timing profile (env: REPLCAST_PROFILE)")
	flags.Float64Var(&endHold, "end-hold", 5.0, "seconds to hold the final frame")
	flags.BoolVar(&mergeInput, "merge-input", false, "emit keystrokes as output events for players that skip input events")

	return cmd
}
