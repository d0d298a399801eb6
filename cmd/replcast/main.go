// Package main provides the replcast CLI, which turns scripted interpreter
// sessions into asciicast v2 recordings and works with the resulting files.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"replcast/internal/timing"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "replcast",
	Short:   "Turn scripted interpreter sessions into asciicast recordings",
	Version: version,
}

func init() {
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newRetimeCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newPlayCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "replcast: %v\n", err)
		os.Exit(1)
	}
}

// loadTimingProfile resolves the profile from the flag, the environment,
// or the built-in defaults, in that order.
func loadTimingProfile(flagPath string) (timing.Profile, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv("REPLCAST_PROFILE")
	}
	if path == "" {
		return timing.DefaultProfile(), nil
	}
	return timing.LoadProfile(path)
}

// defaultOutputPath derives the recording path from the script path:
// session.lua becomes session.cast in the current directory.
func defaultOutputPath(input string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	if ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".cast"
}

// defaultTitle labels recordings that were not given an explicit title.
func defaultTitle(input string, now time.Time) string {
	return fmt.Sprintf("Created by replcast on %s from %q",
		now.Format("2006-01-02 15:04:05"), filepath.Base(input))
}

func checkPositive(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("--%s must not be negative", name)
	}
	return nil
}

var errNotATerminal = errors.New("stdout is not a terminal (use --force to replay anyway)")
