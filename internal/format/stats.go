// Package format renders recording statistics for the CLI.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
)

// Stats summarizes one recording for the info command.
type Stats struct {
	Path       string    `json:"path"`
	Title      string    `json:"title,omitempty"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	Events     int       `json:"events"`
	Keystrokes int       `json:"keystrokes"`
	Outputs    int       `json:"outputs"`
	Duration   float64   `json:"duration_seconds"`
}

// WriteStats writes s to w in the requested format.
func WriteStats(w io.Writer, s Stats, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeStatsTable(w, s)
	case "plain":
		return writeStatsPlain(w, s)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeStatsTable(w io.Writer, s Stats) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 80},
	})

	tw.AppendHeader(table.Row{"Field", "Value"})
	tw.AppendRow(table.Row{"Path", s.Path})
	if s.Title != "" {
		tw.AppendRow(table.Row{"Title", s.Title})
	}
	tw.AppendRow(table.Row{"Geometry", fmt.Sprintf("%dx%d", s.Width, s.Height)})
	if !s.StartedAt.IsZero() {
		tw.AppendRow(table.Row{"Started At", s.StartedAt.UTC().Format(time.RFC3339)})
	}
	tw.AppendRow(table.Row{"Duration", formatSeconds(s.Duration)})
	tw.AppendRow(table.Row{"Events", s.Events})
	tw.AppendRow(table.Row{"Keystrokes", s.Keystrokes})
	tw.AppendRow(table.Row{"Outputs", s.Outputs})

	_ = tw.Render()
	return nil
}

func writeStatsPlain(w io.Writer, s Stats) error {
	line := fmt.Sprintf(
		"%s\t%dx%d\t%s\t%d\t%d\t%d\t%s",
		s.Path,
		s.Width, s.Height,
		formatSeconds(s.Duration),
		s.Events,
		s.Keystrokes,
		s.Outputs,
		clipTitle(s.Title, 60),
	)
	_, err := fmt.Fprintln(w, line)
	return err
}

func formatSeconds(seconds float64) string {
	whole := int(seconds)
	h := whole / 3600
	m := (whole % 3600) / 60
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, seconds-float64(whole-whole%60))
}

// clipTitle trims the title to a display width, accounting for wide runes.
func clipTitle(title string, maxWidth int) string {
	if runewidth.StringWidth(title) <= maxWidth {
		return title
	}
	return runewidth.Truncate(title, maxWidth-1, "…")
}
