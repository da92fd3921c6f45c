package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/studiowebux/s1dash/internal/registry"
)

// ActivityOptions select what the activity command prints
type ActivityOptions struct {
	Limit int  // Newest entries to print, 0 for all
	Stats bool // Aggregate per operation instead of listing entries
	Clear bool // Delete the selected entries
}

// Activity prints the local activity log, for every endpoint when ref is
// empty or for the endpoint of the named connection
func (a *App) Activity(ref string, opts ActivityOptions) error {
	if a.ActivityLog == nil {
		return errors.New("activity log is unavailable")
	}

	endpoint := ""
	if ref != "" {
		conn, ok := a.Registry.Find(ref)
		if !ok {
			return fmt.Errorf("%w: %s", registry.ErrConnectionNotFound, ref)
		}
		endpoint = conn.Endpoint()
	}

	switch {
	case opts.Clear:
		n, err := a.ActivityLog.Clear(endpoint)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Cleared %d entries\n", n)
		return nil
	case opts.Stats:
		return a.printStats(endpoint)
	}

	entries, err := a.ActivityLog.Recent(endpoint, opts.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.Out, "No activity recorded")
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("TIME", "ENDPOINT", "OP", "KEY", "SIZE", "MS", "ERROR")
	for _, e := range entries {
		t.Row(
			e.Timestamp.Format(time.DateTime),
			e.Endpoint,
			string(e.Op),
			e.Key,
			strconv.FormatInt(e.Size, 10),
			strconv.FormatInt(e.DurationMs, 10),
			e.Error,
		)
	}
	_, err = fmt.Fprintln(a.Out, t.Render())
	return err
}

func (a *App) printStats(endpoint string) error {
	stats, err := a.ActivityLog.Stats(endpoint)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintln(a.Out, "No activity recorded")
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ENDPOINT", "OP", "CALLS", "ERRORS", "AVG MS", "MIN MS", "MAX MS", "BYTES", "LAST")
	for _, s := range stats {
		t.Row(
			s.Endpoint,
			string(s.Op),
			strconv.Itoa(s.TotalCalls),
			strconv.Itoa(s.ErrorCount),
			fmt.Sprintf("%.1f", s.AvgDurationMs),
			strconv.FormatInt(s.MinDurationMs, 10),
			strconv.FormatInt(s.MaxDurationMs, 10),
			strconv.FormatInt(s.TotalSize, 10),
			s.LastCalled.Format(time.DateTime),
		)
	}
	_, err = fmt.Fprintln(a.Out, t.Render())
	return err
}
