package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"horch/state"
)

// runPlainRenderer is the minimal fallback for terminals the dashboard
// cannot use (no TTY, -tui=false, or a failed Bubble Tea start). It prints
// new execution records as they appear plus a counter summary whenever
// something changed, and one final summary on shutdown.
func runPlainRenderer(ctx context.Context, store *state.Store) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var seen uint64
	var lastCounts string
	for {
		select {
		case <-ctx.Done():
			printSummary(store.Snapshot())
			return
		case <-ticker.C:
			snap := store.Snapshot()
			// Log is a tail; ExecTotal tells how many are truly new.
			fresh := snap.ExecTotal - seen
			if fresh > uint64(len(snap.Log)) {
				fresh = uint64(len(snap.Log))
			}
			for _, rec := range snap.Log[uint64(len(snap.Log))-fresh:] {
				fmt.Printf("%s %s %s %s\n",
					rec.At.Format("15:04:05"), rec.Keyword, rec.Status, firstLine(rec.Snippet))
			}
			seen = snap.ExecTotal
			if counts := formatCounts(snap); counts != lastCounts {
				lastCounts = counts
				fmt.Println(counts)
			}
		}
	}
}

func formatCounts(snap state.Snapshot) string {
	parts := make([]string, 0, len(snap.Keywords))
	for _, kw := range snap.Keywords {
		mark := " "
		if kw.Highlighted {
			mark = "*"
		}
		parts = append(parts, fmt.Sprintf("%s%s=%d", mark, kw.Keyword, kw.Count))
	}
	line := "counts: " + strings.Join(parts, " ")
	if snap.DroppedFrames > 0 {
		line += fmt.Sprintf(" (dropped frames: %d)", snap.DroppedFrames)
	}
	return line
}

func printSummary(snap state.Snapshot) {
	fmt.Println(formatCounts(snap))
	fmt.Printf("executions logged: %d\n", snap.ExecTotal)
}
