package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"emotionagg/internal/emotion"
	"emotionagg/internal/grid"
)

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func printVector(out io.Writer, vocab emotion.Vocabulary, vec emotion.Vector) {
	for _, label := range vocab.Labels {
		fmt.Fprintf(out, "  %-13s %s\n", label+":", formatScore(vec[label]))
	}
}

// printGrid writes one row per slot. Slots with no signal are skipped unless
// all is set.
func printGrid(out io.Writer, g grid.DayGrid, all bool) {
	header := append([]string{"time "}, g.Vocabulary.Labels...)
	fmt.Fprintln(out, strings.Join(header, "\t"))
	for _, entry := range g.Entries {
		if !all && entry.Scores.Total() == 0 {
			continue
		}
		row := make([]string, 0, len(entry.Labels)+1)
		row = append(row, entry.Time)
		for _, label := range entry.Labels {
			row = append(row, formatScore(entry.Scores[label]))
		}
		fmt.Fprintln(out, strings.Join(row, "\t"))
	}
}
