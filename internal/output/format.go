// Package output provides formatters for CLI output.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"todoctl/internal/todo"
)

const (
	// DaySeparator frames each day section.
	DaySeparator = "------------"

	// EmptyMessage is printed when a listing has no items.
	EmptyMessage = "no todo items"
)

// FormatDayHeader prints a day section header.
func FormatDayHeader(w io.Writer, key string) {
	fmt.Fprintln(w, DaySeparator)
	fmt.Fprintln(w, key)
	fmt.Fprintln(w, DaySeparator)
}

// FormatItem prints one item line.
// Format: "{ID:>6}  [x]  {WHEN:<7}  {SUMMARY}\n"
func FormatItem(w io.Writer, it todo.Item) {
	mark := " "
	if it.IsDone {
		mark = "x"
	}
	fmt.Fprintf(w, "%6d  [%s]  %-7s  %s\n", it.ID, mark, when(it), normalizeSummary(it.Summary()))
}

// FormatDayGroups prints every day section in order.
func FormatDayGroups(w io.Writer, groups []todo.DayGroup) {
	for _, g := range groups {
		FormatDayHeader(w, g.Key)
		for _, it := range g.Value {
			FormatItem(w, it)
		}
	}
}

// FormatJSON pretty-prints a raw JSON body. Bodies that aren't JSON are written as-is.
func FormatJSON(w io.Writer, body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		w.Write(body)
		if len(body) > 0 && body[len(body)-1] != '\n' {
			fmt.Fprintln(w)
		}
		return
	}
	buf.WriteByte('\n')
	w.Write(buf.Bytes())
}

func when(it todo.Item) string {
	if it.IsAllDay {
		return "all-day"
	}
	start, ok := it.Start()
	if !ok {
		return "--:--"
	}
	return start.Format("15:04")
}

// normalizeSummary makes a summary fit on one line.
// Empty summaries become "(untitled)".
func normalizeSummary(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" {
		return "(untitled)"
	}
	return s
}
