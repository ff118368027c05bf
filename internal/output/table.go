package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"monthsort/internal/audit"
	"monthsort/internal/dateparser"
	"monthsort/internal/orchestrator"
	"monthsort/internal/scanner"
)

// PageSize is how many rows a table shows before the rest is offered.
const PageSize = 50

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// window clamps the row range [start, end) to n rows.
func window(n, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end <= 0 || end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return start, end
}

func caption(title string, start, end, n int) string {
	if n == 0 {
		return titleStyle.Render(title) + " (none)"
	}
	return titleStyle.Render(title) + fmt.Sprintf(" (showing rows %d to %d of %d)", start+1, end, n)
}

// FileTable renders rows [start, end) of the matched files. end <= 0 shows
// everything from start.
func FileTable(title string, records []scanner.Record, start, end int) string {
	start, end = window(len(records), start, end)
	if len(records) == 0 {
		return caption(title, 0, 0, 0)
	}
	t := newTable("Title", "Date", "Directory Path")
	for _, r := range records[start:end] {
		t.Row(r.Name, r.Date.ISO(), r.Dir)
	}
	return caption(title, start, end, len(records)) + "\n" + t.Render()
}

// OperationTable renders rows [start, end) of the planned operations.
func OperationTable(ops []orchestrator.Operation, start, end int) string {
	start, end = window(len(ops), start, end)
	if len(ops) == 0 {
		return caption("Planned operations", 0, 0, 0)
	}
	t := newTable("Original Name", "Suffix to Add", "Date", "Original Directory", "New Directory")
	for _, op := range ops[start:end] {
		t.Row(op.OriginalName, op.Suffix, op.Date, op.SourceDir, op.DestinationDir)
	}
	return caption("Planned operations", start, end, len(ops)) + "\n" + t.Render()
}

// FailureTable lists operations that ended in an error.
func FailureTable(ops []orchestrator.Operation) string {
	t := newTable("Original Name", "Original Directory", "Error")
	for _, op := range ops {
		if op.Err != nil {
			t.Row(op.OriginalName, op.SourceDir, op.Err.Error())
		}
	}
	return titleStyle.Render("Failed files") + "\n" + t.Render()
}

// SummaryText renders the end-of-run report.
func SummaryText(s *orchestrator.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Files:      %d\n", s.TotalFiles)
	fmt.Fprintf(&b, "  Suffixed:   %d\n", s.Suffixed)
	fmt.Fprintf(&b, "  Placed:     %d (%s, %s)\n", s.Placed, s.Mode, humanize.Bytes(uint64(s.Bytes)))
	if s.InPlace > 0 {
		fmt.Fprintf(&b, "  In place:   %d\n", s.InPlace)
	}
	fmt.Fprintf(&b, "  Collisions: %d\n", s.Collisions)
	fmt.Fprintf(&b, "  Errors:     %d\n", s.ErrorCount)
	if len(s.ScanErrors) > 0 {
		fmt.Fprintf(&b, "  Scan errors: %d\n", len(s.ScanErrors))
	}
	fmt.Fprintf(&b, "  Duration:   %s", s.Duration.Round(time.Millisecond))
	if s.Interrupted {
		b.WriteString("\n  Run was interrupted; remaining files were left in place.")
	}
	return b.String()
}

// FolderTable lists folders with a count, e.g. the planned files per month.
func FolderTable(title string, groups []orchestrator.FolderCount) string {
	t := newTable("Folder", "Files")
	for _, g := range groups {
		t.Row(g.Folder, strconv.Itoa(g.Count))
	}
	return titleStyle.Render(title) + "\n" + t.Render()
}

// AttemptTable shows how each pattern fared against one name.
func AttemptTable(name string, year int, attempts []dateparser.Attempt) string {
	t := newTable("Pattern", "Outcome", "Matched Text", "Date", "Reason")
	for _, a := range attempts {
		date := ""
		if a.Outcome == dateparser.Matched {
			date = a.Date.ISO()
		}
		t.Row(a.Pattern, a.Outcome.String(), a.Text, date, a.Reason)
	}
	return titleStyle.Render(fmt.Sprintf("%s (year %d)", name, year)) + "\n" + t.Render()
}

// RunTable lists journaled runs, newest first.
func RunTable(runs []audit.RunInfo) string {
	t := newTable("Run ID", "Type", "Started", "Status", "Files", "Placed", "Errors", "Duration")
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		duration := "-"
		if r.EndTime != nil {
			duration = r.EndTime.Sub(r.StartTime).Round(time.Millisecond).String()
		}
		t.Row(
			string(r.RunID),
			string(r.RunType),
			humanize.Time(r.StartTime),
			string(r.Status),
			strconv.Itoa(r.Summary.TotalFiles),
			strconv.Itoa(r.Summary.Placed),
			strconv.Itoa(r.Summary.Errors),
			duration,
		)
	}
	return titleStyle.Render("Runs") + "\n" + t.Render()
}

// EventTable lists the events of one run in journal order.
func EventTable(events []audit.AuditEvent) string {
	t := newTable("Time", "Event", "Status", "Source", "Destination")
	for _, e := range events {
		dest := e.DestinationPath
		if e.ErrorDetails != nil {
			dest = e.ErrorDetails.ErrorType + ": " + e.ErrorDetails.ErrorMessage
		}
		t.Row(
			e.Timestamp.Local().Format(time.DateTime),
			string(e.EventType),
			string(e.Status),
			e.SourcePath,
			dest,
		)
	}
	return t.Render()
}
