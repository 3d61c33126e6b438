// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gtaskroll/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"
)

// FormatTaskIndented formats a task line inside a list section.
// Format: "    {N:>4}  {TITLE}{DUE}\n" where DUE is "  (due YYYY-MM-DD)" when set.
func FormatTaskIndented(w io.Writer, num int, task service.Task) {
	title := normalizeTitle(task.Title)
	if task.HasDue() {
		title += "  (due " + task.DueDate() + ")"
	}
	fmt.Fprintf(w, "    %4d  %s\n", num, title)
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, normalizeListTitle(title))
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a list name for the lists command, with its role
// in the rollover ("today", "inbox", "stale") when it has one.
func FormatListName(w io.Writer, list service.TaskList, role string) {
	title := normalizeListTitle(list.Title)
	if role != "" {
		title += " [" + role + "]"
	}
	fmt.Fprintln(w, title)
}

// FormatRunStat prints the counters of one run.
func FormatRunStat(w io.Writer, stat service.RunStat) {
	fmt.Fprintf(w, "Tasks rolled over:  %d\n", stat.InboxAdds)
	fmt.Fprintf(w, "Due tasks moved:    %d\n", stat.InboxMoves)
	fmt.Fprintf(w, "Lists retired:      %d\n", stat.ListsDeleted)
	fmt.Fprintf(w, "Lists created:      %d\n", stat.ListsCreated)
	fmt.Fprintf(w, "Completed tasks:    %d\n", len(stat.CompletedTasks))
	for _, ct := range stat.CompletedTasks {
		fmt.Fprintf(w, "    %s  %s\n", ct.CompletedAt.Format(time.DateOnly), normalizeTitle(ct.Name))
	}
	if stat.Notes != "" {
		fmt.Fprintf(w, "Notes:              %s\n", stat.Notes)
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListTitle normalizes a list title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
