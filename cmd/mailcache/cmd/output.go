package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/nhle/mailcache/internal/model"
)

const maxSubjectWidth = 60

func printRecords(w io.Writer, records []model.EmailRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No emails found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSENDER\tSUBJECT\tID")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Date, r.Sender, truncate(r.Subject, maxSubjectWidth), r.ID)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d emails\n", len(records))
}

func printSenderCounts(w io.Writer, counts []model.SenderCount) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No senders found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tSENDER")
	for _, c := range counts {
		fmt.Fprintf(tw, "%d\t%s\n", c.Count, c.Sender)
	}
	tw.Flush()
}

func printRecord(w io.Writer, r *model.EmailRecord) {
	fmt.Fprintf(w, "ID:      %s\n", r.ID)
	fmt.Fprintf(w, "From:    %s\n", r.Sender)
	fmt.Fprintf(w, "Subject: %s\n", r.Subject)
	fmt.Fprintf(w, "Date:    %s\n", r.Date)
	fmt.Fprintf(w, "Folder:  %s\n", r.Folder)
	fmt.Fprintf(w, "Synced:  %s\n", formatTime(r.SyncedAt))
	if r.Snippet != "" {
		fmt.Fprintf(w, "\n%s\n", r.Snippet)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
