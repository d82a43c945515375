package cmd

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/shaharia-lab/mailbatch/internal/notification"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	reasonBox  = lipgloss.NewStyle().PaddingLeft(2)
)

// renderReport prints the batch summary followed by every failure, sorted by
// address.
func renderReport(w io.Writer, r *notification.BatchResult) {
	fmt.Fprintf(w, "%s %d\n", okStyle.Render("Sent:"), r.SuccessCount())
	fmt.Fprintf(w, "%s %d\n", errStyle.Render("Failed:"), r.FailureCount())
	if r.Skipped() > 0 {
		fmt.Fprintf(w, "%s %d\n", warnStyle.Render("Skipped:"), r.Skipped())
	}
	if r.Cancelled() {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("Cancelled after %d of %d recipients",
			r.SuccessCount()+r.FailureCount(), r.Total())))
	}
	fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf("batch %s in %s", r.ID(), r.Duration().Round(time.Millisecond))))

	if !r.HasErrors() {
		return
	}
	failed := r.FailedEmails()
	addrs := make([]string, 0, len(failed))
	for a := range failed {
		addrs = append(addrs, a)
	}
	slices.Sort(addrs)

	fmt.Fprintln(w)
	fmt.Fprintln(w, errStyle.Render("Errors:"))
	for _, a := range addrs {
		fmt.Fprintf(w, "%s\n%s\n", a, reasonBox.Render(failed[a]))
	}
}
