package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/qvmctl/qvm/internal/session"
	"github.com/qvmctl/qvm/internal/vm"
	"github.com/qvmctl/qvm/internal/vmconfig"
)

// TableFormatter prints plain text.
type TableFormatter struct{}

// FormatNames prints one name per line.
func (f *TableFormatter) FormatNames(names []string) (string, error) {
	if len(names) == 0 {
		return "", nil
	}
	return strings.Join(names, "\n") + "\n", nil
}

// FormatProfile prints the stored template exactly as it is.
func (f *TableFormatter) FormatProfile(p vmconfig.Profile) (string, error) {
	return p.Template + "\n", nil
}

// FormatProfiles prints each name followed by its template indented by
// two spaces.
func (f *TableFormatter) FormatProfiles(profiles []vmconfig.Profile) (string, error) {
	var b strings.Builder
	for i, p := range profiles {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s:\n", p.Name)
		for _, line := range strings.Split(p.Template, "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String(), nil
}

// FormatStatus prints "Running. PID: x" or "Not Running".
func (f *TableFormatter) FormatStatus(s vm.Status) (string, error) {
	if !s.Running {
		return "Not Running\n", nil
	}
	return fmt.Sprintf("Running. PID: %d\n", s.PID), nil
}

// FormatLaunches prints launch records as a table.
func (f *TableFormatter) FormatLaunches(launches []*session.Launch) (string, error) {
	if len(launches) == 0 {
		return "No launches recorded\n", nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ID\tNAME\tPROFILE\tMODE\tPID\tAGE\tDIR")
	for _, l := range launches {
		mode := "start"
		if l.ISO != "" {
			mode = "install"
		}
		if l.Detached {
			mode += " (detached)"
		}

		pid := "-"
		if l.PID > 0 {
			pid = fmt.Sprintf("%d", l.PID)
		}

		age := "-"
		if !l.StartedAt.IsZero() {
			age = formatAge(time.Since(l.StartedAt))
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Name, l.Profile, mode, pid, age, l.WorkDir)
	}

	_ = w.Flush()
	return buf.String(), nil
}

// formatAge formats a duration as a short age string such as "5s", "2m",
// "3h" or "4d".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "unknown"
	}

	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	days := hours / 24
	if days < 365 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dy", days/365)
}
