package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hlop3z/relite/internal/engine"
)

// StatusTable renders one row per stamp with its ledger badge and the
// number of statements in its file.
//
//	STAMP           STATUS     STATEMENTS
//	──────────────  ─────────  ──────────
//	20240101000000  [APPLIED]  2
func StatusTable(statuses []engine.MigrationStatus) string {
	t := &table{headers: []string{"STAMP", "STATUS", "STATEMENTS"}}
	for _, s := range statuses {
		count := "-"
		if s.Status != engine.StatusMissing {
			count = strconv.Itoa(s.Statements)
		}
		t.rows = append(t.rows, []string{s.Stamp, StatusBadge(s.Status), count})
	}
	return t.String()
}

// StatusSummary counts applied and pending stamps, and warns about
// recorded stamps whose file is gone.
func StatusSummary(statuses []engine.MigrationStatus) string {
	counts := make(map[engine.PlanStatus]int)
	for _, s := range statuses {
		counts[s.Status]++
	}

	out := fmt.Sprintf("%d applied, %d pending\n", counts[engine.StatusApplied], counts[engine.StatusPending])
	if n := counts[engine.StatusMissing]; n > 0 {
		out += FormatWarning(FormatCount(n, "recorded stamp has", "recorded stamps have") + " no file")
	}
	return out
}

// PlanSteps renders what a migrate run will do. A cold start runs the
// baseline and only records the stamps; otherwise each stamp runs.
func PlanSteps(stamps []string, cold bool) string {
	var b strings.Builder
	if cold {
		fmt.Fprintf(&b, "  %s run %s\n", Info("→"), engine.BaselineFile)
	}
	for _, s := range stamps {
		if cold {
			fmt.Fprintf(&b, "  • record %s\n", s)
		} else {
			fmt.Fprintf(&b, "  %s run %s\n", Warning("!"), s)
		}
	}
	return b.String()
}

// FormatCount formats a count with singular/plural form.
func FormatCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// table lays out columns padded to their widest visible cell. Widths
// ignore color codes so styled badges line up.
type table struct {
	headers []string
	rows    [][]string
}

func (t *table) String() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	for i, h := range t.headers {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(Header(padRight(h, widths[i])))
	}
	b.WriteString("\n")

	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(Dim(strings.Repeat("─", w)))
	}
	b.WriteString("\n")

	for _, row := range t.rows {
		for i := range widths {
			if i > 0 {
				b.WriteString("  ")
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i == len(widths)-1 {
				b.WriteString(cell)
			} else {
				b.WriteString(padRight(cell, widths[i]))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
