// Package ascii renders boxes and aligned tables for terminal output.
package ascii

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StringWidth returns the display width of s. Wide runes (emoji, CJK)
// count as two columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Box frames lines with single-line borders and one column of padding.
func Box(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	trimmed := make([]string, len(lines))
	maxWidth := 0
	for i, line := range lines {
		trimmed[i] = strings.TrimRight(line, " ")
		maxWidth = max(maxWidth, StringWidth(trimmed[i]))
	}

	border := strings.Repeat("─", maxWidth+2)
	var sb strings.Builder
	sb.WriteString("┌" + border + "┐\n")
	for _, line := range trimmed {
		sb.WriteString("│ " + line + strings.Repeat(" ", maxWidth-StringWidth(line)) + " │\n")
	}
	sb.WriteString("└" + border + "┘\n")
	return sb.String()
}

// Truncate shortens value to at most width columns, ending in "..." when
// there is room for it.
func Truncate(value string, width int) string {
	if width <= 0 {
		return ""
	}
	if StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// Table lays out rows in columns separated by two spaces. Headers are
// upper-cased. Cells wider than maxCell columns are truncated; zero means
// no limit. Trailing spaces are trimmed from every line.
func Table(headers []string, rows [][]string, maxCell int) string {
	cols := len(headers)
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return ""
	}

	cell := func(r []string, i int) string {
		if i >= len(r) {
			return ""
		}
		if maxCell > 0 {
			return Truncate(r[i], maxCell)
		}
		return r[i]
	}

	upper := cases.Upper(language.Und)
	head := make([]string, len(headers))
	for i, h := range headers {
		head[i] = upper.String(h)
	}
	all := make([][]string, 0, len(rows)+1)
	if len(head) > 0 {
		all = append(all, head)
	}
	all = append(all, rows...)

	widths := make([]int, cols)
	for _, r := range all {
		for i := 0; i < cols; i++ {
			widths[i] = max(widths[i], StringWidth(cell(r, i)))
		}
	}

	var sb strings.Builder
	for _, r := range all {
		var line strings.Builder
		for i := 0; i < cols; i++ {
			c := cell(r, i)
			line.WriteString(c)
			if i < cols-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-StringWidth(c)+2))
			}
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
