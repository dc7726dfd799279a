package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/slidetype/pkg/advisor"
	"github.com/matzehuels/slidetype/pkg/engine"
	"github.com/matzehuels/slidetype/pkg/errors"
	"github.com/matzehuels/slidetype/pkg/pipeline"
	"github.com/matzehuels/slidetype/pkg/style"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleFailed   = lipgloss.NewStyle().Foreground(colorRed)

	styleKey = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// cacheLabel renders the cached/fresh marker.
func cacheLabel(cached bool) string {
	if cached {
		return styleCached.Render(iconCached)
	}
	return styleComputed.Render(iconFresh)
}

// =============================================================================
// Reports
// =============================================================================

// printBlockReports prints one line per text block of a render report.
func printBlockReports(w io.Writer, rep *engine.Report) {
	for _, b := range []engine.BlockReport{rep.Title, rep.Body} {
		if b.Skipped {
			printDetail(w, "%-5s skipped (%s)", b.Block, b.Reason)
			continue
		}
		fit := ""
		if !b.Fits {
			fit = " " + StyleWarning.Render("overflows")
		}
		printDetail(w, "%-5s %dpx · %d lines · %s %d (%s)%s",
			b.Block, b.Size, len(b.Lines), b.Family, b.Weight, b.Origin, fit)
	}
}

// printStyleSummary prints a suggested style and the brightness analysis behind it.
func printStyleSummary(w io.Writer, st style.TextStyle, rep advisor.Report) {
	fmt.Fprintln(w, StyleTitle.Render("Suggested style"))

	tone := "dark"
	if rep.Bright {
		tone = "bright"
	}
	printKeyValue(w, "background", fmt.Sprintf("%s (luma %.1f)", tone, rep.Luma))
	for _, r := range rep.Regions {
		printKeyValue(w, "  "+r.Name, fmt.Sprintf("luma %.1f", r.Luma))
	}
	printKeyValue(w, "font", fmt.Sprintf("%s %d", st.FontFamily, st.FontWeight))
	printKeyValue(w, "sizes", fmt.Sprintf("title ≤ %dpx, body ≤ %dpx", st.FontSizePx, st.BodyMaxSize()))
	printKeyValue(w, "text color", st.TextColor)
	if st.Stroke.Enabled {
		printKeyValue(w, "stroke", fmt.Sprintf("%dpx %s", st.Stroke.WidthPx, st.Stroke.Color))
	}
	printKeyValue(w, "alignment", string(st.Alignment))
}

// batchTable renders per-slide results as a table.
func batchTable(results []pipeline.SlideResult) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := cacheLabel(r.Cached)
		detail := ""
		switch {
		case r.Err != nil:
			status = styleFailed.Render("failed")
			detail = errors.UserMessage(r.Err)
		case r.Report != nil:
			detail = fmt.Sprintf("title %dpx, body %dpx", r.Report.Title.Size, r.Report.Body.Size)
		}
		rows = append(rows, []string{strconv.Itoa(r.Index + 1), r.ID, status, detail})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Slide", "Status", "Detail").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

// printBatchStats prints the one-line batch summary.
func printBatchStats(w io.Writer, st pipeline.Stats) {
	parts := []string{
		fmt.Sprintf("%d slides", st.Total),
		fmt.Sprintf("%d rendered", st.Rendered),
		styleCached.Render(fmt.Sprintf("%d cached", st.Cached)),
	}
	if st.Failed > 0 {
		parts = append(parts, styleFailed.Render(fmt.Sprintf("%d failed", st.Failed)))
	}
	fmt.Fprintln(w, "  "+strings.Join(parts, StyleDim.Render(" · ")))
}
