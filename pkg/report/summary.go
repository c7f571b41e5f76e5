package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

// RenderSummary writes a per-suite summary table of the report to out.
func RenderSummary(out io.Writer, rep Report) {
	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	// Autoformat upcases footer cells along with the labels, so the totals
	// row would render "2.000S". Labels are pre-upcased instead.
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetFooterAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	data := make([][]string, 0, len(rep.Suites))
	for _, suite := range rep.Suites {
		data = append(data, []string{
			suite.Name,
			strconv.Itoa(len(suite.Cases)),
			strconv.Itoa(suite.Failures()),
			strconv.Itoa(suite.Skipped()),
			formatDuration(suite.Duration()),
		})
	}
	table.AppendBulk(data)

	table.SetHeader([]string{"SUITE", "TESTS", "FAILURES", "SKIPPED", "TIME"})
	table.SetFooter([]string{
		"TOTAL",
		strconv.Itoa(rep.Tests()),
		strconv.Itoa(rep.Failures()),
		strconv.Itoa(rep.Skipped()),
		formatDuration(rep.Duration()),
	})
	table.Render()
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}
