package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Curation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Price Days | %d |\n", r.DataSummary.PriceDays))
	if r.DataSummary.PriceDays > 0 {
		sb.WriteString(fmt.Sprintf("| Price Range | %s .. %s |\n",
			r.DataSummary.PriceRangeStart.Format("2006-01-02"),
			r.DataSummary.PriceRangeEnd.Format("2006-01-02")))
	}
	sb.WriteString(fmt.Sprintf("| Author Snapshots | %d |\n", r.DataSummary.AuthorSnapshots))
	sb.WriteString(fmt.Sprintf("| Curator Snapshots | %d |\n", r.DataSummary.CuratorSnapshots))
	sb.WriteString(fmt.Sprintf("| Pending Percentiles | %d |\n", r.DataSummary.PendingPercentiles))
	sb.WriteString(fmt.Sprintf("| Pending Vote Histories | %d |\n", r.DataSummary.PendingVoteHistories))
	sb.WriteString("\n")

	sb.WriteString("## Top Authors\n\n")
	if len(r.TopAuthors) > 0 {
		sb.WriteString("| Author | Window | Posts | Min | Max | Avg | Median |\n")
		sb.WriteString("|--------|--------|-------|-----|-----|-----|--------|\n")
		for _, a := range r.TopAuthors {
			sb.WriteString(fmt.Sprintf("| %s | %dd | %d | %.0f | %.0f | %.2f | %.0f |\n",
				a.Author, a.WindowDays, a.Posts, a.MinPct, a.MaxPct, a.AvgPct, a.MedianPct))
		}
	} else {
		sb.WriteString("No author history available.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Top Curators\n\n")
	if len(r.TopCurators) > 0 {
		sb.WriteString("| Curator | Window | Rewards | Min | Max | Avg | Median |\n")
		sb.WriteString("|---------|--------|---------|-----|-----|-----|--------|\n")
		for _, c := range r.TopCurators {
			sb.WriteString(fmt.Sprintf("| %s | %dd | %d | %.0f | %.0f | %.2f | %.0f |\n",
				c.Curator, c.WindowDays, c.Rewards, c.MinEff, c.MaxEff, c.AvgEff, c.MedianEff))
		}
	} else {
		sb.WriteString("No curator history available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
