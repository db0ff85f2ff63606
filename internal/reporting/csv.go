package reporting

import (
	"fmt"
	"strings"
)

// RenderAuthorCSV renders the author leaderboard as a CSV string.
func RenderAuthorCSV(rows []AuthorRow) string {
	var sb strings.Builder
	sb.WriteString("author,window_days,posts,min_pct,max_pct,avg_pct,median_pct\n")
	for _, a := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%.2f,%.2f,%.2f,%.2f\n",
			a.Author, a.WindowDays, a.Posts, a.MinPct, a.MaxPct, a.AvgPct, a.MedianPct))
	}
	return sb.String()
}

// RenderCuratorCSV renders the curator leaderboard as a CSV string.
func RenderCuratorCSV(rows []CuratorRow) string {
	var sb strings.Builder
	sb.WriteString("curator,window_days,rewards,min_eff,max_eff,avg_eff,median_eff\n")
	for _, c := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%.0f,%.0f,%.2f,%.0f\n",
			c.Curator, c.WindowDays, c.Rewards, c.MinEff, c.MaxEff, c.AvgEff, c.MedianEff))
	}
	return sb.String()
}
