// Package main renders the curation report from the system of record:
// a markdown summary plus author and curator leaderboard CSVs.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"steem-curation-lab/internal/config"
	"steem-curation-lab/internal/reporting"
	pgstore "steem-curation-lab/internal/storage/postgres"
)

func main() {
	outputDir := flag.String("out", "reports", "output directory for report files")
	topN := flag.Int("top", 0, "leaderboard length (0 uses the default)")
	windowDays := flag.Int("window", 0, "leaderboard window in days (0 uses the default)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	generator := reporting.NewGenerator(reporting.GeneratorOptions{
		PriceStore:             pgstore.NewPriceStore(pool),
		AuthorHistoryStore:     pgstore.NewAuthorHistoryStore(pool),
		CuratorHistoryStore:    pgstore.NewCuratorHistoryStore(pool),
		PendingPercentileStore: pgstore.NewPendingPercentileStore(pool),
		PendingVoteStore:       pgstore.NewPendingVoteHistoryStore(pool),
		TopN:                   *topN,
		WindowDays:             *windowDays,
	})

	report, err := generator.Generate(ctx)
	if err != nil {
		log.Fatalf("generate report: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	files := map[string]string{
		"REPORT.md":    reporting.RenderMarkdown(report),
		"authors.csv":  reporting.RenderAuthorCSV(report.TopAuthors),
		"curators.csv": reporting.RenderCuratorCSV(report.TopCurators),
	}
	for name, content := range files {
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("wrote %s", path)
	}
}
