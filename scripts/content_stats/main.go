package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cpcnewhaven/cpc-web-app/internal/archive"
	"github.com/cpcnewhaven/cpc-web-app/internal/repository"
	"github.com/cpcnewhaven/cpc-web-app/pkg/config"
	"github.com/cpcnewhaven/cpc-web-app/pkg/database"
)

// content_stats prints the same per-table counts the admin dashboard shows,
// plus the archive year breakdown, for quick inspection from a shell.
func main() {
	var (
		asJSON  bool
		timeout time.Duration
	)
	flag.BoolVar(&asJSON, "json", false, "emit raw JSON instead of a table")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "query timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	stats, err := repository.NewStatsRepository(db).ContentStats(ctx)
	if err != nil {
		log.Fatalf("failed to gather stats: %v", err)
	}

	store := archive.NewStore(cfg.Archive.SermonsFile, nil)
	counts, err := store.YearCounts()
	if err != nil {
		log.Printf("archive unavailable: %v", err)
		counts = map[string]int{}
	}

	if asJSON {
		out := map[string]interface{}{"content": stats, "archive_years": counts}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("failed to encode output: %v", err)
		}
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "table\ttotal\tactive")
	fmt.Fprintf(w, "announcements\t%d\t%d\n", stats.Announcements.Total, stats.Announcements.Active)
	fmt.Fprintf(w, "sermons\t%d\t-\n", stats.Sermons.Total)
	fmt.Fprintf(w, "podcast episodes\t%d\t-\n", stats.Podcasts.Episodes)
	fmt.Fprintf(w, "gallery\t%d\t-\n", stats.Gallery.Total)
	fmt.Fprintf(w, "events\t%d\t%d\n", stats.Events.Total, stats.Events.Active)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "archive year\tsermons")
	for year, n := range counts {
		fmt.Fprintf(w, "%s\t%d\n", year, n)
	}
	w.Flush()
}
