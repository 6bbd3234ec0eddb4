package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"

	"github.com/project-tktt/bayt-crawler/internal/config"
	"github.com/project-tktt/bayt-crawler/internal/domain"
	"github.com/project-tktt/bayt-crawler/internal/logger"
	"github.com/project-tktt/bayt-crawler/internal/module/bayt"
)

func main() {
	term := flag.String("q", "", "Search term, e.g. \"data engineer\"")
	wanted := flag.Int("n", domain.DefaultResultsWanted, "Number of results wanted")
	asJSON := flag.Bool("json", false, "Print the result as JSON instead of a table")
	debug := flag.Bool("debug", false, "Enable debug logging")
	timeout := flag.Duration("timeout", 5*time.Minute, "Give up after this long")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -q <search term> [-n count] [-json]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *term == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Log.Level = "debug"
	}
	log := logger.New(cfg.Log)

	scraper, err := bayt.NewScraper(bayt.Config{
		BaseURL:        cfg.Bayt.BaseURL,
		UserAgent:      cfg.Bayt.UserAgent,
		ProxyURL:       cfg.Bayt.ProxyURL,
		RequestTimeout: cfg.Bayt.RequestTimeout,
		RequestDelay:   cfg.Bayt.RequestDelay,
		BandDelay:      cfg.Bayt.BandDelay,
		Logger:         log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "scraper: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	start := time.Now()
	resp := scraper.Scrape(ctx, domain.SearchRequest{SearchTerm: *term, ResultsWanted: *wanted})
	elapsed := time.Since(start)

	if *asJSON {
		if err := writeJSON(os.Stdout, resp); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(resp.Jobs) > 0 {
		table, err := renderTable(resp.Jobs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "render: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(table)
	}
	pterm.Info.Println(summary(*term, len(resp.Jobs), domain.SearchRequest{ResultsWanted: *wanted}.Wanted(), elapsed))
}
