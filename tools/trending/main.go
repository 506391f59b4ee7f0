package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"marquee/config"
	"marquee/models"
	"marquee/services/metadata"
	"marquee/services/trailers"
)

func main() {
	var (
		configPath   = flag.String("config", "cache/settings.json", "Path to backend settings.json")
		query        = flag.String("q", "", "Search query; lists trending titles when empty")
		withTrailers = flag.Bool("trailers", false, "Resolve a trailer for each title")
		limit        = flag.Int("n", 10, "Maximum number of titles to print")
		timeout      = flag.Duration("timeout", 30*time.Second, "Overall request timeout")
	)
	flag.Parse()

	mgr := config.NewManager(*configPath)
	settings, err := mgr.Load()
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}
	if key := os.Getenv("MARQUEE_TMDB_API_KEY"); key != "" {
		settings.Metadata.TMDBAPIKey = key
	}
	if key := os.Getenv("MARQUEE_YOUTUBE_API_KEY"); key != "" {
		settings.Metadata.YouTubeAPIKey = key
	}

	gateway := metadata.NewService(metadata.Config{
		TMDBAPIKey:    settings.Metadata.TMDBAPIKey,
		YouTubeAPIKey: settings.Metadata.YouTubeAPIKey,
		Language:      settings.Metadata.Language,
		Region:        settings.Metadata.Region,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var titles []models.Title
	if *query != "" {
		titles, err = gateway.SearchTitles(ctx, *query)
	} else {
		titles, err = gateway.FetchTrending(ctx)
	}
	if err != nil {
		log.Fatalf("fetch titles: %v", err)
	}
	if *limit > 0 && len(titles) > *limit {
		titles = titles[:*limit]
	}

	var states []models.TrailerState
	if *withTrailers {
		states = trailers.NewService(gateway, settings.Trailers.MaxConcurrent).ResolveMany(ctx, titles)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, title := range titles {
		row := fmt.Sprintf("%d\t%s\t%s\t%s", title.ID, title.DisplayName(), title.ReleaseYear(), title.RatingLabel())
		if states != nil {
			state := states[i]
			if state.Status == models.TrailerResolved {
				row += "\t" + state.URL
			} else {
				row += "\t" + state.Reason
			}
		}
		fmt.Fprintln(tw, row)
	}
	tw.Flush()
}
