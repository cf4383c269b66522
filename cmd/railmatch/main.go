package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	lib "github.com/railmatch/railmatch"
	"github.com/railmatch/railmatch/config"
	"github.com/railmatch/railmatch/event"
	"github.com/railmatch/railmatch/itinerary"
	"github.com/railmatch/railmatch/matchindex"
	"github.com/railmatch/railmatch/metrics"
	"github.com/railmatch/railmatch/storage"
	"github.com/railmatch/railmatch/timetable"
)

func main() {
	mode := flag.String("mode", "serve", "serve|oneshot")
	configPath := flag.String("config", "", "config file path (defaults to config.yml)")
	gtfsPath := flag.String("gtfs", "", "local GTFS zip (overrides the blob artifact and static URL)")
	origin := flag.String("origin", "", "oneshot: origin")
	destination := flag.String("destination", "", "oneshot: destination")
	start := flag.String("start", "", "oneshot: window start, RFC3339")
	end := flag.String("end", "", "oneshot: window end, RFC3339")
	flag.Parse()

	lib.InitLogging()

	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	switch *mode {
	case "serve":
		serve(cfg, *gtfsPath)
	case "oneshot":
		oneshot(cfg, *gtfsPath, *origin, *destination, *start, *end)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}
}

func serve(cfg config.AppConfig, gtfsPath string) {
	ctx := context.Background()

	db, err := storage.Open(ctx, cfg.Secrets.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := storage.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	blobs := &storage.PGBlobStore{DB: db}
	matches := &storage.PGMatchStore{DB: db}
	collector := metrics.NewCollector()

	manager := &event.Manager{
		Writer:         &matchindex.Writer{Matches: matches, Summaries: matches},
		Annotator:      &matchindex.Annotator{Matches: matches, Friends: &storage.PGFriendDirectory{DB: db}},
		Events:         &storage.PGEventStore{DB: db},
		Blobs:          blobs,
		OptionsPrefix:  cfg.Paths.OptionsPrefix,
		DayPrefix:      cfg.Paths.DayPrefix,
		MaxOccurrences: cfg.Sampling.MaxOccurrences,
	}
	app := lib.NewApp(cfg, lib.NewPlanner(cfg), manager, blobs, collector)
	manager.Sampler = app

	trips, err := loadTimetable(ctx, cfg, blobs, gtfsPath)
	if err != nil {
		log.Fatalf("timetable: %v", err)
	}
	app.SetIndex(timetable.BuildIndex(trips))
	log.Printf("timetable loaded: %d trips", len(trips))

	sub, err := event.NewSubscriber(cfg.Secrets.NATSURL, cfg.NATS.SubjectPrefix, manager, collector)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()
	if err := sub.Start(ctx); err != nil {
		log.Fatalf("nats: %v", err)
	}

	if cfg.Server.MetricsAddr != "" {
		collector.Serve(cfg.Server.MetricsAddr)
	}
	app.StartServer()
	app.HandleGracefulShutdown()
}

func oneshot(cfg config.AppConfig, gtfsPath, origin, destination, start, end string) {
	if origin == "" || destination == "" {
		log.Fatal("oneshot requires -origin and -destination")
	}
	from, err := time.Parse(time.RFC3339, start)
	if err != nil {
		log.Fatalf("bad -start: %v", err)
	}
	to, err := time.Parse(time.RFC3339, end)
	if err != nil {
		log.Fatalf("bad -end: %v", err)
	}

	ctx := context.Background()
	blobs := storage.NewMemoryBlobStore()
	trips, err := loadTimetable(ctx, cfg, blobs, gtfsPath)
	if err != nil {
		log.Fatalf("timetable: %v", err)
	}

	s := &itinerary.Sampler{
		Planner: lib.NewPlanner(cfg),
		Extractor: &itinerary.Extractor{
			Index:    timetable.BuildIndex(trips),
			Operator: cfg.Timetable.Operator,
		},
		Step: time.Duration(cfg.Sampling.StepMinutes) * time.Minute,
	}
	set, errs := s.Sample(ctx, origin, destination, from, to)
	for _, e := range errs {
		log.Printf("%v", e)
	}
	out, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
	if len(errs) > 0 {
		os.Exit(1)
	}
}

// loadTimetable prefers a local zip override, then the gob cache file, then
// the published artifact, then the static URL; a fetch from the URL
// republishes the artifact. Trips fetched remotely refresh the cache.
func loadTimetable(ctx context.Context, cfg config.AppConfig, blobs storage.BlobStore, gtfsPath string) ([]timetable.ScheduledTrip, error) {
	if gtfsPath != "" {
		return timetable.LoadFromLocalZip(gtfsPath, cfg.Timetable.AgencyID)
	}
	if cache := cfg.Timetable.CachePath; cache != "" {
		if trips, err := timetable.DeserializeTripsFromFile(cache); err == nil {
			return trips, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Printf("timetable cache %s: %v", cache, err)
		}
	}
	if data, err := blobs.Get(ctx, cfg.Paths.TimetablePath); err == nil {
		trips, err := timetable.UnmarshalTripsJSON(data)
		if err != nil {
			return nil, err
		}
		cacheTrips(cfg, trips)
		return trips, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if cfg.Timetable.StaticURL == "" {
		return nil, errors.New("no timetable source: set -gtfs or timetable.staticURL")
	}
	trips, err := timetable.LoadFromStaticZip(cfg.Timetable.StaticURL, cfg.Timetable.AgencyID,
		time.Duration(cfg.Timetable.TimeoutMS)*time.Millisecond)
	if err != nil {
		return nil, err
	}
	if data, err := timetable.MarshalTripsJSON(trips); err == nil {
		if err := blobs.Put(ctx, cfg.Paths.TimetablePath, data); err != nil {
			log.Printf("publish timetable artifact: %v", err)
		}
	}
	cacheTrips(cfg, trips)
	return trips, nil
}

func cacheTrips(cfg config.AppConfig, trips []timetable.ScheduledTrip) {
	if cfg.Timetable.CachePath == "" {
		return
	}
	if err := timetable.SerializeTripsToFile(trips, cfg.Timetable.CachePath); err != nil {
		log.Printf("write timetable cache: %v", err)
	}
}
