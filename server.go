package railmatch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/railmatch/railmatch/config"
	"github.com/railmatch/railmatch/event"
	"github.com/railmatch/railmatch/itinerary"
	"github.com/railmatch/railmatch/metrics"
	"github.com/railmatch/railmatch/routing"
	"github.com/railmatch/railmatch/storage"
	"github.com/railmatch/railmatch/timetable"
)

// App wires the pipeline behind the HTTP surface. The timetable index is
// the only mutable piece; it is swapped wholesale on refresh.
type App struct {
	cfg       config.AppConfig
	planner   itinerary.Planner
	manager   *event.Manager
	blobs     storage.BlobStore
	collector *metrics.Collector

	mu    sync.RWMutex
	index *timetable.Index

	server *http.Server
}

// NewApp assembles the application. The manager's sampler is the App
// itself, so window runs always see the currently loaded timetable.
func NewApp(cfg config.AppConfig, planner itinerary.Planner, manager *event.Manager, blobs storage.BlobStore, collector *metrics.Collector) *App {
	return &App{
		cfg:       cfg,
		planner:   planner,
		manager:   manager,
		blobs:     blobs,
		collector: collector,
	}
}

// SetIndex swaps the active timetable index.
func (a *App) SetIndex(ix *timetable.Index) {
	a.mu.Lock()
	a.index = ix
	a.mu.Unlock()
	if a.collector != nil {
		a.collector.TimetableTrips.Set(float64(ix.Len()))
	}
}

func (a *App) currentIndex() *timetable.Index {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.index
}

// Sample implements event.Windower against the live index.
func (a *App) Sample(ctx context.Context, origin, destination string, start, end time.Time) (itinerary.OptionsSet, []itinerary.IntervalError) {
	s := &itinerary.Sampler{
		Planner: a.planner,
		Extractor: &itinerary.Extractor{
			Index:    a.currentIndex(),
			Operator: a.cfg.Timetable.Operator,
		},
		Step:          time.Duration(a.cfg.Sampling.StepMinutes) * time.Minute,
		Archive:       a.blobs,
		ArchivePrefix: a.cfg.Paths.ResponsePrefix,
	}
	began := time.Now()
	set, errs := s.Sample(ctx, origin, destination, start, end)
	if a.collector != nil {
		a.collector.SampleDuration.Observe(time.Since(began).Seconds())
		a.collector.RoutingErrors.Add(float64(len(errs)))
		a.collector.ItinerariesBuilt.Add(float64(len(set.Itineraries)))
		if step := s.Step; step > 0 && !end.Before(start) {
			a.collector.RoutingCalls.Add(float64(end.Sub(start)/step + 1))
		}
	}
	return set, errs
}

// StartServer begins serving the HTTP API in the background.
func (a *App) StartServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", a.handleHealth)
	mux.HandleFunc("/api/day-options", a.handleDayOptions)
	mux.HandleFunc("/api/trip-options", a.handleTripOptions)
	mux.HandleFunc("/api/timetable/refresh", a.handleTimetableRefresh)

	addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
	a.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", addr)
}

// HandleGracefulShutdown blocks until SIGINT/SIGTERM, then drains the
// server.
func (a *App) HandleGracefulShutdown() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			log.Printf("server shutdown error: %v", err)
		} else {
			log.Printf("server shut down successfully")
		}
	}
}

// NewPlanner builds the directions client from configuration.
func NewPlanner(cfg config.AppConfig) *routing.Client {
	return routing.NewClient(
		cfg.Routing.Endpoint,
		cfg.Secrets.RoutingAPIKey,
		cfg.Routing.Region,
		cfg.Routing.Language,
		time.Duration(cfg.Routing.TimeoutMS)*time.Millisecond,
	)
}
