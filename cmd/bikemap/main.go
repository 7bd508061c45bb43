package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bikeshare-traffic/internal/bikeshare/feed"
	"github.com/bikeshare-traffic/internal/bikeshare/importer"
	"github.com/bikeshare-traffic/internal/bikeshare/loader"
	"github.com/bikeshare-traffic/internal/bikeshare/parser"
	"github.com/bikeshare-traffic/internal/bikeshare/store"
	"github.com/bikeshare-traffic/internal/common/config"
	"github.com/bikeshare-traffic/internal/common/db"
	"github.com/bikeshare-traffic/internal/common/discord"
	"github.com/bikeshare-traffic/internal/common/logger"
	"github.com/bikeshare-traffic/internal/traffic"
	"github.com/bikeshare-traffic/internal/trafficmap"
	"github.com/bikeshare-traffic/internal/viewport"
)

const usage = `Usage:
  bikemap [-time HH:MM|-1] [-json] [-visible]   print station markers for a time filter
  bikemap import                                load the station feed and trip export into Postgres
`

func main() {
	// .env is optional; the environment and CONFIG_FILE still apply
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = logger.ParseLogLevel(cfg.Logging.Level)
	logCfg.FilePath = cfg.Logging.FilePath
	logCfg.File = cfg.Logging.FilePath != ""
	log := logger.NewFromConfig(logCfg)

	if envErr != nil {
		log.Debug("No .env file loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "import" {
		if err := runImport(ctx, cfg, log); err != nil {
			log.Fatal("Import failed", "error", err)
		}
		return
	}

	if err := runMap(ctx, cfg, log, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal("Traffic map failed", "error", err)
	}
}

func runMap(ctx context.Context, cfg *config.Config, log logger.Logger, args []string) error {
	fs := flag.NewFlagSet("bikemap", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	timeArg := fs.String("time", "-1", "time filter as HH:MM, minutes since midnight, or -1 for any time")
	asJSON := fs.Bool("json", false, "print markers as JSON")
	visible := fs.Bool("visible", false, "only print stations inside the configured view")
	if err := fs.Parse(args); err != nil {
		return err
	}

	minute, err := traffic.ParseFilter(*timeArg)
	if err != nil {
		return err
	}

	stations, trips, cleanup, err := sources(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := loader.Load(ctx, stations, trips, log)
	if err != nil {
		alertLoadFailure(cfg, log, err)
		return err
	}

	view := viewport.New(viewport.Options{
		Center:  viewport.LngLat{Lon: cfg.View.CenterLon, Lat: cfg.View.CenterLat},
		Zoom:    cfg.View.Zoom,
		MinZoom: cfg.View.MinZoom,
		MaxZoom: cfg.View.MaxZoom,
		Width:   cfg.View.Width,
		Height:  cfg.View.Height,
	})

	m := trafficmap.New(data.Stations, data.Trips, view, cfg.Data.Location(), log)
	if err := m.SetTimeFilter(minute); err != nil {
		return err
	}

	markers := m.Markers()
	if *visible {
		markers = m.VisibleMarkers()
	}

	if *asJSON {
		return writeJSON(os.Stdout, m, markers)
	}
	return writeTable(os.Stdout, m, markers)
}

// sources picks the station and trip sources for the configured backend
func sources(ctx context.Context, cfg *config.Config, log logger.Logger) (loader.StationSource, loader.TripSource, func(), error) {
	if cfg.Data.Source == config.SourcePostgres {
		database, err := db.New(ctx, cfg.Database.ConnectionString(), log)
		if err != nil {
			return nil, nil, nil, err
		}
		s := store.New(database)
		return s, s, func() { database.Close() }, nil
	}

	stations := &loader.HTTPStationSource{
		Fetcher: feed.NewHTTPStationFetcher(log),
		URL:     cfg.Data.StationFeedURL,
	}
	trips := &loader.HTTPTripSource{
		Downloader: feed.NewHTTPDownloader(log, cfg.Data.FetchTimeout),
		Parser:     parser.New(log, cfg.Data.Location()),
		URL:        cfg.Data.TripDataURL,
		Dir:        cfg.Data.DownloadDir,
	}
	return stations, trips, func() {}, nil
}

func runImport(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if err := cfg.Database.Validate(); err != nil {
		return err
	}

	database, err := db.New(ctx, cfg.Database.ConnectionString(), log)
	if err != nil {
		return err
	}
	defer database.Close()

	s := store.New(database)
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}

	p := parser.New(log, cfg.Data.Location())
	stationSrc := &loader.HTTPStationSource{
		Fetcher: feed.NewHTTPStationFetcher(log),
		URL:     cfg.Data.StationFeedURL,
	}
	tripSrc := &loader.HTTPTripSource{
		Downloader: feed.NewHTTPDownloader(log, cfg.Data.FetchTimeout),
		Parser:     p,
		URL:        cfg.Data.TripDataURL,
		Dir:        cfg.Data.DownloadDir,
	}

	stations, err := stationSrc.LoadStations(ctx)
	if err != nil {
		alertLoadFailure(cfg, log, err)
		return err
	}
	if err := tripSrc.Downloader.Download(ctx, tripSrc.URL, tripSrc.Path()); err != nil {
		alertLoadFailure(cfg, log, err)
		return err
	}

	start := time.Now()
	result, err := importer.NewImporter(database, p).Import(ctx, stations, tripSrc.Path())
	if err != nil {
		return err
	}

	log.Info("Import complete",
		"stations", result.Stations,
		"trips", result.Trips,
		"skipped", result.Skipped,
		"duration", time.Since(start).String())
	return nil
}

func alertLoadFailure(cfg *config.Config, log logger.Logger, loadErr error) {
	client := discord.NewClient(cfg.Logging.DiscordURL)
	if !client.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := client.SendLoadFailure(ctx, loadErr, map[string]interface{}{
		"source":    cfg.Data.Source,
		"trip_data": cfg.Data.TripDataURL,
	})
	if err != nil {
		log.Warn("Failed to send Discord alert", "error", err)
	}
}
