// Package loader fetches station metadata and trip records concurrently and
// hands both over only when both have arrived.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/bikeshare-traffic/internal/bikeshare/feed"
	"github.com/bikeshare-traffic/internal/bikeshare/parser"
	"github.com/bikeshare-traffic/internal/common/logger"
	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

var ErrLoadFailed = errors.New("loading bike share data failed")

type StationSource interface {
	LoadStations(ctx context.Context) ([]models.Station, error)
}

type TripSource interface {
	LoadTrips(ctx context.Context) ([]models.Trip, error)
}

// Data is the complete input of the traffic map
type Data struct {
	Stations []models.Station
	Trips    []models.Trip
}

// Load runs both sources concurrently and waits for both. If either fails the
// result is empty and the error wraps ErrLoadFailed.
func Load(ctx context.Context, stations StationSource, trips TripSource, log logger.Logger) (*Data, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg         sync.WaitGroup
		data       Data
		stationErr error
		tripErr    error
	)

	start := time.Now()
	wg.Add(2)
	go func() {
		defer wg.Done()
		data.Stations, stationErr = stations.LoadStations(ctx)
		if stationErr != nil {
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		data.Trips, tripErr = trips.LoadTrips(ctx)
		if tripErr != nil {
			cancel()
		}
	}()
	wg.Wait()

	var errs []error
	if stationErr != nil {
		errs = append(errs, fmt.Errorf("stations: %w", stationErr))
	}
	if tripErr != nil {
		errs = append(errs, fmt.Errorf("trips: %w", tripErr))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, errors.Join(errs...))
	}

	log.Info("Bike share data loaded",
		"stations", len(data.Stations),
		"trips", len(data.Trips),
		"duration", time.Since(start).String())

	return &data, nil
}

// HTTPStationSource reads the station information feed
type HTTPStationSource struct {
	Fetcher feed.StationFetcher
	URL     string
}

func (s *HTTPStationSource) LoadStations(ctx context.Context) ([]models.Station, error) {
	return s.Fetcher.FetchStations(ctx, s.URL)
}

// HTTPTripSource downloads the trip export into Dir and parses it
type HTTPTripSource struct {
	Downloader feed.Downloader
	Parser     *parser.Parser
	URL        string
	Dir        string
}

func (s *HTTPTripSource) LoadTrips(ctx context.Context) ([]models.Trip, error) {
	dest := s.Path()
	if err := s.Downloader.Download(ctx, s.URL, dest); err != nil {
		return nil, fmt.Errorf("downloading trips: %w", err)
	}
	return s.Parser.ParseTrips(ctx, dest)
}

// Path is where the downloaded export is stored; the file name of the URL is kept
// so zip archives stay recognisable.
func (s *HTTPTripSource) Path() string {
	name := path.Base(s.URL)
	if name == "" || name == "." || name == "/" {
		name = "trips.csv"
	}
	return filepath.Join(s.Dir, name)
}
