package parser

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bikeshare-traffic/internal/common/logger"
	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

// Column names of the trip history export
const (
	colRideID         = "ride_id"
	colRideableType   = "rideable_type"
	colStartedAt      = "started_at"
	colEndedAt        = "ended_at"
	colStartStationID = "start_station_id"
	colEndStationID   = "end_station_id"
	colMemberCasual   = "member_casual"
)

var requiredColumns = []string{colStartedAt, colEndedAt, colStartStationID, colEndStationID}

type Parser struct {
	logger   logger.Logger
	location *time.Location
}

// New returns a parser that reads zone-less timestamps as wall-clock time in loc
func New(logger logger.Logger, loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{logger: logger, location: loc}
}

type Stats struct {
	Rows    int
	Trips   int
	Skipped int
}

type ParseCallbacks struct {
	OnTrip     func(trip *models.Trip) error
	OnComplete func(stats Stats) error
}

// ParseFile parses a trip CSV, or the first CSV inside a zip archive
func (p *Parser) ParseFile(ctx context.Context, path string, callbacks ParseCallbacks) error {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return p.parseZip(ctx, path, callbacks)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening trip file: %w", err)
	}
	defer f.Close()

	p.logger.Info("Parsing trip file", "path", path)
	return p.Parse(ctx, f, callbacks)
}

func (p *Parser) parseZip(ctx context.Context, path string, callbacks ParseCallbacks) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening zip file: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		// macOS archives carry __MACOSX/._name resource forks next to the real CSV
		if strings.HasPrefix(file.Name, "__MACOSX/") || !strings.EqualFold(filepath.Ext(file.Name), ".csv") {
			continue
		}

		p.logger.Info("Parsing trip file from archive", "path", path, "file", file.Name, "size", file.UncompressedSize64)

		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("opening %s: %w", file.Name, err)
		}
		defer rc.Close()

		return p.Parse(ctx, rc, callbacks)
	}

	return fmt.Errorf("no csv file found in %s", path)
}

// Parse reads trip records from r. Rows with a missing station or an
// unparseable timestamp are skipped and counted.
func (p *Parser) Parse(ctx context.Context, r io.Reader, callbacks ParseCallbacks) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	headerMap := make(map[string]int)
	for i, h := range header {
		// exports written by spreadsheet tools may start with a BOM
		headerMap[strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")] = i
	}
	for _, col := range requiredColumns {
		if _, ok := headerMap[col]; !ok {
			return fmt.Errorf("missing required column %q", col)
		}
	}

	var stats Stats
	for {
		if stats.Rows%10000 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading record: %w", err)
		}
		stats.Rows++

		trip, err := p.parseTrip(record, headerMap)
		if err != nil {
			stats.Skipped++
			if stats.Skipped <= 10 {
				p.logger.Warn("Skipping trip record", "row", stats.Rows, "error", err)
			}
			continue
		}

		if callbacks.OnTrip != nil {
			if err := callbacks.OnTrip(trip); err != nil {
				return err
			}
		}
		stats.Trips++

		if stats.Rows%100000 == 0 {
			p.logger.Debug("Progress", "records", stats.Rows)
		}
	}

	p.logger.Info("Trip file parsed", "records", stats.Rows, "trips", stats.Trips, "skipped", stats.Skipped)

	if callbacks.OnComplete != nil {
		if err := callbacks.OnComplete(stats); err != nil {
			return fmt.Errorf("complete callback: %w", err)
		}
	}

	return nil
}

// ParseTrips collects every trip of the file into a slice
func (p *Parser) ParseTrips(ctx context.Context, path string) ([]models.Trip, error) {
	var trips []models.Trip
	err := p.ParseFile(ctx, path, ParseCallbacks{
		OnTrip: func(trip *models.Trip) error {
			trips = append(trips, *trip)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (p *Parser) getString(record []string, headerMap map[string]int, field string) string {
	if idx, ok := headerMap[field]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func (p *Parser) parseTrip(record []string, headerMap map[string]int) (*models.Trip, error) {
	trip := &models.Trip{
		RideID:         p.getString(record, headerMap, colRideID),
		RideableType:   p.getString(record, headerMap, colRideableType),
		StartStationID: p.getString(record, headerMap, colStartStationID),
		EndStationID:   p.getString(record, headerMap, colEndStationID),
		MemberType:     p.getString(record, headerMap, colMemberCasual),
	}
	if trip.StartStationID == "" || trip.EndStationID == "" {
		return nil, fmt.Errorf("ride %q has no start or end station", trip.RideID)
	}

	var err error
	trip.StartedAt, err = models.ParseTimestamp(p.getString(record, headerMap, colStartedAt), p.location)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	trip.EndedAt, err = models.ParseTimestamp(p.getString(record, headerMap, colEndedAt), p.location)
	if err != nil {
		return nil, fmt.Errorf("parsing ended_at: %w", err)
	}

	return trip, nil
}
