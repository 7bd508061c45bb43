package importer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bikeshare-traffic/internal/bikeshare/parser"
	"github.com/bikeshare-traffic/internal/common/db"
	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

const defaultBatchSize = 1000

var (
	stationColumns = []string{"short_name", "station_id", "name", "lat", "lon", "capacity"}
	tripColumns    = []string{"ride_id", "rideable_type", "start_station_id", "end_station_id", "started_at", "ended_at", "member_casual"}
)

// Importer copies station metadata and a trip export into the bikeshare tables
type Importer struct {
	db        *db.DB
	parser    *parser.Parser
	batchSize int
}

func NewImporter(database *db.DB, p *parser.Parser) *Importer {
	return &Importer{
		db:        database,
		parser:    p,
		batchSize: defaultBatchSize,
	}
}

// Result summarises one import
type Result struct {
	Stations int
	Trips    int
	Skipped  int
}

// Import writes stations and every trip of tripsPath in one transaction.
// Rows that already exist are left alone.
func (i *Importer) Import(ctx context.Context, stations []models.Station, tripsPath string) (Result, error) {
	var result Result

	tx, err := i.db.BeginTx(ctx)
	if err != nil {
		return result, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stationBatch := newBatchInserter("stations", stationColumns, i.batchSize)
	tripBatch := newBatchInserter("trips", tripColumns, i.batchSize)
	stationBatch.tx = tx
	tripBatch.tx = tx

	for _, st := range stations {
		if err := stationBatch.Add(ctx,
			st.ID,
			sql.NullString{String: st.StationID, Valid: st.StationID != ""},
			st.Name,
			st.Lat,
			st.Lon,
			st.Capacity,
		); err != nil {
			return result, fmt.Errorf("inserting stations: %w", err)
		}
	}
	if err := stationBatch.Flush(ctx); err != nil {
		return result, fmt.Errorf("flushing stations batch: %w", err)
	}
	result.Stations = len(stations)

	rideSeq := 0
	callbacks := parser.ParseCallbacks{
		OnTrip: func(trip *models.Trip) error {
			rideSeq++
			rideID := trip.RideID
			if rideID == "" {
				rideID = fmt.Sprintf("%s-%s-%d", trip.StartStationID, trip.StartedAt.Format("20060102T150405"), rideSeq)
			}
			return tripBatch.Add(ctx,
				rideID,
				sql.NullString{String: trip.RideableType, Valid: trip.RideableType != ""},
				trip.StartStationID,
				trip.EndStationID,
				trip.StartedAt,
				trip.EndedAt,
				sql.NullString{String: trip.MemberType, Valid: trip.MemberType != ""},
			)
		},
		OnComplete: func(stats parser.Stats) error {
			result.Trips = stats.Trips
			result.Skipped = stats.Skipped
			return nil
		},
	}

	if err := i.parser.ParseFile(ctx, tripsPath, callbacks); err != nil {
		return result, fmt.Errorf("parsing trips: %w", err)
	}

	if err := tripBatch.Flush(ctx); err != nil {
		return result, fmt.Errorf("flushing trips batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("committing transaction: %w", err)
	}

	i.db.Logger().Info("Import completed successfully",
		"stations", result.Stations,
		"trips", result.Trips,
		"skipped", result.Skipped)

	return result, nil
}

type batchInserter struct {
	tableName  string
	columns    []string
	values     []interface{}
	valueCount int
	batchSize  int
	tx         *sql.Tx
}

func newBatchInserter(tableName string, columns []string, batchSize int) *batchInserter {
	return &batchInserter{
		tableName: tableName,
		columns:   columns,
		values:    make([]interface{}, 0, batchSize*len(columns)),
		batchSize: batchSize,
	}
}

func (b *batchInserter) Add(ctx context.Context, values ...interface{}) error {
	if len(values) != len(b.columns) {
		return fmt.Errorf("%s: expected %d values, got %d", b.tableName, len(b.columns), len(values))
	}
	b.values = append(b.values, values...)
	b.valueCount++

	if b.valueCount >= b.batchSize {
		return b.Flush(ctx)
	}

	return nil
}

func (b *batchInserter) Flush(ctx context.Context) error {
	if b.valueCount == 0 {
		return nil
	}

	query := b.buildInsertQuery()
	if _, err := b.tx.ExecContext(ctx, query, b.values...); err != nil {
		return fmt.Errorf("executing batch insert: %w", err)
	}

	b.values = b.values[:0]
	b.valueCount = 0

	return nil
}

func (b *batchInserter) buildInsertQuery() string {
	var sb strings.Builder
	fieldCount := len(b.columns)

	sb.WriteString(fmt.Sprintf("INSERT INTO bikeshare.%s (%s) VALUES ",
		b.tableName,
		strings.Join(b.columns, ", ")))

	for i := 0; i < b.valueCount; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < fieldCount; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("$%d", i*fieldCount+j+1))
		}
		sb.WriteString(")")
	}

	sb.WriteString(" ON CONFLICT DO NOTHING")

	return sb.String()
}
