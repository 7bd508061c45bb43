package store

import (
	"context"
	"fmt"

	"github.com/bikeshare-traffic/internal/common/db"
	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

// Schema holds raw station metadata and trip records. Derived traffic is never stored.
const Schema = `
CREATE SCHEMA IF NOT EXISTS bikeshare;

CREATE TABLE IF NOT EXISTS bikeshare.stations (
	short_name TEXT PRIMARY KEY,
	station_id TEXT,
	name       TEXT NOT NULL DEFAULT '',
	lat        DOUBLE PRECISION NOT NULL,
	lon        DOUBLE PRECISION NOT NULL,
	capacity   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS bikeshare.trips (
	ride_id          TEXT PRIMARY KEY,
	rideable_type    TEXT,
	start_station_id TEXT NOT NULL,
	end_station_id   TEXT NOT NULL,
	started_at       TIMESTAMPTZ NOT NULL,
	ended_at         TIMESTAMPTZ NOT NULL,
	member_casual    TEXT
);
`

type Store struct {
	db *db.DB
}

func New(database *db.DB) *Store {
	return &Store{db: database}
}

// EnsureSchema creates the bikeshare schema and tables when missing
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB().ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// LoadStations returns every station ordered by short name
func (s *Store) LoadStations(ctx context.Context) ([]models.Station, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT short_name, COALESCE(station_id, ''), name, lat, lon, capacity
		FROM bikeshare.stations
		ORDER BY short_name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var st models.Station
		if err := rows.Scan(&st.ID, &st.StationID, &st.Name, &st.Lat, &st.Lon, &st.Capacity); err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stations: %w", err)
	}

	s.db.Logger().Info("Stations loaded from database", "stations", len(stations))
	return stations, nil
}

// LoadTrips returns every stored trip
func (s *Store) LoadTrips(ctx context.Context) ([]models.Trip, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT ride_id, COALESCE(rideable_type, ''), start_station_id, end_station_id,
		       started_at, ended_at, COALESCE(member_casual, '')
		FROM bikeshare.trips
	`)
	if err != nil {
		return nil, fmt.Errorf("querying trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(&t.RideID, &t.RideableType, &t.StartStationID, &t.EndStationID,
			&t.StartedAt, &t.EndedAt, &t.MemberType); err != nil {
			return nil, fmt.Errorf("scanning trip: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trips: %w", err)
	}

	s.db.Logger().Info("Trips loaded from database", "trips", len(trips))
	return trips, nil
}
