package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshare-traffic/internal/bikeshare/feed"
	"github.com/bikeshare-traffic/internal/bikeshare/parser"
	"github.com/bikeshare-traffic/internal/common/logger"
	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

type stationFunc func(ctx context.Context) ([]models.Station, error)

func (f stationFunc) LoadStations(ctx context.Context) ([]models.Station, error) { return f(ctx) }

type tripFunc func(ctx context.Context) ([]models.Trip, error)

func (f tripFunc) LoadTrips(ctx context.Context) ([]models.Trip, error) { return f(ctx) }

func TestLoadWaitsForBoth(t *testing.T) {
	release := make(chan struct{})
	stations := stationFunc(func(ctx context.Context) ([]models.Station, error) {
		return []models.Station{{ID: "A"}}, nil
	})
	trips := tripFunc(func(ctx context.Context) ([]models.Trip, error) {
		<-release
		return []models.Trip{{StartStationID: "A", EndStationID: "A"}}, nil
	})

	done := make(chan *Data)
	go func() {
		data, err := Load(context.Background(), stations, trips, logger.Nop())
		assert.NoError(t, err)
		done <- data
	}()

	select {
	case <-done:
		t.Fatal("Load returned before the trip source finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	data := <-done
	require.NotNil(t, data)
	assert.Len(t, data.Stations, 1)
	assert.Len(t, data.Trips, 1)
}

func TestLoadFailsWhenOneSourceFails(t *testing.T) {
	boom := errors.New("boom")
	stations := stationFunc(func(ctx context.Context) ([]models.Station, error) {
		return []models.Station{{ID: "A"}}, nil
	})
	trips := tripFunc(func(ctx context.Context) ([]models.Trip, error) {
		return nil, boom
	})

	data, err := Load(context.Background(), stations, trips, logger.Nop())
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.ErrorIs(t, err, boom)
}

func TestLoadFailureCancelsOtherSource(t *testing.T) {
	stations := stationFunc(func(ctx context.Context) ([]models.Station, error) {
		return nil, errors.New("feed down")
	})
	trips := tripFunc(func(ctx context.Context) ([]models.Trip, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := Load(context.Background(), stations, trips, logger.Nop())
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSources(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stations.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"stations":[{"short_name":"A","lat":42.1,"lon":-71.1}]}}`))
	})
	mux.HandleFunc("/data/trips-2024-03.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("started_at,ended_at,start_station_id,end_station_id\n" +
			"2024-03-01 08:20:00,2024-03-01 08:25:00,A,A\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	log := logger.Nop()
	tripSource := &HTTPTripSource{
		Downloader: feed.NewHTTPDownloader(log, time.Minute),
		Parser:     parser.New(log, time.UTC),
		URL:        srv.URL + "/data/trips-2024-03.csv",
		Dir:        t.TempDir(),
	}
	stationSource := &HTTPStationSource{Fetcher: feed.NewHTTPStationFetcher(log), URL: srv.URL + "/stations.json"}

	data, err := Load(context.Background(), stationSource, tripSource, log)
	require.NoError(t, err)
	assert.Equal(t, "A", data.Stations[0].ID)
	require.Len(t, data.Trips, 1)
	assert.Equal(t, 500, data.Trips[0].StartMinute(time.UTC))
	assert.Equal(t, "trips-2024-03.csv", tripSource.Path()[len(tripSource.Dir)+1:])
}
