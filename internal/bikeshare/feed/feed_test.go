package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshare-traffic/internal/common/logger"
)

const stationFeedJSON = `{
  "last_updated": 1709251200,
  "ttl": 5,
  "data": {
    "stations": [
      {"station_id": "a1", "short_name": "M32006", "name": "MIT at Mass Ave", "lat": 42.3581, "lon": -71.0936, "capacity": 27},
      {"station_id": "a2", "short_name": "", "name": "Warehouse", "lat": 42.0, "lon": -71.0},
      {"station_id": "a3", "short_name": "M32018", "name": "Kendall T", "lat": 42.3625, "lon": -71.0865, "capacity": 15}
    ]
  }
}`

func TestFetchStations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(stationFeedJSON))
	}))
	defer srv.Close()

	stations, err := NewHTTPStationFetcher(logger.Nop()).FetchStations(context.Background(), srv.URL)
	require.NoError(t, err)

	require.Len(t, stations, 2)
	assert.Equal(t, "M32006", stations[0].ID)
	assert.Equal(t, "MIT at Mass Ave", stations[0].Name)
	assert.Equal(t, 42.3581, stations[0].Lat)
	assert.Equal(t, -71.0936, stations[0].Lon)
	assert.Equal(t, 27, stations[0].Capacity)
	assert.Equal(t, "M32018", stations[1].ID)
}

func TestFetchStationsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPStationFetcher(logger.Nop()).FetchStations(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "maintenance")
}

func TestFetchStationsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	_, err := NewHTTPStationFetcher(logger.Nop()).FetchStations(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchStationsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"stations":[]}}`))
	}))
	defer srv.Close()

	_, err := NewHTTPStationFetcher(logger.Nop()).FetchStations(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestDownload(t *testing.T) {
	body := "ride_id,started_at\nr1,2024-03-01 08:20:00\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "nested", "trips.csv")
	err := NewHTTPDownloader(logger.Nop(), time.Minute).Download(context.Background(), srv.URL, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(dest), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDownloadErrorLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "trips.csv")
	err := NewHTTPDownloader(logger.Nop(), time.Minute).Download(context.Background(), srv.URL, dest)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadRevalidatesCachedExport(t *testing.T) {
	modified := time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if since, err := http.ParseTime(r.Header.Get("If-Modified-Since")); err == nil && !modified.After(since) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Last-Modified", modified.Format(http.TimeFormat))
		_, _ = w.Write([]byte("ride_id\nr1\n"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "trips.csv")
	d := NewHTTPDownloader(logger.Nop(), time.Minute)

	require.NoError(t, d.Download(context.Background(), srv.URL, dest))
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(modified))

	// unchanged upstream keeps the cached file
	require.NoError(t, os.WriteFile(dest, []byte("cached"), 0644))
	require.NoError(t, os.Chtimes(dest, modified, modified))
	require.NoError(t, d.Download(context.Background(), srv.URL, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "cached", string(data))
	assert.Equal(t, 2, requests)
}
