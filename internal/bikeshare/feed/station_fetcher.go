package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bikeshare-traffic/internal/common/logger"
	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

const (
	httpTimeout  = 30 * time.Second
	maxErrorBody = 512
	userAgent    = "bikemap/1.0"
)

type HTTPStationFetcher struct {
	client *http.Client
	logger logger.Logger
}

func NewHTTPStationFetcher(logger logger.Logger) *HTTPStationFetcher {
	return &HTTPStationFetcher{
		client: &http.Client{
			Timeout: httpTimeout,
		},
		logger: logger,
	}
}

// FetchStations downloads a station information feed. Stations without a short
// name cannot be matched against trips and are skipped.
func (f *HTTPStationFetcher) FetchStations(ctx context.Context, url string) ([]models.Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	f.logger.Debug("Fetching station feed", "url", url)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("Failed to execute request", "url", url, "error", err)
		return nil, fmt.Errorf("executing request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		f.logger.Error("Station feed returned error status",
			"status_code", resp.StatusCode,
			"url", url,
			"response_body", string(body))
		return nil, fmt.Errorf("station feed returned status %d: %s", resp.StatusCode, string(body))
	}

	var result models.StationFeed
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding station feed: %w", err)
	}

	stations := make([]models.Station, 0, len(result.Data.Stations))
	skipped := 0
	for _, st := range result.Data.Stations {
		if st.ID == "" {
			skipped++
			continue
		}
		stations = append(stations, st)
	}

	if len(stations) == 0 {
		return nil, fmt.Errorf("station feed %s contains no usable stations", url)
	}

	f.logger.Info("Station feed fetched",
		"stations", len(stations),
		"skipped", skipped,
		"last_updated", time.Unix(result.LastUpdated, 0).UTC())

	return stations, nil
}
