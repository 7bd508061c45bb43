package feed

import (
	"context"

	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

type StationFetcher interface {
	FetchStations(ctx context.Context, url string) ([]models.Station, error)
}

type Downloader interface {
	Download(ctx context.Context, url string, destPath string) error
}
