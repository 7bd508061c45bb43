package models

// Station is a dock location from the station information feed. ID is the
// short code trip records refer to.
type Station struct {
	ID        string  `json:"short_name"`
	StationID string  `json:"station_id"`
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Capacity  int     `json:"capacity"`
}

type StationFeed struct {
	LastUpdated int64           `json:"last_updated"`
	TTL         int             `json:"ttl"`
	Data        StationFeedData `json:"data"`
}

type StationFeedData struct {
	Stations []Station `json:"stations"`
}
