package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bikeshare-traffic/internal/trafficmap"
)

type mapOutput struct {
	TimeFilter int                 `json:"time_filter"`
	TimeLabel  string              `json:"time_label"`
	Trips      int                 `json:"trips"`
	MaxRadius  float64             `json:"max_radius"`
	Markers    []trafficmap.Marker `json:"markers"`
}

func writeJSON(w io.Writer, m *trafficmap.Map, markers []trafficmap.Marker) error {
	if markers == nil {
		markers = []trafficmap.Marker{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(mapOutput{
		TimeFilter: m.TimeFilter(),
		TimeLabel:  m.TimeLabel(),
		Trips:      m.TripCount(),
		MaxRadius:  m.RadiusScale().RangeMax,
		Markers:    markers,
	})
}

func writeTable(w io.Writer, m *trafficmap.Map, markers []trafficmap.Marker) error {
	if _, err := fmt.Fprintf(w, "Filter by time: %s\n\n", m.TimeLabel()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATION\tNAME\tX\tY\tRADIUS\tFLOW\tTRAFFIC")
	for _, mk := range markers {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%.2f\t%.1f\t%s\n",
			mk.StationID, mk.Name, mk.X, mk.Y, mk.Radius, mk.Flow, mk.Tooltip)
	}
	return tw.Flush()
}
