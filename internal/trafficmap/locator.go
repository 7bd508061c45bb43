package trafficmap

import (
	"github.com/tidwall/rtree"

	"github.com/bikeshare-traffic/internal/viewport"
	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

// stationLocator answers which stations fall inside a geographic rectangle
type stationLocator struct {
	tree rtree.RTree
}

func newStationLocator(stations []models.Station) *stationLocator {
	l := &stationLocator{}
	for i, st := range stations {
		pt := [2]float64{st.Lon, st.Lat}
		l.tree.Insert(pt, pt, i)
	}
	return l
}

// within returns the positions in the station list of stations inside b
func (l *stationLocator) within(b viewport.Bounds) []int {
	var result []int
	l.tree.Search(
		[2]float64{b.SouthWest.Lon, b.SouthWest.Lat},
		[2]float64{b.NorthEast.Lon, b.NorthEast.Lat},
		func(min, max [2]float64, data interface{}) bool {
			if i, ok := data.(int); ok {
				result = append(result, i)
			}
			return true
		},
	)
	return result
}
