// Package counties selects the soybean-belt county set from the Census
// gazetteer: the fully covered states, the eastern portions of the plains
// fringe states, and northern Missouri.
package counties

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/GNSkier/MoonRabbit/internal/domain"
	"github.com/GNSkier/MoonRabbit/internal/tabular"
)

// Gazetteer columns consumed by the selection.
const (
	stateColumn     = "USPS"
	nameColumn      = "NAME"
	geoIDColumn     = "GEOID"
	latitudeColumn  = "INTPTLAT"
	longitudeColumn = "INTPTLONG"
)

var (
	// fullCoverageStates are included county-by-county in their entirety.
	fullCoverageStates = []string{"IA", "MN", "WI", "IL", "IN", "OH"}

	// easternEdgeStates contribute only the counties east of the state's
	// median longitude.
	easternEdgeStates = []string{"ND", "SD", "NE", "KS", "MI"}
)

// County is one selected gazetteer county.
type County struct {
	State string
	Name  string
	GeoID string
	Lat   float64
	Lon   float64
}

// SoybeanBelt selects the soybean-growing county set from a gazetteer table:
// all counties of the full-coverage states, counties strictly east of the
// median longitude in the eastern-edge states, and counties strictly north of
// the median latitude in Missouri. Counties are deduplicated by GEOID in
// selection order.
func SoybeanBelt(tbl tabular.Table) []County {
	var selected []County

	for _, state := range fullCoverageStates {
		selected = append(selected, stateCounties(tbl, state)...)
	}
	for _, state := range easternEdgeStates {
		selected = append(selected, easternHalf(tbl, state)...)
	}
	selected = append(selected, northernHalf(tbl, "MO")...)

	seen := make(map[string]struct{}, len(selected))
	unique := selected[:0]
	for _, c := range selected {
		if _, dup := seen[c.GeoID]; dup {
			continue
		}
		seen[c.GeoID] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}

// stateCounties returns every parseable county row for a state.
func stateCounties(tbl tabular.Table, state string) []County {
	var counties []County
	for _, row := range tbl.Rows {
		c, ok := countyFromRow(row, state)
		if !ok {
			continue
		}
		counties = append(counties, c)
	}
	return counties
}

// easternHalf returns the counties of a state whose longitude is strictly
// greater than the state's median longitude.
func easternHalf(tbl tabular.Table, state string) []County {
	all := stateCounties(tbl, state)
	if len(all) == 0 {
		return nil
	}
	lons := make([]float64, len(all))
	for i, c := range all {
		lons[i] = c.Lon
	}
	threshold := median(lons)

	var eastern []County
	for _, c := range all {
		if c.Lon > threshold {
			eastern = append(eastern, c)
		}
	}
	return eastern
}

// northernHalf returns the counties of a state whose latitude is strictly
// greater than the state's median latitude.
func northernHalf(tbl tabular.Table, state string) []County {
	all := stateCounties(tbl, state)
	if len(all) == 0 {
		return nil
	}
	lats := make([]float64, len(all))
	for i, c := range all {
		lats[i] = c.Lat
	}
	threshold := median(lats)

	var northern []County
	for _, c := range all {
		if c.Lat > threshold {
			northern = append(northern, c)
		}
	}
	return northern
}

func countyFromRow(row tabular.Row, state string) (County, bool) {
	if s, _ := row.Get(stateColumn); s != state {
		return County{}, false
	}
	latRaw, _ := row.Get(latitudeColumn)
	lonRaw, _ := row.Get(longitudeColumn)
	lat, latOK := domain.CoerceFloat(latRaw)
	lon, lonOK := domain.CoerceFloat(lonRaw)
	if !latOK || !lonOK {
		return County{}, false
	}
	name, _ := row.Get(nameColumn)
	geoID, _ := row.Get(geoIDColumn)
	return County{State: state, Name: name, GeoID: geoID, Lat: lat, Lon: lon}, true
}

// median returns the middle value of the input; for an even count, the mean
// of the two middle values. The input slice is not modified.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// WriteCSV writes the counties sorted by state then county name, using the
// column layout consumed by the supplemental-source loader.
func WriteCSV(w io.Writer, counties []County) error {
	sorted := append([]County(nil), counties...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].State != sorted[j].State {
			return sorted[i].State < sorted[j].State
		}
		return sorted[i].Name < sorted[j].Name
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"State", "County", "FIPS", "Latitude", "Longitude"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, c := range sorted {
		record := []string{
			c.State,
			c.Name,
			c.GeoID,
			fmt.Sprintf("%g", c.Lat),
			fmt.Sprintf("%g", c.Lon),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write county %s: %w", c.GeoID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
