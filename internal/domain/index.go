package domain

import (
	"strconv"
	"strings"

	"github.com/GNSkier/MoonRabbit/internal/tabular"
)

// coordinateColumnPairs is the priority-ordered list of recognized
// (longitude, latitude) column name pairs. Order is load-bearing: a source may
// contain several candidate pairs and the first complete pair wins.
var coordinateColumnPairs = [][2]string{
	{"longitude", "latitude"},
	{"lon", "lat"},
	{"long", "lat"},
	{"intptlong", "intptlat"},
}

// CoerceFloat converts free-form text to a float64. Returns false for empty
// strings, non-numeric garbage, or anything else strconv rejects. Total over
// all inputs; never panics.
func CoerceFloat(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// DetectCoordinateColumns resolves the longitude and latitude column names
// from the available columns, matching case-insensitively against the fixed
// pair list. Returns the original (case-preserved) column names of the first
// pair for which both names are present, or ok=false when none match.
func DetectCoordinateColumns(columns []string) (lonCol, latCol string, ok bool) {
	lower := make(map[string]string, len(columns))
	for _, col := range columns {
		lower[strings.ToLower(col)] = col
	}
	for _, pair := range coordinateColumnPairs {
		lon, lonOK := lower[pair[0]]
		lat, latOK := lower[pair[1]]
		if lonOK && latOK {
			return lon, lat, true
		}
	}
	return "", "", false
}

// BuildRegionIndex groups a table's rows into a RegionIndex. A row contributes
// only if its region value is present and non-empty and both coordinates
// coerce to numbers; anything else is dropped without error. Within a region,
// coordinates keep source row order and the first occurrence of a duplicate
// wins.
func BuildRegionIndex(tbl tabular.Table, regionCol, lonCol, latCol string) RegionIndex {
	idx := make(RegionIndex)
	seen := make(map[string]map[Coordinate]struct{})

	for _, row := range tbl.Rows {
		region, ok := row.Get(regionCol)
		if !ok || region == "" {
			continue
		}
		lonRaw, _ := row.Get(lonCol)
		latRaw, _ := row.Get(latCol)
		lon, lonOK := CoerceFloat(lonRaw)
		lat, latOK := CoerceFloat(latRaw)
		if !lonOK || !latOK {
			continue
		}

		coord := Coordinate{Lon: lon, Lat: lat}
		if seen[region] == nil {
			seen[region] = make(map[Coordinate]struct{})
		}
		if _, dup := seen[region][coord]; dup {
			continue
		}
		seen[region][coord] = struct{}{}
		idx[region] = append(idx[region], coord)
	}
	return idx
}

// Merge folds an additional index into the receiver and returns it. Regions
// new to the base are copied in the additional index's coordinate order;
// for regions present in both, only coordinates absent from the base sequence
// are appended, in the additional index's order. The base sequence is never
// reordered or truncated. The receiver is mutated in place, so callers must
// treat the pre-merge value as consumed.
func (idx RegionIndex) Merge(additional RegionIndex) RegionIndex {
	for region, coords := range additional {
		existing, ok := idx[region]
		if !ok {
			idx[region] = append([]Coordinate(nil), coords...)
			continue
		}
		seen := make(map[Coordinate]struct{}, len(existing))
		for _, c := range existing {
			seen[c] = struct{}{}
		}
		for _, c := range coords {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			idx[region] = append(idx[region], c)
		}
	}
	return idx
}
