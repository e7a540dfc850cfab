package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Coordinate is an immutable (longitude, latitude) pair. Equality is exact
// value equality on both components.
type Coordinate struct {
	Lon float64
	Lat float64
}

// MarshalJSON encodes the coordinate as a two-element [lon, lat] array,
// matching the wire shape of the station discovery input.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lon, c.Lat})
}

// UnmarshalJSON decodes a two-element [lon, lat] array.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("unmarshal coordinate: %w", err)
	}
	c.Lon = pair[0]
	c.Lat = pair[1]
	return nil
}

// RegionIndex maps a region code (state abbreviation) to the ordered set of
// distinct coordinates recorded for that region. Within a region the sequence
// holds no duplicate coordinates, ordered by first observation across all
// merged sources.
type RegionIndex map[string][]Coordinate

// Regions returns the region codes in sorted order for deterministic
// iteration.
func (idx RegionIndex) Regions() []string {
	regions := make([]string, 0, len(idx))
	for region := range idx {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions
}

// Len returns the total number of coordinates across all regions.
func (idx RegionIndex) Len() int {
	total := 0
	for _, coords := range idx {
		total += len(coords)
	}
	return total
}

// AllowList is an optional set of region codes. A nil AllowList permits every
// region.
type AllowList map[string]struct{}

// NewAllowList builds an AllowList from region codes. Returns nil for an
// empty input, meaning no filtering.
func NewAllowList(regions []string) AllowList {
	if len(regions) == 0 {
		return nil
	}
	allow := make(AllowList, len(regions))
	for _, region := range regions {
		allow[region] = struct{}{}
	}
	return allow
}

// Allows reports whether the region passes the filter.
func (a AllowList) Allows(region string) bool {
	if a == nil {
		return true
	}
	_, ok := a[region]
	return ok
}
