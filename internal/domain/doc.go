// Package domain models geographic reference data for National Weather
// Service (NWS) station ingestion.
//
// # Data Sources
//
// The primary source is the US Census Bureau counties gazetteer, a
// tab-delimited Latin-1 text file published yearly at
// https://www.census.gov/geographies/reference-files/time-series/geo/gazetteer-files.html.
// Relevant columns:
//
//	USPS       two-letter state abbreviation
//	NAME       county name
//	GEOID      five-digit county FIPS code
//	INTPTLAT   internal point latitude
//	INTPTLONG  internal point longitude
//
// The published file carries trailing whitespace in its header names, so
// headers must be trimmed before lookup.
//
// An optional secondary source is any delimited file with a header row that
// carries a state column (one of State, USPS, state, usps) and a recognizable
// longitude/latitude column pair. Coordinate columns are detected by testing
// a fixed priority list of name pairs case-insensitively:
//
//	(longitude, latitude), (lon, lat), (long, lat), (intptlong, intptlat)
//
// # Region Index
//
// Both sources reduce to a RegionIndex: state abbreviation mapped to the
// ordered set of distinct coordinates first observed for that state. Rows
// missing a state value or carrying a non-numeric coordinate are dropped
// silently; malformed data degrades completeness, never the correctness of
// the remaining rows. Region values are opaque text: a numeric-looking
// state code is not normalized, and no two-letter validation is applied.
//
// Coordinates serialize as two-element [lon, lat] JSON arrays, so a
// RegionIndex marshals to the {"IA": [[-93.5, 42.0], ...]} shape consumed by
// the station discovery stage.
package domain
