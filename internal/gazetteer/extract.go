// Package gazetteer loads geographic reference sources and produces the
// canonical region-to-coordinates index.
package gazetteer

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/GNSkier/MoonRabbit/internal/domain"
	"github.com/GNSkier/MoonRabbit/internal/tabular"
)

// Primary gazetteer schema. The Census file is tab-delimited with these exact
// column names (after header trimming).
const (
	regionColumn    = "USPS"
	longitudeColumn = "INTPTLONG"
	latitudeColumn  = "INTPTLAT"
)

// secondaryRegionColumns are the exact (case-sensitive) candidate names for
// the region column of a supplemental source, tried in order.
var secondaryRegionColumns = []string{"State", "USPS", "state", "usps"}

// SourceNotFoundError reports a named input file that could not be opened.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s: %v", e.Path, e.Err)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }

// SchemaError reports required columns missing from the primary gazetteer.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("gazetteer missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Extractor builds a RegionIndex from a mandatory gazetteer file and an
// optional supplemental coordinate source.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract loads the gazetteer, optionally merges a supplemental source, and
// returns the combined index. A missing gazetteer file or missing required
// gazetteer columns is fatal. Every supplemental deficiency short of an
// unopenable file (no region column, no coordinate columns) degrades to
// "supplement ignored" and returns the primary index alone.
func (e *Extractor) Extract(gazetteerPath, supplementPath string, allow domain.AllowList) (domain.RegionIndex, error) {
	primary, err := e.loadPrimary(gazetteerPath, allow)
	if err != nil {
		return nil, err
	}

	if supplementPath == "" {
		return primary, nil
	}

	secondary, err := e.loadSupplement(supplementPath, allow)
	if err != nil {
		return nil, err
	}
	if secondary == nil {
		return primary, nil
	}

	e.logger.Info("merging supplemental coordinates",
		"regions", len(secondary),
		"coordinates", secondary.Len(),
	)
	return primary.Merge(secondary), nil
}

// loadPrimary reads the tab-delimited Latin-1 gazetteer and indexes it.
func (e *Extractor) loadPrimary(path string, allow domain.AllowList) (domain.RegionIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceNotFoundError{Path: path, Err: err}
	}
	defer f.Close()

	// The Census publishes the gazetteer as Latin-1.
	tbl, err := tabular.Read(charmap.ISO8859_1.NewDecoder().Reader(f), '\t')
	if err != nil {
		return nil, fmt.Errorf("read gazetteer %s: %w", path, err)
	}

	var missing []string
	for _, required := range []string{regionColumn, longitudeColumn, latitudeColumn} {
		if !slices.Contains(tbl.Columns, required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	tbl = filterByRegion(tbl, regionColumn, allow)
	idx := domain.BuildRegionIndex(tbl, regionColumn, longitudeColumn, latitudeColumn)

	e.logger.Info("gazetteer indexed",
		"path", path,
		"rows", len(tbl.Rows),
		"regions", len(idx),
		"coordinates", idx.Len(),
	)
	return idx, nil
}

// loadSupplement reads an arbitrary-schema delimited source. Returns a nil
// index (and nil error) when the source carries no recognizable region or
// coordinate columns.
func (e *Extractor) loadSupplement(path string, allow domain.AllowList) (domain.RegionIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceNotFoundError{Path: path, Err: err}
	}
	defer f.Close()

	tbl, err := tabular.ReadAuto(f)
	if err != nil {
		e.logger.Info("supplement unreadable, skipping", "path", path, "error", err)
		return nil, nil
	}

	regionCol, ok := resolveRegionColumn(tbl.Columns)
	if !ok {
		e.logger.Info("supplement has no region column, skipping", "path", path)
		return nil, nil
	}

	lonCol, latCol, ok := domain.DetectCoordinateColumns(tbl.Columns)
	if !ok {
		e.logger.Info("supplement has no coordinate columns, skipping", "path", path)
		return nil, nil
	}

	tbl = filterByRegion(tbl, regionCol, allow)
	return domain.BuildRegionIndex(tbl, regionCol, lonCol, latCol), nil
}

// resolveRegionColumn returns the first exact candidate present in columns.
func resolveRegionColumn(columns []string) (string, bool) {
	for _, candidate := range secondaryRegionColumns {
		if slices.Contains(columns, candidate) {
			return candidate, true
		}
	}
	return "", false
}

func filterByRegion(tbl tabular.Table, regionCol string, allow domain.AllowList) tabular.Table {
	if allow == nil {
		return tbl
	}
	return tbl.Filter(func(r tabular.Row) bool {
		region, _ := r.Get(regionCol)
		return allow.Allows(region)
	})
}
