// Command extract builds the state coordinate index from a Census gazetteer
// file, optionally merged with a supplemental CSV, and writes it as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/GNSkier/MoonRabbit/internal/domain"
	"github.com/GNSkier/MoonRabbit/internal/gazetteer"
)

func main() {
	var (
		gazetteerPath = flag.String("gazetteer", "", "path to the tab-delimited Census gazetteer file (required)")
		csvPath       = flag.String("csv", "", "optional supplemental CSV with extra coordinates")
		outPath       = flag.String("out", "state_coordinates.json", "output JSON path")
		states        = flag.String("states", "", "comma-separated state codes to keep (default: all)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *gazetteerPath == "" {
		logger.Error("missing required -gazetteer flag")
		flag.Usage()
		os.Exit(2)
	}

	var allow domain.AllowList
	if *states != "" {
		allow = domain.NewAllowList(strings.Split(*states, ","))
	}

	extractor := gazetteer.NewExtractor(logger)
	index, err := extractor.Extract(*gazetteerPath, *csvPath, allow)
	if err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		logger.Error("encode index", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		logger.Error("write output", "error", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s: %d states, %d coordinates\n", *outPath, len(index.Regions()), index.Len())
	for _, region := range index.Regions() {
		fmt.Printf("  %s: %d\n", region, len(index[region]))
	}
}
