// Command counties selects the soybean belt counties from a Census county
// gazetteer and writes them as CSV.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/GNSkier/MoonRabbit/internal/counties"
	"github.com/GNSkier/MoonRabbit/internal/tabular"
	"golang.org/x/text/encoding/charmap"
)

func main() {
	var (
		gazetteerPath = flag.String("gazetteer", "", "path to the tab-delimited county gazetteer file (required)")
		outPath       = flag.String("out", "soybean_counties.csv", "output CSV path")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *gazetteerPath == "" {
		logger.Error("missing required -gazetteer flag")
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*gazetteerPath)
	if err != nil {
		logger.Error("open gazetteer", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	tbl, err := tabular.Read(charmap.ISO8859_1.NewDecoder().Reader(f), '\t')
	if err != nil {
		logger.Error("read gazetteer", "error", err)
		os.Exit(1)
	}

	selected := counties.SoybeanBelt(tbl)

	out, err := os.Create(*outPath)
	if err != nil {
		logger.Error("create output", "error", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := counties.WriteCSV(out, selected); err != nil {
		logger.Error("write csv", "error", err)
		os.Exit(1)
	}

	byState := make(map[string]int)
	for _, c := range selected {
		byState[c.State]++
	}
	fmt.Printf("wrote %s: %d counties across %d states\n", *outPath, len(selected), len(byState))
}
