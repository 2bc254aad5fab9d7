package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/geoindex/internal/geo"
	"github.com/woozymasta/geoindex/pkg/rtree"

	"github.com/jessevdk/go-flags"
	"github.com/paulmach/orb/geojson"
	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input       string `short:"i" long:"in"           description:"Input GeoJSON file path. Reads from stdin if empty"`
	Output      string `short:"o" long:"out"          description:"Output file path. Writes to stdout if empty"`
	Format      string `short:"f" long:"format"       description:"Output format" choice:"json" choice:"yaml" default:"json"`
	KeyProperty string `short:"k" long:"key-property" description:"Feature property reported as key"`
	Minify      bool   `short:"m" long:"minify"       description:"Minify JSON output"`
}

// Report lists the rectangle of every feature and their union.
type Report struct {
	Bounds   *rtree.GeoRect `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Features []FeatureRect  `json:"features" yaml:"features"`
	Skipped  int            `json:"skipped" yaml:"skipped"`
}

// FeatureRect is the bounding rectangle of one input feature.
type FeatureRect struct {
	Key   *int          `json:"key,omitempty" yaml:"key,omitempty"`
	Name  string        `json:"name,omitempty" yaml:"name,omitempty"`
	Rect  rtree.GeoRect `json:"rect" yaml:"rect"`
	Index int           `json:"index" yaml:"index"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	fc, err := geo.ParseFeatureCollection(inputData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing GeoJSON: %v\n", err)
		os.Exit(1)
	}

	report := buildReport(fc, opts.KeyProperty)

	outputData, err := render(report, opts.Format, opts.Minify)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully wrote %d rectangles to %s (format: %s)\n", len(report.Features), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}

func buildReport(fc *geojson.FeatureCollection, keyProperty string) Report {
	report := Report{Features: make([]FeatureRect, 0, len(fc.Features))}
	total := rtree.NewGeoRect()

	for i, f := range fc.Features {
		rect := geo.BoundsOfFeature(f)
		if !rect.IsValid() {
			report.Skipped++
			continue
		}
		total.Expand(rect)

		fr := FeatureRect{Index: i, Rect: rect}
		if keyProperty != "" {
			if key, ok := geo.FeatureKey(f, keyProperty); ok {
				fr.Key = &key
			}
		}
		if name, ok := f.Properties["name"].(string); ok {
			fr.Name = name
		}

		report.Features = append(report.Features, fr)
	}

	if total.IsValid() {
		report.Bounds = &total
	}

	return report
}

func render(report Report, format string, minified bool) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(report)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil || !minified {
		return data, err
	}

	m := minify.New()
	m.AddFunc("application/json", mjson.Minify)

	return m.Bytes("application/json", data)
}
