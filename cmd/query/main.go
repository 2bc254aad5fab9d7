package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/woozymasta/geoindex/internal/config"
	"github.com/woozymasta/geoindex/internal/logger"
	"github.com/woozymasta/geoindex/internal/processor"
	"github.com/woozymasta/geoindex/pkg/rtree"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Mode        string `short:"m" long:"mode"        description:"Query mode" choice:"search" choice:"line" choice:"nearest" default:"search"`
	BBox        string `short:"b" long:"bbox"        description:"Search rectangle minLat,minLon,maxLat,maxLon"`
	From        string `long:"from"                  description:"Line start lat,lon"`
	To          string `long:"to"                    description:"Line end lat,lon"`
	Point       string `long:"point"                 description:"Nearest query point lat,lon"`
	Format      string `short:"f" long:"format"      description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Concurrency int    `short:"j" long:"concurrency" env:"CONCURRENCY" description:"Parallel layer downloads" default:"4"`
}

// Result is one matched feature.
type Result struct {
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Layer      string         `json:"layer" yaml:"layer"`
	Rect       rtree.GeoRect  `json:"rect" yaml:"rect"`
	Key        int            `json:"key" yaml:"key"`
}

func main() {
	_ = godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto: make(map[string]func(string, *tls.Conn) http.RoundTripper),
		},
		Timeout: 60 * time.Second,
	}

	catalog, err := processor.Build(context.Background(), client, cfg, opts.Concurrency)
	if err != nil {
		log.Warn().Err(err).Msg("Some layers failed to load")
	}

	results, err := run(catalog, opts)
	if err != nil {
		log.Fatal().Err(err).Str("mode", opts.Mode).Msg("Query failed")
	}

	log.Debug().Str("mode", opts.Mode).Int("results", len(results)).Msg("Query finished")

	var out []byte
	if opts.Format == "yaml" {
		out, err = yaml.Marshal(results)
	} else {
		out, err = json.MarshalIndent(results, "", "  ")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal results")
	}

	fmt.Println(string(out))
}

func run(catalog *processor.Catalog, opts Options) ([]Result, error) {
	switch opts.Mode {
	case "line":
		from, err := parseCoords(opts.From, 2)
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		to, err := parseCoords(opts.To, 2)
		if err != nil {
			return nil, fmt.Errorf("--to: %w", err)
		}
		return toResults(catalog.Line(from[0], from[1], to[0], to[1])), nil

	case "nearest":
		p, err := parseCoords(opts.Point, 2)
		if err != nil {
			return nil, fmt.Errorf("--point: %w", err)
		}
		f, err := catalog.Nearest(p[0], p[1])
		if errors.Is(err, processor.ErrEmptyIndex) {
			return []Result{}, nil
		}
		if err != nil {
			return nil, err
		}
		return toResults([]*processor.Feature{f}), nil

	default:
		b, err := parseCoords(opts.BBox, 4)
		if err != nil {
			return nil, fmt.Errorf("--bbox: %w", err)
		}
		return toResults(catalog.Search(rtree.Rect(b[0], b[1], b[2], b[3]))), nil
	}
}

func parseCoords(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated numbers, got %q", n, s)
	}

	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func toResults(features []*processor.Feature) []Result {
	out := make([]Result, 0, len(features))
	for _, f := range features {
		out = append(out, Result{
			Key:        f.Key,
			Layer:      f.Layer,
			Rect:       f.Rect,
			Properties: f.Feature.Properties,
		})
	}
	return out
}
