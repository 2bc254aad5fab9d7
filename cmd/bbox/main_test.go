package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/geoindex/internal/geo"
	"github.com/woozymasta/geoindex/pkg/rtree"
)

const input = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "a", "id": 3}, "geometry": {"type": "Point", "coordinates": [1, 2]}},
    {"type": "Feature", "properties": {}, "geometry": null},
    {"type": "Feature", "properties": {"name": "c"}, "geometry": {"type": "Polygon", "coordinates": [[[10,20],[12,20],[12,25],[10,20]]]}}
  ]
}`

func TestBuildReport(t *testing.T) {
	fc, err := geo.ParseFeatureCollection([]byte(input))
	require.NoError(t, err)

	report := buildReport(fc, "id")
	require.Len(t, report.Features, 2)
	assert.Equal(t, 1, report.Skipped)

	first := report.Features[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "a", first.Name)
	require.NotNil(t, first.Key)
	assert.Equal(t, 3, *first.Key)
	assert.Equal(t, rtree.Rect(2, 1, 2, 1), first.Rect)

	second := report.Features[1]
	assert.Equal(t, 2, second.Index)
	assert.Nil(t, second.Key)
	assert.Equal(t, rtree.Rect(20, 10, 25, 12), second.Rect)

	require.NotNil(t, report.Bounds)
	assert.Equal(t, rtree.Rect(2, 1, 25, 12), *report.Bounds)
}

func TestRender(t *testing.T) {
	fc, err := geo.ParseFeatureCollection([]byte(input))
	require.NoError(t, err)
	report := buildReport(fc, "")

	pretty, err := render(report, "json", false)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  ")

	small, err := render(report, "json", true)
	require.NoError(t, err)
	assert.NotContains(t, string(small), "\n")
	assert.Less(t, len(small), len(pretty))

	var decoded Report
	require.NoError(t, json.Unmarshal(small, &decoded))
	assert.Equal(t, report, decoded)

	y, err := render(report, "yaml", false)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(y), "min_lat:"))

	var fromYAML Report
	require.NoError(t, yaml.Unmarshal(y, &fromYAML))
	assert.Equal(t, report, fromYAML)
}
