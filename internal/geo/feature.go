// Package geo turns a world-geometry document into renderable country shapes.
//
// It covers three things:
//   - decoding: GeoJSON FeatureCollections (via paulmach/go.geojson) and
//     TopoJSON topologies such as world-atlas' countries-110m.json, which are
//     converted into the same go.geojson types
//   - projection: an orthographic projection with d3-compatible rotation
//   - path data: SVG "d" strings for polygons, lines, and the sphere outline
package geo

import (
	"fmt"
	"strconv"

	geojson "github.com/paulmach/go.geojson"
)

// CountryFeature is one country: its identifier (used verbatim as the search
// term when clicked), an optional display name, and its shape.
//
// Features are produced once by the Loader and never modified afterwards.
type CountryFeature struct {
	ID       string
	Name     string
	Geometry *geojson.Geometry
}

// featureFromGeoJSON converts a decoded feature. It reports false for
// features that are not (Multi)Polygons or that have no usable identifier.
func featureFromGeoJSON(f *geojson.Feature) (CountryFeature, bool) {
	if f == nil || f.Geometry == nil {
		return CountryFeature{}, false
	}
	if !f.Geometry.IsPolygon() && !f.Geometry.IsMultiPolygon() {
		return CountryFeature{}, false
	}

	name := stringProperty(f.Properties, "name")
	id := formatID(f.ID)
	if id == "" {
		id = stringProperty(f.Properties, "id")
	}
	if id == "" {
		id = name
	}
	if id == "" {
		return CountryFeature{}, false
	}

	return CountryFeature{ID: id, Name: name, Geometry: f.Geometry}, true
}

// formatID renders a GeoJSON/TopoJSON id. Numeric ids ("840" in world-atlas
// is sometimes written as the number 840) are printed without decimals.
func formatID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

func stringProperty(props map[string]interface{}, key string) string {
	if props == nil {
		return ""
	}
	if v, ok := props[key]; ok && v != nil {
		return formatID(v)
	}
	return ""
}
