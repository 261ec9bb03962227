package geo

import (
	"encoding/json"
	"fmt"
	"sort"

	geojson "github.com/paulmach/go.geojson"
)

// TopoJSON support.
//
// world-atlas publishes countries as a TopoJSON Topology: shared borders are
// stored once in a top-level "arcs" array, and each polygon ring is a list of
// arc indexes. Negative index i means "arc ~i, reversed". When a "transform"
// is present the arc positions are quantized and delta-encoded.
//
// Format reference: https://github.com/topojson/topojson-specification

type topology struct {
	Type      string                `json:"type"`
	Transform *topoTransform        `json:"transform"`
	Arcs      [][][]float64         `json:"arcs"`
	Objects   map[string]topoObject `json:"objects"`
}

type topoTransform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoObject struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	Arcs       json.RawMessage        `json:"arcs"`
	Geometries []topoObject           `json:"geometries"`
}

// preferredObject is the object world-atlas stores countries under.
const preferredObject = "countries"

// topologyToFeatures converts the countries object of a topology into
// GeoJSON features, in the order they appear in the document.
func topologyToFeatures(t *topology) ([]*geojson.Feature, error) {
	obj, err := pickObject(t.Objects)
	if err != nil {
		return nil, err
	}

	arcs := decodeArcs(t.Arcs, t.Transform)

	var geoms []topoObject
	if obj.Type == "GeometryCollection" {
		geoms = obj.Geometries
	} else {
		geoms = []topoObject{obj}
	}

	features := make([]*geojson.Feature, 0, len(geoms))
	for i, g := range geoms {
		geometry, err := g.geometry(arcs)
		if err != nil {
			return nil, fmt.Errorf("geo: topology geometry %d: %w", i, err)
		}
		if geometry == nil {
			continue // null or unsupported geometry type
		}
		f := geojson.NewFeature(geometry)
		f.ID = g.ID
		f.Properties = g.Properties
		if f.Properties == nil {
			f.Properties = map[string]interface{}{}
		}
		features = append(features, f)
	}
	return features, nil
}

func pickObject(objects map[string]topoObject) (topoObject, error) {
	if obj, ok := objects[preferredObject]; ok {
		return obj, nil
	}
	if len(objects) == 0 {
		return topoObject{}, fmt.Errorf("geo: topology has no objects")
	}
	names := make([]string, 0, len(objects))
	for name := range objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return objects[names[0]], nil
}

// decodeArcs resolves quantization and delta encoding into absolute
// [lon, lat] positions.
func decodeArcs(raw [][][]float64, tr *topoTransform) [][][]float64 {
	out := make([][][]float64, len(raw))
	for i, arc := range raw {
		positions := make([][]float64, 0, len(arc))
		var x, y float64
		for _, p := range arc {
			if len(p) < 2 {
				continue
			}
			if tr == nil {
				positions = append(positions, []float64{p[0], p[1]})
				continue
			}
			x += p[0]
			y += p[1]
			positions = append(positions, []float64{
				x*tr.Scale[0] + tr.Translate[0],
				y*tr.Scale[1] + tr.Translate[1],
			})
		}
		out[i] = positions
	}
	return out
}

func (o topoObject) geometry(arcs [][][]float64) (*geojson.Geometry, error) {
	switch o.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(o.Arcs, &rings); err != nil {
			return nil, fmt.Errorf("decoding polygon arcs: %w", err)
		}
		polygon, err := stitchPolygon(rings, arcs)
		if err != nil {
			return nil, err
		}
		return geojson.NewPolygonGeometry(polygon), nil

	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(o.Arcs, &polys); err != nil {
			return nil, fmt.Errorf("decoding multipolygon arcs: %w", err)
		}
		multi := make([][][][]float64, 0, len(polys))
		for _, rings := range polys {
			polygon, err := stitchPolygon(rings, arcs)
			if err != nil {
				return nil, err
			}
			multi = append(multi, polygon)
		}
		return geojson.NewMultiPolygonGeometry(multi...), nil

	default:
		return nil, nil
	}
}

func stitchPolygon(rings [][]int, arcs [][][]float64) ([][][]float64, error) {
	polygon := make([][][]float64, 0, len(rings))
	for _, ring := range rings {
		stitched, err := stitchRing(ring, arcs)
		if err != nil {
			return nil, err
		}
		polygon = append(polygon, stitched)
	}
	return polygon, nil
}

// stitchRing concatenates the referenced arcs. Consecutive arcs share an
// endpoint, so every arc after the first drops its first position.
func stitchRing(indexes []int, arcs [][][]float64) ([][]float64, error) {
	var ring [][]float64
	for n, idx := range indexes {
		reversed := idx < 0
		if reversed {
			idx = ^idx
		}
		if idx >= len(arcs) {
			return nil, fmt.Errorf("arc index %d out of range (%d arcs)", idx, len(arcs))
		}

		arc := arcs[idx]
		if reversed {
			arc = reversePositions(arc)
		}
		if n > 0 && len(arc) > 0 {
			arc = arc[1:]
		}
		ring = append(ring, arc...)
	}
	return ring, nil
}

func reversePositions(in [][]float64) [][]float64 {
	out := make([][]float64, len(in))
	for i, p := range in {
		out[len(in)-1-i] = p
	}
	return out
}
