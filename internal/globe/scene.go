package globe

import (
	"html/template"
	"io"
	"sync"

	geojson "github.com/paulmach/go.geojson"

	"github.com/sakif/scholarship-globe/internal/geo"
)

// scaleDivisor sizes the globe relative to the canvas height.
const scaleDivisor = 2.2

// Shape is one rendered country path, tagged with its identifier so that
// pointer events on it can be mapped back to a country.
type Shape struct {
	ID   string
	Name string
	D    string // SVG path data; empty when the country is behind the globe

	rings [][]geo.Point
}

// Scene is the rendered globe: a background sphere, the graticule, and one
// shape per country, all re-projected together on every Redraw.
//
// REDRAW COST:
// Every path is re-projected on every rotation change, so a redraw costs
// O(total points). That is fine for world-atlas' 110m data (~10k points);
// there is no incremental re-projection.
type Scene struct {
	mu sync.RWMutex

	width, height float64
	proj          *geo.Orthographic
	countries     []geo.CountryFeature
	graticule     *geojson.Geometry

	sphere  string
	grid    string
	shapes  []Shape
	redraws int
}

// NewScene creates a scene for a width×height canvas. countries is shared
// read-only between scenes.
func NewScene(width, height float64, countries []geo.CountryFeature) *Scene {
	return &Scene{
		width:     width,
		height:    height,
		proj:      geo.NewOrthographic(height/scaleDivisor, width/2, height/2),
		countries: countries,
		graticule: geo.Graticule(),
		shapes:    make([]Shape, len(countries)),
	}
}

// Redraw re-projects every path for rotation r.
func (s *Scene) Redraw(r Rotation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.proj.Rotate(r.Lon, r.Lat)
	s.sphere = s.proj.SpherePath()
	s.grid = s.proj.GeometryPath(s.graticule)

	for i, c := range s.countries {
		rings := s.proj.ProjectPolygons(c.Geometry)
		s.shapes[i] = Shape{
			ID:    c.ID,
			Name:  c.Name,
			D:     geo.RingsPath(rings),
			rings: rings,
		}
	}
	s.redraws++
}

// Redraws counts how many times the scene has been re-projected.
func (s *Scene) Redraws() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.redraws
}

// Shapes returns a copy of the current country shapes, in render order.
func (s *Scene) Shapes() []Shape {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Shape, len(s.shapes))
	copy(out, s.shapes)
	return out
}

// HitTest returns the identifier of the country drawn at canvas point
// (x, y). Later shapes are drawn on top, so they are tested first.
func (s *Scene) HitTest(x, y float64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pt := geo.Point{X: x, Y: y}
	for i := len(s.shapes) - 1; i >= 0; i-- {
		if s.shapes[i].ID != "" && containsPoint(s.shapes[i].rings, pt) {
			return s.shapes[i].ID, true
		}
	}
	return "", false
}

// containsPoint is an even-odd ray cast over all rings, so holes (inner
// rings) are excluded naturally.
func containsPoint(rings [][]geo.Point, pt geo.Point) bool {
	inside := false
	for _, ring := range rings {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			a, b := ring[i], ring[j]
			if (a.Y > pt.Y) != (b.Y > pt.Y) &&
				pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
				inside = !inside
			}
		}
	}
	return inside
}

var svgTemplate = template.Must(template.New("globe").Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" id="globe" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">` +
		`<g>` +
		`<path class="sphere" d="{{.Sphere}}" fill="#0f162a" stroke="#fff" stroke-width="0.3"></path>` +
		`<path class="graticule" d="{{.Grid}}" fill="none" stroke="#444" stroke-width="0.5"></path>` +
		`{{range .Shapes}}<path class="country" data-id="{{.ID}}" d="{{.D}}" fill="#4caf50" stroke="#333" stroke-width="0.3"></path>{{end}}` +
		`</g></svg>`))

// WriteSVG renders the current frame.
func (s *Scene) WriteSVG(w io.Writer) error {
	s.mu.RLock()
	data := struct {
		Width, Height float64
		Sphere, Grid  string
		Shapes        []Shape
	}{
		Width:  s.width,
		Height: s.height,
		Sphere: s.sphere,
		Grid:   s.grid,
		Shapes: append([]Shape(nil), s.shapes...),
	}
	s.mu.RUnlock()

	return svgTemplate.Execute(w, data)
}
