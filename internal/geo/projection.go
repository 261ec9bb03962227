package geo

import (
	"math"
	"strconv"
	"strings"

	geojson "github.com/paulmach/go.geojson"
)

const radians = math.Pi / 180

// Point is a position on the canvas, in pixels.
type Point struct {
	X, Y float64
}

// Orthographic is an orthographic projection of the globe seen from
// infinitely far away, clipped to the visible hemisphere (clip angle 90°).
//
// ROTATION:
// Rotate(lon, lat) matches d3.geoOrthographic().rotate([lon, lat]): the
// sphere is first spun by lon around the polar axis, then tilted by lat.
// With rotation [0, 0] the point (0°, 0°) faces the viewer.
//
// An Orthographic is not safe for concurrent use; the rotation engine owns it.
type Orthographic struct {
	scale  float64
	center Point

	lambda         float64 // radians
	cosPhi, sinPhi float64
}

// NewOrthographic creates a projection of the given scale (globe radius in
// pixels) centred on (cx, cy).
func NewOrthographic(scale, cx, cy float64) *Orthographic {
	p := &Orthographic{scale: scale, center: Point{X: cx, Y: cy}}
	p.Rotate(0, 0)
	return p
}

// Scale returns the globe radius in pixels.
func (p *Orthographic) Scale() float64 { return p.scale }

// Center returns the canvas position of the globe centre.
func (p *Orthographic) Center() Point { return p.center }

// Rotate sets the rotation, in degrees.
func (p *Orthographic) Rotate(lon, lat float64) {
	p.lambda = lon * radians
	phi := lat * radians
	p.cosPhi = math.Cos(phi)
	p.sinPhi = math.Sin(phi)
}

// spherePoint is a position on the rotated unit sphere: (x, y) on the view
// plane and depth towards the viewer. depth > 0 is the visible hemisphere.
type spherePoint struct {
	x, y, depth float64
}

func (sp spherePoint) visible() bool { return sp.depth > 0 }

// rotate turns (lon, lat) in degrees into view coordinates.
func (p *Orthographic) rotate(lon, lat float64) spherePoint {
	lambda := lon*radians + p.lambda
	phi := lat * radians

	cosPhi := math.Cos(phi)
	vx := math.Cos(lambda) * cosPhi
	vy := math.Sin(lambda) * cosPhi
	vz := math.Sin(phi)

	return spherePoint{
		x:     vy,
		y:     vz*p.cosPhi + vx*p.sinPhi,
		depth: vx*p.cosPhi - vz*p.sinPhi,
	}
}

// Project maps (lon, lat) in degrees to the canvas.
func (p *Orthographic) Project(lon, lat float64) (Point, bool) {
	sp := p.rotate(lon, lat)
	return p.toCanvas(sp.x, sp.y), sp.visible()
}

func (p *Orthographic) toCanvas(x, y float64) Point {
	return Point{
		X: p.center.X + x*p.scale,
		Y: p.center.Y - y*p.scale,
	}
}

// horizonCrossing is where the great-circle arc from a to b crosses the
// horizon. Exactly one of a and b must be visible. The chord point with zero
// depth lies in the plane of the arc, so normalising it lands on the arc.
func horizonCrossing(a, b spherePoint) spherePoint {
	t := a.depth / (a.depth - b.depth)
	x := a.x + t*(b.x-a.x)
	y := a.y + t*(b.y-a.y)
	if r := math.Hypot(x, y); r > 0 {
		x, y = x/r, y/r
	}
	return spherePoint{x: x, y: y}
}

// horizonStep is the angular spacing of points along a horizon arc.
const horizonStep = 5 * radians

// appendHorizonArc appends the points strictly between from and to along
// the shorter arc of the horizon.
func (p *Orthographic) appendHorizonArc(out []Point, from, to spherePoint) []Point {
	a0 := math.Atan2(from.y, from.x)
	delta := math.Atan2(to.y, to.x) - a0
	for delta > math.Pi {
		delta -= 2 * math.Pi
	}
	for delta <= -math.Pi {
		delta += 2 * math.Pi
	}

	steps := int(math.Ceil(math.Abs(delta) / horizonStep))
	for i := 1; i < steps; i++ {
		a := a0 + delta*float64(i)/float64(steps)
		out = append(out, p.toCanvas(math.Cos(a), math.Sin(a)))
	}
	return out
}

// ProjectRing projects a closed ring clipped to the visible hemisphere.
//
// CLIPPING:
// Each edge that crosses the horizon is cut at the crossing, and every
// exit is joined to the following entry along the shorter horizon arc.
// That is the right join for any ring smaller than a hemisphere, which
// covers every country; a ring enclosing the view's antipode (a polar cap
// seen from the opposite pole) can be joined the wrong way round.
//
// ok is false when no point of the ring is visible.
func (p *Orthographic) ProjectRing(ring [][]float64) ([]Point, bool) {
	pts := make([]spherePoint, 0, len(ring))
	for _, pos := range ring {
		if len(pos) < 2 {
			continue
		}
		pts = append(pts, p.rotate(pos[0], pos[1]))
	}
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	if len(pts) < 3 {
		return nil, false
	}

	// Start on a visible point so every exit is followed by its entry
	// within one pass.
	start := -1
	for i, sp := range pts {
		if sp.visible() {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, false
	}

	n := len(pts)
	out := make([]Point, 0, n)
	var exit spherePoint
	for k := 0; k < n; k++ {
		cur, next := pts[(start+k)%n], pts[(start+k+1)%n]
		if cur.visible() {
			out = append(out, p.toCanvas(cur.x, cur.y))
		}

		switch {
		case cur.visible() && !next.visible():
			exit = horizonCrossing(cur, next)
			out = append(out, p.toCanvas(exit.x, exit.y))
		case !cur.visible() && next.visible():
			entry := horizonCrossing(next, cur)
			out = p.appendHorizonArc(out, exit, entry)
			out = append(out, p.toCanvas(entry.x, entry.y))
		}
	}

	if len(out) < 3 {
		return nil, false
	}
	return out, true
}

// projectLine projects an open line and splits it wherever it passes behind
// the globe, ending and restarting each piece on the horizon.
func (p *Orthographic) projectLine(line [][]float64) [][]Point {
	var segments [][]Point
	var current []Point
	var prev spherePoint
	havePrev := false

	for _, pos := range line {
		if len(pos) < 2 {
			continue
		}
		sp := p.rotate(pos[0], pos[1])

		switch {
		case sp.visible() && havePrev && !prev.visible():
			c := horizonCrossing(sp, prev)
			current = append(current, p.toCanvas(c.x, c.y))
		case !sp.visible() && havePrev && prev.visible():
			c := horizonCrossing(prev, sp)
			current = append(current, p.toCanvas(c.x, c.y))
			if len(current) > 1 {
				segments = append(segments, current)
			}
			current = nil
		}
		if sp.visible() {
			current = append(current, p.toCanvas(sp.x, sp.y))
		}
		prev, havePrev = sp, true
	}
	if len(current) > 1 {
		segments = append(segments, current)
	}
	return segments
}

// ProjectPolygons projects every ring of a Polygon or MultiPolygon geometry,
// dropping rings that are entirely hidden.
func (p *Orthographic) ProjectPolygons(g *geojson.Geometry) [][]Point {
	var rings [][]Point
	add := func(polygon [][][]float64) {
		for _, ring := range polygon {
			if projected, ok := p.ProjectRing(ring); ok {
				rings = append(rings, projected)
			}
		}
	}

	switch {
	case g == nil:
	case g.IsPolygon():
		add(g.Polygon)
	case g.IsMultiPolygon():
		for _, polygon := range g.MultiPolygon {
			add(polygon)
		}
	}
	return rings
}

// GeometryPath renders any supported geometry as SVG path data. Unsupported
// geometry types and fully hidden shapes yield "".
func (p *Orthographic) GeometryPath(g *geojson.Geometry) string {
	if g == nil {
		return ""
	}

	var b strings.Builder
	switch {
	case g.IsPolygon(), g.IsMultiPolygon():
		return RingsPath(p.ProjectPolygons(g))
	case g.IsLineString():
		for _, seg := range p.projectLine(g.LineString) {
			writeSegment(&b, seg, false)
		}
	case g.IsMultiLineString():
		for _, line := range g.MultiLineString {
			for _, seg := range p.projectLine(line) {
				writeSegment(&b, seg, false)
			}
		}
	}
	return b.String()
}

// SpherePath is the outline of the whole globe: a circle of radius Scale.
func (p *Orthographic) SpherePath() string {
	r := p.scale
	cx, cy := p.center.X, p.center.Y

	var b strings.Builder
	b.WriteString("M")
	writeXY(&b, cx, cy-r)
	b.WriteString("A")
	writeXY(&b, r, r)
	b.WriteString(" 0 1,1 ")
	writeXY(&b, cx, cy+r)
	b.WriteString("A")
	writeXY(&b, r, r)
	b.WriteString(" 0 1,1 ")
	writeXY(&b, cx, cy-r)
	b.WriteString("Z")
	return b.String()
}

// RingsPath renders already projected rings as closed SVG subpaths.
func RingsPath(rings [][]Point) string {
	var b strings.Builder
	for _, ring := range rings {
		writeSegment(&b, ring, true)
	}
	return b.String()
}

func writeSegment(b *strings.Builder, pts []Point, closed bool) {
	for i, pt := range pts {
		if i == 0 {
			b.WriteString("M")
		} else {
			b.WriteString("L")
		}
		writeXY(b, pt.X, pt.Y)
	}
	if closed {
		b.WriteString("Z")
	}
}

func writeXY(b *strings.Builder, x, y float64) {
	b.WriteString(strconv.FormatFloat(x, 'f', 1, 64))
	b.WriteByte(',')
	b.WriteString(strconv.FormatFloat(y, 'f', 1, 64))
}
