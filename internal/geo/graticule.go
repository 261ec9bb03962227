package geo

import geojson "github.com/paulmach/go.geojson"

const (
	graticuleStep   = 10.0 // degrees between grid lines
	graticuleExtent = 80.0 // minor lines stop short of the poles
	graticuleSample = 2.5  // degrees between points along a line
)

// Graticule returns the latitude/longitude grid as a MultiLineString:
// meridians every 10° and parallels every 10° up to ±80°. Meridians at
// multiples of 90° run pole to pole.
func Graticule() *geojson.Geometry {
	var lines [][][]float64

	for lon := -180.0; lon < 180.0; lon += graticuleStep {
		extent := graticuleExtent
		if int(lon)%90 == 0 {
			extent = 90
		}
		var line [][]float64
		for lat := -extent; lat <= extent+1e-9; lat += graticuleSample {
			line = append(line, []float64{lon, lat})
		}
		lines = append(lines, line)
	}

	for lat := -graticuleExtent; lat <= graticuleExtent+1e-9; lat += graticuleStep {
		var line [][]float64
		for lon := -180.0; lon <= 180.0+1e-9; lon += graticuleSample {
			line = append(line, []float64{lon, lat})
		}
		lines = append(lines, line)
	}

	return geojson.NewMultiLineStringGeometry(lines...)
}
