package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	geojson "github.com/paulmach/go.geojson"
)

// DefaultWorldURL is world-atlas' 1:110m countries topology.
const DefaultWorldURL = "https://unpkg.com/world-atlas@2/countries-110m.json"

// maxDocumentSize caps the geometry download (the 110m topology is ~100KB,
// the 10m one ~3.5MB).
const maxDocumentSize = 16 << 20

// Loader fetches the world-geometry document exactly once.
//
// SINGLE-SHOT:
// The first Load performs the download; every later call (from any
// goroutine) returns the same features and error. There is no retry: a
// failed load leaves the globe without countries until the process restarts.
type Loader struct {
	url    string
	client *http.Client
	logger *slog.Logger

	once     sync.Once
	features []CountryFeature
	err      error
}

// NewLoader creates a Loader for url. A nil client uses http.DefaultClient.
func NewLoader(url string, client *http.Client, logger *slog.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{url: url, client: client, logger: logger}
}

// Load returns the country features, downloading them on the first call.
func (l *Loader) Load(ctx context.Context) ([]CountryFeature, error) {
	l.once.Do(func() {
		l.features, l.err = l.fetch(ctx)
		if l.err != nil {
			l.logger.Error("loading world geometry failed",
				slog.String("url", l.url),
				slog.String("error", l.err.Error()),
			)
			return
		}
		l.logger.Info("world geometry loaded",
			slog.String("url", l.url),
			slog.Int("countries", len(l.features)),
		)
	})
	return l.features, l.err
}

func (l *Loader) fetch(ctx context.Context) ([]CountryFeature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("geo: building request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geo: fetching %s: %w", l.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo: fetching %s: status %d", l.url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("geo: reading %s: %w", l.url, err)
	}

	return Decode(data)
}

// Decode parses a TopoJSON Topology or a GeoJSON FeatureCollection into the
// ordered sequence of country features.
func Decode(data []byte) ([]CountryFeature, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("geo: decoding document: %w", err)
	}

	var features []*geojson.Feature
	switch header.Type {
	case "Topology":
		var t topology
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("geo: decoding topology: %w", err)
		}
		converted, err := topologyToFeatures(&t)
		if err != nil {
			return nil, err
		}
		features = converted

	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("geo: decoding feature collection: %w", err)
		}
		features = fc.Features

	default:
		return nil, fmt.Errorf("geo: unsupported document type %q", header.Type)
	}

	countries := make([]CountryFeature, 0, len(features))
	for _, f := range features {
		if c, ok := featureFromGeoJSON(f); ok {
			countries = append(countries, c)
		}
	}
	return countries, nil
}
