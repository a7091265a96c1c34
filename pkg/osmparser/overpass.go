package osmparser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lintang-b-s/macrotracking/pkg/datastructure"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultOverpassURL = "https://overpass-api.de/api/interpreter"
)

// OverpassSource downloads the drivable road network around a point from an Overpass API endpoint.
type OverpassSource struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// NewOverpassSource. minInterval is the minimum time between two requests to the endpoint.
func NewOverpassSource(baseURL string, minInterval time.Duration, client *http.Client, log *zap.Logger) *OverpassSource {
	if baseURL == "" {
		baseURL = DefaultOverpassURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &OverpassSource{
		baseURL: baseURL,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

func overpassQuery(center geo.Position, radius float64, timeout time.Duration) string {
	seconds := int(timeout.Seconds())
	if seconds <= 0 {
		seconds = 180
	}
	return fmt.Sprintf(`[out:xml][timeout:%d];(way["highway"](around:%.1f,%.7f,%.7f););(._;>;);out body;`,
		seconds, radius, center.Lat, center.Lon)
}

func (s *OverpassSource) FetchWindow(ctx context.Context, center geo.Position, radius float64) (*datastructure.RoadGraph, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timeout := time.Duration(0)
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	form := url.Values{}
	form.Set("data", overpassQuery(center, radius, timeout))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("overpass returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := decodeOSMXML(resp.Body)
	if err != nil {
		return nil, err
	}
	s.log.Debug("overpass window downloaded", zap.Duration("took", time.Since(start)),
		zap.Int("ways", len(data.ways)), zap.Int("nodes", len(data.nodes)))

	return data.buildWindow(center, radius), nil
}
