package macrotracking

import (
	"fmt"
	"net/http"

	"github.com/lintang-b-s/macrotracking/pkg/config"
	"github.com/lintang-b-s/macrotracking/pkg/osmparser"
	"github.com/lintang-b-s/macrotracking/pkg/roadnetwork"
	"go.uber.org/zap"
)

// NewRoadGraphSource builds the road data source selected in the map configuration.
// the returned source is safe to share between runs.
func NewRoadGraphSource(cfg config.MapConfig, log *zap.Logger) (roadnetwork.RoadGraphSource, error) {
	switch cfg.Source {
	case config.SourceOverpass:
		return osmparser.NewOverpassSource(cfg.OverpassURL, cfg.OverpassRate, &http.Client{}, log), nil
	case config.SourceOSM:
		return osmparser.NewXMLFileSource(cfg.SourcePath, log), nil
	case config.SourcePBF:
		return osmparser.NewPBFSource(cfg.SourcePath, cfg.LoadTimeout, log), nil
	default:
		return nil, fmt.Errorf("unknown road data source %q", cfg.Source)
	}
}
