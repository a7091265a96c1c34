package controllers

import (
	"github.com/lintang-b-s/macrotracking/pkg/comparator"
	"github.com/lintang-b-s/macrotracking/pkg/tracefile"
	"github.com/twpayne/go-polyline"
)

type compareRequest struct {
	Name   string `json:"name" validate:"required"`
	Target int    `json:"target" validate:"required,min=2,max=100000"`
}

type replayRequest struct {
	Name       string `json:"name" validate:"required"`
	IntervalMs int    `json:"interval_ms" validate:"min=0,max=60000"`
}

type traceResponse struct {
	Name            string  `json:"name"`
	TraceFile       string  `json:"trace_file"`
	GroundTruthFile string  `json:"ground_truth_file,omitempty"`
	StartLat        float64 `json:"start_lat"`
	StartLon        float64 `json:"start_lon"`
	StartHeading    float64 `json:"start_heading"`
}

type trajectoryResponse struct {
	Name     string                     `json:"name"`
	Points   int                        `json:"points"`
	Polyline string                     `json:"polyline"`
	Records  []tracefile.LocationRecord `json:"records"`
}

func NewTrajectoryResponse(name string, records []tracefile.LocationRecord) trajectoryResponse {
	coords := make([][]float64, 0, len(records))
	for _, r := range records {
		coords = append(coords, []float64{r.Lat, r.Lon})
	}
	return trajectoryResponse{
		Name:     name,
		Points:   len(records),
		Polyline: string(polyline.EncodeCoords(coords)),
		Records:  records,
	}
}

type compareResponse struct {
	Name     string    `json:"name"`
	Target   int       `json:"target"`
	Samples  int       `json:"samples"`
	Mean     float64   `json:"mean"`
	StdDev   float64   `json:"std_dev"`
	Errors   []float64 `json:"errors"`
	Polyline string    `json:"matched_polyline"`
}

func NewCompareResponse(name string, target int, res comparator.Result) compareResponse {
	coords := make([][]float64, 0, len(res.Matched))
	for _, p := range res.Matched {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return compareResponse{
		Name:     name,
		Target:   target,
		Samples:  len(res.SampledIndices),
		Mean:     res.Mean,
		StdDev:   res.StdDev,
		Errors:   res.Errors,
		Polyline: string(polyline.EncodeCoords(coords)),
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
