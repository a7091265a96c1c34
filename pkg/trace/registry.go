package trace

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/lintang-b-s/macrotracking/pkg/geo"
)

var (
	ErrUnknownTrace   = errors.New("unknown trace")
	ErrDuplicateTrace = errors.New("duplicate trace name")
)

// Descriptor. everything needed to replay one recorded drive.
type Descriptor struct {
	Name            string  `json:"name"`
	TraceFile       string  `json:"trace_file"`        // CAN telemetry, relative to the trace root
	GroundTruthFile string  `json:"ground_truth_file"` // location log of the real route, relative to the trace root
	GPSFile         string  `json:"gps_file"`          // optional .gpx or csv gps recording, converted to gps.log
	StartLat        float64 `json:"start_lat"`
	StartLon        float64 `json:"start_lon"`
	StartHeading    float64 `json:"start_heading"` // degree, 0 = east, counter clockwise
	StartIndex      int     `json:"start_index"`   // frames before this (1-based) line number are skipped
	Offset          int     `json:"offset"`        // number of frames processed after StartIndex, -1 for the whole trace
}

func (d Descriptor) StartPosition() geo.Position {
	return geo.NewPosition(d.StartLat, d.StartLon)
}

// Registry. trace descriptors by name, built from the configuration.
type Registry struct {
	root   string
	traces map[string]Descriptor
}

func NewRegistry(root string, descriptors []Descriptor) (*Registry, error) {
	r := &Registry{root: root, traces: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, ok := r.traces[d.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTrace, d.Name)
		}
		r.traces[d.Name] = d
	}
	return r, nil
}

func (r *Registry) Get(name string) (Descriptor, error) {
	d, ok := r.traces[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownTrace, name)
	}
	return d, nil
}

// Names returns the registered trace names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.traces))
	for name := range r.traces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) All() []Descriptor {
	res := make([]Descriptor, 0, len(r.traces))
	for _, name := range r.Names() {
		res = append(res, r.traces[name])
	}
	return res
}

func (r *Registry) TracePath(d Descriptor) string {
	return r.resolve(d.TraceFile)
}

func (r *Registry) GroundTruthPath(d Descriptor) string {
	return r.resolve(d.GroundTruthFile)
}

func (r *Registry) GPSPath(d Descriptor) string {
	return r.resolve(d.GPSFile)
}

func (r *Registry) resolve(file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(r.root, file)
}

// OutputFolder. per trace output folder, runs without map correction get their own folder.
func OutputFolder(outputRoot string, d Descriptor, mapCorrection bool) string {
	name := d.Name
	if !mapCorrection {
		name += "_uncorrected"
	}
	return filepath.Join(outputRoot, name)
}
