package osmparser

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/lintang-b-s/macrotracking/pkg/datastructure"
	"github.com/lintang-b-s/macrotracking/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

// XMLSource serves road windows from an osm xml document (.osm), decoded once on first use.
type XMLSource struct {
	path   string
	reader io.Reader
	log    *zap.Logger

	once sync.Once
	data *osmData
	err  error
}

func NewXMLFileSource(path string, log *zap.Logger) *XMLSource {
	return &XMLSource{path: path, log: log}
}

// NewXMLSource reads the osm document from r instead of a file.
func NewXMLSource(r io.Reader, log *zap.Logger) *XMLSource {
	return &XMLSource{reader: r, log: log}
}

func (s *XMLSource) load() {
	r := s.reader
	if r == nil {
		f, err := os.Open(s.path)
		if err != nil {
			s.err = err
			return
		}
		defer f.Close()
		r = f
	}
	data, err := decodeOSMXML(r)
	if err != nil {
		s.err = err
		return
	}
	s.data = data
	s.log.Info("osm xml loaded", zap.String("path", s.path), zap.Int("ways", len(data.ways)),
		zap.Int("nodes", len(data.nodes)))
}

func (s *XMLSource) FetchWindow(ctx context.Context, center geo.Position, radius float64) (*datastructure.RoadGraph, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.data.buildWindow(center, radius), nil
}

func decodeOSMXML(r io.Reader) (*osmData, error) {
	o := &osm.OSM{}
	if err := xml.NewDecoder(r).Decode(o); err != nil {
		return nil, fmt.Errorf("decode osm xml: %w", err)
	}
	return fromOSM(o), nil
}

// DefaultPBFLoadTimeout bounds the two pass scan of a pbf extract.
const DefaultPBFLoadTimeout = 10 * time.Minute

// PBFSource serves road windows from an openstreetmap pbf extract.
// accepted ways and their nodes are kept in memory after the first scan.
// the scan runs once, detached from the caller's context and bounded by loadTimeout;
// its result, failure included, is shared by every later window.
type PBFSource struct {
	path        string
	loadTimeout time.Duration
	log         *zap.Logger

	once sync.Once
	data *osmData
	err  error
}

// NewPBFSource. loadTimeout <= 0 leaves the scan unbounded.
func NewPBFSource(path string, loadTimeout time.Duration, log *zap.Logger) *PBFSource {
	return &PBFSource{path: path, loadTimeout: loadTimeout, log: log}
}

func (s *PBFSource) load(ctx context.Context) {
	loadCtx := context.WithoutCancel(ctx)
	if s.loadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(loadCtx, s.loadTimeout)
		defer cancel()
	}
	s.data, s.err = s.parse(loadCtx)
	if s.err != nil {
		s.log.Error("osm pbf load failed", zap.String("path", s.path), zap.Error(s.err))
	}
}

func (s *PBFSource) FetchWindow(ctx context.Context, center geo.Position, radius float64) (*datastructure.RoadGraph, error) {
	s.once.Do(func() { s.load(ctx) })
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.data.buildWindow(center, radius), nil
}

func (s *PBFSource) parse(ctx context.Context) (*osmData, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data := newOsmData()
	wayNodes := make(map[int64]struct{})

	// first pass: ways, nodes come before ways in a pbf so a second pass is needed for coordinates
	scanner := osmpbf.New(ctx, f, 0)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)
		if len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			s.log.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++
		data.addWay(way)
		for _, n := range way.Nodes {
			wayNodes[int64(n.ID)] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, err
	}
	scanner.Close()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	scanner = osmpbf.New(ctx, f, 0)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	defer scanner.Close()
	for scanner.Scan() {
		o := scanner.Object()
		if o.ObjectID().Type() != osm.TypeNode {
			continue
		}
		node := o.(*osm.Node)
		if _, ok := wayNodes[int64(node.ID)]; ok {
			data.addNode(node)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	s.log.Info("osm pbf loaded", zap.String("path", s.path), zap.Int("ways", len(data.ways)),
		zap.Int("nodes", len(data.nodes)))
	return data, nil
}
