package datastructure

import (
	"math"

	"github.com/lintang-b-s/macrotracking/pkg/geo"
)

type BoundingBox struct {
	minLat, minLon float64
	maxLat, maxLon float64
}

func NewBoundingBox(minLat, minLon, maxLat, maxLon float64) *BoundingBox {
	return &BoundingBox{minLat: minLat,
		minLon: minLon,
		maxLat: maxLat,
		maxLon: maxLon}
}

// NewBoundingBoxFromPositions. smallest box enclosing every position, nil if ps is empty.
func NewBoundingBoxFromPositions(ps ...[]geo.Position) *BoundingBox {
	bb := &BoundingBox{
		minLat: math.Inf(1), minLon: math.Inf(1),
		maxLat: math.Inf(-1), maxLon: math.Inf(-1),
	}
	n := 0
	for _, list := range ps {
		for _, p := range list {
			bb.minLat = math.Min(bb.minLat, p.Lat)
			bb.minLon = math.Min(bb.minLon, p.Lon)
			bb.maxLat = math.Max(bb.maxLat, p.Lat)
			bb.maxLon = math.Max(bb.maxLon, p.Lon)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return bb
}

func (b *BoundingBox) GetMinLat() float64 {
	return b.minLat
}

func (b *BoundingBox) GetMinLon() float64 {
	return b.minLon
}

func (b *BoundingBox) GetMaxLat() float64 {
	return b.maxLat
}

func (b *BoundingBox) GetMaxLon() float64 {
	return b.maxLon
}

// Pad grows the box by ratio of its size on every side.
func (b *BoundingBox) Pad(ratio float64) *BoundingBox {
	dLat := (b.maxLat - b.minLat) * ratio
	dLon := (b.maxLon - b.minLon) * ratio
	return NewBoundingBox(b.minLat-dLat, b.minLon-dLon, b.maxLat+dLat, b.maxLon+dLon)
}
