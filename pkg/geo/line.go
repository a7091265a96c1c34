package geo

import (
	"math"
)

const (
	eps = 1e-9
)

// ProjectOntoLine. orthogonal projection of p onto the (unbounded) line through a and b.
// if a and b coincide the line is undefined and a is returned.
func ProjectOntoLine(a, b, p Position) Position {
	ab := b.Vector().Sub(a.Vector())
	denom := ab.Dot(ab)
	if denom < eps {
		return a
	}
	t := p.Vector().Sub(a.Vector()).Dot(ab) / denom
	return fromVector(a.Vector().Add(ab.Mul(t)))
}

// DistanceToSegment. distance (meter) from p to the closed segment ab.
func DistanceToSegment(a, b, p Position) float64 {
	ab := b.Vector().Sub(a.Vector())
	denom := ab.Dot(ab)
	if denom < eps {
		return Distance(a, p)
	}
	t := p.Vector().Sub(a.Vector()).Dot(ab) / denom
	t = math.Max(0, math.Min(1, t))
	closest := a.Vector().Add(ab.Mul(t))
	return closest.Sub(p.Vector()).Norm()
}

// HeadingDifference. absolute plain difference between two headings in degree, without wrap around.
func HeadingDifference(h1, h2 float64) float64 {
	return math.Abs(h1 - h2)
}
