package poly

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// vectorArea returns the area vector of a planar polygon: its direction is
// the right-handed normal of the loop and its length the enclosed area.
func vectorArea(loop []v3.Vec) v3.Vec {
	var sum v3.Vec
	for i := range loop {
		sum = sum.Add(loop[i].Cross(loop[(i+1)%len(loop)]))
	}
	return sum.MulScalar(0.5)
}

// polygonArea returns the unsigned area of a planar polygon.
func polygonArea(loop []v3.Vec) float64 {
	if len(loop) < 3 {
		return 0
	}
	return vectorArea(loop).Length()
}

// polygonCentroid returns the area centroid and area of a planar polygon.
// Fan triangles are weighted by their signed area along the polygon normal,
// so non-convex loops integrate correctly.
func polygonCentroid(loop []v3.Vec) (v3.Vec, float64) {
	va := vectorArea(loop)
	area := va.Length()
	if area == 0 {
		return v3.Vec{}, 0
	}
	n := va.DivScalar(area)
	var acc v3.Vec
	var total float64
	p0 := loop[0]
	for i := 1; i+1 < len(loop); i++ {
		p1, p2 := loop[i], loop[i+1]
		a := 0.5 * p1.Sub(p0).Cross(p2.Sub(p0)).Dot(n)
		c := p0.Add(p1).Add(p2).DivScalar(3)
		acc = acc.Add(c.MulScalar(a))
		total += a
	}
	if total == 0 {
		return v3.Vec{}, 0
	}
	return acc.DivScalar(total), area
}

// maxPlaneDeviation returns the largest distance of a loop point from the
// plane through the loop centroid with the loop's normal.
func maxPlaneDeviation(loop []v3.Vec) float64 {
	va := vectorArea(loop)
	l := va.Length()
	if l == 0 {
		return 0
	}
	n := va.DivScalar(l)
	var c v3.Vec
	for _, p := range loop {
		c = c.Add(p)
	}
	c = c.DivScalar(float64(len(loop)))
	var dev float64
	for _, p := range loop {
		dev = math.Max(dev, math.Abs(p.Sub(c).Dot(n)))
	}
	return dev
}

// signedVolume integrates the volume enclosed by a set of closed loops via
// the divergence theorem. Outward-oriented loops give a positive result.
func signedVolume(loops [][]v3.Vec) float64 {
	var vol float64
	for _, loop := range loops {
		p0 := loop[0]
		for i := 1; i+1 < len(loop); i++ {
			vol += p0.Dot(loop[i].Cross(loop[i+1])) / 6
		}
	}
	return vol
}

// fanTriangles splits a loop into triangles sharing its first point.
func fanTriangles(loop []v3.Vec) []sdf.Triangle3 {
	tris := make([]sdf.Triangle3, 0, len(loop))
	for i := 1; i+1 < len(loop); i++ {
		tris = append(tris, sdf.Triangle3{loop[0], loop[i], loop[i+1]})
	}
	return tris
}

// rayDirection is skewed so rays rarely graze edges of axis-aligned input.
var rayDirection = v3.Vec{X: 0.4367, Y: 0.5179, Z: 0.7353}

// insideLoops reports whether p lies inside the closed surface described by
// loops, by counting ray crossings.
func insideLoops(p v3.Vec, loops [][]v3.Vec) bool {
	d := rayDirection
	hits := 0
	for _, loop := range loops {
		for _, tri := range fanTriangles(loop) {
			if rayHitsTriangle(p, d, tri) {
				hits++
			}
		}
	}
	return hits%2 == 1
}

// rayHitsTriangle is the Möller–Trumbore intersection test.
func rayHitsTriangle(orig, dir v3.Vec, tri sdf.Triangle3) bool {
	const eps = 1e-12
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])
	h := dir.Cross(e2)
	a := e1.Dot(h)
	if math.Abs(a) < eps {
		return false
	}
	f := 1 / a
	s := orig.Sub(tri[0])
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return false
	}
	q := s.Cross(e1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return false
	}
	return f*e2.Dot(q) > eps
}
