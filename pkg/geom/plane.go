// Package geom provides the geometric primitives for entanglement
// detection: plane fitting, a 2-D polygon engine, and segment
// intersection tests. Vector math uses the sdfx vec types throughout.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// jacobiTolerance stops the eigen iteration once every off-diagonal
// entry is below this magnitude.
const jacobiTolerance = 1e-12

// jacobiMaxSweeps bounds the eigen iteration for pathological input.
const jacobiMaxSweeps = 50

// Plane is a best-fit plane through a point set, carrying a full frame:
// centroid C, unit normal N, and in-plane basis (E1, E2) such that
// (E1, E2, N) is right-handed. A zero Plane has Valid == false.
type Plane struct {
	C     v3.Vec
	N     v3.Vec
	E1    v3.Vec
	E2    v3.Vec
	Valid bool
}

// Project maps a 3-D point into the plane's (E1, E2) coordinates.
func (p Plane) Project(q v3.Vec) v2.Vec {
	d := q.Sub(p.C)
	return v2.Vec{X: d.Dot(p.E1), Y: d.Dot(p.E2)}
}

// Unproject maps in-plane coordinates back to 3-D.
func (p Plane) Unproject(q v2.Vec) v3.Vec {
	return p.C.Add(p.E1.MulScalar(q.X)).Add(p.E2.MulScalar(q.Y))
}

// SignedDistance is the distance from q to the plane along the normal.
func (p Plane) SignedDistance(q v3.Vec) float64 {
	return q.Sub(p.C).Dot(p.N)
}

// jacobiEigen diagonalizes a symmetric 3x3 matrix by cyclic Jacobi
// rotations. Each sweep zeroes the off-diagonal entry of greatest
// magnitude with a Givens rotation and accumulates the eigenvector
// matrix. Eigenvalues land on the diagonal; eigenvectors are columns.
func jacobiEigen(a [3][3]float64) (evals [3]float64, evecs [3][3]float64) {
	for i := 0; i < 3; i++ {
		evecs[i][i] = 1.0
	}
	for iter := 0; iter < jacobiMaxSweeps; iter++ {
		p, q := 0, 1
		maxOff := math.Abs(a[p][q])
		for i := 0; i < 3; i++ {
			for j := i + 1; j < 3; j++ {
				if v := math.Abs(a[i][j]); v > maxOff {
					maxOff = v
					p, q = i, j
				}
			}
		}
		if maxOff < jacobiTolerance {
			break
		}
		phi := 0.5 * math.Atan2(2.0*a[p][q], a[q][q]-a[p][p])
		c := math.Cos(phi)
		s := math.Sin(phi)

		app := c*c*a[p][p] - 2.0*s*c*a[p][q] + s*s*a[q][q]
		aqq := s*s*a[p][p] + 2.0*s*c*a[p][q] + c*c*a[q][q]
		a[p][p] = app
		a[q][q] = aqq
		a[p][q] = 0.0
		a[q][p] = 0.0

		for k := 0; k < 3; k++ {
			if k == p || k == q {
				continue
			}
			akp := c*a[k][p] - s*a[k][q]
			akq := s*a[k][p] + c*a[k][q]
			a[k][p] = akp
			a[p][k] = akp
			a[k][q] = akq
			a[q][k] = akq
		}

		for k := 0; k < 3; k++ {
			vkp := c*evecs[k][p] - s*evecs[k][q]
			vkq := s*evecs[k][p] + c*evecs[k][q]
			evecs[k][p] = vkp
			evecs[k][q] = vkq
		}
	}
	for i := 0; i < 3; i++ {
		evals[i] = a[i][i]
	}
	return evals, evecs
}

// FitPlane fits a plane to points by principal-axis decomposition of
// the covariance matrix. The normal is the eigenvector of the smallest
// eigenvalue. Returns an invalid plane when fewer than 3 points are
// given or when the point set is near-collinear: the ratio of smallest
// to largest eigenvalue falls below epsCollinear.
func FitPlane(points []v3.Vec, epsCollinear float64) Plane {
	var plane Plane
	if len(points) < 3 {
		return plane
	}

	var c v3.Vec
	for _, p := range points {
		c = c.Add(p)
	}
	c = c.MulScalar(1.0 / float64(len(points)))

	var cov [3][3]float64
	for _, p := range points {
		d := p.Sub(c)
		cov[0][0] += d.X * d.X
		cov[0][1] += d.X * d.Y
		cov[0][2] += d.X * d.Z
		cov[1][0] += d.Y * d.X
		cov[1][1] += d.Y * d.Y
		cov[1][2] += d.Y * d.Z
		cov[2][0] += d.Z * d.X
		cov[2][1] += d.Z * d.Y
		cov[2][2] += d.Z * d.Z
	}

	evals, evecs := jacobiEigen(cov)

	minIdx, maxIdx := 0, 0
	for i := 1; i < 3; i++ {
		if evals[i] < evals[minIdx] {
			minIdx = i
		}
		if evals[i] > evals[maxIdx] {
			maxIdx = i
		}
	}
	if evals[maxIdx] <= 0.0 {
		return plane
	}
	if evals[minIdx]/evals[maxIdx] < epsCollinear {
		return plane
	}

	n := v3.Vec{X: evecs[0][minIdx], Y: evecs[1][minIdx], Z: evecs[2][minIdx]}
	if n.Length() <= 0.0 {
		return plane
	}
	n = n.Normalize()

	ref := v3.Vec{X: 1, Y: 0, Z: 0}
	if math.Abs(n.X) >= 0.9 {
		ref = v3.Vec{X: 0, Y: 1, Z: 0}
	}
	e1 := ref.Cross(n).Normalize()
	e2 := n.Cross(e1)

	plane.C = c
	plane.N = n
	plane.E1 = e1
	plane.E2 = e2
	plane.Valid = true
	return plane
}
