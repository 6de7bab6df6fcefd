package squish

import "math"

// fltEpsilon is the discriminant tolerance for the eigensolver root cases.
const fltEpsilon = 1.1920929e-07

// Sym3x3 is a symmetric 3x3 matrix stored as its upper triangle:
//
//	| 0 1 2 |
//	|   3 4 |
//	|     5 |
type Sym3x3 [6]float32

// ComputeWeightedCovariance accumulates the weighted covariance of the RGB
// lanes of a point set about its weighted centroid.
func ComputeWeightedCovariance(points []Vec4, weights []float32) Sym3x3 {
	total := float32(0)
	centroid := Vec3{}
	for i := range points {
		total += weights[i]
		centroid = centroid.Add(points[i].XYZ().Scale(weights[i]))
	}
	if total > 0 {
		centroid = centroid.Scale(1 / total)
	}

	var cov Sym3x3
	for i := range points {
		a := points[i].XYZ().Sub(centroid)
		b := a.Scale(weights[i])

		cov[0] += a.X * b.X
		cov[1] += a.X * b.Y
		cov[2] += a.X * b.Z
		cov[3] += a.Y * b.Y
		cov[4] += a.Y * b.Z
		cov[5] += a.Z * b.Z
	}
	return cov
}

func multiplicity1Evector(m Sym3x3, evalue float32) Vec3 {
	var d Sym3x3
	d[0] = m[0] - evalue
	d[1] = m[1]
	d[2] = m[2]
	d[3] = m[3] - evalue
	d[4] = m[4]
	d[5] = m[5] - evalue

	// Adjugate of (M - lambda I).
	var u Sym3x3
	u[0] = d[3]*d[5] - d[4]*d[4]
	u[1] = d[2]*d[4] - d[1]*d[5]
	u[2] = d[1]*d[4] - d[2]*d[3]
	u[3] = d[0]*d[5] - d[2]*d[2]
	u[4] = d[1]*d[2] - d[4]*d[0]
	u[5] = d[0]*d[3] - d[1]*d[1]

	// Take the column with the largest-magnitude entry to avoid near-zero
	// numerical loss.
	mc := abs32(u[0])
	mi := 0
	for i := 1; i < 6; i++ {
		if c := abs32(u[i]); c > mc {
			mc = c
			mi = i
		}
	}

	switch mi {
	case 0:
		return Vec3{u[0], u[1], u[2]}
	case 1, 3:
		return Vec3{u[1], u[3], u[4]}
	default:
		return Vec3{u[2], u[4], u[5]}
	}
}

func multiplicity2Evector(m Sym3x3, evalue float32) Vec3 {
	var d Sym3x3
	d[0] = m[0] - evalue
	d[1] = m[1]
	d[2] = m[2]
	d[3] = m[3] - evalue
	d[4] = m[4]
	d[5] = m[5] - evalue

	mc := abs32(d[0])
	mi := 0
	for i := 1; i < 6; i++ {
		if c := abs32(d[i]); c > mc {
			mc = c
			mi = i
		}
	}

	switch mi {
	case 0, 1:
		return Vec3{-d[1], d[0], 0}
	case 2:
		return Vec3{d[2], 0, -d[0]}
	case 3, 4:
		return Vec3{0, -d[4], d[3]}
	default:
		return Vec3{0, -d[5], d[4]}
	}
}

// ComputePrincipleComponent extracts the eigenvector of the largest-magnitude
// eigenvalue of a symmetric 3x3 matrix via the characteristic cubic.
//
// The symmetric eigensystem solver algorithm is from
// http://www.geometrictools.com/Documentation/EigenSymmetric3x3.pdf
func ComputePrincipleComponent(m Sym3x3) Vec3 {
	// Characteristic cubic coefficients.
	c0 := m[0]*m[3]*m[5] +
		2*m[1]*m[2]*m[4] -
		m[0]*m[4]*m[4] -
		m[3]*m[2]*m[2] -
		m[5]*m[1]*m[1]
	c1 := m[0]*m[3] + m[0]*m[5] + m[3]*m[5] -
		m[1]*m[1] - m[2]*m[2] - m[4]*m[4]
	c2 := m[0] + m[3] + m[5]

	// Depressed cubic coefficients.
	a := c1 - (1.0/3.0)*c2*c2
	b := (-2.0/27.0)*c2*c2*c2 + (1.0/3.0)*c1*c2 - c0

	// Root count discriminant.
	q := 0.25*b*b + (1.0/27.0)*a*a*a

	switch {
	case q > fltEpsilon:
		// Only one real root, which implies a multiple of the identity.
		return NewVec3(1)

	case q < -fltEpsilon:
		// Three distinct roots.
		theta := float32(math.Atan2(float64(sqrt32(-q)), float64(-0.5*b)))
		rho := sqrt32(0.25*b*b - q)

		rt := cbrt32(rho)
		ct := float32(math.Cos(float64(theta / 3)))
		st := float32(math.Sin(float64(theta / 3)))

		sqrt3 := float32(math.Sqrt(3))
		l1 := (1.0/3.0)*c2 + 2*rt*ct
		l2 := (1.0/3.0)*c2 - rt*(ct+sqrt3*st)
		l3 := (1.0/3.0)*c2 - rt*(ct-sqrt3*st)

		// Pick the largest magnitude.
		if abs32(l2) > abs32(l1) {
			l1 = l2
		}
		if abs32(l3) > abs32(l1) {
			l1 = l3
		}
		return multiplicity1Evector(m, l1)

	default:
		// |q| <= epsilon: treated as the double-root case for parity with the
		// reference solver (not as a triple root).
		var rt float32
		if b < 0 {
			rt = -cbrt32(-0.5 * b)
		} else {
			rt = cbrt32(0.5 * b)
		}

		l1 := (1.0/3.0)*c2 + rt // repeated
		l2 := (1.0/3.0)*c2 - 2*rt

		if abs32(l1) > abs32(l2) {
			return multiplicity2Evector(m, l1)
		}
		return multiplicity1Evector(m, l2)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
