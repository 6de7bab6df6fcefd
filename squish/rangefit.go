package squish

// principalAxis computes the dominant RGB direction of a point set, falling
// back to the red axis when the covariance is degenerate (all points equal).
func principalAxis(points []Vec4, weights []float32) Vec3 {
	cov := ComputeWeightedCovariance(points, weights)
	axis := ComputePrincipleComponent(cov)
	if axis.Dot(axis) == 0 {
		return Vec3{1, 0, 0}
	}
	return axis
}

// rangeFit seeds an endpoint pair along the principal axis, clamped to the
// observed per-channel extent, then quantizes and evaluates.
func rangeFit(set *PaletteSet, q quantizer, metric Vec4, cbf codebookFunc) fitResult {
	points := set.Points()
	weights := set.Weights()

	var res fitResult
	if len(points) == 0 {
		res.qe = q.quantize(Vec4{}, Vec4{})
		res.err = 0
		res.valid = true
		return res
	}

	axis := principalAxis(points, weights)

	// Weighted centroid.
	total := float32(0)
	centroid := Vec3{}
	for i := range points {
		total += weights[i]
		centroid = centroid.Add(points[i].XYZ().Scale(weights[i]))
	}
	centroid = centroid.Scale(1 / total)

	// Projection extent along the axis, plus per-channel bounds.
	sMin := axis.Dot(points[0].XYZ().Sub(centroid))
	sMax := sMin
	lo := points[0]
	hi := points[0]
	for i := 1; i < len(points); i++ {
		s := axis.Dot(points[i].XYZ().Sub(centroid))
		if s < sMin {
			sMin = s
		}
		if s > sMax {
			sMax = s
		}
		lo = lo.Min(points[i])
		hi = hi.Max(points[i])
	}

	a3 := centroid.Add(axis.Scale(sMin))
	b3 := centroid.Add(axis.Scale(sMax))

	a := Vec4{a3.X, a3.Y, a3.Z, lo.W}
	b := Vec4{b3.X, b3.Y, b3.Z, hi.W}

	// Clamp to the observed extent so quantization cannot overshoot the
	// block's own range.
	a = a.Max(lo).Min(hi).Clamp(0, 1)
	b = b.Max(lo).Min(hi).Clamp(0, 1)

	res.qe = q.quantize(a, b)

	var buf [16]Vec4
	codebook := cbf(res.qe, buf[:0])
	res.err = assignIndices(codebook, points, weights, metric, res.indices[:len(points)])
	res.valid = true
	return res
}

// solveEndpoints computes the closed-form least-squares endpoint pair for a
// fixed index assignment: minimize sum w_i |alpha_i*A + beta_i*B - x_i|^2
// with alpha = 1-w_k, beta = w_k. Accumulation is in float64 so equal-error
// tie-breaking stays stable. Returns false when the 2x2 system is singular.
func solveEndpoints(points []Vec4, weights []float32, kw []float32, indices []uint8) (Vec4, Vec4, bool) {
	var alpha2, beta2, alphabeta float64
	var alphax, betax [4]float64

	for i := range points {
		w := float64(weights[i])
		bw := float64(kw[indices[i]])
		aw := 1 - bw

		alpha2 += w * aw * aw
		beta2 += w * bw * bw
		alphabeta += w * aw * bw

		for c := 0; c < 4; c++ {
			x := float64(points[i].Lane(c))
			alphax[c] += w * aw * x
			betax[c] += w * bw * x
		}
	}

	det := alpha2*beta2 - alphabeta*alphabeta
	if det <= 1e-12 && det >= -1e-12 {
		return Vec4{}, Vec4{}, false
	}
	inv := 1 / det

	var a, b Vec4
	for c := 0; c < 4; c++ {
		av := (alphax[c]*beta2 - betax[c]*alphabeta) * inv
		bv := (betax[c]*alpha2 - alphax[c]*alphabeta) * inv
		a = a.SetLane(c, float32(av))
		b = b.SetLane(c, float32(bv))
	}
	return a.Clamp(0, 1), b.Clamp(0, 1), true
}

// iterationLimit maps quality to the refinement pass count for wide palettes.
func iterationLimit(quality Quality) int {
	switch quality {
	case QualityFast:
		return 0
	case QualityNormal:
		return 4
	default:
		return 12
	}
}

// refineFit runs alternating least-squares refinement on a seeded fit:
// re-solve endpoints for the current assignment, re-quantize, re-assign.
// The incumbent only ever improves, so quality monotonicity is preserved.
func refineFit(seed fitResult, set *PaletteSet, q quantizer, kw []float32, metric Vec4, cbf codebookFunc, iterations int) fitResult {
	points := set.Points()
	weights := set.Weights()
	best := seed

	cur := seed
	var buf [16]Vec4
	for it := 0; it < iterations; it++ {
		a, b, ok := solveEndpoints(points, weights, kw, cur.indices[:len(points)])
		if !ok {
			break
		}

		var next fitResult
		next.qe = q.quantize(a, b)
		codebook := cbf(next.qe, buf[:0])
		next.err = assignIndices(codebook, points, weights, metric, next.indices[:len(points)])
		next.valid = true

		if !better(&next, &best) {
			break
		}
		best = next
		cur = next
	}
	return best
}
