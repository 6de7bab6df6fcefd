package squish

import "sort"

// clusterFit enumerates every ordered partition of the projection-sorted
// points into 3 or 4 contiguous clusters, solves each partition's closed-form
// least-squares endpoints, quantizes, and keeps the minimum-error result.
//
// With n points and K clusters there are at most C(n+K-1, K-1) partitions
// (n <= 16, so at most 969 configurations at K=4), each solved by a 2x2
// system over the cluster basis weights.
func clusterFit(set *PaletteSet, q quantizer, kw []float32, metric Vec4, cbf codebookFunc) fitResult {
	points := set.Points()
	weights := set.Weights()
	n := len(points)
	k := len(kw)

	var best fitResult
	if n == 0 || (k != 3 && k != 4) {
		return best
	}
	axis := principalAxis(points, weights)

	// Sort point order by projection onto the principal axis; ties keep the
	// original point order so enumeration is deterministic.
	order := make([]int, n)
	proj := make([]float32, n)
	for i := 0; i < n; i++ {
		order[i] = i
		proj[i] = axis.Dot(points[i].XYZ())
	}
	sort.SliceStable(order, func(a, b int) bool {
		return proj[order[a]] < proj[order[b]]
	})

	var indices [16]uint8
	var buf [16]Vec4

	// Assign sorted positions [0,c1) to cluster 0, [c1,c2) to cluster 1, and
	// so on; cut points may coincide, leaving clusters empty.
	tryPartition := func(cuts [3]int, clusters int) {
		for pos := 0; pos < n; pos++ {
			cluster := 0
			for c := 0; c < clusters-1; c++ {
				if pos >= cuts[c] {
					cluster = c + 1
				}
			}
			indices[order[pos]] = uint8(cluster)
		}

		a, b, ok := solveEndpoints(points, weights, kw, indices[:n])
		if !ok {
			// Singular system (all points in one cluster, or coincident
			// basis weights); the rank-1 seed is covered by range fit.
			return
		}

		var cand fitResult
		cand.qe = q.quantize(a, b)
		codebook := cbf(cand.qe, buf[:0])
		cand.indices = indices
		cand.err = evaluateError(codebook, points, weights, metric, indices[:n])
		cand.valid = true

		if better(&cand, &best) {
			best = cand
		}
	}

	if k == 3 {
		for c1 := 0; c1 <= n; c1++ {
			for c2 := c1; c2 <= n; c2++ {
				tryPartition([3]int{c1, c2, 0}, 3)
			}
		}
	} else {
		for c1 := 0; c1 <= n; c1++ {
			for c2 := c1; c2 <= n; c2++ {
				for c3 := c2; c3 <= n; c3++ {
					tryPartition([3]int{c1, c2, c3}, 4)
				}
			}
		}
	}

	return best
}
