package squish

import "math"

// fitColour runs the strategy ladder for one endpoint pair: single-color fit
// for a single merged point, range fit always, cluster fit (narrow palettes)
// or alternating refinement (wide palettes) from normal quality up.
func fitColour(set *PaletteSet, q quantizer, model interpModel, metric Vec4, quality Quality) fitResult {
	k := paletteSizeOf(model)
	cbf := modelCodebook(q, model)

	if set.Count() == 0 {
		var res fitResult
		res.qe = q.quantize(Vec4{}, Vec4{})
		res.valid = true
		return res
	}

	var best fitResult
	if set.Count() == 1 {
		best = singleColourFit(set, q, model, metric)
	} else {
		best = rangeFit(set, q, metric, cbf)
		if quality >= QualityNormal {
			kw := weightsForModel(model)
			if k <= 4 {
				if cf := clusterFit(set, q, kw, metric, cbf); cf.valid && better(&cf, &best) {
					best = cf
				}
			} else {
				best = refineFit(best, set, q, kw, metric, cbf, iterationLimit(quality))
			}
		}
	}
	return best
}

// rotatePixels swaps alpha with one color channel across a block, the
// encoder-side half of the BC7 rotation selector.
func rotatePixels(rgba *[64]byte, rotation int) [64]byte {
	out := *rgba
	if rotation == 0 {
		return out
	}
	ch := rotation - 1
	for t := 0; t < 16; t++ {
		out[4*t+ch], out[4*t+3] = out[4*t+3], out[4*t+ch]
	}
	return out
}

func rotateMetric(metric Vec4, rotation int) Vec4 {
	if rotation == 0 {
		return metric
	}
	ch := rotation - 1
	w := metric.Lane(ch)
	metric = metric.SetLane(ch, metric.W)
	metric.W = w
	return metric
}

// scalarAlphaFit fits a two-endpoint, four-entry interpolated palette to one
// byte channel (the separate alpha plane of BC7 mode 5).
type scalarAlphaFit struct {
	start, end uint8
	indices    [16]uint8
	err        float64
}

func fitScalarAlpha(values *[16]uint8, mask uint32, weight float32, quality Quality) scalarAlphaFit {
	lo, hi := 255, 0
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		v := int(values[i])
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		lo, hi = 0, 0
	}

	evaluate := func(a0, a1 uint8) scalarAlphaFit {
		fit := scalarAlphaFit{start: a0, end: a1}
		var codes [4]uint8
		for k := 0; k < 4; k++ {
			codes[k] = bc7Interp(a0, a1, bc7InterpWeights2[k])
		}
		var total int64
		for i := 0; i < 16; i++ {
			if mask&(1<<uint(i)) == 0 {
				fit.indices[i] = 0
				continue
			}
			best, bestDist := 0, 1<<20
			for k := 0; k < 4; k++ {
				d := int(codes[k]) - int(values[i])
				if d < 0 {
					d = -d
				}
				if d < bestDist {
					bestDist = d
					best = k
				}
			}
			fit.indices[i] = uint8(best)
			total += int64(bestDist) * int64(bestDist)
		}
		scale := float64(weight) / 255.0
		fit.err = float64(total) * scale * scale
		return fit
	}

	best := evaluate(uint8(lo), uint8(hi))
	if quality >= QualityNormal {
		cur := best
		for it := 0; it < iterationLimit(quality); it++ {
			var alpha2, beta2, alphabeta, alphax, betax float64
			for i := 0; i < 16; i++ {
				if mask&(1<<uint(i)) == 0 {
					continue
				}
				t := float64(bc7InterpWeights2[cur.indices[i]]) / 64.0
				a := 1 - t
				alpha2 += a * a
				beta2 += t * t
				alphabeta += a * t
				alphax += a * float64(values[i])
				betax += t * float64(values[i])
			}
			det := alpha2*beta2 - alphabeta*alphabeta
			if det <= 1e-9 && det >= -1e-9 {
				break
			}
			inv := 1 / det
			a0 := packByte(float32(clampF64((alphax*beta2-betax*alphabeta)*inv, 0, 255)))
			a1 := packByte(float32(clampF64((betax*alpha2-alphax*alphabeta)*inv, 0, 255)))
			next := evaluate(a0, a1)
			if next.err >= cur.err {
				break
			}
			cur = next
		}
		if cur.err < best.err {
			best = cur
		}
	}
	return best
}

// bc7Candidate couples a symbolic block with its weighted error.
type bc7Candidate struct {
	pb    paletteBlock
	err   float64
	valid bool
}

func fitPaletteMode6(rgba *[64]byte, mask uint32, flags Flags, metric Vec4) bc7Candidate {
	setFlags := flags
	setFlags.AlphaCutoff = 0 // BC7 has no binary-transparency mode
	set := newPaletteSet(rgba, mask, setFlags, maskRGBA)

	q := newQuantizer(7, 7, sbUnique)
	fit := fitColour(set, q, modelBC7I4, metric, flags.Quality)
	if !fit.valid {
		return bc7Candidate{}
	}

	var cand bc7Candidate
	cand.pb.mode = 6
	cand.pb.start[0] = fit.qe.start
	cand.pb.end[0] = fit.qe.end
	set.RemapIndices(fit.indices[:], &cand.pb.indices, 0)
	cand.err = fit.err
	cand.valid = true
	return cand
}

func fitPaletteMode5(rgba *[64]byte, mask uint32, flags Flags, metric Vec4, rotation int) bc7Candidate {
	rotated := rotatePixels(rgba, rotation)
	rmetric := rotateMetric(metric, rotation)

	setFlags := flags
	setFlags.AlphaCutoff = 0
	set := newPaletteSet(&rotated, mask, setFlags, maskRGB)

	colorMetric := rmetric
	colorMetric.W = 0
	q := newQuantizer(7, 0, sbNone)
	fit := fitColour(set, q, modelBC7I2, colorMetric, flags.Quality)
	if !fit.valid {
		return bc7Candidate{}
	}

	var alphaValues [16]uint8
	for t := 0; t < 16; t++ {
		alphaValues[t] = rotated[4*t+3]
	}
	aFit := fitScalarAlpha(&alphaValues, mask, rmetric.W, flags.Quality)

	var cand bc7Candidate
	cand.pb.mode = 5
	cand.pb.rotation = rotation
	cand.pb.start[0] = fit.qe.start
	cand.pb.end[0] = fit.qe.end
	cand.pb.start[0][3] = aFit.start
	cand.pb.end[0][3] = aFit.end
	set.RemapIndices(fit.indices[:], &cand.pb.indices, 0)
	cand.pb.indices2 = aFit.indices
	cand.err = fit.err + aFit.err
	cand.valid = true
	return cand
}

func fitPaletteMode1(rgba *[64]byte, mask uint32, flags Flags, metric Vec4, partition int) bc7Candidate {
	var cand bc7Candidate
	cand.pb.mode = 1
	cand.pb.partition = partition

	q := newQuantizer(6, 0, sbShared)
	colorMetric := metric
	colorMetric.W = 0

	setFlags := flags
	setFlags.AlphaCutoff = 0

	for s := 0; s < 2; s++ {
		subMask := uint32(0)
		for t := 0; t < 16; t++ {
			if mask&(1<<uint(t)) != 0 && subsetOf(2, partition, t) == s {
				subMask |= 1 << uint(t)
			}
		}

		set := newPaletteSet(rgba, subMask, setFlags, maskRGB)
		fit := fitColour(set, q, modelBC7I3, colorMetric, flags.Quality)
		if !fit.valid {
			return bc7Candidate{}
		}

		cand.pb.start[s] = fit.qe.start
		cand.pb.end[s] = fit.qe.end

		var sub [16]uint8
		set.RemapIndices(fit.indices[:], &sub, 0)
		for t := 0; t < 16; t++ {
			if subMask&(1<<uint(t)) != 0 {
				cand.pb.indices[t] = sub[t]
			}
		}
		cand.err += fit.err
	}

	cand.valid = true
	return cand
}

// partitionTrials returns how many mode 1 partitions the quality explores.
func partitionTrials(quality Quality) int {
	switch quality {
	case QualityFast:
		return 0
	case QualityNormal:
		return 16
	default:
		return 64
	}
}

// rotationTrials returns how many mode 5 rotations the quality explores.
func rotationTrials(quality Quality) int {
	switch quality {
	case QualityFast:
		return 0
	case QualityNormal:
		return 1
	default:
		return 4
	}
}

// compressPaletteBlock encodes one block as BC7, searching modes 6, 5, and 1
// as permitted by the quality level. Candidate sets are nested across
// quality levels so error is monotone.
func compressPaletteBlock(rgba *[64]byte, mask uint32, flags Flags, out []byte) {
	metric := flags.metricWeights()

	opaque := true
	for t := 0; t < 16; t++ {
		if mask&(1<<uint(t)) != 0 && rgba[4*t+3] != 255 {
			opaque = false
			break
		}
	}

	best := fitPaletteMode6(rgba, mask, flags, metric)
	bestErr := math.Inf(1)
	if best.valid {
		bestErr = best.err
	}

	for r := 0; r < rotationTrials(flags.Quality); r++ {
		if cand := fitPaletteMode5(rgba, mask, flags, metric, r); cand.valid && cand.err < bestErr {
			best = cand
			bestErr = cand.err
		}
	}

	if opaque {
		for p := 0; p < partitionTrials(flags.Quality); p++ {
			if cand := fitPaletteMode1(rgba, mask, flags, metric, p); cand.valid && cand.err < bestErr {
				best = cand
				bestErr = cand.err
			}
		}
	}

	best.pb.canonicalize()
	best.pb.pack(out)
}
