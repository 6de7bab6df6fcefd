package squish

import "math"

// Interpolation weight tables. The rational tables drive the continuous
// endpoint search; the integer tables are the BC7 decode contract
// (lerp = ((64-w)*a + w*b + 32) >> 6).
var (
	weightsK3 = []float32{0, 0.5, 1}
	weightsK4 = []float32{0, 1.0 / 3.0, 2.0 / 3.0, 1}

	bc7InterpWeights2 = [4]int{0, 21, 43, 64}
	bc7InterpWeights3 = [8]int{0, 9, 18, 27, 37, 46, 55, 64}
	bc7InterpWeights4 = [16]int{0, 4, 9, 13, 17, 21, 26, 30, 34, 38, 43, 47, 51, 55, 60, 64}
)

// bc7WeightsFor returns the integer interpolation table for an index width.
func bc7WeightsFor(indexBits int) []int {
	switch indexBits {
	case 2:
		return bc7InterpWeights2[:]
	case 3:
		return bc7InterpWeights3[:]
	default:
		return bc7InterpWeights4[:]
	}
}

var (
	bc7RationalWeights2 = normalizeBC7Weights(bc7InterpWeights2[:])
	bc7RationalWeights3 = normalizeBC7Weights(bc7InterpWeights3[:])
	bc7RationalWeights4 = normalizeBC7Weights(bc7InterpWeights4[:])
)

func normalizeBC7Weights(w []int) []float32 {
	out := make([]float32, len(w))
	for i, v := range w {
		out[i] = float32(v) / 64
	}
	return out
}

// weightsForModel returns the continuous slot weights matching a model's
// integer interpolation, for use in the closed-form solves.
func weightsForModel(model interpModel) []float32 {
	switch model {
	case modelBC1K3:
		return weightsK3
	case modelBC1K4:
		return weightsK4
	case modelBC7I2:
		return bc7RationalWeights2
	case modelBC7I3:
		return bc7RationalWeights3
	default:
		return bc7RationalWeights4
	}
}

// bc7Interp applies the BC7 integer interpolation to one channel.
func bc7Interp(a, b uint8, w int) uint8 {
	return uint8(((64-w)*int(a) + w*int(b) + 32) >> 6)
}

// interpModel identifies the integer interpolation contract a palette slot
// decodes with. Fits, single-color tables, and decoders all share these so
// the error the compressor ranks is the error the decoder produces.
//
// Slots are in ascending segment order; block writers that store palettes in
// a different index order (BC1) remap at serialization time.
type interpModel uint8

const (
	modelBC1K4 interpModel = iota // [a, (2a+b)/3, (a+2b)/3, b]
	modelBC1K3                    // [a, (a+b)/2, b]
	modelBC7I2                    // 2-bit BC7 weights
	modelBC7I3                    // 3-bit BC7 weights
	modelBC7I4                    // 4-bit BC7 weights
)

// paletteSizeOf returns the slot count of a model.
func paletteSizeOf(model interpModel) int {
	switch model {
	case modelBC1K3:
		return 3
	case modelBC1K4:
		return 4
	case modelBC7I2:
		return 4
	case modelBC7I3:
		return 8
	default:
		return 16
	}
}

// interpByte decodes one channel of palette slot from the expanded endpoint
// bytes.
func interpByte(model interpModel, slot int, a, b uint8) uint8 {
	switch model {
	case modelBC1K4:
		switch slot {
		case 0:
			return a
		case 1:
			return uint8((2*int(a) + int(b) + 1) / 3)
		case 2:
			return uint8((int(a) + 2*int(b) + 1) / 3)
		default:
			return b
		}
	case modelBC1K3:
		switch slot {
		case 0:
			return a
		case 1:
			return uint8((int(a) + int(b) + 1) / 2)
		default:
			return b
		}
	case modelBC7I2:
		return bc7Interp(a, b, bc7InterpWeights2[slot])
	case modelBC7I3:
		return bc7Interp(a, b, bc7InterpWeights3[slot])
	default:
		return bc7Interp(a, b, bc7InterpWeights4[slot])
	}
}

// codebookFunc expands a quantized endpoint pair into the decoder's exact
// palette, normalized to [0,1].
type codebookFunc func(qe quantizedEndpoints, buf []Vec4) []Vec4

// modelCodebook builds the byte-exact codebook function for a quantizer and
// interpolation model.
func modelCodebook(q quantizer, model interpModel) codebookFunc {
	k := paletteSizeOf(model)
	return func(qe quantizedEndpoints, buf []Vec4) []Vec4 {
		var sa, ea [4]uint8
		for ch := 0; ch < 4; ch++ {
			n := q.effectiveBits(ch)
			if n == 0 {
				sa[ch], ea[ch] = 255, 255
				continue
			}
			sa[ch] = expandBits(int(qe.start[ch]), n)
			ea[ch] = expandBits(int(qe.end[ch]), n)
		}

		const inv255 = 1.0 / 255.0
		for slot := 0; slot < k; slot++ {
			buf = append(buf, Vec4{
				float32(interpByte(model, slot, sa[0], ea[0])) * inv255,
				float32(interpByte(model, slot, sa[1], ea[1])) * inv255,
				float32(interpByte(model, slot, sa[2], ea[2])) * inv255,
				float32(interpByte(model, slot, sa[3], ea[3])) * inv255,
			})
		}
		return buf
	}
}

// fitResult is the outcome of one endpoint search strategy.
type fitResult struct {
	qe      quantizedEndpoints
	indices [16]uint8 // per merged point
	err     float64
	valid   bool
}

// assignIndices picks the nearest codebook entry for every point under the
// weighted squared-error metric and returns the total error.
func assignIndices(codebook []Vec4, points []Vec4, weights []float32, metric Vec4, indices []uint8) float64 {
	total := 0.0
	for i := range points {
		bestK := 0
		bestDist := float32(math.Inf(1))
		for k := range codebook {
			d := codebook[k].Sub(points[i]).Mul(metric)
			dist := d.LengthSquared()
			if dist < bestDist {
				bestDist = dist
				bestK = k
			}
		}
		indices[i] = uint8(bestK)
		total += float64(weights[i]) * float64(bestDist)
	}
	return total
}

// evaluateError recomputes the weighted error of a fixed index assignment.
func evaluateError(codebook []Vec4, points []Vec4, weights []float32, metric Vec4, indices []uint8) float64 {
	total := 0.0
	for i := range points {
		d := codebook[int(indices[i])].Sub(points[i]).Mul(metric)
		total += float64(weights[i]) * float64(d.LengthSquared())
	}
	return total
}

// endpointMagnitude is the first-level tie-break key: lower-magnitude
// endpoint pairs win, keeping output deterministic across equal-error fits.
func (r *fitResult) endpointMagnitude() float64 {
	return float64(r.qe.startV.LengthSquared()) + float64(r.qe.endV.LengthSquared())
}

// latticeOrder is the final tie-break: the lexicographic order of the
// serialized endpoint lattice values.
func (r *fitResult) latticeOrder() uint64 {
	var v uint64
	for i := 0; i < 4; i++ {
		v = v<<8 | uint64(r.qe.start[i])
	}
	for i := 0; i < 4; i++ {
		v = v<<8 | uint64(r.qe.end[i])
	}
	return v
}

// better reports whether candidate should replace incumbent.
func better(candidate, incumbent *fitResult) bool {
	if !incumbent.valid {
		return true
	}
	if candidate.err != incumbent.err {
		return candidate.err < incumbent.err
	}
	cm, im := candidate.endpointMagnitude(), incumbent.endpointMagnitude()
	if cm != im {
		return cm < im
	}
	return candidate.latticeOrder() < incumbent.latticeOrder()
}
