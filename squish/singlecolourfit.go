package squish

import (
	"math"
	"sync"
)

// The single-color tables record, for every target byte and palette slot,
// the quantized endpoint pair whose interpolation at that slot reproduces
// the target with minimum absolute channel error. squish shipped these as
// generated source; here they are built once on first use by the same
// exhaustive (start, end) enumeration, behind a one-shot publish.

type singleColourEntry struct {
	start, end uint8 // lattice values, trailing shared bit included
	err        uint8 // absolute channel error of the reproduced byte
}

type singleColourKey struct {
	bits        int // effective lattice bits, shared bit included
	model       interpModel
	parityStart int8 // -1 free, else required low bit of start
	parityEnd   int8
}

var (
	singleColourMu     sync.Mutex
	singleColourTables = map[singleColourKey][][256]singleColourEntry{}
)

// singleColourLookup returns the [slot][target] table for a key, building
// and publishing it on first use.
func singleColourLookup(key singleColourKey) [][256]singleColourEntry {
	singleColourMu.Lock()
	defer singleColourMu.Unlock()

	if t, ok := singleColourTables[key]; ok {
		return t
	}

	k := paletteSizeOf(key.model)
	table := make([][256]singleColourEntry, k)
	size := 1 << uint(key.bits)

	for slot := 0; slot < k; slot++ {
		// First pass: for every producible byte value, the first (lowest)
		// endpoint pair that produces it.
		type pair struct {
			start, end uint8
			ok         bool
		}
		var produced [256]pair
		for s := 0; s < size; s++ {
			if key.parityStart >= 0 && s&1 != int(key.parityStart) {
				continue
			}
			es := expandBits(s, key.bits)
			for e := 0; e < size; e++ {
				if key.parityEnd >= 0 && e&1 != int(key.parityEnd) {
					continue
				}
				v := interpByte(key.model, slot, es, expandBits(e, key.bits))
				if !produced[v].ok {
					produced[v] = pair{uint8(s), uint8(e), true}
				}
			}
		}

		// Second pass: nearest producible value per target byte, searching
		// outward and preferring the downward neighbor on ties.
		for t := 0; t < 256; t++ {
			for d := 0; d < 256; d++ {
				if lo := t - d; lo >= 0 && produced[lo].ok {
					table[slot][t] = singleColourEntry{produced[lo].start, produced[lo].end, uint8(d)}
					break
				}
				if hi := t + d; hi <= 255 && produced[hi].ok {
					table[slot][t] = singleColourEntry{produced[hi].start, produced[hi].end, uint8(d)}
					break
				}
			}
		}
	}

	singleColourTables[key] = table
	return table
}

// parityTrials lists the (start, end) low-bit assignments a shared-bit
// regime allows.
func parityTrials(sb sharedBits) [][2]int8 {
	switch sb {
	case sbUnique:
		return [][2]int8{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	case sbShared:
		return [][2]int8{{0, 0}, {1, 1}}
	default:
		return [][2]int8{{-1, -1}}
	}
}

// singleColourFit finds the best endpoint pair for a point set that merged
// to exactly one color, by per-channel table lookup over every palette slot
// and shared-bit assignment. Channel errors are taken through the gamma LUT
// before the weighted combine.
func singleColourFit(set *PaletteSet, q quantizer, model interpModel, metric Vec4) fitResult {
	points := set.Points()
	weights := set.Weights()

	var res fitResult
	if len(points) != 1 {
		return res
	}

	r, g, b, a := points[0].Scale(255).PackBytes()
	target := [4]uint8{r, g, b, a}
	eLUT := ComputeGammaLUT(false)

	k := paletteSizeOf(model)
	bestErr := float32(math.Inf(1))
	for _, par := range parityTrials(q.sb) {
		var tables [4][][256]singleColourEntry
		for ch := 0; ch < 4; ch++ {
			if q.effectiveBits(ch) == 0 {
				continue
			}
			tables[ch] = singleColourLookup(singleColourKey{
				bits:        q.effectiveBits(ch),
				model:       model,
				parityStart: par[0],
				parityEnd:   par[1],
			})
		}

		for slot := 0; slot < k; slot++ {
			var cerror Vec4
			var start, end [4]uint8
			for ch := 0; ch < 4; ch++ {
				if tables[ch] == nil {
					// Channel is not stored; it decodes as 255.
					diff := int(target[ch]) - 255
					if diff < 0 {
						diff = -diff
					}
					cerror = cerror.SetLane(ch, eLUT[diff])
					continue
				}
				entry := &tables[ch][slot][target[ch]]
				start[ch] = entry.start
				end[ch] = entry.end
				cerror = cerror.SetLane(ch, eLUT[entry.err])
			}

			err := cerror.Mul(metric).LengthSquared()
			if err < bestErr {
				bestErr = err

				res.qe.start = start
				res.qe.end = end
				res.qe.startV = q.lookupLattice(int(start[0]), int(start[1]), int(start[2]), int(start[3]))
				res.qe.endV = q.lookupLattice(int(end[0]), int(end[1]), int(end[2]), int(end[3]))
				res.indices[0] = uint8(slot)
				res.valid = true
			}
		}
	}

	if res.valid {
		// Recompute the tracked error in the fit's weighted-distance terms so
		// strategies compare on the same scale.
		var buf [16]Vec4
		codebook := modelCodebook(q, model)(res.qe, buf[:0])
		res.err = evaluateError(codebook, points, weights, metric, res.indices[:1])
	}
	return res
}
