package squish

// Interpolated alpha payloads (BC3 alpha, BC4, BC5 channels) store two 8-bit
// endpoints and 16 3-bit indices. a0 > a1 selects the eight-interpolation
// codebook; a0 <= a1 selects six interpolations plus fixed 0 and 255.

// alphaCodebook8 fills the a0 > a1 codebook.
func alphaCodebook8(a0, a1 uint8, codes *[8]uint8) {
	codes[0] = a0
	codes[1] = a1
	for k := 2; k < 8; k++ {
		codes[k] = uint8(((8-k)*int(a0) + (k-1)*int(a1) + 3) / 7)
	}
}

// alphaCodebook6 fills the a0 <= a1 codebook.
func alphaCodebook6(a0, a1 uint8, codes *[8]uint8) {
	codes[0] = a0
	codes[1] = a1
	for k := 2; k < 6; k++ {
		codes[k] = uint8(((6-k)*int(a0) + (k-1)*int(a1) + 2) / 5)
	}
	codes[6] = 0
	codes[7] = 255
}

// alphaSlotWeight maps a codebook slot to its interpolation parameter t with
// value = a0 + t*(a1-a0); fixed slots return ok=false.
func alphaSlotWeight(slot int, sixMode bool) (t float64, ok bool) {
	switch slot {
	case 0:
		return 0, true
	case 1:
		return 1, true
	}
	if sixMode {
		if slot >= 6 {
			return 0, false
		}
		return float64(slot-1) / 5, true
	}
	return float64(slot-1) / 7, true
}

func assignAlphaIndices(codes *[8]uint8, values *[16]uint8, mask uint32, indices *[16]uint8) int64 {
	var total int64
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			indices[i] = 0
			continue
		}
		best := 0
		bestDist := 1 << 20
		for k := 0; k < 8; k++ {
			d := int(codes[k]) - int(values[i])
			if d < 0 {
				d = -d
			}
			if d < bestDist {
				bestDist = d
				best = k
			}
		}
		indices[i] = uint8(best)
		total += int64(bestDist) * int64(bestDist)
	}
	return total
}

// refineAlphaEndpoints re-solves the endpoint pair by least squares over the
// pixels assigned to movable slots.
func refineAlphaEndpoints(values *[16]uint8, mask uint32, indices *[16]uint8, sixMode bool) (uint8, uint8, bool) {
	var alpha2, beta2, alphabeta, alphax, betax float64
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		t, ok := alphaSlotWeight(int(indices[i]), sixMode)
		if !ok {
			continue
		}
		a := 1 - t
		alpha2 += a * a
		beta2 += t * t
		alphabeta += a * t
		alphax += a * float64(values[i])
		betax += t * float64(values[i])
	}

	det := alpha2*beta2 - alphabeta*alphabeta
	if det <= 1e-9 && det >= -1e-9 {
		return 0, 0, false
	}
	inv := 1 / det
	a0 := (alphax*beta2 - betax*alphabeta) * inv
	a1 := (betax*alpha2 - alphax*alphabeta) * inv
	return packByte(float32(clampF64(a0, 0, 255))), packByte(float32(clampF64(a1, 0, 255))), true
}

func clampF64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type alphaFit struct {
	a0, a1  uint8
	sixMode bool
	indices [16]uint8
	err     int64
}

func evaluateAlphaFit(a0, a1 uint8, sixMode bool, values *[16]uint8, mask uint32) alphaFit {
	fit := alphaFit{a0: a0, a1: a1, sixMode: sixMode}
	var codes [8]uint8
	if sixMode {
		alphaCodebook6(a0, a1, &codes)
	} else {
		alphaCodebook8(a0, a1, &codes)
	}
	fit.err = assignAlphaIndices(&codes, values, mask, &fit.indices)
	return fit
}

// compressAlphaBlock fits and serializes one interpolated alpha payload.
// values holds one byte per pixel; masked-out pixels take index 0.
func compressAlphaBlock(values *[16]uint8, mask uint32, quality Quality, out []byte) {
	// Extremes over the used pixels, with and without the fixed 0/255 codes.
	lo, hi := 255, 0
	iLo, iHi := 255, 0
	any := false
	anyInterior := false
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		v := int(values[i])
		any = true
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		if v != 0 && v != 255 {
			anyInterior = true
			if v < iLo {
				iLo = v
			}
			if v > iHi {
				iHi = v
			}
		}
	}
	if !any {
		lo, hi = 0, 0
	}
	if !anyInterior {
		iLo, iHi = 0, 255
	}

	// Eight-interpolation candidate needs a0 > a1; equal extremes fall
	// through to six-mode which permits a0 == a1.
	var best alphaFit
	have := false
	if hi > lo {
		best = evaluateAlphaFit(uint8(hi), uint8(lo), false, values, mask)
		have = true
	}

	six := evaluateAlphaFit(uint8(iLo), uint8(iHi), true, values, mask)
	if !have || six.err < best.err {
		best = six
	}

	if quality > QualityFast {
		limit := iterationLimit(quality)
		cur := best
		for it := 0; it < limit; it++ {
			a0, a1, ok := refineAlphaEndpoints(values, mask, &cur.indices, cur.sixMode)
			if !ok {
				break
			}
			if !cur.sixMode && a0 <= a1 {
				break
			}
			if cur.sixMode && a0 > a1 {
				a0, a1 = a1, a0
			}
			next := evaluateAlphaFit(a0, a1, cur.sixMode, values, mask)
			if next.err >= cur.err {
				break
			}
			cur = next
		}
		if cur.err < best.err {
			best = cur
		}
	}

	out[0] = best.a0
	out[1] = best.a1
	packAlphaIndices(&best.indices, out[2:8])
}

func packAlphaIndices(indices *[16]uint8, out []byte) {
	var bits uint64
	for i := 0; i < 16; i++ {
		bits |= uint64(indices[i]&7) << uint(3*i)
	}
	for i := 0; i < 6; i++ {
		out[i] = byte(bits >> uint(8*i))
	}
}

// decompressAlphaBlock expands an interpolated alpha payload into one byte
// per pixel.
func decompressAlphaBlock(block []byte, values *[16]uint8) {
	var codes [8]uint8
	if block[0] > block[1] {
		alphaCodebook8(block[0], block[1], &codes)
	} else {
		alphaCodebook6(block[0], block[1], &codes)
	}

	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(block[2+i]) << uint(8*i)
	}
	for i := 0; i < 16; i++ {
		values[i] = codes[(bits>>uint(3*i))&7]
	}
}

// BC2 stores alpha as 16 explicit 4-bit values.

func compressAlphaBC2(values *[16]uint8, out []byte) {
	for i := 0; i < 8; i++ {
		lo := (int(values[2*i]) + 8) / 17
		hi := (int(values[2*i+1]) + 8) / 17
		out[i] = byte(lo | hi<<4)
	}
}

func decompressAlphaBC2(block []byte, values *[16]uint8) {
	for i := 0; i < 8; i++ {
		values[2*i] = (block[i] & 0x0F) * 17
		values[2*i+1] = (block[i] >> 4) * 17
	}
}
