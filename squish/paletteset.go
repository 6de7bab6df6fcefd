package squish

// channel mask bits for error accumulation and point construction.
const (
	maskR uint8 = 1 << 0
	maskG uint8 = 1 << 1
	maskB uint8 = 1 << 2
	maskA uint8 = 1 << 3

	maskRGB  = maskR | maskG | maskB
	maskRGBA = maskRGB | maskA
)

// PaletteSet is the deduplicated weighted point set for one 4x4 block.
//
// Pixels with identical RGBA values are merged, with the merged entry's
// weight carrying the multiplicity. The remap table records, for each of the
// 16 block pixels, which merged point it maps to; transparent and unused
// pixels map to -1 and take the format's fixed index at writeback.
type PaletteSet struct {
	points  [16]Vec4
	weights [16]float32
	count   int

	remap       [16]int8
	transparent bool
	channelMask uint8
}

// newPaletteSet builds the point set for a block. mask holds one bit per
// pixel (bit i set means pixel i participates); channelMask selects which
// channels are stored and accumulate error.
func newPaletteSet(rgba *[64]byte, mask uint32, flags Flags, channelMask uint8) *PaletteSet {
	s := &PaletteSet{channelMask: channelMask}

	clearAlpha := channelMask&maskA == 0
	for i := 0; i < 16; i++ {
		s.remap[i] = -1

		if mask&(1<<uint(i)) == 0 {
			continue
		}

		r := rgba[4*i+0]
		g := rgba[4*i+1]
		b := rgba[4*i+2]
		a := rgba[4*i+3]

		// Binary-transparency policy: pixels below the cutoff take the
		// transparent index and never influence endpoint placement.
		if flags.AlphaCutoff != 0 && a < flags.AlphaCutoff {
			s.transparent = true
			continue
		}

		if channelMask&maskR == 0 {
			r = 0
		}
		if channelMask&maskG == 0 {
			g = 0
		}
		if channelMask&maskB == 0 {
			b = 0
		}
		if clearAlpha {
			a = 255
		}

		weight := float32(1)
		if flags.WeightByAlpha {
			weight = float32(int(rgba[4*i+3])+1) / 256
		}

		// Merge with an existing point when equal within the byte lattice
		// (1/255 L-inf tolerance on normalized values).
		point := UnpackBytes(r, g, b, a)
		merged := false
		for j := 0; j < s.count; j++ {
			if s.points[j] == point {
				s.weights[j] += weight
				s.remap[i] = int8(j)
				merged = true
				break
			}
		}
		if !merged {
			s.points[s.count] = point
			s.weights[s.count] = weight
			s.remap[i] = int8(s.count)
			s.count++
		}
	}

	return s
}

// Count returns the number of merged points.
func (s *PaletteSet) Count() int { return s.count }

// Points returns the merged points.
func (s *PaletteSet) Points() []Vec4 { return s.points[:s.count] }

// Weights returns the per-point weights.
func (s *PaletteSet) Weights() []float32 { return s.weights[:s.count] }

// IsTransparent reports whether any pixel was excluded by the alpha cutoff.
func (s *PaletteSet) IsTransparent() bool { return s.transparent }

// RemapIndices spreads per-point palette indices back over the 16 block
// pixels, writing transparentIndex for pixels with no point.
func (s *PaletteSet) RemapIndices(pointIndices []uint8, out *[16]uint8, transparentIndex uint8) {
	for i := 0; i < 16; i++ {
		if j := s.remap[i]; j >= 0 {
			out[i] = pointIndices[j]
		} else {
			out[i] = transparentIndex
		}
	}
}
