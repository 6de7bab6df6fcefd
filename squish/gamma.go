package squish

import "math"

// The gamma tables map an 8-bit encoded value to its linear [0,1] intensity.
// They are process-wide read-only constants built once at package init; the
// sRGB table follows the IEC 61966-2-1 inverse transfer function.
var (
	gammaLUTLinear [256]float32
	gammaLUTSRGB   [256]float32
)

func init() {
	for i := 0; i < 256; i++ {
		c := float64(i) / 255.0
		gammaLUTLinear[i] = float32(c)

		if c <= 0.04045 {
			gammaLUTSRGB[i] = float32(c / 12.92)
		} else {
			gammaLUTSRGB[i] = float32(math.Pow((c+0.055)/1.055, 2.4))
		}
	}
}

// ComputeGammaLUT returns the 256-entry linear-output-for-8-bit-input table,
// using the sRGB inverse transfer when srgb is set and the identity scale
// otherwise. The returned table must not be modified.
func ComputeGammaLUT(srgb bool) *[256]float32 {
	if srgb {
		return &gammaLUTSRGB
	}
	return &gammaLUTLinear
}
