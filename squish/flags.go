package squish

// Format selects the target block format.
type Format uint32

const (
	// BC1 is the 64-bit 5:6:5 color format (DXT1).
	BC1 Format = iota + 1
	// BC2 is BC1 color plus 4-bit explicit alpha (DXT3).
	BC2
	// BC3 is BC1 color plus interpolated alpha (DXT5).
	BC3
	// BC4 is a single interpolated channel (ATI1).
	BC4
	// BC5 is two interpolated channels (ATI2).
	BC5
	// BC7 is the 128-bit multi-mode palette format (BPTC).
	BC7
)

// BlockSize returns the encoded size of one 4x4 block in bytes, or 0 for an
// unknown format.
func (f Format) BlockSize() int {
	switch f {
	case BC1, BC4:
		return 8
	case BC2, BC3, BC5, BC7:
		return 16
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case BC1:
		return "bc1"
	case BC2:
		return "bc2"
	case BC3:
		return "bc3"
	case BC4:
		return "bc4"
	case BC5:
		return "bc5"
	case BC7:
		return "bc7"
	default:
		return "unknown"
	}
}

// Quality selects how much of the endpoint search space the compressor
// explores. Candidate sets are nested, so error never increases with quality.
type Quality uint32

const (
	QualityFast Quality = iota
	QualityNormal
	QualityHighest
)

// Metric selects the per-channel weights applied inside the squared-error
// norm.
type Metric uint32

const (
	MetricUniform Metric = iota
	MetricPerceptual
)

// Flags configures a compression call.
type Flags struct {
	Quality Quality
	Metric  Metric

	// WeightByAlpha scales each pixel's weight by its alpha value.
	WeightByAlpha bool

	// AlphaCutoff enables binary transparency for formats that support it
	// (BC1): pixels with alpha below the cutoff are excluded from endpoint
	// placement and decode as transparent black. Zero disables.
	AlphaCutoff uint8

	// ExcludeAlphaFromColorError drops the alpha lane from the color error
	// norm.
	ExcludeAlphaFromColorError bool
}

// metricWeights returns the channel weight vector for the flag set.
func (f Flags) metricWeights() Vec4 {
	var m Vec4
	switch f.Metric {
	case MetricPerceptual:
		// BT.709 luma coefficients.
		m = Vec4{0.2126, 0.7152, 0.0722, 1.0}
	default:
		m = Vec4{1, 1, 1, 1}
	}
	if f.ExcludeAlphaFromColorError {
		m.W = 0
	}
	return m
}

func validateFlags(f Flags) error {
	if f.Quality > QualityHighest {
		return newError(ErrBadFlags, "squish: invalid quality")
	}
	if f.Metric > MetricPerceptual {
		return newError(ErrBadFlags, "squish: invalid metric")
	}
	return nil
}
