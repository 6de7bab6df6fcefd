package squish

import "math"

// sharedBits selects how the endpoint lattice handles its least-significant
// bit.
type sharedBits uint8

const (
	// sbNone stores every endpoint bit independently.
	sbNone sharedBits = iota
	// sbUnique appends one low bit per endpoint, chosen freely per endpoint
	// and shared across that endpoint's channels.
	sbUnique
	// sbShared appends one low bit shared by both endpoints of a pair.
	sbShared
)

// quantizer maps continuous endpoints in [0,1]^4 onto the discrete lattice
// defined by per-channel bit widths and the shared-bit regime, and expands
// lattice points back to normalized floats via bit replication.
type quantizer struct {
	bits [4]int // per-channel bits, excluding any shared bit; 0 fixes the channel at 1.0
	sb   sharedBits
}

// quantizedEndpoints is a quantized endpoint pair. Lattice values include the
// trailing shared bit when the regime has one, so a channel holds cb+1
// (resp. ab+1) significant bits under sbUnique/sbShared.
type quantizedEndpoints struct {
	start, end   [4]uint8
	startV, endV Vec4
}

func newQuantizer(cb, ab int, sb sharedBits) quantizer {
	return quantizer{bits: [4]int{cb, cb, cb, ab}, sb: sb}
}

// newQuantizer565 is the BC1 color lattice.
func newQuantizer565() quantizer {
	return quantizer{bits: [4]int{5, 6, 5, 0}}
}

// effectiveBits returns the total significant bits for a channel, including
// the shared bit.
func (q quantizer) effectiveBits(channel int) int {
	n := q.bits[channel]
	if n == 0 {
		return 0
	}
	if q.sb != sbNone {
		n++
	}
	return n
}

// gridinv returns the per-channel lattice size minus one, for callers scaling
// error terms.
func (q quantizer) gridinv() Vec4 {
	f := func(ch int) float32 {
		n := q.effectiveBits(ch)
		if n == 0 {
			return 255
		}
		return float32(int(1)<<uint(n) - 1)
	}
	return Vec4{f(0), f(1), f(2), f(3)}
}

// expandBits replicates an n-bit lattice value into an 8-bit value. This is
// the canonical fixed-rate expansion: the value's own high bits fill the
// vacated low bits.
func expandBits(v, n int) uint8 {
	if n >= 8 {
		return uint8(v)
	}
	r := v << uint(8-n)
	for s := n; ; s += n {
		r |= r >> uint(s)
		if s >= 8 {
			break
		}
	}
	return uint8(r)
}

// expandChannel maps a lattice value (with any shared bit already merged in)
// to its normalized float.
func (q quantizer) expandChannel(v int, channel int) float32 {
	n := q.effectiveBits(channel)
	if n == 0 {
		return 1
	}
	return float32(expandBits(v, n)) / 255
}

// lookupLattice expands an integer lattice point per channel.
func (q quantizer) lookupLattice(r, g, b, a int) Vec4 {
	return Vec4{
		q.expandChannel(r, 0),
		q.expandChannel(g, 1),
		q.expandChannel(b, 2),
		q.expandChannel(a, 3),
	}
}

// quantizeChannel returns the lattice value nearest to t under an optional
// parity constraint on the low bit (parity < 0 means unconstrained).
// Unconstrained rounding is to-nearest with ties to even.
func (q quantizer) quantizeChannel(t float32, channel, parity int) int {
	n := q.effectiveBits(channel)
	if n == 0 {
		return 0
	}
	hi := int(1)<<uint(n) - 1

	ideal := float64(clamp32(t, 0, 1)) * float64(hi)
	center := int(math.RoundToEven(ideal))

	best := -1
	bestDist := float32(math.Inf(1))
	for c := center - 2; c <= center+2; c++ {
		if c < 0 || c > hi {
			continue
		}
		if parity >= 0 && c&1 != parity {
			continue
		}
		// Ties resolve toward the rounded-to-even center value.
		d := abs32(q.expandChannel(c, channel) - t)
		if d < bestDist || (d == bestDist && c == center) {
			bestDist = d
			best = c
		}
	}
	if best < 0 {
		if parity > 0 {
			return parity
		}
		return 0
	}
	return best
}

func (q quantizer) quantizePoint(v Vec4, parity int) ([4]uint8, Vec4) {
	var lat [4]uint8
	lat[0] = uint8(q.quantizeChannel(v.X, 0, parity))
	lat[1] = uint8(q.quantizeChannel(v.Y, 1, parity))
	lat[2] = uint8(q.quantizeChannel(v.Z, 2, parity))
	lat[3] = uint8(q.quantizeChannel(v.W, 3, parity))
	exp := q.lookupLattice(int(lat[0]), int(lat[1]), int(lat[2]), int(lat[3]))
	return lat, exp
}

// quantize maps a continuous endpoint pair to the nearest lattice pair. In a
// shared-bit regime it searches the possible low-bit assignments and keeps
// the one with the lower reconstruction error.
func (q quantizer) quantize(a, b Vec4) quantizedEndpoints {
	a = a.Clamp(0, 1)
	b = b.Clamp(0, 1)

	switch q.sb {
	case sbNone:
		var out quantizedEndpoints
		out.start, out.startV = q.quantizePoint(a, -1)
		out.end, out.endV = q.quantizePoint(b, -1)
		return out

	case sbUnique:
		var out quantizedEndpoints
		out.start, out.startV = q.quantizePointBestParity(a)
		out.end, out.endV = q.quantizePointBestParity(b)
		return out

	default: // sbShared
		lat0a, exp0a := q.quantizePoint(a, 0)
		lat0b, exp0b := q.quantizePoint(b, 0)
		lat1a, exp1a := q.quantizePoint(a, 1)
		lat1b, exp1b := q.quantizePoint(b, 1)

		err0 := exp0a.Sub(a).LengthSquared() + exp0b.Sub(b).LengthSquared()
		err1 := exp1a.Sub(a).LengthSquared() + exp1b.Sub(b).LengthSquared()
		if err1 < err0 {
			return quantizedEndpoints{start: lat1a, end: lat1b, startV: exp1a, endV: exp1b}
		}
		return quantizedEndpoints{start: lat0a, end: lat0b, startV: exp0a, endV: exp0b}
	}
}

func (q quantizer) quantizePointBestParity(v Vec4) ([4]uint8, Vec4) {
	lat0, exp0 := q.quantizePoint(v, 0)
	lat1, exp1 := q.quantizePoint(v, 1)
	if exp1.Sub(v).LengthSquared() < exp0.Sub(v).LengthSquared() {
		return lat1, exp1
	}
	return lat0, exp0
}
