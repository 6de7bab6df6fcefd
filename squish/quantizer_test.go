package squish

import "testing"

func TestExpandBits_BitReplication(t *testing.T) {
	cases := []struct {
		v, n int
		want uint8
	}{
		{0, 5, 0},
		{31, 5, 255},
		{5, 5, 41},   // (5<<3) | (5>>2)
		{16, 5, 132}, // (16<<3) | (16>>2)
		{0, 6, 0},
		{63, 6, 255},
		{32, 6, 130}, // (32<<2) | (32>>4)
		{0, 4, 0},
		{15, 4, 255},
		{9, 4, 153}, // nibble replication
		{127, 7, 255},
		{64, 7, 129},
		{200, 8, 200},
	}

	for _, c := range cases {
		if got := expandBits(c.v, c.n); got != c.want {
			t.Fatalf("expandBits(%d, %d): got %d, want %d", c.v, c.n, got, c.want)
		}
	}
}

func TestQuantize_Idempotent(t *testing.T) {
	quantizers := []quantizer{
		newQuantizer565(),
		newQuantizer(7, 7, sbUnique),
		newQuantizer(6, 0, sbShared),
		newQuantizer(7, 8, sbNone),
		newQuantizer(5, 5, sbUnique),
	}

	samples := []Vec4{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0.5, 0.25, 0.75, 0.125},
		{0.1, 0.9, 0.33, 0.66},
		{0.013, 0.987, 0.499, 0.501},
	}

	for qi, q := range quantizers {
		for si, a := range samples {
			b := samples[(si+1)%len(samples)]

			qe := q.quantize(a, b)
			again := q.quantize(qe.startV, qe.endV)

			if again.start != qe.start || again.end != qe.end {
				t.Fatalf("quantizer %d sample %d: requantization moved %v/%v -> %v/%v",
					qi, si, qe.start, qe.end, again.start, again.end)
			}
		}
	}
}

func TestQuantize_SharedBitParity(t *testing.T) {
	q := newQuantizer(6, 0, sbShared)
	qe := q.quantize(Vec4{0.3, 0.7, 0.2, 1}, Vec4{0.6, 0.1, 0.9, 1})

	p := qe.start[0] & 1
	for ch := 0; ch < 3; ch++ {
		if qe.start[ch]&1 != p {
			t.Fatalf("start channel %d parity: got %d, want %d", ch, qe.start[ch]&1, p)
		}
		if qe.end[ch]&1 != p {
			t.Fatalf("end channel %d parity: got %d, want %d", ch, qe.end[ch]&1, p)
		}
	}
}

func TestQuantize_UniqueBitParityPerEndpoint(t *testing.T) {
	q := newQuantizer(7, 7, sbUnique)
	qe := q.quantize(Vec4{0.31, 0.72, 0.18, 0.5}, Vec4{0.64, 0.13, 0.95, 0.9})

	sp := qe.start[0] & 1
	ep := qe.end[0] & 1
	for ch := 1; ch < 4; ch++ {
		if qe.start[ch]&1 != sp {
			t.Fatalf("start channel %d parity: got %d, want %d", ch, qe.start[ch]&1, sp)
		}
		if qe.end[ch]&1 != ep {
			t.Fatalf("end channel %d parity: got %d, want %d", ch, qe.end[ch]&1, ep)
		}
	}
}

func TestQuantize_ExactLatticeValues(t *testing.T) {
	q := newQuantizer565()

	qe := q.quantize(Vec4{1, 0, 1, 1}, Vec4{0, 1, 0, 1})
	if qe.start != [4]uint8{31, 0, 31, 0} {
		t.Fatalf("start: got %v, want [31 0 31 0]", qe.start)
	}
	if qe.end != [4]uint8{0, 63, 0, 0} {
		t.Fatalf("end: got %v, want [0 63 0 0]", qe.end)
	}
	if qe.startV.X != 1 || qe.startV.Z != 1 || qe.endV.Y != 1 {
		t.Fatalf("expanded extremes: start=%+v end=%+v", qe.startV, qe.endV)
	}
	// Alpha is not stored on this lattice and expands to 1.
	if qe.startV.W != 1 || qe.endV.W != 1 {
		t.Fatalf("alpha expansion: start=%v end=%v, want 1", qe.startV.W, qe.endV.W)
	}
}

func TestGridInv(t *testing.T) {
	q := newQuantizer565()
	g := q.gridinv()
	if g.X != 31 || g.Y != 63 || g.Z != 31 {
		t.Fatalf("gridinv: got %+v, want 31/63/31", g)
	}
}
