package squish

import "testing"

func TestSingleColourLookup_ExactForRepresentable(t *testing.T) {
	// Every 5-bit expansion must be reproduced with zero error at slot 0.
	table := singleColourLookup(singleColourKey{bits: 5, model: modelBC1K4, parityStart: -1, parityEnd: -1})
	for v := 0; v < 32; v++ {
		target := expandBits(v, 5)
		entry := table[0][target]
		if entry.err != 0 {
			t.Fatalf("target %d: err %d, want 0", target, entry.err)
		}
		if got := expandBits(int(entry.start), 5); got != target {
			t.Fatalf("target %d: start expands to %d", target, got)
		}
	}
}

func TestSingleColourLookup_InterpolatedSlots(t *testing.T) {
	table := singleColourLookup(singleColourKey{bits: 5, model: modelBC1K4, parityStart: -1, parityEnd: -1})

	// The table's reproduced byte must match the decode interpolation.
	for target := 0; target < 256; target += 7 {
		for slot := 0; slot < 4; slot++ {
			entry := table[slot][target]
			got := interpByte(modelBC1K4, slot, expandBits(int(entry.start), 5), expandBits(int(entry.end), 5))
			diff := int(got) - target
			if diff < 0 {
				diff = -diff
			}
			if diff != int(entry.err) {
				t.Fatalf("slot %d target %d: recorded err %d, actual %d", slot, target, entry.err, diff)
			}
		}
	}
}

func TestSingleColourLookup_ParityRespected(t *testing.T) {
	table := singleColourLookup(singleColourKey{bits: 7, model: modelBC7I3, parityStart: 1, parityEnd: 0})
	for target := 0; target < 256; target += 13 {
		entry := table[2][target]
		if entry.start&1 != 1 {
			t.Fatalf("target %d: start parity %d, want 1", target, entry.start&1)
		}
		if entry.end&1 != 0 {
			t.Fatalf("target %d: end parity %d, want 0", target, entry.end&1)
		}
	}
}

func TestSingleColourFit_LatticeColorIsExact(t *testing.T) {
	// A color that lies on the 5:6:5 lattice compresses with zero error.
	block := solidBlock(expandBits(10, 5), expandBits(33, 6), expandBits(27, 5), 255)
	set := newPaletteSet(&block, 0xFFFF, Flags{}, maskRGB)

	q := newQuantizer565()
	fit := singleColourFit(set, q, modelBC1K4, Vec4{1, 1, 1, 0})
	if !fit.valid {
		t.Fatalf("singleColourFit: no fit")
	}
	if fit.err != 0 {
		t.Fatalf("lattice color error: got %v, want 0", fit.err)
	}
}

func TestSingleColourFit_OffLatticeWithinOneStep(t *testing.T) {
	block := solidBlock(3, 200, 77, 255)
	set := newPaletteSet(&block, 0xFFFF, Flags{}, maskRGB)

	q := newQuantizer565()
	fit := singleColourFit(set, q, modelBC1K4, Vec4{1, 1, 1, 0})
	if !fit.valid {
		t.Fatalf("singleColourFit: no fit")
	}

	var buf [16]Vec4
	codebook := modelCodebook(q, modelBC1K4)(fit.qe, buf[:0])
	slot := codebook[fit.indices[0]]

	// Interpolated palette entries sit between lattice points, so the best
	// reproduction is within half a 5-bit step per channel.
	point := set.Points()[0]
	for ch := 0; ch < 3; ch++ {
		if d := abs32(slot.Lane(ch) - point.Lane(ch)); d > 4.5/255 {
			t.Fatalf("channel %d error: %v", ch, d)
		}
	}
}
