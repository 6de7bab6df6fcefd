package squish

import "testing"

func TestVec4_Arithmetic(t *testing.T) {
	a := Vec4{1, 2, 3, 4}
	b := Vec4{4, 3, 2, 1}

	if got := a.Add(b); got != (Vec4{5, 5, 5, 5}) {
		t.Fatalf("Add: got %+v", got)
	}
	if got := a.Dot(b); got != 4+6+6+4 {
		t.Fatalf("Dot: got %v, want 20", got)
	}
	if got := a.Min(b); got != (Vec4{1, 2, 2, 1}) {
		t.Fatalf("Min: got %+v", got)
	}
	if got := a.Max(b); got != (Vec4{4, 3, 3, 4}) {
		t.Fatalf("Max: got %+v", got)
	}
	if got := a.HorizontalAdd(); got != 10 {
		t.Fatalf("HorizontalAdd: got %v, want 10", got)
	}
}

func TestVec4_PackUnpackBytes(t *testing.T) {
	v := UnpackBytes(0, 128, 255, 17)
	r, g, b, a := v.Scale(255).PackBytes()
	if r != 0 || g != 128 || b != 255 || a != 17 {
		t.Fatalf("pack(unpack): got %d/%d/%d/%d", r, g, b, a)
	}

	// Out-of-range values saturate.
	if got := packByte(300); got != 255 {
		t.Fatalf("packByte(300): got %d, want 255", got)
	}
	if got := packByte(-3); got != 0 {
		t.Fatalf("packByte(-3): got %d, want 0", got)
	}
}

func TestVec4_Lanes(t *testing.T) {
	v := Vec4{10, 20, 30, 40}
	for i := 0; i < 4; i++ {
		if got := v.Lane(i); got != float32(10*(i+1)) {
			t.Fatalf("Lane(%d): got %v", i, got)
		}
	}
	v = v.SetLane(2, 99)
	if v.Z != 99 {
		t.Fatalf("SetLane: got %+v", v)
	}
}

func TestBits_ReadWriteRoundTrip(t *testing.T) {
	var buf [16]byte

	writeBits(0x2B, 6, 3, buf[:])
	if got := readBits(6, 3, buf[:]); got != 0x2B {
		t.Fatalf("readBits: got %#x, want 0x2b", got)
	}

	// Straddle a byte boundary.
	writeBits(0x1FF, 9, 13, buf[:])
	if got := readBits(9, 13, buf[:]); got != 0x1FF {
		t.Fatalf("readBits straddle: got %#x, want 0x1ff", got)
	}
	// The neighboring field is untouched.
	if got := readBits(6, 3, buf[:]); got != 0x2B {
		t.Fatalf("neighbor field clobbered: got %#x", got)
	}
}
