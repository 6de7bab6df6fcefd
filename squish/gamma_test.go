package squish

import "testing"

func TestComputeGammaLUT_Linear(t *testing.T) {
	lut := ComputeGammaLUT(false)
	if lut[0] != 0 || lut[255] != 1 {
		t.Fatalf("linear extremes: got %v/%v, want 0/1", lut[0], lut[255])
	}
	if d := abs32(lut[51] - 0.2); d > 1e-6 {
		t.Fatalf("linear 51: got %v, want 0.2", lut[51])
	}
}

func TestComputeGammaLUT_SRGB(t *testing.T) {
	lut := ComputeGammaLUT(true)
	if lut[0] != 0 || lut[255] != 1 {
		t.Fatalf("srgb extremes: got %v/%v, want 0/1", lut[0], lut[255])
	}
	// Below the linear toe: 1/255/12.92.
	if d := abs32(lut[1] - 0.000303527); d > 1e-8 {
		t.Fatalf("srgb 1: got %v, want 0.000303527", lut[1])
	}
	// Middle gray decodes darker than linear.
	if lut[128] >= ComputeGammaLUT(false)[128] {
		t.Fatalf("srgb 128: got %v, want < linear %v", lut[128], ComputeGammaLUT(false)[128])
	}
	// Monotone.
	for i := 1; i < 256; i++ {
		if lut[i] <= lut[i-1] {
			t.Fatalf("srgb lut not monotone at %d", i)
		}
	}
}
