package squish_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/PIlin/squish-ccr/squish"
)

func solid(r, g, b, a uint8) [64]byte {
	var block [64]byte
	for i := 0; i < 16; i++ {
		block[4*i+0] = r
		block[4*i+1] = g
		block[4*i+2] = b
		block[4*i+3] = a
	}
	return block
}

func blockError(a, b *[64]byte) int64 {
	var total int64
	for i := range a {
		d := int64(a[i]) - int64(b[i])
		total += d * d
	}
	return total
}

var allFormats = []squish.Format{
	squish.BC1, squish.BC2, squish.BC3, squish.BC4, squish.BC5, squish.BC7,
}

func TestScenarioS1_SolidRed(t *testing.T) {
	block := solid(255, 0, 0, 255)

	for _, format := range []squish.Format{squish.BC1, squish.BC7} {
		enc, err := squish.CompressBlock(&block, format, squish.Flags{Quality: squish.QualityNormal})
		if err != nil {
			t.Fatalf("%v: compress: %v", format, err)
		}
		dec, err := squish.DecompressBlock(enc, format)
		if err != nil {
			t.Fatalf("%v: decompress: %v", format, err)
		}
		if *dec != block {
			t.Fatalf("%v: decompressed output differs from solid red input", format)
		}
	}
}

func TestScenarioS2_BlackWhiteRows(t *testing.T) {
	var block [64]byte
	for i := 0; i < 16; i++ {
		v := uint8(0)
		if i >= 8 {
			v = 255
		}
		block[4*i+0] = v
		block[4*i+1] = v
		block[4*i+2] = v
		block[4*i+3] = 255
	}

	enc, err := squish.CompressBlock(&block, squish.BC1, squish.Flags{Quality: squish.QualityNormal})
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	dec, err := squish.DecompressBlock(enc, squish.BC1)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if *dec != block {
		t.Fatalf("black/white rows must survive exactly, got %v", dec[:8])
	}

	// Strict one-step fixed point for an exactly-representable block.
	enc2, err := squish.CompressBlock(dec, squish.BC1, squish.Flags{Quality: squish.QualityNormal})
	if err != nil {
		t.Fatalf("recompress: %v", err)
	}
	if !bytes.Equal(enc, enc2) {
		t.Fatalf("recompression differs: %x vs %x", enc, enc2)
	}
}

func TestScenarioS3_GradientMonotoneIndices(t *testing.T) {
	var block [64]byte
	for i := 0; i < 16; i++ {
		v := uint8(i * 17)
		block[4*i+0] = v
		block[4*i+1] = v
		block[4*i+2] = v
		block[4*i+3] = 255
	}

	enc, err := squish.CompressBlock(&block, squish.BC1, squish.Flags{Quality: squish.QualityHighest})
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	dec, err := squish.DecompressBlock(enc, squish.BC1)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}

	// Indices follow the projection order, so decoded gray values are
	// monotone along the gradient.
	for i := 1; i < 16; i++ {
		if dec[4*i] < dec[4*(i-1)] {
			t.Fatalf("decoded gradient not monotone at %d: %d < %d", i, dec[4*i], dec[4*(i-1)])
		}
	}
	// The least-squares endpoints sit near (not past) the observed extremes.
	if dec[0] > 64 || dec[4*15] < 191 {
		t.Fatalf("gradient extent collapsed: %d .. %d", dec[0], dec[4*15])
	}
}

func TestScenarioS4_QualityMonotone(t *testing.T) {
	// A fixed pseudo-random block (hand-rolled LCG so the test is hermetic).
	var block [64]byte
	state := uint32(0x12345)
	for i := range block {
		state = state*1664525 + 1013904223
		block[i] = uint8(state >> 24)
	}

	for _, format := range allFormats {
		errAt := func(q squish.Quality) int64 {
			flags := squish.Flags{Quality: q, Metric: squish.MetricUniform}
			enc, err := squish.CompressBlock(&block, format, flags)
			if err != nil {
				t.Fatalf("%v: compress: %v", format, err)
			}
			dec, err := squish.DecompressBlock(enc, format)
			if err != nil {
				t.Fatalf("%v: decompress: %v", format, err)
			}
			// Compare only the channels the format stores.
			var ref [64]byte = block
			switch format {
			case squish.BC1, squish.BC2, squish.BC3:
				for i := 0; i < 16; i++ {
					ref[4*i+3] = dec[4*i+3]
				}
			case squish.BC4:
				for i := 0; i < 16; i++ {
					ref[4*i+1] = dec[4*i+1]
					ref[4*i+2] = dec[4*i+2]
					ref[4*i+3] = dec[4*i+3]
				}
			case squish.BC5:
				for i := 0; i < 16; i++ {
					ref[4*i+2] = dec[4*i+2]
					ref[4*i+3] = dec[4*i+3]
				}
			}
			return blockError(&ref, dec)
		}

		fast := errAt(squish.QualityFast)
		normal := errAt(squish.QualityNormal)
		highest := errAt(squish.QualityHighest)

		if normal > fast {
			t.Fatalf("%v: normal error %d exceeds fast %d", format, normal, fast)
		}
		if highest > normal {
			t.Fatalf("%v: highest error %d exceeds normal %d", format, highest, normal)
		}
	}
}

func TestScenarioS5_RecompressionFixedPoint(t *testing.T) {
	// A four-color ramp that is exactly a BC1 palette: endpoints expand to
	// (0,0,0) and (90,60,99) on the 5:6:5 lattice, and both interior slots
	// divide without rounding, so the whole ramp is colinear byte-for-byte.
	var ramp [64]byte
	rampColors := [4][3]uint8{{0, 0, 0}, {30, 20, 33}, {60, 40, 66}, {90, 60, 99}}
	for i := 0; i < 16; i++ {
		c := rampColors[i/4]
		ramp[4*i+0] = c[0]
		ramp[4*i+1] = c[1]
		ramp[4*i+2] = c[2]
		ramp[4*i+3] = 255
	}

	// A plain channel gradient for the interpolated-channel formats; its
	// extremes are endpoint slots, which pins the recompression seed.
	var gradient [64]byte
	for i := 0; i < 16; i++ {
		gradient[4*i+0] = uint8(i * 15)
		gradient[4*i+1] = uint8(30 + i*11)
		gradient[4*i+2] = uint8(255 - i*9)
		gradient[4*i+3] = 255
	}

	inputs := map[squish.Format]*[64]byte{
		squish.BC1: &ramp,
		squish.BC2: &ramp,
		squish.BC3: &ramp,
		squish.BC4: &gradient,
		squish.BC5: &gradient,
	}

	flags := squish.Flags{Quality: squish.QualityNormal}
	for format, input := range inputs {
		b1, err := squish.CompressBlock(input, format, flags)
		if err != nil {
			t.Fatalf("%v: compress: %v", format, err)
		}
		d1, err := squish.DecompressBlock(b1, format)
		if err != nil {
			t.Fatalf("%v: decompress: %v", format, err)
		}
		b2, err := squish.CompressBlock(d1, format, flags)
		if err != nil {
			t.Fatalf("%v: recompress: %v", format, err)
		}
		d2, err := squish.DecompressBlock(b2, format)
		if err != nil {
			t.Fatalf("%v: re-decompress: %v", format, err)
		}
		b3, err := squish.CompressBlock(d2, format, flags)
		if err != nil {
			t.Fatalf("%v: third compress: %v", format, err)
		}

		// Palette-generated pixels compress losslessly, so the second
		// encoding is a fixed point.
		if !bytes.Equal(b2, b3) {
			t.Fatalf("%v: recompression not a fixed point:\n  b2=%x\n  b3=%x", format, b2, b3)
		}
		if *d1 != *d2 {
			t.Fatalf("%v: recompression changed decoded pixels", format)
		}
	}
}

func TestScenarioS5_FixedPointBC7(t *testing.T) {
	// Black and white are exactly representable in every BC7 encode mode the
	// compressor searches, so the very first encoding is already the fixed
	// point.
	var block [64]byte
	for i := 0; i < 16; i++ {
		v := uint8(0)
		if (i+i/4)%2 == 1 {
			v = 255
		}
		block[4*i+0] = v
		block[4*i+1] = v
		block[4*i+2] = v
		block[4*i+3] = 255
	}

	flags := squish.Flags{Quality: squish.QualityNormal}
	b1, err := squish.CompressBlock(&block, squish.BC7, flags)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	d1, err := squish.DecompressBlock(b1, squish.BC7)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if *d1 != block {
		t.Fatalf("black/white block must survive bc7 exactly")
	}
	b2, err := squish.CompressBlock(d1, squish.BC7, flags)
	if err != nil {
		t.Fatalf("recompress: %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Fatalf("recompression differs: %x vs %x", b1, b2)
	}
}

func TestCompress_Deterministic(t *testing.T) {
	var block [64]byte
	state := uint32(0xBEEF)
	for i := range block {
		state = state*1664525 + 1013904223
		block[i] = uint8(state >> 16)
	}
	flags := squish.Flags{Quality: squish.QualityHighest, Metric: squish.MetricPerceptual}

	ref, err := squish.CompressBlock(&block, squish.BC7, flags)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	// Same input, same flags, many goroutines: identical bytes.
	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			out, err := squish.CompressBlock(&block, squish.BC7, flags)
			if err == nil {
				results[g] = out
			}
		}(g)
	}
	wg.Wait()

	for g, out := range results {
		if !bytes.Equal(out, ref) {
			t.Fatalf("goroutine %d: output differs: %x vs %x", g, out, ref)
		}
	}
}

func TestCompress_AllZeroAllOne(t *testing.T) {
	zero := solid(0, 0, 0, 255)
	one := solid(255, 255, 255, 255)

	for _, format := range allFormats {
		for name, block := range map[string]*[64]byte{"zero": &zero, "one": &one} {
			enc, err := squish.CompressBlock(block, format, squish.Flags{})
			if err != nil {
				t.Fatalf("%v/%s: compress: %v", format, name, err)
			}
			dec, err := squish.DecompressBlock(enc, format)
			if err != nil {
				t.Fatalf("%v/%s: decompress: %v", format, name, err)
			}
			for i := 0; i < 16; i++ {
				if dec[4*i] != block[4*i] {
					t.Fatalf("%v/%s: pixel %d red got %d, want %d", format, name, i, dec[4*i], block[4*i])
				}
			}
		}
	}
}

func TestCompress_TransparentPixelsIgnoreRGB(t *testing.T) {
	base := solid(200, 10, 10, 255)
	noisy := base
	// Same block, but the transparent pixel carries wild RGB: it must not
	// influence endpoint placement.
	base[4*7+3] = 0
	noisy[4*7+3] = 0
	noisy[4*7+0] = 3
	noisy[4*7+1] = 250
	noisy[4*7+2] = 99

	flags := squish.Flags{Quality: squish.QualityNormal, AlphaCutoff: 16}
	encBase, err := squish.CompressBlock(&base, squish.BC1, flags)
	if err != nil {
		t.Fatalf("compress base: %v", err)
	}
	encNoisy, err := squish.CompressBlock(&noisy, squish.BC1, flags)
	if err != nil {
		t.Fatalf("compress noisy: %v", err)
	}
	if !bytes.Equal(encBase, encNoisy) {
		t.Fatalf("transparent pixel RGB leaked into encoding: %x vs %x", encBase, encNoisy)
	}

	dec, err := squish.DecompressBlock(encNoisy, squish.BC1)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if dec[4*7+3] != 0 {
		t.Fatalf("transparent pixel alpha: got %d, want 0", dec[4*7+3])
	}
}

func TestCompress_BadInputs(t *testing.T) {
	block := solid(1, 2, 3, 255)

	if _, err := squish.CompressBlock(nil, squish.BC1, squish.Flags{}); err == nil {
		t.Fatalf("nil block: expected error")
	}
	if _, err := squish.CompressBlock(&block, squish.Format(99), squish.Flags{}); err == nil {
		t.Fatalf("bad format: expected error")
	}
	if _, err := squish.CompressBlock(&block, squish.BC1, squish.Flags{Quality: 17}); err == nil {
		t.Fatalf("bad quality: expected error")
	}
	if _, err := squish.DecompressBlock(make([]byte, 4), squish.BC1); err == nil {
		t.Fatalf("short block: expected error")
	}
	if _, err := squish.DecompressBlock(make([]byte, 16), squish.BC7); err == nil {
		t.Fatalf("reserved mode: expected error")
	}
}

func TestCompressImage_RoundTrip(t *testing.T) {
	const width, height = 10, 6 // exercises partial edge blocks

	rgba := make([]byte, 4*width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := 4 * (y*width + x)
			rgba[off+0] = uint8(x * 25)
			rgba[off+1] = uint8(y * 42)
			rgba[off+2] = uint8(255 - x*20)
			rgba[off+3] = 255
		}
	}

	for _, format := range allFormats {
		enc, err := squish.CompressImage(rgba, width, height, format, squish.Flags{Quality: squish.QualityFast})
		if err != nil {
			t.Fatalf("%v: compress image: %v", format, err)
		}
		if len(enc) != squish.StorageRequirements(width, height, format) {
			t.Fatalf("%v: compressed size %d, want %d", format, len(enc), squish.StorageRequirements(width, height, format))
		}

		dec, err := squish.DecompressImage(enc, width, height, format)
		if err != nil {
			t.Fatalf("%v: decompress image: %v", format, err)
		}
		if len(dec) != len(rgba) {
			t.Fatalf("%v: decompressed size %d, want %d", format, len(dec), len(rgba))
		}
	}
}

func TestCompressImage_MatchesBlockAPI(t *testing.T) {
	const width, height = 8, 8

	rgba := make([]byte, 4*width*height)
	state := uint32(7)
	for i := range rgba {
		state = state*1664525 + 1013904223
		rgba[i] = uint8(state >> 24)
	}

	flags := squish.Flags{Quality: squish.QualityNormal}
	enc, err := squish.CompressImage(rgba, width, height, squish.BC3, flags)
	if err != nil {
		t.Fatalf("compress image: %v", err)
	}

	// The image path is a parallel fan-out over the same per-block calls.
	var block [64]byte
	for by := 0; by < 2; by++ {
		for bx := 0; bx < 2; bx++ {
			for py := 0; py < 4; py++ {
				for px := 0; px < 4; px++ {
					src := 4 * ((4*by+py)*width + 4*bx + px)
					dst := 4 * (4*py + px)
					copy(block[dst:dst+4], rgba[src:src+4])
				}
			}
			want, err := squish.CompressBlock(&block, squish.BC3, flags)
			if err != nil {
				t.Fatalf("compress block: %v", err)
			}
			i := by*2 + bx
			got := enc[i*16 : (i+1)*16]
			if !bytes.Equal(got, want) {
				t.Fatalf("block (%d,%d): image path %x, block path %x", bx, by, got, want)
			}
		}
	}
}
