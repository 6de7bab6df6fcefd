// Package squish implements a fixed-rate block texture codec for the BCn
// family (BC1-BC5, BC7), compressing independent 4x4 RGBA blocks through
// principal-axis endpoint search, closed-form cluster fitting, and
// per-format bit-exact serialization.
package squish

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// BlockPixels is the size of one decoded 4x4 RGBA block in bytes.
const BlockPixels = 64

// compressColourPayload fits and writes the 8-byte BC1-style color payload.
// isBC1 enables the order-encoded three-entry mode and binary transparency.
func compressColourPayload(rgba *[64]byte, mask uint32, flags Flags, isBC1 bool, out []byte) {
	metric := flags.metricWeights()
	metric.W = 0 // alpha never participates in the color payload error

	q := newQuantizer565()

	setFlags := flags
	if !isBC1 {
		setFlags.AlphaCutoff = 0
	}
	set := newPaletteSet(rgba, mask, setFlags, maskRGB)

	if isBC1 && set.IsTransparent() {
		// Transparency forces the three-entry palette.
		fit := fitColour(set, q, modelBC1K3, metric, flags.Quality)
		writeColourBlock(&fit, set, true, false, out)
		return
	}

	fit4 := fitColour(set, q, modelBC1K4, metric, flags.Quality)
	if isBC1 && flags.Quality >= QualityHighest {
		// The three-entry palette's midpoint sometimes beats both thirds.
		if fit3 := fitColour(set, q, modelBC1K3, metric, flags.Quality); fit3.valid && fit3.err < fit4.err {
			writeColourBlock(&fit3, set, true, false, out)
			return
		}
	}
	writeColourBlock(&fit4, set, false, !isBC1, out)
}

func channelValues(rgba *[64]byte, channel int) [16]uint8 {
	var v [16]uint8
	for t := 0; t < 16; t++ {
		v[t] = rgba[4*t+channel]
	}
	return v
}

// CompressBlockMasked compresses one 4x4 RGBA block. mask holds one bit per
// pixel; cleared bits mark pixels whose value is free (blocks straddling an
// image edge). The returned slice is BlockSize bytes for the format.
func CompressBlockMasked(rgba *[64]byte, mask uint32, format Format, flags Flags) ([]byte, error) {
	if rgba == nil {
		return nil, newError(ErrBadParam, "squish: nil pixel block")
	}
	if err := validateFlags(flags); err != nil {
		return nil, err
	}
	size := format.BlockSize()
	if size == 0 {
		return nil, newError(ErrBadFormat, "squish: unknown format")
	}
	mask &= 0xFFFF

	out := make([]byte, size)
	switch format {
	case BC1:
		compressColourPayload(rgba, mask, flags, true, out)

	case BC2:
		alpha := channelValues(rgba, 3)
		for t := 0; t < 16; t++ {
			if mask&(1<<uint(t)) == 0 {
				alpha[t] = 0
			}
		}
		compressAlphaBC2(&alpha, out[:8])
		compressColourPayload(rgba, mask, flags, false, out[8:])

	case BC3:
		alpha := channelValues(rgba, 3)
		compressAlphaBlock(&alpha, mask, flags.Quality, out[:8])
		compressColourPayload(rgba, mask, flags, false, out[8:])

	case BC4:
		red := channelValues(rgba, 0)
		compressAlphaBlock(&red, mask, flags.Quality, out)

	case BC5:
		red := channelValues(rgba, 0)
		green := channelValues(rgba, 1)
		compressAlphaBlock(&red, mask, flags.Quality, out[:8])
		compressAlphaBlock(&green, mask, flags.Quality, out[8:])

	case BC7:
		compressPaletteBlock(rgba, mask, flags, out)
	}

	return out, nil
}

// CompressBlock compresses one fully-covered 4x4 RGBA block.
func CompressBlock(rgba *[64]byte, format Format, flags Flags) ([]byte, error) {
	return CompressBlockMasked(rgba, 0xFFFF, format, flags)
}

// DecompressBlock expands one compressed block into 16 RGBA pixels.
//
// Besides an unknown format or a block shorter than the format's block size,
// it fails only on malformed bit patterns (the reserved BC7 mode).
func DecompressBlock(block []byte, format Format) (*[64]byte, error) {
	size := format.BlockSize()
	if size == 0 {
		return nil, newError(ErrBadFormat, "squish: unknown format")
	}
	if len(block) < size {
		return nil, newError(ErrBadParam, "squish: short block")
	}

	out := new([64]byte)
	switch format {
	case BC1:
		decompressColourBlock(block, false, out)

	case BC2:
		decompressColourBlock(block[8:], true, out)
		var alpha [16]uint8
		decompressAlphaBC2(block[:8], &alpha)
		for t := 0; t < 16; t++ {
			out[4*t+3] = alpha[t]
		}

	case BC3:
		decompressColourBlock(block[8:], true, out)
		var alpha [16]uint8
		decompressAlphaBlock(block[:8], &alpha)
		for t := 0; t < 16; t++ {
			out[4*t+3] = alpha[t]
		}

	case BC4:
		var red [16]uint8
		decompressAlphaBlock(block, &red)
		for t := 0; t < 16; t++ {
			out[4*t+0] = red[t]
			out[4*t+1] = red[t]
			out[4*t+2] = red[t]
			out[4*t+3] = 255
		}

	case BC5:
		var red, green [16]uint8
		decompressAlphaBlock(block[:8], &red)
		decompressAlphaBlock(block[8:], &green)
		for t := 0; t < 16; t++ {
			out[4*t+0] = red[t]
			out[4*t+1] = green[t]
			out[4*t+2] = 0
			out[4*t+3] = 255
		}

	case BC7:
		if err := decompressPaletteBlock(block, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// StorageRequirements returns the byte size of a compressed image.
func StorageRequirements(width, height int, format Format) int {
	blocksX := (width + 3) / 4
	blocksY := (height + 3) / 4
	return blocksX * blocksY * format.BlockSize()
}

// extractBlock gathers one 4x4 block from a row-major RGBA image, returning
// the pixel mask for blocks straddling the image edge.
func extractBlock(rgba []byte, width, height, x0, y0 int, block *[64]byte) uint32 {
	mask := uint32(0)
	for py := 0; py < 4; py++ {
		for px := 0; px < 4; px++ {
			t := 4*py + px
			x := x0 + px
			y := y0 + py
			if x < width && y < height {
				off := 4 * (y*width + x)
				copy(block[4*t:4*t+4], rgba[off:off+4])
				mask |= 1 << uint(t)
			} else {
				// Keep out-of-image pixels at a fixed value so edge-block
				// output never depends on scratch buffer history.
				block[4*t+0] = 0
				block[4*t+1] = 0
				block[4*t+2] = 0
				block[4*t+3] = 0
			}
		}
	}
	return mask
}

// CompressImage compresses a row-major RGBA image block by block. Blocks are
// independent, so they are fanned out across the CPUs; output bytes for a
// block depend only on that block's pixels.
func CompressImage(rgba []byte, width, height int, format Format, flags Flags) ([]byte, error) {
	if width <= 0 || height <= 0 || len(rgba) < 4*width*height {
		return nil, newError(ErrBadParam, "squish: invalid image dimensions")
	}
	if err := validateFlags(flags); err != nil {
		return nil, err
	}
	size := format.BlockSize()
	if size == 0 {
		return nil, newError(ErrBadFormat, "squish: unknown format")
	}

	blocksX := (width + 3) / 4
	blocksY := (height + 3) / 4
	total := blocksX * blocksY
	out := make([]byte, total*size)

	workers := runtime.NumCPU()
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	var firstErr atomic.Value

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var block [64]byte
			for {
				i := int(next.Add(1) - 1)
				if i >= total {
					return
				}
				bx := i % blocksX
				by := i / blocksX

				mask := extractBlock(rgba, width, height, 4*bx, 4*by, &block)
				enc, err := CompressBlockMasked(&block, mask, format, flags)
				if err != nil {
					firstErr.CompareAndSwap(nil, err)
					return
				}
				copy(out[i*size:], enc)
			}
		}()
	}
	wg.Wait()

	if err, ok := firstErr.Load().(error); ok {
		return nil, err
	}
	return out, nil
}

// DecompressImage expands a compressed image back to row-major RGBA.
func DecompressImage(data []byte, width, height int, format Format) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, newError(ErrBadParam, "squish: invalid image dimensions")
	}
	size := format.BlockSize()
	if size == 0 {
		return nil, newError(ErrBadFormat, "squish: unknown format")
	}

	blocksX := (width + 3) / 4
	blocksY := (height + 3) / 4
	total := blocksX * blocksY
	if len(data) < total*size {
		return nil, newError(ErrBadParam, "squish: short compressed data")
	}

	out := make([]byte, 4*width*height)
	for i := 0; i < total; i++ {
		block, err := DecompressBlock(data[i*size:(i+1)*size], format)
		if err != nil {
			return nil, err
		}

		bx := i % blocksX
		by := i / blocksX
		for py := 0; py < 4; py++ {
			for px := 0; px < 4; px++ {
				x := 4*bx + px
				y := 4*by + py
				if x < width && y < height {
					t := 4*py + px
					off := 4 * (y*width + x)
					copy(out[off:off+4], block[4*t:4*t+4])
				}
			}
		}
	}
	return out, nil
}
