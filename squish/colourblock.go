package squish

import "encoding/binary"

// BC1 color blocks store two 5:6:5 endpoints followed by 16 2-bit palette
// indices, LSB first. The endpoint order is the mode selector: c0 > c1
// decodes the four-entry palette, c0 <= c1 the three-entry palette with
// transparent black at index 3. Inside BC2/BC3 the color payload always
// decodes four-entry.

func pack565(lat [4]uint8) uint16 {
	return uint16(lat[0])<<11 | uint16(lat[1])<<5 | uint16(lat[2])
}

func unpack565(v uint16) (r, g, b uint8) {
	r = expandBits(int(v>>11)&0x1F, 5)
	g = expandBits(int(v>>5)&0x3F, 6)
	b = expandBits(int(v)&0x1F, 5)
	return
}

// fit-order to storage-order index maps (fit slots ascend along the segment).
var (
	bc1StorageIndex4 = [4]uint8{0, 2, 3, 1}
	bc1StorageIndex3 = [3]uint8{0, 2, 1}
)

// writeColourBlock serializes a color fit into an 8-byte BC1 payload.
// threeColour selects the 3-entry palette (binary transparency); alwaysFour
// is set for BC2/BC3 payloads where decode ignores the endpoint order.
func writeColourBlock(res *fitResult, set *PaletteSet, threeColour, alwaysFour bool, out []byte) {
	c0 := pack565(res.qe.start)
	c1 := pack565(res.qe.end)

	// Translate fit-order indices to storage order.
	var storage [16]uint8
	if threeColour {
		var perPoint [16]uint8
		for i := 0; i < set.Count(); i++ {
			perPoint[i] = bc1StorageIndex3[res.indices[i]]
		}
		set.RemapIndices(perPoint[:], &storage, 3)

		if c0 > c1 {
			// Three-entry decode needs c0 <= c1: swap endpoints and mirror.
			c0, c1 = c1, c0
			for i := range storage {
				switch storage[i] {
				case 0:
					storage[i] = 1
				case 1:
					storage[i] = 0
				}
			}
		}
	} else {
		var perPoint [16]uint8
		for i := 0; i < set.Count(); i++ {
			perPoint[i] = bc1StorageIndex4[res.indices[i]]
		}
		set.RemapIndices(perPoint[:], &storage, 0)

		if !alwaysFour {
			if c0 < c1 {
				// Four-entry decode needs c0 > c1: swap endpoints and mirror
				// (0<->1, 2<->3).
				c0, c1 = c1, c0
				for i := range storage {
					storage[i] ^= 1
				}
			} else if c0 == c1 {
				// Equal endpoints decode three-entry; index 3 would turn
				// transparent, so collapse everything onto endpoint 0.
				for i := range storage {
					storage[i] = 0
				}
			}
		}
	}

	binary.LittleEndian.PutUint16(out[0:2], c0)
	binary.LittleEndian.PutUint16(out[2:4], c1)
	for i := 0; i < 4; i++ {
		out[4+i] = storage[4*i] | storage[4*i+1]<<2 | storage[4*i+2]<<4 | storage[4*i+3]<<6
	}
}

// decompressColourBlock expands an 8-byte BC1 payload into 16 RGBA pixels.
// alwaysFour forces the four-entry palette (BC2/BC3 payloads).
func decompressColourBlock(block []byte, alwaysFour bool, out *[64]byte) {
	c0 := binary.LittleEndian.Uint16(block[0:2])
	c1 := binary.LittleEndian.Uint16(block[2:4])

	r0, g0, b0 := unpack565(c0)
	r1, g1, b1 := unpack565(c1)

	var codes [4][4]uint8
	codes[0] = [4]uint8{r0, g0, b0, 255}
	codes[1] = [4]uint8{r1, g1, b1, 255}

	if alwaysFour || c0 > c1 {
		codes[2] = [4]uint8{
			interpByte(modelBC1K4, 1, r0, r1),
			interpByte(modelBC1K4, 1, g0, g1),
			interpByte(modelBC1K4, 1, b0, b1),
			255,
		}
		codes[3] = [4]uint8{
			interpByte(modelBC1K4, 2, r0, r1),
			interpByte(modelBC1K4, 2, g0, g1),
			interpByte(modelBC1K4, 2, b0, b1),
			255,
		}
	} else {
		codes[2] = [4]uint8{
			interpByte(modelBC1K3, 1, r0, r1),
			interpByte(modelBC1K3, 1, g0, g1),
			interpByte(modelBC1K3, 1, b0, b1),
			255,
		}
		codes[3] = [4]uint8{0, 0, 0, 0}
	}

	for i := 0; i < 16; i++ {
		idx := (block[4+i/4] >> uint(2*(i&3))) & 3
		c := codes[idx]
		out[4*i+0] = c[0]
		out[4*i+1] = c[1]
		out[4*i+2] = c[2]
		out[4*i+3] = c[3]
	}
}
