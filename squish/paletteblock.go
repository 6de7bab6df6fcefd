package squish

// paletteBlock is the symbolic form of a BC7 block: everything the bit
// layout stores, before palette expansion.
type paletteBlock struct {
	mode      int
	partition int
	rotation  int
	indexMode int

	// Endpoint lattice values per subset, trailing p-bit merged into the
	// low bit where the mode has one.
	start, end [3][4]uint8

	indices  [16]uint8 // plane 1
	indices2 [16]uint8 // plane 2 (modes 4 and 5)
}

// canonicalize enforces the anchor convention: the anchor texel of every
// subset decodes with its index MSB clear, swapping endpoints and mirroring
// indices where violated. Plane 2 anchors at texel 0.
func (pb *paletteBlock) canonicalize() {
	m := &paletteModes[pb.mode]

	for s := 0; s < m.partitions; s++ {
		anchor := anchorOf(m.partitions, pb.partition, s)
		msb := uint8(1) << uint(m.ib-1)
		if pb.indices[anchor]&msb == 0 {
			continue
		}

		// With a separate alpha plane the color plane only owns lanes 0..2.
		lanes := 4
		if m.ib2 > 0 {
			lanes = 3
		}
		for ch := 0; ch < lanes; ch++ {
			pb.start[s][ch], pb.end[s][ch] = pb.end[s][ch], pb.start[s][ch]
		}

		mirror := uint8(1<<uint(m.ib)) - 1
		for t := 0; t < 16; t++ {
			if subsetOf(m.partitions, pb.partition, t) == s {
				pb.indices[t] = mirror - pb.indices[t]
			}
		}
	}

	if m.ib2 > 0 {
		msb := uint8(1) << uint(m.ib2-1)
		if pb.indices2[0]&msb != 0 {
			// Alpha plane endpoints live in the W lane of subset 0.
			pb.start[0][3], pb.end[0][3] = pb.end[0][3], pb.start[0][3]
			mirror := uint8(1<<uint(m.ib2)) - 1
			for t := 0; t < 16; t++ {
				pb.indices2[t] = mirror - pb.indices2[t]
			}
		}
	}
}

// pack serializes a symbolic block into the 16-byte layout.
func (pb *paletteBlock) pack(out []byte) {
	for i := range out[:16] {
		out[i] = 0
	}
	m := &paletteModes[pb.mode]
	bit := 0

	// Unary mode selector: the mode number is the index of the first set bit.
	writeBits(uint32(1)<<uint(pb.mode), pb.mode+1, bit, out)
	bit += pb.mode + 1

	writeBits(uint32(pb.partition), m.partitionBits, bit, out)
	bit += m.partitionBits
	writeBits(uint32(pb.rotation), m.rotationBits, bit, out)
	bit += m.rotationBits
	writeBits(uint32(pb.indexMode), m.indexModeBits, bit, out)
	bit += m.indexModeBits

	// Endpoint channel bits, per channel then per subset, start before end.
	// A stored value drops the merged p-bit.
	shift := 0
	if m.sb != sbNone {
		shift = 1
	}
	for ch := 0; ch < 4; ch++ {
		n := m.cb
		if ch == 3 {
			n = m.ab
		}
		if n == 0 {
			continue
		}
		for s := 0; s < m.partitions; s++ {
			writeBits(uint32(pb.start[s][ch])>>uint(shift), n, bit, out)
			bit += n
			writeBits(uint32(pb.end[s][ch])>>uint(shift), n, bit, out)
			bit += n
		}
	}

	// Shared bits.
	switch m.sb {
	case sbUnique:
		for s := 0; s < m.partitions; s++ {
			writeBits(uint32(pb.start[s][0])&1, 1, bit, out)
			bit++
			writeBits(uint32(pb.end[s][0])&1, 1, bit, out)
			bit++
		}
	case sbShared:
		for s := 0; s < m.partitions; s++ {
			writeBits(uint32(pb.start[s][0])&1, 1, bit, out)
			bit++
		}
	}

	// Plane 1 indices; anchors drop their MSB.
	for t := 0; t < 16; t++ {
		n := m.ib
		s := subsetOf(m.partitions, pb.partition, t)
		if t == anchorOf(m.partitions, pb.partition, s) {
			n--
		}
		writeBits(uint32(pb.indices[t]), n, bit, out)
		bit += n
	}

	// Plane 2 indices; the anchor is texel 0.
	if m.ib2 > 0 {
		for t := 0; t < 16; t++ {
			n := m.ib2
			if t == 0 {
				n--
			}
			writeBits(uint32(pb.indices2[t]), n, bit, out)
			bit += n
		}
	}
}

// unpack parses a 16-byte layout into symbolic form. It fails only on the
// reserved mode pattern (no set bit in the first byte).
func (pb *paletteBlock) unpack(block []byte) error {
	mode := -1
	for i := 0; i < 8; i++ {
		if block[0]&(1<<uint(i)) != 0 {
			mode = i
			break
		}
	}
	if mode < 0 {
		return newError(ErrBadBlock, "squish: reserved bc7 mode")
	}

	*pb = paletteBlock{mode: mode}
	m := &paletteModes[mode]
	bit := mode + 1

	pb.partition = int(readBits(m.partitionBits, bit, block))
	bit += m.partitionBits
	pb.rotation = int(readBits(m.rotationBits, bit, block))
	bit += m.rotationBits
	pb.indexMode = int(readBits(m.indexModeBits, bit, block))
	bit += m.indexModeBits

	shift := 0
	if m.sb != sbNone {
		shift = 1
	}
	for ch := 0; ch < 4; ch++ {
		n := m.cb
		if ch == 3 {
			n = m.ab
		}
		if n == 0 {
			continue
		}
		for s := 0; s < m.partitions; s++ {
			pb.start[s][ch] = uint8(readBits(n, bit, block) << uint(shift))
			bit += n
			pb.end[s][ch] = uint8(readBits(n, bit, block) << uint(shift))
			bit += n
		}
	}

	switch m.sb {
	case sbUnique:
		for s := 0; s < m.partitions; s++ {
			sp := readBits(1, bit, block)
			bit++
			ep := readBits(1, bit, block)
			bit++
			for ch := 0; ch < 4; ch++ {
				n := m.cb
				if ch == 3 {
					n = m.ab
				}
				if n == 0 {
					continue
				}
				pb.start[s][ch] |= uint8(sp)
				pb.end[s][ch] |= uint8(ep)
			}
		}
	case sbShared:
		for s := 0; s < m.partitions; s++ {
			p := readBits(1, bit, block)
			bit++
			for ch := 0; ch < 3; ch++ {
				pb.start[s][ch] |= uint8(p)
				pb.end[s][ch] |= uint8(p)
			}
		}
	}

	for t := 0; t < 16; t++ {
		n := m.ib
		s := subsetOf(m.partitions, pb.partition, t)
		if t == anchorOf(m.partitions, pb.partition, s) {
			n--
		}
		pb.indices[t] = uint8(readBits(n, bit, block))
		bit += n
	}

	if m.ib2 > 0 {
		for t := 0; t < 16; t++ {
			n := m.ib2
			if t == 0 {
				n--
			}
			pb.indices2[t] = uint8(readBits(n, bit, block))
			bit += n
		}
	}

	return nil
}

// decompressPaletteBlock expands a BC7 block into 16 RGBA pixels.
func decompressPaletteBlock(block []byte, out *[64]byte) error {
	var pb paletteBlock
	if err := pb.unpack(block); err != nil {
		return err
	}
	m := &paletteModes[pb.mode]

	eb := m.cb
	ab := m.ab
	if m.sb != sbNone {
		eb++
		ab++
	}

	// Expanded endpoint bytes per subset.
	var sa, ea [3][4]uint8
	for s := 0; s < m.partitions; s++ {
		for ch := 0; ch < 3; ch++ {
			sa[s][ch] = expandBits(int(pb.start[s][ch]), eb)
			ea[s][ch] = expandBits(int(pb.end[s][ch]), eb)
		}
		if m.ab > 0 {
			sa[s][3] = expandBits(int(pb.start[s][3]), ab)
			ea[s][3] = expandBits(int(pb.end[s][3]), ab)
		} else {
			sa[s][3], ea[s][3] = 255, 255
		}
	}

	// Plane 1 drives color and plane 2 alpha; the index-selection bit of
	// mode 4 swaps the two planes.
	colorWeights := bc7WeightsFor(m.ib)
	alphaWeights := colorWeights
	if m.ib2 > 0 {
		alphaWeights = bc7WeightsFor(m.ib2)
		if pb.indexMode == 1 {
			colorWeights, alphaWeights = alphaWeights, colorWeights
		}
	}

	for t := 0; t < 16; t++ {
		s := subsetOf(m.partitions, pb.partition, t)

		colorIdx := int(pb.indices[t])
		alphaIdx := colorIdx
		if m.ib2 > 0 {
			alphaIdx = int(pb.indices2[t])
			if pb.indexMode == 1 {
				colorIdx, alphaIdx = alphaIdx, colorIdx
			}
		}

		cw := colorWeights[colorIdx]
		aw := alphaWeights[alphaIdx]

		r := bc7Interp(sa[s][0], ea[s][0], cw)
		g := bc7Interp(sa[s][1], ea[s][1], cw)
		b := bc7Interp(sa[s][2], ea[s][2], cw)
		a := bc7Interp(sa[s][3], ea[s][3], aw)

		// Undo channel rotation: the encoder swapped alpha with a color
		// channel before fitting.
		switch pb.rotation {
		case 1:
			r, a = a, r
		case 2:
			g, a = a, g
		case 3:
			b, a = a, b
		}

		out[4*t+0] = r
		out[4*t+1] = g
		out[4*t+2] = b
		out[4*t+3] = a
	}

	return nil
}
