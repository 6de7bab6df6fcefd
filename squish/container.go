package squish

import (
	"encoding/binary"
	"fmt"
)

// DDS container support: enough of the DirectDraw Surface format to carry a
// single mip level of any block format this codec produces.

var ddsMagic = [4]byte{'D', 'D', 'S', ' '}

const (
	ddsHeaderSize     = 124
	ddsPixelFmtSize   = 32
	dx10HeaderSize    = 20
	ddsFlagsRequired  = 0x00081007 // CAPS | HEIGHT | WIDTH | PIXELFORMAT | LINEARSIZE
	ddsCapsTexture    = 0x00001000
	ddpfFourCC        = 0x00000004
	dxgiFormatBC7     = 98
	d3dDimTexture2D   = 3
	fourCCDXT1        = 0x31545844 // "DXT1"
	fourCCDXT3        = 0x33545844 // "DXT3"
	fourCCDXT5        = 0x35545844 // "DXT5"
	fourCCATI1        = 0x31495441 // "ATI1"
	fourCCATI2        = 0x32495441 // "ATI2"
	fourCCDX10        = 0x30315844 // "DX10"
)

// ContainerHeader describes a parsed DDS surface.
type ContainerHeader struct {
	Width  int
	Height int
	Format Format
}

func (h ContainerHeader) String() string {
	return fmt.Sprintf("DDS %s, %dx%d texels", h.Format, h.Width, h.Height)
}

func formatFourCC(f Format) (uint32, bool) {
	switch f {
	case BC1:
		return fourCCDXT1, false
	case BC2:
		return fourCCDXT3, false
	case BC3:
		return fourCCDXT5, false
	case BC4:
		return fourCCATI1, false
	case BC5:
		return fourCCATI2, false
	default:
		return fourCCDX10, true
	}
}

// MarshalContainer wraps compressed block data in a DDS file.
func MarshalContainer(h ContainerHeader, blocks []byte) ([]byte, error) {
	if h.Width <= 0 || h.Height <= 0 {
		return nil, newError(ErrBadParam, "squish: invalid container dimensions")
	}
	if h.Format.BlockSize() == 0 {
		return nil, newError(ErrBadFormat, "squish: unknown format")
	}
	need := StorageRequirements(h.Width, h.Height, h.Format)
	if len(blocks) < need {
		return nil, newError(ErrBadParam, "squish: short block data")
	}

	fourCC, dx10 := formatFourCC(h.Format)

	size := 4 + ddsHeaderSize
	if dx10 {
		size += dx10HeaderSize
	}
	out := make([]byte, size, size+need)

	copy(out[0:4], ddsMagic[:])
	le := binary.LittleEndian
	le.PutUint32(out[4:], ddsHeaderSize)
	le.PutUint32(out[8:], ddsFlagsRequired)
	le.PutUint32(out[12:], uint32(h.Height))
	le.PutUint32(out[16:], uint32(h.Width))
	le.PutUint32(out[20:], uint32(need)) // linear size
	// depth, mipmap count, reserved1[11] stay zero.

	pf := out[4+72:]
	le.PutUint32(pf[0:], ddsPixelFmtSize)
	le.PutUint32(pf[4:], ddpfFourCC)
	le.PutUint32(pf[8:], fourCC)

	le.PutUint32(out[4+104:], ddsCapsTexture)

	if dx10 {
		ext := out[4+ddsHeaderSize:]
		le.PutUint32(ext[0:], dxgiFormatBC7)
		le.PutUint32(ext[4:], d3dDimTexture2D)
		le.PutUint32(ext[12:], 1) // array size
	}

	return append(out, blocks[:need]...), nil
}

// ParseContainer splits a DDS file into its header and block payload.
func ParseContainer(data []byte) (ContainerHeader, []byte, error) {
	if len(data) < 4+ddsHeaderSize {
		return ContainerHeader{}, nil, newError(ErrBadContainer, "squish: short dds file")
	}
	if data[0] != ddsMagic[0] || data[1] != ddsMagic[1] || data[2] != ddsMagic[2] || data[3] != ddsMagic[3] {
		return ContainerHeader{}, nil, newError(ErrBadContainer, "squish: invalid dds magic")
	}

	le := binary.LittleEndian
	if le.Uint32(data[4:]) != ddsHeaderSize {
		return ContainerHeader{}, nil, newError(ErrBadContainer, "squish: invalid dds header size")
	}

	h := ContainerHeader{
		Height: int(le.Uint32(data[12:])),
		Width:  int(le.Uint32(data[16:])),
	}
	if h.Width <= 0 || h.Height <= 0 {
		return ContainerHeader{}, nil, newError(ErrBadContainer, "squish: invalid dds dimensions")
	}

	pf := data[4+72:]
	if le.Uint32(pf[4:])&ddpfFourCC == 0 {
		return ContainerHeader{}, nil, newError(ErrBadContainer, "squish: uncompressed dds not supported")
	}

	payload := data[4+ddsHeaderSize:]
	switch le.Uint32(pf[8:]) {
	case fourCCDXT1:
		h.Format = BC1
	case fourCCDXT3:
		h.Format = BC2
	case fourCCDXT5:
		h.Format = BC3
	case fourCCATI1:
		h.Format = BC4
	case fourCCATI2:
		h.Format = BC5
	case fourCCDX10:
		if len(payload) < dx10HeaderSize {
			return ContainerHeader{}, nil, newError(ErrBadContainer, "squish: short dx10 header")
		}
		if le.Uint32(payload[0:]) != dxgiFormatBC7 {
			return ContainerHeader{}, nil, newError(ErrBadContainer, "squish: unsupported dxgi format")
		}
		h.Format = BC7
		payload = payload[dx10HeaderSize:]
	default:
		return ContainerHeader{}, nil, newError(ErrBadContainer, "squish: unsupported fourcc")
	}

	need := StorageRequirements(h.Width, h.Height, h.Format)
	if len(payload) < need {
		return ContainerHeader{}, nil, newError(ErrBadContainer, "squish: short dds payload")
	}
	return h, payload[:need], nil
}
