package sfnt

import (
	"fmt"

	"github.com/mosaicbrowser/webcore/log"
)

// HeadTable is the 'head' table: font-wide metrics and the format of the
// 'loca' table's offsets.
type HeadTable struct {
	MajorVersion, MinorVersion uint16
	FontRevision               int32 // Fixed 16.16
	Flags                      uint16
	UnitsPerEm                 uint16
	Created, Modified          int64
	XMin, YMin, XMax, YMax     int16
	MacStyle                   uint16
	LowestRecPPEM              uint16
	FontDirectionHint          int16
	IndexToLocFormat           int16 // 0 = short (Offset16), 1 = long (Offset32)
}

func (f *Font) parseHead() error {
	b, ok := f.table("head")
	if !ok {
		return nil
	}
	magic, err := b.u32(12)
	if err != nil {
		return err
	}
	if magic != headMagic {
		log.Warnf("sfnt: head table magic number mismatch (got 0x%08X), continuing anyway", magic)
	}

	var h HeadTable
	var e error
	if h.MajorVersion, e = b.u16(0); e != nil {
		return e
	}
	if h.MinorVersion, e = b.u16(2); e != nil {
		return e
	}
	if rev, e := b.u32(4); e != nil {
		return e
	} else {
		h.FontRevision = int32(rev)
	}
	if h.Flags, e = b.u16(16); e != nil {
		return e
	}
	if h.UnitsPerEm, e = b.u16(18); e != nil {
		return e
	}
	if created, e := b.u32(20); e != nil {
		return e
	} else if createdLow, e := b.u32(24); e != nil {
		return e
	} else {
		h.Created = int64(created)<<32 | int64(createdLow)
	}
	if modified, e := b.u32(28); e != nil {
		return e
	} else if modifiedLow, e := b.u32(32); e != nil {
		return e
	} else {
		h.Modified = int64(modified)<<32 | int64(modifiedLow)
	}
	if h.XMin, e = b.i16(36); e != nil {
		return e
	}
	if h.YMin, e = b.i16(38); e != nil {
		return e
	}
	if h.XMax, e = b.i16(40); e != nil {
		return e
	}
	if h.YMax, e = b.i16(42); e != nil {
		return e
	}
	if h.MacStyle, e = b.u16(44); e != nil {
		return e
	}
	if h.LowestRecPPEM, e = b.u16(46); e != nil {
		return e
	}
	if h.FontDirectionHint, e = b.i16(48); e != nil {
		return e
	}
	if h.IndexToLocFormat, e = b.i16(50); e != nil {
		return e
	}
	f.Head = h
	return nil
}

// MaxpTable is the 'maxp' table. Version 0.5 carries only NumGlyphs; version
// 1.0 adds the per-glyph maxima used by TrueType instruction interpreters.
type MaxpTable struct {
	Version                                                       uint32
	NumGlyphs                                                     uint16
	MaxPoints, MaxContours, MaxCompositePoints, MaxCompositeContours uint16
	MaxZones, MaxTwilightPoints, MaxStorage                      uint16
	MaxFunctionDefs, MaxInstructionDefs, MaxStackElements         uint16
	MaxSizeOfInstructions, MaxComponentElements, MaxComponentDepth uint16
}

func (f *Font) parseMaxp() error {
	b, ok := f.table("maxp")
	if !ok {
		return nil
	}
	version, err := b.u32(0)
	if err != nil {
		return err
	}
	m := MaxpTable{Version: version}
	if m.NumGlyphs, err = b.u16(4); err != nil {
		return err
	}
	switch version {
	case 0x00005000:
		// version 0.5: only numGlyphs.
	case 0x00010000:
		fields := []*uint16{
			&m.MaxPoints, &m.MaxContours, &m.MaxCompositePoints, &m.MaxCompositeContours,
			&m.MaxZones, &m.MaxTwilightPoints, &m.MaxStorage,
			&m.MaxFunctionDefs, &m.MaxInstructionDefs, &m.MaxStackElements,
			&m.MaxSizeOfInstructions, &m.MaxComponentElements, &m.MaxComponentDepth,
		}
		off := 6
		for _, field := range fields {
			v, err := b.u16(off)
			if err != nil {
				return err
			}
			*field = v
			off += 2
		}
	default:
		return &ParseError{Kind: UnsupportedVersion, Tag: "maxp", Offset: 0, Msg: fmt.Sprintf("unsupported maxp version 0x%08X", version)}
	}
	f.Maxp = m
	return nil
}

// HheaTable is the 'hhea' table: horizontal layout metrics shared by every
// glyph, plus the count of explicit entries in 'hmtx'.
type HheaTable struct {
	MajorVersion, MinorVersion            uint16
	Ascender, Descender, LineGap          int16
	AdvanceWidthMax                       uint16
	MinLeftSideBearing, MinRightSideBearing int16
	XMaxExtent                            int16
	CaretSlopeRise, CaretSlopeRun, CaretOffset int16
	NumberOfHMetrics                      uint16
}

func (f *Font) parseHhea() error {
	b, ok := f.table("hhea")
	if !ok {
		return nil
	}
	var h HheaTable
	var e error
	if h.MajorVersion, e = b.u16(0); e != nil {
		return e
	}
	if h.MinorVersion, e = b.u16(2); e != nil {
		return e
	}
	if h.Ascender, e = b.i16(4); e != nil {
		return e
	}
	if h.Descender, e = b.i16(6); e != nil {
		return e
	}
	if h.LineGap, e = b.i16(8); e != nil {
		return e
	}
	if h.AdvanceWidthMax, e = b.u16(10); e != nil {
		return e
	}
	if h.MinLeftSideBearing, e = b.i16(12); e != nil {
		return e
	}
	if h.MinRightSideBearing, e = b.i16(14); e != nil {
		return e
	}
	if h.XMaxExtent, e = b.i16(16); e != nil {
		return e
	}
	if h.CaretSlopeRise, e = b.i16(18); e != nil {
		return e
	}
	if h.CaretSlopeRun, e = b.i16(20); e != nil {
		return e
	}
	if h.CaretOffset, e = b.i16(22); e != nil {
		return e
	}
	if h.NumberOfHMetrics, e = b.u16(34); e != nil {
		return e
	}
	f.Hhea = h
	return nil
}

// HmtxTable is the 'hmtx' table: per-glyph advance width and left side
// bearing. Glyphs beyond NumberOfHMetrics inherit the final advance width
// from the last explicit entry and only carry their own left side bearing.
type HmtxTable struct {
	Advances         []uint16
	LeftSideBearings []int16
}

// AdvanceWidth returns the advance width for the given glyph ID.
func (h HmtxTable) AdvanceWidth(gid int) uint16 {
	if gid < 0 {
		return 0
	}
	if gid < len(h.Advances) {
		return h.Advances[gid]
	}
	if len(h.Advances) == 0 {
		return 0
	}
	return h.Advances[len(h.Advances)-1]
}

// LeftSideBearing returns the left side bearing for the given glyph ID.
func (h HmtxTable) LeftSideBearing(gid int) int16 {
	if gid >= 0 && gid < len(h.LeftSideBearings) {
		return h.LeftSideBearings[gid]
	}
	return 0
}

func (f *Font) parseHmtx() error {
	b, ok := f.table("hmtx")
	if !ok {
		return nil
	}
	numHMetrics := int(f.Hhea.NumberOfHMetrics)
	numGlyphs := int(f.Maxp.NumGlyphs)
	if numHMetrics > numGlyphs {
		numHMetrics = numGlyphs
	}

	var h HmtxTable
	h.Advances = make([]uint16, 0, numHMetrics)
	h.LeftSideBearings = make([]int16, 0, numGlyphs)

	off := 0
	for i := 0; i < numHMetrics; i++ {
		adv, err := b.u16(off)
		if err != nil {
			return err
		}
		lsb, err := b.i16(off + 2)
		if err != nil {
			return err
		}
		h.Advances = append(h.Advances, adv)
		h.LeftSideBearings = append(h.LeftSideBearings, lsb)
		off += 4
	}
	for i := numHMetrics; i < numGlyphs; i++ {
		lsb, err := b.i16(off)
		if err != nil {
			return err
		}
		h.LeftSideBearings = append(h.LeftSideBearings, lsb)
		off += 2
	}
	f.Hmtx = h
	return nil
}

func (f *Font) parseLoca() error {
	b, ok := f.table("loca")
	if !ok {
		return nil
	}
	numGlyphs := int(f.Maxp.NumGlyphs)
	offsets := make([]uint32, 0, numGlyphs+1)

	if f.Head.IndexToLocFormat == 0 {
		for i := 0; i <= numGlyphs; i++ {
			v, err := b.u16(i * 2)
			if err != nil {
				return err
			}
			offsets = append(offsets, uint32(v)*2)
		}
	} else {
		for i := 0; i <= numGlyphs; i++ {
			v, err := b.u32(i * 4)
			if err != nil {
				return err
			}
			offsets = append(offsets, v)
		}
	}
	f.Loca = offsets
	return nil
}
