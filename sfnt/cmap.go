package sfnt

import "fmt"

// EncodingRecord pairs a (platform, encoding) with the byte offset of its
// cmap subtable.
type EncodingRecord struct {
	PlatformID, EncodingID uint16
	Offset                 uint32
}

// Subtable maps character codes to glyph indices.
type Subtable interface {
	Lookup(c rune) (uint16, bool)
}

// CmapTable is the 'cmap' table: a set of (platform, encoding) subtables,
// each an independent character-to-glyph mapping.
type CmapTable struct {
	Version         uint16
	EncodingRecords []EncodingRecord
	Subtables       map[EncodingRecord]Subtable
}

func (f *Font) parseCmap() error {
	b, ok := f.table("cmap")
	if !ok {
		return nil
	}
	version, err := b.u16(0)
	if err != nil {
		return err
	}
	numTables, err := b.u16(2)
	if err != nil {
		return err
	}

	c := &CmapTable{Version: version, Subtables: make(map[EncodingRecord]Subtable, numTables)}
	off := 4
	for i := 0; i < int(numTables); i++ {
		platform, err := b.u16(off)
		if err != nil {
			return err
		}
		encoding, err := b.u16(off + 2)
		if err != nil {
			return err
		}
		subOff, err := b.u32(off + 4)
		if err != nil {
			return err
		}
		off += 8

		rec := EncodingRecord{PlatformID: platform, EncodingID: encoding, Offset: subOff}
		c.EncodingRecords = append(c.EncodingRecords, rec)

		format, err := b.u16(int(subOff))
		if err != nil {
			return err
		}
		sub, err := parseCmapSubtable(b, int(subOff), format)
		if err != nil {
			return err
		}
		if sub != nil {
			c.Subtables[rec] = sub
		}
	}
	f.Cmap = c
	return nil
}

func parseCmapSubtable(b buf, start int, format uint16) (Subtable, error) {
	switch format {
	case 0:
		return parseCmapFormat0(b, start)
	case 4:
		return parseCmapFormat4(b, start)
	case 6:
		return parseCmapFormat6(b, start)
	case 2, 8, 10, 12, 13, 14:
		// Acknowledged by the table contract but not required; skip rather
		// than fail the whole font.
		return nil, nil
	default:
		return nil, &ParseError{Kind: UnsupportedSubtable, Tag: "cmap", Offset: start, Msg: fmt.Sprintf("format %d", format)}
	}
}

// CmapFormat0 is a byte-indexed table for single-byte character codes.
type CmapFormat0 struct {
	GlyphIDs [256]byte
}

func (s *CmapFormat0) Lookup(c rune) (uint16, bool) {
	if c < 0 || c > 255 {
		return 0, false
	}
	return uint16(s.GlyphIDs[c]), true
}

func parseCmapFormat0(b buf, start int) (*CmapFormat0, error) {
	var s CmapFormat0
	data, err := b.slice(start+6, 256)
	if err != nil {
		return nil, err
	}
	copy(s.GlyphIDs[:], data)
	return &s, nil
}

// CmapFormat4 is the classic segmented BMP mapping, used by most TrueType
// web/desktop fonts for the Unicode BMP range.
type CmapFormat4 struct {
	SegCount       int
	EndCode        []uint16
	StartCode      []uint16
	IDDelta        []int16
	IDRangeOffset  []uint16
	// rangeOffsetPos is the offset, within the cmap table, of the
	// idRangeOffset array; an
	// idRangeOffset indexes into glyphIdArray relative to its own position,
	// per the spec's lookup algorithm.
	rangeOffsetPos int
	GlyphIDArray   []uint16
}

func parseCmapFormat4(b buf, start int) (*CmapFormat4, error) {
	segCountX2, err := b.u16(start + 6)
	if err != nil {
		return nil, err
	}
	segCount := int(segCountX2 / 2)

	s := &CmapFormat4{SegCount: segCount}
	off := start + 14

	s.EndCode = make([]uint16, segCount)
	for i := 0; i < segCount; i++ {
		v, err := b.u16(off)
		if err != nil {
			return nil, err
		}
		s.EndCode[i] = v
		off += 2
	}
	off += 2 // reservedPad

	s.StartCode = make([]uint16, segCount)
	for i := 0; i < segCount; i++ {
		v, err := b.u16(off)
		if err != nil {
			return nil, err
		}
		s.StartCode[i] = v
		off += 2
	}

	s.IDDelta = make([]int16, segCount)
	for i := 0; i < segCount; i++ {
		v, err := b.i16(off)
		if err != nil {
			return nil, err
		}
		s.IDDelta[i] = v
		off += 2
	}

	s.rangeOffsetPos = off
	s.IDRangeOffset = make([]uint16, segCount)
	for i := 0; i < segCount; i++ {
		v, err := b.u16(off)
		if err != nil {
			return nil, err
		}
		s.IDRangeOffset[i] = v
		off += 2
	}

	length, err := b.u16(start + 2)
	if err != nil {
		return nil, err
	}
	glyphArrayBytes := int(length) - (off - start)
	if glyphArrayBytes > 0 {
		s.GlyphIDArray = make([]uint16, glyphArrayBytes/2)
		for i := range s.GlyphIDArray {
			v, err := b.u16(off)
			if err != nil {
				return nil, err
			}
			s.GlyphIDArray[i] = v
			off += 2
		}
	}

	return s, nil
}

// Lookup implements the format 4 algorithm: find the smallest segment with
// endCode >= c, reject if c is before that segment's startCode, then either
// apply idDelta directly (idRangeOffset == 0) or index into glyphIdArray.
func (s *CmapFormat4) Lookup(c rune) (uint16, bool) {
	if c < 0 || c > 0xFFFF {
		return 0, false
	}
	code := uint16(c)

	segIndex := -1
	for i, end := range s.EndCode {
		if code <= end {
			segIndex = i
			break
		}
	}
	if segIndex == -1 {
		return 0, false
	}
	if s.StartCode[segIndex] > code {
		return 0, false
	}

	delta := s.IDDelta[segIndex]
	rangeOffset := s.IDRangeOffset[segIndex]

	if rangeOffset == 0 {
		return uint16(code + uint16(delta)), true
	}

	// glyphIdArray index = idRangeOffset[i]/2 + (c - startCode[i]) - (segCount - i),
	// per the offset being measured from the idRangeOffset array's own slot.
	idx := int(rangeOffset)/2 + int(code-s.StartCode[segIndex]) - (s.SegCount - segIndex)
	if idx < 0 || idx >= len(s.GlyphIDArray) {
		return 0, false
	}
	glyph := s.GlyphIDArray[idx]
	if glyph == 0 {
		return 0, false
	}
	return uint16(glyph + uint16(delta)), true
}

// CmapFormat6 is a dense trimmed-table mapping for a contiguous character
// range.
type CmapFormat6 struct {
	FirstCode    uint16
	GlyphIDArray []uint16
}

func parseCmapFormat6(b buf, start int) (*CmapFormat6, error) {
	firstCode, err := b.u16(start + 6)
	if err != nil {
		return nil, err
	}
	entryCount, err := b.u16(start + 8)
	if err != nil {
		return nil, err
	}
	s := &CmapFormat6{FirstCode: firstCode}
	off := start + 10
	s.GlyphIDArray = make([]uint16, entryCount)
	for i := range s.GlyphIDArray {
		v, err := b.u16(off)
		if err != nil {
			return nil, err
		}
		s.GlyphIDArray[i] = v
		off += 2
	}
	return s, nil
}

func (s *CmapFormat6) Lookup(c rune) (uint16, bool) {
	if c < rune(s.FirstCode) {
		return 0, false
	}
	idx := int(c) - int(s.FirstCode)
	if idx >= len(s.GlyphIDArray) {
		return 0, false
	}
	return s.GlyphIDArray[idx], true
}

// preferredEncodings lists (platform, encoding) pairs in the order real
// rasterizers probe them: full Unicode first, then Windows BMP, then the
// older Macintosh Roman table.
var preferredEncodings = []struct{ platform, encoding uint16 }{
	{3, 10}, {0, 6}, {0, 4}, {3, 1}, {0, 3}, {0, 2}, {0, 1}, {0, 0}, {1, 0},
}

// PreferredSubtable picks the subtable conventionally used for Unicode
// lookups, preferring full-repertoire encodings over legacy ones.
func (c *CmapTable) PreferredSubtable() (Subtable, bool) {
	for _, pref := range preferredEncodings {
		for rec, sub := range c.Subtables {
			if rec.PlatformID == pref.platform && rec.EncodingID == pref.encoding {
				return sub, true
			}
		}
	}
	for _, sub := range c.Subtables {
		return sub, true
	}
	return nil, false
}

// Lookup maps a rune to a glyph index using the preferred subtable.
func (c *CmapTable) Lookup(ch rune) (uint16, bool) {
	sub, ok := c.PreferredSubtable()
	if !ok {
		return 0, false
	}
	return sub.Lookup(ch)
}
