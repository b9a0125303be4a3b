package sfnt

import (
	"bytes"
	"encoding/binary"
	"sort"
	"testing"
)

func u16b(v uint16) []byte { b := make([]byte, 2); binary.BigEndian.PutUint16(b, v); return b }
func i16b(v int16) []byte  { return u16b(uint16(v)) }
func u32b(v uint32) []byte { b := make([]byte, 4); binary.BigEndian.PutUint32(b, v); return b }

// buildSfnt assembles a minimal single-font sfnt binary: a table directory
// followed by each named table's bytes, 4-byte aligned.
func buildSfnt(tables map[string][]byte) []byte {
	return buildSfntAt(0, tables)
}

// buildSfntAt is buildSfnt for a directory that will be embedded at
// absolute file offset base (e.g. a TTC member font): table record offsets
// are absolute, per the sfnt table directory contract, so a directory
// nested inside a larger file must know where it starts.
func buildSfntAt(base int, tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for t := range tables {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	headerLen := 12 + 16*len(tags)
	var body bytes.Buffer
	offsets := make(map[string]int)
	cursor := base + headerLen
	for _, t := range tags {
		offsets[t] = cursor
		data := tables[t]
		body.Write(data)
		pad := (4 - len(data)%4) % 4
		body.Write(make([]byte, pad))
		cursor += len(data) + pad
	}

	var out bytes.Buffer
	out.Write(u32b(VersionTrueType))
	out.Write(u16b(uint16(len(tags))))
	out.Write(u16b(0))
	out.Write(u16b(0))
	out.Write(u16b(0))
	for _, t := range tags {
		out.WriteString(t)
		out.Write(u32b(0))
		out.Write(u32b(uint32(offsets[t])))
		out.Write(u32b(uint32(len(tables[t]))))
	}
	out.Write(body.Bytes())
	return out.Bytes()
}

func buildHead(unitsPerEm uint16, indexToLocFormat int16) []byte {
	var b bytes.Buffer
	b.Write(u16b(1))             // majorVersion
	b.Write(u16b(0))              // minorVersion
	b.Write(u32b(0))              // fontRevision
	b.Write(u32b(0))              // checkSumAdjustment
	b.Write(u32b(headMagic))      // magicNumber
	b.Write(u16b(0))              // flags
	b.Write(u16b(unitsPerEm))     // unitsPerEm
	b.Write(make([]byte, 8))      // created
	b.Write(make([]byte, 8))      // modified
	b.Write(i16b(0))              // xMin
	b.Write(i16b(0))              // yMin
	b.Write(i16b(100))            // xMax
	b.Write(i16b(100))            // yMax
	b.Write(u16b(0))              // macStyle
	b.Write(u16b(0))              // lowestRecPPEM
	b.Write(i16b(2))              // fontDirectionHint
	b.Write(i16b(indexToLocFormat))
	b.Write(u16b(0)) // glyphDataFormat
	return b.Bytes()
}

func buildMaxpV1(numGlyphs uint16) []byte {
	var b bytes.Buffer
	b.Write(u32b(0x00010000))
	b.Write(u16b(numGlyphs))
	for i := 0; i < 13; i++ {
		b.Write(u16b(0))
	}
	return b.Bytes()
}

func buildHhea(numberOfHMetrics uint16) []byte {
	var b bytes.Buffer
	b.Write(u16b(1)) // majorVersion
	b.Write(u16b(0)) // minorVersion
	b.Write(i16b(800))
	b.Write(i16b(-200))
	b.Write(i16b(0))
	b.Write(u16b(0)) // advanceWidthMax
	b.Write(i16b(0))
	b.Write(i16b(0))
	b.Write(i16b(0))
	b.Write(i16b(1))
	b.Write(i16b(0))
	b.Write(i16b(0))
	b.Write(make([]byte, 8)) // reserved x4
	b.Write(i16b(0))         // metricDataFormat
	b.Write(u16b(numberOfHMetrics))
	return b.Bytes()
}

func buildHmtx(advances []uint16, lsbs []int16) []byte {
	var b bytes.Buffer
	for i, adv := range advances {
		b.Write(u16b(adv))
		b.Write(i16b(lsbs[i]))
	}
	for i := len(advances); i < len(lsbs); i++ {
		b.Write(i16b(lsbs[i]))
	}
	return b.Bytes()
}

func TestParseTableDirectoryAndHead(t *testing.T) {
	data := buildSfnt(map[string][]byte{
		"head": buildHead(1000, 0),
		"maxp": buildMaxpV1(1),
	})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Directory.NumTables != 2 {
		t.Fatalf("expected 2 table records, got %d", f.Directory.NumTables)
	}
	if f.Head.UnitsPerEm != 1000 {
		t.Fatalf("expected unitsPerEm 1000, got %d", f.Head.UnitsPerEm)
	}
	if f.Head.IndexToLocFormat != 0 {
		t.Fatalf("expected short loca format, got %d", f.Head.IndexToLocFormat)
	}
	if f.Maxp.NumGlyphs != 1 {
		t.Fatalf("expected 1 glyph, got %d", f.Maxp.NumGlyphs)
	}
}

func TestParseWarnsOnBadMagicButContinues(t *testing.T) {
	head := buildHead(1000, 0)
	head[12] = 0x00 // corrupt the magic number field
	data := buildSfnt(map[string][]byte{
		"head": head,
		"maxp": buildMaxpV1(1),
	})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v, want a bad head magic number to warn, not abort", err)
	}
	if f.Head.UnitsPerEm != 1000 {
		t.Fatalf("Head.UnitsPerEm = %d, want 1000 (head table should still be parsed)", f.Head.UnitsPerEm)
	}
}

func TestHmtxAdvanceWidthInheritance(t *testing.T) {
	// spec.md §4.6: "trailing lsbs inherit last advance" — glyphs beyond
	// numberOfHMetrics reuse the final hMetric's advance width.
	data := buildSfnt(map[string][]byte{
		"maxp": buildMaxpV1(3),
		"hhea": buildHhea(1),
		"hmtx": buildHmtx([]uint16{500}, []int16{0, 5, -3}),
	})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Hmtx.AdvanceWidth(0) != 500 || f.Hmtx.AdvanceWidth(1) != 500 || f.Hmtx.AdvanceWidth(2) != 500 {
		t.Fatalf("expected all glyphs to inherit advance 500, got %+v", f.Hmtx.Advances)
	}
	if f.Hmtx.LeftSideBearing(1) != 5 || f.Hmtx.LeftSideBearing(2) != -3 {
		t.Fatalf("unexpected trailing left side bearings: %+v", f.Hmtx.LeftSideBearings)
	}
}

// buildSimpleTriangleGlyph returns a 1-contour, 3-point simple glyph: a
// triangle with all points on-curve.
func buildSimpleTriangleGlyph() []byte {
	var b bytes.Buffer
	b.Write(i16b(1))   // numberOfContours
	b.Write(i16b(0))   // xMin
	b.Write(i16b(0))   // yMin
	b.Write(i16b(150)) // xMax
	b.Write(i16b(100)) // yMax
	b.Write(u16b(2))   // endPtsOfContours[0]
	b.Write(u16b(0))   // instructionLength
	flag := byte(flagOnCurvePoint | flagXShortVector | flagYShortVector | flagXIsSameOrPositiveXShortVector | flagYIsSameOrPositiveYShortVector)
	b.Write([]byte{flag, flag, flag})
	b.Write([]byte{0, 100, 50})  // x deltas: (0,0) -> (100,0) -> (150,100)
	b.Write([]byte{0, 0, 100})   // y deltas
	raw := b.Bytes()
	if len(raw)%2 != 0 {
		raw = append(raw, 0)
	}
	return raw
}

// buildCompositeGlyph returns a composite glyph with a single component
// referencing glyph refGlyph, translated by (dx, dy).
func buildCompositeGlyph(refGlyph uint16, dx, dy int8) []byte {
	var b bytes.Buffer
	b.Write(i16b(-1)) // numberOfContours: composite
	b.Write(i16b(0))
	b.Write(i16b(0))
	b.Write(i16b(0))
	b.Write(i16b(0))
	b.Write(u16b(compArgsAreXYValues)) // flags: no more components, args are xy, byte args
	b.Write(u16b(refGlyph))
	b.Write([]byte{byte(dx), byte(dy)})
	raw := b.Bytes()
	if len(raw)%2 != 0 {
		raw = append(raw, 0)
	}
	return raw
}

func buildLocaShort(glyphLengths []int) []byte {
	var b bytes.Buffer
	offset := 0
	b.Write(u16b(uint16(offset / 2)))
	for _, l := range glyphLengths {
		offset += l
		b.Write(u16b(uint16(offset / 2)))
	}
	return b.Bytes()
}

func TestGlyfSimpleGlyphOutline(t *testing.T) {
	triangle := buildSimpleTriangleGlyph()
	var glyf bytes.Buffer
	glyf.Write(triangle)

	data := buildSfnt(map[string][]byte{
		"head": buildHead(1000, 0),
		"maxp": buildMaxpV1(1),
		"loca": buildLocaShort([]int{len(triangle)}),
		"glyf": glyf.Bytes(),
	})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	contours, err := f.Outline(0)
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	if len(contours) != 1 || len(contours[0].Points) != 3 {
		t.Fatalf("expected a single 3-point contour, got %+v", contours)
	}
	segs := contours[0].Segments()
	for _, s := range segs {
		if s.Kind != LineSegment {
			t.Fatalf("expected an all-line triangle, got segment kind %v", s.Kind)
		}
	}
	if len(segs) != 3 {
		t.Fatalf("expected 3 line segments, got %d", len(segs))
	}
}

func TestGlyfCompositeGlyphTranslatesComponent(t *testing.T) {
	triangle := buildSimpleTriangleGlyph()
	composite := buildCompositeGlyph(0, 10, 20)

	var glyf bytes.Buffer
	glyf.Write(triangle)
	glyf.Write(composite)

	data := buildSfnt(map[string][]byte{
		"head": buildHead(1000, 0),
		"maxp": buildMaxpV1(2),
		"loca": buildLocaShort([]int{len(triangle), len(composite)}),
		"glyf": glyf.Bytes(),
	})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	base, err := f.Outline(0)
	if err != nil {
		t.Fatalf("Outline(0): %v", err)
	}
	composed, err := f.Outline(1)
	if err != nil {
		t.Fatalf("Outline(1): %v", err)
	}
	if len(composed) != len(base) {
		t.Fatalf("expected composite to carry the same contour count, got %d vs %d", len(composed), len(base))
	}
	for i, p := range composed[0].Points {
		want := Point{X: base[0].Points[i].X + 10, Y: base[0].Points[i].Y + 20, OnCurve: true}
		if p != want {
			t.Fatalf("point %d: got %+v, want %+v", i, p, want)
		}
	}
}

func TestGlyfEmptyLocaRangeIsEmptyGlyph(t *testing.T) {
	data := buildSfnt(map[string][]byte{
		"head": buildHead(1000, 0),
		"maxp": buildMaxpV1(1),
		"loca": buildLocaShort([]int{0}),
		"glyf": {},
	})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	contours, err := f.Outline(0)
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	if len(contours) != 0 {
		t.Fatalf("expected an empty glyph, got %+v", contours)
	}
}

func buildCmapFormat4(startCode, endCode []uint16, idDelta []int16, idRangeOffset []uint16) []byte {
	var b bytes.Buffer
	segCount := len(startCode)
	b.Write(u16b(4)) // format
	lengthPos := b.Len()
	b.Write(u16b(0)) // length placeholder
	b.Write(u16b(0)) // language
	b.Write(u16b(uint16(segCount * 2)))
	b.Write(u16b(0)) // searchRange
	b.Write(u16b(0)) // entrySelector
	b.Write(u16b(0)) // rangeShift
	for _, v := range endCode {
		b.Write(u16b(v))
	}
	b.Write(u16b(0)) // reservedPad
	for _, v := range startCode {
		b.Write(u16b(v))
	}
	for _, v := range idDelta {
		b.Write(i16b(v))
	}
	for _, v := range idRangeOffset {
		b.Write(u16b(v))
	}
	out := b.Bytes()
	binary.BigEndian.PutUint16(out[lengthPos:], uint16(len(out)))
	return out
}

func TestCmapFormat4Lookup(t *testing.T) {
	// spec.md §8 scenario 6.
	sub, err := parseCmapFormat4(buf{data: buildCmapFormat4(
		[]uint16{0x41, 0xFFFF},
		[]uint16{0x5A, 0xFFFF},
		[]int16{-0x40, 1},
		[]uint16{0, 0},
	), tag: "cmap"}, 0)
	if err != nil {
		t.Fatalf("parseCmapFormat4: %v", err)
	}
	glyph, ok := sub.Lookup('A')
	if !ok || glyph != 1 {
		t.Fatalf("expected 'A' to map to glyph 1, got (%d, %v)", glyph, ok)
	}
	if _, ok := sub.Lookup(0x00); ok {
		t.Fatalf("expected codepoint 0x00 to be unmapped")
	}
}

func buildTTCHeaderV1(directoryOffset uint32) []byte {
	var b bytes.Buffer
	b.WriteString("ttcf")
	b.Write(u16b(1))
	b.Write(u16b(0))
	b.Write(u32b(1)) // numFonts
	b.Write(u32b(directoryOffset))
	return b.Bytes()
}

func TestParseCollection(t *testing.T) {
	// spec.md §8 scenario 7.
	header := buildTTCHeaderV1(16)
	var nestedDirectory bytes.Buffer
	nestedDirectory.Write(u32b(VersionTrueType))
	nestedDirectory.Write(u16b(0)) // numTables
	nestedDirectory.Write(u16b(0))
	nestedDirectory.Write(u16b(0))
	nestedDirectory.Write(u16b(0))

	data := append(header, nestedDirectory.Bytes()...)

	c, err := ParseCollection(data)
	if err != nil {
		t.Fatalf("ParseCollection: %v", err)
	}
	if c.NumFonts != 1 {
		t.Fatalf("expected numFonts 1, got %d", c.NumFonts)
	}
	dirs := c.Directories()
	if len(dirs) != 1 {
		t.Fatalf("expected exactly one nested TableDirectory, got %d", len(dirs))
	}
	if dirs[0].NumTables != 0 {
		t.Fatalf("expected the nested directory to carry 0 tables, got %d", dirs[0].NumTables)
	}
	if c.Offsets[0] != 16 {
		t.Fatalf("expected directory offset 16, got %d", c.Offsets[0])
	}
}

func TestParsePrefersTTCFirstFont(t *testing.T) {
	header := buildTTCHeaderV1(16)
	nested := buildSfntAt(16, map[string][]byte{
		"maxp": buildMaxpV1(7),
	})
	data := append(header, nested...)
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Maxp.NumGlyphs != 7 {
		t.Fatalf("expected the first collection font to be parsed, got numGlyphs=%d", f.Maxp.NumGlyphs)
	}
}

func buildNameTable(records []NameRecord) []byte {
	var strs bytes.Buffer
	var recs bytes.Buffer
	for _, r := range records {
		var raw []byte
		if r.PlatformID == 0 || r.PlatformID == 3 {
			for _, ch := range r.Value {
				raw = append(raw, byte(ch>>8), byte(ch))
			}
		} else {
			raw = []byte(r.Value)
		}
		recs.Write(u16b(r.PlatformID))
		recs.Write(u16b(r.EncodingID))
		recs.Write(u16b(r.LanguageID))
		recs.Write(u16b(r.NameID))
		recs.Write(u16b(uint16(len(raw))))
		recs.Write(u16b(uint16(strs.Len())))
		strs.Write(raw)
	}

	var b bytes.Buffer
	b.Write(u16b(0)) // format
	b.Write(u16b(uint16(len(records))))
	b.Write(u16b(uint16(6 + 12*len(records)))) // stringOffset
	b.Write(recs.Bytes())
	b.Write(strs.Bytes())
	return b.Bytes()
}

func TestNameTableDecodesUTF16AndPrefersWindowsEnglish(t *testing.T) {
	data := buildSfnt(map[string][]byte{
		"name": buildNameTable([]NameRecord{
			{PlatformID: 1, EncodingID: 0, LanguageID: 0, NameID: NameIDFamily, Value: "Mac Name"},
			{PlatformID: 3, EncodingID: 1, LanguageID: 0x0409, NameID: NameIDFamily, Value: "Windows Name"},
		}),
	})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	name, ok := f.Name.Get(NameIDFamily)
	if !ok || name != "Windows Name" {
		t.Fatalf("expected the Windows English-US record, got (%q, %v)", name, ok)
	}
}

func buildPostV2(indices []uint16, customNames []string) []byte {
	var b bytes.Buffer
	b.Write(u32b(0x00020000))
	b.Write(u32b(0))        // italicAngle
	b.Write(i16b(0))        // underlinePosition
	b.Write(i16b(0))        // underlineThickness
	b.Write(u32b(0))        // isFixedPitch
	b.Write(u32b(0))        // minMemType42
	b.Write(u32b(0))        // maxMemType42
	b.Write(u32b(0))        // minMemType1
	b.Write(u32b(0))        // maxMemType1
	b.Write(u16b(uint16(len(indices))))
	for _, idx := range indices {
		b.Write(u16b(idx))
	}
	for _, name := range customNames {
		b.WriteByte(byte(len(name)))
		b.WriteString(name)
	}
	return b.Bytes()
}

func TestPostV2GlyphNames(t *testing.T) {
	data := buildSfnt(map[string][]byte{
		"post": buildPostV2([]uint16{0, 258}, []string{"customGlyph"}),
	})
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Post.GlyphNames[0] != ".notdef" {
		t.Fatalf("expected standard name .notdef, got %q", f.Post.GlyphNames[0])
	}
	if f.Post.GlyphNames[1] != "customGlyph" {
		t.Fatalf("expected custom name customGlyph, got %q", f.Post.GlyphNames[1])
	}
}
