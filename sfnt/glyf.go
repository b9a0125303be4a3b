package sfnt

import "math"

// Simple glyph flag bits (OpenType spec, 'glyf' table).
const (
	flagOnCurvePoint                     = 0x01
	flagXShortVector                     = 0x02
	flagYShortVector                     = 0x04
	flagRepeat                           = 0x08
	flagXIsSameOrPositiveXShortVector    = 0x10
	flagYIsSameOrPositiveYShortVector    = 0x20
)

// Composite glyph flag bits.
const (
	compArg1And2AreWords    = 0x0001
	compArgsAreXYValues     = 0x0002
	compWeHaveAScale        = 0x0008
	compMoreComponents      = 0x0020
	compWeHaveAnXAndYScale  = 0x0040
	compWeHaveATwoByTwo     = 0x0080
	compWeHaveInstructions  = 0x0100
)

// Point is one coordinate in a glyph contour, in font design units.
type Point struct {
	X, Y    int16
	OnCurve bool
}

func midpoint(a, b Point) Point {
	return Point{X: int16((int32(a.X) + int32(b.X)) / 2), Y: int16((int32(a.Y) + int32(b.Y)) / 2), OnCurve: true}
}

// Contour is a closed loop of points, alternating on/off curve per the
// TrueType quadratic outline convention.
type Contour struct {
	Points []Point
}

// SegmentKind distinguishes a straight line from a quadratic Bezier arc.
type SegmentKind int

const (
	LineSegment SegmentKind = iota
	QuadSegment
)

// Segment is one drawable piece of a contour outline.
type Segment struct {
	Kind SegmentKind
	P0   Point // start
	P1   Point // control point (quadratic) or end point (line)
	P2   Point // end point (quadratic only)
}

// Segments reconstructs the line/quadratic segment sequence for a contour
// using the TrueType rule: two consecutive off-curve points imply an
// implicit on-curve point at their midpoint.
func (c Contour) Segments() []Segment {
	n := len(c.Points)
	if n == 0 {
		return nil
	}
	var segs []Segment
	for i := 0; i < n; i++ {
		cur := c.Points[i]
		next := c.Points[(i+1)%n]
		switch {
		case cur.OnCurve && next.OnCurve:
			segs = append(segs, Segment{Kind: LineSegment, P0: cur, P1: next})
		case cur.OnCurve && !next.OnCurve:
			after := c.Points[(i+2)%n]
			end := after
			if !after.OnCurve {
				end = midpoint(next, after)
			}
			segs = append(segs, Segment{Kind: QuadSegment, P0: cur, P1: next, P2: end})
		case !cur.OnCurve && !next.OnCurve:
			after := c.Points[(i+2)%n]
			end := after
			if !after.OnCurve {
				end = midpoint(next, after)
			}
			segs = append(segs, Segment{Kind: QuadSegment, P0: midpoint(cur, next), P1: next, P2: end})
		}
		// An off-curve,on-curve pair is covered by the preceding iteration
		// (as the P1/P2 of its quadratic), and an off-curve,off-curve pair
		// starts a quadratic at their implicit midpoint, so no segment
		// starts at an off-curve point.
	}
	return segs
}

// Flatten renders a contour to a polyline, recursively subdividing
// quadratics until each is within tolerance design units of a straight
// line between its endpoints.
func (c Contour) Flatten(tolerance float64) []Point {
	var out []Point
	segs := c.Segments()
	for _, s := range segs {
		if len(out) == 0 || out[len(out)-1] != s.P0 {
			out = append(out, s.P0)
		}
		switch s.Kind {
		case LineSegment:
			out = append(out, s.P1)
		case QuadSegment:
			out = append(out, flattenQuad(s.P0, s.P1, s.P2, tolerance)...)
		}
	}
	return out
}

func flattenQuad(p0, p1, p2 Point, tolerance float64) []Point {
	if quadFlatEnough(p0, p1, p2, tolerance) {
		return []Point{p2}
	}
	// De Casteljau subdivision at t=0.5.
	m01 := midpointF(p0, p1)
	m12 := midpointF(p1, p2)
	mid := midpointF(m01, m12)
	left := flattenQuad(p0, m01, mid, tolerance)
	right := flattenQuad(mid, m12, p2, tolerance)
	return append(left, right...)
}

func midpointF(a, b Point) Point {
	return Point{X: int16(math.Round((float64(a.X) + float64(b.X)) / 2)), Y: int16(math.Round((float64(a.Y) + float64(b.Y)) / 2)), OnCurve: true}
}

// quadFlatEnough measures the control point's distance from the chord
// p0-p2; within tolerance design units, the curve is treated as a line.
func quadFlatEnough(p0, p1, p2 Point, tolerance float64) bool {
	if p0 == p2 {
		return true
	}
	ax, ay := float64(p2.Y-p0.Y), float64(p0.X-p2.X)
	c := float64(p2.X)*float64(p0.Y) - float64(p0.X)*float64(p2.Y)
	num := math.Abs(ax*float64(p1.X) + ay*float64(p1.Y) + c)
	den := math.Sqrt(ax*ax + ay*ay)
	if den == 0 {
		return true
	}
	return num/den <= tolerance
}

// GlyphHeader is the 10-byte common prefix of every 'glyf' glyph record.
type GlyphHeader struct {
	NumberOfContours               int16
	XMin, YMin, XMax, YMax          int16
}

// GlyphTransform is a composite-component placement transform.
type GlyphTransform struct {
	A, B, C, D float32
}

func scaleTransform(s float32) GlyphTransform      { return GlyphTransform{A: s, D: s} }
func scaleXYTransform(x, y float32) GlyphTransform { return GlyphTransform{A: x, D: y} }

// Component is one entry of a composite glyph.
type Component struct {
	Flags      uint16
	GlyphIndex uint16
	// Arg1, Arg2 are either (dx, dy) offsets (ArgsAreXYValues set) or
	// point-index references (clear). Point-index anchors are recorded but
	// not resolved to an offset; they are rare in fonts produced by modern
	// tooling, which always emits XY offsets.
	Arg1, Arg2 int16
	ArgsAreXY  bool
	Transform  GlyphTransform
	HasTransform bool
}

// SimpleGlyph is a non-composite glyph: its contours plus the TrueType
// instruction program.
type SimpleGlyph struct {
	Contours     []Contour
	Instructions []byte
}

// CompositeGlyph is a glyph built from placed references to other glyphs.
type CompositeGlyph struct {
	Components   []Component
	Instructions []byte
}

// Glyph is one entry of the 'glyf' table: either simple or composite,
// never both.
type Glyph struct {
	Header    GlyphHeader
	Simple    *SimpleGlyph
	Composite *CompositeGlyph
}

// GlyfTable lazily parses glyph records out of the 'glyf' table bytes using
// the 'loca' offsets.
type GlyfTable struct {
	data []byte
	loca []uint32
}

func (f *Font) parseGlyf() error {
	b, ok := f.table("glyf")
	if !ok {
		return nil
	}
	f.Glyf = &GlyfTable{data: b.data, loca: f.Loca}
	return nil
}

// NumGlyphs returns the number of glyphs addressable via Glyph, derived
// from the loca table.
func (g *GlyfTable) NumGlyphs() int {
	if len(g.loca) == 0 {
		return 0
	}
	return len(g.loca) - 1
}

// Glyph parses and returns the glyph record for the given glyph ID. An
// empty loca range (start == end) is a valid empty glyph (e.g. space).
func (g *GlyfTable) Glyph(gid int) (*Glyph, error) {
	if gid < 0 || gid+1 >= len(g.loca) {
		return nil, &ParseError{Kind: OffsetOutOfRange, Tag: "glyf", Offset: gid, Msg: "glyph index out of range"}
	}
	start, end := g.loca[gid], g.loca[gid+1]
	if start == end {
		return &Glyph{Simple: &SimpleGlyph{}}, nil
	}
	b := buf{data: g.data, tag: "glyf"}
	rec, err := b.slice(int(start), int(end-start))
	if err != nil {
		return nil, err
	}
	gb := buf{data: rec, tag: "glyf"}
	return parseGlyphRecord(gb)
}

func parseGlyphRecord(b buf) (*Glyph, error) {
	numContours, err := b.i16(0)
	if err != nil {
		return nil, err
	}
	hdr := GlyphHeader{NumberOfContours: numContours}
	if hdr.XMin, err = b.i16(2); err != nil {
		return nil, err
	}
	if hdr.YMin, err = b.i16(4); err != nil {
		return nil, err
	}
	if hdr.XMax, err = b.i16(6); err != nil {
		return nil, err
	}
	if hdr.YMax, err = b.i16(8); err != nil {
		return nil, err
	}

	if numContours >= 0 {
		simple, err := parseSimpleGlyph(b, int(numContours))
		if err != nil {
			return nil, err
		}
		return &Glyph{Header: hdr, Simple: simple}, nil
	}
	composite, err := parseCompositeGlyph(b)
	if err != nil {
		return nil, err
	}
	return &Glyph{Header: hdr, Composite: composite}, nil
}

func parseSimpleGlyph(b buf, numContours int) (*SimpleGlyph, error) {
	off := 10
	endPts := make([]uint16, numContours)
	for i := 0; i < numContours; i++ {
		v, err := b.u16(off)
		if err != nil {
			return nil, err
		}
		endPts[i] = v
		off += 2
	}

	var totalPoints int
	if numContours > 0 {
		totalPoints = int(endPts[numContours-1]) + 1
	}

	insLen, err := b.u16(off)
	if err != nil {
		return nil, err
	}
	off += 2
	instructions, err := b.slice(off, int(insLen))
	if err != nil {
		return nil, err
	}
	off += int(insLen)

	flags := make([]byte, 0, totalPoints)
	for len(flags) < totalPoints {
		flag, err := b.u8(off)
		if err != nil {
			return nil, err
		}
		off++
		flags = append(flags, flag)
		if flag&flagRepeat != 0 {
			repeat, err := b.u8(off)
			if err != nil {
				return nil, err
			}
			off++
			for i := 0; i < int(repeat); i++ {
				flags = append(flags, flag)
			}
		}
	}
	if len(flags) != totalPoints {
		return nil, &ParseError{Kind: OffsetOutOfRange, Tag: "glyf", Offset: off, Msg: "flag count mismatch"}
	}

	xs := make([]int16, totalPoints)
	var x int16
	for i := 0; i < totalPoints; i++ {
		flag := flags[i]
		var dx int16
		if flag&flagXShortVector != 0 {
			v, err := b.u8(off)
			if err != nil {
				return nil, err
			}
			off++
			if flag&flagXIsSameOrPositiveXShortVector != 0 {
				dx = int16(v)
			} else {
				dx = -int16(v)
			}
		} else if flag&flagXIsSameOrPositiveXShortVector == 0 {
			v, err := b.i16(off)
			if err != nil {
				return nil, err
			}
			off += 2
			dx = v
		}
		x += dx
		xs[i] = x
	}

	ys := make([]int16, totalPoints)
	var y int16
	for i := 0; i < totalPoints; i++ {
		flag := flags[i]
		var dy int16
		if flag&flagYShortVector != 0 {
			v, err := b.u8(off)
			if err != nil {
				return nil, err
			}
			off++
			if flag&flagYIsSameOrPositiveYShortVector != 0 {
				dy = int16(v)
			} else {
				dy = -int16(v)
			}
		} else if flag&flagYIsSameOrPositiveYShortVector == 0 {
			v, err := b.i16(off)
			if err != nil {
				return nil, err
			}
			off += 2
			dy = v
		}
		y += dy
		ys[i] = y
	}

	contours := make([]Contour, numContours)
	pointIdx := 0
	prevEnd := -1
	for ci := 0; ci < numContours; ci++ {
		end := int(endPts[ci])
		pts := make([]Point, 0, end-prevEnd)
		for pointIdx <= end {
			pts = append(pts, Point{X: xs[pointIdx], Y: ys[pointIdx], OnCurve: flags[pointIdx]&flagOnCurvePoint != 0})
			pointIdx++
		}
		contours[ci] = Contour{Points: pts}
		prevEnd = end
	}

	return &SimpleGlyph{Contours: contours, Instructions: instructions}, nil
}

func parseCompositeGlyph(b buf) (*CompositeGlyph, error) {
	off := 10
	var components []Component
	haveInstructions := false

	for {
		flags, err := b.u16(off)
		if err != nil {
			return nil, err
		}
		off += 2
		glyphIndex, err := b.u16(off)
		if err != nil {
			return nil, err
		}
		off += 2

		var c Component
		c.Flags = flags
		c.GlyphIndex = glyphIndex
		c.ArgsAreXY = flags&compArgsAreXYValues != 0

		if flags&compArg1And2AreWords != 0 {
			a1, err := b.i16(off)
			if err != nil {
				return nil, err
			}
			a2, err := b.i16(off + 2)
			if err != nil {
				return nil, err
			}
			c.Arg1, c.Arg2 = a1, a2
			off += 4
		} else {
			a1, err := b.i8(off)
			if err != nil {
				return nil, err
			}
			a2, err := b.i8(off + 1)
			if err != nil {
				return nil, err
			}
			c.Arg1, c.Arg2 = int16(a1), int16(a2)
			off += 2
		}

		switch {
		case flags&compWeHaveAScale != 0:
			s, err := b.i16(off)
			if err != nil {
				return nil, err
			}
			c.Transform = scaleTransform(f2dot14(s))
			c.HasTransform = true
			off += 2
		case flags&compWeHaveAnXAndYScale != 0:
			xs, err := b.i16(off)
			if err != nil {
				return nil, err
			}
			ys, err := b.i16(off + 2)
			if err != nil {
				return nil, err
			}
			c.Transform = scaleXYTransform(f2dot14(xs), f2dot14(ys))
			c.HasTransform = true
			off += 4
		case flags&compWeHaveATwoByTwo != 0:
			a, err := b.i16(off)
			if err != nil {
				return nil, err
			}
			bb, err := b.i16(off + 2)
			if err != nil {
				return nil, err
			}
			cc, err := b.i16(off + 4)
			if err != nil {
				return nil, err
			}
			d, err := b.i16(off + 6)
			if err != nil {
				return nil, err
			}
			c.Transform = GlyphTransform{A: f2dot14(a), B: f2dot14(bb), C: f2dot14(cc), D: f2dot14(d)}
			c.HasTransform = true
			off += 8
		}

		if flags&compWeHaveInstructions != 0 {
			haveInstructions = true
		}

		components = append(components, c)
		if flags&compMoreComponents == 0 {
			break
		}
	}

	var instructions []byte
	if haveInstructions {
		insLen, err := b.u16(off)
		if err != nil {
			return nil, err
		}
		off += 2
		instructions, err = b.slice(off, int(insLen))
		if err != nil {
			return nil, err
		}
	}

	return &CompositeGlyph{Components: components, Instructions: instructions}, nil
}

// f2dot14 converts a raw F2Dot14 fixed-point value to float32.
func f2dot14(v int16) float32 {
	return float32(v) / 16384.0
}

// Outline resolves a glyph (recursively flattening composite references)
// into a flat list of contours in font design units, positioned relative
// to the glyph's own origin.
func (f *Font) Outline(gid int) ([]Contour, error) {
	if f.Glyf == nil {
		return nil, &ParseError{Kind: UnsupportedSubtable, Tag: "glyf", Msg: "font has no glyf table"}
	}
	return f.outline(gid, 0)
}

func (f *Font) outline(gid, depth int) ([]Contour, error) {
	limit := f.MaxCompositeDepth
	if limit == 0 {
		limit = DefaultMaxCompositeDepth
	}
	if depth > limit {
		return nil, &ParseError{Kind: OffsetOutOfRange, Tag: "glyf", Offset: gid, Msg: "composite glyph recursion too deep"}
	}
	g, err := f.Glyf.Glyph(gid)
	if err != nil {
		return nil, err
	}
	if g.Simple != nil {
		return g.Simple.Contours, nil
	}
	var out []Contour
	for _, c := range g.Composite.Components {
		sub, err := f.outline(int(c.GlyphIndex), depth+1)
		if err != nil {
			return nil, err
		}
		var dx, dy int16
		if c.ArgsAreXY {
			dx, dy = c.Arg1, c.Arg2
		}
		for _, contour := range sub {
			out = append(out, transformContour(contour, c, dx, dy))
		}
	}
	return out, nil
}

func transformContour(c Contour, comp Component, dx, dy int16) Contour {
	pts := make([]Point, len(c.Points))
	for i, p := range c.Points {
		x, y := float32(p.X), float32(p.Y)
		if comp.HasTransform {
			t := comp.Transform
			nx := x*t.A + y*t.C
			ny := x*t.B + y*t.D
			x, y = nx, ny
		}
		pts[i] = Point{X: int16(x) + dx, Y: int16(y) + dy, OnCurve: p.OnCurve}
	}
	return Contour{Points: pts}
}
