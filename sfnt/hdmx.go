package sfnt

// HdmxRecord is one per-pixel-size device metrics record: a uniform glyph
// advance width table, rounded and hinted for that exact pixel size.
type HdmxRecord struct {
	PixelSize uint8
	MaxWidth  uint8
	Widths    []uint8
}

// HdmxTable is the 'hdmx' table: precomputed integer advance widths per
// pixel size, used by rasterizers that want to skip runtime hinting.
type HdmxTable struct {
	Version uint16
	Records []HdmxRecord
}

func (f *Font) parseHdmx() {
	b, ok := f.table("hdmx")
	if !ok {
		return
	}
	version, err := b.u16(0)
	if err != nil {
		return
	}
	numRecords, err := b.i16(2)
	if err != nil {
		return
	}
	sizeDeviceRecord, err := b.u32(4)
	if err != nil {
		return
	}
	numGlyphs := int(f.Maxp.NumGlyphs)

	h := &HdmxTable{Version: version}
	off := 8
	for i := 0; i < int(numRecords); i++ {
		pixelSize, err := b.u8(off)
		if err != nil {
			return
		}
		maxWidth, err := b.u8(off + 1)
		if err != nil {
			return
		}
		widths, err := b.slice(off+2, numGlyphs)
		if err != nil {
			return
		}
		rec := HdmxRecord{PixelSize: pixelSize, MaxWidth: maxWidth, Widths: append([]byte(nil), widths...)}
		h.Records = append(h.Records, rec)
		off += int(sizeDeviceRecord)
	}
	f.Hdmx = h
}
