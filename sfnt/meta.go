package sfnt

// MetaDataMap is one entry of the 'meta' table: an arbitrary tagged blob of
// metadata (e.g. "dlng"/"slng" script/language lists).
type MetaDataMap struct {
	Tag  string
	Data []byte
}

// MetaTable is the 'meta' table: font-level metadata not tied to any
// particular rendering decision.
type MetaTable struct {
	Version, Flags uint32
	DataMaps       []MetaDataMap
}

func (f *Font) parseMeta() {
	b, ok := f.table("meta")
	if !ok {
		return
	}
	version, err := b.u32(0)
	if err != nil {
		return
	}
	flags, err := b.u32(4)
	if err != nil {
		return
	}
	numMaps, err := b.u32(12)
	if err != nil {
		return
	}

	m := &MetaTable{Version: version, Flags: flags}
	off := 16
	for i := 0; i < int(numMaps); i++ {
		tag, err := b.tagAt(off)
		if err != nil {
			return
		}
		dataOffset, err := b.u32(off + 4)
		if err != nil {
			return
		}
		dataLength, err := b.u32(off + 8)
		if err != nil {
			return
		}
		data, err := b.slice(int(dataOffset), int(dataLength))
		if err != nil {
			return
		}
		m.DataMaps = append(m.DataMaps, MetaDataMap{Tag: tag, Data: append([]byte(nil), data...)})
		off += 12
	}
	f.Meta = m
}

// String returns the metadata blob for a tag (e.g. "dlng") as text, if
// present. Meta data maps are defined to be UTF-8 text for the well-known
// tags ("dlng", "slng"); other registered tags may use other encodings.
func (m *MetaTable) String(tag string) (string, bool) {
	for _, dm := range m.DataMaps {
		if dm.Tag == tag {
			return string(dm.Data), true
		}
	}
	return "", false
}
