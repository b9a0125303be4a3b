package sfnt

// PostTable is the 'post' table: PostScript-adjacent hints (italic angle,
// underline metrics) plus, in version 2, a glyph name for every glyph ID.
type PostTable struct {
	Version            uint32
	ItalicAngle        float64 // Fixed 16.16, degrees counter-clockwise from vertical
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       uint32
	// GlyphNames is populated only for version 2.0; it is nil otherwise.
	GlyphNames []string
}

func (f *Font) parsePost() error {
	b, ok := f.table("post")
	if !ok {
		return nil
	}
	version, err := b.u32(0)
	if err != nil {
		return err
	}
	angleFixed, err := b.u32(4)
	if err != nil {
		return err
	}
	underlinePos, err := b.i16(8)
	if err != nil {
		return err
	}
	underlineThickness, err := b.i16(10)
	if err != nil {
		return err
	}
	isFixedPitch, err := b.u32(12)
	if err != nil {
		return err
	}

	p := &PostTable{
		Version:            version,
		ItalicAngle:        fixed16dot16(angleFixed),
		UnderlinePosition:  underlinePos,
		UnderlineThickness: underlineThickness,
		IsFixedPitch:       isFixedPitch,
	}

	if version == 0x00020000 {
		names, err := parsePostV2Names(b)
		if err != nil {
			return err
		}
		p.GlyphNames = names
	}

	f.Post = p
	return nil
}

func fixed16dot16(v uint32) float64 {
	return float64(int32(v)) / 65536.0
}

func parsePostV2Names(b buf) ([]string, error) {
	numGlyphs, err := b.u16(32)
	if err != nil {
		return nil, err
	}
	off := 34
	indices := make([]uint16, numGlyphs)
	for i := range indices {
		v, err := b.u16(off)
		if err != nil {
			return nil, err
		}
		indices[i] = v
		off += 2
	}

	var pascalStrings []string
	for off < len(b.data) {
		length, err := b.u8(off)
		if err != nil {
			break
		}
		off++
		s, err := b.slice(off, int(length))
		if err != nil {
			break
		}
		pascalStrings = append(pascalStrings, string(s))
		off += int(length)
	}

	names := make([]string, numGlyphs)
	for i, idx := range indices {
		if idx < 258 {
			names[i] = macGlyphNames[idx]
		} else {
			customIdx := int(idx) - 258
			if customIdx >= 0 && customIdx < len(pascalStrings) {
				names[i] = pascalStrings[customIdx]
			}
		}
	}
	return names, nil
}

// macGlyphNames is the standard Macintosh glyph ordering referenced by
// 'post' format 1 (implicitly) and format 2 (explicitly, for indices below
// 258).
var macGlyphNames = []string{
	".notdef", ".null", "nonmarkingreturn", "space", "exclam", "quotedbl", "numbersign",
	"dollar", "percent", "ampersand", "quotesingle", "parenleft", "parenright", "asterisk",
	"plus", "comma", "hyphen", "period", "slash", "zero", "one", "two", "three", "four",
	"five", "six", "seven", "eight", "nine", "colon", "semicolon", "less", "equal", "greater",
	"question", "at", "A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N",
	"O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z", "bracketleft", "backslash",
	"bracketright", "asciicircum", "underscore", "grave", "a", "b", "c", "d", "e", "f", "g",
	"h", "i", "j", "k", "l", "m", "n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y",
	"z", "braceleft", "bar", "braceright", "asciitilde", "Adieresis", "Aring", "Ccedilla",
	"Eacute", "Ntilde", "Odieresis", "Udieresis", "aacute", "agrave", "acircumflex",
	"adieresis", "atilde", "aring", "ccedilla", "eacute", "egrave", "ecircumflex",
	"edieresis", "iacute", "igrave", "icircumflex", "idieresis", "ntilde", "oacute",
	"ograve", "ocircumflex", "odieresis", "otilde", "uacute", "ugrave", "ucircumflex",
	"udieresis", "dagger", "degree", "cent", "sterling", "section", "bullet", "paragraph",
	"germandbls", "registered", "copyright", "trademark", "acute", "dieresis", "notequal",
	"AE", "Oslash", "infinity", "plusminus", "lessequal", "greaterequal", "yen", "mu",
	"partialdiff", "summation", "product", "pi", "integral", "ordfeminine", "ordmasculine",
	"Omega", "ae", "oslash", "questiondown", "exclamdown", "logicalnot", "radical", "florin",
	"approxequal", "Delta", "guillemotleft", "guillemotright", "ellipsis", "nonbreakingspace",
	"Agrave", "Atilde", "Otilde", "OE", "oe", "endash", "emdash", "quotedblleft",
	"quotedblright", "quoteleft", "quoteright", "divide", "lozenge", "ydieresis", "Ydieresis",
	"fraction", "currency", "guilsinglleft", "guilsinglright", "fi", "fl", "daggerdbl",
	"periodcentered", "quotesinglbase", "quotedblbase", "perthousand", "Acircumflex",
	"Ecircumflex", "Aacute", "Edieresis", "Egrave", "Iacute", "Icircumflex", "Idieresis",
	"Igrave", "Oacute", "Ocircumflex", "apple", "Ograve", "Uacute", "Ucircumflex", "Ugrave",
	"dotlessi", "circumflex", "tilde", "macron", "breve", "dotaccent", "ring", "cedilla",
	"hungarumlaut", "ogonek", "caron", "Lslash", "lslash", "Scaron", "scaron", "Zcaron",
	"zcaron", "brokenbar", "Eth", "eth", "Yacute", "yacute", "Thorn", "thorn", "minus",
	"multiply", "onesuperior", "twosuperior", "threesuperior", "onehalf", "onequarter",
	"threequarters", "franc", "Gbreve", "gbreve", "Idotaccent", "Scedilla", "scedilla",
	"Cacute", "cacute", "Ccaron", "ccaron", "dcroat",
}
