// This file holds CSS value parsing utilities shared across the browser,
// operating on a Declaration's component-value list rather than a
// pre-joined string so numbers, dimensions, and keywords can be read
// directly off the tokens the parser already produced.
//
// Spec references:
// - CSS Syntax Level 3 §5.4 Consume a declaration
package css

import (
	"strconv"
	"strings"
)

// BaseFontHeight is the default 'medium' font size in pixels.
const BaseFontHeight = 13.0

var namedFontSizes = map[string]float64{
	"xx-small": 9.0,
	"x-small":  10.0,
	"small":    12.0,
	"medium":   BaseFontHeight,
	"large":    16.0,
	"x-large":  20.0,
	"xx-large": 24.0,
}

// ParseFontSize parses a font-size value's component values and returns the
// size in pixels, or 0 if it cannot be parsed.
func ParseFontSize(value []ComponentValue) float64 {
	if len(value) == 0 {
		return 0
	}
	tv, ok := value[0].(TokenValue)
	if !ok {
		return 0
	}
	tk := tv.Token
	switch tk.Type {
	case DimensionToken:
		switch strings.ToLower(tk.Value) {
		case "px":
			if tk.NumValue > 0 {
				return tk.NumValue
			}
		case "pt":
			if tk.NumValue > 0 {
				return tk.NumValue * 96.0 / 72.0
			}
		}
		return 0
	case NumberToken:
		if tk.NumValue > 0 {
			return tk.NumValue
		}
		return 0
	case IdentToken:
		if size, ok := namedFontSizes[strings.ToLower(tk.Value)]; ok {
			return size
		}
	}
	return 0
}

// ParseFontSizeString is a convenience wrapper for callers holding a raw
// string (e.g. a presentational attribute) rather than already-tokenized
// component values.
func ParseFontSizeString(value string) float64 {
	return ParseFontSize(ParseInlineValue(value))
}

// ParseInlineValue tokenizes a single CSS value (no property name, no
// trailing semicolon) into component values.
func ParseInlineValue(value string) []ComponentValue {
	tok := NewTokenizer(value)
	var tokens []Token
	for {
		t := tok.Next()
		if t.Type == EOFToken {
			break
		}
		tokens = append(tokens, t)
	}
	p := &Parser{s: newTokenStream(tokens)}
	var values []ComponentValue
	for p.peek().Type != EOFToken {
		values = append(values, p.consumeComponentValue())
	}
	return values
}

// DeclarationValueString renders a declaration's value back to a
// human-readable string, collapsing whitespace tokens — used by the style
// resolver when a property's computed representation is just "whatever
// text followed the colon" (e.g. custom properties, unrecognized values).
func DeclarationValueString(value []ComponentValue) string {
	return strings.TrimSpace(Serialize(value))
}

// parseNumber reports the numeric value of a plain number string, or ok=false.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
