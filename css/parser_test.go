package css

import "testing"

func TestParseStylesheetSimpleRule(t *testing.T) {
	sheet := ParseStylesheet("div { color: red; }")
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sheet.Rules))
	}
	rule, ok := sheet.Rules[0].(*StyleRule)
	if !ok {
		t.Fatalf("expected *StyleRule, got %T", sheet.Rules[0])
	}
	if len(rule.Selectors) != 1 || len(rule.Selectors[0].Compounds) != 1 {
		t.Fatalf("got %+v", rule.Selectors)
	}
	if len(rule.Declarations) != 1 || rule.Declarations[0].Property != "color" {
		t.Fatalf("got %+v", rule.Declarations)
	}
}

func TestParseDeclarationImportant(t *testing.T) {
	sheet := ParseStylesheet("p { color: red !important; }")
	rule := sheet.Rules[0].(*StyleRule)
	if !rule.Declarations[0].Important {
		t.Fatal("expected !important detected")
	}
}

func TestParseDeclarationImportantWithWhitespace(t *testing.T) {
	sheet := ParseStylesheet("p { color: red ! important ; }")
	rule := sheet.Rules[0].(*StyleRule)
	if !rule.Declarations[0].Important {
		t.Fatal("expected !important detected despite internal whitespace")
	}
}

func TestParseMultipleDeclarationsSplitOnSemicolon(t *testing.T) {
	sheet := ParseStylesheet("p { color: red; font-size: 12px }")
	rule := sheet.Rules[0].(*StyleRule)
	if len(rule.Declarations) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(rule.Declarations))
	}
}

func TestParseMalformedDeclarationDiscardedNotAborted(t *testing.T) {
	sheet := ParseStylesheet("p { : bad; color: red; }")
	rule := sheet.Rules[0].(*StyleRule)
	if len(rule.Declarations) != 1 || rule.Declarations[0].Property != "color" {
		t.Fatalf("expected malformed declaration dropped, got %+v", rule.Declarations)
	}
}

func TestParseAtRuleMediaNested(t *testing.T) {
	sheet := ParseStylesheet("@media screen { p { color: blue; } }")
	if len(sheet.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sheet.Rules))
	}
	media, ok := sheet.Rules[0].(*MediaRule)
	if !ok {
		t.Fatalf("expected *MediaRule, got %T", sheet.Rules[0])
	}
	if len(media.Rules) != 1 {
		t.Fatalf("expected 1 nested rule, got %d", len(media.Rules))
	}
}

func TestParseAtRuleImport(t *testing.T) {
	sheet := ParseStylesheet(`@import "foo.css";`)
	imp, ok := sheet.Rules[0].(*ImportRule)
	if !ok {
		t.Fatalf("expected *ImportRule, got %T", sheet.Rules[0])
	}
	if imp.URL != "foo.css" {
		t.Fatalf("got %q", imp.URL)
	}
}

func TestParseCommaSeparatedValueNotSplitAsDeclarations(t *testing.T) {
	// spec.md §9(a): "background: red, blue" must NOT be split on the
	// comma — only top-level semicolons separate declarations.
	sheet := ParseStylesheet("p { background: red, blue; }")
	rule := sheet.Rules[0].(*StyleRule)
	if len(rule.Declarations) != 1 {
		t.Fatalf("expected 1 declaration (comma is not a splitter), got %d", len(rule.Declarations))
	}
}

func TestParseInlineStyle(t *testing.T) {
	decls := ParseInlineStyle("color: red; font-weight: bold")
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
}

func TestParseMultipleSelectorsCommaSeparated(t *testing.T) {
	sheet := ParseStylesheet("h1, h2 { color: red; }")
	rule := sheet.Rules[0].(*StyleRule)
	if len(rule.Selectors) != 2 {
		t.Fatalf("expected 2 selectors, got %d", len(rule.Selectors))
	}
}
