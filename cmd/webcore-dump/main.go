// Command webcore-dump parses an HTML file, an optional CSS file, and an
// optional font file, and prints the resulting DOM tree, cascaded styles,
// and sfnt table directory as text. It exercises every package end to end
// without depending on layout or rasterization.
package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mosaicbrowser/webcore/css"
	"github.com/mosaicbrowser/webcore/dom"
	"github.com/mosaicbrowser/webcore/html"
	"github.com/mosaicbrowser/webcore/log"
	"github.com/mosaicbrowser/webcore/sfnt"
	"github.com/mosaicbrowser/webcore/style"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: webcore-dump <html-file> [css-file] [font-file]")
		os.Exit(1)
	}

	htmlContent, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("error reading %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	fmt.Println("=== Parsing HTML ===")
	doc := html.Parse(string(htmlContent))
	printDOMTree(doc, 0)

	fmt.Println("\n=== Parsing CSS ===")
	stylesheets := []*css.Stylesheet{style.DefaultUserAgentStylesheet()}
	if cssSrc := extractOrReadCSS(os.Args); cssSrc != "" {
		sheet := css.ParseStylesheet(cssSrc)
		fmt.Printf("parsed %d author rules\n", len(sheet.Rules))
		stylesheets = append(stylesheets, sheet)
	} else {
		fmt.Println("no author stylesheet found")
	}

	fmt.Println("\n=== Computing Styles ===")
	styled := style.StyleTree(doc, stylesheets...)
	printStyledTree(styled, 0)

	if len(os.Args) > 3 {
		fmt.Println("\n=== Parsing Font ===")
		dumpFont(os.Args[3])
	}
}

func extractOrReadCSS(args []string) string {
	if len(args) > 2 {
		data, err := os.ReadFile(args[2])
		if err != nil {
			log.Warnf("reading css file %q: %v", args[2], err)
			return ""
		}
		return string(data)
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return ""
	}
	re := regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)
	var b strings.Builder
	for _, m := range re.FindAllStringSubmatch(string(data), -1) {
		b.WriteString(m[1])
		b.WriteString("\n")
	}
	return b.String()
}

func printDOMTree(node *dom.Node, indent int) {
	prefix := strings.Repeat("  ", indent)
	switch node.Type {
	case dom.DocumentNode:
		fmt.Printf("%s[Document]\n", prefix)
	case dom.ElementNode:
		attrs := ""
		if id := node.ID(); id != "" {
			attrs += fmt.Sprintf(" id=%q", id)
		}
		if classes := node.Classes(); len(classes) > 0 {
			attrs += fmt.Sprintf(" class=%q", strings.Join(classes, " "))
		}
		fmt.Printf("%s<%s%s>\n", prefix, node.LocalName, attrs)
	case dom.TextNode:
		if text := strings.TrimSpace(node.Data); text != "" {
			if len(text) > 50 {
				text = text[:47] + "..."
			}
			fmt.Printf("%s%q\n", prefix, text)
		}
	case dom.CommentNode:
		fmt.Printf("%s<!-- %s -->\n", prefix, strings.TrimSpace(node.Data))
	}
	for _, child := range node.Children {
		printDOMTree(child, indent+1)
	}
}

func printStyledTree(node *style.StyledNode, indent int) {
	prefix := strings.Repeat("  ", indent)
	if node.Node.Type == dom.ElementNode {
		fmt.Printf("%s<%s>", prefix, node.Node.LocalName)
		if len(node.Styles) > 0 {
			names := make([]string, 0, len(node.Styles))
			for k := range node.Styles {
				names = append(names, k)
			}
			fmt.Printf(" [%d styles: %s]", len(node.Styles), strings.Join(names, ", "))
		}
		fmt.Println()
	}
	for _, child := range node.Children {
		printStyledTree(child, indent+1)
	}
}

func dumpFont(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("error reading %s: %v\n", path, err)
		return
	}

	font, err := sfnt.Parse(data)
	if err != nil {
		fmt.Printf("error parsing font: %v\n", err)
		return
	}

	fmt.Printf("unitsPerEm: %d\n", font.Head.UnitsPerEm)
	fmt.Printf("numGlyphs: %d\n", font.Maxp.NumGlyphs)
	fmt.Println("tables:")
	for _, rec := range font.Directory.Records {
		fmt.Printf("  %-6s offset=%-8d length=%d\n", rec.Tag, rec.Offset, rec.Length)
	}
}
