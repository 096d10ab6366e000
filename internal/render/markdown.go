package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownBlocks converts generated free text into document blocks. The model
// occasionally answers long fields as markdown (headings, bullet lists); this
// flattens that into block headings and paragraphs instead of printing raw
// markers.
func MarkdownBlocks(src string) []Block {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil
	}

	md := goldmark.New()
	reader := text.NewReader([]byte(src))
	doc := md.Parser().Parse(reader)

	var blocks []Block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := nodeText(node, []byte(src))
			if title != "" {
				// Headings inside a field nest below the section's own
				// heading level.
				blocks = append(blocks, Block{Kind: BlockHeading, Level: node.Level + 1, Text: title})
			}
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				t := nodeText(item, []byte(src))
				if t != "" {
					blocks = append(blocks, Block{Kind: BlockParagraph, Text: "• " + t})
				}
			}
		default:
			t := nodeText(n, []byte(src))
			if t != "" {
				blocks = append(blocks, Block{Kind: BlockParagraph, Text: t})
			}
		}
	}
	if len(blocks) == 0 {
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: src})
	}
	return blocks
}

// nodeText gets the plain text content of a goldmark AST node. Inline
// children carry the same segments a block's Lines() covers, so children win
// when present.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.FirstChild() == nil {
		if n.Type() == ast.TypeBlock {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		} else {
			buf.WriteString(nodeText(c, src))
			buf.WriteByte(' ')
		}
	}
	return strings.TrimSpace(buf.String())
}
