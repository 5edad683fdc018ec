package sfc

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Block kinds.
const (
	KindScript   = "script"
	KindTemplate = "template"
	KindStyle    = "style"
)

// Block is one top-level block of a component file.
type Block struct {
	Kind  string
	Lang  string
	Setup bool
	// Content is the text between the block's tags.
	Content string
	// Start is where Content begins in the component file.
	Start sitter.Point
}

// VirtualName is the name of the virtual file derived from a script block
// of fileName.
func (b Block) VirtualName(fileName string) string {
	kind := b.Kind
	if b.Setup {
		kind += "_setup"
	}
	return fileName + "." + kind + scriptExt(b.Lang)
}

// SyntaxError is a parse problem at a 0-based position.
type SyntaxError struct {
	Point   sitter.Point
	Message string
}

// Component is a parsed component file.
type Component struct {
	Blocks []Block
	// Errors are markup errors outside script blocks.
	Errors []SyntaxError
}

// Scripts returns the script blocks in source order.
func (c *Component) Scripts() []Block {
	var out []Block
	for _, b := range c.Blocks {
		if b.Kind == KindScript {
			out = append(out, b)
		}
	}
	return out
}

// ParseComponent splits src into its top-level blocks.
func ParseComponent(ctx context.Context, src []byte) (*Component, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(HTMLGrammar())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("sfc: parse component: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	c := &Component{Errors: syntaxErrors(root, src)}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "script_element":
			c.Blocks = append(c.Blocks, rawBlock(node, src, KindScript))
		case "style_element":
			c.Blocks = append(c.Blocks, rawBlock(node, src, KindStyle))
		case "element":
			start := node.NamedChild(0)
			if start == nil || tagName(start, src) != KindTemplate {
				continue
			}
			b := Block{Kind: KindTemplate, Lang: attr(start, src, "lang")}
			if end := node.NamedChild(int(node.NamedChildCount()) - 1); end != nil && end.Type() == "end_tag" {
				b.Content = string(src[start.EndByte():end.StartByte()])
			} else {
				b.Content = string(src[start.EndByte():node.EndByte()])
			}
			b.Start = start.EndPoint()
			c.Blocks = append(c.Blocks, b)
		}
	}
	return c, nil
}

// rawBlock reads a <script> or <style> element. An empty element has no
// raw_text child; its content starts where the start tag ends.
func rawBlock(node *sitter.Node, src []byte, kind string) Block {
	var b Block
	b.Kind = kind
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "start_tag":
			b.Lang = attr(child, src, "lang")
			b.Setup = hasAttr(child, src, "setup")
			b.Start = child.EndPoint()
		case "raw_text":
			b.Content = child.Content(src)
			b.Start = child.StartPoint()
		}
	}
	return b
}

func tagName(startTag *sitter.Node, src []byte) string {
	for i := 0; i < int(startTag.NamedChildCount()); i++ {
		child := startTag.NamedChild(i)
		if child.Type() == "tag_name" {
			return strings.ToLower(child.Content(src))
		}
	}
	return ""
}

// attr returns the value of the named attribute of a start tag, or "".
func attr(startTag *sitter.Node, src []byte, name string) string {
	for i := 0; i < int(startTag.NamedChildCount()); i++ {
		a := startTag.NamedChild(i)
		if a.Type() != "attribute" {
			continue
		}
		var key, value string
		for j := 0; j < int(a.NamedChildCount()); j++ {
			part := a.NamedChild(j)
			switch part.Type() {
			case "attribute_name":
				key = part.Content(src)
			case "attribute_value":
				value = part.Content(src)
			case "quoted_attribute_value":
				value = strings.Trim(part.Content(src), `"'`)
			}
		}
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}

func hasAttr(startTag *sitter.Node, src []byte, name string) bool {
	for i := 0; i < int(startTag.NamedChildCount()); i++ {
		a := startTag.NamedChild(i)
		if a.Type() != "attribute" || a.NamedChildCount() == 0 {
			continue
		}
		if strings.EqualFold(a.NamedChild(0).Content(src), name) {
			return true
		}
	}
	return false
}

// syntaxErrors collects ERROR and MISSING nodes below n. Subtrees without
// errors are skipped; an ERROR node is reported once, not per descendant.
func syntaxErrors(n *sitter.Node, src []byte) []SyntaxError {
	if n == nil || !n.HasError() {
		return nil
	}
	var out []SyntaxError
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		switch {
		case node.IsMissing():
			out = append(out, SyntaxError{Point: node.StartPoint(), Message: fmt.Sprintf("'%s' expected.", node.Type())})
			return
		case node.Type() == "ERROR":
			out = append(out, SyntaxError{Point: node.StartPoint(), Message: unexpected(node, src)})
			return
		case !node.HasError():
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(n)
	return out
}

func unexpected(node *sitter.Node, src []byte) string {
	text := strings.TrimSpace(node.Content(src))
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	text = clip(text, 40)
	if text == "" {
		return "Syntax error."
	}
	return fmt.Sprintf("Unexpected '%s'.", text)
}

// clip shortens text to at most n characters, marking the cut with "...".
func clip(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
