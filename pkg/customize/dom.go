package customize

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Class names of the DOM contract
const (
	ClassValidationMessage = "customize-setting-validation-message"
	ClassInvalid           = "customize-setting-invalid"
	ClassControlTitle      = "customize-control-title"
	ClassMenuItemSettings  = "menu-item-settings"
	ClassWidgetInside      = "widget-inside"
)

// NewElement creates an element node with the given class list
func NewElement(a atom.Atom, classes ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
	}
	if len(classes) > 0 {
		setAttr(n, "class", strings.Join(classes, " "))
	}
	return n
}

// ParseFragment parses markup and returns its first top-level element,
// typically a control container rendered by a template.
func ParseFragment(markup string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n, nil
		}
	}
	return nil, fmt.Errorf("no element in fragment")
}

// Render serialises n and its children
func Render(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

// TextContent returns the concatenated text of n's descendants
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasClass reports whether n carries class
func HasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	v, _ := getAttr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	v, _ := getAttr(n, "class")
	setAttr(n, "class", strings.TrimSpace(v+" "+class))
}

func removeClass(n *html.Node, class string) {
	v, ok := getAttr(n, "class")
	if !ok {
		return
	}
	fields := strings.Fields(v)
	kept := fields[:0]
	for _, c := range fields {
		if c != class {
			kept = append(kept, c)
		}
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

// FindFirstByClass returns the first descendant of n (depth first, document order) carrying class
func FindFirstByClass(n *html.Node, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if HasClass(c, class) {
			return c
		}
		if found := FindFirstByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func prependChild(parent, child *html.Node) {
	if parent.FirstChild == nil {
		parent.AppendChild(child)
		return
	}
	parent.InsertBefore(child, parent.FirstChild)
}

func insertAfter(ref, node *html.Node) {
	if ref.NextSibling != nil {
		ref.Parent.InsertBefore(node, ref.NextSibling)
		return
	}
	ref.Parent.AppendChild(node)
}

func removeChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// setText replaces the children of n with a single text node; the text is never parsed as markup
func setText(n *html.Node, text string) {
	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
