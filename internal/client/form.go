package client

import (
	"strings"

	"golang.org/x/net/html"
)

// Markup parsing helpers for the forum's server-rendered pages. Everything
// works on a parsed tree and tolerates missing nodes: the forms are scraped,
// not negotiated, so absence means empty values rather than panics.

func parsePage(body string) (*html.Node, error) {
	return html.Parse(strings.NewReader(body))
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// walk visits every element node in document order. The visitor returns
// false to stop the traversal early.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n.Type == html.ElementNode {
		if !visit(n) {
			return false
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return sb.String()
}

// hiddenInputs collects every named hidden input in the page.
func hiddenInputs(doc *html.Node) map[string]string {
	out := make(map[string]string)
	walk(doc, func(n *html.Node) bool {
		if n.Data == "input" && attrValue(n, "type") == "hidden" {
			if name := attrValue(n, "name"); name != "" {
				out[name] = attrValue(n, "value")
			}
		}
		return true
	})
	return out
}

// inputValue returns the value of the first input with the given name,
// hidden or not.
func inputValue(doc *html.Node, name string) string {
	value := ""
	walk(doc, func(n *html.Node) bool {
		if n.Data == "input" && attrValue(n, "name") == name {
			value = attrValue(n, "value")
			return false
		}
		return true
	})
	return value
}

// anchorHrefs returns the href of every anchor in document order.
func anchorHrefs(doc *html.Node) []string {
	var hrefs []string
	walk(doc, func(n *html.Node) bool {
		if n.Data == "a" {
			if href := strings.TrimSpace(attrValue(n, "href")); href != "" {
				hrefs = append(hrefs, href)
			}
		}
		return true
	})
	return hrefs
}

// anchorHrefsByClass returns the hrefs of anchors carrying the given class,
// in document order. The listing pages mark own-post links this way.
func anchorHrefsByClass(doc *html.Node, class string) []string {
	var hrefs []string
	walk(doc, func(n *html.Node) bool {
		if n.Data != "a" {
			return true
		}
		for _, c := range strings.Fields(attrValue(n, "class")) {
			if c == class {
				if href := strings.TrimSpace(attrValue(n, "href")); href != "" {
					hrefs = append(hrefs, href)
				}
				break
			}
		}
		return true
	})
	return hrefs
}

// metaProperty returns the content of the first meta tag with the given
// property attribute (e.g. "og:url").
func metaProperty(doc *html.Node, property string) string {
	content := ""
	walk(doc, func(n *html.Node) bool {
		if n.Data == "meta" && attrValue(n, "property") == property {
			content = attrValue(n, "content")
			return false
		}
		return true
	})
	return content
}

// chooseCategory picks a category value from the write form's select box.
// Options with empty values, a placeholder label, or a disabled attribute
// are skipped. The last option whose label contains "기타" wins; otherwise
// the last valid option does. Returns "" when the form has no usable
// category, in which case the field is omitted entirely.
func chooseCategory(doc *html.Node) string {
	var sel *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Data == "select" {
			name := attrValue(n, "name")
			if name == "CATEGORY" || name == "category" {
				sel = n
				return false
			}
		}
		return true
	})
	if sel == nil {
		return ""
	}

	type option struct{ label, value string }
	var valid []option
	walk(sel, func(n *html.Node) bool {
		if n.Data != "option" {
			return true
		}
		val := strings.TrimSpace(attrValue(n, "value"))
		label := strings.TrimSpace(nodeText(n))
		if val == "" || hasAttr(n, "disabled") || strings.Contains(label, "선택") {
			return true
		}
		valid = append(valid, option{label: label, value: val})
		return true
	})
	if len(valid) == 0 {
		return ""
	}

	for i := len(valid) - 1; i >= 0; i-- {
		if strings.Contains(valid[i].label, "기타") {
			return valid[i].value
		}
	}
	return valid[len(valid)-1].value
}
