// Package cleaner turns page HTML into something small enough to hand to a model.
package cleaner

import (
	"strings"

	"agent-bridge/internal/application/service"

	"golang.org/x/net/html"
)

type Config struct {
	TagsToRemove  []string
	AttrsToRemove []string
	MaxOutputSize int
}

var DefaultConfig = Config{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe",
		"link", "meta", "head", "title", "template",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "tabindex",
	},
	MaxOutputSize: 40_000,
}

const truncatedNotice = "\n... (content truncated)"

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true,
	"footer": true, "main": true, "nav": true, "aside": true, "li": true,
	"ul": true, "ol": true, "table": true, "tr": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"br": true, "hr": true, "label": true, "button": true,
}

// CleanHTML strips noise tags, comments and presentation attributes and
// returns the rendered <body>. Unparseable input is returned unchanged.
func CleanHTML(rawHTML string, cfg *Config) string {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	body, ok := parseBody(rawHTML, cfg)
	if !ok {
		return truncate(rawHTML, cfg.MaxOutputSize)
	}

	var sb strings.Builder
	_ = html.Render(&sb, body)
	return truncate(sb.String(), cfg.MaxOutputSize)
}

// Text returns the readable text of the page, one block element per line.
func Text(rawHTML string, cfg *Config) string {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	body, ok := parseBody(rawHTML, cfg)
	if !ok {
		return truncate(strings.TrimSpace(rawHTML), cfg.MaxOutputSize)
	}

	var sb strings.Builder
	writeText(&sb, body)

	lines := strings.Split(sb.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return truncate(strings.Join(kept, "\n"), cfg.MaxOutputSize)
}

func parseBody(rawHTML string, cfg *Config) (*html.Node, bool) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, false
	}
	body := findBody(doc)
	if body == nil {
		return nil, false
	}
	cleanNode(body, cfg)
	return body, true
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func cleanNode(n *html.Node, cfg *Config) {
	if n.Type == html.CommentNode {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	if contains(cfg.TagsToRemove, n.Data) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}

	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		if !dropAttr(attr.Key, cfg) {
			kept = append(kept, attr)
		}
	}
	n.Attr = kept

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		cleanNode(c, cfg)
		c = next
	}
}

func dropAttr(key string, cfg *Config) bool {
	if contains(cfg.AttrsToRemove, key) {
		return true
	}
	return strings.HasPrefix(key, "data-") || strings.HasPrefix(key, "aria-") || strings.HasPrefix(key, "on")
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	case html.ElementNode:
		if n.Data == "input" || n.Data == "textarea" {
			for _, attr := range n.Attr {
				if attr.Key == "placeholder" || (attr.Key == "value" && attr.Val != "") {
					sb.WriteString("[" + attr.Val + "] ")
					break
				}
			}
		}
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if block {
		sb.WriteByte('\n')
	}
}

func truncate(s string, maxSize int) string {
	return service.Truncate(s, maxSize, truncatedNotice)
}

func contains(list []string, s string) bool {
	for _, c := range list {
		if c == s {
			return true
		}
	}
	return false
}
