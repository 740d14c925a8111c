package technews

import (
	"io"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Article represents a front page story
type Article struct {
	Rank     int    `json:"rank,omitempty"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Author   string `json:"author"`
	Age      string `json:"age,omitempty"`
	Points   int    `json:"points"`
	Comments int    `json:"comments"`
}

// Articles represents a list of stories
type Articles []*Article

const unknownAuthor = "Unknown"

// Parse extracts stories from a Hacker News listing page. Relative links are
// resolved against base.
func Parse(reader io.Reader, base *url.URL) (Articles, error) {
	root, err := html.Parse(reader)
	if err != nil {
		return nil, err
	}
	var result Articles
	for _, row := range findAll(root, func(n *html.Node) bool { return n.Data == "tr" && hasClass(n, "athing") }) {
		anchor := find(row, func(n *html.Node) bool { return hasClass(n, "titleline") })
		if anchor != nil {
			anchor = find(anchor, func(n *html.Node) bool { return n.Data == "a" })
		}
		if anchor == nil {
			continue
		}
		article := &Article{
			Title:  strings.TrimSpace(text(anchor)),
			Link:   resolve(base, attr(anchor, "href")),
			Author: unknownAuthor,
		}
		if rank := find(row, func(n *html.Node) bool { return hasClass(n, "rank") }); rank != nil {
			article.Rank = leadingInt(strings.TrimSuffix(text(rank), "."))
		}
		if subtext := nextElement(row); subtext != nil {
			if user := find(subtext, func(n *html.Node) bool { return hasClass(n, "hnuser") }); user != nil {
				if author := strings.TrimSpace(text(user)); author != "" {
					article.Author = author
				}
			}
			if score := find(subtext, func(n *html.Node) bool { return hasClass(n, "score") }); score != nil {
				article.Points = leadingInt(text(score))
			}
			if age := find(subtext, func(n *html.Node) bool { return hasClass(n, "age") }); age != nil {
				article.Age = strings.TrimSpace(text(age))
			}
			if anchors := findAll(subtext, func(n *html.Node) bool { return n.Data == "a" }); len(anchors) > 0 {
				last := strings.ReplaceAll(text(anchors[len(anchors)-1]), "\u00a0", " ")
				if strings.Contains(last, "comment") {
					article.Comments = leadingInt(last)
				}
			}
		}
		result = append(result, article)
	}
	return result, nil
}

func resolve(base *url.URL, href string) string {
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// leadingInt returns the integer prefix of text, or 0.
func leadingInt(text string) int {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	value, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return value
}

func nextElement(n *html.Node) *html.Node {
	for sibling := n.NextSibling; sibling != nil; sibling = sibling.NextSibling {
		if sibling.Type == html.ElementNode {
			return sibling
		}
	}
	return nil
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && match(child) {
			return child
		}
		if found := find(child, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var result []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && match(child) {
			result = append(result, child)
		}
		result = append(result, findAll(child, match)...)
	}
	return result
}

func hasClass(n *html.Node, class string) bool {
	for _, name := range strings.Fields(attr(n, "class")) {
		if name == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
