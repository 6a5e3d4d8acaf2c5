package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/lunchbot/internal/menu"
	"golang.org/x/net/html"
)

// DefaultContainerID is the id of the element holding a day's menu.
const DefaultContainerID = "center_text"

// ErrContainerNotFound is returned when the page has no menu container.
var ErrContainerNotFound = errors.New("menu container not found")

// ParseMenu parses an HTML menu page and returns the direct children of the
// element with the given id as fragments, in document order.
//
// <br> becomes a line break. Text nodes keep their raw data and other
// elements contribute their text content. Comments and whitespace-only
// text are skipped.
func ParseMenu(r io.Reader, containerID string) ([]menu.Fragment, error) {
	if containerID == "" {
		containerID = DefaultContainerID
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	container := findByID(doc, containerID)
	if container == nil {
		return nil, fmt.Errorf("%w: #%s", ErrContainerNotFound, containerID)
	}

	var frags []menu.Fragment
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				continue
			}
			frags = append(frags, menu.TextFragment(c.Data))
		case html.ElementNode:
			if c.Data == "br" {
				frags = append(frags, menu.LineBreak())
				continue
			}
			frags = append(frags, menu.TextFragment(textContent(c)))
		}
	}
	return frags, nil
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
