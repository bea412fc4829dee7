// Package selector implements per-field fallback chains over goquery
// selections. Result markup differs between page variants, so every field is
// read by trying a few selectors in order.
package selector

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Field reads one value from a listing. Empty means "not found".
type Field func(s *goquery.Selection) string

// Chain is an ordered list of Fields; the first non-empty value wins.
type Chain []Field

func (c Chain) From(s *goquery.Selection) string {
	for _, f := range c {
		if v := f(s); v != "" {
			return v
		}
	}
	return ""
}

// Text reads the trimmed text of the first element matching css.
func Text(css string) Field {
	return func(s *goquery.Selection) string {
		return strings.TrimSpace(s.Find(css).First().Text())
	}
}

// Attr reads attribute name of the first element matching css.
func Attr(css, name string) Field {
	return func(s *goquery.Selection) string {
		v, _ := s.Find(css).First().Attr(name)
		return strings.TrimSpace(v)
	}
}

// Texts is a Chain of Text fields.
func Texts(css ...string) Chain {
	c := make(Chain, 0, len(css))
	for _, sel := range css {
		c = append(c, Text(sel))
	}
	return c
}

// Attrs is a Chain of Attr fields reading the same attribute.
func Attrs(name string, css ...string) Chain {
	c := make(Chain, 0, len(css))
	for _, sel := range css {
		c = append(c, Attr(sel, name))
	}
	return c
}

// Absolute resolves href against base. Empty or unparsable input yields "".
func Absolute(base, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}
