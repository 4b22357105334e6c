// Package richtext handles the HTML bodies produced by the post editor:
// allow-list sanitizing on write, plain-text excerpts for listings and
// feeds and reading-time estimates.
package richtext

import (
	"bytes"
	"html"
	"math"
	"net/url"
	"strings"
	"unicode"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// wordsPerMinute is the reading speed used by ReadingMinutes.
const wordsPerMinute = 200

// allowedTags maps each permitted element to the attributes it may keep.
var allowedTags = map[atom.Atom][]string{
	atom.P: nil, atom.Br: nil, atom.Hr: nil,
	atom.H1: nil, atom.H2: nil, atom.H3: nil, atom.H4: nil,
	atom.Strong: nil, atom.B: nil, atom.Em: nil, atom.I: nil, atom.U: nil, atom.S: nil,
	atom.Blockquote: nil, atom.Pre: nil, atom.Code: nil,
	atom.Ul: nil, atom.Ol: nil, atom.Li: nil,
	atom.A:   {"href", "title"},
	atom.Img: {"src", "alt", "width", "height"},
	atom.Span: nil,
}

// droppedWithContent are elements removed together with everything inside.
var droppedWithContent = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Iframe: true, atom.Object: true,
	atom.Embed: true, atom.Noscript: true, atom.Template: true,
}

// blockTags produce a word break when flattened to text.
var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Br: true, atom.Li: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.Div: true, atom.Hr: true,
}

// Sanitize rewrites src keeping only allow-listed elements and attributes.
// Links and images must use http, https or mailto (links only) URLs.
func Sanitize(src string) string {
	z := xhtml.NewTokenizer(strings.NewReader(src))
	var buf bytes.Buffer
	skipDepth := 0
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			return buf.String()
		}
		tok := z.Token()
		switch tt {
		case xhtml.TextToken:
			if skipDepth == 0 {
				buf.WriteString(html.EscapeString(tok.Data))
			}
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			if droppedWithContent[tok.DataAtom] {
				if tt == xhtml.StartTagToken {
					skipDepth++
				}
				continue
			}
			attrs, ok := allowedTags[tok.DataAtom]
			if skipDepth > 0 || !ok {
				continue
			}
			buf.WriteByte('<')
			buf.WriteString(tok.Data)
			for _, a := range tok.Attr {
				if !keepAttr(tok.DataAtom, attrs, a) {
					continue
				}
				buf.WriteByte(' ')
				buf.WriteString(a.Key)
				buf.WriteString(`="`)
				buf.WriteString(html.EscapeString(a.Val))
				buf.WriteByte('"')
			}
			if tok.DataAtom == atom.A {
				buf.WriteString(` rel="nofollow noopener"`)
			}
			buf.WriteByte('>')
		case xhtml.EndTagToken:
			if droppedWithContent[tok.DataAtom] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if _, ok := allowedTags[tok.DataAtom]; ok && skipDepth == 0 && !isVoid(tok.DataAtom) {
				buf.WriteString("</" + tok.Data + ">")
			}
		}
	}
}

func keepAttr(tag atom.Atom, allowed []string, a xhtml.Attribute) bool {
	if a.Namespace != "" {
		return false
	}
	found := false
	for _, k := range allowed {
		if strings.EqualFold(k, a.Key) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if a.Key == "href" || a.Key == "src" {
		return safeURL(a.Val, tag == atom.A)
	}
	return true
}

func safeURL(raw string, allowMailto bool) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return true
	case "mailto":
		return allowMailto
	case "":
		// relative paths such as /public/uploads/x.jpg
		return strings.HasPrefix(u.Path, "/") && !strings.HasPrefix(raw, "//")
	}
	return false
}

func isVoid(a atom.Atom) bool {
	return a == atom.Br || a == atom.Hr || a == atom.Img
}

// PlainText flattens an HTML fragment into whitespace-normalized text.
func PlainText(src string) string {
	z := xhtml.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	skipDepth := 0
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case xhtml.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken, xhtml.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if droppedWithContent[a] {
				if tt == xhtml.StartTagToken {
					skipDepth++
				} else if tt == xhtml.EndTagToken && skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if blockTags[a] {
				b.WriteByte(' ')
			}
		}
	}
}

// Excerpt returns at most n runes of plain text, cut at a word boundary
// and suffixed with an ellipsis when shortened.
func Excerpt(src string, n int) string {
	text := PlainText(src)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	cut := n
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = n
	}
	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + "…"
}

// ReadingMinutes estimates reading time, never less than one minute for
// non-empty content.
func ReadingMinutes(src string) int {
	words := len(strings.Fields(PlainText(src)))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}
