// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package posthtml

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/net/html"
	"zombiezen.com/go/smolrobots/internal/corpus"
)

const testMaxDepth = 16

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "Empty",
			html: "",
			want: "",
		},
		{
			name: "Paragraph",
			html: "<p>Hello, World!</p>",
			want: "<p>Hello, World!</p>",
		},
		{
			name: "UnwrapSpan",
			html: "<p>Hello <span class=\"x\">big</span> World!</p>",
			want: "<p>Hello big World!</p>",
		},
		{
			name: "UnwrapNested",
			html: "<div><section><p>deep</p></section></div>",
			want: "<p>deep</p>",
		},
		{
			name: "LineBreak",
			html: "<p>one<br>two<br/>three</p>",
			want: "<p>one<br>two<br>three</p>",
		},
		{
			name: "Link",
			html: `<a href="https://example.com/?a=1&amp;b=2" class="mention" rel="nofollow noopener" target="_blank">link</a>`,
			want: "<a href='https://example.com/?a=1&amp;b=2'>link</a>",
		},
		{
			name: "HrefOnlyOnLinks",
			html: `<p href="https://example.com/">text</p>`,
			want: "<p>text</p>",
		},
		{
			name: "OrderedList",
			html: `<ol start="3" reversed class="x"><li value="5" id="y">five</li><li>four</li></ol>`,
			want: "<ol start='3' reversed=''><li value='5'>five</li><li>four</li></ol>",
		},
		{
			name: "ListAttributesOnWrongTags",
			html: `<ul start="3"><li start="2" href="x">item</li></ul>`,
			want: "<ul><li>item</li></ul>",
		},
		{
			name: "Formatting",
			html: "<p><em>a</em><strong>b</strong><b>c</b><i>d</i><u>e</u><del>f</del><code>g</code></p>",
			want: "<p><em>a</em><strong>b</strong><b>c</b><i>d</i><u>e</u><del>f</del><code>g</code></p>",
		},
		{
			name: "Blocks",
			html: "<blockquote><pre>x</pre></blockquote>",
			want: "<blockquote><pre>x</pre></blockquote>",
		},
		{
			name: "UppercaseTags",
			html: "<P><STRONG HREF=\"x\">loud</STRONG></P>",
			want: "<p><strong>loud</strong></p>",
		},
		{
			name: "Comment",
			html: "<p>before<!-- comment -->after</p>",
			want: "<p>beforeafter</p>",
		},
		{
			name: "Script",
			html: `<p>hi</p><script>alert("pwned")</script>`,
			want: "<p>hi</p>alert(&quot;pwned&quot;)",
		},
		{
			name: "Image",
			html: `<p>look <img src="https://example.com/x.png" alt="x"> here</p>`,
			want: "<p>look  here</p>",
		},
		{
			name: "EscapedText",
			html: `<p>a &lt; b &amp;&amp; 'c' &gt; "d"</p>`,
			want: "<p>a &lt; b &amp;&amp; &apos;c&apos; &gt; &quot;d&quot;</p>",
		},
		{
			name: "EscapedAttribute",
			html: `<a href="x' onclick='y">z</a>`,
			want: "<a href='x&apos; onclick=&apos;y'>z</a>",
		},
		{
			name: "Newline",
			html: "<p>a\nb</p>",
			want: "<p>a&nbsp;b</p>",
		},
		{
			name: "EmptyElement",
			html: "<p></p><p>x</p>",
			want: "<p><p>x</p>",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			doc, err := Parse(test.html, testMaxDepth)
			if err != nil {
				t.Fatal(err)
			}
			if got := doc.String(); got != test.want {
				t.Errorf("Parse(%q).String() = %q; want %q", test.html, got, test.want)
			}
		})
	}
}

func TestParseCoalescesText(t *testing.T) {
	doc, err := Parse("a<span>b</span><!-- c -->d<font>e</font>", testMaxDepth)
	if err != nil {
		t.Fatal(err)
	}
	want := []Node{Text("abde")}
	if diff := cmp.Diff(want, doc.Roots); diff != "" {
		t.Errorf("roots (-want +got):\n%s", diff)
	}
}

func TestParseStructure(t *testing.T) {
	doc, err := Parse(`<p>Hi <a href="https://example.com/" class="u-url">@<span>you</span></a></p><ol start="2"><li>x</li></ol>`, testMaxDepth)
	if err != nil {
		t.Fatal(err)
	}
	want := &Doc{Roots: []Node{
		&Element{
			Tag: P,
			Children: []Node{
				Text("Hi "),
				&Element{
					Tag:      A,
					Attrs:    []Attribute{{Key: Href, Val: "https://example.com/"}},
					Children: []Node{Text("@you")},
				},
			},
		},
		&Element{
			Tag:   Ol,
			Attrs: []Attribute{{Key: Start, Val: "2"}},
			Children: []Node{
				&Element{Tag: Li, Children: []Node{Text("x")}},
			},
		},
	}}
	if diff := cmp.Diff(want, doc, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Parse(...) (-want +got):\n%s", diff)
	}
}

func TestParseDepth(t *testing.T) {
	const input = "<p><em><strong>x</strong></em></p>"
	tests := []struct {
		maxDepth int
		want     string
	}{
		{0, ""},
		// The fragment's <html> wrapper uses one level.
		{1, ""},
		{2, "<p>"},
		{3, "<p><em></p>"},
		{4, "<p><em><strong></em></p>"},
		{5, "<p><em><strong>x</strong></em></p>"},
		{100, "<p><em><strong>x</strong></em></p>"},
	}
	for _, test := range tests {
		doc, err := Parse(input, test.maxDepth)
		if err != nil {
			t.Errorf("Parse(%q, %d): %v", input, test.maxDepth, err)
			continue
		}
		if got := doc.String(); got != test.want {
			t.Errorf("Parse(%q, %d).String() = %q; want %q", input, test.maxDepth, got, test.want)
		}
	}
}

func TestConvert(t *testing.T) {
	root, err := html.Parse(strings.NewReader("<!DOCTYPE html><html><head><title>T</title></head><body><p>x</p></body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	doc, ok := Convert(root, testMaxDepth)
	if !ok {
		t.Fatal("Convert(document) = _, false")
	}
	// <title> is unwrapped like any other element.
	if got, want := doc.String(), "T<p>x</p>"; got != want {
		t.Errorf("Convert(...).String() = %q; want %q", got, want)
	}

	body := root.LastChild.LastChild
	if doc, ok := Convert(body, testMaxDepth); ok {
		t.Errorf("Convert(<body>) = %v, true; want _, false", doc)
	}
	if doc, ok := Convert(nil, testMaxDepth); ok {
		t.Errorf("Convert(nil) = %v, true; want _, false", doc)
	}
}

func TestConvertSkipsNestedDocuments(t *testing.T) {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.TextNode, Data: "a"})
	nested := &html.Node{Type: html.DocumentNode}
	nested.AppendChild(&html.Node{Type: html.TextNode, Data: "hidden"})
	root.AppendChild(nested)
	root.AppendChild(&html.Node{Type: html.TextNode, Data: "b"})

	doc, ok := Convert(root, testMaxDepth)
	if !ok {
		t.Fatal("Convert(...) = _, false")
	}
	if diff := cmp.Diff([]Node{Text("ab")}, doc.Roots); diff != "" {
		t.Errorf("roots (-want +got):\n%s", diff)
	}
}

func TestNewElement(t *testing.T) {
	attrs := []Attribute{
		{Key: Href, Val: "https://example.com/"},
		{Key: Start, Val: "1"},
		{Key: Value, Val: "2"},
	}
	tests := []struct {
		tag  Tag
		want []Attribute
	}{
		{A, []Attribute{{Key: Href, Val: "https://example.com/"}}},
		{Ol, []Attribute{{Key: Start, Val: "1"}}},
		{Li, []Attribute{{Key: Value, Val: "2"}}},
		{P, nil},
	}
	for _, test := range tests {
		e := NewElement(test.tag, attrs, nil)
		if diff := cmp.Diff(test.want, e.Attrs, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("NewElement(%v, ...).Attrs (-want +got):\n%s", test.tag, diff)
		}
	}
}

func TestLookup(t *testing.T) {
	for tag := P; tag < numTags; tag++ {
		name := tag.String()
		if got, ok := LookupTag(strings.ToUpper(name)); got != tag || !ok {
			t.Errorf("LookupTag(%q) = %v, %t; want %v, true", strings.ToUpper(name), got, ok, tag)
		}
	}
	for _, name := range []string{"", "span", "div", "script", "html"} {
		if got, ok := LookupTag(name); ok {
			t.Errorf("LookupTag(%q) = %v, true; want _, false", name, got)
		}
	}

	for _, attr := range []Attr{Href, Start, Reversed, Value} {
		if got, ok := LookupAttr(attr.String()); got != attr || !ok {
			t.Errorf("LookupAttr(%q) = %v, %t; want %v, true", attr.String(), got, ok, attr)
		}
	}
	for _, name := range []string{"", "class", "src", "p"} {
		if got, ok := LookupAttr(name); ok {
			t.Errorf("LookupAttr(%q) = %v, true; want _, false", name, got)
		}
	}
}

func TestEscapeString(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"a & b", "a &amp; b"},
		{`<'">`, "&lt;&apos;&quot;&gt;"},
		{"line\nbreak", "line&nbsp;break"},
		{"&amp;", "&amp;amp;"},
	}
	for _, test := range tests {
		if got := EscapeString(test.s); got != test.want {
			t.Errorf("EscapeString(%q) = %q; want %q", test.s, got, test.want)
		}
	}
}

func TestReparse(t *testing.T) {
	tests := []string{
		"<p>Hello <span>World</span>!</p>",
		`<p>a &lt; b &amp; 'c' "d"</p>`,
		`<p>Hi <a href="https://example.com/?q=1&amp;r='2'">there</a></p><p>more<br>lines</p>`,
		`<ol start="3" reversed><li value="5">five</li></ol>`,
		"<blockquote><p><em>quoted</em></p></blockquote>",
	}
	for _, input := range tests {
		doc, err := Parse(input, testMaxDepth)
		if err != nil {
			t.Errorf("Parse(%q): %v", input, err)
			continue
		}
		first := doc.String()
		doc2, err := Parse(first, testMaxDepth)
		if err != nil {
			t.Errorf("Parse(%q): %v", first, err)
			continue
		}
		if diff := cmp.Diff(doc, doc2, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Parse(Parse(%q).String()) changed (-first +second):\n%s", input, diff)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		html string
		want string
	}{
		{"", ""},
		{"<p>one</p>", "one"},
		{"<p>one<br>two</p><p>three</p>", "one\ntwo\nthree"},
		{"<p>a &amp; <em>b</em></p>", "a & b"},
		{"<ul><li>x</li><li>y</li></ul>", "xy"},
	}
	for _, test := range tests {
		doc, err := Parse(test.html, testMaxDepth)
		if err != nil {
			t.Errorf("Parse(%q): %v", test.html, err)
			continue
		}
		if got := doc.Text(); got != test.want {
			t.Errorf("Parse(%q).Text() = %q; want %q", test.html, got, test.want)
		}
	}
}

func TestWalk(t *testing.T) {
	doc, err := Parse("<p>a<em>b</em></p><p>c</p>", testMaxDepth)
	if err != nil {
		t.Fatal(err)
	}

	var events []string
	Walk(doc, &WalkOptions{
		Pre: func(c *Cursor) bool {
			events = append(events, "pre "+nodeName(c.Node()))
			return true
		},
		Post: func(c *Cursor) bool {
			events = append(events, "post "+nodeName(c.Node()))
			return true
		},
	})
	want := []string{
		"pre p", "pre a", "post a", "pre em", "pre b", "post b", "post em", "post p",
		"pre p", "pre c", "post c", "post p",
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}

	// Returning false from Pre skips children and Post.
	events = nil
	Walk(doc, &WalkOptions{
		Pre: func(c *Cursor) bool {
			events = append(events, nodeName(c.Node()))
			e, ok := c.Node().(*Element)
			return !ok || e.Tag != Em
		},
	})
	if diff := cmp.Diff([]string{"p", "a", "em", "p", "c"}, events); diff != "" {
		t.Errorf("events with Pre skipping (-want +got):\n%s", diff)
	}

	// Returning false from Post stops the walk.
	events = nil
	Walk(doc, &WalkOptions{
		Pre: func(c *Cursor) bool {
			events = append(events, nodeName(c.Node()))
			return true
		},
		Post: func(c *Cursor) bool {
			_, isElement := c.Node().(*Element)
			return !isElement
		},
	})
	if diff := cmp.Diff([]string{"p", "a", "em", "b"}, events); diff != "" {
		t.Errorf("events with Post stopping (-want +got):\n%s", diff)
	}
}

func TestWalkDepth(t *testing.T) {
	doc, err := Parse("<blockquote><p><em>x</em></p></blockquote>", testMaxDepth)
	if err != nil {
		t.Fatal(err)
	}
	var depths []int
	var parents []string
	Walk(doc, &WalkOptions{
		Pre: func(c *Cursor) bool {
			depths = append(depths, c.Depth())
			if p := c.Parent(); p != nil {
				parents = append(parents, p.Tag.String())
			} else {
				parents = append(parents, "")
			}
			return true
		},
	})
	if diff := cmp.Diff([]int{0, 1, 2, 3}, depths); diff != "" {
		t.Errorf("depths (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", "blockquote", "p", "em"}, parents); diff != "" {
		t.Errorf("parents (-want +got):\n%s", diff)
	}
}

type failWriter struct{}

var errWriteFailed = errors.New("write failed")

func (failWriter) Write(p []byte) (int, error) {
	return 0, errWriteFailed
}

func TestRender(t *testing.T) {
	doc, err := Parse("<p>x</p>", testMaxDepth)
	if err != nil {
		t.Fatal(err)
	}
	sb := new(strings.Builder)
	if err := doc.Render(sb); err != nil {
		t.Error("Render:", err)
	}
	if got, want := sb.String(), "<p>x</p>"; got != want {
		t.Errorf("Render wrote %q; want %q", got, want)
	}
	if err := doc.Render(failWriter{}); !errors.Is(err, errWriteFailed) {
		t.Errorf("Render(failWriter{}) = %v; want %v", err, errWriteFailed)
	}
}

func FuzzParse(f *testing.F) {
	posts, err := corpus.Load()
	if err != nil {
		f.Fatal(err)
	}
	for _, post := range posts {
		f.Add(post.HTML, testMaxDepth)
	}
	f.Add("<p><p><button><p>x", 4)

	f.Fuzz(func(t *testing.T, input string, maxDepth int) {
		if maxDepth > 64 {
			maxDepth = 64
		}
		doc, err := Parse(input, maxDepth)
		if err != nil {
			t.Fatal(err)
		}
		checkDoc(t, doc, maxDepth)
		if s := doc.String(); strings.Contains(s, "<script") {
			t.Errorf("Parse(%q, %d).String() = %q; contains script", input, maxDepth, s)
		}
	})
}

// checkDoc verifies that the document only contains allowed markup,
// does not have adjacent text nodes,
// and is not nested more deeply than maxDepth permits.
func checkDoc(tb testing.TB, doc *Doc, maxDepth int) {
	tb.Helper()
	checkSiblings := func(nodes []Node) {
		for i := 1; i < len(nodes); i++ {
			_, prevText := nodes[i-1].(Text)
			_, currText := nodes[i].(Text)
			if prevText && currText {
				tb.Errorf("adjacent text nodes %q and %q", nodes[i-1], nodes[i])
			}
		}
	}
	checkSiblings(doc.Roots)
	Walk(doc, &WalkOptions{
		Pre: func(c *Cursor) bool {
			// Document roots are below the fragment's <html> wrapper.
			if c.Depth()+2 > maxDepth {
				tb.Errorf("node %q at depth %d exceeds max depth %d", nodeName(c.Node()), c.Depth(), maxDepth)
			}
			e, ok := c.Node().(*Element)
			if !ok {
				return true
			}
			if e.Tag.Atom() == 0 {
				tb.Errorf("element has invalid tag %d", e.Tag)
			}
			for _, attr := range e.Attrs {
				if !e.Tag.AllowsAttr(attr.Key) {
					tb.Errorf("<%v> has disallowed attribute %v", e.Tag, attr.Key)
				}
			}
			checkSiblings(e.Children)
			return true
		},
	})
}

func nodeName(n Node) string {
	switch n := n.(type) {
	case Text:
		return string(n)
	case *Element:
		return n.Tag.String()
	default:
		return "?"
	}
}
