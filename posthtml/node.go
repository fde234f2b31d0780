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

// Package posthtml sanitizes the HTML content of social media posts.
//
// Post HTML is converted into a [Doc]:
// a tree restricted to a small set of formatting elements
// and a few attributes on those elements.
// Elements outside the set are unwrapped (their content is kept),
// and everything else (comments, doctypes, scripting) is dropped.
// A Doc renders back to HTML with all text and attribute values escaped.
package posthtml

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// A Doc is a sanitized HTML fragment.
type Doc struct {
	Roots []Node
}

// Node is an element or text in a [Doc].
// The concrete type of a Node is either [*Element] or [Text].
type Node interface {
	// AppendHTML appends the rendered HTML of the node to dst
	// and returns the resulting byte slice.
	AppendHTML(dst []byte) []byte

	isNode()
}

// Text is a text node.
// Its content is unescaped.
type Text string

func (Text) isNode() {}

// An Element is an element node with an allowed tag.
type Element struct {
	Tag      Tag
	Attrs    []Attribute
	Children []Node
}

func (*Element) isNode() {}

// Attribute is an attribute of an [Element].
type Attribute struct {
	Key Attr
	Val string
}

// NewElement returns a new element.
// Attributes that are not allowed on the tag are dropped.
func NewElement(tag Tag, attrs []Attribute, children []Node) *Element {
	var allowed []Attribute
	for _, attr := range attrs {
		if tag.AllowsAttr(attr.Key) {
			allowed = append(allowed, attr)
		}
	}
	return &Element{
		Tag:      tag,
		Attrs:    allowed,
		Children: children,
	}
}

// WithChildren returns a copy of e with its children replaced.
func (e *Element) WithChildren(children []Node) *Element {
	return &Element{
		Tag:      e.Tag,
		Attrs:    append([]Attribute(nil), e.Attrs...),
		Children: children,
	}
}

// Tag is an allowed element name.
type Tag uint8

// Allowed element names.
const (
	P Tag = 1 + iota
	Br
	A
	Del
	Pre
	Code
	Em
	Strong
	B
	I
	U
	Ul
	Ol
	Li
	Blockquote

	numTags = iota
)

var tagAtoms = [...]atom.Atom{
	P:          atom.P,
	Br:         atom.Br,
	A:          atom.A,
	Del:        atom.Del,
	Pre:        atom.Pre,
	Code:       atom.Code,
	Em:         atom.Em,
	Strong:     atom.Strong,
	B:          atom.B,
	I:          atom.I,
	U:          atom.U,
	Ul:         atom.Ul,
	Ol:         atom.Ol,
	Li:         atom.Li,
	Blockquote: atom.Blockquote,
}

var atomTags = func() map[atom.Atom]Tag {
	m := make(map[atom.Atom]Tag, numTags)
	for t, a := range tagAtoms {
		if a != 0 {
			m[a] = Tag(t)
		}
	}
	return m
}()

// LookupTag returns the allowed tag with the given name.
// Names are matched case-insensitively.
func LookupTag(name string) (Tag, bool) {
	t, ok := atomTags[atom.Lookup([]byte(strings.ToLower(name)))]
	return t, ok
}

// Atom returns the tag's atom
// or zero if t is not a valid tag.
func (t Tag) Atom() atom.Atom {
	if int(t) >= len(tagAtoms) {
		return 0
	}
	return tagAtoms[t]
}

// String returns the lowercase tag name.
func (t Tag) String() string {
	return t.Atom().String()
}

// AllowsAttr reports whether the attribute is allowed on the tag.
func (t Tag) AllowsAttr(attr Attr) bool {
	switch t {
	case A:
		return attr == Href
	case Ol:
		return attr == Start || attr == Reversed
	case Li:
		return attr == Value
	default:
		return false
	}
}

// Attr is an allowed attribute name.
type Attr uint8

// Allowed attribute names.
const (
	Href Attr = 1 + iota
	Start
	Reversed
	Value
)

var attrAtoms = [...]atom.Atom{
	Href:     atom.Href,
	Start:    atom.Start,
	Reversed: atom.Reversed,
	Value:    atom.Value,
}

// LookupAttr returns the allowed attribute with the given name.
// Names are matched case-insensitively.
func LookupAttr(name string) (Attr, bool) {
	a := atom.Lookup([]byte(strings.ToLower(name)))
	if a == 0 {
		return 0, false
	}
	for attr, attrAtom := range attrAtoms {
		if attrAtom == a {
			return Attr(attr), true
		}
	}
	return 0, false
}

// Atom returns the attribute's atom
// or zero if attr is not a valid attribute.
func (attr Attr) Atom() atom.Atom {
	if int(attr) >= len(attrAtoms) {
		return 0
	}
	return attrAtoms[attr]
}

// String returns the lowercase attribute name.
func (attr Attr) String() string {
	return attr.Atom().String()
}
