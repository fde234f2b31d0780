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
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses an HTML fragment as it would appear inside a <body> element
// and converts it to a [Doc] using [Convert].
func Parse(s string, maxDepth int) (*Doc, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragmentWithOptions(strings.NewReader(s), context, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("parse post html: %w", err)
	}
	// Fragments are rooted at an <html> element, as the parser's
	// fragment algorithm specifies. The wrapper counts toward maxDepth.
	root := &html.Node{Type: html.DocumentNode}
	wrapper := &html.Node{
		Type:     html.ElementNode,
		Data:     "html",
		DataAtom: atom.Html,
	}
	root.AppendChild(wrapper)
	for _, n := range nodes {
		wrapper.AppendChild(n)
	}
	doc, _ := Convert(root, maxDepth)
	return doc, nil
}

// Convert sanitizes a parsed HTML document.
// Nodes nested maxDepth or more levels below root are dropped.
// Convert reports false if root is not a document node.
func Convert(root *html.Node, maxDepth int) (*Doc, bool) {
	if root == nil || root.Type != html.DocumentNode {
		return nil, false
	}
	return &Doc{Roots: convertChildren(root, maxDepth)}, true
}

// convertChildren converts the children of parent,
// splicing in the content of unwrapped elements
// and merging adjacent text.
func convertChildren(parent *html.Node, depth int) []Node {
	var nodes []Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		for _, n := range convertNode(c, depth) {
			nodes = appendNode(nodes, n)
		}
	}
	return nodes
}

// convertNode converts a single HTML node to zero or more nodes.
func convertNode(n *html.Node, depth int) []Node {
	if depth <= 0 {
		return nil
	}
	depth--

	switch n.Type {
	case html.TextNode:
		return []Node{Text(n.Data)}
	case html.ElementNode:
		children := convertChildren(n, depth)
		tag, ok := LookupTag(n.Data)
		if !ok {
			// Unwrap.
			return children
		}
		var attrs []Attribute
		for _, a := range n.Attr {
			if key, ok := LookupAttr(a.Key); ok {
				attrs = append(attrs, Attribute{Key: key, Val: a.Val})
			}
		}
		return []Node{NewElement(tag, attrs, children)}
	default:
		// Documents, doctypes, comments, and raw nodes.
		return nil
	}
}

// appendNode appends n to nodes,
// concatenating it with the last node if both are text.
func appendNode(nodes []Node, n Node) []Node {
	if len(nodes) > 0 {
		last, lastIsText := nodes[len(nodes)-1].(Text)
		if text, isText := n.(Text); lastIsText && isText {
			nodes[len(nodes)-1] = last + text
			return nodes
		}
	}
	return append(nodes, n)
}
