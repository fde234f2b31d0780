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

import "strings"

// A Cursor describes a [Node] encountered during [Walk].
type Cursor struct {
	node   Node
	parent *Element
	depth  int
}

// Node returns the current [Node].
func (c *Cursor) Node() Node {
	return c.node
}

// Parent returns the element containing the current [Node]
// or nil if the node is one of the document's roots.
func (c *Cursor) Parent() *Element {
	return c.parent
}

// Depth returns the number of elements containing the current [Node].
// Document roots have a depth of zero.
func (c *Cursor) Depth() int {
	return c.depth
}

// WalkOptions is the set of parameters to [Walk].
type WalkOptions struct {
	// If Pre is not nil, it is called for each node before the node's children are traversed (pre-order).
	// If Pre returns false, no children are traversed, and Post is not called for that node.
	Pre func(c *Cursor) bool
	// If Post is not nil, it is called for each node after the node's children are traversed (post-order).
	// If Post returns false, traversal is terminated and Walk returns immediately.
	Post func(c *Cursor) bool
}

// Walk traverses the nodes of a [Doc] in document order,
// calling [WalkOptions.Pre] and [WalkOptions.Post].
func Walk(doc *Doc, opts *WalkOptions) {
	type walkFrame struct {
		node   Node
		parent *Element
		depth  int
		post   bool
	}

	stack := make([]walkFrame, 0, len(doc.Roots))
	for i := len(doc.Roots) - 1; i >= 0; i-- {
		stack = append(stack, walkFrame{node: doc.Roots[i]})
	}
	cursor := new(Cursor)
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cursor.node = curr.node
		cursor.parent = curr.parent
		cursor.depth = curr.depth
		if curr.post {
			if opts.Post != nil && !opts.Post(cursor) {
				break
			}
			continue
		}

		if opts.Pre != nil && !opts.Pre(cursor) {
			continue
		}
		curr.post = true
		stack = append(stack, curr)
		if e, ok := curr.node.(*Element); ok {
			for i := len(e.Children) - 1; i >= 0; i-- {
				stack = append(stack, walkFrame{
					node:   e.Children[i],
					parent: e,
					depth:  curr.depth + 1,
				})
			}
		}
	}
}

// Text returns the document's text content.
// Line breaks and the boundaries between paragraphs
// are converted to newlines.
func (doc *Doc) Text() string {
	sb := new(strings.Builder)
	Walk(doc, &WalkOptions{
		Pre: func(c *Cursor) bool {
			switch n := c.Node().(type) {
			case Text:
				sb.WriteString(string(n))
			case *Element:
				if n.Tag == Br {
					sb.WriteByte('\n')
				}
			}
			return true
		},
		Post: func(c *Cursor) bool {
			if e, ok := c.Node().(*Element); ok && e.Tag == P {
				sb.WriteByte('\n')
			}
			return true
		},
	})
	return strings.TrimRight(sb.String(), "\n")
}
