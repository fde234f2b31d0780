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
	"io"

	"go4.org/bytereplacer"
)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	"\n", "&nbsp;",
	`"`, "&quot;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
)

// EscapeString escapes the characters in s that are special in HTML.
// Newlines are replaced with non-breaking spaces.
func EscapeString(s string) string {
	return string(htmlEscaper.Replace([]byte(s)))
}

func appendEscaped(dst []byte, s string) []byte {
	return append(dst, htmlEscaper.Replace([]byte(s))...)
}

// Render writes the document to w as HTML.
func (doc *Doc) Render(w io.Writer) error {
	if _, err := w.Write(doc.AppendHTML(nil)); err != nil {
		return fmt.Errorf("render post html: %w", err)
	}
	return nil
}

// AppendHTML appends the rendered HTML of the document to dst
// and returns the resulting byte slice.
func (doc *Doc) AppendHTML(dst []byte) []byte {
	for _, n := range doc.Roots {
		dst = n.AppendHTML(dst)
	}
	return dst
}

// String returns the rendered HTML of the document.
func (doc *Doc) String() string {
	return string(doc.AppendHTML(nil))
}

// AppendHTML appends the escaped text to dst.
func (text Text) AppendHTML(dst []byte) []byte {
	return appendEscaped(dst, string(text))
}

// AppendHTML appends the rendered element to dst.
// Elements without children are rendered without an end tag.
func (e *Element) AppendHTML(dst []byte) []byte {
	dst = append(dst, '<')
	dst = append(dst, e.Tag.String()...)
	for _, attr := range e.Attrs {
		dst = append(dst, ' ')
		dst = append(dst, attr.Key.String()...)
		dst = append(dst, "='"...)
		dst = appendEscaped(dst, attr.Val)
		dst = append(dst, '\'')
	}
	dst = append(dst, '>')
	if len(e.Children) == 0 {
		return dst
	}
	for _, c := range e.Children {
		dst = c.AppendHTML(dst)
	}
	dst = append(dst, "</"...)
	dst = append(dst, e.Tag.String()...)
	dst = append(dst, '>')
	return dst
}

// String returns the rendered HTML of the element.
func (e *Element) String() string {
	return string(e.AppendHTML(nil))
}
