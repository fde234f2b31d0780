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

// Package format provides a function to write a parsed robot post
// in a canonical form that parses to the same robots.
package format

import (
	"io"
	"strconv"

	"zombiezen.com/go/smolrobots"
)

// Group writes the given group as a robot post to the given writer.
// The robots' numbers are written as a range
// from the first robot's number to the last robot's number.
func Group(w io.Writer, g smolrobots.ParsedGroup) error {
	ww := &errWriter{w: w}
	if g.ContentWarning != "" {
		ww.WriteString("[CW: ")
		ww.WriteString(g.ContentWarning)
		ww.WriteString("] ")
	}
	if len(g.Robots) > 0 {
		writeNumbers(ww, g.Robots[0].Number, g.Robots[len(g.Robots)-1].Number)
		ww.WriteString(" ")
	}
	for i, r := range g.Robots {
		switch {
		case i == 0:
		case i == len(g.Robots)-1:
			ww.WriteString(" and ")
		default:
			ww.WriteString(", ")
		}
		ww.WriteString(r.Name.FullName())
	}
	ww.WriteString(".")
	if g.Body != "" {
		ww.WriteString(" ")
		ww.WriteString(g.Body)
	}
	return ww.err
}

func writeNumbers(w *errWriter, lo, hi int32) {
	first, second := lo, hi
	if lo < 0 && hi > 0 {
		// A positive number after a negative one with a larger magnitude
		// would be read as an abbreviation.
		first, second = hi, lo
	}
	var buf []byte
	buf = strconv.AppendInt(buf, int64(first), 10)
	if hi != lo {
		buf = append(buf, ", "...)
		buf = strconv.AppendInt(buf, int64(second), 10)
	}
	buf = append(buf, ')')
	w.Write(buf)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = w.w.Write(p)
	return n, w.err
}

func (w *errWriter) WriteString(s string) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = io.WriteString(w.w, s)
	return n, w.err
}
