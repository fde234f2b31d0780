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

package smolrobots

import (
	"cmp"
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// identNameSize is the capacity of an [Ident] name in bytes.
const identNameSize = 16

// ErrInvalidIdent is returned by [NewIdent]
// when a name does not normalize to a usable identifier.
var ErrInvalidIdent = errors.New("invalid robot id")

// An Ident is a compact, canonical identifier for a robot:
// a season, a number within the season, and a normalized name
// of at most 16 bytes.
//
// Idents must be created with [NewIdent].
// Use [Ident.Equal] and [Ident.Compare] rather than the == operator.
type Ident struct {
	season  uint8
	num     int16
	nameLen uint8 // number of valid UTF-8 bytes at the start of name
	name    [identNameSize]byte
}

// NewIdent returns the identifier of the robot with the given name prefix.
// The prefix is normalized to NFC, lowercased,
// and stripped of anything that isn't a letter or number.
// Names that are longer than 16 bytes after normalization
// are truncated at a character boundary.
// NewIdent returns [ErrInvalidIdent] if nothing remains of the prefix.
func NewIdent(season uint8, num int16, prefix string) (Ident, error) {
	name, n := normalizeIdentName(prefix)
	if n == 0 || n > len(name) {
		return Ident{}, ErrInvalidIdent
	}
	return Ident{
		season:  season,
		num:     num,
		nameLen: uint8(n),
		name:    name,
	}, nil
}

// normalizeIdentName writes the normalized form of s into a fixed-size buffer.
// It returns the buffer and the number of bytes written.
// It only ever writes whole UTF-8 encoded characters,
// so buf[:n] is always valid UTF-8.
func normalizeIdentName(s string) (buf [identNameSize]byte, n int) {
	var iter norm.Iter
	iter.InitString(norm.NFC, s)
	for !iter.Done() {
		for _, c := range string(iter.Next()) {
			c = unicode.ToLower(c)
			if !unicode.IsLetter(c) && !unicode.IsNumber(c) {
				continue
			}
			if utf8.RuneLen(c) > len(buf)-n {
				return buf, n
			}
			n += utf8.EncodeRune(buf[n:], c)
		}
	}
	return buf, n
}

// Season returns the identifier's season.
func (id Ident) Season() uint8 {
	return id.season
}

// Number returns the robot's number within its season.
func (id Ident) Number() int16 {
	return id.num
}

// Name returns the robot's normalized name.
func (id Ident) Name() string {
	return string(id.name[:id.nameLen])
}

// Key returns the storage key for the identifier.
// The season is not part of the key.
func (id Ident) Key() Key {
	return Key{
		Number: int32(id.num),
		Name:   id.Name(),
	}
}

// String formats the identifier as "{number}/{name}".
func (id Ident) String() string {
	sb := new(strings.Builder)
	sb.WriteString(strconv.Itoa(int(id.num)))
	sb.WriteByte('/')
	sb.Write(id.name[:id.nameLen])
	return sb.String()
}

// Equal reports whether id and other identify the same robot.
func (id Ident) Equal(other Ident) bool {
	return id.Compare(other) == 0
}

// Compare orders identifiers by season, then number, then name.
// It returns -1 if id sorts before other,
// +1 if id sorts after other,
// and 0 if they are equal.
func (id Ident) Compare(other Ident) int {
	if c := cmp.Compare(id.season, other.season); c != 0 {
		return c
	}
	if c := cmp.Compare(id.num, other.num); c != 0 {
		return c
	}
	return strings.Compare(id.Name(), other.Name())
}
