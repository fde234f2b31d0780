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
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gosimple/unidecode"
)

// FullName returns the name as written in the post,
// e.g. "Mischiefbots".
func (name RobotName) FullName() string {
	sb := new(strings.Builder)
	sb.Grow(len(name.Prefix) + len(name.Suffix) + len(name.Plural))
	sb.WriteString(name.Prefix)
	sb.WriteString(name.Suffix)
	sb.WriteString(name.Plural)
	return sb.String()
}

// Ident returns the ASCII identifier for the name:
// the prefix transliterated to ASCII, lowercased,
// and stripped of anything that isn't a letter or digit.
// Unlike [NewIdent], Ident does not limit the length of the result,
// and the result may be empty.
func (name RobotName) Ident() string {
	return asciiIdent(name.Prefix)
}

func asciiIdent(s string) string {
	s = unidecode.Unidecode(s)
	sb := new(strings.Builder)
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || '0' <= c && c <= '9':
			sb.WriteByte(c)
		case 'A' <= c && c <= 'Z':
			sb.WriteByte(c - 'A' + 'a')
		}
	}
	return sb.String()
}

// Key returns the storage key for the robot.
func (r Robot) Key() Key {
	return Key{
		Number: r.Number,
		Name:   r.Name.Ident(),
	}
}

// Ident returns the compact identifier for the robot in the given season.
// It returns an error wrapping [ErrInvalidIdent]
// if the robot's number does not fit in 16 bits
// or its name prefix has no letters or numbers.
func (r Robot) Ident(season uint8) (Ident, error) {
	if r.Number < math.MinInt16 || r.Number > math.MaxInt16 {
		return Ident{}, fmt.Errorf("robot %d: number out of range: %w", r.Number, ErrInvalidIdent)
	}
	id, err := NewIdent(season, int16(r.Number), r.Name.Prefix)
	if err != nil {
		return Ident{}, fmt.Errorf("robot %d: %w", r.Number, err)
	}
	return id, nil
}

// SearchTerms expands a user's search query into terms
// to match against robot identifiers.
// Each word is converted the same way as [RobotName.Ident];
// words with nothing left after conversion are dropped.
// Words ending in "bot" or "bots" are preceded by the same word
// without the suffix, so that "teabot" also finds "tea".
func SearchTerms(query string) []string {
	var terms []string
	for _, word := range strings.Fields(query) {
		word = asciiIdent(word)
		if word == "" {
			continue
		}
		trimmed, ok := strings.CutSuffix(word, "bot")
		if !ok {
			trimmed, ok = strings.CutSuffix(word, "bots")
		}
		if ok && trimmed != "" {
			terms = append(terms, trimmed)
		}
		terms = append(terms, word)
	}
	return terms
}

// SearchNumbers returns the search terms that are robot numbers.
func SearchNumbers(terms []string) []int32 {
	var numbers []int32
	for _, term := range terms {
		n, err := strconv.ParseInt(term, 10, 32)
		if err == nil {
			numbers = append(numbers, int32(n))
		}
	}
	return numbers
}
