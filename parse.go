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

// Package smolrobots parses small robot posts:
// short social media posts that introduce one or more numbered robots,
// like "1207) Transrightsbot. Is just here to let all its trans pals know...".
//
// The parser is a heuristic tuned for one recurring post format.
// It is not a general grammar,
// and posts that do not look like robot posts are reported as such
// rather than as errors.
package smolrobots

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// MaxGroupSize is the largest number of robots that [ParseGroup]
// will extract from a single post.
const MaxGroupSize = 5

// RobotName is the name of a robot split into its components.
// All fields are substrings of the parsed post.
type RobotName struct {
	// Prefix is the portion of the name before "bot".
	// For example:
	//
	//	"Teabot"       => "Tea"
	//	"Mischiefbots" => "Mischief"
	//	"R.O.B.O.T.S"  => "R.O."
	Prefix string

	// Suffix is the "bot" portion of the name as written, made singular.
	// For example:
	//
	//	"Teabot"       => "bot"
	//	"Mischiefbots" => "bot"
	//	"R.O.B.O.T.S"  => "B.O.T"
	Suffix string

	// Plural is the plural marker of the name
	// or the empty string if the name is singular.
	// For example:
	//
	//	"Teabot"       => ""
	//	"Mischiefbots" => "s"
	//	"R.O.B.O.T.S"  => ".S"
	Plural string
}

// Robot is the number and name of a single robot.
type Robot struct {
	Number int32
	Name   RobotName
}

// ParsedGroup is the result of parsing a robot post.
// A post normally introduces a single robot,
// but may introduce several (hence a "group").
type ParsedGroup struct {
	// Robots is the list of robots found in the post.
	// It always has between 1 and [MaxGroupSize] elements.
	Robots []Robot
	// Body is the description text that follows the robot names.
	Body string
	// ContentWarning is the content warning found before the robot numbers
	// or the empty string if the post did not have one.
	ContentWarning string
}

// Character classes matching the Unicode definitions of
// word characters (\w) and whitespace (\s).
// Go's Perl classes are ASCII-only.
const (
	wordClass  = `\p{L}\p{M}\p{Nd}\p{Pc}`
	spaceClass = `\t\n\v\f\r \x{85}\p{Z}`
)

var (
	// contentWarningRE matches a leading "[TYPE: WARNING]" or "(WARNING)".
	// The second group is the warning itself.
	contentWarningRE = regexp.MustCompile(
		`^[` + spaceClass + `]*[\[(](.+:)?[^` + wordClass + `]*([^` + spaceClass + `][^\])]+)[\])]`,
	)

	// botRE matches a full robot name: a prefix,
	// a "bot" suffix with optional decoration between letters,
	// and an optional plural marker.
	botRE = regexp.MustCompile(
		`([^` + spaceClass + `]+)` +
			`([Bb][^` + wordClass + spaceClass + `]*[Oo][^` + wordClass + spaceClass + `]*[Tt])` +
			`([^` + wordClass + spaceClass + `]*[Ss])?`,
	)

	// partialNameRE matches a shorthand name like "Salt-" in "Salt- and Pepperbots".
	partialNameRE = regexp.MustCompile(`^([` + wordClass + `]{2,})(-)?`)

	// bodyRE matches from the first word character to the end of the text.
	bodyRE = regexp.MustCompile(`(?s)[` + wordClass + `].*$`)
)

// ParseGroup attempts to parse a robot post.
// It reports false if the text does not look like a robot post,
// in which case the post should be ignored.
func ParseGroup(text string) (_ ParsedGroup, ok bool) {
	s := strings.TrimLeftFunc(text, unicode.IsSpace)
	cw, s := parseContentWarning(s)
	lo, hi, s, ok := parseNumbers(s)
	if !ok {
		return ParsedGroup{}, false
	}
	target := MaxGroupSize
	if width := int64(hi) - int64(lo) + 1; width < int64(target) {
		target = int(width)
	}
	names, partial, s, ok := parseNames(s, target)
	if !ok {
		return ParsedGroup{}, false
	}

	robots := make([]Robot, 0, len(names))
	for i, name := range names {
		if partial {
			// Only one of the names attested the plural.
			name.Plural = ""
		}
		robots = append(robots, Robot{
			Number: lo + int32(i),
			Name:   name,
		})
	}
	return ParsedGroup{
		Robots:         robots,
		Body:           bodyRE.FindString(s),
		ContentWarning: cw,
	}, true
}

// parseContentWarning consumes an optional content warning
// from the beginning of s.
// rest has its leading whitespace removed if a warning was found
// and is s otherwise.
func parseContentWarning(s string) (cw, rest string) {
	m := contentWarningRE.FindStringSubmatchIndex(s)
	if m == nil {
		return "", s
	}
	cw = strings.TrimSpace(s[m[4]:m[5]])
	rest = strings.TrimLeftFunc(s[m[1]:], unicode.IsSpace)
	return cw, rest
}

// parseNumbers parses the numbers prefix of a post,
// which is always terminated by the first closing parenthesis.
//
// There's normally just one number,
// but posts with multiple robots list several numbers
// in an inconsistent format that we infer a range from.
func parseNumbers(s string) (lo, hi int32, rest string, ok bool) {
	s, rest, found := strings.Cut(s, ")")
	if !found {
		return 0, 0, "", false
	}
	s = strings.TrimSpace(s)
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)

	var ns []int32
	var buf strings.Builder
	neg := false
	negEnabled := true
	foundDigit := false
	flush := func() bool {
		if buf.Len() == 0 {
			return true
		}
		n, err := strconv.ParseInt(buf.String(), 10, 32)
		buf.Reset()
		if err != nil {
			return false
		}
		if neg {
			n = -n
		}
		ns = append(ns, int32(n))
		return true
	}

	for _, c := range s {
		if '0' <= c && c <= '9' {
			foundDigit = true
			// After the first digit, dashes separate numbers
			// instead of negating them.
			negEnabled = false
			buf.WriteRune(c)
			continue
		}
		if !flush() {
			return 0, 0, "", false
		}
		if c == '-' {
			if negEnabled {
				neg = true
			}
			continue
		}
		neg = false
		negEnabled = true
		if !foundDigit {
			// Not a robot post.
			return 0, 0, "", false
		}
	}
	if !flush() {
		return 0, 0, "", false
	}

	lo, hi, ok = numbersRange(ns)
	if !ok {
		return 0, 0, "", false
	}
	return lo, hi, rest, true
}

// numbersRange infers an inclusive range from a list of numbers
// written by a human.
// Numbers after the first that are smaller than the first
// are treated as abbreviations that share the first number's leading digits:
// "558/9" means 558 and 559.
func numbersRange(ns []int32) (lo, hi int32, ok bool) {
	if len(ns) == 0 {
		return 0, 0, false
	}
	first := int64(ns[0])
	lo, hi = ns[0], ns[0]
	for _, n32 := range ns[1:] {
		n := int64(n32)
		if n > 0 && n < abs64(first) {
			major := first
			dps := 0
			for x := n; x > 0; x /= 10 {
				major /= 10
				dps++
			}
			for ; dps > 0; dps-- {
				major *= 10
			}
			n = major + n*sign64(first)
			if n < math.MinInt32 || n > math.MaxInt32 {
				return 0, 0, false
			}
		}
		if int32(n) < lo {
			lo = int32(n)
		} else if int32(n) > hi {
			hi = int32(n)
		}
	}
	return lo, hi, true
}

// parseNames finds up to target robot names in s.
// partial reports whether shorthand names without a "bot" suffix were used
// to make up the numbers.
// rest is the text after the last full robot name.
func parseNames(s string, target int) (names []RobotName, partial bool, rest string, ok bool) {
	if target <= 0 {
		return nil, false, "", false
	}
	matches := botRE.FindAllStringSubmatchIndex(s, target)
	if len(matches) == 0 {
		return nil, false, "", false
	}
	names = make([]RobotName, 0, target)
	for _, m := range matches {
		name := RobotName{
			Prefix: s[m[2]:m[3]],
			Suffix: s[m[4]:m[5]],
		}
		if m[6] >= 0 {
			name.Plural = s[m[6]:m[7]]
		}
		names = append(names, name)
	}
	matchesStart := matches[0][0]
	matchesEnd := matches[len(matches)-1][1]

	// If the numbers prefix contained more numbers than we found names,
	// assume that shorthand is being used for some of the names.
	// For example, "558/9) Salt- and Pepperbots."
	// has a single full name "Pepperbots", so we must find "Salt-".
	partial = len(names) < target && matchesStart > 0
	if partial {
		first := names[0]
		var partialNames []RobotName
		for _, word := range strings.Fields(s[:matchesStart]) {
			if len(names)+len(partialNames) >= target {
				break
			}
			if strings.ToLower(word) == "and" {
				continue
			}
			m := partialNameRE.FindStringSubmatch(word)
			if m == nil || isASCIIDigits(m[1]) {
				continue
			}
			// Fill in the missing suffix from the first full name.
			// The choice of name is arbitrary.
			partialNames = append(partialNames, RobotName{
				Prefix: m[1],
				Suffix: first.Suffix,
				Plural: first.Plural,
			})
		}
		names = append(partialNames, names...)
	}
	return names, partial, s[matchesEnd:], true
}

func isASCIIDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !('0' <= s[i] && s[i] <= '9') {
			return false
		}
	}
	return true
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

func sign64(x int64) int64 {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}
