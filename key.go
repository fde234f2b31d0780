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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingSlash is returned by [ParseKey]
// when its argument has no "/" separator.
var ErrMissingSlash = errors.New("missing slash separator")

// Key is the textual form of a robot identifier:
// a robot number and a normalized name.
// Keys are used as URL path segments and database lookup keys.
type Key struct {
	Number int32
	Name   string
}

// ParseKey parses a key in the form "{number}/{name}".
// The name is everything after the first slash, verbatim.
//
// If s does not contain a slash, the error wraps [ErrMissingSlash].
// If the number is not a valid 32-bit integer,
// the error wraps a [*strconv.NumError].
func ParseKey(s string) (Key, error) {
	number, name, ok := strings.Cut(s, "/")
	if !ok {
		return Key{}, fmt.Errorf("parse robot key %q: %w", s, ErrMissingSlash)
	}
	n, err := strconv.ParseInt(number, 10, 32)
	if err != nil {
		return Key{}, fmt.Errorf("parse robot key %q: invalid number: %w", s, err)
	}
	return Key{Number: int32(n), Name: name}, nil
}

// String formats the key as "{number}/{name}".
func (k Key) String() string {
	return strconv.FormatInt(int64(k.Number), 10) + "/" + k.Name
}

// MarshalText formats the key as "{number}/{name}".
func (k Key) MarshalText() ([]byte, error) {
	return k.AppendText(nil)
}

// AppendText appends the "{number}/{name}" form of the key to dst.
func (k Key) AppendText(dst []byte) ([]byte, error) {
	dst = strconv.AppendInt(dst, int64(k.Number), 10)
	dst = append(dst, '/')
	dst = append(dst, k.Name...)
	return dst, nil
}

// UnmarshalText parses a key using [ParseKey].
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
