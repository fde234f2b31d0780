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

// Package corpus provides a sample of posts for tests.
package corpus

import (
	_ "embed"
	"encoding/json"
)

// Post is a single post's content as returned by the Mastodon API.
type Post struct {
	ID   string
	HTML string
	// Numbers is the list of robot numbers that the post introduces.
	// It is empty for posts that are not robot posts.
	Numbers []int32
}

//go:embed posts.json
var postsData []byte

// Load returns the sample posts.
func Load() ([]Post, error) {
	var posts []Post
	if err := json.Unmarshal(postsData, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
