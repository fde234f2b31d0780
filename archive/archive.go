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

// Package archive converts an account's Mastodon statuses
// into archived robot posts.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
	"zombiezen.com/go/smolrobots"
	"zombiezen.com/go/smolrobots/mastodon"
	"zombiezen.com/go/smolrobots/posthtml"
)

// Entry is a single archived robot post.
type Entry struct {
	StatusID  string
	URL       string
	CreatedAt time.Time
	Group     smolrobots.ParsedGroup

	// HTML is the sanitized post content
	// with the robot numbers and names removed.
	HTML string
	// Text is the plain text of HTML.
	Text string
	// ContentHash is the XXH3 hash of HTML.
	ContentHash uint64

	Media []Media
}

// Media is an image or other attachment of an [Entry].
type Media struct {
	Type        mastodon.MediaType
	URL         string
	Description string
}

// ParseDoc parses the robot group at the start of a post.
// A robot post starts with a paragraph whose first child is text.
// ParseDoc returns a copy of the document
// with that text replaced by the group's body.
// It reports false if the document is not a robot post.
func ParseDoc(doc *posthtml.Doc) (*posthtml.Doc, smolrobots.ParsedGroup, bool) {
	if len(doc.Roots) == 0 {
		return nil, smolrobots.ParsedGroup{}, false
	}
	first, ok := doc.Roots[0].(*posthtml.Element)
	if !ok || first.Tag != posthtml.P || len(first.Children) == 0 {
		return nil, smolrobots.ParsedGroup{}, false
	}
	text, ok := first.Children[0].(posthtml.Text)
	if !ok {
		return nil, smolrobots.ParsedGroup{}, false
	}
	group, ok := smolrobots.ParseGroup(string(text))
	if !ok {
		return nil, smolrobots.ParsedGroup{}, false
	}

	newChildren := make([]posthtml.Node, 0, len(first.Children))
	newChildren = append(newChildren, posthtml.Text(group.Body))
	newChildren = append(newChildren, first.Children[1:]...)
	newRoots := make([]posthtml.Node, 0, len(doc.Roots))
	newRoots = append(newRoots, first.WithChildren(newChildren))
	newRoots = append(newRoots, doc.Roots[1:]...)
	return &posthtml.Doc{Roots: newRoots}, group, true
}

// ProcessStatus converts a status into an archive entry.
// It reports false if the status is a reblog, has no content,
// or is not a robot post.
func ProcessStatus(status *mastodon.Status, maxDepth int) (_ *Entry, ok bool, err error) {
	if status.Reblog != nil || status.Content == "" {
		return nil, false, nil
	}
	doc, err := posthtml.Parse(status.Content, maxDepth)
	if err != nil {
		return nil, false, fmt.Errorf("status %s: %w", status.ID, err)
	}
	doc, group, ok := ParseDoc(doc)
	if !ok {
		return nil, false, nil
	}
	html := doc.String()
	entry := &Entry{
		StatusID:    status.ID,
		URL:         status.URL,
		CreatedAt:   status.CreatedAt,
		Group:       group,
		HTML:        html,
		Text:        doc.Text(),
		ContentHash: xxh3.HashString(html),
	}
	for _, m := range status.MediaAttachments {
		entry.Media = append(entry.Media, Media{
			Type:        m.Type,
			URL:         m.URL,
			Description: m.Description,
		})
	}
	return entry, true, nil
}

// ProcessStatuses calls [ProcessStatus] on each status,
// running up to concurrency calls at once.
// The returned entries are in the same order as the statuses they came from.
// Statuses that are not robot posts are omitted.
func ProcessStatuses(ctx context.Context, statuses []*mastodon.Status, maxDepth int, concurrency int) ([]*Entry, error) {
	results := make([]*Entry, len(statuses))
	grp, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		grp.SetLimit(concurrency)
	}
	for i, status := range statuses {
		i, status := i, status
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, ok, err := ProcessStatus(status, maxDepth)
			if err != nil {
				return err
			}
			if ok {
				results[i] = entry
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	entries := results[:0]
	for _, entry := range results {
		if entry != nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
