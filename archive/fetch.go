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

package archive

import (
	"context"

	"zombiezen.com/go/smolrobots/mastodon"
)

// PageSize is the number of statuses requested per page.
// It is the largest page size the Mastodon API permits.
const PageSize = 40

// Fetcher pages backwards through an account's statuses.
type Fetcher struct {
	Client    *mastodon.Client
	AccountID string

	// MaxID is the status to start before.
	// If empty, fetching starts from the newest status.
	MaxID string
	// SinceID is the status to stop at.
	// If empty, fetching continues until the oldest status.
	SinceID string
	// Pages is the maximum number of pages to fetch.
	// If zero, all pages are fetched.
	Pages int
}

// Fetch calls f with each page of statuses, newest first,
// until the statuses run out, the page limit is reached,
// or f returns an error.
func (fetcher *Fetcher) Fetch(ctx context.Context, f func(page []*mastodon.Status) error) error {
	maxID := fetcher.MaxID
	for n := 0; fetcher.Pages <= 0 || n < fetcher.Pages; n++ {
		page, err := fetcher.Client.AccountStatuses(ctx, fetcher.AccountID, &mastodon.StatusesOptions{
			Limit:   PageSize,
			MaxID:   maxID,
			SinceID: fetcher.SinceID,
		})
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		if err := f(page); err != nil {
			return err
		}
		maxID = page[len(page)-1].ID
	}
	return nil
}
