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

// Package mastodon is a minimal client for the read-only parts
// of the [Mastodon API] needed to archive an account's posts.
//
// [Mastodon API]: https://docs.joinmastodon.org/methods/
package mastodon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Status is a [status entity].
//
// [status entity]: https://docs.joinmastodon.org/entities/Status/
type Status struct {
	ID                 string            `json:"id"`
	CreatedAt          time.Time         `json:"created_at"`
	InReplyToID        string            `json:"in_reply_to_id"`
	InReplyToAccountID string            `json:"in_reply_to_account_id"`
	URI                string            `json:"uri"`
	URL                string            `json:"url"`
	Content            string            `json:"content"`
	Account            Account           `json:"account"`
	MediaAttachments   []MediaAttachment `json:"media_attachments"`
	Tags               []Tag             `json:"tags"`
	Reblog             *Status           `json:"reblog"`
}

// Account is an [account entity].
//
// [account entity]: https://docs.joinmastodon.org/entities/Account/
type Account struct {
	ID   string `json:"id"`
	Acct string `json:"acct"`
}

// MediaAttachment is a [media attachment entity].
//
// [media attachment entity]: https://docs.joinmastodon.org/entities/MediaAttachment/
type MediaAttachment struct {
	ID          string    `json:"id"`
	Type        MediaType `json:"type"`
	URL         string    `json:"url"`
	PreviewURL  string    `json:"preview_url"`
	Description string    `json:"description"`
	Blurhash    string    `json:"blurhash"`
}

// MediaType is the type of a [MediaAttachment].
// Servers may send types that are not listed here.
type MediaType string

// Known media types.
const (
	MediaImage   MediaType = "image"
	MediaGIFV    MediaType = "gifv"
	MediaVideo   MediaType = "video"
	MediaAudio   MediaType = "audio"
	MediaUnknown MediaType = "unknown"
)

// Tag is a hashtag used in a status.
type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Client makes requests to a single Mastodon server.
type Client struct {
	// BaseURL is the API root, e.g. "https://mastodon.social/api/v1".
	BaseURL string
	// HTTPClient is the client used to make requests.
	// If nil, http.DefaultClient is used.
	HTTPClient *http.Client
}

// StatusError is returned when the server responds with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: http %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// LookupAccount returns the account with the given username or address.
func (c *Client) LookupAccount(ctx context.Context, acct string) (*Account, error) {
	q := url.Values{"acct": {acct}}
	account := new(Account)
	if err := c.get(ctx, "accounts/lookup", q, account); err != nil {
		return nil, fmt.Errorf("lookup account %s: %w", acct, err)
	}
	return account, nil
}

// StatusesOptions is the set of parameters to [Client.AccountStatuses].
type StatusesOptions struct {
	// Limit is the maximum number of statuses to return.
	// Zero means the server's default.
	Limit int
	// MaxID restricts results to statuses older than the given ID.
	MaxID string
	// SinceID restricts results to statuses newer than the given ID.
	SinceID string
}

// AccountStatuses returns a page of statuses posted by the account,
// newest first.
func (c *Client) AccountStatuses(ctx context.Context, accountID string, opts *StatusesOptions) ([]*Status, error) {
	q := make(url.Values)
	if opts != nil {
		if opts.Limit > 0 {
			q.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.MaxID != "" {
			q.Set("max_id", opts.MaxID)
		}
		if opts.SinceID != "" {
			q.Set("since_id", opts.SinceID)
		}
	}
	var statuses []*Status
	path := "accounts/" + url.PathEscape(accountID) + "/statuses"
	if err := c.get(ctx, path, q, &statuses); err != nil {
		return nil, fmt.Errorf("get statuses for account %s: %w", accountID, err)
	}
	return statuses, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	u := strings.TrimSuffix(c.BaseURL, "/") + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{
			Method:     req.Method,
			URL:        u,
			StatusCode: resp.StatusCode,
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
