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
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultMaxDepth    = 16
	DefaultConcurrency = 4
)

// Config is the configuration for archiving an account.
type Config struct {
	// Domain is the Mastodon server's host name, e.g. "mastodon.social".
	Domain string `yaml:"domain"`
	// Username is the account to archive.
	Username string `yaml:"username"`
	// MaxDepth is the maximum nesting of post HTML to keep.
	MaxDepth int `yaml:"max_depth"`
	// Concurrency is the number of statuses to process at once.
	Concurrency int `yaml:"concurrency"`

	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig is the configuration for the archive's database.
type DatabaseConfig struct {
	// URI is a PostgreSQL connection string.
	URI string `yaml:"uri"`
}

// LoadConfig reads a YAML configuration file.
// Missing optional values are filled in with defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses a YAML configuration.
// Missing optional values are filled in with defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{
		MaxDepth:    DefaultMaxDepth,
		Concurrency: DefaultConcurrency,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	var errs []error
	if cfg.Domain == "" {
		errs = append(errs, errors.New("domain is required"))
	}
	if cfg.Username == "" {
		errs = append(errs, errors.New("username is required"))
	}
	if cfg.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_depth must be positive (got %d)", cfg.MaxDepth))
	}
	if cfg.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive (got %d)", cfg.Concurrency))
	}
	return errors.Join(errs...)
}

// APIURL returns the root of the server's REST API.
func (cfg *Config) APIURL() string {
	return "https://" + cfg.Domain + "/api/v1"
}
