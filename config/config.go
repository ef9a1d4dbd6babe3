/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"dirpx.dev/mbx/apis"
)

const (
	// DefaultDomain represents the default for Domain.
	DefaultDomain = "dirpx.dev"
	// DefaultFieldTag represents the default for FieldTag.
	DefaultFieldTag = "mbx"
	// DefaultDescriptionTag represents the default for DescriptionTag.
	DefaultDescriptionTag = "description"
	// DefaultMaxEmbedDepth represents the default for MaxEmbedDepth.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxEmbedDepth = 8
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxEmbedDepth is valid.
	if cfg.MaxEmbedDepth < 0 {
		cfg.MaxEmbedDepth = DefaultMaxEmbedDepth
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Domain:         DefaultDomain,
		FieldTag:       DefaultFieldTag,
		DescriptionTag: DefaultDescriptionTag,
		MaxEmbedDepth:  DefaultMaxEmbedDepth,
	}
}

// Normalize fills empty knobs of cfg with defaults.
func Normalize(cfg apis.Config) apis.Config {
	if cfg.Domain == "" {
		cfg.Domain = DefaultDomain
	}
	if cfg.FieldTag == "" {
		cfg.FieldTag = DefaultFieldTag
	}
	if cfg.DescriptionTag == "" {
		cfg.DescriptionTag = DefaultDescriptionTag
	}
	if cfg.MaxEmbedDepth <= 0 {
		cfg.MaxEmbedDepth = DefaultMaxEmbedDepth
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithDomain sets the Domain option.
// An empty domain resets to the default.
func WithDomain(domain string) Option {
	return func(c *apis.Config) {
		if domain == "" {
			c.Domain = DefaultDomain
			return
		}
		c.Domain = domain
	}
}

// WithFieldTag sets the FieldTag option.
func WithFieldTag(tag string) Option {
	return func(c *apis.Config) {
		if tag == "" {
			c.FieldTag = DefaultFieldTag
			return
		}
		c.FieldTag = tag
	}
}

// WithDescriptionTag sets the DescriptionTag option.
func WithDescriptionTag(tag string) Option {
	return func(c *apis.Config) {
		if tag == "" {
			c.DescriptionTag = DefaultDescriptionTag
			return
		}
		c.DescriptionTag = tag
	}
}

// WithMaxEmbedDepth sets the MaxEmbedDepth option.
// A negative value resets to the default.
func WithMaxEmbedDepth(max int) Option {
	return func(c *apis.Config) {
		if max < 0 {
			c.MaxEmbedDepth = DefaultMaxEmbedDepth
			return
		}
		c.MaxEmbedDepth = max
	}
}
