//
// Tencent is pleased to support the open source community by making trpc-feature-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-feature-eval is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI-compatible judge model implementation.
package openai

import (
	openaiopt "github.com/openai/openai-go/option"
)

const (
	// defaultChannelBufferSize is the default channel buffer size.
	defaultChannelBufferSize = 256
)

// options contains configuration options for creating a Model.
type options struct {
	// API key for the OpenAI client.
	APIKey string
	// Base URL for the OpenAI client. It is optional for OpenAI-compatible APIs.
	BaseURL string
	// Buffer size for response channels (default: 256)
	ChannelBufferSize int
	// Options for the OpenAI client.
	OpenAIOptions []openaiopt.RequestOption
	// Extra fields to be added to the HTTP request body.
	ExtraFields map[string]any
}

var defaultOptions = options{
	ChannelBufferSize: defaultChannelBufferSize,
}

// Option is a function that configures an OpenAI model.
type Option func(*options)

// WithAPIKey sets the API key for the OpenAI client.
func WithAPIKey(key string) Option {
	return func(opts *options) {
		opts.APIKey = key
	}
}

// WithBaseURL sets the base URL for the OpenAI client.
func WithBaseURL(url string) Option {
	return func(opts *options) {
		opts.BaseURL = url
	}
}

// WithChannelBufferSize sets the channel buffer size for the OpenAI client.
func WithChannelBufferSize(size int) Option {
	return func(opts *options) {
		if size <= 0 {
			size = defaultChannelBufferSize
		}
		opts.ChannelBufferSize = size
	}
}

// WithOpenAIOptions sets extra request options for the OpenAI client.
func WithOpenAIOptions(openAIOpts ...openaiopt.RequestOption) Option {
	return func(opts *options) {
		opts.OpenAIOptions = append(opts.OpenAIOptions, openAIOpts...)
	}
}

// WithExtraFields sets extra fields to be added to the HTTP request body.
func WithExtraFields(fields map[string]any) Option {
	return func(opts *options) {
		opts.ExtraFields = fields
	}
}
