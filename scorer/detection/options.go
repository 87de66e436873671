//
// Tencent is pleased to support the open source community by making trpc-feature-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-feature-eval is licensed under the Apache License Version 2.0.
//
//

// Package detection implements the explanation detection scorer: it asks a
// judge model to predict, for held-out text samples, whether the feature
// described by an explanation would activate.
package detection

const (
	// defaultTemperature keeps the judge deterministic.
	defaultTemperature = 0.0
	// defaultMaxTokens caps the judge response length.
	defaultMaxTokens = 300
	// defaultBatchSize is the number of samples per judge request.
	defaultBatchSize = 10
	// defaultParallelism bounds concurrent judge requests; typical scoring
	// calls have fewer batches than this, so all batches run concurrently.
	defaultParallelism = 16
)

// options contains configuration options for creating a Scorer.
type options struct {
	// Temperature is the sampling temperature for the judge.
	Temperature float64
	// MaxTokens is the maximum number of tokens the judge may generate.
	MaxTokens int
	// BatchSize is the number of samples per judge request.
	BatchSize int
	// Parallelism is the maximum number of judge requests in flight.
	Parallelism int
	// Echo logs rendered prompts at debug level. It does not affect scoring.
	Echo bool
}

var defaultOptions = options{
	Temperature: defaultTemperature,
	MaxTokens:   defaultMaxTokens,
	BatchSize:   defaultBatchSize,
	Parallelism: defaultParallelism,
}

// Option is a function that configures a Scorer.
type Option func(*options)

// WithTemperature sets the sampling temperature for the judge.
func WithTemperature(temperature float64) Option {
	return func(opts *options) {
		opts.Temperature = temperature
	}
}

// WithMaxTokens sets the maximum number of tokens the judge may generate.
func WithMaxTokens(maxTokens int) Option {
	return func(opts *options) {
		if maxTokens <= 0 {
			maxTokens = defaultMaxTokens
		}
		opts.MaxTokens = maxTokens
	}
}

// WithBatchSize sets the number of samples per judge request.
// A batch size of 1 degrades every request to single-sample mode.
func WithBatchSize(batchSize int) Option {
	return func(opts *options) {
		if batchSize <= 0 {
			batchSize = defaultBatchSize
		}
		opts.BatchSize = batchSize
	}
}

// WithParallelism sets the maximum number of judge requests in flight.
func WithParallelism(parallelism int) Option {
	return func(opts *options) {
		if parallelism <= 0 {
			parallelism = defaultParallelism
		}
		opts.Parallelism = parallelism
	}
}

// WithEcho enables debug logging of rendered prompts.
func WithEcho(echo bool) Option {
	return func(opts *options) {
		opts.Echo = echo
	}
}
