//
// Tencent is pleased to support the open source community by making trpc-feature-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-feature-eval is licensed under the Apache License Version 2.0.
//
//

// Package scorer defines the contracts shared by explanation scorers.
package scorer

import "context"

// Example is a raw evaluation example: the token IDs of a text snippet.
type Example struct {
	// Tokens is the token ID sequence of the snippet.
	Tokens []uint `json:"tokens"`
}

// Decoder decodes token sequences into text.
//
// Implementations must be deterministic and total for supplied inputs.
type Decoder interface {
	Decode(tokens []uint) (string, error)
}

// Input is a scoring request for a single feature explanation.
type Input struct {
	// Explanation is the natural-language explanation under evaluation.
	Explanation string `json:"explanation"`

	// TestExamples holds the activating examples grouped by activation
	// quantile, strongest bucket first. Group i maps to quantile i+1.
	TestExamples [][]Example `json:"test_examples"`

	// RandomExamples holds non-activating examples used as negatives.
	RandomExamples []Example `json:"random_examples"`
}

// ScoredSample is a single judged sample, suitable for downstream
// precision/recall aggregation.
type ScoredSample struct {
	// Text is the decoded snippet shown to the judge.
	Text string `json:"text"`

	// Quantile is the activation quantile label; -1 marks a non-activating sample.
	Quantile int `json:"quantile"`

	// GroundTruth reports whether the sample genuinely activates the feature.
	GroundTruth bool `json:"ground_truth"`

	// Predicted is the judge's verdict. It is always set on the success path;
	// parse and backend failures surface as errors instead of nil predictions.
	Predicted *bool `json:"predicted"`
}

// Scorer evaluates a feature explanation against held-out examples.
type Scorer interface {
	// Name returns the scorer name.
	Name() string

	// Score judges every sample derived from the input and returns the
	// scored samples in assembly order.
	Score(ctx context.Context, input *Input) ([]ScoredSample, error)
}
