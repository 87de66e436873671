//
// Tencent is pleased to support the open source community by making trpc-feature-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-feature-eval is licensed under the Apache License Version 2.0.
//
//

package detection

import (
	"fmt"

	"trpc.group/trpc-go/trpc-feature-eval/scorer"
)

// randomQuantile labels non-activating samples.
const randomQuantile = -1

// Sample is the unit of evaluation: a decoded snippet, its quantile label,
// the ground-truth verdict derived from the label, and the judge's
// prediction once the containing batch has been scored.
//
// Quantile and ground truth are fixed at construction; only the prediction
// mutates, exactly once, via setPredicted.
type Sample struct {
	text        string
	quantile    int
	groundTruth bool
	predicted   *bool
}

// setPredicted records the judge verdict. Writing twice is a bug in the
// dispatcher and fails loudly rather than silently overwriting.
func (s *Sample) setPredicted(predicted bool) error {
	if s.predicted != nil {
		return fmt.Errorf("prediction already set for sample %q", s.text)
	}
	s.predicted = &predicted
	return nil
}

// scored converts the sample into the plain record returned to callers.
func (s *Sample) scored() scorer.ScoredSample {
	return scorer.ScoredSample{
		Text:        s.text,
		Quantile:    s.quantile,
		GroundTruth: s.groundTruth,
		Predicted:   s.predicted,
	}
}

// prepareSamples decodes raw examples into samples with a fixed quantile
// label and ground-truth verdict.
func (d *Scorer) prepareSamples(examples []scorer.Example, quantile int, groundTruth bool) ([]*Sample, error) {
	samples := make([]*Sample, 0, len(examples))
	for _, example := range examples {
		text, err := d.decoder.Decode(example.Tokens)
		if err != nil {
			return nil, fmt.Errorf("decode example: %w", err)
		}
		samples = append(samples, &Sample{
			text:        text,
			quantile:    quantile,
			groundTruth: groundTruth,
		})
	}
	return samples, nil
}

// assemble converts the input pools into an ordered list of batches covering
// every sample exactly once. Non-activating samples come first with quantile
// -1, then each activating group i with quantile i+1, all chunked into
// contiguous batches of the configured size; the final batch may be smaller.
func (d *Scorer) assemble(input *scorer.Input) ([][]*Sample, error) {
	samples, err := d.prepareSamples(input.RandomExamples, randomQuantile, false)
	if err != nil {
		return nil, err
	}
	for i, examples := range input.TestExamples {
		group, err := d.prepareSamples(examples, i+1, true)
		if err != nil {
			return nil, err
		}
		samples = append(samples, group...)
	}

	batches := make([][]*Sample, 0, (len(samples)+d.batchSize-1)/d.batchSize)
	for start := 0; start < len(samples); start += d.batchSize {
		end := min(start+d.batchSize, len(samples))
		batches = append(batches, samples[start:end])
	}
	return batches, nil
}
