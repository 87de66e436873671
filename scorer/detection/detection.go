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
	"context"
	"errors"
	"fmt"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-feature-eval/model"
	"trpc.group/trpc-go/trpc-feature-eval/scorer"
)

// Scorer judges a feature explanation against held-out examples by asking a
// judge model to predict, per sample, whether the feature would activate.
type Scorer struct {
	model       model.Model
	decoder     scorer.Decoder
	temperature float64
	maxTokens   int
	batchSize   int
	echo        bool
	queryPool   *ants.PoolWithFunc
}

var _ scorer.Scorer = (*Scorer)(nil)

// New creates a detection scorer backed by the given judge model and decoder.
func New(judgeModel model.Model, decoder scorer.Decoder, opt ...Option) (*Scorer, error) {
	if judgeModel == nil {
		return nil, errors.New("judge model must not be nil")
	}
	if decoder == nil {
		return nil, errors.New("decoder must not be nil")
	}
	opts := defaultOptions
	for _, o := range opt {
		if o != nil {
			o(&opts)
		}
	}
	pool, err := createBatchQueryPool(opts.Parallelism)
	if err != nil {
		return nil, err
	}
	return &Scorer{
		model:       judgeModel,
		decoder:     decoder,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		batchSize:   opts.BatchSize,
		echo:        opts.Echo,
		queryPool:   pool,
	}, nil
}

// Name returns the scorer name.
func (d *Scorer) Name() string {
	return "detection"
}

// Close releases the judge request pool.
func (d *Scorer) Close() {
	d.queryPool.Release()
}

// Score assembles samples from the input pools, judges every batch
// concurrently, and returns the scored samples in assembly order.
//
// Samples live only for the duration of the call; empty inputs yield an
// empty result without any judge request.
func (d *Scorer) Score(ctx context.Context, input *scorer.Input) ([]scorer.ScoredSample, error) {
	if input == nil {
		return nil, errors.New("input must not be nil")
	}
	batches, err := d.assemble(input)
	if err != nil {
		return nil, fmt.Errorf("assemble samples: %w", err)
	}
	if len(batches) == 0 {
		return []scorer.ScoredSample{}, nil
	}
	if err := d.processBatches(ctx, batches, input.Explanation); err != nil {
		return nil, err
	}

	results := make([]scorer.ScoredSample, 0, totalSamples(batches))
	for _, batch := range batches {
		for _, sample := range batch {
			results = append(results, sample.scored())
		}
	}
	return results, nil
}

func totalSamples(batches [][]*Sample) int {
	total := 0
	for _, batch := range batches {
		total += len(batch)
	}
	return total
}
