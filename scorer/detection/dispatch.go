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
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-feature-eval/log"
	"trpc.group/trpc-go/trpc-feature-eval/model"
)

type batchQueryParam struct {
	idx         int
	ctx         context.Context
	batch       []*Sample
	explanation string
	scorer      *Scorer
	errs        []error
	wg          *sync.WaitGroup
}

func (p *batchQueryParam) reset() {
	p.idx = 0
	p.ctx = nil
	p.batch = nil
	p.explanation = ""
	p.scorer = nil
	p.errs = nil
	p.wg = nil
}

var batchQueryParamPool = &sync.Pool{
	New: func() any { return new(batchQueryParam) },
}

func createBatchQueryPool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*batchQueryParam)
		if !ok {
			panic("batch query pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			batchQueryParamPool.Put(param)
		}()
		param.errs[param.idx] = param.scorer.query(param.ctx, param.batch, param.explanation)
	})
	if err != nil {
		return nil, fmt.Errorf("create batch query pool: %w", err)
	}
	return pool, nil
}

// processBatches fires one independent judge request per batch and waits for
// all of them. Requests may complete in any order; each one mutates only its
// own batch's samples, so flattening the batches afterwards reproduces
// assembly order. If any batch fails the whole scoring call fails.
func (d *Scorer) processBatches(ctx context.Context, batches [][]*Sample, explanation string) error {
	errs := make([]error, len(batches))
	var wg sync.WaitGroup
	for idx, batch := range batches {
		wg.Add(1)
		param := batchQueryParamPool.Get().(*batchQueryParam)
		param.idx = idx
		param.ctx = ctx
		param.batch = batch
		param.explanation = explanation
		param.scorer = d
		param.errs = errs
		param.wg = &wg
		if err := d.queryPool.Invoke(param); err != nil {
			wg.Done()
			errs[idx] = fmt.Errorf("submit judge request for batch %d: %w", idx, err)
			param.reset()
			batchQueryParamPool.Put(param)
		}
	}
	wg.Wait()
	return errors.Join(errs...)
}

// query sends one judge request for a batch and fills in every sample's
// prediction from the response. Batches with more than one sample use
// schema-constrained structured output; single-sample batches use the plain
// terminal-verdict format.
func (d *Scorer) query(ctx context.Context, batch []*Sample, explanation string) error {
	batched := len(batch) > 1
	prompt := buildPrompt(batch, explanation, batched)
	if d.echo {
		log.Debugf("detection judge prompt:\n%s", prompt)
	}

	maxTokens := d.maxTokens
	temperature := d.temperature
	req := &model.Request{
		Messages: []model.Message{model.NewUserMessage(prompt)},
		GenerationConfig: model.GenerationConfig{
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		},
	}
	if batched {
		req.StructuredOutput = &model.StructuredOutput{
			Type:       model.StructuredOutputJSONSchema,
			JSONSchema: responseSchema(len(batch)),
		}
	}

	rsp, err := d.generate(ctx, req)
	if err != nil {
		return fmt.Errorf("judge request: %w", err)
	}
	content := rsp.Choices[0].Message.Content

	if batched {
		predictions, err := parseBatchedResponse(content, len(batch))
		if err != nil {
			return err
		}
		for i, sample := range batch {
			if err := sample.setPredicted(predictions[i]); err != nil {
				return err
			}
		}
		return nil
	}

	prediction, err := parseSingleResponse(content)
	if err != nil {
		return err
	}
	return batch[0].setPredicted(prediction)
}

// generate calls the judge model and returns the final response.
func (d *Scorer) generate(ctx context.Context, req *model.Request) (*model.Response, error) {
	responses, err := d.model.GenerateContent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}
	for response := range responses {
		if response.Error != nil {
			return nil, fmt.Errorf("response error: %v", response.Error)
		}
		if response.IsFinalResponse() {
			if len(response.Choices) == 0 {
				return nil, errors.New("final response has no choices")
			}
			return response, nil
		}
	}
	return nil, errors.New("no final response")
}

// parseBatchedResponse parses a structured judge response into one verdict
// per batch position. A missing field or non-numeric indicator is a
// malformed response, never a default verdict.
func parseBatchedResponse(content string, n int) ([]bool, error) {
	var fields map[string]json.Number
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("malformed judge response: %w", err)
	}
	predictions := make([]bool, n)
	for i := 0; i < n; i++ {
		field := predictionField(i)
		raw, ok := fields[field]
		if !ok {
			return nil, fmt.Errorf("judge response missing field %s", field)
		}
		indicator, err := raw.Int64()
		if err != nil {
			return nil, fmt.Errorf("judge response field %s is not a binary indicator: %w", field, err)
		}
		predictions[i] = indicator == 1
	}
	return predictions, nil
}

// parseSingleResponse extracts the terminal verdict character of a free-form
// judge response. The last non-whitespace character is the verdict; anything
// other than '0' or '1' there is a malformed response.
func parseSingleResponse(content string) (bool, error) {
	trimmed := strings.TrimRightFunc(content, unicode.IsSpace)
	if trimmed == "" {
		return false, errors.New("empty judge response")
	}
	switch trimmed[len(trimmed)-1] {
	case '1':
		return true, nil
	case '0':
		return false, nil
	}
	return false, fmt.Errorf("judge response does not end in a binary verdict: %q", trimmed)
}
