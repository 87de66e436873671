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
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-feature-eval/model"
	"trpc.group/trpc-go/trpc-feature-eval/scorer"
)

// fakeDecoder renders token IDs as a deterministic snippet string.
type fakeDecoder struct{}

func (fakeDecoder) Decode(tokens []uint) (string, error) {
	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		parts = append(parts, fmt.Sprintf("%d", token))
	}
	return "snippet-" + strings.Join(parts, "-"), nil
}

type failingDecoder struct{}

func (failingDecoder) Decode([]uint) (string, error) {
	return "", errors.New("decode failed")
}

// fakeModel returns canned responses and records every request it sees.
type fakeModel struct {
	mu       sync.Mutex
	requests []*model.Request
	handler  func(req *model.Request) *model.Response
	err      error
}

func (f *fakeModel) GenerateContent(_ context.Context, req *model.Request) (<-chan *model.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	rsp := textResponse("1")
	if f.handler != nil {
		rsp = f.handler(req)
	}
	ch := make(chan *model.Response, 1)
	ch <- rsp
	close(ch)
	return ch, nil
}

func (f *fakeModel) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func textResponse(content string) *model.Response {
	return &model.Response{
		Object:  model.ObjectTypeChatCompletion,
		Done:    true,
		Choices: []model.Choice{{Message: model.NewAssistantMessage(content)}},
	}
}

func errorResponse(message string) *model.Response {
	return &model.Response{
		Error: &model.ResponseError{Message: message, Type: model.ErrorTypeAPIError},
		Done:  true,
	}
}

// schemaSize reports how many fields the request's structured output expects.
func schemaSize(req *model.Request) int {
	required, ok := req.StructuredOutput.JSONSchema.Schema["required"].([]string)
	if !ok {
		return 0
	}
	return len(required)
}

// allOnesResponse answers 1 for every field of a batched request.
func allOnesResponse(req *model.Request) *model.Response {
	fields := make([]string, 0, schemaSize(req))
	for i := 0; i < schemaSize(req); i++ {
		fields = append(fields, fmt.Sprintf("%q: 1", predictionField(i)))
	}
	return textResponse("{" + strings.Join(fields, ", ") + "}")
}

func newTestScorer(t *testing.T, m *fakeModel, opt ...Option) *Scorer {
	t.Helper()
	d, err := New(m, fakeDecoder{}, opt...)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func boolPtr(v bool) *bool { return &v }

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, fakeDecoder{})
	require.Error(t, err)

	_, err = New(&fakeModel{}, nil)
	require.Error(t, err)
}

func TestScorer_Name(t *testing.T) {
	d := newTestScorer(t, &fakeModel{})
	assert.Equal(t, "detection", d.Name())
}

func TestScore_SingleSampleMode(t *testing.T) {
	m := &fakeModel{
		handler: func(req *model.Request) *model.Response {
			return textResponse("The description matches, so my answer is 1")
		},
	}
	d := newTestScorer(t, m, WithBatchSize(1))

	results, err := d.Score(context.Background(), &scorer.Input{
		Explanation:  "fires on punctuation",
		TestExamples: [][]scorer.Example{{{Tokens: []uint{7}}}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, scorer.ScoredSample{
		Text:        "snippet-7",
		Quantile:    1,
		GroundTruth: true,
		Predicted:   boolPtr(true),
	}, results[0])

	// Single-sample batches use the plain terminal-verdict format.
	require.Equal(t, 1, m.requestCount())
	assert.Nil(t, m.requests[0].StructuredOutput)
}

func TestScore_BatchedMode(t *testing.T) {
	m := &fakeModel{
		handler: func(req *model.Request) *model.Response {
			return textResponse(`{"example_0": 0, "example_1": 1, "example_2": 1}`)
		},
	}
	d := newTestScorer(t, m, WithBatchSize(3))

	results, err := d.Score(context.Background(), &scorer.Input{
		Explanation:    "fires on years",
		TestExamples:   [][]scorer.Example{{{Tokens: []uint{2}}, {Tokens: []uint{3}}}},
		RandomExamples: []scorer.Example{{Tokens: []uint{1}}},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Predictions map positionally: random sample first, then the group.
	assert.Equal(t, boolPtr(false), results[0].Predicted)
	assert.Equal(t, boolPtr(true), results[1].Predicted)
	assert.Equal(t, boolPtr(true), results[2].Predicted)
	assert.Equal(t, -1, results[0].Quantile)
	assert.False(t, results[0].GroundTruth)
	assert.True(t, results[1].GroundTruth)

	require.Equal(t, 1, m.requestCount())
	req := m.requests[0]
	require.NotNil(t, req.StructuredOutput)
	assert.Equal(t, model.StructuredOutputJSONSchema, req.StructuredOutput.Type)
	assert.Equal(t, 3, schemaSize(req))
}

func TestScore_MalformedBatchedResponse(t *testing.T) {
	m := &fakeModel{
		handler: func(req *model.Request) *model.Response {
			return textResponse(`{"example_0": 1, "example_2": 0}`)
		},
	}
	d := newTestScorer(t, m, WithBatchSize(3))

	_, err := d.Score(context.Background(), &scorer.Input{
		TestExamples: [][]scorer.Example{
			{{Tokens: []uint{1}}, {Tokens: []uint{2}}, {Tokens: []uint{3}}},
		},
	})
	require.Error(t, err)
	// A missing field is a scoring failure, never a defaulted prediction.
	assert.Contains(t, err.Error(), "example_1")
}

func TestScore_EmptyInput(t *testing.T) {
	m := &fakeModel{}
	d := newTestScorer(t, m)

	results, err := d.Score(context.Background(), &scorer.Input{Explanation: "anything"})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, m.requestCount(), "no judge request for empty input")
}

func TestScore_NilInput(t *testing.T) {
	d := newTestScorer(t, &fakeModel{})
	_, err := d.Score(context.Background(), nil)
	require.Error(t, err)
}

func TestScore_MixedModeFlattening(t *testing.T) {
	// 7 samples with batch size 3: two batched requests and a trailing
	// single-sample request. Batched requests answer 1, the single answers 0,
	// so mode selection is observable per position after flattening.
	m := &fakeModel{
		handler: func(req *model.Request) *model.Response {
			if req.StructuredOutput != nil {
				return allOnesResponse(req)
			}
			return textResponse("0")
		},
	}
	d := newTestScorer(t, m, WithBatchSize(3))

	input := &scorer.Input{
		Explanation: "fires on negation",
		TestExamples: [][]scorer.Example{
			{{Tokens: []uint{1}}, {Tokens: []uint{2}}},
			{{Tokens: []uint{3}}, {Tokens: []uint{4}}},
		},
		RandomExamples: []scorer.Example{
			{Tokens: []uint{5}}, {Tokens: []uint{6}}, {Tokens: []uint{7}},
		},
	}

	results, err := d.Score(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, results, 7)
	assert.Equal(t, 3, m.requestCount())

	// Flattened output preserves assembly order regardless of which batch a
	// sample landed in.
	wantTexts := []string{
		"snippet-5", "snippet-6", "snippet-7",
		"snippet-1", "snippet-2", "snippet-3", "snippet-4",
	}
	for i, result := range results {
		assert.Equal(t, wantTexts[i], result.Text, "result %d text", i)
		require.NotNil(t, result.Predicted, "result %d prediction", i)
	}
	for i := 0; i < 6; i++ {
		assert.True(t, *results[i].Predicted, "result %d from a batched request", i)
	}
	assert.False(t, *results[6].Predicted, "trailing single-sample result")
}

func TestScore_BackendError(t *testing.T) {
	m := &fakeModel{err: errors.New("connection refused")}
	d := newTestScorer(t, m)

	_, err := d.Score(context.Background(), &scorer.Input{
		RandomExamples: []scorer.Example{{Tokens: []uint{1}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestScore_ResponseError(t *testing.T) {
	m := &fakeModel{
		handler: func(req *model.Request) *model.Response {
			return errorResponse("rate limited")
		},
	}
	d := newTestScorer(t, m)

	_, err := d.Score(context.Background(), &scorer.Input{
		RandomExamples: []scorer.Example{{Tokens: []uint{1}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestScore_GenerationConfig(t *testing.T) {
	m := &fakeModel{
		handler: func(req *model.Request) *model.Response {
			return textResponse("1")
		},
	}
	d := newTestScorer(t, m, WithBatchSize(1), WithTemperature(0.7), WithMaxTokens(42))

	_, err := d.Score(context.Background(), &scorer.Input{
		RandomExamples: []scorer.Example{{Tokens: []uint{1}}},
	})
	require.NoError(t, err)

	require.Equal(t, 1, m.requestCount())
	req := m.requests[0]
	require.NotNil(t, req.Temperature)
	assert.Equal(t, 0.7, *req.Temperature)
	require.NotNil(t, req.MaxTokens)
	assert.Equal(t, 42, *req.MaxTokens)
}

func TestOptions_Defaults(t *testing.T) {
	d := newTestScorer(t, &fakeModel{}, WithBatchSize(-1), WithMaxTokens(0), WithParallelism(0))
	assert.Equal(t, defaultBatchSize, d.batchSize)
	assert.Equal(t, defaultMaxTokens, d.maxTokens)
	assert.Equal(t, defaultTemperature, d.temperature)
	assert.False(t, d.echo)
}
