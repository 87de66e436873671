//
// Tencent is pleased to support the open source community by making trpc-feature-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-feature-eval is licensed under the Apache License Version 2.0.
//
//

// Package tiktoken provides a tiktoken-go based decoder implementation
// that is compatible with the scorer.Decoder interface.
package tiktoken

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// Decoder turns token ID sequences back into text using a tokenizer.Codec.
type Decoder struct {
	encoding tokenizer.Codec
}

// New creates a tiktoken-based decoder.
//
// Parameters:
//   - modelName: OpenAI model name (e.g., "gpt-4o"). The tokenizer is chosen with tokenizer.ForModel.
//     If the model is not supported, falls back to cl100k_base.
//
// Returns:
// - *Decoder on success; error if codec initialization fails.
func New(modelName string) (*Decoder, error) {
	enc, err := tokenizer.ForModel(tokenizer.Model(modelName))
	if err != nil {
		// Fallback to cl100k_base for broad compatibility.
		enc, err = tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			return nil, fmt.Errorf("failed to get fallback tokenizer: %w", err)
		}
	}
	return &Decoder{encoding: enc}, nil
}

// Decode returns the text for the given token IDs.
func (d *Decoder) Decode(tokens []uint) (string, error) {
	text, err := d.encoding.Decode(tokens)
	if err != nil {
		return "", fmt.Errorf("decode tokens failed: %w", err)
	}
	return text, nil
}
