//
// Tencent is pleased to support the open source community by making trpc-feature-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-feature-eval is licensed under the Apache License Version 2.0.
//
//

package tiktoken

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tiktoken-go/tokenizer"
)

func TestDecoder_RoundTrip(t *testing.T) {
	dec, err := New("gpt-4o")
	if err != nil {
		t.Skip("tiktoken-go not available: ", err)
	}
	enc, err := tokenizer.ForModel(tokenizer.Model("gpt-4o"))
	require.NoError(t, err)

	ids, _, err := enc.Encode("Hello, world!")
	require.NoError(t, err)

	text, err := dec.Decode(ids)
	require.NoError(t, err)
	require.Equal(t, "Hello, world!", text)
}

func TestDecoder_ModelFallback(t *testing.T) {
	dec, err := New("unknown-model-name-xyz")
	if err != nil {
		t.Skip("tiktoken-go not available: ", err)
	}
	text, err := dec.Decode(nil)
	require.NoError(t, err)
	require.Equal(t, "", text)
}
