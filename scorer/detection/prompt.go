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
	"strings"
)

// batchedPromptTemplate asks for one verdict per rendered example index.
// Placeholders: explanation, examples.
const batchedPromptTemplate = `You are evaluating a description of what a specific feature inside a language model detects.

Feature description: %s

Below are text examples. For each example, decide whether the described feature would activate on it.

%s

Reply with a JSON object containing one field per example, named exactly as the examples are numbered ("example_0", "example_1", ...). Set a field to 1 if the feature would activate on that example and 0 if it would not. Do not add any other fields.`

// singlePromptTemplate asks for a single terminal verdict character.
// Placeholders: explanation, examples.
const singlePromptTemplate = `You are evaluating a description of what a specific feature inside a language model detects.

Feature description: %s

Below is a text example. Decide whether the described feature would activate on it.

%s

You may reason briefly, but the last character of your reply must be your answer: 1 if the feature would activate on the example, 0 if it would not.`

// buildPrompt renders a batch of samples plus the explanation into a judge
// prompt. Example indices are positions within the batch, matching the
// structured response schema for the same batch.
func buildPrompt(batch []*Sample, explanation string, batched bool) string {
	lines := make([]string, 0, len(batch))
	for i, sample := range batch {
		lines = append(lines, fmt.Sprintf("Example %d: %s", i, sample.text))
	}
	examples := strings.Join(lines, "\n")

	if batched {
		return fmt.Sprintf(batchedPromptTemplate, explanation, examples)
	}
	return fmt.Sprintf(singlePromptTemplate, explanation, examples)
}
