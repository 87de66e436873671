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

	"trpc.group/trpc-go/trpc-feature-eval/model"
)

// predictionField names the structured response field for batch position i.
func predictionField(i int) string {
	return fmt.Sprintf("example_%d", i)
}

// responseSchema builds the JSON schema constraining a batched judge
// response: an object with one binary field per batch position, numbered
// identically to the rendered prompt examples.
func responseSchema(n int) *model.JSONSchema {
	properties := make(map[string]any, n)
	required := make([]string, 0, n)
	for i := 0; i < n; i++ {
		field := predictionField(i)
		properties[field] = map[string]any{
			"type": "integer",
			"enum": []int{0, 1},
		}
		required = append(required, field)
	}
	return &model.JSONSchema{
		Name:        "predictions",
		Description: "Binary activation verdict per example.",
		Schema: map[string]any{
			"type":                 "object",
			"properties":           properties,
			"required":             required,
			"additionalProperties": false,
		},
		Strict: true,
	}
}
