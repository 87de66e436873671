//
// Tencent is pleased to support the open source community by making trpc-feature-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-feature-eval is licensed under the Apache License Version 2.0.
//
//

// Package model provides the judge model abstraction used by the scorers.
package model

import "context"

// Role represents the role of a message author.
type Role string

// Role constants for message authors.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message represents a single message in a conversation.
type Message struct {
	// Role is the role of the message author.
	Role Role `json:"role"`
	// Content is the message content.
	Content string `json:"content,omitempty"`
	// ReasoningContent is the reasoning content returned by reasoning models.
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{
		Role:    RoleSystem,
		Content: content,
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{
		Role:    RoleUser,
		Content: content,
	}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{
		Role:    RoleAssistant,
		Content: content,
	}
}

// GenerationConfig contains configuration for text generation.
type GenerationConfig struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 to 2.0).
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0).
	TopP *float64 `json:"top_p,omitempty"`

	// Stream indicates whether to stream the response.
	Stream bool `json:"stream"`

	// Stop sequences where the API will stop generating further tokens.
	Stop []string `json:"stop,omitempty"`
}

// StructuredOutputType identifies the structured output mechanism requested.
type StructuredOutputType string

// StructuredOutputJSONSchema requests native JSON-schema constrained output.
const StructuredOutputJSONSchema StructuredOutputType = "json_schema"

// StructuredOutput asks the backend to constrain generation to a schema.
type StructuredOutput struct {
	// Type selects the structured output mechanism.
	Type StructuredOutputType `json:"type"`
	// JSONSchema is the schema definition when Type is StructuredOutputJSONSchema.
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

// JSONSchema describes a named JSON schema for constrained generation.
type JSONSchema struct {
	// Name is the schema name reported to the backend.
	Name string `json:"name"`
	// Description describes the response the schema constrains.
	Description string `json:"description,omitempty"`
	// Schema is the JSON schema definition.
	Schema map[string]any `json:"schema"`
	// Strict enables strict schema adherence when supported.
	Strict bool `json:"strict,omitempty"`
}

// Request is the request to the model.
type Request struct {
	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// GenerationConfig contains the generation parameters.
	GenerationConfig `json:",inline"`

	// StructuredOutput constrains the response shape when set.
	StructuredOutput *StructuredOutput `json:"structured_output,omitempty"`
}

// Model is the interface for all language models.
type Model interface {
	GenerateContent(ctx context.Context, request *Request) (<-chan *Response, error)
}

// Info describes a model implementation.
type Info struct {
	// Name is the model name.
	Name string `json:"name"`
}
