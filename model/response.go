//
// Tencent is pleased to support the open source community by making trpc-feature-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-feature-eval is licensed under the Apache License Version 2.0.
//
//

package model

import "time"

// Error type constants for ResponseError.Type field.
const (
	ErrorTypeAPIError    = "api_error"
	ErrorTypeStreamError = "stream_error"
)

// Object type constants for Response.Object field.
const (
	// ObjectTypeChatCompletion is the object type for chat completion responses.
	ObjectTypeChatCompletion = "chat.completion"
	// ObjectTypeError is the object type for error responses.
	ObjectTypeError = "error"
)

// Choice represents a single completion choice.
type Choice struct {
	// Index is the index of the choice.
	Index int `json:"index"`

	// Message is the message content.
	Message Message `json:"message,omitempty"`

	// FinishReason is the reason the choice was finished.
	// "stop", "length", "content_filter", etc.
	FinishReason *string `json:"finish_reason,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the total number of tokens in the response.
	TotalTokens int `json:"total_tokens"`
}

// Response is the response from the model.
//
// The Error field represents API-level errors that occur after successful
// communication with the model service. This is different from
// function-level errors returned by GenerateContent(), which indicate
// system-level failures that prevent communication entirely.
type Response struct {
	// ID is the unique identifier for this response.
	ID string `json:"id"`

	// Object describes the type of object returned (e.g., "chat.completion").
	Object string `json:"object"`

	// Created is the Unix timestamp when the response was created.
	Created int64 `json:"created"`

	// Model is the model used to generate the response.
	Model string `json:"model"`

	// Choices is the list of completion choices.
	Choices []Choice `json:"choices"`

	// Usage is the token usage information.
	Usage *Usage `json:"usage,omitempty"`

	// Error is the API-level error, if any.
	Error *ResponseError `json:"error,omitempty"`

	// Timestamp is the local time the response was assembled.
	Timestamp time.Time `json:"timestamp"`

	// Done indicates whether the response is complete.
	Done bool `json:"done"`

	// IsPartial indicates if this is a partial response.
	IsPartial bool `json:"is_partial"`
}

// IsFinalResponse checks if the Response is a final response.
func (rsp *Response) IsFinalResponse() bool {
	if rsp == nil {
		return true
	}
	if rsp.IsPartial {
		return false
	}
	// Consider response final if it's marked as done and has content or error.
	return rsp.Done && (len(rsp.Choices) > 0 || rsp.Error != nil)
}

// ResponseError represents an error response from the API.
type ResponseError struct {
	// Message is the error message.
	Message string `json:"message"`

	// Type is the type of error.
	Type string `json:"type"`

	// Param is the parameter that caused the error.
	Param *string `json:"param,omitempty"`

	// Code is the error code.
	Code *string `json:"code,omitempty"`
}
