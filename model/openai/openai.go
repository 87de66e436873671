//
// Tencent is pleased to support the open source community by making trpc-feature-eval available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-feature-eval is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/respjson"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-feature-eval/model"
)

// openAIAPIKeyName is the environment variable holding the default API key.
//
//nolint:gosec
const openAIAPIKeyName = "OPENAI_API_KEY"

// reasoningContentKey is the extra response field some providers use for
// reasoning model output.
const reasoningContentKey = "reasoning_content"

// Model implements the model.Model interface for OpenAI-compatible APIs.
type Model struct {
	client            openai.Client
	name              string
	baseURL           string
	apiKey            string
	channelBufferSize int
	extraFields       map[string]any
}

// New creates a new OpenAI-like model.
func New(name string, opts ...Option) *Model {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	if o.APIKey == "" {
		if val, ok := os.LookupEnv(openAIAPIKeyName); ok {
			o.APIKey = val
		}
	}

	var clientOpts []openaiopt.RequestOption
	if o.APIKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.APIKey))
	}
	if o.BaseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.BaseURL))
	}
	clientOpts = append(clientOpts, o.OpenAIOptions...)

	return &Model{
		client:            openai.NewClient(clientOpts...),
		name:              name,
		baseURL:           o.BaseURL,
		apiKey:            o.APIKey,
		channelBufferSize: o.ChannelBufferSize,
		extraFields:       o.ExtraFields,
	}
}

// Info implements the model.Model interface.
func (m *Model) Info() model.Info {
	return model.Info{
		Name: m.name,
	}
}

// GenerateContent implements the model.Model interface.
//
// Judge requests are issued non-streaming; the single final response is
// delivered on the returned channel and the channel is closed.
func (m *Model) GenerateContent(
	ctx context.Context,
	request *model.Request,
) (<-chan *model.Response, error) {
	if request == nil {
		return nil, errors.New("request cannot be nil")
	}
	if request.Stream {
		return nil, errors.New("streaming is not supported for judge requests")
	}

	responseChan := make(chan *model.Response, m.channelBufferSize)
	chatRequest, opts := m.buildChatRequest(request)

	go func() {
		defer close(responseChan)
		m.handleNonStreamingResponse(ctx, chatRequest, responseChan, opts...)
	}()

	return responseChan, nil
}

// buildChatRequest converts our Request to OpenAI request params and options.
func (m *Model) buildChatRequest(request *model.Request) (openai.ChatCompletionNewParams, []openaiopt.RequestOption) {
	chatRequest := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.name),
		Messages: m.convertMessages(request.Messages),
	}

	// Set response_format for native structured outputs when requested.
	if request.StructuredOutput != nil &&
		request.StructuredOutput.Type == model.StructuredOutputJSONSchema &&
		request.StructuredOutput.JSONSchema != nil {
		js := request.StructuredOutput.JSONSchema
		chatRequest.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        js.Name,
					Schema:      js.Schema,
					Strict:      openai.Bool(js.Strict),
					Description: openai.String(js.Description),
				},
			},
		}
	}

	// MaxTokens is deprecated and not compatible with o-series models.
	// Use MaxCompletionTokens instead.
	if request.MaxTokens != nil {
		chatRequest.MaxCompletionTokens = openai.Int(int64(*request.MaxTokens))
	}
	if request.Temperature != nil {
		chatRequest.Temperature = openai.Float(*request.Temperature)
	}
	if request.TopP != nil {
		chatRequest.TopP = openai.Float(*request.TopP)
	}
	if len(request.Stop) > 0 {
		// Use the first stop string for simplicity.
		chatRequest.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfString: openai.String(request.Stop[0]),
		}
	}

	var opts []openaiopt.RequestOption
	for key, value := range m.extraFields {
		opts = append(opts, openaiopt.WithJSONSet(key, value))
	}
	return chatRequest, opts
}

// convertMessages converts our messages to OpenAI message params.
func (m *Model) convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			converted = append(converted, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			converted = append(converted, openai.AssistantMessage(msg.Content))
		default:
			converted = append(converted, openai.UserMessage(msg.Content))
		}
	}
	return converted
}

// handleNonStreamingResponse handles a non-streaming chat completion.
func (m *Model) handleNonStreamingResponse(
	ctx context.Context,
	chatRequest openai.ChatCompletionNewParams,
	responseChan chan<- *model.Response,
	opts ...openaiopt.RequestOption,
) {
	chatCompletion, err := m.client.Chat.Completions.New(ctx, chatRequest, opts...)
	if err != nil {
		errorResponse := &model.Response{
			Error: &model.ResponseError{
				Message: err.Error(),
				Type:    model.ErrorTypeAPIError,
			},
			Timestamp: time.Now(),
			Done:      true,
		}
		select {
		case responseChan <- errorResponse:
		case <-ctx.Done():
		}
		return
	}

	response := &model.Response{
		ID:        chatCompletion.ID,
		Object:    string(chatCompletion.Object),
		Created:   chatCompletion.Created,
		Model:     chatCompletion.Model,
		Timestamp: time.Now(),
		Done:      true,
	}

	if len(chatCompletion.Choices) > 0 {
		response.Choices = make([]model.Choice, len(chatCompletion.Choices))
		for i, choice := range chatCompletion.Choices {
			// Extract reasoning content from the message if available.
			reasoningContent := extractReasoningContent(choice.Message.JSON.ExtraFields)
			finishReason := string(choice.FinishReason)
			response.Choices[i] = model.Choice{
				Index: int(choice.Index),
				Message: model.Message{
					Role:             model.RoleAssistant,
					Content:          choice.Message.Content,
					ReasoningContent: reasoningContent,
				},
				FinishReason: &finishReason,
			}
		}
	}

	response.Usage = &model.Usage{
		PromptTokens:     int(chatCompletion.Usage.PromptTokens),
		CompletionTokens: int(chatCompletion.Usage.CompletionTokens),
		TotalTokens:      int(chatCompletion.Usage.TotalTokens),
	}

	select {
	case responseChan <- response:
	case <-ctx.Done():
	}
}

// extractReasoningContent extracts reasoning content from extra response fields.
func extractReasoningContent(extraFields map[string]respjson.Field) string {
	if extraFields == nil {
		return ""
	}
	reasoningField, ok := extraFields[reasoningContentKey]
	if !ok {
		return ""
	}
	reasoningStr, err := strconv.Unquote(reasoningField.Raw())
	if err == nil {
		return reasoningStr
	}
	return ""
}
