// Package assistant answers questions about a report with an
// OpenAI-compatible chat model that looks values up through tool calls.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/smallnest/goequip"
)

// MaxTurns bounds the number of model round trips in one Ask.
const MaxTurns = 8

var (
	ErrNoChoices = errors.New("model returned no choices")
	ErrEmpty     = errors.New("model response was empty and contained no tool calls")
	ErrMaxTurns  = errors.New("model did not answer within the turn limit")
)

// ChatClient is the part of *openai.Client used here.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Assistant struct {
	client ChatClient
	model  string
}

func New(client ChatClient, model string) *Assistant {
	return &Assistant{client: client, model: model}
}

// NewClient builds an *openai.Client for apiKey, optionally against a
// compatible endpoint.
func NewClient(apiKey, apiBase string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if apiBase != "" {
		config.BaseURL = apiBase
	}
	return openai.NewClientWithConfig(config)
}

func toolDefinitions() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_column",
				Description: "Returns every value of a column, or the single cell for a key when key is given.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"column": map[string]any{
							"type":        "string",
							"description": "The column header, e.g. \"Cell Name\".",
						},
						"key": map[string]any{
							"type":        "string",
							"description": "Optional key column value selecting one row.",
						},
					},
					"required": []string{"column"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_status",
				Description: "Returns the result of the operation recorded in the report.",
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		},
	}
}

func systemPrompt(p *goequip.ReportParser) string {
	var sb strings.Builder
	sb.WriteString("You answer questions about a network element report.\n")
	fmt.Fprintf(&sb, "Element: %s\n", p.ElementName)
	if status, err := p.ResultOfOperation(); err == nil {
		fmt.Fprintf(&sb, "Status: %s\n", status)
	}
	if table, err := p.ToTable(); err == nil {
		fmt.Fprintf(&sb, "Key column: %s\n", table.KeyColumn)
		fmt.Fprintf(&sb, "Columns: %s\n", strings.Join(table.Columns, ", "))
		fmt.Fprintf(&sb, "Keys: %s\n", strings.Join(table.Keys, ", "))
	}
	sb.WriteString("Use the tools to look values up. Do not guess values.")
	return sb.String()
}

// executeToolCall runs one tool call against p and returns its output.
func executeToolCall(p *goequip.ReportParser, toolCall openai.ToolCall) (string, error) {
	switch toolCall.Function.Name {
	case "get_column":
		var params struct {
			Column string `json:"column"`
			Key    string `json:"key"`
		}
		if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &params); err != nil {
			return "", fmt.Errorf("failed to unmarshal get_column arguments: %w", err)
		}
		if params.Key != "" {
			return p.GetCell(params.Column, params.Key)
		}
		values, err := p.GetColumn(params.Column)
		if err != nil {
			return "", err
		}
		return strings.Join(values, "\n"), nil
	case "get_status":
		return p.ResultOfOperation()
	default:
		return "", fmt.Errorf("unknown tool: %s", toolCall.Function.Name)
	}
}

// Ask answers question about p. Tool failures are fed back to the model so
// it can recover; transport failures end the conversation.
func (a *Assistant) Ask(ctx context.Context, p *goequip.ReportParser, question string) (string, error) {
	logger := zerolog.Ctx(ctx)

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(p)},
		{Role: openai.ChatMessageRoleUser, Content: question},
	}
	tools := toolDefinitions()

	for turn := 0; turn < MaxTurns; turn++ {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return "", fmt.Errorf("chat completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", ErrNoChoices
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			if answer := strings.TrimSpace(msg.Content); answer != "" {
				return answer, nil
			}
			return "", ErrEmpty
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role:      openai.ChatMessageRoleAssistant,
			Content:   msg.Content,
			ToolCalls: msg.ToolCalls,
		})
		for _, tc := range msg.ToolCalls {
			logger.Debug().Str("tool", tc.Function.Name).Str("args", tc.Function.Arguments).Msg("calling tool")
			output, err := executeToolCall(p, tc)
			if err != nil {
				logger.Debug().Err(err).Str("tool", tc.Function.Name).Msg("tool call failed")
				output = fmt.Sprintf("Error: %v", err)
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: tc.ID,
				Content:    output,
			})
		}
	}
	return "", ErrMaxTurns
}
