// Package anthropic adapts the Anthropic Messages API to the
// outbound.LLMClient port. Where the reference providers in the wild send
// one system+user turn and read back plain text, a Manager needs a forced
// tool call on every turn of a multi-turn consistency loop — this adapter
// generalizes the single-turn pattern into that shape.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/policyai/policyai-go/internal/port/outbound"
)

// Client implements outbound.LLMClient against the real Anthropic API.
type Client struct {
	client sdk.Client
	model  string
}

// New constructs a Client. apiKey may be empty, in which case the SDK falls
// back to the ANTHROPIC_API_KEY environment variable. baseURL may be empty
// to use the SDK's default endpoint.
func New(apiKey, model, baseURL string) *Client {
	var reqOpts []option.RequestOption
	if apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	return &Client{client: sdk.NewClient(reqOpts...), model: model}
}

// Send implements outbound.LLMClient.
func (c *Client) Send(ctx context.Context, req outbound.ChatRequest) (outbound.ChatResponse, error) {
	tool, err := toolParam(req.ToolName, req.ToolSchema)
	if err != nil {
		return outbound.ChatResponse{}, fmt.Errorf("anthropic: build tool schema: %w", err)
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(req.MaxTokens),
		System: []sdk.TextBlockParam{
			{Text: req.System},
		},
		Messages:   toMessageParams(req.Messages),
		Tools:      []sdk.ToolUnionParam{sdk.ToolUnionParamOfTool(tool)},
		ToolChoice: sdk.ToolChoiceParamOfTool(req.ToolName),
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return outbound.ChatResponse{}, fmt.Errorf("anthropic: messages.new: %w", err)
	}

	resp := outbound.ChatResponse{
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}

	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			resp.Text += block.Text
		case "tool_use":
			if block.Name != req.ToolName {
				continue
			}
			var args map[string]any
			if err := json.Unmarshal(block.Input, &args); err != nil {
				return outbound.ChatResponse{}, fmt.Errorf("anthropic: decode %s arguments: %w", req.ToolName, err)
			}
			resp.Arguments = args
		}
	}

	if resp.Arguments == nil {
		return outbound.ChatResponse{}, fmt.Errorf("anthropic: response contained no %s tool call", req.ToolName)
	}

	return resp, nil
}

// toolParam translates a generic JSON-schema map into the SDK's tool
// declaration. schema is expected to carry "properties" and, optionally,
// "required", the same shape ReportBuilder.Schema produces.
func toolParam(name string, schema map[string]any) (sdk.ToolParam, error) {
	properties, _ := schema["properties"].(map[string]any)
	input := sdk.ToolInputSchemaParam{
		Properties: properties,
	}
	if required, ok := schema["required"].([]string); ok {
		input.Required = required
	} else if requiredAny, ok := schema["required"].([]any); ok {
		required := make([]string, 0, len(requiredAny))
		for _, r := range requiredAny {
			s, ok := r.(string)
			if !ok {
				return sdk.ToolParam{}, fmt.Errorf("required entry %v is not a string", r)
			}
			required = append(required, s)
		}
		input.Required = required
	}
	return sdk.ToolParam{
		Name:        name,
		InputSchema: input,
	}, nil
}

// toMessageParams translates the Manager's role-tagged conversation into
// the SDK's message params, preserving turn order.
func toMessageParams(messages []outbound.ChatMessage) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := sdk.NewTextBlock(m.Text)
		switch m.Role {
		case outbound.RoleAssistant:
			out = append(out, sdk.NewAssistantMessage(block))
		default:
			out = append(out, sdk.NewUserMessage(block))
		}
	}
	return out
}
