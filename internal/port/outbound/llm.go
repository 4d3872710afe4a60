// Package outbound defines the outbound ports a Manager drives: its only
// collaborator is an LLM capable of forced tool use.
package outbound

import "context"

// Role identifies the speaker of a ChatMessage in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of the conversation a Manager holds with the
// LLM while trying to reach a consistent tool call.
type ChatMessage struct {
	Role Role
	Text string
}

// ChatRequest asks the LLM to judge a piece of unstructured data under a
// system prompt and an ordered conversation (for a Manager: the default
// block, one masked rule message per policy, then the text) and report its
// findings via a single forced tool call shaped by ToolSchema.
type ChatRequest struct {
	System     string
	Messages   []ChatMessage
	ToolName   string
	ToolSchema map[string]any
	MaxTokens  int
}

// ChatResponse is the LLM's reply. Arguments holds the forced tool call's
// JSON arguments (the IR a Manager reduces against its masks); Text holds
// any plain-text content the model produced alongside or instead of the
// tool call. InputTokens/OutputTokens feed usage accounting.
type ChatResponse struct {
	Arguments    map[string]any
	Text         string
	InputTokens  int
	OutputTokens int
}

// LLMClient is the outbound port a Manager drives to compose policies
// against unstructured data. Adapters implement this against a specific
// vendor's API.
type LLMClient interface {
	Send(ctx context.Context, req ChatRequest) (ChatResponse, error)
}
